// Package schema describes the shape of SCQL data sources: element types,
// column layout and dimension extents, plus the registry of named sources.
package schema

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ElemType is the element type of a column.
type ElemType int

const (
	U8 ElemType = iota
	U32
	F32
	F64
	Str
)

var elemTypeNames = [...]string{
	U8:  "u8",
	U32: "u32",
	F32: "f32",
	F64: "f64",
	Str: "str",
}

// String returns the short type name used in catalogs and help output.
func (t ElemType) String() string {
	if t < 0 || int(t) >= len(elemTypeNames) {
		return fmt.Sprintf("ElemType(%d)", int(t))
	}
	return elemTypeNames[t]
}

// ParseElemType converts a short type name (u8, u32, f32, f64, str) into an ElemType.
func ParseElemType(s string) (ElemType, error) {
	for i, name := range elemTypeNames {
		if name == s {
			return ElemType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown element type %q (want one of %s)", s, strings.Join(elemTypeNames[:], ", "))
}

// Handle is an opaque reference to the storage backing a schema.
// The analysis core never dereferences it.
type Handle string

// Column describes one column of a record.
type Column struct {
	Type    ElemType
	Count   int64   // elements per record
	Label   string
	Extents []int64 // per-column sub-shape, set by zip
}

// Schema describes a data artifact.
type Schema struct {
	Title    string
	Columns  []Column
	Dimens   []int64
	Data     Handle
	Writable bool
}

// Records returns the product of the dimension extents. The second result
// is false when the product does not fit in an int64.
func (s *Schema) Records() (int64, bool) {
	return Product(s.Dimens)
}

// Product multiplies extents with overflow detection.
func Product(extents []int64) (int64, bool) {
	total := int64(1)
	for _, e := range extents {
		var ok bool
		if total, ok = MulChecked(total, e); !ok {
			return 0, false
		}
	}
	return total, true
}

// MulChecked multiplies two non-negative values, reporting overflow.
func MulChecked(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a < 0 || b < 0 || a > math.MaxInt64/b {
		return 0, false
	}
	return a * b, true
}

// Clone returns a deep copy so outputs never alias their inputs.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	c := *s
	c.Dimens = append([]int64(nil), s.Dimens...)
	c.Columns = make([]Column, len(s.Columns))
	for i, col := range s.Columns {
		col.Extents = append([]int64(nil), col.Extents...)
		c.Columns[i] = col
	}
	return &c
}

// Validate checks the invariants every registered schema must hold.
func (s *Schema) Validate() error {
	if len(s.Dimens) == 0 {
		return fmt.Errorf("schema %q has no dimensions", s.Title)
	}
	for i, d := range s.Dimens {
		if d <= 0 {
			return fmt.Errorf("schema %q: dimension %d must be positive, got %d", s.Title, i, d)
		}
	}
	if _, ok := s.Records(); !ok {
		return fmt.Errorf("schema %q: record count overflows", s.Title)
	}
	for i, c := range s.Columns {
		if c.Count <= 0 {
			return fmt.Errorf("schema %q: column %d element count must be positive, got %d", s.Title, i, c.Count)
		}
	}
	return nil
}

var numbers = message.NewPrinter(language.English)

// Describe returns a deterministic multi-line summary: the title, the
// dimension extents, the record count, and one line per column.
func (s *Schema) Describe() string {
	var sb strings.Builder

	title := s.Title
	if title == "" {
		title = "(untitled)"
	}
	sb.WriteString(title)
	sb.WriteString("\n  dimensions: ")
	sb.WriteString(FormatExtents(s.Dimens))
	if n, ok := s.Records(); ok {
		sb.WriteString(numbers.Sprintf(" (%d records)", n))
	} else {
		sb.WriteString(" (record count overflows)")
	}
	if !s.Writable {
		sb.WriteString("\n  read-only")
	}

	for _, c := range s.Columns {
		label := c.Label
		if label == "" {
			label = "-"
		}
		sb.WriteString(numbers.Sprintf("\n  %-14s %d × %s", label, c.Count, c.Type))
		if len(c.Extents) > 0 {
			sb.WriteString(" ")
			sb.WriteString(FormatExtents(c.Extents))
		}
	}

	return sb.String()
}

// FormatExtents renders extents as [a×b×c] with grouped digits.
func FormatExtents(extents []int64) string {
	parts := make([]string, len(extents))
	for i, e := range extents {
		parts[i] = numbers.Sprintf("%d", e)
	}
	return "[" + strings.Join(parts, "×") + "]"
}

// FormatCount renders n with grouped digits.
func FormatCount(n int64) string {
	return numbers.Sprintf("%d", n)
}
