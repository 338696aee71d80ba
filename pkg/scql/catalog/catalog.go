// Package catalog loads data-source schemas from YAML files and SQL
// databases (SQLite, PostgreSQL, MySQL) and registers them alongside the
// built-in sources.
package catalog

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"github.com/sambeau/scql/pkg/scql/errors"
	"github.com/sambeau/scql/pkg/scql/schema"
)

// Source is a named schema ready to be registered.
type Source struct {
	Name   string
	Schema *schema.Schema
}

// File is the YAML catalog layout.
type File struct {
	Sources []SourceSpec `yaml:"sources"`
}

// SourceSpec describes one source in a catalog file.
type SourceSpec struct {
	Name     string       `yaml:"name"`
	Title    string       `yaml:"title"`
	Dimens   []int64      `yaml:"dimens"`
	Writable bool         `yaml:"writable"`
	Columns  []ColumnSpec `yaml:"columns"`
}

// ColumnSpec describes one column. Count defaults to 1.
type ColumnSpec struct {
	Type  string `yaml:"type"`
	Count int64  `yaml:"count"`
	Label string `yaml:"label"`
}

// NewHandle returns a fresh handle for a catalog-backed source.
func NewHandle() schema.Handle {
	return schema.Handle("catalog:" + uuid.NewString())
}

// LoadFile reads a YAML catalog. Files ending in .gz are decompressed.
func LoadFile(path string) ([]Source, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	sources, err := Parse(data)
	if err != nil {
		var qe *errors.QueryError
		if stderrors.As(err, &qe) {
			return nil, qe.WithFile(path)
		}
		return nil, err
	}
	return sources, nil
}

func readFile(path string) ([]byte, error) {
	if !strings.HasSuffix(path, ".gz") {
		return os.ReadFile(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// Parse decodes a YAML catalog. Unknown fields are rejected so that typos
// do not silently drop columns. An empty document has no sources.
func Parse(data []byte) ([]Source, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.New("CATALOG-0001", map[string]any{"Reason": err.Error()})
	}

	seen := make(map[string]bool)
	sources := make([]Source, 0, len(f.Sources))
	for _, spec := range f.Sources {
		src, err := spec.Source()
		if err != nil {
			return nil, err
		}
		if seen[src.Name] {
			return nil, invalid(src.Name, "defined twice")
		}
		seen[src.Name] = true
		sources = append(sources, src)
	}
	return sources, nil
}

// Source converts a spec into a validated Source with a fresh handle.
func (sp SourceSpec) Source() (Source, error) {
	if !ValidName(sp.Name) {
		return Source{}, invalid(sp.Name, "name must be a letter or _ followed by letters, digits or _")
	}

	s := &schema.Schema{
		Title:    sp.Title,
		Dimens:   sp.Dimens,
		Writable: sp.Writable,
		Data:     NewHandle(),
	}
	for _, c := range sp.Columns {
		t, err := schema.ParseElemType(c.Type)
		if err != nil {
			return Source{}, invalid(sp.Name, err.Error())
		}
		count := c.Count
		if count == 0 {
			count = 1
		}
		s.Columns = append(s.Columns, schema.Column{Type: t, Count: count, Label: c.Label})
	}
	if err := s.Validate(); err != nil {
		return Source{}, invalid(sp.Name, err.Error())
	}
	return Source{Name: sp.Name, Schema: s}, nil
}

// Spec converts a source back to its catalog form.
func (src Source) Spec() SourceSpec {
	sp := SourceSpec{
		Name:     src.Name,
		Title:    src.Schema.Title,
		Dimens:   src.Schema.Dimens,
		Writable: src.Schema.Writable,
	}
	for _, c := range src.Schema.Columns {
		sp.Columns = append(sp.Columns, ColumnSpec{Type: c.Type.String(), Count: c.Count, Label: c.Label})
	}
	return sp
}

// ValidName reports whether name can be written after $ in a query.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}

func invalid(name, reason string) *errors.QueryError {
	return errors.New("CATALOG-0002", map[string]any{"Name": name, "Reason": reason})
}

// Apply registers sources in order, replacing sources of the same name.
// It stops at the first source the registry rejects.
func Apply(reg *schema.Registry, sources []Source) error {
	for _, src := range sources {
		if err := reg.Add(src.Name, src.Schema); err != nil {
			return fmt.Errorf("registering %s: %w", src.Name, err)
		}
	}
	return nil
}
