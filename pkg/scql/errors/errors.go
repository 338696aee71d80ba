// Package errors provides the structured error type shared by the SCQL
// parser, the analysis session and the catalog loaders.
//
// A QueryError carries a class, a stable code, a rendered message, optional
// hints and a source position, so the same error can be shown in the REPL,
// printed by the CLI or emitted as JSON.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassParse     ErrorClass = "parse"     // Tokenizer/parser errors
	ClassShape     ErrorClass = "shape"     // A function rejected its inputs or arguments
	ClassUndefined ErrorClass = "undefined" // Unknown or ambiguous names
	ClassCatalog   ErrorClass = "catalog"   // Catalog files and databases
)

// QueryError is any error produced while reading or analyzing a query.
type QueryError struct {
	Class   ErrorClass     `json:"class"`
	Code    string         `json:"code"`            // e.g. "PARSE-0003"
	Message string         `json:"message"`
	Hints   []string       `json:"hints,omitempty"`
	Line    int            `json:"line"`            // 1-based, 0 if unknown
	Column  int            `json:"column"`          // 1-based, 0 if unknown
	File    string         `json:"file,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return e.String()
}

// String returns a one-line location prefix, the message, and one
// indented line per hint.
func (e *QueryError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}
	sb.WriteString(e.Message)
	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line form for interactive display.
func (e *QueryError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassParse:
		sb.WriteString("Syntax error")
	case ClassShape:
		sb.WriteString("Shape error")
	case ClassCatalog:
		sb.WriteString("Catalog error")
	default:
		sb.WriteString("Name error")
	}

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d, column %d", e.Line, e.Column))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	// shape messages may span lines
	sb.WriteString(strings.ReplaceAll(e.Message, "\n", "\n  "))

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *QueryError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *QueryError) WithFile(file string) *QueryError {
	c := *e
	c.File = file
	return &c
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass
	Template string   // message template with {{.placeholders}}
	Hints    []string // hint templates
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Parse errors (PARSE-0xxx)
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "unexpected token '{{.Token}}'",
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "unterminated string",
		Hints:    []string{"close it with \""},
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "unterminated argument list for {{.Function}}",
		Hints:    []string{"close it with ]"},
	},
	"PARSE-0005": {
		Class:    ClassParse,
		Template: "unterminated code cell",
		Hints:    []string{"close it with }"},
	},
	"PARSE-0006": {
		Class:    ClassParse,
		Template: "invalid number literal: {{.Literal}}",
	},
	"PARSE-0007": {
		Class:    ClassParse,
		Template: "illegal character '{{.Char}}'",
	},
	"PARSE-0008": {
		Class:    ClassParse,
		Template: "missing ) after nested pipeline",
	},

	// Shape errors (SHAPE-0xxx)
	"SHAPE-0001": {
		Class:    ClassShape,
		Template: "{{.Function}}: {{.Message}}",
		Hints:    []string{"usage: {{.Usage}}"},
	},

	// Undefined errors (UNDEF-0xxx)
	"UNDEF-0001": {
		Class:    ClassUndefined,
		Template: "unknown data source: ${{.Name}}",
	},
	"UNDEF-0002": {
		Class:    ClassUndefined,
		Template: "unknown function: {{.Name}}",
	},
	"UNDEF-0003": {
		Class:    ClassUndefined,
		Template: "'{{.Name}}' is ambiguous: matches {{.Matches}}",
	},
	"UNDEF-0004": {
		Class:    ClassUndefined,
		Template: "unknown help topic: {{.Topic}}",
		Hints:    []string{"try 'sources' or 'functions'"},
	},

	// Catalog errors (CATALOG-0xxx)
	"CATALOG-0001": {
		Class:    ClassCatalog,
		Template: "cannot read catalog: {{.Reason}}",
	},
	"CATALOG-0002": {
		Class:    ClassCatalog,
		Template: "invalid source '{{.Name}}': {{.Reason}}",
	},
}

// New creates a QueryError from the catalog. An unknown code produces a
// generic error whose message is data["message"] or the code itself.
func New(code string, data map[string]any) *QueryError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &QueryError{
			Class:   ClassUndefined,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		if rendered := renderTemplate(hintTmpl, data); rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &QueryError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates a QueryError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *QueryError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewSimple creates an error without using the catalog.
func NewSimple(class ErrorClass, message string) *QueryError {
	return &QueryError{
		Class:   class,
		Message: message,
	}
}

func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Option("missingkey=zero").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}

	return prev[len(b)]
}

// threshold is the largest edit distance still worth suggesting.
func threshold(input string) int {
	switch {
	case len(input) >= 7:
		return 3
	case len(input) >= 4:
		return 2
	default:
		return 1
	}
}

// FuzzyMatch is a candidate with its edit distance from the input.
type FuzzyMatch struct {
	Value    string
	Distance int
}

// FindClosestMatch returns the candidate closest to input, or "" when the
// best candidate is an exact match or too far away.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)

	var bestMatch string
	bestDistance := -1
	for _, candidate := range candidates {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= 0 || bestDistance > threshold(input) {
		return ""
	}
	return bestMatch
}

// FindTopMatches returns up to n candidates within the suggestion
// threshold, closest first. Exact matches are excluded.
func FindTopMatches(input string, candidates []string, n int) []string {
	if len(input) == 0 || len(candidates) == 0 || n <= 0 {
		return nil
	}

	inputLower := strings.ToLower(input)

	var matches []FuzzyMatch
	for _, candidate := range candidates {
		if dist := levenshteinDistance(inputLower, strings.ToLower(candidate)); dist > 0 {
			matches = append(matches, FuzzyMatch{Value: candidate, Distance: dist})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	limit := threshold(input)
	var result []string
	for i := 0; i < len(matches) && i < n; i++ {
		if matches[i].Distance <= limit {
			result = append(result, matches[i].Value)
		}
	}
	return result
}

// NewUnknownName reports a name that did not resolve. code selects the
// data-source or function variant. When the name is a prefix of several
// candidates the error says so; otherwise the closest candidate, if any,
// becomes a "Did you mean" hint.
func NewUnknownName(code, name string, candidates []string) *QueryError {
	var matches []string
	for _, c := range candidates {
		if strings.HasPrefix(c, name) {
			matches = append(matches, c)
		}
	}
	if len(matches) > 1 {
		return New("UNDEF-0003", map[string]any{
			"Name":    name,
			"Matches": strings.Join(matches, ", "),
		})
	}

	err := New(code, map[string]any{"Name": name})
	suggestion := FindClosestMatch(name, candidates)
	if suggestion == "" && len(matches) == 1 {
		suggestion = matches[0]
	}
	if suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}
	return err
}
