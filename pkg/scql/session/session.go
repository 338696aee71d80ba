// Package session runs the analysis cycle for a query being edited: parse,
// repair unterminated constructs at the caret, annotate with shapes and
// index positions. Each successful cycle produces a new immutable Analysis;
// a cycle that cannot be parsed falls back to the last good one.
package session

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/sambeau/scql/pkg/scql/ast"
	"github.com/sambeau/scql/pkg/scql/code"
	"github.com/sambeau/scql/pkg/scql/errors"
	"github.com/sambeau/scql/pkg/scql/index"
	"github.com/sambeau/scql/pkg/scql/parser"
	"github.com/sambeau/scql/pkg/scql/schema"
	"github.com/sambeau/scql/pkg/scql/shape"
)

// Analysis is one generation of the analysed query. The tree, notes and
// index belong together and are never updated in place.
type Analysis struct {
	Generation int
	Text       string // text that was analysed, after repairs
	Repaired   bool   // delimiters were inserted to make Text parse
	Tree       *ast.Tree
	Notes      *shape.Annotations
	Index      *index.Index
	Valid      bool
	Stale      bool                 // the input did not parse; this is an earlier generation
	Errors     []*errors.QueryError // parse errors of the latest input
}

// Session holds the registries a query is analysed against and the most
// recent good analysis.
type Session struct {
	data    *schema.Registry
	code    *code.Registry
	log     *slog.Logger
	context []*schema.Schema

	generation int
	last       *Analysis
}

// New creates a session. A nil logger discards.
func New(data *schema.Registry, functions *code.Registry, log *slog.Logger) *Session {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Session{data: data, code: functions, log: log}
}

// Data returns the data-source registry.
func (s *Session) Data() *schema.Registry { return s.data }

// Code returns the function registry.
func (s *Session) Code() *code.Registry { return s.code }

// Last returns the most recent good analysis, or nil.
func (s *Session) Last() *Analysis { return s.last }

// SetContext sets the schemas a query starting with a function call is fed.
func (s *Session) SetContext(ctx []*schema.Schema) {
	s.context = ctx
}

// Update analyses text with the caret at byte offset caret. Unterminated
// strings, argument lists and code cells ending at the caret are closed
// one at a time, inner first, until the text parses or nothing more can
// be repaired.
func (s *Session) Update(text string, caret int) *Analysis {
	if caret < 0 || caret > len(text) {
		caret = len(text)
	}

	current := text
	repairs := 0
	var errs []*errors.QueryError
	var partial *ast.Tree

	for limit := len(text) + 1; repairs <= limit; repairs++ {
		ok, tree, perrs := parser.Parse(current)
		if ok {
			return s.commit(current, repairs > 0, tree, nil)
		}
		if repairs == 0 {
			errs, partial = perrs, tree
		}

		x, y := Position(current, caret)
		fixed, did := ast.Repair(tree, current, caret, x, y)
		if !did {
			break
		}
		// keep the caret after the inserted delimiter so the enclosing
		// construct, which now ends there, is found next
		caret += len(fixed) - len(current)
		current = fixed
	}

	s.log.Debug("analysis failed", "text", text, "repairs", repairs, "errors", len(errs))

	if s.last != nil {
		stale := *s.last
		stale.Stale = true
		stale.Errors = errs
		return &stale
	}

	// Nothing earlier to fall back on: show the partial tree as it is.
	return s.build(text, false, partial, errs)
}

func (s *Session) commit(text string, repaired bool, tree *ast.Tree, errs []*errors.QueryError) *Analysis {
	a := s.build(text, repaired, tree, errs)
	s.last = a
	s.log.Debug("analysis",
		"generation", a.Generation,
		"repaired", repaired,
		"valid", a.Valid,
		"nodes", tree.Len())
	return a
}

func (s *Session) build(text string, repaired bool, tree *ast.Tree, errs []*errors.QueryError) *Analysis {
	s.generation++
	notes := shape.Annotate(tree, s.data, s.code, s.context)
	return &Analysis{
		Generation: s.generation,
		Text:       text,
		Repaired:   repaired,
		Tree:       tree,
		Notes:      notes,
		Index:      index.Build(tree),
		Valid:      len(errs) == 0 && shape.Valid(tree, notes, tree.Root),
		Errors:     errs,
	}
}

// Execute runs the operate phase of a valid analysis and returns the
// schemas of the final stage.
func (s *Session) Execute(a *Analysis) ([]*schema.Schema, error) {
	if a == nil || !a.Valid {
		return nil, fmt.Errorf("cannot execute an invalid query")
	}
	out, err := shape.Execute(a.Tree, a.Notes, s.code, s.context)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	s.log.Debug("executed", "generation", a.Generation, "outputs", len(out))
	return out, nil
}

// Position converts a byte offset in text to a 1-based (column, line) pair.
// Columns count runes, matching the lexer.
func Position(text string, offset int) (x, y int) {
	if offset > len(text) {
		offset = len(text)
	}
	x, y = 1, 1
	for _, r := range text[:offset] {
		if r == '\n' {
			y++
			x = 1
			continue
		}
		x++
	}
	return x, y
}

// Offset converts a 1-based (column, line) pair back to a byte offset. A
// position past the end of its line clamps to the line end.
func Offset(text string, x, y int) int {
	line, col := 1, 1
	for i := 0; i < len(text); {
		if line == y && col == x {
			return i
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == '\n' {
			if line == y {
				return i
			}
			line++
			col = 1
		} else {
			col++
		}
		i += size
	}
	return len(text)
}
