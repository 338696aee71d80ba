package session

import (
	"github.com/sambeau/scql/pkg/scql/ast"
	"github.com/sambeau/scql/pkg/scql/errors"
)

// Help describes one node enclosing a position.
type Help struct {
	Node       ast.NodeID
	Kind       ast.Kind
	Span       ast.Span
	Name       string   // source, function or cell name, if any
	Diagnostic string   // shape error on a function call
	Schemas    []string // Describe() of each resolved schema
}

// HelpAt returns the chain of nodes enclosing (x, y), outermost first.
func (a *Analysis) HelpAt(x, y int) []Help {
	var chain []Help
	for _, id := range a.Index.At(x, y) {
		n := a.Tree.Node(id)
		h := Help{
			Node:       id,
			Kind:       n.Kind,
			Span:       n.Span,
			Diagnostic: a.Notes.Diagnostic(id),
		}
		switch n.Kind {
		case ast.DataCell, ast.Ident, ast.CodeCell, ast.ComputeCell:
			h.Name = n.Text
		case ast.FunctionCall:
			if name := a.Tree.Node(n.Name); name != nil {
				h.Name = name.Text
			}
		}
		if a.Notes.Resolved(id) {
			for _, s := range a.Notes.Schemas(id) {
				if s != nil {
					h.Schemas = append(h.Schemas, s.Describe())
				}
			}
		}
		chain = append(chain, h)
	}
	return chain
}

// Problems reports everything wrong with an analysis as positioned errors,
// in source order: parse errors, then shape diagnostics and unresolved
// names as the tree is walked.
func (s *Session) Problems(a *Analysis) []*errors.QueryError {
	var res []*errors.QueryError
	res = append(res, a.Errors...)
	if a.Stale {
		return res
	}

	ast.Walk(a.Tree, a.Tree.Root, func(id ast.NodeID) {
		// arguments are never annotated
		if a.Notes.Note(id) == nil {
			return
		}
		n := a.Tree.Node(id)
		switch n.Kind {
		case ast.DataCell:
			if !a.Notes.Resolved(id) {
				err := errors.NewUnknownName("UNDEF-0001", n.Text, s.data.Names())
				res = append(res, at(err, n.Span))
			}
		case ast.FunctionCall:
			name := ""
			if nn := a.Tree.Node(n.Name); nn != nil {
				name = nn.Text
			}
			if !a.Notes.Known(id) {
				err := errors.NewUnknownName("UNDEF-0002", name, s.code.Names())
				res = append(res, at(err, n.Span))
				return
			}
			if msg := a.Notes.Diagnostic(id); msg != "" {
				data := map[string]any{"Function": name, "Message": msg}
				if f, ok := s.code.Lookup(name); ok {
					data["Usage"] = f.Usage
				}
				res = append(res, at(errors.New("SHAPE-0001", data), n.Span))
			}
		}
	})
	return res
}

func at(err *errors.QueryError, span ast.Span) *errors.QueryError {
	err.Line = span.FirstLine
	err.Column = span.FirstColumn
	return err
}
