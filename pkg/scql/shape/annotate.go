// Package shape runs the analysis passes over a parsed query: shape
// inference (Annotate), the validity predicate (Valid) and the execution
// pass (Execute).
//
// Results live in an Annotations side table keyed by node ID; the tree
// itself is never modified.
package shape

import (
	"github.com/sambeau/scql/pkg/scql/ast"
	"github.com/sambeau/scql/pkg/scql/code"
	"github.com/sambeau/scql/pkg/scql/schema"
)

// Note is what the shape pass learned about one statement node.
type Note struct {
	Schemas    []*schema.Schema
	Resolved   bool
	Known      bool   // function calls: the name matched a registered function
	Diagnostic string // function calls: the shape error, if any
}

// Annotations maps statement nodes to their notes. Nodes the pass never
// visited, such as function arguments, have no note.
type Annotations struct {
	notes map[ast.NodeID]*Note
}

func newAnnotations() *Annotations {
	return &Annotations{notes: make(map[ast.NodeID]*Note)}
}

func (a *Annotations) note(id ast.NodeID) *Note {
	n, ok := a.notes[id]
	if !ok {
		n = &Note{}
		a.notes[id] = n
	}
	return n
}

// Note returns the note for id, or nil if the node was not visited.
func (a *Annotations) Note(id ast.NodeID) *Note {
	if a == nil {
		return nil
	}
	return a.notes[id]
}

// Resolved reports whether id was resolved to schemas.
func (a *Annotations) Resolved(id ast.NodeID) bool {
	n := a.Note(id)
	return n != nil && n.Resolved
}

// Known reports whether id is a function call naming a registered function.
func (a *Annotations) Known(id ast.NodeID) bool {
	n := a.Note(id)
	return n != nil && n.Known
}

// Schemas returns the schemas resolved for id.
func (a *Annotations) Schemas(id ast.NodeID) []*schema.Schema {
	if n := a.Note(id); n != nil {
		return n.Schemas
	}
	return nil
}

// Diagnostic returns the shape error recorded for id, or "".
func (a *Annotations) Diagnostic(id ast.NodeID) string {
	if n := a.Note(id); n != nil {
		return n.Diagnostic
	}
	return ""
}

// Diagnostic pairs a shape error with the node it belongs to.
type Diagnostic struct {
	Node    ast.NodeID
	Span    ast.Span
	Message string
}

// Diagnostics returns every shape error in preorder.
func (a *Annotations) Diagnostics(t *ast.Tree) []Diagnostic {
	var res []Diagnostic
	ast.Walk(t, t.Root, func(id ast.NodeID) {
		if msg := a.Diagnostic(id); msg != "" {
			res = append(res, Diagnostic{Node: id, Span: t.Node(id).Span, Message: msg})
		}
	})
	return res
}

// Unresolved returns, in preorder, the data cells that did not resolve and
// the function calls whose name matched no unique function.
func (a *Annotations) Unresolved(t *ast.Tree) []ast.NodeID {
	var res []ast.NodeID
	ast.Walk(t, t.Root, func(id ast.NodeID) {
		n := a.Note(id)
		if n == nil {
			return
		}
		switch t.Kind(id) {
		case ast.DataCell:
			if !n.Resolved {
				res = append(res, id)
			}
		case ast.FunctionCall:
			if !n.Known {
				res = append(res, id)
			}
		}
	})
	return res
}

// Annotate infers the schemas flowing through the query rooted at
// t.Root. context is the input of the first stage; nil at top level.
// Every call returns fresh annotations.
func Annotate(t *ast.Tree, data *schema.Registry, functions *code.Registry, context []*schema.Schema) *Annotations {
	an := &annotator{tree: t, data: data, code: functions, ann: newAnnotations()}
	an.pipeline(t.Root, context)
	return an.ann
}

type annotator struct {
	tree *ast.Tree
	data *schema.Registry
	code *code.Registry
	ann  *Annotations
}

// pipeline threads current through the stages of id and returns the
// output of the last stage.
func (an *annotator) pipeline(id ast.NodeID, current []*schema.Schema) []*schema.Schema {
	for _, stage := range stages(an.tree, id) {
		var next []*schema.Schema
		for slot, sid := range slots(an.tree, stage) {
			next = append(next, an.statement(sid, slot, current)...)
		}
		current = next
	}
	return current
}

// statement returns the entries one slot contributes to the next stage.
// Unresolved and failed slots contribute a single nil entry.
func (an *annotator) statement(id ast.NodeID, slot int, current []*schema.Schema) []*schema.Schema {
	n := an.tree.Node(id)
	if n == nil {
		return []*schema.Schema{nil}
	}

	switch n.Kind {
	case ast.DataCell:
		note := an.ann.note(id)
		s, ok := an.data.Lookup(n.Text)
		if !ok {
			return []*schema.Schema{nil}
		}
		note.Schemas, note.Resolved = []*schema.Schema{s}, true
		return note.Schemas

	case ast.Pipeline:
		// A nested pipeline starts from the enclosing stage's input,
		// not from the slot it occupies.
		out := an.pipeline(id, current)
		note := an.ann.note(id)
		note.Schemas, note.Resolved = out, true
		return out

	case ast.FunctionCall:
		note := an.ann.note(id)
		f, ok := lookupFunction(an.tree, an.code, n)
		if !ok {
			return []*schema.Schema{nil}
		}
		note.Known = true

		out, msg := f.OutputShape(inputsFor(current, slot), an.tree, n.Children)
		if msg != "" {
			note.Diagnostic = msg
			return []*schema.Schema{nil}
		}
		note.Schemas, note.Resolved = out, true
		return out
	}

	return []*schema.Schema{nil}
}

// inputsFor picks a call's inputs: the only entry of current when there
// is exactly one, otherwise the entry at the call's slot if present.
func inputsFor(current []*schema.Schema, slot int) []*schema.Schema {
	var in *schema.Schema
	switch {
	case len(current) == 1:
		in = current[0]
	case slot < len(current):
		in = current[slot]
	}
	if in == nil {
		return []*schema.Schema{}
	}
	return []*schema.Schema{in}
}

func lookupFunction(t *ast.Tree, functions *code.Registry, call *ast.Node) (*code.Function, bool) {
	name := t.Node(call.Name)
	if name == nil {
		return nil, false
	}
	return functions.Lookup(name.Text)
}

// stages returns the stages of a pipeline node.
func stages(t *ast.Tree, id ast.NodeID) []ast.NodeID {
	if n := t.Node(id); n != nil && n.Kind == ast.Pipeline {
		return n.Children
	}
	return nil
}

// slots returns the statements of a stage. A stage that is not a
// statement group is a single slot; an absent stage has none.
func slots(t *ast.Tree, stage ast.NodeID) []ast.NodeID {
	n := t.Node(stage)
	switch {
	case n == nil:
		return nil
	case n.Kind == ast.StatementGroup:
		return n.Children
	default:
		return []ast.NodeID{stage}
	}
}
