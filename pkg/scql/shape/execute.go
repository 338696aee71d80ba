package shape

import (
	"fmt"

	"github.com/sambeau/scql/pkg/scql/ast"
	"github.com/sambeau/scql/pkg/scql/code"
	"github.com/sambeau/scql/pkg/scql/schema"
)

// Execute runs the operate phase over an annotated, valid query and
// returns the schemas produced by the last stage. It follows the same
// stage and slot rules as Annotate, with the same context, but only calls
// Operate on the function calls that Annotate resolved.
func Execute(t *ast.Tree, ann *Annotations, functions *code.Registry, context []*schema.Schema) ([]*schema.Schema, error) {
	if !Valid(t, ann, t.Root) {
		return nil, fmt.Errorf("shape: cannot execute an invalid query")
	}
	ex := &executor{tree: t, ann: ann, code: functions}
	return ex.pipeline(t.Root, context), nil
}

type executor struct {
	tree *ast.Tree
	ann  *Annotations
	code *code.Registry
}

func (ex *executor) pipeline(id ast.NodeID, current []*schema.Schema) []*schema.Schema {
	for _, stage := range stages(ex.tree, id) {
		var next []*schema.Schema
		for slot, sid := range slots(ex.tree, stage) {
			next = append(next, ex.statement(sid, slot, current)...)
		}
		current = next
	}
	return current
}

func (ex *executor) statement(id ast.NodeID, slot int, current []*schema.Schema) []*schema.Schema {
	n := ex.tree.Node(id)
	if n == nil {
		return []*schema.Schema{nil}
	}

	switch n.Kind {
	case ast.DataCell:
		if s := ex.ann.Schemas(id); len(s) == 1 {
			return s
		}
	case ast.Pipeline:
		return ex.pipeline(id, current)
	case ast.FunctionCall:
		if !ex.ann.Resolved(id) {
			break
		}
		f, ok := lookupFunction(ex.tree, ex.code, n)
		if !ok {
			break
		}
		return f.Operate(inputsFor(current, slot), ex.tree, n.Children)
	}
	return []*schema.Schema{nil}
}
