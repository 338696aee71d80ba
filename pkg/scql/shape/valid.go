package shape

import "github.com/sambeau/scql/pkg/scql/ast"

// Valid reports whether the subtree at id is well formed after annotation.
// Literals are always valid; data cells must have resolved; function calls
// must name a known function and have passed their shape check; lists,
// stages and pipelines must be non-empty with every child present and
// valid. Plain identifiers, code cells, compute cells and absent nodes are
// never valid since nothing resolves them here.
func Valid(t *ast.Tree, ann *Annotations, id ast.NodeID) bool {
	n := t.Node(id)
	if n == nil {
		return false
	}

	switch n.Kind {
	case ast.Integer, ast.FloatNum, ast.String, ast.Glob:
		return true
	case ast.DataCell:
		return ann.Resolved(id)
	case ast.FunctionCall:
		return ann.Known(id) && ann.Resolved(id)
	case ast.List, ast.StatementGroup, ast.Pipeline:
		if len(n.Children) == 0 {
			return false
		}
		for _, c := range n.Children {
			if !Valid(t, ann, c) {
				return false
			}
		}
		return true
	}
	return false
}
