// Package index maps a screen position to the syntax nodes that enclose it.
package index

import "github.com/sambeau/scql/pkg/scql/ast"

// Index holds the nodes of one tree in preorder. It is only meaningful
// together with the tree it was built from.
type Index struct {
	tree    *ast.Tree
	entries []ast.NodeID
}

// Build indexes every node reachable from t.Root.
func Build(t *ast.Tree) *Index {
	return &Index{tree: t, entries: ast.Preorder(t, t.Root)}
}

// Tree returns the tree the index was built from.
func (ix *Index) Tree() *ast.Tree {
	return ix.tree
}

// Len returns the number of indexed nodes.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// At returns every node whose span contains (x, y), outermost first.
// Preorder puts a parent before its descendants, so filtering the
// entries keeps that order.
func (ix *Index) At(x, y int) []ast.NodeID {
	var res []ast.NodeID
	for _, id := range ix.entries {
		if ix.tree.Node(id).Span.Contains(x, y) {
			res = append(res, id)
		}
	}
	return res
}
