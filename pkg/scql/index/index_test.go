package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sambeau/scql/pkg/scql/ast"
	"github.com/sambeau/scql/pkg/scql/parser"
)

func build(t *testing.T, text string) *Index {
	t.Helper()
	ok, tree, errs := parser.Parse(text)
	require.True(t, ok, "%v", errs)
	return Build(tree)
}

func kinds(ix *Index, ids []ast.NodeID) []ast.Kind {
	var res []ast.Kind
	for _, id := range ids {
		res = append(res, ix.Tree().Kind(id))
	}
	return res
}

func isAncestor(tree *ast.Tree, outer, inner ast.NodeID) bool {
	for p := tree.Node(inner).Parent; p != ast.None; p = tree.Node(p).Parent {
		if p == outer {
			return true
		}
	}
	return false
}

func TestAtOuterToInner(t *testing.T) {
	ix := build(t, "$iris_data | reshape[3 *]")

	tests := []struct {
		x    int
		want []ast.Kind
	}{
		{1, []ast.Kind{ast.Pipeline, ast.StatementGroup, ast.DataCell}},
		{11, []ast.Kind{ast.Pipeline}},
		{14, []ast.Kind{ast.Pipeline, ast.StatementGroup, ast.FunctionCall, ast.Ident}},
		{22, []ast.Kind{ast.Pipeline, ast.StatementGroup, ast.FunctionCall, ast.Integer}},
		{24, []ast.Kind{ast.Pipeline, ast.StatementGroup, ast.FunctionCall, ast.Glob}},
		{26, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, kinds(ix, ix.At(tt.x, 1)), "column %d", tt.x)
	}
}

func TestAtHalfOpenEnd(t *testing.T) {
	// the data cell spans columns 1 through 9 and ends at 10
	ix := build(t, "$iris_dat, zip")
	tree := ix.Tree()

	var data ast.NodeID
	for _, id := range ix.At(1, 1) {
		if tree.Kind(id) == ast.DataCell {
			data = id
		}
	}
	require.NotEqual(t, ast.None, data)
	assert.Equal(t, 10, tree.Node(data).Span.LastColumn)

	assert.Contains(t, ix.At(9, 1), data)
	assert.NotContains(t, ix.At(10, 1), data)
}

func TestAtEveryResultContainsPoint(t *testing.T) {
	ix := build(t, "$iris_data, $mnist_labels\n | reshape[*], (reshape[*] | zip)")
	tree := ix.Tree()
	for y := 1; y <= 2; y++ {
		for x := 1; x <= 40; x++ {
			ids := ix.At(x, y)
			for i, id := range ids {
				assert.True(t, tree.Node(id).Span.Contains(x, y))
				if i > 0 {
					assert.True(t, isAncestor(tree, ids[i-1], id), "(%d,%d): results must run outer to inner", x, y)
				}
			}
		}
	}
}

func TestAtMultiline(t *testing.T) {
	ix := build(t, "$iris_data\n | zip")
	got := kinds(ix, ix.At(4, 2))
	assert.Equal(t, []ast.Kind{ast.Pipeline, ast.StatementGroup, ast.FunctionCall, ast.Ident}, got)

	// middle of the pipeline's span, on a position no leaf covers
	assert.Equal(t, []ast.Kind{ast.Pipeline}, kinds(ix, ix.At(20, 1)))
}

func TestBuildCoversEveryNode(t *testing.T) {
	ix := build(t, "$a, $b | reshape[1 {2 3}]")
	assert.Equal(t, ix.Tree().Len(), ix.Len())
}
