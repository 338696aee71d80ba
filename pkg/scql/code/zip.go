package code

import (
	"strings"

	"github.com/sambeau/scql/pkg/scql/ast"
	"github.com/sambeau/scql/pkg/scql/schema"
)

// Zip returns the zip built-in.
func Zip() *Function {
	return &Function{
		Name:  "zip",
		Usage: "zip",
		Description: "Combine inputs record by record over their common leading dimensions. " +
			"Trailing dimensions move into each column's extents.",
		OutputShape: zipShape,
		Operate: func(inputs []*schema.Schema, t *ast.Tree, args []ast.NodeID) []*schema.Schema {
			return mustShape("zip", zipShape, inputs, t, args)
		},
	}
}

func zipShape(inputs []*schema.Schema, _ *ast.Tree, args []ast.NodeID) ([]*schema.Schema, string) {
	if len(args) != 0 {
		return nil, "zip does not expect arguments"
	}
	if len(inputs) == 0 {
		return nil, "zip requires input data"
	}

	common := commonPrefix(inputs)
	if common == 0 {
		return nil, "no common dimensionality"
	}

	titles := make([]string, 0, len(inputs))
	res := &schema.Schema{
		Dimens: append([]int64(nil), inputs[0].Dimens[:common]...),
		Data:   inputs[0].Data,
	}
	for _, in := range inputs {
		if in.Title != "" {
			titles = append(titles, in.Title)
		}
		trailing := in.Dimens[common:]
		for _, c := range in.Columns {
			ext := make([]int64, 0, len(trailing)+len(c.Extents))
			ext = append(ext, trailing...)
			ext = append(ext, c.Extents...)
			for len(ext) > 1 && ext[len(ext)-1] == 1 {
				ext = ext[:len(ext)-1]
			}
			if len(ext) == 0 {
				ext = nil
			}
			c.Extents = ext
			res.Columns = append(res.Columns, c)
		}
	}
	res.Title = strings.Join(titles, " ⨯ ")

	return []*schema.Schema{res}, ""
}

// commonPrefix returns how many leading extents every input shares.
func commonPrefix(inputs []*schema.Schema) int {
	first := inputs[0].Dimens
	for i, d := range first {
		for _, in := range inputs[1:] {
			if i >= len(in.Dimens) || in.Dimens[i] != d {
				return i
			}
		}
	}
	return len(first)
}
