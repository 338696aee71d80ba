package code

import (
	"fmt"

	"github.com/sambeau/scql/pkg/scql/ast"
	"github.com/sambeau/scql/pkg/scql/schema"
)

// Reshape returns the reshape built-in.
func Reshape() *Function {
	return &Function{
		Name:  "reshape",
		Usage: "reshape[d1 d2 … dn]",
		Description: "Reinterpret the records of each input with new dimension extents. " +
			"Each argument is a positive integer or *; the first * absorbs the remaining size.",
		OutputShape: reshapeShape,
		Operate: func(inputs []*schema.Schema, t *ast.Tree, args []ast.NodeID) []*schema.Schema {
			return mustShape("reshape", reshapeShape, inputs, t, args)
		},
	}
}

func reshapeShape(inputs []*schema.Schema, t *ast.Tree, args []ast.NodeID) ([]*schema.Schema, string) {
	if len(args) == 0 {
		return nil, "dimensions required"
	}

	// 0 marks a glob slot
	req := make([]int64, 0, len(args))
	requested := int64(1)
	for _, a := range args {
		n := t.Node(a)
		if n == nil {
			return nil, "empty parameter not allowed"
		}
		switch n.Kind {
		case ast.Integer:
			if n.Int <= 0 {
				return nil, invalidArgument(t, a)
			}
			var ok bool
			if requested, ok = schema.MulChecked(requested, n.Int); !ok {
				return nil, "requested dimensions too high"
			}
			req = append(req, n.Int)
		case ast.Glob:
			req = append(req, 0)
		default:
			return nil, invalidArgument(t, a)
		}
	}

	if len(inputs) == 0 {
		return nil, "reshapes requires input data"
	}

	available := int64(1)
	for _, in := range inputs {
		n, ok := in.Records()
		if ok {
			available, ok = schema.MulChecked(available, n)
		}
		if !ok {
			return nil, "available dimensions too high"
		}
	}
	if available < requested {
		return nil, "requested dimensions too high"
	}
	if r := available % requested; r != 0 {
		return nil, fmt.Sprintf("defined sizes have remainder of %d", r)
	}

	// Only the first glob of the whole call is filled; every later one,
	// including those applied to subsequent inputs, becomes 1.
	fill := true
	out := make([]*schema.Schema, 0, len(inputs))
	for _, in := range inputs {
		s := in.Clone()
		s.Dimens = make([]int64, len(req))
		for i, d := range req {
			switch {
			case d != 0:
				s.Dimens[i] = d
			case fill:
				s.Dimens[i] = available / requested
				fill = false
			default:
				s.Dimens[i] = 1
			}
		}
		out = append(out, s)
	}
	return out, ""
}

func invalidArgument(t *ast.Tree, id ast.NodeID) string {
	return fmt.Sprintf("invalid argument %s\nmust be a positive integer or glob", ast.Render(t, id))
}
