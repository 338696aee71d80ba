package ast

import (
	"strconv"
	"strings"
)

const absent = "<INVALID>"

// Render returns a deterministic debug string for id and its subtree.
func Render(t *Tree, id NodeID) string {
	var sb strings.Builder
	render(&sb, t, id)
	return sb.String()
}

func render(sb *strings.Builder, t *Tree, id NodeID) {
	n := t.Node(id)
	if n == nil {
		sb.WriteString(absent)
		return
	}

	sb.WriteByte('{')
	sb.WriteString(n.Kind.String())
	sb.WriteString(n.Span.String())

	switch n.Kind {
	case Integer:
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatInt(n.Int, 10))
	case FloatNum:
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatFloat(n.Float, 'g', -1, 64))
	case String:
		sb.WriteByte(' ')
		sb.WriteString(strconv.Quote(n.Text))
		if n.MissingClose {
			sb.WriteString(" unterminated")
		}
	case Ident, DataCell, ComputeCell:
		sb.WriteByte(' ')
		sb.WriteString(n.Text)
	case CodeCell:
		sb.WriteByte(' ')
		sb.WriteString(n.Text)
		if n.MissingClose {
			sb.WriteString(" unterminated")
		}
	case List, StatementGroup:
		sb.WriteByte(' ')
		renderChildren(sb, t, n.Children, ", ")
	case Pipeline:
		sb.WriteByte(' ')
		renderChildren(sb, t, n.Children, " | ")
	case FunctionCall:
		sb.WriteByte(' ')
		render(sb, t, n.Name)
		sb.WriteString(" [")
		renderChildren(sb, t, n.Children, ", ")
		sb.WriteByte(']')
		if n.MissingClose {
			sb.WriteString(" unterminated")
		}
	}

	sb.WriteByte('}')
}

func renderChildren(sb *strings.Builder, t *Tree, ids []NodeID, sep string) {
	for i, c := range ids {
		if i > 0 {
			sb.WriteString(sep)
		}
		render(sb, t, c)
	}
}
