package ast

// Repair tries to close exactly one unterminated construct whose span ends
// at the caret (x, y). The search follows preorder from the root; the first node
// that can be repaired gets its missing delimiter inserted into text at the
// byte offset and the search stops. It reports false and returns text
// unchanged when no node qualifies.
func Repair(t *Tree, text string, offset, x, y int) (string, bool) {
	if offset < 0 || offset > len(text) {
		return text, false
	}
	closer, ok := findRepair(t, t.Root, x, y)
	if !ok {
		return text, false
	}
	return text[:offset] + closer + text[offset:], true
}

func findRepair(t *Tree, id NodeID, x, y int) (string, bool) {
	n := t.Node(id)
	if n == nil {
		return "", false
	}

	if n.MissingClose && n.Span.EndsAt(x, y) {
		switch n.Kind {
		case String:
			return `"`, true
		case FunctionCall:
			return "]", true
		case CodeCell:
			return "}", true
		}
	}

	if n.Kind == FunctionCall {
		if c, ok := findRepair(t, n.Name, x, y); ok {
			return c, true
		}
	}
	for _, c := range n.Children {
		if s, ok := findRepair(t, c, x, y); ok {
			return s, true
		}
	}
	return "", false
}
