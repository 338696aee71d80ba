package ast

// Walk calls fn for id and then for every descendant in preorder: a parent
// always precedes its descendants, children are visited in declaration
// order, and a function call's name precedes its arguments. Absent nodes
// are skipped.
func Walk(t *Tree, id NodeID, fn func(NodeID)) {
	n := t.Node(id)
	if n == nil {
		return
	}
	fn(id)
	if n.Kind == FunctionCall {
		Walk(t, n.Name, fn)
	}
	for _, c := range n.Children {
		Walk(t, c, fn)
	}
}

// Preorder returns the IDs Walk would visit, in order.
func Preorder(t *Tree, id NodeID) []NodeID {
	var ids []NodeID
	Walk(t, id, func(n NodeID) { ids = append(ids, n) })
	return ids
}
