// Package ast holds the syntax tree of an SCQL expression.
//
// A Tree is an arena: nodes live in one slice and refer to each other by
// NodeID. Everything derived from a tree (annotations, the position index)
// stores NodeIDs, so discarding the tree discards a whole analysis
// generation at once. The zero NodeID, None, is the absent node the parser
// leaves in slots it could not fill.
package ast

import "fmt"

// NodeID addresses a node inside its Tree.
type NodeID int32

// None is the absent node.
const None NodeID = 0

// Kind tags the variant a Node holds.
type Kind uint8

const (
	Invalid Kind = iota
	Integer
	FloatNum
	Glob
	String
	Ident
	DataCell
	CodeCell
	ComputeCell
	List
	StatementGroup
	Pipeline
	FunctionCall
)

var kindNames = [...]string{
	Invalid:        "invalid",
	Integer:        "integer",
	FloatNum:       "floatnum",
	Glob:           "glob",
	String:         "string",
	Ident:          "ident",
	DataCell:       "datacell",
	CodeCell:       "codecell",
	ComputeCell:    "computecell",
	List:           "list",
	StatementGroup: "statements",
	Pipeline:       "pipeline",
	FunctionCall:   "fcall",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsIdent reports whether k is Ident or one of its specializations.
func (k Kind) IsIdent() bool {
	return k == Ident || k == DataCell || k == CodeCell || k == ComputeCell
}

// Span is a half-open source region in 1-based line/column coordinates.
type Span struct {
	FirstLine   int
	FirstColumn int
	LastLine    int
	LastColumn  int
}

// Contains reports whether (x, y) lies inside the span. The end column is
// exclusive: a span ending at column 10 contains column 9 but not 10.
func (s Span) Contains(x, y int) bool {
	afterStart := y > s.FirstLine || (y == s.FirstLine && x >= s.FirstColumn)
	beforeEnd := y < s.LastLine || (y == s.LastLine && x < s.LastColumn)
	return afterStart && beforeEnd
}

// EndsAt reports whether the span's end coordinate is (x, y).
func (s Span) EndsAt(x, y int) bool {
	return s.LastLine == y && s.LastColumn == x
}

func (s Span) String() string {
	return fmt.Sprintf("(%d:%d-%d:%d)", s.FirstLine, s.FirstColumn, s.LastLine, s.LastColumn)
}

// Node is one syntax node. Which fields are meaningful depends on Kind:
//
//	Integer       Int
//	FloatNum      Float
//	String        Text, MissingClose
//	Ident, DataCell, ComputeCell   Text
//	CodeCell      Text, MissingClose (inline @{...} form)
//	List, StatementGroup           Children
//	Pipeline      Children (stages)
//	FunctionCall  Name, Children (arguments), MissingClose
type Node struct {
	Kind         Kind
	Span         Span
	Parent       NodeID
	Int          int64
	Float        float64
	Text         string
	MissingClose bool
	Name         NodeID
	Children     []NodeID
}

// Tree owns every node of one parse.
type Tree struct {
	nodes []Node
	Root  NodeID
}

// NewTree returns an empty tree. Slot 0 is reserved for None.
func NewTree() *Tree {
	return &Tree{nodes: make([]Node, 1, 32)}
}

// Add appends n and returns its ID. The parent links of n's name and
// children are set to the new node.
func (t *Tree) Add(n Node) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)
	if n.Name != None {
		t.nodes[n.Name].Parent = id
	}
	for _, c := range n.Children {
		if c != None {
			t.nodes[c].Parent = id
		}
	}
	return id
}

// Node returns the node for id, or nil for None and unknown IDs.
// The returned node belongs to the tree and must be treated as read-only.
func (t *Tree) Node(id NodeID) *Node {
	if t == nil || id <= None || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

// Kind returns the kind of id, Invalid for absent nodes.
func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Node(id); n != nil {
		return n.Kind
	}
	return Invalid
}

// Len returns the number of nodes, not counting the None slot.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes) - 1
}
