package syntax

import "strings"

// NodeID addresses a node inside a Tree arena.
type NodeID int32

// NoNode is the zero handle: no parent, no child, nothing resolved.
const NoNode NodeID = -1

// Position is a 1-based line and column.
type Position struct {
	Line   int
	Column int
}

// Before reports whether p precedes o.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// Range locates a parsed node in the original source.
type Range struct {
	Start     Position
	End       Position
	StartByte int
	EndByte   int
}

// Node is a single arena entry. Leading holds the source text between the
// previous sibling (or the parent start) and the node; Trailing the text
// between the last child and the end of the node.
type Node struct {
	Kind     Kind
	Type     string
	Field    string
	Parent   NodeID
	Children []NodeID
	Token    string
	Leading  string
	Trailing string
	Range    *Range

	modified bool
}

// Tree is an arena of nodes built from one source file.
type Tree struct {
	Path   string
	source []byte
	head   string
	tail   string
	nodes  []Node
	root   NodeID
}

// Root returns the program node.
func (t *Tree) Root() NodeID { return t.root }

// Source returns the text the tree was parsed from.
func (t *Tree) Source() []byte { return t.source }

// Len returns the number of arena entries, detached ones included.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns a copy of the node.
func (t *Tree) Node(id NodeID) Node { return t.nodes[id] }

// Kind returns the node kind; NoNode has KindOther.
func (t *Tree) Kind(id NodeID) Kind {
	if id == NoNode {
		return KindOther
	}
	return t.nodes[id].Kind
}

// Type returns the grammar type of the node.
func (t *Tree) Type(id NodeID) string { return t.nodes[id].Type }

// Field returns the field name the node occupies in its parent.
func (t *Tree) Field(id NodeID) string { return t.nodes[id].Field }

// Parent returns the parent node or NoNode.
func (t *Tree) Parent(id NodeID) NodeID {
	if id == NoNode {
		return NoNode
	}
	return t.nodes[id].Parent
}

// Children returns all children, tokens and comments included.
func (t *Tree) Children(id NodeID) []NodeID { return t.nodes[id].Children }

// Range returns the original source range, nil for synthesized nodes.
func (t *Tree) Range(id NodeID) *Range { return t.nodes[id].Range }

// IsSynthesized reports whether the node was created during this pass.
func (t *Tree) IsSynthesized(id NodeID) bool { return t.nodes[id].Range == nil }

// Token returns the leaf text.
func (t *Tree) Token(id NodeID) string { return t.nodes[id].Token }

// Leading returns the text preceding the node within its parent.
func (t *Tree) Leading(id NodeID) string { return t.nodes[id].Leading }

// Line returns the 1-based start line or 0 for synthesized nodes.
func (t *Tree) Line(id NodeID) int {
	if r := t.nodes[id].Range; r != nil {
		return r.Start.Line
	}
	return 0
}

// Child returns the first child occupying field, or NoNode.
func (t *Tree) Child(id NodeID, field string) NodeID {
	for _, child := range t.nodes[id].Children {
		if t.nodes[child].Field == field {
			return child
		}
	}
	return NoNode
}

// ChildrenByField returns every child occupying field.
func (t *Tree) ChildrenByField(id NodeID, field string) []NodeID {
	var result []NodeID
	for _, child := range t.nodes[id].Children {
		if t.nodes[child].Field == field {
			result = append(result, child)
		}
	}
	return result
}

// NamedChildren returns children that are neither tokens nor comments.
func (t *Tree) NamedChildren(id NodeID) []NodeID {
	var result []NodeID
	for _, child := range t.nodes[id].Children {
		switch t.nodes[child].Kind {
		case KindToken, KindComment:
			continue
		}
		result = append(result, child)
	}
	return result
}

// ChildrenOfKind returns direct children of the given kind.
func (t *Tree) ChildrenOfKind(id NodeID, kind Kind) []NodeID {
	var result []NodeID
	for _, child := range t.nodes[id].Children {
		if t.nodes[child].Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

// HasToken reports whether the node has a direct token child with the given text.
func (t *Tree) HasToken(id NodeID, text string) bool {
	for _, child := range t.nodes[id].Children {
		if t.nodes[child].Kind == KindToken && t.nodes[child].Token == text {
			return true
		}
	}
	return false
}

// Operator returns the operator token of a binary, assignment or update expression.
func (t *Tree) Operator(id NodeID) string {
	if op := t.Child(id, "operator"); op != NoNode {
		return t.nodes[op].Token
	}
	for _, child := range t.nodes[id].Children {
		if t.nodes[child].Kind == KindToken {
			return t.nodes[child].Token
		}
	}
	return ""
}

// Index returns the position of id among its parent's children, or -1.
func (t *Tree) Index(id NodeID) int {
	parent := t.nodes[id].Parent
	if parent == NoNode {
		return -1
	}
	for i, child := range t.nodes[parent].Children {
		if child == id {
			return i
		}
	}
	return -1
}

// Name returns the text of the node's "name" field, if any.
func (t *Tree) Name(id NodeID) string {
	if name := t.Child(id, "name"); name != NoNode {
		return t.Text(name)
	}
	return ""
}

// Indent returns the indentation preceding the node on its line.
func (t *Tree) Indent(id NodeID) string {
	leading := t.nodes[id].Leading
	if i := strings.LastIndexByte(leading, '\n'); i >= 0 {
		return leading[i+1:]
	}
	return leading
}
