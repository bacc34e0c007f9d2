package syntax

import "strings"

// Print renders the tree. Unmodified parsed regions are copied from the
// source byte-for-byte.
func (t *Tree) Print() string {
	var builder strings.Builder
	builder.WriteString(t.head)
	t.write(&builder, t.root)
	builder.WriteString(t.tail)
	return builder.String()
}

// Text renders a single subtree without its leading trivia.
func (t *Tree) Text(id NodeID) string {
	if id == NoNode {
		return ""
	}
	var builder strings.Builder
	t.write(&builder, id)
	return builder.String()
}

// Modified reports whether anything under the root changed.
func (t *Tree) Modified() bool { return t.nodes[t.root].modified }

func (t *Tree) write(builder *strings.Builder, id NodeID) {
	node := &t.nodes[id]
	if !node.modified && node.Range != nil {
		builder.Write(t.source[node.Range.StartByte:node.Range.EndByte])
		return
	}
	if len(node.Children) == 0 {
		builder.WriteString(node.Token)
		return
	}
	for _, child := range node.Children {
		builder.WriteString(t.nodes[child].Leading)
		t.write(builder, child)
	}
	builder.WriteString(node.Trailing)
}
