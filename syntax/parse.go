package syntax

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// ErrSyntax reports source that tree-sitter could not parse cleanly.
var ErrSyntax = errors.New("syntax error")

// Parse parses Java source into an arena tree. Source containing ERROR or
// MISSING nodes is rejected with ErrSyntax.
func Parse(ctx context.Context, path string, src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())

	tsTree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	rootNode := tsTree.RootNode()
	if rootNode.HasError() {
		pos := firstError(rootNode)
		return nil, fmt.Errorf("%w: %s:%d:%d", ErrSyntax, path, pos.Line, pos.Column)
	}

	t := &Tree{Path: path, source: src}
	start, end := rootNode.StartByte(), rootNode.EndByte()
	t.root = t.build(rootNode, NoNode, "", start)
	t.head = string(src[:start])
	t.tail = string(src[end:])
	return t, nil
}

func (t *Tree) add(node Node) NodeID {
	t.nodes = append(t.nodes, node)
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) build(n *sitter.Node, parent NodeID, field string, leadingFrom uint32) NodeID {
	start, end := n.StartByte(), n.EndByte()
	leading := ""
	if leadingFrom < start {
		leading = string(t.source[leadingFrom:start])
	}
	id := t.add(Node{
		Kind:    KindOf(n.Type(), n.IsNamed()),
		Type:    n.Type(),
		Field:   field,
		Parent:  parent,
		Leading: leading,
		Range:   rangeOf(n),
	})
	if n.ChildCount() == 0 || atomic[n.Type()] {
		t.nodes[id].Token = n.Content(t.source)
		return id
	}

	var children []NodeID
	prev := start
	cursor := sitter.NewTreeCursor(n)
	if cursor.GoToFirstChild() {
		for {
			child := cursor.CurrentNode()
			children = append(children, t.build(child, id, cursor.CurrentFieldName(), prev))
			if child.EndByte() > prev {
				prev = child.EndByte()
			}
			if !cursor.GoToNextSibling() {
				break
			}
		}
	}
	t.nodes[id].Children = children
	if prev < end {
		t.nodes[id].Trailing = string(t.source[prev:end])
	}
	return id
}

func rangeOf(n *sitter.Node) *Range {
	start, end := n.StartPoint(), n.EndPoint()
	return &Range{
		Start:     Position{Line: int(start.Row) + 1, Column: int(start.Column) + 1},
		End:       Position{Line: int(end.Row) + 1, Column: int(end.Column) + 1},
		StartByte: int(n.StartByte()),
		EndByte:   int(n.EndByte()),
	}
}

// firstError locates the first ERROR or MISSING node in document order.
func firstError(n *sitter.Node) Position {
	if n.Type() == "ERROR" || n.IsMissing() {
		point := n.StartPoint()
		return Position{Line: int(point.Row) + 1, Column: int(point.Column) + 1}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		return firstError(child)
	}
	point := n.StartPoint()
	return Position{Line: int(point.Row) + 1, Column: int(point.Column) + 1}
}
