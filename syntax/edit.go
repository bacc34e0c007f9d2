package syntax

import (
	"context"
	"fmt"
	"strings"
)

// touch marks id and its ancestors as modified.
func (t *Tree) touch(id NodeID) {
	for ; id != NoNode; id = t.nodes[id].Parent {
		t.nodes[id].modified = true
	}
}

// NewToken creates a synthesized anonymous token such as "+" or ";".
func (t *Tree) NewToken(text string) NodeID {
	return t.add(Node{Kind: KindToken, Type: text, Parent: NoNode, Token: text, modified: true})
}

// NewIdentifier creates a synthesized identifier.
func (t *Tree) NewIdentifier(name string) NodeID {
	return t.add(Node{Kind: KindIdentifier, Type: "identifier", Parent: NoNode, Token: name, modified: true})
}

// NewStringLiteral creates a synthesized string literal from raw (already
// escaped) content.
func (t *Tree) NewStringLiteral(raw string) NodeID {
	return t.add(Node{Kind: KindStringLiteral, Type: "string_literal", Parent: NoNode, Token: Quote(raw), modified: true})
}

// NewLeaf creates a synthesized leaf of an arbitrary kind, e.g. a type name.
func (t *Tree) NewLeaf(kind Kind, grammarType, text string) NodeID {
	return t.add(Node{Kind: kind, Type: grammarType, Parent: NoNode, Token: text, modified: true})
}

// NewNode creates a synthesized interior node owning children.
func (t *Tree) NewNode(kind Kind, grammarType string, children ...NodeID) NodeID {
	id := t.add(Node{Kind: kind, Type: grammarType, Parent: NoNode, modified: true})
	for _, child := range children {
		t.Detach(child)
		t.nodes[child].Parent = id
	}
	t.nodes[id].Children = append([]NodeID(nil), children...)
	return id
}

// SetToken replaces the text of a leaf.
func (t *Tree) SetToken(id NodeID, text string) {
	t.nodes[id].Token = text
	t.touch(id)
}

// SetLeading replaces the trivia preceding the node.
func (t *Tree) SetLeading(id NodeID, leading string) {
	if t.nodes[id].Leading == leading {
		return
	}
	t.nodes[id].Leading = leading
	t.touch(t.nodes[id].Parent)
}

// SetField sets the field name the node occupies in its parent.
func (t *Tree) SetField(id NodeID, field string) { t.nodes[id].Field = field }

// Detach removes the node from its parent; it keeps its own subtree.
func (t *Tree) Detach(id NodeID) {
	parent := t.nodes[id].Parent
	if parent == NoNode {
		return
	}
	children := t.nodes[parent].Children
	for i, child := range children {
		if child == id {
			t.nodes[parent].Children = append(children[:i:i], children[i+1:]...)
			break
		}
	}
	t.nodes[id].Parent = NoNode
	t.touch(parent)
}

// Replace puts repl in the slot of old; repl inherits old's trivia and field.
func (t *Tree) Replace(old, repl NodeID) {
	if old == repl {
		return
	}
	t.Detach(repl)
	parent := t.nodes[old].Parent
	t.nodes[repl].Leading = t.nodes[old].Leading
	t.nodes[repl].Field = t.nodes[old].Field
	t.nodes[repl].Parent = parent
	t.nodes[old].Parent = NoNode
	if parent == NoNode {
		if t.root == old {
			t.root = repl
		}
		return
	}
	for i, child := range t.nodes[parent].Children {
		if child == old {
			t.nodes[parent].Children[i] = repl
			break
		}
	}
	t.touch(parent)
}

// InsertChild inserts n among parent's children at index.
func (t *Tree) InsertChild(parent NodeID, index int, n NodeID) {
	t.Detach(n)
	children := t.nodes[parent].Children
	if index < 0 || index > len(children) {
		index = len(children)
	}
	updated := make([]NodeID, 0, len(children)+1)
	updated = append(updated, children[:index]...)
	updated = append(updated, n)
	updated = append(updated, children[index:]...)
	t.nodes[parent].Children = updated
	t.nodes[n].Parent = parent
	t.touch(parent)
}

// InsertBefore inserts a statement-like node ahead of anchor on its own line.
func (t *Tree) InsertBefore(anchor, n NodeID) {
	parent := t.nodes[anchor].Parent
	index := t.Index(anchor)
	leading := t.nodes[anchor].Leading
	t.InsertChild(parent, index, n)
	t.nodes[n].Field = t.nodes[anchor].Field
	t.nodes[n].Leading = leading
	if strings.Contains(leading, "\n") {
		t.nodes[anchor].Leading = "\n" + t.Indent(anchor)
	}
}

// InsertAfter inserts a statement-like node following anchor on its own line.
func (t *Tree) InsertAfter(anchor, n NodeID) {
	parent := t.nodes[anchor].Parent
	index := t.Index(anchor)
	t.InsertChild(parent, index+1, n)
	t.nodes[n].Field = t.nodes[anchor].Field
	leading := t.nodes[anchor].Leading
	if strings.Contains(leading, "\n") {
		leading = "\n" + t.Indent(anchor)
	}
	t.nodes[n].Leading = leading
}

// Clone deep-copies a subtree into synthesized nodes.
func (t *Tree) Clone(id NodeID) NodeID {
	src := t.nodes[id]
	copied := t.add(Node{
		Kind:     src.Kind,
		Type:     src.Type,
		Field:    src.Field,
		Parent:   NoNode,
		Token:    src.Token,
		Leading:  src.Leading,
		Trailing: src.Trailing,
		modified: true,
	})
	children := make([]NodeID, 0, len(src.Children))
	for _, child := range src.Children {
		c := t.Clone(child)
		t.nodes[c].Parent = copied
		children = append(children, c)
	}
	t.nodes[copied].Children = children
	return copied
}

// graft copies a subtree of another tree into t as synthesized nodes.
func (t *Tree) graft(from *Tree, id NodeID) NodeID {
	src := from.nodes[id]
	copied := t.add(Node{
		Kind:     src.Kind,
		Type:     src.Type,
		Field:    src.Field,
		Parent:   NoNode,
		Token:    src.Token,
		Leading:  src.Leading,
		Trailing: src.Trailing,
		modified: true,
	})
	children := make([]NodeID, 0, len(src.Children))
	for _, child := range src.Children {
		c := t.graft(from, child)
		t.nodes[c].Parent = copied
		children = append(children, c)
	}
	t.nodes[copied].Children = children
	return copied
}

const (
	statementSnippet  = "class Snippet {\n void snippet() {\n%s\n }\n}\n"
	expressionSnippet = "class Snippet {\n Object snippet = %s;\n}\n"
)

// ParseStatement parses a single Java statement into a synthesized subtree.
func (t *Tree) ParseStatement(ctx context.Context, text string) (NodeID, error) {
	snippet, err := Parse(ctx, "snippet", []byte(fmt.Sprintf(statementSnippet, text)))
	if err != nil {
		return NoNode, fmt.Errorf("invalid statement %q: %w", text, err)
	}
	block := snippet.First(snippet.Root(), KindBlock)
	if block == NoNode {
		return NoNode, fmt.Errorf("invalid statement %q", text)
	}
	statements := snippet.NamedChildren(block)
	if len(statements) != 1 {
		return NoNode, fmt.Errorf("expected one statement in %q, found %d", text, len(statements))
	}
	id := t.graft(snippet, statements[0])
	t.nodes[id].Leading = ""
	t.nodes[id].Field = ""
	return id, nil
}

// ParseExpression parses a single Java expression into a synthesized subtree.
func (t *Tree) ParseExpression(ctx context.Context, text string) (NodeID, error) {
	snippet, err := Parse(ctx, "snippet", []byte(fmt.Sprintf(expressionSnippet, text)))
	if err != nil {
		return NoNode, fmt.Errorf("invalid expression %q: %w", text, err)
	}
	declarator := snippet.First(snippet.Root(), KindDeclarator)
	if declarator == NoNode {
		return NoNode, fmt.Errorf("invalid expression %q", text)
	}
	value := snippet.Child(declarator, "value")
	if value == NoNode {
		return NoNode, fmt.Errorf("invalid expression %q", text)
	}
	id := t.graft(snippet, value)
	t.nodes[id].Leading = ""
	t.nodes[id].Field = ""
	return id, nil
}

// Imports returns the imported names, e.g. "java.sql.Connection" or "java.sql.*".
func (t *Tree) Imports() []string {
	var result []string
	for _, child := range t.ChildrenOfKind(t.root, KindImport) {
		text := strings.TrimSpace(t.Text(child))
		text = strings.TrimPrefix(text, "import")
		text = strings.TrimSuffix(text, ";")
		text = strings.TrimSpace(text)
		text = strings.TrimPrefix(text, "static ")
		result = append(result, strings.Join(strings.Fields(text), ""))
	}
	return result
}

// AddImport adds a single-type import unless the type is already visible
// through an identical or on-demand import. It reports whether it changed the tree.
func (t *Tree) AddImport(ctx context.Context, qualified string) (bool, error) {
	pkg := qualified
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		pkg = qualified[:i]
	}
	for _, name := range t.Imports() {
		if name == qualified || name == pkg+".*" {
			return false, nil
		}
	}
	stmt, err := t.ParseImport(ctx, qualified)
	if err != nil {
		return false, err
	}
	imports := t.ChildrenOfKind(t.root, KindImport)
	if len(imports) > 0 {
		last := imports[len(imports)-1]
		t.InsertChild(t.root, t.Index(last)+1, stmt)
		t.nodes[stmt].Leading = "\n"
		return true, nil
	}
	if pkgDecl := t.First(t.root, KindPackage); pkgDecl != NoNode && t.Parent(pkgDecl) == t.root {
		t.InsertChild(t.root, t.Index(pkgDecl)+1, stmt)
		t.nodes[stmt].Leading = "\n\n"
		return true, nil
	}
	children := t.nodes[t.root].Children
	t.InsertChild(t.root, 0, stmt)
	t.nodes[stmt].Leading = ""
	if len(children) > 0 {
		first := t.nodes[t.root].Children[1]
		t.nodes[first].Leading = "\n\n" + t.nodes[first].Leading
	}
	return true, nil
}

// ParseImport builds a synthesized import declaration.
func (t *Tree) ParseImport(ctx context.Context, qualified string) (NodeID, error) {
	snippet, err := Parse(ctx, "snippet", []byte("import "+qualified+";\n"))
	if err != nil {
		return NoNode, fmt.Errorf("invalid import %q: %w", qualified, err)
	}
	decl := snippet.First(snippet.Root(), KindImport)
	if decl == NoNode {
		return NoNode, fmt.Errorf("invalid import %q", qualified)
	}
	id := t.graft(snippet, decl)
	t.nodes[id].Leading = ""
	return id, nil
}

// Arguments returns the expressions of an argument list.
func (t *Tree) Arguments(argList NodeID) []NodeID {
	if argList == NoNode {
		return nil
	}
	return t.NamedChildren(argList)
}

// SetArguments rebuilds an argument list around args, keeping its parentheses.
func (t *Tree) SetArguments(argList NodeID, args []NodeID) {
	var open, closing NodeID = NoNode, NoNode
	for _, child := range t.nodes[argList].Children {
		if t.nodes[child].Kind != KindToken {
			continue
		}
		switch t.nodes[child].Token {
		case "(":
			open = child
		case ")":
			closing = child
		}
	}
	for _, child := range append([]NodeID(nil), t.nodes[argList].Children...) {
		if child != open && child != closing {
			t.Detach(child)
		}
	}
	for _, arg := range args {
		t.Detach(arg)
	}
	if open == NoNode {
		open = t.NewToken("(")
	}
	if closing == NoNode {
		closing = t.NewToken(")")
	}
	children := []NodeID{open}
	for i, arg := range args {
		if i > 0 {
			comma := t.NewToken(",")
			t.nodes[comma].Parent = argList
			children = append(children, comma)
			if t.nodes[arg].Leading == "" {
				t.nodes[arg].Leading = " "
			}
		} else if !containsNewline(t.nodes[arg].Leading) {
			t.nodes[arg].Leading = ""
		}
		t.nodes[arg].Parent = argList
		t.nodes[arg].Field = ""
		children = append(children, arg)
	}
	t.nodes[closing].Leading = ""
	t.nodes[open].Parent = argList
	t.nodes[closing].Parent = argList
	t.nodes[argList].Children = append(children, closing)
	t.nodes[argList].Trailing = ""
	t.touch(argList)
}

// Reindent shifts every line break inside the subtree by unit. The subtree
// root's own leading trivia is left to the caller.
func (t *Tree) Reindent(id NodeID, unit string) {
	t.Walk(id, func(n NodeID) bool {
		node := &t.nodes[n]
		if n != id {
			node.Leading = strings.ReplaceAll(node.Leading, "\n", "\n"+unit)
		}
		node.Trailing = strings.ReplaceAll(node.Trailing, "\n", "\n"+unit)
		if node.Kind == KindComment {
			node.Token = strings.ReplaceAll(node.Token, "\n", "\n"+unit)
		}
		node.modified = true
		return true
	})
	t.touch(id)
}

// Remove detaches a statement-like node. When it started its own line the
// line is dropped with it.
func (t *Tree) Remove(id NodeID) {
	parent := t.nodes[id].Parent
	if parent == NoNode {
		return
	}
	index := t.Index(id)
	children := t.nodes[parent].Children
	if index+1 < len(children) && containsNewline(t.nodes[id].Leading) {
		next := children[index+1]
		if !containsNewline(t.nodes[next].Leading) {
			t.nodes[next].Leading = t.nodes[id].Leading
		}
	}
	t.Detach(id)
}

func containsNewline(s string) bool { return strings.IndexByte(s, '\n') >= 0 }
