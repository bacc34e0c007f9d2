package sqlfix

import "github.com/viant/remedy/syntax"

type anchorKind int

const (
	anchorStatement anchorKind = iota
	anchorDeclaration
	anchorAssignment
	anchorReturn
	anchorResource
)

// anchor is the statement new statements are inserted before.
type anchor struct {
	kind      anchorKind
	statement syntax.NodeID
	// resource holds the execute call of a try-with-resources anchor.
	resource syntax.NodeID
}

// findAnchor accepts an execute call that is a whole expression statement,
// a local variable initializer, the right side of an assignment statement, a
// returned value or a resource initializer. Other positions return nil.
func findAnchor(t *syntax.Tree, call syntax.NodeID) *anchor {
	parent, child := t.UnwrapParent(call)
	var result *anchor
	switch t.Kind(parent) {
	case syntax.KindExpressionStatement:
		result = &anchor{kind: anchorStatement, statement: parent}
	case syntax.KindDeclarator:
		declaration := t.Parent(parent)
		if t.Field(child) == "value" && t.Kind(declaration) == syntax.KindLocalVariable {
			result = &anchor{kind: anchorDeclaration, statement: declaration}
		}
	case syntax.KindAssignment:
		if t.Field(child) == "right" && t.Operator(parent) == "=" {
			if stmt, _ := t.UnwrapParent(parent); t.Kind(stmt) == syntax.KindExpressionStatement {
				result = &anchor{kind: anchorAssignment, statement: stmt}
			}
		}
	case syntax.KindReturn:
		result = &anchor{kind: anchorReturn, statement: parent}
	case syntax.KindResource:
		if t.Field(child) == "value" {
			result = &anchor{kind: anchorResource, statement: t.Parent(t.Parent(parent)), resource: parent}
		}
	}
	if result == nil || !inBlock(t, result.statement) {
		return nil
	}
	return result
}

func inBlock(t *syntax.Tree, stmt syntax.NodeID) bool {
	switch t.Kind(t.Parent(stmt)) {
	case syntax.KindBlock, syntax.KindConstructorBody, syntax.KindSwitchGroup:
		return true
	}
	return false
}

// previousResource returns the resource declared before the anchoring one,
// or NoNode when the execute call is in the first resource.
func (a *anchor) previousResource(t *syntax.Tree) syntax.NodeID {
	previous := syntax.NoNode
	for _, resource := range t.ChildrenOfKind(t.Parent(a.resource), syntax.KindResource) {
		if resource == a.resource {
			return previous
		}
		previous = resource
	}
	return previous
}

// splitResources moves the anchoring resource and the ones after it, with
// the try body, into a nested try statement that becomes the new anchor:
//
//	try (A a = ...; B b = f(a)) { body }
//
// becomes
//
//	try (A a = ...) {
//	    try (B b = f(a)) { body }
//	}
//
// Catch and finally clauses stay on the outer statement, so resources still
// close in reverse order before any handler runs.
func (a *anchor) splitResources(t *syntax.Tree) {
	outer := a.statement
	spec := t.Parent(a.resource)
	body := t.Child(outer, "body")
	indent := t.Indent(outer)
	unit := indentUnit(t, body, indent)

	var moved []syntax.NodeID
	after := false
	for _, child := range append([]syntax.NodeID(nil), t.Children(spec)...) {
		if child == a.resource {
			after = true
		}
		if !after {
			continue
		}
		if t.Kind(child) == syntax.KindToken && t.Token(child) == ")" {
			break
		}
		t.Detach(child)
		if t.Kind(child) == syntax.KindResource {
			moved = append(moved, child)
		}
	}
	// drop the separator left after the last outer resource
	children := t.Children(spec)
	for i := len(children) - 1; i >= 0; i-- {
		if t.Kind(children[i]) == syntax.KindToken && t.Token(children[i]) == ";" {
			t.Detach(children[i])
			continue
		}
		if t.Kind(children[i]) != syntax.KindToken {
			break
		}
	}

	innerChildren := []syntax.NodeID{t.NewToken("(")}
	for i, resource := range moved {
		if i > 0 {
			separator := t.NewToken(";")
			innerChildren = append(innerChildren, separator)
			t.SetLeading(resource, " ")
		} else {
			t.SetLeading(resource, "")
		}
		innerChildren = append(innerChildren, resource)
	}
	innerChildren = append(innerChildren, t.NewToken(")"))
	innerSpec := t.NewNode(syntax.KindResourceSpec, "resource_specification", innerChildren...)
	t.SetField(innerSpec, "resources")
	t.SetLeading(innerSpec, " ")

	bodyLeading := t.Leading(body)
	t.Detach(body)
	t.Reindent(body, unit)
	try := t.NewToken("try")
	inner := t.NewNode(syntax.KindTryWithResources, "try_with_resources_statement", try, innerSpec, body)
	t.SetField(body, "body")
	t.SetLeading(body, " ")

	open := t.NewToken("{")
	closing := t.NewToken("}")
	block := t.NewNode(syntax.KindBlock, "block", open, inner, closing)
	t.SetLeading(inner, "\n"+indent+unit)
	t.SetLeading(closing, "\n"+indent)
	t.InsertChild(outer, t.Index(spec)+1, block)
	t.SetField(block, "body")
	t.SetLeading(block, bodyLeading)

	a.statement = inner
}

// indentUnit infers one indentation level from the first statement of a block.
func indentUnit(t *syntax.Tree, block syntax.NodeID, indent string) string {
	for _, stmt := range t.NamedChildren(block) {
		if inner := t.Indent(stmt); len(inner) > len(indent) && inner[:len(indent)] == indent {
			return inner[len(indent):]
		}
	}
	return "    "
}
