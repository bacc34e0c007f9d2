package binding

import "github.com/viant/remedy/syntax"

// Scope computes the expressions and statements that can see the
// declaration, following the rule of its declaration-site kind.
func (d *Declaration) Scope(t *syntax.Tree) Scope {
	switch d.Kind {
	case BlockLocal:
		return Scope{
			Expressions: laterInitializers(t, d.Owner, d.Site),
			Statements:  siblingsAfter(t, d.Owner),
		}
	case ForInit:
		forStmt := t.Parent(d.Owner)
		scope := Scope{Expressions: laterInitializers(t, d.Owner, d.Site)}
		if condition := t.Child(forStmt, "condition"); condition != syntax.NoNode {
			scope.Expressions = append(scope.Expressions, condition)
		}
		scope.Expressions = append(scope.Expressions, t.ChildrenByField(forStmt, "update")...)
		if body := t.Child(forStmt, "body"); body != syntax.NoNode {
			scope.Statements = append(scope.Statements, body)
		}
		return scope
	case ForEach:
		return bodyScope(t, d.Owner)
	case Resource:
		scope := bodyScope(t, d.Owner)
		spec := t.Parent(d.Site)
		after := false
		for _, resource := range t.ChildrenOfKind(spec, syntax.KindResource) {
			if after {
				scope.Expressions = append(scope.Expressions, resource)
			}
			if resource == d.Site {
				after = true
			}
		}
		return scope
	case Parameter:
		return bodyScope(t, d.Owner)
	case Pattern:
		return patternScope(t, d.Site)
	case LocalType:
		return Scope{Statements: siblingsAfter(t, d.Site)}
	}
	return Scope{}
}

func bodyScope(t *syntax.Tree, owner syntax.NodeID) Scope {
	body := t.Child(owner, "body")
	if body == syntax.NoNode {
		return Scope{}
	}
	switch t.Kind(body) {
	case syntax.KindBlock, syntax.KindConstructorBody:
		return Scope{Statements: []syntax.NodeID{body}}
	}
	if t.Kind(owner) == syntax.KindLambda {
		return Scope{Expressions: []syntax.NodeID{body}}
	}
	return Scope{Statements: []syntax.NodeID{body}}
}

func laterInitializers(t *syntax.Tree, declaration, site syntax.NodeID) []syntax.NodeID {
	var result []syntax.NodeID
	after := false
	for _, declarator := range t.ChildrenByField(declaration, "declarator") {
		if after {
			if value := t.Child(declarator, "value"); value != syntax.NoNode {
				result = append(result, value)
			}
		}
		if declarator == site {
			after = true
		}
	}
	return result
}

func siblingsAfter(t *syntax.Tree, stmt syntax.NodeID) []syntax.NodeID {
	parent := t.Parent(stmt)
	if parent == syntax.NoNode {
		return nil
	}
	var result []syntax.NodeID
	after := false
	for _, sibling := range t.NamedChildren(parent) {
		if after {
			result = append(result, sibling)
		}
		if sibling == stmt {
			after = true
		}
	}
	return result
}

// patternScope covers the remaining operands of the enclosing && chain and
// the consequence of an if statement whose condition introduces the pattern.
func patternScope(t *syntax.Tree, site syntax.NodeID) Scope {
	var scope Scope
	child := site
	for parent := t.Parent(site); parent != syntax.NoNode; child, parent = parent, t.Parent(parent) {
		switch t.Kind(parent) {
		case syntax.KindParenthesized:
			continue
		case syntax.KindBinary:
			if t.Operator(parent) != "&&" {
				return scope
			}
			if t.Field(child) == "left" {
				if right := t.Child(parent, "right"); right != syntax.NoNode {
					scope.Expressions = append(scope.Expressions, right)
				}
			}
			continue
		case syntax.KindIf:
			if t.Field(child) == "condition" {
				if consequence := t.Child(parent, "consequence"); consequence != syntax.NoNode {
					scope.Statements = append(scope.Statements, consequence)
				}
			}
		}
		return scope
	}
	return scope
}
