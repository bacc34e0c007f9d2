package binding

import "github.com/viant/remedy/syntax"

// Resolve finds the declaration of name visible from the given node. It
// walks outward through enclosing constructs, closer declarations winning,
// then falls back to members of enclosing types and top-level types. It
// returns nil when the name is not declared in the file.
func Resolve(t *syntax.Tree, name string, from syntax.NodeID) *Declaration {
	child := from
	for parent := t.Parent(from); parent != syntax.NoNode; child, parent = parent, t.Parent(parent) {
		if decl := declaredIn(t, name, parent, child); decl != nil {
			return decl
		}
	}
	return nil
}

func declaredIn(t *syntax.Tree, name string, parent, child syntax.NodeID) *Declaration {
	switch t.Kind(parent) {
	case syntax.KindBlock, syntax.KindConstructorBody, syntax.KindSwitchGroup:
		return declaredBefore(t, name, parent, child)
	case syntax.KindLocalVariable:
		for _, declarator := range reversed(declaratorsBefore(t, parent, child)) {
			if t.Name(declarator) == name {
				return &Declaration{Kind: localKind(t, parent), Name: name, Site: declarator, NameNode: t.Child(declarator, "name"), Owner: parent}
			}
		}
	case syntax.KindFor:
		if t.Field(child) == "init" {
			return nil
		}
		for _, init := range t.ChildrenByField(parent, "init") {
			if t.Kind(init) != syntax.KindLocalVariable {
				continue
			}
			if decl := declaratorNamed(t, name, init); decl != nil {
				decl.Kind = ForInit
				return decl
			}
		}
	case syntax.KindForEach:
		if t.Field(child) == "body" && t.Name(parent) == name {
			return &Declaration{Kind: ForEach, Name: name, Site: parent, NameNode: t.Child(parent, "name"), Owner: parent}
		}
	case syntax.KindResourceSpec:
		return resourceNamed(t, name, resourcesBefore(t, parent, child))
	case syntax.KindTryWithResources:
		if t.Field(child) != "body" {
			return nil
		}
		if spec := t.Child(parent, "resources"); spec != syntax.NoNode {
			return resourceNamed(t, name, t.ChildrenOfKind(spec, syntax.KindResource))
		}
	case syntax.KindCatch:
		if t.Field(child) != "body" {
			return nil
		}
		for _, param := range t.ChildrenOfKind(parent, syntax.KindCatchParameter) {
			if t.Name(param) == name {
				return &Declaration{Kind: Parameter, Name: name, Site: param, NameNode: t.Child(param, "name"), Owner: parent}
			}
		}
	case syntax.KindLambda:
		if t.Field(child) == "body" {
			return lambdaParameter(t, name, parent)
		}
	case syntax.KindMethod, syntax.KindConstructor:
		if t.Field(child) == "body" {
			return formalParameter(t, name, parent, t.Child(parent, "parameters"))
		}
	case syntax.KindIf:
		if t.Field(child) == "consequence" {
			return patternIn(t, name, t.Child(parent, "condition"), parent)
		}
	case syntax.KindBinary:
		if t.Field(child) == "right" && t.Operator(parent) == "&&" {
			return patternIn(t, name, t.Child(parent, "left"), parent)
		}
	case syntax.KindClassBody:
		return memberNamed(t, name, parent)
	case syntax.KindRecord:
		if t.Field(child) == "body" {
			if decl := formalParameter(t, name, parent, t.Child(parent, "parameters")); decl != nil {
				decl.Kind = Field
				return decl
			}
		}
	case syntax.KindProgram:
		for _, typeDecl := range t.NamedChildren(parent) {
			if t.Kind(typeDecl).IsTypeDeclaration() && t.Name(typeDecl) == name {
				return &Declaration{Kind: TopLevelType, Name: name, Site: typeDecl, NameNode: t.Child(typeDecl, "name"), Owner: parent}
			}
		}
	}
	return nil
}

// declaredBefore checks the block statements preceding child, closest first.
func declaredBefore(t *syntax.Tree, name string, block, child syntax.NodeID) *Declaration {
	children := t.Children(block)
	index := len(children)
	for i, c := range children {
		if c == child {
			index = i
			break
		}
	}
	for i := index - 1; i >= 0; i-- {
		stmt := children[i]
		switch kind := t.Kind(stmt); {
		case kind == syntax.KindLocalVariable:
			if decl := declaratorNamed(t, name, stmt); decl != nil {
				return decl
			}
		case kind.IsTypeDeclaration():
			if t.Name(stmt) == name {
				return &Declaration{Kind: LocalType, Name: name, Site: stmt, NameNode: t.Child(stmt, "name"), Owner: block}
			}
		}
	}
	return nil
}

func declaratorNamed(t *syntax.Tree, name string, declaration syntax.NodeID) *Declaration {
	declarators := t.ChildrenByField(declaration, "declarator")
	for i := len(declarators) - 1; i >= 0; i-- {
		if t.Name(declarators[i]) == name {
			return &Declaration{Kind: localKind(t, declaration), Name: name, Site: declarators[i], NameNode: t.Child(declarators[i], "name"), Owner: declaration}
		}
	}
	return nil
}

func declaratorsBefore(t *syntax.Tree, declaration, child syntax.NodeID) []syntax.NodeID {
	var result []syntax.NodeID
	for _, declarator := range t.ChildrenByField(declaration, "declarator") {
		if declarator == child {
			break
		}
		result = append(result, declarator)
	}
	return result
}

func localKind(t *syntax.Tree, declaration syntax.NodeID) Kind {
	if t.Kind(t.Parent(declaration)) == syntax.KindFor && t.Field(declaration) == "init" {
		return ForInit
	}
	return BlockLocal
}

func resourcesBefore(t *syntax.Tree, spec, child syntax.NodeID) []syntax.NodeID {
	var result []syntax.NodeID
	for _, resource := range t.ChildrenOfKind(spec, syntax.KindResource) {
		if resource == child {
			break
		}
		result = append(result, resource)
	}
	return result
}

func resourceNamed(t *syntax.Tree, name string, resources []syntax.NodeID) *Declaration {
	for i := len(resources) - 1; i >= 0; i-- {
		resource := resources[i]
		if nameNode := t.Child(resource, "name"); nameNode != syntax.NoNode && t.Text(nameNode) == name {
			owner := t.Parent(t.Parent(resource))
			return &Declaration{Kind: Resource, Name: name, Site: resource, NameNode: nameNode, Owner: owner}
		}
	}
	return nil
}

func lambdaParameter(t *syntax.Tree, name string, lambda syntax.NodeID) *Declaration {
	params := t.Child(lambda, "parameters")
	switch t.Kind(params) {
	case syntax.KindIdentifier:
		if t.Text(params) == name {
			return &Declaration{Kind: Parameter, Name: name, Site: params, NameNode: params, Owner: lambda}
		}
	case syntax.KindInferredParameters:
		for _, id := range t.ChildrenOfKind(params, syntax.KindIdentifier) {
			if t.Text(id) == name {
				return &Declaration{Kind: Parameter, Name: name, Site: id, NameNode: id, Owner: lambda}
			}
		}
	case syntax.KindFormalParameters:
		return formalParameter(t, name, lambda, params)
	}
	return nil
}

func formalParameter(t *syntax.Tree, name string, owner, params syntax.NodeID) *Declaration {
	if params == syntax.NoNode {
		return nil
	}
	for _, param := range t.NamedChildren(params) {
		switch t.Kind(param) {
		case syntax.KindFormalParameter:
			if t.Name(param) == name {
				return &Declaration{Kind: Parameter, Name: name, Site: param, NameNode: t.Child(param, "name"), Owner: owner}
			}
		case syntax.KindSpreadParameter:
			declarator := t.First(param, syntax.KindDeclarator)
			if declarator != syntax.NoNode && t.Name(declarator) == name {
				return &Declaration{Kind: Parameter, Name: name, Site: param, NameNode: t.Child(declarator, "name"), Owner: owner}
			}
		}
	}
	return nil
}

// patternIn finds an instanceof pattern binding introduced by expr.
func patternIn(t *syntax.Tree, name string, expr, owner syntax.NodeID) *Declaration {
	var found *Declaration
	t.Walk(expr, func(id syntax.NodeID) bool {
		if found != nil {
			return false
		}
		switch t.Kind(id) {
		case syntax.KindLambda, syntax.KindClassBody:
			return false
		case syntax.KindInstanceOf:
			if nameNode := t.Child(id, "name"); nameNode != syntax.NoNode && t.Text(nameNode) == name {
				found = &Declaration{Kind: Pattern, Name: name, Site: id, NameNode: nameNode, Owner: owner}
				return false
			}
		case syntax.KindIdentifier:
			switch t.Type(t.Parent(id)) {
			case "type_pattern", "record_pattern_component":
				if t.Text(id) == name {
					site := t.Enclosing(id, syntax.KindInstanceOf)
					found = &Declaration{Kind: Pattern, Name: name, Site: site, NameNode: id, Owner: owner}
				}
			}
		}
		return true
	})
	return found
}

func memberNamed(t *syntax.Tree, name string, body syntax.NodeID) *Declaration {
	for _, member := range t.NamedChildren(body) {
		switch kind := t.Kind(member); {
		case kind == syntax.KindField:
			for _, declarator := range t.ChildrenByField(member, "declarator") {
				if t.Name(declarator) == name {
					return &Declaration{Kind: Field, Name: name, Site: declarator, NameNode: t.Child(declarator, "name"), Owner: member}
				}
			}
		case kind.IsTypeDeclaration():
			if t.Name(member) == name {
				return &Declaration{Kind: TopLevelType, Name: name, Site: member, NameNode: t.Child(member, "name"), Owner: body}
			}
		}
	}
	return nil
}

func reversed(ids []syntax.NodeID) []syntax.NodeID {
	result := make([]syntax.NodeID, len(ids))
	for i, id := range ids {
		result[len(ids)-1-i] = id
	}
	return result
}
