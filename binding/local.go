package binding

import "github.com/viant/remedy/syntax"

// LocalBinding is a resolved local declaration with its scope computed once.
type LocalBinding struct {
	tree  *syntax.Tree
	decl  *Declaration
	scope *Scope
}

// NewLocal wraps a local declaration; it returns nil for members and types.
func NewLocal(t *syntax.Tree, decl *Declaration) *LocalBinding {
	if decl == nil || !decl.Kind.IsLocal() {
		return nil
	}
	return &LocalBinding{tree: t, decl: decl}
}

// ResolveLocal resolves name from the given node to a local binding, or nil.
func ResolveLocal(t *syntax.Tree, name string, from syntax.NodeID) *LocalBinding {
	return NewLocal(t, Resolve(t, name, from))
}

// Name returns the bound name.
func (b *LocalBinding) Name() string { return b.decl.Name }

// Declaration returns the declaration site.
func (b *LocalBinding) Declaration() *Declaration { return b.decl }

// Scope returns what can see the binding.
func (b *LocalBinding) Scope() Scope {
	if b.scope == nil {
		scope := b.decl.Scope(b.tree)
		b.scope = &scope
	}
	return *b.scope
}

// Initializer returns the declared initial value, or NoNode.
func (b *LocalBinding) Initializer() syntax.NodeID {
	switch b.decl.Kind {
	case BlockLocal, ForInit, Resource:
		return b.tree.Child(b.decl.Site, "value")
	}
	return syntax.NoNode
}

// DeclaredType returns the type node of the declaration, or NoNode.
func (b *LocalBinding) DeclaredType() syntax.NodeID {
	switch b.decl.Kind {
	case BlockLocal, ForInit:
		return b.tree.Child(b.decl.Owner, "type")
	case Resource, ForEach, Parameter:
		return b.tree.Child(b.decl.Site, "type")
	}
	return syntax.NoNode
}

// IsFinal reports an explicit final modifier; resources are implicitly final.
func (b *LocalBinding) IsFinal() bool {
	t := b.tree
	var holder syntax.NodeID
	switch b.decl.Kind {
	case Resource:
		return true
	case BlockLocal, ForInit:
		holder = b.decl.Owner
	case ForEach, Parameter:
		holder = b.decl.Site
	default:
		return false
	}
	for _, modifiers := range t.ChildrenOfKind(holder, syntax.KindModifiers) {
		if t.HasToken(modifiers, "final") {
			return true
		}
	}
	return t.HasToken(holder, "final")
}

// References returns every name expression in scope that resolves to this
// binding, in document order.
func (b *LocalBinding) References() []syntax.NodeID {
	t := b.tree
	scope := b.Scope()
	var candidates []syntax.NodeID
	shadowable := false
	for _, root := range scope.Roots() {
		t.Walk(root, func(id syntax.NodeID) bool {
			switch kind := t.Kind(id); {
			case kind.IsTypeDeclaration(), kind == syntax.KindClassBody:
				shadowable = true
			case kind == syntax.KindIdentifier:
				if t.Token(id) == b.decl.Name && IsNameUsage(t, id) {
					candidates = append(candidates, id)
				}
			}
			return true
		})
	}
	if !shadowable {
		return candidates
	}
	var result []syntax.NodeID
	for _, id := range candidates {
		if decl := Resolve(t, b.decl.Name, id); decl != nil && decl.Site == b.decl.Site {
			result = append(result, id)
		}
	}
	return result
}

// Assignments returns the assignment expressions in scope whose target is
// this binding.
func (b *LocalBinding) Assignments() []syntax.NodeID {
	t := b.tree
	var result []syntax.NodeID
	for _, ref := range b.References() {
		parent, child := t.UnwrapParent(ref)
		if t.Kind(parent) == syntax.KindAssignment && t.Field(child) == "left" {
			result = append(result, parent)
		}
	}
	return result
}

// Updates returns increment and decrement expressions applied to this binding.
func (b *LocalBinding) Updates() []syntax.NodeID {
	t := b.tree
	var result []syntax.NodeID
	for _, ref := range b.References() {
		parent, _ := t.UnwrapParent(ref)
		if t.Kind(parent) == syntax.KindUpdate {
			result = append(result, parent)
		}
	}
	return result
}

// IsEffectivelyFinal reports whether the binding is never changed after its
// initialization: never incremented or decremented, and either declared
// final or initialized with no assignment in scope.
func (b *LocalBinding) IsEffectivelyFinal() bool {
	if len(b.Updates()) > 0 {
		return false
	}
	if b.IsFinal() {
		return true
	}
	initialized := b.Initializer() != syntax.NoNode
	switch b.decl.Kind {
	case ForEach, Parameter, Pattern:
		initialized = true
	}
	if !initialized {
		return false
	}
	return len(b.Assignments()) == 0
}

// Captured reports whether a lambda or a local or anonymous class body
// declared within the scope reads the binding. Java only compiles such a
// capture while the binding stays effectively final.
func (b *LocalBinding) Captured() bool {
	t := b.tree
	for _, ref := range b.References() {
		for n := t.Parent(ref); n != syntax.NoNode && !t.Contains(n, b.decl.Site); n = t.Parent(n) {
			if kind := t.Kind(n); kind == syntax.KindLambda || kind == syntax.KindClassBody {
				return true
			}
		}
	}
	return false
}

// IsNameUsage reports whether an identifier is used as a variable reference
// rather than as a declared name, member name, label or type-like name.
func IsNameUsage(t *syntax.Tree, id syntax.NodeID) bool {
	switch t.Field(id) {
	case "name", "field", "key", "label", "parameters":
		return false
	}
	parent := t.Parent(id)
	switch t.Kind(parent) {
	case syntax.KindInferredParameters:
		return false
	}
	switch t.Type(parent) {
	case "scoped_identifier", "break_statement", "continue_statement", "labeled_statement",
		"type_pattern", "record_pattern_component", "enum_constant", "annotation", "marker_annotation",
		"element_value_pair", "module_declaration", "requires_module_directive":
		return false
	case "method_reference":
		return t.Index(id) == 0
	}
	return true
}
