package binding

import "github.com/viant/remedy/syntax"

const maxValueDepth = 16

// SingleValue follows a name through local bindings that hold a single
// value: either one initializer and no assignment, or no initializer (an
// empty string literal counts as none here) and exactly one plain
// assignment. Anything else returns expr unchanged.
func SingleValue(t *syntax.Tree, expr syntax.NodeID) syntax.NodeID {
	return singleValue(t, expr, false, maxValueDepth)
}

// SingleNonEmptyValue is SingleValue with an empty string initializer never
// taken as the value, so `String q = "";` alone leaves q unresolved.
func SingleNonEmptyValue(t *syntax.Tree, expr syntax.NodeID) syntax.NodeID {
	return singleValue(t, expr, true, maxValueDepth)
}

func singleValue(t *syntax.Tree, expr syntax.NodeID, skipEmpty bool, depth int) syntax.NodeID {
	if depth == 0 || t.Kind(expr) != syntax.KindIdentifier {
		return expr
	}
	local := ResolveLocal(t, t.Token(expr), expr)
	if local == nil {
		return expr
	}
	value := local.assignedValue(skipEmpty)
	if value == syntax.NoNode || t.Contains(value, expr) {
		return expr
	}
	return singleValue(t, value, skipEmpty, depth-1)
}

// AssignedValue returns the only value the binding ever holds, or NoNode.
func (b *LocalBinding) AssignedValue() syntax.NodeID {
	return b.assignedValue(false)
}

func (b *LocalBinding) assignedValue(skipEmpty bool) syntax.NodeID {
	switch b.decl.Kind {
	case BlockLocal, ForInit, Resource:
	default:
		return syntax.NoNode
	}
	t := b.tree
	if len(b.Updates()) > 0 {
		return syntax.NoNode
	}
	initializer := b.Initializer()
	empty := t.IsEmptyString(initializer)
	assignments := b.Assignments()
	switch {
	case initializer != syntax.NoNode && len(assignments) == 0:
		if skipEmpty && empty {
			return syntax.NoNode
		}
		return initializer
	case (initializer == syntax.NoNode || empty) && len(assignments) == 1:
		if t.Operator(assignments[0]) != "=" {
			return syntax.NoNode
		}
		return t.Child(assignments[0], "right")
	}
	return syntax.NoNode
}
