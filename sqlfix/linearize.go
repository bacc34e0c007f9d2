package sqlfix

import (
	"github.com/viant/remedy/binding"
	"github.com/viant/remedy/syntax"
)

const maxExpansionDepth = 16

// Leaf is one operand of a flattened string concatenation.
type Leaf struct {
	// Node is the expression the leaf evaluates, possibly found through a
	// local variable's single value.
	Node    syntax.NodeID
	Literal bool
	// Raw is the escaped content of a literal leaf.
	Raw string
	// Occurrence is the outermost variable reference Node stands in for, or NoNode.
	Occurrence syntax.NodeID
}

// Linearization decomposes a query expression into the leaves whose
// concatenation rebuilds it.
type Linearization struct {
	Root   syntax.NodeID
	Leaves []Leaf
	// Substitutions maps every expanded variable reference to the value
	// expression it was expanded into.
	Substitutions map[syntax.NodeID]syntax.NodeID
}

// Linearize flattens string concatenations and parentheses under root and
// expands local variables that hold a single value.
func Linearize(t *syntax.Tree, root syntax.NodeID) *Linearization {
	l := &Linearization{Root: root, Substitutions: map[syntax.NodeID]syntax.NodeID{}}
	l.add(t, root, maxExpansionDepth)
	return l
}

func (l *Linearization) add(t *syntax.Tree, expr syntax.NodeID, depth int) {
	inner := t.Unwrap(expr)
	switch t.Kind(inner) {
	case syntax.KindStringLiteral:
		if raw, ok := t.StringValue(inner); ok {
			l.Leaves = append(l.Leaves, Leaf{Node: inner, Literal: true, Raw: raw, Occurrence: syntax.NoNode})
			return
		}
	case syntax.KindBinary:
		if isConcatenation(t, inner, depth) {
			l.add(t, t.Child(inner, "left"), depth)
			l.add(t, t.Child(inner, "right"), depth)
			return
		}
	case syntax.KindIdentifier:
		if depth > 0 {
			if value := t.Unwrap(binding.SingleNonEmptyValue(t, inner)); value != inner && !t.Contains(value, inner) {
				before := len(l.Leaves)
				l.Substitutions[inner] = value
				l.add(t, value, depth-1)
				if len(l.Leaves) == before+1 {
					l.Leaves[before].Occurrence = inner
				}
				return
			}
		}
	}
	l.Leaves = append(l.Leaves, Leaf{Node: expr, Occurrence: syntax.NoNode})
}

// HasLiteral reports whether any leaf is a string literal.
func (l *Linearization) HasLiteral() bool {
	for _, leaf := range l.Leaves {
		if leaf.Literal {
			return true
		}
	}
	return false
}

// isConcatenation reports whether a + expression concatenates strings, which
// holds when either operand is known to be a String.
func isConcatenation(t *syntax.Tree, expr syntax.NodeID, depth int) bool {
	if t.Kind(expr) != syntax.KindBinary || t.Operator(expr) != "+" {
		return false
	}
	return isString(t, t.Child(expr, "left"), depth) || isString(t, t.Child(expr, "right"), depth)
}

// isString reports whether expr is known to evaluate to a String.
func isString(t *syntax.Tree, expr syntax.NodeID, depth int) bool {
	if depth <= 0 {
		return false
	}
	expr = t.Unwrap(expr)
	switch t.Kind(expr) {
	case syntax.KindStringLiteral:
		return true
	case syntax.KindBinary:
		return isConcatenation(t, expr, depth-1)
	case syntax.KindIdentifier:
		local := binding.ResolveLocal(t, t.Token(expr), expr)
		if local == nil {
			return false
		}
		if isStringType(t.Text(local.DeclaredType())) {
			return true
		}
		if value := local.AssignedValue(); value != syntax.NoNode && !t.Contains(value, expr) {
			return isString(t, value, depth-1)
		}
	}
	return false
}

func isStringType(text string) bool {
	return text == "String" || text == "java.lang.String"
}
