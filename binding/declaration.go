// Package binding resolves names to their declarations and computes where a
// local binding is visible and how it is used.
package binding

import "github.com/viant/remedy/syntax"

// Kind is the declaration-site variant of a binding.
type Kind uint8

const (
	BlockLocal Kind = iota + 1
	ForInit
	ForEach
	Resource
	Parameter
	Pattern
	LocalType
	Field
	TopLevelType
)

var kindNames = [...]string{
	BlockLocal:   "block-local",
	ForInit:      "for-init",
	ForEach:      "for-each",
	Resource:     "resource",
	Parameter:    "parameter",
	Pattern:      "pattern",
	LocalType:    "local-type",
	Field:        "field",
	TopLevelType: "type",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// IsLocal reports whether the kind denotes a local binding.
func (k Kind) IsLocal() bool { return k >= BlockLocal && k <= LocalType }

// Declaration locates the site that introduces a name.
//
// Site is the declarator, parameter, resource, for-each statement,
// instanceof expression or type declaration carrying the name; Owner is the
// construct whose shape decides the scope (the local variable declaration,
// the for or try statement, the callable, catch clause, if statement or
// block).
type Declaration struct {
	Kind     Kind
	Name     string
	Site     syntax.NodeID
	NameNode syntax.NodeID
	Owner    syntax.NodeID
}

// Scope is the ordered set of expressions and statements that can see a
// binding, all strictly after its declaration point.
type Scope struct {
	Expressions []syntax.NodeID
	Statements  []syntax.NodeID
}

// Roots returns expressions followed by statements.
func (s Scope) Roots() []syntax.NodeID {
	roots := make([]syntax.NodeID, 0, len(s.Expressions)+len(s.Statements))
	roots = append(roots, s.Expressions...)
	return append(roots, s.Statements...)
}

// Contains reports whether id lies within the scope.
func (s Scope) Contains(t *syntax.Tree, id syntax.NodeID) bool {
	for _, root := range s.Roots() {
		if t.Contains(root, id) {
			return true
		}
	}
	return false
}

// Empty reports whether nothing can see the binding.
func (s Scope) Empty() bool { return len(s.Expressions) == 0 && len(s.Statements) == 0 }
