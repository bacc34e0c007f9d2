package sqlfix

import (
	"github.com/viant/remedy/binding"
	"github.com/viant/remedy/syntax"
)

// inPlace reports whether the statement variable can be turned into a
// prepared statement where it is created: its type can change, it is only
// ever a receiver of calls that remain valid on a PreparedStatement, and the
// query can be evaluated at the creation site.
func (r *rewrite) inPlace() bool {
	t := r.tree
	decl := r.statement.Declaration()
	if !retypeable[t.Text(r.statement.DeclaredType())] {
		return false
	}
	switch decl.Kind {
	case binding.BlockLocal:
		if len(t.ChildrenByField(decl.Owner, "declarator")) != 1 {
			return false
		}
	case binding.Resource:
	default:
		return false
	}
	if r.creationStatement() == syntax.NoNode {
		return false
	}
	target := r.creationTarget()
	for _, ref := range r.statement.References() {
		if ref == r.receiver || ref == target {
			continue
		}
		parent, child := t.UnwrapParent(ref)
		if t.Kind(parent) != syntax.KindMethodCall || t.Field(child) != "object" || sqlTextMethods[t.Name(parent)] {
			return false
		}
	}
	return r.movable()
}

// movable reports whether no name of the linearized query, expanded
// variables included, is declared or written within the statement
// variable's scope.
func (r *rewrite) movable() bool {
	t := r.tree
	scope := r.statement.Scope()
	for _, ident := range r.queryNames() {
		decl := binding.Resolve(t, t.Token(ident), ident)
		if decl == nil || !decl.Kind.IsLocal() {
			continue
		}
		if scope.Contains(t, decl.Site) {
			return false
		}
		local := binding.NewLocal(t, decl)
		for _, write := range append(local.Assignments(), local.Updates()...) {
			if scope.Contains(t, write) {
				return false
			}
		}
	}
	return true
}

// queryNames returns the identifiers read by the non-literal leaves and
// every variable reference expanded on the way to them.
func (r *rewrite) queryNames() []syntax.NodeID {
	var result []syntax.NodeID
	for occurrence := range r.linearization.Substitutions {
		result = append(result, occurrence)
	}
	for _, leaf := range r.linearization.Leaves {
		if !leaf.Literal {
			result = append(result, names(r.tree, leaf.Node)...)
		}
	}
	return result
}

// creationStatement returns the declaration or assignment statement whose
// value is the createStatement call, or NoNode.
func (r *rewrite) creationStatement() syntax.NodeID {
	t := r.tree
	parent, child := t.UnwrapParent(r.creation)
	switch t.Kind(parent) {
	case syntax.KindDeclarator:
		if t.Field(child) == "value" {
			return t.Parent(parent)
		}
	case syntax.KindResource:
		if t.Field(child) == "value" {
			return parent
		}
	case syntax.KindAssignment:
		if t.Field(child) == "right" {
			if stmt, _ := t.UnwrapParent(parent); t.Kind(stmt) == syntax.KindExpressionStatement {
				return stmt
			}
		}
	}
	return syntax.NoNode
}

// creationTarget returns the assigned name when the statement is created by
// an assignment, NoNode otherwise.
func (r *rewrite) creationTarget() syntax.NodeID {
	t := r.tree
	parent, _ := t.UnwrapParent(r.creation)
	if t.Kind(parent) != syntax.KindAssignment {
		return syntax.NoNode
	}
	return t.Unwrap(t.Child(parent, "left"))
}

// applyInPlace rewrites createStatement into prepareStatement carrying the
// placeholder query, retypes the variable and binds parameters before the
// anchoring statement.
func (r *rewrite) applyInPlace(split bool) error {
	t := r.tree
	query := concatenation(r.queryParts(r.creation))
	bindings := r.bindings(r.statement.Name())
	if split {
		r.anchor.splitResources(t)
	}
	if err := r.insertBefore(bindings...); err != nil {
		return err
	}

	expr, err := t.ParseExpression(r.ctx, query)
	if err != nil {
		return err
	}
	t.SetToken(t.Child(r.creation, "name"), prepareStatement)
	argList := t.Child(r.creation, "arguments")
	t.SetArguments(argList, append([]syntax.NodeID{expr}, t.Arguments(argList)...))
	r.repoint("")
	return r.retype()
}

func (r *rewrite) retype() error {
	t := r.tree
	typeNode := r.statement.DeclaredType()
	switch t.Text(typeNode) {
	case "var":
		return nil
	case "java.sql.Statement":
		t.Replace(typeNode, t.NewLeaf(syntax.KindScopedType, "scoped_type_identifier", preparedImport))
		return nil
	}
	t.SetToken(typeNode, preparedType)
	_, err := t.AddImport(r.ctx, preparedImport)
	return err
}

// applyDirect introduces a prepared statement variable for a statement
// created and executed in one expression.
func (r *rewrite) applyDirect() error {
	t := r.tree
	name := freshName(t, r.callable)
	declaration := r.preparedDeclaration(name, t.Text(t.Child(r.creation, "object")))
	if err := r.insertBefore(append([]string{declaration}, r.bindings(name)...)...); err != nil {
		return err
	}
	r.repoint(name)
	_, err := t.AddImport(r.ctx, preparedImport)
	return err
}
