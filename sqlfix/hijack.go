package sqlfix

import (
	"fmt"

	"github.com/viant/remedy/binding"
	"github.com/viant/remedy/syntax"
)

// hijack leaves the statement variable's type alone. A new prepared
// statement is declared right before the anchor, the execute call is pointed
// at it and the original variable is reassigned to it afterwards. When the
// execute call is the first reference after creation the original
// createStatement call is dropped as well, unless the variable is declared
// with var.
//
// The first-reference test is textual only; under branching control flow
// the dropped creation may still have been needed on another path.
type hijack struct {
	name        string
	connection  string
	reassign    bool
	dropCreated bool
}

func (r *rewrite) planHijack() (*hijack, error) {
	t := r.tree
	decl := r.statement.Declaration()
	switch decl.Kind {
	case binding.Resource:
		return nil, declineError(ReasonResourceBinding)
	case binding.BlockLocal:
	default:
		return nil, declineError(ReasonUnsupportedCreation)
	}
	if r.creationStatement() == syntax.NoNode {
		return nil, declineError(ReasonUnsupportedCreation)
	}
	if r.anchor.kind == anchorResource && r.anchor.previousResource(t) != syntax.NoNode {
		return nil, declineError(ReasonUnsupportedPosition)
	}
	connection := t.Child(r.creation, "object")
	if !isSimpleReceiver(t, connection) {
		return nil, declineError(ReasonComplexConnection)
	}
	plan := &hijack{
		name:       freshName(t, r.callable),
		connection: t.Text(connection),
		reassign:   r.anchor.kind != anchorReturn,
	}
	if plan.reassign {
		if r.statement.IsFinal() {
			return nil, declineError(ReasonFinalBinding)
		}
		if r.statement.Captured() {
			return nil, declineError(ReasonCapturedBinding)
		}
	}
	// The created statement is unused when the execute call is its first
	// textual reference. Control flow is not followed, so a use on another
	// branch that appears later in the text is missed. A var declaration
	// needs its initializer and keeps it.
	if t.Text(r.statement.DeclaredType()) == "var" {
		return plan, nil
	}
	target := r.creationTarget()
	for _, ref := range r.statement.References() {
		if ref == target {
			continue
		}
		plan.dropCreated = ref == r.receiver
		break
	}
	return plan, nil
}

func (r *rewrite) applyHijack(plan *hijack) error {
	t := r.tree
	statements := append([]string{r.preparedDeclaration(plan.name, plan.connection)}, r.bindings(plan.name)...)
	if err := r.insertBefore(statements...); err != nil {
		return err
	}
	if plan.reassign {
		if err := r.reassign(fmt.Sprintf("%s = %s;", r.statement.Name(), plan.name)); err != nil {
			return err
		}
	}
	if plan.dropCreated {
		r.dropCreation()
	}
	r.repoint(plan.name)
	_, err := t.AddImport(r.ctx, preparedImport)
	return err
}

// reassign inserts text after the anchor, or as the first statement of the
// try body when the execute call initializes a resource.
func (r *rewrite) reassign(text string) error {
	t := r.tree
	stmt, err := t.ParseStatement(r.ctx, text)
	if err != nil {
		return err
	}
	if r.anchor.kind != anchorResource {
		t.InsertAfter(r.anchor.statement, stmt)
		return nil
	}
	body := t.Child(r.anchor.statement, "body")
	if statements := t.NamedChildren(body); len(statements) > 0 {
		t.InsertBefore(statements[0], stmt)
		return nil
	}
	indent := t.Indent(r.anchor.statement)
	t.InsertChild(body, 1, stmt)
	t.SetLeading(stmt, "\n"+indent+indentUnit(t, body, indent))
	children := t.Children(body)
	t.SetLeading(children[len(children)-1], "\n"+indent)
	return nil
}

// dropCreation removes the createStatement initializer, or the whole
// assignment statement when the variable is assigned separately.
func (r *rewrite) dropCreation() {
	t := r.tree
	stmt := r.creationStatement()
	if t.Kind(stmt) == syntax.KindExpressionStatement {
		t.Remove(stmt)
		return
	}
	declarator := t.Parent(r.creation)
	for t.Kind(declarator) != syntax.KindDeclarator {
		declarator = t.Parent(declarator)
	}
	drop := false
	for _, child := range append([]syntax.NodeID(nil), t.Children(declarator)...) {
		if t.Kind(child) == syntax.KindToken && t.Token(child) == "=" {
			drop = true
		}
		if drop {
			t.Detach(child)
		}
	}
}
