package sqlfix

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/remedy/binding"
	"github.com/viant/remedy/syntax"
)

// Reasons reported when a call is left untouched.
const (
	ReasonUnsupportedCall     = "unsupported call shape"
	ReasonUnsupportedPosition = "unsupported position of the execute call"
	ReasonUnresolvedReceiver  = "statement is not created by createStatement on a connection"
	ReasonNoInjection         = "query has no injectable value"
	ReasonOperandReassigned   = "query operand is reassigned before the query executes"
	ReasonResourceBinding     = "resource statement cannot be reassigned"
	ReasonFinalBinding        = "final statement variable cannot be reassigned"
	ReasonUnsupportedCreation = "statement is not created by a simple declaration or assignment"
	ReasonComplexConnection   = "connection expression cannot be evaluated twice"
	ReasonCapturedBinding     = "statement variable captured by a lambda or inner class cannot be reassigned"
)

// declineError carries a decline reason through the rewrite steps.
type declineError string

func (e declineError) Error() string { return string(e) }

// rewrite holds what one fix learns about an execute call before mutating.
type rewrite struct {
	ctx      context.Context
	tree     *syntax.Tree
	call     syntax.NodeID
	receiver syntax.NodeID
	query    syntax.NodeID
	anchor   *anchor
	callable syntax.NodeID

	// set when the receiver is a local statement variable
	statement *binding.LocalBinding
	creation  syntax.NodeID

	linearization *Linearization
	injections    []Injection
	contents      map[int]string
	// locals the query was expanded from, resolved before any edit
	sources []source
}

// source is a local variable whose value the linearization expanded.
type source struct {
	local *binding.LocalBinding
	value syntax.NodeID
}

func newRewrite(ctx context.Context, t *syntax.Tree, call syntax.NodeID) (*rewrite, error) {
	if !IsExecuteCall(t, call) {
		return nil, declineError(ReasonUnsupportedCall)
	}
	r := &rewrite{ctx: ctx, tree: t, call: call, creation: syntax.NoNode}
	r.receiver = t.Unwrap(t.Child(call, "object"))
	r.query = t.Arguments(t.Child(call, "arguments"))[0]
	if r.anchor = findAnchor(t, call); r.anchor == nil {
		return nil, declineError(ReasonUnsupportedPosition)
	}
	r.callable = t.Enclosing(call, syntax.KindMethod, syntax.KindConstructor)
	if r.callable == syntax.NoNode {
		r.callable = t.Root()
	}

	switch {
	case isCreateStatement(t, r.receiver):
		r.creation = r.receiver
	case t.Kind(r.receiver) == syntax.KindIdentifier:
		r.statement = binding.ResolveLocal(t, t.Token(r.receiver), r.receiver)
		if r.statement == nil {
			return nil, declineError(ReasonUnresolvedReceiver)
		}
		r.creation = t.Unwrap(r.statement.AssignedValue())
		if !isCreateStatement(t, r.creation) {
			return nil, declineError(ReasonUnresolvedReceiver)
		}
	default:
		return nil, declineError(ReasonUnresolvedReceiver)
	}

	r.linearization = Linearize(t, r.query)
	r.injections = FindInjections(r.linearization)
	if len(r.injections) == 0 {
		return nil, declineError(ReasonNoInjection)
	}
	r.contents = Rewrite(r.linearization, r.injections)
	for occurrence, value := range r.linearization.Substitutions {
		if local := binding.ResolveLocal(t, t.Token(occurrence), occurrence); local != nil {
			r.sources = append(r.sources, source{local: local, value: value})
		}
	}
	return r, nil
}

// direct reports a statement created inline, e.g. conn.createStatement().executeQuery(q).
func (r *rewrite) direct() bool { return r.statement == nil }

// part is one rendered operand of a concatenation.
type part struct {
	text    string
	literal bool
	node    syntax.NodeID
}

func literalPart(raw string) part {
	return part{text: syntax.Quote(raw), literal: true, node: syntax.NoNode}
}

// emitted picks the expression to render for a non-literal leaf at node at:
// the variable the leaf was expanded from while it is still visible there,
// the expanded value otherwise.
func (r *rewrite) emitted(leaf Leaf, at syntax.NodeID) syntax.NodeID {
	t := r.tree
	if leaf.Occurrence != syntax.NoNode {
		if local := binding.ResolveLocal(t, t.Token(leaf.Occurrence), leaf.Occurrence); local != nil && local.Scope().Contains(t, at) {
			return leaf.Occurrence
		}
	}
	return leaf.Node
}

func (r *rewrite) operand(node syntax.NodeID) part {
	t := r.tree
	text := t.Text(node)
	switch t.Type(node) {
	case "binary_expression", "ternary_expression", "assignment_expression", "lambda_expression",
		"instanceof_expression", "switch_expression":
		text = "(" + text + ")"
	}
	return part{text: text, node: node}
}

// queryParts renders the placeholder query as evaluated at node at.
func (r *rewrite) queryParts(at syntax.NodeID) []part {
	var parts []part
	for i, leaf := range r.linearization.Leaves {
		if interior(r.injections, i) {
			continue
		}
		if leaf.Literal {
			raw, ok := r.contents[i]
			if !ok {
				raw = leaf.Raw
			}
			parts = append(parts, literalPart(raw))
			continue
		}
		parts = append(parts, r.operand(r.emitted(leaf, at)))
	}
	return parts
}

// parameterParts renders the value bound to one placeholder, evaluated at the call.
func (r *rewrite) parameterParts(injection Injection) []part {
	var parts []part
	if injection.Prefix != "" {
		parts = append(parts, literalPart(injection.Prefix))
	}
	for _, i := range injection.Interior {
		leaf := r.linearization.Leaves[i]
		if leaf.Literal {
			parts = append(parts, literalPart(leaf.Raw))
			continue
		}
		parts = append(parts, r.operand(r.emitted(leaf, r.call)))
	}
	if injection.Suffix != "" {
		parts = append(parts, literalPart(injection.Suffix))
	}
	return parts
}

// concatenation joins parts with +, prefixing "" when neither of the first
// two operands is a literal so the chain stays a string concatenation.
func concatenation(parts []part) string {
	if len(parts) == 0 {
		return `""`
	}
	var texts []string
	if len(parts) > 1 && !parts[0].literal && !parts[1].literal {
		texts = append(texts, `""`)
	}
	for _, p := range parts {
		texts = append(texts, p.text)
	}
	return strings.Join(texts, " + ")
}

// bindings renders one setString statement per injection, numbered in
// discovery order.
func (r *rewrite) bindings(receiver string) []string {
	var result []string
	for i, injection := range r.injections {
		parts := r.parameterParts(injection)
		value := concatenation(parts)
		if len(parts) == 1 && !parts[0].literal && !isString(r.tree, parts[0].node, maxExpansionDepth) {
			value = "String.valueOf(" + value + ")"
		}
		result = append(result, fmt.Sprintf("%s.%s(%s, %s);", receiver, setString, strconv.Itoa(i+1), value))
	}
	return result
}

// anchorEmitted lists the expressions rendered at the execute call.
func (r *rewrite) anchorEmitted(includeQuery bool) []syntax.NodeID {
	var result []syntax.NodeID
	for _, injection := range r.injections {
		for _, p := range r.parameterParts(injection) {
			if p.node != syntax.NoNode {
				result = append(result, p.node)
			}
		}
	}
	if includeQuery {
		for _, p := range r.queryParts(r.call) {
			if p.node != syntax.NoNode {
				result = append(result, p.node)
			}
		}
	}
	return result
}

// checkStable declines when a local read by an expression rendered at the
// execute call is assigned between the expression's original position and
// the call.
func (r *rewrite) checkStable(nodes []syntax.NodeID) error {
	t := r.tree
	until := t.Range(r.anchor.statement).StartByte
	for _, node := range nodes {
		from := t.Range(node).EndByte
		for _, ident := range names(t, node) {
			local := binding.ResolveLocal(t, t.Token(ident), ident)
			if local == nil {
				continue
			}
			for _, write := range append(local.Assignments(), local.Updates()...) {
				if rng := t.Range(write); rng != nil && rng.StartByte >= from && rng.StartByte < until {
					return declineError(ReasonOperandReassigned)
				}
			}
		}
	}
	return nil
}

// names returns the identifiers read by an expression.
func names(t *syntax.Tree, node syntax.NodeID) []syntax.NodeID {
	var result []syntax.NodeID
	t.Walk(node, func(id syntax.NodeID) bool {
		if t.Kind(id) == syntax.KindIdentifier && binding.IsNameUsage(t, id) {
			result = append(result, id)
		}
		return true
	})
	return result
}

// blankSources rewrites the value of every expanded variable that nothing
// reads once the execute call is fixed: injected values become "" and the
// framing literals take their placeholder text. Cleanup merges the result.
func (r *rewrite) blankSources() {
	t := r.tree
	for _, src := range r.sources {
		if !t.Attached(src.value) || r.read(src.local) {
			continue
		}
		for i, leaf := range r.linearization.Leaves {
			if !t.Contains(src.value, leaf.Node) {
				continue
			}
			raw, ok := r.contents[i]
			switch {
			case interior(r.injections, i):
				t.Replace(leaf.Node, t.NewStringLiteral(""))
			case leaf.Literal && ok && raw != leaf.Raw:
				t.Replace(leaf.Node, t.NewStringLiteral(raw))
			}
		}
	}
}

// read reports whether anything other than a plain assignment target still
// refers to local.
func (r *rewrite) read(local *binding.LocalBinding) bool {
	t := r.tree
	for _, ref := range local.References() {
		parent, child := t.UnwrapParent(ref)
		if t.Kind(parent) == syntax.KindAssignment && t.Field(child) == "left" && t.Operator(parent) == "=" {
			continue
		}
		return true
	}
	return false
}

// insertBefore parses each statement and inserts it ahead of the anchor.
func (r *rewrite) insertBefore(statements ...string) error {
	for _, text := range statements {
		stmt, err := r.tree.ParseStatement(r.ctx, text)
		if err != nil {
			return err
		}
		r.tree.InsertBefore(r.anchor.statement, stmt)
	}
	return nil
}

// repoint makes the execute call run the prepared statement named receiver.
func (r *rewrite) repoint(receiver string) {
	t := r.tree
	if receiver != "" {
		t.Replace(t.Child(r.call, "object"), t.NewIdentifier(receiver))
	}
	t.SetArguments(t.Child(r.call, "arguments"), nil)
}

// creationArguments renders the original createStatement arguments.
func (r *rewrite) creationArguments() []string {
	var result []string
	for _, arg := range r.tree.Arguments(r.tree.Child(r.creation, "arguments")) {
		result = append(result, r.tree.Text(arg))
	}
	return result
}

// preparedDeclaration renders `PreparedStatement name = conn.prepareStatement(query, args...);`.
func (r *rewrite) preparedDeclaration(name, connection string) string {
	args := append([]string{concatenation(r.queryParts(r.call))}, r.creationArguments()...)
	return fmt.Sprintf("%s %s = %s.%s(%s);", preparedType, name, connection, prepareStatement, strings.Join(args, ", "))
}

// freshName returns the first candidate not used as an identifier in the callable.
func freshName(t *syntax.Tree, callable syntax.NodeID) string {
	used := map[string]bool{}
	t.Walk(callable, func(id syntax.NodeID) bool {
		if t.Kind(id) == syntax.KindIdentifier {
			used[t.Token(id)] = true
		}
		return true
	})
	for _, candidate := range []string{"stmt", "statement"} {
		if !used[candidate] {
			return candidate
		}
	}
	for i := 1; ; i++ {
		if candidate := "stmt" + strconv.Itoa(i); !used[candidate] {
			return candidate
		}
	}
}
