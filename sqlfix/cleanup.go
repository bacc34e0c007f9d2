package sqlfix

import "github.com/viant/remedy/syntax"

// Cleanup simplifies the string concatenations under scope that contain
// synthesized operands: empty literals are dropped and adjacent literals
// merged. A chain is only touched when a string literal is among its first
// two operands, and keeps one there, so every + stays a string concatenation.
func Cleanup(t *syntax.Tree, scope syntax.NodeID) {
	var chains []syntax.NodeID
	t.Walk(scope, func(id syntax.NodeID) bool {
		if isPlus(t, id) && !isPlus(t, t.Parent(id)) || isPlus(t, id) && t.Field(id) != "left" {
			if hasSynthesized(t, id) {
				chains = append(chains, id)
			}
		}
		return true
	})
	for i := len(chains) - 1; i >= 0; i-- {
		if t.Attached(chains[i]) {
			simplify(t, chains[i])
		}
	}
}

func isPlus(t *syntax.Tree, id syntax.NodeID) bool {
	return id != syntax.NoNode && t.Kind(id) == syntax.KindBinary && t.Operator(id) == "+"
}

func hasSynthesized(t *syntax.Tree, id syntax.NodeID) bool {
	found := false
	t.Walk(id, func(n syntax.NodeID) bool {
		if found {
			return false
		}
		found = t.IsSynthesized(n)
		return !found
	})
	return found
}

// operand is a chain element with the + token preceding it.
type operand struct {
	node, plus syntax.NodeID
}

func flatten(t *syntax.Tree, id syntax.NodeID) []operand {
	if !isPlus(t, id) {
		return []operand{{node: id, plus: syntax.NoNode}}
	}
	result := flatten(t, t.Child(id, "left"))
	return append(result, operand{node: t.Child(id, "right"), plus: t.Child(id, "operator")})
}

func simplify(t *syntax.Tree, chain syntax.NodeID) {
	operands := flatten(t, chain)
	if len(operands) < 2 || !t.IsStringLiteral(operands[0].node) && !t.IsStringLiteral(operands[1].node) {
		return
	}
	var kept []operand
	changed := false
	for _, op := range operands {
		if t.IsEmptyString(op.node) {
			changed = true
			continue
		}
		if n := len(kept); n > 0 && t.IsStringLiteral(kept[n-1].node) && t.IsStringLiteral(op.node) {
			left, _ := t.StringValue(kept[n-1].node)
			right, _ := t.StringValue(op.node)
			merged := t.NewStringLiteral(left + right)
			t.SetLeading(merged, t.Leading(kept[n-1].node))
			kept[n-1].node = merged
			changed = true
			continue
		}
		kept = append(kept, op)
	}
	if !changed {
		return
	}
	if len(kept) > 1 && !t.IsStringLiteral(kept[0].node) && !t.IsStringLiteral(kept[1].node) {
		kept = append([]operand{{node: t.NewStringLiteral(""), plus: syntax.NoNode}}, kept...)
	}
	switch len(kept) {
	case 0:
		t.Replace(chain, t.NewStringLiteral(""))
		return
	case 1:
		t.Replace(chain, kept[0].node)
		return
	}

	acc := kept[0].node
	t.Detach(acc)
	t.SetLeading(acc, "")
	for _, op := range kept[1:] {
		plus := op.plus
		if plus == syntax.NoNode {
			plus = t.NewToken("+")
			t.SetLeading(plus, " ")
		}
		right := op.node
		t.Detach(right)
		if t.Leading(right) == "" {
			t.SetLeading(right, " ")
		}
		acc = t.NewNode(syntax.KindBinary, "binary_expression", acc, plus, right)
		t.SetField(t.Children(acc)[0], "left")
		t.SetField(plus, "operator")
		t.SetField(right, "right")
	}
	t.Replace(chain, acc)
}
