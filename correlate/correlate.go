// Package correlate maps line/column findings onto syntax nodes.
package correlate

import (
	"github.com/viant/remedy/finding"
	"github.com/viant/remedy/syntax"
)

const (
	// ReasonNoNodes is reported when no matching node starts in a finding's window.
	ReasonNoNodes = "no nodes at that location"
	// ReasonMultipleNodes is reported when a finding's window is ambiguous.
	ReasonMultipleNodes = "multiple nodes found at that location, fixing them may cause confusion"
)

// Matcher selects the nodes a remediation can work on.
type Matcher func(t *syntax.Tree, id syntax.NodeID) bool

// PositionPolicy returns the position a node is matched at.
type PositionPolicy func(t *syntax.Tree, id syntax.NodeID) syntax.Position

// NodePosition matches a node at the start of its range.
func NodePosition(t *syntax.Tree, id syntax.NodeID) syntax.Position {
	return t.Range(id).Start
}

// CallNamePosition matches a method invocation at the selector following
// its receiver, e.g. at ".executeQuery(" of a chained call.
func CallNamePosition(t *syntax.Tree, id syntax.NodeID) syntax.Position {
	if t.Kind(id) != syntax.KindMethodCall || t.Child(id, "object") == syntax.NoNode {
		return NodePosition(t, id)
	}
	object := t.Child(id, "object")
	after := false
	for _, child := range t.Children(id) {
		if after && t.Range(child) != nil && t.Kind(child) != syntax.KindComment {
			return t.Range(child).Start
		}
		if child == object {
			after = true
		}
	}
	return NodePosition(t, id)
}

// Candidate is a node matched unambiguously by one or more findings.
type Candidate struct {
	Node     syntax.NodeID
	Findings []*finding.Finding
}

// Correlator pairs a matcher with the position policy used to locate nodes.
type Correlator struct {
	Matcher Matcher
	Policy  PositionPolicy
}

// New creates a correlator; a nil policy defaults to NodePosition.
func New(matcher Matcher, policy PositionPolicy) *Correlator {
	if policy == nil {
		policy = NodePosition
	}
	return &Correlator{Matcher: matcher, Policy: policy}
}

// Search correlates findings with the matching nodes of t.
func (c *Correlator) Search(t *syntax.Tree, findings []*finding.Finding) ([]*Candidate, []finding.UnfixedFinding) {
	return Search(t, findings, c.Matcher, c.Policy)
}

type located struct {
	node     syntax.NodeID
	position syntax.Position
}

// Search collects every parsed node accepted by matcher and assigns each
// finding to the single node positioned in its window. Findings matching no
// node or several nodes are returned unfixed. Findings sharing a node are
// grouped into one candidate; candidates follow the order of their first
// finding.
func Search(t *syntax.Tree, findings []*finding.Finding, matcher Matcher, policy PositionPolicy) ([]*Candidate, []finding.UnfixedFinding) {
	if policy == nil {
		policy = NodePosition
	}
	var nodes []located
	t.Walk(t.Root(), func(id syntax.NodeID) bool {
		if !t.IsSynthesized(id) && matcher(t, id) {
			nodes = append(nodes, located{node: id, position: policy(t, id)})
		}
		return true
	})

	var candidates []*Candidate
	var unfixed []finding.UnfixedFinding
	byNode := map[syntax.NodeID]*Candidate{}
	for _, f := range findings {
		matched := matching(nodes, f)
		switch len(matched) {
		case 0:
			unfixed = append(unfixed, finding.NewUnfixed(f, ReasonNoNodes))
		case 1:
			candidate, ok := byNode[matched[0]]
			if !ok {
				candidate = &Candidate{Node: matched[0]}
				byNode[matched[0]] = candidate
				candidates = append(candidates, candidate)
			}
			candidate.Findings = append(candidate.Findings, f)
		default:
			unfixed = append(unfixed, finding.NewUnfixed(f, ReasonMultipleNodes))
		}
	}
	return candidates, unfixed
}

func matching(nodes []located, f *finding.Finding) []syntax.NodeID {
	var result []syntax.NodeID
	limit := syntax.Position{Line: f.StartLine, Column: f.Column}
	for _, n := range nodes {
		if n.position.Line < f.StartLine || n.position.Line > f.LastLine() {
			continue
		}
		if f.HasColumn() && limit.Before(n.position) {
			continue
		}
		result = append(result, n.node)
	}
	return result
}
