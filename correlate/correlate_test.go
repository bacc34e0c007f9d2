package correlate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/remedy/correlate"
	"github.com/viant/remedy/finding"
	"github.com/viant/remedy/syntax"
)

const repo = `class Repo {
    void run(Statement a, Statement b, String q) throws Exception {
        a.executeQuery(q); b.executeQuery(q);
        a.executeQuery(q);
        a
            .executeQuery(q);
    }
}
`

func executeQuery(t *syntax.Tree, id syntax.NodeID) bool {
	return t.Kind(id) == syntax.KindMethodCall && t.Name(id) == "executeQuery"
}

func TestSearch(t *testing.T) {
	tests := []struct {
		description string
		findings    []*finding.Finding
		policy      correlate.PositionPolicy
		candidates  []int // start line of each candidate node
		grouped     []int // findings per candidate
		reasons     []string
	}{
		{
			description: "sibling calls on one line are ambiguous",
			findings:    []*finding.Finding{{ID: "1", StartLine: 3}},
			reasons:     []string{correlate.ReasonMultipleNodes},
		},
		{
			description: "column disambiguates",
			findings:    []*finding.Finding{{ID: "1", StartLine: 3, Column: 9}},
			candidates:  []int{3},
			grouped:     []int{1},
		},
		{
			description: "column after both calls",
			findings:    []*finding.Finding{{ID: "1", StartLine: 3, Column: 40}},
			reasons:     []string{correlate.ReasonMultipleNodes},
		},
		{
			description: "findings sharing a node form one candidate",
			findings:    []*finding.Finding{{ID: "1", StartLine: 4}, {ID: "2", StartLine: 4}},
			candidates:  []int{4},
			grouped:     []int{2},
		},
		{
			description: "nothing on the line",
			findings:    []*finding.Finding{{ID: "1", StartLine: 10}},
			reasons:     []string{correlate.ReasonNoNodes},
		},
		{
			description: "chained call reported at its selector",
			findings:    []*finding.Finding{{ID: "1", StartLine: 6}},
			reasons:     []string{correlate.ReasonNoNodes},
		},
		{
			description: "chained call with call name policy",
			findings:    []*finding.Finding{{ID: "1", StartLine: 6}},
			policy:      correlate.CallNamePosition,
			candidates:  []int{5},
			grouped:     []int{1},
		},
		{
			description: "line window",
			findings:    []*finding.Finding{{ID: "1", StartLine: 4, EndLine: 6}},
			reasons:     []string{correlate.ReasonMultipleNodes},
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			tree, err := syntax.Parse(context.Background(), "Repo.java", []byte(repo))
			require.NoError(t, err)
			candidates, unfixed := correlate.New(executeQuery, tc.policy).Search(tree, tc.findings)
			require.Len(t, candidates, len(tc.candidates))
			for i, candidate := range candidates {
				assert.Equal(t, tc.candidates[i], tree.Line(candidate.Node))
				assert.Len(t, candidate.Findings, tc.grouped[i])
			}
			var reasons []string
			for _, u := range unfixed {
				reasons = append(reasons, u.Reason)
			}
			assert.Equal(t, tc.reasons, reasons)
		})
	}
}

func TestSearch_SkipsSynthesized(t *testing.T) {
	ctx := context.Background()
	tree, err := syntax.Parse(ctx, "Repo.java", []byte(repo))
	require.NoError(t, err)

	var anchor syntax.NodeID = syntax.NoNode
	for _, call := range tree.FindAll(tree.Root(), syntax.KindMethodCall) {
		if tree.Line(call) == 4 {
			anchor = tree.Enclosing(call, syntax.KindExpressionStatement)
		}
	}
	require.NotEqual(t, syntax.NoNode, anchor)
	stmt, err := tree.ParseStatement(ctx, "b.executeQuery(q);")
	require.NoError(t, err)
	tree.InsertBefore(anchor, stmt)

	candidates, unfixed := correlate.Search(tree, []*finding.Finding{{ID: "1", StartLine: 4}}, executeQuery, nil)
	assert.Empty(t, unfixed)
	require.Len(t, candidates, 1)
	assert.False(t, tree.IsSynthesized(candidates[0].Node))
}
