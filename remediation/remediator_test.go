package remediation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/remedy/correlate"
	"github.com/viant/remedy/finding"
	"github.com/viant/remedy/remediation"
	"github.com/viant/remedy/syntax"
	"go.uber.org/zap/zaptest"
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

type fakeSearcher struct {
	candidates []*correlate.Candidate
}

func (f *fakeSearcher) Search(_ *syntax.Tree, _ []*finding.Finding) ([]*correlate.Candidate, []finding.UnfixedFinding) {
	return f.candidates, nil
}

func TestRemediator_Remediate(t *testing.T) {
	ctx := context.Background()
	tree, err := syntax.Parse(ctx, "Repo.java", []byte(repo))
	require.NoError(t, err)

	precise := finding.Dependency{Group: "g", Artifact: "precise", Version: "1.0.0"}
	fallback := finding.Dependency{Group: "g", Artifact: "fallback", Version: "1.2.0"}
	fallbackCalls := 0
	remediator := remediation.New(zaptest.NewLogger(t),
		remediation.Pair{
			Searcher: correlate.New(executeQuery, correlate.NodePosition),
			Strategy: remediation.StrategyFunc(func(_ context.Context, t *syntax.Tree, node syntax.NodeID) remediation.Result {
				if t.Line(node) == 4 {
					return remediation.Failure("unsupported shape")
				}
				return remediation.Success(precise)
			}),
		},
		remediation.Pair{
			Searcher: correlate.New(executeQuery, correlate.CallNamePosition),
			Strategy: remediation.StrategyFunc(func(_ context.Context, _ *syntax.Tree, _ syntax.NodeID) remediation.Result {
				fallbackCalls++
				return remediation.Success(fallback)
			}),
		},
	)

	findings := []*finding.Finding{
		{ID: "exact", StartLine: 3, Column: 9},
		{ID: "exact-too", StartLine: 3, Column: 10},
		{ID: "ambiguous", StartLine: 3},
		{ID: "declined-1", StartLine: 4},
		{ID: "declined-2", StartLine: 4},
		{ID: "chained", StartLine: 6},
		{ID: "nothing", StartLine: 10},
	}
	outcome := remediator.Remediate(ctx, tree, "Repo.java", "sql-injection", findings)

	require.Len(t, outcome.Changes, 2)
	assert.Equal(t, finding.Change{Line: 3, Findings: []string{"exact", "exact-too"}, Dependencies: []finding.Dependency{precise}}, outcome.Changes[0])
	assert.Equal(t, finding.Change{Line: 6, Findings: []string{"chained"}, Dependencies: []finding.Dependency{fallback}}, outcome.Changes[1])
	assert.Equal(t, 1, fallbackCalls)

	reasons := map[string]string{}
	for _, u := range outcome.Unfixed {
		reasons[u.ID] = u.Reason
		assert.Equal(t, "Repo.java", u.Path)
	}
	assert.Equal(t, map[string]string{
		"ambiguous":  correlate.ReasonMultipleNodes,
		"declined-1": "unsupported shape",
		"declined-2": "unsupported shape",
		"nothing":    correlate.ReasonNoNodes,
	}, reasons)
	assertEachOnce(t, findings, outcome)
}

func TestRemediator_MissingLine(t *testing.T) {
	ctx := context.Background()
	tree, err := syntax.Parse(ctx, "Repo.java", []byte(repo))
	require.NoError(t, err)

	invoked := false
	f := &finding.Finding{ID: "1", Rule: "sql-injection", Path: "Repo.java"}
	remediator := remediation.New(nil, remediation.Pair{
		Searcher: &fakeSearcher{candidates: []*correlate.Candidate{{Node: tree.Root(), Findings: []*finding.Finding{f}}}},
		Strategy: remediation.StrategyFunc(func(context.Context, *syntax.Tree, syntax.NodeID) remediation.Result {
			invoked = true
			return remediation.Success()
		}),
	})
	outcome := remediator.Remediate(ctx, tree, "Repo.java", "sql-injection", []*finding.Finding{f})
	assert.False(t, invoked)
	assert.Empty(t, outcome.Changes)
	require.Len(t, outcome.Unfixed, 1)
	assert.Equal(t, remediation.ReasonMissingLine, outcome.Unfixed[0].Reason)
}

func TestRemediator_NoPairs(t *testing.T) {
	tree, err := syntax.Parse(context.Background(), "Repo.java", []byte(repo))
	require.NoError(t, err)
	findings := []*finding.Finding{{ID: "1", StartLine: 3}, {ID: "2", StartLine: 4}}
	outcome := remediation.New(nil).Remediate(context.Background(), tree, "Repo.java", "r", findings)
	assert.Empty(t, outcome.Changes)
	require.Len(t, outcome.Unfixed, 2)
	assert.Equal(t, correlate.ReasonNoNodes, outcome.Unfixed[0].Reason)
	assertEachOnce(t, findings, outcome)
}

func assertEachOnce(t *testing.T, findings []*finding.Finding, outcome *remediation.Outcome) {
	t.Helper()
	seen := map[string]int{}
	for _, change := range outcome.Changes {
		for _, id := range change.Findings {
			seen[id]++
		}
	}
	for _, u := range outcome.Unfixed {
		seen[u.ID]++
	}
	require.Len(t, seen, len(findings))
	for _, f := range findings {
		assert.Equal(t, 1, seen[f.ID], f.ID)
	}
}
