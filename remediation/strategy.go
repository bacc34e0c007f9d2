// Package remediation drives fix strategies over the findings of one file
// and accounts for every finding exactly once.
package remediation

import (
	"context"

	"github.com/viant/remedy/correlate"
	"github.com/viant/remedy/finding"
	"github.com/viant/remedy/syntax"
)

// Result is what a strategy did to a candidate node.
type Result struct {
	Applied      bool
	Dependencies []finding.Dependency
	Reason       string
}

// Success reports an applied fix requiring dependencies.
func Success(dependencies ...finding.Dependency) Result {
	return Result{Applied: true, Dependencies: dependencies}
}

// Failure reports a declined fix.
func Failure(reason string) Result {
	return Result{Reason: reason}
}

// Strategy rewrites the tree at a candidate node.
type Strategy interface {
	Fix(ctx context.Context, t *syntax.Tree, node syntax.NodeID) Result
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ctx context.Context, t *syntax.Tree, node syntax.NodeID) Result

// Fix calls f.
func (f StrategyFunc) Fix(ctx context.Context, t *syntax.Tree, node syntax.NodeID) Result {
	return f(ctx, t, node)
}

// Searcher correlates findings with tree nodes.
type Searcher interface {
	Search(t *syntax.Tree, findings []*finding.Finding) ([]*correlate.Candidate, []finding.UnfixedFinding)
}

// Pair binds a searcher to the strategy fixing what it finds.
type Pair struct {
	Searcher Searcher
	Strategy Strategy
}
