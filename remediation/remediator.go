package remediation

import (
	"context"
	"sort"

	"github.com/viant/remedy/correlate"
	"github.com/viant/remedy/finding"
	"github.com/viant/remedy/syntax"
	"go.uber.org/zap"
)

// ReasonMissingLine is reported for candidates whose finding has no line.
const ReasonMissingLine = "finding has no line number"

// Outcome lists the changes and unfixed findings of one pass; each input
// finding appears in exactly one of them.
type Outcome struct {
	Changes []finding.Change
	Unfixed []finding.UnfixedFinding
}

// Remediator runs ordered pairs over a file's findings. A later pair only
// sees the findings no earlier pair produced a candidate for.
type Remediator struct {
	Pairs  []Pair
	Logger *zap.Logger
}

// New creates a remediator.
func New(logger *zap.Logger, pairs ...Pair) *Remediator {
	return &Remediator{Pairs: pairs, Logger: logger}
}

func (r *Remediator) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

type fixed struct {
	line         int
	dependencies []finding.Dependency
}

// Remediate correlates and fixes findings against t, mutating it in place.
func (r *Remediator) Remediate(ctx context.Context, t *syntax.Tree, path, rule string, findings []*finding.Finding) *Outcome {
	logger := r.logger().With(zap.String("path", path), zap.String("rule", rule))
	fixes := map[*finding.Finding]*fixed{}
	declined := map[*finding.Finding]string{}
	ambiguous := map[string]string{}

	remaining := findings
	for _, pair := range r.Pairs {
		if len(remaining) == 0 {
			break
		}
		candidates, unfixed := pair.Searcher.Search(t, remaining)
		for _, u := range unfixed {
			if u.Reason != correlate.ReasonNoNodes {
				ambiguous[u.ID] = u.Reason
			}
		}
		for _, candidate := range candidates {
			if candidate.Findings[0].StartLine <= 0 {
				for _, f := range candidate.Findings {
					declined[f] = ReasonMissingLine
				}
				continue
			}
			result := pair.Strategy.Fix(ctx, t, candidate.Node)
			line := candidate.Findings[0].StartLine
			if !result.Applied {
				logger.Debug("fix declined", zap.Int("line", line), zap.String("reason", result.Reason))
				for _, f := range candidate.Findings {
					declined[f] = result.Reason
				}
				continue
			}
			logger.Debug("fix applied", zap.Int("line", line), zap.Int("findings", len(candidate.Findings)))
			for _, f := range candidate.Findings {
				fixes[f] = &fixed{line: line, dependencies: result.Dependencies}
			}
		}
		remaining = unresolved(remaining, fixes, declined)
	}

	outcome := &Outcome{}
	changes := map[int]*finding.Change{}
	for _, f := range findings {
		if fix, ok := fixes[f]; ok {
			change, ok := changes[fix.line]
			if !ok {
				change = &finding.Change{Line: fix.line}
				changes[fix.line] = change
			}
			change.Findings = append(change.Findings, f.ID)
			change.Dependencies = finding.MergeDependencies(append(change.Dependencies, fix.dependencies...))
			continue
		}
		reason, ok := declined[f]
		if !ok {
			if reason, ok = ambiguous[f.ID]; !ok {
				reason = correlate.ReasonNoNodes
			}
		}
		outcome.Unfixed = append(outcome.Unfixed, finding.NewUnfixed(f, reason))
	}
	for _, change := range changes {
		outcome.Changes = append(outcome.Changes, *change)
	}
	sort.Slice(outcome.Changes, func(i, j int) bool { return outcome.Changes[i].Line < outcome.Changes[j].Line })
	if len(outcome.Unfixed) > 0 {
		logger.Info("findings left unfixed", zap.Int("count", len(outcome.Unfixed)))
	}
	return outcome
}

func unresolved(findings []*finding.Finding, fixes map[*finding.Finding]*fixed, declined map[*finding.Finding]string) []*finding.Finding {
	var result []*finding.Finding
	for _, f := range findings {
		if _, ok := fixes[f]; ok {
			continue
		}
		if _, ok := declined[f]; ok {
			continue
		}
		result = append(result, f)
	}
	return result
}
