// Package sqlfix rewrites JDBC Statement executions of concatenated SQL into
// PreparedStatement executions with bound parameters.
package sqlfix

import (
	"context"
	"errors"

	"github.com/viant/remedy/correlate"
	"github.com/viant/remedy/remediation"
	"github.com/viant/remedy/syntax"
	"go.uber.org/zap"
)

// Rule is the builtin name of the SQL injection remediation.
const Rule = "sql-injection"

// Strategy parameterizes the query of one execute call, in place when the
// statement variable can become a PreparedStatement, by hijacking the call
// otherwise.
type Strategy struct {
	Logger *zap.Logger
}

// NewStrategy creates a strategy.
func NewStrategy(logger *zap.Logger) *Strategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Strategy{Logger: logger}
}

// Fix implements remediation.Strategy.
func (s *Strategy) Fix(ctx context.Context, t *syntax.Tree, node syntax.NodeID) remediation.Result {
	mode, err := s.fix(ctx, t, node)
	if err != nil {
		var decline declineError
		if errors.As(err, &decline) {
			return remediation.Failure(string(decline))
		}
		s.Logger.Warn("rewrite failed", zap.String("path", t.Path), zap.Int("line", t.Line(node)), zap.Error(err))
		return remediation.Failure(err.Error())
	}
	s.Logger.Debug("query parameterized", zap.String("path", t.Path), zap.Int("line", t.Line(node)), zap.String("mode", mode))
	return remediation.Success()
}

func (s *Strategy) fix(ctx context.Context, t *syntax.Tree, node syntax.NodeID) (string, error) {
	r, err := newRewrite(ctx, t, node)
	if err != nil {
		return "", err
	}
	split := false
	if r.anchor.kind == anchorResource {
		if previous := r.anchor.previousResource(t); previous != syntax.NoNode {
			if r.direct() || previous != r.statement.Declaration().Site {
				return "", declineError(ReasonUnsupportedPosition)
			}
			split = true
		}
	}

	switch {
	case r.direct():
		if err = r.checkStable(r.anchorEmitted(true)); err != nil {
			return "", err
		}
		return "direct", s.finish(r, r.applyDirect())
	case r.inPlace():
		if err = r.checkStable(r.anchorEmitted(false)); err != nil {
			return "", err
		}
		return "in-place", s.finish(r, r.applyInPlace(split))
	case split:
		return "", declineError(ReasonUnsupportedPosition)
	}
	plan, err := r.planHijack()
	if err != nil {
		return "", err
	}
	if err = r.checkStable(r.anchorEmitted(true)); err != nil {
		return "", err
	}
	return "hijack", s.finish(r, r.applyHijack(plan))
}

func (s *Strategy) finish(r *rewrite, err error) error {
	if err != nil {
		return err
	}
	r.blankSources()
	Cleanup(r.tree, r.callable)
	return nil
}

// Matcher selects execute calls on a statement.
func Matcher(t *syntax.Tree, id syntax.NodeID) bool {
	return IsExecuteCall(t, id)
}

// Pairs returns the searcher/strategy pairs of the SQL injection rule: calls
// matched at their start first, then at their method name for findings that
// point inside a chained call.
func Pairs(logger *zap.Logger) []remediation.Pair {
	strategy := NewStrategy(logger)
	return []remediation.Pair{
		{Searcher: correlate.New(Matcher, correlate.NodePosition), Strategy: strategy},
		{Searcher: correlate.New(Matcher, correlate.CallNamePosition), Strategy: strategy},
	}
}
