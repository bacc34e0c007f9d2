package engine

import (
	"fmt"
	"sort"

	"github.com/viant/remedy/remediation"
	"github.com/viant/remedy/sqlfix"
	"go.uber.org/zap"
)

// ReasonUnsupportedRule is reported for findings of a rule nothing remediates.
const ReasonUnsupportedRule = "no remediation registered for rule"

// Factory builds the ordered searcher/strategy pairs of one rule.
type Factory func(logger *zap.Logger) []remediation.Pair

// Registry maps rule ids, and their aliases, to remediation factories.
type Registry struct {
	factories map[string]Factory
	aliases   map[string]string
}

// NewRegistry creates a registry holding the builtin rules.
func NewRegistry() *Registry {
	r := &Registry{factories: map[string]Factory{}, aliases: map[string]string{}}
	r.Register(sqlfix.Rule, sqlfix.Pairs)
	return r
}

// Register adds or replaces the factory of rule.
func (r *Registry) Register(rule string, factory Factory) {
	r.factories[rule] = factory
}

// Alias makes findings reported under alias use the remediation of rule.
func (r *Registry) Alias(alias, rule string) error {
	if _, ok := r.factories[rule]; !ok {
		return fmt.Errorf("unknown rule %v for alias %v", rule, alias)
	}
	r.aliases[alias] = rule
	return nil
}

// Lookup returns the factory for rule or one of its aliases.
func (r *Registry) Lookup(rule string) (Factory, bool) {
	if factory, ok := r.factories[rule]; ok {
		return factory, true
	}
	if target, ok := r.aliases[rule]; ok {
		factory, ok := r.factories[target]
		return factory, ok
	}
	return nil, false
}

// Rules lists registered rule ids and aliases, sorted.
func (r *Registry) Rules() []string {
	var result []string
	for rule := range r.factories {
		result = append(result, rule)
	}
	for alias := range r.aliases {
		result = append(result, alias)
	}
	sort.Strings(result)
	return result
}
