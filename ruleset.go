package prefs

import (
	"sort"

	"github.com/goliatone/go-prefs/pkg/rules"
)

// RuleSet shares one evaluator, its compiled program cache and a set of custom
// functions across fields. Fields using the same expression compile it once.
type RuleSet struct {
	engine    string
	evaluator rules.Evaluator
	cache     *rules.MemoryCache
	functions *rules.FunctionRegistry
}

// NewRuleSet builds a RuleSet for one of the bundled engines ("expr", "cel" or
// "js"). functions are callable by name from expr and js rules and through
// call(name, [args]) from CEL rules.
func NewRuleSet(engine string, functions map[string]rules.Function) (*RuleSet, error) {
	registry := rules.NewFunctionRegistry()
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := registry.Register(name, functions[name]); err != nil {
			return nil, err
		}
	}

	cache := rules.NewMemoryCache()
	evaluator, err := rules.ByName(engine, cache, registry)
	if err != nil {
		return nil, err
	}
	return &RuleSet{
		engine:    rules.EngineName(evaluator),
		evaluator: evaluator,
		cache:     cache,
		functions: registry,
	}, nil
}

// Rule returns a FieldOption attaching expr through the shared evaluator.
func (s *RuleSet) Rule(expr string) FieldOption {
	return WithRule(s.evaluator, expr)
}

func (s *RuleSet) Engine() string {
	return s.engine
}

func (s *RuleSet) Evaluator() rules.Evaluator {
	return s.evaluator
}

// Functions lists the registered function names.
func (s *RuleSet) Functions() []string {
	return s.functions.Names()
}

// Programs reports how many compiled programs are cached.
func (s *RuleSet) Programs() int {
	return s.cache.Len()
}
