// Package rules evaluates boolean expressions against decoded preference
// values. Rules guard the load path: a persisted value that fails its rule is
// treated like a value of the wrong shape and the in-memory default is kept.
//
// Three engines are available:
//   - expr (github.com/expr-lang/expr), the default;
//   - CEL (github.com/google/cel-go);
//   - JavaScript (github.com/dop251/goja), behind the js_eval build tag.
//
// Every engine sees the snapshot keys as top-level variables plus `now`,
// `args` and `metadata`.
package rules

import "time"

// Context carries inputs needed when evaluating an expression.
type Context struct {
	Snapshot map[string]any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx Context) withDefaults() Context {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx Context) timestamp() time.Time {
	if ctx.Now == nil {
		return time.Now()
	}
	return *ctx.Now
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx Context, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx Context) (any, error)
}

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}
