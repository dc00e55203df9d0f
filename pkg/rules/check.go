package rules

import "fmt"

// Check runs a compiled rule and reports whether it accepted the snapshot.
func Check(rule CompiledRule, ctx Context) (bool, error) {
	if rule == nil {
		return true, nil
	}
	result, err := rule.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	ok, isBool := result.(bool)
	if !isBool {
		return false, fmt.Errorf("%w: got %T", ErrNotBool, result)
	}
	return ok, nil
}

// EngineName reports the engine backing e.
func EngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if jsEvaluatorType(e) {
			return "js"
		}
		return "custom"
	}
}
