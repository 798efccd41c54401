package engine

import (
	"context"
	"fmt"

	"github.com/roach88/optchain/internal/ir"
	"github.com/roach88/optchain/internal/syntax"
)

// evalDefault computes the default for an unset optional field of type t.
func (e *Engine) evalDefault(ctx context.Context, expr ir.Expr, t ir.Type, in Instantiation) (ir.Value, error) {
	if expr.Kind == ir.ExprTypeDefault {
		return ZeroValue(t, in)
	}
	if ev, ok := e.evaluator(expr.Source); ok {
		v, err := ev(ctx)
		if err != nil {
			return nil, fmt.Errorf("evaluate default %q: %w", expr.Source, err)
		}
		return v, nil
	}
	if v, ok := syntax.EvalLiteral(expr.Source); ok {
		return v, nil
	}
	if syntax.IsDefaultCall(expr.Source) {
		return ZeroValue(t, in)
	}
	return nil, &RuntimeError{
		Code:    ErrCodeNoDefault,
		Message: fmt.Sprintf("no evaluator registered for default expression %q", expr.Source),
		Details: map[string]string{"expr": expr.Source},
	}
}
