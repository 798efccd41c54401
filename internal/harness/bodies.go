package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/optchain/internal/engine"
	"github.com/roach88/optchain/internal/ir"
)

// Bodies are the canned original logics a scenario can name. A receiver
// arrives as a record; its `value` field takes part in concat and sum.
var Bodies = map[string]engine.Body{
	"concat": concatBody,
	"sum":    sumBody,
	"last":   lastBody,
	"list":   listBody,
	"unit":   unitBody,
}

func scalar(v ir.Value) ir.Value {
	if r, ok := v.(ir.Record); ok {
		return r["value"]
	}
	return v
}

func concatBody(_ context.Context, args []ir.Value) (ir.Value, error) {
	var sb strings.Builder
	for i, a := range args {
		s, ok := scalar(a).(ir.Str)
		if !ok {
			return nil, fmt.Errorf("concat: argument %d is not a string", i)
		}
		sb.WriteString(string(s))
	}
	return ir.Str(sb.String()), nil
}

func sumBody(_ context.Context, args []ir.Value) (ir.Value, error) {
	var total ir.Int
	for i, a := range args {
		n, ok := scalar(a).(ir.Int)
		if !ok {
			return nil, fmt.Errorf("sum: argument %d is not an integer", i)
		}
		total += n
	}
	return total, nil
}

func lastBody(_ context.Context, args []ir.Value) (ir.Value, error) {
	if len(args) == 0 {
		return ir.Unit{}, nil
	}
	return args[len(args)-1], nil
}

func listBody(_ context.Context, args []ir.Value) (ir.Value, error) {
	return ir.List(args), nil
}

func unitBody(context.Context, []ir.Value) (ir.Value, error) {
	return nil, nil
}
