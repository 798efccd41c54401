package harness

import (
	"github.com/roach88/optchain/internal/engine"
	"github.com/roach88/optchain/internal/ir"
)

// TraceEvent is an engine event in golden-file form.
type TraceEvent struct {
	Seq   int64  `json:"seq"`
	Kind  string `json:"kind"`
	Name  string `json:"name,omitempty"`
	Value any    `json:"value,omitempty"`
	Args  []any  `json:"args,omitempty"`
}

func fromEngineEvents(events []engine.Event) []TraceEvent {
	out := make([]TraceEvent, len(events))
	for i, ev := range events {
		te := TraceEvent{Seq: ev.Seq, Kind: string(ev.Kind), Name: ev.Name}
		if ev.Value != nil {
			te.Value = ir.ToAny(ev.Value)
		}
		if len(ev.Args) > 0 {
			te.Args = make([]any, len(ev.Args))
			for j, a := range ev.Args {
				te.Args[j] = ir.ToAny(a)
			}
		}
		out[i] = te
	}
	return out
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds the engine events in sequence order.
	Trace []TraceEvent `json:"trace"`

	// Diagnostic is the transformation failure kind, if any.
	Diagnostic string `json:"diagnostic,omitempty"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
