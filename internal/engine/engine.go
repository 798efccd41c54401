package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/optchain/internal/ir"
)

// Body is the original logic of a declaration: it receives the arguments in
// original parameter order (receiver first, if any) and returns the result.
// A nil result is the unit value.
type Body func(ctx context.Context, args []ir.Value) (ir.Value, error)

// Evaluator computes an opaque default expression. It runs at most once per
// terminal invocation, and only when the field was never set.
type Evaluator func(ctx context.Context) (ir.Value, error)

// EventKind names a traced step.
type EventKind string

const (
	EventConstruct EventKind = "construct"
	EventSet       EventKind = "set"
	EventDefault   EventKind = "default"
	EventCall      EventKind = "call"
	EventReturn    EventKind = "return"
	EventSpawn     EventKind = "spawn"
	EventAwait     EventKind = "await"
)

// Event is one traced step. Value is the converted argument for set, the
// evaluated default for default, and the result for return.
type Event struct {
	Seq   int64      `json:"seq"`
	Kind  EventKind  `json:"kind"`
	Decl  string     `json:"decl"`
	Name  string     `json:"name,omitempty"`
	Value ir.Value   `json:"value,omitempty"`
	Args  []ir.Value `json:"args,omitempty"`
}

// Engine drives synthesized builders against registered bodies.
//
// Registration must finish before the first Construct. Construct, Set,
// Invoke and Spawn are safe for concurrent use; trace order then follows
// the clock.
type Engine struct {
	clock  Sequencer
	logger *slog.Logger

	mu         sync.Mutex
	bodies     map[string]Body
	evaluators map[string]Evaluator
	trace      []Event
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the default clock.
func WithClock(c Sequencer) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger replaces slog.Default() for engine debug logs.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an engine with no registered bodies.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:      NewClock(),
		logger:     slog.Default(),
		bodies:     make(map[string]Body),
		evaluators: make(map[string]Evaluator),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register installs the body for a declaration. name is the function name
// for free functions and `Type::method` for methods, Type being the erased
// self type (see BodyKey).
func (e *Engine) Register(name string, body Body) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bodies[name] = body
}

// RegisterEvaluator installs the evaluator for an opaque default
// expression, keyed by its exact source text. Registered evaluators take
// precedence over literal evaluation.
func (e *Engine) RegisterEvaluator(expr string, ev Evaluator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.evaluators[expr] = ev
}

// BodyKey returns the registration name of out's original logic.
func BodyKey(out *ir.Output) string {
	if q := out.Terminal.Call.Qualifier; q != nil {
		return q.String() + "::" + out.Decl
	}
	return out.Decl
}

// Trace returns a copy of the recorded events in sequence order.
func (e *Engine) Trace() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Event, len(e.trace))
	copy(out, e.trace)
	return out
}

// ResetTrace discards recorded events. The clock keeps running.
func (e *Engine) ResetTrace() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trace = nil
}

func (e *Engine) record(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ev.Seq = e.clock.Next()
	e.trace = append(e.trace, ev)
}

func (e *Engine) body(name string) (Body, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.bodies[name]
	return b, ok
}

func (e *Engine) evaluator(expr string) (Evaluator, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ev, ok := e.evaluators[expr]
	return ev, ok
}
