package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/optchain/internal/ir"
)

// Builder is one builder value. The zero Builder is not usable; obtain one
// from Engine.Construct. Builders are immutable: Set returns a modified
// copy and leaves the receiver untouched.
type Builder struct {
	engine   *Engine
	out      *ir.Output
	inst     Instantiation
	receiver ir.Value
	required []ir.Value
	optional []ir.Value // nil entries are absent
}

// Construct runs the constructor of out. receiver must be nil exactly when
// the builder has no receiver field; required holds one value per required
// parameter in declaration order.
func (e *Engine) Construct(out *ir.Output, inst Instantiation, receiver ir.Value, required ...ir.Value) (Builder, error) {
	b := out.Builder
	if (b.ReceiverField == nil) != (receiver == nil) {
		return Builder{}, &RuntimeError{
			Code:    ErrCodeArity,
			Message: fmt.Sprintf("receiver mismatch: builder receiver is %s", out.Receiver.Variant),
			Decl:    out.Decl,
		}
	}
	if len(required) != len(b.RequiredFields) {
		return Builder{}, newArityError(out.Decl, len(b.RequiredFields), len(required))
	}

	bl := Builder{
		engine:   e,
		out:      out,
		inst:     inst,
		receiver: receiver,
		required: make([]ir.Value, len(required)),
		optional: make([]ir.Value, len(b.OptionalFields)),
	}
	for i, f := range b.RequiredFields {
		v, err := convert(required[i], inst.Apply(f.Type), f.Name)
		if err != nil {
			return Builder{}, withDecl(err, out.Decl)
		}
		bl.required[i] = v
	}

	e.record(Event{Kind: EventConstruct, Decl: out.Decl, Name: out.Constructor.Name, Args: slices.Clone(bl.required)})
	e.logger.Debug("builder constructed", "decl", out.Decl, "builder", b.StructName)
	return bl, nil
}

// Set returns a copy of b with the optional field name set to v converted
// into the field's type.
func (b Builder) Set(name string, v ir.Value) (Builder, error) {
	setter, ok := b.out.Setter(name)
	if !ok {
		return b, &RuntimeError{
			Code:    ErrCodeUnknownSetter,
			Message: fmt.Sprintf("no optional parameter %q", name),
			Decl:    b.out.Decl,
		}
	}
	cv, err := convert(v, b.inst.Apply(setter.Field.Type), name)
	if err != nil {
		return b, withDecl(err, b.out.Decl)
	}

	idx := slices.IndexFunc(b.out.Builder.OptionalFields, func(f ir.Field) bool { return f.Name == name })
	next := b
	next.optional = slices.Clone(b.optional)
	next.optional[idx] = cv

	b.engine.record(Event{Kind: EventSet, Decl: b.out.Decl, Name: name, Value: cv})
	return next, nil
}

// IsSet reports whether the optional field name holds a value.
func (b Builder) IsSet(name string) bool {
	idx := slices.IndexFunc(b.out.Builder.OptionalFields, func(f ir.Field) bool { return f.Name == name })
	return idx >= 0 && b.optional[idx] != nil
}

// Output returns the synthesized declaration b was built from.
func (b Builder) Output() *ir.Output { return b.out }

// Invoke runs a synchronous terminal operation.
func (e *Engine) Invoke(ctx context.Context, b Builder) (ir.Value, error) {
	if b.out.Terminal.Async {
		return nil, &RuntimeError{
			Code:    ErrCodeAsyncMismatch,
			Message: fmt.Sprintf("terminal %s is async; use Spawn", b.out.Terminal.Name),
			Decl:    b.out.Decl,
		}
	}
	return e.run(ctx, b)
}

// run binds every terminal binding in plan order, calls the body and
// converts its result into the instantiated return type.
func (e *Engine) run(ctx context.Context, b Builder) (ir.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := b.out
	key := BodyKey(out)
	body, ok := e.body(key)
	if !ok {
		return nil, &RuntimeError{
			Code:    ErrCodeMissingBody,
			Message: fmt.Sprintf("no body registered for %s", key),
			Decl:    out.Decl,
		}
	}

	env := make(map[string]ir.Value, len(out.Terminal.Bindings))
	req := 0
	for _, bind := range out.Terminal.Bindings {
		switch bind.Source {
		case ir.BindReceiver:
			env[bind.Name] = b.receiver
		case ir.BindRequired:
			env[bind.Name] = b.required[req]
			req++
		case ir.BindOptional:
			idx := slices.IndexFunc(out.Builder.OptionalFields, func(f ir.Field) bool { return f.Name == bind.Name })
			if idx >= 0 && b.optional[idx] != nil {
				env[bind.Name] = b.optional[idx]
				continue
			}
			v, err := e.evalDefault(ctx, *bind.Default, bind.Type, b.inst)
			if err != nil {
				return nil, withDecl(err, out.Decl)
			}
			if v, err = convert(v, b.inst.Apply(bind.Type), bind.Name); err != nil {
				return nil, withDecl(err, out.Decl)
			}
			env[bind.Name] = v
			e.record(Event{Kind: EventDefault, Decl: out.Decl, Name: bind.Name, Value: v})
		}
	}

	args := make([]ir.Value, len(out.Terminal.Call.Args))
	for i, name := range out.Terminal.Call.Args {
		args[i] = env[name]
	}
	e.record(Event{Kind: EventCall, Decl: out.Decl, Name: key, Args: args})
	e.logger.Debug("terminal call", "decl", out.Decl, "body", key, "defaults", len(out.Builder.OptionalFields)-countSet(b.optional))

	res, err := body(ctx, slices.Clone(args))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if res == nil {
		res = ir.Unit{}
	}
	if out.Terminal.Result != nil {
		if res, err = convert(res, b.inst.Apply(*out.Terminal.Result), "return"); err != nil {
			return nil, withDecl(err, out.Decl)
		}
	}
	e.record(Event{Kind: EventReturn, Decl: out.Decl, Name: key, Value: res})
	return res, nil
}

func countSet(vals []ir.Value) int {
	n := 0
	for _, v := range vals {
		if v != nil {
			n++
		}
	}
	return n
}

// Future is the pending result of an async terminal. Nothing runs until
// the first Await; later Awaits return the same outcome.
type Future struct {
	engine *Engine
	b      Builder

	once sync.Once
	val  ir.Value
	err  error
}

// Spawn starts an async terminal operation. Defaults are not evaluated and
// the body is not called until the returned future is awaited.
func (e *Engine) Spawn(b Builder) (*Future, error) {
	if !b.out.Terminal.Async {
		return nil, &RuntimeError{
			Code:    ErrCodeAsyncMismatch,
			Message: fmt.Sprintf("terminal %s is not async; use Invoke", b.out.Terminal.Name),
			Decl:    b.out.Decl,
		}
	}
	e.record(Event{Kind: EventSpawn, Decl: b.out.Decl, Name: b.out.Terminal.Name})
	return &Future{engine: e, b: b}, nil
}

// Await is the single suspension point of the terminal.
func (f *Future) Await(ctx context.Context) (ir.Value, error) {
	f.once.Do(func() {
		f.engine.record(Event{Kind: EventAwait, Decl: f.b.out.Decl, Name: f.b.out.Terminal.Name})
		f.val, f.err = f.engine.run(ctx, f.b)
	})
	return f.val, f.err
}

func withDecl(err error, decl string) error {
	var re *RuntimeError
	if errors.As(err, &re) && re.Decl == "" {
		re.Decl = decl
	}
	return err
}
