package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/optchain/internal/compiler"
	"github.com/roach88/optchain/internal/engine"
	"github.com/roach88/optchain/internal/ir"
	"github.com/roach88/optchain/internal/syntax"
	"github.com/roach88/optchain/internal/testutil"
	"github.com/roach88/optchain/internal/transform"
)

// Harness executes one scenario against a fresh engine.
type Harness struct {
	engine *engine.Engine
	clock  *testutil.DeterministicClock
	logger *slog.Logger
}

// Run executes a scenario and returns the result. An error means the
// scenario could not be set up (unreadable specs, unknown declaration);
// failed expectations are reported in the result instead.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context for terminal calls.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	specs, err := LoadSpecs(scenario.Specs)
	if err != nil {
		return nil, err
	}
	out, diag, err := transformDecl(specs, scenario.Decl)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	if diag != nil || scenario.Diagnostic != "" {
		checkDiagnostic(result, scenario.Diagnostic, diag)
		return result, nil
	}

	inst, err := parseInstantiation(scenario.Instantiate)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := testutil.NewDeterministicClock()
	h := &Harness{
		engine: engine.New(engine.WithClock(clock), engine.WithLogger(logger)),
		clock:  clock,
		logger: logger,
	}
	h.engine.Register(engine.BodyKey(out), Bodies[scenario.Body])
	for expr, raw := range scenario.Evaluators {
		v, err := ir.FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("evaluator %q: %w", expr, err)
		}
		h.engine.RegisterEvaluator(expr, func(context.Context) (ir.Value, error) { return v, nil })
	}

	h.executeFlow(ctx, out, inst, scenario.Flow, result)
	result.Trace = fromEngineEvents(h.engine.Trace())

	for _, msg := range EvaluateAssertions(result.Trace, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// LoadSpecs compiles each CUE file and merges the declarations in order.
func LoadSpecs(paths []string) (*compiler.Specs, error) {
	cctx := cuecontext.New()
	all := &compiler.Specs{}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read spec %s: %w", path, err)
		}
		specs, err := compiler.CompileSpecs(cctx.CompileBytes(data, cue.Filename(path)))
		if err != nil {
			return nil, fmt.Errorf("failed to compile spec %s: %w", path, err)
		}
		all.Merge(specs)
	}
	return all, nil
}

// transformDecl finds decl in specs and transforms it. A rejected
// declaration is returned as a diagnostic, not an error.
func transformDecl(specs *compiler.Specs, decl string) (*ir.Output, *transform.Diagnostic, error) {
	typ, name := splitDecl(decl)
	if typ == "" {
		d, ok := specs.Fn(name)
		if !ok {
			return nil, nil, fmt.Errorf("function %q not found in specs", name)
		}
		if errs := compiler.Validate(d); len(errs) > 0 {
			return nil, nil, fmt.Errorf("invalid declaration %s: %w", decl, errs[0])
		}
		out, err := transform.Transform(*d)
		if err != nil {
			var diag *transform.Diagnostic
			if errors.As(err, &diag) {
				return nil, diag, nil
			}
			return nil, nil, err
		}
		return out, nil, nil
	}

	block, ok := specs.Impl(typ)
	if !ok {
		return nil, nil, fmt.Errorf("impl block %q not found in specs", typ)
	}
	if errs := compiler.Validate(block); len(errs) > 0 {
		return nil, nil, fmt.Errorf("invalid impl block %s: %w", typ, errs[0])
	}
	res, err := transform.TransformImpl(*block)
	if err != nil {
		return nil, nil, err
	}
	for _, out := range res.Outputs {
		if out.Decl == name {
			return out, nil, nil
		}
	}
	for _, diag := range res.Diagnostics {
		if diag.Decl == name {
			return nil, diag, nil
		}
	}
	return nil, nil, fmt.Errorf("impl block %q has no annotated method %q", typ, name)
}

func checkDiagnostic(result *Result, want string, got *transform.Diagnostic) {
	switch {
	case got == nil:
		result.AddError(fmt.Sprintf("expected diagnostic %s, transformation succeeded", want))
	case want == "":
		result.Diagnostic = string(got.Kind)
		result.AddError(fmt.Sprintf("unexpected diagnostic: %v", got))
	default:
		result.Diagnostic = string(got.Kind)
		if string(got.Kind) != want {
			result.AddError(fmt.Sprintf("expected diagnostic %s, got %s", want, got.Kind))
		}
	}
}

func parseInstantiation(raw map[string]string) (engine.Instantiation, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	inst := make(engine.Instantiation, len(raw))
	for name, src := range raw {
		t, err := syntax.ParseType(src)
		if err != nil {
			return nil, fmt.Errorf("instantiate %s: %w", name, err)
		}
		inst[name] = t
	}
	return inst, nil
}

// executeFlow runs every step, recording failures in result. A failed
// construct leaves no current builder; later steps then fail too.
func (h *Harness) executeFlow(ctx context.Context, out *ir.Output, inst engine.Instantiation, flow []FlowStep, result *Result) {
	var (
		cur  engine.Builder
		have bool
	)
	for i, step := range flow {
		switch {
		case step.Construct != nil:
			recv, args, err := constructArgs(step.Construct)
			if err != nil {
				result.AddError(fmt.Sprintf("flow[%d]: %v", i, err))
				continue
			}
			b, err := h.engine.Construct(out, inst, recv, args...)
			if checkErr(result, i, "construct", err, step.Construct.Error) {
				cur, have = b, true
			}

		case step.Set != nil:
			if !have {
				result.AddError(fmt.Sprintf("flow[%d]: set without a builder", i))
				continue
			}
			v, err := ir.FromAny(step.Set.Value)
			if err != nil {
				result.AddError(fmt.Sprintf("flow[%d]: %v", i, err))
				continue
			}
			b, err := cur.Set(step.Set.Name, v)
			if checkErr(result, i, "set "+step.Set.Name, err, step.Set.Error) {
				cur = b
			}

		case step.Invoke != nil:
			if !have {
				result.AddError(fmt.Sprintf("flow[%d]: invoke without a builder", i))
				continue
			}
			got, err := h.invoke(ctx, cur)
			if !checkErr(result, i, "invoke", err, step.Invoke.Error) || step.Invoke.Expect == nil {
				continue
			}
			if msg := compareValue(step.Invoke.Expect, got); msg != "" {
				result.AddError(fmt.Sprintf("flow[%d]: invoke: %s", i, msg))
			}
		}
	}
}

func (h *Harness) invoke(ctx context.Context, b engine.Builder) (ir.Value, error) {
	if !b.Output().Terminal.Async {
		return h.engine.Invoke(ctx, b)
	}
	fut, err := h.engine.Spawn(b)
	if err != nil {
		return nil, err
	}
	return fut.Await(ctx)
}

func constructArgs(step *ConstructStep) (ir.Value, []ir.Value, error) {
	var recv ir.Value
	if step.Receiver != nil {
		v, err := ir.FromAny(step.Receiver)
		if err != nil {
			return nil, nil, fmt.Errorf("receiver: %w", err)
		}
		recv = v
	}
	args := make([]ir.Value, len(step.Args))
	for i, raw := range step.Args {
		v, err := ir.FromAny(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("args[%d]: %w", i, err)
		}
		args[i] = v
	}
	return recv, args, nil
}

// checkErr reports whether the step succeeded and matched expectations.
// With want set, the step must fail with that engine error code.
func checkErr(result *Result, i int, op string, err error, want string) bool {
	if want != "" {
		switch code := engine.CodeOf(err); {
		case err == nil:
			result.AddError(fmt.Sprintf("flow[%d]: %s: expected error %s, got success", i, op, want))
		case string(code) != want:
			result.AddError(fmt.Sprintf("flow[%d]: %s: expected error %s, got %v", i, op, want, err))
		}
		return false
	}
	if err != nil {
		result.AddError(fmt.Sprintf("flow[%d]: %s: %v", i, op, err))
		return false
	}
	return true
}

// compareValue compares canonical JSON of the expected and actual values.
func compareValue(expect any, got ir.Value) string {
	want, err := ir.FromAny(expect)
	if err != nil {
		return fmt.Sprintf("bad expectation: %v", err)
	}
	wb, err := ir.MarshalCanonical(want)
	if err != nil {
		return err.Error()
	}
	gb, err := ir.MarshalCanonical(got)
	if err != nil {
		return err.Error()
	}
	if !bytes.Equal(wb, gb) {
		return fmt.Sprintf("expected %s, got %s", wb, gb)
	}
	return ""
}
