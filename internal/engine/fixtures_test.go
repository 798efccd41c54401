package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/optchain/internal/ir"
	"github.com/roach88/optchain/internal/transform"
)

func param(name string, t ir.Type) ir.Param {
	return ir.Param{Pattern: ir.Pattern{Kind: ir.PatIdent, Name: name}, Type: t}
}

func withDefault(p ir.Param, src string) ir.Param {
	p.Default = &ir.Expr{Kind: ir.ExprOpaque, Source: src}
	return p
}

func withTypeDefault(p ir.Param) ir.Param {
	p.Default = &ir.Expr{Kind: ir.ExprTypeDefault}
	return p
}

func refSelf() ir.Param {
	return ir.Param{
		Pattern:  ir.Pattern{Kind: ir.PatReceiver},
		Type:     ir.SelfType(),
		Receiver: &ir.ReceiverSyntax{Ref: true, Lifetime: "'a"},
	}
}

var (
	stringT = ir.Named("String")
	i32T    = ir.Named("i32")
)

func mustTransform(t *testing.T, decl ir.Declaration) *ir.Output {
	t.Helper()
	out, err := transform.Transform(decl)
	require.NoError(t, err)
	return out
}

func quietEngine(opts ...Option) *Engine {
	return New(append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)...)
}

// joinStrings: a: String, b: String = Default, c: String = "ccc".to_owned().
func joinStrings(t *testing.T) (*Engine, *ir.Output) {
	out := mustTransform(t, ir.Declaration{
		Sig: ir.Signature{
			Name: "join_strings",
			Params: []ir.Param{
				param("a", stringT),
				withTypeDefault(param("b", stringT)),
				withDefault(param("c", stringT), `"ccc".to_owned()`),
			},
			Return: stringT.Ptr(),
		},
		Target: ir.Target{Builder: "JoinStringBuilder", Terminal: "exec"},
	})
	e := quietEngine()
	e.Register("join_strings", func(_ context.Context, args []ir.Value) (ir.Value, error) {
		var s string
		for _, a := range args {
			s += string(a.(ir.Str))
		}
		return ir.Str(s), nil
	})
	return e, out
}

// adder: impl<'a> Adder { fn add(&'a self, a: i32 = 20) -> i32 }, with the
// receiver holding `value`.
func adder(t *testing.T, async bool, def string) (*Engine, *ir.Output) {
	out := mustTransform(t, ir.Declaration{
		Sig: ir.Signature{
			Name:     "add",
			Async:    async,
			Generics: ir.Generics{Lifetimes: []ir.LifetimeParam{{Name: "'a"}}},
			Params:   []ir.Param{refSelf(), withDefault(param("a", i32T), def)},
			Return:   i32T.Ptr(),
		},
		Target:    ir.Target{Builder: "AddBuilder", Terminal: "exec"},
		Enclosing: &ir.Enclosing{SelfType: ir.Named("Adder")},
	})
	e := quietEngine()
	e.Register("Adder::add", func(_ context.Context, args []ir.Value) (ir.Value, error) {
		self := args[0].(ir.Record)
		return self["value"].(ir.Int) + args[1].(ir.Int), nil
	})
	return e, out
}

func holding(n int64) ir.Value {
	return ir.Record{"value": ir.Int(n)}
}
