package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/optchain/internal/ir"
	"github.com/roach88/optchain/internal/transform"
)

// openTestStore opens a private in-memory store.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func identParam(name string, typ string) ir.Param {
	return ir.Param{Pattern: ir.Pattern{Kind: ir.PatIdent, Name: name}, Type: ir.Named(typ)}
}

// sampleDecl is `fn name(a: i32, b: i32 = 1) -> i32` targeting builder.
func sampleDecl(name, builder string) ir.Declaration {
	b := identParam("b", "i32")
	b.Default = &ir.Expr{Kind: ir.ExprOpaque, Source: "1"}
	return ir.Declaration{
		Sig: ir.Signature{
			Name:   name,
			Params: []ir.Param{identParam("a", "i32"), b},
			Return: ir.Named("i32").Ptr(),
			Body:   "{ a + b }",
		},
		Target: ir.Target{Builder: builder, Terminal: "run"},
	}
}

func sampleOutput(t *testing.T, name, builder string) *ir.Output {
	t.Helper()
	out, err := transform.Transform(sampleDecl(name, builder))
	require.NoError(t, err)
	return out
}

// sampleDiagnostic returns a declaration with a wildcard parameter, its
// hash, and the diagnostic it is rejected with.
func sampleDiagnostic(t *testing.T) (string, *transform.Diagnostic) {
	t.Helper()
	decl := sampleDecl("wild", "WildBuilder")
	decl.Sig.Params = append(decl.Sig.Params, ir.Param{Pattern: ir.Pattern{Kind: ir.PatWild}, Type: ir.Named("u8")})

	_, err := transform.Transform(decl)
	require.Error(t, err)
	var d *transform.Diagnostic
	require.ErrorAs(t, err, &d)
	return ir.MustDeclarationHash(decl), d
}

func canonical(t *testing.T, v any) string {
	t.Helper()
	data, err := ir.CanonicalOf(v)
	require.NoError(t, err)
	return string(data)
}
