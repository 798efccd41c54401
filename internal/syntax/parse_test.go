package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/optchain/internal/ir"
)

func TestParseType_RoundTrip(t *testing.T) {
	tests := []string{
		"String",
		"Self",
		"Vec<T>",
		"core::option::Option<String>",
		"HashMap<K, Vec<V>>",
		"&'a T",
		"&'a mut MyVec<T>",
		"&str",
		"&mut [u8]",
		"[u8; 32]",
		"()",
		"(A, B)",
		"(A,)",
		"fn(i32, i32) -> i64",
		"fn()",
		"impl Iterator<Item = T>",
		"Box<dyn Error + Send + 'static>",
		"Cow<'static, str>",
		"Self::Item",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			ty, err := ParseType(src)
			require.NoError(t, err)
			assert.Equal(t, src, ty.String())
		})
	}
}

func TestParseType_Structure(t *testing.T) {
	ty, err := ParseType("&'a mut Pair<'a, T>")
	require.NoError(t, err)

	assert.Equal(t, ir.KindRef, ty.Kind)
	assert.Equal(t, "'a", ty.Lifetime)
	assert.True(t, ty.Mut)
	require.NotNil(t, ty.Elem)
	assert.Equal(t, "Pair", ty.Elem.Segments[0].Name)
	require.Len(t, ty.Elem.Segments[0].Args, 2)
	assert.Equal(t, "'a", ty.Elem.Segments[0].Args[0].Lifetime)
	assert.Equal(t, "T", ty.Elem.Segments[0].Args[1].Type.Ident())

	self, err := ParseType("Self")
	require.NoError(t, err)
	assert.True(t, self.IsSelf())
}

func TestParseType_Errors(t *testing.T) {
	for _, src := range []string{"", "Vec<T", "&'", "(A B)", "Vec<T>>", "#x", "dyn Fn(i32) + 'a"} {
		t.Run(src, func(t *testing.T) {
			_, err := ParseType(src)
			require.Error(t, err)
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestParseGenerics(t *testing.T) {
	g, err := ParseGenerics("<'a, 'b: 'a, T: Default + Copy + 'a, U = u8>")
	require.NoError(t, err)

	require.Len(t, g.Lifetimes, 2)
	assert.Equal(t, "'a", g.Lifetimes[0].Name)
	assert.Equal(t, []string{"'a"}, g.Lifetimes[1].Bounds)
	require.Len(t, g.Types, 2)
	assert.Equal(t, "T", g.Types[0].Name)
	assert.Equal(t, "Default + Copy + 'a", ir.FormatBounds(g.Types[0].Bounds))
	require.NotNil(t, g.Types[1].Default)
	assert.Equal(t, "u8", g.Types[1].Default.String())
	assert.Equal(t, "<'a, 'b: 'a, T: Default + Copy + 'a, U = u8>", g.DeclString())
}

func TestParseGenerics_Variants(t *testing.T) {
	g, err := ParseGenerics("")
	require.NoError(t, err)
	assert.False(t, g.HasParams())

	g, err = ParseGenerics("T, R")
	require.NoError(t, err)
	assert.Equal(t, "<T, R>", g.ArgString(), "brackets are optional")

	_, err = ParseGenerics("<T")
	assert.Error(t, err)
}

func TestParseWhere(t *testing.T) {
	preds, err := ParseWhere("where T: Into<R>, 'a: 'b + 'c, Vec<T>: Clone")
	require.NoError(t, err)
	require.Len(t, preds, 3)
	assert.Equal(t, "T: Into<R>", preds[0].String())
	assert.Equal(t, "'a: 'b + 'c", preds[1].String())
	assert.Equal(t, "Vec<T>: Clone", preds[2].String())

	preds, err = ParseWhere("")
	require.NoError(t, err)
	assert.Nil(t, preds)

	_, err = ParseWhere("T Clone")
	assert.Error(t, err)
}

func TestParseReceiver(t *testing.T) {
	tests := []struct {
		src  string
		ok   bool
		want ir.ReceiverSyntax
	}{
		{"self", true, ir.ReceiverSyntax{}},
		{"mut self", true, ir.ReceiverSyntax{Mut: true}},
		{"&self", true, ir.ReceiverSyntax{Ref: true}},
		{"&mut self", true, ir.ReceiverSyntax{Ref: true, Mut: true}},
		{"&'a self", true, ir.ReceiverSyntax{Ref: true, Lifetime: "'a"}},
		{"&'a mut self", true, ir.ReceiverSyntax{Ref: true, Lifetime: "'a", Mut: true}},
		{"other", false, ir.ReceiverSyntax{}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			r, ok, err := ParseReceiver(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, r)
			if ok {
				assert.Equal(t, tt.src, r.String())
			}
		})
	}
}

func TestParsePattern(t *testing.T) {
	tests := []struct {
		src  string
		want ir.Pattern
	}{
		{"a", ir.Pattern{Kind: ir.PatIdent, Name: "a"}},
		{"mut a", ir.Pattern{Kind: ir.PatIdent, Name: "a", Mut: true}},
		{"_optarg_self", ir.Pattern{Kind: ir.PatIdent, Name: "_optarg_self"}},
		{"_", ir.Pattern{Kind: ir.PatWild}},
		{"(a, b)", ir.Pattern{Kind: ir.PatOther, Text: "(a, b)"}},
		{"Point { x, y }", ir.Pattern{Kind: ir.PatOther, Text: "Point { x, y }"}},
		{"mut", ir.Pattern{Kind: ir.PatOther, Text: "mut"}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePattern(tt.src))
		})
	}
}

func TestParseError_Offset(t *testing.T) {
	_, err := ParseType("Vec<T, #>")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "Vec<T, #>", pe.Input)
	assert.GreaterOrEqual(t, pe.Offset, 0)
	assert.LessOrEqual(t, pe.Offset, len(pe.Input))

	_, err = ParseType("u8; type Y = i32")
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Message, "trailing")
}

func TestParseType_Unsupported(t *testing.T) {
	for _, src := range []string{"Send + Sync", "impl Fn(u8) -> u8", "<T as Trait>::Out"} {
		t.Run(src, func(t *testing.T) {
			_, err := ParseType(src)
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestParsePattern_Typed(t *testing.T) {
	assert.Equal(t, ir.Pattern{Kind: ir.PatIdent, Name: "self"}, ParsePattern("self"))
	assert.Equal(t, ir.Pattern{Kind: ir.PatOther, Text: "&x"}, ParsePattern("&x"))
}

func TestParseReceiver_Invalid(t *testing.T) {
	_, _, err := ParseReceiver("&'")
	assert.Error(t, err)

	_, ok, err := ParseReceiver("self: Box<Self>")
	require.NoError(t, err)
	assert.False(t, ok, "typed self is an ordinary parameter")
}
