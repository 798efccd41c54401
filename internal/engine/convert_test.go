package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/optchain/internal/ir"
)

func vecOf(t ir.Type) ir.Type { return ir.Named("Vec", ir.TypeArg(t)) }

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		v    ir.Value
		typ  ir.Type
		want ir.Value
	}{
		{"int", ir.Int(7), i32T, ir.Int(7)},
		{"u8 upper bound", ir.Int(255), ir.Named("u8"), ir.Int(255)},
		{"i8 lower bound", ir.Int(-128), ir.Named("i8"), ir.Int(-128)},
		{"string", ir.Str("s"), stringT, ir.Str("s")},
		{"str ref", ir.Str("s"), ir.Ref("'a", false, ir.Named("str")), ir.Str("s")},
		{"bool", ir.Bool(true), ir.Named("bool"), ir.Bool(true)},
		{"unit", ir.Unit{}, ir.UnitType(), ir.Unit{}},
		{"option none", ir.Unit{}, ir.Named("Option", ir.TypeArg(i32T)), ir.Unit{}},
		{"option some", ir.Int(1), ir.Named("Option", ir.TypeArg(i32T)), ir.Int(1)},
		{"vec", ir.List{ir.Int(1), ir.Int(2)}, vecOf(ir.Named("u8")), ir.List{ir.Int(1), ir.Int(2)}},
		{"tuple", ir.List{ir.Int(1), ir.Str("x")}, ir.Tuple(i32T, stringT), ir.List{ir.Int(1), ir.Str("x")}},
		{"array", ir.List{ir.Int(1), ir.Int(2)}, ir.Type{Kind: ir.KindArray, Elem: i32T.Ptr(), Len: "2"}, ir.List{ir.Int(1), ir.Int(2)}},
		{"box", ir.Int(3), ir.Named("Box", ir.TypeArg(i32T)), ir.Int(3)},
		{"map", ir.Record{"k": ir.Int(1)}, ir.Named("HashMap", ir.TypeArg(stringT), ir.TypeArg(i32T)), ir.Record{"k": ir.Int(1)}},
		{"opaque user type", ir.Record{"x": ir.Int(1)}, ir.Named("Point"), ir.Record{"x": ir.Int(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.v, tt.typ, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name string
		v    ir.Value
		typ  ir.Type
	}{
		{"u8 overflow", ir.Int(256), ir.Named("u8")},
		{"negative unsigned", ir.Int(-1), ir.Named("usize")},
		{"i32 overflow", ir.Int(1 << 31), i32T},
		{"string into int", ir.Str("1"), i32T},
		{"int into string", ir.Int(1), stringT},
		{"vec element", ir.List{ir.Int(300)}, vecOf(ir.Named("u8"))},
		{"tuple arity", ir.List{ir.Int(1)}, ir.Tuple(i32T, i32T)},
		{"array length", ir.List{ir.Int(1)}, ir.Type{Kind: ir.KindArray, Elem: i32T.Ptr(), Len: "2"}},
		{"unit mismatch", ir.Int(1), ir.UnitType()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(tt.v, tt.typ, nil)
			assert.True(t, IsConversionError(err), "got %v", err)
		})
	}
}

func TestInstantiation_Apply(t *testing.T) {
	in := Instantiation{"T": ir.Named("u8")}

	assert.Equal(t, "u8", in.Apply(ir.Named("T")).String())
	assert.Equal(t, "Vec<u8>", in.Apply(vecOf(ir.Named("T"))).String())
	assert.Equal(t, "&'a u8", in.Apply(ir.Ref("'a", false, ir.Named("T"))).String())
	assert.Equal(t, "(u8, R)", in.Apply(ir.Tuple(ir.Named("T"), ir.Named("R"))).String())

	orig := vecOf(ir.Named("T"))
	in.Apply(orig)
	assert.Equal(t, "Vec<T>", orig.String(), "Apply does not mutate its input")

	_, err := Convert(ir.Int(256), ir.Named("T"), in)
	assert.True(t, IsConversionError(err))
}

func TestZeroValue(t *testing.T) {
	tests := []struct {
		typ  ir.Type
		want ir.Value
	}{
		{i32T, ir.Int(0)},
		{ir.Named("bool"), ir.Bool(false)},
		{stringT, ir.Str("")},
		{ir.Ref("'a", false, ir.Named("str")), ir.Str("")},
		{ir.UnitType(), ir.Unit{}},
		{ir.Named("Option", ir.TypeArg(i32T)), ir.Unit{}},
		{vecOf(i32T), ir.List{}},
		{ir.Named("BTreeMap", ir.TypeArg(stringT), ir.TypeArg(i32T)), ir.Record{}},
		{ir.Tuple(i32T, stringT), ir.List{ir.Int(0), ir.Str("")}},
		{ir.Type{Kind: ir.KindArray, Elem: ir.Named("u8").Ptr(), Len: "3"}, ir.List{ir.Int(0), ir.Int(0), ir.Int(0)}},
		{ir.Named("Box", ir.TypeArg(i32T)), ir.Int(0)},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			got, err := ZeroValue(tt.typ, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := ZeroValue(ir.Named("T"), Instantiation{"T": ir.Named("i8")})
	require.NoError(t, err)
	assert.Equal(t, ir.Int(0), got)

	got, err = ZeroValue(ir.Type{Kind: ir.KindArray, Elem: ir.Named("u8").Ptr(), Len: "32"}, nil)
	require.NoError(t, err)
	assert.Len(t, got, 32)

	u8Array := func(n string) ir.Type { return ir.Type{Kind: ir.KindArray, Elem: ir.Named("u8").Ptr(), Len: n} }
	for _, typ := range []ir.Type{
		ir.Named("T"), ir.Named("f64"), ir.Ref("'a", false, i32T), {Kind: ir.KindFn},
		u8Array("33"), u8Array("100000000000"), u8Array("N"),
	} {
		_, err := ZeroValue(typ, nil)
		assert.Equal(t, ErrCodeNoDefault, CodeOf(err), typ.String())
	}
}
