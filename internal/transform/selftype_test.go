package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/optchain/internal/ir"
)

func TestResolve(t *testing.T) {
	self := ir.Named("MyVec", ir.TypeArg(ir.Named("T")))

	tests := []struct {
		name string
		in   ir.Type
		want string
	}{
		{"bare placeholder", ir.SelfType(), "MyVec<T>"},
		{"unrelated path", ir.Named("String"), "String"},
		{"nested generic arg", ir.Named("Vec", ir.TypeArg(ir.SelfType())), "Vec<MyVec<T>>"},
		{"reference", ir.Ref("'a", true, ir.SelfType()), "&'a mut MyVec<T>"},
		{"tuple", ir.Tuple(ir.SelfType(), ir.Named("i32")), "(MyVec<T>, i32)"},
		{"slice", ir.Type{Kind: ir.KindSlice, Elem: ir.SelfType().Ptr()}, "[MyVec<T>]"},
		{"fn type", ir.Type{Kind: ir.KindFn, Elems: []ir.Type{ir.SelfType()}, Result: ir.SelfType().Ptr()}, "fn(MyVec<T>) -> MyVec<T>"},
		{"impl bound", ir.Type{Kind: ir.KindImpl, Bounds: []ir.Bound{ir.TraitBound(ir.Named("Into", ir.TypeArg(ir.SelfType())))}}, "impl Into<MyVec<T>>"},
		{"associated path untouched", ir.PathOf([]string{"Self", "Item"}), "Self::Item"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.in, self).String())
		})
	}
}

func TestResolve_DoesNotAliasInput(t *testing.T) {
	self := ir.Named("S")
	in := ir.Named("Vec", ir.TypeArg(ir.SelfType()))
	out := Resolve(in, self)
	out.Segments[0].Args[0].Type.Segments[0].Name = "Changed"
	assert.Equal(t, "Vec<Self>", in.String())
}

func TestResolveSignature(t *testing.T) {
	self := ir.Named("Pair", ir.TypeArg(ir.Named("T")))
	sig := ir.Signature{
		Name: "merge",
		Generics: ir.Generics{
			Types: []ir.TypeParam{{Name: "V", Bounds: []ir.Bound{ir.TraitBound(ir.Named("From", ir.TypeArg(ir.SelfType())))}}},
			Where: []ir.WherePredicate{{Type: ir.SelfType().Ptr(), Bounds: []ir.Bound{ir.TraitBound(ir.Named("Clone"))}}},
		},
		Params: []ir.Param{recv(true, "'a", false), ident("other", ir.SelfType())},
		Return: ir.Named("Option", ir.TypeArg(ir.SelfType())).Ptr(),
	}

	got := ResolveSignature(sig, self)

	assert.Equal(t, "Self", got.Params[0].Type.String(), "receiver shorthand keeps the placeholder")
	assert.Equal(t, "Pair<T>", got.Params[1].Type.String())
	assert.Equal(t, "Option<Pair<T>>", got.Return.String())
	assert.Equal(t, "<V: From<Pair<T>>>", got.Generics.DeclString())
	assert.Equal(t, " where Pair<T>: Clone", got.Generics.WhereString())
	assert.Equal(t, "other: Self", sig.Params[1].String(), "input untouched")
}

func TestErase(t *testing.T) {
	tests := []struct {
		name string
		in   ir.Type
		want string
	}{
		{"plain", ir.Named("TwoStr"), "TwoStr"},
		{"generic", ir.Named("MyVec", ir.LifetimeArg("'a"), ir.TypeArg(ir.Named("T"))), "MyVec"},
		{"qualified", ir.PathOf([]string{"crate", "data", "Pair"}, ir.TypeArg(ir.Named("T"))), "crate::data::Pair"},
		{"non-path", ir.Tuple(ir.Named("A"), ir.Named("B")), "(A, B)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Erase(tt.in).String())
		})
	}
}
