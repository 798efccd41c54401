package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypePredicates(t *testing.T) {
	assert.True(t, SelfType().IsSelf())
	assert.False(t, Named(SelfName, TypeArg(Named("T"))).IsSelf(), "Self<T> is not the placeholder")
	assert.False(t, PathOf([]string{"a", SelfName}).IsSelf())
	assert.False(t, Ref("'a", false, SelfType()).IsSelf())

	assert.True(t, UnitType().IsUnit())
	assert.False(t, Tuple(Named("T")).IsUnit())

	assert.Equal(t, "T", Named("T").Ident())
	assert.Empty(t, Named("Vec", TypeArg(Named("T"))).Ident())
	assert.Empty(t, PathOf([]string{"std", "String"}).Ident())
	assert.Equal(t, "String", PathOf([]string{"std", "String"}).Last().Name)
}

func TestTypeClone_IsDeep(t *testing.T) {
	orig := Ref("'a", false, Named("Vec", TypeArg(Named("T"))))
	c := orig.Clone()
	c.Elem.Segments[0].Args[0].Type.Segments[0].Name = "U"
	c.Elem.Segments[0].Name = "Box"

	assert.Equal(t, "&'a Vec<T>", orig.String())
	assert.Equal(t, "&'a Box<U>", c.String())
}

func TestGenericsClone_IsDeep(t *testing.T) {
	orig := Generics{
		Lifetimes: []LifetimeParam{{Name: "'a", Bounds: []string{"'b"}}},
		Types:     []TypeParam{{Name: "T", Bounds: []Bound{TraitBound(Named("Copy"))}, Default: Named("i32").Ptr()}},
		Where:     []WherePredicate{{Type: Named("T").Ptr(), Bounds: []Bound{TraitBound(Named("Send"))}}},
	}
	c := orig.Clone()
	require.Equal(t, orig, c)

	c.Lifetimes[0].Bounds[0] = "'c"
	c.Types[0].Bounds[0].Trait.Segments[0].Name = "Clone"
	c.Types[0].Default.Segments[0].Name = "u8"
	c.Where[0].Type.Segments[0].Name = "U"

	assert.Equal(t, "<'a: 'b, T: Copy = i32>", orig.DeclString())
	assert.Equal(t, " where T: Send", orig.WhereString())
}

func TestGenericsArgs(t *testing.T) {
	g := Generics{
		Lifetimes: []LifetimeParam{{Name: "'a"}},
		Types:     []TypeParam{{Name: "T", Bounds: []Bound{TraitBound(Named("Copy"))}}},
	}
	assert.Equal(t, []GenericArg{LifetimeArg("'a"), TypeArg(Named("T"))}, g.Args())
	assert.True(t, g.HasParams())
	assert.False(t, g.IsEmpty())

	whereOnly := Generics{Where: []WherePredicate{{Lifetime: "'a"}}}
	assert.False(t, whereOnly.HasParams())
	assert.False(t, whereOnly.IsEmpty())
	assert.True(t, Generics{}.IsEmpty())
}

func TestIsNamedLifetime(t *testing.T) {
	assert.True(t, IsNamedLifetime("'a"))
	assert.False(t, IsNamedLifetime("'static"))
	assert.False(t, IsNamedLifetime("'_"))
	assert.False(t, IsNamedLifetime(""))
}

func TestParamKinds(t *testing.T) {
	recv := Param{Pattern: Pattern{Kind: PatReceiver}, Type: SelfType(), Receiver: &ReceiverSyntax{}}
	typed := Param{Pattern: Pattern{Kind: PatIdent, Name: "self"}, Type: Named("Box", TypeArg(SelfType()))}
	plain := Param{Pattern: Pattern{Kind: PatIdent, Name: "a"}, Type: Named("i32"), Default: &Expr{Kind: ExprTypeDefault}}

	assert.True(t, recv.IsReceiver())
	assert.False(t, recv.IsTypedSelf())
	assert.True(t, typed.IsReceiver())
	assert.True(t, typed.IsTypedSelf())
	assert.False(t, plain.IsReceiver())
	assert.True(t, plain.IsOptional())
	assert.False(t, recv.IsOptional())
}

func TestImplBlockDeclarations(t *testing.T) {
	block := ImplBlock{
		Name:  "Adder",
		Scope: Enclosing{SelfType: Named("Adder")},
		Items: []ImplItem{
			{Sig: Signature{Name: "new"}},
			{Sig: Signature{Name: "add"}, Target: &Target{Builder: "AddBuilder", Terminal: "exec"}},
			{Sig: Signature{Name: "sub"}, Target: &Target{Builder: "SubBuilder", Terminal: "exec"}},
		},
	}

	decls := block.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, "add", decls[0].Sig.Name)
	assert.Equal(t, "SubBuilder", decls[1].Target.Builder)

	// Each declaration owns its copy of the scope.
	decls[0].Enclosing.SelfType = Named("Other")
	assert.Equal(t, "Adder", decls[1].Enclosing.SelfType.String())
	assert.Equal(t, "Adder", block.Scope.SelfType.String())

	pass := block.Passthrough()
	require.Len(t, pass, 1)
	assert.Equal(t, "new", pass[0].Name)
	assert.Nil(t, ImplBlock{}.Passthrough())
}

func TestPosIsValid(t *testing.T) {
	assert.False(t, Pos{}.IsValid())
	assert.True(t, Pos{File: "a.cue", Line: 1, Column: 1}.IsValid())
}
