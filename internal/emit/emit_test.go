package emit

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/optchain/internal/ir"
	"github.com/roach88/optchain/internal/transform"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func param(name string, t ir.Type) ir.Param {
	return ir.Param{Pattern: ir.Pattern{Kind: ir.PatIdent, Name: name}, Type: t}
}

func receiver(ref bool, lifetime string) ir.Param {
	return ir.Param{
		Pattern:  ir.Pattern{Kind: ir.PatReceiver},
		Type:     ir.SelfType(),
		Receiver: &ir.ReceiverSyntax{Ref: ref, Lifetime: lifetime},
	}
}

func TestFunction_Golden(t *testing.T) {
	str := ir.Named("String")
	a := param("a", str)
	a.Pattern.Mut = true
	b := param("b", str)
	b.Default = &ir.Expr{Kind: ir.ExprTypeDefault}
	c := param("c", str)
	c.Default = &ir.Expr{Kind: ir.ExprOpaque, Source: `"ccc".to_owned()`}

	out, err := transform.Transform(ir.Declaration{
		Sig: ir.Signature{
			Name:       "join_strings",
			Visibility: "pub",
			Params:     []ir.Param{a, b, c},
			Return:     str.Ptr(),
			Body:       "{ a.push_str(&b); a.push_str(&c); a }",
		},
		Target: ir.Target{Builder: "JoinStringBuilder", Terminal: "exec"},
	})
	require.NoError(t, err)

	newGoldie(t).Assert(t, "join_strings", []byte(Function(out)))
}

func TestImpl_Golden(t *testing.T) {
	tT := ir.Named("T")
	other := param("other", tT)
	other.Default = &ir.Expr{Kind: ir.ExprTypeDefault}

	block := ir.ImplBlock{
		Name: "MyVec",
		Scope: ir.Enclosing{
			SelfType: ir.Named("MyVec", ir.TypeArg(tT)),
			Generics: ir.Generics{Types: []ir.TypeParam{{
				Name:   "T",
				Bounds: []ir.Bound{ir.TraitBound(ir.Named("Default")), ir.TraitBound(ir.Named("Copy"))},
			}}},
		},
		Items: []ir.ImplItem{
			{Sig: ir.Signature{
				Name:       "len",
				Visibility: "pub",
				Params:     []ir.Param{receiver(true, "")},
				Return:     ir.Named("usize").Ptr(),
				Body:       "{ self.data.len() }",
			}},
			{
				Sig: ir.Signature{
					Name:       "get_or",
					Visibility: "pub",
					Generics:   ir.Generics{Lifetimes: []ir.LifetimeParam{{Name: "'a"}}},
					Params:     []ir.Param{receiver(true, "'a"), param("i", ir.Named("usize")), other},
					Return:     tT.Ptr(),
					Body:       "{ self.data.get(i).copied().unwrap_or(other) }",
				},
				Target: &ir.Target{Builder: "MyVecGetOr", Terminal: "get"},
			},
		},
	}

	res, err := transform.TransformImpl(block)
	require.NoError(t, err)
	require.False(t, res.Failed())

	newGoldie(t).Assert(t, "my_vec_impl", []byte(Impl(block, res)))
}

func TestFunction_AsyncTerminal(t *testing.T) {
	a := param("a", ir.Named("i32"))
	a.Default = &ir.Expr{Kind: ir.ExprOpaque, Source: "3"}
	out, err := transform.Transform(ir.Declaration{
		Sig: ir.Signature{
			Name:   "fetch",
			Async:  true,
			Params: []ir.Param{a},
			Return: ir.Named("i32").Ptr(),
			Body:   "{ a }",
		},
		Target: ir.Target{Builder: "FetchBuilder", Terminal: "run"},
	})
	require.NoError(t, err)

	src := Function(out)

	assert.Contains(t, src, "async fn run(self) -> i32 {")
	assert.Contains(t, src, "async fn _optarg_inner_func(a: i32) -> i32 { a }")
	assert.Contains(t, src, "_optarg_inner_func(a).await")
	assert.Contains(t, src, "fn fetch() -> FetchBuilder {")
	assert.NotContains(t, src, "async fn fetch", "constructor is always synchronous")
}

func TestFunction_UnitReturnOmitted(t *testing.T) {
	out, err := transform.Transform(ir.Declaration{
		Sig:    ir.Signature{Name: "log", Params: []ir.Param{param("msg", ir.Named("String"))}, Body: "{}"},
		Target: ir.Target{Builder: "LogBuilder", Terminal: "send"},
	})
	require.NoError(t, err)

	src := Function(out)

	assert.Contains(t, src, "fn send(self) {")
	assert.Contains(t, src, "fn _optarg_inner_func(msg: String) {}")
}

func TestCallExpr(t *testing.T) {
	tests := []struct {
		name string
		call ir.Call
		want string
	}{
		{"plain", ir.Call{Callee: "_optarg_inner_func", Args: []string{"a", "b"}}, "_optarg_inner_func(a, b)"},
		{"no args", ir.Call{Callee: "f"}, "f()"},
		{"qualified", ir.Call{Qualifier: ir.Named("TwoStr").Ptr(), Callee: "_optarg_inner_new", Args: []string{"x"}}, "TwoStr::_optarg_inner_new(x)"},
		{"non-path qualifier", ir.Call{Qualifier: ir.Tuple(ir.Named("A"), ir.Named("B")).Ptr(), Callee: "g"}, "<(A, B)>::g()"},
		{"awaited", ir.Call{Callee: "h", Args: []string{"_optarg_self"}, Await: true}, "h(_optarg_self).await"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CallExpr(tt.call))
		})
	}
}

func TestDefaultExpr(t *testing.T) {
	vec := ir.Named("Vec", ir.TypeArg(ir.Named("u8")))
	assert.Equal(t, "<Vec<u8> as core::default::Default>::default()", DefaultExpr(&ir.Expr{Kind: ir.ExprTypeDefault}, vec))
	assert.Equal(t, "vec![1]", DefaultExpr(&ir.Expr{Kind: ir.ExprOpaque, Source: "vec![1]"}, vec))
	assert.Equal(t, "", DefaultExpr(nil, vec))
}

func TestFile(t *testing.T) {
	got := File("Code generated by optchain. DO NOT EDIT.", "a\n", "b\n")
	assert.Equal(t, "// Code generated by optchain. DO NOT EDIT.\n\na\n\nb\n", got)
	assert.Equal(t, "x\n", File("", "x\n"))
}
