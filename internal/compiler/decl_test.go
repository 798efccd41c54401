package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/optchain/internal/ir"
)

func compileCUE(t *testing.T, src string) cue.Value {
	t.Helper()
	v := cuecontext.New().CompileString(src, cue.Filename("spec.cue"))
	require.NoError(t, v.Err())
	return v
}

func TestCompileFnBasic(t *testing.T) {
	v := compileCUE(t, `
		fn: join_strings: {
			optarg_fn: {builder: "JoinStringBuilder", terminal: "exec"}
			vis: "pub"
			attrs: ["inline"]
			params: [
				{pattern: "mut a", type: "String"},
				{pattern: "b", type: "String", optarg_default: true},
				{pattern: "c", type: "String", optarg: "\"ccc\".to_owned()"},
			]
			returns: "String"
			body: "{ a.push_str(&b); a.push_str(&c); a }"
		}
	`)

	decl, err := CompileFn(v.LookupPath(cue.ParsePath("fn.join_strings")))
	require.NoError(t, err)

	assert.Equal(t, "join_strings", decl.Sig.Name)
	assert.Equal(t, "pub", decl.Sig.Visibility)
	assert.Equal(t, []string{"inline"}, decl.Sig.Attrs)
	assert.Equal(t, ir.Target{Builder: "JoinStringBuilder", Terminal: "exec"}, decl.Target)
	assert.Nil(t, decl.Enclosing)
	require.Len(t, decl.Sig.Params, 3)

	a := decl.Sig.Params[0]
	assert.Equal(t, ir.Pattern{Kind: ir.PatIdent, Name: "a", Mut: true}, a.Pattern)
	assert.Nil(t, a.Default)

	assert.Equal(t, &ir.Expr{Kind: ir.ExprTypeDefault}, decl.Sig.Params[1].Default)
	assert.Equal(t, &ir.Expr{Kind: ir.ExprOpaque, Source: `"ccc".to_owned()`}, decl.Sig.Params[2].Default)
	assert.Equal(t, "String", decl.Sig.Return.String())
	assert.Equal(t, "{ a.push_str(&b); a.push_str(&c); a }", decl.Sig.Body)
	assert.True(t, decl.Sig.Pos.IsValid())
	assert.Equal(t, "spec.cue", decl.Sig.Pos.File)
}

func TestCompileFnGenericsAndAsync(t *testing.T) {
	v := compileCUE(t, `
		fn: convert: {
			optarg_fn: {builder: "ConvertBuilder", terminal: "run"}
			async: true
			generics: "<T: Copy, R>"
			where: "T: Into<R>"
			params: [
				{pattern: "a", type: "T"},
				{pattern: "b", type: "T", optarg_default: true},
			]
			returns: "R"
			body: "{ a.into() }"
		}
	`)

	decl, err := CompileFn(v.LookupPath(cue.ParsePath("fn.convert")))
	require.NoError(t, err)

	assert.True(t, decl.Sig.Async)
	assert.Equal(t, "<T: Copy, R>", decl.Sig.Generics.DeclString())
	assert.Equal(t, " where T: Into<R>", decl.Sig.Generics.WhereString())
}

func TestCompileFnUnitReturn(t *testing.T) {
	v := compileCUE(t, `
		fn: log: {
			optarg_fn: {builder: "LogBuilder", terminal: "send"}
			params: [{pattern: "msg", type: "String"}]
			returns: "()"
			body: "{}"
		}
	`)

	decl, err := CompileFn(v.LookupPath(cue.ParsePath("fn.log")))
	require.NoError(t, err)
	assert.Nil(t, decl.Sig.Return)
}

func TestCompileFnMissingTarget(t *testing.T) {
	v := compileCUE(t, `
		fn: plain: {
			params: [{pattern: "a", type: "i32"}]
			body: "{}"
		}
	`)

	decl, err := CompileFn(v.LookupPath(cue.ParsePath("fn.plain")))
	require.NoError(t, err, "missing target is a validation error, not a compile error")
	assert.Equal(t, ir.Target{}, decl.Target)
}

func TestCompileFnErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{
			name:  "param without type",
			src:   `fn: f: {params: [{pattern: "a"}]}`,
			field: "params.type",
		},
		{
			name:  "param without pattern",
			src:   `fn: f: {params: [{type: "i32"}]}`,
			field: "params.pattern",
		},
		{
			name:  "malformed type",
			src:   `fn: f: {params: [{pattern: "a", type: "Vec<"}]}`,
			field: "params.type",
		},
		{
			name:  "malformed generics",
			src:   `fn: f: {generics: "<T"}`,
			field: "generics",
		},
		{
			name:  "both default forms",
			src:   `fn: f: {params: [{pattern: "a", type: "i32", optarg: "1", optarg_default: true}]}`,
			field: "params.optarg_default",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := compileCUE(t, tt.src)
			_, err := CompileFn(v.LookupPath(cue.ParsePath("fn.f")))
			require.Error(t, err)
			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCompileImpl(t *testing.T) {
	v := compileCUE(t, `
		impl: MyVec: {
			self: "MyVec<T>"
			generics: "<T: Default + Copy>"
			methods: {
				len: {
					vis: "pub"
					params: [{pattern: "&self"}]
					returns: "usize"
					body: "{ self.data.len() }"
				}
				get_or: {
					optarg_method: {builder: "MyVecGetOr", terminal: "get"}
					generics: "<'a>"
					params: [
						{pattern: "&'a self"},
						{pattern: "i", type: "usize"},
						{pattern: "other", type: "T", optarg_default: true},
					]
					returns: "T"
					body: "{ self.data.get(i).copied().unwrap_or(other) }"
				}
				into_box: {
					optarg_method: {builder: "IntoBox", terminal: "done"}
					params: [{pattern: "self", type: "Box<Self>"}]
					body: "{}"
				}
			}
		}
	`)

	block, err := CompileImpl(v.LookupPath(cue.ParsePath("impl.MyVec")))
	require.NoError(t, err)

	assert.Equal(t, "MyVec", block.Name)
	assert.Equal(t, "MyVec<T>", block.Scope.SelfType.String())
	assert.Equal(t, "<T: Default + Copy>", block.Scope.Generics.DeclString())
	assert.Nil(t, block.Scope.Trait)
	require.Len(t, block.Items, 3)

	assert.Equal(t, "len", block.Items[0].Sig.Name)
	assert.Nil(t, block.Items[0].Target, "unannotated methods pass through")

	get := block.Items[1]
	require.NotNil(t, get.Target)
	assert.Equal(t, "MyVecGetOr", get.Target.Builder)
	recv := get.Sig.Params[0]
	assert.Equal(t, ir.PatReceiver, recv.Pattern.Kind)
	require.NotNil(t, recv.Receiver)
	assert.Equal(t, "&'a self", recv.Receiver.String())

	boxed := block.Items[2].Sig.Params[0]
	assert.True(t, boxed.IsTypedSelf())
	assert.Equal(t, "Box<Self>", boxed.Type.String())

	decls := block.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, "MyVec<T>", decls[0].Enclosing.SelfType.String())
}

func TestCompileImplTrait(t *testing.T) {
	v := compileCUE(t, `
		impl: Getter: {
			self: "MyVec<T>"
			trait: "Getter"
		}
	`)

	block, err := CompileImpl(v.LookupPath(cue.ParsePath("impl.Getter")))
	require.NoError(t, err)
	require.NotNil(t, block.Scope.Trait)
	assert.Equal(t, "Getter", block.Scope.Trait.String())
	assert.Empty(t, block.Items)
}

func TestCompileImplMissingSelf(t *testing.T) {
	v := compileCUE(t, `impl: X: {methods: {}}`)

	_, err := CompileImpl(v.LookupPath(cue.ParsePath("impl.X")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "self")
}

func TestCompileSpecs(t *testing.T) {
	v := compileCUE(t, `
		fn: {
			first: {optarg_fn: {builder: "FirstBuilder", terminal: "run"}, params: [{pattern: "a", type: "i32"}]}
			second: {optarg_fn: {builder: "second", terminal: "run"}}
		}
		impl: Adder: {
			self: "Adder"
			methods: add: {
				optarg_method: {builder: "AddBuilder", terminal: "exec"}
				params: [{pattern: "&'a self"}, {pattern: "a", type: "i32", optarg: "20"}]
			}
		}
	`)

	specs, err := CompileSpecs(v)
	require.NoError(t, err)
	require.Len(t, specs.Fns, 2)
	assert.Equal(t, "first", specs.Fns[0].Sig.Name)
	assert.Equal(t, "second", specs.Fns[1].Sig.Name)

	d, ok := specs.Fn("first")
	require.True(t, ok)
	assert.Equal(t, "FirstBuilder", d.Target.Builder)
	_, ok = specs.Fn("missing")
	assert.False(t, ok)

	b, ok := specs.Impl("Adder")
	require.True(t, ok)
	require.Len(t, b.Items, 1)

	errs := specs.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, ErrBuilderCollision, errs[0].Code)

	empty, err := CompileSpecs(compileCUE(t, `other: 1`))
	require.NoError(t, err)
	specs.Merge(empty)
	assert.Len(t, specs.Fns, 2)
}
