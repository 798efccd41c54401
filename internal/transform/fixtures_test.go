package transform

import "github.com/roach88/optchain/internal/ir"

// Test fixtures, built directly as IR so the core is tested without the
// front-end.

func ident(name string, t ir.Type) ir.Param {
	return ir.Param{Pattern: ir.Pattern{Kind: ir.PatIdent, Name: name}, Type: t}
}

func optional(name string, t ir.Type, src string) ir.Param {
	p := ident(name, t)
	p.Default = &ir.Expr{Kind: ir.ExprOpaque, Source: src}
	return p
}

func typeDefault(name string, t ir.Type) ir.Param {
	p := ident(name, t)
	p.Default = &ir.Expr{Kind: ir.ExprTypeDefault}
	return p
}

func recv(ref bool, lifetime string, mut bool) ir.Param {
	return ir.Param{
		Pattern:  ir.Pattern{Kind: ir.PatReceiver},
		Type:     ir.SelfType(),
		Receiver: &ir.ReceiverSyntax{Ref: ref, Lifetime: lifetime, Mut: mut},
	}
}

func lifetimes(names ...string) []ir.LifetimeParam {
	out := make([]ir.LifetimeParam, len(names))
	for i, n := range names {
		out[i] = ir.LifetimeParam{Name: n}
	}
	return out
}

func typeParams(names ...string) []ir.TypeParam {
	out := make([]ir.TypeParam, len(names))
	for i, n := range names {
		out[i] = ir.TypeParam{Name: n}
	}
	return out
}

func genericNames(g ir.Generics) []string {
	var names []string
	for _, l := range g.Lifetimes {
		names = append(names, l.Name)
	}
	for _, t := range g.Types {
		names = append(names, t.Name)
	}
	return names
}

var stringT = ir.Named("String")
var i32 = ir.Named("i32")

// joinStrings is `fn join_strings(mut a: String, #[optarg_default] b: String,
// #[optarg("ccc".to_owned())] c: String) -> String`.
func joinStrings() ir.Declaration {
	a := ident("a", stringT)
	a.Pattern.Mut = true
	return ir.Declaration{
		Sig: ir.Signature{
			Name:       "join_strings",
			Visibility: "pub",
			Params: []ir.Param{
				a,
				typeDefault("b", stringT),
				optional("c", stringT, `"ccc".to_owned()`),
			},
			Return: stringT.Ptr(),
			Body:   "{ a.push_str(&b); a.push_str(&c); a }",
			Pos:    ir.Pos{File: "join.cue", Line: 3, Column: 1},
		},
		Target: ir.Target{Builder: "JoinStringBuilder", Terminal: "exec"},
	}
}

// pairScope is `impl<'a, T: 'a, U> Pair<'a, T, U>`.
func pairScope() *ir.Enclosing {
	return &ir.Enclosing{
		SelfType: ir.Named("Pair",
			ir.LifetimeArg("'a"), ir.TypeArg(ir.Named("T")), ir.TypeArg(ir.Named("U"))),
		Generics: ir.Generics{
			Lifetimes: lifetimes("'a"),
			Types: []ir.TypeParam{
				{Name: "T", Bounds: []ir.Bound{{Lifetime: "'a"}}},
				{Name: "U"},
			},
		},
	}
}

// method builds a declaration inside pairScope.
func method(name string, params ...ir.Param) ir.Declaration {
	return ir.Declaration{
		Sig: ir.Signature{
			Name:   name,
			Params: params,
			Return: i32.Ptr(),
			Body:   "{ 0 }",
			Pos:    ir.Pos{File: "pair.cue", Line: 10, Column: 5},
		},
		Target:    ir.Target{Builder: "PairBuilder", Terminal: "run"},
		Enclosing: pairScope(),
	}
}
