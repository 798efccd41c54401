package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/optchain/internal/ir"
	"github.com/roach88/optchain/internal/syntax"
)

// CompileFn parses a CUE value into a function declaration.
//
// The value is the function struct itself, labelled with the function name:
//
//	fn: join_strings: {
//		optarg_fn: {builder: "JoinStringBuilder", terminal: "exec"}
//		vis: "pub"
//		params: [
//			{pattern: "mut a", type: "String"},
//			{pattern: "b", type: "String", optarg_default: true},
//			{pattern: "c", type: "String", optarg: "\"ccc\".to_owned()"},
//		]
//		returns: "String"
//		body: "{ a.push_str(&b); a.push_str(&c); a }"
//	}
//
// A missing optarg_fn leaves the target empty; Validate reports it.
func CompileFn(v cue.Value) (*ir.Declaration, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	sig, err := compileSignature(v)
	if err != nil {
		return nil, err
	}
	decl := &ir.Declaration{Sig: *sig}
	target, err := compileTarget(v, "optarg_fn")
	if err != nil {
		return nil, err
	}
	if target != nil {
		decl.Target = *target
	}
	return decl, nil
}

// CompileImpl parses a CUE value into an impl block. Methods without
// optarg_method pass through unchanged.
//
//	impl: MyVec: {
//		self: "MyVec<T>"
//		generics: "<T: Default + Copy>"
//		methods: get_or: {
//			optarg_method: {builder: "MyVecGetOr", terminal: "get"}
//			generics: "<'a>"
//			params: [{pattern: "&'a self"}, {pattern: "i", type: "usize"}]
//			returns: "T"
//			body: "{ ... }"
//		}
//	}
func CompileImpl(v cue.Value) (*ir.ImplBlock, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	block := &ir.ImplBlock{Name: label(v), Scope: ir.Enclosing{Pos: toPos(v.Pos())}}

	selfVal := v.LookupPath(cue.ParsePath("self"))
	if !selfVal.Exists() {
		return nil, &CompileError{Field: "self", Message: "impl self type is required", Pos: v.Pos()}
	}
	self, err := typeField(selfVal, "self")
	if err != nil {
		return nil, err
	}
	block.Scope.SelfType = self

	if block.Scope.Generics, err = compileGenerics(v); err != nil {
		return nil, err
	}

	traitVal := v.LookupPath(cue.ParsePath("trait"))
	if traitVal.Exists() {
		tr, err := typeField(traitVal, "trait")
		if err != nil {
			return nil, err
		}
		block.Scope.Trait = &tr
	}

	methodsVal := v.LookupPath(cue.ParsePath("methods"))
	if !methodsVal.Exists() {
		return block, nil
	}
	iter, err := methodsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		sig, err := compileSignature(iter.Value())
		if err != nil {
			return nil, err
		}
		item := ir.ImplItem{Sig: *sig}
		if item.Target, err = compileTarget(iter.Value(), "optarg_method"); err != nil {
			return nil, err
		}
		block.Items = append(block.Items, item)
	}
	return block, nil
}

func compileSignature(v cue.Value) (*ir.Signature, error) {
	sig := &ir.Signature{Name: label(v), Pos: toPos(v.Pos())}

	var err error
	if sig.Visibility, err = optionalString(v, "vis"); err != nil {
		return nil, err
	}
	if sig.Async, err = optionalBool(v, "async"); err != nil {
		return nil, err
	}
	if sig.Body, err = optionalString(v, "body"); err != nil {
		return nil, err
	}
	if sig.Generics, err = compileGenerics(v); err != nil {
		return nil, err
	}

	attrsVal := v.LookupPath(cue.ParsePath("attrs"))
	if attrsVal.Exists() {
		iter, err := attrsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			a, err := iter.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			sig.Attrs = append(sig.Attrs, a)
		}
	}

	retVal := v.LookupPath(cue.ParsePath("returns"))
	if retVal.Exists() {
		ret, err := typeField(retVal, "returns")
		if err != nil {
			return nil, err
		}
		if !ret.IsUnit() {
			sig.Return = &ret
		}
	}

	paramsVal := v.LookupPath(cue.ParsePath("params"))
	if paramsVal.Exists() {
		iter, err := paramsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			p, err := compileParam(iter.Value())
			if err != nil {
				return nil, err
			}
			sig.Params = append(sig.Params, p)
		}
	}
	return sig, nil
}

func compileParam(v cue.Value) (ir.Param, error) {
	param := ir.Param{Pos: toPos(v.Pos())}
	patVal := v.LookupPath(cue.ParsePath("pattern"))
	if !patVal.Exists() {
		return param, &CompileError{Field: "params.pattern", Message: "parameter pattern is required", Pos: v.Pos()}
	}
	pat, err := patVal.String()
	if err != nil {
		return param, formatCUEError(err)
	}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		r, ok, err := syntax.ParseReceiver(pat)
		if err != nil {
			return param, &CompileError{Field: "params.pattern", Message: err.Error(), Pos: patVal.Pos()}
		}
		if !ok {
			return param, &CompileError{
				Field:   "params.type",
				Message: fmt.Sprintf("parameter %q needs a type", pat),
				Pos:     v.Pos(),
			}
		}
		param.Pattern = ir.Pattern{Kind: ir.PatReceiver}
		param.Receiver = &r
		param.Type = ir.SelfType()
		return param, nil
	}

	param.Pattern = syntax.ParsePattern(pat)
	if param.Type, err = typeField(typeVal, "params.type"); err != nil {
		return param, err
	}

	exprVal := v.LookupPath(cue.ParsePath("optarg"))
	if exprVal.Exists() {
		src, err := exprVal.String()
		if err != nil {
			return param, formatCUEError(err)
		}
		param.Default = &ir.Expr{Kind: ir.ExprOpaque, Source: src}
	}
	useDefault, err := optionalBool(v, "optarg_default")
	if err != nil {
		return param, err
	}
	if useDefault {
		if param.Default != nil {
			return param, &CompileError{
				Field:   "params.optarg_default",
				Message: "optarg and optarg_default are mutually exclusive",
				Pos:     v.Pos(),
			}
		}
		param.Default = &ir.Expr{Kind: ir.ExprTypeDefault}
	}
	return param, nil
}

func compileGenerics(v cue.Value) (ir.Generics, error) {
	src, err := optionalString(v, "generics")
	if err != nil {
		return ir.Generics{}, err
	}
	g, err := syntax.ParseGenerics(src)
	if err != nil {
		return ir.Generics{}, &CompileError{Field: "generics", Message: err.Error(), Pos: v.Pos()}
	}
	whereSrc, err := optionalString(v, "where")
	if err != nil {
		return ir.Generics{}, err
	}
	if g.Where, err = syntax.ParseWhere(whereSrc); err != nil {
		return ir.Generics{}, &CompileError{Field: "where", Message: err.Error(), Pos: v.Pos()}
	}
	return g, nil
}

func compileTarget(v cue.Value, field string) (*ir.Target, error) {
	tv := v.LookupPath(cue.ParsePath(field))
	if !tv.Exists() {
		return nil, nil
	}
	builder, err := optionalString(tv, "builder")
	if err != nil {
		return nil, err
	}
	terminal, err := optionalString(tv, "terminal")
	if err != nil {
		return nil, err
	}
	return &ir.Target{Builder: builder, Terminal: terminal}, nil
}

func typeField(v cue.Value, field string) (ir.Type, error) {
	src, err := v.String()
	if err != nil {
		return ir.Type{}, formatCUEError(err)
	}
	t, err := syntax.ParseType(src)
	if err != nil {
		return ir.Type{}, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	return t, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalBool(v cue.Value, field string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

func label(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	return sels[len(sels)-1].String()
}

func toPos(p token.Pos) ir.Pos {
	if !p.IsValid() {
		return ir.Pos{}
	}
	return ir.Pos{File: p.Filename(), Line: p.Line(), Column: p.Column()}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
