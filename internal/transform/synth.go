package transform

import (
	"strings"

	"github.com/roach88/optchain/internal/ir"
)

// attrPrefix marks the annotations consumed by the transformation. They are
// not forwarded to the constructor.
const attrPrefix = "optarg"

// plan is everything the synthesizer consumes, computed by earlier stages.
type plan struct {
	decl     ir.Declaration
	sig      ir.Signature // self-resolved
	self     *ir.Type
	generics ir.Generics
	receiver ReceiverInfo
	parts    Partition
}

// Synthesize assembles the output declarations for p.
func (p plan) Synthesize() *ir.Output {
	sig := p.sig
	builder := ir.BuilderSpec{
		StructName:     p.decl.Target.Builder,
		Visibility:     sig.Visibility,
		Doc:            builderDoc(sig.Name),
		Generics:       p.generics,
		ReceiverField:  p.receiver.Storage,
		RequiredFields: Fields(p.parts.Required),
		OptionalFields: Fields(p.parts.Optional),
		Marker:         ir.Field{Name: ir.MarkerName, Type: markerType(p.generics)},
	}

	out := &ir.Output{
		Decl:        sig.Name,
		Placement:   ir.PlaceModule,
		Receiver:    p.receiver.Kind,
		Builder:     builder,
		Constructor: p.constructor(builder),
		Setters:     p.setters(builder),
	}

	inner := p.inner()
	term := p.terminal(builder)
	if p.self != nil {
		out.Placement = ir.PlaceImpl
		out.SelfType = p.self.Clone().Ptr()
		out.Inner = inner
		q := Erase(*p.self)
		term.Call.Qualifier = &q
		term.Call.Callee = inner.Name
	} else {
		term.Nested = inner
		term.Call.Callee = inner.Name
	}
	out.Terminal = term
	return out
}

func (p plan) constructor(b ir.BuilderSpec) ir.Constructor {
	c := ir.Constructor{
		Name:       p.sig.Name,
		Visibility: p.sig.Visibility,
		Attrs:      forwardedAttrs(p.sig.Attrs),
		Generics:   p.sig.Generics.Clone(),
		Params:     bindingParams(p.parts.Required),
		Result:     b.SelfType(),
	}
	if p.receiver.Decl != nil {
		r := *p.receiver.Decl
		c.Receiver = &r
		c.Init = append(c.Init, ir.FieldInit{Field: ir.SelfStorage, Source: ir.InitReceiver})
	}
	for _, f := range b.RequiredFields {
		c.Init = append(c.Init, ir.FieldInit{Field: f.Name, Source: ir.InitParam})
	}
	for _, f := range b.OptionalFields {
		c.Init = append(c.Init, ir.FieldInit{Field: f.Name, Source: ir.InitAbsent})
	}
	c.Init = append(c.Init, ir.FieldInit{Field: ir.MarkerName, Source: ir.InitMarker})
	return c
}

func (p plan) setters(b ir.BuilderSpec) []ir.Setter {
	setters := make([]ir.Setter, 0, len(b.OptionalFields))
	for _, f := range b.OptionalFields {
		setters = append(setters, ir.Setter{
			Name:       f.Name,
			Visibility: p.sig.Visibility,
			Doc:        setterDoc(f.Name),
			Field:      f,
		})
	}
	return setters
}

// terminal binds the receiver, then required fields, then optional fields
// in original order; unset optional defaults are evaluated in that order.
func (p plan) terminal(b ir.BuilderSpec) ir.Terminal {
	t := ir.Terminal{
		Name:       p.decl.Target.Terminal,
		Visibility: p.sig.Visibility,
		Doc:        terminalDoc(p.sig.Name),
		Async:      p.sig.Async,
		Where:      b.Generics.Where,
	}
	if p.sig.Return != nil {
		t.Result = p.sig.Return.Clone().Ptr()
	}
	var args []string
	if b.ReceiverField != nil {
		t.Bindings = append(t.Bindings, ir.Binding{
			Name: b.ReceiverField.Name, Type: b.ReceiverField.Type.Clone(), Source: ir.BindReceiver,
		})
		args = append(args, b.ReceiverField.Name)
	}
	for _, f := range b.RequiredFields {
		t.Bindings = append(t.Bindings, ir.Binding{Name: f.Name, Type: f.Type.Clone(), Source: ir.BindRequired})
	}
	for _, o := range p.parts.Optional {
		d := *o.Default
		t.Bindings = append(t.Bindings, ir.Binding{
			Name: o.Pattern.Name, Type: o.Type.Clone(), Source: ir.BindOptional, Default: &d,
		})
	}
	t.Call = ir.Call{Args: append(args, p.parts.Names()...), Await: p.sig.Async}
	return t
}

// inner is the renamed copy of the original declaration, keeping its own
// generics and receiver form.
func (p plan) inner() *ir.InnerFn {
	name := ir.InnerFuncName
	if p.self != nil {
		name = ir.InnerMethodPrefix + p.sig.Name
	}
	fn := &ir.InnerFn{
		Name:     name,
		Async:    p.sig.Async,
		Generics: p.sig.Generics.Clone(),
		Params:   stripDefaults(p.receiver.Rest),
		Body:     p.sig.Body,
	}
	if p.receiver.Decl != nil {
		r := *p.receiver.Decl
		fn.Receiver = &r
	}
	if p.sig.Return != nil {
		fn.Result = p.sig.Return.Clone().Ptr()
	}
	return fn
}

func stripDefaults(ps []ir.Param) []ir.Param {
	out := make([]ir.Param, len(ps))
	for i, p := range ps {
		out[i] = p
		out[i].Default = nil
		out[i].Type = p.Type.Clone()
	}
	return out
}

// bindingParams strips defaults and `mut` so the parameters can be moved
// straight into the builder's struct literal.
func bindingParams(ps []ir.Param) []ir.Param {
	out := stripDefaults(ps)
	for i := range out {
		out[i].Pattern.Mut = false
	}
	return out
}

func forwardedAttrs(attrs []string) []string {
	var out []string
	for _, a := range attrs {
		if strings.HasPrefix(a, attrPrefix) {
			continue
		}
		out = append(out, a)
	}
	return out
}
