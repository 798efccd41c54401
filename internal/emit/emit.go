// Package emit renders synthesized declarations as target source text.
//
// The notation follows the IR: lifetimes, references, `async` and `.await`.
// Output is deterministic for a given input, which keeps golden files stable.
package emit

import (
	"fmt"
	"strings"

	"github.com/roach88/optchain/internal/ir"
	"github.com/roach88/optchain/internal/transform"
)

const (
	optionPath = "core::option::Option"
	noneValue  = "core::option::Option::None"
	markerInit = "core::marker::PhantomData"
	intoTrait  = "core::convert::Into"
)

// Function renders the output of a free-function declaration: the builder
// type, its impl, and the constructor function.
func Function(out *ir.Output) string {
	g := &generator{}
	g.builderStruct(out.Builder)
	g.emitLine("")
	g.builderImpl(out)
	g.emitLine("")
	g.constructor(out.Constructor, out.Builder)
	return g.sb.String()
}

// Impl renders a transformed impl block: the block itself with its
// passthrough items, constructors and renamed originals, followed by every
// builder type and builder impl.
func Impl(b ir.ImplBlock, res transform.ImplOutput) string {
	g := &generator{}
	scope := b.Scope
	g.emitLinef("impl%s %s%s {\n", scope.Generics.DeclString(), scope.SelfType.String(), scope.Generics.WhereString())
	g.incIndent()
	first := true
	sep := func() {
		if !first {
			g.emitLine("")
		}
		first = false
	}
	for _, sig := range res.Passthrough {
		sep()
		g.signature(sig)
	}
	for _, out := range res.Outputs {
		sep()
		g.constructor(out.Constructor, out.Builder)
		if out.Inner != nil {
			g.emitLine("")
			g.innerFn(out.Inner)
		}
	}
	g.decIndent()
	g.emitLine("}")
	for _, out := range res.Outputs {
		g.emitLine("")
		g.builderStruct(out.Builder)
		g.emitLine("")
		g.builderImpl(out)
	}
	return g.sb.String()
}

// File joins rendered fragments with a single blank line and a header.
func File(header string, fragments ...string) string {
	var sb strings.Builder
	if header != "" {
		for _, line := range strings.Split(header, "\n") {
			sb.WriteString("// ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	for i, f := range fragments {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(f)
	}
	return sb.String()
}

type generator struct {
	sb     strings.Builder
	indent int
}

func (g *generator) emitLinef(format string, args ...any) {
	g.sb.WriteString(g.indentStr())
	g.sb.WriteString(fmt.Sprintf(format, args...))
}

func (g *generator) emitLine(s string) {
	if s == "" {
		g.sb.WriteString("\n")
		return
	}
	g.sb.WriteString(g.indentStr())
	g.sb.WriteString(s)
	g.sb.WriteString("\n")
}

func (g *generator) incIndent() { g.indent++ }
func (g *generator) decIndent() { g.indent-- }

func (g *generator) indentStr() string {
	return strings.Repeat("    ", g.indent)
}

func (g *generator) doc(text string) {
	if text != "" {
		g.emitLinef("#[doc = %q]\n", text)
	}
}

func (g *generator) attrs(attrs []string) {
	for _, a := range attrs {
		g.emitLinef("#[%s]\n", a)
	}
}

func vis(v string) string {
	if v == "" {
		return ""
	}
	return v + " "
}

func returns(t *ir.Type) string {
	if t == nil || t.IsUnit() {
		return ""
	}
	return " -> " + t.String()
}

// builderStruct declares the struct with parameter names only; bounds live
// on the impl.
func (g *generator) builderStruct(b ir.BuilderSpec) {
	g.doc(b.Doc)
	g.emitLinef("%sstruct %s%s {\n", vis(b.Visibility), b.StructName, b.Generics.ArgString())
	g.incIndent()
	if b.ReceiverField != nil {
		g.emitLinef("%s: %s,\n", b.ReceiverField.Name, b.ReceiverField.Type.String())
	}
	for _, f := range b.RequiredFields {
		g.emitLinef("%s: %s,\n", f.Name, f.Type.String())
	}
	for _, f := range b.OptionalFields {
		g.emitLinef("%s: %s<%s>,\n", f.Name, optionPath, f.Type.String())
	}
	g.emitLinef("%s: %s,\n", b.Marker.Name, b.Marker.Type.String())
	g.decIndent()
	g.emitLine("}")
}

func (g *generator) builderImpl(out *ir.Output) {
	b := out.Builder
	g.emitLinef("impl%s %s {\n", b.Generics.DeclString(), b.SelfType().String())
	g.incIndent()
	for _, s := range out.Setters {
		g.setter(s)
		g.emitLine("")
	}
	g.terminal(out.Terminal)
	g.decIndent()
	g.emitLine("}")
}

func (g *generator) setter(s ir.Setter) {
	ty := s.Field.Type.String()
	g.doc(s.Doc)
	g.emitLinef("%sfn %s<%s: %s<%s>>(mut self, value: %s) -> Self {\n",
		vis(s.Visibility), s.Name, ir.SetterValueParam, intoTrait, ty, ir.SetterValueParam)
	g.incIndent()
	g.emitLinef("let value = <%s as %s<%s>>::into(value);\n", ir.SetterValueParam, intoTrait, ty)
	g.emitLinef("self.%s = core::option::Option::Some(value);\n", s.Field.Name)
	g.emitLine("self")
	g.decIndent()
	g.emitLine("}")
}

func (g *generator) terminal(t ir.Terminal) {
	g.doc(t.Doc)
	g.emitLinef("%s%sfn %s(self)%s%s {\n", vis(t.Visibility), asyncKw(t.Async), t.Name, returns(t.Result), ir.FormatWhere(t.Where))
	g.incIndent()
	if t.Nested != nil {
		g.innerFn(t.Nested)
		g.emitLine("")
	}
	for _, b := range t.Bindings {
		if b.Source == ir.BindOptional {
			g.emitLinef("let %s: %s = self.%s.unwrap_or_else(|| { %s });\n",
				b.Name, b.Type.String(), b.Name, DefaultExpr(b.Default, b.Type))
			continue
		}
		g.emitLinef("let %s: %s = self.%s;\n", b.Name, b.Type.String(), b.Name)
	}
	g.emitLine(CallExpr(t.Call))
	g.decIndent()
	g.emitLine("}")
}

func (g *generator) constructor(c ir.Constructor, b ir.BuilderSpec) {
	g.attrs(c.Attrs)
	var params []string
	if c.Receiver != nil {
		params = append(params, c.Receiver.String())
	}
	for _, p := range c.Params {
		params = append(params, p.String())
	}
	g.emitLinef("%sfn %s%s(%s) -> %s%s {\n", vis(c.Visibility), c.Name, c.Generics.DeclString(),
		strings.Join(params, ", "), c.Result.String(), c.Generics.WhereString())
	g.incIndent()
	g.emitLinef("%s {\n", b.StructName)
	g.incIndent()
	for _, init := range c.Init {
		switch init.Source {
		case ir.InitReceiver:
			g.emitLinef("%s: self,\n", init.Field)
		case ir.InitParam:
			g.emitLinef("%s,\n", init.Field)
		case ir.InitAbsent:
			g.emitLinef("%s: %s,\n", init.Field, noneValue)
		case ir.InitMarker:
			g.emitLinef("%s: %s,\n", init.Field, markerInit)
		}
	}
	g.decIndent()
	g.emitLine("}")
	g.decIndent()
	g.emitLine("}")
}

func (g *generator) innerFn(fn *ir.InnerFn) {
	var params []string
	if fn.Receiver != nil {
		params = append(params, fn.Receiver.String())
	}
	for _, p := range fn.Params {
		params = append(params, p.String())
	}
	g.emitLinef("%sfn %s%s(%s)%s%s %s\n", asyncKw(fn.Async), fn.Name, fn.Generics.DeclString(),
		strings.Join(params, ", "), returns(fn.Result), fn.Generics.WhereString(), body(fn.Body))
}

func (g *generator) signature(sig ir.Signature) {
	g.attrs(sig.Attrs)
	params := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = p.String()
	}
	g.emitLinef("%s%sfn %s%s(%s)%s%s %s\n", vis(sig.Visibility), asyncKw(sig.Async), sig.Name,
		sig.Generics.DeclString(), strings.Join(params, ", "), returns(sig.Return), sig.Generics.WhereString(), body(sig.Body))
}

func asyncKw(async bool) string {
	if async {
		return "async "
	}
	return ""
}

func body(b string) string {
	if strings.TrimSpace(b) == "" {
		return "{}"
	}
	return b
}

// DefaultExpr renders a default expression; the type-default form names the
// parameter type's Default implementation.
func DefaultExpr(e *ir.Expr, t ir.Type) string {
	if e == nil {
		return ""
	}
	if e.Kind == ir.ExprTypeDefault {
		return fmt.Sprintf("<%s as core::default::Default>::default()", t.String())
	}
	return e.Source
}

// CallExpr renders the forwarding call, qualified and awaited as needed.
// Non-path qualifiers are written in `<T>::` form.
func CallExpr(c ir.Call) string {
	var sb strings.Builder
	if c.Qualifier != nil {
		if c.Qualifier.Kind == ir.KindPath {
			sb.WriteString(c.Qualifier.String())
		} else {
			sb.WriteString("<" + c.Qualifier.String() + ">")
		}
		sb.WriteString("::")
	}
	sb.WriteString(c.Callee)
	sb.WriteString("(")
	sb.WriteString(strings.Join(c.Args, ", "))
	sb.WriteString(")")
	if c.Await {
		sb.WriteString(".await")
	}
	return sb.String()
}
