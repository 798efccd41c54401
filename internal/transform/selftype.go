package transform

import "github.com/roach88/optchain/internal/ir"

// Resolve returns t with every bare `Self` replaced by self, recursing into
// generic arguments, references, tuples, function types and bounds.
//
// Only the exact single-segment placeholder is replaced. Associated paths
// such as `Self::Item` are left alone; they have no meaning outside the impl
// and the caller gets them back unchanged.
func Resolve(t ir.Type, self ir.Type) ir.Type {
	if t.IsSelf() {
		return self.Clone()
	}
	out := t
	if t.Segments != nil {
		out.Segments = make([]ir.Segment, len(t.Segments))
		for i, s := range t.Segments {
			out.Segments[i] = ir.Segment{Name: s.Name, Args: resolveArgs(s.Args, self)}
		}
	}
	if t.Elem != nil {
		out.Elem = Resolve(*t.Elem, self).Ptr()
	}
	if t.Elems != nil {
		out.Elems = make([]ir.Type, len(t.Elems))
		for i, e := range t.Elems {
			out.Elems[i] = Resolve(e, self)
		}
	}
	if t.Result != nil {
		out.Result = Resolve(*t.Result, self).Ptr()
	}
	out.Bounds = resolveBounds(t.Bounds, self)
	return out
}

func resolveArgs(args []ir.GenericArg, self ir.Type) []ir.GenericArg {
	if args == nil {
		return nil
	}
	out := make([]ir.GenericArg, len(args))
	for i, a := range args {
		out[i] = a
		if a.Type != nil {
			out[i].Type = Resolve(*a.Type, self).Ptr()
		}
	}
	return out
}

func resolveBounds(bounds []ir.Bound, self ir.Type) []ir.Bound {
	if bounds == nil {
		return nil
	}
	out := make([]ir.Bound, len(bounds))
	for i, b := range bounds {
		out[i] = b
		if b.Trait != nil {
			out[i].Trait = Resolve(*b.Trait, self).Ptr()
		}
	}
	return out
}

// ResolveGenerics resolves the bounds, defaults and predicates of g.
func ResolveGenerics(g ir.Generics, self ir.Type) ir.Generics {
	out := g.Clone()
	for i, tp := range out.Types {
		out.Types[i].Bounds = resolveBounds(tp.Bounds, self)
		if tp.Default != nil {
			out.Types[i].Default = Resolve(*tp.Default, self).Ptr()
		}
	}
	for i, w := range out.Where {
		if w.Type != nil {
			out.Where[i].Type = Resolve(*w.Type, self).Ptr()
		}
		out.Where[i].Bounds = resolveBounds(w.Bounds, self)
	}
	return out
}

// ResolveSignature resolves every parameter type, the return type and the
// generics of sig. Receiver shorthand parameters keep their placeholder
// type; the receiver classifier derives their storage type itself.
func ResolveSignature(sig ir.Signature, self ir.Type) ir.Signature {
	out := sig
	out.Generics = ResolveGenerics(sig.Generics, self)
	out.Params = make([]ir.Param, len(sig.Params))
	for i, p := range sig.Params {
		out.Params[i] = p
		if p.Pattern.Kind != ir.PatReceiver {
			out.Params[i].Type = Resolve(p.Type, self)
		}
	}
	if sig.Return != nil {
		out.Return = Resolve(*sig.Return, self).Ptr()
	}
	return out
}

// Erase strips generic arguments from every segment of a path type, giving
// the type constructor name used to qualify a call: `Pair<'a, T>` becomes
// `Pair`. Non-path types are returned unchanged.
func Erase(t ir.Type) ir.Type {
	if t.Kind != ir.KindPath {
		return t.Clone()
	}
	out := ir.Type{Kind: ir.KindPath, Segments: make([]ir.Segment, len(t.Segments))}
	for i, s := range t.Segments {
		out.Segments[i] = ir.Segment{Name: s.Name}
	}
	return out
}
