package transform

import "github.com/roach88/optchain/internal/ir"

// MergeGenerics computes the generic set of the builder type from the
// enclosing context e and the declaration's own, already self-resolved,
// signature.
//
// With a receiver every parameter of e is kept. Without one only the
// parameters of e that the signature lexically references survive. The
// result lists e's retained lifetimes then sig's lifetimes, then e's
// retained types then sig's types. Predicates are e's followed by sig's.
func MergeGenerics(e ir.Generics, sig ir.Signature, hasReceiver bool) ir.Generics {
	own := sig.Generics
	keepLifetime := func(string) bool { return true }
	keepType := func(string) bool { return true }
	if !hasReceiver {
		r := referencedFromEnclosing(e, sig)
		keepLifetime = r.hasLifetime
		keepType = r.hasType
	}

	shadowL := make(map[string]bool, len(own.Lifetimes))
	for _, l := range own.Lifetimes {
		shadowL[l.Name] = true
	}
	shadowT := make(map[string]bool, len(own.Types))
	for _, t := range own.Types {
		shadowT[t.Name] = true
	}

	var out ir.Generics
	for _, l := range e.Lifetimes {
		if keepLifetime(l.Name) && !shadowL[l.Name] {
			out.Lifetimes = append(out.Lifetimes, l)
		}
	}
	out.Lifetimes = append(out.Lifetimes, own.Lifetimes...)
	for _, t := range e.Types {
		if keepType(t.Name) && !shadowT[t.Name] {
			out.Types = append(out.Types, t)
		}
	}
	out.Types = append(out.Types, own.Types...)
	out.Where = append(out.Where, e.Where...)
	out.Where = append(out.Where, own.Where...)
	return out.Clone()
}

// referencedFromEnclosing walks the parameter types, return type, both
// predicate lists and the bounds of sig's own generics, then closes the
// result over the bounds of the enclosing parameters it retained, so that
// `impl<'a, T: 'a>` keeps 'a whenever T is kept.
func referencedFromEnclosing(e ir.Generics, sig ir.Signature) *refs {
	r := newRefs()
	for _, p := range sig.Params {
		if p.IsReceiver() {
			continue
		}
		r.typ(p.Type)
	}
	if sig.Return != nil {
		r.typ(*sig.Return)
	}
	for _, w := range e.Where {
		r.predicate(w)
	}
	for _, w := range sig.Generics.Where {
		r.predicate(w)
	}
	r.ownParams(sig.Generics)

	for {
		before := r.lifetimes.Size() + r.types.Size()
		for _, l := range e.Lifetimes {
			if r.hasLifetime(l.Name) && !declaresLifetime(sig.Generics, l.Name) {
				for _, b := range l.Bounds {
					r.lifetime(b)
				}
			}
		}
		for _, t := range e.Types {
			if !r.hasType(t.Name) || declaresType(sig.Generics, t.Name) {
				continue
			}
			r.bounds(t.Bounds)
			if t.Default != nil {
				r.typ(*t.Default)
			}
		}
		if r.lifetimes.Size()+r.types.Size() == before {
			return r
		}
	}
}

func declaresLifetime(g ir.Generics, name string) bool {
	for _, l := range g.Lifetimes {
		if l.Name == name {
			return true
		}
	}
	return false
}

func declaresType(g ir.Generics, name string) bool {
	for _, t := range g.Types {
		if t.Name == name {
			return true
		}
	}
	return false
}

// markerType builds the zero-size placeholder type that keeps every
// parameter of g used: `core::marker::PhantomData<(&'a (), fn() -> T)>`.
func markerType(g ir.Generics) ir.Type {
	var elems []ir.Type
	for _, l := range g.Lifetimes {
		elems = append(elems, ir.Ref(l.Name, false, ir.UnitType()))
	}
	for _, t := range g.Types {
		elems = append(elems, ir.Type{Kind: ir.KindFn, Result: ir.Named(t.Name).Ptr()})
	}
	return ir.PathOf(markerPath, ir.TypeArg(ir.Tuple(elems...)))
}

var markerPath = []string{"core", "marker", "PhantomData"}
