package transform

import (
	"github.com/emirpasic/gods/sets/linkedhashset"

	"github.com/roach88/optchain/internal/ir"
)

// refs collects the lifetime and type-parameter identifiers lexically
// referenced by a set of types, in first-seen order.
type refs struct {
	lifetimes *linkedhashset.Set
	types     *linkedhashset.Set
}

func newRefs() *refs {
	return &refs{
		lifetimes: linkedhashset.New(),
		types:     linkedhashset.New(),
	}
}

func (r *refs) lifetime(l string) {
	if ir.IsNamedLifetime(l) {
		r.lifetimes.Add(l)
	}
}

// typ walks t. A path's first segment counts as a type reference so that
// both `T` and `T::Output` mention T.
func (r *refs) typ(t ir.Type) {
	switch t.Kind {
	case ir.KindPath:
		for i, s := range t.Segments {
			if i == 0 {
				r.types.Add(s.Name)
			}
			r.args(s.Args)
		}
	case ir.KindRef:
		r.lifetime(t.Lifetime)
		if t.Elem != nil {
			r.typ(*t.Elem)
		}
	case ir.KindSlice, ir.KindArray:
		if t.Elem != nil {
			r.typ(*t.Elem)
		}
	case ir.KindTuple:
		for _, e := range t.Elems {
			r.typ(e)
		}
	case ir.KindFn:
		for _, e := range t.Elems {
			r.typ(e)
		}
		if t.Result != nil {
			r.typ(*t.Result)
		}
	case ir.KindImpl, ir.KindDyn:
		r.bounds(t.Bounds)
	}
}

func (r *refs) args(args []ir.GenericArg) {
	for _, a := range args {
		r.lifetime(a.Lifetime)
		if a.Type != nil {
			r.typ(*a.Type)
		}
	}
}

func (r *refs) bounds(bounds []ir.Bound) {
	for _, b := range bounds {
		r.lifetime(b.Lifetime)
		if b.Trait != nil {
			r.typ(*b.Trait)
		}
	}
}

func (r *refs) predicate(w ir.WherePredicate) {
	r.lifetime(w.Lifetime)
	if w.Type != nil {
		r.typ(*w.Type)
	}
	r.bounds(w.Bounds)
}

// ownParams walks the bounds and defaults of a declaration's own generic
// parameters without counting the parameters themselves.
func (r *refs) ownParams(g ir.Generics) {
	for _, l := range g.Lifetimes {
		for _, b := range l.Bounds {
			r.lifetime(b)
		}
	}
	for _, tp := range g.Types {
		r.bounds(tp.Bounds)
		if tp.Default != nil {
			r.typ(*tp.Default)
		}
	}
}

func (r *refs) hasLifetime(name string) bool { return r.lifetimes.Contains(name) }
func (r *refs) hasType(name string) bool     { return r.types.Contains(name) }
