package ir

// Named builds a single-segment path type such as `T` or `Vec<T>`.
func Named(name string, args ...GenericArg) Type {
	return Type{Kind: KindPath, Segments: []Segment{{Name: name, Args: args}}}
}

// PathOf builds a multi-segment path type; generic args attach to the last
// segment.
func PathOf(names []string, args ...GenericArg) Type {
	segs := make([]Segment, len(names))
	for i, n := range names {
		segs[i] = Segment{Name: n}
	}
	if len(segs) > 0 {
		segs[len(segs)-1].Args = args
	}
	return Type{Kind: KindPath, Segments: segs}
}

// SelfType returns the self-referential placeholder.
func SelfType() Type { return Named(SelfName) }

// Ref builds `&'lt T` or `&'lt mut T`.
func Ref(lifetime string, mut bool, elem Type) Type {
	return Type{Kind: KindRef, Lifetime: lifetime, Mut: mut, Elem: elem.Ptr()}
}

// Tuple builds `(A, B, ...)`.
func Tuple(elems ...Type) Type {
	return Type{Kind: KindTuple, Elems: elems}
}

// UnitType is the empty tuple `()`.
func UnitType() Type { return Type{Kind: KindTuple} }

// TypeArg wraps a type as a generic argument.
func TypeArg(t Type) GenericArg { return GenericArg{Type: t.Ptr()} }

// LifetimeArg wraps a lifetime as a generic argument.
func LifetimeArg(l string) GenericArg { return GenericArg{Lifetime: l} }

// TraitBound wraps a path type as a trait bound.
func TraitBound(t Type) Bound { return Bound{Trait: t.Ptr()} }

// Ptr returns a pointer to a copy of t.
func (t Type) Ptr() *Type { return &t }

// IsSelf reports whether t is exactly the `Self` placeholder.
func (t Type) IsSelf() bool {
	return t.Kind == KindPath && len(t.Segments) == 1 &&
		t.Segments[0].Name == SelfName && len(t.Segments[0].Args) == 0
}

// IsUnit reports whether t is `()`.
func (t Type) IsUnit() bool { return t.Kind == KindTuple && len(t.Elems) == 0 }

// Ident returns the identifier of a bare single-segment path, or "".
func (t Type) Ident() string {
	if t.Kind != KindPath || len(t.Segments) != 1 || len(t.Segments[0].Args) != 0 {
		return ""
	}
	return t.Segments[0].Name
}

// Last returns the final path segment. It panics on non-path types.
func (t Type) Last() Segment {
	return t.Segments[len(t.Segments)-1]
}

// Clone returns a deep copy of t.
func (t Type) Clone() Type {
	c := t
	if t.Segments != nil {
		c.Segments = make([]Segment, len(t.Segments))
		for i, s := range t.Segments {
			c.Segments[i] = Segment{Name: s.Name, Args: cloneArgs(s.Args)}
		}
	}
	if t.Elem != nil {
		c.Elem = t.Elem.Clone().Ptr()
	}
	if t.Elems != nil {
		c.Elems = make([]Type, len(t.Elems))
		for i, e := range t.Elems {
			c.Elems[i] = e.Clone()
		}
	}
	if t.Result != nil {
		c.Result = t.Result.Clone().Ptr()
	}
	c.Bounds = CloneBounds(t.Bounds)
	return c
}

func cloneArgs(args []GenericArg) []GenericArg {
	if args == nil {
		return nil
	}
	out := make([]GenericArg, len(args))
	for i, a := range args {
		out[i] = a
		if a.Type != nil {
			out[i].Type = a.Type.Clone().Ptr()
		}
	}
	return out
}

// CloneBounds deep-copies a bound list.
func CloneBounds(bounds []Bound) []Bound {
	if bounds == nil {
		return nil
	}
	out := make([]Bound, len(bounds))
	for i, b := range bounds {
		out[i] = b
		if b.Trait != nil {
			out[i].Trait = b.Trait.Clone().Ptr()
		}
	}
	return out
}

// Clone deep-copies the generic set.
func (g Generics) Clone() Generics {
	var c Generics
	for _, l := range g.Lifetimes {
		c.Lifetimes = append(c.Lifetimes, LifetimeParam{Name: l.Name, Bounds: append([]string(nil), l.Bounds...)})
	}
	for _, tp := range g.Types {
		cp := TypeParam{Name: tp.Name, Bounds: CloneBounds(tp.Bounds)}
		if tp.Default != nil {
			cp.Default = tp.Default.Clone().Ptr()
		}
		c.Types = append(c.Types, cp)
	}
	for _, w := range g.Where {
		cw := WherePredicate{Lifetime: w.Lifetime, Bounds: CloneBounds(w.Bounds)}
		if w.Type != nil {
			cw.Type = w.Type.Clone().Ptr()
		}
		c.Where = append(c.Where, cw)
	}
	return c
}

// IsNamedLifetime reports whether l can be a declared generic lifetime.
// 'static and the anonymous '_ never are.
func IsNamedLifetime(l string) bool {
	return l != "" && l != "'static" && l != "'_"
}
