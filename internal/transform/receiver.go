package transform

import "github.com/roach88/optchain/internal/ir"

// ReceiverInfo is the classified receiver of a declaration.
type ReceiverInfo struct {
	Kind ir.ReceiverKind
	// Storage is the builder field holding the receiver; nil for None.
	Storage *ir.Field
	// Decl is the receiver parameter as re-declared on the constructor and
	// the renamed original.
	Decl *ir.Param
	// Rest holds the remaining parameters in original order.
	Rest []ir.Param
}

// HasReceiver reports whether a receiver was found.
func (r ReceiverInfo) HasReceiver() bool { return r.Kind.Variant != ir.ReceiverNone }

// ClassifyReceiver finds the receiver among sig's parameters and derives
// its storage field type from the concrete self type. sig must already be
// self-resolved, so a typed receiver such as `self: Box<Self>` arrives as
// `self: Box<Pair<T>>`.
//
// A reference receiver whose lifetime is elided or anonymous ('_), written
// as shorthand or inside a typed receiver, fails with
// ExplicitLifetimeRequired. Two or more self-like parameters fail with
// MultipleReceiverParameters.
func ClassifyReceiver(sig ir.Signature, self ir.Type) (ReceiverInfo, error) {
	info := ReceiverInfo{Kind: ir.ReceiverKind{Variant: ir.ReceiverNone}}
	var found *ir.Param
	for i := range sig.Params {
		p := sig.Params[i]
		if !p.IsReceiver() {
			info.Rest = append(info.Rest, p)
			continue
		}
		if found != nil {
			return ReceiverInfo{}, diagnose(KindMultipleReceivers, sig, receiverLabel(p), p.Pos,
				"more than one receiver parameter; first is `%s`", found.String())
		}
		found = &sig.Params[i]
	}
	if found == nil {
		return info, nil
	}

	decl := *found
	decl.Default = nil
	var storage ir.Type
	switch {
	case found.IsTypedSelf():
		if _, ok := elidedRef(found.Type); ok {
			return ReceiverInfo{}, diagnose(KindExplicitLifetime, sig, receiverLabel(*found), found.Pos,
				"explicit lifetime is needed for receiver `%s`", found.String())
		}
		storage = found.Type.Clone()
		info.Kind = ir.ReceiverKind{Variant: ir.ReceiverTyped, Type: storage.Clone().Ptr()}
	case found.Receiver == nil || !found.Receiver.Ref:
		mut := found.Receiver != nil && found.Receiver.Mut
		storage = self.Clone()
		info.Kind = ir.ReceiverKind{Variant: ir.ReceiverByValue, Mut: mut}
	case !explicitLifetime(found.Receiver.Lifetime):
		return ReceiverInfo{}, diagnose(KindExplicitLifetime, sig, found.Receiver.String(), found.Pos,
			"explicit lifetime is needed for receiver `%s`", found.Receiver.String())
	case found.Receiver.Mut:
		storage = ir.Ref(found.Receiver.Lifetime, true, self)
		info.Kind = ir.ReceiverKind{Variant: ir.ReceiverByMutRef, Lifetime: found.Receiver.Lifetime}
	default:
		storage = ir.Ref(found.Receiver.Lifetime, false, self)
		info.Kind = ir.ReceiverKind{Variant: ir.ReceiverByRef, Lifetime: found.Receiver.Lifetime}
	}
	info.Storage = &ir.Field{Name: ir.SelfStorage, Type: storage}
	info.Decl = &decl
	return info, nil
}

func receiverLabel(p ir.Param) string {
	if p.Receiver != nil {
		return p.Receiver.String()
	}
	return "self"
}

// explicitLifetime reports whether a reference with lifetime l can be held
// in a builder field: a declared lifetime or 'static.
func explicitLifetime(l string) bool {
	return ir.IsNamedLifetime(l) || l == "'static"
}

// elidedRef finds the first reference in t without an explicit lifetime.
func elidedRef(t ir.Type) (ir.Type, bool) {
	if t.Kind == ir.KindRef && !explicitLifetime(t.Lifetime) {
		return t, true
	}
	var inner []ir.Type
	if t.Elem != nil {
		inner = append(inner, *t.Elem)
	}
	if t.Result != nil {
		inner = append(inner, *t.Result)
	}
	inner = append(inner, t.Elems...)
	for _, seg := range t.Segments {
		for _, a := range seg.Args {
			if a.Type != nil {
				inner = append(inner, *a.Type)
			}
		}
	}
	for _, b := range t.Bounds {
		if b.Trait != nil {
			inner = append(inner, *b.Trait)
		}
	}
	for _, it := range inner {
		if r, ok := elidedRef(it); ok {
			return r, true
		}
	}
	return ir.Type{}, false
}
