package ir

// SelfName is the self-referential type placeholder.
const SelfName = "Self"

// TypeKind discriminates the shape of a Type.
type TypeKind string

const (
	KindPath  TypeKind = "path"  // Vec<T>, core::option::Option<T>, Self, T
	KindRef   TypeKind = "ref"   // &'a T, &'a mut T, &T
	KindTuple TypeKind = "tuple" // (A, B), () is the unit type
	KindSlice TypeKind = "slice" // [T]
	KindArray TypeKind = "array" // [T; N]
	KindFn    TypeKind = "fn"    // fn(A, B) -> R
	KindImpl  TypeKind = "impl"  // impl Iterator<Item = T>
	KindDyn   TypeKind = "dyn"   // dyn Trait + 'a
)

// Type is a structured type expression.
type Type struct {
	Kind     TypeKind  `json:"kind"`
	Segments []Segment `json:"segments,omitempty"` // path
	Lifetime string    `json:"lifetime,omitempty"` // ref; empty when elided
	Mut      bool      `json:"mut,omitempty"`      // ref
	Elem     *Type     `json:"elem,omitempty"`     // ref, slice, array
	Len      string    `json:"len,omitempty"`      // array length expression
	Elems    []Type    `json:"elems,omitempty"`    // tuple elements, fn inputs
	Result   *Type     `json:"result,omitempty"`   // fn output
	Bounds   []Bound   `json:"bounds,omitempty"`   // impl, dyn
}

// Segment is one `::`-separated element of a path type.
type Segment struct {
	Name string       `json:"name"`
	Args []GenericArg `json:"args,omitempty"`
}

// GenericArg is a single argument in a `<...>` list.
// Exactly one of Lifetime and Type is set. Assoc names an associated type
// binding such as `Item = T`.
type GenericArg struct {
	Lifetime string `json:"lifetime,omitempty"`
	Type     *Type  `json:"type,omitempty"`
	Assoc    string `json:"assoc,omitempty"`
}

// Bound is a trait or lifetime bound. Exactly one of Lifetime and Trait is set.
type Bound struct {
	Lifetime string `json:"lifetime,omitempty"`
	Trait    *Type  `json:"trait,omitempty"`
}

// LifetimeParam declares a lifetime generic parameter.
type LifetimeParam struct {
	Name   string   `json:"name"`
	Bounds []string `json:"bounds,omitempty"`
}

// TypeParam declares a type generic parameter.
type TypeParam struct {
	Name    string  `json:"name"`
	Bounds  []Bound `json:"bounds,omitempty"`
	Default *Type   `json:"default,omitempty"`
}

// WherePredicate is one entry of a where clause: either `'a: 'b` (Lifetime
// set) or `T: Bound` (Type set).
type WherePredicate struct {
	Lifetime string  `json:"lifetime,omitempty"`
	Type     *Type   `json:"type,omitempty"`
	Bounds   []Bound `json:"bounds"`
}

// Generics is an ordered generic-parameter set plus its predicates.
type Generics struct {
	Lifetimes []LifetimeParam  `json:"lifetimes,omitempty"`
	Types     []TypeParam      `json:"types,omitempty"`
	Where     []WherePredicate `json:"where,omitempty"`
}

// IsEmpty reports whether the set declares nothing at all.
func (g Generics) IsEmpty() bool {
	return len(g.Lifetimes) == 0 && len(g.Types) == 0 && len(g.Where) == 0
}

// HasParams reports whether the set declares any lifetime or type parameter.
func (g Generics) HasParams() bool {
	return len(g.Lifetimes) > 0 || len(g.Types) > 0
}

// Args returns the generic arguments that name every declared parameter in
// order, lifetimes first. Used to spell `Builder<'a, T>`.
func (g Generics) Args() []GenericArg {
	args := make([]GenericArg, 0, len(g.Lifetimes)+len(g.Types))
	for _, l := range g.Lifetimes {
		args = append(args, GenericArg{Lifetime: l.Name})
	}
	for _, t := range g.Types {
		args = append(args, GenericArg{Type: Named(t.Name).Ptr()})
	}
	return args
}

// PatternKind classifies a parameter binding pattern.
type PatternKind string

const (
	PatIdent    PatternKind = "ident"    // a, mut a
	PatWild     PatternKind = "wild"     // _
	PatReceiver PatternKind = "receiver" // self, mut self, &'a self, &'a mut self
	PatOther    PatternKind = "other"    // (a, b), Point { x, y }, ...
)

// Pattern is the binding side of a parameter.
type Pattern struct {
	Kind PatternKind `json:"kind"`
	Name string      `json:"name,omitempty"`
	Mut  bool        `json:"mut,omitempty"`
	Text string      `json:"text,omitempty"` // original spelling for PatOther
}

// ReceiverSyntax is the shorthand receiver form. Lifetime is empty when the
// reference lifetime is elided.
type ReceiverSyntax struct {
	Ref      bool   `json:"ref,omitempty"`
	Lifetime string `json:"lifetime,omitempty"`
	Mut      bool   `json:"mut,omitempty"`
}

// ExprKind discriminates default expressions.
type ExprKind string

const (
	// ExprOpaque is a user-written expression copied verbatim.
	ExprOpaque ExprKind = "opaque"
	// ExprTypeDefault resolves to the parameter type's default value.
	ExprTypeDefault ExprKind = "type_default"
)

// Expr is an opaque, deferred default-value computation.
type Expr struct {
	Kind   ExprKind `json:"kind"`
	Source string   `json:"source,omitempty"`
}

// Param is one declared parameter, receiver included.
// Default == nil means the parameter is required.
type Param struct {
	Pattern  Pattern         `json:"pattern"`
	Type     Type            `json:"type"`
	Receiver *ReceiverSyntax `json:"receiver,omitempty"` // set iff Pattern.Kind == PatReceiver
	Default  *Expr           `json:"default,omitempty"`
	Pos      Pos             `json:"pos"`
}

// IsOptional reports whether the parameter carries a default.
func (p Param) IsOptional() bool { return p.Default != nil }

// IsTypedSelf reports whether p is a `self: Ty` parameter.
func (p Param) IsTypedSelf() bool {
	return p.Pattern.Kind == PatIdent && p.Pattern.Name == "self"
}

// IsReceiver reports whether p is any self-like parameter.
func (p Param) IsReceiver() bool {
	return p.Pattern.Kind == PatReceiver || p.IsTypedSelf()
}

// Signature is a function or method declaration.
type Signature struct {
	Name       string   `json:"name"`
	Visibility string   `json:"visibility,omitempty"` // "", "pub", "pub(crate)"
	Attrs      []string `json:"attrs,omitempty"`      // forwarded verbatim
	Async      bool     `json:"async,omitempty"`
	Generics   Generics `json:"generics"`
	Params     []Param  `json:"params"`
	Return     *Type    `json:"return,omitempty"` // nil is the unit type
	Body       string   `json:"body"`
	Pos        Pos      `json:"pos"`
}

// Target is the per-declaration configuration pair.
type Target struct {
	Builder  string `json:"builder"`
	Terminal string `json:"terminal"`
}

// Enclosing is the generic context a method is declared in.
type Enclosing struct {
	SelfType Type     `json:"self_type"`
	Generics Generics `json:"generics"`
	Trait    *Type    `json:"trait,omitempty"` // non-nil for trait impls
	Pos      Pos      `json:"pos"`
}

// Declaration is one annotated function or method.
// Enclosing is nil for free functions.
type Declaration struct {
	Sig       Signature  `json:"sig"`
	Target    Target     `json:"target"`
	Enclosing *Enclosing `json:"enclosing,omitempty"`
}

// ImplItem is one item of an impl block. Target is nil for items that are
// not annotated; those pass through unchanged.
type ImplItem struct {
	Sig    Signature `json:"sig"`
	Target *Target   `json:"target,omitempty"`
}

// ImplBlock is an impl block containing annotated methods.
type ImplBlock struct {
	Name  string     `json:"name"`
	Scope Enclosing  `json:"scope"`
	Items []ImplItem `json:"items"`
}

// Declarations flattens the annotated items of b, each carrying b's scope.
func (b ImplBlock) Declarations() []Declaration {
	var decls []Declaration
	for _, item := range b.Items {
		if item.Target == nil {
			continue
		}
		scope := b.Scope
		decls = append(decls, Declaration{
			Sig:       item.Sig,
			Target:    *item.Target,
			Enclosing: &scope,
		})
	}
	return decls
}

// Passthrough returns the signatures of b's unannotated items, which are
// emitted unchanged.
func (b ImplBlock) Passthrough() []Signature {
	var sigs []Signature
	for _, item := range b.Items {
		if item.Target == nil {
			sigs = append(sigs, item.Sig)
		}
	}
	return sigs
}

// Pos is a source position carried through for diagnostics.
type Pos struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// IsValid reports whether the position points somewhere.
func (p Pos) IsValid() bool { return p.Line > 0 }
