package ir

// Reserved identifiers used inside synthesized declarations.
const (
	// SelfStorage is the builder field holding the receiver.
	SelfStorage = "_optarg_self"
	// MarkerName is the builder field keeping generic parameters used.
	MarkerName = "_optarg_marker"
	// SetterValueParam is the setter's conversion type parameter.
	SetterValueParam = "_OPTARG_VALUE"
	// InnerFuncName is the renamed original of a free function.
	InnerFuncName = "_optarg_inner_func"
	// InnerMethodPrefix prefixes the renamed original of a method.
	InnerMethodPrefix = "_optarg_inner_"
)

// ReceiverVariant enumerates receiver kinds.
type ReceiverVariant string

const (
	ReceiverNone     ReceiverVariant = "none"
	ReceiverByValue  ReceiverVariant = "by_value"
	ReceiverByRef    ReceiverVariant = "by_ref"
	ReceiverByMutRef ReceiverVariant = "by_mut_ref"
	ReceiverTyped    ReceiverVariant = "typed"
)

// ReceiverKind is the classified receiver.
//
// Mut is meaningful for ByValue, Lifetime for ByRef and ByMutRef (always
// explicit), Type for Typed (self-type resolved).
type ReceiverKind struct {
	Variant  ReceiverVariant `json:"variant"`
	Mut      bool            `json:"mut,omitempty"`
	Lifetime string          `json:"lifetime,omitempty"`
	Type     *Type           `json:"type,omitempty"`
}

// Field is a named, typed slot.
type Field struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// BuilderSpec is the synthesized builder type.
//
// Optional fields carry their declared type; they are stored as
// present-or-absent (core::option::Option) by the emitter and engine.
type BuilderSpec struct {
	StructName     string   `json:"struct_name"`
	Visibility     string   `json:"visibility,omitempty"`
	Doc            string   `json:"doc,omitempty"`
	Generics       Generics `json:"generics"`
	ReceiverField  *Field   `json:"receiver_field,omitempty"`
	RequiredFields []Field  `json:"required_fields"`
	OptionalFields []Field  `json:"optional_fields"`
	Marker         Field    `json:"marker"`
}

// SelfType returns the builder type applied to its own parameters,
// e.g. `AddBuilder<'a, T>`.
func (b BuilderSpec) SelfType() Type {
	return Named(b.StructName, b.Generics.Args()...)
}

// InitSource says how the constructor fills a builder field.
type InitSource string

const (
	InitReceiver InitSource = "receiver" // moved in from self
	InitParam    InitSource = "param"    // required parameter of the same name
	InitAbsent   InitSource = "absent"   // optional field starts unset
	InitMarker   InitSource = "marker"   // marker sentinel
)

// FieldInit is one entry of the constructor's struct literal.
type FieldInit struct {
	Field  string     `json:"field"`
	Source InitSource `json:"source"`
}

// Constructor is the operation callers invoke first. It takes the receiver
// (if any) and the required parameters only.
type Constructor struct {
	Name       string      `json:"name"`
	Visibility string      `json:"visibility,omitempty"`
	Attrs      []string    `json:"attrs,omitempty"`
	Generics   Generics    `json:"generics"`
	Receiver   *Param      `json:"receiver,omitempty"` // re-declared original receiver
	Params     []Param     `json:"params"`
	Result     Type        `json:"result"`
	Init       []FieldInit `json:"init"`
}

// Setter overwrites one optional field and returns the builder by value.
type Setter struct {
	Name       string `json:"name"`
	Visibility string `json:"visibility,omitempty"`
	Doc        string `json:"doc,omitempty"`
	Field      Field  `json:"field"`
}

// BindingSource says where the terminal operation takes a value from.
type BindingSource string

const (
	BindReceiver BindingSource = "receiver"
	BindRequired BindingSource = "required"
	BindOptional BindingSource = "optional"
)

// Binding is one `let` in the terminal operation. Default is set for
// optional bindings and evaluated only when the field is absent.
type Binding struct {
	Name    string        `json:"name"`
	Type    Type          `json:"type"`
	Source  BindingSource `json:"source"`
	Default *Expr         `json:"default,omitempty"`
}

// Call is the forwarding invocation of the renamed original.
// Args list the receiver storage first (if any), then every parameter in
// original declaration order.
type Call struct {
	Qualifier *Type    `json:"qualifier,omitempty"` // erased self type for methods
	Callee    string   `json:"callee"`
	Args      []string `json:"args"`
	Await     bool     `json:"await,omitempty"`
}

// Terminal consumes the builder, resolves defaults, and invokes the
// original logic.
type Terminal struct {
	Name       string           `json:"name"`
	Visibility string           `json:"visibility,omitempty"`
	Doc        string           `json:"doc,omitempty"`
	Async      bool             `json:"async,omitempty"`
	Result     *Type            `json:"result,omitempty"`
	Where      []WherePredicate `json:"where,omitempty"`
	Bindings   []Binding        `json:"bindings"`
	Call       Call             `json:"call"`
	Nested     *InnerFn         `json:"nested,omitempty"` // free functions nest the original here
}

// InnerFn is the renamed copy of the original declaration.
type InnerFn struct {
	Name     string   `json:"name"`
	Async    bool     `json:"async,omitempty"`
	Generics Generics `json:"generics"`
	Receiver *Param   `json:"receiver,omitempty"`
	Params   []Param  `json:"params"` // defaults stripped
	Result   *Type    `json:"result,omitempty"`
	Body     string   `json:"body"`
}

// Placement says where the constructor and inner function are installed.
type Placement string

const (
	PlaceModule Placement = "module" // free function beside the builder
	PlaceImpl   Placement = "impl"   // method inside the originating impl
)

// Output is the full set of declarations synthesized for one input
// declaration.
type Output struct {
	Decl        string       `json:"decl"`
	Placement   Placement    `json:"placement"`
	SelfType    *Type        `json:"self_type,omitempty"`
	Receiver    ReceiverKind `json:"receiver"`
	Builder     BuilderSpec  `json:"builder"`
	Constructor Constructor  `json:"constructor"`
	Setters     []Setter     `json:"setters"`
	Terminal    Terminal     `json:"terminal"`
	Inner       *InnerFn     `json:"inner,omitempty"` // installed in the impl for methods
	Hash        string       `json:"hash,omitempty"`  // content hash of the input declaration
}

// Setter returns the setter named name, if any.
func (o *Output) Setter(name string) (Setter, bool) {
	for _, s := range o.Setters {
		if s.Name == name {
			return s, true
		}
	}
	return Setter{}, false
}
