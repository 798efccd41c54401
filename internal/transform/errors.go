package transform

import (
	"errors"
	"fmt"

	"github.com/roach88/optchain/internal/ir"
)

// Kind is the stable, machine-readable category of a Diagnostic.
type Kind string

const (
	// KindTraitImpl rejects methods declared in a trait impl.
	KindTraitImpl Kind = "TraitImplementationUnsupported"

	// KindExplicitLifetime rejects reference receivers with an elided lifetime.
	KindExplicitLifetime Kind = "ExplicitLifetimeRequired"

	// KindReservedName rejects parameters named like an internal builder field.
	KindReservedName Kind = "ReservedNameCollision"

	// KindParamPattern rejects wildcard and destructuring parameter patterns.
	KindParamPattern Kind = "UnsupportedParameterPattern"

	// KindMultipleReceivers rejects more than one self-like parameter.
	KindMultipleReceivers Kind = "MultipleReceiverParameters"
)

// Diagnostic is the single error reported for a declaration that cannot be
// transformed. No output is produced alongside a Diagnostic.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Decl    string `json:"decl"`
	Param   string `json:"param,omitempty"` // offending parameter or receiver
	Pos     ir.Pos `json:"pos"`
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	where := d.Decl
	if d.Param != "" {
		where = fmt.Sprintf("%s: parameter `%s`", d.Decl, d.Param)
	}
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s (%s)", d.Pos.File, d.Pos.Line, d.Pos.Column, d.Kind, d.Message, where)
	}
	return fmt.Sprintf("%s: %s (%s)", d.Kind, d.Message, where)
}

func diagnose(kind Kind, sig ir.Signature, param string, pos ir.Pos, format string, args ...any) *Diagnostic {
	if !pos.IsValid() {
		pos = sig.Pos
	}
	return &Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Decl:    sig.Name,
		Param:   param,
		Pos:     pos,
	}
}

// IsKind reports whether err is a Diagnostic of the given kind.
// Uses errors.As to handle wrapped errors.
func IsKind(err error, kind Kind) bool {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d.Kind == kind
	}
	return false
}

// KindOf returns the diagnostic kind of err, or "" when err is not a
// Diagnostic.
func KindOf(err error) Kind {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d.Kind
	}
	return ""
}
