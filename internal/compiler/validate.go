package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/optchain/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrUnsupportedIRType = "E200" // unsupported IR type for validation

	ErrDuplicateParam     = "E201" // duplicate parameter name
	ErrInvalidIdentifier  = "E202" // builder, terminal or parameter name is not an identifier
	ErrTerminalCollision  = "E203" // optional parameter named like the terminal
	ErrBuilderCollision   = "E204" // builder named like the declaration
	ErrMissingTarget      = "E205" // no optarg configuration
	ErrInvalidGenericName = "E206" // malformed generic parameter name
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var (
	identPattern    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	lifetimePattern = regexp.MustCompile(`^'[A-Za-z_][A-Za-z0-9_]*$`)
)

// Validate checks compiled declarations for problems the transformation
// itself does not diagnose. Returns all errors found (does not fail-fast).
// Supports Declaration and ImplBlock values.
func Validate(v any) []ValidationError {
	switch d := v.(type) {
	case *ir.Declaration:
		return validateDeclaration(d.Sig, &d.Target)
	case ir.Declaration:
		return validateDeclaration(d.Sig, &d.Target)
	case *ir.ImplBlock:
		return validateImpl(d)
	case ir.ImplBlock:
		return validateImpl(&d)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

func validateImpl(b *ir.ImplBlock) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateGenerics("impl."+b.Name, b.Scope.Generics, b.Scope.Pos.Line)...)
	for _, item := range b.Items {
		if item.Target == nil {
			continue
		}
		errs = append(errs, validateDeclaration(item.Sig, item.Target)...)
	}
	return errs
}

func validateDeclaration(sig ir.Signature, target *ir.Target) []ValidationError {
	var errs []ValidationError
	line := sig.Pos.Line
	field := func(f string) string { return sig.Name + "." + f }

	// E205: a declaration needs both target names
	if target == nil || target.Builder == "" || target.Terminal == "" {
		errs = append(errs, ValidationError{
			Field:   field("optarg"),
			Message: "builder and terminal names are required",
			Code:    ErrMissingTarget,
			Line:    line,
		})
	} else {
		// E202: target names must be identifiers
		for _, n := range []struct{ f, v string }{{"builder", target.Builder}, {"terminal", target.Terminal}} {
			if !identPattern.MatchString(n.v) {
				errs = append(errs, ValidationError{
					Field:   field(n.f),
					Message: fmt.Sprintf("%q is not a valid identifier", n.v),
					Code:    ErrInvalidIdentifier,
					Line:    line,
				})
			}
		}
		// E204: builder type must not shadow the constructor
		if target.Builder == sig.Name {
			errs = append(errs, ValidationError{
				Field:   field("builder"),
				Message: fmt.Sprintf("builder %q collides with the declaration name", target.Builder),
				Code:    ErrBuilderCollision,
				Line:    line,
			})
		}
	}

	seen := make(map[string]bool)
	for i, p := range sig.Params {
		if p.Pattern.Kind != ir.PatIdent {
			continue
		}
		name := p.Pattern.Name
		pf := field(fmt.Sprintf("params[%d]", i))
		pl := p.Pos.Line
		if pl == 0 {
			pl = line
		}

		// E201: duplicate parameter name
		if seen[name] {
			errs = append(errs, ValidationError{
				Field:   pf,
				Message: fmt.Sprintf("duplicate parameter name: %q", name),
				Code:    ErrDuplicateParam,
				Line:    pl,
			})
		}
		seen[name] = true

		// E202: parameter names must be identifiers
		if !identPattern.MatchString(name) {
			errs = append(errs, ValidationError{
				Field:   pf,
				Message: fmt.Sprintf("%q is not a valid identifier", name),
				Code:    ErrInvalidIdentifier,
				Line:    pl,
			})
		}

		// E203: a setter named like the terminal would shadow it
		if p.IsOptional() && target != nil && name == target.Terminal {
			errs = append(errs, ValidationError{
				Field:   pf,
				Message: fmt.Sprintf("optional parameter %q collides with the terminal operation", name),
				Code:    ErrTerminalCollision,
				Line:    pl,
			})
		}
	}

	errs = append(errs, validateGenerics(sig.Name, sig.Generics, line)...)
	return errs
}

// validateGenerics checks lifetime and type parameter spelling.
func validateGenerics(owner string, g ir.Generics, line int) []ValidationError {
	var errs []ValidationError
	for _, l := range g.Lifetimes {
		if !lifetimePattern.MatchString(l.Name) || !ir.IsNamedLifetime(l.Name) {
			errs = append(errs, ValidationError{
				Field:   owner + ".generics",
				Message: fmt.Sprintf("%q cannot be declared as a lifetime parameter", l.Name),
				Code:    ErrInvalidGenericName,
				Line:    line,
			})
		}
	}
	for _, t := range g.Types {
		if !identPattern.MatchString(t.Name) {
			errs = append(errs, ValidationError{
				Field:   owner + ".generics",
				Message: fmt.Sprintf("%q is not a valid type parameter", t.Name),
				Code:    ErrInvalidGenericName,
				Line:    line,
			})
		}
	}
	return errs
}
