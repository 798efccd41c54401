package engine

import (
	"errors"
	"fmt"
)

// RuntimeError is an error detected while interpreting a synthesized
// builder. Details carries structured context for diagnostics.
type RuntimeError struct {
	Code    RuntimeErrorCode
	Message string

	// Decl is the declaration whose builder was being driven.
	Decl string

	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeArity indicates the constructor got the wrong number of
	// arguments, or a receiver where none is declared (or vice versa).
	ErrCodeArity RuntimeErrorCode = "ARITY_MISMATCH"

	// ErrCodeUnknownSetter indicates Set was called for a name that is not
	// an optional parameter.
	ErrCodeUnknownSetter RuntimeErrorCode = "UNKNOWN_SETTER"

	// ErrCodeConversion indicates a value cannot be converted into the
	// field's declared type.
	ErrCodeConversion RuntimeErrorCode = "CONVERSION_FAILED"

	// ErrCodeNoDefault indicates a default expression could not be
	// evaluated, or the type has no default value.
	ErrCodeNoDefault RuntimeErrorCode = "NO_DEFAULT"

	// ErrCodeMissingBody indicates no body was registered for the
	// declaration.
	ErrCodeMissingBody RuntimeErrorCode = "MISSING_BODY"

	// ErrCodeAsyncMismatch indicates Invoke on an async terminal or Spawn
	// on a synchronous one.
	ErrCodeAsyncMismatch RuntimeErrorCode = "ASYNC_MISMATCH"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Decl != "" {
		return fmt.Sprintf("%s: %s (decl=%s)", e.Code, e.Message, e.Decl)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the RuntimeErrorCode of err, or "" when err is not a
// RuntimeError. Uses errors.As to handle wrapped errors.
func CodeOf(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsConversionError reports whether err is a failed Into conversion.
func IsConversionError(err error) bool {
	return CodeOf(err) == ErrCodeConversion
}

func newArityError(decl string, want, got int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeArity,
		Message: fmt.Sprintf("constructor takes %d required arguments, got %d", want, got),
		Decl:    decl,
		Details: map[string]string{
			"want": fmt.Sprintf("%d", want),
			"got":  fmt.Sprintf("%d", got),
		},
	}
}

func newConversionError(field, typ, reason string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeConversion,
		Message: fmt.Sprintf("cannot convert into %s: %s", typ, reason),
		Details: map[string]string{"field": field, "type": typ},
	}
}
