package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Validation failure or rejected declarations
	ExitCommandError = 2 // Command error (invalid paths, unreadable cache, etc.)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// palette holds the text styles of one formatter. fatih/color also disables
// them when stdout is not a terminal or NO_COLOR is set.
type palette struct {
	ok, fail, code, dim *color.Color
}

func newPalette(noColor bool) *palette {
	s := &palette{
		ok:   color.New(color.FgGreen, color.Bold),
		fail: color.New(color.FgRed, color.Bold),
		code: color.New(color.FgYellow),
		dim:  color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{s.ok, s.fail, s.code, s.dim} {
			c.DisableColor()
		}
	}
	return s
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
	NoColor   bool

	style *palette
}

func (f *OutputFormatter) styles() *palette {
	if f.style == nil {
		f.style = newPalette(f.NoColor)
	}
	return f.style
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "%s [%s]: %s\n", f.styles().fail.Sprint("Error"), f.styles().code.Sprint(code), message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Failure outputs data alongside an error. JSON gets both in one envelope;
// text output is left to the caller.
func (f *OutputFormatter) Failure(code, message string, data any) error {
	if f.Format != "json" {
		return nil
	}
	return f.encode(CLIResponse{
		Status: "error",
		Data:   data,
		Error:  &CLIError{Code: code, Message: message},
	})
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// OK prints a green check line in text mode.
func (f *OutputFormatter) OK(format string, args ...any) {
	fmt.Fprintf(f.Writer, "%s %s\n", f.styles().ok.Sprint("✓"), fmt.Sprintf(format, args...))
}

// Fail prints a red cross line in text mode.
func (f *OutputFormatter) Fail(format string, args ...any) {
	fmt.Fprintf(f.Writer, "%s %s\n", f.styles().fail.Sprint("✗"), fmt.Sprintf(format, args...))
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintln(f.GetErrWriter(), f.styles().dim.Sprintf(format, args...))
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
