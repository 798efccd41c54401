package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/optchain/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid        bool                       `json:"valid"`
	Declarations int                        `json:"declarations"`
	Errors       []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate specs without synthesizing builders",
		Long: `Validate CUE declaration specs without synthesizing anything.

Checks that every declaration compiles and that builder, terminal and
parameter names are well formed and do not collide. Diagnostics that need
the full transformation (receiver and pattern checks) are reported by
transform.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loaded, err := LoadSpecs(specsDir)
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, specsDir)
	for _, d := range loaded.Specs.Fns {
		formatter.VerboseLog("Validating fn: %s", d.Sig.Name)
	}
	for _, b := range loaded.Specs.Impls {
		formatter.VerboseLog("Validating impl: %s", b.Name)
	}

	if verrs := loaded.Specs.Validate(); len(verrs) > 0 {
		return outputValidationErrors(formatter, verrs)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Declarations: loaded.DeclCount()})
	}
	formatter.OK("All specs valid (%d declaration(s))", loaded.DeclCount())
	return nil
}

// outputValidationErrors reports schema violations. Exit code 1.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.Format == "json" {
		if err := formatter.Failure(errs[0].Code, errs[0].Message, ValidationResult{Valid: false, Errors: errs}); err != nil {
			return err
		}
		return exitErr
	}

	formatter.Fail("Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n\n", formatter.styles().code.Sprint(err.Code), err.Field, err.Message)
	}
	return exitErr
}

// loadFailure reports a LoadSpecs error. Exit code 2.
func loadFailure(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		var details any
		if loadErr.Pos.IsValid() {
			details = map[string]any{
				"file":   loadErr.Pos.Filename(),
				"line":   loadErr.Pos.Line(),
				"column": loadErr.Pos.Column(),
			}
		}
		_ = formatter.Error(loadErr.Code, loadErr.Message, details)
		return NewExitError(ExitCommandError, loadErr.Error())
	}
	return commandError(formatter, ErrCodeGeneric, err.Error())
}

// commandError reports a command-level error. Exit code 2.
func commandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
