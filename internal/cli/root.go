package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/optchain/internal/ir"
	"github.com/roach88/optchain/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // explicit optchain.toml path
	NoColor bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the optchain CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(store.UUIDv7Generator{})
}

func newRootCommand(runIDs store.RunIDGenerator) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "optchain",
		Short: "optchain - builder synthesis for optional arguments",
		Long: `Rewrites annotated function and method declarations into builder chains.

Each declaration becomes a builder type, a constructor taking the receiver
and required parameters, one setter per optional parameter, and a terminal
operation that fills in defaults and calls the original logic.`,
		Version:       fmt.Sprintf("%s (ir %s)", ir.EngineVersion, ir.IRVersion),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				msg := fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
				errOut := &OutputFormatter{Format: "text", Writer: cmd.ErrOrStderr(), NoColor: opts.NoColor}
				_ = errOut.Error(ErrCodeUsage, msg, nil)
				return NewExitError(ExitCommandError, msg)
			}
			configureLogging(cmd, opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to optchain.toml (default: <specs-dir>/optchain.toml)")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable coloured text output")

	cmd.AddCommand(newTransformCommand(opts, runIDs))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCacheCommand(opts))

	return cmd
}

// configureLogging routes slog to stderr so stdout stays clean for JSON and
// emitted source. --verbose lowers the level to Debug.
func configureLogging(cmd *cobra.Command, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
		NoColor:   opts.NoColor,
	}
}
