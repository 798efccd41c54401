package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/optchain/internal/compiler"
	"github.com/roach88/optchain/internal/emit"
	"github.com/roach88/optchain/internal/ir"
	"github.com/roach88/optchain/internal/store"
	"github.com/roach88/optchain/internal/transform"
)

// Emit modes.
const (
	EmitSource = "source"
	EmitJSON   = "json"
)

// ValidEmitModes defines the allowed --emit values.
var ValidEmitModes = []string{EmitSource, EmitJSON}

// DefaultHeader heads emitted source files.
const DefaultHeader = "Code generated by optchain. DO NOT EDIT."

// TransformOptions holds flags for the transform command.
type TransformOptions struct {
	*RootOptions
	Emit   string // "source" | "json"
	Output string // output file path
	Cache  string // cache database path
	Jobs   int    // parallel workers, 0 = GOMAXPROCS

	runIDs store.RunIDGenerator
}

// TransformSummary is the JSON data payload of the transform command.
type TransformSummary struct {
	RunID        string                  `json:"run_id,omitempty"`
	Emit         string                  `json:"emit"`
	Declarations int                     `json:"declarations"`
	Synthesized  int                     `json:"synthesized"`
	Rejected     int                     `json:"rejected"`
	Cached       int                     `json:"cached"`
	OutputFile   string                  `json:"output_file,omitempty"`
	Diagnostics  []*transform.Diagnostic `json:"diagnostics,omitempty"`
	Content      string                  `json:"content,omitempty"` // rendered output when not written to a file
}

// transformDocument is the --emit json rendering.
type transformDocument struct {
	IRVersion   string                  `json:"ir_version"`
	Outputs     []*ir.Output            `json:"outputs"`
	Diagnostics []*transform.Diagnostic `json:"diagnostics"`
}

// NewTransformCommand creates the transform command.
func NewTransformCommand(rootOpts *RootOptions) *cobra.Command {
	return newTransformCommand(rootOpts, store.UUIDv7Generator{})
}

func newTransformCommand(rootOpts *RootOptions, runIDs store.RunIDGenerator) *cobra.Command {
	opts := &TransformOptions{RootOptions: rootOpts, runIDs: runIDs}

	cmd := &cobra.Command{
		Use:   "transform <specs-dir>",
		Short: "Synthesize builders for annotated declarations",
		Long: `Compile the CUE declaration specs in a directory and synthesize a builder
for every annotated function and impl method.

Declarations are transformed independently and in parallel. A rejected
declaration reports exactly one diagnostic and produces no output; its
siblings are unaffected. With --cache, results are stored by declaration
content hash and reused on later runs.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Emit, "emit", EmitSource, "what to emit (source|json)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default: stdout)")
	cmd.Flags().StringVar(&opts.Cache, "cache", "", "transformation cache database")
	cmd.Flags().IntVar(&opts.Jobs, "jobs", 0, "parallel transformations (0 = GOMAXPROCS)")

	return cmd
}

// applyConfig fills options the user did not set on the command line from
// the project file.
func (o *TransformOptions) applyConfig(cmd *cobra.Command, cfg Config) {
	if !cmd.Flags().Changed("emit") && cfg.Transform.Emit != "" {
		o.Emit = cfg.Transform.Emit
	}
	if !cmd.Flags().Changed("jobs") && cfg.Transform.Jobs > 0 {
		o.Jobs = cfg.Transform.Jobs
	}
	if !cmd.Flags().Changed("cache") && cfg.Cache.Path != "" {
		o.Cache = cfg.Cache.Path
	}
}

func runTransform(ctx context.Context, opts *TransformOptions, specsDir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := ResolveConfig(opts.Config, specsDir)
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error())
	}
	opts.applyConfig(cmd, cfg)
	if !slices.Contains(ValidEmitModes, opts.Emit) {
		return commandError(formatter, ErrCodeUsage,
			fmt.Sprintf("invalid emit mode %q: must be one of %v", opts.Emit, ValidEmitModes))
	}
	if opts.Jobs < 0 {
		return commandError(formatter, ErrCodeUsage, "--jobs must be non-negative")
	}
	jobs := opts.Jobs
	if jobs == 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	loaded, err := LoadSpecs(specsDir)
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, specsDir)

	if verrs := loaded.Specs.Validate(); len(verrs) > 0 {
		return outputValidationErrors(formatter, verrs)
	}

	p := &pipeline{jobs: jobs}
	if opts.Cache != "" {
		st, err := openCache(opts.Cache, true)
		if err != nil {
			return commandError(formatter, ErrCodeCache, err.Error())
		}
		defer st.Close()
		run, err := st.BeginRun(ctx, opts.runIDs.Generate())
		if err != nil {
			return commandError(formatter, ErrCodeCache, err.Error())
		}
		p.cache, p.runID = st, run.ID
		formatter.VerboseLog("Run %s (seq %d), cache %s", run.ID, run.Seq, opts.Cache)
	}

	results := flatten(loaded.Specs)
	if err := p.run(ctx, results); err != nil {
		return commandError(formatter, ErrCodeGeneric, err.Error())
	}

	summary := TransformSummary{RunID: p.runID, Emit: opts.Emit, Declarations: len(results)}
	for _, r := range results {
		if r.Cached {
			summary.Cached++
		}
		if r.Diagnostic != nil {
			summary.Rejected++
			summary.Diagnostics = append(summary.Diagnostics, r.Diagnostic)
		} else {
			summary.Synthesized++
		}
	}
	if p.cache != nil {
		if err := p.cache.FinishRun(ctx, p.runID, summary.Declarations, summary.Rejected); err != nil {
			return commandError(formatter, ErrCodeCache, err.Error())
		}
	}

	content, err := render(opts.Emit, header(cfg), loaded.Specs, results)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, err.Error())
	}
	if opts.Output != "" {
		if err := writeOutputFile(opts.Output, content); err != nil {
			return commandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
		summary.OutputFile = opts.Output
	}

	return outputTransformResult(formatter, summary, results, content)
}

func header(cfg Config) string {
	if cfg.Transform.Header != "" {
		return cfg.Transform.Header
	}
	return DefaultHeader
}

// render produces the emitted file. Rejected declarations contribute
// nothing; impl blocks keep their passthrough items and successful methods.
func render(mode, hdr string, specs *compiler.Specs, results []declResult) (string, error) {
	if mode == EmitJSON {
		doc := transformDocument{
			IRVersion:   ir.IRVersion,
			Outputs:     []*ir.Output{},
			Diagnostics: []*transform.Diagnostic{},
		}
		for _, r := range results {
			if r.Output != nil {
				doc.Outputs = append(doc.Outputs, r.Output)
			} else {
				doc.Diagnostics = append(doc.Diagnostics, r.Diagnostic)
			}
		}
		data, err := ir.CanonicalOf(doc)
		if err != nil {
			return "", fmt.Errorf("render json: %w", err)
		}
		return string(data) + "\n", nil
	}

	fns, impls := regroup(specs, results)
	var fragments []string
	for _, r := range fns {
		if r.Output != nil {
			fragments = append(fragments, emit.Function(r.Output))
		}
	}
	for _, b := range impls {
		fragments = append(fragments, emit.Impl(*b.Block, b.Output))
	}
	return emit.File(hdr, fragments...), nil
}

func writeOutputFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func outputTransformResult(f *OutputFormatter, summary TransformSummary, results []declResult, content string) error {
	failed := summary.Rejected > 0
	msg := fmt.Sprintf("%d declaration(s) rejected", summary.Rejected)

	if f.Format == "json" {
		if summary.OutputFile == "" {
			summary.Content = content
		}
		if failed {
			_ = f.Failure(ErrCodeRejected, msg, summary)
			return NewExitError(ExitFailure, msg)
		}
		return f.Success(summary)
	}

	errOut := &OutputFormatter{Format: f.Format, Writer: f.GetErrWriter(), NoColor: f.NoColor}
	for _, r := range results {
		if r.Diagnostic != nil {
			errOut.Fail("%s: %s: %s", r.Label, errOut.styles().code.Sprint(r.Diagnostic.Kind), r.Diagnostic.Message)
		}
	}

	stats := fmt.Sprintf("%d synthesized, %d rejected, %d cached", summary.Synthesized, summary.Rejected, summary.Cached)
	if summary.OutputFile != "" {
		f.OK("Transformed %d declaration(s) -> %s (%s)", summary.Declarations, summary.OutputFile, stats)
	} else {
		fmt.Fprint(f.Writer, content)
		f.VerboseLog("Transformed %d declaration(s) (%s)", summary.Declarations, stats)
	}

	if failed {
		return NewExitError(ExitFailure, msg)
	}
	return nil
}
