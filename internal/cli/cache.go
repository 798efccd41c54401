package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/optchain/internal/store"
)

// CacheOptions holds flags shared by the cache subcommands.
type CacheOptions struct {
	*RootOptions
	Path string

	// ls filters
	Kind    string
	Builder string
	Decl    string
	Run     string
}

// CacheEntry is one row of cache ls.
type CacheEntry struct {
	Hash    string `json:"hash"`
	Decl    string `json:"decl"`
	Builder string `json:"builder"`
	Kind    string `json:"kind"`
	RunID   string `json:"run_id"`
	Detail  string `json:"detail,omitempty"` // diagnostic kind
}

// NewCacheCommand creates the cache command and its subcommands.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CacheOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the transformation cache",
		Long: `Inspect or clear the transformation cache.

The cache path comes from --cache, or from [cache] path in optchain.toml
(looked up in the current directory unless --config is given).`,
	}
	cmd.PersistentFlags().StringVar(&opts.Path, "cache", "", "transformation cache database")

	cmd.AddCommand(&cobra.Command{
		Use:           "stats",
		Short:         "Show cached result and run counts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheStats(cmd.Context(), opts, cmd)
		},
	})
	list := &cobra.Command{
		Use:           "ls",
		Short:         "List cached results",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheList(cmd.Context(), opts, cmd)
		},
	}
	list.Flags().StringVar(&opts.Kind, "kind", "", "only entries of this kind (output|diagnostic)")
	list.Flags().StringVar(&opts.Builder, "builder", "", "only entries for this builder")
	list.Flags().StringVar(&opts.Decl, "decl", "", "only entries for this declaration")
	list.Flags().StringVar(&opts.Run, "run", "", "only entries first produced by this run")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:           "clear",
		Short:         "Delete every cached result and run",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(cmd.Context(), opts, cmd)
		},
	})

	return cmd
}

// resolvePath picks the cache path from the flag or the project file.
func (o *CacheOptions) resolvePath() (string, error) {
	if o.Path != "" {
		return o.Path, nil
	}
	cfg, err := ResolveConfig(o.Config, ".")
	if err != nil {
		return "", err
	}
	if cfg.Cache.Path == "" {
		return "", errors.New("no cache database: pass --cache or set [cache] path in optchain.toml")
	}
	return cfg.Cache.Path, nil
}

// openCache opens the cache database. Unless create is set, the file must
// already exist.
func openCache(path string, create bool) (*store.Store, error) {
	if create {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create cache directory: %w", err)
			}
		}
	} else if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("cache database not found: %s", path)
	}
	return store.Open(path)
}

func (o *CacheOptions) open(formatter *OutputFormatter) (*store.Store, string, error) {
	path, err := o.resolvePath()
	if err != nil {
		return nil, "", commandError(formatter, ErrCodeConfig, err.Error())
	}
	st, err := openCache(path, false)
	if err != nil {
		return nil, "", commandError(formatter, ErrCodeCache, err.Error())
	}
	return st, path, nil
}

func runCacheStats(ctx context.Context, opts *CacheOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)
	st, path, err := opts.open(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats(ctx)
	if err != nil {
		return commandError(formatter, ErrCodeCache, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(stats)
	}
	w := formatter.Writer
	fmt.Fprintf(w, "cache:       %s\n", path)
	fmt.Fprintf(w, "entries:     %d (%d outputs, %d diagnostics)\n", stats.Entries, stats.Outputs, stats.Diagnostics)
	fmt.Fprintf(w, "runs:        %d\n", stats.Runs)
	if stats.LastRun != nil {
		fmt.Fprintf(w, "last run:    %s (seq %d, %d declarations, %d rejected)\n",
			stats.LastRun.ID, stats.LastRun.Seq, stats.LastRun.DeclCount, stats.LastRun.FailedCount)
	}
	return nil
}

func runCacheList(ctx context.Context, opts *CacheOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)
	if opts.Kind != "" && opts.Kind != store.KindOutput && opts.Kind != store.KindDiagnostic {
		return commandError(formatter, ErrCodeUsage,
			fmt.Sprintf("invalid kind %q: must be %s or %s", opts.Kind, store.KindOutput, store.KindDiagnostic))
	}
	st, _, err := opts.open(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.Query(ctx, store.Where(map[store.Column]string{
		store.ColumnKind:    opts.Kind,
		store.ColumnBuilder: opts.Builder,
		store.ColumnDecl:    opts.Decl,
		store.ColumnRun:     opts.Run,
	}))
	if err != nil {
		return commandError(formatter, ErrCodeCache, err.Error())
	}

	rows := make([]CacheEntry, len(entries))
	for i, e := range entries {
		rows[i] = CacheEntry{Hash: e.Hash, Decl: e.Decl, Builder: e.Builder, Kind: e.Kind, RunID: e.RunID}
		if e.Diagnostic != nil {
			rows[i].Detail = string(e.Diagnostic.Kind)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(rows)
	}
	for _, r := range rows {
		line := fmt.Sprintf("%s  %-10s  %-20s  %-20s  %s", r.Hash[:12], r.Kind, r.Decl, r.Builder, r.RunID)
		if r.Detail != "" {
			line += "  " + formatter.styles().fail.Sprint(r.Detail)
		}
		fmt.Fprintln(formatter.Writer, line)
	}
	formatter.VerboseLog("%d entries", len(rows))
	return nil
}

func runCacheClear(ctx context.Context, opts *CacheOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)
	st, path, err := opts.open(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	before, err := st.Stats(ctx)
	if err != nil {
		return commandError(formatter, ErrCodeCache, err.Error())
	}
	if err := st.Clear(ctx); err != nil {
		return commandError(formatter, ErrCodeCache, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"cache": path, "removed_entries": before.Entries, "removed_runs": before.Runs})
	}
	formatter.OK("Cache cleared: %d entries, %d runs removed", before.Entries, before.Runs)
	return nil
}
