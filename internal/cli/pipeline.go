package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/optchain/internal/compiler"
	"github.com/roach88/optchain/internal/ir"
	"github.com/roach88/optchain/internal/store"
	"github.com/roach88/optchain/internal/transform"
)

// declResult is the outcome for one annotated declaration. Exactly one of
// Output and Diagnostic is set.
type declResult struct {
	Label      string // join_strings, Adder::add
	Decl       ir.Declaration
	Hash       string
	Output     *ir.Output
	Diagnostic *transform.Diagnostic
	Cached     bool
}

// implResult regroups the methods of one impl block.
type implResult struct {
	Block  *ir.ImplBlock
	Output transform.ImplOutput
}

// pipeline transforms declarations through the cache. A nil cache
// transforms everything.
type pipeline struct {
	cache *store.Store
	runID string
	jobs  int
}

// flatten lists every annotated declaration: free functions first, then the
// methods of each impl block, all in spec order.
func flatten(specs *compiler.Specs) []declResult {
	var out []declResult
	for _, d := range specs.Fns {
		out = append(out, declResult{Label: d.Sig.Name, Decl: *d})
	}
	for _, b := range specs.Impls {
		for _, d := range b.Declarations() {
			out = append(out, declResult{Label: b.Name + "::" + d.Sig.Name, Decl: d})
		}
	}
	return out
}

// run fills in Hash and the outcome of every entry. Cache hits are taken as
// is; misses are transformed concurrently and written back with their
// position as seq.
func (p *pipeline) run(ctx context.Context, results []declResult) error {
	var (
		missIdx []int
		misses  []ir.Declaration
	)
	for i := range results {
		r := &results[i]
		h, err := ir.DeclarationHash(r.Decl)
		if err != nil {
			return fmt.Errorf("%s: %w", r.Label, err)
		}
		r.Hash = h

		if p.cache != nil {
			e, ok, err := p.cache.Lookup(ctx, h)
			if err != nil {
				return err
			}
			if ok {
				r.Output, r.Diagnostic, r.Cached = e.Output, e.Diagnostic, true
				slog.Debug("cache hit", "decl", r.Label, "hash", h[:12], "kind", e.Kind)
				continue
			}
		}
		missIdx = append(missIdx, i)
		misses = append(misses, r.Decl)
	}

	batch, err := transform.TransformBatch(ctx, misses, p.jobs)
	if err != nil {
		return err
	}
	for j, res := range batch {
		i := missIdx[j]
		r := &results[i]
		if res.Err != nil {
			var d *transform.Diagnostic
			if !errors.As(res.Err, &d) {
				return fmt.Errorf("%s: %w", r.Label, res.Err)
			}
			r.Diagnostic = d
			slog.Debug("rejected", "decl", r.Label, "kind", d.Kind)
		} else {
			r.Output = res.Output
			slog.Debug("synthesized", "decl", r.Label, "builder", res.Output.Builder.StructName)
		}
		if err := p.put(ctx, int64(i), r); err != nil {
			return err
		}
	}
	return nil
}

func (p *pipeline) put(ctx context.Context, seq int64, r *declResult) error {
	if p.cache == nil {
		return nil
	}
	var err error
	if r.Output != nil {
		_, err = p.cache.PutOutput(ctx, p.runID, seq, r.Output)
	} else {
		_, err = p.cache.PutDiagnostic(ctx, p.runID, seq, r.Hash, r.Decl.Target.Builder, r.Diagnostic)
	}
	return err
}

// regroup splits flat results back into free functions and impl blocks.
// Results must come from flatten(specs).
func regroup(specs *compiler.Specs, results []declResult) ([]declResult, []implResult) {
	fns := results[:len(specs.Fns)]
	rest := results[len(specs.Fns):]

	impls := make([]implResult, 0, len(specs.Impls))
	for _, b := range specs.Impls {
		res := transform.ImplOutput{Block: b.Name, Passthrough: b.Passthrough()}
		n := len(b.Declarations())
		for _, r := range rest[:n] {
			if r.Output != nil {
				res.Outputs = append(res.Outputs, r.Output)
			} else {
				res.Diagnostics = append(res.Diagnostics, r.Diagnostic)
			}
		}
		rest = rest[n:]
		impls = append(impls, implResult{Block: b, Output: res})
	}
	return fns, impls
}
