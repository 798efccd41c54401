package transform

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/optchain/internal/ir"
)

// Transform runs the full pipeline for one declaration. On failure it
// returns a *Diagnostic and a nil output.
func Transform(decl ir.Declaration) (*ir.Output, error) {
	if err := CheckSignature(decl); err != nil {
		return nil, err
	}

	p := plan{decl: decl, sig: decl.Sig}
	var enclosing ir.Generics
	if decl.Enclosing != nil {
		self := decl.Enclosing.SelfType.Clone()
		p.self = &self
		p.sig = ResolveSignature(decl.Sig, self)
		enclosing = ResolveGenerics(decl.Enclosing.Generics, self)
	}

	self := ir.SelfType()
	if p.self != nil {
		self = *p.self
	}
	recv, err := ClassifyReceiver(p.sig, self)
	if err != nil {
		return nil, err
	}
	p.receiver = recv
	p.parts = PartitionParams(recv.Rest)
	p.generics = MergeGenerics(enclosing, p.sig, recv.HasReceiver())

	out := p.Synthesize()
	hash, err := ir.DeclarationHash(decl)
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", decl.Sig.Name, err)
	}
	out.Hash = hash
	return out, nil
}

// ImplOutput is the result of transforming every annotated method of an
// impl block. Passthrough lists the items without a target, unchanged.
type ImplOutput struct {
	Block       string
	Passthrough []ir.Signature
	Outputs     []*ir.Output
	Diagnostics []*Diagnostic
}

// Failed reports whether any method was rejected.
func (o ImplOutput) Failed() bool { return len(o.Diagnostics) > 0 }

// TransformImpl transforms each annotated method of b independently. A
// rejected method contributes a diagnostic and does not affect its
// siblings. A trait impl rejects every annotated method.
func TransformImpl(b ir.ImplBlock) (ImplOutput, error) {
	res := ImplOutput{Block: b.Name, Passthrough: b.Passthrough()}
	for _, decl := range b.Declarations() {
		out, err := Transform(decl)
		if err != nil {
			var d *Diagnostic
			if !errors.As(err, &d) {
				return ImplOutput{}, err
			}
			res.Diagnostics = append(res.Diagnostics, d)
			continue
		}
		res.Outputs = append(res.Outputs, out)
	}
	return res, nil
}

// Result pairs one declaration with its outcome. Exactly one of Output and
// Err is set.
type Result struct {
	Decl   ir.Declaration
	Output *ir.Output
	Err    error
}

// TransformBatch transforms decls concurrently with at most jobs workers
// (jobs <= 0 means unlimited) and returns results in input order.
// Diagnostics are per-result; the returned error is set only when ctx is
// cancelled or a non-diagnostic failure occurs.
func TransformBatch(ctx context.Context, decls []ir.Declaration, jobs int) ([]Result, error) {
	results := make([]Result, len(decls))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, decl := range decls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := Transform(decl)
			results[i] = Result{Decl: decl, Output: out, Err: err}
			if err != nil && KindOf(err) == "" {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
