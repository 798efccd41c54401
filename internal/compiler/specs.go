package compiler

import (
	"cuelang.org/go/cue"

	"github.com/roach88/optchain/internal/ir"
)

// Specs is everything declared in one CUE value: free functions under the
// `fn` root and impl blocks under the `impl` root, in declaration order.
type Specs struct {
	Fns   []*ir.Declaration
	Impls []*ir.ImplBlock
}

// CompileSpecs compiles both roots of v. Either root may be absent.
func CompileSpecs(v cue.Value) (*Specs, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	specs := &Specs{}

	if fns := v.LookupPath(cue.ParsePath("fn")); fns.Exists() {
		iter, err := fns.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			decl, err := CompileFn(iter.Value())
			if err != nil {
				return nil, err
			}
			specs.Fns = append(specs.Fns, decl)
		}
	}

	if impls := v.LookupPath(cue.ParsePath("impl")); impls.Exists() {
		iter, err := impls.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			block, err := CompileImpl(iter.Value())
			if err != nil {
				return nil, err
			}
			specs.Impls = append(specs.Impls, block)
		}
	}
	return specs, nil
}

// Merge appends other's declarations to s.
func (s *Specs) Merge(other *Specs) {
	s.Fns = append(s.Fns, other.Fns...)
	s.Impls = append(s.Impls, other.Impls...)
}

// Fn returns the free function named name.
func (s *Specs) Fn(name string) (*ir.Declaration, bool) {
	for _, d := range s.Fns {
		if d.Sig.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Impl returns the impl block labelled name.
func (s *Specs) Impl(name string) (*ir.ImplBlock, bool) {
	for _, b := range s.Impls {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// Validate runs Validate over every function and impl block.
func (s *Specs) Validate() []ValidationError {
	var errs []ValidationError
	for _, d := range s.Fns {
		errs = append(errs, Validate(d)...)
	}
	for _, b := range s.Impls {
		errs = append(errs, Validate(b)...)
	}
	return errs
}
