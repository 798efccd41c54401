package store

import (
	"github.com/roach88/optchain/internal/ir"
	"github.com/roach88/optchain/internal/transform"
)

// Kind values of the transforms table.
const (
	KindOutput     = "output"
	KindDiagnostic = "diagnostic"
)

// Run is one recorded CLI transformation run.
type Run struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	DeclCount   int    `json:"decl_count"`
	FailedCount int    `json:"failed_count"`
}

// Entry is one cached transformation result. Exactly one of Output and
// Diagnostic is set, matching Kind.
type Entry struct {
	Hash       string                `json:"hash"`
	Decl       string                `json:"decl"`
	Builder    string                `json:"builder"`
	Kind       string                `json:"kind"`
	RunID      string                `json:"run_id"`
	Seq        int64                 `json:"seq"`
	Output     *ir.Output            `json:"output,omitempty"`
	Diagnostic *transform.Diagnostic `json:"diagnostic,omitempty"`
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries     int64 `json:"entries"`
	Outputs     int64 `json:"outputs"`
	Diagnostics int64 `json:"diagnostics"`
	Runs        int64 `json:"runs"`
	LastRun     *Run  `json:"last_run,omitempty"`
}
