package testutil

import (
	"fmt"
	"sync"
)

// FixedRunIDs generates predictable run IDs: prefix-0001, prefix-0002, ...
//
// Runs are the primary key of the store's runs table, so unlike a constant
// token every call must return a fresh ID. The sequence is deterministic,
// which keeps CLI JSON output and store contents comparable across runs.
//
// Thread-safety: all methods are safe for concurrent use.
type FixedRunIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewFixedRunIDs creates a generator. If prefix is empty, "test-run" is used.
func NewFixedRunIDs(prefix string) *FixedRunIDs {
	if prefix == "" {
		prefix = "test-run"
	}
	return &FixedRunIDs{prefix: prefix}
}

// Generate returns the next run ID.
//
// Implements store.RunIDGenerator.
func (g *FixedRunIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
