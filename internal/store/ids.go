package store

import (
	"github.com/google/uuid"
)

// RunIDGenerator produces run identifiers.
// Implemented by UUIDv7Generator (production) and testutil.FixedRunIDs (tests).
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, so IDs of later
// runs sort after earlier ones. Ordering inside the store still uses seq.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if the system random source fails, which only happens if the
// operating system cannot provide entropy.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
