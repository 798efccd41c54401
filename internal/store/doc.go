// Package store provides a SQLite-backed cache of transformation results.
//
// Every transformed declaration is keyed by its content hash
// (ir.DeclarationHash), so a declaration whose signature, enclosing context
// and target names are unchanged is never synthesized twice. Both outcomes
// are cached: the synthesized ir.Output, or the single transform.Diagnostic
// that rejected the declaration.
//
// # Tables
//
//   - runs: one row per CLI invocation, identified by a UUIDv7 and ordered
//     by a logical seq.
//   - transforms: one row per declaration hash, recording the run that first
//     produced it. Payloads are msgpack encoded.
//
// # Invariants
//
//   - Writes are idempotent: ON CONFLICT DO NOTHING, the first producer wins.
//   - All ordering uses seq INTEGER, never timestamps.
//   - Multi-row queries end in ORDER BY seq ASC, hash ASC COLLATE BINARY.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
