package store

import (
	"context"
	"fmt"

	"github.com/roach88/optchain/internal/ir"
	"github.com/roach88/optchain/internal/transform"
)

// BeginRun records a new run with the next logical seq and returns it.
// The run must exist before results referencing it are written.
func (s *Store) BeginRun(ctx context.Context, id string) (Run, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return Run{}, fmt.Errorf("begin run: next seq: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO runs (id, seq) VALUES (?, ?)`, id, seq); err != nil {
		return Run{}, fmt.Errorf("begin run: insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("begin run: commit: %w", err)
	}
	return Run{ID: id, Seq: seq}, nil
}

// FinishRun records the declaration and failure counts of a run.
func (s *Store) FinishRun(ctx context.Context, id string, declCount, failedCount int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET decl_count = ?, failed_count = ? WHERE id = ?
	`, declCount, failedCount, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: %w: %s", ErrNotFound, id)
	}
	return nil
}

// PutOutput caches a synthesized output under its declaration hash.
// Returns whether a new row was inserted. Uses ON CONFLICT(hash) DO NOTHING:
// the first run to produce a hash keeps it.
func (s *Store) PutOutput(ctx context.Context, runID string, seq int64, out *ir.Output) (bool, error) {
	if out.Hash == "" {
		return false, fmt.Errorf("put output %s: missing declaration hash", out.Decl)
	}
	payload, err := marshalOutput(out)
	if err != nil {
		return false, fmt.Errorf("put output %s: %w", out.Decl, err)
	}
	return s.putResult(ctx, out.Hash, out.Decl, out.Builder.StructName, KindOutput, payload, runID, seq)
}

// PutDiagnostic caches the rejection of the declaration with the given hash.
func (s *Store) PutDiagnostic(ctx context.Context, runID string, seq int64, hash, builder string, d *transform.Diagnostic) (bool, error) {
	payload, err := marshalDiagnostic(d)
	if err != nil {
		return false, fmt.Errorf("put diagnostic %s: %w", d.Decl, err)
	}
	return s.putResult(ctx, hash, d.Decl, builder, KindDiagnostic, payload, runID, seq)
}

func (s *Store) putResult(ctx context.Context, hash, decl, builder, kind string, payload []byte, runID string, seq int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transforms
		(hash, decl, builder, kind, payload, run_id, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`,
		hash,
		decl,
		builder,
		kind,
		payload,
		runID,
		seq,
	)
	if err != nil {
		return false, fmt.Errorf("put %s %s: %w", kind, decl, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("put %s %s: rows affected: %w", kind, decl, err)
	}
	return n > 0, nil
}

// Clear deletes every cached result and run.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clear: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM transforms`, `DELETE FROM runs`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clear: commit: %w", err)
	}
	return nil
}
