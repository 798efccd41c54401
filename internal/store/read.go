package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a run or result does not exist.
var ErrNotFound = errors.New("not found")

const entryColumns = `hash, decl, builder, kind, payload, run_id, seq`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e       Entry
		payload []byte
	)
	if err := row.Scan(&e.Hash, &e.Decl, &e.Builder, &e.Kind, &payload, &e.RunID, &e.Seq); err != nil {
		return Entry{}, err
	}
	switch e.Kind {
	case KindOutput:
		out, err := unmarshalOutput(payload)
		if err != nil {
			return Entry{}, fmt.Errorf("entry %s: %w", e.Hash, err)
		}
		e.Output = out
	case KindDiagnostic:
		d, err := unmarshalDiagnostic(payload)
		if err != nil {
			return Entry{}, fmt.Errorf("entry %s: %w", e.Hash, err)
		}
		e.Diagnostic = d
	default:
		return Entry{}, fmt.Errorf("entry %s: unknown kind %q", e.Hash, e.Kind)
	}
	return e, nil
}

// Lookup returns the cached result for a declaration hash. The boolean is
// false on a cache miss.
func (s *Store) Lookup(ctx context.Context, hash string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM transforms WHERE hash = ?`, hash)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup %s: %w", hash, err)
	}
	return e, true, nil
}

// ReadRunEntries returns the results first produced by a run, in the order
// the run produced them.
func (s *Store) ReadRunEntries(ctx context.Context, runID string) ([]Entry, error) {
	return s.queryEntries(ctx, `
		SELECT `+entryColumns+` FROM transforms
		WHERE run_id = ?
		ORDER BY seq ASC, hash COLLATE BINARY ASC
	`, runID)
}

// ReadAllEntries returns every cached result with deterministic ordering.
func (s *Store) ReadAllEntries(ctx context.Context) ([]Entry, error) {
	return s.Query(ctx, nil)
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transforms: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transform: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transforms: %w", err)
	}
	return entries, nil
}

// ReadRun retrieves a run by ID. Returns ErrNotFound if it does not exist.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, decl_count, failed_count FROM runs WHERE id = ?
	`, id).Scan(&r.ID, &r.Seq, &r.DeclCount, &r.FailedCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run: %w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return r, nil
}

// ReadRuns returns all runs ordered by seq.
func (s *Store) ReadRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, decl_count, failed_count FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Seq, &r.DeclCount, &r.FailedCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Stats counts cached results and runs.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(kind = 'output'), 0),
			COALESCE(SUM(kind = 'diagnostic'), 0)
		FROM transforms
	`).Scan(&st.Entries, &st.Outputs, &st.Diagnostics)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: transforms: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&st.Runs); err != nil {
		return Stats{}, fmt.Errorf("stats: runs: %w", err)
	}
	if st.Runs == 0 {
		return st, nil
	}

	var last Run
	err = s.db.QueryRowContext(ctx, `
		SELECT id, seq, decl_count, failed_count FROM runs
		ORDER BY seq DESC LIMIT 1
	`).Scan(&last.ID, &last.Seq, &last.DeclCount, &last.FailedCount)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: last run: %w", err)
	}
	st.LastRun = &last
	return st, nil
}
