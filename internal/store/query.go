package store

import (
	"context"
	"fmt"
	"strings"
)

// Column names a filterable transforms column. Columns are spliced into
// SQL text, so only the constants below are accepted.
type Column string

const (
	ColumnKind    Column = "t.kind"
	ColumnBuilder Column = "t.builder"
	ColumnDecl    Column = "t.decl"
	ColumnRun     Column = "t.run_id"
)

var columns = map[Column]bool{
	ColumnKind:    true,
	ColumnBuilder: true,
	ColumnDecl:    true,
	ColumnRun:     true,
}

// Predicate filters cache entries. Equals and And are the only
// implementations.
type Predicate interface {
	predicateNode()
}

// Equals matches entries whose column holds exactly Value.
type Equals struct {
	Field Column
	Value string
}

func (Equals) predicateNode() {}

// And matches entries satisfying every predicate. An empty And matches
// everything.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Where builds the conjunction of equality filters for the non-empty
// values in fields.
func Where(fields map[Column]string) Predicate {
	var and And
	for _, c := range []Column{ColumnKind, ColumnBuilder, ColumnDecl, ColumnRun} {
		if v := fields[c]; v != "" {
			and.Predicates = append(and.Predicates, Equals{Field: c, Value: v})
		}
	}
	return and
}

// entryOrder is the total order of every entry listing: producing run, then
// position in that run, then hash.
const entryOrder = `ORDER BY r.seq ASC, t.seq ASC, t.hash COLLATE BINARY ASC`

// compileQuery renders p as a parameterized SELECT over transforms joined
// to runs. Values are always bound, never interpolated.
func compileQuery(p Predicate) (string, []any, error) {
	where, args, err := compilePredicate(p)
	if err != nil {
		return "", nil, err
	}
	var sb strings.Builder
	sb.WriteString("SELECT t.hash, t.decl, t.builder, t.kind, t.payload, t.run_id, t.seq\n")
	sb.WriteString("FROM transforms t\nJOIN runs r ON t.run_id = r.id\n")
	if where != "" {
		sb.WriteString("WHERE ")
		sb.WriteString(where)
		sb.WriteByte('\n')
	}
	sb.WriteString(entryOrder)
	return sb.String(), args, nil
}

func compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "", nil, nil
	case Equals:
		if !columns[pred.Field] {
			return "", nil, fmt.Errorf("unsupported filter column %q", pred.Field)
		}
		return string(pred.Field) + " = ?", []any{pred.Value}, nil
	case And:
		var (
			parts []string
			args  []any
		)
		for _, sub := range pred.Predicates {
			sql, subArgs, err := compilePredicate(sub)
			if err != nil {
				return "", nil, err
			}
			if sql == "" {
				continue
			}
			if _, nested := sub.(And); nested {
				sql = "(" + sql + ")"
			}
			parts = append(parts, sql)
			args = append(args, subArgs...)
		}
		return strings.Join(parts, " AND "), args, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// Query returns the cached entries matching p in production order. A nil
// predicate matches everything.
func (s *Store) Query(ctx context.Context, p Predicate) ([]Entry, error) {
	query, args, err := compileQuery(p)
	if err != nil {
		return nil, err
	}
	return s.queryEntries(ctx, query, args...)
}
