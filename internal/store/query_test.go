package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileQuery(t *testing.T) {
	tests := []struct {
		name      string
		pred      Predicate
		wantWhere string
		wantArgs  []any
	}{
		{"nil matches all", nil, "", nil},
		{"empty and", And{}, "", nil},
		{"equals", Equals{Field: ColumnKind, Value: "output"}, "WHERE t.kind = ?", []any{"output"}},
		{
			"conjunction",
			And{Predicates: []Predicate{Equals{Field: ColumnRun, Value: "r1"}, Equals{Field: ColumnBuilder, Value: "B"}}},
			"WHERE t.run_id = ? AND t.builder = ?",
			[]any{"r1", "B"},
		},
		{
			"nested and",
			And{Predicates: []Predicate{
				Equals{Field: ColumnDecl, Value: "add"},
				And{Predicates: []Predicate{Equals{Field: ColumnKind, Value: "diagnostic"}}},
				And{},
			}},
			"WHERE t.decl = ? AND (t.kind = ?)",
			[]any{"add", "diagnostic"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := compileQuery(tt.pred)
			require.NoError(t, err)
			if tt.wantWhere == "" {
				assert.NotContains(t, sql, "WHERE")
			} else {
				assert.Contains(t, sql, tt.wantWhere+"\n")
			}
			assert.Equal(t, tt.wantArgs, args)
			// Every listing is totally ordered.
			assert.Contains(t, sql, entryOrder)
		})
	}
}

func TestCompileQuery_RejectsUnknownColumn(t *testing.T) {
	_, _, err := compileQuery(Equals{Field: "payload; DROP TABLE runs", Value: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported filter column")

	_, _, err = compileQuery(And{Predicates: []Predicate{Equals{Field: "t.payload"}}})
	require.Error(t, err)
}

func TestCompileQuery_ValuesAreBound(t *testing.T) {
	sql, args, err := compileQuery(Equals{Field: ColumnDecl, Value: "x' OR '1'='1"})
	require.NoError(t, err)
	assert.NotContains(t, sql, "OR '1'")
	assert.Equal(t, []any{"x' OR '1'='1"}, args)
}

func TestWhere(t *testing.T) {
	p := Where(map[Column]string{ColumnRun: "r1", ColumnKind: "output", ColumnDecl: ""})
	assert.Equal(t, And{Predicates: []Predicate{
		Equals{Field: ColumnKind, Value: "output"},
		Equals{Field: ColumnRun, Value: "r1"},
	}}, p)

	assert.Equal(t, And{}, Where(nil))
}

func TestQuery_Filters(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.BeginRun(ctx, "r1")
	require.NoError(t, err)
	_, err = s.PutOutput(ctx, "r1", 0, sampleOutput(t, "add", "AddBuilder"))
	require.NoError(t, err)
	hash, diag := sampleDiagnostic(t)
	_, err = s.PutDiagnostic(ctx, "r1", 1, hash, "WildBuilder", diag)
	require.NoError(t, err)

	_, err = s.BeginRun(ctx, "r2")
	require.NoError(t, err)
	_, err = s.PutOutput(ctx, "r2", 0, sampleOutput(t, "sub", "SubBuilder"))
	require.NoError(t, err)

	all, err := s.Query(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"AddBuilder", "WildBuilder", "SubBuilder"}, builders(all))

	outputs, err := s.Query(ctx, Where(map[Column]string{ColumnKind: string(KindOutput)}))
	require.NoError(t, err)
	assert.Equal(t, []string{"AddBuilder", "SubBuilder"}, builders(outputs))

	r1Diags, err := s.Query(ctx, Where(map[Column]string{ColumnKind: string(KindDiagnostic), ColumnRun: "r1"}))
	require.NoError(t, err)
	require.Len(t, r1Diags, 1)
	assert.NotNil(t, r1Diags[0].Diagnostic)

	none, err := s.Query(ctx, Where(map[Column]string{ColumnBuilder: "Missing"}))
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none, "empty result is an empty slice")
}

func builders(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Builder
	}
	return out
}
