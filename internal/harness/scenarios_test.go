package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios runs every end-to-end scenario under testdata/scenarios and
// compares its trace against the golden file of the same name.
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("../../testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("../../testdata/scenarios/join_strings_defaults.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	want, err := Snapshot(scenario, first)
	require.NoError(t, err)

	for range 5 {
		r, err := Run(scenario)
		require.NoError(t, err)
		got, err := Snapshot(scenario, r)
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got))
	}
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong_expectation
specs: [x]
decl: join_strings
body: concat
flow:
  - construct: {args: ["aaa"]}
  - invoke: {expect: "nope"}
  - set: {name: a, value: "x"}
  - set: {name: b, value: "x", error: CONVERSION_FAILED}
`))
	require.NoError(t, err)
	scenario.Specs = []string{"../../testdata/specs/join.cue"}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], `expected "nope", got "aaaccc"`)
	assert.Contains(t, result.Errors[1], "UNKNOWN_SETTER")
	assert.Contains(t, result.Errors[2], "expected error CONVERSION_FAILED, got success")
}

func TestRun_DiagnosticMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:       "expects_failure",
		Specs:      []string{"../../testdata/specs/join.cue"},
		Decl:       "join_strings",
		Diagnostic: "ReservedNameCollision",
	}
	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "transformation succeeded")

	scenario = &Scenario{
		Name:       "wrong_kind",
		Specs:      []string{"../../testdata/specs/adder.cue"},
		Decl:       "Adder::broken",
		Diagnostic: "ReservedNameCollision",
	}
	result, err = Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, "ExplicitLifetimeRequired", result.Diagnostic)
}

func TestRun_SetupErrors(t *testing.T) {
	tests := []struct {
		name     string
		scenario Scenario
		errMsg   string
	}{
		{
			name:     "missing spec file",
			scenario: Scenario{Specs: []string{"does/not/exist.cue"}, Decl: "f"},
			errMsg:   "failed to read spec",
		},
		{
			name:     "unknown function",
			scenario: Scenario{Specs: []string{"../../testdata/specs/join.cue"}, Decl: "nope"},
			errMsg:   `function "nope" not found`,
		},
		{
			name:     "unknown impl",
			scenario: Scenario{Specs: []string{"../../testdata/specs/adder.cue"}, Decl: "Nope::add"},
			errMsg:   `impl block "Nope" not found`,
		},
		{
			name:     "unannotated method",
			scenario: Scenario{Specs: []string{"../../testdata/specs/adder.cue"}, Decl: "Adder::new"},
			errMsg:   `no annotated method "new"`,
		},
		{
			name: "bad instantiation",
			scenario: Scenario{
				Specs:       []string{"../../testdata/specs/join.cue"},
				Decl:        "convert",
				Instantiate: map[string]string{"T": "Vec<"},
				Body:        "sum",
			},
			errMsg: "instantiate T",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(&tt.scenario)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSplitDecl(t *testing.T) {
	typ, name := splitDecl("Adder::add")
	assert.Equal(t, "Adder", typ)
	assert.Equal(t, "add", name)

	typ, name = splitDecl("join_strings")
	assert.Empty(t, typ)
	assert.Equal(t, "join_strings", name)
}
