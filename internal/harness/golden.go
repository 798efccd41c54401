package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/optchain/internal/ir"
)

// TraceSnapshot is the golden-file form of a scenario run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Decl         string       `json:"decl"`
	Diagnostic   string       `json:"diagnostic,omitempty"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a snapshot into plain data for
// ir.MarshalCanonical, which only handles IR values and primitives.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		m := map[string]any{
			"seq":  ev.Seq,
			"kind": ev.Kind,
		}
		if ev.Name != "" {
			m["name"] = ev.Name
		}
		if ev.Value != nil {
			m["value"] = ev.Value
		}
		if ev.Args != nil {
			m["args"] = ev.Args
		}
		traceList[i] = m
	}

	out := map[string]any{
		"scenario_name": s.ScenarioName,
		"decl":          s.Decl,
		"trace":         traceList,
	}
	if s.Diagnostic != "" {
		out["diagnostic"] = s.Diagnostic
	}
	return out
}

// Snapshot marshals a result canonically.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	s := TraceSnapshot{
		ScenarioName: scenario.Name,
		Decl:         scenario.Decl,
		Diagnostic:   result.Diagnostic,
		Trace:        result.Trace,
	}
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	data, err := Snapshot(scenario, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return result, nil
}
