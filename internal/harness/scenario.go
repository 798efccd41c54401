package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines one end-to-end run of a synthesized builder.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists CUE spec files, relative to the scenario file unless
	// absolute.
	Specs []string `yaml:"specs"`

	// Decl selects the declaration: a function name, or Type::method for a
	// method of the impl block labelled Type.
	Decl string `yaml:"decl"`

	// Instantiate binds generic type parameters, e.g. {T: i8, R: i32}.
	Instantiate map[string]string `yaml:"instantiate,omitempty"`

	// Body names the canned original logic (see Bodies).
	Body string `yaml:"body,omitempty"`

	// Evaluators give constant values for opaque default expressions,
	// keyed by expression text.
	Evaluators map[string]any `yaml:"evaluators,omitempty"`

	// Diagnostic, when set, is the diagnostic kind the transformation must
	// fail with. Flow must then be empty.
	Diagnostic string `yaml:"diagnostic,omitempty"`

	// Flow is the sequence of builder operations.
	Flow []FlowStep `yaml:"flow,omitempty"`

	// Assertions validate the final trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// FlowStep is exactly one of Construct, Set or Invoke.
type FlowStep struct {
	Construct *ConstructStep `yaml:"construct,omitempty"`
	Set       *SetStep       `yaml:"set,omitempty"`
	Invoke    *InvokeStep    `yaml:"invoke,omitempty"`
}

// ConstructStep starts a new current builder.
type ConstructStep struct {
	Receiver any   `yaml:"receiver,omitempty"`
	Args     []any `yaml:"args,omitempty"`

	// Error is the expected engine error code, if construction must fail.
	Error string `yaml:"error,omitempty"`
}

// SetStep calls one setter on the current builder.
type SetStep struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
	Error string `yaml:"error,omitempty"`
}

// InvokeStep runs the terminal operation, awaiting it when async.
type InvokeStep struct {
	Expect any    `yaml:"expect,omitempty"`
	Error  string `yaml:"error,omitempty"`
}

// Assertion validates the trace.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count.
	Type string `yaml:"type"`

	// Event is an event kind, optionally qualified by name as kind:name
	// (trace_contains, trace_count).
	Event string `yaml:"event,omitempty"`

	// Value is matched against the event value (trace_contains).
	Value any `yaml:"value,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Events is the expected relative order (trace_order).
	Events []string `yaml:"events,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file. Spec paths are
// resolved relative to the file's directory. Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	base := filepath.Dir(path)
	for i, spec := range scenario.Specs {
		if !filepath.IsAbs(spec) {
			scenario.Specs[i] = filepath.Join(base, spec)
		}
	}
	return scenario, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required")
	}
	if s.Decl == "" {
		return fmt.Errorf("decl is required")
	}
	if s.Diagnostic != "" {
		if len(s.Flow) > 0 {
			return fmt.Errorf("flow must be empty when a diagnostic is expected")
		}
		return nil
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow must have at least one step")
	}
	if _, ok := Bodies[s.Body]; !ok {
		return fmt.Errorf("unknown body %q", s.Body)
	}
	for i, step := range s.Flow {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	if s.Flow[0].Construct == nil {
		return fmt.Errorf("flow[0]: the first step must be construct")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step FlowStep) error {
	n := 0
	if step.Construct != nil {
		n++
	}
	if step.Set != nil {
		n++
		if step.Set.Name == "" {
			return fmt.Errorf("flow[%d]: set needs a name", i)
		}
	}
	if step.Invoke != nil {
		n++
	}
	if n != 1 {
		return fmt.Errorf("flow[%d]: exactly one of construct, set, invoke is required", i)
	}
	return nil
}

func validateAssertion(i int, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_contains", i)
		}
	case AssertTraceCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_count", i)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", i)
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for trace_order", i)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
	}
	return nil
}

// splitDecl splits Type::method. Free functions return an empty type.
func splitDecl(decl string) (typ, name string) {
	if i := strings.LastIndex(decl, "::"); i >= 0 {
		return decl[:i], decl[i+2:]
	}
	return "", decl
}
