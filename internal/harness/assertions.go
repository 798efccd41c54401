package harness

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/roach88/optchain/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s\n", event.Seq, eventLabel(event))
	}
	return buf.String()
}

func eventLabel(ev TraceEvent) string {
	if ev.Name == "" {
		return ev.Kind
	}
	return ev.Kind + ":" + ev.Name
}

// matches reports whether ev is selected by pattern: `kind` or `kind:name`.
func matches(ev TraceEvent, pattern string) bool {
	kind, name, qualified := strings.Cut(pattern, ":")
	if ev.Kind != kind {
		return false
	}
	return !qualified || ev.Name == name
}

// assertTraceContains checks for an event matching the pattern and, when
// given, the value.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, ev := range trace {
		if !matches(ev, a.Event) {
			continue
		}
		if a.Value == nil || sameValue(a.Value, ev.Value) {
			return nil
		}
	}
	expected := a.Event
	if a.Value != nil {
		expected = fmt.Sprintf("%s with value %v", a.Event, a.Value)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the first occurrences of the patterns are in
// order. Other events may come between them.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	positions := make([]int, len(a.Events))
	for i, pattern := range a.Events {
		for pos, ev := range trace {
			if matches(ev, pattern) {
				positions[i] = pos + 1
				break
			}
		}
		if positions[i] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all events present: %v", a.Events),
				Actual:   fmt.Sprintf("missing event: %s", pattern),
				Trace:    trace,
			}
		}
	}
	for i := 1; i < len(positions); i++ {
		if positions[i-1] >= positions[i] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("events in order: %v", a.Events),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					a.Events[i-1], positions[i-1], a.Events[i], positions[i]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks that the pattern matches exactly Count events.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if matches(ev, a.Event) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%s appears %d times", a.Event, a.Count),
			Actual:   fmt.Sprintf("appears %d times", count),
			Trace:    trace,
		}
	}
	return nil
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(trace []TraceEvent, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(trace, a)
		case AssertTraceCount:
			err = assertTraceCount(trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func sameValue(expect, got any) bool {
	want, err := ir.FromAny(expect)
	if err != nil {
		return false
	}
	g, err := ir.FromAny(got)
	if err != nil {
		return false
	}
	wb, err1 := ir.MarshalCanonical(want)
	gb, err2 := ir.MarshalCanonical(g)
	return err1 == nil && err2 == nil && bytes.Equal(wb, gb)
}
