package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the final state to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	State    []StoredPath // Final database for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFinal state:\n")
	for i, p := range e.State {
		fmt.Fprintf(&buf, "  [%d] %s count=%d last_noted=%d\n", i+1, p.Path, p.NotedCount, p.LastNotedTimestamp)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the final state and
// returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluateAssertion(result.State, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluateAssertion(state []StoredPath, a Assertion) error {
	switch a.Type {
	case AssertStored:
		return assertStored(state, a)
	case AssertAbsent:
		return assertAbsent(state, a)
	case AssertTotal:
		return assertTotal(state, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func find(state []StoredPath, path string) (StoredPath, bool) {
	for _, p := range state {
		if p.Path == path {
			return p, true
		}
	}
	return StoredPath{}, false
}

func assertStored(state []StoredPath, a Assertion) error {
	p, ok := find(state, a.Path)
	if !ok {
		return &AssertionError{
			Type:     AssertStored,
			Expected: fmt.Sprintf("%s stored with count %d", a.Path, a.Count),
			Actual:   "not in database",
			State:    state,
		}
	}
	if p.NotedCount != a.Count {
		return &AssertionError{
			Type:     AssertStored,
			Expected: fmt.Sprintf("%s stored with count %d", a.Path, a.Count),
			Actual:   fmt.Sprintf("count %d", p.NotedCount),
			State:    state,
		}
	}
	return nil
}

func assertAbsent(state []StoredPath, a Assertion) error {
	if p, ok := find(state, a.Path); ok {
		return &AssertionError{
			Type:     AssertAbsent,
			Expected: fmt.Sprintf("%s not in database", a.Path),
			Actual:   fmt.Sprintf("stored with count %d", p.NotedCount),
			State:    state,
		}
	}
	return nil
}

func assertTotal(state []StoredPath, a Assertion) error {
	if int64(len(state)) != a.Count {
		return &AssertionError{
			Type:     AssertTotal,
			Expected: fmt.Sprintf("%d paths in database", a.Count),
			Actual:   fmt.Sprintf("%d paths", len(state)),
			State:    state,
		}
	}
	return nil
}
