package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the serialized form of a scenario run compared against its
// golden file.
type Snapshot struct {
	ScenarioName string
	Trace        []TraceEvent
	State        []StoredPath
}

// toCanonicalMap converts a Snapshot to the value types MarshalCanonical
// accepts.
func (s *Snapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"seq":  event.Seq,
			"step": event.Step,
		}
		if event.Args != nil {
			eventMap["args"] = event.Args
		}
		if event.Output != nil {
			eventMap["output"] = event.Output
		}
		trace[i] = eventMap
	}

	state := make([]any, len(s.State))
	for i, p := range s.State {
		state[i] = map[string]any{
			"path":                 p.Path,
			"noted_count":          p.NotedCount,
			"last_noted_timestamp": p.LastNotedTimestamp,
		}
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         trace,
		"state":         state,
	}
}

// newGoldie returns the golden file checker for testdata/golden/*.golden.
func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// RunWithGolden executes a scenario and compares the trace and final state
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can check Pass. Test failure (via goldie)
// occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the golden file for
// scenarioName without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := Snapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		State:        result.State,
	}
	data, err := MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	newGoldie(t).Assert(t, scenarioName, data)
	return nil
}
