package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/zhanong/ecsframework/internal/trace"
)

// TraceSnapshot captures the complete trace and final state of a scenario
// execution for golden comparison.
type TraceSnapshot struct {
	ScenarioName string
	RunID        string
	Result       *Result
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	m := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         s.Result.Trace,
		"final":         snapshotMap(s.Result.State),
	}
	if s.RunID != "" {
		m["run_id"] = s.RunID
	}
	return m
}

// Golden encodes a result as canonical JSON.
func Golden(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		RunID:        result.RunID,
		Result:       result,
	}
	return trace.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden unless
// opts override the fixture directory.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...goldie.Option) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result, opts...)
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result, opts ...goldie.Option) error {
	t.Helper()

	data, err := Golden(scenarioName, result)
	if err != nil {
		return err
	}

	g := newGoldie(t, opts...)
	g.Assert(t, scenarioName, data)
	return nil
}

func newGoldie(t *testing.T, opts ...goldie.Option) *goldie.Goldie {
	all := append([]goldie.Option{
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	}, opts...)
	return goldie.New(t, all...)
}
