package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zhanong/ecsframework/internal/scene"
)

// Scenario drives the orchestrator through a scripted sequence of requests
// and ticks, then asserts on the trace and the final snapshot.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Content is the CUE content directory. Relative paths are resolved
	// against the scenario file's directory.
	Content string `yaml:"content"`

	// StartScene is requested once startup completes. Empty means none.
	StartScene string `yaml:"start_scene,omitempty"`

	// LoadTimeoutTicks fails loads pending after this many polls. Zero
	// disables the timeout.
	LoadTimeoutTicks int `yaml:"load_timeout_ticks,omitempty"`

	// Loads overrides asset loading per scene name. Scenes without an
	// entry load with the catalog's latency.
	Loads map[string]LoadScript `yaml:"loads,omitempty"`

	// Steps run in order after startup.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and final state.
	// Supported types: trace_contains, trace_order, trace_count, final_state
	Assertions []Assertion `yaml:"assertions"`

	// RunID is an optional fixed run id for the journal.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`
}

// LoadScript scripts the asset loader for one scene.
type LoadScript struct {
	// Polls is how many polls report pending before completion.
	Polls int `yaml:"polls,omitempty"`
	// Stall keeps the load pending forever.
	Stall bool `yaml:"stall,omitempty"`
	// IssueError fails the load when it is issued.
	IssueError string `yaml:"issue_error,omitempty"`
	// PollError fails the load once the pending polls are used up.
	PollError string `yaml:"poll_error,omitempty"`
}

// Step is one scenario action. Exactly one field is set.
type Step struct {
	// Request queues a transition to the named scene.
	Request string `yaml:"request,omitempty"`
	// Tick runs this many ticks.
	Tick int `yaml:"tick,omitempty"`
	// Teardown tears the app down.
	Teardown bool `yaml:"teardown,omitempty"`
}

// Assertion validates some aspect of the scenario execution.
type Assertion struct {
	// Type is the assertion type.
	Type string `yaml:"type"`

	// Kind is the event kind for trace_contains and trace_count.
	Kind string `yaml:"kind,omitempty"`

	// Scene narrows trace_contains and trace_count to one scene.
	Scene string `yaml:"scene,omitempty"`

	// Detail is matched as a subset of the event detail.
	Detail map[string]string `yaml:"detail,omitempty"`

	// Kinds lists event kinds that must appear in order (trace_order).
	Kinds []string `yaml:"kinds,omitempty"`

	// Count is the exact number of matching events (trace_count).
	Count int `yaml:"count,omitempty"`

	// Expect maps snapshot fields to expected values (final_state).
	Expect map[string]interface{} `yaml:"expect,omitempty"`

	// Flags maps flag names to whether they are active (final_state).
	Flags map[string]bool `yaml:"flags,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file. A relative content
// path is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Content != "" && !filepath.IsAbs(scenario.Content) {
		scenario.Content = filepath.Join(filepath.Dir(path), scenario.Content)
	}
	return scenario, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos)
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

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Content == "" {
		return fmt.Errorf("content directory is required")
	}

	if s.StartScene != "" {
		if _, err := scene.Parse(s.StartScene); err != nil {
			return fmt.Errorf("start_scene: %w", err)
		}
	}

	if s.LoadTimeoutTicks < 0 {
		return fmt.Errorf("load_timeout_ticks must not be negative")
	}

	for name := range s.Loads {
		if _, err := scene.Parse(name); err != nil {
			return fmt.Errorf("loads: %w", err)
		}
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("step[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertion[%d]: %w", i, err)
		}
	}

	return nil
}

func validateStep(step Step) error {
	set := 0
	if step.Request != "" {
		set++
		if _, err := scene.Parse(step.Request); err != nil {
			return fmt.Errorf("request: %w", err)
		}
	}
	if step.Tick != 0 {
		set++
		if step.Tick < 0 {
			return fmt.Errorf("tick count must be positive")
		}
	}
	if step.Teardown {
		set++
	}
	if set != 1 {
		return fmt.Errorf("exactly one of request, tick or teardown must be set")
	}
	return nil
}

// validateAssertion checks that an assertion has required fields for its type.
func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if a.Kind == "" {
			return fmt.Errorf("trace_contains requires kind")
		}
	case AssertTraceOrder:
		if len(a.Kinds) < 2 {
			return fmt.Errorf("trace_order requires at least 2 kinds")
		}
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("trace_count requires kind")
		}
		if a.Count < 0 {
			return fmt.Errorf("trace_count requires non-negative count")
		}
	case AssertFinalState:
		if len(a.Expect) == 0 && len(a.Flags) == 0 {
			return fmt.Errorf("final_state requires expect or flags")
		}
		for key := range a.Expect {
			if !snapshotFields[key] {
				return fmt.Errorf("final_state: unknown field %q", key)
			}
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q (valid: trace_contains, trace_order, trace_count, final_state)", a.Type)
	}
	return nil
}
