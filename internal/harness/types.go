package harness

import (
	"github.com/zhanong/ecsframework/internal/app"
	"github.com/zhanong/ecsframework/internal/trace"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every assertion held.
	Pass bool `json:"pass"`

	// RunID is the journal run id.
	RunID string `json:"run_id"`

	// Trace contains every recorded event in emission order.
	Trace []trace.Event `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the snapshot taken after the last step.
	State app.Snapshot `json:"state"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []trace.Event{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// snapshotFields lists the keys final_state may check.
var snapshotFields = map[string]bool{
	"tick":      true,
	"active":    true,
	"loader":    true,
	"sequencer": true,
	"stamps":    true,
	"entities":  true,
	"resets":    true,
}

// snapshotMap flattens a snapshot for comparison and canonical encoding.
func snapshotMap(s app.Snapshot) map[string]any {
	stamps := make([]any, len(s.Stamps))
	for i, stamp := range s.Stamps {
		stamps[i] = stamp
	}
	flags := make(map[string]any, len(s.Flags))
	for name, on := range s.Flags {
		flags[name] = on
	}
	return map[string]any{
		"tick":      int(s.Tick),
		"active":    s.Active,
		"loader":    s.Loader,
		"sequencer": s.Sequencer,
		"stamps":    stamps,
		"entities":  s.Entities,
		"resets":    s.Resets,
		"flags":     flags,
	}
}
