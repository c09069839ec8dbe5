package store

import (
	"context"
	"log/slog"

	"github.com/zhanong/ecsframework/internal/trace"
)

// Journal records trace events of one run into the store.
//
// Record cannot return an error, so the first write error is kept and
// later events are dropped; callers check Err when the run ends.
type Journal struct {
	store  *Store
	runID  string
	ctx    context.Context
	err    error
	logger *slog.Logger
}

// NewJournal creates a journal for runID. The run must already be begun.
func NewJournal(ctx context.Context, s *Store, runID string, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{store: s, runID: runID, ctx: ctx, logger: logger}
}

// RunID returns the run being journaled.
func (j *Journal) RunID() string { return j.runID }

// Record implements trace.Recorder.
func (j *Journal) Record(ev trace.Event) {
	if j.err != nil {
		return
	}
	if err := j.store.AppendEvent(j.ctx, j.runID, ev); err != nil {
		j.err = err
		j.logger.Error("journal write failed; dropping further events",
			"run_id", j.runID,
			"seq", ev.Seq,
			"error", err)
	}
}

// Err returns the first write error, if any.
func (j *Journal) Err() error { return j.err }
