package store

import (
	"context"
	"fmt"

	"github.com/zhanong/ecsframework/internal/trace"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one orchestrator run.
type Run struct {
	ID         string
	ConfigDir  string
	StartScene string
	Status     string
	Ticks      int64
	Error      string
}

// BeginRun inserts a run record with status running.
// Uses ON CONFLICT(id) DO NOTHING - beginning the same run twice is ignored.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, config_dir, start_scene, status)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.ConfigDir, run.StartScene, StatusRunning)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun records the final status and tick count of a run.
func (s *Store) FinishRun(ctx context.Context, runID, status string, ticks int64, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, ticks = ?, error = ? WHERE id = ?
	`, status, ticks, msg, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// AppendEvent inserts one trace event.
// Uses ON CONFLICT DO NOTHING - rewriting the same (run_id, seq) is ignored.
//
// The run must exist (foreign key constraint).
func (s *Store) AppendEvent(ctx context.Context, runID string, ev trace.Event) error {
	detail, err := marshalDetail(ev.Detail)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (run_id, seq, tick, kind, scene, detail)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, runID, ev.Seq, ev.Tick, string(ev.Kind), ev.Scene, detail)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}
