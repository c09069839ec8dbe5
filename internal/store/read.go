package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zhanong/ecsframework/internal/trace"
)

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns a run and its events ordered by seq.
//
// Returns an empty slice (not nil) if the run has no events.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, []trace.Event, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, config_dir, start_scene, status, ticks, error
		FROM runs WHERE id = ?
	`, runID).Scan(&run.ID, &run.ConfigDir, &run.StartScene, &run.Status, &run.Ticks, &run.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, nil, fmt.Errorf("read run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, nil, fmt.Errorf("read run: %w", err)
	}

	events, err := s.ReadEvents(ctx, runID, "")
	if err != nil {
		return Run{}, nil, err
	}
	return run, events, nil
}

// ReadEvents returns a run's events ordered by seq. A non-empty kind filters
// to that kind.
func (s *Store) ReadEvents(ctx context.Context, runID string, kind trace.Kind) ([]trace.Event, error) {
	query := `
		SELECT seq, tick, kind, scene, detail
		FROM events
		WHERE run_id = ?
		ORDER BY seq ASC
	`
	args := []any{runID}
	if kind != "" {
		query = `
			SELECT seq, tick, kind, scene, detail
			FROM events
			WHERE run_id = ? AND kind = ?
			ORDER BY seq ASC
		`
		args = append(args, string(kind))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []trace.Event{}
	for rows.Next() {
		var (
			ev     trace.Event
			kindS  string
			detail string
		)
		if err := rows.Scan(&ev.Seq, &ev.Tick, &kindS, &ev.Scene, &detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = trace.Kind(kindS)
		if ev.Detail, err = unmarshalDetail(detail); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// ListRuns returns every run ordered by id. UUIDv7 ids sort by creation.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, config_dir, start_scene, status, ticks, error
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.ConfigDir, &run.StartScene, &run.Status, &run.Ticks, &run.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
