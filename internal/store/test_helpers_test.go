package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/zhanong/ecsframework/internal/trace"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun begins a run with minimal required fields.
func createTestRun(t *testing.T, s *Store, id string) Run {
	t.Helper()
	run := Run{ID: id, ConfigDir: "testdata/content", StartScene: "MainMenu"}
	if err := s.BeginRun(context.Background(), run); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}
	return run
}

func createTestEvent(seq, tick int64, kind trace.Kind, scene string) trace.Event {
	return trace.Event{Seq: seq, Tick: tick, Kind: kind, Scene: scene}
}
