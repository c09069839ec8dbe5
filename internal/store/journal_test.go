package store

import (
	"context"
	"errors"
	"testing"

	"github.com/zhanong/ecsframework/internal/trace"
)

func TestAppendAndReadRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1")

	events := []trace.Event{
		createTestEvent(1, 1, trace.KindRequest, "Level1"),
		{Seq: 2, Tick: 1, Kind: trace.KindConfigLoaded, Detail: map[string]string{"payloads": "3"}},
		createTestEvent(3, 4, trace.KindLoadCompleted, "Level1"),
	}
	// Insert out of order; reads come back by seq.
	for _, i := range []int{2, 0, 1} {
		if err := s.AppendEvent(ctx, "run-1", events[i]); err != nil {
			t.Fatalf("AppendEvent() failed: %v", err)
		}
	}

	run, got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if run.Status != StatusRunning || run.StartScene != "MainMenu" {
		t.Errorf("run = %+v", run)
	}
	if len(got) != len(events) {
		t.Fatalf("got %d events, want %d", len(got), len(events))
	}
	for i := range events {
		if got[i].Seq != events[i].Seq || got[i].Kind != events[i].Kind || got[i].Scene != events[i].Scene {
			t.Errorf("event %d = %+v, want %+v", i, got[i], events[i])
		}
	}
	if got[1].Detail["payloads"] != "3" {
		t.Errorf("detail = %v", got[1].Detail)
	}
	if got[0].Detail != nil {
		t.Errorf("empty detail should read back nil, got %v", got[0].Detail)
	}
}

func TestAppendEvent_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1")

	ev := createTestEvent(1, 1, trace.KindRequest, "MainMenu")
	for i := 0; i < 2; i++ {
		if err := s.AppendEvent(ctx, "run-1", ev); err != nil {
			t.Fatalf("AppendEvent() #%d failed: %v", i, err)
		}
	}

	got, err := s.ReadEvents(ctx, "run-1", "")
	if err != nil {
		t.Fatalf("ReadEvents() failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d events, want 1", len(got))
	}
}

func TestAppendEvent_UnknownRun(t *testing.T) {
	s := createTestStore(t)
	err := s.AppendEvent(context.Background(), "missing", createTestEvent(1, 1, trace.KindRequest, ""))
	if err == nil {
		t.Fatal("expected foreign key error")
	}
}

func TestReadEvents_FilterByKind(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1")

	for i, k := range []trace.Kind{trace.KindPulseRaised, trace.KindPulseCleared, trace.KindPulseRaised} {
		if err := s.AppendEvent(ctx, "run-1", createTestEvent(int64(i+1), int64(i+1), k, "")); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ReadEvents(ctx, "run-1", trace.KindPulseRaised)
	if err != nil {
		t.Fatalf("ReadEvents() failed: %v", err)
	}
	if len(got) != 2 || got[0].Seq != 1 || got[1].Seq != 3 {
		t.Errorf("filtered events = %+v", got)
	}
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, _, err := s.ReadRun(context.Background(), "missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

func TestFinishRunAndList(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "0002")
	createTestRun(t, s, "0001")

	if err := s.FinishRun(ctx, "0001", StatusFailed, 7, errors.New("stage boom")); err != nil {
		t.Fatalf("FinishRun() failed: %v", err)
	}
	if err := s.FinishRun(ctx, "missing", StatusCompleted, 1, nil); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("FinishRun(missing) = %v", err)
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "0001" || runs[1].ID != "0002" {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].Status != StatusFailed || runs[0].Ticks != 7 || runs[0].Error != "stage boom" {
		t.Errorf("finished run = %+v", runs[0])
	}
}

func TestJournalRecordsThroughLog(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1")

	j := NewJournal(ctx, s, "run-1", nil)
	log := trace.NewLog(j)
	log.SetTick(3)
	log.Emit(trace.KindRequest, "Level1", nil)
	log.Emit(trace.KindLoadIssued, "Level1", map[string]string{"by": "test"})

	if err := j.Err(); err != nil {
		t.Fatalf("journal error: %v", err)
	}
	got, err := s.ReadEvents(ctx, "run-1", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].Tick != 3 || got[1].Detail["by"] != "test" {
		t.Errorf("events = %+v", got)
	}
}

func TestJournalKeepsFirstError(t *testing.T) {
	s := createTestStore(t)
	j := NewJournal(context.Background(), s, "never-begun", nil)

	j.Record(createTestEvent(1, 1, trace.KindRequest, ""))
	first := j.Err()
	if first == nil {
		t.Fatal("expected error for unknown run")
	}
	j.Record(createTestEvent(2, 1, trace.KindRequest, ""))
	if j.Err() != first {
		t.Error("journal replaced its first error")
	}
}
