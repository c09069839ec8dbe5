package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhanong/ecsframework/internal/event"
	"github.com/zhanong/ecsframework/internal/scene"
	"github.com/zhanong/ecsframework/internal/trace"
	"github.com/zhanong/ecsframework/internal/world"
)

type toggleStage struct {
	StageFunc
	enabled bool
}

func (s *toggleStage) Enabled() bool { return s.enabled }

func newTestRunner(t *testing.T) (*Runner, *world.World, *event.Queue, *event.Bus, *trace.Buffer) {
	t.Helper()
	w := world.New()
	q := event.NewQueue()
	bus := event.NewBus()
	buf := trace.NewBuffer()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRunner(w, q, bus, trace.NewLog(buf), WithLogger(logger))
	return r, w, q, bus, buf
}

func TestRunner_GroupOrderThenRegistrationOrder(t *testing.T) {
	r, _, _, _, _ := newTestRunner(t)
	var order []string

	record := func(name string) func(*TickContext) error {
		return func(*TickContext) error {
			order = append(order, name)
			return nil
		}
	}

	r.Register(
		&StageFunc{StageName: "destroy", StageGroup: GroupCreateDestroyEntities, Fn: record("destroy")},
		&StageFunc{StageName: "config", StageGroup: GroupBasic, Fn: record("config")},
		&StageFunc{StageName: "regular", StageGroup: GroupRegularUpdate, Fn: record("regular")},
		&StageFunc{StageName: "loader", StageGroup: GroupBasic, Fn: record("loader")},
		&StageFunc{StageName: "sequencer", StageGroup: GroupBasic, Fn: record("sequencer")},
	)

	require.NoError(t, r.Tick(context.Background()))
	assert.Equal(t, []string{"config", "loader", "sequencer", "regular", "destroy"}, order)
	assert.Equal(t, order, r.Stages())
}

func TestRunner_RequiresGatesStages(t *testing.T) {
	r, w, _, _, _ := newTestRunner(t)
	runs := 0
	r.Register(&StageFunc{
		StageName:   "gated",
		StageGroup:  GroupRegularUpdate,
		RequireList: []world.Flag{world.FlagInitCompleted},
		Fn: func(*TickContext) error {
			runs++
			return nil
		},
	})

	require.NoError(t, r.Tick(context.Background()))
	assert.Equal(t, 0, runs)

	w.AddFlag(world.FlagInitCompleted)
	require.NoError(t, r.Tick(context.Background()))
	assert.Equal(t, 1, runs)

	w.SetFlagEnabled(world.FlagInitCompleted, false)
	require.NoError(t, r.Tick(context.Background()))
	assert.Equal(t, 1, runs, "disabled flag counts as absent")
}

func TestRunner_DisabledStageSkipped(t *testing.T) {
	r, _, _, _, _ := newTestRunner(t)
	runs := 0
	s := &toggleStage{StageFunc: StageFunc{StageName: "toggle", Fn: func(*TickContext) error {
		runs++
		return nil
	}}}
	r.Register(s)

	require.NoError(t, r.Tick(context.Background()))
	assert.Equal(t, 0, runs)

	s.enabled = true
	require.NoError(t, r.Tick(context.Background()))
	assert.Equal(t, 1, runs)
}

func TestRunner_DispatchesRequestsBeforeStages(t *testing.T) {
	r, _, q, bus, buf := newTestRunner(t)
	var order []string

	bus.Subscribe("sub", func(req event.Request) {
		order = append(order, "sub:"+req.Scene.String())
	})
	r.Register(&StageFunc{StageName: "stage", Fn: func(tc *TickContext) error {
		order = append(order, "stage")
		return nil
	}})

	q.Enqueue(event.Request{Scene: scene.Level1})
	q.Enqueue(event.Request{Scene: scene.MainMenu})
	require.NoError(t, r.Tick(context.Background()))

	assert.Equal(t, []string{"sub:Level1", "sub:MainMenu", "stage"}, order)
	require.Len(t, buf.Events(), 2)
	assert.Equal(t, trace.KindRequest, buf.Events()[0].Kind)
	assert.Equal(t, int64(1), buf.Events()[0].Tick)
}

func TestRunner_StageFailureHalts(t *testing.T) {
	r, _, _, _, _ := newTestRunner(t)
	boom := errors.New("boom")
	after := 0

	r.Register(
		&StageFunc{StageName: "bad", StageGroup: GroupBasic, Fn: func(*TickContext) error { return boom }},
		&StageFunc{StageName: "after", StageGroup: GroupRegularUpdate, Fn: func(*TickContext) error {
			after++
			return nil
		}},
	)

	err := r.Tick(context.Background())
	require.Error(t, err)
	assert.True(t, IsStageError(err))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "stage bad (Basic) failed at tick 1")
	assert.Equal(t, 0, after)

	err = r.Tick(context.Background())
	assert.ErrorIs(t, err, ErrHalted)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(1), r.Clock().Current(), "halted runner does not advance")
	assert.NotNil(t, r.Failure())
}

func TestRunner_RunStopsAtTickBudget(t *testing.T) {
	r, _, _, _, _ := newTestRunner(t)
	runs := 0
	r.Register(&StageFunc{StageName: "count", Fn: func(*TickContext) error {
		runs++
		return nil
	}})

	err := r.Run(context.Background(), time.Millisecond, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, runs)
}

func TestRunner_RunStopsOnCancel(t *testing.T) {
	r, _, _, _, _ := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx, time.Hour, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_RunRejectsBadInterval(t *testing.T) {
	r, _, _, _, _ := newTestRunner(t)
	assert.Error(t, r.Run(context.Background(), 0, 1))
}
