package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/zhanong/ecsframework/internal/event"
	"github.com/zhanong/ecsframework/internal/trace"
	"github.com/zhanong/ecsframework/internal/world"
)

// Runner executes stages once per tick.
//
// Thread-safety model:
//   - Tick/Run: must be called from exactly one goroutine
//   - requests: submitted to the event.Queue from any goroutine
type Runner struct {
	world  *world.World
	queue  *event.Queue
	bus    *event.Bus
	log    *trace.Log
	clock  *Clock
	logger *slog.Logger

	stages []Stage
	sorted bool

	failure error
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithClock replaces the tick clock.
func WithClock(c *Clock) RunnerOption {
	return func(r *Runner) {
		r.clock = c
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a runner over w. Requests drained from queue are
// published on bus at the start of every tick.
func NewRunner(w *world.World, queue *event.Queue, bus *event.Bus, log *trace.Log, opts ...RunnerOption) *Runner {
	r := &Runner{
		world:  w,
		queue:  queue,
		bus:    bus,
		log:    log,
		clock:  NewClock(),
		logger: slog.Default(),
		stages: make([]Stage, 0, 16),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a stage. Stages in the same group keep registration order.
func (r *Runner) Register(stages ...Stage) {
	r.stages = append(r.stages, stages...)
	r.sorted = false
}

// Stages returns stage names in execution order.
func (r *Runner) Stages() []string {
	r.sortStages()
	names := make([]string, len(r.stages))
	for i, s := range r.stages {
		names[i] = s.Name()
	}
	return names
}

// Clock returns the tick clock.
func (r *Runner) Clock() *Clock {
	return r.clock
}

// Failure returns the error that halted the runner, or nil.
func (r *Runner) Failure() error {
	return r.failure
}

// Tick runs one tick. After a stage failure every call returns the same
// error wrapped with ErrHalted.
func (r *Runner) Tick(ctx context.Context) error {
	if r.failure != nil {
		return fmt.Errorf("%w: %w", ErrHalted, r.failure)
	}

	r.sortStages()

	tick := r.clock.Next()
	r.log.SetTick(tick)

	for _, req := range r.queue.Drain() {
		r.logger.Debug("dispatching scene request", "tick", tick, "scene", req.Scene)
		r.log.Emit(trace.KindRequest, req.Scene.String(), nil)
		r.bus.Publish(req)
	}

	tc := &TickContext{Ctx: ctx, Tick: tick, World: r.world, Log: r.log}

	for _, s := range r.stages {
		if t, ok := s.(Toggler); ok && !t.Enabled() {
			continue
		}
		if !r.world.ActiveAll(s.Requires()...) {
			continue
		}
		if err := s.Update(tc); err != nil {
			r.failure = &StageError{Stage: s.Name(), Group: s.Group(), Tick: tick, Err: err}
			r.logger.Error("stage failed",
				"stage", s.Name(),
				"group", s.Group().String(),
				"tick", tick,
				"error", err,
			)
			return r.failure
		}
	}

	return nil
}

// Run ticks every interval until ctx is cancelled, maxTicks ticks have run
// (zero means unbounded), or a stage fails.
func (r *Runner) Run(ctx context.Context, interval time.Duration, maxTicks int64) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", interval)
	}

	r.logger.Info("pipeline starting", "interval", interval, "max_ticks", maxTicks, "stages", len(r.stages))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var ran int64
	for {
		if maxTicks > 0 && ran >= maxTicks {
			r.logger.Info("pipeline stopping: tick budget reached", "ticks", ran)
			return nil
		}

		select {
		case <-ctx.Done():
			r.logger.Info("pipeline stopping: context cancelled", "ticks", ran)
			return ctx.Err()
		case <-ticker.C:
		}

		if err := r.Tick(ctx); err != nil {
			return err
		}
		ran++
	}
}

func (r *Runner) sortStages() {
	if r.sorted {
		return
	}
	sort.SliceStable(r.stages, func(i, j int) bool {
		return r.stages[i].Group() < r.stages[j].Group()
	})
	r.sorted = true
}
