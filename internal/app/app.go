// Package app wires the orchestrator: config gate, scene loader, resource
// registry, transition sequencer and manager registry over one world.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zhanong/ecsframework/internal/config"
	"github.com/zhanong/ecsframework/internal/event"
	"github.com/zhanong/ecsframework/internal/loader"
	"github.com/zhanong/ecsframework/internal/manager"
	"github.com/zhanong/ecsframework/internal/pipeline"
	"github.com/zhanong/ecsframework/internal/resource"
	"github.com/zhanong/ecsframework/internal/scene"
	"github.com/zhanong/ecsframework/internal/sequencer"
	"github.com/zhanong/ecsframework/internal/stages"
	"github.com/zhanong/ecsframework/internal/trace"
	"github.com/zhanong/ecsframework/internal/world"
)

var (
	// ErrNotStarted is returned by Tick and Run before Startup.
	ErrNotStarted = errors.New("app not started")
	// ErrClosed is returned by Request, Tick and Run after Teardown.
	ErrClosed = errors.New("app torn down")
	// ErrInvalidScene is returned by Request for None, Count or out of range ids.
	ErrInvalidScene = errors.New("invalid scene")
)

// Requested is one dispatched transition request.
type Requested struct {
	Tick  int64
	Scene scene.ID
}

// App owns the world and every orchestrator component.
//
// Thread-safety model:
//   - Request: safe from any goroutine
//   - everything else: one goroutine
type App struct {
	world     *world.World
	queue     *event.Queue
	bus       *event.Bus
	log       *trace.Log
	runner    *pipeline.Runner
	gate      *config.Gate
	loader    *loader.Loader
	resources *resource.Registry
	sequencer *sequencer.Sequencer
	managers  *manager.Registry
	logger    *slog.Logger

	start     scene.ID
	started   bool
	tornDown  bool
	requested []Requested
}

type options struct {
	logger       *slog.Logger
	assets       loader.AssetLoader
	timeoutTicks int
	start        scene.ID
	recorders    []trace.Recorder
	resources    []func(*resource.Registry)
	slots        []manager.Slot
	stages       []pipeline.Stage
	clock        *pipeline.Clock
	payloads     []func(*config.Gate)
}

// Option configures an App.
type Option func(*options)

// WithLogger sets the structured logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithAssetLoader replaces the simulated asset loader.
func WithAssetLoader(l loader.AssetLoader) Option {
	return func(o *options) { o.assets = l }
}

// WithLoadTimeout fails scene loads still pending after ticks polls.
func WithLoadTimeout(ticks int) Option {
	return func(o *options) { o.timeoutTicks = ticks }
}

// WithStartScene requests id once Startup completes.
func WithStartScene(id scene.ID) Option {
	return func(o *options) { o.start = id }
}

// WithRecorder attaches a trace recorder.
func WithRecorder(r trace.Recorder) Option {
	return func(o *options) { o.recorders = append(o.recorders, r) }
}

// WithResources registers extra resource records after the built-ins.
func WithResources(register func(*resource.Registry)) Option {
	return func(o *options) { o.resources = append(o.resources, register) }
}

// WithManagers replaces the default manager slots.
func WithManagers(slots ...manager.Slot) Option {
	return func(o *options) { o.slots = slots }
}

// WithStages registers extra stages after the built-ins.
func WithStages(s ...pipeline.Stage) Option {
	return func(o *options) { o.stages = append(o.stages, s...) }
}

// WithClock replaces the tick clock.
func WithClock(c *pipeline.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithPayloads registers extra managed config payloads on the gate.
func WithPayloads(register func(*config.Gate)) Option {
	return func(o *options) { o.payloads = append(o.payloads, register) }
}

// New wires an App over a loaded content bundle.
func New(bundle *config.Bundle, opts ...Option) *App {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.assets == nil {
		o.assets = loader.NewSimulatedLoader()
	}

	a := &App{
		world:  world.New(),
		queue:  event.NewQueue(),
		bus:    event.NewBus(),
		log:    trace.NewLog(o.recorders...),
		logger: o.logger,
		start:  o.start,
	}

	a.gate = config.NewGate(bundle, config.WithLogger(o.logger))
	for _, register := range o.payloads {
		register(a.gate)
	}

	a.loader = loader.New(a.world, a.log, o.assets,
		loader.WithLogger(o.logger),
		loader.WithTimeout(o.timeoutTicks))

	a.resources = resource.NewRegistry(o.logger)
	resource.RegisterDefaults(a.resources)
	for _, register := range o.resources {
		register(a.resources)
	}

	slots := o.slots
	if slots == nil {
		slots = []manager.Slot{
			{Name: "events", New: manager.NewEvents(nil)},
			{Name: "directory", New: manager.NewDirectory(a.world)},
		}
	}
	a.managers = manager.NewRegistry(a.log, o.logger, slots...)

	a.sequencer = sequencer.New(a.world, a.log, a.resources, a.managers,
		sequencer.WithLogger(o.logger))

	a.bus.Subscribe("scene_loader", a.loader.OnRequest)
	a.bus.Subscribe("transition_sequencer", a.sequencer.OnRequest)
	a.bus.Subscribe("manager_registry", a.managers.OnRequest)
	a.bus.Subscribe("journal", a.journal)

	runnerOpts := []pipeline.RunnerOption{pipeline.WithLogger(o.logger)}
	if o.clock != nil {
		runnerOpts = append(runnerOpts, pipeline.WithClock(o.clock))
	}
	a.runner = pipeline.NewRunner(a.world, a.queue, a.bus, a.log, runnerOpts...)
	a.runner.Register(a.gate, a.loader, a.sequencer, stages.ResetChange{}, stages.DestroyEntities{})
	a.runner.Register(o.stages...)

	return a
}

func (a *App) journal(r event.Request) {
	a.requested = append(a.requested, Requested{Tick: a.log.Tick(), Scene: r.Scene})
}

// Startup initializes resources and managers, then requests the start
// scene if one is configured. Later calls do nothing.
func (a *App) Startup() error {
	if a.tornDown {
		return ErrClosed
	}
	if a.started {
		return nil
	}

	if err := a.sequencer.Startup(); err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	a.started = true
	a.log.Emit(trace.KindStartup, a.start.String(), nil)
	a.logger.Info("app started", "start_scene", a.start.String(), "stages", len(a.runner.Stages()))

	if a.start.Valid() {
		if err := a.Request(a.start); err != nil {
			return fmt.Errorf("request start scene: %w", err)
		}
	}
	return nil
}

// Request queues a transition to id. It is dispatched at the start of the
// next tick.
func (a *App) Request(id scene.ID) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidScene, id)
	}
	if !a.queue.Enqueue(event.Request{Scene: id}) {
		return ErrClosed
	}
	return nil
}

// Tick runs one pipeline tick.
func (a *App) Tick(ctx context.Context) error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.runner.Tick(ctx)
}

// Run ticks every interval until ctx ends, maxTicks ticks run (zero means
// unbounded) or a stage fails.
func (a *App) Run(ctx context.Context, interval time.Duration, maxTicks int64) error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.runner.Run(ctx, interval, maxTicks)
}

func (a *App) ready() error {
	if a.tornDown {
		return ErrClosed
	}
	if !a.started {
		return ErrNotStarted
	}
	return nil
}

// Teardown unloads the active scene, disposes resources and destroys
// managers. Later calls do nothing.
func (a *App) Teardown() error {
	if a.tornDown {
		return nil
	}
	a.tornDown = true
	a.queue.Close()

	a.loader.Teardown()
	if err := a.sequencer.Teardown(); err != nil {
		return fmt.Errorf("teardown: %w", err)
	}
	a.log.Emit(trace.KindTeardown, "", nil)
	a.logger.Info("app stopped", "ticks", a.runner.Clock().Current())
	return nil
}

func (a *App) World() *world.World             { return a.world }
func (a *App) Gate() *config.Gate              { return a.gate }
func (a *App) Loader() *loader.Loader          { return a.loader }
func (a *App) Resources() *resource.Registry   { return a.resources }
func (a *App) Sequencer() *sequencer.Sequencer { return a.sequencer }
func (a *App) Managers() *manager.Registry     { return a.managers }
func (a *App) Runner() *pipeline.Runner        { return a.runner }
func (a *App) Bus() *event.Bus                 { return a.bus }

// Requests returns dispatched requests in dispatch order.
func (a *App) Requests() []Requested { return a.requested }
