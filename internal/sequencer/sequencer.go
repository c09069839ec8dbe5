package sequencer

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/zhanong/ecsframework/internal/config"
	"github.com/zhanong/ecsframework/internal/event"
	"github.com/zhanong/ecsframework/internal/loader"
	"github.com/zhanong/ecsframework/internal/manager"
	"github.com/zhanong/ecsframework/internal/pipeline"
	"github.com/zhanong/ecsframework/internal/resource"
	"github.com/zhanong/ecsframework/internal/scene"
	"github.com/zhanong/ecsframework/internal/trace"
	"github.com/zhanong/ecsframework/internal/world"
)

// State is the sequencer state.
type State int

const (
	StateIdle State = iota
	StateResetting
	StatePostReset
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResetting:
		return "resetting"
	case StatePostReset:
		return "post_reset"
	default:
		return "unknown"
	}
}

// Sequencer is the transition orchestrator stage.
type Sequencer struct {
	world     *world.World
	log       *trace.Log
	resources *resource.Registry
	managers  *manager.Registry
	logger    *slog.Logger

	state   State
	pending bool
	started bool
	resets  int
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sequencer) {
		s.logger = logger
	}
}

// New creates a sequencer.
func New(w *world.World, log *trace.Log, resources *resource.Registry, managers *manager.Registry, opts ...Option) *Sequencer {
	s := &Sequencer{
		world:     w,
		log:       log,
		resources: resources,
		managers:  managers,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Sequencer) State() State { return s.state }

// Pending reports whether a transition is waiting for its reset pass.
func (s *Sequencer) Pending() bool { return s.pending }

// Resets returns how many reset passes have run.
func (s *Sequencer) Resets() int { return s.resets }

// Started reports whether Startup has run.
func (s *Sequencer) Started() bool { return s.started }

// Startup attaches every resource record and initializes the managers.
// It runs once; later calls do nothing.
func (s *Sequencer) Startup() error {
	if s.started {
		return nil
	}

	st, err := s.resources.Batch(s.world, resource.PhaseInitialize, config.SceneConfig{}, scene.None)
	if err != nil {
		return fmt.Errorf("initialize resources: %w", err)
	}
	s.managers.Initialize()

	// The pulse component exists from startup and stays disabled until the
	// first transition completes.
	s.world.SetFlagEnabled(world.FlagResetPulse, false)
	s.started = true

	s.log.Emit(trace.KindResourcesInitialized, "", map[string]string{
		"attached": strconv.Itoa(st.Attached),
	})
	s.logger.Info("sequencer started", "resources", s.resources.Len())
	return nil
}

// OnRequest clears InitCompleted at dispatch so no stage reads the old
// scene's records during the new scene's reset.
func (s *Sequencer) OnRequest(r event.Request) {
	if !r.Scene.Valid() {
		return
	}
	s.world.RemoveFlag(world.FlagInitCompleted)
	s.pending = true
	s.log.Emit(trace.KindInitCleared, r.Scene.String(), nil)
}

// Teardown disposes every resource record and destroys the managers.
func (s *Sequencer) Teardown() error {
	if !s.started {
		return nil
	}

	st, err := s.resources.Batch(s.world, resource.PhaseOnDestroy, config.SceneConfig{}, scene.None)
	if err != nil {
		return fmt.Errorf("dispose resources: %w", err)
	}
	s.managers.OnDestroy()

	s.world.RemoveFlag(world.FlagInitCompleted)
	s.world.RemoveFlag(world.FlagResetPulse)
	s.started = false
	s.pending = false
	s.state = StateIdle

	s.log.Emit(trace.KindResourcesDisposed, "", map[string]string{
		"disposed": strconv.Itoa(st.Disposed),
	})
	s.logger.Info("sequencer stopped", "disposed", st.Disposed)
	return nil
}

func (s *Sequencer) Name() string           { return "transition_sequencer" }
func (s *Sequencer) Group() pipeline.Group  { return pipeline.GroupBasic }
func (s *Sequencer) Requires() []world.Flag { return nil }

// Update advances the state machine by one tick.
func (s *Sequencer) Update(tc *pipeline.TickContext) error {
	if s.world.Active(world.FlagResetPulse) {
		s.world.SetFlagEnabled(world.FlagResetPulse, false)
		s.log.Emit(trace.KindPulseCleared, "", nil)
	}

	if s.state == StatePostReset {
		s.state = StateIdle
		if !s.pending {
			s.world.SetFlagEnabled(world.FlagResetPulse, true)
			s.log.Emit(trace.KindPulseRaised, "", nil)
			return nil
		}
		// A request since the reset has removed InitCompleted. The pulse is
		// never raised without it; the next reset raises its own.
		s.log.Emit(trace.KindPulseDropped, "", nil)
		s.logger.Debug("reset pulse dropped", "tick", tc.Tick)
	}

	if s.state != StateIdle || !s.pending || !s.world.ActiveAll(world.FlagConfigLoaded, world.FlagSceneLoaded) {
		return nil
	}
	return s.reset(tc)
}

func (s *Sequencer) reset(tc *pipeline.TickContext) error {
	s.state = StateResetting

	loaded := world.MustGet(s.world, loader.KeySceneLoaded)
	table, ok := world.Get(s.world, config.KeySceneConfigs)
	if !ok {
		return fmt.Errorf("scene configs: %w", config.ErrNotFound)
	}
	cfg, err := table.For(loaded.Scene)
	if err != nil {
		return err
	}

	st, err := s.resources.Batch(s.world, resource.PhaseOnNewScene, cfg, loaded.Scene)
	if err != nil {
		return err
	}

	s.log.Emit(trace.KindReset, loaded.Scene.String(), map[string]string{
		"created":  strconv.Itoa(st.Created),
		"cleared":  strconv.Itoa(st.Cleared),
		"disposed": strconv.Itoa(st.Disposed),
		"reset":    strconv.Itoa(st.Reset),
	})

	s.world.AddFlag(world.FlagInitCompleted)
	s.log.Emit(trace.KindInitRestored, loaded.Scene.String(), nil)

	s.pending = false
	s.resets++
	s.state = StatePostReset

	s.logger.Info("scene reset",
		"scene", loaded.Scene.String(),
		"created", st.Created,
		"cleared", st.Cleared,
		"disposed", st.Disposed,
		"tick", tc.Tick)
	return nil
}
