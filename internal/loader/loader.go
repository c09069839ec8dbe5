package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/zhanong/ecsframework/internal/config"
	"github.com/zhanong/ecsframework/internal/event"
	"github.com/zhanong/ecsframework/internal/pipeline"
	"github.com/zhanong/ecsframework/internal/scene"
	"github.com/zhanong/ecsframework/internal/trace"
	"github.com/zhanong/ecsframework/internal/world"
)

// ErrLoadTimeout is recorded when a load does not finish within the
// configured number of polls.
var ErrLoadTimeout = errors.New("scene load timed out")

// State is the loader state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SceneLoaded is republished every time a scene finishes loading.
type SceneLoaded struct {
	Scene scene.ID
}

// Failure describes the last failed load.
type Failure struct {
	Scene scene.ID
	Tick  int64
	Err   error
}

// World keys written by the loader.
var (
	KeySceneLoaded = world.NewKey[SceneLoaded]("loader.scene_loaded")
	KeyFailure     = world.NewKey[Failure]("loader.failure")
)

// Loader is the scene load/unload state machine.
type Loader struct {
	world  *world.World
	log    *trace.Log
	assets AssetLoader
	logger *slog.Logger

	timeoutTicks int

	state  State
	target scene.ID
	handle Handle
	polls  int

	active       scene.ID
	activeHandle Handle
	owned        []world.Entity
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithTimeout fails a load still pending after ticks polls. Zero disables
// the timeout.
func WithTimeout(ticks int) Option {
	return func(l *Loader) {
		l.timeoutTicks = ticks
	}
}

// New creates a loader over w.
func New(w *world.World, log *trace.Log, assets AssetLoader, opts ...Option) *Loader {
	l := &Loader{
		world:  w,
		log:    log,
		assets: assets,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current state.
func (l *Loader) State() State { return l.state }

// Active returns the active scene, or scene.None.
func (l *Loader) Active() scene.ID { return l.active }

// Target returns the scene being loaded, or scene.None when idle.
func (l *Loader) Target() scene.ID {
	if l.state != StateLoading {
		return scene.None
	}
	return l.target
}

// OnRequest handles a transition request at dispatch time.
func (l *Loader) OnRequest(r event.Request) {
	if !r.Scene.Valid() {
		l.logger.Warn("ignoring request for invalid scene", "scene", r.Scene.String())
		return
	}

	if l.state == StateLoading && l.handle != nil {
		l.handle.Release()
		l.log.Emit(trace.KindLoadSuperseded, l.target.String(), map[string]string{
			"by": r.Scene.String(),
		})
		l.logger.Info("scene load superseded",
			"scene", l.target.String(),
			"by", r.Scene.String())
	}
	l.handle = nil
	l.polls = 0

	l.unload()
	l.clearFailure()

	l.target = r.Scene
	l.state = StateLoading
}

// unload releases the active scene and destroys what it owns.
func (l *Loader) unload() {
	l.world.RemoveFlag(world.FlagSceneLoaded)
	if l.active == scene.None {
		return
	}

	ents := l.world.Entities()
	owned := 0
	for _, e := range l.owned {
		if ents.Destroy(e) {
			owned++
		}
	}
	tagged := 0
	for _, e := range ents.Query([]world.Tag{world.TagDestroyOnSceneUnload}, []world.Tag{world.TagTemplate}) {
		if ents.Destroy(e) {
			tagged++
		}
	}

	if l.activeHandle != nil {
		l.activeHandle.Release()
	}

	l.log.Emit(trace.KindSceneUnloaded, l.active.String(), map[string]string{
		"owned":  strconv.Itoa(owned),
		"tagged": strconv.Itoa(tagged),
	})
	l.logger.Info("scene unloaded",
		"scene", l.active.String(),
		"owned", owned,
		"tagged", tagged)

	l.active = scene.None
	l.activeHandle = nil
	l.owned = nil
}

// Teardown unloads the active scene and releases any in-flight load.
func (l *Loader) Teardown() {
	if l.handle != nil {
		l.handle.Release()
		l.handle = nil
	}
	l.unload()
	l.clearFailure()
	l.state = StateIdle
	l.target = scene.None
	l.polls = 0
}

// clearFailure drops the SceneLoadFailed flag and Failure record left by a
// failed load.
func (l *Loader) clearFailure() {
	if l.state != StateFailed {
		return
	}
	l.world.RemoveFlag(world.FlagSceneLoadFailed)
	world.Remove(l.world, KeyFailure)
}

func (l *Loader) Name() string           { return "scene_loader" }
func (l *Loader) Group() pipeline.Group  { return pipeline.GroupBasic }
func (l *Loader) Requires() []world.Flag { return []world.Flag{world.FlagConfigLoaded} }

// Update issues a pending load and polls it. Load failures are recorded in
// the world, not returned: a failed load is a state, not a stage error.
func (l *Loader) Update(tc *pipeline.TickContext) error {
	if l.state != StateLoading {
		return nil
	}

	if l.handle == nil {
		catalog, ok := world.Get(l.world, config.KeyCatalog)
		if !ok {
			return fmt.Errorf("scene catalog: %w", config.ErrNotFound)
		}
		asset, err := catalog.Asset(l.target)
		if err != nil {
			return err
		}
		h, err := l.assets.Load(tc.Ctx, asset)
		if err != nil {
			l.fail(tc.Tick, fmt.Errorf("issue load: %w", err))
			return nil
		}
		l.handle = h
		l.log.Emit(trace.KindLoadIssued, l.target.String(), nil)
		l.logger.Debug("scene load issued", "scene", l.target.String(), "tick", tc.Tick)
	}

	done, err := l.handle.Poll()
	l.polls++
	if err != nil {
		l.handle.Release()
		l.handle = nil
		l.fail(tc.Tick, fmt.Errorf("poll: %w", err))
		return nil
	}
	if !done {
		if l.timeoutTicks > 0 && l.polls >= l.timeoutTicks {
			l.handle.Release()
			l.handle = nil
			l.fail(tc.Tick, fmt.Errorf("%w after %d polls", ErrLoadTimeout, l.polls))
		}
		return nil
	}

	return l.complete(tc)
}

func (l *Loader) complete(tc *pipeline.TickContext) error {
	catalog := world.MustGet(l.world, config.KeyCatalog)
	asset, err := catalog.Asset(l.target)
	if err != nil {
		return err
	}

	ents := l.world.Entities()
	owned := make([]world.Entity, 0, len(asset.Content))
	for _, archetype := range asset.Content {
		owned = append(owned, ents.Spawn(archetype))
	}

	l.active = l.target
	l.activeHandle = l.handle
	l.owned = owned
	l.handle = nil
	l.state = StateIdle

	world.Put(l.world, KeySceneLoaded, SceneLoaded{Scene: l.active})
	l.world.AddFlag(world.FlagSceneLoaded)

	l.log.Emit(trace.KindLoadCompleted, l.active.String(), map[string]string{
		"entities": strconv.Itoa(len(owned)),
		"polls":    strconv.Itoa(l.polls),
	})
	l.logger.Info("scene loaded",
		"scene", l.active.String(),
		"entities", len(owned),
		"tick", tc.Tick)
	return nil
}

func (l *Loader) fail(tick int64, err error) {
	failure := Failure{Scene: l.target, Tick: tick, Err: err}
	l.state = StateFailed
	world.Put(l.world, KeyFailure, failure)
	l.world.AddFlag(world.FlagSceneLoadFailed)

	l.log.Emit(trace.KindLoadFailed, l.target.String(), map[string]string{
		"error": err.Error(),
	})
	l.logger.Error("scene load failed",
		"scene", l.target.String(),
		"tick", tick,
		"error", err)
}
