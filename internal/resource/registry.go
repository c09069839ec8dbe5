package resource

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/zhanong/ecsframework/internal/config"
	"github.com/zhanong/ecsframework/internal/scene"
	"github.com/zhanong/ecsframework/internal/world"
)

var (
	// ErrNotInitialized is returned when a batch finds a record that the
	// Initialize phase never attached.
	ErrNotInitialized = errors.New("resource not initialized")
	// ErrNotCreated is returned by record methods used while not created.
	ErrNotCreated = errors.New("resource not created")
)

// Phase selects the batch operation.
type Phase int

const (
	PhaseInitialize Phase = iota
	PhaseOnNewScene
	PhaseOnDestroy
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialize:
		return "initialize"
	case PhaseOnNewScene:
		return "on_new_scene"
	case PhaseOnDestroy:
		return "on_destroy"
	default:
		return "unknown"
	}
}

// General is a record that lives across scenes.
type General interface {
	Create()
	// Clear empties the record without releasing its capacity.
	Clear()
	Dispose()
	Created() bool
}

// Scoped is a record rebuilt for every scene.
type Scoped interface {
	Create(cfg config.SceneConfig, id scene.ID)
	Dispose()
	Created() bool
}

// Stats counts what one batch did.
type Stats struct {
	Attached int
	Created  int
	Cleared  int
	Disposed int
	Reset    int
}

type kind int

const (
	kindGeneral kind = iota
	kindScoped
	kindPlain
)

func (k kind) String() string {
	switch k {
	case kindGeneral:
		return "general"
	case kindScoped:
		return "scoped"
	default:
		return "plain"
	}
}

type entry struct {
	name string
	kind kind

	attach     func(w *world.World) bool
	onNewScene func(w *world.World, cfg config.SceneConfig, id scene.ID, st *Stats) error
	onDestroy  func(w *world.World, st *Stats)
}

// Registry is the ordered registration table.
type Registry struct {
	entries []entry
	names   map[string]struct{}
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{names: make(map[string]struct{}), logger: logger}
}

// Names returns registered keys in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.name
	}
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int { return len(r.entries) }

func (r *Registry) add(e entry) {
	if _, dup := r.names[e.name]; dup {
		panic(fmt.Sprintf("resource: %q registered twice", e.name))
	}
	r.names[e.name] = struct{}{}
	r.entries = append(r.entries, e)
}

// RegisterGeneral adds a general record built by ctor.
func RegisterGeneral[T General](r *Registry, key world.Key[T], ctor func() T) {
	r.add(entry{
		name:   key.Name(),
		kind:   kindGeneral,
		attach: attachFunc(key, ctor),
		onNewScene: func(w *world.World, _ config.SceneConfig, _ scene.ID, st *Stats) error {
			rec, ok := world.Get(w, key)
			if !ok {
				return fmt.Errorf("%s: %w", key.Name(), ErrNotInitialized)
			}
			if rec.Created() {
				rec.Clear()
				st.Cleared++
			} else {
				rec.Create()
				st.Created++
			}
			return nil
		},
		onDestroy: func(w *world.World, st *Stats) {
			if rec, ok := world.Get(w, key); ok && rec.Created() {
				rec.Dispose()
				st.Disposed++
			}
		},
	})
}

// RegisterScoped adds a scene-scoped record built by ctor.
func RegisterScoped[T Scoped](r *Registry, key world.Key[T], ctor func() T) {
	r.add(entry{
		name:   key.Name(),
		kind:   kindScoped,
		attach: attachFunc(key, ctor),
		onNewScene: func(w *world.World, cfg config.SceneConfig, id scene.ID, st *Stats) error {
			rec, ok := world.Get(w, key)
			if !ok {
				return fmt.Errorf("%s: %w", key.Name(), ErrNotInitialized)
			}
			if rec.Created() {
				rec.Dispose()
				st.Disposed++
			}
			rec.Create(cfg, id)
			st.Created++
			return nil
		},
		onDestroy: func(w *world.World, st *Stats) {
			if rec, ok := world.Get(w, key); ok && rec.Created() {
				rec.Dispose()
				st.Disposed++
			}
		},
	})
}

// RegisterPlain adds a value record reset to its zero value on every scene.
func RegisterPlain[T any](r *Registry, key world.Key[T]) {
	r.add(entry{
		name: key.Name(),
		kind: kindPlain,
		attach: func(w *world.World) bool {
			if world.Has(w, key) {
				return false
			}
			var zero T
			world.Put(w, key, zero)
			return true
		},
		onNewScene: func(w *world.World, _ config.SceneConfig, _ scene.ID, st *Stats) error {
			var zero T
			world.Put(w, key, zero)
			st.Reset++
			return nil
		},
		onDestroy: func(w *world.World, _ *Stats) {
			world.Remove(w, key)
		},
	})
}

// attachFunc puts a fresh record unless one is already attached, so a
// repeated Initialize never orphans a created record.
func attachFunc[T any](key world.Key[T], ctor func() T) func(w *world.World) bool {
	return func(w *world.World) bool {
		if world.Has(w, key) {
			return false
		}
		world.Put(w, key, ctor())
		return true
	}
}

// Batch runs phase over every entry in registration order. cfg and id are
// only read by PhaseOnNewScene.
func (r *Registry) Batch(w *world.World, phase Phase, cfg config.SceneConfig, id scene.ID) (Stats, error) {
	var st Stats
	for _, e := range r.entries {
		switch phase {
		case PhaseInitialize:
			if e.attach(w) {
				st.Attached++
			}
		case PhaseOnNewScene:
			if err := e.onNewScene(w, cfg, id, &st); err != nil {
				return st, fmt.Errorf("%s batch: %w", phase, err)
			}
		case PhaseOnDestroy:
			e.onDestroy(w, &st)
		default:
			return st, fmt.Errorf("unknown phase %d", phase)
		}
	}

	r.logger.Debug("resource batch",
		"phase", phase.String(),
		"scene", id.String(),
		"entries", len(r.entries),
		"created", st.Created,
		"cleared", st.Cleared,
		"disposed", st.Disposed)
	return st, nil
}
