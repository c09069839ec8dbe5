package config

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/zhanong/ecsframework/internal/pipeline"
	"github.com/zhanong/ecsframework/internal/scene"
	"github.com/zhanong/ecsframework/internal/trace"
	"github.com/zhanong/ecsframework/internal/world"
)

// World keys for the payloads every Gate publishes.
var (
	KeySceneConfigs = world.NewKey[*SceneConfigs]("config.scene_configs")
	KeyCatalog      = world.NewKey[*scene.Catalog]("config.scene_assets")
	KeyBudget       = world.NewKey[*Budget]("config.budget")
)

type payload struct {
	name    string
	publish func(w *world.World, b *Bundle) (any, error)
}

// Gate publishes configuration on its first tick and then disables itself.
type Gate struct {
	bundle   *Bundle
	payloads []payload
	values   map[string]any
	enabled  bool
	logger   *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLogger sets a custom logger for the gate.
func WithLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logger
	}
}

// NewGate creates a gate over a loaded bundle. The scene config table, the
// asset catalog and the budget are registered automatically.
func NewGate(b *Bundle, opts ...GateOption) *Gate {
	g := &Gate{
		bundle:  b,
		values:  make(map[string]any),
		enabled: true,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}

	Register(g, KeySceneConfigs, func(b *Bundle) (*SceneConfigs, error) { return b.SceneConfigs() })
	Register(g, KeyCatalog, func(b *Bundle) (*scene.Catalog, error) { return b.Catalog, nil })
	Register(g, KeyBudget, func(b *Bundle) (*Budget, error) { return b.Budget, nil })
	return g
}

// Register adds a managed config payload. build runs once, on the gate's
// first tick. Registering after the gate has fired has no effect.
func Register[T any](g *Gate, key world.Key[T], build func(*Bundle) (T, error)) {
	g.payloads = append(g.payloads, payload{
		name: key.Name(),
		publish: func(w *world.World, b *Bundle) (any, error) {
			v, err := build(b)
			if err != nil {
				return nil, err
			}
			world.Put(w, key, v)
			return v, nil
		},
	})
}

// Get returns a published payload. It returns ErrNotFound until the gate
// has fired.
func Get[T any](g *Gate, key world.Key[T]) (T, error) {
	var zero T
	raw, ok := g.values[key.Name()]
	if !ok {
		return zero, fmt.Errorf("%s: %w", key.Name(), ErrNotFound)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%s: type %T: %w", key.Name(), raw, ErrNotFound)
	}
	return v, nil
}

// Loaded reports whether the gate has fired.
func (g *Gate) Loaded() bool { return !g.enabled }

func (g *Gate) Name() string           { return "config_gate" }
func (g *Gate) Group() pipeline.Group  { return pipeline.GroupBasic }
func (g *Gate) Requires() []world.Flag { return nil }
func (g *Gate) Enabled() bool          { return g.enabled }

// Update publishes every payload. A payload that fails to build is fatal.
func (g *Gate) Update(tc *pipeline.TickContext) error {
	if !g.enabled {
		return nil
	}

	values := make(map[string]any, len(g.payloads))
	for _, p := range g.payloads {
		v, err := p.publish(tc.World, g.bundle)
		if err != nil {
			return fmt.Errorf("publishing %s: %w", p.name, err)
		}
		values[p.name] = v
	}
	g.values = values

	tc.World.AddFlag(world.FlagConfigLoaded)
	g.enabled = false

	tc.Log.Emit(trace.KindConfigLoaded, "", map[string]string{
		"payloads": strconv.Itoa(len(g.payloads)),
	})
	g.logger.Info("config loaded",
		"payloads", len(g.payloads),
		"tick", tc.Tick)
	return nil
}
