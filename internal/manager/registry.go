package manager

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"

	"github.com/zhanong/ecsframework/internal/event"
	"github.com/zhanong/ecsframework/internal/scene"
	"github.com/zhanong/ecsframework/internal/trace"
)

// Registry is the ordered manager table.
type Registry struct {
	slots       []Slot
	managers    []Manager
	initialized bool

	log    *trace.Log
	logger *slog.Logger
}

// NewRegistry creates a registry over slots. Managers are not built until
// Initialize.
func NewRegistry(log *trace.Log, logger *slog.Logger, slots ...Slot) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	for i, s := range slots {
		if s.New == nil {
			panic(fmt.Sprintf("manager: slot %d (%s) has no factory", i, s.Name))
		}
	}
	return &Registry{slots: slots, log: log, logger: logger}
}

// Initialized reports whether managers are built.
func (r *Registry) Initialized() bool { return r.initialized }

// Initialize builds and initializes every manager. Calling it again before
// OnDestroy does nothing.
func (r *Registry) Initialize() {
	if r.initialized {
		return
	}

	r.managers = make([]Manager, len(r.slots))
	for i, s := range r.slots {
		m := s.New()
		m.Initialize()
		r.managers[i] = m
	}
	r.initialized = true

	r.log.Emit(trace.KindManagersInitialized, "", map[string]string{
		"slots": strconv.Itoa(len(r.slots)),
	})
	r.logger.Info("managers initialized", "slots", len(r.slots))
}

// OnRequest runs the new-scene pass for a dispatched request.
func (r *Registry) OnRequest(req event.Request) {
	if !req.Scene.Valid() {
		return
	}
	if !r.initialized {
		r.logger.Warn("manager registry not initialized; ignoring scene", "scene", req.Scene.String())
		return
	}
	r.OnNewScene(req.Scene)
}

// OnNewScene asks each slot for its manager for id. A replaced instance is
// destroyed here; managers never destroy themselves on replacement.
func (r *Registry) OnNewScene(id scene.ID) {
	if !r.initialized {
		return
	}

	stamp := id.String()
	for i, old := range r.managers {
		next := old.OnNewScene()
		if next == nil {
			r.logger.Warn("manager returned nil on new scene; keeping current",
				"slot", r.slots[i].Name,
				"scene", stamp)
			next = old
		}
		if !sameManager(next, old) {
			old.OnDestroy()
			r.managers[i] = next
			r.log.Emit(trace.KindManagerReplaced, stamp, map[string]string{
				"slot": r.slots[i].Name,
			})
		}
		next.SetStamp(stamp)
	}

	r.log.Emit(trace.KindManagersStamped, stamp, nil)
	r.logger.Debug("managers stamped", "scene", stamp, "slots", len(r.managers))
}

// OnDestroy destroys every manager and clears the initialized flag.
func (r *Registry) OnDestroy() {
	if !r.initialized {
		return
	}
	for _, m := range r.managers {
		m.OnDestroy()
	}
	r.managers = nil
	r.initialized = false

	r.log.Emit(trace.KindManagersDestroyed, "", nil)
	r.logger.Info("managers destroyed", "slots", len(r.slots))
}

// Managers returns the installed managers in slot order.
func (r *Registry) Managers() []Manager {
	return r.managers
}

// Stamps returns each slot's stamp in slot order.
func (r *Registry) Stamps() []string {
	out := make([]string, len(r.managers))
	for i, m := range r.managers {
		out[i] = m.Stamp()
	}
	return out
}

// Lookup returns the first installed manager of type T.
func Lookup[T Manager](r *Registry) (T, bool) {
	for _, m := range r.managers {
		if t, ok := m.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// sameManager reports whether a and b are the same instance. Managers whose
// dynamic type is not comparable have no identity to compare and always
// count as kept.
func sameManager(a, b Manager) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if !ta.Comparable() {
		return true
	}
	return a == b
}
