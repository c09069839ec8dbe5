package resource

import (
	"fmt"

	"github.com/zhanong/ecsframework/internal/config"
	"github.com/zhanong/ecsframework/internal/scene"
	"github.com/zhanong/ecsframework/internal/world"
)

// Keys for the built-in records.
var (
	KeyDestroyQueue = world.NewKey[*DestroyQueue]("resource.destroy_queue")
	KeySceneSlots   = world.NewKey[*SceneSlots]("resource.scene_slots")
	KeyChange       = world.NewKey[ChangeRecord]("resource.change")
)

// RegisterDefaults registers the built-in records.
func RegisterDefaults(r *Registry) {
	RegisterGeneral(r, KeyDestroyQueue, NewDestroyQueue)
	RegisterScoped(r, KeySceneSlots, NewSceneSlots)
	RegisterPlain(r, KeyChange)
}

const destroyQueueCapacity = 64

// DestroyQueue collects entities to destroy at the end of the tick.
type DestroyQueue struct {
	pending []world.Entity
	created bool
}

// NewDestroyQueue returns an uncreated queue.
func NewDestroyQueue() *DestroyQueue {
	return &DestroyQueue{}
}

func (q *DestroyQueue) Create() {
	q.pending = make([]world.Entity, 0, destroyQueueCapacity)
	q.created = true
}

func (q *DestroyQueue) Clear() {
	q.pending = q.pending[:0]
}

func (q *DestroyQueue) Dispose() {
	q.pending = nil
	q.created = false
}

func (q *DestroyQueue) Created() bool { return q.created }

// Push schedules e for destruction. It fails when the queue is not created.
func (q *DestroyQueue) Push(e world.Entity) error {
	if !q.created {
		return fmt.Errorf("destroy queue: %w", ErrNotCreated)
	}
	q.pending = append(q.pending, e)
	return nil
}

// Drain returns and forgets the scheduled entities.
func (q *DestroyQueue) Drain() []world.Entity { return q.DrainN(len(q.pending)) }

// DrainN returns and forgets at most n scheduled entities, oldest first.
// n <= 0 drains nothing.
func (q *DestroyQueue) DrainN(n int) []world.Entity {
	n = min(n, len(q.pending))
	if n <= 0 {
		return nil
	}
	out := make([]world.Entity, n)
	copy(out, q.pending)
	q.pending = q.pending[:copy(q.pending, q.pending[n:])]
	return out
}

// Len returns the number of scheduled entities.
func (q *DestroyQueue) Len() int { return len(q.pending) }

// Cap returns the queue capacity.
func (q *DestroyQueue) Cap() int { return cap(q.pending) }

// SceneSlots is a fixed-size table of entity slots for the current scene.
// Its size comes from the scene_slots budget, falling back to the scene's
// entity limit.
type SceneSlots struct {
	scene   scene.ID
	slots   []world.Entity
	created bool
}

// NewSceneSlots returns an uncreated table.
func NewSceneSlots() *SceneSlots {
	return &SceneSlots{}
}

func (s *SceneSlots) Create(cfg config.SceneConfig, id scene.ID) {
	s.scene = id
	s.slots = make([]world.Entity, 0, max(cfg.BudgetValue("scene_slots", cfg.MaxEntities), 0))
	s.created = true
}

func (s *SceneSlots) Dispose() {
	s.scene = scene.None
	s.slots = nil
	s.created = false
}

func (s *SceneSlots) Created() bool { return s.created }

// Scene returns the scene the table was created for.
func (s *SceneSlots) Scene() scene.ID { return s.scene }

// Claim places e in the next free slot.
func (s *SceneSlots) Claim(e world.Entity) error {
	if !s.created {
		return fmt.Errorf("scene slots: %w", ErrNotCreated)
	}
	if len(s.slots) == cap(s.slots) {
		return fmt.Errorf("scene slots for %s full at %d", s.scene, cap(s.slots))
	}
	s.slots = append(s.slots, e)
	return nil
}

// Len returns the number of claimed slots.
func (s *SceneSlots) Len() int { return len(s.slots) }

// Cap returns the table size.
func (s *SceneSlots) Cap() int { return cap(s.slots) }

// ChangeRecord notes that something changed this tick. It is reset on
// every scene change and cleared every tick by the change reset stage.
type ChangeRecord struct {
	Changed bool
	Source  string
}

// MarkChanged records a change from source.
func MarkChanged(w *world.World, source string) {
	world.Put(w, KeyChange, ChangeRecord{Changed: true, Source: source})
}
