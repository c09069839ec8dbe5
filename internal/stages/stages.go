// Package stages holds built-in consumers of the centralized records.
package stages

import (
	"strconv"

	"github.com/zhanong/ecsframework/internal/config"
	"github.com/zhanong/ecsframework/internal/loader"
	"github.com/zhanong/ecsframework/internal/pipeline"
	"github.com/zhanong/ecsframework/internal/resource"
	"github.com/zhanong/ecsframework/internal/trace"
	"github.com/zhanong/ecsframework/internal/world"
)

// ResetChange clears the change record once per tick. It runs at the start
// of RegularUpdate, after every UpdateOnChange stage has seen the record.
type ResetChange struct{}

func (ResetChange) Name() string           { return "reset_change" }
func (ResetChange) Group() pipeline.Group  { return pipeline.GroupRegularUpdate }
func (ResetChange) Requires() []world.Flag { return []world.Flag{world.FlagInitCompleted} }

func (ResetChange) Update(tc *pipeline.TickContext) error {
	if rec, ok := world.Get(tc.World, resource.KeyChange); ok && rec.Changed {
		world.Put(tc.World, resource.KeyChange, resource.ChangeRecord{})
	}
	return nil
}

// DestroyBudget names the budget that caps destructions per tick.
const DestroyBudget = "destroy_queue"

// DestroyEntities applies the destroy queue at the end of the tick. When the
// active scene's config declares a destroy_queue budget, at most that many
// entities are destroyed per tick and the rest wait for the next one; a
// budget of 0 holds every destruction. Without the budget the queue is
// drained completely.
type DestroyEntities struct{}

func (DestroyEntities) Name() string           { return "destroy_entities" }
func (DestroyEntities) Group() pipeline.Group  { return pipeline.GroupCreateDestroyEntities }
func (DestroyEntities) Requires() []world.Flag { return []world.Flag{world.FlagInitCompleted} }

func (DestroyEntities) Update(tc *pipeline.TickContext) error {
	q, ok := world.Get(tc.World, resource.KeyDestroyQueue)
	if !ok || !q.Created() {
		return nil
	}

	var batch []world.Entity
	if limit, ok := destroyLimit(tc.World); ok {
		batch = q.DrainN(limit)
	} else {
		batch = q.Drain()
	}

	ents := tc.World.Entities()
	destroyed := 0
	for _, e := range batch {
		if ents.Destroy(e) {
			destroyed++
		}
	}
	if destroyed > 0 {
		tc.Log.Emit(trace.KindEntitiesDestroyed, "", map[string]string{
			"count":   strconv.Itoa(destroyed),
			"pending": strconv.Itoa(q.Len()),
		})
	}
	return nil
}

// destroyLimit returns the active scene's destroy budget and whether one is
// declared.
func destroyLimit(w *world.World) (int, bool) {
	loaded, ok := world.Get(w, loader.KeySceneLoaded)
	if !ok {
		return 0, false
	}
	table, ok := world.Get(w, config.KeySceneConfigs)
	if !ok {
		return 0, false
	}
	cfg, err := table.For(loaded.Scene)
	if err != nil {
		return 0, false
	}
	return cfg.BudgetLookup(DestroyBudget)
}
