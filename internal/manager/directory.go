package manager

import "github.com/zhanong/ecsframework/internal/world"

// Directory answers entity lookups against the world. It is kept across
// scenes.
type Directory struct {
	Stamped

	world *world.World
	ready bool
}

// NewDirectory returns a factory for a Directory over w.
func NewDirectory(w *world.World) func() Manager {
	return func() Manager {
		return &Directory{world: w}
	}
}

func (d *Directory) Initialize()         { d.ready = true }
func (d *Directory) OnNewScene() Manager { return d }
func (d *Directory) OnDestroy()          { d.ready = false }

// Find returns live entities of archetype in id order.
func (d *Directory) Find(archetype string) []world.Entity {
	if !d.ready {
		return nil
	}
	ents := d.world.Entities()
	var out []world.Entity
	for _, e := range ents.Query(nil, nil) {
		if a, ok := ents.Archetype(e); ok && a == archetype {
			out = append(out, e)
		}
	}
	return out
}
