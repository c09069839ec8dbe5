package world

// World is the context object handed to every stage.
type World struct {
	records  map[string]any
	flags    map[Flag]flagState
	entities *Entities
}

// New creates an empty world.
func New() *World {
	return &World{
		records:  make(map[string]any, 16),
		flags:    make(map[Flag]flagState, 8),
		entities: newEntities(),
	}
}

// Entities returns the entity store.
func (w *World) Entities() *Entities {
	return w.entities
}

// RecordCount returns the number of singleton records.
func (w *World) RecordCount() int {
	return len(w.records)
}
