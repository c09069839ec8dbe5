package world

import "sort"

// Entity identifies a spawned object. The zero value is never issued.
type Entity uint32

// Tag marks entities for bulk operations.
type Tag string

const (
	// TagDestroyOnSceneUnload opts an entity that was not spawned by the scene
	// itself into destruction when the active scene unloads.
	TagDestroyOnSceneUnload Tag = "destroy_on_scene_unload"
	// TagTemplate marks template entities. Templates are never destroyed by
	// scene unload, even when tagged TagDestroyOnSceneUnload.
	TagTemplate Tag = "template"
)

type entityRecord struct {
	archetype string
	tags      map[Tag]struct{}
}

// Entities is a tag-indexed entity store.
type Entities struct {
	next    Entity
	records map[Entity]*entityRecord
}

func newEntities() *Entities {
	return &Entities{
		next:    1,
		records: make(map[Entity]*entityRecord, 64),
	}
}

// Spawn creates an entity of the given archetype with tags.
func (es *Entities) Spawn(archetype string, tags ...Tag) Entity {
	e := es.next
	es.next++

	rec := &entityRecord{archetype: archetype, tags: make(map[Tag]struct{}, len(tags))}
	for _, t := range tags {
		rec.tags[t] = struct{}{}
	}
	es.records[e] = rec
	return e
}

// Destroy removes e. Destroying an unknown entity is a no-op and returns false.
func (es *Entities) Destroy(e Entity) bool {
	if _, ok := es.records[e]; !ok {
		return false
	}
	delete(es.records, e)
	return true
}

// Alive reports whether e exists.
func (es *Entities) Alive(e Entity) bool {
	_, ok := es.records[e]
	return ok
}

// Archetype returns the archetype e was spawned with.
func (es *Entities) Archetype(e Entity) (string, bool) {
	rec, ok := es.records[e]
	if !ok {
		return "", false
	}
	return rec.archetype, true
}

// HasTag reports whether e carries tag.
func (es *Entities) HasTag(e Entity, tag Tag) bool {
	rec, ok := es.records[e]
	if !ok {
		return false
	}
	_, ok = rec.tags[tag]
	return ok
}

// Query returns entities carrying every tag in with and none in without,
// in ascending order.
func (es *Entities) Query(with []Tag, without []Tag) []Entity {
	var out []Entity
	for e, rec := range es.records {
		if matches(rec, with, without) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of live entities.
func (es *Entities) Len() int {
	return len(es.records)
}

func matches(rec *entityRecord, with, without []Tag) bool {
	for _, t := range with {
		if _, ok := rec.tags[t]; !ok {
			return false
		}
	}
	for _, t := range without {
		if _, ok := rec.tags[t]; ok {
			return false
		}
	}
	return true
}
