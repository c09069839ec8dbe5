package world

import "fmt"

// Key is a type token naming one singleton record of type T.
type Key[T any] struct {
	name string
}

// NewKey creates a key. Names must be unique within a World.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the key name.
func (k Key[T]) Name() string {
	return k.name
}

func (k Key[T]) String() string {
	return k.name
}

// Put stores v under k, replacing any previous record.
func Put[T any](w *World, k Key[T], v T) {
	w.records[k.name] = v
}

// Get returns the record stored under k.
func Get[T any](w *World, k Key[T]) (T, bool) {
	var zero T
	raw, ok := w.records[k.name]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// MustGet returns the record stored under k and panics when it is absent.
// Use it only where the pipeline ordering guarantees the record exists.
func MustGet[T any](w *World, k Key[T]) T {
	v, ok := Get(w, k)
	if !ok {
		panic(fmt.Sprintf("world: record %q not present", k.name))
	}
	return v
}

// Has reports whether a record is stored under k.
func Has[T any](w *World, k Key[T]) bool {
	_, ok := w.records[k.name]
	return ok
}

// Remove deletes the record stored under k. Removing an absent record is a no-op.
func Remove[T any](w *World, k Key[T]) {
	delete(w.records, k.name)
}
