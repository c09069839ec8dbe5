package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ n int }

func TestKey_PutGetRemove(t *testing.T) {
	w := New()
	k := NewKey[*counter]("counter")

	_, ok := Get(w, k)
	assert.False(t, ok)
	assert.False(t, Has(w, k))

	Put(w, k, &counter{n: 3})
	got, ok := Get(w, k)
	require.True(t, ok)
	assert.Equal(t, 3, got.n)
	assert.Equal(t, 1, w.RecordCount())

	// Replacing keeps exactly one record per key.
	Put(w, k, &counter{n: 4})
	assert.Equal(t, 4, MustGet(w, k).n)
	assert.Equal(t, 1, w.RecordCount())

	Remove(w, k)
	assert.False(t, Has(w, k))
	Remove(w, k) // no-op
}

func TestKey_TypeMismatchIsAbsent(t *testing.T) {
	w := New()
	Put(w, NewKey[int]("shared"), 7)

	_, ok := Get(w, NewKey[string]("shared"))
	assert.False(t, ok)
}

func TestMustGet_PanicsWhenAbsent(t *testing.T) {
	w := New()
	assert.Panics(t, func() {
		MustGet(w, NewKey[int]("missing"))
	})
}

func TestFlags(t *testing.T) {
	w := New()

	assert.False(t, w.HasFlag(FlagInitCompleted))
	assert.False(t, w.Active(FlagInitCompleted))

	w.AddFlag(FlagInitCompleted)
	assert.True(t, w.Active(FlagInitCompleted))

	w.SetFlagEnabled(FlagInitCompleted, false)
	assert.True(t, w.HasFlag(FlagInitCompleted))
	assert.False(t, w.Active(FlagInitCompleted))

	w.RemoveFlag(FlagInitCompleted)
	assert.False(t, w.HasFlag(FlagInitCompleted))
	w.RemoveFlag(FlagInitCompleted) // no-op

	w.AddFlag(FlagConfigLoaded)
	assert.False(t, w.ActiveAll(FlagConfigLoaded, FlagSceneLoaded))
	w.AddFlag(FlagSceneLoaded)
	assert.True(t, w.ActiveAll(FlagConfigLoaded, FlagSceneLoaded))
}

func TestParseFlag(t *testing.T) {
	for f := FlagConfigLoaded; f <= FlagSceneLoadFailed; f++ {
		got, ok := ParseFlag(f.String())
		require.True(t, ok, f.String())
		assert.Equal(t, f, got)
	}
	_, ok := ParseFlag("bogus")
	assert.False(t, ok)
}

func TestEntities_QueryAndDestroy(t *testing.T) {
	es := New().Entities()

	plain := es.Spawn("rock")
	tagged := es.Spawn("bullet", TagDestroyOnSceneUnload)
	template := es.Spawn("bullet", TagDestroyOnSceneUnload, TagTemplate)

	got := es.Query([]Tag{TagDestroyOnSceneUnload}, []Tag{TagTemplate})
	assert.Equal(t, []Entity{tagged}, got)

	assert.True(t, es.HasTag(template, TagTemplate))
	arch, ok := es.Archetype(plain)
	require.True(t, ok)
	assert.Equal(t, "rock", arch)

	assert.True(t, es.Destroy(tagged))
	assert.False(t, es.Destroy(tagged))
	assert.False(t, es.Alive(tagged))
	assert.Equal(t, 2, es.Len())
}
