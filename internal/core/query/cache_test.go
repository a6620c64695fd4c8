package query

import (
	"testing"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, w *ecs.World) *Cache {
	t.Helper()
	ix, err := NewIndexer(w, partitionBySector)
	require.NoError(t, err)
	c, err := NewCache(ix)
	require.NoError(t, err)
	return c
}

func TestCacheMemoizes(t *testing.T) {
	w := newTestWorld(3)
	c := newCache(t, w)

	q1 := c.Get([]ecs.Kind{kindN(0), kindN(1)}, "b", "a")
	q2 := c.Get([]ecs.Kind{kindN(1), kindN(0)}, "a", "b", "a")
	assert.Same(t, q1, q2)
	assert.NotSame(t, q1, c.Get([]ecs.Kind{kindN(0)}))
	assert.Equal(t, 2, c.Len())
}

func TestCacheSeedsAndTracksIncrementally(t *testing.T) {
	w := newTestWorld(3)
	c := newCache(t, w)
	seeded := w.Create(flags(0, 1)...)

	q := c.Get([]ecs.Kind{kindN(0), kindN(1)})
	assert.Equal(t, []ecs.EntityID{seeded.ID()}, ids(q.Entities()))

	e := w.Create(flags(0)...)
	assert.False(t, q.Contains(e.ID()))
	e.AddComponent(flag{kind: kindN(1)})
	assert.True(t, q.Contains(e.ID()))
	assert.Equal(t, []ecs.EntityID{seeded.ID(), e.ID()}, ids(q.Entities()))

	seeded.RemoveComponent(kindN(1))
	assert.Equal(t, []ecs.EntityID{e.ID()}, ids(q.Entities()))

	e.Unregister("gone")
	assert.Zero(t, q.Len())
	assert.Empty(t, q.Entities())
}

func TestCacheTracksTags(t *testing.T) {
	w := newTestWorld(1)
	c := newCache(t, w)
	q := c.Get([]ecs.Kind{kindN(0)}, "trader")

	e := w.Create(flags(0)...)
	assert.Zero(t, q.Len())
	e.AddTag("trader")
	assert.Equal(t, 1, q.Len())
	e.RemoveTag("trader")
	assert.Zero(t, q.Len())
}

func TestCacheSnapshotIsStableUntilChange(t *testing.T) {
	w := newTestWorld(1)
	c := newCache(t, w)
	w.Create(flags(0)...)
	q := c.Get([]ecs.Kind{kindN(0)})

	first := q.Entities()
	second := q.Entities()
	assert.Same(t, &first[0], &second[0], "no rebuild without membership change")

	w.Create(flags(0)...)
	assert.Len(t, first, 1, "old snapshots are not mutated")
	assert.Len(t, q.Entities(), 2)
}

func TestCacheClose(t *testing.T) {
	w := newTestWorld(1)
	c := newCache(t, w)
	q := c.Get([]ecs.Kind{kindN(0)})
	c.Close()
	w.Create(flags(0)...)
	assert.Zero(t, q.Len())
}
