package query

import (
	"testing"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexerFollowsLifecycle(t *testing.T) {
	w := newTestWorld(3)
	early := w.Create(flags(0)...)

	ix, err := NewIndexer(w, partitionBySector)
	require.NoError(t, err)
	defer ix.Close()
	assert.Equal(t, 1, ix.Len(), "existing entities are indexed on construction")

	late := w.Create(flags(0, 1)...)
	assert.ElementsMatch(t, []ecs.EntityID{early.ID(), late.ID()}, ids(ix.Search([]ecs.Kind{kindN(0)}).Collect()))

	early.AddComponent(flag{kind: kindN(1)})
	assert.ElementsMatch(t, []ecs.EntityID{early.ID(), late.ID()}, ids(ix.Search([]ecs.Kind{kindN(1)}).Collect()))

	late.RemoveComponent(kindN(0))
	assert.Equal(t, []ecs.EntityID{early.ID()}, ids(ix.Search([]ecs.Kind{kindN(0)}).Collect()))

	early.Unregister("test")
	assert.Equal(t, 1, ix.Len())
	assert.Empty(t, ix.Search([]ecs.Kind{kindN(0)}).Collect())
}

func TestIndexerTagFilter(t *testing.T) {
	w := newTestWorld(2)
	ix, err := NewIndexer(w, nil)
	require.NoError(t, err)

	ship := w.Create(flags(0)...)
	ship.AddTag("ship")
	station := w.Create(flags(0)...)
	station.AddTag("station")

	assert.Equal(t, []ecs.EntityID{ship.ID()}, ids(ix.Search([]ecs.Kind{kindN(0)}, "ship").Collect()))
	assert.Len(t, ix.Search(nil).Collect(), 2)
	assert.Empty(t, ix.Search(nil, "ship", "station").Collect())
}

func TestIndexerPartitions(t *testing.T) {
	w := newTestWorld(2)
	ix, err := NewIndexer(w, partitionBySector)
	require.NoError(t, err)

	a := w.Create(append(flags(0), &located{Sector: 100})...)
	b := w.Create(append(flags(0, 1), &located{Sector: 100})...)
	c := w.Create(append(flags(0), &located{Sector: 200})...)
	unpositioned := w.Create(flags(0)...)

	got := ids(ix.SearchByPartition(100, []ecs.Kind{kindN(0)}).Collect())
	assert.Equal(t, []ecs.EntityID{a.ID(), b.ID()}, got)
	assert.Equal(t, []ecs.EntityID{b.ID()}, ids(ix.SearchByPartition(100, []ecs.Kind{kindN(1)}).Collect()))
	assert.Empty(t, ix.SearchByPartition(300, nil).Collect())
	_, ok := ix.PartitionOf(unpositioned.ID())
	assert.False(t, ok)

	// moving without notification is not picked up
	ecs.MustGet[*located](c).Sector = 100
	assert.Len(t, ix.SearchByPartition(100, nil).Collect(), 2)

	w.NotifyPartitionChanged(c)
	assert.Len(t, ix.SearchByPartition(100, nil).Collect(), 3)
	assert.Empty(t, ix.SearchByPartition(200, nil).Collect())
	p, ok := ix.PartitionOf(c.ID())
	require.True(t, ok)
	assert.Equal(t, PartitionID(100), p)

	// gaining and losing the positioning component updates membership
	unpositioned.AddComponent(&located{Sector: 200})
	assert.Equal(t, []ecs.EntityID{unpositioned.ID()}, ids(ix.SearchByPartition(200, nil).Collect()))
	a.RemoveComponent(kindLocated)
	_, ok = ix.PartitionOf(a.ID())
	assert.False(t, ok)

	b.Unregister("destroyed")
	assert.Equal(t, []ecs.EntityID{c.ID()}, ids(ix.SearchByPartition(100, nil).Collect()))
}

func TestIndexerSearchIsSafeUnderMutation(t *testing.T) {
	w := newTestWorld(1)
	ix, err := NewIndexer(w, nil)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		w.Create(flags(0)...)
	}
	removed := 0
	ix.Search([]ecs.Kind{kindN(0)}).Each(func(e *ecs.Entity) {
		e.Unregister("sweep")
		removed++
	})
	assert.Equal(t, 10, removed)
	assert.Zero(t, ix.Len())
}

func TestIndexerClose(t *testing.T) {
	w := newTestWorld(1)
	ix, err := NewIndexer(w, nil)
	require.NoError(t, err)
	ix.Close()
	w.Create(flags(0)...)
	assert.Zero(t, ix.Len())

	ix.Clear()
	assert.Zero(t, ix.Len())
}
