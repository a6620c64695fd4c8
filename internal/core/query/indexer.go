package query

import (
	"errors"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/events/bus"
	"github.com/sectoralphagame/sector-alpha-sub002/pkg/sequence"
)

// PartitionID identifies a spatial partition, usually a sector entity.
type PartitionID = ecs.EntityID

// PartitionFunc reports the partition an entity lives in. Entities for which it
// returns false (e.g. no position) are kept out of the partition map.
type PartitionFunc func(*ecs.Entity) (PartitionID, bool)

// Indexer combines the bitwise trie with a partition map. It keeps itself
// consistent by subscribing to the world's lifecycle events; other systems only
// read from it.
type Indexer struct {
	world       *ecs.World
	trie        *Trie
	partitionOf PartitionFunc
	partitions  map[PartitionID]map[ecs.EntityID]*ecs.Entity
	located     map[ecs.EntityID]PartitionID
	subs        []bus.Subscription
}

// NewIndexer indexes every live entity of w and subscribes to its bus.
// partitionOf may be nil when the world has no spatial partitioning.
func NewIndexer(w *ecs.World, partitionOf PartitionFunc) (*Indexer, error) {
	ix := &Indexer{
		world:       w,
		trie:        NewTrie(w.Registry().Len()),
		partitionOf: partitionOf,
		partitions:  make(map[PartitionID]map[ecs.EntityID]*ecs.Entity),
		located:     make(map[ecs.EntityID]PartitionID),
	}
	for _, e := range w.Entities() {
		ix.Insert(e)
	}

	b := w.Bus()
	var errs error
	subscribe := func(sub bus.Subscription, err error) {
		if err != nil {
			errs = errors.Join(errs, err)
			return
		}
		ix.subs = append(ix.subs, sub)
	}
	subscribe(bus.On(b, ecs.EventEntityAdded, func(ev ecs.EntityAdded) error {
		ix.Insert(ev.Entity)
		return nil
	}))
	subscribe(bus.On(b, ecs.EventEntityRemoved, func(ev ecs.EntityRemoved) error {
		ix.Remove(ev.Entity)
		return nil
	}))
	subscribe(bus.On(b, ecs.EventComponentAdded, func(ev ecs.ComponentAdded) error {
		ix.UpdateMask(ev.Entity)
		return nil
	}))
	subscribe(bus.On(b, ecs.EventComponentRemoved, func(ev ecs.ComponentRemoved) error {
		ix.UpdateMask(ev.Entity)
		return nil
	}))
	subscribe(bus.On(b, ecs.EventPartitionChanged, func(ev ecs.PartitionChanged) error {
		ix.UpdatePartition(ev.Entity)
		return nil
	}))
	if errs != nil {
		ix.Close()
		return nil, errs
	}
	return ix, nil
}

// Close stops following the world's events.
func (ix *Indexer) Close() {
	for _, s := range ix.subs {
		_ = s.Cancel()
	}
	ix.subs = nil
}

func (ix *Indexer) World() *ecs.World { return ix.world }

// Len is the number of indexed entities.
func (ix *Indexer) Len() int { return ix.trie.Len() }

// Search returns the entities holding every kind and carrying every tag. The
// result is materialized, so callers may mutate the world while consuming it.
func (ix *Indexer) Search(kinds []ecs.Kind, tags ...string) *sequence.Iterator[*ecs.Entity] {
	return ix.SearchMask(ix.world.Registry().MaskOf(kinds...), tags...)
}

// SearchMask is Search with a prebuilt mask.
func (ix *Indexer) SearchMask(mask ecs.Mask, tags ...string) *sequence.Iterator[*ecs.Entity] {
	var out []*ecs.Entity
	for e := range ix.trie.Search(mask) {
		if len(tags) == 0 || e.HasTags(tags...) {
			out = append(out, e)
		}
	}
	return sequence.From(out)
}

// SearchByPartition restricts Search to one partition.
func (ix *Indexer) SearchByPartition(partition PartitionID, kinds []ecs.Kind, tags ...string) *sequence.Iterator[*ecs.Entity] {
	members := ix.partitions[partition]
	if len(members) == 0 {
		return sequence.Empty[*ecs.Entity]()
	}
	mask := ix.world.Registry().MaskOf(kinds...)
	out := make([]*ecs.Entity, 0, len(members))
	for _, e := range members {
		if e.Mask().ContainsAll(mask) && (len(tags) == 0 || e.HasTags(tags...)) {
			out = append(out, e)
		}
	}
	sortByID(out)
	return sequence.From(out)
}

// PartitionOf returns the partition the entity is indexed under.
func (ix *Indexer) PartitionOf(id ecs.EntityID) (PartitionID, bool) {
	p, ok := ix.located[id]
	return p, ok
}

// Insert indexes e in the trie and, when positioned, in its partition.
func (ix *Indexer) Insert(e *ecs.Entity) {
	if e.Deleted() {
		return
	}
	ix.trie.Insert(e)
	ix.locate(e)
}

// Remove drops e from the trie and from every partition.
func (ix *Indexer) Remove(e *ecs.Entity) {
	ix.trie.Remove(e.ID())
	ix.unlocate(e.ID())
}

// UpdateMask relocates e after its component set changed. The trie leaf is
// addressed by the full mask, so the entity is removed and reinserted.
func (ix *Indexer) UpdateMask(e *ecs.Entity) {
	if e.Deleted() || !ix.trie.Contains(e.ID()) {
		return
	}
	ix.trie.Remove(e.ID())
	ix.trie.Insert(e)

	_, indexed := ix.located[e.ID()]
	_, positioned := ix.partition(e)
	if indexed != positioned {
		ix.UpdatePartition(e)
	}
}

// UpdatePartition moves e under its current partition id.
func (ix *Indexer) UpdatePartition(e *ecs.Entity) {
	if e.Deleted() || !ix.trie.Contains(e.ID()) {
		return
	}
	ix.unlocate(e.ID())
	ix.locate(e)
}

// Clear empties every index. Used on simulation teardown.
func (ix *Indexer) Clear() {
	ix.trie.Clear()
	ix.partitions = make(map[PartitionID]map[ecs.EntityID]*ecs.Entity)
	ix.located = make(map[ecs.EntityID]PartitionID)
}

func (ix *Indexer) partition(e *ecs.Entity) (PartitionID, bool) {
	if ix.partitionOf == nil {
		return 0, false
	}
	return ix.partitionOf(e)
}

func (ix *Indexer) locate(e *ecs.Entity) {
	p, ok := ix.partition(e)
	if !ok {
		return
	}
	members := ix.partitions[p]
	if members == nil {
		members = make(map[ecs.EntityID]*ecs.Entity)
		ix.partitions[p] = members
	}
	members[e.ID()] = e
	ix.located[e.ID()] = p
}

func (ix *Indexer) unlocate(id ecs.EntityID) {
	p, ok := ix.located[id]
	if !ok {
		return
	}
	delete(ix.located, id)
	if members := ix.partitions[p]; members != nil {
		delete(members, id)
		if len(members) == 0 {
			delete(ix.partitions, p)
		}
	}
}
