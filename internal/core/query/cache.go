package query

import (
	"errors"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/events/bus"
)

// Query is a memoized view of the entities matching a kind set and tag set.
// It is kept up to date incrementally from lifecycle events instead of being
// recomputed, which is what hot-path systems running every tick want.
type Query struct {
	mask     ecs.Mask
	tags     []string
	members  []*ecs.Entity
	index    map[ecs.EntityID]int
	snapshot []*ecs.Entity
	dirty    bool
}

func (q *Query) matches(e *ecs.Entity) bool {
	return !e.Deleted() && e.Mask().ContainsAll(q.mask) && e.HasTags(q.tags...)
}

func (q *Query) add(e *ecs.Entity) {
	if _, ok := q.index[e.ID()]; ok {
		return
	}
	q.index[e.ID()] = len(q.members)
	q.members = append(q.members, e)
	q.dirty = true
}

func (q *Query) remove(id ecs.EntityID) {
	pos, ok := q.index[id]
	if !ok {
		return
	}
	last := len(q.members) - 1
	if pos != last {
		moved := q.members[last]
		q.members[pos] = moved
		q.index[moved.ID()] = pos
	}
	q.members[last] = nil
	q.members = q.members[:last]
	delete(q.index, id)
	q.dirty = true
}

func (q *Query) refresh(e *ecs.Entity) {
	if q.matches(e) {
		q.add(e)
	} else {
		q.remove(e.ID())
	}
}

// Entities returns a snapshot of the current members ordered by id. The slice
// is shared between calls until membership changes and must not be modified.
func (q *Query) Entities() []*ecs.Entity {
	if q.dirty || q.snapshot == nil {
		q.snapshot = slices.Clone(q.members)
		if q.snapshot == nil {
			q.snapshot = []*ecs.Entity{}
		}
		sortByID(q.snapshot)
		q.dirty = false
	}
	return q.snapshot
}

func (q *Query) Len() int { return len(q.members) }

func (q *Query) Contains(id ecs.EntityID) bool {
	_, ok := q.index[id]
	return ok
}

// Cache memoizes queries by (mask, tags).
type Cache struct {
	ix      *Indexer
	queries map[uint64][]*Query
	subs    []bus.Subscription
}

// NewCache subscribes to the indexer's world. Subscriptions are made after the
// indexer's own, so the indexer is always up to date when queries refresh.
func NewCache(ix *Indexer) (*Cache, error) {
	c := &Cache{
		ix:      ix,
		queries: make(map[uint64][]*Query),
	}
	b := ix.World().Bus()
	refresh := func(e *ecs.Entity) {
		for _, bucket := range c.queries {
			for _, q := range bucket {
				q.refresh(e)
			}
		}
	}
	var errs error
	subscribe := func(sub bus.Subscription, err error) {
		if err != nil {
			errs = errors.Join(errs, err)
			return
		}
		c.subs = append(c.subs, sub)
	}
	subscribe(bus.On(b, ecs.EventEntityAdded, func(ev ecs.EntityAdded) error {
		refresh(ev.Entity)
		return nil
	}))
	subscribe(bus.On(b, ecs.EventEntityRemoved, func(ev ecs.EntityRemoved) error {
		for _, bucket := range c.queries {
			for _, q := range bucket {
				q.remove(ev.Entity.ID())
			}
		}
		return nil
	}))
	subscribe(bus.On(b, ecs.EventComponentAdded, func(ev ecs.ComponentAdded) error {
		refresh(ev.Entity)
		return nil
	}))
	subscribe(bus.On(b, ecs.EventComponentRemoved, func(ev ecs.ComponentRemoved) error {
		refresh(ev.Entity)
		return nil
	}))
	subscribe(bus.On(b, ecs.EventTagAdded, func(ev ecs.TagChanged) error {
		refresh(ev.Entity)
		return nil
	}))
	subscribe(bus.On(b, ecs.EventTagRemoved, func(ev ecs.TagChanged) error {
		refresh(ev.Entity)
		return nil
	}))
	if errs != nil {
		c.Close()
		return nil, errs
	}
	return c, nil
}

// Close unsubscribes the cache. Existing queries stop updating.
func (c *Cache) Close() {
	for _, s := range c.subs {
		_ = s.Cancel()
	}
	c.subs = nil
}

// Get returns the memoized query for kinds and tags, seeding it from the
// indexer on first use.
func (c *Cache) Get(kinds []ecs.Kind, tags ...string) *Query {
	mask := c.ix.World().Registry().MaskOf(kinds...)
	tags = slices.Clone(tags)
	slices.Sort(tags)
	tags = slices.Compact(tags)

	key := cacheKey(mask, tags)
	for _, q := range c.queries[key] {
		if q.mask.Equal(mask) && slices.Equal(q.tags, tags) {
			return q
		}
	}

	q := &Query{
		mask:  mask,
		tags:  tags,
		index: make(map[ecs.EntityID]int),
	}
	c.ix.SearchMask(mask, tags...).Each(q.add)
	c.queries[key] = append(c.queries[key], q)
	return q
}

// Len is the number of memoized queries.
func (c *Cache) Len() int {
	n := 0
	for _, bucket := range c.queries {
		n += len(bucket)
	}
	return n
}

func cacheKey(mask ecs.Mask, tags []string) uint64 {
	d := xxhash.New()
	_, _ = d.Write(mask.Bytes())
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(strings.Join(tags, "\x00"))
	return d.Sum64()
}
