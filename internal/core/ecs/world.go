package ecs

import (
	"fmt"
	"slices"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/events/bus"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/observability/log"
)

// World is the simulation context: the entity arena, the kind registry and the
// bus every index subscribes to. Multiple worlds never share state.
type World struct {
	registry *Registry
	bus      bus.EventBus
	logger   log.Log
	entities map[EntityID]*Entity
	nextID   EntityID
	tick     int64
}

func NewWorld(registry *Registry, b bus.EventBus, logger log.Log) *World {
	if b == nil {
		b = bus.New()
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &World{
		registry: registry,
		bus:      b,
		logger:   logger,
		entities: make(map[EntityID]*Entity, 1024),
	}
}

func (w *World) Registry() *Registry { return w.registry }
func (w *World) Bus() bus.EventBus   { return w.bus }
func (w *World) Logger() log.Log     { return w.logger }
func (w *World) Tick() int64         { return w.tick }
func (w *World) Len() int            { return len(w.entities) }

// SetTick rewinds or forwards the world clock, used when loading a saved world.
func (w *World) SetTick(tick int64) { w.tick = tick }

// Advance moves the world clock one tick forward and returns the new tick.
func (w *World) Advance() int64 {
	w.tick++
	return w.tick
}

// Create builds an entity holding components and registers it. Subscribers see
// a single EntityAdded with the final mask, not one event per component.
func (w *World) Create(components ...Component) *Entity {
	w.nextID++
	e := newEntity(w, w.nextID)
	w.attach(e, components)
	w.register(e)
	return e
}

func (w *World) attach(e *Entity, components []Component) {
	for _, c := range components {
		kind := c.Kind()
		e.components[kind] = c
		e.mask = e.mask.With(w.registry.Bit(kind))
	}
}

func (w *World) register(e *Entity) {
	w.entities[e.id] = e
	w.publish(EventEntityAdded, EntityAdded{Entity: e})
}

// Entity returns a live entity by id.
func (w *World) Entity(id EntityID) (*Entity, bool) {
	e, ok := w.entities[id]
	if !ok || e.deleted {
		return nil, false
	}
	return e, true
}

// MustEntity panics when id is unknown.
func (w *World) MustEntity(id EntityID) *Entity {
	e, ok := w.Entity(id)
	if !ok {
		panic(fmt.Errorf("%w: %d", ErrEntityNotFound, id))
	}
	return e
}

// Entities returns every live entity ordered by id.
func (w *World) Entities() []*Entity {
	out := make([]*Entity, 0, len(w.entities))
	for _, e := range w.entities {
		if !e.deleted {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b *Entity) int {
		switch {
		case a.id < b.id:
			return -1
		case a.id > b.id:
			return 1
		}
		return 0
	})
	return out
}

// NotifyPartitionChanged must be called by whoever moves an entity to another
// spatial partition.
func (w *World) NotifyPartitionChanged(e *Entity) {
	if e.deleted {
		return
	}
	w.publish(EventPartitionChanged, PartitionChanged{Entity: e})
}

// Clear unregisters every entity with the given reason.
func (w *World) Clear(reason string) {
	for _, e := range w.Entities() {
		e.Unregister(reason)
	}
}

func (w *World) remove(e *Entity, reason string) {
	w.logger.Debug("unregister entity", log.Entity(uint64(e.id)), log.String("reason", reason))
	w.publish(EventEntityRemoved, EntityRemoved{Entity: e, Reason: reason})
	delete(w.entities, e.id)
}

func (w *World) publish(eventType string, payload any) {
	if err := w.bus.Publish(bus.NewEvent(eventType, "world", payload)); err != nil {
		w.logger.Warn("event subscriber failed", log.String("event", eventType), log.Error(err))
	}
}
