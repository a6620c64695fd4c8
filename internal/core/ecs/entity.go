package ecs

import (
	"fmt"
	"slices"
)

// EntityID identifies an entity within one World. Ids are never reused.
type EntityID uint64

// Entity owns its components, tags and cooldowns. Its mask always has bit b
// set iff it holds the component whose kind owns b.
type Entity struct {
	id         EntityID
	world      *World
	components map[Kind]Component
	mask       Mask
	tags       map[string]struct{}
	cooldowns  *Cooldowns
	deleted    bool
}

func newEntity(w *World, id EntityID) *Entity {
	return &Entity{
		id:         id,
		world:      w,
		components: make(map[Kind]Component),
		tags:       make(map[string]struct{}),
		cooldowns:  NewCooldowns(),
	}
}

func (e *Entity) ID() EntityID          { return e.id }
func (e *Entity) World() *World         { return e.world }
func (e *Entity) Mask() Mask            { return e.mask }
func (e *Entity) Deleted() bool         { return e.deleted }
func (e *Entity) Cooldowns() *Cooldowns { return e.cooldowns }

// Has reports whether the entity holds a component of kind.
func (e *Entity) Has(kind Kind) bool {
	_, ok := e.components[kind]
	return ok
}

// Component returns the component stored under kind.
func (e *Entity) Component(kind Kind) (Component, bool) {
	c, ok := e.components[kind]
	return c, ok
}

// Kinds lists the held kinds in registry bit order.
func (e *Entity) Kinds() []Kind {
	out := make([]Kind, 0, len(e.components))
	for _, k := range e.world.registry.kinds {
		if _, ok := e.components[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// AddComponent inserts or overwrites the component of c's kind. A component
// event is published only when the kind was absent before.
func (e *Entity) AddComponent(c Component) {
	kind := c.Kind()
	bit := e.world.registry.Bit(kind)
	_, existed := e.components[kind]
	e.components[kind] = c
	if existed {
		return
	}
	prev := e.mask
	e.mask = e.mask.With(bit)
	e.world.publish(EventComponentAdded, ComponentAdded{Entity: e, Kind: kind, PrevMask: prev})
}

// RemoveComponent detaches kind. Removing an absent kind does nothing.
func (e *Entity) RemoveComponent(kind Kind) {
	bit := e.world.registry.Bit(kind)
	removed, ok := e.components[kind]
	if !ok {
		return
	}
	delete(e.components, kind)
	prev := e.mask
	e.mask = e.mask.Without(bit)
	e.world.publish(EventComponentRemoved, ComponentRemoved{Entity: e, Kind: kind, Removed: removed, PrevMask: prev})
}

// RequireComponents checks that every kind is present and returns the entity,
// or a *MissingComponentError naming the absent kinds.
func (e *Entity) RequireComponents(kinds ...Kind) (*Entity, error) {
	var missing []Kind
	for _, k := range kinds {
		if _, ok := e.components[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingComponentError{Entity: e.id, Missing: missing}
	}
	return e, nil
}

// MustRequire is RequireComponents for callers that treat absence as a bug.
func (e *Entity) MustRequire(kinds ...Kind) *Entity {
	out, err := e.RequireComponents(kinds...)
	if err != nil {
		panic(err)
	}
	return out
}

func (e *Entity) AddTag(tag string) {
	if _, ok := e.tags[tag]; ok {
		return
	}
	e.tags[tag] = struct{}{}
	e.world.publish(EventTagAdded, TagChanged{Entity: e, Tag: tag})
}

func (e *Entity) RemoveTag(tag string) {
	if _, ok := e.tags[tag]; !ok {
		return
	}
	delete(e.tags, tag)
	e.world.publish(EventTagRemoved, TagChanged{Entity: e, Tag: tag})
}

// HasTags reports whether the entity carries every tag.
func (e *Entity) HasTags(tags ...string) bool {
	for _, t := range tags {
		if _, ok := e.tags[t]; !ok {
			return false
		}
	}
	return true
}

// Tags returns the tags sorted.
func (e *Entity) Tags() []string {
	out := make([]string, 0, len(e.tags))
	for t := range e.tags {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Unregister marks the entity deleted and announces its removal. Each index
// subscribed to EventEntityRemoved purges the entity itself; the world drops it
// last. Calling it twice does nothing.
func (e *Entity) Unregister(reason string) {
	if e.deleted {
		return
	}
	e.deleted = true
	e.world.remove(e, reason)
}

func (e *Entity) String() string {
	return fmt.Sprintf("entity(%d)", e.id)
}

// Get returns the component of type T. T is usually a pointer type whose Kind
// method works on a nil receiver.
func Get[T Component](e *Entity) (T, bool) {
	var zero T
	c, ok := e.components[zero.Kind()]
	if !ok {
		return zero, false
	}
	typed, ok := c.(T)
	return typed, ok
}

// MustGet is Get for components a caller has already required.
func MustGet[T Component](e *Entity) T {
	c, ok := Get[T](e)
	if !ok {
		var zero T
		panic(&MissingComponentError{Entity: e.id, Missing: []Kind{zero.Kind()}})
	}
	return c
}
