package ecs

// Lifecycle event types published on the world bus. Every event is published
// after the mutation it describes, synchronously, before the mutating call returns.
const (
	EventEntityAdded      = "entity.added"
	EventEntityRemoved    = "entity.removed"
	EventComponentAdded   = "component.added"
	EventComponentRemoved = "component.removed"
	EventTagAdded         = "tag.added"
	EventTagRemoved       = "tag.removed"
	EventPartitionChanged = "partition.changed"
)

// EntityAdded is published once an entity is fully constructed and registered.
type EntityAdded struct {
	Entity *Entity
}

// EntityRemoved is published by Unregister after the deleted flag is set and
// before the world drops the entity. Subscribers purge their own references.
type EntityRemoved struct {
	Entity *Entity
	Reason string
}

// ComponentAdded is published when a previously absent kind is attached.
type ComponentAdded struct {
	Entity   *Entity
	Kind     Kind
	PrevMask Mask
}

// ComponentRemoved carries a copy of the removed value, since the entity no
// longer holds it when subscribers run.
type ComponentRemoved struct {
	Entity   *Entity
	Kind     Kind
	Removed  Component
	PrevMask Mask
}

// TagChanged is the payload of both tag events.
type TagChanged struct {
	Entity *Entity
	Tag    string
}

// PartitionChanged announces that an entity moved between spatial partitions.
// Indices never infer this from component writes.
type PartitionChanged struct {
	Entity *Entity
}
