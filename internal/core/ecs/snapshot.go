package ecs

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the persisted form of an entity. The mask is not stored; it is
// recomputed from the components on restore.
type Snapshot struct {
	ID         EntityID                 `json:"id"`
	Components map[Kind]json.RawMessage `json:"components"`
	Tags       []string                 `json:"tags,omitempty"`
	Cooldowns  map[string]float64       `json:"cooldowns,omitempty"`
}

// Snapshot encodes every component of e. Components strip runtime handles
// through their json tags or MarshalJSON.
func (w *World) Snapshot(e *Entity) (Snapshot, error) {
	s := Snapshot{
		ID:         e.id,
		Components: make(map[Kind]json.RawMessage, len(e.components)),
		Tags:       e.Tags(),
		Cooldowns:  e.cooldowns.Snapshot(),
	}
	for kind, c := range e.components {
		raw, err := json.Marshal(c)
		if err != nil {
			return Snapshot{}, fmt.Errorf("snapshot entity %d component %s: %w", e.id, kind, err)
		}
		s.Components[kind] = raw
	}
	return s, nil
}

// Restore rebuilds an entity from s under its original id and registers it.
func (w *World) Restore(s Snapshot) (*Entity, error) {
	if s.ID == 0 {
		return nil, fmt.Errorf("restore: %w: id 0", ErrEntityNotFound)
	}
	if _, ok := w.entities[s.ID]; ok {
		return nil, fmt.Errorf("restore %d: %w", s.ID, ErrEntityExists)
	}
	components := make([]Component, 0, len(s.Components))
	for _, kind := range w.registry.kinds {
		raw, ok := s.Components[kind]
		if !ok {
			continue
		}
		def := w.registry.defs[kind]
		if def.New == nil {
			return nil, fmt.Errorf("restore %d: %w: %s", s.ID, ErrNotRestorable, kind)
		}
		c := def.New()
		if err := json.Unmarshal(raw, c); err != nil {
			return nil, fmt.Errorf("restore %d component %s: %w", s.ID, kind, err)
		}
		components = append(components, c)
	}
	for kind := range s.Components {
		if _, ok := w.registry.bits[kind]; !ok {
			return nil, fmt.Errorf("restore %d: %w: %s", s.ID, ErrUnknownKind, kind)
		}
	}

	e := newEntity(w, s.ID)
	w.attach(e, components)
	for _, t := range s.Tags {
		e.tags[t] = struct{}{}
	}
	e.cooldowns.Restore(s.Cooldowns)
	if s.ID > w.nextID {
		w.nextID = s.ID
	}
	w.register(e)
	return e, nil
}
