// Package persist saves and loads whole worlds as sets of entity snapshots.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/pkg/concurrent"
)

// WorldSnapshot is a saved world. Entities are ordered by id.
type WorldSnapshot struct {
	Tick     int64          `json:"tick"`
	Entities []ecs.Snapshot `json:"entities"`
}

// Capture snapshots every live entity of w. Entities are encoded in parallel;
// the world must not be mutated until Capture returns.
func Capture(ctx context.Context, w *ecs.World) (WorldSnapshot, error) {
	entities := w.Entities()
	out := WorldSnapshot{Tick: w.Tick(), Entities: make([]ecs.Snapshot, len(entities))}

	err := concurrent.Indexed(ctx, entities, 0, func(_ context.Context, i int, e *ecs.Entity) error {
		s, err := w.Snapshot(e)
		if err != nil {
			return err
		}
		out.Entities[i] = s
		return nil
	})
	if err != nil {
		return WorldSnapshot{}, fmt.Errorf("capture world: %w", err)
	}
	return out, nil
}

// Load restores every entity of s into w, which should be empty, and sets the
// world clock. It stops at the first entity that cannot be restored.
func Load(w *ecs.World, s WorldSnapshot) error {
	entities := slices.Clone(s.Entities)
	slices.SortFunc(entities, func(a, b ecs.Snapshot) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	for _, e := range entities {
		if _, err := w.Restore(e); err != nil {
			return fmt.Errorf("load world: %w", err)
		}
	}
	w.SetTick(s.Tick)
	return nil
}

// Encode writes s as JSON.
func Encode(wr io.Writer, s WorldSnapshot) error {
	return json.NewEncoder(wr).Encode(s)
}

// Decode reads a snapshot written by Encode.
func Decode(r io.Reader) (WorldSnapshot, error) {
	var s WorldSnapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return WorldSnapshot{}, fmt.Errorf("decode world: %w", err)
	}
	return s, nil
}
