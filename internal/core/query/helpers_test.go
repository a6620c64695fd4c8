package query

import (
	"fmt"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/events/bus"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/observability/log"
)

// flag is a data-less component of an arbitrary kind.
type flag struct {
	kind ecs.Kind
}

func (f flag) Kind() ecs.Kind { return f.kind }

// located carries a partition id.
type located struct {
	Sector ecs.EntityID
}

const kindLocated ecs.Kind = "located"

func (*located) Kind() ecs.Kind { return kindLocated }

func kindN(i int) ecs.Kind { return ecs.Kind(fmt.Sprintf("k%02d", i)) }

// newTestWorld registers n flag kinds followed by the located kind.
func newTestWorld(n int) *ecs.World {
	defs := make([]ecs.Definition, 0, n+1)
	for i := 0; i < n; i++ {
		defs = append(defs, ecs.Definition{Kind: kindN(i)})
	}
	defs = append(defs, ecs.Definition{Kind: kindLocated})
	return ecs.NewWorld(ecs.NewRegistry(0, defs...), bus.New(), log.NewNop())
}

func flags(bits ...int) []ecs.Component {
	out := make([]ecs.Component, len(bits))
	for i, b := range bits {
		out[i] = flag{kind: kindN(b)}
	}
	return out
}

func partitionBySector(e *ecs.Entity) (PartitionID, bool) {
	l, ok := ecs.Get[*located](e)
	if !ok {
		return 0, false
	}
	return l.Sector, true
}

func ids(entities []*ecs.Entity) []ecs.EntityID {
	out := make([]ecs.EntityID, len(entities))
	for i, e := range entities {
		out[i] = e.ID()
	}
	return out
}
