package orders

import (
	"testing"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/events/bus"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/observability/log"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/query"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/components"
	"github.com/stretchr/testify/require"
)

type env struct {
	w   *ecs.World
	ix  *query.Indexer
	sys *System
}

func newEnv(t *testing.T, opts ...Option) env {
	t.Helper()
	w := ecs.NewWorld(components.NewRegistry(0), bus.New(), log.NewNop())
	ix, err := query.NewIndexer(w, components.SectorOf)
	require.NoError(t, err)
	cache, err := query.NewCache(ix)
	require.NoError(t, err)
	sys, err := NewSystem(ix, cache, opts...)
	require.NoError(t, err)
	t.Cleanup(sys.Close)
	return env{w: w, ix: ix, sys: sys}
}

func (e env) tick(dt float64) {
	e.w.Advance()
	for _, ent := range e.w.Entities() {
		ent.Cooldowns().Tick(dt)
	}
	e.sys.Exec(dt)
}

// runUntilIdle ticks until the queue of subject empties, at most limit times,
// and returns the number of ticks used.
func (e env) runUntilIdle(t *testing.T, subject *ecs.Entity, dt float64, limit int) int {
	t.Helper()
	for i := 1; i <= limit; i++ {
		e.tick(dt)
		if len(Queue(subject).Queue) == 0 {
			return i
		}
	}
	require.FailNow(t, "order queue did not drain", "after %d ticks: %+v", limit, Queue(subject).Queue)
	return 0
}

func (e env) sector() *ecs.Entity {
	return e.w.Create(&components.Sector{Label: "alpha"})
}

func (e env) ship(sector ecs.EntityID, x, y, speed float64) *ecs.Entity {
	return e.w.Create(
		&components.Position{X: x, Y: y, Sector: sector},
		&components.Drive{MaxSpeed: speed},
		&components.Dockable{},
	)
}

func (e env) station(sector ecs.EntityID, x, y float64, pads int) *ecs.Entity {
	return e.w.Create(
		&components.Position{X: x, Y: y, Sector: sector},
		&components.Docks{Pads: pads},
	)
}

func queueOf(e *ecs.Entity) []*components.Order { return Queue(e).Queue }
