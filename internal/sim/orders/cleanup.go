package orders

import (
	"slices"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/observability/log"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/components"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/trade"
)

// cleanup runs when an entity is unregistered, before the world purges it.
// Every step is idempotent and they run in a fixed order: allocations, orders,
// docks, then dependents.
func (s *System) cleanup(ev ecs.EntityRemoved) error {
	removed := ev.Entity
	ctx := s.context(0)
	logger := s.logger.With(log.Entity(uint64(removed.ID())), log.String("reason", ev.Reason))

	if n := trade.ReleaseFor(removed, s.ledgerHolders()); n > 0 {
		logger.Debug("released allocations", log.Int("count", n))
	}
	if n := s.pruneOrders(ctx, removed.ID()); n > 0 {
		logger.Debug("pruned orders", log.Int("count", n))
	}
	s.detachDocks(ctx, removed)
	s.disposeDependents(removed.ID())
	return nil
}

func (s *System) ledgerHolders() []*ecs.Entity {
	holders := s.ix.Search([]ecs.Kind{components.KindBudget}).Collect()
	for _, e := range s.ix.Search([]ecs.Kind{components.KindStorage}).Collect() {
		if !e.Has(components.KindBudget) {
			holders = append(holders, e)
		}
	}
	return holders
}

// pruneOrders removes every order referencing id from the other entities.
// The completion hook runs for orders that were active.
func (s *System) pruneOrders(ctx *Context, id ecs.EntityID) int {
	n := 0
	for _, e := range s.queues.Entities() {
		if e.ID() == id || e.Deleted() {
			continue
		}
		queue := ecs.MustGet[*components.Orders](e)
		active, _ := queue.Active()
		for _, o := range slices.Clone(queue.Queue) {
			if !o.References(id) {
				continue
			}
			if !queue.Remove(o) {
				continue
			}
			n++
			if active == o {
				s.orderHandler(o.Kind).onCompleted(ctx, e, o)
			}
		}
	}
	return n
}

func (s *System) detachDocks(ctx *Context, removed *ecs.Entity) {
	undock(ctx, removed)
	docks, ok := ecs.Get[*components.Docks](removed)
	if !ok {
		return
	}
	for _, id := range docks.Docked {
		if guest, ok := ctx.Entity(id); ok {
			if d, ok := ecs.Get[*components.Dockable](guest); ok && d.DockedAt == removed.ID() {
				d.DockedAt = 0
			}
		}
	}
	docks.Docked = nil
}

// disposeDependents unregisters the children mounted on id and the markers
// created for its orders. Their own removal recurses through cleanup.
func (s *System) disposeDependents(id ecs.EntityID) {
	for _, child := range s.ix.Search([]ecs.Kind{components.KindParent}).Collect() {
		if ecs.MustGet[*components.Parent](child).ID == id {
			child.Unregister("parent removed")
		}
	}
	for _, marker := range s.ix.Search([]ecs.Kind{components.KindDisposable}).Collect() {
		if ecs.MustGet[*components.Disposable](marker).Owner == id {
			marker.Unregister("owner removed")
		}
	}
}
