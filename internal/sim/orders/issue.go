package orders

import (
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/components"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/trade"
)

// Queue returns the order queue of e, attaching an empty one if needed.
func Queue(e *ecs.Entity) *components.Orders {
	if q, ok := ecs.Get[*components.Orders](e); ok {
		return q
	}
	q := &components.Orders{}
	e.AddComponent(q)
	return q
}

// Give appends orders to the queue of e.
func Give(e *ecs.Entity, orders ...*components.Order) {
	Queue(e).Push(orders...)
}

// InterruptWith queues o right behind the active order and flags the active
// order, so that o runs next and the interrupted order resumes after it.
func InterruptWith(e *ecs.Entity, o *components.Order) {
	q := Queue(e)
	active, ok := q.Active()
	if !ok {
		q.Push(o)
		return
	}
	q.Insert(1, o)
	active.Interrupt = true
}

func action(kind components.ActionKind, target ecs.EntityID) components.Action {
	return components.Action{Kind: kind, Target: target}
}

func MoveTo(target ecs.EntityID) *components.Order {
	return &components.Order{
		Kind:    components.OrderMove,
		Target:  target,
		Actions: []components.Action{action(components.ActionMove, target)},
	}
}

// MoveToPoint creates a marker entity at the given point and orders e to move
// there. The marker is disposed of when the order completes or e is removed.
func MoveToPoint(e *ecs.Entity, x, y float64, sector ecs.EntityID) *components.Order {
	marker := e.World().Create(
		&components.Position{X: x, Y: y, Sector: sector},
		&components.Disposable{Owner: e.ID()},
	)
	o := MoveTo(marker.ID())
	Give(e, o)
	return o
}

func DockAt(target ecs.EntityID) *components.Order {
	return &components.Order{
		Kind:   components.OrderDock,
		Target: target,
		Actions: []components.Action{
			action(components.ActionMove, target),
			action(components.ActionDock, target),
		},
	}
}

func TeleportTo(target ecs.EntityID) *components.Order {
	return &components.Order{
		Kind:    components.OrderTeleport,
		Target:  target,
		Actions: []components.Action{action(components.ActionTeleport, target)},
	}
}

// Trade builds the order carrying out deal on behalf of actor, which must be
// one of the two parties: fly to the other party, dock, exchange, undock.
func Trade(deal trade.Deal, actor ecs.EntityID) *components.Order {
	other, role := deal.Seller, components.RoleBuyer
	if actor == deal.Seller {
		other, role = deal.Buyer, components.RoleSeller
	}
	return &components.Order{
		Kind:        components.OrderTrade,
		Target:      other,
		Transaction: deal.Transaction,
		Wares:       deal.Wares,
		Actions: []components.Action{
			action(components.ActionMove, other),
			action(components.ActionDock, other),
			{Kind: components.ActionTransact, Target: other, Transaction: deal.Transaction, Role: role},
			action(components.ActionUndock, other),
		},
	}
}

func Mine(field ecs.EntityID) *components.Order {
	return &components.Order{
		Kind:    components.OrderMine,
		Target:  field,
		Actions: []components.Action{action(components.ActionMine, field)},
	}
}

// Patrol cycles through waypoints until interrupted or replaced.
func Patrol(waypoints ...ecs.EntityID) *components.Order {
	return &components.Order{Kind: components.OrderPatrol, Waypoints: waypoints}
}

func Attack(target ecs.EntityID) *components.Order {
	return &components.Order{Kind: components.OrderAttack, Target: target}
}

func Follow(target ecs.EntityID) *components.Order {
	return &components.Order{Kind: components.OrderFollow, Target: target}
}

func Escort(target ecs.EntityID) *components.Order {
	return &components.Order{Kind: components.OrderEscort, Target: target}
}

func Hold() *components.Order {
	return &components.Order{Kind: components.OrderHold}
}
