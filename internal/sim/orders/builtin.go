package orders

import (
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/observability/log"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/components"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/trade"
)

// RegisterBuiltins installs the handlers of every built-in order and action
// kind into r.
func RegisterBuiltins(r *Registry) {
	r.RegisterAction(components.ActionMove, execMove)
	r.RegisterAction(components.ActionDock, execDock)
	r.RegisterAction(components.ActionUndock, execUndock)
	r.RegisterAction(components.ActionTeleport, execTeleport)
	r.RegisterAction(components.ActionTransact, execTransact)
	r.RegisterAction(components.ActionAttack, execAttack)
	r.RegisterAction(components.ActionMine, execMine)

	r.RegisterOrder(components.OrderMove, OrderHandler{OnCompleted: disposeMarker})
	r.RegisterOrder(components.OrderDock, OrderHandler{})
	r.RegisterOrder(components.OrderTeleport, OrderHandler{})
	r.RegisterOrder(components.OrderMine, OrderHandler{})
	r.RegisterOrder(components.OrderHold, holdHandler)
	r.RegisterOrder(components.OrderTrade, OrderHandler{OnCompleted: cancelTrade})
	r.RegisterOrder(components.OrderPatrol, OrderHandler{
		Exec:        execPatrol,
		IsCompleted: func(_ *Context, _ *ecs.Entity, o *components.Order) bool { return len(o.Waypoints) == 0 },
	})
	r.RegisterOrder(components.OrderAttack, OrderHandler{
		Exec:        keepActing(components.ActionAttack),
		IsCompleted: targetGone,
	})
	r.RegisterOrder(components.OrderFollow, OrderHandler{
		Exec:        keepActing(components.ActionMove),
		IsCompleted: targetGone,
	})
	r.RegisterOrder(components.OrderEscort, OrderHandler{
		Exec: keepActing(components.ActionMove),
		IsCompleted: func(ctx *Context, e *ecs.Entity, o *components.Order) bool {
			if targetGone(ctx, e, o) {
				return true
			}
			target, _ := ctx.Entity(o.Target)
			q, ok := ecs.Get[*components.Orders](target)
			return !ok || len(q.Queue) == 0
		},
	})
}

// disposeMarker unregisters the transient target of a finished move order.
// An interrupted order keeps its marker, since it resumes later.
func disposeMarker(ctx *Context, e *ecs.Entity, o *components.Order) {
	if o.Interrupt {
		return
	}
	marker, ok := ctx.Entity(o.Target)
	if !ok {
		return
	}
	if d, ok := ecs.Get[*components.Disposable](marker); ok && d.Owner == e.ID() {
		marker.Unregister("order completed")
	}
}

// cancelTrade releases what is still reserved under the order's transaction.
// After a settled exchange nothing is left and this is a no-op.
func cancelTrade(ctx *Context, e *ecs.Entity, o *components.Order) {
	if o.Interrupt || o.Transaction == "" {
		return
	}
	if n := trade.Cancel(ctx.World, o.Transaction, e.ID(), o.Target); n > 0 {
		ctx.Logger.Debug("trade order released reservations",
			log.Entity(uint64(e.ID())), log.Int("released", n), log.String("transaction", o.Transaction))
	}
}

func targetGone(ctx *Context, _ *ecs.Entity, o *components.Order) bool {
	_, ok := ctx.Entity(o.Target)
	return !ok
}

// keepActing refills an empty action list with one action of kind against the
// order target, for orders that chase a moving entity.
func keepActing(kind components.ActionKind) func(*Context, *ecs.Entity, *components.Order) {
	return func(ctx *Context, _ *ecs.Entity, o *components.Order) {
		if len(o.Actions) > 0 {
			return
		}
		if _, ok := ctx.Entity(o.Target); ok {
			o.Actions = append(o.Actions, components.Action{Kind: kind, Target: o.Target})
		}
	}
}

func execPatrol(_ *Context, _ *ecs.Entity, o *components.Order) {
	if len(o.Actions) > 0 || len(o.Waypoints) == 0 {
		return
	}
	next := o.Waypoints[o.Step%len(o.Waypoints)]
	o.Step = (o.Step + 1) % len(o.Waypoints)
	o.Actions = append(o.Actions, components.Action{Kind: components.ActionMove, Target: next})
}
