// Package orders runs the order queues of entities. Each tick the active order
// of every entity gets a chance to update its actions, its first action is
// executed, and finished orders are popped.
package orders

import (
	"fmt"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/observability/log"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/components"
)

// Context is handed to every handler during a tick.
type Context struct {
	World  *ecs.World
	Logger log.Log
	// DT is the scaled elapsed time of the tick in seconds.
	DT float64
}

// Entity returns a live entity.
func (c *Context) Entity(id ecs.EntityID) (*ecs.Entity, bool) {
	if id == 0 {
		return nil, false
	}
	return c.World.Entity(id)
}

// ActionFunc executes one step of an action and reports whether it is done. An
// error means the step did not complete; it is retried on the next tick.
type ActionFunc func(ctx *Context, e *ecs.Entity, a *components.Action) (bool, error)

// OrderHandler holds the order-level hooks of one order kind. Nil hooks are
// skipped; a nil IsCompleted means the order completes once its actions are
// done.
type OrderHandler struct {
	Exec        func(ctx *Context, e *ecs.Entity, o *components.Order)
	IsCompleted func(ctx *Context, e *ecs.Entity, o *components.Order) bool
	OnCompleted func(ctx *Context, e *ecs.Entity, o *components.Order)
}

func (h OrderHandler) exec(ctx *Context, e *ecs.Entity, o *components.Order) {
	if h.Exec != nil {
		h.Exec(ctx, e, o)
	}
}

func (h OrderHandler) isCompleted(ctx *Context, e *ecs.Entity, o *components.Order) bool {
	if h.IsCompleted == nil {
		return true
	}
	return h.IsCompleted(ctx, e, o)
}

func (h OrderHandler) onCompleted(ctx *Context, e *ecs.Entity, o *components.Order) {
	if h.OnCompleted != nil {
		h.OnCompleted(ctx, e, o)
	}
}

// holdHandler never completes. Unknown order kinds behave like it.
var holdHandler = OrderHandler{
	IsCompleted: func(*Context, *ecs.Entity, *components.Order) bool { return false },
}

// noopAction is never done. Unknown action kinds behave like it.
func noopAction(*Context, *ecs.Entity, *components.Action) (bool, error) { return false, nil }

// Registry maps order and action kinds to their handlers.
type Registry struct {
	orders  map[components.OrderKind]OrderHandler
	actions map[components.ActionKind]ActionFunc
}

func NewRegistry() *Registry {
	return &Registry{
		orders:  make(map[components.OrderKind]OrderHandler),
		actions: make(map[components.ActionKind]ActionFunc),
	}
}

// RegisterOrder installs h for kind, replacing any previous handler.
func (r *Registry) RegisterOrder(kind components.OrderKind, h OrderHandler) {
	if kind == "" {
		panic("orders: empty order kind")
	}
	r.orders[kind] = h
}

// RegisterAction installs fn for kind, replacing any previous handler.
func (r *Registry) RegisterAction(kind components.ActionKind, fn ActionFunc) {
	if kind == "" || fn == nil {
		panic(fmt.Sprintf("orders: invalid action registration %q", kind))
	}
	r.actions[kind] = fn
}

func (r *Registry) Order(kind components.OrderKind) (OrderHandler, bool) {
	h, ok := r.orders[kind]
	return h, ok
}

func (r *Registry) Action(kind components.ActionKind) (ActionFunc, bool) {
	fn, ok := r.actions[kind]
	return fn, ok
}
