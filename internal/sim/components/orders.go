package components

import (
	"slices"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ledger"
)

// OrderKind tags an order. Kinds without a registered handler hold.
type OrderKind string

const (
	OrderMove     OrderKind = "move"
	OrderTrade    OrderKind = "trade"
	OrderMine     OrderKind = "mine"
	OrderDock     OrderKind = "dock"
	OrderPatrol   OrderKind = "patrol"
	OrderAttack   OrderKind = "attack"
	OrderEscort   OrderKind = "escort"
	OrderFollow   OrderKind = "follow"
	OrderHold     OrderKind = "hold"
	OrderTeleport OrderKind = "teleport"
)

// ActionKind tags an action.
type ActionKind string

const (
	ActionMove     ActionKind = "move"
	ActionDock     ActionKind = "dock"
	ActionUndock   ActionKind = "undock"
	ActionTeleport ActionKind = "teleport"
	ActionTransact ActionKind = "transact"
	ActionAttack   ActionKind = "attack"
	ActionMine     ActionKind = "mine"
)

// TradeRole says which side of a transaction the acting entity is on.
type TradeRole string

const (
	RoleBuyer  TradeRole = "buyer"
	RoleSeller TradeRole = "seller"
)

// Action is one step of an order.
type Action struct {
	Kind        ActionKind   `json:"kind" yaml:"kind"`
	Target      ecs.EntityID `json:"target,omitempty" yaml:"target,omitempty"`
	Transaction string       `json:"transaction,omitempty" yaml:"transaction,omitempty"`
	Role        TradeRole    `json:"role,omitempty" yaml:"role,omitempty"`
}

// Order is a long running behavior made of actions. Only the fields its kind
// uses are set.
type Order struct {
	Kind      OrderKind      `json:"kind"`
	Actions   []Action       `json:"actions"`
	Interrupt bool           `json:"interrupt,omitempty"`
	Target    ecs.EntityID   `json:"target,omitempty"`
	Waypoints []ecs.EntityID `json:"waypoints,omitempty"`
	Step      int            `json:"step,omitempty"`

	// trade orders
	Transaction string       `json:"transaction,omitempty"`
	Wares       ledger.Cargo `json:"wares,omitempty"`
}

// References reports whether the order or any of its actions targets id.
func (o *Order) References(id ecs.EntityID) bool {
	if o.Target == id || slices.Contains(o.Waypoints, id) {
		return true
	}
	return slices.ContainsFunc(o.Actions, func(a Action) bool { return a.Target == id })
}

// Orders is the order queue of an entity. The first order is the active one.
type Orders struct {
	Queue []*Order `json:"queue"`
}

func (*Orders) Kind() ecs.Kind { return KindOrders }

// Active returns the first order.
func (o *Orders) Active() (*Order, bool) {
	if len(o.Queue) == 0 {
		return nil, false
	}
	return o.Queue[0], true
}

func (o *Orders) Push(orders ...*Order) { o.Queue = append(o.Queue, orders...) }

// Insert puts order at index i, clamped to the queue bounds.
func (o *Orders) Insert(i int, order *Order) {
	i = max(0, min(i, len(o.Queue)))
	o.Queue = slices.Insert(o.Queue, i, order)
}

// Remove drops order from the queue and reports whether it was queued.
func (o *Orders) Remove(order *Order) bool {
	i := slices.Index(o.Queue, order)
	if i < 0 {
		return false
	}
	o.Queue = slices.Delete(o.Queue, i, i+1)
	return true
}

func (o *Orders) Contains(order *Order) bool { return slices.Contains(o.Queue, order) }

func (o *Orders) Clear() { o.Queue = nil }
