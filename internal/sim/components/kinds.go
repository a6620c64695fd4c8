// Package components declares the component kinds of the simulation. Their
// declaration order in Definitions fixes the mask bit of each kind.
package components

import (
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ledger"
)

const (
	KindName       ecs.Kind = "name"
	KindSector     ecs.Kind = "sector"
	KindPosition   ecs.Kind = "position"
	KindDrive      ecs.Kind = "drive"
	KindBudget     ecs.Kind = "budget"
	KindStorage    ecs.Kind = "storage"
	KindDocks      ecs.Kind = "docks"
	KindDockable   ecs.Kind = "dockable"
	KindOrders     ecs.Kind = "orders"
	KindParent     ecs.Kind = "parent"
	KindDisposable ecs.Kind = "disposable"
	KindHitpoints  ecs.Kind = "hitpoints"
	KindWeapon     ecs.Kind = "weapon"
	KindMining     ecs.Kind = "mining"
	KindMineable   ecs.Kind = "mineable"
)

// Definitions lists every kind in bit order.
func Definitions() []ecs.Definition {
	return []ecs.Definition{
		{Kind: KindName, New: func() ecs.Component { return &Name{} }},
		{Kind: KindSector, New: func() ecs.Component { return &Sector{} }},
		{Kind: KindPosition, New: func() ecs.Component { return &Position{} }},
		{Kind: KindDrive, New: func() ecs.Component { return &Drive{} }},
		{Kind: KindBudget, New: func() ecs.Component { return NewBudget(0) }},
		{Kind: KindStorage, New: func() ecs.Component { return NewStorage(0) }},
		{Kind: KindDocks, New: func() ecs.Component { return &Docks{} }},
		{Kind: KindDockable, New: func() ecs.Component { return &Dockable{} }},
		{Kind: KindOrders, New: func() ecs.Component { return &Orders{} }},
		{Kind: KindParent, New: func() ecs.Component { return &Parent{} }},
		{Kind: KindDisposable, New: func() ecs.Component { return &Disposable{} }},
		{Kind: KindHitpoints, New: func() ecs.Component { return &Hitpoints{} }},
		{Kind: KindWeapon, New: func() ecs.Component { return &Weapon{} }},
		{Kind: KindMining, New: func() ecs.Component { return &Mining{} }},
		{Kind: KindMineable, New: func() ecs.Component { return &Mineable{} }},
	}
}

// NewRegistry builds the registry of all simulation kinds.
func NewRegistry(width int) *ecs.Registry {
	return ecs.NewRegistry(width, Definitions()...)
}

// SectorOf is the partition function of the simulation: positioned entities
// are partitioned by the sector they are in.
func SectorOf(e *ecs.Entity) (ecs.EntityID, bool) {
	p, ok := ecs.Get[*Position](e)
	if !ok {
		return 0, false
	}
	return p.Sector, true
}

type Name struct {
	Value string `json:"value"`
}

func (*Name) Kind() ecs.Kind { return KindName }

// Sector marks an entity as a spatial partition.
type Sector struct {
	Label string `json:"label"`
}

func (*Sector) Kind() ecs.Kind { return KindSector }

// Parent ties an entity to the one it is mounted on. Children are unregistered
// together with their parent.
type Parent struct {
	ID ecs.EntityID `json:"id"`
}

func (*Parent) Kind() ecs.Kind { return KindParent }

// Disposable marks a transient entity created to serve Owner's orders.
type Disposable struct {
	Owner ecs.EntityID `json:"owner"`
}

func (*Disposable) Kind() ecs.Kind { return KindDisposable }

type Hitpoints struct {
	HP  float64 `json:"hp"`
	Max float64 `json:"max"`
}

func (*Hitpoints) Kind() ecs.Kind { return KindHitpoints }

// Weapon deals Damage per shot at targets within Range, at most once per
// Cooldown seconds.
type Weapon struct {
	Damage   float64 `json:"damage"`
	Range    float64 `json:"range"`
	Cooldown float64 `json:"cooldown"`
}

func (*Weapon) Kind() ecs.Kind { return KindWeapon }

// Mining extracts Rate units per second. Progress carries the fractional unit
// between ticks.
type Mining struct {
	Rate     float64 `json:"rate"`
	Range    float64 `json:"range"`
	Progress float64 `json:"progress"`
}

func (*Mining) Kind() ecs.Kind { return KindMining }

// Mineable is a resource field.
type Mineable struct {
	Commodity ledger.Commodity `json:"commodity"`
	Remaining int              `json:"remaining"`
}

func (*Mineable) Kind() ecs.Kind { return KindMineable }
