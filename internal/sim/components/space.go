package components

import (
	"math"
	"slices"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
)

// Position places an entity in a sector. Changing Sector must be followed by
// World.NotifyPartitionChanged.
type Position struct {
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Sector ecs.EntityID `json:"sector"`
}

func (*Position) Kind() ecs.Kind { return KindPosition }

// Distance is the euclidean distance to o. Positions in different sectors are
// infinitely far apart.
func (p *Position) Distance(o *Position) float64 {
	if p.Sector != o.Sector {
		return math.Inf(1)
	}
	return math.Hypot(o.X-p.X, o.Y-p.Y)
}

// Drive moves an entity at MaxSpeed units per second. A move is finished
// within ArrivalRadius of its target.
type Drive struct {
	MaxSpeed      float64 `json:"maxSpeed"`
	ArrivalRadius float64 `json:"arrivalRadius"`
}

func (*Drive) Kind() ecs.Kind { return KindDrive }

// Docks are the landing pads of a facility.
type Docks struct {
	Pads   int            `json:"pads"`
	Docked []ecs.EntityID `json:"docked"`
}

func (*Docks) Kind() ecs.Kind { return KindDocks }

func (d *Docks) Free() int { return d.Pads - len(d.Docked) }

func (d *Docks) Has(id ecs.EntityID) bool { return slices.Contains(d.Docked, id) }

// Detach removes id from the docked list and reports whether it was there.
func (d *Docks) Detach(id ecs.EntityID) bool {
	i := slices.Index(d.Docked, id)
	if i < 0 {
		return false
	}
	d.Docked = slices.Delete(d.Docked, i, i+1)
	return true
}

// Dockable is carried by entities able to dock. DockedAt is zero when free.
type Dockable struct {
	DockedAt ecs.EntityID `json:"dockedAt,omitempty"`
}

func (*Dockable) Kind() ecs.Kind { return KindDockable }
