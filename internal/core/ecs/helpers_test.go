package ecs

import (
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/events/bus"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/observability/log"
)

const (
	kindPosition Kind = "position"
	kindDrive    Kind = "drive"
	kindBudget   Kind = "budget"
	kindName     Kind = "name"
	kindRuntime  Kind = "runtime"
)

type position struct {
	X, Y   float64
	Sector EntityID
}

func (*position) Kind() Kind { return kindPosition }

type drive struct {
	Speed float64
}

func (*drive) Kind() Kind { return kindDrive }

type budget struct {
	Money float64
}

func (*budget) Kind() Kind { return kindBudget }

type name struct {
	Value string
}

func (*name) Kind() Kind { return kindName }

// runtime has no constructor and cannot be restored.
type runtime struct {
	Handle func() `json:"-"`
}

func (*runtime) Kind() Kind { return kindRuntime }

func testRegistry() *Registry {
	return NewRegistry(0,
		Definition{Kind: kindPosition, New: func() Component { return &position{} }},
		Definition{Kind: kindDrive, New: func() Component { return &drive{} }},
		Definition{Kind: kindBudget, New: func() Component { return &budget{} }},
		Definition{Kind: kindName, New: func() Component { return &name{} }},
		Definition{Kind: kindRuntime},
	)
}

func testWorld() *World {
	return NewWorld(testRegistry(), bus.New(), log.NewNop())
}

// recorder captures the type of every lifecycle event in delivery order.
type recorder struct {
	events []string
}

func record(w *World) *recorder {
	r := &recorder{}
	for _, t := range []string{
		EventEntityAdded, EventEntityRemoved,
		EventComponentAdded, EventComponentRemoved,
		EventTagAdded, EventTagRemoved, EventPartitionChanged,
	} {
		_, _ = w.Bus().Subscribe(t, func(e bus.Event) error {
			r.events = append(r.events, e.Type())
			return nil
		})
	}
	return r
}
