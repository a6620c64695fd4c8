package components

import (
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ledger"
)

// Budget holds the money of an entity.
type Budget struct {
	*ledger.Budget
}

func (*Budget) Kind() ecs.Kind { return KindBudget }

// NewBudget panics on invalid money; use ledger.NewBudget to handle the error.
func NewBudget(money float64) *Budget {
	b, err := ledger.NewBudget(0, money)
	if err != nil {
		panic(err)
	}
	return &Budget{Budget: b}
}

// Storage holds the cargo of an entity.
type Storage struct {
	*ledger.Storage
}

func (*Storage) Kind() ecs.Kind { return KindStorage }

func NewStorage(capacity int) *Storage {
	s, err := ledger.NewStorage(0, capacity)
	if err != nil {
		panic(err)
	}
	return &Storage{Storage: s}
}
