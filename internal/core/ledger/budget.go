package ledger

import "github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"

// Budget is the money ledger of an entity.
type Budget = Ledger[float64]

// NewBudget builds a budget holding money. It fails on negative or non-finite
// money.
func NewBudget(owner ecs.EntityID, money float64) (*Budget, error) {
	if err := (Money{}).Validate(money); err != nil {
		return nil, opError("new budget", 0, err)
	}
	return New[float64](Money{}, owner, money)
}
