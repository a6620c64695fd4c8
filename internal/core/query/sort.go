package query

import (
	"slices"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
)

func sortByID(entities []*ecs.Entity) {
	slices.SortFunc(entities, func(a, b *ecs.Entity) int {
		switch {
		case a.ID() < b.ID():
			return -1
		case a.ID() > b.ID():
			return 1
		}
		return 0
	})
}
