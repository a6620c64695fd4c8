package server

import (
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/query"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/components"
)

// EntityView is what renderers get to see of an entity.
type EntityView struct {
	ID    ecs.EntityID `json:"id"`
	X     float64      `json:"x"`
	Y     float64      `json:"y"`
	Name  string       `json:"name,omitempty"`
	Kinds []string     `json:"kinds"`
	Tags  []string     `json:"tags,omitempty"`
}

// Frame is the state of one sector at one tick.
type Frame struct {
	Tick     int64        `json:"tick"`
	Sector   ecs.EntityID `json:"sector"`
	Label    string       `json:"label,omitempty"`
	Entities []EntityView `json:"entities"`
}

// BuildFrames renders every sector known to the indexer. It reads the world
// and must run on the simulation goroutine.
func BuildFrames(ix *query.Indexer) []Frame {
	w := ix.World()
	reg := w.Registry()
	sectors := ix.Search([]ecs.Kind{components.KindSector}).Collect()
	frames := make([]Frame, 0, len(sectors))
	for _, s := range sectors {
		f := Frame{
			Tick:     w.Tick(),
			Sector:   s.ID(),
			Label:    ecs.MustGet[*components.Sector](s).Label,
			Entities: []EntityView{},
		}
		ix.SearchByPartition(s.ID(), []ecs.Kind{components.KindPosition}).Each(func(e *ecs.Entity) {
			pos := ecs.MustGet[*components.Position](e)
			v := EntityView{ID: e.ID(), X: pos.X, Y: pos.Y, Kinds: reg.Names(e.Mask()), Tags: e.Tags()}
			if n, ok := ecs.Get[*components.Name](e); ok {
				v.Name = n.Value
			}
			f.Entities = append(f.Entities, v)
		})
		frames = append(frames, f)
	}
	return frames
}
