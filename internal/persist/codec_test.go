package persist

import (
	"bytes"
	"context"
	"testing"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/events/bus"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ledger"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/observability/log"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/query"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/components"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorld() *ecs.World {
	return ecs.NewWorld(components.NewRegistry(0), bus.New(), log.NewNop())
}

func populate(t *testing.T, w *ecs.World) (ship, station *ecs.Entity) {
	t.Helper()
	sector := w.Create(&components.Sector{Label: "alpha"})
	budget := components.NewBudget(250)
	_, err := budget.Reserve(ledger.Request[float64]{Amount: 50, Meta: ledger.Meta{Transaction: "tx", Counterparty: 3}}, nil)
	require.NoError(t, err)
	ship = w.Create(
		&components.Position{X: 1, Y: 2, Sector: sector.ID()},
		&components.Drive{MaxSpeed: 3},
		budget,
		&components.Orders{Queue: []*components.Order{{Kind: components.OrderMove, Target: 3, Actions: []components.Action{{Kind: components.ActionMove, Target: 3}}}}},
	)
	ship.AddTag("trader")
	ship.Cooldowns().Use("weapon", 2)

	storage := components.NewStorage(100)
	require.NoError(t, storage.Put(ledger.Cargo{"ore": 12}))
	station = w.Create(&components.Position{Sector: sector.ID()}, &components.Docks{Pads: 2}, storage)
	for i := 0; i < 20; i++ {
		w.Create(&components.Name{Value: "debris"}, &components.Position{Sector: sector.ID()})
	}
	w.Advance()
	w.Advance()
	return ship, station
}

func TestCaptureEncodeLoad(t *testing.T) {
	src := newWorld()
	ship, station := populate(t, src)

	snap, err := Capture(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, snap.Entities, src.Len())
	assert.Equal(t, int64(2), snap.Tick)
	for i := 1; i < len(snap.Entities); i++ {
		require.Less(t, snap.Entities[i-1].ID, snap.Entities[i].ID)
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, snap))
	decoded, err := Decode(&buf)
	require.NoError(t, err)

	dst := newWorld()
	ix, err := query.NewIndexer(dst, components.SectorOf)
	require.NoError(t, err)
	require.NoError(t, Load(dst, decoded))

	assert.Equal(t, src.Len(), dst.Len())
	assert.Equal(t, int64(2), dst.Tick())
	assert.Equal(t, src.Len(), ix.Len(), "restored entities are announced to the indexer")

	got := dst.MustEntity(ship.ID())
	assert.True(t, got.Mask().Equal(ship.Mask()))
	assert.True(t, got.HasTags("trader"))
	assert.Equal(t, 2.0, got.Cooldowns().Remaining("weapon"))
	assert.Equal(t, 200.0, ecs.MustGet[*components.Budget](got).Available())
	q := ecs.MustGet[*components.Orders](got)
	require.Len(t, q.Queue, 1)
	assert.Equal(t, components.OrderMove, q.Queue[0].Kind)

	hold := ecs.MustGet[*components.Storage](dst.MustEntity(station.ID()))
	assert.Equal(t, ledger.Cargo{"ore": 12}, hold.Stored())
	assert.Equal(t, 88, hold.Free())

	fresh := dst.Create()
	assert.Greater(t, fresh.ID(), station.ID(), "ids continue after the restored ones")
}

func TestLoadRejectsDuplicates(t *testing.T) {
	src := newWorld()
	populate(t, src)
	snap, err := Capture(context.Background(), src)
	require.NoError(t, err)
	assert.ErrorIs(t, Load(src, snap), ecs.ErrEntityExists)
}

func TestCaptureHonoursCancellation(t *testing.T) {
	src := newWorld()
	populate(t, src)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Capture(ctx, src)
	assert.ErrorIs(t, err, context.Canceled)
}
