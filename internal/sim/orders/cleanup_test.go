package orders

import (
	"testing"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ledger"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/components"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type market struct {
	env     env
	sector  *ecs.Entity
	trader  *ecs.Entity
	station *ecs.Entity
}

func newMarket(t *testing.T) market {
	env := newEnv(t)
	s := env.sector()
	trader := env.ship(s.ID(), 0, 0, 10)
	trader.AddComponent(components.NewBudget(100))
	trader.AddComponent(components.NewStorage(50))

	station := env.station(s.ID(), 30, 0, 2)
	station.AddComponent(components.NewBudget(0))
	stock := components.NewStorage(500)
	require.NoError(t, stock.Put(ledger.Cargo{"ore": 40}))
	station.AddComponent(stock)
	return market{env: env, sector: s, trader: trader, station: station}
}

func (m market) arrange(t *testing.T, units int, price float64) trade.Deal {
	t.Helper()
	deal, err := trade.Arrange(m.env.w, trade.Offer{
		Buyer:  m.trader.ID(),
		Seller: m.station.ID(),
		Wares:  ledger.Cargo{"ore": units},
		Price:  price,
	})
	require.NoError(t, err)
	return deal
}

func TestTradeOrderSettles(t *testing.T) {
	m := newMarket(t)
	deal := m.arrange(t, 30, 90)
	Give(m.trader, Trade(deal, m.trader.ID()))

	m.env.runUntilIdle(t, m.trader, 1, 20)

	assert.Equal(t, ledger.Cargo{"ore": 30}, ecs.MustGet[*components.Storage](m.trader).Stored())
	assert.Equal(t, 10.0, ecs.MustGet[*components.Budget](m.trader).Total())
	assert.Equal(t, 90.0, ecs.MustGet[*components.Budget](m.station).Total())
	assert.Zero(t, ecs.MustGet[*components.Dockable](m.trader).DockedAt, "undocked after the exchange")
	assert.Empty(t, ecs.MustGet[*components.Docks](m.station).Docked)
}

func TestCancelledTradeOrderReleasesReservations(t *testing.T) {
	m := newMarket(t)
	deal := m.arrange(t, 30, 90)
	Give(m.trader, Trade(deal, m.trader.ID()))
	m.env.tick(1)

	m.env.sys.Cancel(m.trader)
	assert.Equal(t, 100.0, ecs.MustGet[*components.Budget](m.trader).Available())
	assert.Equal(t, ledger.Cargo{"ore": 40}, ecs.MustGet[*components.Storage](m.station).Wares.Available())
}

func TestCleanupOnRemoval(t *testing.T) {
	m := newMarket(t)
	env := m.env
	s := m.sector.ID()

	deal := m.arrange(t, 10, 30)
	Give(m.trader, Trade(deal, m.trader.ID()))

	follower := env.ship(s, 0, 5, 1)
	Give(follower, Follow(m.station.ID()))
	bystander := env.ship(s, 0, 9, 1)
	hold := Hold()
	Give(bystander, hold, Attack(m.station.ID()), DockAt(m.station.ID()))

	guest := env.ship(s, 30, 0, 1)
	Give(guest, DockAt(m.station.ID()))
	env.tick(1)
	env.tick(1)
	require.Equal(t, m.station.ID(), ecs.MustGet[*components.Dockable](guest).DockedAt)

	turret := env.w.Create(&components.Parent{ID: m.station.ID()}, &components.Hitpoints{HP: 10, Max: 10})
	mount := env.w.Create(&components.Parent{ID: turret.ID()})

	m.station.Unregister("destroyed")

	// allocations on both sides of the transaction are gone
	assert.Zero(t, ecs.MustGet[*components.Budget](m.trader).Len())
	assert.Zero(t, ecs.MustGet[*components.Storage](m.trader).Space.Len())
	assert.Equal(t, 100.0, ecs.MustGet[*components.Budget](m.trader).Available())

	// no surviving order references the station
	for _, e := range env.w.Entities() {
		if q, ok := ecs.Get[*components.Orders](e); ok {
			for _, o := range q.Queue {
				assert.False(t, o.References(m.station.ID()), "entity %d still targets the station", e.ID())
			}
		}
	}
	assert.Empty(t, queueOf(m.trader))
	assert.Empty(t, queueOf(follower))
	assert.Equal(t, []*components.Order{hold}, queueOf(bystander))

	assert.Zero(t, ecs.MustGet[*components.Dockable](guest).DockedAt)
	assert.True(t, turret.Deleted())
	assert.True(t, mount.Deleted(), "removal cascades through children")
	assert.Zero(t, env.ix.Len()-len(env.w.Entities()))
}

func TestCleanupCompletesOnlyTheActiveOrder(t *testing.T) {
	var completed []*components.Order
	r := NewRegistry()
	RegisterBuiltins(r)
	r.RegisterOrder("wait", OrderHandler{
		OnCompleted: func(_ *Context, _ *ecs.Entity, o *components.Order) { completed = append(completed, o) },
	})
	env := newEnv(t, WithRegistry(r))
	target := env.w.Create()
	e := env.w.Create()
	first := &components.Order{Kind: "wait", Target: target.ID()}
	second := &components.Order{Kind: "wait", Target: target.ID()}
	tail := Hold()
	Give(e, first, second, tail)

	target.Unregister("destroyed")
	assert.Equal(t, []*components.Order{first}, completed)
	assert.Equal(t, []*components.Order{tail}, queueOf(e))
}

func TestCleanupReleasesCounterpartyOfRemovedBuyer(t *testing.T) {
	m := newMarket(t)
	m.arrange(t, 10, 30)
	m.trader.Unregister("destroyed")
	assert.Equal(t, ledger.Cargo{"ore": 40}, ecs.MustGet[*components.Storage](m.station).Wares.Available())
	assert.Zero(t, ecs.MustGet[*components.Storage](m.station).Wares.Len())
}

func TestMoveToPointDisposesMarker(t *testing.T) {
	env := newEnv(t)
	s := env.sector()
	ship := env.ship(s.ID(), 0, 0, 100)
	o := MoveToPoint(ship, 5, 5, s.ID())
	marker := env.w.MustEntity(o.Target)

	env.tick(1)
	assert.Empty(t, queueOf(ship))
	assert.True(t, marker.Deleted())

	other := MoveToPoint(ship, 9, 9, s.ID())
	marker = env.w.MustEntity(other.Target)
	ship.Unregister("destroyed")
	assert.True(t, marker.Deleted(), "markers go with their owner")
}

func TestInterruptedMoveKeepsMarker(t *testing.T) {
	env := newEnv(t)
	s := env.sector()
	ship := env.ship(s.ID(), 0, 0, 1)
	o := MoveToPoint(ship, 100, 0, s.ID())
	InterruptWith(ship, Hold())

	env.tick(1)
	require.Len(t, queueOf(ship), 2)
	assert.Same(t, o, queueOf(ship)[1])
	_, alive := env.w.Entity(o.Target)
	assert.True(t, alive)
}

func TestAttackDestroysTarget(t *testing.T) {
	env := newEnv(t)
	s := env.sector()
	attacker := env.ship(s.ID(), 0, 0, 10)
	attacker.AddComponent(&components.Weapon{Damage: 60, Range: 5, Cooldown: 1})
	target := env.ship(s.ID(), 20, 0, 0)
	target.AddComponent(&components.Hitpoints{HP: 100, Max: 100})
	turret := env.w.Create(&components.Parent{ID: target.ID()})
	Give(attacker, Attack(target.ID()))

	env.tick(1) // closes in to range
	assert.Equal(t, 100.0, ecs.MustGet[*components.Hitpoints](target).HP)
	env.tick(1)
	assert.Equal(t, 40.0, ecs.MustGet[*components.Hitpoints](target).HP)
	env.tick(0.5)
	assert.Equal(t, 40.0, ecs.MustGet[*components.Hitpoints](target).HP, "weapon cooling down")
	env.tick(0.5)

	assert.True(t, target.Deleted())
	assert.True(t, turret.Deleted())
	assert.Empty(t, queueOf(attacker))
}

func TestMineFillsStorage(t *testing.T) {
	env := newEnv(t)
	s := env.sector()
	field := env.w.Create(
		&components.Position{X: 3, Sector: s.ID()},
		&components.Mineable{Commodity: "ore", Remaining: 100},
	)
	miner := env.ship(s.ID(), 0, 0, 10)
	miner.AddComponent(&components.Mining{Rate: 4, Range: 5})
	miner.AddComponent(components.NewStorage(10))
	Give(miner, Mine(field.ID()))

	ticks := env.runUntilIdle(t, miner, 1, 10)
	assert.Equal(t, 3, ticks)
	assert.Equal(t, ledger.Cargo{"ore": 10}, ecs.MustGet[*components.Storage](miner).Stored())
	assert.Equal(t, 90, ecs.MustGet[*components.Mineable](field).Remaining)
}
