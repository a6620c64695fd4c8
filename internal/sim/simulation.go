// Package sim assembles the simulation: component registry, world, indices
// and the order system, advanced one tick at a time by Tick.
package sim

import (
	"errors"
	"fmt"
	"os"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/config"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/events/bus"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/observability/log"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/query"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/systems"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/components"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/orders"
)

var ErrUnknownTemplate = errors.New("unknown order template")

// Simulation owns one world and everything indexing or driving it. It is not
// safe for concurrent use; all calls belong to the goroutine running the ticks.
type Simulation struct {
	World     *ecs.World
	Indexer   *query.Indexer
	Cache     *query.Cache
	Orders    *orders.System
	Systems   *systems.Scheduler
	Templates map[string]orders.Template

	logger log.Log
	subs   []bus.Subscription
}

// New builds an empty simulation. Subscribers are attached in a fixed order:
// ledger owner binding, indexer, query cache, then order cleanup. Each tick
// runs cooldowns before orders.
func New(cfg config.SimulationConfig, logger log.Log) (*Simulation, error) {
	w := ecs.NewWorld(components.NewRegistry(cfg.MaskWidth), bus.New(), logger)
	s := &Simulation{
		World:     w,
		Systems:   systems.NewScheduler(),
		Templates: map[string]orders.Template{},
		logger:    logger.With(log.String("component", "simulation")),
	}

	if err := s.bindOwners(); err != nil {
		return nil, err
	}

	ix, err := query.NewIndexer(w, components.SectorOf)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("indexer: %w", err)
	}
	s.Indexer = ix

	cache, err := query.NewCache(ix)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("query cache: %w", err)
	}
	s.Cache = cache

	system, err := orders.NewSystem(ix, cache, orders.WithSpeedScale(cfg.SpeedScale))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("order system: %w", err)
	}
	s.Orders = system

	for _, sys := range []systems.System{
		systems.Func("cooldowns", systems.PriorityHighest, s.tickCooldowns),
		system,
	} {
		if err := s.Systems.Register(sys); err != nil {
			s.Close()
			return nil, err
		}
	}

	if cfg.Templates != "" {
		if err := s.loadTemplates(cfg.Templates); err != nil {
			s.Close()
			return nil, err
		}
	}

	s.logger.Info("simulation ready",
		log.Int("kinds", w.Registry().Len()),
		log.Int("mask_width", w.Registry().Width()),
		log.Int("templates", len(s.Templates)),
	)
	return s, nil
}

func (s *Simulation) loadTemplates(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open templates: %w", err)
	}
	defer f.Close()

	templates, err := orders.LoadTemplates(f)
	if err != nil {
		return fmt.Errorf("load templates %s: %w", path, err)
	}
	s.Templates = templates
	return nil
}

// bindOwners points the ledgers of budget and storage components at the
// entity holding them, whichever way the component got attached.
func (s *Simulation) bindOwners() error {
	b := s.World.Bus()
	added, err := bus.On(b, ecs.EventEntityAdded, func(ev ecs.EntityAdded) error {
		bindLedgers(ev.Entity)
		return nil
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, added)

	attached, err := bus.On(b, ecs.EventComponentAdded, func(ev ecs.ComponentAdded) error {
		if ev.Kind == components.KindBudget || ev.Kind == components.KindStorage {
			bindLedgers(ev.Entity)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, attached)
	return nil
}

func bindLedgers(e *ecs.Entity) {
	if b, ok := ecs.Get[*components.Budget](e); ok {
		b.SetOwner(e.ID())
	}
	if st, ok := ecs.Get[*components.Storage](e); ok {
		st.SetOwner(e.ID())
	}
}

// Tick advances the clock and runs every scheduled system by dt seconds. It
// returns the new tick.
func (s *Simulation) Tick(dt float64) int64 {
	tick := s.World.Advance()
	if err := s.Systems.Update(dt); err != nil {
		s.logger.Warn("tick", log.Int64("tick", tick), log.Error(err))
	}
	return tick
}

func (s *Simulation) tickCooldowns(dt float64) error {
	for _, e := range s.World.Entities() {
		e.Cooldowns().Tick(dt)
	}
	return nil
}

// Issue builds the named template against target and queues it on e.
func (s *Simulation) Issue(e *ecs.Entity, template string, target ecs.EntityID) (*components.Order, error) {
	t, ok := s.Templates[template]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, template)
	}
	o := t.Build(target)
	orders.Give(e, o)
	return o, nil
}

// Close detaches every subscriber from the world bus.
func (s *Simulation) Close() {
	if s.Orders != nil {
		s.Orders.Close()
	}
	if s.Cache != nil {
		s.Cache.Close()
	}
	if s.Indexer != nil {
		s.Indexer.Close()
	}
	for _, sub := range s.subs {
		_ = sub.Cancel()
	}
	s.subs = nil
}
