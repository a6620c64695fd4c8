package orders

import (
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/events/bus"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/observability/log"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/query"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/systems"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/components"
)

type Options struct {
	Registry   *Registry
	SpeedScale float64
}

type Option func(*Options)

// WithRegistry replaces the built-in handler table.
func WithRegistry(r *Registry) Option {
	return func(o *Options) { o.Registry = r }
}

// WithSpeedScale multiplies the elapsed time handed to handlers.
func WithSpeedScale(scale float64) Option {
	return func(o *Options) { o.SpeedScale = scale }
}

// System executes order queues and cleans up after removed entities.
type System struct {
	world      *ecs.World
	ix         *query.Indexer
	queues     *query.Query
	registry   *Registry
	speedScale float64
	logger     log.Log

	unknownOrders  map[components.OrderKind]struct{}
	unknownActions map[components.ActionKind]struct{}
	sub            bus.Subscription
}

// NewSystem builds the order system on top of the indexer and query cache of
// a world, and subscribes its cleanup to entity removal. The cleanup must be
// subscribed after the indexer and the cache so it observes up to date views.
func NewSystem(ix *query.Indexer, cache *query.Cache, opts ...Option) (*System, error) {
	o := Options{SpeedScale: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Registry == nil {
		o.Registry = NewRegistry()
		RegisterBuiltins(o.Registry)
	}

	w := ix.World()
	s := &System{
		world:          w,
		ix:             ix,
		queues:         cache.Get([]ecs.Kind{components.KindOrders}),
		registry:       o.Registry,
		speedScale:     o.SpeedScale,
		logger:         w.Logger().With(log.String("system", "orders")),
		unknownOrders:  make(map[components.OrderKind]struct{}),
		unknownActions: make(map[components.ActionKind]struct{}),
	}
	sub, err := bus.On(w.Bus(), ecs.EventEntityRemoved, s.cleanup)
	if err != nil {
		return nil, err
	}
	s.sub = sub
	return s, nil
}

// Close unsubscribes the cleanup.
func (s *System) Close() {
	if s.sub != nil {
		_ = s.sub.Cancel()
		s.sub = nil
	}
}

func (s *System) context(dt float64) *Context {
	return &Context{World: s.world, Logger: s.logger, DT: dt * s.speedScale}
}

func (s *System) Name() string               { return "orders" }
func (s *System) Priority() systems.Priority { return systems.PriorityNormal }

// Update is Exec for the scheduler.
func (s *System) Update(dt float64) error {
	s.Exec(dt)
	return nil
}

// Exec advances the order queue of every entity holding one by a step of dt
// seconds.
func (s *System) Exec(dt float64) {
	ctx := s.context(dt)
	for _, e := range s.queues.Entities() {
		if e.Deleted() {
			continue
		}
		s.step(ctx, e)
	}
}

func (s *System) step(ctx *Context, e *ecs.Entity) {
	queue, ok := ecs.Get[*components.Orders](e)
	if !ok {
		return
	}
	order, ok := queue.Active()
	if !ok {
		return
	}
	h := s.orderHandler(order.Kind)
	h.exec(ctx, e, order)

	if len(order.Actions) > 0 {
		action := order.Actions[0]
		done, err := s.actionHandler(action.Kind)(ctx, e, &order.Actions[0])
		if err != nil {
			s.logger.Warn("action did not complete",
				log.Entity(uint64(e.ID())), log.String("action", string(action.Kind)), log.Error(err))
		}
		if done && len(order.Actions) > 0 && sameAction(order.Actions[0], action) {
			order.Actions = order.Actions[1:]
		}
	}

	// handlers may have removed the entity or pruned the order
	if e.Deleted() || !queue.Contains(order) {
		return
	}
	if len(order.Actions) == 0 && h.isCompleted(ctx, e, order) {
		queue.Remove(order)
		h.onCompleted(ctx, e, order)
		return
	}
	if order.Interrupt {
		queue.Remove(order)
		queue.Insert(1, order)
		h.onCompleted(ctx, e, order)
		order.Interrupt = false
	}
}

func sameAction(a, b components.Action) bool {
	return a.Kind == b.Kind && a.Target == b.Target
}

// Cancel drops every order of e, running the completion hook of each so that
// resources held by the orders are released.
func (s *System) Cancel(e *ecs.Entity) {
	queue, ok := ecs.Get[*components.Orders](e)
	if !ok {
		return
	}
	ctx := s.context(0)
	pending := queue.Queue
	queue.Clear()
	for _, o := range pending {
		s.orderHandler(o.Kind).onCompleted(ctx, e, o)
	}
}

func (s *System) orderHandler(kind components.OrderKind) OrderHandler {
	if h, ok := s.registry.Order(kind); ok {
		return h
	}
	if _, seen := s.unknownOrders[kind]; !seen {
		s.unknownOrders[kind] = struct{}{}
		s.logger.Debug("unknown order kind, holding", log.String("order", string(kind)))
	}
	return holdHandler
}

func (s *System) actionHandler(kind components.ActionKind) ActionFunc {
	if fn, ok := s.registry.Action(kind); ok {
		return fn
	}
	if _, seen := s.unknownActions[kind]; !seen {
		s.unknownActions[kind] = struct{}{}
		s.logger.Debug("unknown action kind, ignoring", log.String("action", string(kind)))
	}
	return noopAction
}
