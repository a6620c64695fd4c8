package injector

import (
	"github.com/google/wire"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/config"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/observability/log"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/server"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim"
)

// Runtime is everything cmd/sectord needs to run a simulation.
type Runtime struct {
	Config     *config.Config
	Logger     log.Log
	Simulation *sim.Simulation
	Feed       *server.Feed
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideSimulation,
	ProvideFeed,
	wire.Struct(new(Runtime), "*"),
)

func ProvideLogger(cfg *config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return log.NewWithFormat(level, cfg.Logging.Format), nil
}

func ProvideSimulation(cfg *config.Config, logger log.Log) (*sim.Simulation, func(), error) {
	s, err := sim.New(cfg.Simulation, logger)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func ProvideFeed(cfg *config.Config, logger log.Log) *server.Feed {
	return server.NewFeed(cfg.Feed, logger)
}
