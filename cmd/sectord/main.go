package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/config"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/observability/log"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/injector"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/persist"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/server"
)

const (
	summaryEvery    = 600
	shutdownTimeout = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", os.Getenv("SECTORD_CONFIG"), "path to a .yaml or .toml config file")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	rt, cleanup, err := injector.InitializeRuntime(cfg)
	if err != nil {
		return fmt.Errorf("build runtime: %w", err)
	}
	defer cleanup()
	logger := rt.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store persist.Store
	if cfg.Database.Enabled {
		pg, err := persist.Open(ctx, cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer pg.Close()
		store = pg

		if err := restore(ctx, rt, store); err != nil {
			return err
		}
	}

	if cfg.Feed.Enabled {
		if err := rt.Feed.Start(ctx); err != nil {
			return fmt.Errorf("start feed: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := rt.Feed.Stop(stopCtx); err != nil {
				logger.Warn("feed shutdown", log.Error(err))
			}
		}()
	}

	snapshots := make(chan persist.WorldSnapshot, 1)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(snapshots)
		return loop(gctx, rt, store != nil, snapshots)
	})
	if store != nil {
		g.Go(func() error {
			return save(gctx, store, snapshots, logger)
		})
	}

	logger.Info("sectord running",
		log.Duration("tick_rate", cfg.Simulation.TickRate),
		log.Bool("feed", cfg.Feed.Enabled),
		log.Bool("database", cfg.Database.Enabled),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if store != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		snap, err := persist.Capture(saveCtx, rt.Simulation.World)
		if err != nil {
			return fmt.Errorf("final snapshot: %w", err)
		}
		if err := store.Save(saveCtx, snap); err != nil {
			return fmt.Errorf("final snapshot: %w", err)
		}
		logger.Info("final snapshot saved", log.Int64("tick", snap.Tick))
	}
	logger.Info("sectord stopped")
	return nil
}

func restore(ctx context.Context, rt *injector.Runtime, store persist.Store) error {
	snap, err := store.Latest(ctx)
	if errors.Is(err, persist.ErrNoSnapshot) {
		rt.Logger.Info("no snapshot stored, starting with an empty world")
		return nil
	}
	if err != nil {
		return fmt.Errorf("latest snapshot: %w", err)
	}
	if err := persist.Load(rt.Simulation.World, snap); err != nil {
		return err
	}
	rt.Logger.Info("world restored",
		log.Int64("tick", snap.Tick),
		log.Int("entities", len(snap.Entities)),
	)
	return nil
}

// loop owns the world: ticks, feed frames and snapshot captures all happen
// on this goroutine.
func loop(ctx context.Context, rt *injector.Runtime, capture bool, snapshots chan<- persist.WorldSnapshot) error {
	cfg := rt.Config
	s := rt.Simulation
	dt := cfg.Simulation.TickRate.Seconds()

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		started := time.Now()
		tick := s.Tick(dt)

		if cfg.Feed.Enabled && tick%int64(cfg.Feed.Every) == 0 {
			if err := rt.Feed.Publish(server.BuildFrames(s.Indexer)); err != nil {
				rt.Logger.Warn("publish feed frames", log.Error(err))
			}
		}

		if capture && cfg.Simulation.SnapshotInterval > 0 && tick%int64(cfg.Simulation.SnapshotInterval) == 0 {
			snap, err := persist.Capture(ctx, s.World)
			if err != nil {
				return err
			}
			select {
			case snapshots <- snap:
			default:
				rt.Logger.Warn("snapshot writer is behind, skipping", log.Int64("tick", tick))
			}
		}

		if tick%summaryEvery == 0 {
			rt.Logger.Info("tick",
				log.Int64("tick", tick),
				log.Int("entities", s.World.Len()),
				log.Duration("took", time.Since(started)),
			)
		}
	}
}

func save(ctx context.Context, store persist.Store, snapshots <-chan persist.WorldSnapshot, logger log.Log) error {
	for snap := range snapshots {
		if err := store.Save(ctx, snap); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("save snapshot", log.Error(err), log.Int64("tick", snap.Tick))
			continue
		}
		logger.Debug("snapshot saved", log.Int64("tick", snap.Tick))
	}
	return nil
}
