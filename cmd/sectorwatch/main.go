package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/observability/log"
	"github.com/sectoralphagame/sector-alpha-sub002/sdk/go/client"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := client.DefaultClientConfig()
	addr := flag.String("addr", cfg.ServerAddr, "feed address")
	sector := flag.Uint64("sector", 0, "sector entity id; omit to list sectors")
	token := flag.String("token", "", "feed access token")
	flag.Parse()

	cfg.ServerAddr = *addr
	cfg.Sector = ecs.EntityID(*sector)
	cfg.Token = *token

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Sector == 0 {
		infos, err := client.Sectors(ctx, cfg)
		if err != nil {
			return err
		}
		for _, info := range infos {
			fmt.Printf("sector %d\tclients=%d\tready=%t\n", info.Sector, info.Clients, info.Ready)
		}
		return nil
	}

	logger := log.NewWithFormat(log.LevelInfo, "console")
	c := client.NewClient(cfg, logger)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer c.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case f, ok := <-c.Frames():
			if !ok {
				return c.Err()
			}
			fmt.Printf("tick %d\t%s\t%d entities\n", f.Tick, f.Label, len(f.Entities))
			for _, e := range f.Entities {
				fmt.Printf("  %6d  %-20s (%8.1f, %8.1f)  %v\n", e.ID, e.Name, e.X, e.Y, e.Kinds)
			}
		}
	}
}
