// Package concurrent runs bounded fan-out work over sequences and slices.
package concurrent

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sectoralphagame/sector-alpha-sub002/pkg/sequence"
)

// ForEach runs action for each element of the iterator with at most limit
// goroutines in flight; limit <= 0 means GOMAXPROCS. The first error cancels
// the context handed to the remaining actions and is returned.
func ForEach[T any](ctx context.Context, it *sequence.Iterator[T], limit int, action func(context.Context, T) error) error {
	return run(ctx, limit, func(g *errgroup.Group, ctx context.Context) {
		for v := range it.Seq() {
			if ctx.Err() != nil {
				return
			}
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				return action(ctx, v)
			})
		}
	})
}

// Indexed is ForEach over a slice. Actions get the element index, so results
// can go into a preallocated slice without locking.
func Indexed[T any](ctx context.Context, items []T, limit int, action func(context.Context, int, T) error) error {
	return run(ctx, limit, func(g *errgroup.Group, ctx context.Context) {
		for i, v := range items {
			if ctx.Err() != nil {
				return
			}
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				return action(ctx, i, v)
			})
		}
	})
}

func run(parent context.Context, limit int, spawn func(*errgroup.Group, context.Context)) error {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(parent)
	g.SetLimit(limit)
	spawn(g, ctx)
	if err := g.Wait(); err != nil {
		return err
	}
	return parent.Err()
}
