package router

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Broadcast runs fn against every shard index in [0, n) concurrently under
// one errgroup.Group — grounded on the teacher's errgroup-supervised
// fan-out pattern — and returns the per-shard results in shard order. If
// any call returns an error, Broadcast cancels the group's context and
// returns the first error encountered.
func Broadcast[T any](ctx context.Context, n int, fn func(ctx context.Context, shard int) (T, error)) ([]T, error) {
	g, gctx := errgroup.WithContext(ctx)
	results := make([]T, n)

	for i := 0; i < n; i++ {
		g.Go(func() error {
			r, err := fn(gctx, i)
			if err != nil {
				return err
			}

			results[i] = r

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
