// Package workerpool maps a function over a slice with bounded concurrency.
package workerpool

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Map runs fn for every item using at most workers goroutines and returns
// the results in item order. Every item is processed even when some fail;
// the returned error joins all failures. Items not yet started when ctx is
// cancelled are skipped and reported as ctx.Err().
func Map[T, R any](ctx context.Context, items []T, workers int, fn func(context.Context, T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}
	if workers <= 0 {
		workers = 1
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, item := range items {
		if ctx.Err() != nil {
			record(ctx.Err())
			break
		}
		g.Go(func() error {
			r, err := fn(ctx, item)
			results[i] = r
			if err != nil {
				record(err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}
