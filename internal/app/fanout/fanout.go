// Package fanout provides a generic, bounded-concurrency fan-out helper for
// application-layer orchestration: it runs a function across a slice of
// items on a fixed number of workers and returns results in input order.
package fanout

import (
	"context"
	"sync"
)

// Result holds the outcome of processing a single item: Value on success or
// a non-nil Err on failure.
type Result[R any] struct {
	Value R
	Err   error
}

// Run executes fn for each item using at most maxWorkers concurrent
// goroutines and blocks until all complete. Results hold input order.
//
// A goroutine still waiting for a worker slot when ctx is canceled records
// ctx.Err() without calling fn; goroutines already running are left to
// finish (fn checks ctx itself if it supports cancellation). maxWorkers
// must be at least 1.
func Run[T, R any](ctx context.Context, maxWorkers int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}

	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup
	wg.Add(len(items))

	for i := range items {
		go func(idx int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = Result[R]{Err: ctx.Err()}
				return
			}

			val, err := fn(ctx, items[idx])
			results[idx] = Result[R]{Value: val, Err: err}
		}(i)
	}

	wg.Wait()
	return results
}
