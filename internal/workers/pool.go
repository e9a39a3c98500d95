// Package workers runs bounded fan-out jobs and retries flaky calls.
package workers

import (
	"context"
	"sync"
)

// Pool bounds how many jobs run at once.
type Pool struct {
	semaphore chan struct{}
	wg        sync.WaitGroup
}

// NewPool creates a pool of size n (minimum 1).
func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{semaphore: make(chan struct{}, n)}
}

// Submit blocks until a slot is free, then runs job in a goroutine.
func (p *Pool) Submit(job func()) {
	p.wg.Add(1)
	p.semaphore <- struct{}{}

	go func() {
		defer p.wg.Done()
		defer func() { <-p.semaphore }()
		job()
	}()
}

// Wait blocks until all submitted jobs have completed.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Each runs fn for every item with at most n in flight and returns the
// per-item errors in input order. A cancelled ctx skips items not yet started.
func Each[T any](ctx context.Context, n int, items []T, fn func(context.Context, T) error) []error {
	errs := make([]error, len(items))
	pool := NewPool(n)
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		pool.Submit(func() {
			errs[i] = fn(ctx, item)
		})
	}
	pool.Wait()
	return errs
}
