package congru

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// WorkerPool bounds the concurrency of a batch of jobs to a fixed
// weight, cancelling the remaining jobs on the first error.
type WorkerPool struct {
	sem *semaphore.Weighted
	cap int64
}

// NewWorkerPool creates a pool admitting at most n concurrent jobs.
func NewWorkerPool(n int) *WorkerPool {
	if n < 1 {
		n = 1
	}
	return &WorkerPool{sem: semaphore.NewWeighted(int64(n)), cap: int64(n)}
}

// Cap returns the pool's configured concurrency limit.
func (p *WorkerPool) Cap() int { return int(p.cap) }

// Run submits jobs to the pool and waits for all of them, returning the
// first error encountered (subsequent jobs already admitted still run
// to completion; jobs not yet admitted are skipped once ctx is
// cancelled). Run always blocks until every admitted job has finished,
// even when admission itself is cut short by a cancelled ctx.
func (p *WorkerPool) Run(ctx context.Context, jobs []func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	var admitErr error
	for _, job := range jobs {
		job := job
		if err := p.sem.Acquire(gctx, 1); err != nil {
			admitErr = err
			break
		}
		g.Go(func() error {
			defer p.sem.Release(1)
			return job(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return admitErr
}

// RunOb is a convenience wrapper for the common case of mapping a job
// over a slice of obs.
func (p *WorkerPool) RunOb(ctx context.Context, obs []Ob, job func(context.Context, Ob) error) error {
	jobs := make([]func(context.Context) error, len(obs))
	for i, ob := range obs {
		ob := ob
		jobs[i] = func(ctx context.Context) error { return job(ctx, ob) }
	}
	return p.Run(ctx, jobs)
}
