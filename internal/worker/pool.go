// Package worker runs detached background tasks on a bounded pool.
package worker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Pool runs at most size tasks at once. Tasks are never cancelled by the pool.
type Pool struct {
	g        errgroup.Group
	waitOnce sync.Once
	done     chan struct{}
}

// NewPool creates a pool that runs at most size tasks concurrently.
func NewPool(size int) *Pool {
	p := &Pool{done: make(chan struct{})}
	p.g.SetLimit(size)
	return p
}

// Spawn starts task in the background. The task gets ctx without its cancellation,
// so shutting the process down does not interrupt a running task.
// Spawn blocks while the pool is full.
func (p *Pool) Spawn(ctx context.Context, task func(ctx context.Context)) {
	taskCtx := context.WithoutCancel(ctx)
	p.g.Go(func() error {
		task(taskCtx)
		return nil
	})
}

// AwaitWithTimeout waits up to d for every spawned task to finish and reports whether they did.
// Tasks still running after d keep running.
func (p *Pool) AwaitWithTimeout(d time.Duration) bool {
	p.waitOnce.Do(func() {
		go func() {
			_ = p.g.Wait()
			close(p.done)
		}()
	})

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-p.done:
		return true
	case <-timer.C:
		return false
	}
}
