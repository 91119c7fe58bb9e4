package workerpool

import (
	"context"
	"errors"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Group runs tasks on a pool and waits for all of them. When the pool is
// saturated a task runs on the submitting goroutine instead of being dropped.
type Group struct {
	pool WorkerPool
	wg   sync.WaitGroup

	mu   sync.Mutex
	errs []error
}

// NewGroup returns a group submitting to pool.
func NewGroup(pool WorkerPool) *Group {
	return &Group{pool: pool}
}

// Go schedules task. It returns an error only when ctx is already done or
// the pool has been shut down.
func (g *Group) Go(ctx context.Context, task func(ctx context.Context) error) error {
	g.wg.Add(1)
	run := func() {
		defer g.wg.Done()
		if err := task(ctx); err != nil {
			g.mu.Lock()
			g.errs = append(g.errs, err)
			g.mu.Unlock()
		}
	}

	err := g.pool.Submit(ctx, run)
	if errors.Is(err, ants.ErrPoolOverload) {
		run()
		return nil
	}
	if err != nil {
		g.wg.Done()
		return err
	}
	return nil
}

// Wait blocks until every scheduled task finished and joins their errors.
func (g *Group) Wait() error {
	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
