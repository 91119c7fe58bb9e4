package lingua

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/pitabwire/util"

	"github.com/pitabwire/lingua/workerpool"
)

// Preload resolves keys concurrently on the engine's worker pool so later
// lookups are served from the cache. It returns how many keys were found.
// Entries resolved across a concurrent culture or context change are
// discarded like any other stale resolution.
func (e *Engine) Preload(ctx context.Context, keys ...string) (int, error) {
	ctx, span := e.tracer.Start(ctx, "Preload")

	pool, err := e.workerPool(ctx)
	if err != nil {
		e.tracer.End(ctx, span, err)
		return 0, err
	}

	var found atomic.Int32
	group := workerpool.NewGroup(pool)
	for _, key := range keys {
		err = group.Go(ctx, func(ctx context.Context) error {
			entry, resolveErr := e.resolve(ctx, key, kindString)
			if resolveErr != nil {
				return resolveErr
			}
			if entry != nil {
				found.Add(1)
			}
			return nil
		})
		if err != nil {
			break
		}
	}

	err = errors.Join(err, group.Wait())

	util.Log(ctx).
		WithField("requested", len(keys)).
		WithField("found", found.Load()).
		Debug("preloaded resources")

	e.tracer.End(ctx, span, err)
	return int(found.Load()), err
}

// workerPool returns the pool set with WithWorkerPool or lazily creates one
// owned by the engine.
func (e *Engine) workerPool(ctx context.Context) (workerpool.WorkerPool, error) {
	e.poolMu.Lock()
	defer e.poolMu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}
	if e.pool != nil {
		return e.pool, nil
	}

	pool, err := workerpool.New(ctx, nil)
	if err != nil {
		return nil, err
	}
	e.pool = pool
	e.ownsPool = true
	return pool, nil
}
