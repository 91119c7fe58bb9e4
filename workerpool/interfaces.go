package workerpool

import (
	"context"
)

// WorkerPool defines the common methods for worker pool operations.
// This allows callers to hold either a single ants.Pool or an ants.MultiPool.
type WorkerPool interface {
	Submit(ctx context.Context, task func()) error
	Running() int
	Shutdown()
}
