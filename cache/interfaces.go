package cache

import (
	"context"
	"time"
)

// RawCache is the low-level byte cache used to keep provider payloads close
// to the engine. Implementations must be safe for concurrent use and return
// exactly the bytes that were stored.
type RawCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Flush(ctx context.Context) error
	Close() error
}
