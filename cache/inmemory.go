package cache

import (
	"context"
	"sync"
	"time"
)

// inMemoryCacheItem represents a cached payload with expiration.
type inMemoryCacheItem struct {
	value      []byte
	expiration time.Time
}

// isExpired checks if the item has expired.
func (i *inMemoryCacheItem) isExpired() bool {
	if i.expiration.IsZero() {
		return false
	}
	return time.Now().After(i.expiration)
}

// InMemoryCache is a thread-safe, process local RawCache.
type InMemoryCache struct {
	items      sync.Map // map[string]*inMemoryCacheItem
	cleanupMu  sync.Mutex
	stopClean  chan struct{}
	cleanupInt time.Duration
	maxAge     time.Duration
}

const defaultCleanupInterval = 5 * time.Minute

// NewInMemoryCache creates a new in-memory cache. A zero ttl passed to Set
// falls back to the configured max age; a zero max age keeps items forever.
func NewInMemoryCache(opts ...Option) RawCache {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}

	c := &InMemoryCache{
		stopClean:  make(chan struct{}),
		cleanupInt: defaultCleanupInterval,
		maxAge:     o.MaxAge,
	}

	go c.startCleanup()

	return c
}

// startCleanup periodically removes expired items.
func (c *InMemoryCache) startCleanup() {
	ticker := time.NewTicker(c.cleanupInt)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopClean:
			return
		}
	}
}

func (c *InMemoryCache) cleanup() {
	c.items.Range(func(key, value any) bool {
		item, ok := value.(*inMemoryCacheItem)
		if ok && item.isExpired() {
			c.items.CompareAndDelete(key, value)
		}
		return true
	})
}

// Get retrieves an item from the cache.
func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := c.items.Load(key)
	if !ok {
		return nil, false, nil
	}

	item, ok := value.(*inMemoryCacheItem)
	if !ok || item.isExpired() {
		c.items.CompareAndDelete(key, value)
		return nil, false, nil
	}

	return item.value, true, nil
}

// Set stores a copy of value with the specified TTL.
func (c *InMemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := &inMemoryCacheItem{
		value: append([]byte(nil), value...),
	}

	if ttl <= 0 {
		ttl = c.maxAge
	}
	if ttl > 0 {
		item.expiration = time.Now().Add(ttl)
	}

	c.items.Store(key, item)
	return nil
}

// Delete removes an item from the cache.
func (c *InMemoryCache) Delete(_ context.Context, key string) error {
	c.items.Delete(key)
	return nil
}

// Exists checks if a key exists in the cache.
func (c *InMemoryCache) Exists(_ context.Context, key string) (bool, error) {
	value, ok := c.items.Load(key)
	if !ok {
		return false, nil
	}

	if cachedItem, itemOK := value.(*inMemoryCacheItem); itemOK && cachedItem.isExpired() {
		c.items.CompareAndDelete(key, value)
		return false, nil
	}

	return true, nil
}

// Flush clears all items from the cache.
func (c *InMemoryCache) Flush(_ context.Context) error {
	c.items.Clear()
	return nil
}

// Close stops the cleanup goroutine.
func (c *InMemoryCache) Close() error {
	c.cleanupMu.Lock()
	defer c.cleanupMu.Unlock()

	select {
	case <-c.stopClean:
		// Already closed
		return nil
	default:
		close(c.stopClean)
	}

	return nil
}
