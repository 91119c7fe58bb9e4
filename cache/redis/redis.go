package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pitabwire/lingua/cache"
)

// Cache is a Redis-backed RawCache. Keys are namespaced with the configured
// cache name so that Flush only touches this cache's keyspace.
type Cache struct {
	client *redis.Client
	prefix string
	maxAge time.Duration
}

const (
	connectionTimeout = 5 * time.Second
	scanBatchSize     = 256
)

// New connects to the Redis server named by the cache URL.
func New(opts ...cache.Option) (cache.RawCache, error) {
	cacheOpts := cache.NewOptions(opts...)

	redisOpts, err := redis.ParseURL(cacheOpts.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(redisOpts)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		_ = client.Close()
		return nil, pingErr
	}

	prefix := ""
	if cacheOpts.Name != "" {
		prefix = cacheOpts.Name + ":"
	}

	return &Cache{
		client: client,
		prefix: prefix,
		maxAge: cacheOpts.MaxAge,
	}, nil
}

func (rc *Cache) key(key string) string {
	return rc.prefix + key
}

// Get retrieves an item from the cache.
func (rc *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := rc.client.Get(ctx, rc.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return val, true, nil
}

// Set sets an item in the cache; a zero ttl uses the configured max age.
func (rc *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = rc.maxAge
	}
	return rc.client.Set(ctx, rc.key(key), value, ttl).Err()
}

// Delete removes an item from the cache.
func (rc *Cache) Delete(ctx context.Context, key string) error {
	return rc.client.Del(ctx, rc.key(key)).Err()
}

// Exists checks if a key exists in the cache.
func (rc *Cache) Exists(ctx context.Context, key string) (bool, error) {
	count, err := rc.client.Exists(ctx, rc.key(key)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Flush clears the cache keyspace, or the whole database when no name is set.
func (rc *Cache) Flush(ctx context.Context) error {
	if rc.prefix == "" {
		return rc.client.FlushDB(ctx).Err()
	}

	iter := rc.client.Scan(ctx, 0, rc.prefix+"*", scanBatchSize).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			if err := rc.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return rc.client.Del(ctx, batch...).Err()
	}
	return nil
}

// Close closes the Redis connection.
func (rc *Cache) Close() error {
	return rc.client.Close()
}
