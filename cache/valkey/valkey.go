package valkey

import (
	"context"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/pitabwire/lingua/cache"
)

// Cache is a Valkey-backed RawCache using the official Valkey client.
type Cache struct {
	client valkey.Client
	prefix string
	maxAge time.Duration
}

const (
	connectionTimeout = 5 * time.Second
	scanBatchSize     = 256
)

// New connects to the Valkey server named by the cache URL. The valkey://
// and valkeys:// schemes are accepted next to redis:// and rediss://.
func New(opts ...cache.Option) (cache.RawCache, error) {
	cacheOpts := cache.NewOptions(opts...)

	url := cacheOpts.URL
	if rest, ok := strings.CutPrefix(url, "valkey://"); ok {
		url = "redis://" + rest
	} else if rest, ok = strings.CutPrefix(url, "valkeys://"); ok {
		url = "rediss://" + rest
	}

	valkeyOpts, err := valkey.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client, err := valkey.NewClient(valkeyOpts)
	if err != nil {
		return nil, err
	}

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if pingErr := client.Do(ctx, client.B().Ping().Build()).Error(); pingErr != nil {
		client.Close()
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

func (vc *Cache) key(key string) string {
	return vc.prefix + key
}

// Get retrieves an item from the cache.
func (vc *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	cmd := vc.client.B().Get().Key(vc.key(key)).Build()
	resp := vc.client.Do(ctx, cmd)

	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	val, err := resp.AsBytes()
	if err != nil {
		return nil, false, err
	}

	return val, true, nil
}

// Set sets an item in the cache; a zero ttl uses the configured max age.
func (vc *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var cmd valkey.Completed

	if ttl <= 0 {
		ttl = vc.maxAge
	}

	if ttl > 0 {
		// Valkey Ex() expects seconds, not duration
		seconds := int64(ttl.Seconds())
		if seconds == 0 {
			seconds = 1 // Minimum 1 second for sub-second durations
		}
		cmd = vc.client.B().Set().Key(vc.key(key)).Value(valkey.BinaryString(value)).ExSeconds(seconds).Build()
	} else {
		cmd = vc.client.B().Set().Key(vc.key(key)).Value(valkey.BinaryString(value)).Build()
	}

	return vc.client.Do(ctx, cmd).Error()
}

// Delete removes an item from the cache.
func (vc *Cache) Delete(ctx context.Context, key string) error {
	cmd := vc.client.B().Del().Key(vc.key(key)).Build()
	return vc.client.Do(ctx, cmd).Error()
}

// Exists checks if a key exists in the cache.
func (vc *Cache) Exists(ctx context.Context, key string) (bool, error) {
	cmd := vc.client.B().Exists().Key(vc.key(key)).Build()
	resp := vc.client.Do(ctx, cmd)

	if err := resp.Error(); err != nil {
		return false, err
	}

	count, err := resp.AsInt64()
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Flush clears the cache keyspace, or the whole database when no name is set.
func (vc *Cache) Flush(ctx context.Context) error {
	if vc.prefix == "" {
		return vc.client.Do(ctx, vc.client.B().Flushdb().Build()).Error()
	}

	var cursor uint64
	for {
		cmd := vc.client.B().Scan().Cursor(cursor).Match(vc.prefix + "*").Count(scanBatchSize).Build()
		entry, err := vc.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return err
		}

		if len(entry.Elements) > 0 {
			del := vc.client.B().Del().Key(entry.Elements...).Build()
			if delErr := vc.client.Do(ctx, del).Error(); delErr != nil {
				return delErr
			}
		}

		cursor = entry.Cursor
		if cursor == 0 {
			return nil
		}
	}
}

// Close closes the Valkey connection.
func (vc *Cache) Close() error {
	vc.client.Close()
	return nil
}
