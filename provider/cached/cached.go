// Package cached keeps provider payloads in a cache.RawCache so that engines
// in several processes can share one remote copy of slow resources.
package cached

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/pitabwire/util"

	"github.com/pitabwire/lingua/cache"
	"github.com/pitabwire/lingua/culture"
	"github.com/pitabwire/lingua/provider"
)

// Provider is a read-through decorator. Only found resources are stored;
// misses and failures always reach the wrapped provider.
type Provider struct {
	next provider.Provider
	raw  cache.RawCache
	ttl  time.Duration
}

// New wraps next with raw. A zero ttl defers to the cache's own max age.
func New(next provider.Provider, raw cache.RawCache, ttl time.Duration) *Provider {
	return &Provider{next: next, raw: raw, ttl: ttl}
}

// Key returns the cache key used for the triple.
func Key(basePath string, tag culture.Tag, key string) string {
	return "lingua|" + basePath + "|" + tag.String() + "|" + key
}

// Open serves from the cache when possible. Cache failures are logged and
// bypassed so a broken cache never hides a healthy provider.
func (p *Provider) Open(ctx context.Context, basePath string, tag culture.Tag, key string) ([]byte, error) {
	cacheKey := Key(basePath, tag, key)
	log := util.Log(ctx).WithField("cache_key", cacheKey)

	data, found, err := p.raw.Get(ctx, cacheKey)
	if err != nil {
		log.WithError(err).Warn("resource cache read failed")
	} else if found {
		return data, nil
	}

	data, err = p.next.Open(ctx, basePath, tag, key)
	if err != nil {
		return nil, err
	}

	if setErr := p.raw.Set(ctx, cacheKey, data, p.ttl); setErr != nil {
		log.WithError(setErr).Warn("resource cache write failed")
	}
	return data, nil
}

// Exists delegates to the wrapped provider when it can probe.
func (p *Provider) Exists(ctx context.Context, basePath string, tag culture.Tag) (bool, error) {
	prober, ok := p.next.(provider.Prober)
	if !ok {
		return true, nil
	}
	return prober.Exists(ctx, basePath, tag)
}

// Purge removes the cached copy of one resource.
func (p *Provider) Purge(ctx context.Context, basePath string, tag culture.Tag, key string) error {
	return p.raw.Delete(ctx, Key(basePath, tag, key))
}

// Close closes the cache and, when it is closable, the wrapped provider.
func (p *Provider) Close() error {
	var errs []error
	if err := p.raw.Close(); err != nil {
		errs = append(errs, err)
	}
	if closer, ok := p.next.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
