// Package lingua resolves localized resources for the active culture and
// base context, falling back through related cultures, caching what it finds
// and notifying subscribers when the culture or context changes.
package lingua

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pitabwire/util"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/pitabwire/lingua/cache"
	"github.com/pitabwire/lingua/codec"
	"github.com/pitabwire/lingua/culture"
	"github.com/pitabwire/lingua/notify"
	"github.com/pitabwire/lingua/provider"
	"github.com/pitabwire/lingua/telemetry"
	"github.com/pitabwire/lingua/workerpool"
)

const (
	kindString = "string"
	kindObject = "object"
	kindStream = "stream"
)

// Engine is a localization engine. It is safe for concurrent use; all state
// belongs to the instance and nothing is shared between engines.
type Engine struct {
	provider provider.Provider
	prober   provider.Prober
	resolver culture.Resolver
	decoder  codec.Decoder
	timeout  time.Duration

	cacheCapacity int
	cache         *cache.ResourceCache
	notifier      *notify.Notifier

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	tracer         telemetry.Tracer
	metrics        *telemetry.Metrics

	poolMu   sync.Mutex
	pool     workerpool.WorkerPool
	ownsPool bool
	closers  []io.Closer
	closed   bool

	// mu guards current and basePath. Mutators hold it across the state
	// change and the cache invalidation.
	mu       sync.RWMutex
	current  culture.Tag
	basePath string
}

// New creates an engine reading resources from p. The engine starts with the
// default culture and no base path; lookups fail with ErrContextNotSet until
// UpdateContext is called.
func New(p provider.Provider, opts ...Option) (*Engine, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil provider", ErrInvalidArgument)
	}

	e := &Engine{
		provider:      p,
		resolver:      culture.NewResolver(culture.Invariant),
		decoder:       codec.JSON{},
		timeout:       DefaultProviderTimeout,
		cacheCapacity: cache.DefaultCapacity,
		notifier:      notify.New(),
		current:       culture.FromEnvironment(),
	}
	if prober, ok := p.(provider.Prober); ok {
		e.prober = prober
	}

	for _, opt := range opts {
		opt(e)
	}

	e.cache = cache.NewResourceCache(e.cacheCapacity)
	e.tracer = telemetry.NewTracer(telemetry.InstrumentationName, e.tracerProvider, e.meterProvider)
	e.metrics = telemetry.NewMetrics(e.meterProvider, telemetry.InstrumentationName)
	e.notifier.OnFailure(func(ctx context.Context, change notify.Change) {
		e.metrics.NotifyFailure(ctx, string(change.Property))
	})

	return e, nil
}

// GetLanguage returns the active culture.
func (e *Engine) GetLanguage() culture.Tag {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// Context returns the active base path and whether one has been set.
func (e *Engine) Context() (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.basePath, e.basePath != ""
}

// Resolver returns the fallback resolver used by lookups.
func (e *Engine) Resolver() culture.Resolver {
	return e.resolver
}

// SetLanguage parses name and makes it the active culture.
func (e *Engine) SetLanguage(ctx context.Context, name string) error {
	tag, err := culture.Parse(name)
	if err != nil {
		return err
	}
	return e.SetCulture(ctx, tag)
}

// SetCulture makes tag the active culture. Setting the active culture again
// is a no-op: the cache is kept and nobody is notified.
func (e *Engine) SetCulture(ctx context.Context, tag culture.Tag) error {
	ctx, span := e.tracer.Start(ctx, "SetCulture")

	e.mu.Lock()
	if tag == e.current {
		e.mu.Unlock()
		e.tracer.End(ctx, span, nil)
		return nil
	}
	e.current = tag
	e.cache.InvalidateAll()
	change := notify.Change{Property: notify.PropertyLanguage, Culture: tag, BasePath: e.basePath}
	e.mu.Unlock()

	util.Log(ctx).WithField("culture", tag.String()).Debug("active culture changed")
	e.publish(ctx, change)

	e.tracer.End(ctx, span, nil)
	return nil
}

// UpdateContext makes basePath the active resource root. Surrounding spaces
// are ignored and repeating the active path is a no-op.
func (e *Engine) UpdateContext(ctx context.Context, basePath string) error {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return fmt.Errorf("%w: empty base path", ErrInvalidArgument)
	}

	ctx, span := e.tracer.Start(ctx, "UpdateContext")

	e.mu.Lock()
	if basePath == e.basePath {
		e.mu.Unlock()
		e.tracer.End(ctx, span, nil)
		return nil
	}
	e.basePath = basePath
	e.cache.InvalidateAll()
	change := notify.Change{Property: notify.PropertyContext, Culture: e.current, BasePath: basePath}
	e.mu.Unlock()

	util.Log(ctx).WithField("base_path", basePath).Debug("localization context changed")
	e.publish(ctx, change)

	e.tracer.End(ctx, span, nil)
	return nil
}

// publish runs after the mutation is committed. Handler failures are
// logged by the notifier and never reach the caller.
func (e *Engine) publish(ctx context.Context, change notify.Change) {
	_ = e.notifier.Notify(ctx, change)
}

// Subscribe registers handler for culture and context changes.
func (e *Engine) Subscribe(handler notify.Handler) notify.Subscription {
	return e.notifier.Subscribe(handler)
}

// Unsubscribe removes a handler and reports whether it was registered.
func (e *Engine) Unsubscribe(sub notify.Subscription) bool {
	return e.notifier.Unsubscribe(sub)
}

// GetString resolves key and decodes it as text. A key missing from every
// culture in the chain yields found == false and no error.
func (e *Engine) GetString(ctx context.Context, key string) (string, bool, error) {
	ctx, span := e.tracer.Start(ctx, "GetString")

	entry, err := e.resolve(ctx, key, kindString)
	e.tracer.End(ctx, span, err)
	if err != nil || entry == nil {
		return "", false, err
	}
	return entry.Text(), true, nil
}

// GetObject resolves key and decodes it with the engine's decoder. Decoded
// values are shared between callers and must not be modified.
func (e *Engine) GetObject(ctx context.Context, key string) (any, bool, error) {
	ctx, span := e.tracer.Start(ctx, "GetObject")

	entry, err := e.resolve(ctx, key, kindObject)
	if err != nil || entry == nil {
		e.tracer.End(ctx, span, err)
		return nil, false, err
	}

	obj, err := entry.Object(e.decoder.Decode)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrDeserializationFailed, key, err)
		e.tracer.End(ctx, span, err)
		return nil, false, err
	}

	e.tracer.End(ctx, span, nil)
	return obj, true, nil
}

// GetStream resolves key and returns a new handle over its bytes. The caller
// owns the handle and should Close it.
func (e *Engine) GetStream(ctx context.Context, key string) (*Stream, bool, error) {
	ctx, span := e.tracer.Start(ctx, "GetStream")

	entry, err := e.resolve(ctx, key, kindStream)
	e.tracer.End(ctx, span, err)
	if err != nil || entry == nil {
		return nil, false, err
	}
	return newStream(entry.Bytes()), true, nil
}

type snapshot struct {
	culture    culture.Tag
	basePath   string
	generation uint64
}

func (e *Engine) snapshot() snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return snapshot{
		culture:    e.current,
		basePath:   e.basePath,
		generation: e.cache.Generation(),
	}
}

// resolve walks the fallback chain for key. Every lookup path goes through
// here so that strings, objects and streams always agree on the culture that
// satisfied a key. A nil entry with a nil error means not found.
func (e *Engine) resolve(ctx context.Context, key, kind string) (*cache.Entry, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty resource key", ErrInvalidArgument)
	}

	state := e.snapshot()
	if state.basePath == "" {
		return nil, ErrContextNotSet
	}

	var absent []cache.Key
	queried := false
	for _, tag := range e.resolver.Resolve(state.culture) {
		cacheKey := cache.Key{BasePath: state.basePath, Culture: tag, Name: key}

		entry, found := e.cache.Lookup(state.generation, cacheKey)
		switch found {
		case cache.Hit:
			e.metrics.CacheHit(ctx, kind)
			return entry, nil
		case cache.Absent:
			continue
		case cache.Miss:
		}

		queried = true
		hasResources, err := e.cultureExists(ctx, state, tag)
		if err != nil {
			return nil, err
		}
		if !hasResources {
			absent = append(absent, cache.CultureKey(state.basePath, tag))
			continue
		}

		data, err := e.open(ctx, state.basePath, tag, key)
		if errors.Is(err, provider.ErrNotFound) {
			absent = append(absent, cacheKey)
			continue
		}
		if err != nil {
			return nil, err
		}

		e.metrics.CacheMiss(ctx, kind)
		entry, _ = e.cache.Commit(state.generation, absent, cacheKey, cache.NewEntry(data))
		return entry, nil
	}

	if queried {
		e.metrics.CacheMiss(ctx, kind)
		e.cache.Commit(state.generation, absent, cache.Key{}, nil)
	} else {
		e.metrics.CacheHit(ctx, kind)
	}
	return nil, nil
}

// cultureExists asks the provider's prober, when it has one, whether tag has
// any resources. Known empty cultures are remembered in the cache.
func (e *Engine) cultureExists(ctx context.Context, state snapshot, tag culture.Tag) (bool, error) {
	if e.prober == nil {
		return true, nil
	}

	if _, found := e.cache.Lookup(state.generation, cache.CultureKey(state.basePath, tag)); found == cache.Absent {
		return false, nil
	}

	pctx, cancel := e.providerContext(ctx)
	defer cancel()

	exists, err := e.prober.Exists(pctx, state.basePath, tag)
	if err != nil && !errors.Is(err, provider.ErrNotFound) {
		return false, fmt.Errorf("%w: probing %s: %w", ErrProviderUnavailable, provider.CultureDir(state.basePath, tag), err)
	}
	return exists && err == nil, nil
}

func (e *Engine) open(ctx context.Context, basePath string, tag culture.Tag, key string) ([]byte, error) {
	pctx, cancel := e.providerContext(ctx)
	defer cancel()

	data, err := e.provider.Open(pctx, basePath, tag, key)
	switch {
	case err == nil:
		e.metrics.ProviderOpen(ctx, "ok", len(data))
		return data, nil
	case errors.Is(err, provider.ErrNotFound):
		e.metrics.ProviderOpen(ctx, "not_found", 0)
		return nil, err
	default:
		e.metrics.ProviderOpen(ctx, telemetry.ErrorCode(err), 0)
		util.Log(ctx).WithError(err).
			WithField("resource", provider.ObjectPath(basePath, tag, key)).
			Warn("resource provider failed")
		return nil, fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, provider.ObjectPath(basePath, tag, key), err)
	}
}

func (e *Engine) providerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

// Close releases the worker pool the engine created and every resource
// handed over with WithCloser. It is safe to call more than once.
func (e *Engine) Close() error {
	e.poolMu.Lock()
	if e.closed {
		e.poolMu.Unlock()
		return nil
	}
	e.closed = true
	pool, ownsPool := e.pool, e.ownsPool
	closers := e.closers
	e.closers = nil
	e.poolMu.Unlock()

	if pool != nil && ownsPool {
		pool.Shutdown()
	}

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
