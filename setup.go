package lingua

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/pitabwire/util"

	"github.com/pitabwire/lingua/cache"
	redisCache "github.com/pitabwire/lingua/cache/redis"
	valkeyCache "github.com/pitabwire/lingua/cache/valkey"
	"github.com/pitabwire/lingua/codec"
	"github.com/pitabwire/lingua/config"
	"github.com/pitabwire/lingua/culture"
	"github.com/pitabwire/lingua/notify/topic"
	"github.com/pitabwire/lingua/provider"
	"github.com/pitabwire/lingua/provider/blob"
	"github.com/pitabwire/lingua/provider/bundle"
	"github.com/pitabwire/lingua/provider/cached"
	"github.com/pitabwire/lingua/provider/sqlstore"
	"github.com/pitabwire/lingua/telemetry"
	"github.com/pitabwire/lingua/workerpool"
)

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

// NewFromConfig wires an engine from configuration: the resource provider,
// an optional shared payload cache, the object decoder, cultures, the worker
// pool, telemetry and change forwarding. Optional concerns are enabled when
// cfg also implements the matching config interface. Extra opts are applied
// last. Everything created here is released by Engine.Close.
func NewFromConfig(ctx context.Context, cfg config.ConfigurationLocalization, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil configuration", ErrInvalidArgument)
	}

	var owned []io.Closer
	release := func() {
		for i := len(owned) - 1; i >= 0; i-- {
			_ = owned[i].Close()
		}
	}

	engineOpts, err := configuredOptions(ctx, cfg, &owned)
	if err != nil {
		release()
		return nil, err
	}

	p, err := openProvider(ctx, cfg, &owned)
	if err != nil {
		release()
		return nil, err
	}

	for _, c := range owned {
		engineOpts = append(engineOpts, WithCloser(c))
	}

	engine, err := New(p, append(engineOpts, opts...)...)
	if err != nil {
		release()
		return nil, err
	}

	if changesURL := cfg.ChangesTopicURL(); changesURL != "" {
		forwarder, topicErr := topic.Open(ctx, changesURL)
		if topicErr != nil {
			_ = engine.Close()
			return nil, fmt.Errorf("open changes topic: %w", topicErr)
		}
		engine.Subscribe(forwarder.Handle)
		engine.adopt(closerFunc(func() error { return forwarder.Close(context.Background()) }))
	}

	if basePath := cfg.BasePath(); basePath != "" {
		if err = engine.UpdateContext(ctx, basePath); err != nil {
			_ = engine.Close()
			return nil, err
		}
	}

	util.Log(ctx).
		WithField("culture", engine.GetLanguage().String()).
		WithField("provider", cfg.ProviderFormat()).
		Info("localization engine ready")
	return engine, nil
}

// adopt hands c to the engine after construction.
func (e *Engine) adopt(c io.Closer) {
	e.poolMu.Lock()
	defer e.poolMu.Unlock()
	e.closers = append(e.closers, c)
}

func configuredOptions(ctx context.Context, cfg config.ConfigurationLocalization, owned *[]io.Closer) ([]Option, error) {
	decoder, err := codec.ByName(cfg.ObjectFormat())
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithDecoder(decoder),
		WithCacheCapacity(cfg.CacheCapacity()),
		WithProviderTimeout(cfg.ProviderTimeout()),
	}

	if name := cfg.DefaultLanguage(); name != "" {
		tag, parseErr := culture.Parse(name)
		if parseErr != nil {
			return nil, fmt.Errorf("default language: %w", parseErr)
		}
		opts = append(opts, WithDefaultCulture(tag))
	}

	if name := cfg.FallbackLanguage(); name != "" {
		tag, parseErr := culture.Parse(name)
		if parseErr != nil {
			return nil, fmt.Errorf("fallback language: %w", parseErr)
		}
		opts = append(opts, WithFallback(tag))
	}

	if poolCfg, ok := cfg.(config.ConfigurationWorkerPool); ok {
		pool, poolErr := workerpool.New(ctx, poolCfg)
		if poolErr != nil {
			return nil, poolErr
		}
		opts = append(opts, WithWorkerPool(pool))
		*owned = append(*owned, closerFunc(func() error {
			pool.Shutdown()
			return nil
		}))
	}

	if telemetryCfg, ok := cfg.(config.ConfigurationTelemetry); ok && !telemetryCfg.DisableOpenTelemetry() {
		managerOpts := []telemetry.Option{}
		if serviceCfg, isService := cfg.(config.ConfigurationService); isService {
			managerOpts = append(managerOpts,
				telemetry.WithServiceName(serviceCfg.Name()),
				telemetry.WithServiceVersion(serviceCfg.Version()))
		}

		manager := telemetry.NewManager(telemetryCfg, managerOpts...)
		if err = manager.Init(ctx); err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		*owned = append(*owned, closerFunc(func() error {
			return manager.Shutdown(context.Background())
		}))
	}

	return opts, nil
}

func openProvider(ctx context.Context, cfg config.ConfigurationLocalization, owned *[]io.Closer) (provider.Provider, error) {
	source := cfg.ProviderURL()
	if source == "" {
		return nil, fmt.Errorf("%w: no resource provider url configured", ErrInvalidArgument)
	}

	var p provider.Provider
	switch cfg.ProviderFormat() {
	case config.ProviderFormatBlob:
		bucket, err := blob.Open(ctx, source)
		if err != nil {
			return nil, err
		}
		*owned = append(*owned, bucket)
		p = bucket

	case config.ProviderFormatBundle:
		p = bundle.New(os.DirFS(source), bundle.WithFilePrefix(cfg.BundlePrefix()))

	case config.ProviderFormatSQL:
		db, err := sql.Open(cfg.SQLDriver(), source)
		if err != nil {
			return nil, err
		}
		*owned = append(*owned, db)

		store, err := sqlstore.New(db)
		if err != nil {
			return nil, err
		}
		p = store

	default:
		return nil, fmt.Errorf("%w: unknown provider format %q", ErrInvalidArgument, cfg.ProviderFormat())
	}

	cacheURL := cfg.RemoteCacheURL()
	if cacheURL == "" {
		return p, nil
	}

	raw, err := openRawCache(cacheURL, cfg)
	if err != nil {
		return nil, fmt.Errorf("remote cache: %w", err)
	}
	*owned = append(*owned, raw)

	return cached.New(p, raw, cfg.RemoteCacheTTL()), nil
}

func openRawCache(rawURL string, cfg config.ConfigurationLocalization) (cache.RawCache, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	opts := []cache.Option{
		cache.WithURL(rawURL),
		cache.WithMaxAge(cfg.RemoteCacheTTL()),
	}
	if serviceCfg, ok := cfg.(config.ConfigurationService); ok && serviceCfg.Name() != "" {
		opts = append(opts, cache.WithName(serviceCfg.Name()))
	}

	switch strings.ToLower(u.Scheme) {
	case "mem", "memory":
		return cache.NewInMemoryCache(opts...), nil
	case "redis", "rediss":
		return redisCache.New(opts...)
	case "valkey", "valkeys":
		return valkeyCache.New(opts...)
	default:
		return nil, errors.New("unsupported cache scheme " + u.Scheme)
	}
}
