package lingua

import (
	"io"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/pitabwire/lingua/codec"
	"github.com/pitabwire/lingua/culture"
	"github.com/pitabwire/lingua/workerpool"
)

// DefaultProviderTimeout bounds every provider call unless overridden.
const DefaultProviderTimeout = 5 * time.Second

// Option configures an Engine at construction.
type Option func(e *Engine)

// WithDefaultCulture sets the culture active before any SetLanguage call.
// Without it the culture is detected from the process environment.
func WithDefaultCulture(tag culture.Tag) Option {
	return func(e *Engine) {
		e.current = tag
	}
}

// WithFallback sets the culture that terminates every fallback chain.
// The default is the invariant culture.
func WithFallback(tag culture.Tag) Option {
	return func(e *Engine) {
		e.resolver = culture.NewResolver(tag)
	}
}

// WithDecoder sets the strategy GetObject uses. The default decodes JSON.
func WithDecoder(decoder codec.Decoder) Option {
	return func(e *Engine) {
		if decoder != nil {
			e.decoder = decoder
		}
	}
}

// WithCacheCapacity bounds the number of resolved resources kept in memory.
func WithCacheCapacity(capacity int) Option {
	return func(e *Engine) {
		e.cacheCapacity = capacity
	}
}

// WithProviderTimeout bounds each provider call. Zero disables the bound.
func WithProviderTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		e.timeout = timeout
	}
}

// WithWorkerPool runs Preload on pool. The engine does not shut it down.
func WithWorkerPool(pool workerpool.WorkerPool) Option {
	return func(e *Engine) {
		e.pool = pool
	}
}

// WithTracerProvider sets the provider for engine spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracerProvider = tp
	}
}

// WithMeterProvider sets the provider for engine metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(e *Engine) {
		e.meterProvider = mp
	}
}

// WithCloser hands ownership of c to the engine; Close releases it.
func WithCloser(c io.Closer) Option {
	return func(e *Engine) {
		if c != nil {
			e.closers = append(e.closers, c)
		}
	}
}
