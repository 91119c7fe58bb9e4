package telemetry

import (
	"context"
	"errors"
	"os"
	"sync"

	"go.opentelemetry.io/contrib/exporters/autoexport"
	"go.opentelemetry.io/contrib/propagators/autoprop"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdkmetrics "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/pitabwire/lingua/config"
)

// Option customises a Manager.
type Option func(m *manager)

// WithServiceName sets the service name for resource tagging.
func WithServiceName(name string) Option {
	return func(m *manager) {
		m.serviceName = name
	}
}

// WithServiceVersion sets the service version for resource tagging.
func WithServiceVersion(version string) Option {
	return func(m *manager) {
		m.serviceVersion = version
	}
}

// WithPropagationTextMap specifies the trace baggage carrier to use.
func WithPropagationTextMap(carrier propagation.TextMapPropagator) Option {
	return func(m *manager) {
		m.traceTextMap = carrier
	}
}

// WithTraceExporter specifies the trace exporter to use.
func WithTraceExporter(exporter sdktrace.SpanExporter) Option {
	return func(m *manager) {
		m.traceExporter = exporter
	}
}

// WithTraceSampler specifies the trace sampler to use.
func WithTraceSampler(sampler sdktrace.Sampler) Option {
	return func(m *manager) {
		m.traceSampler = sampler
	}
}

// WithMetricsReader specifies the metrics reader to use.
func WithMetricsReader(reader sdkmetrics.Reader) Option {
	return func(m *manager) {
		m.metricsReader = reader
	}
}

type manager struct {
	serviceName    string
	serviceVersion string

	cfg config.ConfigurationTelemetry

	traceTextMap  propagation.TextMapPropagator
	traceExporter sdktrace.SpanExporter
	traceSampler  sdktrace.Sampler
	metricsReader sdkmetrics.Reader

	mu             sync.Mutex
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetrics.MeterProvider
}

// NewManager creates a manager that installs global otel providers on Init.
func NewManager(cfg config.ConfigurationTelemetry, opts ...Option) Manager {
	m := &manager{
		serviceName: InstrumentationName,
		cfg:         cfg,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *manager) Disabled() bool {
	return m.cfg != nil && m.cfg.DisableOpenTelemetry()
}

func (m *manager) Init(ctx context.Context) error {
	if m.Disabled() {
		return nil
	}

	res, err := m.setupResource(ctx)
	if err != nil {
		return err
	}

	m.setupTextMapPropagator()
	m.setupTraceSampler()

	if err = m.setupTraceExporter(ctx); err != nil {
		return err
	}

	if err = m.setupMetricsReader(ctx); err != nil {
		return err
	}

	m.setupProviders(res)
	return nil
}

// Shutdown flushes and stops the providers installed by Init.
func (m *manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	tp, mp := m.tracerProvider, m.meterProvider
	m.tracerProvider, m.meterProvider = nil, nil
	m.mu.Unlock()

	var errs []error
	if tp != nil {
		errs = append(errs, tp.Shutdown(ctx))
	}
	if mp != nil {
		errs = append(errs, mp.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func (m *manager) setupResource(ctx context.Context) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(m.serviceName),
		semconv.ServiceVersion(m.serviceVersion),
	}

	return resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithProcessPID(),
		resource.WithProcessRuntimeName(),
		resource.WithProcessRuntimeVersion(),
		resource.WithAttributes(attrs...),
	)
}

func (m *manager) setupTextMapPropagator() {
	if m.traceTextMap == nil {
		m.traceTextMap = autoprop.NewTextMapPropagator()
	}
}

func (m *manager) setupTraceSampler() {
	if m.traceSampler == nil {
		traceIDRatio := 1.0

		if m.cfg != nil {
			traceIDRatio = m.cfg.SamplingRatio()
		}

		m.traceSampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(traceIDRatio))
	}
}

func (m *manager) setupTraceExporter(ctx context.Context) error {
	if m.traceExporter == nil {
		if os.Getenv("OTEL_TRACES_EXPORTER") == "" {
			_ = os.Setenv("OTEL_TRACES_EXPORTER", "none")
		}
		var err error
		m.traceExporter, err = autoexport.NewSpanExporter(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *manager) setupMetricsReader(ctx context.Context) error {
	if m.metricsReader == nil {
		if os.Getenv("OTEL_METRICS_EXPORTER") == "" {
			_ = os.Setenv("OTEL_METRICS_EXPORTER", "none")
		}
		var err error
		m.metricsReader, err = autoexport.NewMetricReader(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *manager) setupProviders(res *resource.Resource) {
	otel.SetTextMapPropagator(m.traceTextMap)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(m.traceSampler),
		sdktrace.WithBatcher(m.traceExporter),
		sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)

	mp := sdkmetrics.NewMeterProvider(
		sdkmetrics.WithReader(m.metricsReader),
		sdkmetrics.WithResource(res),
		sdkmetrics.WithView(Views(InstrumentationName)...),
	)
	otel.SetMeterProvider(mp)

	m.mu.Lock()
	m.tracerProvider, m.meterProvider = tp, mp
	m.mu.Unlock()
}
