package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InstrumentationName names the meter and tracer used by the engine.
const InstrumentationName = "lingua"

// Units are encoded according to the case-sensitive abbreviations from the
// Unified Code for Units of Measure: http://unitsofmeasure.org/ucum.html.
const (
	unitDimensionless = "1"
	unitMilliseconds  = "ms"
	unitBytes         = "By"
)

//nolint:gochecknoglobals // histogram boundaries are shared by every view
var defaultMillisecondsBoundaries = []float64{
	0.0, 0.1, 0.2, 0.4, 0.6, 0.8, 1.0, 2.0, 3.0, 4.0, 5.0, 6.0, 8.0, 10.0,
	13.0, 16.0, 20.0, 25.0, 30.0, 40.0, 50.0, 65.0, 80.0, 100.0, 130.0,
	160.0, 200.0, 250.0, 300.0, 400.0, 500.0, 650.0, 800.0, 1000.0, 2000.0,
	5000.0, 10000.0,
}

// Views returns the bucket layout for the histogram created by
// LatencyMeasure(pkg). Its count doubles as the completed call counter.
func Views(pkg string) []sdkmetric.View {
	return []sdkmetric.View{
		func(inst sdkmetric.Instrument) (sdkmetric.Stream, bool) {
			if inst.Kind != sdkmetric.InstrumentKindHistogram || inst.Name != pkg+"/latency" {
				return sdkmetric.Stream{}, false
			}
			return sdkmetric.Stream{
				Name:        inst.Name,
				Description: "Distribution of method latency, by method and status.",
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: defaultMillisecondsBoundaries,
				},
				AttributeFilter: func(kv attribute.KeyValue) bool {
					return kv.Key == AttrMethodKey || kv.Key == AttrStatusKey
				},
			}, true
		},
	}
}

func meter(mp metric.MeterProvider, pkg string) metric.Meter {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	return mp.Meter(pkg, metric.WithInstrumentationAttributes(AttrPackageKey.String(pkg)))
}

// LatencyMeasure returns the histogram recording method call latency.
func LatencyMeasure(mp metric.MeterProvider, pkg string) metric.Float64Histogram {
	pkgMeter := meter(mp, pkg)

	m, err := pkgMeter.Float64Histogram(
		pkg+"/latency",
		metric.WithDescription("Latency distribution of method calls"),
		metric.WithUnit(unitMilliseconds),
	)
	if err != nil {
		// Only invalid instrument names fail here, which is a programming error.
		panic(fmt.Sprintf("pkg=%q: %v", pkg, err))
	}
	return m
}

// DimensionlessMeasure creates a counter for plain event counts.
func DimensionlessMeasure(mp metric.MeterProvider, pkg, meterName, description string) metric.Int64Counter {
	m, err := meter(mp, pkg).Int64Counter(
		pkg+meterName,
		metric.WithDescription(description),
		metric.WithUnit(unitDimensionless),
	)
	if err != nil {
		panic(fmt.Sprintf("pkg=%q meter=%q: %v", pkg, meterName, err))
	}
	return m
}

// BytesMeasure creates a counter for byte volumes.
func BytesMeasure(mp metric.MeterProvider, pkg, meterName, description string) metric.Int64Counter {
	m, err := meter(mp, pkg).Int64Counter(
		pkg+meterName,
		metric.WithDescription(description),
		metric.WithUnit(unitBytes),
	)
	if err != nil {
		panic(fmt.Sprintf("pkg=%q meter=%q: %v", pkg, meterName, err))
	}
	return m
}

// Metrics groups the counters recorded by the localization engine.
type Metrics struct {
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	providerOpens  metric.Int64Counter
	providerBytes  metric.Int64Counter
	notifyFailures metric.Int64Counter
}

// NewMetrics registers the engine counters under pkg.
func NewMetrics(mp metric.MeterProvider, pkg string) *Metrics {
	return &Metrics{
		cacheHits:      DimensionlessMeasure(mp, pkg, "/cache_hits", "Resolutions served from the resource cache"),
		cacheMisses:    DimensionlessMeasure(mp, pkg, "/cache_misses", "Resolutions that had to query the provider"),
		providerOpens:  DimensionlessMeasure(mp, pkg, "/provider_opens", "Provider lookups by outcome"),
		providerBytes:  BytesMeasure(mp, pkg, "/provider_bytes", "Resource bytes loaded from the provider"),
		notifyFailures: DimensionlessMeasure(mp, pkg, "/notify_failures", "Change handlers that failed or panicked"),
	}
}

// CacheHit counts a resolution answered by the cache.
func (m *Metrics) CacheHit(ctx context.Context, kind string) {
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(AttrKindKey.String(kind)))
}

// CacheMiss counts a resolution that reached the provider.
func (m *Metrics) CacheMiss(ctx context.Context, kind string) {
	m.cacheMisses.Add(ctx, 1, metric.WithAttributes(AttrKindKey.String(kind)))
}

// ProviderOpen counts one provider lookup with its status.
func (m *Metrics) ProviderOpen(ctx context.Context, status string, size int) {
	m.providerOpens.Add(ctx, 1, metric.WithAttributes(AttrStatusKey.String(status)))
	if size > 0 {
		m.providerBytes.Add(ctx, int64(size))
	}
}

// NotifyFailure counts one failed change handler.
func (m *Metrics) NotifyFailure(ctx context.Context, property string) {
	m.notifyFailures.Add(ctx, 1, metric.WithAttributes(AttrMethodKey.String(property)))
}
