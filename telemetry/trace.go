package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/pitabwire/util"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys used across lingua.
//
//nolint:gochecknoglobals // OpenTelemetry attribute keys must be global for reuse
var (
	AttrMethodKey  = attribute.Key("lingua_method")
	AttrPackageKey = attribute.Key("lingua_package")
	AttrStatusKey  = attribute.Key("lingua_status")
	AttrErrorKey   = attribute.Key("lingua_error")
	AttrCultureKey = attribute.Key("lingua_culture")
	AttrKindKey    = attribute.Key("lingua_kind")
)

type contextKey string

const (
	startTimeContextKey  contextKey = "spanStartTimeCtxKey"
	methodNameContextKey contextKey = "methodNameCtxKey"
)

type tracer struct {
	name           string
	tracer         trace.Tracer
	latencyMeasure metric.Float64Histogram
}

// NewTracer creates a tracer for a package. Nil providers fall back to the
// otel globals.
func NewTracer(name string, tp trace.TracerProvider, mp metric.MeterProvider) Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &tracer{
		name:           name,
		tracer:         tp.Tracer(name),
		latencyMeasure: LatencyMeasure(mp, name),
	}
}

// Start creates and starts a new span and returns the updated context and span.
// The caller is responsible for ending the span.
//
//nolint:spancheck // spans are returned to the caller who ends them
func (t *tracer) Start(
	ctx context.Context,
	spanName string,
	options ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	fullName := t.name + "/" + spanName

	options = append(options, trace.WithAttributes(AttrMethodKey.String(spanName)))

	sCtx, span := t.tracer.Start(ctx, spanName, options...)
	sCtx = context.WithValue(sCtx, startTimeContextKey, time.Now())
	return context.WithValue(sCtx, methodNameContextKey, fullName), span
}

// End completes a span with error information if applicable.
func (t *tracer) End(ctx context.Context, span trace.Span, err error, options ...trace.SpanEndOption) {
	startTime, ok := ctx.Value(startTimeContextKey).(time.Time)
	if !ok {
		util.Log(ctx).Error("span context is missing its start time")
		span.End(options...)
		return
	}
	elapsed := time.Since(startTime)

	if err != nil {
		span.SetAttributes(AttrErrorKey.String(err.Error()))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End(options...)

	methodName, _ := ctx.Value(methodNameContextKey).(string)

	t.latencyMeasure.Record(ctx,
		float64(elapsed.Microseconds())/float64(time.Millisecond/time.Microsecond),
		metric.WithAttributes(
			AttrStatusKey.String(ErrorCode(err)),
			AttrMethodKey.String(methodName)),
	)
}

// ErrorCode maps err to a low cardinality status label.
func ErrorCode(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "deadline exceeded"
	}
	return "err"
}
