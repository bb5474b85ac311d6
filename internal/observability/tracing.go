package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an OpenTelemetry tracer with filter-specific span creation
// methods.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

// NewTracer creates a new Tracer using the given TracerProvider.
func NewTracer(tp trace.TracerProvider, serviceName string) *Tracer {
	return &Tracer{
		tracer:      tp.Tracer(TracerName),
		serviceName: serviceName,
	}
}

// StartSpan starts a new span with the given name and attributes.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartParse starts a span for parsing filter text.
func (t *Tracer) StartParse(ctx context.Context, length int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanParse, trace.WithAttributes(
		OperationAttr(OpParse),
		attribute.Int("filterql.filter.length", length),
	))
}

// StartCompile starts a span for compiling an expression for backend.
func (t *Tracer) StartCompile(ctx context.Context, backend string, hash uint64) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanCompile, trace.WithAttributes(
		OperationAttr(OpCompile),
		BackendAttr(backend),
		FilterHashAttr(hash),
	))
}

// StartMerge starts a span for merging inputs for backend.
func (t *Tracer) StartMerge(ctx context.Context, backend string, inputs int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanMerge, trace.WithAttributes(
		OperationAttr(OpMerge),
		BackendAttr(backend),
		InputCountAttr(inputs),
	))
}

// RecordError records an error on the span.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// LoggerWithTrace returns a logger enriched with trace context.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return logger
	}
	return logger.With(
		slog.String(LogFieldTraceID, span.SpanContext().TraceID().String()),
		slog.String(LogFieldSpanID, span.SpanContext().SpanID().String()),
	)
}
