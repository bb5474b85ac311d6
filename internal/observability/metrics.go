package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the filter metric instruments.
type Metrics struct {
	parseCount      metric.Int64Counter
	compileDuration metric.Float64Histogram
	mergeInputs     metric.Int64Histogram
	errorCount      metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with the given MeterProvider.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	meter := mp.Meter(MeterName)
	m := &Metrics{}

	// Instrument creation only fails for invalid names or units; fall back
	// to the bare instrument in that case.
	var err error

	m.parseCount, err = meter.Int64Counter(
		"filterql.parse.count",
		metric.WithDescription("Total number of filters parsed"),
		metric.WithUnit("{filter}"),
	)
	if err != nil {
		m.parseCount, _ = meter.Int64Counter("filterql.parse.count")
	}

	m.compileDuration, err = meter.Float64Histogram(
		"filterql.compile.duration",
		metric.WithDescription("Duration of filter compilation in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.compileDuration, _ = meter.Float64Histogram("filterql.compile.duration")
	}

	m.mergeInputs, err = meter.Int64Histogram(
		"filterql.merge.inputs",
		metric.WithDescription("Number of inputs per merge"),
		metric.WithUnit("{filter}"),
	)
	if err != nil {
		m.mergeInputs, _ = meter.Int64Histogram("filterql.merge.inputs")
	}

	m.errorCount, err = meter.Int64Counter(
		"filterql.error.count",
		metric.WithDescription("Total number of failed parse, compile and merge calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.errorCount, _ = meter.Int64Counter("filterql.error.count")
	}

	return m
}

// RecordParse records a parse, noting whether it was served from cache.
func (m *Metrics) RecordParse(ctx context.Context, cacheHit bool) {
	m.parseCount.Add(ctx, 1, metric.WithAttributes(CacheHitAttr(cacheHit)))
}

// RecordCompile records the duration of a compilation.
func (m *Metrics) RecordCompile(ctx context.Context, backend string, duration time.Duration) {
	m.compileDuration.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(BackendAttr(backend)))
}

// RecordMerge records the number of inputs of a merge.
func (m *Metrics) RecordMerge(ctx context.Context, backend string, inputs int) {
	m.mergeInputs.Record(ctx, int64(inputs), metric.WithAttributes(BackendAttr(backend)))
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError(ctx context.Context, operation, errorType string) {
	m.errorCount.Add(ctx, 1, metric.WithAttributes(
		OperationAttr(operation),
		attribute.String(AttrErrorType, errorType),
	))
}
