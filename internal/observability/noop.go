package observability

import (
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// NewNoopTracer creates a tracer that does nothing.
func NewNoopTracer() *Tracer {
	return &Tracer{
		tracer: tracenoop.NewTracerProvider().Tracer(""),
	}
}

// NewNoopMetrics creates metrics that do nothing.
func NewNoopMetrics() *Metrics {
	meter := noop.NewMeterProvider().Meter("")
	m := &Metrics{}

	// noop instruments never fail.
	m.parseCount, _ = meter.Int64Counter("filterql.parse.count")                //nolint:errcheck
	m.compileDuration, _ = meter.Float64Histogram("filterql.compile.duration") //nolint:errcheck
	m.mergeInputs, _ = meter.Int64Histogram("filterql.merge.inputs")           //nolint:errcheck
	m.errorCount, _ = meter.Int64Counter("filterql.error.count")               //nolint:errcheck

	return m
}
