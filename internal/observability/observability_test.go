package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(
		WithServiceName("test-service"),
		WithFilterText(),
	)

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected service name 'test-service', got '%s'", cfg.ServiceName)
	}
	if !cfg.FilterTextEnabled() {
		t.Error("expected filter text recording to be enabled")
	}
	if cfg.IsEnabled() {
		t.Error("expected observability to be disabled without providers")
	}
}

func TestConfigWithProviders(t *testing.T) {
	cfg := NewConfig(
		WithTracerProvider(tracenoop.NewTracerProvider()),
		WithMeterProvider(noop.NewMeterProvider()),
	)

	if !cfg.IsEnabled() {
		t.Error("expected observability to be enabled")
	}
	if cfg.Tracer() == nil {
		t.Error("expected tracer to be initialized")
	}
	if cfg.Metrics() == nil {
		t.Error("expected metrics to be initialized")
	}
}

func TestNilConfig(t *testing.T) {
	var cfg *Config

	if cfg.IsEnabled() {
		t.Error("nil config should not be enabled")
	}
	if cfg.FilterTextEnabled() {
		t.Error("nil config should not record filter text")
	}
	if cfg.Tracer() == nil {
		t.Error("nil config should return a noop tracer")
	}
	if cfg.Metrics() == nil {
		t.Error("nil config should return noop metrics")
	}
}

func TestNoopTracer(t *testing.T) {
	tracer := NewNoopTracer()
	ctx := context.Background()

	ctx, span := tracer.StartParse(ctx, 12)
	span.End()

	ctx, span = tracer.StartCompile(ctx, "document", 42)
	tracer.RecordError(span, errors.New("boom"))
	span.End()

	_, span = tracer.StartMerge(ctx, "search", 3)
	tracer.RecordError(span, nil)
	span.End()
}

func TestNoopMetrics(t *testing.T) {
	metrics := NewNoopMetrics()
	ctx := context.Background()

	metrics.RecordParse(ctx, true)
	metrics.RecordCompile(ctx, "relational", time.Millisecond)
	metrics.RecordMerge(ctx, "document", 2)
	metrics.RecordError(ctx, OpParse, "syntax")
}

func TestNewMetrics(t *testing.T) {
	if NewMetrics(noop.NewMeterProvider()) == nil {
		t.Fatal("NewMetrics() should return non-nil metrics")
	}
}

func TestAttributes(t *testing.T) {
	tests := []struct {
		attr     attribute.KeyValue
		key      string
		expected string
	}{
		{BackendAttr("search"), AttrBackend, "search"},
		{FilterAttr("rate>5"), AttrFilter, "rate>5"},
		{FilterHashAttr(255), AttrFilterHash, "00000000000000ff"},
		{OperationAttr(OpMerge), AttrOperation, "merge"},
	}

	for _, tt := range tests {
		if string(tt.attr.Key) != tt.key {
			t.Errorf("key = %q, want %q", tt.attr.Key, tt.key)
		}
		if tt.attr.Value.AsString() != tt.expected {
			t.Errorf("%s = %q, want %q", tt.key, tt.attr.Value.AsString(), tt.expected)
		}
	}

	if !CacheHitAttr(true).Value.AsBool() {
		t.Error("CacheHitAttr(true) should be true")
	}
	if InputCountAttr(3).Value.AsInt64() != 3 {
		t.Error("InputCountAttr(3) should be 3")
	}
}

func TestLoggerWithTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	if LoggerWithTrace(context.Background(), logger) != logger {
		t.Error("LoggerWithTrace() without a span should return the logger unchanged")
	}

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	LoggerWithTrace(ctx, logger).Info("compiled")

	out := buf.String()
	if !strings.Contains(out, "trace_id=0102030405060708090a0b0c0d0e0f10") {
		t.Errorf("expected trace id in %q", out)
	}
	if !strings.Contains(out, "span_id=0102030405060708") {
		t.Errorf("expected span id in %q", out)
	}
}
