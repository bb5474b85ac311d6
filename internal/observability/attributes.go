// Package observability provides OpenTelemetry-based instrumentation for
// filter parsing, compilation and merging.
//
// All observability features are opt-in. When not configured, no-op
// implementations are used.
package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

// Instrumentation identity constants
const (
	// TracerName is the instrumentation name for tracing.
	TracerName = "github.com/nlstn/go-filterql"
	// MeterName is the instrumentation name for metrics.
	MeterName = "github.com/nlstn/go-filterql"
)

// Span names.
const (
	SpanParse   = "filterql.parse"
	SpanCompile = "filterql.compile"
	SpanMerge   = "filterql.merge"
)

// Semantic attribute keys.
const (
	AttrBackend    = "filterql.backend"
	AttrFilter     = "filterql.filter"
	AttrFilterHash = "filterql.filter.hash"
	AttrCacheHit   = "filterql.cache.hit"
	AttrInputCount = "filterql.merge.inputs"
	AttrOperation  = "filterql.operation"
	AttrErrorType  = "error.type"
)

// Operation values for the filterql.operation attribute.
const (
	OpParse   = "parse"
	OpCompile = "compile"
	OpMerge   = "merge"
)

// Log field keys for structured logging with trace context.
const (
	LogFieldTraceID  = "trace_id"
	LogFieldSpanID   = "span_id"
	LogFieldBackend  = "backend"
	LogFieldFilter   = "filter"
	LogFieldDuration = "duration_ms"
	LogFieldError    = "error"
)

// BackendAttr creates an attribute for the backend identifier.
func BackendAttr(backend string) attribute.KeyValue {
	return attribute.String(AttrBackend, backend)
}

// FilterAttr creates an attribute for filter text.
func FilterAttr(filter string) attribute.KeyValue {
	return attribute.String(AttrFilter, filter)
}

// FilterHashAttr creates an attribute for the fingerprint of a filter.
func FilterHashAttr(hash uint64) attribute.KeyValue {
	return attribute.String(AttrFilterHash, formatHash(hash))
}

// OperationAttr creates an attribute for the operation type.
func OperationAttr(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// CacheHitAttr creates an attribute recording whether the parse cache was hit.
func CacheHitAttr(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrCacheHit, hit)
}

// InputCountAttr creates an attribute for the number of merge inputs.
func InputCountAttr(n int) attribute.KeyValue {
	return attribute.Int(AttrInputCount, n)
}

func formatHash(hash uint64) string {
	return fmt.Sprintf("%016x", hash)
}
