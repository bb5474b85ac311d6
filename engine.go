package filterql

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
	"gorm.io/gorm/clause"

	"github.com/nlstn/go-filterql/internal/ast"
	"github.com/nlstn/go-filterql/internal/cache"
	"github.com/nlstn/go-filterql/internal/compile"
	"github.com/nlstn/go-filterql/internal/docstore"
	"github.com/nlstn/go-filterql/internal/merge"
	"github.com/nlstn/go-filterql/internal/observability"
	"github.com/nlstn/go-filterql/internal/parser"
	"github.com/nlstn/go-filterql/internal/relational"
	"github.com/nlstn/go-filterql/internal/search"
)

// Engine runs parse, compile and merge with shared options, structured
// logging, OpenTelemetry instrumentation and a parse cache. An Engine is
// safe for concurrent use once constructed.
type Engine struct {
	// logger is used for structured logging of every operation
	logger *slog.Logger
	// observability holds the tracer and metrics; never nil
	observability *observability.Config
	// constants are merged under the constants of each call
	constants map[string]any
	// prepare is the default prepare hook
	prepare PrepareFunc
	// cache holds parsed expressions keyed by their text; nil disables caching
	cache *cache.ParseCache
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger. If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObservability enables OpenTelemetry tracing and metrics, configured by
// the options of the observability package (tracer provider, meter
// provider, service name).
func WithObservability(opts ...observability.Option) EngineOption {
	return func(e *Engine) {
		e.observability = observability.NewConfig(opts...)
	}
}

// WithConstants binds @name references for every compilation. Constants
// passed to an individual call take precedence.
func WithConstants(constants map[string]any) EngineOption {
	return func(e *Engine) {
		if e.constants == nil {
			e.constants = make(map[string]any, len(constants))
		}
		maps.Copy(e.constants, constants)
	}
}

// WithPrepare sets the prepare hook used when a call supplies none.
func WithPrepare(prepare PrepareFunc) EngineOption {
	return func(e *Engine) {
		e.prepare = prepare
	}
}

// WithParseCacheSize sets the capacity of the parse cache. Zero or a
// negative size disables caching.
func WithParseCacheSize(size int) EngineOption {
	return func(e *Engine) {
		if size <= 0 {
			e.cache = nil
			return
		}
		e.cache = cache.New(size)
	}
}

// NewEngine creates an Engine. By default it logs to slog.Default(), uses
// no-op tracing and metrics and caches up to cache.DefaultSize parsed
// filters.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger:        slog.Default(),
		observability: observability.NewConfig(),
		cache:         cache.New(cache.DefaultSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parse parses filter text, serving repeated text from the parse cache.
func (e *Engine) Parse(ctx context.Context, text string) (Expression, error) {
	tracer := e.observability.Tracer()
	ctx, span := tracer.StartParse(ctx, len(text))
	defer span.End()

	var (
		expr Expression
		hit  bool
		err  error
	)
	if e.cache != nil {
		expr, hit, err = e.cache.GetOrParse(text, parser.Parse)
	} else {
		expr, err = parser.Parse(text)
	}
	span.SetAttributes(observability.CacheHitAttr(hit))
	e.observability.Metrics().RecordParse(ctx, hit)

	if err != nil {
		tracer.RecordError(span, err)
		e.failed(ctx, observability.OpParse, err, slog.String(observability.LogFieldFilter, text))
		return nil, err
	}
	return expr, nil
}

// Compile compiles expr for backend. See the package-level Compile.
func (e *Engine) Compile(ctx context.Context, expr Expression, backend string, opts Options) (any, error) {
	switch backend {
	case BackendDocument:
		return e.CompileDocument(ctx, expr, opts)
	case BackendSearch:
		return e.CompileSearch(ctx, expr, opts)
	case BackendRelational:
		return e.CompileRelational(ctx, expr, opts)
	}
	return nil, unknownBackend(backend)
}

// CompileDocument compiles expr into a MongoDB query document.
func (e *Engine) CompileDocument(ctx context.Context, expr Expression, opts Options) (bson.M, error) {
	return instrumentedCompile(ctx, e, BackendDocument, docstore.Compile, expr, opts)
}

// CompileSearch compiles expr into an Elasticsearch query.
func (e *Engine) CompileSearch(ctx context.Context, expr Expression, opts Options) (*SearchQuery, error) {
	return instrumentedCompile(ctx, e, BackendSearch, search.Compile, expr, opts)
}

// CompileRelational compiles expr into a GORM condition.
func (e *Engine) CompileRelational(ctx context.Context, expr Expression, opts Options) (clause.Expression, error) {
	return instrumentedCompile(ctx, e, BackendRelational, relational.Compile, expr, opts)
}

// Merge combines inputs for backend. See the package-level Merge.
func (e *Engine) Merge(ctx context.Context, backend string, inputs []any, opts MergeOptions) (any, error) {
	switch backend {
	case BackendDocument:
		return e.MergeDocument(ctx, inputs, opts)
	case BackendSearch:
		return e.MergeSearch(ctx, inputs, opts)
	case BackendRelational:
		return e.MergeRelational(ctx, inputs, opts)
	}
	return nil, unknownBackend(backend)
}

// MergeDocument merges inputs into a MongoDB query document.
func (e *Engine) MergeDocument(ctx context.Context, inputs []any, opts MergeOptions) (bson.M, error) {
	return instrumentedMerge(ctx, e, merge.Document, inputs, opts)
}

// MergeSearch merges inputs into an Elasticsearch query.
func (e *Engine) MergeSearch(ctx context.Context, inputs []any, opts MergeOptions) (*SearchQuery, error) {
	return instrumentedMerge(ctx, e, merge.Search, inputs, opts)
}

// MergeRelational merges inputs into a GORM condition.
func (e *Engine) MergeRelational(ctx context.Context, inputs []any, opts MergeOptions) (clause.Expression, error) {
	return instrumentedMerge(ctx, e, merge.Relational, inputs, opts)
}

// options fills in the engine defaults under opts.
func (e *Engine) options(opts Options) Options {
	if len(e.constants) > 0 {
		constants := make(map[string]any, len(e.constants)+len(opts.Constants))
		maps.Copy(constants, e.constants)
		maps.Copy(constants, opts.Constants)
		opts.Constants = constants
	}
	if opts.Prepare == nil {
		opts.Prepare = e.prepare
	}
	return opts
}

func (e *Engine) failed(ctx context.Context, operation string, err error, attrs ...any) {
	e.observability.Metrics().RecordError(ctx, operation, errorType(err))
	args := append([]any{slog.String(observability.LogFieldError, err.Error())}, attrs...)
	observability.LoggerWithTrace(ctx, e.logger).WarnContext(ctx, "filter "+operation+" failed", args...)
}

func instrumentedCompile[F any](
	ctx context.Context,
	e *Engine,
	backend string,
	fn func(ast.Expression, compile.Options) (F, error),
	expr Expression,
	opts Options,
) (F, error) {
	if expr == nil {
		var zero F
		return zero, nil
	}

	text := ast.Print(expr)
	var fingerprint uint64
	if e.observability.IsEnabled() {
		fingerprint = xxhash.Sum64String(text)
	}
	tracer := e.observability.Tracer()
	ctx, span := tracer.StartCompile(ctx, backend, fingerprint)
	defer span.End()
	if e.observability.FilterTextEnabled() {
		span.SetAttributes(observability.FilterAttr(text))
	}

	start := time.Now()
	result, err := fn(expr, e.options(opts))
	e.observability.Metrics().RecordCompile(ctx, backend, time.Since(start))
	if err != nil {
		tracer.RecordError(span, err)
		e.failed(ctx, observability.OpCompile, err,
			slog.String(observability.LogFieldBackend, backend),
			slog.String(observability.LogFieldFilter, text),
		)
		return result, err
	}

	observability.LoggerWithTrace(ctx, e.logger).DebugContext(ctx, "filter compiled",
		slog.String(observability.LogFieldBackend, backend),
		slog.String(observability.LogFieldFilter, text),
	)
	return result, nil
}

func instrumentedMerge[F any](ctx context.Context, e *Engine, target merge.Target[F], inputs []any, opts MergeOptions) (F, error) {
	tracer := e.observability.Tracer()
	ctx, span := tracer.StartMerge(ctx, target.Backend, len(inputs))
	defer span.End()
	e.observability.Metrics().RecordMerge(ctx, target.Backend, len(inputs))

	compileFn := target.Compile
	target.Compile = func(expr ast.Expression, o compile.Options) (F, error) {
		return instrumentedCompile(ctx, e, target.Backend, compileFn, expr, o)
	}

	result, err := merge.Merge(target, inputs, merge.Options{
		FieldPrefix: opts.FieldPrefix,
		Compile:     opts.Options,
		Parse: func(text string) (ast.Expression, error) {
			return e.Parse(ctx, text)
		},
	})
	if err != nil {
		tracer.RecordError(span, err)
		e.failed(ctx, observability.OpMerge, err, slog.String(observability.LogFieldBackend, target.Backend))
		return result, err
	}
	return result, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrSyntax):
		return "syntax"
	case errors.Is(err, ErrUnsupportedOperation):
		return "unsupported_operation"
	case errors.Is(err, ErrUnresolvedConstant):
		return "unresolved_constant"
	case errors.Is(err, ErrUnknownBackend):
		return "unknown_backend"
	}
	return "other"
}
