// Package filterql parses a small filter expression language and compiles it
// into the native query shapes of MongoDB, Elasticsearch and SQL databases
// (through GORM).
//
//	expr, err := filterql.Parse(`(rate=1 or rate=2) and name="Demons"`)
//	if err != nil {
//	    return err
//	}
//	filter, err := filterql.CompileDocument(expr, filterql.Options{})
//
// Most callers combine several filters, some of them already compiled, with
// one of the Merge functions. An Engine adds logging, tracing and a parse
// cache on top of the same operations.
package filterql

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
	"gorm.io/gorm/clause"

	"github.com/nlstn/go-filterql/internal/ast"
	"github.com/nlstn/go-filterql/internal/compile"
	"github.com/nlstn/go-filterql/internal/docstore"
	"github.com/nlstn/go-filterql/internal/merge"
	"github.com/nlstn/go-filterql/internal/parser"
	"github.com/nlstn/go-filterql/internal/relational"
	"github.com/nlstn/go-filterql/internal/search"
)

// Backend identifiers accepted by Compile and Merge and passed to prepare
// hooks.
const (
	BackendDocument   = compile.DocumentBackend
	BackendSearch     = compile.SearchBackend
	BackendRelational = compile.RelationalBackend
)

// Expression is a parsed filter. Its String method returns canonical text.
type Expression = ast.Expression

// ComparisonOperator is one of = != > >= < <= in !in like ilike !like !ilike.
type ComparisonOperator = ast.ComparisonOperator

// Node types, for callers that inspect or build expressions.
type (
	NumberLiteral           = ast.NumberLiteral
	StringLiteral           = ast.StringLiteral
	DateLiteral             = ast.DateLiteral
	TimeLiteral             = ast.TimeLiteral
	BooleanLiteral          = ast.BooleanLiteral
	NullLiteral             = ast.NullLiteral
	QualifiedIdentifier     = ast.QualifiedIdentifier
	ExternalConstant        = ast.ExternalConstant
	ArrayExpression         = ast.ArrayExpression
	ArithmeticExpression    = ast.ArithmeticExpression
	ParenthesizedExpression = ast.ParenthesizedExpression
	NegativeExpression      = ast.NegativeExpression
	ComparisonExpression    = ast.ComparisonExpression
	LogicalExpression       = ast.LogicalExpression
)

// PrepareArgs describes the comparison handed to a PrepareFunc.
type PrepareArgs = ast.PrepareArgs

// PrepareFunc replaces the translation of a single comparison. It returns
// the backend-native fragment and handled=true, or handled=false to keep the
// default translation. Fragments must be bson.M for BackendDocument,
// *SearchQuery for BackendSearch and clause.Expression for BackendRelational.
type PrepareFunc = ast.PrepareFunc

// Options configures a compilation.
type Options = compile.Options

// SearchQuery is an Elasticsearch query from the typed API of
// github.com/elastic/go-elasticsearch/v8. A compiled *SearchQuery can be set
// as the Query of a search request.
type SearchQuery = search.Query

// MergeOptions configures the Merge functions.
type MergeOptions struct {
	// FieldPrefix places every field of the merged filter under this path,
	// e.g. "owner" turns rate into owner.rate.
	FieldPrefix string

	// Options is used to compile every text or Expression input.
	Options Options
}

// Parse parses filter text. Errors are *SyntaxError values, or several of
// them combined.
func Parse(text string) (Expression, error) {
	return parser.Parse(text)
}

// MustParse is like Parse but panics on malformed text. It is meant for
// filters written in source code.
func MustParse(text string) Expression {
	expr, err := parser.Parse(text)
	if err != nil {
		panic(fmt.Sprintf("filterql: Parse(%q): %v", text, err))
	}
	return expr
}

// Print returns the canonical text of expr. Parsing it again yields an
// equal expression.
func Print(expr Expression) string {
	return ast.Print(expr)
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Expression) bool {
	return ast.Equal(a, b)
}

// Fields returns the field paths referenced by expr in order of first
// appearance.
func Fields(expr Expression) []string {
	return ast.Fields(expr)
}

// Constants returns the names of the @constants referenced by expr.
func Constants(expr Expression) []string {
	return ast.Constants(expr)
}

// Fingerprint returns the 64-bit xxhash of the canonical text of expr.
// Filters that print identically share a fingerprint, which makes it usable
// as a cache key for compiled results.
func Fingerprint(expr Expression) uint64 {
	return xxhash.Sum64String(ast.Print(expr))
}

// Compile compiles expr for backend. The result is a bson.M, a *SearchQuery
// or a clause.Expression; a nil expr compiles to a nil filter.
func Compile(expr Expression, backend string, opts Options) (any, error) {
	switch backend {
	case BackendDocument:
		return CompileDocument(expr, opts)
	case BackendSearch:
		return CompileSearch(expr, opts)
	case BackendRelational:
		return CompileRelational(expr, opts)
	}
	return nil, unknownBackend(backend)
}

// CompileDocument compiles expr into a MongoDB query document.
func CompileDocument(expr Expression, opts Options) (bson.M, error) {
	return docstore.Compile(expr, opts)
}

// CompileSearch compiles expr into an Elasticsearch query.
func CompileSearch(expr Expression, opts Options) (*SearchQuery, error) {
	return search.Compile(expr, opts)
}

// CompileRelational compiles expr into a GORM condition for db.Where.
func CompileRelational(expr Expression, opts Options) (clause.Expression, error) {
	return relational.Compile(expr, opts)
}

// Merge combines inputs into one filter for backend that requires all of
// them to match. Inputs may be filter text, an Expression, a native filter
// of the backend, or a []string / []any of those. Empty inputs are skipped;
// when nothing is left the result is nil.
func Merge(backend string, inputs []any, opts MergeOptions) (any, error) {
	switch backend {
	case BackendDocument:
		return MergeDocument(inputs, opts)
	case BackendSearch:
		return MergeSearch(inputs, opts)
	case BackendRelational:
		return MergeRelational(inputs, opts)
	}
	return nil, unknownBackend(backend)
}

// MergeDocument merges inputs into a MongoDB query document. Inputs that
// constrain the same top-level key are combined under $and.
func MergeDocument(inputs []any, opts MergeOptions) (bson.M, error) {
	return merge.Merge(merge.Document, inputs, opts.internal())
}

// MergeSearch merges inputs into an Elasticsearch bool query.
func MergeSearch(inputs []any, opts MergeOptions) (*SearchQuery, error) {
	return merge.Merge(merge.Search, inputs, opts.internal())
}

// MergeRelational merges inputs into a GORM AND condition.
func MergeRelational(inputs []any, opts MergeOptions) (clause.Expression, error) {
	return merge.Merge(merge.Relational, inputs, opts.internal())
}

func (o MergeOptions) internal() merge.Options {
	return merge.Options{
		FieldPrefix: o.FieldPrefix,
		Compile:     o.Options,
	}
}

func unknownBackend(backend string) error {
	return fmt.Errorf("%w %q", ErrUnknownBackend, backend)
}
