// Package search compiles filter expressions into Elasticsearch query DSL.
//
// Queries are typed values from the official client's typedapi, so they can
// be set as the Query of a search request or encoded with encoding/json.
package search

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"

	"github.com/nlstn/go-filterql/internal/ast"
	"github.com/nlstn/go-filterql/internal/compile"
)

// Backend is the identifier passed to prepare hooks.
const Backend = compile.SearchBackend

// Query is a query DSL object.
type Query = types.Query

// Compile translates expr into a query. A nil expression compiles to a nil
// query.
func Compile(expr ast.Expression, opts compile.Options) (*Query, error) {
	if expr == nil {
		return nil, nil
	}
	c := &compiler{compile.ValueNodes[*Query]{Compiler: &compile.Compiler{
		Backend: Backend,
		Options: opts,
		Big:     jsonNumber,
	}}}
	return ast.Visit[*Query](expr, c, false)
}

func jsonNumber(b *big.Int) (any, error) {
	return json.Number(b.String()), nil
}

type compiler struct {
	compile.ValueNodes[*Query]
}

func (c *compiler) VisitParenthesized(p *ast.ParenthesizedExpression, negated bool) (*Query, error) {
	return ast.Visit[*Query](p.Expression, c, negated)
}

func (c *compiler) VisitNegative(n *ast.NegativeExpression, negated bool) (*Query, error) {
	return ast.Visit[*Query](n.Expression, c, !negated)
}

// VisitLogical compiles and to must and or to should. Under negation both
// become a must_not list of the children, compiled without negation.
func (c *compiler) VisitLogical(l *ast.LogicalExpression, negated bool) (*Query, error) {
	items := make([]Query, 0, len(l.Items))
	for _, item := range l.Items {
		compiled, err := ast.Visit[*Query](item, c, false)
		if err != nil {
			return nil, err
		}
		items = append(items, *compiled)
	}

	if negated {
		return &Query{Bool: &types.BoolQuery{MustNot: items}}, nil
	}
	switch l.Op {
	case ast.And:
		return &Query{Bool: &types.BoolQuery{Must: items}}, nil
	case ast.Or:
		return &Query{Bool: &types.BoolQuery{Should: items, MinimumShouldMatch: 1}}, nil
	}
	return nil, c.Unsupported(l, "unknown logical operator "+string(l.Op))
}

func (c *compiler) VisitComparison(node *ast.ComparisonExpression, negated bool) (*Query, error) {
	if fragment, handled, err := c.Prepare(node, negated); err != nil || handled {
		if err != nil {
			return nil, err
		}
		switch q := fragment.(type) {
		case *Query:
			return q, nil
		case Query:
			return &q, nil
		}
		return nil, c.Unsupported(node, fmt.Sprintf("prepare hook returned %T", fragment))
	}

	cmp, err := c.Comparison(node, negated)
	if err != nil {
		return nil, err
	}
	if cmp.Left.Kind != compile.KindField {
		return nil, c.Unsupported(node, "computed values cannot be queried")
	}
	if cmp.Right.Kind != compile.KindValue {
		return nil, c.Unsupported(node, "fields can only be compared with values")
	}

	field := cmp.Left.Field
	right := cmp.Right

	if right.IsNull {
		if cmp.Op != ast.OpEqual {
			return nil, c.Unsupported(node, "null is only comparable with = and !=")
		}
		return nullTable[cmp.Negated](field), nil
	}
	for _, v := range right.List() {
		if !finite(v) {
			return nil, c.Unsupported(node, fmt.Sprintf("%v has no JSON representation", v))
		}
	}

	var q *Query
	switch cmp.Op {
	case ast.OpEqual:
		q = term(field, right.Value)
	case ast.OpGreater, ast.OpGreaterOrEqual, ast.OpLess, ast.OpLessOrEqual:
		bound, ok := rangeQuery(cmp.Op, right)
		if !ok {
			return nil, c.Unsupported(node, fmt.Sprintf("%T cannot bound a range", right.Value))
		}
		q = &Query{Range: map[string]types.RangeQuery{field: bound}}
	case ast.OpIn:
		if !right.IsList {
			q = term(field, right.Value)
			break
		}
		values := make([]types.FieldValue, 0, len(right.List()))
		for _, v := range right.List() {
			values = append(values, v)
		}
		q = &Query{Terms: &types.TermsQuery{TermsQuery: map[string]types.TermsQueryField{field: values}}}
	case ast.OpLike, ast.OpILike:
		pattern, ok := compile.Pattern(right)
		if !ok {
			return nil, c.Unsupported(node, "pattern must be a string")
		}
		value := compile.LikeWildcard(pattern)
		wildcard := types.WildcardQuery{Value: &value}
		if cmp.Op == ast.OpILike {
			caseInsensitive := true
			wildcard.CaseInsensitive = &caseInsensitive
		}
		q = &Query{Wildcard: map[string]types.WildcardQuery{field: wildcard}}
	default:
		return nil, c.Unsupported(node, "unknown operator "+string(node.Op))
	}

	if cmp.Negated {
		return mustNot(q), nil
	}
	return q, nil
}

var nullTable = map[bool]func(field string) *Query{
	false: func(field string) *Query { return mustNot(exists(field)) },
	true:  exists,
}

func term(field string, value any) *Query {
	return &Query{Term: map[string]types.TermQuery{field: {Value: value}}}
}

func exists(field string) *Query {
	return &Query{Exists: &types.ExistsQuery{Field: field}}
}

func mustNot(q *Query) *Query {
	return &Query{Bool: &types.BoolQuery{MustNot: []Query{*q}}}
}

// rangeQuery picks the range variant for a bound: numbers use a number
// range, dates a date range, and strings or exact big integers a term range.
func rangeQuery(op ast.ComparisonOperator, bound compile.Operand) (types.RangeQuery, bool) {
	if bound.IsList {
		return nil, false
	}

	switch v := bound.Value.(type) {
	case json.Number:
		s := v.String()
		r := types.TermRangeQuery{}
		setBound(op, &r.Gt, &r.Gte, &r.Lt, &r.Lte, &s)
		return r, true
	case string:
		if _, ok := bound.Expr.(*ast.DateLiteral); ok {
			r := types.DateRangeQuery{}
			setBound(op, &r.Gt, &r.Gte, &r.Lt, &r.Lte, &v)
			return r, true
		}
		r := types.TermRangeQuery{}
		setBound(op, &r.Gt, &r.Gte, &r.Lt, &r.Lte, &v)
		return r, true
	}

	if s, ok := wideInteger(bound.Value); ok {
		r := types.TermRangeQuery{}
		setBound(op, &r.Gt, &r.Gte, &r.Lt, &r.Lte, &s)
		return r, true
	}
	f, ok := toFloat(bound.Value)
	if !ok {
		return nil, false
	}
	n := types.Float64(f)
	r := types.NumberRangeQuery{}
	setBound(op, &r.Gt, &r.Gte, &r.Lt, &r.Lte, &n)
	return r, true
}

func setBound[T any](op ast.ComparisonOperator, gt, gte, lt, lte **T, v *T) {
	switch op {
	case ast.OpGreater:
		*gt = v
	case ast.OpGreaterOrEqual:
		*gte = v
	case ast.OpLess:
		*lt = v
	case ast.OpLessOrEqual:
		*lte = v
	}
}

// wideInteger formats integers that a float64 bound would round.
func wideInteger(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i := rv.Int(); i > ast.MaxSafeInteger || i < -ast.MaxSafeInteger {
			return strconv.FormatInt(i, 10), true
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := rv.Uint(); u > ast.MaxSafeInteger {
			return strconv.FormatUint(u, 10), true
		}
	}
	return "", false
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// finite reports whether v encodes as a JSON number. Infinities and NaN are
// rejected by encoding/json and by Elasticsearch.
func finite(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return !math.IsInf(f, 0) && !math.IsNaN(f)
	}
	return true
}
