// Package docstore compiles filter expressions into MongoDB query documents.
package docstore

import (
	"fmt"
	"math/big"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nlstn/go-filterql/internal/ast"
	"github.com/nlstn/go-filterql/internal/compile"
)

// Backend is the identifier passed to prepare hooks.
const Backend = compile.DocumentBackend

// Compile translates expr into a query document. A nil expression compiles to
// a nil document.
func Compile(expr ast.Expression, opts compile.Options) (bson.M, error) {
	if expr == nil {
		return nil, nil
	}
	c := &compiler{compile.ValueNodes[bson.M]{Compiler: &compile.Compiler{
		Backend: Backend,
		Options: opts,
		Big:     decimal128,
	}}}
	return ast.Visit[bson.M](expr, c, false)
}

func decimal128(b *big.Int) (any, error) {
	d, ok := bson.ParseDecimal128FromBigInt(b, 0)
	if !ok {
		return nil, fmt.Errorf("integer %s does not fit a decimal128", b)
	}
	return d, nil
}

type compiler struct {
	compile.ValueNodes[bson.M]
}

func (c *compiler) VisitParenthesized(p *ast.ParenthesizedExpression, negated bool) (bson.M, error) {
	return ast.Visit[bson.M](p.Expression, c, negated)
}

func (c *compiler) VisitNegative(n *ast.NegativeExpression, negated bool) (bson.M, error) {
	return ast.Visit[bson.M](n.Expression, c, !negated)
}

// VisitLogical compiles the children without negation and moves the
// negation onto the container: not (a and b) is $nor of one $and, not (a or
// b) is $nor of the children.
func (c *compiler) VisitLogical(l *ast.LogicalExpression, negated bool) (bson.M, error) {
	items := make(bson.A, 0, len(l.Items))
	for _, item := range l.Items {
		compiled, err := ast.Visit[bson.M](item, c, false)
		if err != nil {
			return nil, err
		}
		items = append(items, compiled)
	}

	switch {
	case l.Op == ast.And && !negated:
		return bson.M{"$and": items}, nil
	case l.Op == ast.Or && !negated:
		return bson.M{"$or": items}, nil
	case l.Op == ast.And:
		return bson.M{"$nor": bson.A{bson.M{"$and": items}}}, nil
	case l.Op == ast.Or:
		return bson.M{"$nor": items}, nil
	}
	return nil, c.Unsupported(l, "unknown logical operator "+string(l.Op))
}

func (c *compiler) VisitComparison(node *ast.ComparisonExpression, negated bool) (bson.M, error) {
	if fragment, handled, err := c.Prepare(node, negated); err != nil || handled {
		if err != nil {
			return nil, err
		}
		return c.fragment(node, fragment)
	}

	cmp, err := c.Comparison(node, negated)
	if err != nil {
		return nil, err
	}

	if cmp.Left.Kind != compile.KindField || cmp.Right.Kind != compile.KindValue {
		return c.aggregate(cmp)
	}

	field := cmp.Left.Field
	right := cmp.Right

	if right.IsNull {
		if cmp.Op != ast.OpEqual {
			return nil, c.Unsupported(node, "null is only comparable with = and !=")
		}
		return nullTable[cmp.Negated](field), nil
	}

	switch cmp.Op {
	case ast.OpEqual:
		if cmp.Negated {
			return bson.M{field: bson.M{"$ne": value(right.Value)}}, nil
		}
		return bson.M{field: bson.M{"$eq": value(right.Value)}}, nil
	case ast.OpGreater, ast.OpGreaterOrEqual, ast.OpLess, ast.OpLessOrEqual:
		return bson.M{field: not(bson.M{comparisonOperators[cmp.Op]: value(right.Value)}, cmp.Negated)}, nil
	case ast.OpIn:
		list := value(right.List())
		if cmp.Negated {
			return bson.M{field: bson.M{"$nin": list}}, nil
		}
		return bson.M{field: bson.M{"$in": list}}, nil
	case ast.OpLike, ast.OpILike:
		pattern, ok := compile.Pattern(right)
		if !ok {
			return nil, c.Unsupported(node, "pattern must be a string")
		}
		regex := bson.Regex{Pattern: compile.LikeRegex(pattern)}
		if cmp.Op == ast.OpILike {
			regex.Options = "i"
		}
		return bson.M{field: not(regex, cmp.Negated)}, nil
	}
	return nil, c.Unsupported(node, "unknown operator "+string(node.Op))
}

// nullTable maps the effective negation of field = null to its document.
var nullTable = map[bool]func(field string) bson.M{
	false: func(field string) bson.M {
		return bson.M{"$or": bson.A{
			bson.M{field: nil},
			bson.M{field: bson.M{"$exists": false}},
		}}
	},
	true: func(field string) bson.M {
		return bson.M{field: bson.M{"$exists": true, "$ne": nil}}
	},
}

var comparisonOperators = map[ast.ComparisonOperator]string{
	ast.OpEqual:          "$eq",
	ast.OpGreater:        "$gt",
	ast.OpGreaterOrEqual: "$gte",
	ast.OpLess:           "$lt",
	ast.OpLessOrEqual:    "$lte",
}

func not(condition any, negated bool) any {
	if negated {
		return bson.M{"$not": condition}
	}
	return condition
}

// value converts resolved lists to bson.A at every depth.
func value(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	out := make(bson.A, len(list))
	for i, item := range list {
		out[i] = value(item)
	}
	return out
}

func (c *compiler) fragment(node *ast.ComparisonExpression, fragment any) (bson.M, error) {
	switch f := fragment.(type) {
	case bson.M:
		return f, nil
	case map[string]any:
		return bson.M(f), nil
	case bson.D:
		m := make(bson.M, len(f))
		for _, e := range f {
			m[e.Key] = e.Value
		}
		return m, nil
	}
	return nil, c.Unsupported(node, fmt.Sprintf("prepare hook returned %T", fragment))
}
