// Package relational compiles filter expressions into GORM clause
// expressions, usable with db.Where or as part of a clause.Where.
package relational

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"github.com/nlstn/go-filterql/internal/ast"
	"github.com/nlstn/go-filterql/internal/compile"
)

// Backend is the identifier passed to prepare hooks.
const Backend = compile.RelationalBackend

// Compile translates expr into a condition. A nil expression compiles to a
// nil condition.
func Compile(expr ast.Expression, opts compile.Options) (clause.Expression, error) {
	if expr == nil {
		return nil, nil
	}
	c := &compiler{compile.ValueNodes[clause.Expression]{Compiler: &compile.Compiler{
		Backend: Backend,
		Options: opts,
		Big:     exactDecimal,
	}}}
	return ast.Visit[clause.Expression](expr, c, false)
}

func exactDecimal(b *big.Int) (any, error) {
	return decimal.NewFromBigInt(b, 0), nil
}

type compiler struct {
	compile.ValueNodes[clause.Expression]
}

func (c *compiler) VisitParenthesized(p *ast.ParenthesizedExpression, negated bool) (clause.Expression, error) {
	return ast.Visit[clause.Expression](p.Expression, c, negated)
}

func (c *compiler) VisitNegative(n *ast.NegativeExpression, negated bool) (clause.Expression, error) {
	return ast.Visit[clause.Expression](n.Expression, c, !negated)
}

func (c *compiler) VisitLogical(l *ast.LogicalExpression, negated bool) (clause.Expression, error) {
	items := make([]clause.Expression, 0, len(l.Items))
	for _, item := range l.Items {
		compiled, err := ast.Visit[clause.Expression](item, c, false)
		if err != nil {
			return nil, err
		}
		items = append(items, compiled)
	}

	var group clause.Expression
	switch l.Op {
	case ast.And:
		group = clause.And(items...)
	case ast.Or:
		group = clause.Or(items...)
	default:
		return nil, c.Unsupported(l, "unknown logical operator "+string(l.Op))
	}

	// clause.Not distributes over AndConditions, so groups are negated as a
	// whole instead.
	if negated {
		return clause.Expr{SQL: "NOT ?", Vars: []interface{}{group}}, nil
	}
	return group, nil
}

func (c *compiler) VisitComparison(node *ast.ComparisonExpression, negated bool) (clause.Expression, error) {
	if fragment, handled, err := c.Prepare(node, negated); err != nil || handled {
		if err != nil {
			return nil, err
		}
		expr, ok := fragment.(clause.Expression)
		if !ok {
			return nil, c.Unsupported(node, fmt.Sprintf("prepare hook returned %T", fragment))
		}
		return expr, nil
	}

	cmp, err := c.Comparison(node, negated)
	if err != nil {
		return nil, err
	}

	var expr clause.Expression
	if cmp.Left.Kind == compile.KindField && cmp.Right.Kind == compile.KindValue {
		expr, err = c.columnCondition(cmp)
	} else {
		expr, err = c.expressionCondition(cmp)
	}
	if err != nil {
		return nil, err
	}

	if cmp.Negated {
		return clause.Not(expr), nil
	}
	return expr, nil
}

// columnCondition maps a column compared with a value onto the clause
// types GORM knows how to negate.
func (c *compiler) columnCondition(cmp compile.Comparison) (clause.Expression, error) {
	column := clause.Column{Name: cmp.Left.Field}
	right := cmp.Right

	if right.IsNull && cmp.Op != ast.OpEqual {
		return nil, c.Unsupported(cmp.Node, "null is only comparable with = and !=")
	}

	switch cmp.Op {
	case ast.OpEqual:
		return clause.Eq{Column: column, Value: right.Value}, nil
	case ast.OpGreater:
		return clause.Gt{Column: column, Value: right.Value}, nil
	case ast.OpGreaterOrEqual:
		return clause.Gte{Column: column, Value: right.Value}, nil
	case ast.OpLess:
		return clause.Lt{Column: column, Value: right.Value}, nil
	case ast.OpLessOrEqual:
		return clause.Lte{Column: column, Value: right.Value}, nil
	case ast.OpIn:
		return clause.IN{Column: column, Values: right.List()}, nil
	case ast.OpLike, ast.OpILike:
		pattern, ok := compile.Pattern(right)
		if !ok {
			return nil, c.Unsupported(cmp.Node, "pattern must be a string")
		}
		if cmp.Op == ast.OpILike {
			return clause.Expr{SQL: "LOWER(?) LIKE LOWER(?)", Vars: []interface{}{column, pattern}}, nil
		}
		return clause.Like{Column: column, Value: pattern}, nil
	}
	return nil, c.Unsupported(cmp.Node, "unknown operator "+string(cmp.Node.Op))
}

var sqlOperators = map[ast.ComparisonOperator]string{
	ast.OpEqual:          "=",
	ast.OpGreater:        ">",
	ast.OpGreaterOrEqual: ">=",
	ast.OpLess:           "<",
	ast.OpLessOrEqual:    "<=",
	ast.OpIn:             "IN",
	ast.OpLike:           "LIKE",
}

// expressionCondition handles comparisons between columns and over computed
// values as raw expressions with column placeholders.
func (c *compiler) expressionCondition(cmp compile.Comparison) (clause.Expression, error) {
	left := operand(cmp.Left)

	if cmp.Right.IsNull {
		if cmp.Op != ast.OpEqual {
			return nil, c.Unsupported(cmp.Node, "null is only comparable with = and !=")
		}
		return clause.Expr{SQL: "? IS NULL", Vars: []interface{}{left}}, nil
	}

	var right interface{}
	switch {
	case cmp.Op == ast.OpIn && cmp.Right.Kind == compile.KindValue:
		right = cmp.Right.List()
	case cmp.Op == ast.OpLike || cmp.Op == ast.OpILike:
		if cmp.Right.Kind == compile.KindValue {
			pattern, ok := compile.Pattern(cmp.Right)
			if !ok {
				return nil, c.Unsupported(cmp.Node, "pattern must be a string")
			}
			right = pattern
		} else {
			right = operand(cmp.Right)
		}
	default:
		right = operand(cmp.Right)
	}

	if cmp.Op == ast.OpILike {
		return clause.Expr{SQL: "LOWER(?) LIKE LOWER(?)", Vars: []interface{}{left, right}}, nil
	}
	op, ok := sqlOperators[cmp.Op]
	if !ok {
		return nil, c.Unsupported(cmp.Node, "unknown operator "+string(cmp.Node.Op))
	}
	return clause.Expr{SQL: "? " + op + " ?", Vars: []interface{}{left, right}}, nil
}

// operand renders one side as a column, a parenthesised arithmetic
// expression or a bound value.
func operand(o compile.Operand) interface{} {
	switch o.Kind {
	case compile.KindField:
		return clause.Column{Name: o.Field}
	case compile.KindComputed:
		acc := operand(o.Terms[0].Operand)
		for _, t := range o.Terms[1:] {
			acc = clause.Expr{SQL: "(? " + string(t.Op) + " ?)", Vars: []interface{}{acc, operand(t.Operand)}}
		}
		return acc
	}
	return o.Value
}
