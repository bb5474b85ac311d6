package ast

import "fmt"

// Visitor has one method per node type. Backend compilers implement it in
// full, so adding a node type to this package breaks the build of every
// backend until it handles the new node.
//
// negated is true when the node sits under an odd number of not operators.
type Visitor[T any] interface {
	VisitNumber(n *NumberLiteral, negated bool) (T, error)
	VisitString(s *StringLiteral, negated bool) (T, error)
	VisitDate(d *DateLiteral, negated bool) (T, error)
	VisitTime(t *TimeLiteral, negated bool) (T, error)
	VisitBoolean(b *BooleanLiteral, negated bool) (T, error)
	VisitNull(n *NullLiteral, negated bool) (T, error)
	VisitIdentifier(q *QualifiedIdentifier, negated bool) (T, error)
	VisitConstant(c *ExternalConstant, negated bool) (T, error)
	VisitArray(a *ArrayExpression, negated bool) (T, error)
	VisitArithmetic(a *ArithmeticExpression, negated bool) (T, error)
	VisitParenthesized(p *ParenthesizedExpression, negated bool) (T, error)
	VisitNegative(n *NegativeExpression, negated bool) (T, error)
	VisitComparison(c *ComparisonExpression, negated bool) (T, error)
	VisitLogical(l *LogicalExpression, negated bool) (T, error)
}

// Visit dispatches e to the matching Visitor method.
func Visit[T any](e Expression, v Visitor[T], negated bool) (T, error) {
	switch n := e.(type) {
	case *NumberLiteral:
		return v.VisitNumber(n, negated)
	case *StringLiteral:
		return v.VisitString(n, negated)
	case *DateLiteral:
		return v.VisitDate(n, negated)
	case *TimeLiteral:
		return v.VisitTime(n, negated)
	case *BooleanLiteral:
		return v.VisitBoolean(n, negated)
	case *NullLiteral:
		return v.VisitNull(n, negated)
	case *QualifiedIdentifier:
		return v.VisitIdentifier(n, negated)
	case *ExternalConstant:
		return v.VisitConstant(n, negated)
	case *ArrayExpression:
		return v.VisitArray(n, negated)
	case *ArithmeticExpression:
		return v.VisitArithmetic(n, negated)
	case *ParenthesizedExpression:
		return v.VisitParenthesized(n, negated)
	case *NegativeExpression:
		return v.VisitNegative(n, negated)
	case *ComparisonExpression:
		return v.VisitComparison(n, negated)
	case *LogicalExpression:
		return v.VisitLogical(n, negated)
	}
	var zero T
	return zero, fmt.Errorf("ast: unknown expression type %T", e)
}
