package compile

import "github.com/nlstn/go-filterql/internal/ast"

// ValueNodes implements the value-node half of ast.Visitor[T]. A backend
// embeds it and supplies VisitParenthesized, VisitNegative, VisitComparison
// and VisitLogical; a value reached in predicate position is rejected.
type ValueNodes[T any] struct {
	*Compiler
}

func (v ValueNodes[T]) reject(e ast.Expression) (T, error) {
	var zero T
	return zero, v.Unsupported(e, "value used as a predicate")
}

func (v ValueNodes[T]) VisitNumber(n *ast.NumberLiteral, _ bool) (T, error) { return v.reject(n) }

func (v ValueNodes[T]) VisitString(s *ast.StringLiteral, _ bool) (T, error) { return v.reject(s) }

func (v ValueNodes[T]) VisitDate(d *ast.DateLiteral, _ bool) (T, error) { return v.reject(d) }

func (v ValueNodes[T]) VisitTime(t *ast.TimeLiteral, _ bool) (T, error) { return v.reject(t) }

func (v ValueNodes[T]) VisitBoolean(b *ast.BooleanLiteral, _ bool) (T, error) { return v.reject(b) }

func (v ValueNodes[T]) VisitNull(n *ast.NullLiteral, _ bool) (T, error) { return v.reject(n) }

func (v ValueNodes[T]) VisitIdentifier(q *ast.QualifiedIdentifier, _ bool) (T, error) {
	return v.reject(q)
}

func (v ValueNodes[T]) VisitConstant(c *ast.ExternalConstant, _ bool) (T, error) {
	return v.reject(c)
}

func (v ValueNodes[T]) VisitArray(a *ast.ArrayExpression, _ bool) (T, error) { return v.reject(a) }

func (v ValueNodes[T]) VisitArithmetic(a *ast.ArithmeticExpression, _ bool) (T, error) {
	return v.reject(a)
}
