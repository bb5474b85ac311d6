package ast

// Equal reports whether a and b are structurally identical. Prepare hooks are
// not compared.
func Equal(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *NumberLiteral:
		y, ok := b.(*NumberLiteral)
		if !ok {
			return false
		}
		if x.Big != nil || y.Big != nil {
			return x.Big != nil && y.Big != nil && x.Big.Cmp(y.Big) == 0
		}
		return x.Value == y.Value
	case *StringLiteral:
		y, ok := b.(*StringLiteral)
		return ok && x.Value == y.Value
	case *DateLiteral:
		y, ok := b.(*DateLiteral)
		return ok && x.Value == y.Value
	case *TimeLiteral:
		y, ok := b.(*TimeLiteral)
		return ok && x.Value == y.Value
	case *BooleanLiteral:
		y, ok := b.(*BooleanLiteral)
		return ok && x.Value == y.Value
	case *NullLiteral:
		_, ok := b.(*NullLiteral)
		return ok
	case *QualifiedIdentifier:
		y, ok := b.(*QualifiedIdentifier)
		return ok && x.Value == y.Value
	case *ExternalConstant:
		y, ok := b.(*ExternalConstant)
		return ok && x.Name == y.Name
	case *ArrayExpression:
		y, ok := b.(*ArrayExpression)
		return ok && equalAll(x.Items, y.Items)
	case *ArithmeticExpression:
		y, ok := b.(*ArithmeticExpression)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if i > 0 && x.Items[i].Op != y.Items[i].Op {
				return false
			}
			if !Equal(x.Items[i].Operand, y.Items[i].Operand) {
				return false
			}
		}
		return true
	case *ParenthesizedExpression:
		y, ok := b.(*ParenthesizedExpression)
		return ok && Equal(x.Expression, y.Expression)
	case *NegativeExpression:
		y, ok := b.(*NegativeExpression)
		return ok && Equal(x.Expression, y.Expression)
	case *ComparisonExpression:
		y, ok := b.(*ComparisonExpression)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *LogicalExpression:
		y, ok := b.(*LogicalExpression)
		return ok && x.Op == y.Op && equalAll(x.Items, y.Items)
	}
	return false
}

func equalAll(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Walk calls fn for e and then for each of its descendants in source order.
// Returning false from fn skips the children of that node.
func Walk(e Expression, fn func(Expression) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch n := e.(type) {
	case *ArrayExpression:
		for _, item := range n.Items {
			Walk(item, fn)
		}
	case *ArithmeticExpression:
		for _, item := range n.Items {
			Walk(item.Operand, fn)
		}
	case *ParenthesizedExpression:
		Walk(n.Expression, fn)
	case *NegativeExpression:
		Walk(n.Expression, fn)
	case *ComparisonExpression:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *LogicalExpression:
		for _, item := range n.Items {
			Walk(item, fn)
		}
	}
}

// Fields returns the distinct field paths referenced by e, in order of first
// appearance. Request layers use it to validate filters against a projection.
func Fields(e Expression) []string {
	var fields []string
	seen := make(map[string]struct{})
	Walk(e, func(n Expression) bool {
		if q, ok := n.(*QualifiedIdentifier); ok {
			if _, dup := seen[q.Value]; !dup {
				seen[q.Value] = struct{}{}
				fields = append(fields, q.Value)
			}
		}
		return true
	})
	return fields
}

// Constants returns the distinct external constant names referenced by e.
func Constants(e Expression) []string {
	var names []string
	seen := make(map[string]struct{})
	Walk(e, func(n Expression) bool {
		if c, ok := n.(*ExternalConstant); ok {
			if _, dup := seen[c.Name]; !dup {
				seen[c.Name] = struct{}{}
				names = append(names, c.Name)
			}
		}
		return true
	})
	return names
}
