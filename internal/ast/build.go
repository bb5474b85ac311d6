package ast

import "math/big"

// Field returns a QualifiedIdentifier for path.
func Field(path string) *QualifiedIdentifier {
	return &QualifiedIdentifier{Value: path}
}

// Number returns a floating NumberLiteral.
func Number(v float64) *NumberLiteral {
	return &NumberLiteral{Value: v}
}

// BigNumber returns a NumberLiteral for an integer of any size. Values within
// ±MaxSafeInteger are stored as float64 so that they compare equal to parsed
// literals.
func BigNumber(v *big.Int) *NumberLiteral {
	if v.IsInt64() {
		if i := v.Int64(); i >= -MaxSafeInteger && i <= MaxSafeInteger {
			return &NumberLiteral{Value: float64(i)}
		}
	}
	return &NumberLiteral{Big: new(big.Int).Set(v)}
}

// String returns a StringLiteral.
func String(v string) *StringLiteral {
	return &StringLiteral{Value: v}
}

// Bool returns a BooleanLiteral.
func Bool(v bool) *BooleanLiteral {
	return &BooleanLiteral{Value: v}
}

// Constant returns an ExternalConstant.
func Constant(name string) *ExternalConstant {
	return &ExternalConstant{Name: name}
}

// Array returns an ArrayExpression.
func Array(items ...Expression) *ArrayExpression {
	return &ArrayExpression{Items: items}
}

// Compare returns a ComparisonExpression.
func Compare(left Expression, op ComparisonOperator, right Expression) *ComparisonExpression {
	return &ComparisonExpression{Left: left, Op: op, Right: right}
}

// Not returns a NegativeExpression.
func Not(e Expression) *NegativeExpression {
	return &NegativeExpression{Expression: e}
}

// Group returns a ParenthesizedExpression.
func Group(e Expression) *ParenthesizedExpression {
	return &ParenthesizedExpression{Expression: e}
}

// AllOf joins items with and. A single item is returned unchanged.
func AllOf(items ...Expression) Expression {
	return logical(And, items)
}

// AnyOf joins items with or. A single item is returned unchanged.
func AnyOf(items ...Expression) Expression {
	return logical(Or, items)
}

func logical(op LogicalOperator, items []Expression) Expression {
	switch len(items) {
	case 0:
		return nil
	case 1:
		return items[0]
	}
	flat := make([]Expression, 0, len(items))
	for _, item := range items {
		if l, ok := item.(*LogicalExpression); ok && l.Op == op {
			flat = append(flat, l.Items...)
			continue
		}
		flat = append(flat, item)
	}
	return &LogicalExpression{Op: op, Items: flat}
}
