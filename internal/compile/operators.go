package compile

import "github.com/nlstn/go-filterql/internal/ast"

type normalized struct {
	base    ast.ComparisonOperator
	negated bool
}

var operatorTable = map[ast.ComparisonOperator]normalized{
	ast.OpEqual:          {ast.OpEqual, false},
	ast.OpNotEqual:       {ast.OpEqual, true},
	ast.OpGreater:        {ast.OpGreater, false},
	ast.OpGreaterOrEqual: {ast.OpGreaterOrEqual, false},
	ast.OpLess:           {ast.OpLess, false},
	ast.OpLessOrEqual:    {ast.OpLessOrEqual, false},
	ast.OpIn:             {ast.OpIn, false},
	ast.OpNotIn:          {ast.OpIn, true},
	ast.OpLike:           {ast.OpLike, false},
	ast.OpNotLike:        {ast.OpLike, true},
	ast.OpILike:          {ast.OpILike, false},
	ast.OpNotILike:       {ast.OpILike, true},
}

// Normalize splits op into its positive base operator and whether op itself
// negates it: != is (=, true), !in is (in, true) and so on.
func Normalize(op ast.ComparisonOperator) (ast.ComparisonOperator, bool) {
	n, ok := operatorTable[op]
	if !ok {
		return op, false
	}
	return n.base, n.negated
}

// Mirror returns the operator that keeps the meaning of a comparison when
// its operands are swapped. Set and pattern operators have no mirror.
func Mirror(op ast.ComparisonOperator) (ast.ComparisonOperator, bool) {
	switch op {
	case ast.OpEqual:
		return ast.OpEqual, true
	case ast.OpGreater:
		return ast.OpLess, true
	case ast.OpGreaterOrEqual:
		return ast.OpLessOrEqual, true
	case ast.OpLess:
		return ast.OpGreater, true
	case ast.OpLessOrEqual:
		return ast.OpGreaterOrEqual, true
	}
	return op, false
}

// IsOrdering reports whether op is one of > >= < <=.
func IsOrdering(op ast.ComparisonOperator) bool {
	switch op {
	case ast.OpGreater, ast.OpGreaterOrEqual, ast.OpLess, ast.OpLessOrEqual:
		return true
	}
	return false
}
