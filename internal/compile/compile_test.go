package compile

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-filterql/internal/ast"
	"github.com/nlstn/go-filterql/internal/filtererrors"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		op      ast.ComparisonOperator
		base    ast.ComparisonOperator
		negated bool
	}{
		{ast.OpEqual, ast.OpEqual, false},
		{ast.OpNotEqual, ast.OpEqual, true},
		{ast.OpGreater, ast.OpGreater, false},
		{ast.OpIn, ast.OpIn, false},
		{ast.OpNotIn, ast.OpIn, true},
		{ast.OpLike, ast.OpLike, false},
		{ast.OpNotLike, ast.OpLike, true},
		{ast.OpILike, ast.OpILike, false},
		{ast.OpNotILike, ast.OpILike, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			base, negated := Normalize(tt.op)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.negated, negated)
		})
	}
}

func TestComparison_EffectiveNegation(t *testing.T) {
	c := &Compiler{Backend: DocumentBackend}

	notEqual := ast.Compare(ast.Field("a"), ast.OpNotEqual, ast.Number(1))

	cmp, err := c.Comparison(notEqual, false)
	require.NoError(t, err)
	assert.Equal(t, ast.OpEqual, cmp.Op)
	assert.True(t, cmp.Negated)

	cmp, err = c.Comparison(notEqual, true)
	require.NoError(t, err)
	assert.False(t, cmp.Negated, "not (a != 1) must cancel")
}

func TestComparison_MirrorsValueOnLeft(t *testing.T) {
	c := &Compiler{Backend: DocumentBackend}

	cmp, err := c.Comparison(ast.Compare(ast.Number(5), ast.OpLess, ast.Field("rate")), false)
	require.NoError(t, err)
	assert.Equal(t, ast.OpGreater, cmp.Op)
	assert.Equal(t, "rate", cmp.Left.Field)
	assert.Equal(t, int64(5), cmp.Right.Value)

	_, err = c.Comparison(ast.Compare(ast.String("x"), ast.OpLike, ast.Field("name")), false)
	assert.True(t, errors.Is(err, filtererrors.ErrUnsupportedOperation))

	_, err = c.Comparison(ast.Compare(ast.Number(1), ast.OpEqual, ast.Number(1)), false)
	assert.True(t, errors.Is(err, filtererrors.ErrUnsupportedOperation))
}

func TestOperand_Values(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	c := &Compiler{
		Backend: SearchBackend,
		Options: Options{Constants: map[string]any{
			"me":    "u-1",
			"ids":   []int{1, 2},
			"none":  nil,
			"limit": 10,
		}},
	}

	tests := []struct {
		name     string
		expr     ast.Expression
		expected any
		isNull   bool
		isList   bool
	}{
		{"Integer", ast.Number(5), int64(5), false, false},
		{"Fraction", ast.Number(0.5), 0.5, false, false},
		{"Big", &ast.NumberLiteral{Big: huge}, huge, false, false},
		{"String", ast.String("x"), "x", false, false},
		{"Date", &ast.DateLiteral{Value: "2024-01-02"}, "2024-01-02", false, false},
		{"Boolean", ast.Bool(true), true, false, false},
		{"Null", ast.Null, nil, true, false},
		{"Array", ast.Array(ast.Number(5), ast.String("a")), []any{int64(5), "a"}, false, true},
		{"Constant", ast.Constant("me"), "u-1", false, false},
		{"Slice constant", ast.Constant("ids"), []any{1, 2}, false, true},
		{"Nil constant", ast.Constant("none"), nil, true, false},
		{"Parenthesized", ast.Group(ast.Number(3)), int64(3), false, false},
		{
			"Folded arithmetic",
			&ast.ArithmeticExpression{Items: []ast.ArithmeticOperand{
				{Op: ast.Add, Operand: ast.Number(1)},
				{Op: ast.Add, Operand: ast.Number(2)},
				{Op: ast.Multiply, Operand: ast.Number(3)},
			}},
			int64(9),
			false, false,
		},
		{
			"Folded arithmetic with constant",
			&ast.ArithmeticExpression{Items: []ast.ArithmeticOperand{
				{Op: ast.Add, Operand: ast.Constant("limit")},
				{Op: ast.Divide, Operand: ast.Number(4)},
			}},
			2.5,
			false, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := c.Operand(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, KindValue, op.Kind)
			assert.Equal(t, tt.expected, op.Value)
			assert.Equal(t, tt.isNull, op.IsNull)
			assert.Equal(t, tt.isList, op.IsList)
		})
	}
}

func TestOperand_ExactFolding(t *testing.T) {
	c := &Compiler{Backend: DocumentBackend}

	// 0.1 + 0.2 is exact in decimal.
	op, err := c.Operand(&ast.ArithmeticExpression{Items: []ast.ArithmeticOperand{
		{Op: ast.Add, Operand: ast.Number(0.1)},
		{Op: ast.Add, Operand: ast.Number(0.2)},
	}})
	require.NoError(t, err)
	assert.Equal(t, 0.3, op.Value)

	// Beyond the safe range the result stays an exact big integer.
	op, err = c.Operand(&ast.ArithmeticExpression{Items: []ast.ArithmeticOperand{
		{Op: ast.Add, Operand: ast.Number(ast.MaxSafeInteger)},
		{Op: ast.Add, Operand: ast.Number(2)},
	}})
	require.NoError(t, err)
	expected, _ := new(big.Int).SetString("9007199254740993", 10)
	assert.Equal(t, 0, expected.Cmp(op.Value.(*big.Int)))
}

func TestOperand_BigConversion(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	c := &Compiler{
		Backend: SearchBackend,
		Big:     func(b *big.Int) (any, error) { return "big:" + b.String(), nil },
	}

	op, err := c.Operand(ast.Array(ast.Number(1), &ast.NumberLiteral{Big: huge}))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), "big:123456789012345678901234567890"}, op.Value)
}

func TestOperand_Errors(t *testing.T) {
	c := &Compiler{Backend: RelationalBackend}

	tests := []struct {
		name     string
		expr     ast.Expression
		sentinel error
	}{
		{"Unbound constant", ast.Constant("missing"), filtererrors.ErrUnresolvedConstant},
		{"Predicate as value", ast.Compare(ast.Field("a"), ast.OpEqual, ast.Number(1)), filtererrors.ErrUnsupportedOperation},
		{"Field inside array", ast.Array(ast.Field("a")), filtererrors.ErrUnsupportedOperation},
		{
			"Division by zero",
			&ast.ArithmeticExpression{Items: []ast.ArithmeticOperand{
				{Op: ast.Add, Operand: ast.Number(1)},
				{Op: ast.Divide, Operand: ast.Number(0)},
			}},
			filtererrors.ErrUnsupportedOperation,
		},
		{
			"String arithmetic",
			&ast.ArithmeticExpression{Items: []ast.ArithmeticOperand{
				{Op: ast.Add, Operand: ast.String("a")},
				{Op: ast.Add, Operand: ast.Number(1)},
			}},
			filtererrors.ErrUnsupportedOperation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Operand(tt.expr)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}

func TestOperand_Computed(t *testing.T) {
	c := &Compiler{Backend: DocumentBackend}

	op, err := c.Operand(&ast.ArithmeticExpression{Items: []ast.ArithmeticOperand{
		{Op: ast.Subtract, Operand: ast.Field("total")},
		{Op: ast.Multiply, Operand: ast.Number(2)},
	}})
	require.NoError(t, err)
	require.Equal(t, KindComputed, op.Kind)
	require.Len(t, op.Terms, 2)
	assert.Equal(t, ast.Add, op.Terms[0].Op, "first operator is ignored")
	assert.Equal(t, "total", op.Terms[0].Operand.Field)
	assert.Equal(t, ast.Multiply, op.Terms[1].Op)
}

func TestPrepare_NodeHookWins(t *testing.T) {
	var seen ast.PrepareArgs
	c := &Compiler{
		Backend: SearchBackend,
		Options: Options{Prepare: func(ast.PrepareArgs) (any, bool, error) {
			return "options", true, nil
		}},
	}

	node := ast.Compare(ast.Field("a"), ast.OpNotLike, ast.String("x"))
	node.Prepare = func(args ast.PrepareArgs) (any, bool, error) {
		seen = args
		return "node", true, nil
	}

	fragment, handled, err := c.Prepare(node, true)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "node", fragment)
	assert.Equal(t, SearchBackend, seen.Backend)
	assert.Equal(t, ast.OpNotLike, seen.Op)
	assert.True(t, seen.Negated)

	fragment, _, err = c.Prepare(ast.Compare(ast.Field("a"), ast.OpEqual, ast.Number(1)), false)
	require.NoError(t, err)
	assert.Equal(t, "options", fragment)
}

func TestLikeTranslation(t *testing.T) {
	tests := []struct {
		pattern  string
		regex    string
		wildcard string
	}{
		{"Demons%", "^Demons.*$", "Demons*"},
		{"%a_b%", "^.*a.b.*$", "*a?b*"},
		{"1.5*x?", `^1\.5\*x\?$`, `1.5\*x\?`},
		{"", "^$", ""},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.regex, LikeRegex(tt.pattern))
			assert.Equal(t, tt.wildcard, LikeWildcard(tt.pattern))
		})
	}
}
