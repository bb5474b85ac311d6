package ast

import (
	"math"
	"math/big"
	"testing"
)

func TestPrint(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	tests := []struct {
		name     string
		expr     Expression
		expected string
	}{
		{"Integer", Number(5), "5"},
		{"Negative integer", Number(-12), "-12"},
		{"Fraction", Number(0.25), "0.25"},
		{"Tiny fraction", Number(1e-7), "1e-07"},
		{"Large float keeps exponent", Number(1e20), "1e+20"},
		{"Big integer", &NumberLiteral{Big: huge}, "123456789012345678901234567890"},
		{"Infinity", Number(math.Inf(1)), "Infinity"},
		{"Negative infinity", Number(math.Inf(-1)), "-Infinity"},
		{"String", String("Demons"), "'Demons'"},
		{"String with quote", String(`it's \ ok`), `'it\'s \\ ok'`},
		{"Date", &DateLiteral{Value: "2024-05-01"}, "'2024-05-01'"},
		{"Time", &TimeLiteral{Value: "13:45:00"}, "'13:45:00'"},
		{"Boolean", Bool(true), "true"},
		{"Null", Null, "null"},
		{"Identifier", Field("address.city"), "address.city"},
		{"Constant", Constant("me"), "@me"},
		{"Array", Array(Number(5), Number(6)), "[5,6]"},
		{"Empty array", Array(), "[]"},
		{
			"Arithmetic",
			&ArithmeticExpression{Items: []ArithmeticOperand{
				{Op: Add, Operand: Field("a")},
				{Op: Multiply, Operand: Number(2)},
				{Op: Subtract, Operand: Number(-1)},
			}},
			"a*2--1",
		},
		{"Comparison", Compare(Field("rate"), OpGreaterOrEqual, Number(5)), "rate>=5"},
		{"Word comparison", Compare(Field("rate"), OpIn, Array(Number(5), Number(6))), "rate in [5,6]"},
		{"Negated word comparison", Compare(Field("name"), OpNotILike, String("x%")), "name !ilike 'x%'"},
		{
			"Logical",
			AllOf(Compare(Field("a"), OpEqual, Number(1)), Compare(Field("b"), OpEqual, Number(2))),
			"a=1 and b=2",
		},
		{
			"Parenthesized preserved",
			Group(Compare(Field("a"), OpEqual, Number(1))),
			"(a=1)",
		},
		{
			"Negative",
			Not(Group(Compare(Field("x"), OpLike, String("y")))),
			"not (x like 'y')",
		},
		{
			"Hand-built mixed logical gets grouped",
			AllOf(AnyOf(Compare(Field("a"), OpEqual, Number(1)), Compare(Field("a"), OpEqual, Number(2))), Compare(Field("b"), OpEqual, Number(3))),
			"(a=1 or a=2) and b=3",
		},
		{
			"And inside or is not grouped",
			AnyOf(Compare(Field("a"), OpEqual, Number(1)), AllOf(Compare(Field("b"), OpEqual, Number(2)), Compare(Field("c"), OpEqual, Number(3)))),
			"a=1 or b=2 and c=3",
		},
		{
			"Hand-built negated logical gets grouped",
			Not(AllOf(Compare(Field("a"), OpEqual, Number(1)), Compare(Field("b"), OpEqual, Number(2)))),
			"not (a=1 and b=2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Print(tt.expr); got != tt.expected {
				t.Errorf("Print() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	a, _ := new(big.Int).SetString("90071992547409931", 10)
	b, _ := new(big.Int).SetString("90071992547409931", 10)

	tests := []struct {
		name  string
		left  Expression
		right Expression
		equal bool
	}{
		{"Same comparison", Compare(Field("a"), OpEqual, Number(1)), Compare(Field("a"), OpEqual, Number(1)), true},
		{"Different operator", Compare(Field("a"), OpEqual, Number(1)), Compare(Field("a"), OpNotEqual, Number(1)), false},
		{"Big integers", &NumberLiteral{Big: a}, &NumberLiteral{Big: b}, true},
		{"Big vs float", &NumberLiteral{Big: a}, Number(1), false},
		{"String vs date", String("2024-01-01"), &DateLiteral{Value: "2024-01-01"}, false},
		{"Paren is significant", Group(Field("a")), Field("a"), false},
		{"Nil both", nil, nil, true},
		{"Nil one", nil, Null, false},
		{"Arrays", Array(Number(1), String("x")), Array(Number(1), String("x")), true},
		{"Array order", Array(Number(1), Number(2)), Array(Number(2), Number(1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.left, tt.right); got != tt.equal {
				t.Errorf("Equal() = %v, expected %v", got, tt.equal)
			}
		})
	}
}

func TestEqualIgnoresPrepare(t *testing.T) {
	withHook := Compare(Field("a"), OpEqual, Number(1))
	withHook.Prepare = func(PrepareArgs) (any, bool, error) { return nil, false, nil }
	if !Equal(withHook, Compare(Field("a"), OpEqual, Number(1))) {
		t.Error("Expected Prepare hook to be ignored by Equal")
	}
}

func TestFieldsAndConstants(t *testing.T) {
	expr := AllOf(
		Compare(Field("rate"), OpGreaterOrEqual, Number(5)),
		Group(AnyOf(
			Compare(Field("status"), OpEqual, String("open")),
			Compare(Field("owner"), OpEqual, Constant("me")),
			Compare(Field("rate"), OpLess, Field("limit")),
		)),
	)

	fields := Fields(expr)
	expected := []string{"rate", "status", "owner", "limit"}
	if len(fields) != len(expected) {
		t.Fatalf("Fields() = %v, expected %v", fields, expected)
	}
	for i := range expected {
		if fields[i] != expected[i] {
			t.Errorf("Fields()[%d] = %q, expected %q", i, fields[i], expected[i])
		}
	}

	constants := Constants(expr)
	if len(constants) != 1 || constants[0] != "me" {
		t.Errorf("Constants() = %v, expected [me]", constants)
	}
}

func TestBigNumberNormalizesSafeRange(t *testing.T) {
	n := BigNumber(big.NewInt(42))
	if n.Big != nil || n.Value != 42 {
		t.Errorf("Expected float 42, got %+v", n)
	}

	huge := new(big.Int).Lsh(big.NewInt(1), 60)
	n = BigNumber(huge)
	if n.Big == nil || n.Big.Cmp(huge) != 0 {
		t.Errorf("Expected big integer 2^60, got %+v", n)
	}
}

func TestAllOfFlattens(t *testing.T) {
	a := Compare(Field("a"), OpEqual, Number(1))
	b := Compare(Field("b"), OpEqual, Number(2))
	c := Compare(Field("c"), OpEqual, Number(3))

	expr := AllOf(AllOf(a, b), c)
	l, ok := expr.(*LogicalExpression)
	if !ok {
		t.Fatalf("Expected *LogicalExpression, got %T", expr)
	}
	if len(l.Items) != 3 {
		t.Errorf("Expected 3 flattened items, got %d", len(l.Items))
	}
	if AllOf(a) != a {
		t.Error("Expected AllOf with one item to return it unchanged")
	}
	if AllOf() != nil {
		t.Error("Expected AllOf() to be nil")
	}
}
