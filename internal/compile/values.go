package compile

import (
	"math"
	"math/big"
	"reflect"

	"github.com/shopspring/decimal"

	"github.com/nlstn/go-filterql/internal/ast"
	"github.com/nlstn/go-filterql/internal/filtererrors"
)

// OperandKind classifies one side of a comparison.
type OperandKind int

const (
	// KindValue is a literal, a bound constant, an array of values or
	// arithmetic over values only (already folded).
	KindValue OperandKind = iota
	// KindField is a field reference.
	KindField
	// KindComputed is arithmetic that references at least one field.
	KindComputed
)

// Operand is a resolved comparison side.
type Operand struct {
	Kind OperandKind
	Expr ast.Expression

	// Field is the dotted path for KindField.
	Field string

	// Value holds the resolved Go value for KindValue: nil, bool, string,
	// int64, float64, the backend's big integer type, or []any for lists.
	Value  any
	IsNull bool
	IsList bool

	// Terms holds the chain for KindComputed. The first term's Op is Add.
	Terms []Term
}

// Term is one step of a computed operand.
type Term struct {
	Op      ast.ArithmeticOperator
	Operand Operand
}

// List returns the operand's values as a list, wrapping a scalar.
func (o Operand) List() []any {
	if o.IsList {
		return o.Value.([]any)
	}
	return []any{o.Value}
}

// Operand resolves e in value position. Parentheses are transparent.
func (c *Compiler) Operand(e ast.Expression) (Operand, error) {
	op, err := c.operand(e)
	if err != nil {
		return Operand{}, err
	}
	return c.convert(op)
}

func (c *Compiler) operand(e ast.Expression) (Operand, error) {
	for {
		p, ok := e.(*ast.ParenthesizedExpression)
		if !ok {
			break
		}
		e = p.Expression
	}

	switch n := e.(type) {
	case *ast.NumberLiteral:
		return Operand{Kind: KindValue, Expr: e, Value: NumberValue(n)}, nil
	case *ast.StringLiteral:
		return Operand{Kind: KindValue, Expr: e, Value: n.Value}, nil
	case *ast.DateLiteral:
		return Operand{Kind: KindValue, Expr: e, Value: n.Value}, nil
	case *ast.TimeLiteral:
		return Operand{Kind: KindValue, Expr: e, Value: n.Value}, nil
	case *ast.BooleanLiteral:
		return Operand{Kind: KindValue, Expr: e, Value: n.Value}, nil
	case *ast.NullLiteral:
		return Operand{Kind: KindValue, Expr: e, IsNull: true}, nil
	case *ast.QualifiedIdentifier:
		return Operand{Kind: KindField, Expr: e, Field: n.Value}, nil
	case *ast.ExternalConstant:
		return c.constant(n)
	case *ast.ArrayExpression:
		values := make([]any, 0, len(n.Items))
		for _, item := range n.Items {
			op, err := c.operand(item)
			if err != nil {
				return Operand{}, err
			}
			if op.Kind != KindValue {
				return Operand{}, c.Unsupported(n, "arrays may only contain values")
			}
			values = append(values, op.Value)
		}
		return Operand{Kind: KindValue, Expr: e, Value: values, IsList: true}, nil
	case *ast.ArithmeticExpression:
		return c.arithmetic(n)
	case nil:
		return Operand{}, c.Unsupported(e, "missing operand")
	}
	return Operand{}, c.Unsupported(e, "predicate used as a value")
}

func (c *Compiler) constant(n *ast.ExternalConstant) (Operand, error) {
	v, ok := c.Options.Constants[n.Name]
	if !ok {
		return Operand{}, &filtererrors.UnresolvedConstantError{Name: n.Name}
	}
	if v == nil {
		return Operand{Kind: KindValue, Expr: n, IsNull: true}, nil
	}
	if list, ok := asList(v); ok {
		return Operand{Kind: KindValue, Expr: n, Value: list, IsList: true}, nil
	}
	return Operand{Kind: KindValue, Expr: n, Value: v}, nil
}

func asList(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	list := make([]any, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list, true
}

func (c *Compiler) arithmetic(n *ast.ArithmeticExpression) (Operand, error) {
	terms := make([]Term, 0, len(n.Items))
	computed := false
	for i, item := range n.Items {
		op, err := c.operand(item.Operand)
		if err != nil {
			return Operand{}, err
		}
		if op.IsNull || op.IsList {
			return Operand{}, c.Unsupported(n, "arithmetic on "+ast.Print(item.Operand))
		}
		if op.Kind != KindValue {
			computed = true
		}
		operator := item.Op
		if i == 0 {
			operator = ast.Add
		}
		terms = append(terms, Term{Op: operator, Operand: op})
	}

	if computed {
		return Operand{Kind: KindComputed, Expr: n, Terms: terms}, nil
	}

	folded, err := c.fold(n, terms)
	if err != nil {
		return Operand{}, err
	}
	return Operand{Kind: KindValue, Expr: n, Value: folded}, nil
}

// fold evaluates value-only arithmetic exactly, left to right.
func (c *Compiler) fold(n *ast.ArithmeticExpression, terms []Term) (any, error) {
	var acc decimal.Decimal
	for i, term := range terms {
		d, ok := toDecimal(term.Operand.Value)
		if !ok {
			return nil, c.Unsupported(n, "arithmetic on non-numeric value "+ast.Print(term.Operand.Expr))
		}
		if i == 0 {
			acc = d
			continue
		}
		switch term.Op {
		case ast.Add:
			acc = acc.Add(d)
		case ast.Subtract:
			acc = acc.Sub(d)
		case ast.Multiply:
			acc = acc.Mul(d)
		case ast.Divide:
			if d.IsZero() {
				return nil, c.Unsupported(n, "division by zero")
			}
			acc = acc.Div(d)
		default:
			return nil, c.Unsupported(n, "unknown arithmetic operator "+string(term.Op))
		}
	}
	return decimalValue(acc), nil
}

func decimalValue(d decimal.Decimal) any {
	if d.IsInteger() {
		bi := d.BigInt()
		if bi.IsInt64() {
			if i := bi.Int64(); i >= -ast.MaxSafeInteger && i <= ast.MaxSafeInteger {
				return i
			}
		}
		return bi
	}
	f, _ := d.Float64()
	return f
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case *big.Int:
		return decimal.NewFromBigInt(x, 0), true
	case int64:
		return decimal.NewFromInt(x), true
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(x), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(rv.Uint()), 0), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(f), true
	}
	return decimal.Decimal{}, false
}

// NumberValue returns the natural Go value of a number literal: int64 for
// integers within ±MaxSafeInteger, *big.Int beyond, float64 otherwise.
func NumberValue(n *ast.NumberLiteral) any {
	if n.Big != nil {
		return n.Big
	}
	v := n.Value
	if !math.IsInf(v, 0) && v == math.Trunc(v) && math.Abs(v) <= ast.MaxSafeInteger {
		return int64(v)
	}
	return v
}

// convert applies the backend's big integer conversion throughout op.
func (c *Compiler) convert(op Operand) (Operand, error) {
	if c.Big == nil {
		return op, nil
	}
	switch op.Kind {
	case KindValue:
		v, err := c.convertValue(op.Value)
		if err != nil {
			return Operand{}, c.Unsupported(op.Expr, err.Error())
		}
		op.Value = v
	case KindComputed:
		terms := make([]Term, len(op.Terms))
		for i, t := range op.Terms {
			converted, err := c.convert(t.Operand)
			if err != nil {
				return Operand{}, err
			}
			terms[i] = Term{Op: t.Op, Operand: converted}
		}
		op.Terms = terms
	}
	return op, nil
}

func (c *Compiler) convertValue(v any) (any, error) {
	switch x := v.(type) {
	case *big.Int:
		return c.Big(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			converted, err := c.convertValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	}
	return v, nil
}
