// Package ast defines the closed set of filter expression nodes.
//
// Nodes are treated as immutable once constructed: the parser, the printer
// and every backend compiler only read them, and transformations build new
// nodes instead of editing existing ones. The exported fields exist so that
// callers can construct trees directly; mutating a tree that has been handed
// to a compiler is not supported.
package ast

import "math/big"

// MaxSafeInteger is the largest integer magnitude a float64 represents
// exactly. Integer literals beyond it are kept as *big.Int.
const MaxSafeInteger = 1<<53 - 1

// Expression is the sealed interface implemented by every node type.
type Expression interface {
	// String returns the canonical text of the expression.
	String() string
	expression()
}

// ComparisonOperator is one of the twelve comparison operators.
type ComparisonOperator string

const (
	OpEqual          ComparisonOperator = "="
	OpNotEqual       ComparisonOperator = "!="
	OpGreater        ComparisonOperator = ">"
	OpGreaterOrEqual ComparisonOperator = ">="
	OpLess           ComparisonOperator = "<"
	OpLessOrEqual    ComparisonOperator = "<="
	OpIn             ComparisonOperator = "in"
	OpNotIn          ComparisonOperator = "!in"
	OpLike           ComparisonOperator = "like"
	OpILike          ComparisonOperator = "ilike"
	OpNotLike        ComparisonOperator = "!like"
	OpNotILike       ComparisonOperator = "!ilike"
)

// IsWord reports whether the operator is spelled with letters and therefore
// needs surrounding whitespace in canonical text.
func (op ComparisonOperator) IsWord() bool {
	switch op {
	case OpIn, OpNotIn, OpLike, OpILike, OpNotLike, OpNotILike:
		return true
	}
	return false
}

// Valid reports whether op is a known comparison operator.
func (op ComparisonOperator) Valid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpGreater, OpGreaterOrEqual, OpLess, OpLessOrEqual,
		OpIn, OpNotIn, OpLike, OpILike, OpNotLike, OpNotILike:
		return true
	}
	return false
}

// LogicalOperator joins the items of a LogicalExpression.
type LogicalOperator string

const (
	And LogicalOperator = "and"
	Or  LogicalOperator = "or"
)

// ArithmeticOperator is one of + - * /.
type ArithmeticOperator string

const (
	Add      ArithmeticOperator = "+"
	Subtract ArithmeticOperator = "-"
	Multiply ArithmeticOperator = "*"
	Divide   ArithmeticOperator = "/"
)

// NumberLiteral is a numeric constant. Big is set, and Value is zero, when
// the source was an integer outside ±MaxSafeInteger.
type NumberLiteral struct {
	Value float64
	Big   *big.Int
}

// StringLiteral is a quoted string that is neither a date nor a time.
type StringLiteral struct {
	Value string
}

// DateLiteral is a quoted calendar date such as '2024-05-01'.
type DateLiteral struct {
	Value string
}

// TimeLiteral is a quoted time of day such as '13:45:00.250'.
type TimeLiteral struct {
	Value string
}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	Value bool
}

// NullLiteral is the null keyword. Use Null rather than allocating new values.
type NullLiteral struct{}

// Null is the shared NullLiteral instance.
var Null = &NullLiteral{}

// QualifiedIdentifier references a field by dotted path, e.g. address.city.
type QualifiedIdentifier struct {
	Value string
}

// ExternalConstant is an @name reference bound by the caller at compile time.
type ExternalConstant struct {
	Name string
}

// ArrayExpression is a bracketed list of values.
type ArrayExpression struct {
	Items []Expression
}

// ArithmeticOperand is one term of an ArithmeticExpression. The operator of
// the first operand is ignored.
type ArithmeticOperand struct {
	Op      ArithmeticOperator
	Operand Expression
}

// ArithmeticExpression is a flat, left-associative chain of terms evaluated
// in source order.
type ArithmeticExpression struct {
	Items []ArithmeticOperand
}

// ParenthesizedExpression keeps explicit grouping from the source text.
type ParenthesizedExpression struct {
	Expression Expression
}

// NegativeExpression is a leading not.
type NegativeExpression struct {
	Expression Expression
}

// ComparisonExpression compares Left against Right with Op.
type ComparisonExpression struct {
	Left  Expression
	Op    ComparisonOperator
	Right Expression

	// Prepare, when set, is consulted by every backend before its default
	// translation of this comparison.
	Prepare PrepareFunc
}

// LogicalExpression joins two or more items with the same operator.
type LogicalExpression struct {
	Op    LogicalOperator
	Items []Expression
}

// PrepareArgs is passed to a PrepareFunc.
type PrepareArgs struct {
	Left    Expression
	Op      ComparisonOperator
	Right   Expression
	Backend string
	// Negated is true when the comparison sits under an odd number of not
	// operators. The hook is responsible for honouring it.
	Negated bool
}

// PrepareFunc lets callers replace the translation of a single comparison.
// Returning handled=false falls back to the backend's default translation.
type PrepareFunc func(args PrepareArgs) (fragment any, handled bool, err error)

func (*NumberLiteral) expression()           {}
func (*StringLiteral) expression()           {}
func (*DateLiteral) expression()             {}
func (*TimeLiteral) expression()             {}
func (*BooleanLiteral) expression()          {}
func (*NullLiteral) expression()             {}
func (*QualifiedIdentifier) expression()     {}
func (*ExternalConstant) expression()        {}
func (*ArrayExpression) expression()         {}
func (*ArithmeticExpression) expression()    {}
func (*ParenthesizedExpression) expression() {}
func (*NegativeExpression) expression()      {}
func (*ComparisonExpression) expression()    {}
func (*LogicalExpression) expression()       {}
