package docstore

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nlstn/go-filterql/internal/ast"
	"github.com/nlstn/go-filterql/internal/compile"
)

var arithmeticOperators = map[ast.ArithmeticOperator]string{
	ast.Add:      "$add",
	ast.Subtract: "$subtract",
	ast.Multiply: "$multiply",
	ast.Divide:   "$divide",
}

// aggregate compiles comparisons between fields, or over computed values,
// into an $expr document using aggregation operators. Negation wraps the
// expression in the aggregation $not.
func (c *compiler) aggregate(cmp compile.Comparison) (bson.M, error) {
	left := operand(cmp.Left)
	right := operand(cmp.Right)

	var expr any
	switch cmp.Op {
	case ast.OpEqual, ast.OpGreater, ast.OpGreaterOrEqual, ast.OpLess, ast.OpLessOrEqual:
		expr = bson.M{comparisonOperators[cmp.Op]: bson.A{left, right}}
	case ast.OpIn:
		if cmp.Right.Kind == compile.KindValue {
			right = value(cmp.Right.List())
		}
		expr = bson.M{"$in": bson.A{left, right}}
	case ast.OpLike, ast.OpILike:
		pattern, ok := compile.Pattern(cmp.Right)
		if !ok {
			return nil, c.Unsupported(cmp.Node, "pattern must be a string literal")
		}
		match := bson.M{"input": left, "regex": compile.LikeRegex(pattern)}
		if cmp.Op == ast.OpILike {
			match["options"] = "i"
		}
		expr = bson.M{"$regexMatch": match}
	default:
		return nil, c.Unsupported(cmp.Node, "unknown operator "+string(cmp.Node.Op))
	}

	if cmp.Negated {
		expr = bson.M{"$not": bson.A{expr}}
	}
	return bson.M{"$expr": expr}, nil
}

// operand renders one side of an aggregation expression. Fields become
// $path references; strings that would read as references are wrapped in
// $literal.
func operand(o compile.Operand) any {
	switch o.Kind {
	case compile.KindField:
		return "$" + o.Field
	case compile.KindComputed:
		acc := operand(o.Terms[0].Operand)
		for _, t := range o.Terms[1:] {
			acc = bson.M{arithmeticOperators[t.Op]: bson.A{acc, operand(t.Operand)}}
		}
		return acc
	}
	if s, ok := o.Value.(string); ok && strings.HasPrefix(s, "$") {
		return bson.M{"$literal": s}
	}
	return value(o.Value)
}
