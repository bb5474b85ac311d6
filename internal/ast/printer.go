package ast

import (
	"math"
	"strconv"
	"strings"
)

// Print returns the canonical text of e. It is the inverse of parsing up to
// whitespace and quote style.
func Print(e Expression) string {
	if e == nil {
		return ""
	}
	return e.String()
}

func (n *NumberLiteral) String() string {
	if n.Big != nil {
		return n.Big.String()
	}
	switch {
	case math.IsInf(n.Value, 1):
		return "Infinity"
	case math.IsInf(n.Value, -1):
		return "-Infinity"
	}
	// Integral values beyond the safe range keep their exponent so they are
	// read back as floats, not as big integers.
	if n.Value == math.Trunc(n.Value) && math.Abs(n.Value) <= MaxSafeInteger {
		return strconv.FormatFloat(n.Value, 'f', -1, 64)
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quote(s string) string {
	return "'" + quoteEscaper.Replace(s) + "'"
}

func (s *StringLiteral) String() string { return quote(s.Value) }

func (d *DateLiteral) String() string { return quote(d.Value) }

func (t *TimeLiteral) String() string { return quote(t.Value) }

func (b *BooleanLiteral) String() string { return strconv.FormatBool(b.Value) }

func (*NullLiteral) String() string { return "null" }

func (q *QualifiedIdentifier) String() string { return q.Value }

func (c *ExternalConstant) String() string { return "@" + c.Name }

func (a *ArrayExpression) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, item := range a.Items {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(item.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (a *ArithmeticExpression) String() string {
	var sb strings.Builder
	for i, item := range a.Items {
		if i > 0 {
			sb.WriteString(string(item.Op))
		}
		sb.WriteString(item.Operand.String())
	}
	return sb.String()
}

func (p *ParenthesizedExpression) String() string {
	return "(" + p.Expression.String() + ")"
}

func (n *NegativeExpression) String() string {
	return "not " + group(n.Expression)
}

func (c *ComparisonExpression) String() string {
	if c.Op.IsWord() {
		return group(c.Left) + " " + string(c.Op) + " " + group(c.Right)
	}
	return group(c.Left) + string(c.Op) + group(c.Right)
}

func (l *LogicalExpression) String() string {
	parts := make([]string, len(l.Items))
	for i, item := range l.Items {
		// and binds tighter than or, so only or inside and needs grouping.
		if inner, ok := item.(*LogicalExpression); ok && l.Op == And && inner.Op == Or {
			parts[i] = "(" + item.String() + ")"
			continue
		}
		parts[i] = item.String()
	}
	return strings.Join(parts, " "+string(l.Op)+" ")
}

// group parenthesizes logical operands that a hand-built tree places where
// the grammar would not otherwise read them back. Parsed trees carry their
// own ParenthesizedExpression nodes and are printed unchanged.
func group(e Expression) string {
	if _, ok := e.(*LogicalExpression); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}
