package relational

import (
	"strings"

	"gorm.io/gorm/clause"
)

// Conjoin combines conditions with AND. Nil conditions are dropped and
// existing AND groups contribute their members directly.
func Conjoin(exprs ...clause.Expression) clause.Expression {
	var parts []clause.Expression
	for _, e := range exprs {
		switch v := e.(type) {
		case nil:
			continue
		case clause.AndConditions:
			parts = append(parts, v.Exprs...)
		default:
			parts = append(parts, e)
		}
	}
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return parts[0]
	}
	return clause.AndConditions{Exprs: parts}
}

// PrefixFields returns a copy of expr with every column placed under prefix,
// e.g. rate becomes owner.rate.
func PrefixFields(expr clause.Expression, prefix string) clause.Expression {
	if expr == nil || prefix == "" {
		return expr
	}
	prefix = strings.TrimSuffix(prefix, ".") + "."
	return prefixExpression(expr, prefix)
}

func prefixExpression(expr clause.Expression, prefix string) clause.Expression {
	switch v := expr.(type) {
	case clause.Eq:
		v.Column = prefixColumn(v.Column, prefix)
		return v
	case clause.Neq:
		v.Column = prefixColumn(v.Column, prefix)
		return v
	case clause.Gt:
		v.Column = prefixColumn(v.Column, prefix)
		return v
	case clause.Gte:
		v.Column = prefixColumn(v.Column, prefix)
		return v
	case clause.Lt:
		v.Column = prefixColumn(v.Column, prefix)
		return v
	case clause.Lte:
		v.Column = prefixColumn(v.Column, prefix)
		return v
	case clause.Like:
		v.Column = prefixColumn(v.Column, prefix)
		return v
	case clause.IN:
		v.Column = prefixColumn(v.Column, prefix)
		return v
	case clause.Expr:
		vars := make([]interface{}, len(v.Vars))
		for i, item := range v.Vars {
			vars[i] = prefixVar(item, prefix)
		}
		v.Vars = vars
		return v
	case clause.AndConditions:
		return clause.AndConditions{Exprs: prefixAll(v.Exprs, prefix)}
	case clause.OrConditions:
		return clause.OrConditions{Exprs: prefixAll(v.Exprs, prefix)}
	case clause.NotConditions:
		return clause.NotConditions{Exprs: prefixAll(v.Exprs, prefix)}
	}
	return expr
}

func prefixAll(exprs []clause.Expression, prefix string) []clause.Expression {
	out := make([]clause.Expression, len(exprs))
	for i, e := range exprs {
		out[i] = prefixExpression(e, prefix)
	}
	return out
}

func prefixVar(v interface{}, prefix string) interface{} {
	switch x := v.(type) {
	case clause.Column:
		return prefixColumn(x, prefix)
	case clause.Expression:
		return prefixExpression(x, prefix)
	}
	return v
}

func prefixColumn(column interface{}, prefix string) interface{} {
	switch c := column.(type) {
	case clause.Column:
		if c.Table != "" {
			c.Table = prefix + c.Table
		} else {
			c.Name = prefix + c.Name
		}
		return c
	case string:
		return prefix + c
	}
	return column
}
