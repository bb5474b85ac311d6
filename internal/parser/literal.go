package parser

import (
	"regexp"

	"github.com/nlstn/go-filterql/internal/ast"
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2}(\.\d+)?)?$`)
)

// sniffQuoted classifies the content of a quoted literal. Bare dates and
// times of day get their own node types; full timestamps stay strings so that
// backends compare them lexically.
func sniffQuoted(value string) ast.Expression {
	switch {
	case datePattern.MatchString(value):
		return &ast.DateLiteral{Value: value}
	case timePattern.MatchString(value):
		return &ast.TimeLiteral{Value: value}
	}
	return &ast.StringLiteral{Value: value}
}
