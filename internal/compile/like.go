package compile

import (
	"regexp"
	"strings"
)

// LikeRegex translates a LIKE pattern into an anchored regular expression:
// % matches any run of characters, _ matches exactly one, and everything
// else is literal.
func LikeRegex(pattern string) string {
	var sb strings.Builder
	sb.WriteByte('^')
	literal := strings.Builder{}
	flush := func() {
		if literal.Len() > 0 {
			sb.WriteString(regexp.QuoteMeta(literal.String()))
			literal.Reset()
		}
	}
	for _, r := range pattern {
		switch r {
		case '%':
			flush()
			sb.WriteString(".*")
		case '_':
			flush()
			sb.WriteByte('.')
		default:
			literal.WriteRune(r)
		}
	}
	flush()
	sb.WriteByte('$')
	return sb.String()
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// LikeWildcard translates a LIKE pattern into search engine wildcard syntax,
// where * and ? are the wildcards and \ escapes them.
func LikeWildcard(pattern string) string {
	var sb strings.Builder
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteByte('*')
		case '_':
			sb.WriteByte('?')
		default:
			sb.WriteString(wildcardEscaper.Replace(string(r)))
		}
	}
	return sb.String()
}

// Pattern returns the string value of a LIKE right-hand side.
func Pattern(o Operand) (string, bool) {
	if o.Kind != KindValue || o.IsList || o.IsNull {
		return "", false
	}
	s, ok := o.Value.(string)
	return s, ok
}
