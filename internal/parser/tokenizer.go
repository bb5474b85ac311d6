package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"

	"github.com/nlstn/go-filterql/internal/filtererrors"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdentifier
	TokenConstant
	TokenString
	TokenNumber
	TokenBoolean
	TokenNull
	TokenComparison
	TokenLogical
	TokenNot
	TokenArithmetic
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenComma
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "end of input",
	TokenIdentifier: "identifier",
	TokenConstant:   "constant",
	TokenString:     "string",
	TokenNumber:     "number",
	TokenBoolean:    "boolean",
	TokenNull:       "null",
	TokenComparison: "comparison operator",
	TokenLogical:    "logical operator",
	TokenNot:        "not",
	TokenArithmetic: "arithmetic operator",
	TokenLParen:     "'('",
	TokenRParen:     "')'",
	TokenLBracket:   "'['",
	TokenRBracket:   "']'",
	TokenComma:      "','",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token represents a single token in the filter expression. Pos is the byte
// offset; Line and Column are 1-based.
type Token struct {
	Type   TokenType
	Value  string
	Pos    int
	Line   int
	Column int
}

func (t *Token) describe() string {
	switch t.Type {
	case TokenEOF:
		return "end of input"
	case TokenString:
		return fmt.Sprintf("string '%s'", t.Value)
	}
	return fmt.Sprintf("'%s'", t.Value)
}

// Tokenizer tokenizes filter expressions. Lexical errors are collected and
// scanning resumes after the offending input.
type Tokenizer struct {
	input  string
	pos    int
	ch     rune
	width  int
	line   int
	column int
	prev   TokenType
	errs   *multierror.Error
}

// NewTokenizer creates a new tokenizer
func NewTokenizer(input string) *Tokenizer {
	t := &Tokenizer{
		input:  input,
		line:   1,
		column: 1,
		prev:   TokenEOF,
	}
	t.decode()
	return t
}

func (t *Tokenizer) decode() {
	if t.pos >= len(t.input) {
		t.ch, t.width = 0, 0
		return
	}
	t.ch, t.width = utf8.DecodeRuneInString(t.input[t.pos:])
}

// advance moves to the next character
func (t *Tokenizer) advance() {
	if t.ch == '\n' {
		t.line++
		t.column = 1
	} else {
		t.column++
	}
	t.pos += t.width
	t.decode()
}

// peek looks ahead without advancing
func (t *Tokenizer) peek() rune {
	next := t.pos + t.width
	if next >= len(t.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(t.input[next:])
	return r
}

func (t *Tokenizer) atEOF() bool {
	return t.pos >= len(t.input)
}

// skipWhitespace skips whitespace characters
func (t *Tokenizer) skipWhitespace() {
	for !t.atEOF() && unicode.IsSpace(t.ch) {
		t.advance()
	}
}

func (t *Tokenizer) errorf(pos, line, column int, format string, args ...interface{}) {
	t.errs = multierror.Append(t.errs, &filtererrors.SyntaxError{
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
		Offset:  pos,
	})
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// valueEnded reports whether the previous token closes a value, in which
// case a following '-' is a subtraction rather than a sign.
func (t *Tokenizer) valueEnded() bool {
	switch t.prev {
	case TokenIdentifier, TokenConstant, TokenString, TokenNumber, TokenBoolean,
		TokenNull, TokenRParen, TokenRBracket:
		return true
	}
	return false
}

// readString reads a quoted string. A backslash escapes the next character.
func (t *Tokenizer) readString() (string, bool) {
	quote := t.ch
	t.advance() // skip opening quote

	var result strings.Builder
	for !t.atEOF() && t.ch != quote {
		if t.ch == '\\' && t.pos+t.width < len(t.input) {
			t.advance()
		}
		result.WriteRune(t.ch)
		t.advance()
	}

	if t.atEOF() {
		return result.String(), false
	}
	t.advance() // skip closing quote
	return result.String(), true
}

// readNumber reads an optionally signed decimal number with fraction and
// exponent parts.
func (t *Tokenizer) readNumber() string {
	start := t.pos
	if t.ch == '-' {
		t.advance()
	}
	for isDigit(t.ch) {
		t.advance()
	}
	if t.ch == '.' && isDigit(t.peek()) {
		t.advance()
		for isDigit(t.ch) {
			t.advance()
		}
	}
	if t.ch == 'e' || t.ch == 'E' {
		next := t.peek()
		signed := next == '+' || next == '-'
		if isDigit(next) || (signed && t.pos+t.width+1 < len(t.input) && isDigit(rune(t.input[t.pos+t.width+1]))) {
			t.advance()
			if t.ch == '+' || t.ch == '-' {
				t.advance()
			}
			for isDigit(t.ch) {
				t.advance()
			}
		}
	}
	return t.input[start:t.pos]
}

// readWord reads letters, digits and underscores.
func (t *Tokenizer) readWord() string {
	start := t.pos
	for !t.atEOF() && isIdentPart(t.ch) {
		t.advance()
	}
	return t.input[start:t.pos]
}

// readIdentifier reads a dotted identifier path such as address.city.
func (t *Tokenizer) readIdentifier() string {
	start := t.pos
	t.readWord()
	for t.ch == '.' && isIdentStart(t.peek()) {
		t.advance()
		t.readWord()
	}
	return t.input[start:t.pos]
}

// NextToken returns the next token. It returns nil after recording a lexical
// error; callers continue scanning.
func (t *Tokenizer) NextToken() *Token {
	t.skipWhitespace()

	tok := &Token{Pos: t.pos, Line: t.line, Column: t.column}
	if t.atEOF() {
		tok.Type = TokenEOF
		return tok
	}

	if t.tokenizeString(tok) || t.tokenizeNumber(tok) || t.tokenizeSpecialChar(tok) ||
		t.tokenizeBang(tok) || t.tokenizeConstant(tok) || t.tokenizeIdentifierOrKeyword(tok) {
		if tok.Type == TokenEOF {
			return nil
		}
		t.prev = tok.Type
		return tok
	}

	t.errorf(tok.Pos, tok.Line, tok.Column, "unexpected character '%c'", t.ch)
	t.advance()
	return nil
}

// tokenizeString tokenizes string literals
func (t *Tokenizer) tokenizeString(tok *Token) bool {
	if t.ch != '\'' && t.ch != '"' {
		return false
	}
	value, ok := t.readString()
	if !ok {
		t.errorf(tok.Pos, tok.Line, tok.Column, "unterminated string literal")
		return true
	}
	tok.Type = TokenString
	tok.Value = value
	return true
}

// tokenizeNumber tokenizes numeric literals, including a leading sign when
// the previous token does not end a value.
func (t *Tokenizer) tokenizeNumber(tok *Token) bool {
	if isDigit(t.ch) {
		tok.Type = TokenNumber
		tok.Value = t.readNumber()
		return true
	}
	if t.ch != '-' || t.valueEnded() {
		return false
	}
	if isDigit(t.peek()) {
		tok.Type = TokenNumber
		tok.Value = t.readNumber()
		return true
	}
	rest := t.input[t.pos+1:]
	for _, word := range []string{"Infinity", "infinity"} {
		if strings.HasPrefix(rest, word) {
			after, _ := utf8.DecodeRuneInString(rest[len(word):])
			if len(rest) == len(word) || !isIdentPart(after) {
				t.advance()
				t.readWord()
				tok.Type = TokenNumber
				tok.Value = "-" + word
				return true
			}
		}
	}
	return false
}

// tokenizeSpecialChar tokenizes punctuation and symbolic operators
func (t *Tokenizer) tokenizeSpecialChar(tok *Token) bool {
	single := func(tt TokenType) bool {
		tok.Type = tt
		tok.Value = string(t.ch)
		t.advance()
		return true
	}

	switch t.ch {
	case '(':
		return single(TokenLParen)
	case ')':
		return single(TokenRParen)
	case '[':
		return single(TokenLBracket)
	case ']':
		return single(TokenRBracket)
	case ',':
		return single(TokenComma)
	case '+', '-', '*', '/':
		return single(TokenArithmetic)
	case '=':
		return single(TokenComparison)
	case '>', '<':
		op := string(t.ch)
		t.advance()
		if t.ch == '=' {
			op += "="
			t.advance()
		}
		tok.Type = TokenComparison
		tok.Value = op
		return true
	}
	return false
}

// tokenizeBang tokenizes != and the negated word operators !in, !like and
// !ilike.
func (t *Tokenizer) tokenizeBang(tok *Token) bool {
	if t.ch != '!' {
		return false
	}
	if t.peek() == '=' {
		t.advance()
		t.advance()
		tok.Type = TokenComparison
		tok.Value = "!="
		return true
	}
	t.advance()
	word := t.readWord()
	switch word {
	case "in", "like", "ilike":
		tok.Type = TokenComparison
		tok.Value = "!" + word
	default:
		t.errorf(tok.Pos, tok.Line, tok.Column, "unexpected operator '!%s'", word)
		tok.Type = TokenEOF
	}
	return true
}

// tokenizeConstant tokenizes @name references.
func (t *Tokenizer) tokenizeConstant(tok *Token) bool {
	if t.ch != '@' {
		return false
	}
	t.advance()
	if !isIdentStart(t.ch) {
		t.errorf(tok.Pos, tok.Line, tok.Column, "expected constant name after '@'")
		tok.Type = TokenEOF
		return true
	}
	tok.Type = TokenConstant
	tok.Value = t.readIdentifier()
	return true
}

// tokenizeIdentifierOrKeyword tokenizes identifiers and keywords. Keywords
// are case-sensitive.
func (t *Tokenizer) tokenizeIdentifierOrKeyword(tok *Token) bool {
	if !isIdentStart(t.ch) {
		return false
	}

	value := t.readIdentifier()
	tok.Value = value
	tok.Type = classifyKeyword(value)
	return true
}

// classifyKeyword classifies a word; anything that is not a keyword is an
// identifier.
func classifyKeyword(word string) TokenType {
	switch word {
	case "and", "or":
		return TokenLogical
	case "not":
		return TokenNot
	case "true", "false":
		return TokenBoolean
	case "null":
		return TokenNull
	case "in", "like", "ilike":
		return TokenComparison
	case "Infinity", "infinity":
		return TokenNumber
	}
	return TokenIdentifier
}

// TokenizeAll returns all tokens from the input. Every lexical error found is
// reported; a single error is returned as *filtererrors.SyntaxError, several
// as a *multierror.Error of them.
func (t *Tokenizer) TokenizeAll() ([]*Token, error) {
	var tokens []*Token

	for {
		token := t.NextToken()
		if token == nil {
			continue
		}

		tokens = append(tokens, token)

		if token.Type == TokenEOF {
			break
		}
	}

	if t.errs != nil {
		if len(t.errs.Errors) == 1 {
			return nil, t.errs.Errors[0]
		}
		return nil, t.errs
	}
	return tokens, nil
}
