// Package parser turns filter text into an ast.Expression.
//
// Grammar, lowest precedence first:
//
//	Or         := And ('or' And)*
//	And        := Unary ('and' Unary)*
//	Unary      := 'not' Unary | Comparison
//	Comparison := Arith (CompOp Arith)?
//	Arith      := Term (('+'|'-'|'*'|'/') Term)*
//	Term       := '(' Or ')' | Array | Literal | Identifier | '@' Identifier
//	Array      := '[' (Arith (',' Arith)*)? ']'
package parser

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/nlstn/go-filterql/internal/ast"
	"github.com/nlstn/go-filterql/internal/filtererrors"
)

// Parse parses a filter expression.
func Parse(text string) (ast.Expression, error) {
	tokens, err := NewTokenizer(text).TokenizeAll()
	if err != nil {
		return nil, err
	}
	return NewASTParser(tokens).Parse()
}

// ASTParser parses filter expressions into an AST
type ASTParser struct {
	tokens  []*Token
	current int
}

// NewASTParser creates a new AST parser
func NewASTParser(tokens []*Token) *ASTParser {
	return &ASTParser{
		tokens:  tokens,
		current: 0,
	}
}

// currentToken returns the current token
func (p *ASTParser) currentToken() *Token {
	if p.current >= len(p.tokens) {
		if len(p.tokens) > 0 {
			return p.tokens[len(p.tokens)-1]
		}
		return &Token{Type: TokenEOF, Line: 1, Column: 1}
	}
	return p.tokens[p.current]
}

// advance moves to the next token
func (p *ASTParser) advance() *Token {
	token := p.currentToken()
	if p.current < len(p.tokens)-1 {
		p.current++
	}
	return token
}

func (p *ASTParser) errorAt(token *Token, format string, args ...interface{}) error {
	return &filtererrors.SyntaxError{
		Message: fmt.Sprintf(format, args...),
		Line:    token.Line,
		Column:  token.Column,
		Offset:  token.Pos,
	}
}

func (p *ASTParser) unexpected(token *Token) error {
	if token.Type == TokenEOF {
		return p.errorAt(token, "unexpected end of input")
	}
	return p.errorAt(token, "unexpected %s", token.describe())
}

// expect checks if the current token matches the expected type and advances
func (p *ASTParser) expect(tokenType TokenType) error {
	token := p.currentToken()
	if token.Type != tokenType {
		if token.Type == TokenEOF {
			return p.errorAt(token, "expected %v, got end of input", tokenType)
		}
		return p.errorAt(token, "expected %v, got %s", tokenType, token.describe())
	}
	p.advance()
	return nil
}

// Parse parses the tokens into an AST
func (p *ASTParser) Parse() (ast.Expression, error) {
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	// Verify all tokens were consumed (except EOF)
	if p.currentToken().Type != TokenEOF {
		return nil, p.unexpected(p.currentToken())
	}

	return node, nil
}

// parseOr handles OR expressions (lowest precedence)
func (p *ASTParser) parseOr() (ast.Expression, error) {
	return p.parseLogical(ast.Or, p.parseAnd)
}

// parseAnd handles AND expressions
func (p *ASTParser) parseAnd() (ast.Expression, error) {
	return p.parseLogical(ast.And, p.parseNot)
}

// parseLogical collects a run of operands joined by op into one flat node.
func (p *ASTParser) parseLogical(op ast.LogicalOperator, operand func() (ast.Expression, error)) (ast.Expression, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}

	items := []ast.Expression{first}
	for p.currentToken().Type == TokenLogical && p.currentToken().Value == string(op) {
		p.advance()
		next, err := operand()
		if err != nil {
			return nil, err
		}
		items = append(items, next)
	}

	if len(items) == 1 {
		return first, nil
	}
	return &ast.LogicalExpression{Op: op, Items: items}, nil
}

// parseNot handles NOT expressions
func (p *ASTParser) parseNot() (ast.Expression, error) {
	if p.currentToken().Type == TokenNot {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.NegativeExpression{Expression: operand}, nil
	}

	return p.parseComparison()
}

// parseComparison handles comparison expressions
func (p *ASTParser) parseComparison() (ast.Expression, error) {
	left, err := p.parseArithmetic()
	if err != nil {
		return nil, err
	}

	if p.currentToken().Type != TokenComparison {
		return left, nil
	}

	op := p.advance()
	right, err := p.parseArithmetic()
	if err != nil {
		return nil, err
	}
	return &ast.ComparisonExpression{
		Left:  left,
		Op:    ast.ComparisonOperator(op.Value),
		Right: right,
	}, nil
}

// parseArithmetic handles arithmetic chains. There is no precedence between
// the four operators; terms are kept in source order.
func (p *ASTParser) parseArithmetic() (ast.Expression, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if p.currentToken().Type != TokenArithmetic {
		return first, nil
	}

	items := []ast.ArithmeticOperand{{Op: ast.Add, Operand: first}}
	for p.currentToken().Type == TokenArithmetic {
		op := p.advance()
		operand, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		items = append(items, ast.ArithmeticOperand{
			Op:      ast.ArithmeticOperator(op.Value),
			Operand: operand,
		})
	}
	return &ast.ArithmeticExpression{Items: items}, nil
}

// parseTerm handles grouped expressions, arrays, literals and references.
func (p *ASTParser) parseTerm() (ast.Expression, error) {
	token := p.currentToken()

	switch token.Type {
	case TokenLParen:
		return p.parseGroupedExpression()
	case TokenLBracket:
		return p.parseArray()
	case TokenIdentifier:
		p.advance()
		return &ast.QualifiedIdentifier{Value: token.Value}, nil
	case TokenConstant:
		p.advance()
		return &ast.ExternalConstant{Name: token.Value}, nil
	case TokenString:
		p.advance()
		return sniffQuoted(token.Value), nil
	case TokenNumber:
		p.advance()
		return p.parseNumber(token)
	case TokenBoolean:
		p.advance()
		return &ast.BooleanLiteral{Value: token.Value == "true"}, nil
	case TokenNull:
		p.advance()
		return ast.Null, nil
	}

	return nil, p.unexpected(token)
}

// parseGroupedExpression parses a grouped expression like (expr)
func (p *ASTParser) parseGroupedExpression() (ast.Expression, error) {
	open := p.advance() // consume '('
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.currentToken().Type != TokenRParen {
		if p.currentToken().Type == TokenEOF {
			return nil, p.errorAt(open, "missing closing parenthesis")
		}
		return nil, p.errorAt(p.currentToken(), "expected ')', got %s", p.currentToken().describe())
	}
	p.advance()
	return &ast.ParenthesizedExpression{Expression: expr}, nil
}

// parseArray parses [item, item, ...].
func (p *ASTParser) parseArray() (ast.Expression, error) {
	open := p.advance() // consume '['
	items := []ast.Expression{}

	if p.currentToken().Type == TokenRBracket {
		p.advance()
		return &ast.ArrayExpression{Items: items}, nil
	}

	for {
		item, err := p.parseArithmetic()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		switch p.currentToken().Type {
		case TokenComma:
			p.advance()
			continue
		case TokenRBracket:
			p.advance()
			return &ast.ArrayExpression{Items: items}, nil
		case TokenEOF:
			return nil, p.errorAt(open, "missing closing bracket")
		}
		return nil, p.errorAt(p.currentToken(), "expected ',' or ']', got %s", p.currentToken().describe())
	}
}

// parseNumber converts a numeric token. Integers outside the float64-exact
// range keep every digit as a big integer.
func (p *ASTParser) parseNumber(token *Token) (ast.Expression, error) {
	switch token.Value {
	case "Infinity", "infinity":
		return &ast.NumberLiteral{Value: math.Inf(1)}, nil
	case "-Infinity", "-infinity":
		return &ast.NumberLiteral{Value: math.Inf(-1)}, nil
	}

	if isIntegerText(token.Value) {
		v, ok := new(big.Int).SetString(token.Value, 10)
		if !ok {
			return nil, p.errorAt(token, "invalid number '%s'", token.Value)
		}
		return ast.BigNumber(v), nil
	}

	v, err := strconv.ParseFloat(token.Value, 64)
	if err != nil {
		return nil, p.errorAt(token, "number '%s' is out of range", token.Value)
	}
	return &ast.NumberLiteral{Value: v}, nil
}

func isIntegerText(s string) bool {
	if len(s) > 0 && s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(rune(s[i])) {
			return false
		}
	}
	return true
}
