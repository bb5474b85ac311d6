package parser

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-filterql/internal/filtererrors"
)

func TestTokenizer_Tokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenType
		values   []string
	}{
		{
			name:     "Simple comparison",
			input:    "givenName='Demons'",
			expected: []TokenType{TokenIdentifier, TokenComparison, TokenString, TokenEOF},
			values:   []string{"givenName", "=", "Demons", ""},
		},
		{
			name:     "Dotted identifier",
			input:    "address.city != \"Oslo\"",
			expected: []TokenType{TokenIdentifier, TokenComparison, TokenString, TokenEOF},
			values:   []string{"address.city", "!=", "Oslo", ""},
		},
		{
			name:     "Word operators",
			input:    "rate in [5, 6]",
			expected: []TokenType{TokenIdentifier, TokenComparison, TokenLBracket, TokenNumber, TokenComma, TokenNumber, TokenRBracket, TokenEOF},
			values:   []string{"rate", "in", "[", "5", ",", "6", "]", ""},
		},
		{
			name:     "Negated word operators",
			input:    "a !in b !like c !ilike d",
			expected: []TokenType{TokenIdentifier, TokenComparison, TokenIdentifier, TokenComparison, TokenIdentifier, TokenComparison, TokenIdentifier, TokenEOF},
			values:   []string{"a", "!in", "b", "!like", "c", "!ilike", "d", ""},
		},
		{
			name:     "Keywords",
			input:    "not deleted=null and flag=true or flag=false",
			expected: []TokenType{TokenNot, TokenIdentifier, TokenComparison, TokenNull, TokenLogical, TokenIdentifier, TokenComparison, TokenBoolean, TokenLogical, TokenIdentifier, TokenComparison, TokenBoolean, TokenEOF},
		},
		{
			name:     "Keywords are case sensitive",
			input:    "AND Null",
			expected: []TokenType{TokenIdentifier, TokenIdentifier, TokenEOF},
		},
		{
			name:     "Keyword prefix is an identifier",
			input:    "index notes",
			expected: []TokenType{TokenIdentifier, TokenIdentifier, TokenEOF},
		},
		{
			name:     "Signed number after operator",
			input:    "a>=-5.5e3",
			expected: []TokenType{TokenIdentifier, TokenComparison, TokenNumber, TokenEOF},
			values:   []string{"a", ">=", "-5.5e3", ""},
		},
		{
			name:     "Minus after value is subtraction",
			input:    "a-1",
			expected: []TokenType{TokenIdentifier, TokenArithmetic, TokenNumber, TokenEOF},
			values:   []string{"a", "-", "1", ""},
		},
		{
			name:     "Subtracting a negative number",
			input:    "a--1",
			expected: []TokenType{TokenIdentifier, TokenArithmetic, TokenNumber, TokenEOF},
			values:   []string{"a", "-", "-1", ""},
		},
		{
			name:     "Infinity",
			input:    "a>-Infinity and b<Infinity",
			expected: []TokenType{TokenIdentifier, TokenComparison, TokenNumber, TokenLogical, TokenIdentifier, TokenComparison, TokenNumber, TokenEOF},
			values:   []string{"a", ">", "-Infinity", "and", "b", "<", "Infinity", ""},
		},
		{
			name:     "Constant",
			input:    "owner=@current.user",
			expected: []TokenType{TokenIdentifier, TokenComparison, TokenConstant, TokenEOF},
			values:   []string{"owner", "=", "current.user", ""},
		},
		{
			name:     "Escaped quote",
			input:    `name='it\'s'`,
			expected: []TokenType{TokenIdentifier, TokenComparison, TokenString, TokenEOF},
			values:   []string{"name", "=", "it's", ""},
		},
		{
			name:     "Unicode identifier",
			input:    "größe<=3",
			expected: []TokenType{TokenIdentifier, TokenComparison, TokenNumber, TokenEOF},
			values:   []string{"größe", "<=", "3", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewTokenizer(tt.input).TokenizeAll()
			require.NoError(t, err)
			require.Len(t, tokens, len(tt.expected))
			for i, tok := range tokens {
				assert.Equal(t, tt.expected[i], tok.Type, "token %d", i)
				if tt.values != nil {
					assert.Equal(t, tt.values[i], tok.Value, "token %d", i)
				}
			}
		})
	}
}

func TestTokenizer_Positions(t *testing.T) {
	tokens, err := NewTokenizer("a = 1\n  and b = 'x'").TokenizeAll()
	require.NoError(t, err)

	and := tokens[3]
	assert.Equal(t, TokenLogical, and.Type)
	assert.Equal(t, 2, and.Line)
	assert.Equal(t, 3, and.Column)
	assert.Equal(t, 8, and.Pos)
}

func TestTokenizer_UnterminatedString(t *testing.T) {
	_, err := NewTokenizer("name = 'Demons").TokenizeAll()
	require.Error(t, err)

	var syntaxErr *filtererrors.SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, 1, syntaxErr.Line)
	assert.Equal(t, 8, syntaxErr.Column)
	assert.Contains(t, syntaxErr.Message, "unterminated")
}

func TestTokenizer_CollectsAllLexicalErrors(t *testing.T) {
	_, err := NewTokenizer("a # 1 and b $ 2 and c !foo 3").TokenizeAll()
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 3)
	assert.True(t, errors.Is(err, filtererrors.ErrSyntax))

	var first *filtererrors.SyntaxError
	require.True(t, errors.As(merr.Errors[0], &first))
	assert.Equal(t, 3, first.Column)
}
