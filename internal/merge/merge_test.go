package merge

import (
	"errors"
	"testing"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"gorm.io/gorm/clause"

	"github.com/nlstn/go-filterql/internal/ast"
	"github.com/nlstn/go-filterql/internal/compile"
	"github.com/nlstn/go-filterql/internal/docstore"
	"github.com/nlstn/go-filterql/internal/filtererrors"
	"github.com/nlstn/go-filterql/internal/parser"
	"github.com/nlstn/go-filterql/internal/search"
)

func TestMerge_Document(t *testing.T) {
	rate1 := bson.M{"rate": bson.M{"$eq": int64(1)}}
	rate2 := bson.M{"rate": bson.M{"$eq": int64(2)}}

	tests := []struct {
		name     string
		inputs   []any
		opts     Options
		expected bson.M
	}{
		{
			name:     "No inputs",
			inputs:   nil,
			expected: nil,
		},
		{
			name:     "Only empty inputs",
			inputs:   []any{nil, "", "   ", []string{}, []any{}, bson.M{}},
			expected: nil,
		},
		{
			name:     "Colliding keys are both kept",
			inputs:   []any{"rate=1", "rate=2"},
			expected: bson.M{"$and": bson.A{rate1, rate2}},
		},
		{
			name:   "Disjoint keys share one document",
			inputs: []any{"rate=1", ast.Compare(ast.Field("name"), ast.OpEqual, ast.String("Demons"))},
			expected: bson.M{
				"rate": bson.M{"$eq": int64(1)},
				"name": bson.M{"$eq": "Demons"},
			},
		},
		{
			name:     "Native filters pass through",
			inputs:   []any{bson.M{"tenant": "acme"}, "rate=1"},
			expected: bson.M{"tenant": "acme", "rate": bson.M{"$eq": int64(1)}},
		},
		{
			name:   "Conjunctions are flattened",
			inputs: []any{"a=1 and b=2", []string{"c=3"}},
			expected: bson.M{"$and": bson.A{
				bson.M{"a": bson.M{"$eq": int64(1)}},
				bson.M{"b": bson.M{"$eq": int64(2)}},
				bson.M{"c": bson.M{"$eq": int64(3)}},
			}},
		},
		{
			name:     "Field prefix",
			inputs:   []any{"rate=1"},
			opts:     Options{FieldPrefix: "owner"},
			expected: bson.M{"owner.rate": bson.M{"$eq": int64(1)}},
		},
		{
			name:     "Compile options reach the compiler",
			inputs:   []any{"name=@who"},
			opts:     Options{Compile: compile.Options{Constants: map[string]any{"who": "Demons"}}},
			expected: bson.M{"name": bson.M{"$eq": "Demons"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Merge(Document, tt.inputs, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestMerge_SingleInputEqualsCompile(t *testing.T) {
	filters := []string{
		"rate in [5,6]",
		"not deleted=null",
		`(rate=1 or rate=2) and name="Demons"`,
		"a=1 and b=2",
	}

	for _, filter := range filters {
		t.Run(filter, func(t *testing.T) {
			expr, err := parser.Parse(filter)
			require.NoError(t, err)

			doc, err := docstore.Compile(expr, compile.Options{})
			require.NoError(t, err)
			merged, err := Merge(Document, []any{filter}, Options{})
			require.NoError(t, err)
			assert.Equal(t, doc, merged)

			query, err := search.Compile(expr, compile.Options{})
			require.NoError(t, err)
			mergedQuery, err := Merge(Search, []any{filter}, Options{})
			require.NoError(t, err)
			assert.Equal(t, query, mergedQuery)
		})
	}
}

func TestMerge_Search(t *testing.T) {
	result, err := Merge(Search, []any{"rate=1", "rate=2", &search.Query{}, (*search.Query)(nil)}, Options{FieldPrefix: "owner"})
	require.NoError(t, err)
	assert.Equal(t, &search.Query{Bool: &types.BoolQuery{Must: []search.Query{
		{Term: map[string]types.TermQuery{"owner.rate": {Value: int64(1)}}},
		{Term: map[string]types.TermQuery{"owner.rate": {Value: int64(2)}}},
	}}}, result)
}

func TestMerge_Relational(t *testing.T) {
	result, err := Merge(Relational, []any{"rate=1", nil, "name='x'"}, Options{FieldPrefix: "t"})
	require.NoError(t, err)
	assert.Equal(t, clause.AndConditions{Exprs: []clause.Expression{
		clause.Eq{Column: clause.Column{Name: "t.rate"}, Value: int64(1)},
		clause.Eq{Column: clause.Column{Name: "t.name"}, Value: "x"},
	}}, result)

	empty, err := Merge(Relational, []any{""}, Options{})
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestMerge_Errors(t *testing.T) {
	tests := []struct {
		name   string
		inputs []any
		target error
	}{
		{"Malformed text", []any{"rate=1", "(a=1"}, filtererrors.ErrSyntax},
		{"Malformed text in slice", []any{[]string{"rate="}}, filtererrors.ErrSyntax},
		{"Unbound constant", []any{"rate=@limit"}, filtererrors.ErrUnresolvedConstant},
		{"Unsupported shape", []any{"flag"}, filtererrors.ErrUnsupportedOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Merge(Document, tt.inputs, Options{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
			assert.Nil(t, result)
		})
	}

	_, err := Merge(Document, []any{42}, Options{})
	assert.EqualError(t, err, "cannot merge int into a document filter")
}

func TestMerge_CustomParser(t *testing.T) {
	calls := 0
	opts := Options{Parse: func(text string) (ast.Expression, error) {
		calls++
		return parser.Parse(text)
	}}

	_, err := Merge(Document, []any{"a=1", "b=2"}, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
