package search

import (
	"reflect"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

// IsEmpty reports whether q is nil or sets no query at all.
func IsEmpty(q *Query) bool {
	return q == nil || reflect.ValueOf(*q).IsZero()
}

// Conjoin combines queries under one bool.must. Queries that are themselves
// a bool with only must clauses contribute their clauses directly. A single
// query is returned unchanged.
func Conjoin(queries ...*Query) *Query {
	var parts []*Query
	for _, q := range queries {
		if !IsEmpty(q) {
			parts = append(parts, q)
		}
	}
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return parts[0]
	}

	var must []Query
	for _, q := range parts {
		if clauses, ok := mustClauses(q); ok {
			must = append(must, clauses...)
			continue
		}
		must = append(must, *q)
	}
	return &Query{Bool: &types.BoolQuery{Must: must}}
}

func mustClauses(q *Query) ([]Query, bool) {
	if q.Bool == nil || !reflect.DeepEqual(*q, Query{Bool: q.Bool}) {
		return nil, false
	}
	if len(q.Bool.Must) == 0 || !reflect.DeepEqual(*q.Bool, types.BoolQuery{Must: q.Bool.Must}) {
		return nil, false
	}
	return q.Bool.Must, true
}

// PrefixFields returns a copy of q with every field name placed under
// prefix. Field-keyed leaf queries, exists and nested bool clauses are
// rewritten; other query kinds are kept as they are.
func PrefixFields(q *Query, prefix string) *Query {
	if q == nil || prefix == "" {
		return q
	}
	return prefixQuery(q, strings.TrimSuffix(prefix, ".")+".")
}

func prefixQuery(q *Query, prefix string) *Query {
	out := *q
	out.Term = prefixKeys(q.Term, prefix)
	out.Range = prefixKeys(q.Range, prefix)
	out.Wildcard = prefixKeys(q.Wildcard, prefix)
	out.Match = prefixKeys(q.Match, prefix)
	out.Prefix = prefixKeys(q.Prefix, prefix)
	out.Regexp = prefixKeys(q.Regexp, prefix)
	if q.Terms != nil {
		terms := *q.Terms
		terms.TermsQuery = prefixKeys(q.Terms.TermsQuery, prefix)
		out.Terms = &terms
	}
	if q.Exists != nil {
		e := *q.Exists
		e.Field = prefix + e.Field
		out.Exists = &e
	}
	if q.Bool != nil {
		b := *q.Bool
		b.Must = prefixClauses(q.Bool.Must, prefix)
		b.Should = prefixClauses(q.Bool.Should, prefix)
		b.MustNot = prefixClauses(q.Bool.MustNot, prefix)
		b.Filter = prefixClauses(q.Bool.Filter, prefix)
		out.Bool = &b
	}
	return &out
}

func prefixKeys[V any](m map[string]V, prefix string) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for field, v := range m {
		out[prefix+field] = v
	}
	return out
}

func prefixClauses(clauses []Query, prefix string) []Query {
	if clauses == nil {
		return nil
	}
	out := make([]Query, len(clauses))
	for i := range clauses {
		out[i] = *prefixQuery(&clauses[i], prefix)
	}
	return out
}
