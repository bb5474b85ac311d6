// Package merge combines filter inputs into one conjunctive native filter
// for a backend.
package merge

import (
	"fmt"
	"strings"

	"github.com/nlstn/go-filterql/internal/ast"
	"github.com/nlstn/go-filterql/internal/compile"
	"github.com/nlstn/go-filterql/internal/parser"
)

// Target describes one backend for Merge. F is the backend's native filter
// type.
type Target[F any] struct {
	Backend      string
	Compile      func(ast.Expression, compile.Options) (F, error)
	Conjoin      func(...F) F
	PrefixFields func(F, string) F
	IsEmpty      func(F) bool
}

// Options configures Merge.
type Options struct {
	// FieldPrefix, when set, places every field of the result under this
	// path.
	FieldPrefix string

	// Compile is passed to the backend compiler for every parsed or AST
	// input.
	Compile compile.Options

	// Parse replaces parser.Parse, e.g. with a cached variant.
	Parse func(string) (ast.Expression, error)
}

// Merge compiles every input and requires all of them to match. Inputs may
// be filter text, an ast.Expression, a native F, or a []string / []any of
// those. nil, blank strings, empty slices and empty native filters are
// skipped; when nothing is left the zero F is returned.
//
// Parse and compile errors are returned unchanged.
func Merge[F any](t Target[F], inputs []any, opts Options) (F, error) {
	var zero F

	parse := opts.Parse
	if parse == nil {
		parse = parser.Parse
	}

	var parts []F
	var collect func(input any) error
	collect = func(input any) error {
		switch v := input.(type) {
		case nil:
			return nil
		case string:
			if strings.TrimSpace(v) == "" {
				return nil
			}
			expr, err := parse(v)
			if err != nil {
				return err
			}
			return collect(expr)
		case ast.Expression:
			compiled, err := t.Compile(v, opts.Compile)
			if err != nil {
				return err
			}
			return collect(compiled)
		case F:
			if t.IsEmpty != nil && t.IsEmpty(v) {
				return nil
			}
			parts = append(parts, v)
			return nil
		case []string:
			for _, item := range v {
				if err := collect(item); err != nil {
					return err
				}
			}
			return nil
		case []any:
			for _, item := range v {
				if err := collect(item); err != nil {
					return err
				}
			}
			return nil
		}
		return fmt.Errorf("cannot merge %T into a %s filter", input, t.Backend)
	}

	for _, input := range inputs {
		if err := collect(input); err != nil {
			return zero, err
		}
	}

	var result F
	switch len(parts) {
	case 0:
		return zero, nil
	case 1:
		result = parts[0]
	default:
		result = t.Conjoin(parts...)
	}

	if opts.FieldPrefix != "" && t.PrefixFields != nil {
		result = t.PrefixFields(result, opts.FieldPrefix)
	}
	return result, nil
}
