package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/clause"

	"github.com/nlstn/go-filterql"
)

// writeFilter prints a compiled filter: Extended JSON for documents, JSON
// for search queries and SQL for relational conditions. A nil filter prints
// nothing.
func writeFilter(c *cli.Context, filter any) error {
	w := c.App.Writer
	switch f := filter.(type) {
	case bson.M:
		if f == nil {
			return nil
		}
		data, err := bson.MarshalExtJSONIndent(f, false, false, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode document filter: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case *filterql.SearchQuery:
		if f == nil {
			return nil
		}
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode search query: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case clause.Expression:
		renderer, err := newRenderer(c.String("dialect"))
		if err != nil {
			return err
		}
		fmt.Fprintln(w, renderer.Explain(f))
	case nil:
	default:
		return fmt.Errorf("unexpected filter type %T", filter)
	}
	return nil
}

func newRenderer(dialect string) (*filterql.SQLRenderer, error) {
	switch dialect {
	case "postgres", "postgresql":
		return filterql.NewPostgresRenderer()
	case "sqlite":
		return filterql.NewSQLRenderer(sqlite.Open("file::memory:"))
	}
	return nil, fmt.Errorf("unknown SQL dialect %q", dialect)
}

// dumpTree writes one line per node, children indented below their parent.
func dumpTree(w io.Writer, expr filterql.Expression, depth int) {
	indent := strings.Repeat("  ", depth)
	line := func(format string, args ...any) {
		fmt.Fprintf(w, indent+format+"\n", args...)
	}

	switch n := expr.(type) {
	case *filterql.NumberLiteral:
		line("Number %s", n)
	case *filterql.StringLiteral:
		line("String %s", n)
	case *filterql.DateLiteral:
		line("Date %s", n)
	case *filterql.TimeLiteral:
		line("Time %s", n)
	case *filterql.BooleanLiteral:
		line("Boolean %s", n)
	case *filterql.NullLiteral:
		line("Null")
	case *filterql.QualifiedIdentifier:
		line("Field %s", n.Value)
	case *filterql.ExternalConstant:
		line("Constant @%s", n.Name)
	case *filterql.ArrayExpression:
		line("Array")
		for _, item := range n.Items {
			dumpTree(w, item, depth+1)
		}
	case *filterql.ArithmeticExpression:
		line("Arithmetic")
		for i, item := range n.Items {
			if i > 0 {
				fmt.Fprintf(w, "%s  %s\n", indent, item.Op)
			}
			dumpTree(w, item.Operand, depth+1)
		}
	case *filterql.ParenthesizedExpression:
		line("Group")
		dumpTree(w, n.Expression, depth+1)
	case *filterql.NegativeExpression:
		line("Not")
		dumpTree(w, n.Expression, depth+1)
	case *filterql.ComparisonExpression:
		line("Comparison %s", n.Op)
		dumpTree(w, n.Left, depth+1)
		dumpTree(w, n.Right, depth+1)
	case *filterql.LogicalExpression:
		line("Logical %s", n.Op)
		for _, item := range n.Items {
			dumpTree(w, item, depth+1)
		}
	}
}
