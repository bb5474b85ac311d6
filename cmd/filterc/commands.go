package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/nlstn/go-filterql"
)

func backendFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "backend",
		Aliases: []string{"b"},
		Usage:   "Target backend: document, search or relational",
		Value:   filterql.BackendDocument,
	}
}

// compileFlags are shared by every command that compiles filters.
func compileFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "constants",
			Aliases: []string{"c"},
			Usage:   "YAML file binding @constants",
			EnvVars: []string{"FILTERC_CONSTANTS"},
		},
		&cli.StringSliceFlag{
			Name:  "set",
			Usage: "Bind one constant as name=value; the value is parsed as YAML",
		},
		&cli.StringFlag{
			Name:    "dialect",
			Aliases: []string{"d"},
			Usage:   "SQL dialect for relational output: postgres or sqlite",
			Value:   "postgres",
		},
	}
}

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Print the syntax tree of a filter",
		ArgsUsage: "FILTER",
		Action: func(c *cli.Context) error {
			expr, err := parseArg(c)
			if err != nil {
				return err
			}
			dumpTree(c.App.Writer, expr, 0)
			return nil
		},
	}
}

func printCommand() *cli.Command {
	return &cli.Command{
		Name:      "print",
		Usage:     "Print the canonical text of a filter",
		ArgsUsage: "FILTER",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "fingerprint",
				Usage: "Also print the fingerprint of the canonical text",
			},
		},
		Action: func(c *cli.Context) error {
			expr, err := parseArg(c)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, filterql.Print(expr))
			if c.Bool("fingerprint") {
				fmt.Fprintf(c.App.Writer, "%016x\n", filterql.Fingerprint(expr))
			}
			return nil
		},
	}
}

func compileCommand() *cli.Command {
	return &cli.Command{
		Name:      "compile",
		Usage:     "Compile a filter for a backend",
		ArgsUsage: "FILTER",
		Flags:     append(compileFlags(), backendFlag()),
		Action: func(c *cli.Context) error {
			expr, err := parseArg(c)
			if err != nil {
				return err
			}
			opts, err := compileOptions(c)
			if err != nil {
				return err
			}
			result, err := filterql.Compile(expr, c.String("backend"), opts)
			if err != nil {
				return err
			}
			return writeFilter(c, result)
		},
	}
}

func mergeCommand() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "Merge several filters into one that requires all of them",
		ArgsUsage: "FILTER...",
		Flags: append(compileFlags(), backendFlag(), &cli.StringFlag{
			Name:    "prefix",
			Aliases: []string{"p"},
			Usage:   "Place every field under this path",
		}),
		Action: func(c *cli.Context) error {
			opts, err := compileOptions(c)
			if err != nil {
				return err
			}
			inputs := make([]any, 0, c.NArg())
			for _, arg := range c.Args().Slice() {
				inputs = append(inputs, arg)
			}
			result, err := filterql.Merge(c.String("backend"), inputs, filterql.MergeOptions{
				FieldPrefix: c.String("prefix"),
				Options:     opts,
			})
			if err != nil {
				return err
			}
			return writeFilter(c, result)
		},
	}
}

func sqlCommand() *cli.Command {
	return &cli.Command{
		Name:      "sql",
		Usage:     "Render a filter as a SQL condition with bind variables",
		ArgsUsage: "FILTER",
		Flags: append(compileFlags(), &cli.BoolFlag{
			Name:  "inline",
			Usage: "Inline bind variables into the SQL text",
		}),
		Action: func(c *cli.Context) error {
			expr, err := parseArg(c)
			if err != nil {
				return err
			}
			opts, err := compileOptions(c)
			if err != nil {
				return err
			}
			cond, err := filterql.CompileRelational(expr, opts)
			if err != nil {
				return err
			}
			renderer, err := newRenderer(c.String("dialect"))
			if err != nil {
				return err
			}
			if c.Bool("inline") {
				fmt.Fprintln(c.App.Writer, renderer.Explain(cond))
				return nil
			}
			sql, vars := renderer.Render(cond)
			fmt.Fprintln(c.App.Writer, sql)
			for i, v := range vars {
				fmt.Fprintf(c.App.Writer, "%d: %v\n", i+1, v)
			}
			return nil
		},
	}
}

func parseArg(c *cli.Context) (filterql.Expression, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one filter, got %d", c.NArg())
	}
	text := c.Args().First()
	if text == "-" {
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read filter from stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}
	return filterql.Parse(text)
}

func compileOptions(c *cli.Context) (filterql.Options, error) {
	constants, err := loadConstants(c.String("constants"), c.StringSlice("set"))
	if err != nil {
		return filterql.Options{}, err
	}
	return filterql.Options{Constants: constants}, nil
}
