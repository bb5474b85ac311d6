// Package main provides filterc, a CLI for parsing filters and inspecting
// what they compile to on each backend.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	return &cli.App{
		Name:  "filterc",
		Usage: "Parse, print, compile and merge filter expressions",
		Description: `Filters are passed as arguments. A single "-" reads the filter from stdin.

Examples:
  filterc print 'rate >= 5 and not deleted = null'
  filterc compile --backend search 'givenName ilike "Demons%"'
  filterc merge --backend document --prefix owner 'rate=1' 'rate=2'
  filterc sql --constants constants.yaml 'rate in @rates'`,
		Reader: in,
		Writer: out,
		Commands: []*cli.Command{
			parseCommand(),
			printCommand(),
			compileCommand(),
			mergeCommand(),
			sqlCommand(),
		},
	}
}
