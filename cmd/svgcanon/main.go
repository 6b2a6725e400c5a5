// Command svgcanon is a minimal standalone SVG canonicalizer.
//
// It exists for build pipelines that want a single-purpose binary with no
// subcommands: read one SVG, canonicalize it, write it back (or to a second
// path). Prefer using `chartproof canonicalize` instead of this tool; it
// offers the same transform plus --check mode.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chartproof/chartproof/core/canon"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(stderr, "Usage: svgcanon input.svg [output.svg]")
		return 1
	}

	input := args[0]
	output := ""
	if len(args) == 2 {
		output = args[1]
	}

	if err := canon.File(input, output); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(stderr, "Error: file %s not found\n", input)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}

	if output == "" {
		output = input
	}
	fmt.Fprintf(stdout, "Canonicalized: %s\n", output)
	return 0
}
