package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

// compileCmd compiles a DBN source file to bytecode without running it and
// writes the listing format documented for the compile subcommand: one instruction per
// line, `<index> (<op>, <arg>)`.
type compileCmd struct {
	outputFile string
}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Compile a DBN source file to a bytecode listing" }
func (*compileCmd) Usage() string {
	return `compile [-f listing.txt] <file.dbn>:
  Compile without executing, emitting a bytecode listing.
`
}

func (c *compileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputFile, "f", c.outputFile, "file to write the listing to (default: stdout)")
}

func (c *compileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	prog, err := compileFile(path, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	listing := disassemble(prog)

	if c.outputFile == "" {
		fmt.Fprint(os.Stdout, listing)
		return subcommands.ExitSuccess
	}

	if err := os.WriteFile(c.outputFile, []byte(strings.TrimSuffix(listing, "\n")+"\n"), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to write listing: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
