package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/Richard7412/dbn-3/internal/debugger"
	"github.com/Richard7412/dbn-3/vm"
)

// debugCmd single-steps a DBN source file from an interactive prompt,
// printing the stack and the instruction about to run at each stop.
type debugCmd struct {
	historySize int
	showStack   bool
}

func (*debugCmd) Name() string     { return "debug" }
func (*debugCmd) Synopsis() string { return "Step through a DBN source file interactively" }
func (*debugCmd) Usage() string {
	return `debug <file.dbn>:
  Single-step a program. Commands: step (s), continue (c), quit (q).
`
}

func (c *debugCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.historySize, "history", c.historySize, "prompt history size")
	f.BoolVar(&c.showStack, "stack", c.showStack, "print the value stack at every stop")
}

func (c *debugCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	in := vm.New()
	d := debugger.New(in, prog, c.historySize, c.showStack, os.Stdout)
	if err := d.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
