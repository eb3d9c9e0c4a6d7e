package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/Richard7412/dbn-3/internal/imagewriter"
	"github.com/Richard7412/dbn-3/vm"
)

// runCmd executes a DBN source file and writes the resulting canvas to a
// bitmap file.
type runCmd struct {
	outputFile string
	trace      bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute a DBN source file and write its canvas to a bitmap" }
func (*runCmd) Usage() string {
	return `run [-f output.bmp] [-t] <file.dbn>:
  Execute DBN source and write the resulting canvas.
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.outputFile, "f", r.outputFile, "bitmap file to write the canvas to")
	f.BoolVar(&r.trace, "t", r.trace, "print each executed instruction and the stack before it runs")
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	if r.trace {
		in.Trace = true
		in.Tracer = func(ev vm.TraceEvent) {
			fmt.Fprintf(os.Stderr, "%4d %-20s %-10v line=%d stack=%v\n", ev.IP, ev.Op, ev.Arg, ev.Line, ev.Stack)
		}
	}

	if err := in.Run(prog); err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	if err := imagewriter.WriteBMP(r.outputFile, in.Snapshot()); err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
