package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/Richard7412/dbn-3/internal/view"
	"github.com/Richard7412/dbn-3/vm"
)

// viewCmd runs a DBN source file in a worker goroutine and repaints its
// canvas live in a terminal UI as it draws.
type viewCmd struct {
	refreshMillis int
	showBorder    bool
}

func (*viewCmd) Name() string     { return "view" }
func (*viewCmd) Synopsis() string { return "Run a DBN source file with a live terminal canvas view" }
func (*viewCmd) Usage() string {
	return `view <file.dbn>:
  Run DBN source while repainting its canvas in the terminal.
  Ctrl-C or Esc stops execution and exits.
`
}

func (c *viewCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.refreshMillis, "refresh", c.refreshMillis, "repaint interval in milliseconds")
	f.BoolVar(&c.showBorder, "border", c.showBorder, "draw a border around the canvas view")
}

func (c *viewCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	viewer := view.New(in, time.Duration(c.refreshMillis)*time.Millisecond, c.showBorder)

	runErr := make(chan error, 1)
	go func() {
		runErr <- in.Run(prog)
		viewer.Stop()
	}()

	if err := viewer.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	if err := <-runErr; err != nil {
		fmt.Fprintf(os.Stderr, "💥 %v\n", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
