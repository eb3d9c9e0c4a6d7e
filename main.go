package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/Richard7412/dbn-3/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to load config: %v\n", err)
		os.Exit(1)
	}

	run := &runCmd{outputFile: cfg.Run.OutputFile, trace: cfg.Run.Trace}
	compile := &compileCmd{outputFile: cfg.Compile.OutputFile}
	view := &viewCmd{refreshMillis: cfg.Viewer.RefreshMillis, showBorder: cfg.Viewer.ShowBorder}
	debug := &debugCmd{historySize: cfg.Debugger.HistorySize, showStack: cfg.Debugger.ShowStack}

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(run, "")
	subcommands.Register(compile, "")
	subcommands.Register(view, "")
	subcommands.Register(debug, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
