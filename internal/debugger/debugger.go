// Package debugger drives an interpreter one instruction at a time from an
// interactive prompt, using the same Trace/Tracer hook the CLI's run
// subcommand uses for plain logging.
package debugger

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/Richard7412/dbn-3/bytecode"
	"github.com/Richard7412/dbn-3/vm"
)

// stepMode controls how many instructions the dispatch loop is allowed to
// run before the debugger's Tracer blocks it again.
type stepMode int

const (
	stepNone stepMode = iota // run to completion
	stepOnce                 // stop after the next instruction
)

// Debugger runs an interpreter on its own goroutine and gates its
// dispatch loop through the Tracer hook: every instruction blocks on
// resume until a command unblocks it, so single-stepping needs no
// cooperation from the interpreter beyond the hook it already exposes.
type Debugger struct {
	interp *vm.Interpreter
	prog   bytecode.Program

	events chan vm.TraceEvent
	resume chan struct{}
	done   chan error

	mode      stepMode
	history   int
	showStack bool

	out io.Writer
}

// New wires a Debugger around interp for prog. history bounds the
// readline prompt's command history; showStack controls whether the
// value stack is printed at every stop.
func New(interp *vm.Interpreter, prog bytecode.Program, history int, showStack bool, out io.Writer) *Debugger {
	d := &Debugger{
		interp:    interp,
		prog:      prog,
		events:    make(chan vm.TraceEvent),
		resume:    make(chan struct{}),
		done:      make(chan error, 1),
		mode:      stepOnce,
		history:   history,
		showStack: showStack,
		out:       out,
	}
	interp.Trace = true
	interp.Tracer = d.onInstruction
	return d
}

// onInstruction is the Tracer callback: it hands the event to the REPL
// loop and blocks until the loop signals resume, implementing single-step
// semantics without the dispatch loop knowing a debugger exists.
func (d *Debugger) onInstruction(ev vm.TraceEvent) {
	if d.mode == stepNone {
		return
	}
	d.events <- ev
	<-d.resume
}

// Run starts the interpreter on a worker goroutine and drives an
// interactive readline prompt until the program halts or the user quits.
func (d *Debugger) Run() error {
	go func() {
		d.done <- d.interp.Run(d.prog)
		close(d.events)
	}()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "(dbn-debug) ",
		HistoryLimit: d.history,
	})
	if err != nil {
		return fmt.Errorf("failed to start debugger prompt: %w", err)
	}
	defer rl.Close()

	for ev := range d.events {
		d.printStop(ev)
		if !d.prompt(rl) {
			d.interp.Terminate()
			close(d.resume)
			<-d.done
			return nil
		}
	}

	return <-d.done
}

// prompt reads and executes commands until the user asks to step or
// continue, returning false if they asked to quit.
func (d *Debugger) prompt(rl *readline.Instance) bool {
	for {
		line, err := rl.Readline()
		if err != nil { // Ctrl-D or Ctrl-C
			return false
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			fields = []string{"step"}
		}
		switch fields[0] {
		case "step", "s":
			d.mode = stepOnce
			d.resume <- struct{}{}
			return true
		case "continue", "c":
			d.mode = stepNone
			d.resume <- struct{}{}
			return true
		case "quit", "q":
			return false
		default:
			fmt.Fprintf(d.out, "unknown command %q (try step, continue, quit)\n", fields[0])
		}
	}
}

func (d *Debugger) printStop(ev vm.TraceEvent) {
	fmt.Fprintf(d.out, "%4d %-18s %-10v line=%d\n", ev.IP, ev.Op, ev.Arg, ev.Line)
	if d.showStack {
		fmt.Fprintf(d.out, "     stack: %v\n", ev.Stack)
	}
}
