// Package vm implements the stack machine that executes assembled DBN
// bytecode: a fetch-decode-dispatch loop over a flat instruction array,
// a mixed int/string value stack, a map-based variable environment, and a
// runtime-extensible command table seeded with the language's built-ins.
package vm

import (
	"sync"
	"sync/atomic"

	"github.com/Richard7412/dbn-3/bytecode"
	"github.com/Richard7412/dbn-3/canvas"
)

// Frame records what to restore when a user command's RETURN runs: the
// caller's environment and the instruction to resume at.
type Frame struct {
	ReturnIP int
	Env      *Environment
}

// TraceEvent is one step of execution, emitted when tracing is enabled.
// It is the only observable side effect of running besides canvas writes.
type TraceEvent struct {
	IP    int
	Op    bytecode.Op
	Arg   any
	Line  int
	Stack []any
}

// Interpreter executes one assembled program against one canvas. It owns
// the value stack, the frame stack, the active environment, and the
// command table exclusively for the run's duration; nothing outside the
// dispatch loop mutates interpreter state.
type Interpreter struct {
	stack    Stack
	frames   []Frame
	env      *Environment
	commands map[string]*UserCommand
	canvas   *canvas.Canvas
	penColor int
	line     int

	// canvasMu guards the canvas between the dispatch loop's pixel writes
	// and Snapshot's copy for a concurrent UI goroutine; each side holds
	// it only briefly, never across a fetch.
	canvasMu sync.Mutex

	terminate atomic.Bool

	Trace  bool
	Tracer func(TraceEvent)
}

// New creates an interpreter with a fresh white canvas and a black pen,
// the language's documented initial state.
func New() *Interpreter {
	return &Interpreter{
		env:      NewEnvironment(),
		commands: make(map[string]*UserCommand),
		canvas:   canvas.New(),
		penColor: 0,
	}
}

// Canvas returns the interpreter's canvas. Callers reading it from
// another goroutine while Run is in progress should use Snapshot instead,
// which takes the same brief lock Run's own pixel writes do.
func (in *Interpreter) Canvas() *canvas.Canvas {
	return in.canvas
}

// Snapshot returns a copy of the canvas pixels, safe to read concurrently
// with an in-progress Run.
func (in *Interpreter) Snapshot() [canvas.Size * canvas.Size]byte {
	in.canvasMu.Lock()
	defer in.canvasMu.Unlock()
	return in.canvas.Snapshot()
}

// Terminate cooperatively requests that Run stop before its next fetch.
// There is no forced cancellation; the dispatch loop only ever checks
// this flag between instructions.
func (in *Interpreter) Terminate() {
	in.terminate.Store(true)
}

// Run executes an assembled program to completion, to END, or until
// Terminate is called.
func (in *Interpreter) Run(prog bytecode.Program) error {
	ip := 0
	for ip < len(prog) {
		if in.terminate.Load() {
			return nil
		}
		instr := prog[ip]
		nextIP := ip + 1

		if in.Trace {
			in.emitTrace(ip, instr)
		}

		switch instr.Op {
		case bytecode.END:
			return nil

		case bytecode.SET_LINE_NO:
			in.line = instr.Arg.(int)

		case bytecode.LOAD_INTEGER:
			in.stack.Push(instr.Arg)

		case bytecode.LOAD_STRING:
			in.stack.Push(instr.Arg)

		case bytecode.LOAD:
			in.stack.Push(in.env.Get(instr.Arg.(string)))

		case bytecode.STORE:
			v, ok := in.stack.Pop()
			if !ok {
				return in.emptyStackErr(ip)
			}
			in.env.Set(instr.Arg.(string), v)

		case bytecode.BINARY_ADD, bytecode.BINARY_SUB, bytecode.BINARY_MUL, bytecode.BINARY_DIV:
			v, err := in.binaryOp(instr.Op, ip)
			if err != nil {
				return err
			}
			in.stack.Push(v)

		case bytecode.COMPARE_SAME, bytecode.COMPARE_NSAME, bytecode.COMPARE_SMALLER, bytecode.COMPARE_NSMALLER:
			v, err := in.compare(instr.Op, ip)
			if err != nil {
				return err
			}
			in.stack.Push(v)

		case bytecode.DUP_TOPX:
			k := instr.Arg.(int)
			if !in.stack.DupTopX(k) {
				return in.emptyStackErr(ip)
			}

		case bytecode.POP_TOPX:
			k := instr.Arg.(int)
			if !in.stack.PopTopX(k) {
				return in.emptyStackErr(ip)
			}

		case bytecode.JUMP:
			target, err := in.jumpTarget(instr.Arg, ip, len(prog))
			if err != nil {
				return err
			}
			nextIP = target

		case bytecode.POP_JUMP_IF_TRUE:
			v, ok := in.stack.Pop()
			if !ok {
				return in.emptyStackErr(ip)
			}
			if truthy(v) {
				target, err := in.jumpTarget(instr.Arg, ip, len(prog))
				if err != nil {
					return err
				}
				nextIP = target
			}

		case bytecode.POP_JUMP_IF_FALSE:
			v, ok := in.stack.Pop()
			if !ok {
				return in.emptyStackErr(ip)
			}
			if !truthy(v) {
				target, err := in.jumpTarget(instr.Arg, ip, len(prog))
				if err != nil {
					return err
				}
				nextIP = target
			}

		case bytecode.GET_DOT:
			x, err1 := in.popIntTyped(ip)
			if err1 != nil {
				return err1
			}
			y, err2 := in.popIntTyped(ip)
			if err2 != nil {
				return err2
			}
			in.stack.Push(in.canvas.Get(x, y))

		case bytecode.SET_DOT:
			x, err1 := in.popIntTyped(ip)
			if err1 != nil {
				return err1
			}
			y, err2 := in.popIntTyped(ip)
			if err2 != nil {
				return err2
			}
			v, err3 := in.popIntTyped(ip)
			if err3 != nil {
				return err3
			}
			in.canvasMu.Lock()
			in.canvas.Set(x, y, v)
			in.canvasMu.Unlock()

		case bytecode.COMMAND:
			target, err := in.dispatchCommand(instr.Arg.(int), ip, nextIP)
			if err != nil {
				return err
			}
			if target >= 0 {
				nextIP = target
			}

		case bytecode.DEFINE_COMMAND:
			if err := in.defineCommand(instr.Arg.(int), ip); err != nil {
				return err
			}

		case bytecode.RETURN:
			target, err := in.doReturn(ip)
			if err != nil {
				return err
			}
			nextIP = target

		default:
			return CreateRuntimeError(UnknownCommand, in.line, ip, "unrecognized opcode")
		}

		ip = nextIP
	}
	return nil
}

func (in *Interpreter) emitTrace(ip int, instr bytecode.Instruction) {
	if in.Tracer == nil {
		return
	}
	snapshot := make([]any, len(in.stack))
	copy(snapshot, in.stack)
	in.Tracer(TraceEvent{IP: ip, Op: instr.Op, Arg: instr.Arg, Line: in.line, Stack: snapshot})
}

func (in *Interpreter) emptyStackErr(ip int) error {
	return CreateRuntimeError(EmptyStack, in.line, ip, "popped from an empty stack")
}

func truthy(v any) bool {
	n, ok := v.(int)
	return ok && n != 0
}

func (in *Interpreter) jumpTarget(arg any, ip, progLen int) (int, error) {
	target, ok := arg.(int)
	if !ok || target < 0 || target >= progLen {
		return 0, CreateRuntimeError(JumpOutOfBounds, in.line, ip, "jump target outside the instruction stream")
	}
	return target, nil
}

func (in *Interpreter) popIntTyped(ip int) (int, error) {
	v, ok := in.stack.Pop()
	if !ok {
		return 0, in.emptyStackErr(ip)
	}
	n, ok := v.(int)
	if !ok {
		return 0, CreateRuntimeError(TypeError, in.line, ip, "expected an integer on the stack")
	}
	return n, nil
}

func (in *Interpreter) binaryOp(op bytecode.Op, ip int) (int, error) {
	a, err := in.popIntTyped(ip)
	if err != nil {
		return 0, err
	}
	b, err := in.popIntTyped(ip)
	if err != nil {
		return 0, err
	}
	switch op {
	case bytecode.BINARY_ADD:
		return a + b, nil
	case bytecode.BINARY_SUB:
		return a - b, nil
	case bytecode.BINARY_MUL:
		return a * b, nil
	case bytecode.BINARY_DIV:
		if b == 0 {
			return 0, CreateRuntimeError(DivisionByZero, in.line, ip, "division by zero")
		}
		return a / b, nil // Go's integer division truncates toward zero
	default:
		return 0, CreateRuntimeError(TypeError, in.line, ip, "not a binary arithmetic op")
	}
}

func (in *Interpreter) compare(op bytecode.Op, ip int) (int, error) {
	a, err := in.popIntTyped(ip)
	if err != nil {
		return 0, err
	}
	b, err := in.popIntTyped(ip)
	if err != nil {
		return 0, err
	}
	var result bool
	switch op {
	case bytecode.COMPARE_SAME:
		result = a == b
	case bytecode.COMPARE_NSAME:
		result = a != b
	case bytecode.COMPARE_SMALLER:
		result = a < b
	case bytecode.COMPARE_NSMALLER:
		result = !(a < b)
	}
	if result {
		return 1, nil
	}
	return 0, nil
}
