// Package compiler turns a parsed DBN program into the labeled
// instruction sequence the bytecode package defines, then assembles that
// sequence into one the interpreter can run directly.
//
// The emitter is a single type switch over ast.Node - the same closed
// tagged variant the ast and parser packages use - rather than a
// name-based dispatch table or a Visitor interface threaded through every
// node kind. Every case is listed in one place, so a new node the switch
// doesn't know about is a compile error, not a silent no-op.
package compiler

import (
	"fmt"
	"path/filepath"

	"github.com/Richard7412/dbn-3/ast"
	"github.com/Richard7412/dbn-3/bytecode"
	"github.com/Richard7412/dbn-3/lexer"
	"github.com/Richard7412/dbn-3/parser"
)

// FileReader resolves a Load path to source text. Callers typically back
// it with os.ReadFile; tests can supply an in-memory map.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// emitter carries the state threaded through one compilation, including
// any files recursively pulled in by Load statements. Label counters are
// shared across the whole run (not reset per file) so a label allocated
// while splicing a loaded module can never collide with one from the
// including program.
type emitter struct {
	instructions []bytecode.Instruction
	labelSeq     map[string]int
	reader       FileReader
	baseDir      string
	module       bool
}

// Compile emits bytecode for a parsed program and assembles it in one
// step. module suppresses per-statement SET_LINE_NO emission and the
// trailing END, for compiling a library fragment pulled in via Load.
// baseDir is the directory Load paths are resolved relative to; reader
// supplies the contents of any file a Load statement names.
func Compile(program *ast.Block, module bool, baseDir string, reader FileReader) (bytecode.Program, error) {
	e := &emitter{labelSeq: make(map[string]int), reader: reader, baseDir: baseDir, module: module}
	if err := e.emitBlock(program); err != nil {
		return nil, err
	}
	if !module {
		e.emit(bytecode.END, nil, 0)
	}
	return Assemble(e.instructions)
}

func (e *emitter) emit(op bytecode.Op, arg any, line int) {
	e.instructions = append(e.instructions, bytecode.Inst(op, arg, line))
}

func (e *emitter) bind(l bytecode.Label) {
	e.instructions = append(e.instructions, bytecode.Mark(l))
}

// label allocates a fresh label with the given human-readable prefix
// (e.g. "repeat_body", "command_entry"); prefixes are tracked
// independently so two different constructs never share a counter.
func (e *emitter) label(prefix string) bytecode.Label {
	n := e.labelSeq[prefix]
	e.labelSeq[prefix] = n + 1
	return bytecode.Label{Prefix: prefix, Index: n}
}

func (e *emitter) lineNo(n int) {
	if !e.module {
		e.emit(bytecode.SET_LINE_NO, n, n)
	}
}

// emitBlock visits every child of a block in order.
func (e *emitter) emitBlock(block *ast.Block) error {
	for _, child := range block.Children {
		if err := e.emitNode(child); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) emitNode(node ast.Node) error {
	switch n := node.(type) {
	case *ast.Block:
		return e.emitBlock(n)
	case *ast.NoOp:
		return nil
	case *ast.Number:
		e.emit(bytecode.LOAD_INTEGER, n.Value, n.LineNo())
		return nil
	case *ast.Word:
		e.emit(bytecode.LOAD, n.Name, n.LineNo())
		return nil
	case *ast.BinaryOp:
		return e.emitBinaryOp(n)
	case *ast.Bracket:
		return e.emitBracketRead(n)
	case *ast.Set:
		return e.emitSet(n)
	case *ast.Command:
		return e.emitCommand(n)
	case *ast.CommandDefinition:
		return e.emitCommandDefinition(n)
	case *ast.Repeat:
		return e.emitRepeat(n)
	case *ast.Question:
		return e.emitQuestion(n)
	case *ast.Load:
		return e.emitLoad(n)
	default:
		return &CompileError{Line: node.LineNo(), Detail: fmt.Sprintf("don't know how to compile %T", node)}
	}
}

func (e *emitter) emitBinaryOp(n *ast.BinaryOp) error {
	if err := e.emitNode(n.Right); err != nil {
		return err
	}
	if err := e.emitNode(n.Left); err != nil {
		return err
	}
	var op bytecode.Op
	switch n.Op {
	case ast.OpAdd:
		op = bytecode.BINARY_ADD
	case ast.OpSub:
		op = bytecode.BINARY_SUB
	case ast.OpMul:
		op = bytecode.BINARY_MUL
	case ast.OpDiv:
		op = bytecode.BINARY_DIV
	default:
		return &CompileError{Line: n.LineNo(), Detail: fmt.Sprintf("unknown arithmetic operator %q", n.Op)}
	}
	e.emit(op, nil, n.LineNo())
	return nil
}

func (e *emitter) emitBracketRead(n *ast.Bracket) error {
	if err := e.emitNode(n.Right); err != nil {
		return err
	}
	if err := e.emitNode(n.Left); err != nil {
		return err
	}
	e.emit(bytecode.GET_DOT, nil, n.LineNo())
	return nil
}

func (e *emitter) emitSet(n *ast.Set) error {
	e.lineNo(n.LineNo())
	if err := e.emitNode(n.Right); err != nil {
		return err
	}
	switch target := n.Left.(type) {
	case *ast.Bracket:
		if err := e.emitNode(target.Right); err != nil {
			return err
		}
		if err := e.emitNode(target.Left); err != nil {
			return err
		}
		e.emit(bytecode.SET_DOT, nil, n.LineNo())
	case *ast.Word:
		e.emit(bytecode.STORE, target.Name, n.LineNo())
	default:
		return &CompileError{Line: n.LineNo(), Detail: fmt.Sprintf("Set target %T is neither a variable nor a pixel reference", n.Left)}
	}
	return nil
}

// emitCommand emits a call site: arguments in reverse order so the first
// argument lands on top of the stack, the callee name, the call itself,
// and a POP_TOPX 1 that discards the always-present return value.
func (e *emitter) emitCommand(n *ast.Command) error {
	e.lineNo(n.LineNo())
	for i := len(n.Args) - 1; i >= 0; i-- {
		if err := e.emitNode(n.Args[i]); err != nil {
			return err
		}
	}
	e.emit(bytecode.LOAD_STRING, n.Name, n.LineNo())
	e.emit(bytecode.COMMAND, len(n.Args), n.LineNo())
	e.emit(bytecode.POP_TOPX, 1, n.LineNo())
	return nil
}

// emitCommandDefinition emits the formal names in reverse order (so the
// first formal binds to the first argument popped when a frame is built),
// then the defining name, entry label, and a DEFINE_COMMAND registering
// it, followed by a JUMP around the body so control falls through to
// `after` on definition and only enters the body through a COMMAND call.
func (e *emitter) emitCommandDefinition(n *ast.CommandDefinition) error {
	e.lineNo(n.LineNo())
	for i := len(n.Formals) - 1; i >= 0; i-- {
		e.emit(bytecode.LOAD_STRING, n.Formals[i].Name, n.LineNo())
	}
	e.emit(bytecode.LOAD_STRING, n.Name.Name, n.LineNo())

	entry := e.label("command_entry")
	after := e.label("command_after")

	e.emit(bytecode.LOAD_INTEGER, entry, n.LineNo())
	e.emit(bytecode.DEFINE_COMMAND, len(n.Formals), n.LineNo())
	e.emit(bytecode.JUMP, after, n.LineNo())

	e.bind(entry)
	if err := e.emitBlock(n.Body); err != nil {
		return err
	}
	e.emit(bytecode.LOAD_INTEGER, 0, n.LineNo())
	e.emit(bytecode.RETURN, nil, n.LineNo())

	e.bind(after)
	return nil
}

// emitRepeat emits an inclusive, auto-directional counted loop. The step
// is computed once per iteration from a COMPARE_SMALLER test rather than
// precomputed, so the loop works whether start <= end or start > end.
func (e *emitter) emitRepeat(n *ast.Repeat) error {
	e.lineNo(n.LineNo())
	if err := e.emitNode(n.End); err != nil {
		return err
	}
	if err := e.emitNode(n.Start); err != nil {
		return err
	}

	bodyEntry := e.label("repeat_body")
	repeatEnd := e.label("repeat_end")
	decSetup := e.label("repeat_dec")
	step := e.label("repeat_step")

	e.bind(bodyEntry)
	e.emit(bytecode.DUP_TOPX, 1, n.LineNo())
	e.emit(bytecode.STORE, n.Var.Name, n.LineNo())
	if err := e.emitBlock(n.Body); err != nil {
		return err
	}
	e.emit(bytecode.DUP_TOPX, 2, n.LineNo())
	e.emit(bytecode.COMPARE_SAME, nil, n.LineNo())
	e.emit(bytecode.POP_JUMP_IF_TRUE, repeatEnd, n.LineNo())

	e.emit(bytecode.DUP_TOPX, 2, n.LineNo())
	e.emit(bytecode.COMPARE_SMALLER, nil, n.LineNo())
	e.emit(bytecode.POP_JUMP_IF_FALSE, decSetup, n.LineNo())
	e.emit(bytecode.LOAD_INTEGER, 1, n.LineNo())
	e.emit(bytecode.JUMP, step, n.LineNo())

	e.bind(decSetup)
	e.emit(bytecode.LOAD_INTEGER, -1, n.LineNo())

	e.bind(step)
	e.emit(bytecode.BINARY_ADD, nil, n.LineNo())
	e.emit(bytecode.JUMP, bodyEntry, n.LineNo())

	e.bind(repeatEnd)
	e.emit(bytecode.POP_TOPX, 2, n.LineNo())
	return nil
}

var questionOps = map[string]bytecode.Op{
	ast.OpSame:       bytecode.COMPARE_SAME,
	ast.OpNotSame:    bytecode.COMPARE_NSAME,
	ast.OpSmaller:    bytecode.COMPARE_SMALLER,
	ast.OpNotSmaller: bytecode.COMPARE_NSMALLER,
}

func (e *emitter) emitQuestion(n *ast.Question) error {
	e.lineNo(n.LineNo())
	if err := e.emitNode(n.Right); err != nil {
		return err
	}
	if err := e.emitNode(n.Left); err != nil {
		return err
	}
	op, ok := questionOps[n.Op]
	if !ok {
		return &CompileError{Line: n.LineNo(), Detail: fmt.Sprintf("unknown question operator %q", n.Op)}
	}
	e.emit(op, nil, n.LineNo())

	after := e.label("question_after")
	e.emit(bytecode.POP_JUMP_IF_FALSE, after, n.LineNo())
	if err := e.emitBlock(n.Body); err != nil {
		return err
	}
	e.bind(after)
	return nil
}

// emitLoad resolves a Load statement at compile time: the referenced file
// is read, tokenized, parsed, and compiled in module mode, and its raw,
// still-labelled instructions are spliced in directly, to be assembled
// together with the including program's. This keeps
// LOAD_CODE out of the runtime instruction set entirely - there is no
// dispatch-loop case for it because nothing ever emits it.
func (e *emitter) emitLoad(n *ast.Load) error {
	e.lineNo(n.LineNo())
	if e.reader == nil {
		return &LoadError{Path: n.Path, Line: n.LineNo(), Detail: "no file reader configured"}
	}
	full := n.Path
	if !filepath.IsAbs(full) {
		full = filepath.Join(e.baseDir, n.Path)
	}
	src, err := e.reader.ReadFile(full)
	if err != nil {
		return &LoadError{Path: n.Path, Line: n.LineNo(), Detail: err.Error()}
	}
	toks, err := lexer.Scan(string(src))
	if err != nil {
		return &LoadError{Path: n.Path, Line: n.LineNo(), Detail: err.Error()}
	}
	prog, err := parser.Parse(toks)
	if err != nil {
		return &LoadError{Path: n.Path, Line: n.LineNo(), Detail: err.Error()}
	}

	sub := &emitter{labelSeq: e.labelSeq, reader: e.reader, baseDir: filepath.Dir(full), module: true}
	if err := sub.emitBlock(prog); err != nil {
		return &LoadError{Path: n.Path, Line: n.LineNo(), Detail: err.Error()}
	}
	e.instructions = append(e.instructions, sub.instructions...)
	return nil
}
