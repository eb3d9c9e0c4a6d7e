// Package bytecode defines the instruction set the compiler emits and the
// interpreter executes.
//
// Instructions are a struct slice rather than the packed byte encoding a
// stack bytecode normally uses, because an Arg here can be an integer, a
// string (a variable or command name), or - before assembly - a Label
// sentinel; no fixed-width operand encoding represents all three. Op is a
// closed enum so the compiler's emitter and the interpreter's dispatch loop
// can both switch over it exhaustively instead of going through a
// hash-keyed handler table.
package bytecode

import "fmt"

// Op identifies one instruction kind.
type Op int

const (
	LOAD_INTEGER Op = iota
	LOAD
	LOAD_STRING
	STORE
	BINARY_ADD
	BINARY_SUB
	BINARY_MUL
	BINARY_DIV
	COMPARE_SAME
	COMPARE_NSAME
	COMPARE_SMALLER
	COMPARE_NSMALLER
	DUP_TOPX
	POP_TOPX
	JUMP
	POP_JUMP_IF_TRUE
	POP_JUMP_IF_FALSE
	GET_DOT
	SET_DOT
	COMMAND
	DEFINE_COMMAND
	RETURN
	SET_LINE_NO
	END
)

var names = map[Op]string{
	LOAD_INTEGER:      "LOAD_INTEGER",
	LOAD:              "LOAD",
	LOAD_STRING:       "LOAD_STRING",
	STORE:             "STORE",
	BINARY_ADD:        "BINARY_ADD",
	BINARY_SUB:        "BINARY_SUB",
	BINARY_MUL:        "BINARY_MUL",
	BINARY_DIV:        "BINARY_DIV",
	COMPARE_SAME:      "COMPARE_SAME",
	COMPARE_NSAME:     "COMPARE_NSAME",
	COMPARE_SMALLER:   "COMPARE_SMALLER",
	COMPARE_NSMALLER:  "COMPARE_NSMALLER",
	DUP_TOPX:          "DUP_TOPX",
	POP_TOPX:          "POP_TOPX",
	JUMP:              "JUMP",
	POP_JUMP_IF_TRUE:  "POP_JUMP_IF_TRUE",
	POP_JUMP_IF_FALSE: "POP_JUMP_IF_FALSE",
	GET_DOT:           "GET_DOT",
	SET_DOT:           "SET_DOT",
	COMMAND:           "COMMAND",
	DEFINE_COMMAND:    "DEFINE_COMMAND",
	RETURN:            "RETURN",
	SET_LINE_NO:       "SET_LINE_NO",
	END:               "END",
}

func (op Op) String() string {
	if name, ok := names[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// IsJump reports whether op carries a branch target as its Arg. The
// assembler does not consult it: it resolves every Label-typed Arg,
// including the LOAD_INTEGER that carries a command's entry point.
func (op Op) IsJump() bool {
	switch op {
	case JUMP, POP_JUMP_IF_TRUE, POP_JUMP_IF_FALSE:
		return true
	default:
		return false
	}
}

// Label is a symbolic jump target allocated by the compiler. It is
// unique within one compilation unit and is bound to exactly one position
// in the instruction stream before assembly resolves it away.
type Label struct {
	Prefix string
	Index  int
}

func (l Label) String() string {
	return fmt.Sprintf("%s_%d", l.Prefix, l.Index)
}

// marker is a sentinel instruction recording that Label binds to the
// index of the next real instruction. The assembler drops these from the
// final stream after recording the binding.
type marker struct {
	Label Label
}

// Instruction is one emitted operation. Arg is nil, an int, a string, or
// (pre-assembly) a Label; LabelMarker is set instead for label sentinels.
type Instruction struct {
	Op          Op
	Arg         any
	LabelMarker *Label
	Line        int
}

// Real reports whether this is an executable instruction rather than a
// label sentinel recorded only for the assembler's bookkeeping pass.
func (in Instruction) Real() bool {
	return in.LabelMarker == nil
}

func (in Instruction) String() string {
	if !in.Real() {
		return fmt.Sprintf("%s:", in.LabelMarker)
	}
	if in.Arg == nil {
		return in.Op.String()
	}
	return fmt.Sprintf("%s %v", in.Op, in.Arg)
}

// Mark builds a label sentinel instruction.
func Mark(l Label) Instruction {
	return Instruction{LabelMarker: &l}
}

// Inst builds a real instruction with the given op, optional arg, and
// current source line (0 when the emitter has none, as for the trailing
// END of a program).
func Inst(op Op, arg any, line int) Instruction {
	return Instruction{Op: op, Arg: arg, Line: line}
}

// Program is an assembled instruction stream, indexable directly by the
// interpreter's instruction pointer.
type Program []Instruction
