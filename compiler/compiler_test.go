package compiler

import (
	"fmt"
	"testing"

	"github.com/Richard7412/dbn-3/bytecode"
	"github.com/Richard7412/dbn-3/lexer"
	"github.com/Richard7412/dbn-3/parser"
)

type mapReader map[string][]byte

func (m mapReader) ReadFile(path string) ([]byte, error) {
	src, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return src, nil
}

func compile(t *testing.T, src string) bytecode.Program {
	t.Helper()
	toks, err := lexer.Scan(src)
	if err != nil {
		t.Fatalf("Scan(%q): %v", src, err)
	}
	block, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	prog, err := Compile(block, false, ".", nil)
	if err != nil {
		t.Fatalf("Compile(%q): %v", src, err)
	}
	return prog
}

func ops(prog bytecode.Program) []bytecode.Op {
	out := make([]bytecode.Op, len(prog))
	for i, in := range prog {
		out[i] = in.Op
	}
	return out
}

func assertOps(t *testing.T, prog bytecode.Program, want []bytecode.Op) {
	t.Helper()
	got := ops(prog)
	if len(got) != len(want) {
		t.Fatalf("got %d ops %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("op %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCompileSetWord(t *testing.T) {
	prog := compile(t, "Set A 5\n")
	assertOps(t, prog, []bytecode.Op{
		bytecode.SET_LINE_NO, bytecode.LOAD_INTEGER, bytecode.STORE, bytecode.END,
	})
	if prog[2].Arg != "A" {
		t.Errorf("STORE arg = %v, want A", prog[2].Arg)
	}
}

func TestCompileSetPixel(t *testing.T) {
	prog := compile(t, "Set [1 2] 50\n")
	assertOps(t, prog, []bytecode.Op{
		bytecode.SET_LINE_NO, bytecode.LOAD_INTEGER,
		bytecode.LOAD_INTEGER, bytecode.LOAD_INTEGER, bytecode.SET_DOT, bytecode.END,
	})
}

func TestCompileCommandInvocationDiscardsReturn(t *testing.T) {
	prog := compile(t, "Line 0 0 100 100\n")
	assertOps(t, prog, []bytecode.Op{
		bytecode.SET_LINE_NO,
		bytecode.LOAD_INTEGER, bytecode.LOAD_INTEGER, bytecode.LOAD_INTEGER, bytecode.LOAD_INTEGER,
		bytecode.LOAD_STRING, bytecode.COMMAND, bytecode.POP_TOPX,
		bytecode.END,
	})
	if prog[6].Arg != 4 {
		t.Errorf("COMMAND argc = %v, want 4", prog[6].Arg)
	}
}

func TestCompileCommandDefinitionJumpsOverBody(t *testing.T) {
	prog := compile(t, "Command Square Size {\nLine 0 0 Size Size\n}\n")
	// JUMP over the body must resolve to an index past the body.
	var jumpIdx, returnIdx int = -1, -1
	for i, in := range prog {
		if in.Op == bytecode.JUMP {
			jumpIdx = i
		}
		if in.Op == bytecode.RETURN {
			returnIdx = i
		}
	}
	if jumpIdx == -1 || returnIdx == -1 {
		t.Fatalf("expected both JUMP and RETURN, got %v", ops(prog))
	}
	target, ok := prog[jumpIdx].Arg.(int)
	if !ok {
		t.Fatalf("JUMP arg = %#v, want resolved int", prog[jumpIdx].Arg)
	}
	if target <= returnIdx {
		t.Errorf("JUMP target %d should land after RETURN at %d", target, returnIdx)
	}
}

func TestCompileRepeatLoopsJumpWithinBounds(t *testing.T) {
	prog := compile(t, "Repeat I 0 10 {\nLine 0 0 I I\n}\n")
	for i, in := range prog {
		if !in.Op.IsJump() {
			continue
		}
		target, ok := in.Arg.(int)
		if !ok || target < 0 || target >= len(prog) {
			t.Errorf("instruction %d: jump target %#v out of [0,%d)", i, in.Arg, len(prog))
		}
	}
}

func TestCompileQuestionEmitsMatchingComparator(t *testing.T) {
	prog := compile(t, "Smaller? A B {\nPaper 0\n}\n")
	found := false
	for _, in := range prog {
		if in.Op == bytecode.COMPARE_SMALLER {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a COMPARE_SMALLER in %v", ops(prog))
	}
}

func TestCompileArithmeticEvaluatesRightBeforeLeft(t *testing.T) {
	prog := compile(t, "Set A (1 + 2)\n")
	// right (2) then left (1), then BINARY_ADD, matching the stack-order
	// convention used for every binary construct in this compiler.
	assertOps(t, prog, []bytecode.Op{
		bytecode.SET_LINE_NO, bytecode.LOAD_INTEGER, bytecode.LOAD_INTEGER, bytecode.BINARY_ADD, bytecode.STORE, bytecode.END,
	})
	if prog[1].Arg != 2 || prog[2].Arg != 1 {
		t.Errorf("operand order = %v, %v; want 2 then 1", prog[1].Arg, prog[2].Arg)
	}
}

func TestCompileLoadSplicesModuleInline(t *testing.T) {
	toks, err := lexer.Scan("Load lib.dbn\nPaper 0\n")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	block, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	reader := mapReader{"lib.dbn": []byte("Pen 50\n")}
	prog, err := Compile(block, false, ".", reader)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var sawPen, sawPaper bool
	for i, in := range prog {
		if in.Op == bytecode.LOAD_STRING && in.Arg == "Pen" {
			sawPen = true
		}
		if in.Op == bytecode.LOAD_STRING && in.Arg == "Paper" {
			sawPaper = true
		}
		_ = i
	}
	if !sawPen {
		t.Error("expected the loaded module's Pen call to be spliced in")
	}
	if !sawPaper {
		t.Error("expected the including program's Paper call to still be present")
	}
}

func TestCompileLoadMissingFileIsLoadError(t *testing.T) {
	toks, _ := lexer.Scan("Load missing.dbn\n")
	block, _ := parser.Parse(toks)
	_, err := Compile(block, false, ".", mapReader{})
	if _, ok := err.(*LoadError); !ok {
		t.Fatalf("got error of type %T, want *LoadError", err)
	}
}

func TestAssembleUnresolvedLabelFails(t *testing.T) {
	raw := []bytecode.Instruction{
		bytecode.Inst(bytecode.JUMP, bytecode.Label{Prefix: "ghost", Index: 0}, 1),
	}
	_, err := Assemble(raw)
	if _, ok := err.(*AssembleError); !ok {
		t.Fatalf("got error of type %T, want *AssembleError", err)
	}
}
