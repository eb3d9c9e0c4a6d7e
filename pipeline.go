package main

import (
	"fmt"
	"path/filepath"

	"github.com/Richard7412/dbn-3/bytecode"
	"github.com/Richard7412/dbn-3/compiler"
	"github.com/Richard7412/dbn-3/lexer"
	"github.com/Richard7412/dbn-3/parser"
)

// compileFile runs the full tokenize/parse/compile/assemble pipeline over
// the source file at path, returning the assembled program ready to run.
func compileFile(path string, data []byte) (bytecode.Program, error) {
	toks, err := lexer.Scan(string(data))
	if err != nil {
		return nil, err
	}
	block, err := parser.Parse(toks)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(block, false, filepath.Dir(path), osFileReader{})
}

// disassemble renders a program in the listing format the compile
// subcommand writes: one instruction per line, `<index> (<op>, <arg>)`.
func disassemble(prog bytecode.Program) string {
	var out string
	for i, instr := range prog {
		out += fmt.Sprintf("%d (%s, %v)\n", i, instr.Op, instr.Arg)
	}
	return out
}
