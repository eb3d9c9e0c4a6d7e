package compiler

import "github.com/Richard7412/dbn-3/bytecode"

// Assemble resolves a raw, label-bearing instruction sequence into one
// the interpreter can run directly: every label sentinel is dropped and
// every jump argument is rewritten from a symbolic Label to the absolute
// index it resolved to.
//
// The pass runs in two sweeps rather than one, because a jump can target
// a label bound later in the stream - the binding for every label must be
// known before any jump argument can be rewritten.
func Assemble(raw []bytecode.Instruction) (bytecode.Program, error) {
	bindings := make(map[bytecode.Label]int)
	real := make([]bytecode.Instruction, 0, len(raw))

	for _, in := range raw {
		if !in.Real() {
			bindings[*in.LabelMarker] = len(real)
			continue
		}
		real = append(real, in)
	}

	for i, in := range real {
		label, ok := in.Arg.(bytecode.Label)
		if !ok {
			continue
		}
		target, bound := bindings[label]
		if !bound {
			return nil, &AssembleError{Label: label.String(), Detail: "referenced but never bound"}
		}
		real[i].Arg = target
	}

	return bytecode.Program(real), nil
}
