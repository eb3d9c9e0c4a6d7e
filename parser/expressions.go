package parser

import (
	"strconv"

	"github.com/Richard7412/dbn-3/ast"
	"github.com/Richard7412/dbn-3/token"
)

// parseArg parses one value position: a number, a variable name, a
// bracketed pixel reference, or a parenthesized arithmetic expression.
func (p *Parser) parseArg() (ast.Node, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.NUMBER:
		p.advance()
		n, err := strconv.Atoi(tok.Value)
		if err != nil {
			return nil, &ParseError{Kind: UnexpectedToken, Line: tok.Line, Column: tok.Column, Detail: "malformed integer literal " + tok.Value}
		}
		return ast.NewNumber(tok.Line, []token.Token{tok}, n), nil
	case token.WORD:
		p.advance()
		return ast.NewWord(tok.Line, []token.Token{tok}, tok.Value), nil
	case token.OPENBRACKET:
		return p.parseBracket()
	case token.OPENPAREN:
		return p.parseArithmetic()
	default:
		return nil, &ParseError{Kind: UnexpectedToken, Line: tok.Line, Column: tok.Column, Detail: "expected a number, name, pixel reference, or arithmetic expression"}
	}
}

// parseBracket parses `[ Arg Arg ]`, a pixel reference used both as a Set
// target and as a value.
func (p *Parser) parseBracket() (ast.Node, error) {
	open := p.advance()
	var toks []token.Token
	toks = append(toks, open)

	if p.peek().Kind == token.CLOSEBRACKET {
		return nil, &ParseError{Kind: BadBracketArity, Line: open.Line, Column: open.Column, Detail: "a pixel reference needs exactly two coordinates"}
	}
	x, err := p.parseArg()
	if err != nil {
		return nil, err
	}
	toks = append(toks, x.Span()...)

	if p.peek().Kind == token.CLOSEBRACKET {
		return nil, &ParseError{Kind: BadBracketArity, Line: open.Line, Column: open.Column, Detail: "a pixel reference needs exactly two coordinates"}
	}
	y, err := p.parseArg()
	if err != nil {
		return nil, err
	}
	toks = append(toks, y.Span()...)

	closeTok, err := p.expect(token.CLOSEBRACKET, "expected ']' to close a pixel reference")
	if err != nil {
		if err.(*ParseError).Kind == UnexpectedToken {
			return nil, &ParseError{Kind: BadBracketArity, Line: open.Line, Column: open.Column, Detail: "a pixel reference needs exactly two coordinates"}
		}
		return nil, err
	}
	toks = append(toks, closeTok)

	return ast.NewBracket(open.Line, toks, x, y), nil
}

// parseArithmetic parses `( Arg { OPERATOR Arg } )`. Precedence is not
// expressed in the grammar; it is folded in afterward in two left-to-right
// passes, first over '*'/'/' and then over '+'/'-', exactly as the
// language's arithmetic is documented to behave.
func (p *Parser) parseArithmetic() (ast.Node, error) {
	open := p.advance()
	var toks []token.Token
	toks = append(toks, open)

	first, err := p.parseArg()
	if err != nil {
		return nil, err
	}
	toks = append(toks, first.Span()...)

	operands := []ast.Node{first}
	var ops []string

	for {
		tok := p.peek()
		if tok.Kind == token.CLOSEPAREN {
			break
		}
		if tok.Kind != token.OPERATOR {
			return nil, &ParseError{Kind: BadArithmetic, Line: tok.Line, Column: tok.Column, Detail: "expected an operator or ')' inside an arithmetic expression"}
		}
		p.advance()
		toks = append(toks, tok)
		ops = append(ops, tok.Value)

		operand, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		toks = append(toks, operand.Span()...)
		operands = append(operands, operand)
	}

	closeTok, err := p.expect(token.CLOSEPAREN, "expected ')' to close an arithmetic expression")
	if err != nil {
		return nil, err
	}
	toks = append(toks, closeTok)

	result, ok := foldArithmetic(open.Line, operands, ops)
	if !ok {
		return nil, &ParseError{Kind: BadArithmetic, Line: open.Line, Column: open.Column, Detail: "malformed arithmetic expression"}
	}
	return result, nil
}

// foldArithmetic reduces a flat operand/operator sequence to a single
// *ast.BinaryOp tree. It runs two left-to-right passes over the sequence:
// '*' and '/' fold first, then '+' and '-' fold over what remains. Both
// passes walk left to right, so "a - b + c" folds as (a - b) + c rather
// than a - (b + c).
func foldArithmetic(line int, operands []ast.Node, ops []string) (ast.Node, bool) {
	fold := func(match func(string) bool) {
		i := 0
		for i < len(ops) {
			if !match(ops[i]) {
				i++
				continue
			}
			combined := ast.NewBinaryOp(line, nil, ops[i], operands[i], operands[i+1])
			operands = append(operands[:i], append([]ast.Node{combined}, operands[i+2:]...)...)
			ops = append(ops[:i], ops[i+1:]...)
		}
	}
	fold(func(op string) bool { return op == ast.OpMul || op == ast.OpDiv })
	fold(func(op string) bool { return op == ast.OpAdd || op == ast.OpSub })

	if len(operands) != 1 || len(ops) != 0 {
		return nil, false
	}
	return operands[0], true
}
