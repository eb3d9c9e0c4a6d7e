package parser

import (
	"github.com/Richard7412/dbn-3/ast"
	"github.com/Richard7412/dbn-3/token"
)

// parseSet parses `Set Arg Arg NEWLINE`. The first Arg must resolve to a
// variable (*ast.Word) or a pixel reference (*ast.Bracket); anything else
// is not a legal assignment target.
func (p *Parser) parseSet() (ast.Node, error) {
	setTok := p.advance()
	var toks []token.Token
	toks = append(toks, setTok)

	left, err := p.parseArg()
	if err != nil {
		return nil, err
	}
	switch left.(type) {
	case *ast.Word, *ast.Bracket:
	default:
		return nil, &ParseError{Kind: BadSetTarget, Line: left.LineNo(), Column: setTok.Column, Detail: "Set's first argument must be a variable or a pixel reference"}
	}
	toks = append(toks, left.Span()...)

	right, err := p.parseArg()
	if err != nil {
		return nil, err
	}
	toks = append(toks, right.Span()...)

	nl, err := p.expect(token.NEWLINE, "expected a newline after Set")
	if err != nil {
		return nil, err
	}
	toks = append(toks, nl)

	return ast.NewSet(setTok.Line, toks, left, right), nil
}

// parseRepeat parses `Repeat Word Arg Arg Block NEWLINE`.
func (p *Parser) parseRepeat() (ast.Node, error) {
	repeatTok := p.advance()
	var toks []token.Token
	toks = append(toks, repeatTok)

	wordTok, err := p.expect(token.WORD, "expected a variable name after Repeat")
	if err != nil {
		return nil, err
	}
	toks = append(toks, wordTok)
	v := ast.NewWord(wordTok.Line, []token.Token{wordTok}, wordTok.Value)

	start, err := p.parseArg()
	if err != nil {
		return nil, err
	}
	toks = append(toks, start.Span()...)

	end, err := p.parseArg()
	if err != nil {
		return nil, err
	}
	toks = append(toks, end.Span()...)

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	toks = append(toks, body.Span()...)

	nl, err := p.expect(token.NEWLINE, "expected a newline after Repeat's block")
	if err != nil {
		return nil, err
	}
	toks = append(toks, nl)

	return ast.NewRepeat(repeatTok.Line, toks, v, start, end, body), nil
}

// parseQuestion parses `QUESTION Arg Arg Block NEWLINE`, where QUESTION is
// one of Same?, NotSame?, Smaller?, NotSmaller?.
func (p *Parser) parseQuestion() (ast.Node, error) {
	qTok := p.advance()
	var toks []token.Token
	toks = append(toks, qTok)

	left, err := p.parseArg()
	if err != nil {
		return nil, err
	}
	toks = append(toks, left.Span()...)

	right, err := p.parseArg()
	if err != nil {
		return nil, err
	}
	toks = append(toks, right.Span()...)

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	toks = append(toks, body.Span()...)

	nl, err := p.expect(token.NEWLINE, "expected a newline after the question's block")
	if err != nil {
		return nil, err
	}
	toks = append(toks, nl)

	return ast.NewQuestion(qTok.Line, toks, qTok.Value, left, right, body), nil
}

// parseCommand parses a command invocation: `WORD { Arg } NEWLINE`.
func (p *Parser) parseCommand() (ast.Node, error) {
	nameTok := p.advance()
	var toks []token.Token
	toks = append(toks, nameTok)

	var args []ast.Node
	for p.peek().Kind != token.NEWLINE {
		if p.isFinished() {
			return nil, &ParseError{Kind: UnterminatedCommand, Line: nameTok.Line, Column: nameTok.Column, Detail: "command never reached a newline"}
		}
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		toks = append(toks, arg.Span()...)
	}
	nl := p.advance()
	toks = append(toks, nl)

	return ast.NewCommand(nameTok.Line, toks, nameTok.Value, args), nil
}

// parseCommandDefinition parses `Command Word { Word } Block`: a name
// followed by zero or more formal parameter names, then the body.
func (p *Parser) parseCommandDefinition() (ast.Node, error) {
	cmdTok := p.advance()
	var toks []token.Token
	toks = append(toks, cmdTok)

	nameTok, err := p.expect(token.WORD, "expected a name after Command")
	if err != nil {
		return nil, err
	}
	toks = append(toks, nameTok)
	name := ast.NewWord(nameTok.Line, []token.Token{nameTok}, nameTok.Value)

	var formals []*ast.Word
	for {
		tok := p.peek()
		switch tok.Kind {
		case token.WORD:
			p.advance()
			toks = append(toks, tok)
			formals = append(formals, ast.NewWord(tok.Line, []token.Token{tok}, tok.Value))
		case token.OPENBRACE, token.NEWLINE:
			goto body
		default:
			return nil, &ParseError{Kind: BadCommandDefinitionArg, Line: tok.Line, Column: tok.Column, Detail: "Command's parameter list may only contain names"}
		}
	}

body:
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	toks = append(toks, body.Span()...)

	return ast.NewCommandDefinition(cmdTok.Line, toks, name, formals, body), nil
}

// parseLoad parses `Load PATH NEWLINE`.
func (p *Parser) parseLoad() (ast.Node, error) {
	loadTok := p.advance()
	var toks []token.Token
	toks = append(toks, loadTok)

	pathTok, err := p.expect(token.PATH, "expected a file path after Load")
	if err != nil {
		return nil, err
	}
	toks = append(toks, pathTok)

	nl, err := p.expect(token.NEWLINE, "expected a newline after Load")
	if err != nil {
		return nil, err
	}
	toks = append(toks, nl)

	return ast.NewLoad(loadTok.Line, toks, pathTok.Value), nil
}
