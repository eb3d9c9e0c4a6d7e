// Package parser implements DBN's recursive-descent, LL(1) grammar: the
// single front token always determines which production runs next. The
// parser consumes tokens by advancing past the front of the stream -
// mirroring the original's "pop from the front of a sequence" discipline
// - rather than building a lookahead buffer.
package parser

import (
	"fmt"

	"github.com/Richard7412/dbn-3/ast"
	"github.com/Richard7412/dbn-3/token"
)

// Parser holds the token stream and the read position.
type Parser struct {
	tokens []token.Token
	pos    int
}

// New creates a Parser over an already-scanned token stream.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses a full DBN program into a *ast.Block whose children are
// top-level command definitions and statements.
func Parse(tokens []token.Token) (*ast.Block, error) {
	return New(tokens).ParseProgram()
}

func (p *Parser) isFinished() bool {
	return p.pos >= len(p.tokens)
}

func (p *Parser) peek() token.Token {
	if p.isFinished() {
		// Every token stream ends with a synthetic NEWLINE, so a
		// well-formed grammar never actually reaches past the end while
		// still expecting a token; this only guards against a caller bug.
		return token.Token{Kind: token.NEWLINE}
	}
	return p.tokens[p.pos]
}

// advance consumes and returns the current front token.
func (p *Parser) advance() token.Token {
	tok := p.peek()
	if !p.isFinished() {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(kind token.Kind, detail string) (token.Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, &ParseError{Kind: UnexpectedToken, Line: tok.Line, Column: tok.Column, Detail: detail}
	}
	return p.advance(), nil
}

// ParseProgram parses { CommandDefinition | BlockStatement } until the
// token stream is exhausted.
func (p *Parser) ParseProgram() (*ast.Block, error) {
	var toks []token.Token
	var nodes []ast.Node
	for !p.isFinished() {
		var (
			node ast.Node
			err  error
		)
		if p.peek().Kind == token.COMMAND {
			node, err = p.parseCommandDefinition()
		} else {
			node, err = p.parseBlockStatement()
		}
		if err != nil {
			return nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
			toks = append(toks, node.Span()...)
		}
	}
	return ast.NewBlock(1, toks, nodes), nil
}

// parseBlockStatement parses one statement that is legal inside a block
// body (or at top level): Set, Repeat, Question, a command invocation, or
// a stray blank line collapsed to nil.
func (p *Parser) parseBlockStatement() (ast.Node, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.SET:
		return p.parseSet()
	case token.REPEAT:
		return p.parseRepeat()
	case token.QUESTION:
		return p.parseQuestion()
	case token.WORD:
		return p.parseCommand()
	case token.LOAD:
		return p.parseLoad()
	case token.NEWLINE:
		p.advance()
		return nil, nil
	default:
		return nil, &ParseError{
			Kind: UnexpectedToken, Line: tok.Line, Column: tok.Column,
			Detail: fmt.Sprintf("don't know how to parse %s as a statement", tok.Kind),
		}
	}
}

// parseBlock parses `{ statements... }`, chomping any leading blank
// lines before the opening brace as the grammar allows.
func (p *Parser) parseBlock() (*ast.Block, error) {
	line := p.peek().Line
	var toks []token.Token

	for p.peek().Kind == token.NEWLINE {
		toks = append(toks, p.advance())
	}

	open, err := p.expect(token.OPENBRACE, "expected '{' to start a block")
	if err != nil {
		return nil, err
	}
	toks = append(toks, open)

	var children []ast.Node
	for {
		if p.isFinished() {
			return nil, &ParseError{Kind: UnterminatedBlock, Line: open.Line, Column: open.Column, Detail: "block never closed with '}'"}
		}
		if p.peek().Kind == token.CLOSEBRACE {
			closeTok := p.advance()
			toks = append(toks, closeTok)
			break
		}
		node, err := p.parseBlockStatement()
		if err != nil {
			return nil, err
		}
		if node != nil {
			children = append(children, node)
			toks = append(toks, node.Span()...)
		}
	}

	return ast.NewBlock(line, toks, children), nil
}
