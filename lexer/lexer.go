// Package lexer turns DBN source text into a token stream.
//
// The scanner is configured with an ordered list of (kind, pattern) rules,
// mirroring the table in the language specification: at every position it
// tries each rule in registration order and takes the first one that
// matches. Because Go's regexp package resolves alternation with the same
// leftmost-first semantics a backtracking engine would, registering a
// keyword rule ahead of WORD is exactly what makes "Set" win over a
// generic identifier match - the same trick the table relies on.
package lexer

import (
	"fmt"
	"regexp"

	"github.com/Richard7412/dbn-3/token"
)

// LexError reports a character the configured rules could not classify.
type LexError struct {
	Line, Column int
	Detail       string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.Line, e.Column, e.Detail)
}

// rule pairs a token kind with an anchored pattern. When the pattern
// contains a capture group, group 1 becomes the token's Value; otherwise
// Value is empty.
type rule struct {
	kind Kind
	re   *regexp.Regexp
}

type Kind = token.Kind

// rules is tried top to bottom for every position in the source, exactly
// as described in the tokenizer's priority table. The catch-all PATH rule
// is tried out of band - see scanOne - because Go's RE2 engine has no
// lookbehind to express "only directly after Load".
var rules = []rule{
	{token.COMMENT, regexp.MustCompile(`^//[^\n]*`)},
	{token.WHITESPACE, regexp.MustCompile(`^[^\S\n]+`)},
	{token.OPERATOR, regexp.MustCompile(`^([*\-/+])`)},
	{token.OPENPAREN, regexp.MustCompile(`^(\()`)},
	{token.OPENBRACKET, regexp.MustCompile(`^(\[)`)},
	{token.OPENBRACE, regexp.MustCompile(`^({)`)},
	{token.CLOSEPAREN, regexp.MustCompile(`^(\))`)},
	{token.CLOSEBRACKET, regexp.MustCompile(`^(\])`)},
	{token.CLOSEBRACE, regexp.MustCompile(`^(})`)},
	{token.SET, regexp.MustCompile(`^(Set)`)},
	{token.REPEAT, regexp.MustCompile(`^(Repeat)`)},
	{token.QUESTION, regexp.MustCompile(`^(Same|NotSame|Smaller|NotSmaller)\?`)},
	{token.COMMAND, regexp.MustCompile(`^(Command)`)},
	{token.LOAD, regexp.MustCompile(`^(Load)`)},
	{token.WORD, regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)`)},
	{token.NUMBER, regexp.MustCompile(`^(\d+)`)},
	{token.NEWLINE, regexp.MustCompile(`^\n`)},
}

// pathRule is only attempted immediately after a LOAD token, standing in
// for the original's `(?<=Load)\s+(...)` lookbehind.
var pathRule = regexp.MustCompile(`^[^\S\n]+([\w.\\/-]+)`)

// Lexer scans a DBN source string into tokens.
type Lexer struct {
	src    string
	pos    int
	line   int
	lineAt int // byte offset where the current line began
	after  token.Kind
}

// New creates a Lexer over the given source text.
func New(src string) *Lexer {
	return &Lexer{src: src, pos: 0, line: 1, lineAt: 0}
}

func (l *Lexer) column() int {
	return l.pos - l.lineAt + 1
}

// Scan runs the lexer to completion, returning the filtered token stream
// (COMMENT and WHITESPACE discarded) with a synthetic trailing NEWLINE, or
// the first LexError encountered.
func Scan(src string) ([]token.Token, error) {
	l := New(src)
	var out []token.Token
	for l.pos < len(l.src) {
		tok, err := l.scanOne()
		if err != nil {
			return out, err
		}
		if tok.Kind == token.NEWLINE {
			l.line++
			l.lineAt = l.pos
		}
		if tok.Kind == token.WHITESPACE || tok.Kind == token.COMMENT {
			l.after = tok.Kind
			continue
		}
		out = append(out, tok)
		l.after = tok.Kind
	}
	out = append(out, token.New(token.NEWLINE, "\n", l.line, l.column(), "\n"))
	return out, nil
}

// scanOne classifies and consumes the next lexeme starting at l.pos.
func (l *Lexer) scanOne() (token.Token, error) {
	remaining := l.src[l.pos:]
	line, col := l.line, l.column()

	if l.after == token.LOAD {
		if m := pathRule.FindStringSubmatchIndex(remaining); m != nil {
			raw := remaining[m[0]:m[1]]
			value := remaining[m[2]:m[3]]
			l.pos += len(raw)
			return token.New(token.PATH, value, line, col, raw), nil
		}
	}

	for _, r := range rules {
		m := r.re.FindStringSubmatchIndex(remaining)
		if m == nil {
			continue
		}
		raw := remaining[m[0]:m[1]]
		value := ""
		if len(m) >= 4 && m[2] != -1 {
			value = remaining[m[2]:m[3]]
		}
		l.pos += len(raw)
		return token.New(r.kind, value, line, col, raw), nil
	}

	ch := remaining[:1]
	return token.Token{}, &LexError{Line: line, Column: col, Detail: fmt.Sprintf("unexpected character %q", ch)}
}
