package lexer

import (
	"testing"

	"github.com/Richard7412/dbn-3/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func assertKinds(t *testing.T, got []token.Token, want []token.Kind) {
	t.Helper()
	gk := kinds(got)
	if len(gk) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(gk), gk, len(want), want)
	}
	for i := range want {
		if gk[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, gk[i], want[i])
		}
	}
}

func TestScanSetStatement(t *testing.T) {
	toks, err := Scan("Set A 5\n")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	assertKinds(t, toks, []token.Kind{
		token.SET, token.WORD, token.NUMBER, token.NEWLINE, token.NEWLINE,
	})
	if toks[1].Value != "A" {
		t.Errorf("word value = %q, want A", toks[1].Value)
	}
	if toks[2].Value != "5" {
		t.Errorf("number value = %q, want 5", toks[2].Value)
	}
}

func TestScanQuestionToken(t *testing.T) {
	toks, err := Scan("Same? A B {\n}\n")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if toks[0].Kind != token.QUESTION || toks[0].Value != token.Same {
		t.Fatalf("got %+v, want QUESTION Same", toks[0])
	}
}

func TestScanBracketsAndOperators(t *testing.T) {
	toks, err := Scan("Set [1 2] (3 + 4)\n")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	assertKinds(t, toks, []token.Kind{
		token.SET, token.OPENBRACKET, token.NUMBER, token.NUMBER, token.CLOSEBRACKET,
		token.OPENPAREN, token.NUMBER, token.OPERATOR, token.NUMBER, token.CLOSEPAREN,
		token.NEWLINE, token.NEWLINE,
	})
}

func TestScanCommentsAndWhitespaceDiscarded(t *testing.T) {
	toks, err := Scan("// a comment\nSet  A   1\n")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	assertKinds(t, toks, []token.Kind{
		token.NEWLINE, token.SET, token.WORD, token.NUMBER, token.NEWLINE, token.NEWLINE,
	})
}

func TestScanLoadPath(t *testing.T) {
	toks, err := Scan("Load lib/shapes.dbn\n")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	assertKinds(t, toks, []token.Kind{token.LOAD, token.PATH, token.NEWLINE, token.NEWLINE})
	if toks[1].Value != "lib/shapes.dbn" {
		t.Errorf("path value = %q, want lib/shapes.dbn", toks[1].Value)
	}
}

func TestScanKeywordPrefixWins(t *testing.T) {
	// "Set" is registered ahead of WORD, so it wins even as a prefix of a
	// longer identifier - a deliberately preserved quirk of the ordered
	// rule table.
	toks, err := Scan("SetFoo\n")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	assertKinds(t, toks, []token.Kind{token.SET, token.WORD, token.NEWLINE, token.NEWLINE})
}

func TestScanUnexpectedCharacter(t *testing.T) {
	_, err := Scan("Set A @\n")
	if err == nil {
		t.Fatal("expected a LexError for '@'")
	}
	lexErr, ok := err.(*LexError)
	if !ok {
		t.Fatalf("got error of type %T, want *LexError", err)
	}
	if lexErr.Line != 1 {
		t.Errorf("line = %d, want 1", lexErr.Line)
	}
}

func TestScanLineAndColumnTracking(t *testing.T) {
	toks, err := Scan("Set A 1\nSet B 2\n")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	// second "Set" should be on line 2, column 1 (the column resets at
	// every newline)
	var sawLineTwo bool
	for _, tok := range toks {
		if tok.Kind == token.SET && tok.Line == 2 && tok.Column == 1 {
			sawLineTwo = true
		}
	}
	if !sawLineTwo {
		t.Errorf("expected a SET token at line 2, column 1, got %v", toks)
	}
}
