package lexer

import (
	"minic/internal/token"
	"testing"
)

func expectKinds(t *testing.T, source string, expected []token.Kind) []token.Token {
	t.Helper()
	l := New(source, "test.c")
	tokens, diags := l.Tokenize()
	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s (%q)", i, exp, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
	return tokens
}

func TestTokenizeSimple(t *testing.T) {
	expectKinds(t, `int x = 1 + 2;`, []token.Kind{
		token.KW_INT, token.IDENT, token.ASSIGN,
		token.NUMBER, token.PLUS, token.NUMBER, token.SEMICOLON, token.EOF,
	})
}

func TestTokenizeKeywords(t *testing.T) {
	expectKinds(t, `int if else return integer`, []token.Kind{
		token.KW_INT, token.KW_IF, token.KW_ELSE, token.KW_RETURN, token.IDENT, token.EOF,
	})
}

func TestTokenizePunctuation(t *testing.T) {
	expectKinds(t, `( ) { } ; = + - * /`, []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.SEMICOLON,
		token.ASSIGN, token.PLUS, token.MINUS, token.STAR, token.SLASH, token.EOF,
	})
}

func TestTokenSpans(t *testing.T) {
	tokens := expectKinds(t, "(5 + 2) * 31", []token.Kind{
		token.LPAREN, token.NUMBER, token.PLUS, token.NUMBER, token.RPAREN,
		token.STAR, token.NUMBER, token.EOF,
	})
	num := tokens[6]
	if num.Lexeme != "31" {
		t.Errorf("expected lexeme 31, got %q", num.Lexeme)
	}
	if num.Span.Start.Offset != 10 || num.Span.End.Offset != 12 {
		t.Errorf("expected span 10..12, got %d..%d", num.Span.Start.Offset, num.Span.End.Offset)
	}
}

func TestLineAndColumn(t *testing.T) {
	tokens := expectKinds(t, "a;\n  // comment\n  bc;", []token.Kind{
		token.IDENT, token.SEMICOLON, token.IDENT, token.SEMICOLON, token.EOF,
	})
	bc := tokens[2]
	if bc.Span.Start.Line != 3 || bc.Span.Start.Column != 3 {
		t.Errorf("expected 3:3, got %s", bc.Span.Start)
	}
}

func TestIllegalCharacter(t *testing.T) {
	l := New("a $ b", "test.c")
	tokens, diags := l.Tokenize()
	if len(diags) != 1 || diags[0].Code != "E1001" {
		t.Fatalf("expected one E1001 diagnostic, got %v", diags)
	}
	if tokens[1].Kind != token.ILLEGAL {
		t.Errorf("expected ILLEGAL, got %s", tokens[1].Kind)
	}
}

func TestNumberOutOfRange(t *testing.T) {
	l := New("99999999999999999999", "test.c")
	_, diags := l.Tokenize()
	if len(diags) != 1 || diags[0].Code != "E1002" {
		t.Fatalf("expected one E1002 diagnostic, got %v", diags)
	}
}

func TestEmptySource(t *testing.T) {
	expectKinds(t, "  \n\t", []token.Kind{token.EOF})
}
