// Package lexer implements the lexical analysis (tokenization) for minic.
package lexer

import (
	"fmt"
	"minic/internal/diag"
	"minic/internal/span"
	"minic/internal/token"
	"strconv"
)

// Lexer tokenizes source code into a sequence of tokens.
type Lexer struct {
	source   string
	filename string

	pos  int // current read position in source
	line int // current line (1-based)
	col  int // current column (1-based)

	diags []diag.Diagnostic
}

// New creates a new Lexer for the given source text.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

// Tokenize scans the entire source and returns all tokens and diagnostics.
// The returned slice always ends with a single EOF token.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	var tokens []token.Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, l.diags
}

// ---- internal helpers ----

// peek returns the current character without advancing, or 0 if at end.
func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

// peekNext returns the character after current, or 0 if at end.
func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

// advance consumes the current character and returns it.
func (l *Lexer) advance() byte {
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) curPos() span.Position {
	return span.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: l.curPos()}
}

// skipTrivia skips whitespace (newlines included) and // comments.
func (l *Lexer) skipTrivia() {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && l.peekNext() == '/':
			for l.pos < len(l.source) && l.source[l.pos] != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) addError(code string, s span.Span, msg string) {
	l.diags = append(l.diags, diag.Errorf(code, s, "%s", msg))
}

// ---- token reading ----

func (l *Lexer) nextToken() token.Token {
	l.skipTrivia()

	if l.pos >= len(l.source) {
		return token.Token{Kind: token.EOF, Lexeme: "", Span: l.makeSpan(l.curPos())}
	}

	start := l.curPos()
	ch := l.peek()

	if isDigit(ch) {
		return l.readNumber(start)
	}
	if isIdentStart(ch) {
		return l.readIdentifier(start)
	}
	return l.readPunct(start)
}

// readNumber reads a decimal integer literal.
func (l *Lexer) readNumber(start span.Position) token.Token {
	numStart := l.pos
	for l.pos < len(l.source) && isDigit(l.peek()) {
		l.advance()
	}
	lexeme := l.source[numStart:l.pos]
	if _, err := strconv.ParseInt(lexeme, 10, 64); err != nil {
		l.addError("E1002", l.makeSpan(start), fmt.Sprintf("integer literal out of range: %s", lexeme))
	}
	return token.Token{Kind: token.NUMBER, Lexeme: lexeme, Span: l.makeSpan(start)}
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier(start span.Position) token.Token {
	identStart := l.pos
	for l.pos < len(l.source) && isIdentPart(l.peek()) {
		l.advance()
	}
	lexeme := l.source[identStart:l.pos]
	return token.Token{Kind: token.LookupIdent(lexeme), Lexeme: lexeme, Span: l.makeSpan(start)}
}

var punct = map[byte]token.Kind{
	'(': token.LPAREN,
	')': token.RPAREN,
	'{': token.LBRACE,
	'}': token.RBRACE,
	';': token.SEMICOLON,
	'=': token.ASSIGN,
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.STAR,
	'/': token.SLASH,
}

// readPunct reads an operator or delimiter token.
func (l *Lexer) readPunct(start span.Position) token.Token {
	ch := l.advance()
	if kind, ok := punct[ch]; ok {
		return token.Token{Kind: kind, Lexeme: string(ch), Span: l.makeSpan(start)}
	}
	l.addError("E1001", l.makeSpan(start), fmt.Sprintf("unexpected character: '%c'", ch))
	return token.Token{Kind: token.ILLEGAL, Lexeme: string(ch), Span: l.makeSpan(start)}
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
