// Package token defines the token types produced by the lexer.
package token

import (
	"fmt"
	"minic/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	// Special tokens
	ILLEGAL Kind = iota
	EOF

	// Literals
	NUMBER // integer literals: 123
	IDENT  // identifiers: x, foo, myVar

	// Operators
	ASSIGN // =
	PLUS   // +
	MINUS  // -
	STAR   // *
	SLASH  // /

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	SEMICOLON // ;

	// Keywords
	KW_INT
	KW_IF
	KW_ELSE
	KW_RETURN
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	NUMBER: "NUMBER",
	IDENT:  "IDENT",

	ASSIGN: "=",
	PLUS:   "+",
	MINUS:  "-",
	STAR:   "*",
	SLASH:  "/",

	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	SEMICOLON: ";",

	KW_INT:    "int",
	KW_IF:     "if",
	KW_ELSE:   "else",
	KW_RETURN: "return",
}

// String returns the human-readable name for a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword returns true if the kind is a keyword.
func (k Kind) IsKeyword() bool {
	return k >= KW_INT && k <= KW_RETURN
}

// IsOperator returns true for the arithmetic and assignment operators.
func (k Kind) IsOperator() bool {
	return k >= ASSIGN && k <= SLASH
}

var keywords = map[string]Kind{
	"int":    KW_INT,
	"if":     KW_IF,
	"else":   KW_ELSE,
	"return": KW_RETURN,
}

// LookupIdent returns the keyword Kind for ident, or IDENT if it is not a keyword.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENT
}

// Token represents a lexical token with its kind, text, and source location.
type Token struct {
	Kind   Kind      `json:"kind"`
	Lexeme string    `json:"lexeme"`
	Span   span.Span `json:"span"`
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Span.Start)
}
