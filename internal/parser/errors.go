package parser

import (
	"errors"
	"fmt"
	"minic/internal/diag"
	"minic/internal/token"
)

// ErrorKind classifies a parse failure.
type ErrorKind int

const (
	UnexpectedToken ErrorKind = iota
	NotExpression
	NotOperator
	UnclosedOpenParen
	RedundantExpression
	MissingSemicolon
	EndOfInput
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrUnexpectedToken     = errors.New("unexpected token")
	ErrNotExpression       = errors.New("not an expression")
	ErrNotOperator         = errors.New("not an operator")
	ErrUnclosedOpenParen   = errors.New("unclosed open parenthesis")
	ErrRedundantExpression = errors.New("redundant expression")
	ErrMissingSemicolon    = errors.New("missing semicolon")
	ErrEndOfInput          = errors.New("unexpected end of input")
)

var kindInfo = [...]struct {
	sentinel error
	code     string
}{
	UnexpectedToken:     {ErrUnexpectedToken, "E2001"},
	NotExpression:       {ErrNotExpression, "E2002"},
	NotOperator:         {ErrNotOperator, "E2003"},
	UnclosedOpenParen:   {ErrUnclosedOpenParen, "E2004"},
	RedundantExpression: {ErrRedundantExpression, "E2005"},
	MissingSemicolon:    {ErrMissingSemicolon, "E2006"},
	EndOfInput:          {ErrEndOfInput, "E2007"},
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindInfo) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return kindInfo[k].sentinel.Error()
}

// Code returns the stable diagnostic code for the kind.
func (k ErrorKind) Code() string {
	if k < 0 || int(k) >= len(kindInfo) {
		return "E2000"
	}
	return kindInfo[k].code
}

// Error is the single error a failed parse produces.
// Token is the offending token; for UnclosedOpenParen it is the '(' that was never closed,
// for EndOfInput it is the EOF token.
type Error struct {
	Kind     ErrorKind
	Token    token.Token
	Expected string // for UnexpectedToken: what the grammar required, may be empty
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Token.Span.Start, e.message())
}

// Unwrap exposes the kind's sentinel so errors.Is(err, ErrEndOfInput) works.
func (e *Error) Unwrap() error {
	if e.Kind < 0 || int(e.Kind) >= len(kindInfo) {
		return nil
	}
	return kindInfo[e.Kind].sentinel
}

// Diagnostic converts the error to a user-facing diagnostic.
func (e *Error) Diagnostic() diag.Diagnostic {
	d := diag.Errorf(e.Kind.Code(), e.Token.Span, "%s", e.message())
	switch e.Kind {
	case UnclosedOpenParen:
		d.Hint = "add ')' to close this parenthesis"
	case MissingSemicolon:
		d.Hint = "statements end with ';'"
	}
	return d
}

func (e *Error) message() string {
	switch e.Kind {
	case UnexpectedToken:
		if e.Expected != "" {
			return fmt.Sprintf("expected '%s', got '%s'", e.Expected, e.Token.Lexeme)
		}
		return fmt.Sprintf("unexpected token '%s'", e.Token.Lexeme)
	case NotExpression:
		return fmt.Sprintf("'%s' is not the start of an expression", e.Token.Lexeme)
	case NotOperator:
		return fmt.Sprintf("'%s' is not an operator", e.Token.Lexeme)
	case UnclosedOpenParen:
		return "unclosed '('"
	case RedundantExpression:
		return fmt.Sprintf("expected ')' before '%s'", e.Token.Lexeme)
	case MissingSemicolon:
		return fmt.Sprintf("expected ';' before '%s'", e.Token.Lexeme)
	case EndOfInput:
		return "unexpected end of input"
	default:
		return e.Kind.String()
	}
}
