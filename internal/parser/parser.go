// Package parser implements the syntax analysis for minic.
// It is a recursive-descent parser with one token of lookahead. The first error
// aborts the whole parse; no partial tree is ever returned.
package parser

import (
	"minic/internal/ast"
	"minic/internal/span"
	"minic/internal/token"
	"strconv"
)

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
}

// New creates a new parser from a token slice. A trailing EOF token is optional.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// Parse is shorthand for New(tokens).Parse().
func Parse(tokens []token.Token) (*ast.Program, error) {
	return New(tokens).Parse()
}

// Parse parses the whole token stream.
//
//	Program ::= Stmt*
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{}
	for {
		if _, ok := p.peek(); !ok {
			break
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		if len(prog.Stmts) == 0 {
			prog.Span = stmt.GetSpan()
		} else {
			prog.Span = prog.Span.Merge(stmt.GetSpan())
		}
		prog.Stmts = append(prog.Stmts, stmt)
	}
	if len(prog.Stmts) == 0 {
		prog.Span = p.eofToken().Span
	}
	return prog, nil
}

// ---- navigation helpers ----

// peek returns the next token; ok is false once the stream (or an EOF token) is reached.
func (p *Parser) peek() (token.Token, bool) {
	if p.pos >= len(p.tokens) || p.tokens[p.pos].Kind == token.EOF {
		return token.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) check(kind token.Kind) bool {
	tok, ok := p.peek()
	return ok && tok.Kind == kind
}

// next consumes and returns the next token.
func (p *Parser) next() (token.Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	tok, ok := p.next()
	if !ok {
		return tok, p.endOfInput()
	}
	if tok.Kind != kind {
		return tok, &Error{Kind: UnexpectedToken, Token: tok, Expected: kind.String()}
	}
	return tok, nil
}

func (p *Parser) expectSemicolon() error {
	tok, ok := p.next()
	if !ok {
		return p.endOfInput()
	}
	if tok.Kind != token.SEMICOLON {
		return &Error{Kind: MissingSemicolon, Token: tok}
	}
	return nil
}

// eofToken returns the EOF token of the stream, or synthesizes one positioned
// right after the last token.
func (p *Parser) eofToken() token.Token {
	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]
		if last.Kind == token.EOF {
			return last
		}
		return token.Token{Kind: token.EOF, Span: span.Span{Start: last.Span.End, End: last.Span.End}}
	}
	start := span.Position{Offset: 0, Line: 1, Column: 1}
	return token.Token{Kind: token.EOF, Span: span.Span{Start: start, End: start}}
}

func (p *Parser) endOfInput() error {
	return &Error{Kind: EndOfInput, Token: p.eofToken()}
}

// ============================================================
// Statement parsing
// ============================================================

// Stmt ::= DeclVar | IfStmt | CompStmt | ReturnStmt | ExprStmt
func (p *Parser) parseStmt() (ast.Node, error) {
	tok, _ := p.peek()
	switch tok.Kind {
	case token.KW_INT:
		return p.parseDecl()
	case token.KW_IF:
		return p.parseIf()
	case token.LBRACE:
		return p.parseCompound()
	case token.KW_RETURN:
		return p.parseReturn()
	default:
		expr, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		if err := p.expectSemicolon(); err != nil {
			return nil, err
		}
		return expr, nil
	}
}

// parseDecl parses: "int" IDENT "=" Add ";"
func (p *Parser) parseDecl() (*ast.DeclStmt, error) {
	kw, _ := p.next() // consume 'int'
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	init, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	if err := p.expectSemicolon(); err != nil {
		return nil, err
	}
	name := &ast.Variable{ExprBase: exprBase(nameTok.Span), Name: nameTok.Lexeme}
	return &ast.DeclStmt{
		StmtBase: stmtBase(kw.Span.Merge(init.GetSpan())),
		Name:     name,
		Init:     init,
	}, nil
}

// parseIf parses: "if" "(" Assign ")" Stmt ["else" Stmt]
func (p *Parser) parseIf() (*ast.IfStmt, error) {
	kw, _ := p.next() // consume 'if'
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Cond: cond, Then: then}
	s := kw.Span.Merge(then.GetSpan())

	if p.check(token.KW_ELSE) {
		p.next()
		els, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmt.Else = els
		s = s.Merge(els.GetSpan())
	}
	stmt.Span = s
	return stmt, nil
}

// parseCompound parses: "{" Stmt* "}"
func (p *Parser) parseCompound() (*ast.CompoundStmt, error) {
	open, _ := p.next() // consume '{'
	block := &ast.CompoundStmt{}
	for {
		tok, ok := p.peek()
		if !ok {
			return nil, p.endOfInput()
		}
		if tok.Kind == token.RBRACE {
			p.next()
			block.Span = open.Span.Merge(tok.Span)
			return block, nil
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
}

// parseReturn parses: "return" Assign ";"
func (p *Parser) parseReturn() (*ast.ReturnStmt, error) {
	kw, _ := p.next() // consume 'return'
	value, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if err := p.expectSemicolon(); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{
		StmtBase: stmtBase(kw.Span.Merge(value.GetSpan())),
		Value:    value,
	}, nil
}

// ============================================================
// Expression parsing
// ============================================================

// Assign ::= Add ("=" Assign)?
func (p *Parser) parseAssign() (ast.Expr, error) {
	lhs, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	if !p.check(token.ASSIGN) {
		return lhs, nil
	}
	p.next()
	rhs, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	return &ast.AssignExpr{
		ExprBase: exprBase(lhs.GetSpan().Merge(rhs.GetSpan())),
		Target:   lhs,
		Value:    rhs,
	}, nil
}

// Add ::= Mul (("+"|"-") Mul)*
func (p *Parser) parseAdd() (ast.Expr, error) {
	return p.parseLeftAssoc(p.parseMul, token.PLUS, token.MINUS)
}

// Mul ::= Unary (("*"|"/") Unary)*
func (p *Parser) parseMul() (ast.Expr, error) {
	return p.parseLeftAssoc(p.parseUnary, token.STAR, token.SLASH)
}

// parseLeftAssoc folds operands from operand() into a left-leaning tree while
// the next token is one of ops.
func (p *Parser) parseLeftAssoc(operand func() (ast.Expr, error), ops ...token.Kind) (ast.Expr, error) {
	lhs, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || !matches(tok.Kind, ops) {
			return lhs, nil
		}
		p.next()
		op, err := binaryOp(tok)
		if err != nil {
			return nil, err
		}
		rhs, err := operand()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{
			ExprBase: exprBase(lhs.GetSpan().Merge(rhs.GetSpan())),
			Op:       op,
			Left:     lhs,
			Right:    rhs,
		}
	}
}

// Unary ::= ("+"|"-")? Primary
//
// Only one sign is taken; a second one reaches parsePrimary and is rejected there.
func (p *Parser) parseUnary() (ast.Expr, error) {
	if !p.check(token.PLUS) && !p.check(token.MINUS) {
		return p.parsePrimary()
	}
	sign, _ := p.next()
	op, err := unaryOp(sign)
	if err != nil {
		return nil, err
	}
	operand, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return &ast.UnaryExpr{
		ExprBase: exprBase(sign.Span.Merge(operand.GetSpan())),
		Op:       op,
		Operand:  operand,
	}, nil
}

// Primary ::= Number | Identifier | "(" Add ")"
func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok, ok := p.next()
	if !ok {
		return nil, p.endOfInput()
	}

	switch tok.Kind {
	case token.NUMBER:
		val, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, &Error{Kind: NotExpression, Token: tok}
		}
		return &ast.NumLit{ExprBase: exprBase(tok.Span), Value: val}, nil

	case token.IDENT:
		return &ast.Variable{ExprBase: exprBase(tok.Span), Name: tok.Lexeme}, nil

	case token.LPAREN:
		inner, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		closing, ok := p.next()
		if !ok {
			return nil, &Error{Kind: UnclosedOpenParen, Token: tok}
		}
		if closing.Kind != token.RPAREN {
			return nil, &Error{Kind: RedundantExpression, Token: closing}
		}
		return inner, nil

	default:
		return nil, &Error{Kind: NotExpression, Token: tok}
	}
}

// ============================================================
// Operator mapping
// ============================================================

func binaryOp(tok token.Token) (ast.BinaryOp, error) {
	switch tok.Kind {
	case token.PLUS:
		return ast.OpAdd, nil
	case token.MINUS:
		return ast.OpSub, nil
	case token.STAR:
		return ast.OpMul, nil
	case token.SLASH:
		return ast.OpDiv, nil
	default:
		return 0, &Error{Kind: NotOperator, Token: tok}
	}
}

func unaryOp(tok token.Token) (ast.UnaryOp, error) {
	switch tok.Kind {
	case token.PLUS:
		return ast.UnaryPlus, nil
	case token.MINUS:
		return ast.UnaryMinus, nil
	default:
		return 0, &Error{Kind: NotOperator, Token: tok}
	}
}

func matches(kind token.Kind, kinds []token.Kind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ============================================================
// Span helpers
// ============================================================

func exprBase(s span.Span) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: s}}
}

func stmtBase(s span.Span) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: s}}
}
