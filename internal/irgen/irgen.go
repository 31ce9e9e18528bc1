// Package irgen lowers the AST to the linear IR.
//
// Every value lives in a fresh virtual register, and every virtual register gets
// exactly one Kill right after its last use, which is what the register allocator
// relies on to recycle slots.
package irgen

import (
	"errors"
	"fmt"
	"minic/internal/ast"
	"minic/internal/diag"
	"minic/internal/ir"
	"minic/internal/span"
)

// slotSize is the size in bytes of one variable's stack slot.
const slotSize = 8

// ErrorKind classifies a lowering failure.
type ErrorKind int

const (
	Undeclared ErrorKind = iota
	Redeclared
	NotAssignable
)

var (
	ErrUndeclared    = errors.New("undeclared variable")
	ErrRedeclared    = errors.New("variable already declared")
	ErrNotAssignable = errors.New("expression is not assignable")
)

var kindInfo = [...]struct {
	sentinel error
	code     string
}{
	Undeclared:    {ErrUndeclared, "E3001"},
	Redeclared:    {ErrRedeclared, "E3002"},
	NotAssignable: {ErrNotAssignable, "E3003"},
}

// Error is a semantic error found while lowering.
type Error struct {
	Kind    ErrorKind
	Name    string // variable name, empty for NotAssignable
	Span    span.Span
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("error at %d:%d: %s", e.Span.Start.Line, e.Span.Start.Column, e.Message)
}

func (e *Error) Unwrap() error { return kindInfo[e.Kind].sentinel }

// Diagnostic converts the error to a user-facing diagnostic.
func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.Errorf(kindInfo[e.Kind].code, e.Span, "%s", e.Message)
}

func semErr(kind ErrorKind, name string, s span.Span, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Name: name, Span: s, Message: fmt.Sprintf(format, args...)}
}

type generator struct {
	instrs    []ir.Instr
	nextReg   int
	nextLabel int
	vars      map[string]int // name -> frame offset
	frame     int
}

// Generate lowers prog. Variables share one flat scope in declaration order.
func Generate(prog *ast.Program) (*ir.Func, error) {
	g := &generator{vars: make(map[string]int), nextLabel: 1}
	for _, stmt := range prog.Stmts {
		if err := g.stmt(stmt); err != nil {
			return nil, err
		}
	}
	return &ir.Func{Instrs: g.instrs, FrameSize: g.frame}, nil
}

func (g *generator) emit(op ir.Op, lhs, rhs int) {
	g.instrs = append(g.instrs, ir.New(op, lhs, rhs))
}

func (g *generator) emit1(op ir.Op, lhs int) {
	g.instrs = append(g.instrs, ir.Unary(op, lhs))
}

func (g *generator) reg() int {
	r := g.nextReg
	g.nextReg++
	return r
}

func (g *generator) label() int {
	l := g.nextLabel
	g.nextLabel++
	return l
}

// ============================================================
// Statements
// ============================================================

func (g *generator) stmt(node ast.Node) error {
	switch n := node.(type) {
	case *ast.DeclStmt:
		return g.decl(n)
	case *ast.IfStmt:
		return g.ifStmt(n)
	case *ast.CompoundStmt:
		for _, s := range n.Stmts {
			if err := g.stmt(s); err != nil {
				return err
			}
		}
		return nil
	case *ast.ReturnStmt:
		r, err := g.expr(n.Value)
		if err != nil {
			return err
		}
		g.emit1(ir.Return, r)
		g.emit1(ir.Kill, r)
		return nil
	case ast.Expr:
		r, err := g.expr(n)
		if err != nil {
			return err
		}
		g.emit1(ir.Kill, r)
		return nil
	default:
		return fmt.Errorf("irgen: unsupported statement %T", node)
	}
}

func (g *generator) decl(n *ast.DeclStmt) error {
	name := n.Name.Name
	if _, ok := g.vars[name]; ok {
		return semErr(Redeclared, name, n.Name.Span, "variable '%s' already declared", name)
	}
	offset := g.frame + slotSize

	addr := g.reg()
	g.emit(ir.BpOffset, addr, offset)
	val, err := g.expr(n.Init)
	if err != nil {
		return err
	}
	g.emit(ir.Store, addr, val)
	g.emit1(ir.Kill, addr)
	g.emit1(ir.Kill, val)

	// The name is only visible after its initializer.
	g.vars[name] = offset
	g.frame = offset
	return nil
}

func (g *generator) ifStmt(n *ast.IfStmt) error {
	cond, err := g.expr(n.Cond)
	if err != nil {
		return err
	}
	elseLabel := g.label()
	g.emit(ir.Cond, cond, elseLabel)
	g.emit1(ir.Kill, cond)

	if err := g.stmt(n.Then); err != nil {
		return err
	}
	if n.Else == nil {
		g.emit1(ir.Label, elseLabel)
		return nil
	}

	endLabel := g.label()
	g.emit1(ir.Jmp, endLabel)
	g.emit1(ir.Label, elseLabel)
	if err := g.stmt(n.Else); err != nil {
		return err
	}
	g.emit1(ir.Label, endLabel)
	return nil
}

// ============================================================
// Expressions
// ============================================================

// expr emits code for e and returns the virtual register holding its value.
// The caller owns that register and must kill it.
func (g *generator) expr(e ast.Expr) (int, error) {
	switch n := e.(type) {
	case *ast.NumLit:
		r := g.reg()
		g.emit(ir.Imm, r, int(n.Value))
		return r, nil

	case *ast.Variable:
		offset, ok := g.vars[n.Name]
		if !ok {
			return 0, semErr(Undeclared, n.Name, n.Span, "undeclared variable '%s'", n.Name)
		}
		r := g.reg()
		g.emit(ir.BpOffset, r, offset)
		g.emit(ir.Load, r, r)
		return r, nil

	case *ast.UnaryExpr:
		x, err := g.expr(n.Operand)
		if err != nil || n.Op == ast.UnaryPlus {
			return x, err
		}
		r := g.reg()
		g.emit(ir.Imm, r, 0)
		g.emit(ir.Sub, r, x)
		g.emit1(ir.Kill, x)
		return r, nil

	case *ast.BinaryExpr:
		lhs, err := g.expr(n.Left)
		if err != nil {
			return 0, err
		}
		rhs, err := g.expr(n.Right)
		if err != nil {
			return 0, err
		}
		g.emit(binaryOps[n.Op], lhs, rhs)
		g.emit1(ir.Kill, rhs)
		return lhs, nil

	case *ast.AssignExpr:
		return g.assign(n)

	default:
		return 0, fmt.Errorf("irgen: unsupported expression %T", e)
	}
}

var binaryOps = map[ast.BinaryOp]ir.Op{
	ast.OpAdd: ir.Add,
	ast.OpSub: ir.Sub,
	ast.OpMul: ir.Mul,
	ast.OpDiv: ir.Div,
}

// assign stores the value and yields it, so a = b = c chains.
func (g *generator) assign(n *ast.AssignExpr) (int, error) {
	target, ok := n.Target.(*ast.Variable)
	if !ok {
		return 0, semErr(NotAssignable, "", n.Target.GetSpan(), "cannot assign to %s", ast.Format(n.Target))
	}
	offset, ok := g.vars[target.Name]
	if !ok {
		return 0, semErr(Undeclared, target.Name, target.Span, "undeclared variable '%s'", target.Name)
	}
	val, err := g.expr(n.Value)
	if err != nil {
		return 0, err
	}
	addr := g.reg()
	g.emit(ir.BpOffset, addr, offset)
	g.emit(ir.Store, addr, val)
	g.emit1(ir.Kill, addr)
	return val, nil
}
