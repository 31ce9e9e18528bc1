// Package ast defines the abstract syntax tree for minic.
package ast

import "minic/internal/span"

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// Operators
// ============================================================

// UnaryOp is a prefix sign.
type UnaryOp int

const (
	UnaryPlus UnaryOp = iota
	UnaryMinus
)

func (op UnaryOp) String() string {
	if op == UnaryMinus {
		return "-"
	}
	return "+"
}

// BinaryOp is one of the four arithmetic operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
)

var binaryOpNames = [...]string{OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/"}

func (op BinaryOp) String() string {
	if op < 0 || int(op) >= len(binaryOpNames) {
		return "?"
	}
	return binaryOpNames[op]
}

// ============================================================
// Program (top-level AST root)
// ============================================================

// Program is the whole parsed input: top-level statements in source order.
// Expression statements appear as bare Expr nodes.
type Program struct {
	NodeBase
	Stmts []Node
}

// ============================================================
// Expressions
// ============================================================

// NumLit represents an integer literal.
type NumLit struct {
	ExprBase
	Value int64
}

// Variable represents a reference to a named variable.
type Variable struct {
	ExprBase
	Name string
}

// UnaryExpr represents a signed operand: -x, +x.
type UnaryExpr struct {
	ExprBase
	Op      UnaryOp
	Operand Expr
}

// BinaryExpr represents a binary operation: a + b.
type BinaryExpr struct {
	ExprBase
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// AssignExpr represents target = value. Its value is the assigned value,
// which is what makes a = b = c work.
type AssignExpr struct {
	ExprBase
	Target Expr
	Value  Expr
}

// ============================================================
// Statements
// ============================================================

// DeclStmt represents: int name = init;
type DeclStmt struct {
	StmtBase
	Name *Variable
	Init Expr
}

// IfStmt represents: if (cond) then [else else].
type IfStmt struct {
	StmtBase
	Cond Expr
	Then Node
	Else Node // may be nil
}

// CompoundStmt represents a block of statements: { ... }.
type CompoundStmt struct {
	StmtBase
	Stmts []Node
}

// ReturnStmt represents: return value;
type ReturnStmt struct {
	StmtBase
	Value Expr
}
