package ast

import (
	"fmt"
	"strings"
)

// Format renders a node as a compact S-expression, e.g. Sub(Mul(Add(5, 2), 31), Minus(10)).
// Spans are not included.
func Format(node Node) string {
	var b strings.Builder
	format(&b, node)
	return b.String()
}

var binaryNames = [...]string{OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div"}

func format(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		b.WriteString("nil")
	case *Program:
		list(b, "Program", n.Stmts)
	case *NumLit:
		fmt.Fprintf(b, "%d", n.Value)
	case *Variable:
		b.WriteString(n.Name)
	case *UnaryExpr:
		if n.Op == UnaryMinus {
			b.WriteString("Minus(")
		} else {
			b.WriteString("Plus(")
		}
		format(b, n.Operand)
		b.WriteByte(')')
	case *BinaryExpr:
		b.WriteString(binaryNames[n.Op])
		pair(b, n.Left, n.Right)
	case *AssignExpr:
		b.WriteString("Assign")
		pair(b, n.Target, n.Value)
	case *DeclStmt:
		b.WriteString("Decl")
		pair(b, n.Name, n.Init)
	case *IfStmt:
		b.WriteString("If(")
		format(b, n.Cond)
		b.WriteString(", ")
		format(b, n.Then)
		if n.Else != nil {
			b.WriteString(", ")
			format(b, n.Else)
		}
		b.WriteByte(')')
	case *CompoundStmt:
		list(b, "Block", n.Stmts)
	case *ReturnStmt:
		b.WriteString("Return(")
		format(b, n.Value)
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "<%T>", node)
	}
}

func pair(b *strings.Builder, l, r Node) {
	b.WriteByte('(')
	format(b, l)
	b.WriteString(", ")
	format(b, r)
	b.WriteByte(')')
}

func list(b *strings.Builder, name string, nodes []Node) {
	b.WriteString(name)
	b.WriteByte('[')
	for i, n := range nodes {
		if i > 0 {
			b.WriteString("; ")
		}
		format(b, n)
	}
	b.WriteByte(']')
}
