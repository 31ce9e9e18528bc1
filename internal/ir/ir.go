// Package ir defines the linear intermediate representation shared by the IR
// generator, the register allocator and the code emitter.
package ir

import (
	"fmt"
	"strings"
)

// RegisterCount is the default size of the physical register file.
const RegisterCount = 8

// Op is an IR opcode.
type Op int

const (
	Imm      Op = iota // lhs = immediate rhs
	BpOffset           // lhs = frame base - rhs
	Load               // lhs = *rhs
	Store              // *lhs = rhs
	Add                // lhs += rhs
	Sub                // lhs -= rhs
	Mul                // lhs *= rhs
	Div                // lhs /= rhs
	Cond               // if lhs == 0 goto label rhs
	Jmp                // goto label lhs
	Label              // label lhs:
	Return             // return lhs
	Kill               // lhs is dead
)

var opNames = [...]string{
	Imm:      "IMM",
	BpOffset: "BPREL",
	Load:     "LOAD",
	Store:    "STORE",
	Add:      "ADD",
	Sub:      "SUB",
	Mul:      "MUL",
	Div:      "DIV",
	Cond:     "COND",
	Jmp:      "JMP",
	Label:    "LABEL",
	Return:   "RET",
	Kill:     "KILL",
}

func (op Op) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return fmt.Sprintf("Op(%d)", int(op))
	}
	return opNames[op]
}

// Class says which operands of an instruction name registers.
type Class int

const (
	// Passthrough instructions carry no register references.
	Passthrough Class = iota
	// SingleReg instructions use a register in Lhs only; Rhs, if set, is a literal.
	SingleReg
	// DualReg instructions use registers in both Lhs and Rhs.
	DualReg
	// Free instructions release the register in Lhs.
	Free
)

// Class returns the operand class of op.
func (op Op) Class() Class {
	switch op {
	case Imm, BpOffset, Cond, Return:
		return SingleReg
	case Add, Sub, Mul, Div, Store, Load:
		return DualReg
	case Kill:
		return Free
	default:
		return Passthrough
	}
}

// Operand is an optional integer: a register id, an immediate, an offset or a label.
type Operand struct {
	Val int
	Set bool
}

// Some returns a present operand.
func Some(v int) Operand { return Operand{Val: v, Set: true} }

// None is the absent operand.
var None = Operand{}

func (o Operand) String() string {
	if !o.Set {
		return "_"
	}
	return fmt.Sprint(o.Val)
}

// Instr is one IR instruction.
type Instr struct {
	Op  Op
	Lhs Operand
	Rhs Operand
}

// New builds an instruction with both operands present.
func New(op Op, lhs, rhs int) Instr {
	return Instr{Op: op, Lhs: Some(lhs), Rhs: Some(rhs)}
}

// Unary builds an instruction with only Lhs present.
func Unary(op Op, lhs int) Instr {
	return Instr{Op: op, Lhs: Some(lhs)}
}

// String renders the instruction with registers shown as r<N>.
func (in Instr) String() string {
	var b strings.Builder
	b.WriteString(in.Op.String())
	operand := func(o Operand, reg bool) {
		if !o.Set {
			return
		}
		if reg {
			fmt.Fprintf(&b, " r%d", o.Val)
		} else {
			fmt.Fprintf(&b, " %d", o.Val)
		}
	}
	class := in.Op.Class()
	operand(in.Lhs, class != Passthrough)
	operand(in.Rhs, class == DualReg)
	return b.String()
}

// Func is a generated program body together with its stack frame size in bytes.
type Func struct {
	Instrs    []Instr
	FrameSize int
}

// Dump writes one instruction per line.
func (f *Func) Dump() string {
	var b strings.Builder
	for _, in := range f.Instrs {
		if in.Op == Label {
			fmt.Fprintf(&b, ".L%d:\n", in.Lhs.Val)
			continue
		}
		b.WriteString("  ")
		b.WriteString(in.String())
		b.WriteByte('\n')
	}
	return b.String()
}
