// Package codegen lowers register-allocated IR to x86-64 assembly (Intel syntax).
package codegen

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"minic/internal/ir"
)

// registers names the physical register file in slot order.
var registers = [...]string{"rdi", "rsi", "rcx", "r8", "r9", "r10", "r11", "rbx", "r12", "r13", "r14", "r15"}

var calleeSaved = map[string]bool{"rbx": true, "r12": true, "r13": true, "r14": true, "r15": true}

// MaxRegisters is the largest register file Emit can target.
const MaxRegisters = len(registers)

var (
	ErrRegisterCount = errors.New("unsupported register count")
	ErrBadRegister   = errors.New("register out of range")
)

// RegisterName returns the assembler name of physical slot i.
func RegisterName(i int) (string, bool) {
	if i < 0 || i >= len(registers) {
		return "", false
	}
	return registers[i], true
}

type emitter struct {
	w     *bufio.Writer
	count int
}

// Emit writes f as a complete assembly file defining main. f must already be
// register-allocated for a file of count registers.
func Emit(w io.Writer, f *ir.Func, count int) error {
	if count < 1 || count > MaxRegisters {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrRegisterCount, count, MaxRegisters)
	}
	e := &emitter{w: bufio.NewWriter(w), count: count}

	var saved []string
	for _, name := range registers[:count] {
		if calleeSaved[name] {
			saved = append(saved, name)
		}
	}

	e.line(".intel_syntax noprefix")
	e.line(".globl main")
	e.line("main:")
	e.ins("push rbp")
	e.ins("mov rbp, rsp")
	if frame := alignTo(f.FrameSize, 16); frame > 0 {
		e.ins("sub rsp, %d", frame)
	}
	for _, name := range saved {
		e.ins("push %s", name)
	}

	for i, in := range f.Instrs {
		if err := e.instr(in); err != nil {
			return fmt.Errorf("instruction %d (%s): %w", i, in, err)
		}
	}

	e.ins("mov rax, 0")
	e.line(".L.return:")
	for i := len(saved) - 1; i >= 0; i-- {
		e.ins("pop %s", saved[i])
	}
	e.ins("mov rsp, rbp")
	e.ins("pop rbp")
	e.ins("ret")
	return e.w.Flush()
}

func (e *emitter) line(format string, args ...interface{}) {
	fmt.Fprintf(e.w, format+"\n", args...)
}

func (e *emitter) ins(format string, args ...interface{}) {
	fmt.Fprintf(e.w, "  "+format+"\n", args...)
}

func (e *emitter) reg(o ir.Operand) (string, error) {
	if !o.Set || o.Val < 0 || o.Val >= e.count {
		return "", fmt.Errorf("%w: %v", ErrBadRegister, o)
	}
	return registers[o.Val], nil
}

func (e *emitter) instr(in ir.Instr) error {
	switch in.Op {
	case ir.Label:
		e.line(".L%d:", in.Lhs.Val)
		return nil
	case ir.Jmp:
		e.ins("jmp .L%d", in.Lhs.Val)
		return nil
	}

	lhs, err := e.reg(in.Lhs)
	if err != nil {
		return err
	}
	if in.Op.Class() == ir.DualReg {
		rhs, err := e.reg(in.Rhs)
		if err != nil {
			return err
		}
		e.binary(in.Op, lhs, rhs)
		return nil
	}

	switch in.Op {
	case ir.Imm:
		e.ins("mov %s, %d", lhs, in.Rhs.Val)
	case ir.BpOffset:
		e.ins("lea %s, [rbp-%d]", lhs, in.Rhs.Val)
	case ir.Cond:
		e.ins("cmp %s, 0", lhs)
		e.ins("je .L%d", in.Rhs.Val)
	case ir.Return:
		e.ins("mov rax, %s", lhs)
		e.ins("jmp .L.return")
	case ir.Kill:
	default:
		return fmt.Errorf("unknown op %s", in.Op)
	}
	return nil
}

func (e *emitter) binary(op ir.Op, lhs, rhs string) {
	switch op {
	case ir.Load:
		e.ins("mov %s, [%s]", lhs, rhs)
	case ir.Store:
		e.ins("mov [%s], %s", lhs, rhs)
	case ir.Add:
		e.ins("add %s, %s", lhs, rhs)
	case ir.Sub:
		e.ins("sub %s, %s", lhs, rhs)
	case ir.Mul:
		e.ins("imul %s, %s", lhs, rhs)
	case ir.Div:
		e.ins("mov rax, %s", lhs)
		e.ins("cqo")
		e.ins("idiv %s", rhs)
		e.ins("mov %s, rax", lhs)
	}
}

func alignTo(n, align int) int {
	return (n + align - 1) / align * align
}
