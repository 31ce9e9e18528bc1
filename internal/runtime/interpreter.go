// Package runtime executes register-allocated IR on a simulated register file.
// It gives the CLI a way to run programs without an assembler, and tests a way
// to check that allocation preserved the program's meaning.
package runtime

import (
	"fmt"
	"math"
	"minic/internal/ir"
)

// frameBase is the simulated value of rbp; BpOffset yields frameBase-offset.
const frameBase = 1 << 20

// ============================================================
// Runtime error
// ============================================================

// RuntimeError represents an error during execution.
type RuntimeError struct {
	Message string
	Index   int // instruction index
	Instr   ir.Instr
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at instruction %d (%s): %s", e.Index, e.Instr, e.Message)
}

// ============================================================
// Interpreter
// ============================================================

// Interpreter runs one function at a time over a fixed register file.
type Interpreter struct {
	regs   []int64
	memory map[int64]int64
	frame  int
}

// NewInterpreter creates an interpreter with count physical registers.
func NewInterpreter(count int) *Interpreter {
	if count < 1 {
		count = ir.RegisterCount
	}
	return &Interpreter{regs: make([]int64, count)}
}

// Run executes f from the top and returns the value of the first Return
// reached, or 0 if execution falls off the end.
func (in *Interpreter) Run(f *ir.Func) (int64, error) {
	for i := range in.regs {
		in.regs[i] = 0
	}
	in.memory = make(map[int64]int64)
	in.frame = f.FrameSize

	labels := make(map[int]int)
	for i, instr := range f.Instrs {
		if instr.Op == ir.Label {
			labels[instr.Lhs.Val] = i
		}
	}

	for pc := 0; pc < len(f.Instrs); pc++ {
		instr := f.Instrs[pc]
		fail := func(format string, args ...interface{}) error {
			return &RuntimeError{Message: fmt.Sprintf(format, args...), Index: pc, Instr: instr}
		}

		if class := instr.Op.Class(); class != ir.Passthrough {
			if !in.valid(instr.Lhs) || (class == ir.DualReg && !in.valid(instr.Rhs)) {
				return 0, fail("register out of range")
			}
		}
		lhs, rhs := instr.Lhs.Val, instr.Rhs.Val

		switch instr.Op {
		case ir.Imm:
			in.regs[lhs] = int64(rhs)
		case ir.BpOffset:
			in.regs[lhs] = frameBase - int64(rhs)
		case ir.Load:
			v, err := in.load(in.regs[rhs])
			if err != nil {
				return 0, fail("%v", err)
			}
			in.regs[lhs] = v
		case ir.Store:
			if err := in.checkAddr(in.regs[lhs]); err != nil {
				return 0, fail("%v", err)
			}
			in.memory[in.regs[lhs]] = in.regs[rhs]
		case ir.Add:
			in.regs[lhs] += in.regs[rhs]
		case ir.Sub:
			in.regs[lhs] -= in.regs[rhs]
		case ir.Mul:
			in.regs[lhs] *= in.regs[rhs]
		case ir.Div:
			if in.regs[rhs] == 0 {
				return 0, fail("division by zero")
			}
			if in.regs[lhs] == math.MinInt64 && in.regs[rhs] == -1 {
				return 0, fail("division overflow")
			}
			in.regs[lhs] /= in.regs[rhs]
		case ir.Cond:
			if in.regs[lhs] == 0 {
				target, ok := labels[rhs]
				if !ok {
					return 0, fail("unknown label %d", rhs)
				}
				pc = target
			}
		case ir.Jmp:
			target, ok := labels[lhs]
			if !ok {
				return 0, fail("unknown label %d", lhs)
			}
			pc = target
		case ir.Return:
			return in.regs[lhs], nil
		case ir.Label, ir.Kill:
		default:
			return 0, fail("unknown op")
		}
	}
	return 0, nil
}

func (in *Interpreter) valid(o ir.Operand) bool {
	return o.Set && o.Val >= 0 && o.Val < len(in.regs)
}

func (in *Interpreter) checkAddr(addr int64) error {
	off := frameBase - addr
	if off <= 0 || off > int64(in.frame) || off%8 != 0 {
		return fmt.Errorf("address rbp-%d outside the frame", off)
	}
	return nil
}

func (in *Interpreter) load(addr int64) (int64, error) {
	if err := in.checkAddr(addr); err != nil {
		return 0, err
	}
	v, ok := in.memory[addr]
	if !ok {
		return 0, fmt.Errorf("read of uninitialized slot rbp-%d", frameBase-addr)
	}
	return v, nil
}
