// Package regalloc maps virtual registers onto a fixed physical register file.
//
// The pass is a single left-to-right walk over the instruction slice. A virtual
// register keeps the physical slot it was first given until the end of the pass
// (the binding is sticky); a Kill only marks the slot free for later virtual
// registers. There is no spilling: running out of slots is an error.
//
// The generator must emit exactly one Kill right after each virtual register's
// last use. A missing Kill leaks the slot; an early Kill lets a later register
// alias a value that is still live.
package regalloc

import (
	"errors"
	"fmt"
	"minic/internal/ir"
	"sort"
	"strings"
)

var (
	// ErrOutOfRegisters is matched by the error Run returns when every slot is in use.
	ErrOutOfRegisters = errors.New("out of registers")
	// ErrMissingOperand reports a register-using instruction without a register operand.
	ErrMissingOperand = errors.New("missing register operand")
)

// ExhaustedError is returned when a virtual register needs a slot and none is free.
type ExhaustedError struct {
	Virtual int         // the virtual register that could not be placed
	Index   int         // position of the instruction in the slice
	Mapping map[int]int // snapshot of virtual -> physical bindings at the failure
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no available register for r%d at instruction %d", e.Virtual, e.Index)
}

func (e *ExhaustedError) Unwrap() error { return ErrOutOfRegisters }

// Dump renders the mapping sorted by virtual register, one "virtual: physical" per line.
func (e *ExhaustedError) Dump() string {
	return dumpMapping(e.Mapping)
}

// Allocator is the state of one allocation pass.
type Allocator struct {
	used    []bool
	mapping map[int]int
}

// New creates an allocator for a register file of count slots.
func New(count int) *Allocator {
	if count < 1 {
		count = ir.RegisterCount
	}
	return &Allocator{
		used:    make([]bool, count),
		mapping: make(map[int]int),
	}
}

// Allocate runs a fresh allocator with count slots over instrs.
func Allocate(instrs []ir.Instr, count int) error {
	return New(count).Run(instrs)
}

// Run rewrites every virtual register operand in instrs to a physical index, in place.
// On error the slice is partially rewritten and must be discarded.
func (a *Allocator) Run(instrs []ir.Instr) error {
	for i := range instrs {
		in := &instrs[i]
		var err error
		switch in.Op.Class() {
		case ir.SingleReg:
			in.Lhs, err = a.operand(in.Lhs, in.Op, i)
		case ir.DualReg:
			if in.Lhs, err = a.operand(in.Lhs, in.Op, i); err == nil {
				in.Rhs, err = a.operand(in.Rhs, in.Op, i)
			}
		case ir.Free:
			if in.Lhs, err = a.operand(in.Lhs, in.Op, i); err == nil {
				a.used[in.Lhs.Val] = false
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Allocator) operand(o ir.Operand, op ir.Op, index int) (ir.Operand, error) {
	if !o.Set {
		return o, fmt.Errorf("%s at instruction %d: %w", op, index, ErrMissingOperand)
	}
	phys, err := a.alloc(o.Val, index)
	if err != nil {
		return o, err
	}
	return ir.Some(phys), nil
}

// alloc returns the slot bound to virtual, binding the lowest free slot on first sight.
func (a *Allocator) alloc(virtual, index int) (int, error) {
	if phys, ok := a.mapping[virtual]; ok {
		return phys, nil
	}
	for phys, inUse := range a.used {
		if inUse {
			continue
		}
		a.used[phys] = true
		a.mapping[virtual] = phys
		return phys, nil
	}
	return 0, &ExhaustedError{Virtual: virtual, Index: index, Mapping: a.Mapping()}
}

// Mapping returns a copy of the virtual -> physical bindings made so far.
func (a *Allocator) Mapping() map[int]int {
	out := make(map[int]int, len(a.mapping))
	for v, p := range a.mapping {
		out[v] = p
	}
	return out
}

// InUse reports whether physical slot phys is currently taken.
func (a *Allocator) InUse(phys int) bool {
	return phys >= 0 && phys < len(a.used) && a.used[phys]
}

// Live returns how many slots are currently taken.
func (a *Allocator) Live() int {
	n := 0
	for _, u := range a.used {
		if u {
			n++
		}
	}
	return n
}

// Dump renders the current mapping the same way ExhaustedError.Dump does.
func (a *Allocator) Dump() string {
	return dumpMapping(a.mapping)
}

func dumpMapping(m map[int]int) string {
	virtuals := make([]int, 0, len(m))
	for v := range m {
		virtuals = append(virtuals, v)
	}
	sort.Ints(virtuals)
	var b strings.Builder
	for _, v := range virtuals {
		fmt.Fprintf(&b, "%d: %d\n", v, m[v])
	}
	return b.String()
}
