package ir

import "testing"

func TestOpClass(t *testing.T) {
	cases := map[Op]Class{
		Imm: SingleReg, BpOffset: SingleReg, Cond: SingleReg, Return: SingleReg,
		Add: DualReg, Sub: DualReg, Mul: DualReg, Div: DualReg, Store: DualReg, Load: DualReg,
		Kill:  Free,
		Label: Passthrough, Jmp: Passthrough,
	}
	for op, want := range cases {
		if got := op.Class(); got != want {
			t.Errorf("%s: expected class %d, got %d", op, want, got)
		}
	}
}

func TestInstrString(t *testing.T) {
	cases := []struct {
		in   Instr
		want string
	}{
		{New(Imm, 1, 42), "IMM r1 42"},
		{New(BpOffset, 0, 8), "BPREL r0 8"},
		{New(Store, 0, 1), "STORE r0 r1"},
		{New(Cond, 2, 7), "COND r2 7"},
		{Unary(Kill, 3), "KILL r3"},
		{Unary(Jmp, 4), "JMP 4"},
		{Instr{Op: Return, Lhs: Some(0)}, "RET r0"},
	}
	for _, c := range cases {
		if got := c.in.String(); got != c.want {
			t.Errorf("expected %q, got %q", c.want, got)
		}
	}
}

func TestDump(t *testing.T) {
	f := &Func{Instrs: []Instr{Unary(Label, 1), New(Imm, 0, 5), Unary(Return, 0)}}
	want := ".L1:\n  IMM r0 5\n  RET r0\n"
	if got := f.Dump(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if None.Set || None.String() != "_" {
		t.Error("None must be unset")
	}
}
