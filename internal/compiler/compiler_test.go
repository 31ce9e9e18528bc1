package compiler

import (
	"bytes"
	"errors"
	"log/slog"
	"minic/internal/codegen"
	"minic/internal/ir"
	"minic/internal/irgen"
	"minic/internal/parser"
	"minic/internal/regalloc"
	"strings"
	"testing"
)

const products = `
int a = 1; int b = 2; int c = 3; int d = 4;
int e = 5; int f = 6; int g = 7; int h = 8;
return ((a*b)+(c*d))*((e*f)+(g*h));
`

func compile(t *testing.T, source string, regs int) (*Result, error) {
	t.Helper()
	c, err := New(Options{Registers: regs})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	return c.Compile(source, "test.c")
}

func expectError(t *testing.T, source string, target error, code string) {
	t.Helper()
	res, err := compile(t, source, 0)
	if err == nil {
		t.Fatalf("expected error, got assembly:\n%s", res.Asm)
	}
	if target != nil && !errors.Is(err, target) {
		t.Errorf("expected %v, got %v", target, err)
	}
	diags := Diagnostics(err)
	if len(diags) == 0 || diags[0].Code != code {
		t.Errorf("expected diagnostic %s, got %v", code, diags)
	}
}

func TestCompileProducts(t *testing.T) {
	res, err := compile(t, products, 0)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	if len(res.Program.Stmts) != 9 {
		t.Errorf("expected 9 statements, got %d", len(res.Program.Stmts))
	}
	if !strings.Contains(res.Asm, "imul") || !strings.HasSuffix(res.Asm, "  ret\n") {
		t.Errorf("unexpected assembly:\n%s", res.Asm)
	}
	for _, in := range res.Func.Instrs {
		if in.Op.Class() != ir.Passthrough && (in.Lhs.Val < 0 || in.Lhs.Val >= 8) {
			t.Fatalf("instruction %v uses a register outside the file", in)
		}
	}
}

func TestRegisterPressure(t *testing.T) {
	// The right-hand product needs four live values: (ab+cd), e*f, g, h.
	if _, err := compile(t, products, 4); err != nil {
		t.Errorf("four registers should suffice: %v", err)
	}
	_, err := compile(t, products, 3)
	if !errors.Is(err, regalloc.ErrOutOfRegisters) {
		t.Fatalf("expected ErrOutOfRegisters, got %v", err)
	}
	diags := Diagnostics(err)
	if len(diags) != 1 || diags[0].Code != "E9001" || diags[0].Hint == "" {
		t.Errorf("unexpected diagnostics %v", diags)
	}
}

func TestCompileErrors(t *testing.T) {
	expectError(t, "int a = 1 $;", nil, "E1001")
	expectError(t, "(1 + 2", parser.ErrUnclosedOpenParen, "E2004")
	expectError(t, "int a = 3", parser.ErrEndOfInput, "E2007")
	expectError(t, "b = 1;", irgen.ErrUndeclared, "E3001")
}

func TestParseOnly(t *testing.T) {
	c, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	// Parsing succeeds even though lowering would reject the undeclared names.
	res, err := c.Parse("abc = 3; def = 5; abc + def;", "test.c")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(res.Program.Stmts) != 3 || res.Func != nil {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestLowerSkipsEmission(t *testing.T) {
	c, _ := New(Options{})
	res, err := c.Lower("int a = 1; return a;", "test.c")
	if err != nil {
		t.Fatal(err)
	}
	if res.Asm != "" || res.Func == nil {
		t.Errorf("Lower should allocate but not emit, got %+v", res)
	}
}

func TestOptions(t *testing.T) {
	c, err := New(Options{})
	if err != nil || c.Registers() != 8 {
		t.Errorf("default register count should be 8, got %v (%v)", c, err)
	}
	if _, err := New(Options{Registers: codegen.MaxRegisters + 1}); !errors.Is(err, codegen.ErrRegisterCount) {
		t.Errorf("expected ErrRegisterCount, got %v", err)
	}
	if _, err := New(Options{Registers: -1}); err == nil {
		t.Error("negative register count should be rejected")
	}
}

func TestStageLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c, err := New(Options{Logger: logger})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Compile("return 1;", "log.c"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, msg := range []string{"tokenized", "parsed", "generated ir", "allocated registers", "emitted assembly"} {
		if !strings.Contains(out, msg) {
			t.Errorf("missing %q record in:\n%s", msg, out)
		}
	}
}

func TestRun(t *testing.T) {
	c, err := New(Options{Registers: 4})
	if err != nil {
		t.Fatal(err)
	}
	v, err := c.Run(products, "test.c")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if v != 14*86 {
		t.Errorf("expected %d, got %d", 14*86, v)
	}

	_, err = c.Run("int z = 0; return 7 / z;", "test.c")
	diags := Diagnostics(err)
	if len(diags) != 1 || diags[0].Code != "E9002" {
		t.Errorf("expected E9002, got %v", diags)
	}
}

func TestDiagnosticsNil(t *testing.T) {
	if Diagnostics(nil) != nil {
		t.Error("nil error has no diagnostics")
	}
}
