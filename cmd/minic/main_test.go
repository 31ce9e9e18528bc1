package main

import (
	"minic/internal/compiler"
	"minic/internal/lexer"
	"strings"
	"testing"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"--regs", "4", "-o", "out.s", "--verbose"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.registers != 4 || opts.output != "out.s" || !opts.verbose || opts.json {
		t.Errorf("unexpected options: %+v", opts)
	}

	opts, err = parseOptions([]string{"--json"})
	if err != nil || !opts.json || opts.registers != 0 {
		t.Errorf("expected json only, got %+v, %v", opts, err)
	}

	bad := [][]string{
		{"--regs"},
		{"--regs", "0"},
		{"--regs", "13"},
		{"--regs", "x"},
		{"-o"},
		{"--nope"},
	}
	for _, args := range bad {
		if _, err := parseOptions(args); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func newTestSession(t *testing.T) *session {
	t.Helper()
	c, err := compiler.New(compiler.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return newSession(c)
}

func TestSessionAccumulates(t *testing.T) {
	s := newTestSession(t)

	res, err := s.eval("int a = 6;\n")
	if err != nil || !res.kept || res.hasVal {
		t.Fatalf("declaration: %+v, %v", res, err)
	}
	if _, err := s.eval("int b = a * 7;\n"); err != nil {
		t.Fatal(err)
	}

	res, err = s.eval("b - 2;\n")
	if err != nil {
		t.Fatal(err)
	}
	if !res.hasVal || res.value != 40 || res.kept {
		t.Errorf("expected value 40, got %+v", res)
	}

	res, err = s.eval("(a + 1) * 2; // comment\n")
	if err != nil {
		t.Fatal(err)
	}
	if res.value != 14 {
		t.Errorf("expected 14, got %d", res.value)
	}

	res, err = s.eval("if (a) { return 1; } else { return 2; }\n")
	if err != nil || !res.hasVal || res.value != 1 || res.kept {
		t.Errorf("expected return value 1, got %+v, %v", res, err)
	}

	if got := s.source(); got != "int a = 6;\nint b = a * 7;\n" {
		t.Errorf("unexpected session source %q", got)
	}
}

func TestSessionErrorsAreNotKept(t *testing.T) {
	s := newTestSession(t)

	for _, input := range []string{"int a = ;\n", "b = 1;\n", "int z = 0; z = 1 / z;\n", "int x = 1 $ 2;\n"} {
		if _, err := s.eval(input); err == nil {
			t.Errorf("%q: expected error", input)
		}
	}
	if s.source() != "" {
		t.Errorf("failed inputs leaked into the session: %q", s.source())
	}

	if _, err := s.eval("int a = 1;\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.eval("int a = 2;\n"); err == nil {
		t.Error("expected redeclaration error")
	}
	s.reset()
	if _, err := s.eval("int a = 2;\n"); err != nil {
		t.Errorf("after reset: %v", err)
	}
}

func TestTokensToJSON(t *testing.T) {
	tokens, _ := lexer.New("x = 12;", "t.c").Tokenize()
	toks := tokensToJSON(tokens)
	if len(toks) != 5 {
		t.Fatalf("expected 5 tokens, got %d", len(toks))
	}
	if toks[2].Kind != "NUMBER" || toks[2].Offset != 4 || toks[2].End != 6 {
		t.Errorf("unexpected number token: %+v", toks[2])
	}
	if !strings.EqualFold(toks[4].Kind, "EOF") {
		t.Errorf("expected EOF last, got %+v", toks[4])
	}
}
