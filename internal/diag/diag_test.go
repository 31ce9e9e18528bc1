package diag

import (
	"minic/internal/span"
	"strings"
	"testing"
)

func TestDiagnosticString(t *testing.T) {
	s := span.Span{Start: span.Position{Offset: 4, Line: 1, Column: 5}}
	d := Errorf("E2001", s, "expected '%s', got '%s'", ";", "x")
	d.Hint = "add a semicolon"
	want := "[E2001] error at 1:5: expected ';', got 'x' (hint: add a semicolon)"
	if d.String() != want {
		t.Errorf("expected %q, got %q", want, d.String())
	}
}

func TestList(t *testing.T) {
	var l List
	if l.HasErrors() {
		t.Error("empty list has no errors")
	}
	l = append(l, Warningf("W0001", span.Span{}, "unused"))
	if l.HasErrors() {
		t.Error("warnings only should not count as errors")
	}
	l = append(l, Errorf("E1001", span.Span{}, "bad char"))
	if !l.HasErrors() {
		t.Error("expected HasErrors")
	}
	if got := strings.Count(l.Error(), "\n"); got != 1 {
		t.Errorf("expected two lines, got %q", l.Error())
	}
}
