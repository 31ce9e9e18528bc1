package span

import "testing"

func at(start, end int) Span {
	return Span{
		Start: Position{Offset: start, Line: 1, Column: start + 1},
		End:   Position{Offset: end, Line: 1, Column: end + 1},
	}
}

func TestMerge(t *testing.T) {
	got := at(4, 6).Merge(at(1, 2))
	if got.Start.Offset != 1 || got.End.Offset != 6 {
		t.Fatalf("expected 1..6, got %d..%d", got.Start.Offset, got.End.Offset)
	}
	if got.Start.Column != 2 {
		t.Errorf("expected start column 2, got %d", got.Start.Column)
	}

	inner := at(0, 10).Merge(at(3, 4))
	if inner != at(0, 10) {
		t.Errorf("merging a contained span changed the outer span: %v", inner)
	}
}

func TestText(t *testing.T) {
	src := "abc = 3;"
	if got := at(0, 3).Text(src); got != "abc" {
		t.Errorf("expected %q, got %q", "abc", got)
	}
	if got := at(5, 40).Text(src); got != "" {
		t.Errorf("out-of-range span should give empty text, got %q", got)
	}
	if at(2, 7).Len() != 5 {
		t.Errorf("expected len 5, got %d", at(2, 7).Len())
	}
}
