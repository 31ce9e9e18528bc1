// Package span provides source position and span types used across the compiler.
package span

import "fmt"

// Position represents a position in source code.
type Position struct {
	Offset int `json:"offset"` // byte offset from beginning of source
	Line   int `json:"line"`   // 1-based line number
	Column int `json:"column"` // 1-based column number
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span represents a range in source code [Start, End).
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

func (s Span) String() string {
	return fmt.Sprintf("%s..%s", s.Start, s.End)
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

// Merge returns the smallest span covering both s and o.
func (s Span) Merge(o Span) Span {
	out := s
	if o.Start.Offset < out.Start.Offset {
		out.Start = o.Start
	}
	if o.End.Offset > out.End.Offset {
		out.End = o.End
	}
	return out
}

// Text returns the slice of source covered by the span.
func (s Span) Text(source string) string {
	if s.Start.Offset < 0 || s.End.Offset > len(source) || s.Start.Offset > s.End.Offset {
		return ""
	}
	return source[s.Start.Offset:s.End.Offset]
}
