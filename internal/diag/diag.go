// Package diag implements the compiler's source-position and diagnostic
// model. Every pass accumulates diagnostics here instead of panicking or
// returning an error value; a pass that hits a problem keeps going with a
// best-effort placeholder (an Error type, a nil symbol) so that later
// passes can still find and report more problems in the same run.
package diag

import "fmt"

// Pos is one point in a source file. Index is the byte offset the rest of
// the compiler slices on; Line and Column exist only to print diagnostics.
type Pos struct {
	File   string
	Line   int // 1-based
	Column int // 1-based
	Index  int32
}

// Span is a (start, end) range of source text, always within one file.
type Span struct {
	Start Pos
	End   Pos
}

// Join returns the smallest span covering both a and b. It assumes both
// spans are in the same file; callers that join across files have already
// made a mistake the caller should catch, not this function.
func Join(a, b Span) Span {
	start, end := a.Start, a.End
	if b.Start.Index < start.Index {
		start = b.Start
	}
	if b.End.Index > end.Index {
		end = b.End
	}
	return Span{Start: start, End: end}
}

// Adjacent reports whether b begins exactly where a ends, with no bytes
// between them. The parser uses this to require "Foo<Bar>" to be written
// with no space before "<" when disambiguating template specialization
// from a less-than comparison.
func Adjacent(a, b Span) bool {
	return a.Start.File == b.Start.File && a.End.Index == b.Start.Index
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.Start.File, s.Start.Line, s.Start.Column)
}

// Label pairs a span with the text that should be printed alongside it.
type Label struct {
	Span Span
	Text string
}

// Kind distinguishes the three diagnostic shapes from spec.md §7. A
// WithHint error has both a primary and a secondary label; a WithNote
// error attaches free text with no second location.
type Kind int

const (
	Standard Kind = iota
	WithNote
	WithHint
)

// Error is one diagnostic. It always carries a primary Label. Note is set
// only for Kind == WithNote, Hint only for Kind == WithHint.
type Error struct {
	Kind    Kind
	Primary Label
	Note    string
	Hint    *Label
}

func NewError(span Span, text string) Error {
	return Error{Kind: Standard, Primary: Label{Span: span, Text: text}}
}

func NewErrorWithNote(span Span, text string, note string) Error {
	return Error{Kind: WithNote, Primary: Label{Span: span, Text: text}, Note: note}
}

func NewErrorWithHint(span Span, text string, hintSpan Span, hintText string) Error {
	return Error{
		Kind:    WithHint,
		Primary: Label{Span: span, Text: text},
		Hint:    &Label{Span: hintSpan, Text: hintText},
	}
}

func (e Error) String() string {
	switch e.Kind {
	case WithNote:
		return fmt.Sprintf("%s: error: %s\nnote: %s", e.Primary.Span, e.Primary.Text, e.Note)
	case WithHint:
		return fmt.Sprintf("%s: error: %s\n%s: %s", e.Primary.Span, e.Primary.Text, e.Hint.Span, e.Hint.Text)
	default:
		return fmt.Sprintf("%s: error: %s", e.Primary.Span, e.Primary.Text)
	}
}
