package diag

import "strings"

// Source is a loaded file kept alive for the lifetime of Program, because
// diagnostics resolve line and column positions from its Content.
type Source struct {
	Name    string
	Content string

	// lineStarts[i] is the byte index where line i+1 (1-based) begins.
	// Computed lazily on first use and cached, mirroring the way
	// logger.Source resolves line/column from a byte offset on demand
	// instead of eagerly scanning every file up front.
	lineStarts []int32
}

func NewSource(name, content string) *Source {
	return &Source{Name: name, Content: content}
}

func (s *Source) ensureLineStarts() {
	if s.lineStarts != nil {
		return
	}
	starts := []int32{0}
	for i := 0; i < len(s.Content); i++ {
		if s.Content[i] == '\n' {
			starts = append(starts, int32(i+1))
		}
	}
	s.lineStarts = starts
}

// PositionFor converts a byte index into a (line, column) position.
func (s *Source) PositionFor(index int32) Pos {
	s.ensureLineStarts()
	lo, hi := 0, len(s.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s.lineStarts[mid] <= index {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line := lo + 1
	column := int(index-s.lineStarts[lo]) + 1
	return Pos{File: s.Name, Line: line, Column: column, Index: index}
}

// TextForSpan returns the literal source text a span covers.
func (s *Source) TextForSpan(span Span) string {
	return s.Content[span.Start.Index:span.End.Index]
}

// LineText returns the full line of text containing the given position,
// used when printing a diagnostic with its source line underlined.
func (s *Source) LineText(pos Pos) string {
	s.ensureLineStarts()
	start := s.lineStarts[pos.Line-1]
	end := int32(len(s.Content))
	if pos.Line < len(s.lineStarts) {
		end = s.lineStarts[pos.Line] - 1
	}
	if end < start {
		end = start
	}
	return strings.TrimRight(s.Content[start:end], "\r")
}
