package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) inside one file.
type Span struct {
	File  FileID
	Start uint32 // inclusive
	End   uint32 // exclusive
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Contains reports whether the byte offset falls inside the span.
func (s Span) Contains(off uint32) bool {
	return off >= s.Start && off < s.End
}

// ContainsSpan reports whether other lies fully inside s (same file).
func (s Span) ContainsSpan(other Span) bool {
	return s.File == other.File && other.Start >= s.Start && other.End <= s.End
}

// Overlaps reports whether the two spans share at least one byte.
// Zero-length spans never overlap anything.
func (s Span) Overlaps(other Span) bool {
	if s.File != other.File {
		return false
	}
	return s.Start < other.End && other.Start < s.End
}

// Cover extends s to include other. Spans from different files are
// incomparable; s is returned unchanged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// CollapseToStart returns the zero-length span at s.Start.
func (s Span) CollapseToStart() Span {
	s.End = s.Start
	return s
}

// CollapseToEnd returns the zero-length span at s.End.
func (s Span) CollapseToEnd() Span {
	s.Start = s.End
	return s
}

// ShiftLeft moves the span n bytes toward the file start. A shift that
// would move Start below zero is a no-op.
func (s Span) ShiftLeft(n uint32) Span {
	if n > s.Start {
		return s
	}
	s.Start -= n
	s.End -= n
	return s
}

// ShiftRight moves the span n bytes toward the file end. A shift that
// would overflow End is a no-op.
func (s Span) ShiftRight(n uint32) Span {
	if s.End+n < s.End {
		return s
	}
	s.Start += n
	s.End += n
	return s
}
