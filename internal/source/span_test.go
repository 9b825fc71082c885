package source

import (
	"testing"
)

func TestSpan_ShiftLeft(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		shift    uint32
		expected Span
	}{
		{
			name:     "shift normal span left by 5",
			span:     Span{File: 1, Start: 10, End: 20},
			shift:    5,
			expected: Span{File: 1, Start: 5, End: 15},
		},
		{
			name:     "shift span left by 0",
			span:     Span{File: 1, Start: 10, End: 20},
			shift:    0,
			expected: Span{File: 1, Start: 10, End: 20},
		},
		{
			name:     "shift equals start - boundary case",
			span:     Span{File: 1, Start: 10, End: 20},
			shift:    10,
			expected: Span{File: 1, Start: 0, End: 10},
		},
		{
			name:     "shift larger than start - no-op",
			span:     Span{File: 1, Start: 10, End: 20},
			shift:    15,
			expected: Span{File: 1, Start: 10, End: 20},
		},
		{
			name:     "shift zero-length span",
			span:     Span{File: 1, Start: 10, End: 10},
			shift:    3,
			expected: Span{File: 1, Start: 7, End: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.span.ShiftLeft(tt.shift)
			if result != tt.expected {
				t.Errorf("ShiftLeft() = %+v, want %+v", result, tt.expected)
			}
			if result.File != tt.span.File {
				t.Errorf("File ID changed: got %d, want %d", result.File, tt.span.File)
			}
		})
	}
}

func TestSpan_ShiftRight(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		shift    uint32
		expected Span
	}{
		{
			name:     "shift normal span right by 5",
			span:     Span{File: 1, Start: 10, End: 20},
			shift:    5,
			expected: Span{File: 1, Start: 15, End: 25},
		},
		{
			name:     "shift span right by 0",
			span:     Span{File: 1, Start: 10, End: 20},
			shift:    0,
			expected: Span{File: 1, Start: 10, End: 20},
		},
		{
			name:     "shift zero-length span",
			span:     Span{File: 1, Start: 10, End: 10},
			shift:    5,
			expected: Span{File: 1, Start: 15, End: 15},
		},
		{
			name:     "shift overflowing end - no-op",
			span:     Span{File: 1, Start: 0xFFFFFFF0, End: 0xFFFFFFFF},
			shift:    1,
			expected: Span{File: 1, Start: 0xFFFFFFF0, End: 0xFFFFFFFF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.span.ShiftRight(tt.shift)
			if result != tt.expected {
				t.Errorf("ShiftRight() = %+v, want %+v", result, tt.expected)
			}
			if result.File != tt.span.File {
				t.Errorf("File ID changed: got %d, want %d", result.File, tt.span.File)
			}
		})
	}
}

func TestSpan_CollapseToStart(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		expected Span
	}{
		{
			name:     "normal span",
			span:     Span{File: 1, Start: 10, End: 20},
			expected: Span{File: 1, Start: 10, End: 10},
		},
		{
			name:     "already zero-length span",
			span:     Span{File: 1, Start: 15, End: 15},
			expected: Span{File: 1, Start: 15, End: 15},
		},
		{
			name:     "span at position 0",
			span:     Span{File: 2, Start: 0, End: 100},
			expected: Span{File: 2, Start: 0, End: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.span.CollapseToStart()
			if result != tt.expected {
				t.Errorf("CollapseToStart() = %+v, want %+v", result, tt.expected)
			}
			if result.Start != result.End {
				t.Errorf("Result is not zero-length: Start=%d, End=%d", result.Start, result.End)
			}
		})
	}
}

func TestSpan_CollapseToEnd(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		expected Span
	}{
		{
			name:     "normal span",
			span:     Span{File: 1, Start: 10, End: 20},
			expected: Span{File: 1, Start: 20, End: 20},
		},
		{
			name:     "already zero-length span",
			span:     Span{File: 1, Start: 15, End: 15},
			expected: Span{File: 1, Start: 15, End: 15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.span.CollapseToEnd()
			if result != tt.expected {
				t.Errorf("CollapseToEnd() = %+v, want %+v", result, tt.expected)
			}
			if result.Start != result.End {
				t.Errorf("Result is not zero-length: Start=%d, End=%d", result.Start, result.End)
			}
		})
	}
}

func TestSpan_Overlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected bool
	}{
		{
			name:     "disjoint spans",
			a:        Span{File: 1, Start: 0, End: 5},
			b:        Span{File: 1, Start: 5, End: 10},
			expected: false,
		},
		{
			name:     "overlapping spans",
			a:        Span{File: 1, Start: 0, End: 6},
			b:        Span{File: 1, Start: 5, End: 10},
			expected: true,
		},
		{
			name:     "nested spans",
			a:        Span{File: 1, Start: 0, End: 20},
			b:        Span{File: 1, Start: 5, End: 10},
			expected: true,
		},
		{
			name:     "zero-length span never overlaps",
			a:        Span{File: 1, Start: 5, End: 5},
			b:        Span{File: 1, Start: 0, End: 10},
			expected: false,
		},
		{
			name:     "different files",
			a:        Span{File: 1, Start: 0, End: 10},
			b:        Span{File: 2, Start: 0, End: 10},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.expected {
				t.Errorf("Overlaps() = %v, want %v", got, tt.expected)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.expected {
				t.Errorf("Overlaps() is not symmetric: reversed = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSpan_Cover(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected Span
	}{
		{
			name:     "extend right",
			a:        Span{File: 1, Start: 0, End: 5},
			b:        Span{File: 1, Start: 3, End: 10},
			expected: Span{File: 1, Start: 0, End: 10},
		},
		{
			name:     "extend left",
			a:        Span{File: 1, Start: 5, End: 10},
			b:        Span{File: 1, Start: 0, End: 7},
			expected: Span{File: 1, Start: 0, End: 10},
		},
		{
			name:     "contained span changes nothing",
			a:        Span{File: 1, Start: 0, End: 10},
			b:        Span{File: 1, Start: 3, End: 6},
			expected: Span{File: 1, Start: 0, End: 10},
		},
		{
			name:     "different file ignored",
			a:        Span{File: 1, Start: 5, End: 10},
			b:        Span{File: 2, Start: 0, End: 100},
			expected: Span{File: 1, Start: 5, End: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.expected {
				t.Errorf("Cover() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}
