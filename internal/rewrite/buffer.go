package rewrite

import (
	"fmt"
	"strings"
)

// chunk is one contiguous range of the original source. The buffer is a
// doubly-linked list of chunks; edits replace a chunk's content, inserts
// attach text to a chunk boundary.
//
// intro holds inserts attached to the right side of the chunk's start
// boundary, outro holds inserts attached to the left side of its end
// boundary. At any boundary the rendered order is therefore: outro of the
// chunk ending there, then intro of the chunk starting there.
type chunk struct {
	start, end int
	content    string
	intro      string
	outro      string
	edited     bool
	prev, next *chunk
}

func (c *chunk) contains(index int) bool {
	return c.start < index && index < c.end
}

func (c *chunk) edit(content string) {
	c.content = content
	c.intro = ""
	c.outro = ""
	c.edited = true
}

// Buffer is a position-addressable text-edit buffer over one source file.
//
// All positions are byte offsets into the original source; they stay valid
// no matter how many edits have been applied, which is what lets several
// independent passes write overlapping regions of the same file. Slice
// returns the current (edited) text of an original range, so later passes
// compose with earlier ones instead of clobbering them.
type Buffer struct {
	original string
	first    *chunk
	last     *chunk
	byStart  map[int]*chunk
	byEnd    map[int]*chunk
	searched *chunk
	// Inserts before the first byte and after the last one.
	intro string
	outro string
	dirty bool
}

// NewBuffer wraps src in an edit buffer. The buffer never mutates src.
func NewBuffer(src []byte) *Buffer {
	original := string(src)
	ch := &chunk{start: 0, end: len(original), content: original}
	b := &Buffer{
		original: original,
		first:    ch,
		last:     ch,
		byStart:  map[int]*chunk{0: ch},
		byEnd:    map[int]*chunk{len(original): ch},
		searched: ch,
	}
	return b
}

// Len returns the length of the original source.
func (b *Buffer) Len() int { return len(b.original) }

// Original returns the pristine source text.
func (b *Buffer) Original() string { return b.original }

// HasChanged reports whether any edit or insert has been applied.
func (b *Buffer) HasChanged() bool { return b.dirty }

func (b *Buffer) checkIndex(index int) error {
	if index < 0 || index > len(b.original) {
		return fmt.Errorf("position %d outside source of length %d", index, len(b.original))
	}
	return nil
}

// split ensures a chunk boundary exists at index.
func (b *Buffer) split(index int) error {
	if b.byStart[index] != nil || b.byEnd[index] != nil {
		return nil
	}
	if index == 0 || index == len(b.original) {
		return nil
	}
	ch := b.searched
	forward := index > ch.end
	for ch != nil {
		if ch.contains(index) {
			return b.splitChunk(ch, index)
		}
		if forward {
			ch = b.byStart[ch.end]
		} else {
			ch = b.byEnd[ch.start]
		}
	}
	return fmt.Errorf("no chunk contains position %d", index)
}

func (b *Buffer) splitChunk(ch *chunk, index int) error {
	if ch.edited && len(ch.content) > 0 {
		return fmt.Errorf("position %d lies inside replaced range %d..%d", index, ch.start, ch.end)
	}
	right := &chunk{
		start:   index,
		end:     ch.end,
		content: ch.content[index-ch.start:],
		outro:   ch.outro,
		edited:  ch.edited,
	}
	ch.content = ch.content[:index-ch.start]
	ch.end = index
	ch.outro = ""

	right.next = ch.next
	if right.next != nil {
		right.next.prev = right
	}
	right.prev = ch
	ch.next = right

	b.byEnd[index] = ch
	b.byStart[index] = right
	b.byEnd[right.end] = right
	if b.last == ch {
		b.last = right
	}
	b.searched = ch
	return nil
}

// AppendLeft inserts text at index, attached to the content on its left.
// Repeated inserts at the same position render in call order, before any
// right-attached inserts there.
func (b *Buffer) AppendLeft(index int, text string) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	if err := b.split(index); err != nil {
		return err
	}
	b.dirty = true
	if ch := b.byEnd[index]; ch != nil {
		ch.outro += text
	} else {
		b.intro += text
	}
	return nil
}

// PrependLeft is AppendLeft but renders before earlier left-attached
// inserts at the same position.
func (b *Buffer) PrependLeft(index int, text string) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	if err := b.split(index); err != nil {
		return err
	}
	b.dirty = true
	if ch := b.byEnd[index]; ch != nil {
		ch.outro = text + ch.outro
	} else {
		b.intro = text + b.intro
	}
	return nil
}

// AppendRight inserts text at index, attached to the content on its right.
func (b *Buffer) AppendRight(index int, text string) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	if err := b.split(index); err != nil {
		return err
	}
	b.dirty = true
	if ch := b.byStart[index]; ch != nil {
		ch.intro += text
	} else {
		b.outro += text
	}
	return nil
}

// PrependRight is AppendRight but renders before earlier right-attached
// inserts at the same position.
func (b *Buffer) PrependRight(index int, text string) error {
	if err := b.checkIndex(index); err != nil {
		return err
	}
	if err := b.split(index); err != nil {
		return err
	}
	b.dirty = true
	if ch := b.byStart[index]; ch != nil {
		ch.intro = text + ch.intro
	} else {
		b.outro = text + b.outro
	}
	return nil
}

// Overwrite replaces the original range [start, end) with text.
//
// Inserts attached to the outside of the range survive: left-attached at
// start and right-attached at end. Everything attached inside the range is
// dropped along with its text, so callers that need interior edits must
// Slice them out first and fold them into the replacement.
func (b *Buffer) Overwrite(start, end int, text string) error {
	if err := b.checkIndex(start); err != nil {
		return err
	}
	if err := b.checkIndex(end); err != nil {
		return err
	}
	if start >= end {
		return fmt.Errorf("cannot overwrite empty range %d..%d, use an insert", start, end)
	}
	if err := b.split(start); err != nil {
		return err
	}
	if err := b.split(end); err != nil {
		return err
	}
	first := b.byStart[start]
	last := b.byEnd[end]
	for ch := first; ch != last; {
		ch = ch.next
		if ch == nil {
			return fmt.Errorf("broken chunk chain overwriting %d..%d", start, end)
		}
		ch.edit("")
	}
	first.edit(text)
	b.dirty = true
	return nil
}

// Remove deletes the original range [start, end), dropping any inserts
// attached strictly inside it. Removing an empty range is a no-op.
func (b *Buffer) Remove(start, end int) error {
	if start == end {
		return b.checkIndex(start)
	}
	return b.Overwrite(start, end, "")
}

// Slice returns the current text of the original range [start, end),
// with all edits applied. Right-attached inserts at start and
// left-attached inserts at end are included; inserts attached outside the
// range are not. Slicing from or to a position strictly inside a replaced
// range is ambiguous and returns an error.
func (b *Buffer) Slice(start, end int) (string, error) {
	if err := b.checkIndex(start); err != nil {
		return "", err
	}
	if err := b.checkIndex(end); err != nil {
		return "", err
	}
	if start > end {
		return "", fmt.Errorf("inverted slice %d..%d", start, end)
	}
	if start == end {
		return "", nil
	}

	var sb strings.Builder
	ch := b.first
	for ch != nil && (ch.start > start || ch.end <= start) {
		ch = ch.next
	}
	if ch != nil && ch.edited && ch.start != start {
		return "", fmt.Errorf("slice start %d lies inside replaced range %d..%d", start, ch.start, ch.end)
	}

	startChunk := ch
	for ch != nil {
		if ch.intro != "" && (startChunk != ch || ch.start == start) {
			sb.WriteString(ch.intro)
		}
		containsEnd := ch.start < end && ch.end >= end
		if containsEnd && ch.edited && ch.end != end {
			return "", fmt.Errorf("slice end %d lies inside replaced range %d..%d", end, ch.start, ch.end)
		}
		from := 0
		if startChunk == ch {
			from = start - ch.start
		}
		to := len(ch.content)
		if containsEnd {
			to = len(ch.content) + end - ch.end
		}
		if from <= to && to <= len(ch.content) {
			sb.WriteString(ch.content[from:to])
		}
		if ch.outro != "" && (!containsEnd || ch.end == end) {
			sb.WriteString(ch.outro)
		}
		if containsEnd {
			break
		}
		ch = ch.next
	}
	return sb.String(), nil
}

// PendingLeft returns the left-attached insert text currently at index.
// Read-rewriting uses this to recognize positions it has already visited.
func (b *Buffer) PendingLeft(index int) string {
	if ch := b.byEnd[index]; ch != nil {
		return ch.outro
	}
	if index == 0 {
		return b.intro
	}
	return ""
}

// PendingRight returns the right-attached insert text currently at index.
func (b *Buffer) PendingRight(index int) string {
	if ch := b.byStart[index]; ch != nil {
		return ch.intro
	}
	if index == len(b.original) {
		return b.outro
	}
	return ""
}

// String renders the buffer's current content.
func (b *Buffer) String() string {
	var sb strings.Builder
	sb.WriteString(b.intro)
	for ch := b.first; ch != nil; ch = ch.next {
		sb.WriteString(ch.intro)
		sb.WriteString(ch.content)
		sb.WriteString(ch.outro)
	}
	sb.WriteString(b.outro)
	return sb.String()
}
