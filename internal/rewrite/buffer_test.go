package rewrite

import (
	"strings"
	"testing"
)

func mustAppendLeft(t *testing.T, b *Buffer, pos int, text string) {
	t.Helper()
	if err := b.AppendLeft(pos, text); err != nil {
		t.Fatalf("AppendLeft(%d, %q): %v", pos, text, err)
	}
}

func mustAppendRight(t *testing.T, b *Buffer, pos int, text string) {
	t.Helper()
	if err := b.AppendRight(pos, text); err != nil {
		t.Fatalf("AppendRight(%d, %q): %v", pos, text, err)
	}
}

func mustSlice(t *testing.T, b *Buffer, start, end int) string {
	t.Helper()
	s, err := b.Slice(start, end)
	if err != nil {
		t.Fatalf("Slice(%d, %d): %v", start, end, err)
	}
	return s
}

func TestBufferUnchanged(t *testing.T) {
	b := NewBuffer([]byte("const x = 1;"))
	if b.HasChanged() {
		t.Error("fresh buffer reports changes")
	}
	if got := b.String(); got != "const x = 1;" {
		t.Errorf("String() = %q", got)
	}
}

func TestInsertOrderingAtSamePosition(t *testing.T) {
	// Left-attached inserts render in call order, all before
	// right-attached ones; prepend variants jump their own queue.
	b := NewBuffer([]byte("ab"))
	mustAppendLeft(t, b, 1, "1")
	mustAppendLeft(t, b, 1, "2")
	mustAppendRight(t, b, 1, "3")
	mustAppendRight(t, b, 1, "4")
	if err := b.PrependLeft(1, "0"); err != nil {
		t.Fatal(err)
	}
	if err := b.PrependRight(1, "x"); err != nil {
		t.Fatal(err)
	}
	if got := b.String(); got != "a012x34b" {
		t.Errorf("String() = %q, want %q", got, "a012x34b")
	}
}

func TestInsertAtEnds(t *testing.T) {
	b := NewBuffer([]byte("body"))
	mustAppendLeft(t, b, 0, "<")
	mustAppendRight(t, b, 4, ">")
	if err := b.PrependLeft(0, "!"); err != nil {
		t.Fatal(err)
	}
	if got := b.String(); got != "!<body>" {
		t.Errorf("String() = %q, want %q", got, "!<body>")
	}
}

func TestOverwriteBasic(t *testing.T) {
	b := NewBuffer([]byte("let count = 0;"))
	if err := b.Overwrite(4, 9, "total"); err != nil {
		t.Fatal(err)
	}
	if got := b.String(); got != "let total = 0;" {
		t.Errorf("String() = %q", got)
	}
}

func TestOverwriteBoundaryInserts(t *testing.T) {
	// Left-attached at start and right-attached at end survive an
	// overwrite; inserts facing into the range are dropped with it.
	b := NewBuffer([]byte("abcdef"))
	mustAppendLeft(t, b, 2, "L")
	mustAppendRight(t, b, 2, "R")
	mustAppendLeft(t, b, 4, "l")
	mustAppendRight(t, b, 4, "r")
	mustAppendLeft(t, b, 3, "mid")
	if err := b.Overwrite(2, 4, "XY"); err != nil {
		t.Fatal(err)
	}
	if got := b.String(); got != "abLXYref" {
		t.Errorf("String() = %q, want %q", got, "abLXYref")
	}
}

func TestOverwriteErrors(t *testing.T) {
	b := NewBuffer([]byte("abcdef"))
	if err := b.Overwrite(3, 3, "x"); err == nil {
		t.Error("empty-range overwrite should fail")
	}
	if err := b.Overwrite(4, 99, "x"); err == nil {
		t.Error("out-of-range overwrite should fail")
	}
	if err := b.Overwrite(1, 5, "Z"); err != nil {
		t.Fatal(err)
	}
	// A later edit may cover the replaced range entirely but not split it.
	if err := b.Overwrite(2, 4, "y"); err == nil {
		t.Error("overwrite into the middle of a replaced range should fail")
	}
	if err := b.Overwrite(1, 5, "zz"); err != nil {
		t.Errorf("re-overwriting the exact range should work: %v", err)
	}
	if got := b.String(); got != "azzf" {
		t.Errorf("String() = %q, want %q", got, "azzf")
	}
}

func TestRemove(t *testing.T) {
	b := NewBuffer([]byte("hello cruel world"))
	if err := b.Remove(5, 11); err != nil {
		t.Fatal(err)
	}
	if got := b.String(); got != "hello world" {
		t.Errorf("String() = %q", got)
	}
	if err := b.Remove(3, 3); err != nil {
		t.Errorf("empty remove should be a no-op: %v", err)
	}
}

func TestSliceCurrentText(t *testing.T) {
	b := NewBuffer([]byte("items.push(count)"))
	// Read-rewrite inside the argument list.
	mustAppendLeft(t, b, 16, ".value")
	if got := mustSlice(t, b, 11, 16); got != "count.value" {
		t.Errorf("args slice = %q, want %q", got, "count.value")
	}

	// A slice starting at a boundary excludes left-attached inserts there
	// but keeps left-attached inserts at its end.
	mustAppendLeft(t, b, 5, ".value")
	if got := mustSlice(t, b, 5, 16); got != ".push(count.value" {
		t.Errorf("path slice = %q, want %q", got, ".push(count.value")
	}
	// But includes right-attached inserts at its start.
	mustAppendRight(t, b, 5, "?")
	if got := mustSlice(t, b, 5, 10); got != "?.push" {
		t.Errorf("slice = %q, want %q", got, "?.push")
	}

	if got := mustSlice(t, b, 3, 3); got != "" {
		t.Errorf("zero-length slice = %q", got)
	}
	if got := mustSlice(t, b, 0, b.Len()); !strings.Contains(got, "count.value") {
		t.Errorf("full slice lost interior insert: %q", got)
	}
}

func TestSliceOverwrittenRange(t *testing.T) {
	b := NewBuffer([]byte("abcdef"))
	if err := b.Overwrite(2, 4, "XY"); err != nil {
		t.Fatal(err)
	}
	if got := mustSlice(t, b, 0, 6); got != "abXYef" {
		t.Errorf("slice = %q", got)
	}
	if got := mustSlice(t, b, 2, 4); got != "XY" {
		t.Errorf("slice of replaced range = %q", got)
	}
	if _, err := b.Slice(3, 6); err == nil {
		t.Error("slice anchored inside a replaced range should fail")
	}
	if _, err := b.Slice(0, 3); err == nil {
		t.Error("slice ending inside a replaced range should fail")
	}
}

func TestReadThenWrapComposition(t *testing.T) {
	// Appending ".value" to a read before wrapping the enclosing
	// initializer must land the suffix inside the wrapper even though both
	// inserts target the same offset.
	src := "const total = 10 * quantity;"
	b := NewBuffer([]byte(src))
	initStart := strings.Index(src, "10")
	initEnd := strings.Index(src, ";")

	mustAppendLeft(t, b, initEnd, ".value") // read of `quantity` ends at initEnd
	mustAppendRight(t, b, initStart, "computed(() => ")
	mustAppendLeft(t, b, initEnd, ")")

	want := "const total = computed(() => 10 * quantity.value);"
	if got := b.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestMutationRebuildComposition(t *testing.T) {
	// A mutation rewrite slices the already-rewritten call tail out of the
	// buffer, then overwrites the whole site. The root's own ".value"
	// insert sits inside the overwritten range and is dropped; rewrites in
	// the argument list are preserved by the slice.
	src := "items.push(getNext());"
	b := NewBuffer([]byte(src))
	rootEnd := len("items")
	siteEnd := strings.Index(src, ";")

	mustAppendLeft(t, b, rootEnd, ".value")
	tail := mustSlice(t, b, rootEnd, siteEnd)
	if tail != ".push(getNext())" {
		t.Fatalf("tail slice = %q", tail)
	}
	rebuilt := "(items.peek()" + tail + ", items.notify())"
	if err := b.Overwrite(0, siteEnd, rebuilt); err != nil {
		t.Fatal(err)
	}

	want := "(items.peek().push(getNext()), items.notify());"
	got := b.String()
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if strings.Count(got, "getNext()") != 1 {
		t.Errorf("argument duplicated or lost: %q", got)
	}
}

func TestPendingInserts(t *testing.T) {
	b := NewBuffer([]byte("count + 1"))
	if got := b.PendingLeft(5); got != "" {
		t.Errorf("PendingLeft before insert = %q", got)
	}
	mustAppendLeft(t, b, 5, ".value")
	if got := b.PendingLeft(5); got != ".value" {
		t.Errorf("PendingLeft = %q", got)
	}
	if got := b.PendingRight(5); got != "" {
		t.Errorf("PendingRight = %q", got)
	}
	mustAppendRight(t, b, 0, "(")
	if got := b.PendingRight(0); got != "(" {
		t.Errorf("PendingRight(0) = %q", got)
	}
	mustAppendLeft(t, b, 0, "// x\n")
	if got := b.PendingLeft(0); got != "// x\n" {
		t.Errorf("PendingLeft(0) = %q", got)
	}
}
