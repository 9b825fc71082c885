package diag

import (
	"testing"

	"impulse/internal/source"
)

func TestBag_AddRespectsCap(t *testing.T) {
	b := NewBag(2)

	if !b.Add(New(SevWarning, RctNonReactiveMutation, source.Span{}, "one")) {
		t.Error("expected first Add to succeed")
	}
	if !b.Add(New(SevWarning, RctNonReactiveMutation, source.Span{}, "two")) {
		t.Error("expected second Add to succeed")
	}
	if b.Add(New(SevWarning, RctNonReactiveMutation, source.Span{}, "three")) {
		t.Error("expected Add past cap to be dropped")
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
}

func TestBag_Sort(t *testing.T) {
	b := NewBag(8)
	b.Add(New(SevWarning, RctPropsDestructuring, source.Span{File: 1, Start: 10, End: 12}, "later"))
	b.Add(New(SevError, SynParseError, source.Span{File: 0, Start: 5, End: 6}, "earlier file"))
	b.Add(New(SevWarning, RctNonReactiveMutation, source.Span{File: 1, Start: 2, End: 4}, "earlier offset"))
	b.Add(New(SevError, SynParseError, source.Span{File: 1, Start: 2, End: 4}, "same span, higher severity"))

	b.Sort()

	items := b.Items()
	wantOrder := []string{"earlier file", "same span, higher severity", "earlier offset", "later"}
	for i, want := range wantOrder {
		if items[i].Message != want {
			t.Errorf("items[%d].Message = %q, want %q", i, items[i].Message, want)
		}
	}
}

func TestBag_Dedup(t *testing.T) {
	b := NewBag(8)
	span := source.Span{File: 0, Start: 3, End: 7}
	b.Add(New(SevWarning, RctNonReactiveMutation, span, "dup"))
	b.Add(New(SevWarning, RctNonReactiveMutation, span, "dup"))
	b.Add(New(SevWarning, RctPropsDestructuring, span, "different code survives"))

	b.Dedup()

	if b.Len() != 2 {
		t.Fatalf("Len() after Dedup = %d, want 2", b.Len())
	}
}

func TestBag_Filter(t *testing.T) {
	b := NewBag(8)
	b.Add(New(SevError, SynParseError, source.Span{}, "keep"))
	b.Add(New(SevWarning, RctNonReactiveMutation, source.Span{}, "drop"))
	b.Add(New(SevInfo, RctInfo, source.Span{}, "drop too"))

	b.Filter(func(d *Diagnostic) bool { return d.Severity >= SevError })

	if b.Len() != 1 {
		t.Fatalf("Len() after Filter = %d, want 1", b.Len())
	}
	if b.Items()[0].Message != "keep" {
		t.Errorf("kept %q, want %q", b.Items()[0].Message, "keep")
	}
}

func TestBag_Transform(t *testing.T) {
	b := NewBag(8)
	b.Add(New(SevWarning, RctNonReactiveMutation, source.Span{}, "promoted"))
	b.Add(New(SevInfo, RctInfo, source.Span{}, "dropped"))

	b.Transform(func(d *Diagnostic) *Diagnostic {
		if d.Severity == SevInfo {
			return nil
		}
		d.Severity = SevError
		return d
	})

	if b.Len() != 1 {
		t.Fatalf("Len() after Transform = %d, want 1", b.Len())
	}
	if got := b.Items()[0].Severity; got != SevError {
		t.Errorf("Severity = %v, want %v", got, SevError)
	}
}

func TestBag_CountBySeverity(t *testing.T) {
	b := NewBag(8)
	b.Add(New(SevError, SynParseError, source.Span{}, "e"))
	b.Add(New(SevWarning, RctNonReactiveMutation, source.Span{}, "w1"))
	b.Add(New(SevWarning, RctPropsDestructuring, source.Span{}, "w2"))
	b.Add(New(SevInfo, RctInfo, source.Span{}, "i"))

	errors, warnings, infos := b.CountBySeverity()
	if errors != 1 || warnings != 2 || infos != 1 {
		t.Errorf("CountBySeverity() = (%d, %d, %d), want (1, 2, 1)", errors, warnings, infos)
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(8)
	r := NewDedupReporter(BagReporter{Bag: bag})

	span := source.Span{File: 0, Start: 1, End: 2}
	r.Report(RctNonReactiveMutation, SevWarning, span, "same", nil, nil)
	r.Report(RctNonReactiveMutation, SevWarning, span, "same", nil, nil)
	r.Report(RctNonReactiveMutation, SevWarning, span, "different message", nil, nil)

	if bag.Len() != 2 {
		t.Errorf("bag.Len() = %d, want 2", bag.Len())
	}
}
