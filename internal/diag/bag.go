package diag

import (
	"fmt"
	"sort"
)

// Bag collects diagnostics up to a capacity cap. Producers keep emitting
// past the cap; extra entries are dropped, never an error.
type Bag struct {
	items []*Diagnostic
	max   uint16
}

func NewBag(max int) *Bag {
	if max < 0 {
		max = 0
	}
	return &Bag{
		items: make([]*Diagnostic, 0, max),
		max:   uint16(max),
	}
}

// Add appends a diagnostic unless the cap is reached. Returns false when
// the diagnostic was dropped.
func (b *Bag) Add(d *Diagnostic) bool {
	if d == nil {
		return false
	}
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 {
	return b.max
}

// HasErrors reports whether at least one diagnostic is SevError.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether at least one diagnostic is SevWarning or worse.
func (b *Bag) HasWarnings() bool {
	for _, d := range b.items {
		if d.Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the collected diagnostics. The slice aliases the bag's
// internal storage; do not modify it.
func (b *Bag) Items() []*Diagnostic {
	return b.items
}

// CountBySeverity tallies diagnostics per severity level.
func (b *Bag) CountBySeverity() (errors, warnings, infos int) {
	for _, d := range b.items {
		switch d.Severity {
		case SevError:
			errors++
		case SevWarning:
			warnings++
		default:
			infos++
		}
	}
	return
}

// Merge appends the other bag's diagnostics, growing the cap when needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	newTotal := len(b.items) + len(other.items)
	if newTotal > int(b.max) && newTotal <= 0xFFFF {
		b.max = uint16(newTotal)
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by file, start, end, severity (desc), code for a
// stable, deterministic output order.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Filter keeps only diagnostics for which keep returns true.
func (b *Bag) Filter(keep func(*Diagnostic) bool) {
	newItems := b.items[:0]
	for _, d := range b.items {
		if keep(d) {
			newItems = append(newItems, d)
		}
	}
	b.items = newItems
}

// Transform applies fn to every diagnostic in place. Returning nil drops
// the entry.
func (b *Bag) Transform(fn func(*Diagnostic) *Diagnostic) {
	newItems := b.items[:0]
	for _, d := range b.items {
		if nd := fn(d); nd != nil {
			newItems = append(newItems, nd)
		}
	}
	b.items = newItems
}

// Dedup removes duplicates by code + primary span.
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.items))
	newItems := make([]*Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		key := fmt.Sprintf("%d:%s", d.Code, d.Primary.String())
		if seen[key] {
			continue
		}
		seen[key] = true
		newItems = append(newItems, d)
	}
	b.items = newItems
}
