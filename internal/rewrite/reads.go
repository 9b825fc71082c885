package rewrite

import (
	"strings"
)

// rewriteReads appends ".value" after every read of the named bindings.
// Reads are tracked per transformer: the signal pass passes signal names,
// the computed pass computed names, and the two sets are disjoint.
//
// A pending ".value" insert at the same offset means the site was already
// rewritten, so running a pass twice leaves the buffer unchanged.
func (r *componentRewriter) rewriteReads(names map[string]bool) error {
	if len(names) == 0 {
		return nil
	}
	for _, site := range r.ca.Reads {
		if !names[site.Name] {
			continue
		}
		end := int(site.Span.End)
		if strings.HasPrefix(r.buf.PendingLeft(end), ".value") {
			continue
		}
		if err := r.buf.AppendLeft(end, ".value"); err != nil {
			return err
		}
	}
	return nil
}
