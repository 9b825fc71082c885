package rewrite

import (
	"sort"

	"impulse/internal/analysis"
)

// mutationEdits rewrites signal mutation sites to expression sequences
// that mutate the peeked value and notify afterwards. Sites rooted in
// static bindings are diagnostic material, not rewrite targets.
//
// Sites are processed by descending start offset so that a site nested in
// another's argument list is rebuilt before the outer site slices it.
func (r *componentRewriter) mutationEdits(markupOnly bool) error {
	var sites []analysis.Mutation
	for _, m := range r.ca.Mutations {
		if m.RootKind != analysis.KindSignal {
			continue
		}
		if markupOnly && !m.MarkupReferenced {
			continue
		}
		sites = append(sites, m)
	}
	sort.Slice(sites, func(i, j int) bool {
		if sites[i].Span.Start != sites[j].Span.Start {
			return sites[i].Span.Start > sites[j].Span.Start
		}
		return sites[i].Span.End > sites[j].Span.End
	})
	for i := range sites {
		if err := r.rewriteMutation(&sites[i]); err != nil {
			return err
		}
	}
	return nil
}

// rewriteMutation replaces one site with
//
//	(<pre><root>.peek()<post>, <root>.notify())
//
// where pre and post are the site's current text before and after the root
// identifier. One formula covers all five shapes: for a method call pre is
// empty and post carries the call, for delete pre is the keyword, for a
// bulk-assign helper pre is the callee up to the root and post the
// remaining arguments. Slicing pre and post keeps every side-effecting
// subexpression exactly once, and the root's own pending .value read
// rewrite sits outside both slices and is dropped with the overwrite.
func (r *componentRewriter) rewriteMutation(m *analysis.Mutation) error {
	start, end := int(m.Span.Start), int(m.Span.End)
	pre, err := r.buf.Slice(start, int(m.RootSpan.Start))
	if err != nil {
		return err
	}
	post, err := r.buf.Slice(int(m.RootSpan.End), end)
	if err != nil {
		return err
	}
	text := "(" + pre + m.Root + ".peek()" + post + ", " + m.Root + ".notify())"
	return r.buf.Overwrite(start, end, text)
}
