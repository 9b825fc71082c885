package rewrite

import (
	"sort"
	"strings"

	"impulse/internal/analysis"
)

// markupLower replaces every lowerable markup element with an h() call.
// Elements are processed by descending start offset, so a nested element
// is rebuilt before its parent slices the child span, and the parent call
// embeds the child's generated call.
//
// Skipped elements keep their source text. A lowered parent around a
// skipped child embeds the child's original markup unchanged; the host
// keeps markup syntax enabled for exactly this fallback.
func (r *componentRewriter) markupLower() error {
	order := make([]*analysis.MarkupElement, 0, len(r.ca.Elements))
	for i := range r.ca.Elements {
		order = append(order, &r.ca.Elements[i])
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].Span.Start != order[j].Span.Start {
			return order[i].Span.Start > order[j].Span.Start
		}
		return order[i].Span.End < order[j].Span.End
	})
	for _, el := range order {
		if el.Skip {
			continue
		}
		if err := r.lowerElement(el); err != nil {
			return err
		}
	}
	return nil
}

func (r *componentRewriter) lowerElement(el *analysis.MarkupElement) error {
	parts := []string{r.elementTag(el)}

	props, err := r.elementProps(el)
	if err != nil {
		return err
	}
	parts = append(parts, props)

	children, err := r.elementChildren(el)
	if err != nil {
		return err
	}
	parts = append(parts, children...)

	r.used.H = true
	call := "h(" + strings.Join(parts, ", ") + ")"
	return r.buf.Overwrite(int(el.Span.Start), int(el.Span.End), call)
}

// elementTag renders the first h() argument: the Fragment marker, the
// component value, or the quoted intrinsic tag name. Namespaced tags are
// not expressions, so they quote like intrinsics.
func (r *componentRewriter) elementTag(el *analysis.MarkupElement) string {
	switch {
	case el.Tag == "":
		r.used.Fragment = true
		return "Fragment"
	case el.TagIsComponent && !strings.Contains(el.Tag, ":"):
		return el.Tag
	default:
		return `"` + el.Tag + `"`
	}
}

// elementProps renders the props object. Reactive attribute expressions
// become getters so consumers re-evaluate them per access; everything else
// binds once at creation.
func (r *componentRewriter) elementProps(el *analysis.MarkupElement) (string, error) {
	if len(el.Attrs) == 0 {
		return "null", nil
	}
	entries := make([]string, 0, len(el.Attrs))
	for _, a := range el.Attrs {
		switch a.Kind {
		case analysis.AttrBoolean:
			entries = append(entries, jsKey(a.Name)+": true")
		case analysis.AttrString:
			value, err := r.buf.Slice(int(a.ValueSpan.Start), int(a.ValueSpan.End))
			if err != nil {
				return "", err
			}
			entries = append(entries, jsKey(a.Name)+": "+value)
		case analysis.AttrExpression:
			value, err := r.buf.Slice(int(a.ValueSpan.Start), int(a.ValueSpan.End))
			if err != nil {
				return "", err
			}
			if a.Reactive {
				entries = append(entries, "get "+jsKey(a.Name)+"() { return "+value+"; }")
			} else {
				entries = append(entries, jsKey(a.Name)+": "+value)
			}
		case analysis.AttrSpread:
			value, err := r.buf.Slice(int(a.ValueSpan.Start), int(a.ValueSpan.End))
			if err != nil {
				return "", err
			}
			entries = append(entries, "..."+value)
		}
	}
	return "{ " + strings.Join(entries, ", ") + " }", nil
}

// elementChildren renders the child arguments. Reactive expression
// children become thunks for the same reason reactive attributes become
// getters.
func (r *componentRewriter) elementChildren(el *analysis.MarkupElement) ([]string, error) {
	var out []string
	for _, c := range el.Children {
		switch c.Kind {
		case analysis.ChildElement:
			text, err := r.buf.Slice(int(c.Span.Start), int(c.Span.End))
			if err != nil {
				return nil, err
			}
			out = append(out, text)
		case analysis.ChildText:
			out = append(out, jsQuote(c.Text))
		case analysis.ChildExpression:
			expr, err := r.buf.Slice(int(c.ExprSpan.Start), int(c.ExprSpan.End))
			if err != nil {
				return nil, err
			}
			if c.Reactive {
				out = append(out, "() => "+expr)
			} else {
				out = append(out, expr)
			}
		}
	}
	return out, nil
}

// jsKey renders an object literal key, quoting names that are not plain
// identifiers (data-id, xlink:href).
func jsKey(name string) string {
	if identLike(name) {
		return name
	}
	return `"` + name + `"`
}

// jsQuote renders a double-quoted JS string literal. Go's quoting is close
// but emits \U escapes JS does not know, so the escape set is spelled out.
func jsQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
