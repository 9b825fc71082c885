package analysis

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"impulse/internal/source"
	"impulse/internal/syntax"
)

// AttrKind describes how a markup attribute carries its value.
type AttrKind uint8

const (
	// AttrBoolean is a valueless attribute: `<input disabled />`.
	AttrBoolean AttrKind = iota
	// AttrString is a literal value: `<div class="app" />`.
	AttrString
	// AttrExpression is a braced value: `<div title={expr} />`.
	AttrExpression
	// AttrSpread splices an object into the props: `<div {...rest} />`.
	AttrSpread
)

// Attr is one attribute of a markup element.
type Attr struct {
	Name string
	Kind AttrKind
	Span source.Span
	// ValueSpan covers the string literal (quotes included), the inner
	// expression of a braced value, or the spread expression.
	ValueSpan source.Span
	// Reactive marks a braced value that reads a signal or computed
	// binding when evaluated, so consumers must re-read it lazily.
	Reactive bool
}

// ChildKind describes one child slot of a markup element.
type ChildKind uint8

const (
	ChildElement ChildKind = iota
	ChildText
	ChildExpression
)

// Child is one child of a markup element, in source order.
type Child struct {
	Kind ChildKind
	Span source.Span
	// Text is the collapsed text value for ChildText.
	Text string
	// ExprSpan is the inner expression for ChildExpression.
	ExprSpan source.Span
	Reactive bool
}

// MarkupElement is one element, self-closing element, or fragment found
// anywhere in a component body, including inside nested callbacks. The
// element list is flat; containment is recoverable from spans.
type MarkupElement struct {
	Span source.Span
	// Tag is empty for fragments. TagIsComponent marks capitalized,
	// member, and namespaced tags, which resolve as values rather than
	// intrinsic tag names.
	Tag            string
	TagIsComponent bool
	Attrs          []Attr
	Children       []Child
	// Skip marks elements (and elements under them) using constructs the
	// rewrite does not model; their source is left untouched.
	Skip bool
}

// JsxExpression records the reactivity of one braced expression embedded
// in markup, attribute values and expression children alike.
type JsxExpression struct {
	Span     source.Span // the braces
	ExprSpan source.Span // the inner expression
	Reactive bool
	// AttrName is set when the expression is an attribute value.
	AttrName string
}

// AnalyzeMarkup walks every markup node in the component body and returns
// the flat element list plus the reactivity record of every embedded
// expression. Variables supply the reactive name set.
func AnalyzeMarkup(comp *Component, src []byte, file source.FileID, vars []Variable) ([]MarkupElement, []JsxExpression) {
	if comp.body == nil {
		return nil, nil
	}
	m := &markupAnalyzer{
		src:      src,
		file:     file,
		body:     comp.body,
		reactive: make(map[string]bool),
	}
	for _, v := range vars {
		if v.Kind.Reactive() {
			m.reactive[v.Name] = true
		}
	}

	syntax.Walk(comp.body, func(n *ts.Node) bool {
		if isMarkupNode(n.Kind()) {
			m.element(n)
			// Nested elements are found by the element walk itself.
		}
		return !isMarkupNode(n.Kind())
	})
	m.markUnlowerableSubtrees()
	return m.elements, m.exprs
}

type markupAnalyzer struct {
	src      []byte
	file     source.FileID
	body     *ts.Node
	reactive map[string]bool
	elements []MarkupElement
	exprs    []JsxExpression
}

// element records n and recurses into markup nested anywhere below it,
// both direct children and elements inside expression children.
func (m *markupAnalyzer) element(n *ts.Node) {
	el := m.buildElement(n)
	m.elements = append(m.elements, el)

	for _, child := range syntax.NamedChildren(n) {
		switch child.Kind() {
		case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
			m.element(child)
		case "jsx_expression":
			m.elementsInside(child)
		case "jsx_opening_element":
			for _, attr := range syntax.NamedChildren(child) {
				m.elementsInside(attr)
			}
		case "jsx_attribute":
			// Self-closing elements carry attributes directly.
			m.elementsInside(child)
		}
	}
}

// elementsInside records markup found anywhere under n, typically inside
// an expression child or an attribute value.
func (m *markupAnalyzer) elementsInside(n *ts.Node) {
	syntax.Walk(n, func(inner *ts.Node) bool {
		if isMarkupNode(inner.Kind()) {
			m.element(inner)
			return false
		}
		return true
	})
}

func (m *markupAnalyzer) buildElement(n *ts.Node) MarkupElement {
	el := MarkupElement{Span: syntax.NodeSpan(m.file, n)}

	var opening *ts.Node
	switch n.Kind() {
	case "jsx_self_closing_element":
		opening = n
	case "jsx_element":
		for _, c := range syntax.NamedChildren(n) {
			if c.Kind() == "jsx_opening_element" {
				opening = c
				break
			}
		}
	case "jsx_fragment":
		// No tag, no attributes.
	}

	if opening != nil {
		if name := syntax.Field(opening, "name"); name != nil {
			el.Tag = string(name.Utf8Text(m.src))
			el.TagIsComponent = name.Kind() != "identifier" || isComponentName(el.Tag)
		}
		for _, a := range syntax.NamedChildren(opening) {
			switch a.Kind() {
			case "jsx_attribute":
				attr, ok := m.buildAttr(a)
				if !ok {
					el.Skip = true
					continue
				}
				el.Attrs = append(el.Attrs, attr)
			case "jsx_expression":
				// {...rest} in attribute position.
				spread := innerExpression(a)
				if spread == nil || spread.Kind() != "spread_element" {
					el.Skip = true
					continue
				}
				target := innerExpression(spread)
				if target == nil {
					el.Skip = true
					continue
				}
				el.Attrs = append(el.Attrs, Attr{
					Kind:      AttrSpread,
					Span:      syntax.NodeSpan(m.file, a),
					ValueSpan: syntax.NodeSpan(m.file, target),
				})
			}
		}
	}

	if n.Kind() != "jsx_self_closing_element" {
		for _, c := range syntax.NamedChildren(n) {
			switch c.Kind() {
			case "jsx_opening_element", "jsx_closing_element":
				continue
			case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
				el.Children = append(el.Children, Child{
					Kind: ChildElement,
					Span: syntax.NodeSpan(m.file, c),
				})
			case "jsx_text", "html_character_reference":
				raw := string(c.Utf8Text(m.src))
				text, keep := jsxTextValue(raw, c.Kind() == "html_character_reference")
				if keep {
					el.Children = append(el.Children, Child{
						Kind: ChildText,
						Span: syntax.NodeSpan(m.file, c),
						Text: text,
					})
				}
			case "jsx_expression":
				inner := innerExpression(c)
				if inner == nil {
					// `{}` or a comment container; contributes nothing.
					continue
				}
				reactive := m.exprReactive(inner)
				m.exprs = append(m.exprs, JsxExpression{
					Span:     syntax.NodeSpan(m.file, c),
					ExprSpan: syntax.NodeSpan(m.file, inner),
					Reactive: reactive,
				})
				el.Children = append(el.Children, Child{
					Kind:     ChildExpression,
					Span:     syntax.NodeSpan(m.file, c),
					ExprSpan: syntax.NodeSpan(m.file, inner),
					Reactive: reactive,
				})
			default:
				el.Skip = true
			}
		}
	}
	return el
}

func (m *markupAnalyzer) buildAttr(a *ts.Node) (Attr, bool) {
	attr := Attr{Span: syntax.NodeSpan(m.file, a)}

	children := syntax.NamedChildren(a)
	if len(children) == 0 {
		return attr, false
	}
	nameNode := children[0]
	switch nameNode.Kind() {
	case "property_identifier", "jsx_namespace_name":
		attr.Name = string(nameNode.Utf8Text(m.src))
	default:
		return attr, false
	}

	if len(children) == 1 {
		attr.Kind = AttrBoolean
		return attr, true
	}

	value := children[1]
	switch value.Kind() {
	case "string":
		attr.Kind = AttrString
		attr.ValueSpan = syntax.NodeSpan(m.file, value)
	case "jsx_expression":
		inner := innerExpression(value)
		if inner == nil {
			return attr, false
		}
		attr.Kind = AttrExpression
		attr.ValueSpan = syntax.NodeSpan(m.file, inner)
		attr.Reactive = m.exprReactive(inner)
		m.exprs = append(m.exprs, JsxExpression{
			Span:     syntax.NodeSpan(m.file, value),
			ExprSpan: attr.ValueSpan,
			Reactive: attr.Reactive,
			AttrName: attr.Name,
		})
	default:
		return attr, false
	}
	return attr, true
}

// exprReactive reports whether evaluating the expression reads a signal or
// computed binding. Expressions that are themselves function values are
// never reactive: they are called later, not evaluated now. Reads inside
// nested callbacks of a non-function expression do count, because the
// callee may run them during evaluation.
func (m *markupAnalyzer) exprReactive(expr *ts.Node) bool {
	switch expr.Kind() {
	case "arrow_function", "function_expression", "function":
		return false
	case "spread_element":
		// A spread cannot be wrapped in a lazy accessor.
		return false
	}
	found := false
	forEachIdentifierRead(expr, m.src, func(n *ts.Node, name string) {
		if found || !m.reactive[name] {
			return
		}
		if !shadowed(name, n, m.body, m.src) {
			found = true
		}
	})
	return found
}

// markUnlowerableSubtrees propagates Skip downward: an element inside a
// skipped element keeps its source text too, otherwise the outer original
// markup would wrap already-rewritten fragments.
func (m *markupAnalyzer) markUnlowerableSubtrees() {
	for i := range m.elements {
		if !m.elements[i].Skip {
			continue
		}
		outer := m.elements[i].Span
		for j := range m.elements {
			if i != j && outer.ContainsSpan(m.elements[j].Span) {
				m.elements[j].Skip = true
			}
		}
	}
}

// jsxTextValue collapses raw markup text the way JSX does: lines are
// trimmed, whitespace-only lines disappear, and remaining lines join with
// single spaces. Character references pass through verbatim.
func jsxTextValue(raw string, isEntity bool) (string, bool) {
	if isEntity {
		return raw, true
	}
	lines := strings.Split(raw, "\n")
	if len(lines) == 1 {
		if raw == "" {
			return "", false
		}
		return raw, true
	}
	var parts []string
	for i, line := range lines {
		switch i {
		case 0:
			// Leading space on the first line separates this text from a
			// preceding inline element and stays.
			line = strings.TrimRight(line, " \t")
		case len(lines) - 1:
			line = strings.TrimLeft(line, " \t")
		default:
			line = strings.Trim(line, " \t")
		}
		if line != "" {
			parts = append(parts, line)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}
