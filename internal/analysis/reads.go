package analysis

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"impulse/internal/source"
	"impulse/internal/syntax"
)

// ReadSite is one identifier occurrence that reads a component binding.
type ReadSite struct {
	Name string
	Span source.Span
	// InMarkup is set when the read happens inside the rendered output:
	// its nearest enclosing markup element is closer than any enclosing
	// function. A read inside an event handler is not a markup read even
	// when the handler is written inline in an attribute.
	InMarkup bool
}

// CollectReads lists every read of the named bindings inside the component
// body, in source order. Occurrences shadowed by nested declarations are
// skipped, as are all non-read positions: declaration names, binding
// patterns, parameters, function names, property names, and markup tag
// names.
func CollectReads(comp *Component, src []byte, file source.FileID, names map[string]bool) []ReadSite {
	if comp.body == nil || len(names) == 0 {
		return nil
	}
	var out []ReadSite
	forEachIdentifierRead(comp.body, src, func(n *ts.Node, name string) {
		if !names[name] {
			return
		}
		if shadowed(name, n, comp.body, src) {
			return
		}
		out = append(out, ReadSite{
			Name:     name,
			Span:     syntax.NodeSpan(file, n),
			InMarkup: markupReferenced(n),
		})
	})
	return out
}

// markupReferenced walks outward from a node until it meets either a
// markup element (the read feeds rendered output) or a function boundary
// (the read happens later, when the function runs).
func markupReferenced(n *ts.Node) bool {
	for anc := n.Parent(); anc != nil; anc = anc.Parent() {
		kind := anc.Kind()
		if isMarkupNode(kind) {
			return true
		}
		if isFunctionNode(kind) {
			return false
		}
	}
	return false
}

// forEachIdentifierRead invokes fn for every identifier in read position
// under root. Shadowing is the caller's concern; this only filters by
// syntactic role. Property names, shorthand object properties, and binding
// patterns are different node kinds in the grammar and never reach fn.
func forEachIdentifierRead(root *ts.Node, src []byte, fn func(n *ts.Node, name string)) {
	syntax.Walk(root, func(n *ts.Node) bool {
		if n.Kind() != "identifier" {
			return true
		}
		if isReadPosition(n) {
			fn(n, string(n.Utf8Text(src)))
		}
		return false
	})
}

// isReadPosition reports whether an identifier node is a value read rather
// than a name being declared or labeled.
func isReadPosition(n *ts.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return true
	}
	switch parent.Kind() {
	case "variable_declarator":
		return !isField(parent, "name", n)
	case "object_pattern", "array_pattern", "rest_pattern", "pair_pattern":
		return false
	case "object_assignment_pattern", "assignment_pattern":
		// `{ a = fallback }`: a declares, fallback reads.
		return !isField(parent, "left", n)
	case "formal_parameters", "required_parameter", "optional_parameter":
		return false
	case "arrow_function":
		return !isField(parent, "parameter", n)
	case "function_declaration", "function_expression", "function",
		"generator_function", "generator_function_declaration", "class_declaration":
		return !isField(parent, "name", n)
	case "jsx_opening_element", "jsx_closing_element", "jsx_self_closing_element":
		return !isField(parent, "name", n)
	case "import_specifier", "namespace_import", "import_clause", "export_specifier":
		return false
	default:
		return true
	}
}

// isField reports whether n is the child stored in parent's named field.
// Nodes are handles, so identity is compared positionally.
func isField(parent *ts.Node, field string, n *ts.Node) bool {
	f := syntax.Field(parent, field)
	return f != nil && f.StartByte() == n.StartByte() && f.EndByte() == n.EndByte()
}
