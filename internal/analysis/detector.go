package analysis

import (
	"unicode"
	"unicode/utf8"

	ts "github.com/tree-sitter/go-tree-sitter"

	"impulse/internal/source"
	"impulse/internal/syntax"
)

// Component identifies one detected component: a top-level function with a
// capitalized name whose body returns a markup expression.
type Component struct {
	Name string
	// Span covers the whole function node; BodySpan covers the statement
	// block (or, for expression-bodied arrows, the expression itself).
	Span     source.Span
	BodySpan source.Span
	// ExpressionBody is set for arrows without a statement block. Such
	// components have no local declarations, only markup.
	ExpressionBody bool
	// DestructuredProps is set when the first parameter is an object
	// pattern; PropsPatternSpan then covers that pattern.
	DestructuredProps bool
	PropsPatternSpan  source.Span

	fn   *ts.Node
	body *ts.Node
}

// Body returns the component's body node. Valid only while the tree the
// component was detected in is open.
func (c *Component) Body() *ts.Node { return c.body }

// DetectComponents scans a file's top-level statements for components.
// Functions without a name, without a markup-returning body, or without a
// capitalized name are omitted, never reported.
func DetectComponents(tree *syntax.Tree, file source.FileID) []*Component {
	src := tree.Source()
	var out []*Component

	for _, stmt := range syntax.NamedChildren(tree.Root()) {
		node := stmt
		if node.Kind() == "export_statement" {
			if decl := syntax.Field(node, "declaration"); decl != nil {
				node = decl
			} else {
				continue
			}
		}

		switch node.Kind() {
		case "function_declaration", "generator_function_declaration":
			nameNode := syntax.Field(node, "name")
			if nameNode == nil {
				continue
			}
			if c := buildComponent(file, src, string(nameNode.Utf8Text(src)), node); c != nil {
				out = append(out, c)
			}
		case "lexical_declaration", "variable_declaration":
			for _, d := range syntax.NamedChildren(node) {
				if d.Kind() != "variable_declarator" {
					continue
				}
				nameNode := syntax.Field(d, "name")
				value := syntax.Field(d, "value")
				if nameNode == nil || value == nil || nameNode.Kind() != "identifier" {
					continue
				}
				switch value.Kind() {
				case "arrow_function", "function_expression", "function":
					if c := buildComponent(file, src, string(nameNode.Utf8Text(src)), value); c != nil {
						out = append(out, c)
					}
				}
			}
		}
	}
	return out
}

func buildComponent(file source.FileID, src []byte, name string, fn *ts.Node) *Component {
	if !isComponentName(name) {
		return nil
	}
	body := syntax.Field(fn, "body")
	if body == nil {
		return nil
	}

	exprBody := body.Kind() != "statement_block"
	if exprBody {
		if !yieldsMarkup(body) {
			return nil
		}
	} else if !returnsMarkup(body) {
		return nil
	}

	c := &Component{
		Name:           name,
		Span:           syntax.NodeSpan(file, fn),
		BodySpan:       syntax.NodeSpan(file, body),
		ExpressionBody: exprBody,
		fn:             fn,
		body:           body,
	}

	if pats := paramPatterns(functionParams(fn)); len(pats) > 0 && pats[0].Kind() == "object_pattern" {
		c.DestructuredProps = true
		c.PropsPatternSpan = syntax.NodeSpan(file, pats[0])
	}
	return c
}

func isComponentName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

func isMarkupNode(kind string) bool {
	switch kind {
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return true
	default:
		return false
	}
}

func unwrapParens(n *ts.Node) *ts.Node {
	for n != nil && n.Kind() == "parenthesized_expression" {
		n = innerExpression(n)
	}
	return n
}

// yieldsMarkup reports whether an expression produces markup, looking
// through parentheses, ternaries, and short-circuit operators:
// `cond ? <A/> : <B/>` and `cond && <A/>` both count.
func yieldsMarkup(expr *ts.Node) bool {
	expr = unwrapParens(expr)
	if expr == nil {
		return false
	}
	switch expr.Kind() {
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return true
	case "ternary_expression":
		return yieldsMarkup(syntax.Field(expr, "consequence")) ||
			yieldsMarkup(syntax.Field(expr, "alternative"))
	case "binary_expression":
		op := syntax.Field(expr, "operator")
		if op == nil {
			return false
		}
		switch op.Kind() {
		case "&&", "||", "??":
			return yieldsMarkup(syntax.Field(expr, "left")) ||
				yieldsMarkup(syntax.Field(expr, "right"))
		}
		return false
	default:
		return false
	}
}

// returnsMarkup reports whether the function body itself (not a nested
// function) has a return statement returning a markup expression.
func returnsMarkup(body *ts.Node) bool {
	found := false
	syntax.Walk(body, func(n *ts.Node) bool {
		if found || isFunctionNode(n.Kind()) {
			return false
		}
		if n.Kind() == "return_statement" {
			if yieldsMarkup(innerExpression(n)) {
				found = true
			}
			return false
		}
		return true
	})
	return found
}
