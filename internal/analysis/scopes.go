package analysis

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"impulse/internal/syntax"
)

// isScopeNode reports whether a node introduces a declaration scope that
// can shadow component-level bindings. The grammar renamed bare function
// expressions from "function" to "function_expression" at some point, so
// both spellings are listed.
func isScopeNode(kind string) bool {
	switch kind {
	case "statement_block",
		"arrow_function",
		"function_declaration",
		"function_expression",
		"function",
		"generator_function",
		"generator_function_declaration",
		"method_definition",
		"for_statement",
		"for_in_statement",
		"catch_clause",
		"class_body":
		return true
	default:
		return false
	}
}

func isFunctionNode(kind string) bool {
	switch kind {
	case "arrow_function",
		"function_declaration",
		"function_expression",
		"function",
		"generator_function",
		"generator_function_declaration",
		"method_definition":
		return true
	default:
		return false
	}
}

// patternDeclares reports whether a binding pattern declares name.
// Defaults in patterns (`{ a = fallback }`) are expressions, not
// declarations, so only the left side of assignment patterns is searched.
func patternDeclares(pattern *ts.Node, src []byte, name string) bool {
	if pattern == nil {
		return false
	}
	switch pattern.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		return string(pattern.Utf8Text(src)) == name
	case "pair_pattern":
		return patternDeclares(syntax.Field(pattern, "value"), src, name)
	case "object_assignment_pattern", "assignment_pattern":
		return patternDeclares(syntax.Field(pattern, "left"), src, name)
	case "object_pattern", "array_pattern", "rest_pattern":
		for _, child := range syntax.NamedChildren(pattern) {
			if patternDeclares(child, src, name) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// patternNames collects every identifier a binding pattern declares, in
// source order.
func patternNames(pattern *ts.Node, src []byte) []*ts.Node {
	if pattern == nil {
		return nil
	}
	switch pattern.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		return []*ts.Node{pattern}
	case "pair_pattern":
		return patternNames(syntax.Field(pattern, "value"), src)
	case "object_assignment_pattern", "assignment_pattern":
		return patternNames(syntax.Field(pattern, "left"), src)
	case "object_pattern", "array_pattern", "rest_pattern":
		var out []*ts.Node
		for _, child := range syntax.NamedChildren(pattern) {
			out = append(out, patternNames(child, src)...)
		}
		return out
	default:
		return nil
	}
}

// declaratorPatterns returns the name patterns of a lexical_declaration or
// variable_declaration statement.
func declaratorPatterns(decl *ts.Node) []*ts.Node {
	var out []*ts.Node
	for _, d := range syntax.NamedChildren(decl) {
		if d.Kind() != "variable_declarator" {
			continue
		}
		if name := syntax.Field(d, "name"); name != nil {
			out = append(out, name)
		}
	}
	return out
}

// functionParams returns the parameter list node of a function-like node.
// Arrow functions with a single bare parameter use the "parameter" field
// instead of "parameters".
func functionParams(fn *ts.Node) *ts.Node {
	if p := syntax.Field(fn, "parameters"); p != nil {
		return p
	}
	return syntax.Field(fn, "parameter")
}

// paramPatterns returns the binding patterns of a parameter list,
// unwrapping the TypeScript required/optional parameter wrappers.
func paramPatterns(params *ts.Node) []*ts.Node {
	if params == nil {
		return nil
	}
	if params.Kind() == "identifier" {
		return []*ts.Node{params}
	}
	var out []*ts.Node
	for _, p := range syntax.NamedChildren(params) {
		switch p.Kind() {
		case "required_parameter", "optional_parameter":
			if pat := syntax.Field(p, "pattern"); pat != nil {
				out = append(out, pat)
			}
		default:
			out = append(out, p)
		}
	}
	return out
}

// scopeDeclaresName reports whether scope directly declares name, without
// descending into nested scopes. `var` is treated as block-scoped here;
// that under-approximates hoisting but only widens the set of occurrences
// left untouched.
func scopeDeclaresName(scope *ts.Node, src []byte, name string) bool {
	kind := scope.Kind()

	if isFunctionNode(kind) {
		for _, pat := range paramPatterns(functionParams(scope)) {
			if patternDeclares(pat, src, name) {
				return true
			}
		}
		// A named function expression binds its own name inside itself.
		if n := syntax.Field(scope, "name"); n != nil && string(n.Utf8Text(src)) == name {
			return true
		}
		return false
	}

	switch kind {
	case "statement_block", "class_body":
		for _, stmt := range syntax.NamedChildren(scope) {
			switch stmt.Kind() {
			case "lexical_declaration", "variable_declaration":
				for _, pat := range declaratorPatterns(stmt) {
					if patternDeclares(pat, src, name) {
						return true
					}
				}
			case "function_declaration", "generator_function_declaration", "class_declaration":
				if n := syntax.Field(stmt, "name"); n != nil && string(n.Utf8Text(src)) == name {
					return true
				}
			}
		}
	case "for_statement":
		if init := syntax.Field(scope, "initializer"); init != nil {
			switch init.Kind() {
			case "lexical_declaration", "variable_declaration":
				for _, pat := range declaratorPatterns(init) {
					if patternDeclares(pat, src, name) {
						return true
					}
				}
			}
		}
	case "for_in_statement":
		if left := syntax.Field(scope, "left"); left != nil && patternDeclares(left, src, name) {
			return true
		}
	case "catch_clause":
		if p := syntax.Field(scope, "parameter"); p != nil && patternDeclares(p, src, name) {
			return true
		}
	}
	return false
}

// shadowed reports whether an occurrence of name at node `from` resolves
// to a declaration in some scope strictly between `from` and `root`,
// rather than to the component-scope binding. The walk stops at the
// first ancestor whose span covers root: scopes in between are always
// inside root, and root's own declarations are the caller's concern.
// When `from` is root itself the walk stops immediately.
func shadowed(name string, from, root *ts.Node, src []byte) bool {
	for anc := from.Parent(); anc != nil; anc = anc.Parent() {
		if root != nil && anc.StartByte() <= root.StartByte() && anc.EndByte() >= root.EndByte() {
			return false
		}
		if isScopeNode(anc.Kind()) && scopeDeclaresName(anc, src, name) {
			return true
		}
	}
	return false
}

// resolveRootIdentifier unwraps property and element accesses to the base
// identifier an expression reads from: `a.b[c].d` resolves to `a`.
// Returns nil when the base is not a plain identifier.
func resolveRootIdentifier(expr *ts.Node) *ts.Node {
	for expr != nil {
		switch expr.Kind() {
		case "identifier":
			return expr
		case "member_expression", "subscript_expression":
			expr = syntax.Field(expr, "object")
		case "parenthesized_expression", "non_null_expression":
			expr = innerExpression(expr)
		default:
			return nil
		}
	}
	return nil
}

// innerExpression returns the first named child that is not a comment.
func innerExpression(n *ts.Node) *ts.Node {
	for _, child := range syntax.NamedChildren(n) {
		if child.Kind() != "comment" {
			return child
		}
	}
	return nil
}

// calleeName returns the name a call is recognized by: the identifier
// itself for `query(...)`, the final property for `api.query(...)`.
func calleeName(callee *ts.Node, src []byte) string {
	if callee == nil {
		return ""
	}
	switch callee.Kind() {
	case "identifier":
		return string(callee.Utf8Text(src))
	case "member_expression":
		if prop := syntax.Field(callee, "property"); prop != nil {
			return string(prop.Utf8Text(src))
		}
	}
	return ""
}
