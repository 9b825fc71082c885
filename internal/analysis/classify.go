package analysis

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"impulse/internal/source"
	"impulse/internal/syntax"
)

// Variable is one entry of a component's binding fact table. The list for
// a component is produced in a single forward pass over the body's
// top-level declarations and is immutable afterwards; every transformer
// and the mutation detector consume the same list.
type Variable struct {
	// Name is the binding identifier as it appears in generated code.
	Name string
	Kind BindingKind

	// Span is the declarator range for simple bindings and the pattern
	// element range for destructured ones; spans of distinct non-synthetic
	// bindings never overlap. Synthetic bindings carry the whole statement
	// range instead, as the anchor the expansion writes over.
	Span source.Span
	// NameSpan is the identifier position inside the declarator. Reads are
	// never rewritten there. Zero for synthetic bindings.
	NameSpan source.Span
	// StmtSpan covers the whole declaration statement. Bindings expanded
	// from one destructuring share it.
	StmtSpan source.Span
	// KeywordSpan covers the let/const/var keyword of the declaration.
	Keyword     string
	KeywordSpan source.Span
	// InitSpan covers the initializer expression; for synthetic bindings,
	// the captured call expression.
	InitSpan source.Span
	HasInit  bool

	// Synthetic marks a compiler-introduced binding that captures a
	// destructured call result once. It never exists in the original
	// source.
	Synthetic bool
	// DestructuredFrom names the synthetic binding this one reads from.
	DestructuredFrom string
	// PropertyName is the property accessed on the destructuring source,
	// which differs from Name for renamed bindings (`{ data: tasks }`).
	PropertyName string
	// SignalProperties and PlainProperties describe the destructured bag's
	// declared shape; set (and shared) only when DestructuredFrom is.
	SignalProperties map[string]bool
	PlainProperties  map[string]bool
}

// SimpleDeclarator reports whether the binding is a plain `name = init`
// or bare `name` declarator. Pattern elements set Span to the bare name
// and always carry an initializer, so a declarator whose span extends
// past its name, or that has no initializer at all, is simple.
func (v *Variable) SimpleDeclarator() bool {
	if v.Synthetic || v.PropertyName != "" {
		return false
	}
	return v.Span != v.NameSpan || !v.HasInit
}

// ClassifyVariables assigns a reactivity kind to every binding declared at
// the top level of the component body, in declaration order:
//
//   - let and var declarations become signals;
//   - const declarations whose initializer reads an already-reactive
//     binding become computed;
//   - everything else stays static.
//
// Destructuring a call with a registered shape expands into a synthetic
// capture binding plus one entry per destructured name. Patterns the pass
// does not model (arrays, nested objects, string keys, defaults, rest,
// non-const destructuring, multi-declarator destructuring) classify every
// name static so no later pass touches them.
func ClassifyVariables(comp *Component, src []byte, file source.FileID, calls CallRegistry) []Variable {
	if comp.ExpressionBody || comp.body == nil {
		return nil
	}

	cl := classifier{
		src:      src,
		file:     file,
		body:     comp.body,
		calls:    calls,
		reactive: make(map[string]bool),
	}

	for _, stmt := range syntax.NamedChildren(comp.body) {
		switch stmt.Kind() {
		case "lexical_declaration", "variable_declaration":
			cl.classifyDeclaration(stmt)
		}
	}
	return cl.vars
}

type classifier struct {
	src      []byte
	file     source.FileID
	body     *ts.Node
	calls    CallRegistry
	reactive map[string]bool
	vars     []Variable
	// synthetics numbers generated capture bindings within one component.
	synthetics int
}

func (cl *classifier) classifyDeclaration(stmt *ts.Node) {
	keyword := ""
	keywordSpan := source.Span{}
	if kw := stmt.Child(0); kw != nil {
		keyword = string(kw.Utf8Text(cl.src))
		keywordSpan = syntax.NodeSpan(cl.file, kw)
	}
	stmtSpan := syntax.NodeSpan(cl.file, stmt)

	var declarators []*ts.Node
	for _, d := range syntax.NamedChildren(stmt) {
		if d.Kind() == "variable_declarator" {
			declarators = append(declarators, d)
		}
	}

	for _, d := range declarators {
		name := syntax.Field(d, "name")
		value := syntax.Field(d, "value")
		if name == nil {
			continue
		}

		base := Variable{
			Keyword:     keyword,
			KeywordSpan: keywordSpan,
			StmtSpan:    stmtSpan,
		}
		if value != nil {
			base.InitSpan = syntax.NodeSpan(cl.file, value)
			base.HasInit = true
		}

		switch name.Kind() {
		case "identifier":
			cl.classifySimple(d, name, value, base)
		case "object_pattern":
			cl.classifyDestructuring(d, name, value, base, len(declarators) == 1)
		default:
			// Array and other patterns are not modeled; record their names
			// as static so nothing rewrites around them.
			cl.recordPatternAsStatic(name, base)
		}
	}
}

func (cl *classifier) classifySimple(declarator, name, value *ts.Node, base Variable) {
	v := base
	v.Name = string(name.Utf8Text(cl.src))
	v.Span = syntax.NodeSpan(cl.file, declarator)
	v.NameSpan = syntax.NodeSpan(cl.file, name)

	switch base.Keyword {
	case "let", "var":
		v.Kind = KindSignal
		cl.reactive[v.Name] = true
	default: // const
		if value != nil && cl.referencesReactive(value) {
			v.Kind = KindComputed
			cl.reactive[v.Name] = true
		} else {
			v.Kind = KindStatic
		}
	}
	cl.vars = append(cl.vars, v)
}

// patternElem is one modeled element of a flat object pattern.
type patternElem struct {
	local    *ts.Node // declared identifier
	property string   // property name on the source object
}

// modelPattern decomposes a flat object pattern into its elements.
// Only shorthand elements and `key: localName` pairs are modeled.
func modelPattern(pattern *ts.Node, src []byte) ([]patternElem, bool) {
	var elems []patternElem
	for _, child := range syntax.NamedChildren(pattern) {
		switch child.Kind() {
		case "shorthand_property_identifier_pattern":
			elems = append(elems, patternElem{local: child, property: string(child.Utf8Text(src))})
		case "pair_pattern":
			key := syntax.Field(child, "key")
			val := syntax.Field(child, "value")
			if key == nil || val == nil || key.Kind() != "property_identifier" || val.Kind() != "identifier" {
				return nil, false
			}
			elems = append(elems, patternElem{local: val, property: string(key.Utf8Text(src))})
		case "comment":
			continue
		default:
			return nil, false
		}
	}
	return elems, len(elems) > 0
}

func (cl *classifier) classifyDestructuring(declarator, pattern, value *ts.Node, base Variable, sole bool) {
	elems, modeled := modelPattern(pattern, cl.src)
	if !modeled || value == nil || base.Keyword != "const" || !sole {
		cl.recordPatternAsStatic(pattern, base)
		return
	}

	// A call with a registered shape gets a synthetic capture binding and
	// per-property classification.
	if value.Kind() == "call_expression" {
		callee := calleeName(syntax.Field(value, "function"), cl.src)
		if shape, ok := cl.calls[callee]; ok {
			cl.expandShapedCall(elems, value, callee, shape, base)
			return
		}
	}

	// Otherwise the whole group derives from the initializer: computed
	// when it reads something reactive, static when it does not.
	kind := KindStatic
	if cl.referencesReactive(value) {
		kind = KindComputed
	}
	for _, elem := range elems {
		v := base
		v.Name = string(elem.local.Utf8Text(cl.src))
		v.Kind = kind
		v.Span = syntax.NodeSpan(cl.file, elem.local)
		v.NameSpan = v.Span
		v.PropertyName = elem.property
		if kind == KindComputed {
			cl.reactive[v.Name] = true
		}
		cl.vars = append(cl.vars, v)
	}
}

func (cl *classifier) expandShapedCall(elems []patternElem, call *ts.Node, callee string, shape CallShape, base Variable) {
	signals := shape.signalSet()
	plains := shape.plainSet()

	synthetic := base
	synthetic.Name = syntheticName(callee, cl.synthetics)
	cl.synthetics++
	synthetic.Kind = KindStatic
	synthetic.Synthetic = true
	synthetic.Span = base.StmtSpan
	synthetic.InitSpan = syntax.NodeSpan(cl.file, call)
	synthetic.HasInit = true
	synthetic.SignalProperties = signals
	synthetic.PlainProperties = plains
	cl.vars = append(cl.vars, synthetic)

	for _, elem := range elems {
		v := base
		v.Name = string(elem.local.Utf8Text(cl.src))
		v.Span = syntax.NodeSpan(cl.file, elem.local)
		v.NameSpan = v.Span
		v.DestructuredFrom = synthetic.Name
		v.PropertyName = elem.property
		v.SignalProperties = signals
		v.PlainProperties = plains
		v.HasInit = false
		v.InitSpan = source.Span{}
		if signals[elem.property] {
			v.Kind = KindComputed
			cl.reactive[v.Name] = true
		} else {
			// Properties outside the declared shape pass through plain.
			v.Kind = KindStatic
		}
		cl.vars = append(cl.vars, v)
	}
}

func (cl *classifier) recordPatternAsStatic(pattern *ts.Node, base Variable) {
	for _, nameNode := range patternNames(pattern, cl.src) {
		v := base
		v.Name = string(nameNode.Utf8Text(cl.src))
		v.Kind = KindStatic
		v.Span = syntax.NodeSpan(cl.file, nameNode)
		v.NameSpan = v.Span
		cl.vars = append(cl.vars, v)
	}
}

// referencesReactive reports whether expr reads any currently-reactive
// name. The scan is purely syntactic: identifier occurrences in read
// position, with occurrences shadowed by declarations nested inside expr
// excluded. When expr is itself a function, its own parameters shadow too:
// `(count) => count + 1` does not read the component's count.
func (cl *classifier) referencesReactive(expr *ts.Node) bool {
	found := false
	forEachIdentifierRead(expr, cl.src, func(n *ts.Node, name string) {
		if found || !cl.reactive[name] {
			return
		}
		if isScopeNode(expr.Kind()) && scopeDeclaresName(expr, cl.src, name) {
			return
		}
		if !shadowed(name, n, expr, cl.src) {
			found = true
		}
	})
	return found
}
