package analysis

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"impulse/internal/source"
	"impulse/internal/syntax"
)

// MutationKind is the syntactic shape of an in-place mutation site.
type MutationKind uint8

const (
	MutMethodCall MutationKind = iota
	MutPropertyAssign
	MutIndexAssign
	MutDelete
	MutBulkAssign
)

func (k MutationKind) String() string {
	switch k {
	case MutMethodCall:
		return "method-call"
	case MutPropertyAssign:
		return "property-assign"
	case MutIndexAssign:
		return "index-assign"
	case MutDelete:
		return "delete"
	case MutBulkAssign:
		return "bulk-assign"
	default:
		return "unknown"
	}
}

// mutationMethods is the fixed set of method names that mutate their
// receiver in place.
var mutationMethods = map[string]bool{
	"push":       true,
	"pop":        true,
	"shift":      true,
	"unshift":    true,
	"splice":     true,
	"sort":       true,
	"reverse":    true,
	"fill":       true,
	"copyWithin": true,
}

// bulkAssignHelpers are calls that mutate their first argument wholesale.
var bulkAssignHelpers = map[string]bool{
	"Object.assign": true,
}

// Mutation is one in-place mutation site whose target resolves to a
// component-scope binding.
type Mutation struct {
	Kind MutationKind
	// Root is the base binding the mutated access path starts from;
	// RootKind is its classification. Sites rooted in signals are rewrite
	// targets, sites rooted in statics are diagnostic material.
	Root     string
	RootKind BindingKind
	RootSpan source.Span
	// Span covers the whole site: the call, the assignment, or the delete
	// expression.
	Span source.Span
	// Method is set for MutMethodCall, Property for MutPropertyAssign and
	// MutDelete where the access is a plain property.
	Method   string
	Property string
	// HelperSpan and ArgsSpan are set for MutBulkAssign: the callee text
	// and the full argument list including parentheses.
	HelperSpan source.Span
	ArgsSpan   source.Span
	// MarkupReferenced mirrors whether Root is read inside the component's
	// markup output.
	MarkupReferenced bool
}

// DetectMutations scans the whole component body, nested handlers
// included, for mutation sites targeting classified bindings. Sites whose
// root is shadowed at the mutation point are not the component's bindings
// and are skipped, as is every shape outside the recognized forms.
func DetectMutations(comp *Component, src []byte, file source.FileID, vars []Variable, markupRefs map[string]bool) []Mutation {
	if comp.body == nil {
		return nil
	}
	kinds := make(map[string]BindingKind, len(vars))
	for _, v := range vars {
		if !v.Synthetic {
			kinds[v.Name] = v.Kind
		}
	}
	if len(kinds) == 0 {
		return nil
	}

	d := mutationDetector{
		src:        src,
		file:       file,
		body:       comp.body,
		kinds:      kinds,
		markupRefs: markupRefs,
	}
	syntax.Walk(comp.body, func(n *ts.Node) bool {
		switch n.Kind() {
		case "call_expression":
			d.checkCall(n)
		case "assignment_expression":
			d.checkAssignment(n)
		case "unary_expression":
			d.checkDelete(n)
		}
		return true
	})
	return d.sites
}

type mutationDetector struct {
	src        []byte
	file       source.FileID
	body       *ts.Node
	kinds      map[string]BindingKind
	markupRefs map[string]bool
	sites      []Mutation
}

// resolve maps an access expression to its root binding, provided the
// root identifier resolves to the component scope at this site.
func (d *mutationDetector) resolve(expr *ts.Node) (*ts.Node, string, BindingKind, bool) {
	root := resolveRootIdentifier(expr)
	if root == nil {
		return nil, "", KindStatic, false
	}
	name := string(root.Utf8Text(d.src))
	kind, ok := d.kinds[name]
	if !ok {
		return nil, "", KindStatic, false
	}
	if shadowed(name, root, d.body, d.src) {
		return nil, "", KindStatic, false
	}
	return root, name, kind, true
}

func (d *mutationDetector) record(m Mutation) {
	m.MarkupReferenced = d.markupRefs[m.Root]
	d.sites = append(d.sites, m)
}

func (d *mutationDetector) checkCall(call *ts.Node) {
	callee := syntax.Field(call, "function")
	if callee == nil {
		return
	}

	// Bulk-assign helper: Object.assign(target, ...sources).
	if bulkAssignHelpers[string(callee.Utf8Text(d.src))] {
		args := syntax.Field(call, "arguments")
		if args == nil || args.NamedChildCount() == 0 {
			return
		}
		first := args.NamedChild(0)
		root, name, kind, ok := d.resolve(first)
		if !ok {
			return
		}
		d.record(Mutation{
			Kind:       MutBulkAssign,
			Root:       name,
			RootKind:   kind,
			RootSpan:   syntax.NodeSpan(d.file, root),
			Span:       syntax.NodeSpan(d.file, call),
			HelperSpan: syntax.NodeSpan(d.file, callee),
			ArgsSpan:   syntax.NodeSpan(d.file, args),
		})
		return
	}

	if callee.Kind() != "member_expression" {
		return
	}
	prop := syntax.Field(callee, "property")
	if prop == nil {
		return
	}
	method := string(prop.Utf8Text(d.src))
	if !mutationMethods[method] {
		return
	}
	obj := syntax.Field(callee, "object")
	root, name, kind, ok := d.resolve(obj)
	if !ok {
		return
	}
	d.record(Mutation{
		Kind:     MutMethodCall,
		Root:     name,
		RootKind: kind,
		RootSpan: syntax.NodeSpan(d.file, root),
		Span:     syntax.NodeSpan(d.file, call),
		Method:   method,
	})
}

func (d *mutationDetector) checkAssignment(assign *ts.Node) {
	left := syntax.Field(assign, "left")
	if left == nil {
		return
	}
	var mutKind MutationKind
	switch left.Kind() {
	case "member_expression":
		mutKind = MutPropertyAssign
	case "subscript_expression":
		mutKind = MutIndexAssign
	default:
		return
	}
	root, name, kind, ok := d.resolve(syntax.Field(left, "object"))
	if !ok {
		return
	}
	m := Mutation{
		Kind:     mutKind,
		Root:     name,
		RootKind: kind,
		RootSpan: syntax.NodeSpan(d.file, root),
		Span:     syntax.NodeSpan(d.file, assign),
	}
	if mutKind == MutPropertyAssign {
		if prop := syntax.Field(left, "property"); prop != nil {
			m.Property = string(prop.Utf8Text(d.src))
		}
	}
	d.record(m)
}

func (d *mutationDetector) checkDelete(unary *ts.Node) {
	op := syntax.Field(unary, "operator")
	if op == nil || op.Kind() != "delete" {
		return
	}
	arg := syntax.Field(unary, "argument")
	if arg == nil {
		return
	}
	switch arg.Kind() {
	case "member_expression", "subscript_expression":
	default:
		return
	}
	root, name, kind, ok := d.resolve(syntax.Field(arg, "object"))
	if !ok {
		return
	}
	m := Mutation{
		Kind:     MutDelete,
		Root:     name,
		RootKind: kind,
		RootSpan: syntax.NodeSpan(d.file, root),
		Span:     syntax.NodeSpan(d.file, unary),
	}
	if arg.Kind() == "member_expression" {
		if prop := syntax.Field(arg, "property"); prop != nil {
			m.Property = string(prop.Utf8Text(d.src))
		}
	}
	d.record(m)
}
