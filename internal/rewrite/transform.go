package rewrite

import (
	"fmt"
	"strings"

	"impulse/internal/analysis"
)

// DefaultRuntimeImport is the module the generated code imports its
// reactive primitives from, unless the project manifest overrides it.
const DefaultRuntimeImport = "@impulse/runtime"

// Options adjusts the rewrite. The zero value gives the default pipeline:
// every signal mutation is rewritten and the runtime import is injected.
type Options struct {
	// MarkupReferencedOnly limits mutation rewriting to signals that are
	// read inside markup. Off by default: rewriting every signal mutation
	// is always correct, the subset trusts the markup-reference analysis
	// to prove the others unobservable.
	MarkupReferencedOnly bool
	// SkipImports suppresses the runtime import injection.
	SkipImports bool
	// RuntimeImport overrides DefaultRuntimeImport.
	RuntimeImport string
}

func (o Options) runtimeImport() string {
	if o.RuntimeImport == "" {
		return DefaultRuntimeImport
	}
	return o.RuntimeImport
}

// Helpers records which runtime names the rewrite emitted, which is what
// the import injector needs to know.
type Helpers struct {
	Signal   bool
	Computed bool
	H        bool
	Fragment bool
}

func (h Helpers) Any() bool {
	return h.Signal || h.Computed || h.H || h.Fragment
}

// Names returns the used runtime import names in their canonical order.
func (h Helpers) Names() []string {
	var names []string
	if h.Signal {
		names = append(names, "signal")
	}
	if h.Computed {
		names = append(names, "computed")
	}
	if h.H {
		names = append(names, "h")
	}
	if h.Fragment {
		names = append(names, "Fragment")
	}
	return names
}

func (h Helpers) merge(other Helpers) Helpers {
	return Helpers{
		Signal:   h.Signal || other.Signal,
		Computed: h.Computed || other.Computed,
		H:        h.H || other.H,
		Fragment: h.Fragment || other.Fragment,
	}
}

// RewriteFile runs the full pipeline over every component of a file and
// injects the runtime import for the helpers that were emitted.
func RewriteFile(buf *Buffer, fa *analysis.FileAnalysis, opts Options) (Helpers, error) {
	var used Helpers
	for i := range fa.Components {
		h, err := RewriteComponent(buf, &fa.Components[i], opts)
		if err != nil {
			return used, err
		}
		used = used.merge(h)
	}
	if !opts.SkipImports {
		if err := InjectImport(buf, used, opts.runtimeImport()); err != nil {
			return used, err
		}
	}
	return used, nil
}

// RewriteComponent runs the phases of all transformers over one component
// in the order the package doc fixes.
func RewriteComponent(buf *Buffer, ca *analysis.ComponentAnalysis, opts Options) (Helpers, error) {
	r := newComponentRewriter(buf, ca)
	steps := []struct {
		name string
		run  func() error
	}{
		{"signal reads", r.signalReads},
		{"computed reads", r.computedReads},
		{"mutations", func() error { return r.mutationEdits(opts.MarkupReferencedOnly) }},
		{"markup", r.markupLower},
		{"signal declarations", r.signalWraps},
		{"computed declarations", r.computedWraps},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return *r.used, fmt.Errorf("component %s: %s: %w", ca.Component.Name, step.name, err)
		}
	}
	return *r.used, nil
}

// SignalTransform wraps signal declarations and rewrites their reads.
func SignalTransform(buf *Buffer, ca *analysis.ComponentAnalysis) error {
	r := newComponentRewriter(buf, ca)
	if err := r.signalReads(); err != nil {
		return err
	}
	return r.signalWraps()
}

// ComputedTransform wraps computed initializers, expands destructuring,
// and rewrites computed reads.
func ComputedTransform(buf *Buffer, ca *analysis.ComponentAnalysis) error {
	r := newComponentRewriter(buf, ca)
	if err := r.computedReads(); err != nil {
		return err
	}
	return r.computedWraps()
}

// MutationTransform rewrites signal mutation sites to the peek/notify
// form.
func MutationTransform(buf *Buffer, ca *analysis.ComponentAnalysis, markupReferencedOnly bool) error {
	return newComponentRewriter(buf, ca).mutationEdits(markupReferencedOnly)
}

// MarkupTransform lowers markup to h() calls with lazy reactive props.
func MarkupTransform(buf *Buffer, ca *analysis.ComponentAnalysis) error {
	return newComponentRewriter(buf, ca).markupLower()
}

// componentRewriter carries the shared state of one component's phases.
type componentRewriter struct {
	buf  *Buffer
	ca   *analysis.ComponentAnalysis
	used *Helpers
}

func newComponentRewriter(buf *Buffer, ca *analysis.ComponentAnalysis) *componentRewriter {
	return &componentRewriter{buf: buf, ca: ca, used: &Helpers{}}
}

// kindNames collects the non-synthetic binding names of one kind.
func kindNames(ca *analysis.ComponentAnalysis, kind analysis.BindingKind) map[string]bool {
	names := make(map[string]bool)
	for _, v := range ca.Variables {
		if v.Kind == kind && !v.Synthetic {
			names[v.Name] = true
		}
	}
	return names
}

// statementIndent returns the leading whitespace of the line a statement
// starts on, for multi-statement expansions that must line up with it.
func statementIndent(src string, start int) string {
	if start > len(src) {
		start = len(src)
	}
	lineStart := strings.LastIndexByte(src[:start], '\n') + 1
	i := lineStart
	for i < start && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	return src[lineStart:i]
}
