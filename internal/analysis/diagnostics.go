package analysis

import (
	"fmt"

	"impulse/internal/diag"
	"impulse/internal/fix"
)

// ReportDiagnostics emits the advisory findings of a file analysis. Every
// finding is a warning: the compiler still produces output for the file,
// it just cannot make the flagged code reactive.
func ReportDiagnostics(r diag.Reporter, fa *FileAnalysis) {
	for _, span := range fa.ErrorSpans {
		diag.ReportWarning(r, diag.SynParseError, span,
			"syntax error; constructs in this region are not compiled").Emit()
	}
	for i := range fa.Components {
		reportComponent(r, &fa.Components[i])
	}
}

func reportComponent(r diag.Reporter, ca *ComponentAnalysis) {
	comp := ca.Component
	if comp.DestructuredProps {
		diag.ReportWarning(r, diag.RctPropsDestructuring, comp.PropsPatternSpan,
			fmt.Sprintf("component %s destructures its props; destructured values are copied once and stop tracking updates", comp.Name)).
			WithFixSuggestion(fix.Advisory("accept a single props parameter and access properties where they are used")).
			Emit()
	}
	reportNonReactiveMutations(r, ca)
}

// diagnosableMutation limits the non-reactive-mutation check to the shapes
// that read as intentional state updates. delete and bulk-assign on a
// static binding are rarer and noisier, so they stay silent.
func diagnosableMutation(k MutationKind) bool {
	switch k {
	case MutMethodCall, MutPropertyAssign, MutIndexAssign:
		return true
	default:
		return false
	}
}

// reportNonReactiveMutations warns once per static, markup-referenced
// binding that is mutated in place. The first mutation site anchors the
// diagnostic; further sites and the declaration become notes.
func reportNonReactiveMutations(r diag.Reporter, ca *ComponentAnalysis) {
	var order []string
	sites := make(map[string][]Mutation)
	for _, m := range ca.Mutations {
		if m.RootKind != KindStatic || !m.MarkupReferenced || !diagnosableMutation(m.Kind) {
			continue
		}
		if _, seen := sites[m.Root]; !seen {
			order = append(order, m.Root)
		}
		sites[m.Root] = append(sites[m.Root], m)
	}

	for _, name := range order {
		ms := sites[name]
		b := diag.ReportWarning(r, diag.RctNonReactiveMutation, ms[0].Span,
			fmt.Sprintf("%q is mutated but never declared reactive; markup reading it will not update", name))

		v := ca.Lookup(name)
		if v != nil {
			b.WithNote(v.NameSpan, fmt.Sprintf("%q declared with %s here", name, v.Keyword))
		}
		for _, m := range ms[1:] {
			b.WithNote(m.Span, "also mutated here")
		}

		if v != nil && v.Keyword == "const" && v.SimpleDeclarator() {
			b.WithFixSuggestion(fix.ReplaceSpan(
				fmt.Sprintf("declare %q with let so its mutations become reactive", name),
				v.KeywordSpan, "let", "const",
				fix.Preferred(),
			))
		}
		b.Emit()
	}
}
