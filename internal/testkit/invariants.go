package testkit

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"impulse/internal/analysis"
	"impulse/internal/source"
)

// CheckAnalysisInvariants verifies the structural invariants of a file
// analysis against its source file:
//  1. every recorded span is non-empty, belongs to the file, and stays
//     within the content bounds
//  2. declaration ranges of distinct non-synthetic bindings never overlap
//  3. every DestructuredFrom resolves to a synthetic binding of the same
//     component
//  4. reads and mutations target classified bindings
func CheckAnalysisInvariants(fa *analysis.FileAnalysis, sf *source.File) error {
	if fa == nil || sf == nil {
		return fmt.Errorf("nil analysis or file")
	}
	if fa.File != sf.ID {
		return fmt.Errorf("analysis points at file id %d, want %d", fa.File, sf.ID)
	}
	limit, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	for _, sp := range fa.ErrorSpans {
		if err := checkSpan("error region", sp, sf.ID, limit); err != nil {
			return err
		}
	}

	for ci := range fa.Components {
		if err := checkComponent(&fa.Components[ci], sf.ID, limit); err != nil {
			return err
		}
	}
	return nil
}

func checkComponent(ca *analysis.ComponentAnalysis, file source.FileID, limit uint32) error {
	comp := ca.Component
	if comp == nil {
		return fmt.Errorf("component analysis without a component")
	}
	if comp.Name == "" {
		return fmt.Errorf("component without a name at %v", comp.Span)
	}
	if err := checkSpan("component "+comp.Name, comp.Span, file, limit); err != nil {
		return err
	}
	if err := checkSpan(comp.Name+" body", comp.BodySpan, file, limit); err != nil {
		return err
	}
	if !within(comp.BodySpan, comp.Span) {
		return fmt.Errorf("%s body span %v escapes component span %v", comp.Name, comp.BodySpan, comp.Span)
	}

	if err := checkBindings(ca, comp.Name, file, limit); err != nil {
		return err
	}

	for _, r := range ca.Reads {
		what := fmt.Sprintf("%s: read of %q", comp.Name, r.Name)
		if err := checkSpan(what, r.Span, file, limit); err != nil {
			return err
		}
		if !within(r.Span, comp.BodySpan) {
			return fmt.Errorf("%s outside the component body", what)
		}
		if ca.Lookup(r.Name) == nil {
			return fmt.Errorf("%s: not a classified binding", what)
		}
	}

	for _, m := range ca.Mutations {
		what := fmt.Sprintf("%s: %s mutation of %q", comp.Name, m.Kind, m.Root)
		if err := checkSpan(what, m.Span, file, limit); err != nil {
			return err
		}
		if err := checkSpan(what+" root", m.RootSpan, file, limit); err != nil {
			return err
		}
		if !within(m.RootSpan, m.Span) {
			return fmt.Errorf("%s: root %v escapes site %v", what, m.RootSpan, m.Span)
		}
		if ca.Lookup(m.Root) == nil {
			return fmt.Errorf("%s: not a classified binding", what)
		}
	}

	for _, el := range ca.Elements {
		if err := checkSpan(comp.Name+": markup element", el.Span, file, limit); err != nil {
			return err
		}
	}
	for _, ex := range ca.Expressions {
		if err := checkSpan(comp.Name+": markup expression", ex.Span, file, limit); err != nil {
			return err
		}
		if !within(ex.ExprSpan, ex.Span) {
			return fmt.Errorf("%s: inner expression %v escapes braces %v", comp.Name, ex.ExprSpan, ex.Span)
		}
	}
	return nil
}

func checkBindings(ca *analysis.ComponentAnalysis, comp string, file source.FileID, limit uint32) error {
	for i := range ca.Variables {
		v := &ca.Variables[i]
		what := fmt.Sprintf("%s: binding %q", comp, v.Name)
		if v.Name == "" {
			return fmt.Errorf("%s: nameless binding at %v", comp, v.Span)
		}
		if err := checkSpan(what+" stmt", v.StmtSpan, file, limit); err != nil {
			return err
		}
		if err := checkSpan(what, v.Span, file, limit); err != nil {
			return err
		}
		if !within(v.Span, v.StmtSpan) {
			return fmt.Errorf("%s: span %v escapes statement %v", what, v.Span, v.StmtSpan)
		}

		if v.Synthetic {
			if v.Span != v.StmtSpan {
				return fmt.Errorf("%s: synthetic binding must anchor on its statement", what)
			}
			if v.NameSpan != (source.Span{}) {
				return fmt.Errorf("%s: synthetic binding with a name span", what)
			}
			if !v.HasInit {
				return fmt.Errorf("%s: synthetic binding without a captured call", what)
			}
		} else {
			if err := checkSpan(what+" name", v.NameSpan, file, limit); err != nil {
				return err
			}
			if !within(v.NameSpan, v.Span) {
				return fmt.Errorf("%s: name %v escapes declarator %v", what, v.NameSpan, v.Span)
			}
		}

		if v.HasInit {
			if err := checkSpan(what+" init", v.InitSpan, file, limit); err != nil {
				return err
			}
			if !within(v.InitSpan, v.StmtSpan) {
				return fmt.Errorf("%s: initializer %v escapes statement %v", what, v.InitSpan, v.StmtSpan)
			}
		}

		if v.DestructuredFrom != "" {
			src := ca.Lookup(v.DestructuredFrom)
			if src == nil || !src.Synthetic {
				return fmt.Errorf("%s: destructuring source %q does not resolve to a synthetic binding", what, v.DestructuredFrom)
			}
			if v.PropertyName == "" {
				return fmt.Errorf("%s: destructured binding without a property name", what)
			}
		}
	}

	// Declaration ranges of distinct source bindings never overlap.
	var decls []*analysis.Variable
	for i := range ca.Variables {
		if !ca.Variables[i].Synthetic {
			decls = append(decls, &ca.Variables[i])
		}
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].Span.Start < decls[j].Span.Start })
	for k := 1; k < len(decls); k++ {
		prev, cur := decls[k-1], decls[k]
		if cur.Span.Start < prev.Span.End {
			return fmt.Errorf("%s: declaration ranges of %q and %q overlap", comp, prev.Name, cur.Name)
		}
	}
	return nil
}

func checkSpan(what string, sp source.Span, file source.FileID, limit uint32) error {
	if sp.End <= sp.Start {
		return fmt.Errorf("%s: span is empty: %v", what, sp)
	}
	if sp.File != file {
		return fmt.Errorf("%s: span points at file %d, want %d", what, sp.File, file)
	}
	if sp.End > limit {
		return fmt.Errorf("%s: span end beyond content: %d > %d", what, sp.End, limit)
	}
	return nil
}

func within(inner, outer source.Span) bool {
	return inner.Start >= outer.Start && inner.End <= outer.End
}
