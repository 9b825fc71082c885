package rewrite

import (
	"fmt"
	"strings"

	"impulse/internal/analysis"
	"impulse/internal/source"
)

// computedReads rewrites bare reads of computed bindings to .value
// accesses.
func (r *componentRewriter) computedReads() error {
	return r.rewriteReads(kindNames(r.ca, analysis.KindComputed))
}

// computedWraps expands destructuring declarations and wraps the
// initializer of every simple computed declaration in computed(() => ...).
func (r *componentRewriter) computedWraps() error {
	if err := r.expandDestructurings(); err != nil {
		return err
	}
	for _, v := range r.ca.Variables {
		if v.Kind != analysis.KindComputed || !v.SimpleDeclarator() || !v.HasInit {
			continue
		}
		if err := r.buf.AppendRight(int(v.InitSpan.Start), "computed(() => "); err != nil {
			return err
		}
		if err := r.buf.AppendLeft(int(v.InitSpan.End), ")"); err != nil {
			return err
		}
		r.used.Computed = true
	}
	return nil
}

// destructureGroup gathers the bindings declared by one destructuring
// statement. Shaped call groups carry the synthetic capture binding; plain
// groups derive every element from the initializer expression directly.
type destructureGroup struct {
	synthetic *analysis.Variable
	elems     []*analysis.Variable
}

func (g *destructureGroup) anyComputed() bool {
	for _, v := range g.elems {
		if v.Kind == analysis.KindComputed {
			return true
		}
	}
	return false
}

// collectGroups assembles destructuring groups in declaration order.
// Unmodeled patterns never set PropertyName, so they form no group.
func collectGroups(vars []analysis.Variable) []*destructureGroup {
	var groups []*destructureGroup
	bySynthetic := make(map[string]*destructureGroup)
	byStmt := make(map[source.Span]*destructureGroup)
	for i := range vars {
		v := &vars[i]
		switch {
		case v.Synthetic:
			g := &destructureGroup{synthetic: v}
			bySynthetic[v.Name] = g
			groups = append(groups, g)
		case v.DestructuredFrom != "":
			if g := bySynthetic[v.DestructuredFrom]; g != nil {
				g.elems = append(g.elems, v)
			}
		case v.PropertyName != "":
			g := byStmt[v.StmtSpan]
			if g == nil {
				g = &destructureGroup{}
				byStmt[v.StmtSpan] = g
				groups = append(groups, g)
			}
			g.elems = append(g.elems, v)
		}
	}
	return groups
}

// expandDestructurings replaces destructuring statements that bind reactive
// values with per-name declarations. A shaped call expands around its
// synthetic capture binding; a plain group expands only when at least one
// element came out computed, since an all-static group needs no rewrite.
func (r *componentRewriter) expandDestructurings() error {
	for _, g := range collectGroups(r.ca.Variables) {
		if len(g.elems) == 0 {
			continue
		}
		if g.synthetic == nil && !g.anyComputed() {
			continue
		}
		var err error
		if g.synthetic != nil {
			err = r.expandShapedGroup(g)
		} else {
			err = r.expandPlainGroup(g)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// expandShapedGroup writes
//
//	const __query_0 = query(...);
//	const data = computed(() => __query_0.data.value);
//	const refetch = __query_0.refetch;
//
// over the original destructuring statement. Signal-shaped properties read
// through .value inside a computed; plain properties bind once.
func (r *componentRewriter) expandShapedGroup(g *destructureGroup) error {
	syn := g.synthetic
	call, err := r.buf.Slice(int(syn.InitSpan.Start), int(syn.InitSpan.End))
	if err != nil {
		return err
	}
	lines := []string{fmt.Sprintf("%s %s = %s;", syn.Keyword, syn.Name, call)}
	for _, v := range g.elems {
		if v.Kind == analysis.KindComputed {
			lines = append(lines, fmt.Sprintf("%s %s = computed(() => %s.%s.value);",
				v.Keyword, v.Name, syn.Name, v.PropertyName))
			r.used.Computed = true
		} else {
			lines = append(lines, fmt.Sprintf("%s %s = %s.%s;",
				v.Keyword, v.Name, syn.Name, v.PropertyName))
		}
	}
	return r.overwriteStatement(syn.StmtSpan, lines)
}

// expandPlainGroup writes one declaration per destructured name, reading
// its property off the initializer expression. Reads inside the expression
// were already rewritten, so the property access needs no further .value.
func (r *componentRewriter) expandPlainGroup(g *destructureGroup) error {
	lead := g.elems[0]
	expr, err := r.buf.Slice(int(lead.InitSpan.Start), int(lead.InitSpan.End))
	if err != nil {
		return err
	}
	if !dotChain(expr) {
		expr = "(" + expr + ")"
	}
	var lines []string
	for _, v := range g.elems {
		if v.Kind == analysis.KindComputed {
			lines = append(lines, fmt.Sprintf("%s %s = computed(() => %s.%s);",
				v.Keyword, v.Name, expr, v.PropertyName))
			r.used.Computed = true
		} else {
			lines = append(lines, fmt.Sprintf("%s %s = %s.%s;",
				v.Keyword, v.Name, expr, v.PropertyName))
		}
	}
	return r.overwriteStatement(lead.StmtSpan, lines)
}

func (r *componentRewriter) overwriteStatement(stmt source.Span, lines []string) error {
	start, end := int(stmt.Start), int(stmt.End)
	indent := statementIndent(r.buf.Original(), start)
	return r.buf.Overwrite(start, end, strings.Join(lines, "\n"+indent))
}

// dotChain reports whether expr is a bare identifier or property chain,
// which can take a further property suffix without parentheses.
func dotChain(expr string) bool {
	if expr == "" {
		return false
	}
	for _, part := range strings.Split(expr, ".") {
		if !identLike(part) {
			return false
		}
	}
	return true
}

func identLike(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '$':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
