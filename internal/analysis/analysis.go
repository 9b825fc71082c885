package analysis

import (
	"impulse/internal/source"
	"impulse/internal/syntax"
)

// maxErrorRegions caps how many parse-error spans a single file reports.
const maxErrorRegions = 16

// Options configures analysis. The zero value analyzes with the default
// call registry.
type Options struct {
	// Calls extends DefaultCallRegistry with project-specific call shapes
	// for destructuring classification.
	Calls CallRegistry
}

func (o Options) registry() CallRegistry {
	return DefaultCallRegistry().Merge(o.Calls)
}

// ComponentAnalysis bundles every per-component result. Component retains
// tree nodes, so a ComponentAnalysis is valid only while the Tree it was
// produced from is open.
type ComponentAnalysis struct {
	Component *Component
	Variables []Variable
	Reads     []ReadSite
	Mutations []Mutation
	Elements  []MarkupElement
	// Expressions lists every reactive-checked JSX interpolation, attribute
	// values included, for transformers that wrap dynamic positions.
	Expressions []JsxExpression
	// MarkupRefs holds the classified binding names read at least once
	// inside the component's markup output.
	MarkupRefs map[string]bool
}

// ReactiveNames returns the names classified signal or computed, synthetic
// captures included.
func (ca *ComponentAnalysis) ReactiveNames() map[string]bool {
	out := make(map[string]bool)
	for _, v := range ca.Variables {
		if v.Kind.Reactive() {
			out[v.Name] = true
		}
	}
	return out
}

// Lookup returns the classified variable with the given name, or nil.
func (ca *ComponentAnalysis) Lookup(name string) *Variable {
	for i := range ca.Variables {
		if ca.Variables[i].Name == name {
			return &ca.Variables[i]
		}
	}
	return nil
}

// FileAnalysis is the full analysis of one parsed file.
type FileAnalysis struct {
	File       source.FileID
	Lang       syntax.Language
	Components []ComponentAnalysis
	// ErrorSpans are the file's parse-error regions, outermost first.
	// Analysis proceeds around them; they surface as advisory diagnostics.
	ErrorSpans []source.Span
}

// AnalyzeFile runs every analysis stage over a parsed tree. It never
// fails: constructs outside the modeled grammar are skipped, parse errors
// are recorded as spans, and a file without components yields an empty
// result.
func AnalyzeFile(tree *syntax.Tree, file source.FileID, opts Options) *FileAnalysis {
	fa := &FileAnalysis{
		File:       file,
		Lang:       tree.Lang(),
		ErrorSpans: syntax.ErrorRegions(file, tree.Root(), maxErrorRegions),
	}
	calls := opts.registry()
	src := tree.Source()
	for _, comp := range DetectComponents(tree, file) {
		fa.Components = append(fa.Components, analyzeComponent(comp, src, file, calls))
	}
	return fa
}

func analyzeComponent(comp *Component, src []byte, file source.FileID, calls CallRegistry) ComponentAnalysis {
	ca := ComponentAnalysis{Component: comp}
	ca.Variables = ClassifyVariables(comp, src, file, calls)

	names := make(map[string]bool, len(ca.Variables))
	for _, v := range ca.Variables {
		if !v.Synthetic {
			names[v.Name] = true
		}
	}
	ca.Reads = CollectReads(comp, src, file, names)

	ca.MarkupRefs = make(map[string]bool)
	for _, r := range ca.Reads {
		if r.InMarkup {
			ca.MarkupRefs[r.Name] = true
		}
	}

	ca.Mutations = DetectMutations(comp, src, file, ca.Variables, ca.MarkupRefs)
	ca.Elements, ca.Expressions = AnalyzeMarkup(comp, src, file, ca.Variables)
	return ca
}
