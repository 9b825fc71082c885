package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"impulse/internal/analysis"
	"impulse/internal/source"
)

// AnalysisOutput is the machine-readable form of the classification facts:
// per file, each component with its bindings, reads, mutation sites, and
// markup elements.
type AnalysisOutput struct {
	Files []FileAnalysisJSON `json:"files"`
}

type FileAnalysisJSON struct {
	File       string          `json:"file"`
	Language   string          `json:"language"`
	Components []ComponentJSON `json:"components,omitempty"`
	ErrorSpans []LocationJSON  `json:"error_spans,omitempty"`
}

type ComponentJSON struct {
	Name              string         `json:"name"`
	Location          LocationJSON   `json:"location"`
	ExpressionBody    bool           `json:"expression_body,omitempty"`
	DestructuredProps bool           `json:"destructured_props,omitempty"`
	Bindings          []BindingJSON  `json:"bindings,omitempty"`
	Reads             []ReadJSON     `json:"reads,omitempty"`
	Mutations         []MutationJSON `json:"mutations,omitempty"`
	Markup            []ElementJSON  `json:"markup,omitempty"`
}

type BindingJSON struct {
	Name      string       `json:"name"`
	Kind      string       `json:"kind"`
	Keyword   string       `json:"keyword,omitempty"`
	Synthetic bool         `json:"synthetic,omitempty"`
	Property  string       `json:"property,omitempty"`
	From      string       `json:"from,omitempty"`
	Location  LocationJSON `json:"location"`
}

type ReadJSON struct {
	Name     string       `json:"name"`
	InMarkup bool         `json:"in_markup,omitempty"`
	Location LocationJSON `json:"location"`
}

type MutationJSON struct {
	Kind             string       `json:"kind"`
	Root             string       `json:"root"`
	RootKind         string       `json:"root_kind"`
	Method           string       `json:"method,omitempty"`
	Property         string       `json:"property,omitempty"`
	MarkupReferenced bool         `json:"markup_referenced,omitempty"`
	Location         LocationJSON `json:"location"`
}

type ElementJSON struct {
	Tag       string       `json:"tag,omitempty"`
	Component bool         `json:"component,omitempty"`
	Attrs     int          `json:"attrs,omitempty"`
	Children  int          `json:"children,omitempty"`
	Skip      bool         `json:"skip,omitempty"`
	Location  LocationJSON `json:"location"`
}

// BuildAnalysisOutput converts per-file analyses into their JSON form.
func BuildAnalysisOutput(files []*analysis.FileAnalysis, fs *source.FileSet, opts JSONOpts) AnalysisOutput {
	out := AnalysisOutput{Files: make([]FileAnalysisJSON, 0, len(files))}
	for _, fa := range files {
		if fa == nil {
			continue
		}
		fj := FileAnalysisJSON{
			File:     formatPath(fs, fa.File, opts.PathMode),
			Language: fa.Lang.String(),
		}
		for _, span := range fa.ErrorSpans {
			fj.ErrorSpans = append(fj.ErrorSpans, makeLocation(span, fs, opts.PathMode, opts.IncludePositions))
		}
		for i := range fa.Components {
			fj.Components = append(fj.Components, buildComponentJSON(&fa.Components[i], fs, opts))
		}
		out.Files = append(out.Files, fj)
	}
	return out
}

func buildComponentJSON(ca *analysis.ComponentAnalysis, fs *source.FileSet, opts JSONOpts) ComponentJSON {
	comp := ca.Component
	cj := ComponentJSON{
		Name:              comp.Name,
		Location:          makeLocation(comp.Span, fs, opts.PathMode, opts.IncludePositions),
		ExpressionBody:    comp.ExpressionBody,
		DestructuredProps: comp.DestructuredProps,
	}
	for _, v := range ca.Variables {
		cj.Bindings = append(cj.Bindings, BindingJSON{
			Name:      v.Name,
			Kind:      v.Kind.String(),
			Keyword:   v.Keyword,
			Synthetic: v.Synthetic,
			Property:  v.PropertyName,
			From:      v.DestructuredFrom,
			Location:  makeLocation(v.Span, fs, opts.PathMode, opts.IncludePositions),
		})
	}
	for _, r := range ca.Reads {
		cj.Reads = append(cj.Reads, ReadJSON{
			Name:     r.Name,
			InMarkup: r.InMarkup,
			Location: makeLocation(r.Span, fs, opts.PathMode, opts.IncludePositions),
		})
	}
	for _, m := range ca.Mutations {
		cj.Mutations = append(cj.Mutations, MutationJSON{
			Kind:             m.Kind.String(),
			Root:             m.Root,
			RootKind:         m.RootKind.String(),
			Method:           m.Method,
			Property:         m.Property,
			MarkupReferenced: m.MarkupReferenced,
			Location:         makeLocation(m.Span, fs, opts.PathMode, opts.IncludePositions),
		})
	}
	for _, el := range ca.Elements {
		cj.Markup = append(cj.Markup, ElementJSON{
			Tag:       el.Tag,
			Component: el.TagIsComponent,
			Attrs:     len(el.Attrs),
			Children:  len(el.Children),
			Skip:      el.Skip,
			Location:  makeLocation(el.Span, fs, opts.PathMode, opts.IncludePositions),
		})
	}
	return cj
}

// AnalysisJSON writes the analyses as an indented JSON document.
func AnalysisJSON(w io.Writer, files []*analysis.FileAnalysis, fs *source.FileSet, opts JSONOpts) error {
	output := BuildAnalysisOutput(files, fs, opts)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// FormatAnalysisPretty prints the classification facts as an indented text
// report, one block per file.
func FormatAnalysisPretty(w io.Writer, files []*analysis.FileAnalysis, fs *source.FileSet) error {
	first := true
	for _, fa := range files {
		if fa == nil {
			continue
		}
		if !first {
			fmt.Fprintln(w)
		}
		first = false

		file := fs.Get(fa.File)
		fmt.Fprintf(w, "%s (%s)\n", file.FormatPath("auto", fs.BaseDir()), fa.Lang)
		for _, span := range fa.ErrorSpans {
			fmt.Fprintf(w, "  parse error at %s\n", formatSpan(span, fs))
		}
		if len(fa.Components) == 0 {
			fmt.Fprintln(w, "  no components")
			continue
		}
		for ci := range fa.Components {
			formatComponentPretty(w, fs, &fa.Components[ci])
		}
	}
	return nil
}

func formatComponentPretty(w io.Writer, fs *source.FileSet, ca *analysis.ComponentAnalysis) {
	comp := ca.Component
	fmt.Fprintf(w, "  component %s at %s", comp.Name, formatSpan(comp.Span, fs))
	if comp.ExpressionBody {
		fmt.Fprint(w, " (expression body)")
	}
	if comp.DestructuredProps {
		fmt.Fprint(w, " (destructured props)")
	}
	fmt.Fprintln(w)

	if len(ca.Variables) > 0 {
		fmt.Fprintln(w, "    bindings:")
		for _, v := range ca.Variables {
			fmt.Fprintf(w, "      %-20s %-8s", v.Name, v.Kind)
			if v.Synthetic {
				fmt.Fprint(w, " synthetic")
			} else if v.Keyword != "" {
				fmt.Fprintf(w, " %s", v.Keyword)
			}
			if v.DestructuredFrom != "" {
				fmt.Fprintf(w, " from %s", v.DestructuredFrom)
				if v.PropertyName != "" && v.PropertyName != v.Name {
					fmt.Fprintf(w, ".%s", v.PropertyName)
				}
			}
			fmt.Fprintf(w, " at %s\n", formatSpan(v.Span, fs))
		}
	}
	if len(ca.Reads) > 0 {
		fmt.Fprintln(w, "    reads:")
		for _, r := range ca.Reads {
			fmt.Fprintf(w, "      %-20s at %s", r.Name, formatSpan(r.Span, fs))
			if r.InMarkup {
				fmt.Fprint(w, " (markup)")
			}
			fmt.Fprintln(w)
		}
	}
	if len(ca.Mutations) > 0 {
		fmt.Fprintln(w, "    mutations:")
		for i := range ca.Mutations {
			m := &ca.Mutations[i]
			fmt.Fprintf(w, "      %-15s %s (%s)", m.Kind, mutationTarget(m), m.RootKind)
			if m.MarkupReferenced {
				fmt.Fprint(w, " (read in markup)")
			}
			fmt.Fprintf(w, " at %s\n", formatSpan(m.Span, fs))
		}
	}
	if len(ca.Elements) > 0 {
		fmt.Fprintln(w, "    markup:")
		for _, el := range ca.Elements {
			tag := "<>"
			if el.Tag != "" {
				tag = "<" + el.Tag + ">"
			}
			fmt.Fprintf(w, "      %-20s %d attrs, %d children", tag, len(el.Attrs), len(el.Children))
			if el.Skip {
				fmt.Fprint(w, " (skipped)")
			}
			fmt.Fprintf(w, " at %s\n", formatSpan(el.Span, fs))
		}
	}
}

// mutationTarget renders the mutated access path as it reads in source.
func mutationTarget(m *analysis.Mutation) string {
	switch {
	case m.Method != "":
		return m.Root + "." + m.Method + "()"
	case m.Property != "":
		return m.Root + "." + m.Property
	default:
		return m.Root
	}
}

