package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"impulse/internal/analysis"
	"impulse/internal/diagfmt"
	"impulse/internal/driver"
	"impulse/internal/source"
	"impulse/internal/syntax"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] <file>",
	Short: "Dump how the compiler sees one source file",
	Long: `Inspect shows the analysis tables for a file: components, binding
classification, reads, mutations, and markup expressions. It can also dump
the raw syntax tree or run an ad-hoc tree-sitter query against it`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	inspectCmd.Flags().String("what", "analysis", "what to dump (analysis|tree)")
	inspectCmd.Flags().String("query", "", "run a tree-sitter query and print its captures")
}

func runInspect(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	what, err := cmd.Flags().GetString("what")
	if err != nil {
		return fmt.Errorf("failed to get what flag: %w", err)
	}
	queryStr, err := cmd.Flags().GetString("query")
	if err != nil {
		return fmt.Errorf("failed to get query flag: %w", err)
	}

	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	st, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	if st.IsDir() {
		return fmt.Errorf("inspect works on a single file, got directory %q", filePath)
	}

	if queryStr != "" {
		return inspectQuery(filePath, queryStr, format)
	}

	switch what {
	case "tree":
		return inspectTree(filePath, format)
	case "analysis":
		return inspectAnalysis(cmd, filePath, format)
	default:
		return fmt.Errorf("unknown what value: %s (expected analysis|tree)", what)
	}
}

func inspectAnalysis(cmd *cobra.Command, filePath, format string) error {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	calls, _, _, err := projectContext(filePath, false)
	if err != nil {
		return err
	}

	opts := driver.Options{
		Stage:          driver.StageAnalyze,
		MaxDiagnostics: maxDiagnostics,
		Calls:          calls,
	}
	fs, result, err := driver.CompilePath(filePath, opts)
	if err != nil {
		return fmt.Errorf("inspect failed: %w", err)
	}
	if result.Analysis == nil {
		return fmt.Errorf("no analysis produced for %s", filePath)
	}

	files := []*analysis.FileAnalysis{result.Analysis}
	if format == "json" {
		return diagfmt.AnalysisJSON(os.Stdout, files, fs, diagfmt.JSONOpts{IncludePositions: true})
	}
	return diagfmt.FormatAnalysisPretty(os.Stdout, files, fs)
}

func inspectTree(filePath, format string) error {
	fs, id, tree, err := parseForInspect(filePath)
	if err != nil {
		return err
	}
	defer tree.Close()

	if format == "json" {
		return diagfmt.FormatTreeJSON(os.Stdout, tree, id)
	}
	return diagfmt.FormatTreePretty(os.Stdout, tree, id, fs)
}

func inspectQuery(filePath, queryStr, format string) error {
	fs, id, tree, err := parseForInspect(filePath)
	if err != nil {
		return err
	}
	defer tree.Close()

	captures, err := tree.Query(id, queryStr)
	if err != nil {
		return err
	}

	if format == "json" {
		type captureJSON struct {
			Name  string `json:"name"`
			Kind  string `json:"kind"`
			Start uint32 `json:"start"`
			End   uint32 `json:"end"`
			Line  uint32 `json:"line"`
			Col   uint32 `json:"col"`
			Text  string `json:"text"`
		}
		out := make([]captureJSON, 0, len(captures))
		for _, c := range captures {
			start, _ := fs.Resolve(c.Span)
			out = append(out, captureJSON{
				Name:  c.Name,
				Kind:  c.Kind,
				Start: c.Span.Start,
				End:   c.Span.End,
				Line:  start.Line,
				Col:   start.Col,
				Text:  c.Text,
			})
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	for _, c := range captures {
		start, _ := fs.Resolve(c.Span)
		_, printErr := fmt.Fprintf(os.Stdout, "%d:%d\t@%s\t%s\t%s\n", start.Line, start.Col, c.Name, c.Kind, c.Text)
		if printErr != nil {
			return printErr
		}
	}
	if len(captures) == 0 {
		_, printErr := fmt.Fprintln(os.Stdout, "no captures")
		if printErr != nil {
			return printErr
		}
	}
	return nil
}

// parseForInspect loads one file and parses it with the grammar its
// extension selects. The caller owns the returned tree.
func parseForInspect(filePath string) (*source.FileSet, source.FileID, *syntax.Tree, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(filePath)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to load file: %w", err)
	}
	file := fs.Get(id)
	tree, err := syntax.Parse(file.Content, syntax.ForPath(filePath))
	if err != nil {
		return nil, 0, nil, err
	}
	return fs, id, tree, nil
}
