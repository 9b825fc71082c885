package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	ts "github.com/tree-sitter/go-tree-sitter"

	"impulse/internal/source"
	"impulse/internal/syntax"
)

// maxLeafText caps the quoted source text shown for leaf nodes in the
// pretty dump. JSON output carries the full text.
const maxLeafText = 40

// NodeJSON is one parse-tree node in JSON output. Only named nodes are
// emitted; punctuation and keyword tokens are left out.
type NodeJSON struct {
	Kind     string      `json:"kind"`
	Span     source.Span `json:"span"`
	Text     string      `json:"text,omitempty"`
	Children []NodeJSON  `json:"children,omitempty"`
}

// FormatTreePretty prints the parse tree one node per line, named children
// only, with the node kind, its resolved span, and the source text of
// leaves.
func FormatTreePretty(w io.Writer, tree *syntax.Tree, file source.FileID, fs *source.FileSet) error {
	root := tree.Root()
	if root == nil {
		return fmt.Errorf("parse tree has no root")
	}
	writeNodeLabel(w, tree, file, fs, root)
	writeNodeChildren(w, tree, file, fs, root, "")
	return nil
}

func writeNodeChildren(w io.Writer, tree *syntax.Tree, file source.FileID, fs *source.FileSet, n *ts.Node, prefix string) {
	children := syntax.NamedChildren(n)
	for i, child := range children {
		connector, childPrefix := "├─ ", prefix+"│  "
		if i == len(children)-1 {
			connector, childPrefix = "└─ ", prefix+"   "
		}
		fmt.Fprint(w, prefix, connector)
		writeNodeLabel(w, tree, file, fs, child)
		writeNodeChildren(w, tree, file, fs, child, childPrefix)
	}
}

func writeNodeLabel(w io.Writer, tree *syntax.Tree, file source.FileID, fs *source.FileSet, n *ts.Node) {
	span := syntax.NodeSpan(file, n)
	fmt.Fprintf(w, "%s (span: %s)", n.Kind(), formatSpan(span, fs))
	if n.IsMissing() {
		fmt.Fprint(w, " (missing)")
	}
	if n.NamedChildCount() == 0 {
		if text := leafText(tree, n); text != "" {
			fmt.Fprintf(w, " %s", text)
		}
	}
	fmt.Fprintln(w)
}

func leafText(tree *syntax.Tree, n *ts.Node) string {
	text := tree.Text(n)
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) > maxLeafText {
		text = string(runes[:maxLeafText]) + "..."
	}
	return fmt.Sprintf("%q", text)
}

// BuildTreeOutput converts the parse tree into its JSON form.
func BuildTreeOutput(tree *syntax.Tree, file source.FileID) NodeJSON {
	return buildNodeJSON(tree, file, tree.Root())
}

func buildNodeJSON(tree *syntax.Tree, file source.FileID, n *ts.Node) NodeJSON {
	node := NodeJSON{
		Kind: n.Kind(),
		Span: syntax.NodeSpan(file, n),
	}
	if n.NamedChildCount() == 0 {
		node.Text = tree.Text(n)
	}
	for _, child := range syntax.NamedChildren(n) {
		node.Children = append(node.Children, buildNodeJSON(tree, file, child))
	}
	return node
}

// FormatTreeJSON writes the parse tree as an indented JSON document.
func FormatTreeJSON(w io.Writer, tree *syntax.Tree, file source.FileID) error {
	if tree.Root() == nil {
		return fmt.Errorf("parse tree has no root")
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildTreeOutput(tree, file))
}

// formatSpan resolves a span to "startLine:startCol-endLine:endCol" when a
// FileSet is available, or falls back to raw byte offsets.
func formatSpan(span source.Span, fs *source.FileSet) string {
	if fs != nil {
		start, end := fs.Resolve(span)
		return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
	}
	return fmt.Sprintf("span(%d-%d)", span.Start, span.End)
}
