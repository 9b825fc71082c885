package syntax

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// Tree couples a parsed syntax tree with the source bytes it was parsed
// from, so node text can be sliced without threading the source around.
type Tree struct {
	inner  *ts.Tree
	source []byte
	lang   Language
}

// Parse parses content with the grammar for lang.
//
// tree-sitter recovers from syntax errors, so a malformed file still
// produces a tree; inspect ErrorRegions to find the broken ranges. An error
// is returned only when the parser itself cannot be configured or yields no
// tree at all.
func Parse(content []byte, lang Language) (*Tree, error) {
	parser := ts.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(lang.grammar()); err != nil {
		return nil, fmt.Errorf("select %s grammar: %w", lang, err)
	}

	inner := parser.Parse(content, nil)
	if inner == nil {
		return nil, fmt.Errorf("%s parser produced no tree", lang)
	}
	return &Tree{inner: inner, source: content, lang: lang}, nil
}

// Close releases the tree's C-side memory. Nodes obtained from the tree
// must not be used afterwards. Close is idempotent.
func (t *Tree) Close() {
	if t.inner != nil {
		t.inner.Close()
		t.inner = nil
	}
}

// Root returns the root node of the tree.
func (t *Tree) Root() *ts.Node { return t.inner.RootNode() }

// Source returns the bytes the tree was parsed from.
func (t *Tree) Source() []byte { return t.source }

// Lang returns the grammar the tree was parsed with.
func (t *Tree) Lang() Language { return t.lang }

// Text returns the source text covered by n.
func (t *Tree) Text(n *ts.Node) string { return n.Utf8Text(t.source) }

// HasErrors reports whether the tree contains any ERROR or MISSING nodes.
func (t *Tree) HasErrors() bool { return t.inner.RootNode().HasError() }
