package syntax

import (
	"fortio.org/safecast"
	ts "github.com/tree-sitter/go-tree-sitter"

	"impulse/internal/source"
)

// NodeSpan converts a node's byte range into a Span in file.
// Offsets are bounded by the file length, which FileSet already caps at
// uint32, so the conversion cannot fail for nodes of a loaded file.
func NodeSpan(file source.FileID, n *ts.Node) source.Span {
	return source.Span{File: file, Start: toU32(n.StartByte()), End: toU32(n.EndByte())}
}

func toU32(v uint) uint32 {
	n, err := safecast.Conv[uint32](v)
	if err != nil {
		panic("syntax: node offset exceeds uint32")
	}
	return n
}

// Field returns the child of n in the named grammar field, or nil.
func Field(n *ts.Node, name string) *ts.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(name)
}

// NamedChildren returns the named children of n in document order.
// Anonymous tokens (punctuation, keywords) are skipped.
func NamedChildren(n *ts.Node) []*ts.Node {
	if n == nil {
		return nil
	}
	count := n.NamedChildCount()
	out := make([]*ts.Node, 0, count)
	for i := uint(0); i < count; i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// Children returns every child of n, anonymous tokens included.
func Children(n *ts.Node) []*ts.Node {
	if n == nil {
		return nil
	}
	count := n.ChildCount()
	out := make([]*ts.Node, 0, count)
	for i := uint(0); i < count; i++ {
		out = append(out, n.Child(i))
	}
	return out
}

// Walk visits n and its descendants in preorder. Returning false from
// visit prunes the node's subtree.
func Walk(n *ts.Node, visit func(*ts.Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		Walk(n.Child(i), visit)
	}
}

// ErrorRegions collects the spans of ERROR and MISSING nodes under root,
// outermost first, capped at limit (0 means no cap). Subtrees without
// errors are not descended into.
func ErrorRegions(file source.FileID, root *ts.Node, limit int) []source.Span {
	if root == nil || !root.HasError() {
		return nil
	}
	var spans []source.Span
	Walk(root, func(n *ts.Node) bool {
		if limit > 0 && len(spans) >= limit {
			return false
		}
		if n.IsError() || n.IsMissing() {
			spans = append(spans, NodeSpan(file, n))
			return false
		}
		return n.HasError()
	})
	return spans
}
