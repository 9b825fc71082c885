package syntax

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"

	"impulse/internal/source"
)

// QueryCapture is one node captured by a tree query.
type QueryCapture struct {
	Name string // capture name without the leading @
	Kind string
	Span source.Span
	Text string
}

// Query runs a tree-sitter query over the whole tree and returns every
// capture in match order. Queries are ad-hoc (inspect --query), so the
// compiled query is not cached.
func (t *Tree) Query(file source.FileID, src string) ([]QueryCapture, error) {
	q, qerr := ts.NewQuery(t.lang.grammar(), src)
	if qerr != nil {
		return nil, fmt.Errorf("invalid query: %v", qerr)
	}
	defer q.Close()

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	names := q.CaptureNames()
	var out []QueryCapture
	matches := cursor.Matches(q, t.Root(), t.source)
	for m := matches.Next(); m != nil; m = matches.Next() {
		for _, c := range m.Captures {
			node := c.Node
			out = append(out, QueryCapture{
				Name: names[c.Index],
				Kind: node.Kind(),
				Span: NodeSpan(file, &node),
				Text: t.Text(&node),
			})
		}
	}
	return out, nil
}
