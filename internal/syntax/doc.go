// Package syntax wraps the tree-sitter parser behind a small, impulse-shaped
// surface.
//
// The package owns grammar selection (TSX, TypeScript, or JavaScript by file
// extension), parsing, and the node helpers the analysis and rewrite stages
// share: span conversion, text slicing, preorder walks, and error-region
// collection.
//
// Trees produced here are concrete syntax trees. tree-sitter is
// error-tolerant: a file with syntax errors still yields a tree, with the
// broken regions marked by ERROR and MISSING nodes. Callers decide whether to
// skip those regions or report them; parsing itself never fails on bad input.
//
// A Tree owns C-side memory and must be released with Close once the callers
// are done reading nodes from it. Nodes are only valid while their Tree is
// open.
package syntax
