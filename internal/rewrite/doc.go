// Package rewrite turns analysis results into edited source text.
//
// All passes share one Buffer per file, addressed by original byte
// offsets. The pass order inside a component is fixed: reads are rewritten
// first, mutation sites next, then markup lowering, and declaration wraps
// run last. Mutation sites and markup replace whole expression ranges, so
// they must run before the boundary inserts of the declaration wraps; a
// replaced range that covers an initializer would otherwise take the wrap's
// opening and closing text with it. Later passes slice the buffer's current
// text, so each pass sees the edits of the ones before it.
package rewrite
