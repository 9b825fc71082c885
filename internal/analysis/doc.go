// Package analysis implements the static analysis half of the compiler:
// finding components, classifying their local bindings, locating in-place
// mutations, and mapping which bindings the rendered markup depends on.
//
// The entry point is AnalyzeFile, which runs the stages in order over one
// parsed file and returns a pure-data result. Every stage is also callable
// on its own:
//
//   - DetectComponents finds top-level functions that return markup.
//   - ClassifyVariables assigns each component-local binding a reactivity
//     kind (static, signal, or computed) in one forward pass.
//   - CollectReads lists every read position of those bindings, excluding
//     declaration names, binding patterns, and shadowed occurrences.
//   - DetectMutations finds in-place mutation sites and resolves each to
//     its root binding.
//   - AnalyzeMarkup builds the element tree per markup root and flags
//     which embedded expressions are reactive.
//
// Results reference the source only through byte spans, so they stay
// usable after the syntax tree is closed. Constructs the analysis does not
// model are classified static and otherwise ignored: a missed
// classification leaves code unchanged, which downstream stages treat as
// "not reactive" rather than an error.
package analysis
