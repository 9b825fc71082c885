// Package diag defines the diagnostic model shared by all compiler phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     produced by the parse / analysis / rewrite passes.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//   - Model fix suggestions as structured edits that the driver or CLI can
//     materialise and optionally apply.
//
// # Scope
//
// Package diag does not perform any formatting, IO, CLI integration, or
// interactive behaviour. Rendering responsibilities live in internal/diagfmt,
// whereas orchestration and application of fixes lives in internal/fix and the
// driver layer.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with a stable band-based
//     ID (RCT2001) and a public kebab-case Name (non-reactive-mutation).
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//   - Fixes – optional Fix records describing how to address the problem.
//
// Every diagnostic in this compiler is advisory: analysis never aborts a file
// because of one, and the reactivity checks (RCT band) are warnings by
// construction. The caller decides whether warnings fail a build.
//
// # Fix suggestions
//
// Fix represents a possible correction. The Title alone is the human-readable
// suggestion; Edits, when present, make the fix machine-applicable. Each fix
// carries an Applicability confidence level (AlwaysSafe, SafeWithHeuristics,
// ManualReview) that the fix engine consults before touching files, an
// optional IsPreferred marker, and an optional Thunk for lazily built edits.
// TextEdit.OldText acts as a guard: the engine validates the current text
// before applying.
//
// # Emitting diagnostics
//
// Phases emit through a diag.Reporter to decouple emission from storage,
// either directly via Report(...) or through a ReportBuilder chain
// (ReportWarning(...).WithNote(...).WithFix(...).Emit()). BagReporter
// aggregates into a Bag, which supports sorting and deduplication.
package diag
