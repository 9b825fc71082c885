package diag

import (
	"fmt"

	"impulse/internal/source"
)

// Note attaches secondary context to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// TextEdit is one concrete replacement inside a file. OldText, when set, is
// a guard: the fix engine refuses the edit if the current text differs.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// FixKind coarsely classifies a fix for UI listings.
type FixKind uint8

const (
	FixKindQuickFix FixKind = iota
	FixKindRefactor
	FixKindRewrite
)

func (k FixKind) String() string {
	switch k {
	case FixKindQuickFix:
		return "quickfix"
	case FixKindRefactor:
		return "refactor"
	case FixKindRewrite:
		return "rewrite"
	}
	return "unknown"
}

// FixApplicability states how much confidence the producer has in a fix.
type FixApplicability uint8

const (
	// FixApplicabilityManualReview marks advisory fixes: the title is the
	// suggestion, the edits (if any) need a human decision.
	FixApplicabilityManualReview FixApplicability = iota
	FixApplicabilitySafeWithHeuristics
	FixApplicabilityAlwaysSafe
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "always-safe"
	case FixApplicabilitySafeWithHeuristics:
		return "safe-with-heuristics"
	case FixApplicabilityManualReview:
		return "manual-review"
	}
	return "unknown"
}

// FixBuildContext carries what a FixThunk needs to materialise edits.
type FixBuildContext struct {
	FileSet *source.FileSet
}

// FixThunk lazily builds edits for fixes that are expensive to construct.
type FixThunk func(FixBuildContext) ([]TextEdit, error)

// Fix describes one suggested correction. Title alone is the human-readable
// suggestion; Edits make it machine-applicable.
type Fix struct {
	ID            string
	Title         string
	Kind          FixKind
	Applicability FixApplicability
	IsPreferred   bool
	// RequiresAll marks fixes that only make sense when every sibling fix
	// is applied together.
	RequiresAll bool
	Edits       []TextEdit
	Thunk       FixThunk `msgpack:"-" json:"-"`
}

// Diagnostic is one finding with its location and optional fixes.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []*Fix
}

// Resolve returns a copy of the fix with its thunk (if any) run. On thunk
// failure the copy comes back edit-less alongside the error, so callers can
// still render the fix's metadata.
func (f *Fix) Resolve(ctx FixBuildContext) (Fix, error) {
	resolved := *f
	if len(resolved.Edits) == 0 && resolved.Thunk != nil {
		edits, err := resolved.Thunk(ctx)
		if err != nil {
			return resolved, fmt.Errorf("materialize fix %q: %w", f.Title, err)
		}
		resolved.Edits = edits
	}
	return resolved, nil
}

// MaterializeFixes resolves thunked fixes into concrete edits. Fixes that
// already carry edits pass through unchanged.
func MaterializeFixes(ctx FixBuildContext, fixes []*Fix) ([]Fix, error) {
	out := make([]Fix, 0, len(fixes))
	for _, f := range fixes {
		if f == nil {
			continue
		}
		resolved, err := f.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}
