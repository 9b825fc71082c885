package fix

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"impulse/internal/diag"
	"impulse/internal/source"
)

func writeTempSource(t *testing.T, content string) (*source.FileSet, source.FileID, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "app.tsx")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp source: %v", err)
	}
	fs := source.NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load temp source: %v", err)
	}
	return fs, id, path
}

func TestGatherCandidatesSkipsDuplicateFixIDs(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("app.tsx", []byte("const items = [];"))
	span := source.Span{File: fileID, Start: 0, End: 5}

	diagnostics := []*diag.Diagnostic{{
		Severity: diag.SevWarning,
		Code:     diag.RctNonReactiveMutation,
		Message:  "items is mutated but never declared reactive",
		Primary:  span,
		Fixes: []*diag.Fix{
			{
				ID:    "fix-duplicate",
				Title: "declare with let",
				Edits: []diag.TextEdit{{Span: span, NewText: "let"}},
			},
			{
				ID:    "fix-duplicate",
				Title: "declare with let again",
				Edits: []diag.TextEdit{{Span: span, NewText: "let"}},
			},
		},
	}}

	ctx := diag.FixBuildContext{FileSet: fs}
	candidates, skips := gatherCandidates(ctx, diagnostics)

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if len(skips) != 1 {
		t.Fatalf("expected 1 skipped fix, got %d", len(skips))
	}
	if skips[0].ID != "fix-duplicate" {
		t.Fatalf("expected skipped fix id 'fix-duplicate', got %q", skips[0].ID)
	}
	if skips[0].Reason != "duplicate fix id" {
		t.Fatalf("expected duplicate fix reason, got %q", skips[0].Reason)
	}
}

func TestGatherCandidatesSynthesizesIDs(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("app.tsx", []byte("const items = [];"))
	span := source.Span{File: fileID, Start: 0, End: 5}

	diagnostics := []*diag.Diagnostic{{
		Severity: diag.SevWarning,
		Code:     diag.RctNonReactiveMutation,
		Message:  "items is mutated but never declared reactive",
		Primary:  span,
		Fixes: []*diag.Fix{{
			Title: "declare with let",
			Edits: []diag.TextEdit{{Span: span, NewText: "let", OldText: "const"}},
		}},
	}}

	ctx := diag.FixBuildContext{FileSet: fs}
	candidates, skips := gatherCandidates(ctx, diagnostics)

	if len(skips) != 0 {
		t.Fatalf("expected no skips, got %d: %+v", len(skips), skips)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	want := fmt.Sprintf("%s-%d-%d-%d", diag.RctNonReactiveMutation.ID(), span.File, span.Start, 0)
	if candidates[0].fix.ID != want {
		t.Fatalf("expected synthesized id %q, got %q", want, candidates[0].fix.ID)
	}
}

func TestGatherCandidatesSkipsEditlessFixes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("app.tsx", []byte("function Card({ title }) {}"))
	span := source.Span{File: fileID, Start: 14, End: 23}

	diagnostics := []*diag.Diagnostic{{
		Severity: diag.SevWarning,
		Code:     diag.RctPropsDestructuring,
		Message:  "component Card destructures its props",
		Primary:  span,
		Fixes:    []*diag.Fix{Advisory("accept a single props parameter")},
	}}

	ctx := diag.FixBuildContext{FileSet: fs}
	candidates, skips := gatherCandidates(ctx, diagnostics)

	if len(candidates) != 0 {
		t.Fatalf("expected no candidates, got %d", len(candidates))
	}
	if len(skips) != 1 {
		t.Fatalf("expected 1 skip, got %d", len(skips))
	}
	if skips[0].Reason != "fix has no edits" {
		t.Fatalf("expected edit-less skip reason, got %q", skips[0].Reason)
	}
}

func TestSelectCandidatesOnce(t *testing.T) {
	d := &diag.Diagnostic{Code: diag.RctNonReactiveMutation}
	candidates := []candidate{
		{diag: d, fix: diag.Fix{ID: "review", Applicability: diag.FixApplicabilityManualReview}, order: 0},
		{diag: d, fix: diag.Fix{ID: "grouped", RequiresAll: true, Applicability: diag.FixApplicabilityAlwaysSafe}, order: 1},
		{diag: d, fix: diag.Fix{ID: "safe", Applicability: diag.FixApplicabilityAlwaysSafe}, order: 2},
	}

	selected, skipped := selectCandidates(candidates, ApplyOptions{Mode: ApplyModeOnce})

	if len(selected) != 1 || selected[0].fix.ID != "safe" {
		t.Fatalf("expected the always-safe candidate, got %+v", selected)
	}
	if len(skipped) != 1 || skipped[0].ID != "grouped" {
		t.Fatalf("expected the grouped candidate skipped, got %+v", skipped)
	}
	if skipped[0].Reason != "fix requires all fixes to be applied" {
		t.Fatalf("unexpected skip reason %q", skipped[0].Reason)
	}
}

func TestSelectCandidatesOnceFallsBack(t *testing.T) {
	d := &diag.Diagnostic{Code: diag.RctNonReactiveMutation}
	candidates := []candidate{
		{diag: d, fix: diag.Fix{ID: "heuristic", Applicability: diag.FixApplicabilitySafeWithHeuristics}, order: 0},
		{diag: d, fix: diag.Fix{ID: "review", Applicability: diag.FixApplicabilityManualReview}, order: 1},
	}

	selected, _ := selectCandidates(candidates, ApplyOptions{Mode: ApplyModeOnce})

	if len(selected) != 1 || selected[0].fix.ID != "heuristic" {
		t.Fatalf("expected fallback to the first candidate, got %+v", selected)
	}
}

func TestSelectCandidatesAll(t *testing.T) {
	d := &diag.Diagnostic{Code: diag.RctNonReactiveMutation}
	candidates := []candidate{
		{diag: d, fix: diag.Fix{ID: "safe", Applicability: diag.FixApplicabilityAlwaysSafe}, order: 0},
		{diag: d, fix: diag.Fix{ID: "review", Title: "needs a human", Applicability: diag.FixApplicabilityManualReview}, order: 1},
	}

	selected, skipped := selectCandidates(candidates, ApplyOptions{Mode: ApplyModeAll})

	if len(selected) != 1 || selected[0].fix.ID != "safe" {
		t.Fatalf("expected only the always-safe candidate, got %+v", selected)
	}
	if len(skipped) != 1 {
		t.Fatalf("expected 1 skip, got %d", len(skipped))
	}
	if skipped[0].Reason != "applicability is manual-review" {
		t.Fatalf("unexpected skip reason %q", skipped[0].Reason)
	}
}

func TestSelectCandidatesByID(t *testing.T) {
	d := &diag.Diagnostic{Code: diag.RctNonReactiveMutation}
	candidates := []candidate{
		{diag: d, fix: diag.Fix{ID: "first"}, order: 0},
		{diag: d, fix: diag.Fix{ID: "grouped", RequiresAll: true}, order: 1},
	}

	t.Run("found", func(t *testing.T) {
		selected, skipped := selectCandidates(candidates, ApplyOptions{Mode: ApplyModeID, TargetID: "first"})
		if len(selected) != 1 || selected[0].fix.ID != "first" {
			t.Fatalf("expected candidate 'first', got %+v", selected)
		}
		if len(skipped) != 0 {
			t.Fatalf("expected no skips, got %+v", skipped)
		}
	})

	t.Run("requires all", func(t *testing.T) {
		selected, skipped := selectCandidates(candidates, ApplyOptions{Mode: ApplyModeID, TargetID: "grouped"})
		if len(selected) != 0 {
			t.Fatalf("expected no selection, got %+v", selected)
		}
		if len(skipped) != 1 || skipped[0].Reason != "fix requires all fixes to be applied" {
			t.Fatalf("unexpected skips %+v", skipped)
		}
	})

	t.Run("not found", func(t *testing.T) {
		selected, skipped := selectCandidates(candidates, ApplyOptions{Mode: ApplyModeID, TargetID: "missing"})
		if len(selected) != 0 {
			t.Fatalf("expected no selection, got %+v", selected)
		}
		if len(skipped) != 1 || skipped[0].Reason != "fix id not found" {
			t.Fatalf("unexpected skips %+v", skipped)
		}
	})
}

func TestApplyRewritesFileOnDisk(t *testing.T) {
	fs, id, path := writeTempSource(t, "const count = 0;\n")
	span := source.Span{File: id, Start: 0, End: 5}

	diagnostics := []*diag.Diagnostic{{
		Severity: diag.SevWarning,
		Code:     diag.RctNonReactiveMutation,
		Message:  "count is mutated but never declared reactive",
		Primary:  span,
		Fixes: []*diag.Fix{
			ReplaceSpan("declare \"count\" with let so its mutations become reactive", span, "let", "const", Preferred()),
		},
	}}

	result, err := Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeOnce})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if len(result.Applied) != 1 {
		t.Fatalf("expected 1 applied fix, got %d", len(result.Applied))
	}
	if result.Applied[0].EditCount != 1 {
		t.Fatalf("expected 1 edit, got %d", result.Applied[0].EditCount)
	}
	if len(result.FileChanges) != 1 {
		t.Fatalf("expected 1 file change, got %d", len(result.FileChanges))
	}
	if result.FileChanges[0].Path != "app.tsx" {
		t.Fatalf("expected relative path 'app.tsx', got %q", result.FileChanges[0].Path)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "let count = 0;\n" {
		t.Fatalf("expected rewritten file, got %q", string(got))
	}
}

func TestApplyMultipleEditsSameFile(t *testing.T) {
	fs, id, path := writeTempSource(t, "const a = 1;\nconst b = 2;\n")

	diagnostics := []*diag.Diagnostic{
		{
			Severity: diag.SevWarning,
			Code:     diag.RctNonReactiveMutation,
			Message:  "a is mutated but never declared reactive",
			Primary:  source.Span{File: id, Start: 0, End: 5},
			Fixes: []*diag.Fix{
				ReplaceSpan("declare \"a\" with let", source.Span{File: id, Start: 0, End: 5}, "let", "const", WithID("fix-a")),
			},
		},
		{
			Severity: diag.SevWarning,
			Code:     diag.RctNonReactiveMutation,
			Message:  "b is mutated but never declared reactive",
			Primary:  source.Span{File: id, Start: 13, End: 18},
			Fixes: []*diag.Fix{
				ReplaceSpan("declare \"b\" with let", source.Span{File: id, Start: 13, End: 18}, "let", "const", WithID("fix-b")),
			},
		},
	}

	result, err := Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if len(result.Applied) != 2 {
		t.Fatalf("expected 2 applied fixes, got %d (skipped: %+v)", len(result.Applied), result.Skipped)
	}
	if len(result.FileChanges) != 1 || result.FileChanges[0].EditCount != 2 {
		t.Fatalf("expected one change with 2 edits, got %+v", result.FileChanges)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "let a = 1;\nlet b = 2;\n" {
		t.Fatalf("expected both declarations rewritten, got %q", string(got))
	}
}

func TestApplySkipsVirtualFiles(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("app.tsx", []byte("const count = 0;"))
	span := source.Span{File: id, Start: 0, End: 5}

	diagnostics := []*diag.Diagnostic{{
		Severity: diag.SevWarning,
		Code:     diag.RctNonReactiveMutation,
		Message:  "count is mutated but never declared reactive",
		Primary:  span,
		Fixes:    []*diag.Fix{ReplaceSpan("declare with let", span, "let", "const")},
	}}

	result, err := Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeOnce})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if len(result.Applied) != 0 {
		t.Fatalf("expected nothing applied, got %+v", result.Applied)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Reason != "target file is virtual" {
		t.Fatalf("expected virtual-file skip, got %+v", result.Skipped)
	}
}

func TestApplyGuardMismatch(t *testing.T) {
	fs, id, path := writeTempSource(t, "var count = 0;\n")
	span := source.Span{File: id, Start: 0, End: 5}

	diagnostics := []*diag.Diagnostic{{
		Severity: diag.SevWarning,
		Code:     diag.RctNonReactiveMutation,
		Message:  "count is mutated but never declared reactive",
		Primary:  span,
		Fixes:    []*diag.Fix{ReplaceSpan("declare with let", span, "let", "const")},
	}}

	result, err := Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeOnce})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Reason != "existing text does not match expected content" {
		t.Fatalf("expected guard-mismatch skip, got %+v", result.Skipped)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "var count = 0;\n" {
		t.Fatalf("file should be untouched, got %q", string(got))
	}
}

func TestApplyConflictingFixSkipped(t *testing.T) {
	fs, id, path := writeTempSource(t, "const count = 0;\n")
	span := source.Span{File: id, Start: 0, End: 5}

	diagnostics := []*diag.Diagnostic{{
		Severity: diag.SevWarning,
		Code:     diag.RctNonReactiveMutation,
		Message:  "count is mutated but never declared reactive",
		Primary:  span,
		Fixes: []*diag.Fix{
			ReplaceSpan("declare with let", span, "let", "const", WithID("fix-let")),
			ReplaceSpan("declare with var", span, "var", "const", WithID("fix-var")),
		},
	}}

	result, err := Apply(fs, diagnostics, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if len(result.Applied) != 1 || result.Applied[0].ID != "fix-let" {
		t.Fatalf("expected only fix-let applied, got %+v", result.Applied)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].ID != "fix-var" {
		t.Fatalf("expected fix-var skipped, got %+v", result.Skipped)
	}
	if !strings.HasPrefix(result.Skipped[0].Reason, "conflicts with previously applied edits") {
		t.Fatalf("unexpected skip reason %q", result.Skipped[0].Reason)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "let count = 0;\n" {
		t.Fatalf("expected the first fix on disk, got %q", string(got))
	}
}

func TestSpansConflict(t *testing.T) {
	mk := func(start, end uint32) diag.TextEdit {
		return diag.TextEdit{Span: source.Span{Start: start, End: end}}
	}

	tests := []struct {
		name string
		a, b diag.TextEdit
		want bool
	}{
		{"disjoint", mk(0, 5), mk(10, 15), false},
		{"touching ends", mk(0, 5), mk(5, 10), false},
		{"overlapping", mk(0, 6), mk(5, 10), true},
		{"nested", mk(0, 10), mk(2, 4), true},
		{"two inserts at same point", mk(3, 3), mk(3, 3), false},
		{"insert inside span", mk(2, 2), mk(0, 5), true},
		{"insert at span start", mk(0, 0), mk(0, 5), true},
		{"insert at span end", mk(5, 5), mk(0, 5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := spansConflict(tt.a, tt.b); got != tt.want {
				t.Fatalf("spansConflict = %v, want %v", got, tt.want)
			}
			if got := spansConflict(tt.b, tt.a); got != tt.want {
				t.Fatalf("spansConflict reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCumulativeDelta(t *testing.T) {
	edits := []diag.TextEdit{
		{Span: source.Span{Start: 0, End: 5}, NewText: "let"},      // -2
		{Span: source.Span{Start: 10, End: 10}, NewText: ".value"}, // +6
	}

	tests := []struct {
		name string
		pos  int
		want int
	}{
		{"before everything", 0, 0},
		{"after first edit", 6, -2},
		{"after both edits", 12, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cumulativeDelta(edits, tt.pos); got != tt.want {
				t.Fatalf("cumulativeDelta(%d) = %d, want %d", tt.pos, got, tt.want)
			}
		})
	}
}
