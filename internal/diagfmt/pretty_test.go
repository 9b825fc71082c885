package diagfmt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"impulse/internal/diag"
	"impulse/internal/source"
)

func newVirtualFile(t *testing.T, content string) (*source.FileSet, source.FileID) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("app.tsx", []byte(content))
	return fs, id
}

func TestPrettyHeaderAndUnderline(t *testing.T) {
	fs, id := newVirtualFile(t, "const count = 0;\n")
	bag := diag.NewBag(8)
	bag.Add(diag.NewWarning(diag.RctNonReactiveMutation,
		source.Span{File: id, Start: 6, End: 11},
		"mutation target is never reactive"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})

	want := "app.tsx:1:7: warning RCT2001 [non-reactive-mutation]: mutation target is never reactive\n" +
		"  1 | const count = 0;\n" +
		"    |       ^~~~~\n"
	if got := buf.String(); got != want {
		t.Errorf("output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs, id := newVirtualFile(t, "const count = 0;\n")
	d := diag.NewWarning(diag.RctNonReactiveMutation,
		source.Span{File: id, Start: 6, End: 11},
		"count is mutated but never reactive")
	d.WithNote(source.Span{File: id, Start: 0, End: 5}, "declared const here")
	d.WithFixSuggestion(&diag.Fix{
		ID:            "let-fix",
		Title:         "declare with let",
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits: []diag.TextEdit{
			{Span: source.Span{File: id, Start: 0, End: 5}, NewText: "let"},
		},
	})
	bag := diag.NewBag(8)
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true, ShowFixes: true, ShowPreview: true})

	want := "app.tsx:1:7: warning RCT2001 [non-reactive-mutation]: count is mutated but never reactive\n" +
		"  1 | const count = 0;\n" +
		"    |       ^~~~~\n" +
		"  note: declared const here\n" +
		"    --> app.tsx:1:1\n" +
		"  fix: declare with let [let-fix] (always-safe)\n" +
		"    - const count = 0;\n" +
		"    + let count = 0;\n"
	if got := buf.String(); got != want {
		t.Errorf("output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyContextLines(t *testing.T) {
	fs, id := newVirtualFile(t, "before\nconst count = 0;\nafter\n")
	bag := diag.NewBag(8)
	bag.Add(diag.NewWarning(diag.RctNonReactiveMutation,
		source.Span{File: id, Start: 13, End: 18}, "m"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1})

	want := "app.tsx:2:7: warning RCT2001 [non-reactive-mutation]: m\n" +
		"  1 | before\n" +
		"  2 | const count = 0;\n" +
		"    |       ^~~~~\n" +
		"  3 | after\n"
	if got := buf.String(); got != want {
		t.Errorf("output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyBlankLineBetweenDiagnostics(t *testing.T) {
	fs, id := newVirtualFile(t, "bad\n")
	bag := diag.NewBag(8)
	bag.Add(diag.NewError(diag.SynParseError, source.Span{File: id, Start: 0, End: 3}, "syntax error"))
	bag.Add(diag.NewWarning(diag.RctPropsDestructuring, source.Span{File: id, Start: 0, End: 3}, "props are destructured"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})

	want := "app.tsx:1:1: error SYN1001 [parse-error]: syntax error\n" +
		"  1 | bad\n" +
		"    | ^~~\n" +
		"\n" +
		"app.tsx:1:1: warning RCT2002 [props-destructuring]: props are destructured\n" +
		"  1 | bad\n" +
		"    | ^~~\n"
	if got := buf.String(); got != want {
		t.Errorf("output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyFixThunkFailure(t *testing.T) {
	fs, id := newVirtualFile(t, "const count = 0;\n")
	d := diag.NewWarning(diag.RctNonReactiveMutation,
		source.Span{File: id, Start: 6, End: 11}, "m")
	d.WithFixSuggestion(&diag.Fix{
		Title: "broken",
		Thunk: func(diag.FixBuildContext) ([]diag.TextEdit, error) {
			return nil, errors.New("boom")
		},
	})
	bag := diag.NewBag(8)
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowFixes: true})

	if !strings.Contains(buf.String(), `  fix: broken (failed to build: materialize fix "broken": boom)`) {
		t.Errorf("missing thunk failure line in:\n%s", buf.String())
	}
}

func TestPrettyUnderlineWideRunes(t *testing.T) {
	// The text before the span is two CJK runes, three bytes each but two
	// display cells each; the underline pad must count cells, not bytes.
	fs, id := newVirtualFile(t, "日本 count\n")
	bag := diag.NewBag(8)
	bag.Add(diag.NewWarning(diag.RctNonReactiveMutation,
		source.Span{File: id, Start: 7, End: 12}, "m"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})

	want := "app.tsx:1:8: warning RCT2001 [non-reactive-mutation]: m\n" +
		"  1 | 日本 count\n" +
		"    |      ^~~~~\n"
	if got := buf.String(); got != want {
		t.Errorf("output:\n%s\nwant:\n%s", got, want)
	}
}
