package diag

import (
	"testing"

	"impulse/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	userFile := fs.Add("/workspace/src/App.tsx", []byte("a\nb\n"), 0)
	vendorFile := fs.Add("/workspace/node_modules/lib/index.js", []byte("x\n"), 0)

	diags := []*Diagnostic{
		{
			Severity: SevWarning,
			Code:     RctNonReactiveMutation,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: userFile, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: vendorFile, Start: 0, End: 0}, Msg: "skip me"},
				{Span: source.Span{File: userFile, Start: 2, End: 3}, Msg: "note line"},
			},
		},
		{
			Severity: SevError,
			Code:     SynParseError,
			Message:  "another",
			Primary:  source.Span{File: userFile, Start: 2, End: 3},
		},
	}

	expected := "warning RCT2001 src/App.tsx:1:1 first line second\n" +
		"error SYN1001 src/App.tsx:2:1 another\n" +
		"note RCT2001 src/App.tsx:2:1 note line"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestFormatShortDiagnosticsKeepsVendoredPaths(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	vendorFile := fs.Add("/workspace/node_modules/lib/index.js", []byte("x\n"), 0)

	diags := []*Diagnostic{
		{
			Severity: SevWarning,
			Code:     RctPropsDestructuring,
			Message:  "kept",
			Primary:  source.Span{File: vendorFile, Start: 0, End: 1},
		},
	}

	expected := "warning RCT2002 node_modules/lib/index.js:1:1 kept"
	if got := FormatShortDiagnostics(diags, fs, false); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\ngot:\n%s", expected, got)
	}
}
