package driver

import (
	"os"
	"path/filepath"
	"testing"

	"impulse/internal/diag"
)

func TestOutputPath(t *testing.T) {
	srcRoot := filepath.Join("proj", "src")
	outRoot := filepath.Join("proj", "dist")

	tests := []struct {
		name string
		path string
		want string
	}{
		{"tsx lowers to ts", filepath.Join("proj", "src", "App.tsx"), filepath.Join("proj", "dist", "App.ts")},
		{"jsx lowers to js", filepath.Join("proj", "src", "parts", "List.jsx"), filepath.Join("proj", "dist", "parts", "List.js")},
		{"ts unchanged", filepath.Join("proj", "src", "util.ts"), filepath.Join("proj", "dist", "util.ts")},
		{"mjs unchanged", filepath.Join("proj", "src", "data.mjs"), filepath.Join("proj", "dist", "data.mjs")},
		{"uppercase extension", filepath.Join("proj", "src", "Main.TSX"), filepath.Join("proj", "dist", "Main.ts")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OutputPath(srcRoot, outRoot, tt.path)
			if err != nil {
				t.Fatalf("OutputPath: %v", err)
			}
			if got != tt.want {
				t.Errorf("OutputPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}

	t.Run("outside source root", func(t *testing.T) {
		if _, err := OutputPath(srcRoot, outRoot, filepath.Join("proj", "other", "App.tsx")); err == nil {
			t.Error("path outside the source root produced no error")
		}
	})
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deep", "nested", "App.ts")

	if err := WriteOutput(path, "first"); err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "first" {
		t.Errorf("content = %q, want %q", got, "first")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Errorf("perm = %o, want 644", perm)
	}

	if err := WriteOutput(path, "second"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("content after overwrite = %q, want %q", got, "second")
	}
}

func TestWriteResults(t *testing.T) {
	dir := t.TempDir()
	srcRoot := filepath.Join(dir, "src")
	outRoot := filepath.Join(dir, "dist")

	results := []FileResult{
		{Path: filepath.Join(srcRoot, "App.tsx"), Output: "out-a", Bag: diag.NewBag(4)},
		{Path: filepath.Join(srcRoot, "parts", "List.jsx"), Output: "out-b", Bag: diag.NewBag(4)},
		{Path: filepath.Join(srcRoot, "gone.tsx"), Failed: true, Bag: diag.NewBag(4)},
	}

	written, err := WriteResults(results, srcRoot, outRoot)
	if err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	if written != 2 {
		t.Errorf("written = %d, want 2", written)
	}

	wantFiles := map[string]string{
		filepath.Join(outRoot, "App.ts"):           "out-a",
		filepath.Join(outRoot, "parts", "List.js"): "out-b",
	}
	for path, want := range wantFiles {
		got, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("ReadFile(%s): %v", path, err)
			continue
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
	if _, err := os.Stat(filepath.Join(outRoot, "gone.ts")); !os.IsNotExist(err) {
		t.Error("failed result produced an output file")
	}
}

func TestWriteResults_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	srcRoot := filepath.Join(dir, "src")
	outRoot := filepath.Join(dir, "dist")

	// Occupy the destination with a directory so the rename fails.
	if err := os.MkdirAll(filepath.Join(outRoot, "App.ts"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	results := []FileResult{
		{Path: filepath.Join(srcRoot, "App.tsx"), Output: "blocked", Bag: diag.NewBag(4)},
		{Path: filepath.Join(srcRoot, "Ok.tsx"), Output: "fine", Bag: diag.NewBag(4)},
	}

	written, err := WriteResults(results, srcRoot, outRoot)
	if err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	if written != 1 {
		t.Errorf("written = %d, want 1", written)
	}

	items := results[0].Bag.Items()
	if len(items) != 1 {
		t.Fatalf("blocked result has %d diagnostics, want 1", len(items))
	}
	if items[0].Code != diag.IOWriteFile || items[0].Severity != diag.SevError {
		t.Errorf("diagnostic = %s %v", items[0].Code.ID(), items[0].Severity)
	}
	if results[1].Bag.Len() != 0 {
		t.Errorf("healthy result picked up %d diagnostics", results[1].Bag.Len())
	}
}
