package driver

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTree(t *testing.T, root string, paths map[string]string) {
	t.Helper()
	for rel, content := range paths {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
}

func TestListSourceFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":              "src/ignored.tsx\nsecrets/\n",
		"src/App.tsx":             "x",
		"src/components/List.tsx": "x",
		"src/notes.md":            "not source",
		"src/ignored.tsx":         "gitignored",
		"secrets/Hidden.tsx":      "gitignored dir",
		"node_modules/pkg/a.ts":   "always skipped",
		".git/config":             "always skipped",
		"dist/App.ts":             "output dir",
	})

	files, err := ListSourceFiles(root, root, filepath.Join(root, "dist"))
	if err != nil {
		t.Fatalf("ListSourceFiles: %v", err)
	}

	want := []string{
		filepath.Join(root, "src", "App.tsx"),
		filepath.Join(root, "src", "components", "List.tsx"),
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func TestListSourceFiles_NoGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.tsx":     "x",
		"a.jsx":     "x",
		"c.ts":      "x",
		"README.md": "not source",
	})

	files, err := ListSourceFiles(root, "", "")
	if err != nil {
		t.Fatalf("ListSourceFiles: %v", err)
	}

	want := []string{
		filepath.Join(root, "a.jsx"),
		filepath.Join(root, "b.tsx"),
		filepath.Join(root, "c.ts"),
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func TestListSourceFiles_SrcSubdir(t *testing.T) {
	// The walk starts at src but the .gitignore lives at the project root.
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":          "src/generated/\n",
		"src/App.tsx":         "x",
		"src/generated/g.tsx": "gitignored",
		"top.tsx":             "outside the walk",
	})

	files, err := ListSourceFiles(filepath.Join(root, "src"), root, "")
	if err != nil {
		t.Fatalf("ListSourceFiles: %v", err)
	}

	want := []string{filepath.Join(root, "src", "App.tsx")}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func TestListSourceFiles_MissingRoot(t *testing.T) {
	if _, err := ListSourceFiles(filepath.Join(t.TempDir(), "nope"), "", ""); err == nil {
		t.Error("expected error for missing root")
	}
}
