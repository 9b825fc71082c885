package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"impulse/internal/diag"
	"impulse/internal/source"
)

// OutputPath maps a source path under srcRoot to its destination under
// outRoot. JSX-bearing extensions lower to their plain forms, since the
// rewrite replaces all markup with h() calls: .tsx becomes .ts, .jsx
// becomes .js. Everything else keeps its extension.
func OutputPath(srcRoot, outRoot, path string) (string, error) {
	rel, err := filepath.Rel(srcRoot, path)
	if err != nil {
		return "", fmt.Errorf("output path for %s: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("output path for %s: outside source root %s", path, srcRoot)
	}
	ext := filepath.Ext(rel)
	switch strings.ToLower(ext) {
	case ".tsx":
		rel = strings.TrimSuffix(rel, ext) + ".ts"
	case ".jsx":
		rel = strings.TrimSuffix(rel, ext) + ".js"
	}
	return filepath.Join(outRoot, rel), nil
}

// WriteOutput writes content through a temp file and rename, so readers
// never observe a half-written compile artifact.
func WriteOutput(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".impulse-*")
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	// CreateTemp files are 0600; compile output is world-readable.
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), path)
}

// WriteResults emits every compiled result under outRoot, mirroring the
// layout under srcRoot. Failed results are skipped. A write failure becomes
// an IO diagnostic on the owning result's bag instead of aborting, so one
// bad destination does not cancel the rest of the emit. Returns the number
// of files written.
func WriteResults(results []FileResult, srcRoot, outRoot string) (int, error) {
	if err := os.MkdirAll(outRoot, 0o755); err != nil {
		return 0, err
	}

	written := 0
	for i := range results {
		res := &results[i]
		if res.Failed {
			continue
		}
		dst, err := OutputPath(srcRoot, outRoot, res.Path)
		if err != nil {
			forceAdd(res.Bag, diag.NewError(diag.IOWriteFile, source.Span{}, err.Error()))
			continue
		}
		if err := WriteOutput(dst, res.Output); err != nil {
			forceAdd(res.Bag, diag.NewError(diag.IOWriteFile, source.Span{},
				"failed to write output: "+err.Error()))
			continue
		}
		written++
	}
	return written, nil
}
