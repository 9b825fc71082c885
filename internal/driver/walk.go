package driver

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	ignore "github.com/sabhiram/go-gitignore"

	"impulse/internal/syntax"
)

// skippedDirs never participate in source walks regardless of .gitignore.
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// loadGitignore compiles the .gitignore in dir when one exists.
func loadGitignore(dir string) *ignore.GitIgnore {
	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	matcher, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return matcher
}

// ListSourceFiles returns the compilable files under srcRoot in sorted
// order. The .gitignore from projectRoot is honored (srcRoot when
// projectRoot is empty); node_modules, .git and outDir are always skipped.
// outDir may be empty.
func ListSourceFiles(srcRoot, projectRoot, outDir string) ([]string, error) {
	if projectRoot == "" {
		projectRoot = srcRoot
	}
	matcher := loadGitignore(projectRoot)

	outAbs := ""
	if outDir != "" {
		if abs, err := filepath.Abs(outDir); err == nil {
			outAbs = abs
		}
	}

	var files []string
	err := filepath.WalkDir(srcRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(projectRoot, path)
		if relErr != nil {
			rel = path
		}

		if d.IsDir() {
			if skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			if outAbs != "" {
				if abs, absErr := filepath.Abs(path); absErr == nil && abs == outAbs {
					return filepath.SkipDir
				}
			}
			if matcher != nil && rel != "." && matcher.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !syntax.IsSourcePath(path) {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
