package main

import (
	"errors"
	"path/filepath"
	"strings"

	"impulse/internal/driver"
	"impulse/internal/project"
)

const noManifestMessage = "no impulse.toml found\nplease point the build at a project or source directory, e.g.:\n  impulse build path/to/project"

// discoverManifest loads the nearest impulse.toml at or above startDir.
// A missing manifest returns (nil, nil); a malformed one is a real error.
func discoverManifest(startDir string) (*project.Manifest, error) {
	manifest, err := project.Discover(startDir)
	if err != nil {
		if errors.Is(err, project.ErrManifestNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return manifest, nil
}

// projectDisplayFiles lists the sources a build would compile, relativized
// against srcRoot the same way the pipeline labels its progress events, so
// UI rows and events match up.
func projectDisplayFiles(srcRoot, projectRoot, outDir string) []string {
	files, err := driver.ListSourceFiles(srcRoot, projectRoot, outDir)
	if err != nil {
		return nil
	}

	base := strings.TrimSpace(srcRoot)
	if base != "" {
		if abs, absErr := filepath.Abs(base); absErr == nil {
			base = abs
		}
	}

	out := make([]string, 0, len(files))
	for _, file := range files {
		path := filepath.Clean(file)
		if base != "" {
			if abs, absErr := filepath.Abs(path); absErr == nil {
				path = abs
			}
			if rel, relErr := filepath.Rel(base, path); relErr == nil && rel != "." && !strings.HasPrefix(rel, "..") {
				path = rel
			}
		}
		out = append(out, filepath.ToSlash(path))
	}
	return out
}
