package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"impulse/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove build outputs and the compile cache",
	Long:  "Remove the project's output directory and drop the persistent compile cache.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().Bool("keep-cache", false, "remove outputs only, keep the disk cache")
}

func runClean(cmd *cobra.Command, args []string) error {
	keepCache, err := cmd.Flags().GetBool("keep-cache")
	if err != nil {
		return err
	}

	baseDir := "."
	if len(args) > 0 && args[0] != "" {
		baseDir = args[0]
	}
	outDir, err := resolveCleanTarget(baseDir)
	if err != nil {
		return err
	}

	info, err := os.Stat(outDir)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("%q is not a directory", outDir)
	case err == nil:
		if err := os.RemoveAll(outDir); err != nil {
			return fmt.Errorf("failed to remove %q: %w", outDir, err)
		}
		_, _ = fmt.Fprintf(os.Stdout, "removed %s\n", outDir)
	case errors.Is(err, os.ErrNotExist):
		_, _ = fmt.Fprintf(os.Stdout, "output directory not found\n")
	default:
		return fmt.Errorf("failed to stat %q: %w", outDir, err)
	}

	if keepCache {
		return nil
	}
	cache, err := driver.OpenDiskCache("impulse")
	if err != nil {
		return fmt.Errorf("failed to open disk cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to drop disk cache: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "dropped cache %s\n", cache.Dir())
	return nil
}

// resolveCleanTarget finds the output directory to delete: the manifest's
// out dir when a project is found, otherwise <base>/dist.
func resolveCleanTarget(base string) (string, error) {
	info, err := os.Stat(base)
	if err != nil {
		return "", fmt.Errorf("failed to stat %q: %w", base, err)
	}
	if !info.IsDir() {
		base = filepath.Dir(base)
	}
	manifest, err := discoverManifest(base)
	if err != nil {
		return "", err
	}
	if manifest != nil {
		return manifest.OutRoot(), nil
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		abs = base
	}
	return filepath.Join(abs, "dist"), nil
}
