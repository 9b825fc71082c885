package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"impulse/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new impulse project",
	Long: `Initialize a new impulse project by creating a project manifest (impulse.toml)
and a starter component (src/App.tsx). If [path|name] is omitted, initializes
the current directory. If a non-existing name is provided, a directory will be
created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// runInit initializes an impulse project at the specified target path (or the
// current working directory when no argument or "." is provided) by creating
// an impulse.toml manifest and a src/App.tsx starter component.
//
// It resolves the target path, creates the directory if it does not exist,
// derives a project name from the directory basename (falling back to
// "impulse-app" for invalid names), and refuses to initialize if
// impulse.toml already exists.
func runInit(cmd *cobra.Command, args []string) error {
	// Resolve target directory
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		// treat as path or name relative to cwd
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	// Ensure directory exists
	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	// Determine project name from directory basename
	name := strings.TrimSpace(filepath.Base(target))
	if !project.IsValidPackageName(name) {
		name = "impulse-app"
	}

	// Create manifest file if not exists
	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	if err := os.WriteFile(manifestPath, []byte(project.Scaffold(name)), os.FileMode(0o600)); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	// Create src/App.tsx if not exists
	srcDir := filepath.Join(target, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return fmt.Errorf("failed to create src directory: %w", err)
	}
	appPath := filepath.Join(srcDir, "App.tsx")
	createdApp := false
	if _, err := os.Stat(appPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(appPath, []byte(starterComponent()), 0o600); err != nil {
			return fmt.Errorf("failed to write src/App.tsx: %w", err)
		}
		createdApp = true
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(os.Stdout, "Initialized impulse project in %s\n", rel)
	fmt.Fprintf(os.Stdout, "  - impulse.toml\n")
	if createdApp {
		fmt.Fprintf(os.Stdout, "  - src/App.tsx\n")
	} else {
		fmt.Fprintf(os.Stdout, "  - src/App.tsx (existing)\n")
	}
	return nil
}

// starterComponent returns the placeholder component written by init. A
// mutable binding read from markup, so the first build already exercises
// the signal rewrite.
func starterComponent() string {
	return `export function App() {
  let count = 0;
  return (
    <button onClick={() => count++}>
      Clicked {count} times
    </button>
  );
}
`
}
