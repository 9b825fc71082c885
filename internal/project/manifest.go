package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"

	"impulse/internal/analysis"
)

// ManifestName is the file the walk-up discovery looks for.
const ManifestName = "impulse.toml"

var (
	// ErrManifestNotFound indicates no impulse.toml exists from the start
	// directory up to the filesystem root.
	ErrManifestNotFound = errors.New("impulse.toml not found")
	// ErrPackageSectionMissing indicates the manifest has no [package].
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates [package].name is absent or empty.
	ErrPackageNameMissing = errors.New("missing [package].name")
)

// Manifest is the decoded impulse.toml. Load fills defaults for everything
// the file leaves out, so consumers never see zero values for the build
// settings.
type Manifest struct {
	Package  PackageSection  `toml:"package"`
	Build    BuildSection    `toml:"build"`
	Reactive ReactiveSection `toml:"reactive"`

	path string
	root string
}

// PackageSection identifies the project.
type PackageSection struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// BuildSection holds compiler settings. Src and Out are slash paths
// relative to the manifest directory.
type BuildSection struct {
	Src string `toml:"src"`
	Out string `toml:"out"`
	// Jobs caps parallel file compiles; 0 lets the driver pick.
	Jobs int `toml:"jobs"`
	// EmitImports controls whether rewritten files get the runtime import
	// prepended.
	EmitImports bool `toml:"emit-imports"`
	// Runtime is the import path the injected import uses.
	Runtime string `toml:"runtime"`
}

// ReactiveSection extends the built-in reactive-call registry.
// Each [reactive.calls.<name>] entry declares which destructured
// properties of a <name>(...) call are live signals and which are plain
// values.
type ReactiveSection struct {
	Calls map[string]CallShape `toml:"calls"`
}

// CallShape mirrors analysis.CallShape in manifest form.
type CallShape struct {
	Signals []string `toml:"signals"`
	Plain   []string `toml:"plain"`
}

func defaultBuild() BuildSection {
	return BuildSection{
		Src:         "src",
		Out:         "dist",
		Jobs:        0,
		EmitImports: true,
		Runtime:     "@impulse/runtime",
	}
}

// DefaultManifest returns the settings used when no impulse.toml exists:
// defaults anchored at dir, with the directory's basename as the package
// name.
func DefaultManifest(dir string) *Manifest {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return &Manifest{
		Package: PackageSection{Name: filepath.Base(abs)},
		Build:   defaultBuild(),
		root:    abs,
	}
}

// Load parses and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	m := &Manifest{Build: defaultBuild()}
	meta, err := toml.DecodeFile(path, m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	m.Package.Name = strings.TrimSpace(m.Package.Name)
	if !meta.IsDefined("package", "name") || m.Package.Name == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve manifest path: %w", path, err)
	}
	m.path = abs
	m.root = filepath.Dir(abs)

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Discover walks up from startDir, loading the nearest manifest. A missing
// manifest reports ErrManifestNotFound.
func Discover(startDir string) (*Manifest, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", startDir, ErrManifestNotFound)
	}
	return Load(path)
}

func (m *Manifest) validate() error {
	if !IsValidPackageName(m.Package.Name) {
		return fmt.Errorf("invalid [package].name %q", m.Package.Name)
	}
	if m.Build.Jobs < 0 {
		return fmt.Errorf("invalid [build].jobs %d: must not be negative", m.Build.Jobs)
	}
	if err := validateDir("src", m.Build.Src); err != nil {
		return err
	}
	if err := validateDir("out", m.Build.Out); err != nil {
		return err
	}
	if strings.TrimSpace(m.Build.Runtime) == "" {
		return errors.New("invalid [build].runtime: must not be empty")
	}
	for name, shape := range m.Reactive.Calls {
		if !isValidIdent(name) {
			return fmt.Errorf("invalid [reactive.calls] entry %q: not an identifier", name)
		}
		seen := make(map[string]string, len(shape.Signals)+len(shape.Plain))
		for _, p := range shape.Signals {
			if !isValidIdent(p) {
				return fmt.Errorf("invalid property %q in [reactive.calls.%s].signals", p, name)
			}
			seen[p] = "signals"
		}
		for _, p := range shape.Plain {
			if !isValidIdent(p) {
				return fmt.Errorf("invalid property %q in [reactive.calls.%s].plain", p, name)
			}
			if seen[p] == "signals" {
				return fmt.Errorf("[reactive.calls.%s]: property %q listed as both signal and plain", name, p)
			}
		}
	}
	return nil
}

// validateDir rejects build directories that are absolute or escape the
// manifest directory.
func validateDir(key, dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return fmt.Errorf("invalid [build].%s: must not be empty", key)
	}
	if filepath.IsAbs(dir) {
		return fmt.Errorf("invalid [build].%s %q: must be relative", key, dir)
	}
	clean := filepath.Clean(filepath.FromSlash(dir))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("invalid [build].%s %q: escapes the project root", key, dir)
	}
	return nil
}

// Path returns the absolute manifest location, empty for defaults.
func (m *Manifest) Path() string { return m.path }

// Root returns the project root directory.
func (m *Manifest) Root() string { return m.root }

// SrcRoot returns the absolute source directory.
func (m *Manifest) SrcRoot() string {
	return filepath.Join(m.root, filepath.FromSlash(m.Build.Src))
}

// OutRoot returns the absolute output directory.
func (m *Manifest) OutRoot() string {
	return filepath.Join(m.root, filepath.FromSlash(m.Build.Out))
}

// CheckSourceRoot verifies the configured source directory exists.
func (m *Manifest) CheckSourceRoot() error {
	src := m.SrcRoot()
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("source directory %q: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source directory %q: not a directory", src)
	}
	return nil
}

// CallRegistry converts [reactive.calls] into the analyzer's registry
// form, to be merged over the built-in defaults.
func (m *Manifest) CallRegistry() analysis.CallRegistry {
	if len(m.Reactive.Calls) == 0 {
		return nil
	}
	out := make(analysis.CallRegistry, len(m.Reactive.Calls))
	for name, shape := range m.Reactive.Calls {
		out[name] = analysis.CallShape{
			Signals: append([]string(nil), shape.Signals...),
			Plain:   append([]string(nil), shape.Plain...),
		}
	}
	return out
}

// IsValidPackageName accepts ASCII identifiers with interior dashes, the
// shape package managers allow ("my-app").
func IsValidPackageName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == '-'):
		default:
			return false
		}
	}
	return !strings.HasSuffix(name, "-")
}

func isValidIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && r != '$' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Scaffold renders the impulse.toml the init command writes.
func Scaffold(name string) string {
	return fmt.Sprintf(`[package]
name = %q
version = "0.1.0"

[build]
src = "src"
out = "dist"
emit-imports = true
runtime = "@impulse/runtime"

# Extend the reactive call registry:
# [reactive.calls.useQuery]
# signals = ["data", "loading", "error"]
# plain = ["refetch"]
`, name)
}
