package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"impulse/internal/analysis"
	"impulse/internal/diag"
	"impulse/internal/diagfmt"
	"impulse/internal/driver"
	"impulse/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file|directory>",
	Short: "Run reactivity diagnostics on a source file or directory",
	Long:  `Check classifies component bindings and reports reactivity problems (non-reactive mutations, destructured props, parse errors) without writing any output files`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

// init registers CLI flags for the check command used by runCheck.
// It configures output format, pipeline depth, warning handling,
// note/suggestion inclusion, and whether to emit absolute file paths.
func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short|golden)")
	checkCmd.Flags().String("stage", "analyze", "how far to run the pipeline (parse|analyze|compile)")
	checkCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("preview", false, "render fix previews without modifying files")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("with-analysis", false, "include classification tables in json output")
	checkCmd.Flags().Bool("disk-cache", false, "enable the persistent compile cache (experimental)")
}

// runCheck executes the "check" command: it parses command flags, compiles
// the provided path (single file or directory) up to the requested stage,
// formats the diagnostics in the chosen output format, and exits with a
// non-zero status when any diagnostics contain errors.
func runCheck(cmd *cobra.Command, args []string) error {
	// Ensure trace is dumped on panic
	defer dumpTraceOnPanic()

	filePath := args[0]

	// Read flags
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	stageStr, err := cmd.Flags().GetString("stage")
	if err != nil {
		return fmt.Errorf("failed to get stage flag: %w", err)
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}

	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}

	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}

	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}

	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}

	preview, err := cmd.Flags().GetBool("preview")
	if err != nil {
		return fmt.Errorf("failed to get preview flag: %w", err)
	}

	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}

	withAnalysis, err := cmd.Flags().GetBool("with-analysis")
	if err != nil {
		return fmt.Errorf("failed to get with-analysis flag: %w", err)
	}

	enableDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}

	// Map the stage string onto the driver's type
	var stage driver.Stage
	switch stageStr {
	case "parse":
		stage = driver.StageParse
	case "analyze":
		stage = driver.StageAnalyze
	case "compile":
		stage = driver.StageCompile
	default:
		return fmt.Errorf("unknown stage value: %s", stageStr)
	}
	if withAnalysis && stage == driver.StageParse {
		return fmt.Errorf("--with-analysis requires --stage analyze|compile")
	}

	st, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	// The manifest is optional: without one the built-in registry applies
	calls, projectRoot, outRoot, err := projectContext(filePath, st.IsDir())
	if err != nil {
		return err
	}

	// Compile options
	opts := driver.Options{
		Stage:            stage,
		MaxDiagnostics:   maxDiagnostics,
		Jobs:             jobs,
		IgnoreWarnings:   noWarnings,
		WarningsAsErrors: warningsAsErrors,
		EnableTimings:    showTimings,
		Calls:            calls,
	}
	if enableDiskCache {
		disk, cacheErr := driver.OpenDiskCache("impulse")
		if cacheErr != nil {
			return fmt.Errorf("failed to open disk cache: %w", cacheErr)
		}
		opts.Disk = disk
	}

	traceDone, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	profDone, err := setupProfiling(cmd)
	if err != nil {
		traceDone()
		return err
	}

	var (
		exitCode  int
		resultErr error
	)

	runFile := func() (int, error) {
		fs, result, err := driver.CompilePath(filePath, opts)
		if err != nil {
			return 0, fmt.Errorf("check failed: %w", err)
		}

		exit := 0
		if result.Bag.HasErrors() {
			exit = 1
		}

		pathMode := diagfmt.PathModeAuto
		if fullPath {
			pathMode = diagfmt.PathModeAbsolute
		}
		showFixes := suggest || preview

		useColor, err := resolveColor(cmd, os.Stdout)
		if err != nil {
			return 0, err
		}

		switch format {
		case "pretty":
			opts := diagfmt.PrettyOpts{
				Color:       useColor,
				Context:     2,
				PathMode:    pathMode,
				ShowNotes:   withNotes,
				ShowFixes:   showFixes,
				ShowPreview: preview,
			}
			diagfmt.Pretty(os.Stdout, result.Bag, fs, opts)
		case "short":
			output := diag.FormatShortDiagnostics(result.Bag.Items(), fs, withNotes)
			if output != "" {
				fmt.Fprintln(os.Stdout, output)
			}
		case "golden":
			output := diag.FormatGoldenDiagnostics(result.Bag.Items(), fs, withNotes)
			if output != "" {
				fmt.Fprintln(os.Stdout, output)
			}
		case "json":
			jsonOpts := diagfmt.JSONOpts{
				IncludePositions: true,
				PathMode:         pathMode,
				IncludeNotes:     withNotes,
				IncludeFixes:     showFixes,
				IncludePreviews:  preview,
				IncludeAnalysis:  withAnalysis,
			}
			var analyses []*analysis.FileAnalysis
			if result.Analysis != nil {
				analyses = append(analyses, result.Analysis)
			}
			if err = diagfmt.JSON(os.Stdout, result.Bag, fs, analyses, jsonOpts); err != nil {
				return 0, fmt.Errorf("failed to format diagnostics: %w", err)
			}
		default:
			return 0, fmt.Errorf("unknown format: %s", format)
		}

		return exit, nil
	}

	runDir := func() (int, error) {
		fs, results, err := driver.CompileDir(cmd.Context(), filePath, projectRoot, outRoot, opts)
		if err != nil {
			return 0, fmt.Errorf("check failed: %w", err)
		}

		exit := 0
		for _, r := range results {
			if r.Bag.HasErrors() {
				exit = 1
				break
			}
		}

		useColor, err := resolveColor(cmd, os.Stdout)
		if err != nil {
			return 0, err
		}
		pathMode := diagfmt.PathModeAuto
		if fullPath {
			pathMode = diagfmt.PathModeAbsolute
		}
		showFixes := suggest || preview
		prettyOpts := diagfmt.PrettyOpts{
			Color:       useColor,
			Context:     2,
			PathMode:    pathMode,
			ShowNotes:   withNotes,
			ShowFixes:   showFixes,
			ShowPreview: preview,
		}
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
			IncludeFixes:     showFixes,
			IncludePreviews:  preview,
			IncludeAnalysis:  withAnalysis,
		}

		switch format {
		case "short", "golden":
			allDiagnostics := make([]*diag.Diagnostic, 0, len(results))
			for _, r := range results {
				allDiagnostics = append(allDiagnostics, r.Bag.Items()...)
			}
			var output string
			if format == "short" {
				output = diag.FormatShortDiagnostics(allDiagnostics, fs, withNotes)
			} else {
				output = diag.FormatGoldenDiagnostics(allDiagnostics, fs, withNotes)
			}
			if output != "" {
				fmt.Fprintln(os.Stdout, output)
			}
		case "pretty":
			printed := 0
			for _, r := range results {
				if r.Bag.Len() == 0 {
					continue
				}
				if printed > 0 {
					fmt.Fprintln(os.Stdout)
				}
				printed++
				fmt.Fprintf(os.Stdout, "== %s ==\n", checkDisplayPath(fs, &r, fullPath))
				diagfmt.Pretty(os.Stdout, r.Bag, fs, prettyOpts)
			}
		case "json":
			output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
			for _, r := range results {
				var analyses []*analysis.FileAnalysis
				if r.Analysis != nil {
					analyses = append(analyses, r.Analysis)
				}
				data, buildErr := diagfmt.BuildDiagnosticsOutput(r.Bag, fs, analyses, jsonOpts)
				if buildErr != nil {
					return 0, fmt.Errorf("failed to build diagnostics output: %w", buildErr)
				}
				output[checkDisplayPath(fs, &r, fullPath)] = data
			}
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(output); err != nil {
				return 0, fmt.Errorf("failed to encode diagnostics output: %w", err)
			}
		default:
			return 0, fmt.Errorf("unknown format: %s", format)
		}

		return exit, nil
	}

	if !st.IsDir() {
		exitCode, resultErr = runFile()
	} else {
		exitCode, resultErr = runDir()
	}

	// Cleanup runs on every path; commands never defer it so the trace
	// footer lands before the error output.
	profDone()
	traceDone()

	if resultErr != nil {
		return resultErr
	}
	if exitCode != 0 {
		// Suppress cobra usage output on diagnostic errors
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("") // Silent error - diagnostics already printed
	}
	return nil
}

// projectContext discovers the nearest manifest for a target path and
// returns the pieces the compile options need. A missing manifest is not an
// error: the built-in call registry applies and no output directory is
// skipped during walks.
func projectContext(target string, isDir bool) (analysis.CallRegistry, string, string, error) {
	startDir := target
	if !isDir {
		startDir = filepath.Dir(target)
	}
	manifest, err := discoverManifest(startDir)
	if err != nil {
		return nil, "", "", err
	}
	if manifest == nil {
		return nil, "", "", nil
	}
	return manifest.CallRegistry(), manifest.Root(), manifest.OutRoot(), nil
}

// checkDisplayPath renders a result's path for per-file headers. Failed
// results never made it into the file set, so their raw path is used.
func checkDisplayPath(fs *source.FileSet, r *driver.FileResult, fullPath bool) string {
	if !r.Failed {
		mode := "auto"
		if fullPath {
			mode = "absolute"
		}
		return fs.Get(r.FileID).FormatPath(mode, fs.BaseDir())
	}
	displayPath := r.Path
	if fullPath {
		if abs, err := source.AbsolutePath(displayPath); err == nil {
			displayPath = abs
		}
	}
	return displayPath
}
