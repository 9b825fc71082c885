package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"impulse/internal/buildpipeline"
	"impulse/internal/diagfmt"
	"impulse/internal/driver"
	"impulse/internal/project"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path]",
	Short: "Build an impulse project",
	Long:  "Build an impulse project using impulse.toml as the entrypoint definition, rewriting every component into runtime calls under the output directory.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  buildExecution,
}

func init() {
	buildCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
	buildCmd.Flags().String("out", "", "override the output directory")
	buildCmd.Flags().Bool("no-emit", false, "compile without writing output files")
	buildCmd.Flags().Bool("markup-referenced-only", false, "rewrite only mutations of signals read in markup")
}

func buildExecution(cmd *cobra.Command, args []string) error {
	// Ensure trace is dumped on panic
	defer dumpTraceOnPanic()

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	outOverride, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	noEmit, err := cmd.Flags().GetBool("no-emit")
	if err != nil {
		return err
	}
	markupOnly, err := cmd.Flags().GetBool("markup-referenced-only")
	if err != nil {
		return err
	}

	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	start := "."
	if len(args) > 0 && args[0] != "" {
		start = args[0]
	}

	manifest, err := discoverManifest(start)
	if err != nil {
		return err
	}
	if manifest == nil {
		// No manifest: build the directory as given, input is the root.
		if len(args) == 0 || filepath.Clean(args[0]) == "." {
			return errors.New(noManifestMessage)
		}
		st, statErr := os.Stat(start)
		if statErr != nil {
			return fmt.Errorf("failed to stat path: %w", statErr)
		}
		if !st.IsDir() {
			return fmt.Errorf("%q is a file; build works on projects and directories, use 'impulse check' for single files", start)
		}
		manifest = project.DefaultManifest(start)
		manifest.Build.Src = "."
	}

	if err := manifest.CheckSourceRoot(); err != nil {
		return err
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs <= 0 {
		jobs = manifest.Build.Jobs
	}

	srcRoot := manifest.SrcRoot()
	projectRoot := manifest.Root()
	outRoot := manifest.OutRoot()
	if outOverride != "" {
		outRoot, err = filepath.Abs(outOverride)
		if err != nil {
			return fmt.Errorf("failed to resolve --out: %w", err)
		}
	}

	opts := driver.Options{
		Stage:                driver.StageCompile,
		MaxDiagnostics:       maxDiagnostics,
		Jobs:                 jobs,
		EnableTimings:        showTimings,
		MarkupReferencedOnly: markupOnly,
		SkipImports:          !manifest.Build.EmitImports,
		RuntimeImport:        manifest.Build.Runtime,
		Calls:                manifest.CallRegistry(),
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

	emitDir := outRoot
	if noEmit {
		emitDir = ""
	}
	req := &buildpipeline.Request{
		SrcRoot:     srcRoot,
		ProjectRoot: projectRoot,
		OutDir:      emitDir,
		Options:     opts,
	}

	displayFiles := projectDisplayFiles(srcRoot, projectRoot, outRoot)
	useTUI := shouldUseTUI(uiModeValue) && !quiet && len(displayFiles) > 0

	var res buildpipeline.Result
	if useTUI {
		res, err = runBuildWithUI(cmd.Context(), "impulse build", displayFiles, req)
	} else {
		res, err = buildpipeline.Run(cmd.Context(), req)
	}

	exitCode := 0
	if err == nil {
		exitCode, err = reportBuildResults(cmd, &res, quiet)
	}

	if err == nil && !quiet {
		printStageTimings(os.Stdout, res.Timings)
		if noEmit {
			fmt.Fprintf(os.Stdout, "checked %d file(s), nothing written\n", len(res.Files))
		} else {
			fmt.Fprintf(os.Stdout, "compiled %d file(s) -> %s\n", res.Written, formatPathForOutput(projectRoot, outRoot))
		}
	}

	profDone()
	traceDone()

	if err != nil {
		return err
	}
	if exitCode != 0 {
		// Suppress cobra usage output on diagnostic errors
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("") // Silent error - diagnostics already printed
	}
	return nil
}

// reportBuildResults prints every non-empty bag to stderr with a per-file
// header and returns 1 when any file carries errors. Warning-only bags stay
// silent under --quiet.
func reportBuildResults(cmd *cobra.Command, res *buildpipeline.Result, quiet bool) (int, error) {
	useColor, err := resolveColor(cmd, os.Stderr)
	if err != nil {
		return 0, err
	}
	prettyOpts := diagfmt.PrettyOpts{
		Color:     useColor,
		Context:   2,
		ShowNotes: true,
	}

	exit := 0
	for i := range res.Results {
		r := &res.Results[i]
		hasErrors := r.Failed || (r.Bag != nil && r.Bag.HasErrors())
		if hasErrors {
			exit = 1
		}
		if r.Bag == nil || r.Bag.Len() == 0 {
			continue
		}
		if quiet && !hasErrors {
			continue
		}
		fmt.Fprintf(os.Stderr, "== %s ==\n", res.Files[i])
		diagfmt.Pretty(os.Stderr, r.Bag, res.FileSet, prettyOpts)
	}
	return exit, nil
}

func formatPathForOutput(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	if strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
