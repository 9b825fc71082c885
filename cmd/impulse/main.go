// Package main implements the impulse CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"impulse/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "impulse",
	Short: "Impulse reactivity compiler and toolchain",
	Long:  `Impulse compiles plain components into fine-grained reactive code`,
}

// main initializes the CLI by setting the command version, registering
// subcommands and persistent flags, and then executes the root command.
// If command execution returns an error, the process exits with status code 1.
func main() {
	// Version feeds cobra's automatic --version flag.
	rootCmd.Version = version.Version
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	// Global flags
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|always|never)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 256, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")

	// Tracing and profiling
	rootCmd.PersistentFlags().String("trace", "", `write trace events to a file ("-" for stderr)`)
	rootCmd.PersistentFlags().String("trace-level", "off", "trace detail (off|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer capacity for ring and both modes")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0=off)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to the given file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to the given file")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to the given file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// resolveColor resolves the persistent --color flag against out.
func resolveColor(cmd *cobra.Command, out *os.File) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	return colorFlag == "always" || (colorFlag == "auto" && isTerminal(out)), nil
}
