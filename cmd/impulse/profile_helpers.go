package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"impulse/internal/prof"
)

// setupProfiling starts whichever profilers the persistent flags ask
// for and returns an idempotent cleanup. The heap profile is written at
// cleanup time, after the run's allocations have happened.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()

	paths := make(map[string]string, 3)
	for _, name := range []string{"cpu-profile", "mem-profile", "runtime-trace"} {
		v, err := flags.GetString(name)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		paths[name] = v
	}

	var stops []func()
	if p := paths["cpu-profile"]; p != "" {
		if err := prof.StartCPU(p); err != nil {
			return nil, fmt.Errorf("failed to start cpu profile: %w", err)
		}
		stops = append(stops, prof.StopCPU)
	}
	if p := paths["runtime-trace"]; p != "" {
		if err := prof.StartTrace(p); err != nil {
			for _, stop := range stops {
				stop()
			}
			return nil, fmt.Errorf("failed to start trace: %w", err)
		}
		stops = append(stops, prof.StopTrace)
	}
	if p := paths["mem-profile"]; p != "" {
		stops = append(stops, func() {
			if err := prof.WriteMem(p); err != nil {
				fmt.Fprintf(os.Stderr, "failed to write heap profile: %v\n", err)
			}
		})
	}

	done := false
	cleanup := func() {
		if done {
			return
		}
		done = true
		// Unwind in reverse start order.
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}
	return cleanup, nil
}
