// Package prof wires the stdlib profilers behind the CLI's --cpu-profile,
// --mem-profile, and --runtime-trace flags. One profile of each kind may be
// active per process.
package prof

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

var (
	cpuFile   *os.File
	traceFile *os.File
)

// StartCPU enables CPU profiling and writes samples to the provided path.
// Starting a second profile before StopCPU is an error.
func StartCPU(path string) error {
	if cpuFile != nil {
		return fmt.Errorf("cpu profile already active: %s", cpuFile.Name())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return err
	}
	cpuFile = f
	return nil
}

// StopCPU stops an active CPU profile and closes the underlying file.
// Safe to call when no profile is running.
func StopCPU() {
	if cpuFile == nil {
		return
	}
	pprof.StopCPUProfile()
	_ = cpuFile.Close()
	cpuFile = nil
}

// WriteMem captures a heap profile to the supplied file path. A GC runs
// first so the profile reflects live objects, not garbage.
func WriteMem(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// StartTrace writes runtime trace data to the provided path. Starting a
// second trace before StopTrace is an error.
func StartTrace(path string) error {
	if traceFile != nil {
		return fmt.Errorf("runtime trace already active: %s", traceFile.Name())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := trace.Start(f); err != nil {
		_ = f.Close()
		return err
	}
	traceFile = f
	return nil
}

// StopTrace ends an active runtime trace and closes the file. Safe to call
// when no trace is running.
func StopTrace() {
	if traceFile == nil {
		return
	}
	trace.Stop()
	_ = traceFile.Close()
	traceFile = nil
}
