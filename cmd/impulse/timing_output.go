package main

import (
	"fmt"
	"io"
	"time"

	"impulse/internal/buildpipeline"
)

func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	var printErr error
	if timings.Has(buildpipeline.StageParse) {
		_, printErr = fmt.Fprintf(out, "parsed %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageParse)))
		if printErr != nil {
			panic(printErr)
		}
	}
	if timings.Has(buildpipeline.StageAnalyze) {
		_, printErr = fmt.Fprintf(out, "analyzed %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageAnalyze)))
		if printErr != nil {
			panic(printErr)
		}
	}
	if timings.Has(buildpipeline.StageRewrite) {
		_, printErr = fmt.Fprintf(out, "rewrote %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageRewrite)))
		if printErr != nil {
			panic(printErr)
		}
	}
	if timings.Has(buildpipeline.StageEmit) {
		_, printErr = fmt.Fprintf(out, "emitted %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageEmit)))
		if printErr != nil {
			panic(printErr)
		}
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
