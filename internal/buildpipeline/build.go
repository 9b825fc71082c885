// Package buildpipeline orchestrates whole-project compiles and reports
// per-file progress.
package buildpipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"impulse/internal/diag"
	"impulse/internal/driver"
	"impulse/internal/source"
	"impulse/internal/trace"
)

// Request configures a pipeline run.
type Request struct {
	SrcRoot     string
	ProjectRoot string
	OutDir      string // empty disables output emission
	Options     driver.Options
	Progress    ProgressSink
}

// Result aggregates a pipeline run. Results and Files share the sorted
// source order, so Files[i] is the display path of Results[i].
type Result struct {
	FileSet *source.FileSet
	Results []driver.FileResult
	Files   []string
	Written int
	Timings Timings
}

// Run compiles every source file under SrcRoot, reporting progress per file,
// and emits rewritten output when OutDir is set. Unlike driver.CompileDir it
// threads a per-file phase observer, so the sink sees each file move through
// the stages individually.
func Run(ctx context.Context, req *Request) (Result, error) {
	var result Result
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing pipeline request")
	}

	tracer := trace.FromContext(ctx)
	runSpan := trace.Begin(tracer, trace.ScopeDriver, "build", 0)
	defer runSpan.End("")

	files, err := driver.ListSourceFiles(req.SrcRoot, req.ProjectRoot, req.OutDir)
	if err != nil {
		return result, err
	}
	runSpan.WithExtra("files", strconv.Itoa(len(files)))
	displayRoot := req.ProjectRoot
	if strings.TrimSpace(displayRoot) == "" {
		displayRoot = req.SrcRoot
	}
	display := displayPaths(files, displayRoot)
	result.Files = display

	fileSet := source.NewFileSetWithBase(req.SrcRoot)
	result.FileSet = fileSet
	if len(files) == 0 {
		return result, nil
	}

	emitQueued(req.Progress, display)

	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		id, loadErr := fileSet.Load(path)
		if loadErr != nil {
			loadErrors[path] = loadErr
			continue
		}
		fileIDs[path] = id
	}

	jobs := req.Options.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	maxDiags := req.Options.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = driver.DefaultMaxDiagnostics
	}

	results := make([]driver.FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			name := display[i]
			fileSpan := trace.Begin(tracer, trace.ScopeFile, name, runSpan.ID())
			if loadErr, failed := loadErrors[path]; failed {
				bag := diag.NewBag(maxDiags)
				bag.Add(diag.NewError(diag.IOLoadFile, source.Span{},
					"failed to load file: "+loadErr.Error()))
				results[i] = driver.FileResult{Path: path, Bag: bag, Failed: true}
				emitFile(req.Progress, name, StageParse, StatusError, loadErr, 0)
				fileSpan.End("load failed")
				return nil
			}

			opts := req.Options
			opts.Observer = compileObserver(req.Progress, tracer, name, fileSpan.ID())

			start := time.Now()
			res, err := driver.CompileFile(fileSet, fileIDs[path], opts)
			if err != nil {
				emitFile(req.Progress, name, StageRewrite, StatusError, err, time.Since(start))
				fileSpan.End("error")
				return err
			}
			results[i] = *res
			status := StatusDone
			if res.Bag.HasErrors() {
				status = StatusError
			}
			emitFile(req.Progress, name, StageRewrite, status, nil, time.Since(start))
			switch {
			case res.FromCache:
				fileSpan.End("cached")
			case res.Bag.HasErrors():
				fileSpan.End("errors")
			default:
				fileSpan.End("")
			}
			return nil
		})
	}

	waitErr := g.Wait()
	result.Results = results
	recordFileTimings(&result.Timings, results)
	if waitErr != nil {
		return result, waitErr
	}

	if req.OutDir != "" {
		emitPipeline(req.Progress, StageEmit, StatusWorking, nil, 0)
		emitSpan := trace.Begin(tracer, trace.ScopePass, "emit", runSpan.ID())
		emitStart := time.Now()
		written, writeErr := driver.WriteResults(results, req.SrcRoot, req.OutDir)
		elapsed := time.Since(emitStart)
		result.Written = written
		result.Timings.Set(StageEmit, elapsed)
		emitSpan.End(strconv.Itoa(written) + " files")
		if writeErr != nil {
			emitPipeline(req.Progress, StageEmit, StatusError, writeErr, elapsed)
			return result, writeErr
		}
		emitPipeline(req.Progress, StageEmit, StatusDone, nil, elapsed)
	}

	return result, nil
}

// compileObserver forwards one file's phase boundaries to the progress sink
// and opens a pass span per phase. The span map is confined to the file's
// worker goroutine.
func compileObserver(sink ProgressSink, tracer trace.Tracer, file string, parent uint64) driver.PhaseObserver {
	traced := tracer != nil && tracer.Enabled()
	if sink == nil && !traced {
		return nil
	}

	var open map[string]*trace.Span
	if traced {
		open = make(map[string]*trace.Span, 4)
	}
	return func(ev driver.PhaseEvent) {
		switch ev.Status {
		case driver.PhaseStart:
			if traced {
				open[ev.Name] = trace.Begin(tracer, trace.ScopePass, ev.Name, parent)
			}
			if sink == nil {
				return
			}
			if stage, ok := stageForPhase(ev.Name); ok {
				sink.OnEvent(Event{File: file, Stage: stage, Status: StatusWorking})
			}
		case driver.PhaseEnd:
			if span, ok := open[ev.Name]; ok {
				span.End("")
				delete(open, ev.Name)
			}
		}
	}
}

// stageForPhase maps driver phase names onto progress stages. Cache lookups
// stay invisible.
func stageForPhase(name string) (Stage, bool) {
	switch name {
	case "parse":
		return StageParse, true
	case "analyze":
		return StageAnalyze, true
	case "rewrite":
		return StageRewrite, true
	default:
		return "", false
	}
}

// recordFileTimings folds per-file phase reports into stage totals.
func recordFileTimings(t *Timings, results []driver.FileResult) {
	for i := range results {
		rep := results[i].Timing
		if rep == nil {
			continue
		}
		for _, phase := range rep.Phases {
			if stage, ok := stageForPhase(phase.Name); ok {
				t.Add(stage, durationFromMillis(phase.DurationMS))
			}
		}
	}
}

func durationFromMillis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

// displayPaths relativizes source paths against root for progress rows,
// keeping index alignment with files.
func displayPaths(files []string, root string) []string {
	base := strings.TrimSpace(root)
	if base != "" {
		if abs, err := filepath.Abs(base); err == nil {
			base = abs
		}
	}

	out := make([]string, len(files))
	for i, file := range files {
		path := filepath.Clean(file)
		if base != "" {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
			if rel, err := filepath.Rel(base, path); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
				path = rel
			}
		}
		out[i] = filepath.ToSlash(path)
	}
	return out
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageParse, Status: StatusQueued})
	}
}

func emitFile(sink ProgressSink, file string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

func emitPipeline(sink ProgressSink, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
