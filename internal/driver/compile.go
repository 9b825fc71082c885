package driver

import (
	"fmt"

	"impulse/internal/analysis"
	"impulse/internal/diag"
	"impulse/internal/observ"
	"impulse/internal/rewrite"
	"impulse/internal/source"
	"impulse/internal/syntax"
)

// maxParseRegions caps how many syntax-error regions a single file reports.
const maxParseRegions = 16

// FileResult is the outcome of compiling one file.
type FileResult struct {
	Path     string
	FileID   source.FileID
	Lang     syntax.Language
	Analysis *analysis.FileAnalysis // nil for StageParse and for disk-cache hits
	Output   string                 // rewritten source; equals the input when nothing changed
	Changed  bool
	Helpers  rewrite.Helpers
	Bag      *diag.Bag
	Failed   bool // the file could not be loaded; Bag explains why

	Timing    *observ.Report // set when Options.EnableTimings
	FromCache bool
}

// CompileFile runs the pipeline for one already-loaded file: parse, analyze,
// report advisory findings, rewrite. Options.Stage short-circuits the later
// steps. Cache hits skip the pipeline entirely.
func CompileFile(fs *source.FileSet, fileID source.FileID, opts Options) (*FileResult, error) {
	file := fs.Get(fileID)

	var timer *observ.Timer
	if opts.EnableTimings {
		timer = observ.NewTimer()
	}
	run := &phaseRunner{timer: timer, observer: opts.Observer}

	var key Digest
	if opts.Memory != nil || opts.Disk != nil {
		key = cacheKey(file.Hash, opts)

		idx := run.begin("cache")
		if cached, ok := opts.Memory.Get(key); ok {
			run.end(idx, "memory hit")
			return finishResult(payloadResult(cached, file.Path, fileID, opts), timer, true), nil
		}
		var payload cachePayload
		if ok, err := opts.Disk.Get(key, &payload); err == nil && ok {
			run.end(idx, "disk hit")
			opts.Memory.Put(key, &payload)
			return finishResult(payloadResult(&payload, file.Path, fileID, opts), timer, true), nil
		}
		run.end(idx, "miss")
	}

	bag := diag.NewBag(opts.maxDiagnostics())

	parseIdx := run.begin("parse")
	lang := syntax.ForPath(file.Path)
	tree, err := syntax.Parse(file.Content, lang)
	run.end(parseIdx, "")
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file.Path, err)
	}
	defer tree.Close()

	res := &FileResult{
		Path:   file.Path,
		FileID: fileID,
		Lang:   lang,
		Output: string(file.Content),
		Bag:    bag,
	}

	if opts.stage() == StageParse {
		reportParseErrors(bag, fileID, tree)
	} else {
		analyzeIdx := run.begin("analyze")
		fa := analysis.AnalyzeFile(tree, fileID, analysis.Options{Calls: opts.Calls})
		analysis.ReportDiagnostics(&diag.BagReporter{Bag: bag}, fa)
		note := ""
		if timer != nil {
			note = fmt.Sprintf("components=%d diags=%d", len(fa.Components), bag.Len())
		}
		run.end(analyzeIdx, note)
		res.Analysis = fa

		if opts.stage() == StageCompile {
			rewriteIdx := run.begin("rewrite")
			buf := rewrite.NewBuffer(file.Content)
			helpers, err := rewrite.RewriteFile(buf, fa, opts.rewriteOptions())
			if err != nil {
				run.end(rewriteIdx, "")
				return nil, fmt.Errorf("rewrite %s: %w", file.Path, err)
			}
			res.Output = buf.String()
			res.Changed = buf.HasChanged()
			res.Helpers = helpers
			note := ""
			if timer != nil && res.Changed {
				note = "changed"
			}
			run.end(rewriteIdx, note)
		}
	}

	if opts.IgnoreWarnings {
		bag.Filter(func(d *diag.Diagnostic) bool { return d.Severity >= diag.SevError })
	}
	if opts.WarningsAsErrors {
		bag.Transform(func(d *diag.Diagnostic) *diag.Diagnostic {
			if d.Severity == diag.SevWarning {
				d.Severity = diag.SevError
			}
			return d
		})
		bag.Sort()
	}

	if opts.Memory != nil || opts.Disk != nil {
		payload := resultPayload(res)
		opts.Memory.Put(key, payload)
		// A failed cache write must not fail the build.
		_ = opts.Disk.Put(key, payload)
	}

	return finishResult(res, timer, false), nil
}

// CompilePath loads one file into a fresh FileSet and compiles it.
func CompilePath(path string, opts Options) (*source.FileSet, *FileResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, nil, err
	}
	res, err := CompileFile(fs, fileID, opts)
	if err != nil {
		return nil, nil, err
	}
	return fs, res, nil
}

// finishResult returns the caller-facing view of res. When timings are on,
// the bag is copied before the timing entry is appended so a cached result
// never accumulates per-run entries.
func finishResult(res *FileResult, timer *observ.Timer, fromCache bool) *FileResult {
	out := *res
	out.FromCache = fromCache
	if timer != nil {
		report := timer.Report()
		out.Timing = &report
		bag := diag.NewBag(res.Bag.Len() + 1)
		bag.Merge(res.Bag)
		appendTimingDiagnostic(bag, timingPayload{
			Kind:    "file",
			Path:    res.Path,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
		out.Bag = bag
	}
	return &out
}

func reportParseErrors(bag *diag.Bag, fileID source.FileID, tree *syntax.Tree) {
	r := &diag.BagReporter{Bag: bag}
	for _, span := range syntax.ErrorRegions(fileID, tree.Root(), maxParseRegions) {
		diag.ReportWarning(r, diag.SynParseError, span,
			"syntax error; constructs in this region are not compiled").Emit()
	}
}
