package driver

import (
	"impulse/internal/analysis"
	"impulse/internal/rewrite"
)

// DefaultMaxDiagnostics caps per-file diagnostic collection when the caller
// does not choose a limit.
const DefaultMaxDiagnostics = 256

// Stage selects how far the per-file pipeline runs.
type Stage string

const (
	// StageParse stops after parsing; only syntax findings are reported.
	StageParse Stage = "parse"
	// StageAnalyze runs the analysis passes and reports advisory findings
	// without rewriting anything.
	StageAnalyze Stage = "analyze"
	// StageCompile runs the full pipeline and produces rewritten output.
	StageCompile Stage = "compile"
)

// Options configures a compile run. The zero value compiles fully with the
// defaults: every signal mutation rewritten, runtime import injected, no
// caches.
type Options struct {
	Stage Stage // empty means StageCompile

	MaxDiagnostics int // per-file cap; <=0 means DefaultMaxDiagnostics
	Jobs           int // parallel directory compiles; <=0 means GOMAXPROCS

	IgnoreWarnings   bool
	WarningsAsErrors bool
	EnableTimings    bool

	// MarkupReferencedOnly narrows mutation rewriting to signals that are
	// read inside markup. The default rewrites every signal mutation.
	MarkupReferencedOnly bool
	// SkipImports suppresses the runtime import injection.
	SkipImports bool
	// RuntimeImport overrides rewrite.DefaultRuntimeImport.
	RuntimeImport string
	// Calls extends the built-in reactive-call registry.
	Calls analysis.CallRegistry

	// Memory and Disk are consulted before the pipeline runs and updated
	// after. Either may be nil. Cache hits carry plain diagnostics only:
	// fix thunks and analysis tables do not survive the cache payload, so
	// commands that need them leave both caches unset.
	Memory *MemCache
	Disk   *DiskCache

	// Observer receives phase boundary events when set.
	Observer PhaseObserver
}

func (o Options) stage() Stage {
	if o.Stage == "" {
		return StageCompile
	}
	return o.Stage
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return DefaultMaxDiagnostics
	}
	return o.MaxDiagnostics
}

func (o Options) rewriteOptions() rewrite.Options {
	return rewrite.Options{
		MarkupReferencedOnly: o.MarkupReferencedOnly,
		SkipImports:          o.SkipImports,
		RuntimeImport:        o.RuntimeImport,
	}
}
