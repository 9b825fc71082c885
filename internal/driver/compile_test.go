package driver

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"impulse/internal/diag"
	"impulse/internal/source"
	"impulse/internal/testkit"
)

const listSrc = "function List() {\n" +
	"  let items = [];\n" +
	"  return <button onClick={() => items.push(sideEffecting())}>{items}</button>;\n" +
	"}\n"

const listOut = "import { signal, h } from \"@impulse/runtime\";\n" +
	"function List() {\n" +
	"  let items = signal([]);\n" +
	"  return h(\"button\", { onClick: () => (items.peek().push(sideEffecting()), items.notify()) }, () => items.value);\n" +
	"}\n"

const staticMutSrc = "function App() {\n" +
	"  const items = [];\n" +
	"  items.push(x);\n" +
	"  return <div>{items}</div>;\n" +
	"}\n"

func loadVirtual(t *testing.T, name, src string) (*source.FileSet, source.FileID) {
	t.Helper()
	fs := source.NewFileSet()
	return fs, fs.AddVirtual(name, []byte(src))
}

func TestCompileFile_FullPipeline(t *testing.T) {
	fs, id := loadVirtual(t, "list.tsx", listSrc)

	res, err := CompileFile(fs, id, Options{})
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}
	if res.Output != listOut {
		t.Errorf("output:\n%s\nwant:\n%s", res.Output, listOut)
	}
	if !res.Changed {
		t.Error("Changed = false, want true")
	}
	if !res.Helpers.Signal || !res.Helpers.H {
		t.Errorf("helpers = %+v, want signal and h", res.Helpers)
	}
	if res.Bag.Len() != 0 {
		t.Errorf("diagnostics = %d, want 0: %+v", res.Bag.Len(), res.Bag.Items())
	}
	if res.Analysis == nil {
		t.Error("Analysis = nil, want populated")
	}
	if res.FromCache {
		t.Error("FromCache = true on a fresh compile")
	}
}

func TestCompileFile_Stages(t *testing.T) {
	t.Run("parse leaves the source alone", func(t *testing.T) {
		fs, id := loadVirtual(t, "app.tsx", staticMutSrc)
		res, err := CompileFile(fs, id, Options{Stage: StageParse})
		if err != nil {
			t.Fatalf("CompileFile: %v", err)
		}
		if res.Analysis != nil {
			t.Error("Analysis set for parse stage")
		}
		if res.Changed || res.Output != staticMutSrc {
			t.Errorf("parse stage rewrote the source:\n%s", res.Output)
		}
		if res.Bag.Len() != 0 {
			t.Errorf("diagnostics = %d, want 0 for valid source", res.Bag.Len())
		}
	})

	t.Run("parse reports syntax errors", func(t *testing.T) {
		fs, id := loadVirtual(t, "bad.tsx", "function App() {\n  const = ;\n  return <div/>;\n}\n")
		res, err := CompileFile(fs, id, Options{Stage: StageParse})
		if err != nil {
			t.Fatalf("CompileFile: %v", err)
		}
		found := false
		for _, d := range res.Bag.Items() {
			if d.Code == diag.SynParseError {
				found = true
			}
		}
		if !found {
			t.Errorf("no parse-error diagnostic: %+v", res.Bag.Items())
		}
	})

	t.Run("analyze reports without rewriting", func(t *testing.T) {
		fs, id := loadVirtual(t, "app.tsx", staticMutSrc)
		res, err := CompileFile(fs, id, Options{Stage: StageAnalyze})
		if err != nil {
			t.Fatalf("CompileFile: %v", err)
		}
		if res.Analysis == nil {
			t.Fatal("Analysis = nil for analyze stage")
		}
		if res.Changed || res.Output != staticMutSrc {
			t.Errorf("analyze stage rewrote the source:\n%s", res.Output)
		}
		items := res.Bag.Items()
		if len(items) != 1 || items[0].Code != diag.RctNonReactiveMutation {
			t.Errorf("diagnostics = %+v, want one non-reactive-mutation", items)
		}
	})
}

func TestCompileFile_WarningFilters(t *testing.T) {
	t.Run("ignore warnings", func(t *testing.T) {
		fs, id := loadVirtual(t, "app.tsx", staticMutSrc)
		res, err := CompileFile(fs, id, Options{Stage: StageAnalyze, IgnoreWarnings: true})
		if err != nil {
			t.Fatalf("CompileFile: %v", err)
		}
		if res.Bag.Len() != 0 {
			t.Errorf("diagnostics = %d, want 0: %+v", res.Bag.Len(), res.Bag.Items())
		}
	})

	t.Run("warnings as errors", func(t *testing.T) {
		fs, id := loadVirtual(t, "app.tsx", staticMutSrc)
		res, err := CompileFile(fs, id, Options{Stage: StageAnalyze, WarningsAsErrors: true})
		if err != nil {
			t.Fatalf("CompileFile: %v", err)
		}
		if !res.Bag.HasErrors() {
			t.Errorf("HasErrors = false after promotion: %+v", res.Bag.Items())
		}
	})
}

func TestCompileFile_Timings(t *testing.T) {
	fs, id := loadVirtual(t, "list.tsx", listSrc)

	res, err := CompileFile(fs, id, Options{EnableTimings: true})
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}
	if res.Timing == nil {
		t.Fatal("Timing = nil with EnableTimings")
	}
	phases := make(map[string]bool, len(res.Timing.Phases))
	for _, p := range res.Timing.Phases {
		phases[p.Name] = true
	}
	for _, want := range []string{"parse", "analyze", "rewrite"} {
		if !phases[want] {
			t.Errorf("phase %q missing from %+v", want, res.Timing.Phases)
		}
	}
	found := false
	for _, d := range res.Bag.Items() {
		if d.Code == diag.ObsTimings {
			found = true
		}
	}
	if !found {
		t.Error("no timings diagnostic in bag")
	}

	plain, err := CompileFile(fs, id, Options{})
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}
	if plain.Timing != nil {
		t.Error("Timing set without EnableTimings")
	}
	for _, d := range plain.Bag.Items() {
		if d.Code == diag.ObsTimings {
			t.Error("timings diagnostic present without EnableTimings")
		}
	}
}

func TestCompileFile_Observer(t *testing.T) {
	fs, id := loadVirtual(t, "list.tsx", listSrc)

	var events []PhaseEvent
	_, err := CompileFile(fs, id, Options{Observer: func(e PhaseEvent) {
		events = append(events, e)
	}})
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}

	if len(events) == 0 {
		t.Fatal("no phase events")
	}
	if events[0].Name != "parse" || events[0].Status != PhaseStart {
		t.Errorf("first event = %+v, want parse start", events[0])
	}
	starts, ends := 0, 0
	for _, e := range events {
		switch e.Status {
		case PhaseStart:
			starts++
		case PhaseEnd:
			ends++
		}
	}
	if starts != ends || starts != 3 {
		t.Errorf("starts = %d, ends = %d, want 3 each", starts, ends)
	}
}

func TestCompileFile_MemoryCache(t *testing.T) {
	mem, err := NewMemCache(8)
	if err != nil {
		t.Fatalf("NewMemCache: %v", err)
	}
	fs, id := loadVirtual(t, "list.tsx", listSrc)
	opts := Options{Memory: mem}

	first, err := CompileFile(fs, id, opts)
	if err != nil {
		t.Fatalf("first compile: %v", err)
	}
	if first.FromCache {
		t.Error("first compile reported FromCache")
	}

	second, err := CompileFile(fs, id, opts)
	if err != nil {
		t.Fatalf("second compile: %v", err)
	}
	if !second.FromCache {
		t.Error("second compile missed the memory cache")
	}
	if second.Output != first.Output {
		t.Errorf("cached output differs:\n%s\nwant:\n%s", second.Output, first.Output)
	}

	other, err := CompileFile(fs, id, Options{Memory: mem, MarkupReferencedOnly: true})
	if err != nil {
		t.Fatalf("third compile: %v", err)
	}
	if other.FromCache {
		t.Error("different options hit the cache")
	}
}

func TestCompileFile_DiskCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	disk, err := OpenDiskCache("impulse-test")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}

	fs, id := loadVirtual(t, "app.tsx", staticMutSrc)
	opts := Options{Stage: StageAnalyze, Disk: disk}

	first, err := CompileFile(fs, id, opts)
	if err != nil {
		t.Fatalf("first compile: %v", err)
	}
	if first.FromCache {
		t.Error("first compile reported FromCache")
	}
	if items := first.Bag.Items(); len(items) != 1 || len(items[0].Fixes) != 1 {
		t.Fatalf("fresh diagnostics = %+v, want one with a fix", items)
	}

	// Same content in a different file set, as a later process would see it.
	fs2 := source.NewFileSet()
	fs2.AddVirtual("pad.tsx", []byte("const pad = 1;\n"))
	id2 := fs2.AddVirtual("app.tsx", []byte(staticMutSrc))

	second, err := CompileFile(fs2, id2, opts)
	if err != nil {
		t.Fatalf("second compile: %v", err)
	}
	if !second.FromCache {
		t.Fatal("second compile missed the disk cache")
	}
	items := second.Bag.Items()
	if len(items) != 1 {
		t.Fatalf("cached diagnostics = %+v, want 1", items)
	}
	d := items[0]
	if d.Code != diag.RctNonReactiveMutation || d.Severity != diag.SevWarning {
		t.Errorf("cached diagnostic = %+v", d)
	}
	if d.Primary.File != id2 {
		t.Errorf("Primary.File = %d, want rebound to %d", d.Primary.File, id2)
	}
	if len(d.Fixes) != 0 {
		t.Errorf("cached diagnostic kept fixes: %+v", d.Fixes)
	}
	if len(d.Notes) != 1 {
		t.Errorf("cached notes = %+v, want the declaration note", d.Notes)
	}
	if second.Analysis != nil {
		t.Error("disk hit carried an analysis table")
	}
}

func TestCompilePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "App.tsx")
	if err := os.WriteFile(path, []byte(listSrc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	fs, res, err := CompilePath(path, Options{})
	if err != nil {
		t.Fatalf("CompilePath: %v", err)
	}
	if fs.Len() != 1 {
		t.Errorf("FileSet.Len() = %d, want 1", fs.Len())
	}
	if res.Output != listOut {
		t.Errorf("output:\n%s\nwant:\n%s", res.Output, listOut)
	}

	if _, _, err := CompilePath(filepath.Join(dir, "missing.tsx"), Options{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCompileFile_AnalysisInvariants(t *testing.T) {
	sources := map[string]string{
		"list.tsx": listSrc,
		"app.tsx":  staticMutSrc,
		"tasks.tsx": "function Tasks() {\n" +
			"  const { data, refetch } = query(\"/tasks\");\n" +
			"  return <ul onClick={() => refetch()}>{data}</ul>;\n" +
			"}\n",
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			fs, id := loadVirtual(t, name, src)
			res, err := CompileFile(fs, id, Options{Stage: StageAnalyze})
			if err != nil {
				t.Fatalf("CompileFile: %v", err)
			}
			if err := testkit.CheckAnalysisInvariants(res.Analysis, fs.Get(id)); err != nil {
				t.Errorf("invariants: %v", err)
			}
		})
	}
}

func TestCompileFile_DiagnosticGolden(t *testing.T) {
	fs, id := loadVirtual(t, "app.tsx", staticMutSrc)

	res, err := CompileFile(fs, id, Options{Stage: StageAnalyze})
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}

	want := []string{
		`warning non-reactive-mutation 39-52: "items" is mutated but never declared reactive; markup reading it will not update`,
	}
	if got := testkit.DiagLines(res.Bag); !reflect.DeepEqual(got, want) {
		t.Errorf("diagnostics:\n got %q\nwant %q", got, want)
	}
}
