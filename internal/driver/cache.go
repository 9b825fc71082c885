package driver

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"impulse/internal/diag"
	"impulse/internal/rewrite"
	"impulse/internal/source"
	"impulse/internal/syntax"
)

// cacheSchemaVersion participates in every cache key and in the payload
// header. Bump it whenever the pipeline's output semantics or the payload
// layout change; old entries then miss instead of resurfacing.
const cacheSchemaVersion uint16 = 1

// Digest is a sha256 cache key.
type Digest [32]byte

// cachePayload is the cached form of one compiled file, shared by the
// memory and disk layers. It is position-relative: spans store offsets
// only and are rebound to the caller's file on every hit, so one entry
// serves the same content under any path or FileSet. Fix suggestions carry
// closures and analysis tables reference parse trees; neither survives
// caching, so hits surface plain diagnostics only.
type cachePayload struct {
	Schema  uint16
	Output  string
	Changed bool
	Helpers rewrite.Helpers
	Diags   []cacheDiag
}

type cacheDiag struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
	Notes    []cacheNote
}

type cacheNote struct {
	Start uint32
	End   uint32
	Msg   string
}

// resultPayload converts a fresh result for caching. Timing entries are
// per-run and skipped.
func resultPayload(res *FileResult) *cachePayload {
	p := &cachePayload{
		Schema:  cacheSchemaVersion,
		Output:  res.Output,
		Changed: res.Changed,
		Helpers: res.Helpers,
	}
	for _, d := range res.Bag.Items() {
		if d.Code == diag.ObsTimings {
			continue
		}
		cd := cacheDiag{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, cacheNote{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		p.Diags = append(p.Diags, cd)
	}
	return p
}

// payloadResult rebinds a cached payload to the file the caller is
// compiling.
func payloadResult(p *cachePayload, path string, fileID source.FileID, opts Options) *FileResult {
	bag := diag.NewBag(opts.maxDiagnostics())
	for i := range p.Diags {
		cd := &p.Diags[i]
		d := &diag.Diagnostic{
			Severity: diag.Severity(cd.Severity),
			Code:     diag.Code(cd.Code),
			Message:  cd.Message,
			Primary:  source.Span{File: fileID, Start: cd.Start, End: cd.End},
		}
		for _, n := range cd.Notes {
			d.Notes = append(d.Notes, diag.Note{
				Span: source.Span{File: fileID, Start: n.Start, End: n.End},
				Msg:  n.Msg,
			})
		}
		bag.Add(d)
	}
	return &FileResult{
		Path:      path,
		FileID:    fileID,
		Lang:      syntax.ForPath(path),
		Output:    p.Output,
		Changed:   p.Changed,
		Helpers:   p.Helpers,
		Bag:       bag,
		FromCache: true,
	}
}

// MemCache is an in-process LRU over cache payloads, for hosts that
// recompile the same content repeatedly (watch loops, language servers).
type MemCache struct {
	inner *lru.Cache[Digest, *cachePayload]
}

// NewMemCache creates an LRU cache holding up to size payloads.
func NewMemCache(size int) (*MemCache, error) {
	inner, err := lru.New[Digest, *cachePayload](size)
	if err != nil {
		return nil, err
	}
	return &MemCache{inner: inner}, nil
}

// Get retrieves a cached payload. A nil cache always misses.
func (c *MemCache) Get(key Digest) (*cachePayload, bool) {
	if c == nil {
		return nil, false
	}
	return c.inner.Get(key)
}

// Put stores a payload. A nil cache drops it.
func (c *MemCache) Put(key Digest, p *cachePayload) {
	if c == nil || p == nil {
		return
	}
	c.inner.Add(key, p)
}

// Len reports the number of cached payloads.
func (c *MemCache) Len() int {
	if c == nil {
		return 0
	}
	return c.inner.Len()
}

// combineDigest hashes the given digests in order.
func combineDigest(parts ...Digest) Digest {
	h := sha256.New()
	for _, p := range parts {
		_, _ = h.Write(p[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// cacheKey derives the cache key for one file's content under the given
// options.
func cacheKey(contentHash [32]byte, opts Options) Digest {
	return combineDigest(Digest(contentHash), optionsFingerprint(opts))
}

// optionsFingerprint folds every option that changes pipeline output into a
// digest, so results cached under different options never collide.
func optionsFingerprint(opts Options) Digest {
	h := sha256.New()
	fmt.Fprintf(h, "schema=%d;stage=%s;maxdiag=%d;iw=%t;wae=%t;mro=%t;skipimports=%t;runtime=%s;",
		cacheSchemaVersion, opts.stage(), opts.maxDiagnostics(),
		opts.IgnoreWarnings, opts.WarningsAsErrors,
		opts.MarkupReferencedOnly, opts.SkipImports, opts.RuntimeImport)

	names := make([]string, 0, len(opts.Calls))
	for name := range opts.Calls {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		shape := opts.Calls[name]
		fmt.Fprintf(h, "call=%s;signals=%s;plain=%s;",
			name, strings.Join(sortedCopy(shape.Signals), ","), strings.Join(sortedCopy(shape.Plain), ","))
	}

	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func sortedCopy(props []string) []string {
	out := append([]string(nil), props...)
	sort.Strings(out)
	return out
}
