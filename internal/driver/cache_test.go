package driver

import (
	"testing"

	"impulse/internal/analysis"
)

func TestCacheKey_Deterministic(t *testing.T) {
	opts := Options{
		Stage:         StageAnalyze,
		RuntimeImport: "custom-runtime",
		Calls: analysis.CallRegistry{
			"useQuery": {Signals: []string{"data", "loading"}, Plain: []string{"refetch"}},
			"useForm":  {Signals: []string{"values"}},
		},
	}
	content := [32]byte{1, 2, 3}

	if cacheKey(content, opts) != cacheKey(content, opts) {
		t.Error("same content and options produced different keys")
	}

	other := [32]byte{4, 5, 6}
	if cacheKey(content, opts) == cacheKey(other, opts) {
		t.Error("different content produced the same key")
	}
}

func TestOptionsFingerprint_Varies(t *testing.T) {
	base := optionsFingerprint(Options{})

	variants := map[string]Options{
		"stage":                  {Stage: StageAnalyze},
		"max diagnostics":        {MaxDiagnostics: 7},
		"ignore warnings":        {IgnoreWarnings: true},
		"warnings as errors":     {WarningsAsErrors: true},
		"markup referenced only": {MarkupReferencedOnly: true},
		"skip imports":           {SkipImports: true},
		"runtime import":         {RuntimeImport: "other-runtime"},
		"call registry":          {Calls: analysis.CallRegistry{"useQuery": {Signals: []string{"data"}}}},
	}
	for name, opts := range variants {
		t.Run(name, func(t *testing.T) {
			if optionsFingerprint(opts) == base {
				t.Error("fingerprint matched the zero options")
			}
		})
	}
}

func TestOptionsFingerprint_PropertyOrderIrrelevant(t *testing.T) {
	a := optionsFingerprint(Options{Calls: analysis.CallRegistry{
		"useQuery": {Signals: []string{"data", "loading"}, Plain: []string{"refetch", "mutate"}},
	}})
	b := optionsFingerprint(Options{Calls: analysis.CallRegistry{
		"useQuery": {Signals: []string{"loading", "data"}, Plain: []string{"mutate", "refetch"}},
	}})
	if a != b {
		t.Error("property order changed the fingerprint")
	}
}

func TestOptionsFingerprint_TimingsIrrelevant(t *testing.T) {
	// Timing entries never land in cached results, so the flag must not
	// split the key space.
	if optionsFingerprint(Options{}) != optionsFingerprint(Options{EnableTimings: true}) {
		t.Error("EnableTimings changed the fingerprint")
	}
}

func TestMemCache(t *testing.T) {
	c, err := NewMemCache(2)
	if err != nil {
		t.Fatalf("NewMemCache: %v", err)
	}

	k1 := Digest{1}
	k2 := Digest{2}
	k3 := Digest{3}
	c.Put(k1, &cachePayload{Output: "a"})
	c.Put(k2, &cachePayload{Output: "b"})
	c.Put(k3, &cachePayload{Output: "c"})

	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2 after eviction", c.Len())
	}
	if _, ok := c.Get(k1); ok {
		t.Error("oldest entry survived eviction")
	}
	payload, ok := c.Get(k3)
	if !ok || payload.Output != "c" {
		t.Errorf("Get(k3) = %+v, %t", payload, ok)
	}
}

func TestMemCache_NilSafe(t *testing.T) {
	var c *MemCache
	c.Put(Digest{1}, &cachePayload{})
	if _, ok := c.Get(Digest{1}); ok {
		t.Error("nil cache reported a hit")
	}
	if c.Len() != 0 {
		t.Error("nil cache reported entries")
	}
}

func TestCombineDigest_OrderMatters(t *testing.T) {
	a := Digest{1}
	b := Digest{2}
	if combineDigest(a, b) == combineDigest(b, a) {
		t.Error("digest combination ignored order")
	}
}
