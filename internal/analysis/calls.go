package analysis

import (
	"strconv"
	"strings"
)

// CallShape declares the return shape of a framework call that produces a
// mixed bag of reactive and plain fields, keyed by property name.
// Destructuring such a call is expanded per property instead of being
// classified as a whole.
type CallShape struct {
	Signals []string
	Plain   []string
}

// CallRegistry maps a callee name to its declared return shape. Both bare
// calls (`query(...)`) and method-style calls (`api.query(...)`) are
// matched by the final name segment.
type CallRegistry map[string]CallShape

// DefaultCallRegistry returns the shapes recognized without project
// configuration: the runtime's data-fetching calls. Their data, loading,
// and error fields are live signals; the trigger functions are plain.
func DefaultCallRegistry() CallRegistry {
	return CallRegistry{
		"query": {
			Signals: []string{"data", "loading", "error"},
			Plain:   []string{"refetch"},
		},
		"mutation": {
			Signals: []string{"data", "pending", "error"},
			Plain:   []string{"mutate", "reset"},
		},
		"resource": {
			Signals: []string{"data", "loading", "error"},
			Plain:   []string{"refetch", "mutate"},
		},
	}
}

// Merge overlays other onto r, replacing shapes with the same name.
func (r CallRegistry) Merge(other CallRegistry) CallRegistry {
	if len(other) == 0 {
		return r
	}
	out := make(CallRegistry, len(r)+len(other))
	for name, shape := range r {
		out[name] = shape
	}
	for name, shape := range other {
		out[name] = shape
	}
	return out
}

func (s CallShape) isSignal(prop string) bool {
	for _, p := range s.Signals {
		if p == prop {
			return true
		}
	}
	return false
}

func (s CallShape) isPlain(prop string) bool {
	for _, p := range s.Plain {
		if p == prop {
			return true
		}
	}
	return false
}

func (s CallShape) signalSet() map[string]bool {
	out := make(map[string]bool, len(s.Signals))
	for _, p := range s.Signals {
		out[p] = true
	}
	return out
}

func (s CallShape) plainSet() map[string]bool {
	out := make(map[string]bool, len(s.Plain))
	for _, p := range s.Plain {
		out[p] = true
	}
	return out
}

// syntheticName builds the generated intermediate binding name for a
// destructured call result: `__query_0`, `__query_1`, and so on. The
// counter is scoped per component.
func syntheticName(callee string, n int) string {
	callee = sanitizeIdentifier(callee)
	if callee == "" {
		callee = "call"
	}
	return "__" + callee + "_" + strconv.Itoa(n)
}

func sanitizeIdentifier(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '$':
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
