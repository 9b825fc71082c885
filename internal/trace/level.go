package trace

import (
	"fmt"
	"strings"
)

// Level caps how deep into the pipeline events are recorded.
type Level uint8

const (
	LevelOff    Level = iota // tracing disabled
	LevelError               // nothing live; crash dumps only
	LevelPhase               // driver run and per-file boundaries
	LevelDetail              // plus per-file passes
	LevelDebug               // everything, node scope included
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelPhase:
		return "phase"
	case LevelDetail:
		return "detail"
	case LevelDebug:
		return "debug"
	}
	return "unknown"
}

// ParseLevel maps a --trace-level flag value to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "phase":
		return LevelPhase, nil
	case "detail":
		return LevelDetail, nil
	case "debug":
		return LevelDebug, nil
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
}

// ShouldEmit reports whether events at the given scope pass the level's
// depth cutoff. LevelError admits nothing here: its events arrive
// through the crash-dump path, not live emission.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopeFile
	case LevelDetail:
		return scope <= ScopePass
	case LevelDebug:
		return true
	}
	return false
}
