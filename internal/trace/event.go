package trace

import "time"

// Kind discriminates the event records a tracer sees.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1 // operation opened
	KindSpanEnd                   // operation closed
	KindPoint                     // instant, no duration
	KindHeartbeat                 // periodic liveness signal
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	}
	return "unknown"
}

// Scope grades events by pipeline depth; smaller is coarser. Levels
// filter on it, so the ordering is load-bearing.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // whole build or check run
	ScopeFile                    // one source file's compile
	ScopePass                    // one pass inside a file (parse, analyze, rewrite)
	ScopeNode                    // syntax-node granularity
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeFile:
		return "file"
	case ScopePass:
		return "pass"
	case ScopeNode:
		return "node"
	}
	return "unknown"
}

// Event is one trace record. Emitters stamp Seq and Time; consumers
// never mutate an event after Emit.
type Event struct {
	Time     time.Time
	Seq      uint64 // process-wide monotonic ordering
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	GID      uint64 // emitting goroutine
	Name     string // pass name or file path
	Detail   string
	Extra    map[string]string
}
