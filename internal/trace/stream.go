package trace

import (
	"io"
	"sync"
)

// StreamTracer writes each event through to w as it arrives. Write
// failures are swallowed: tracing must never fail a compile.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	count  int // events written, for Chrome comma placement
}

// NewStreamTracer wraps w. The Chrome format needs an array envelope,
// so its header is written up front and the footer on Close.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatChrome {
		_, _ = w.Write([]byte("{\"traceEvents\":[\n"))
	}
	return &StreamTracer{w: w, level: level, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.format == FormatChrome && t.count > 0 {
		_, _ = t.w.Write([]byte(",\n"))
	}
	t.count++
	_, _ = t.w.Write(data)
}

// Flush forwards to the writer when it buffers.
func (t *StreamTracer) Flush() error {
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close finishes the Chrome envelope and closes the writer when owned.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	if t.format == FormatChrome {
		_, _ = t.w.Write([]byte("\n]}\n"))
	}
	t.mu.Unlock()

	if err := t.Flush(); err != nil {
		return err
	}
	if c, ok := t.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
