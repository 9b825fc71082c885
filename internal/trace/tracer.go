package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Tracer receives pipeline events. Implementations must tolerate
// concurrent Emit calls: file compiles fan out across goroutines.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// Nop discards everything. It is what FromContext hands out when no
// tracer was installed, so call sites never nil-check.
var Nop Tracer = nopTracer{}

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// StorageMode selects where emitted events end up.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // write-through to the output
	ModeRing                          // in-memory ring, dumped on demand
	ModeBoth                          // both at once
)

func (m StorageMode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	case ModeBoth:
		return "both"
	}
	return "unknown"
}

// ParseMode maps a --trace-mode flag value to a StorageMode.
func ParseMode(s string) (StorageMode, error) {
	switch strings.ToLower(s) {
	case "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	case "both":
		return ModeBoth, nil
	}
	return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config collects everything New needs to assemble a tracer.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format        // FormatAuto picks from OutputPath's extension
	Output     io.Writer     // wins over OutputPath when set
	OutputPath string        // "-" or empty means stderr
	RingSize   int           // ring capacity, defaulted when <= 0
	Heartbeat  time.Duration // 0 disables the liveness ticker
}

const defaultRingSize = 4096

// New builds the tracer described by cfg. LevelOff short-circuits to
// Nop so disabled runs pay nothing.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = defaultRingSize
	}

	switch cfg.Mode {
	case ModeRing:
		return NewRingTracer(cfg.RingSize, cfg.Level), nil
	case ModeStream:
		w, err := cfg.output()
		if err != nil {
			return nil, err
		}
		return NewStreamTracer(w, cfg.Level, cfg.resolveFormat()), nil
	case ModeBoth:
		w, err := cfg.output()
		if err != nil {
			return nil, err
		}
		return NewMultiTracer(cfg.Level,
			NewStreamTracer(w, cfg.Level, cfg.resolveFormat()),
			NewRingTracer(cfg.RingSize, cfg.Level)), nil
	}
	return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
}

// resolveFormat turns FormatAuto into a concrete format using the
// output path's extension, defaulting to the text form.
func (cfg Config) resolveFormat() Format {
	if cfg.Format != FormatAuto {
		return cfg.Format
	}
	switch {
	case strings.HasSuffix(cfg.OutputPath, ".ndjson"):
		return FormatNDJSON
	case strings.HasSuffix(cfg.OutputPath, ".json"):
		return FormatChrome
	}
	return FormatText
}

func (cfg Config) output() (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}
