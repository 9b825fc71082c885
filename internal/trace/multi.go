package trace

import "errors"

// MultiTracer fans every event out to a set of tracers, typically one
// stream for live output plus one ring for post-mortem dumps.
type MultiTracer struct {
	sinks []Tracer
	level Level
}

func NewMultiTracer(level Level, sinks ...Tracer) *MultiTracer {
	return &MultiTracer{sinks: sinks, level: level}
}

// Emit hands the same event pointer to every sink; sinks treat events
// as read-only.
func (t *MultiTracer) Emit(ev *Event) {
	for _, s := range t.sinks {
		s.Emit(ev)
	}
}

// Ring finds the wrapped RingTracer for dump access, nil when absent.
func (t *MultiTracer) Ring() *RingTracer {
	for _, s := range t.sinks {
		if r, ok := s.(*RingTracer); ok {
			return r
		}
	}
	return nil
}

func (t *MultiTracer) Flush() error {
	var errs []error
	for _, s := range t.sinks {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Close() error {
	var errs []error
	for _, s := range t.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
