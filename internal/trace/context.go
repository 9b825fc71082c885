package trace

import "context"

type tracerKey struct{}

// WithTracer installs t on the context. A nil tracer normalizes to Nop
// so FromContext stays total.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the installed tracer, or Nop when the context
// carries none.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
		return t
	}
	return Nop
}
