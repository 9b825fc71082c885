// Package trace provides a tracing subsystem for the impulse compiler.
//
// The trace package records pipeline spans (driver run, per-file compile,
// per-file passes) to help diagnose slow builds and hangs.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	impulse check --trace=- --trace-level=phase src/
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - Nop: zero-overhead discard when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer for crash dumps
//   - MultiTracer: fan-out to several tracers
//
// # Levels
//
// Tracing verbosity is controlled by levels:
//
//   - LevelOff: No tracing
//   - LevelError: Only crash dumps
//   - LevelPhase: Driver and per-file boundaries
//   - LevelDetail: Pass-level events (parse, analyze, rewrite)
//   - LevelDebug: Everything including node-level events
//
// # Scopes
//
// Events are categorized by scope:
//
//   - ScopeDriver: Top-level CLI operations
//   - ScopeFile: Per-file compiles
//   - ScopePass: Pipeline passes within one file
//   - ScopeNode: Syntax-node level (future)
//
// # Context Propagation
//
// Tracers are propagated through the pipeline via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "analyze", parentID)
//	defer span.End("")
package trace
