package core

import "context"

// TraceContext is an opaque, propagatable observability handle. The engine
// captures one at submission time and re-attaches it on whichever goroutine
// executes the task, but never inspects or serializes it.
type TraceContext any

// TracePropagator relays trace context across the submission/execution
// boundary. Capture runs on the submitter's goroutine with the submitter's
// context; Attach runs on the worker goroutine just before the invocable is
// called. The attached context lives for the duration of the execution and is
// dropped when the worker returns, so no explicit detach is needed.
//
// Absence of a tracing system is not an error: NoopPropagator is the default.
type TracePropagator interface {
	// Capture extracts the ambient trace context from ctx. It may return nil
	// when no trace is active.
	Capture(ctx context.Context) TraceContext

	// Attach derives a context carrying tc. Implementations must tolerate a
	// nil or foreign tc by returning ctx unchanged.
	Attach(ctx context.Context, tc TraceContext) context.Context
}

// NoopPropagator is a TracePropagator that relays nothing. It is the default
// when no tracing subsystem is configured.
type NoopPropagator struct{}

// Capture returns nil.
func (NoopPropagator) Capture(context.Context) TraceContext { return nil }

// Attach returns ctx unchanged.
func (NoopPropagator) Attach(ctx context.Context, _ TraceContext) context.Context { return ctx }
