// Package trace provides an OpenTelemetry implementation of the engine's
// TracePropagator, relaying the active span context from the submitter's
// goroutine to the worker that executes the task. Submissions made without an
// active span relay nothing; the engine treats that as normal.
package trace

import (
	"context"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/taskmesh/core"
)

// OTelPropagator captures the caller's span context at submission time and
// re-attaches it around task execution, so spans started by the invocable
// parent correctly even though it runs on a pool goroutine.
type OTelPropagator struct{}

// NewOTelPropagator creates an OTelPropagator.
func NewOTelPropagator() *OTelPropagator { return &OTelPropagator{} }

// Capture extracts the active span context, or nil when none is valid.
func (*OTelPropagator) Capture(ctx context.Context) core.TraceContext {
	sc := oteltrace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return sc
}

// Attach derives a context carrying the captured span context. A nil or
// foreign trace context leaves ctx unchanged.
func (*OTelPropagator) Attach(ctx context.Context, tc core.TraceContext) context.Context {
	sc, ok := tc.(oteltrace.SpanContext)
	if !ok || !sc.IsValid() {
		return ctx
	}
	return oteltrace.ContextWithSpanContext(ctx, sc)
}
