package core

import "context"

// Tool defines the interface for stateless invocables registered with an
// engine.
//
// A tool is assumed to be reentrant: the single registered instance is shared
// by all workers and may be called concurrently. Implementations must be
// thread-safe and should hold no per-call mutable state.
//
// Tool implementations should:
//   - Provide clear, descriptive names (snake_case recommended)
//   - Handle bad arguments gracefully by returning an error
//   - Respect context cancellation for long-running work
type Tool interface {
	// Name returns the unique identifier used as the registry key.
	Name() string

	// Description returns a human-readable description of what this tool does.
	Description() string

	// Call executes the tool with the submitted arguments. The context carries
	// the trace context captured when the task was submitted.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// Agent is a stateful invocable. Unlike a Tool, an Agent may accumulate
// internal state (conversation memory, scratch buffers) across the steps of a
// single call, so instances are never shared: the engine builds a fresh Agent
// from its AgentFactory for every execution.
type Agent interface {
	// Call runs the agent to completion with the submitted arguments.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// AgentFactory produces isolated Agent instances for a registered name.
//
// The factory is the construction snapshot behind managed-agent isolation: it
// captures, at registration time, everything needed to build a
// behaviorally-equivalent fresh instance, and Build is invoked once per task
// execution. Build must be safe for concurrent use; the Agents it returns
// need not be.
type AgentFactory interface {
	// Name returns the unique identifier used as the registry key.
	Name() string

	// Description returns a human-readable description of the agent.
	Description() string

	// Build constructs a fresh, private Agent instance. A non-nil error marks
	// the task as failed with an instantiation error wrapping the cause.
	Build() (Agent, error)
}
