package core

import "time"

// Kind identifies which registry a task's target name resolves against.
type Kind string

const (
	// KindTool targets a registered tool. Tools are assumed reentrant and the
	// shared instance is invoked directly by concurrent workers.
	KindTool Kind = "tool"
	// KindAgent targets a registered managed agent. A fresh agent instance is
	// built from its factory for every execution.
	KindAgent Kind = "managed_agent"
)

// Valid reports whether k is one of the two known task kinds.
func (k Kind) Valid() bool { return k == KindTool || k == KindAgent }

// Status represents the lifecycle state of a task.
//
// The state machine is Pending -> Running -> {Completed, Failed} with the
// additional edge Pending -> Cancelled. Completed, Failed and Cancelled are
// terminal and irreversible.
type Status string

const (
	// StatusPending means the task is queued and has not been picked up.
	StatusPending Status = "pending"
	// StatusRunning means a worker is currently executing the task.
	StatusRunning Status = "running"
	// StatusCompleted means the task finished and Result is set.
	StatusCompleted Status = "completed"
	// StatusFailed means execution raised an error recorded in Error.
	StatusFailed Status = "failed"
	// StatusCancelled means the task was cancelled before it was dispatched.
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether s is a terminal state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Task is one unit of submitted work. The engine exclusively owns the record
// once submitted; callers receive value copies through the introspection API
// and hold only the ID.
//
// Exactly one of Result/Error is set once Status is terminal via execution
// (Completed or Failed); neither is set before that. StartedAt is recorded by
// the worker that moves the task to Running, CompletedAt by the worker that
// moves it to a terminal state. All timestamps come from time.Now and carry
// Go's monotonic clock reading, so CreatedAt <= StartedAt <= CompletedAt.
type Task struct {
	ID          string         `json:"id"`
	Kind        Kind           `json:"kind"`
	Target      string         `json:"target"`
	Arguments   map[string]any `json:"arguments"`
	Status      Status         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	StartedAt   time.Time      `json:"started_at,omitzero"`
	CompletedAt time.Time      `json:"completed_at,omitzero"`
	Result      any            `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`

	// Trace carries the observability context captured at submission time.
	// It is opaque to the engine and never serialized.
	Trace TraceContext `json:"-"`
}

// Duration returns the wall time the task spent executing, or zero if it has
// not reached a terminal state through execution.
func (t Task) Duration() time.Duration {
	if t.StartedAt.IsZero() || t.CompletedAt.IsZero() {
		return 0
	}
	return t.CompletedAt.Sub(t.StartedAt)
}

// Statistics is an aggregate snapshot of engine activity.
//
// Submitted, Completed, Failed and Cancelled are monotonic counters updated at
// the corresponding state transitions. Pending and Running are computed by
// scanning current task states at call time.
type Statistics struct {
	Submitted int64 `json:"total_submitted"`
	Completed int64 `json:"total_completed"`
	Failed    int64 `json:"total_failed"`
	Cancelled int64 `json:"total_cancelled"`
	Pending   int   `json:"pending"`
	Running   int   `json:"running"`

	// Tools and Agents list the registered target names, sorted.
	Tools  []string `json:"available_tools"`
	Agents []string `json:"available_agents"`
}
