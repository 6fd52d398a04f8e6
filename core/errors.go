package core

import (
	"errors"
	"fmt"
)

// ErrNotRunning is returned by operations that require a started engine, i.e.
// submissions attempted before Start or after Stop.
var ErrNotRunning = errors.New("engine is not running: call Start first")

// UnknownTargetError is returned by Submit when the target name is absent
// from the registry implied by the task kind.
//
// Cross-registry confusion is called out explicitly: when the name exists in
// the other registry the message says so, since "you asked for a tool but
// registered an agent" is a different caller mistake than a plain typo.
type UnknownTargetError struct {
	Kind   Kind   // the kind the caller asked for
	Target string // the name that failed to resolve
	// InOther is set when Target exists in the registry of the other kind.
	InOther bool
}

func (e *UnknownTargetError) Error() string {
	switch {
	case e.Kind == KindTool && e.InOther:
		return fmt.Sprintf("tool %q not found, but a managed agent with that name is registered; submit it with kind %q", e.Target, KindAgent)
	case e.Kind == KindAgent && e.InOther:
		return fmt.Sprintf("managed agent %q not found, but a tool with that name is registered; submit it with kind %q", e.Target, KindTool)
	case e.Kind == KindAgent:
		return fmt.Sprintf("managed agent %q not found", e.Target)
	default:
		return fmt.Sprintf("tool %q not found", e.Target)
	}
}

// InvalidKindError is returned by Submit when the kind is neither KindTool
// nor KindAgent.
type InvalidKindError struct {
	Kind Kind
}

func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid task kind %q: must be %q or %q", e.Kind, KindTool, KindAgent)
}

// DuplicateIDError is returned by Submit when a caller-supplied task ID is
// already present in the results table. Duplicate IDs are rejected rather
// than silently overwriting the prior record.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("task id %q already exists", e.ID)
}

// InstantiationError records a managed-agent factory failure. It wraps the
// underlying construction error and marks the task as failed; the engine
// never retries instantiation.
type InstantiationError struct {
	Agent string
	Err   error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("failed to instantiate managed agent %q: %v", e.Agent, e.Err)
}

// Unwrap returns the underlying construction error.
func (e *InstantiationError) Unwrap() error { return e.Err }

// IncompleteExecutionError indicates that an invocable exited before
// producing a usable result, typically an agent loop that exhausted its step
// budget without reaching a terminal answer. The engine surfaces it on the
// task with a distinct, actionable message instead of a generic failure.
type IncompleteExecutionError struct {
	Target string
	Steps  int    // steps consumed when the run gave up, 0 if unknown
	Reason string // short description of why no result was produced
}

func (e *IncompleteExecutionError) Error() string {
	if e.Steps > 0 {
		return fmt.Sprintf("incomplete execution of %q after %d steps: %s", e.Target, e.Steps, e.Reason)
	}
	return fmt.Sprintf("incomplete execution of %q: %s", e.Target, e.Reason)
}
