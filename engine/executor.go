package engine

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/hupe1980/taskmesh/core"
)

// maxStepsArg is the managed-agent argument bounding loop iterations. The
// executor injects Config.DefaultAgentMaxSteps under this key when the
// submitter did not set it.
const maxStepsArg = "max_steps"

// execute runs one dequeued task to a terminal state inside a pool worker.
//
// The sequence is: attach the captured trace context, transition
// Pending -> Running, resolve the invocable (building a fresh agent instance
// for managed-agent tasks), invoke it, then record the terminal transition.
// Both transitions happen under the engine's state mutex so readers never see
// a half-updated task. Panics and errors from the invocable are captured on
// the task; they never propagate past this function.
func (e *Engine) execute(workerID int, rec *record) {
	e.mu.Lock()
	if rec.task.Status != core.StatusPending {
		// Cancelled after the dispatcher's check, while the hand-off was
		// blocked on a busy pool. Terminal states are irreversible, so the
		// task must not flip to Running.
		id := rec.task.ID
		e.mu.Unlock()
		e.logger.Debug("skipping non-pending task", "task_id", id)
		return
	}
	rec.task.Status = core.StatusRunning
	rec.task.StartedAt = time.Now()
	id := rec.task.ID
	kind := rec.task.Kind
	target := rec.task.Target
	args := rec.task.Arguments
	tc := rec.task.Trace
	e.mu.Unlock()

	e.logger.Debug("executing task", "task_id", id, "worker", workerID, "target", target)

	// The attached context lives exactly as long as this execution; dropping
	// it on return is the detach.
	ctx := e.propagator.Attach(context.Background(), tc)

	result, err := e.invoke(ctx, kind, target, args)

	now := time.Now()
	e.mu.Lock()
	rec.task.CompletedAt = now
	if err != nil {
		rec.task.Status = core.StatusFailed
		rec.task.Error = classifyError(err)
		e.failed++
	} else {
		rec.task.Status = core.StatusCompleted
		rec.task.Result = result
		e.completed++
	}
	dur := rec.task.CompletedAt.Sub(rec.task.StartedAt)
	e.mu.Unlock()

	if err != nil {
		e.metrics.taskFailed(dur)
		e.logger.Error("task failed", "task_id", id, "target", target, "duration", dur, "error", err.Error())
		return
	}

	e.metrics.taskCompleted(dur)
	e.logger.Info("task completed", "task_id", id, "target", target, "duration", dur)
}

// invoke resolves the task's invocable and calls it. A panicking invocable is
// converted into an error so one bad task cannot take a worker down.
func (e *Engine) invoke(ctx context.Context, kind core.Kind, target string, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s %q: %v", kind, target, r)
		}
	}()

	switch kind {
	case core.KindTool:
		t, ok := e.lookupTool(target)
		if !ok {
			// Registered at submit time but replaced or removed since; treat
			// it like any other unknown target.
			return nil, &core.UnknownTargetError{Kind: kind, Target: target}
		}
		return t.Call(ctx, args)

	case core.KindAgent:
		f, ok := e.lookupAgentFactory(target)
		if !ok {
			return nil, &core.UnknownTargetError{Kind: kind, Target: target}
		}
		a, buildErr := f.Build()
		if buildErr != nil {
			return nil, &core.InstantiationError{Agent: target, Err: buildErr}
		}
		return a.Call(ctx, e.withDefaultMaxSteps(args))

	default:
		return nil, &core.InvalidKindError{Kind: kind}
	}
}

// withDefaultMaxSteps returns args with the default step budget injected when
// none was supplied. The submitted map is left untouched; injection copies.
func (e *Engine) withDefaultMaxSteps(args map[string]any) map[string]any {
	if e.config.DefaultAgentMaxSteps <= 0 {
		return args
	}
	if _, ok := args[maxStepsArg]; ok {
		return args
	}
	out := make(map[string]any, len(args)+1)
	maps.Copy(out, args)
	out[maxStepsArg] = e.config.DefaultAgentMaxSteps
	return out
}

// classifyError renders an execution error into the task's Error field.
//
// Incomplete executions and agent instantiation failures get distinct,
// actionable prefixes; anything else is captured as "{type}: {message}" the
// way a caller would want to grep for it.
func classifyError(err error) string {
	var incomplete *core.IncompleteExecutionError
	if errors.As(err, &incomplete) {
		return fmt.Sprintf("IncompleteExecution: %v (consider raising the %s budget)", incomplete, maxStepsArg)
	}

	var inst *core.InstantiationError
	if errors.As(err, &inst) {
		return fmt.Sprintf("AgentInstantiationFailed: %v", inst)
	}

	return fmt.Sprintf("%s: %v", errorKind(err), err)
}

// errorKind names the concrete error type, without the pointer marker.
func errorKind(err error) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}
