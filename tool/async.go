package tool

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/taskmesh/core"
	"github.com/hupe1980/taskmesh/engine"
)

// AsyncTools returns the full async task-management tool set bound to eng.
// Registering these with the same engine (or handing them to a driving
// agent's own tool loop) lets the agent fan work out in parallel: submit
// tasks, sleep or wait, then collect results.
func AsyncTools(eng *engine.Engine) []core.Tool {
	return []core.Tool{
		NewSubmitTaskTool(eng),
		NewCheckTaskTool(eng),
		NewListTasksTool(eng),
		NewWaitForTasksTool(eng),
		NewTaskResultsTool(eng),
		NewSleepTool(),
	}
}

// SubmitTaskTool submits a task for asynchronous background execution and
// returns its id, so the caller can check status and results later.
type SubmitTaskTool struct {
	eng *engine.Engine
}

// NewSubmitTaskTool binds a SubmitTaskTool to an engine.
func NewSubmitTaskTool(eng *engine.Engine) *SubmitTaskTool { return &SubmitTaskTool{eng: eng} }

// Name returns the tool identifier.
func (t *SubmitTaskTool) Name() string { return "submit_task" }

// Description returns the tool description.
func (t *SubmitTaskTool) Description() string {
	return "Submit a task for asynchronous execution in the background. Supports kind \"tool\" " +
		"(execute a registered tool) and \"managed_agent\" (execute a managed agent). " +
		"Returns a task id for checking execution status and results."
}

// Call expects args: kind (string), target_name (string), arguments (object),
// task_id (string, optional).
func (t *SubmitTaskTool) Call(ctx context.Context, args map[string]any) (any, error) {
	kind, _ := args["kind"].(string)
	target, _ := args["target_name"].(string)
	taskArgs, _ := args["arguments"].(map[string]any)

	var optFns []func(o *engine.SubmitOptions)
	if id, _ := args["task_id"].(string); id != "" {
		optFns = append(optFns, engine.WithTaskID(id))
	}

	id, err := t.eng.Submit(ctx, core.Kind(kind), target, taskArgs, optFns...)
	if err != nil {
		return nil, &ToolError{Tool: t.Name(), Message: err.Error(), Code: "SUBMIT_FAILED"}
	}

	return fmt.Sprintf("Task submitted successfully! Task ID: %s", id), nil
}

// CheckTaskTool reports the status and result of a previously submitted task,
// including timing information and the error message when it failed.
type CheckTaskTool struct {
	eng *engine.Engine
}

// NewCheckTaskTool binds a CheckTaskTool to an engine.
func NewCheckTaskTool(eng *engine.Engine) *CheckTaskTool { return &CheckTaskTool{eng: eng} }

// Name returns the tool identifier.
func (t *CheckTaskTool) Name() string { return "check_task" }

// Description returns the tool description.
func (t *CheckTaskTool) Description() string {
	return "Check the status and result of a previously submitted task. Returns the status " +
		"(pending, running, completed, failed, cancelled), the result or error, and timing " +
		"information. Set format to \"detailed\" for the full record."
}

// Call expects args: task_id (string), format ("summary" or "detailed",
// optional, default summary).
func (t *CheckTaskTool) Call(_ context.Context, args map[string]any) (any, error) {
	id, _ := args["task_id"].(string)

	task, ok := t.eng.Get(id)
	if !ok {
		return fmt.Sprintf("Task not found: %s", id), nil
	}

	if format, _ := args["format"].(string); format == "detailed" {
		return formatDetailed(task), nil
	}
	return formatSummary(task), nil
}

func formatSummary(task core.Task) string {
	status := strings.ToUpper(string(task.Status))
	switch task.Status {
	case core.StatusCompleted:
		return fmt.Sprintf("Task %s: %s\nResult: %v", task.ID, status, task.Result)
	case core.StatusFailed:
		return fmt.Sprintf("Task %s: %s\nError: %s", task.ID, status, task.Error)
	default:
		return fmt.Sprintf("Task %s: %s", task.ID, status)
	}
}

func formatDetailed(task core.Task) string {
	lines := []string{
		fmt.Sprintf("Task ID: %s", task.ID),
		fmt.Sprintf("Kind: %s", task.Kind),
		fmt.Sprintf("Target: %s", task.Target),
		fmt.Sprintf("Status: %s", strings.ToUpper(string(task.Status))),
		fmt.Sprintf("Created: %s", task.CreatedAt.Format(time.RFC3339)),
	}

	if !task.StartedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("Started: %s", task.StartedAt.Format(time.RFC3339)))
	}
	if !task.CompletedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("Completed: %s", task.CompletedAt.Format(time.RFC3339)))
		lines = append(lines, fmt.Sprintf("Duration: %.2fs", task.Duration().Seconds()))
	}

	lines = append(lines, fmt.Sprintf("Arguments: %v", task.Arguments))

	switch task.Status {
	case core.StatusCompleted:
		lines = append(lines, fmt.Sprintf("Result: %v", task.Result))
	case core.StatusFailed:
		lines = append(lines, fmt.Sprintf("Error: %s", task.Error))
	}

	return strings.Join(lines, "\n")
}

// ListTasksTool lists submitted tasks with their status, newest first, with
// an aggregate statistics footer.
type ListTasksTool struct {
	eng *engine.Engine
}

// NewListTasksTool binds a ListTasksTool to an engine.
func NewListTasksTool(eng *engine.Engine) *ListTasksTool { return &ListTasksTool{eng: eng} }

// Name returns the tool identifier.
func (t *ListTasksTool) Name() string { return "list_tasks" }

// Description returns the tool description.
func (t *ListTasksTool) Description() string {
	return "List all submitted tasks with their status, most recent first. Optionally filter " +
		"by status and limit the number of results."
}

// Call expects args: status_filter (string, optional), limit (number,
// optional, default 10).
func (t *ListTasksTool) Call(_ context.Context, args map[string]any) (any, error) {
	var filters []core.Status
	if raw, _ := args["status_filter"].(string); raw != "" {
		status := core.Status(strings.ToLower(raw))
		switch status {
		case core.StatusPending, core.StatusRunning, core.StatusCompleted, core.StatusFailed, core.StatusCancelled:
			filters = append(filters, status)
		default:
			return nil, NewToolError(t.Name(),
				fmt.Sprintf("invalid status filter %q: valid values are pending, running, completed, failed, cancelled", raw),
				"VALIDATION_ERROR")
		}
	}

	tasks := t.eng.List(filters...)
	if len(tasks) == 0 {
		return "No tasks found.", nil
	}

	limit := 10
	if f, ok := args["limit"].(float64); ok && f > 0 {
		limit = int(f)
	}
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d task(s):\n", len(tasks))
	b.WriteString(strings.Repeat("-", 50) + "\n")

	for _, task := range tasks {
		duration := ""
		if d := task.Duration(); d > 0 {
			duration = fmt.Sprintf(" (%.1fs)", d.Seconds())
		}
		fmt.Fprintf(&b, "- %s | %s | %s:%s%s\n",
			shortID(task.ID), strings.ToUpper(string(task.Status)), task.Kind, task.Target, duration)
	}

	stats := t.eng.Statistics()
	b.WriteString(strings.Repeat("-", 50) + "\n")
	fmt.Fprintf(&b, "Total: %d | Completed: %d | Failed: %d | Pending: %d | Running: %d",
		stats.Submitted, stats.Completed, stats.Failed, stats.Pending, stats.Running)

	return b.String(), nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

// WaitForTasksTool blocks until the listed tasks are finished (completed,
// failed or cancelled), up to a maximum wait time. More useful than blind
// sleeping: it actively monitors task progress.
type WaitForTasksTool struct {
	eng *engine.Engine
}

// NewWaitForTasksTool binds a WaitForTasksTool to an engine.
func NewWaitForTasksTool(eng *engine.Engine) *WaitForTasksTool { return &WaitForTasksTool{eng: eng} }

// Name returns the tool identifier.
func (t *WaitForTasksTool) Name() string { return "wait_for_tasks" }

// Description returns the tool description.
func (t *WaitForTasksTool) Description() string {
	return "Wait for specific tasks to complete. Periodically checks task status and returns " +
		"when all listed tasks are finished or the maximum wait time elapses."
}

// Call expects args: task_ids (array of strings), max_wait_time (seconds,
// optional, default 30).
func (t *WaitForTasksTool) Call(ctx context.Context, args map[string]any) (any, error) {
	ids := stringSlice(args["task_ids"])
	if len(ids) == 0 {
		return "No task IDs provided", nil
	}

	maxWait := 30.0
	if f, ok := args["max_wait_time"].(float64); ok && f > 0 {
		maxWait = f
	}

	waitCtx, cancel := context.WithTimeout(ctx, time.Duration(maxWait*float64(time.Second)))
	defer cancel()

	start := time.Now()
	tasks, err := t.eng.Wait(waitCtx, ids...)
	elapsed := time.Since(start)

	if err != nil {
		if waitCtx.Err() != nil {
			completed, failed := countTerminal(t.eng, ids)
			return fmt.Sprintf("Timeout after %.1f seconds. Some tasks may still be running. Completed: %d, Failed: %d",
				elapsed.Seconds(), completed, failed), nil
		}
		return nil, NewToolError(t.Name(), err.Error(), "WAIT_FAILED")
	}

	completed, failed := 0, 0
	for _, task := range tasks {
		switch task.Status {
		case core.StatusCompleted:
			completed++
		case core.StatusFailed:
			failed++
		}
	}

	return fmt.Sprintf("All tasks completed in %.1f seconds!\nCompleted: %d, Failed: %d",
		elapsed.Seconds(), completed, failed), nil
}

func countTerminal(eng *engine.Engine, ids []string) (completed, failed int) {
	for _, id := range ids {
		task, ok := eng.Get(id)
		if !ok {
			continue
		}
		switch task.Status {
		case core.StatusCompleted:
			completed++
		case core.StatusFailed:
			failed++
		}
	}
	return completed, failed
}

// TaskResultsTool collects results from multiple tasks at once. More
// efficient than checking tasks individually when several results are needed
// together.
type TaskResultsTool struct {
	eng *engine.Engine
}

// NewTaskResultsTool binds a TaskResultsTool to an engine.
func NewTaskResultsTool(eng *engine.Engine) *TaskResultsTool { return &TaskResultsTool{eng: eng} }

// Name returns the tool identifier.
func (t *TaskResultsTool) Name() string { return "get_task_results" }

// Description returns the tool description.
func (t *TaskResultsTool) Description() string {
	return "Get results from multiple tasks at once. Returns a map from task id to its result, " +
		"error or current status, plus counts of completed and failed tasks."
}

// Call expects args: task_ids (array of strings), include_failed (bool,
// optional, default true). The result maps each task id to its outcome.
func (t *TaskResultsTool) Call(_ context.Context, args map[string]any) (any, error) {
	ids := stringSlice(args["task_ids"])
	if len(ids) == 0 {
		return map[string]any{"summary": "No task IDs provided", "results": map[string]any{}}, nil
	}

	includeFailed := true
	if b, ok := args["include_failed"].(bool); ok {
		includeFailed = b
	}

	results := make(map[string]any, len(ids))
	completed, failed := 0, 0

	for _, id := range ids {
		task, ok := t.eng.Get(id)
		if !ok {
			results[id] = fmt.Sprintf("Task %s: NOT FOUND", id)
			continue
		}

		switch task.Status {
		case core.StatusCompleted:
			completed++
			results[id] = task.Result
		case core.StatusFailed:
			failed++
			if includeFailed {
				results[id] = fmt.Sprintf("FAILED - %s", task.Error)
			}
		default:
			results[id] = strings.ToUpper(string(task.Status))
		}
	}

	return map[string]any{
		"summary": fmt.Sprintf("Results Summary: %d completed, %d failed", completed, failed),
		"results": results,
	}, nil
}

// SleepTool pauses for a given number of seconds, capped to avoid wedging the
// driving loop. After submitting tasks an agent should briefly sleep (or
// better, use wait_for_tasks) before checking their status.
type SleepTool struct{}

// NewSleepTool creates a SleepTool.
func NewSleepTool() *SleepTool { return &SleepTool{} }

// maxSleep bounds one sleep call so a confused caller can't stall for long.
const maxSleep = 60 * time.Second

// Name returns the tool identifier.
func (t *SleepTool) Name() string { return "sleep" }

// Description returns the tool description.
func (t *SleepTool) Description() string {
	return "Sleep for a specified number of seconds (capped at 60). Use this to pause before " +
		"re-checking async task results; prefer wait_for_tasks when the task ids are known."
}

// Call expects args: seconds (number).
func (t *SleepTool) Call(ctx context.Context, args map[string]any) (any, error) {
	seconds, _ := args["seconds"].(float64)
	if seconds < 0 {
		return nil, NewToolError(t.Name(), "sleep duration cannot be negative", "VALIDATION_ERROR")
	}

	d := time.Duration(seconds * float64(time.Second))
	if d > maxSleep {
		d = maxSleep
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return fmt.Sprintf("Slept for %s. Ready to continue.", d), nil
}

// stringSlice coerces a JSON-ish array value into []string, dropping
// non-string members and de-duplicating while preserving order.
func stringSlice(v any) []string {
	var raw []any
	switch vv := v.(type) {
	case []any:
		raw = vv
	case []string:
		out := make([]string, len(vv))
		copy(out, vv)
		return dedupe(out)
	default:
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return dedupe(out)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
