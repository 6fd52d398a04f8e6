package tool

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/taskmesh/core"
	"github.com/hupe1980/taskmesh/engine"
)

func newAsyncTestEngine(t *testing.T) *engine.Engine {
	t.Helper()

	eng := engine.New(func(o *engine.Options) {
		o.Config.PollInterval = 5 * time.Millisecond
	})
	eng.RegisterTools(
		NewFunctionTool("double", "Double a number", func(_ context.Context, args map[string]any) (any, error) {
			x, ok := args["x"].(float64)
			if !ok {
				return nil, errors.New("argument x must be a number")
			}
			return 2 * x, nil
		}),
		NewFunctionTool("fail", "always fails", func(context.Context, map[string]any) (any, error) {
			return nil, errors.New("nope")
		}),
	)
	eng.Start()
	t.Cleanup(eng.Stop)

	return eng
}

func submitAndWait(t *testing.T, eng *engine.Engine, target string, args map[string]any) string {
	t.Helper()

	id, err := eng.Submit(context.Background(), core.KindTool, target, args)
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = eng.Wait(ctx, id)
	assert.NoError(t, err)

	return id
}

func TestAsyncToolsSet(t *testing.T) {
	eng := newAsyncTestEngine(t)
	tools := AsyncTools(eng)

	names := make([]string, len(tools))
	for i, tl := range tools {
		names[i] = tl.Name()
		assert.NotEmpty(t, tl.Description())
	}

	assert.Equal(t, []string{"submit_task", "check_task", "list_tasks", "wait_for_tasks", "get_task_results", "sleep"}, names)
}

func TestSubmitTaskTool(t *testing.T) {
	eng := newAsyncTestEngine(t)
	st := NewSubmitTaskTool(eng)

	result, err := st.Call(context.Background(), map[string]any{
		"kind":        "tool",
		"target_name": "double",
		"arguments":   map[string]any{"x": 21.0},
		"task_id":     "via-tool",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Task submitted successfully! Task ID: via-tool", result)

	status, ok := eng.GetStatus("via-tool")
	assert.True(t, ok)
	assert.NotEqual(t, core.Status(""), status)
}

func TestSubmitTaskToolRejectsUnknownTarget(t *testing.T) {
	eng := newAsyncTestEngine(t)
	st := NewSubmitTaskTool(eng)

	_, err := st.Call(context.Background(), map[string]any{
		"kind":        "tool",
		"target_name": "missing",
	})

	var toolErr *ToolError
	assert.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "SUBMIT_FAILED", toolErr.Code)
	assert.Contains(t, toolErr.Message, "not found")
}

func TestCheckTaskTool(t *testing.T) {
	eng := newAsyncTestEngine(t)
	ct := NewCheckTaskTool(eng)

	id := submitAndWait(t, eng, "double", map[string]any{"x": 21.0})

	result, err := ct.Call(context.Background(), map[string]any{"task_id": id})
	assert.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("Task %s: COMPLETED\nResult: 42", id), result)

	detailed, err := ct.Call(context.Background(), map[string]any{"task_id": id, "format": "detailed"})
	assert.NoError(t, err)
	text := detailed.(string)
	assert.Contains(t, text, "Task ID: "+id)
	assert.Contains(t, text, "Kind: tool")
	assert.Contains(t, text, "Target: double")
	assert.Contains(t, text, "Status: COMPLETED")
	assert.Contains(t, text, "Result: 42")

	missing, err := ct.Call(context.Background(), map[string]any{"task_id": "ghost"})
	assert.NoError(t, err)
	assert.Equal(t, "Task not found: ghost", missing)
}

func TestCheckTaskToolFailedTask(t *testing.T) {
	eng := newAsyncTestEngine(t)
	ct := NewCheckTaskTool(eng)

	id := submitAndWait(t, eng, "fail", nil)

	result, err := ct.Call(context.Background(), map[string]any{"task_id": id})
	assert.NoError(t, err)
	text := result.(string)
	assert.Contains(t, text, "FAILED")
	assert.Contains(t, text, "nope")
}

func TestListTasksTool(t *testing.T) {
	eng := newAsyncTestEngine(t)
	lt := NewListTasksTool(eng)

	empty, err := lt.Call(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, "No tasks found.", empty)

	submitAndWait(t, eng, "double", map[string]any{"x": 1.0})
	submitAndWait(t, eng, "fail", nil)

	result, err := lt.Call(context.Background(), map[string]any{})
	assert.NoError(t, err)
	text := result.(string)
	assert.Contains(t, text, "Found 2 task(s):")
	assert.Contains(t, text, "COMPLETED")
	assert.Contains(t, text, "FAILED")
	assert.Contains(t, text, "tool:double")
	assert.Contains(t, text, "Total: 2 | Completed: 1 | Failed: 1")

	filtered, err := lt.Call(context.Background(), map[string]any{"status_filter": "completed"})
	assert.NoError(t, err)
	assert.Contains(t, filtered.(string), "Found 1 task(s):")

	limited, err := lt.Call(context.Background(), map[string]any{"limit": 1.0})
	assert.NoError(t, err)
	assert.Contains(t, limited.(string), "Found 1 task(s):")
}

func TestListTasksToolInvalidFilter(t *testing.T) {
	eng := newAsyncTestEngine(t)
	lt := NewListTasksTool(eng)

	_, err := lt.Call(context.Background(), map[string]any{"status_filter": "done"})

	var toolErr *ToolError
	assert.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestWaitForTasksTool(t *testing.T) {
	eng := newAsyncTestEngine(t)
	wt := NewWaitForTasksTool(eng)

	id1, err := eng.Submit(context.Background(), core.KindTool, "double", map[string]any{"x": 1.0})
	assert.NoError(t, err)
	id2, err := eng.Submit(context.Background(), core.KindTool, "fail", nil)
	assert.NoError(t, err)

	result, err := wt.Call(context.Background(), map[string]any{
		"task_ids": []any{id1, id2},
	})
	assert.NoError(t, err)
	text := result.(string)
	assert.Contains(t, text, "All tasks completed")
	assert.Contains(t, text, "Completed: 1, Failed: 1")

	noIDs, err := wt.Call(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, "No task IDs provided", noIDs)
}

func TestTaskResultsTool(t *testing.T) {
	eng := newAsyncTestEngine(t)
	rt := NewTaskResultsTool(eng)

	ok := submitAndWait(t, eng, "double", map[string]any{"x": 21.0})
	bad := submitAndWait(t, eng, "fail", nil)

	result, err := rt.Call(context.Background(), map[string]any{
		"task_ids": []any{ok, bad, "ghost"},
	})
	assert.NoError(t, err)

	m := result.(map[string]any)
	assert.Equal(t, "Results Summary: 1 completed, 1 failed", m["summary"])

	results := m["results"].(map[string]any)
	assert.Equal(t, 42.0, results[ok])
	assert.Contains(t, results[bad].(string), "FAILED - ")
	assert.Equal(t, fmt.Sprintf("Task %s: NOT FOUND", "ghost"), results["ghost"])
}

func TestTaskResultsToolExcludeFailed(t *testing.T) {
	eng := newAsyncTestEngine(t)
	rt := NewTaskResultsTool(eng)

	bad := submitAndWait(t, eng, "fail", nil)

	result, err := rt.Call(context.Background(), map[string]any{
		"task_ids":       []string{bad},
		"include_failed": false,
	})
	assert.NoError(t, err)

	m := result.(map[string]any)
	results := m["results"].(map[string]any)
	_, present := results[bad]
	assert.False(t, present)
}

func TestSleepTool(t *testing.T) {
	st := NewSleepTool()

	start := time.Now()
	result, err := st.Call(context.Background(), map[string]any{"seconds": 0.05})
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Contains(t, result.(string), "Slept for")

	_, err = st.Call(context.Background(), map[string]any{"seconds": -1.0})
	var toolErr *ToolError
	assert.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestSleepToolHonorsContext(t *testing.T) {
	st := NewSleepTool()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := st.Call(ctx, map[string]any{"seconds": 30.0})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
