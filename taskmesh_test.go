package taskmesh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/taskmesh/agent"
	"github.com/hupe1980/taskmesh/core"
	"github.com/hupe1980/taskmesh/engine"
	"github.com/hupe1980/taskmesh/tool"
)

func TestTaskMeshEndToEnd(t *testing.T) {
	mesh := New(func(o *Options) {
		o.EngineConfig = engine.Config{MaxWorkers: 2, PollInterval: 5 * time.Millisecond}
	})

	mesh.RegisterTools(tool.NewFunctionTool("double", "Double a number",
		func(_ context.Context, args map[string]any) (any, error) {
			x, ok := args["x"].(float64)
			if !ok {
				return nil, errors.New("argument x must be a number")
			}
			return 2 * x, nil
		}))

	mesh.RegisterAgents(agent.NewFactory("echo", "echoes its arguments", agent.Config{},
		func(agent.Config) (core.Agent, error) {
			return agent.Func(func(_ context.Context, args map[string]any) (any, error) {
				return args["text"], nil
			}), nil
		}))

	assert.False(t, mesh.Engine().Running())
	mesh.Start()
	defer mesh.Stop()

	ctx := context.Background()

	toolID, err := mesh.Submit(ctx, core.KindTool, "double", map[string]any{"x": 21.0})
	assert.NoError(t, err)
	agentID, err := mesh.Submit(ctx, core.KindAgent, "echo", map[string]any{"text": "hello"})
	assert.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tasks, err := mesh.Wait(waitCtx, toolID, agentID)
	assert.NoError(t, err)
	assert.Equal(t, 42.0, tasks[0].Result)
	assert.Equal(t, "hello", tasks[1].Result)

	status, ok := mesh.GetStatus(toolID)
	assert.True(t, ok)
	assert.Equal(t, core.StatusCompleted, status)

	assert.Len(t, mesh.List(), 2)
	assert.Len(t, mesh.List(core.StatusCompleted), 2)
	assert.False(t, mesh.Cancel(toolID))

	stats := mesh.Statistics()
	assert.Equal(t, int64(2), stats.Submitted)
	assert.Equal(t, int64(2), stats.Completed)
	assert.Equal(t, []string{"double"}, stats.Tools)
	assert.Equal(t, []string{"echo"}, stats.Agents)

	assert.Equal(t, 2, mesh.Prune(0))
	assert.Empty(t, mesh.List())
}

func TestTaskMeshAsyncTools(t *testing.T) {
	mesh := New()

	tools := mesh.AsyncTools()
	assert.Len(t, tools, 6)

	// The async tool set is itself registrable, closing the loop for a
	// driving agent.
	mesh.RegisterTools(tools...)
	assert.Contains(t, mesh.Engine().ToolNames(), "submit_task")
	assert.Contains(t, mesh.Engine().ToolNames(), "wait_for_tasks")
}
