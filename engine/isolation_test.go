package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/taskmesh/agent"
	"github.com/hupe1980/taskmesh/core"
)

// countingAgent mutates private state during a call; shared instances would
// observe each other's increments.
type countingAgent struct {
	calls int
	gate  chan struct{}
}

func (a *countingAgent) Call(_ context.Context, _ map[string]any) (any, error) {
	a.calls++
	if a.gate != nil {
		<-a.gate
	}
	return a.calls, nil
}

func TestConcurrentAgentTasksGetFreshInstances(t *testing.T) {
	gate := make(chan struct{})
	factory := agent.NewFactory("counter", "counts its own calls", agent.Config{},
		func(agent.Config) (core.Agent, error) {
			return &countingAgent{gate: gate}, nil
		})

	e := newTestEngine(func(o *Options) { o.Config.MaxWorkers = 2 })
	e.RegisterAgents(factory)
	e.Start()
	defer e.Stop()

	first, err := e.Submit(context.Background(), core.KindAgent, "counter", nil)
	assert.NoError(t, err)
	second, err := e.Submit(context.Background(), core.KindAgent, "counter", nil)
	assert.NoError(t, err)

	// Both executions are in flight before either finishes.
	gate <- struct{}{}
	gate <- struct{}{}

	tasks := awaitTerminal(t, e, first, second)
	assert.Equal(t, core.StatusCompleted, tasks[0].Status)
	assert.Equal(t, core.StatusCompleted, tasks[1].Status)
	assert.Equal(t, 1, tasks[0].Result)
	assert.Equal(t, 1, tasks[1].Result)
}

func TestDefaultMaxStepsInjection(t *testing.T) {
	seen := make(chan any, 2)
	factory := agent.NewFactory("stepper", "reports its step budget", agent.Config{},
		func(agent.Config) (core.Agent, error) {
			return agent.Func(func(_ context.Context, args map[string]any) (any, error) {
				steps, ok := args["max_steps"]
				if !ok {
					steps = nil
				}
				seen <- steps
				return nil, nil
			}), nil
		})

	e := newTestEngine()
	e.RegisterAgents(factory)
	e.Start()
	defer e.Stop()

	id, err := e.Submit(context.Background(), core.KindAgent, "stepper", nil)
	assert.NoError(t, err)
	awaitTerminal(t, e, id)
	assert.Equal(t, 20, <-seen)

	id, err = e.Submit(context.Background(), core.KindAgent, "stepper", map[string]any{"max_steps": 5})
	assert.NoError(t, err)
	awaitTerminal(t, e, id)
	assert.Equal(t, 5, <-seen)
}

func TestMaxStepsInjectionDoesNotMutateSubmittedArgs(t *testing.T) {
	factory := agent.NewFactory("noop", "does nothing", agent.Config{},
		func(agent.Config) (core.Agent, error) {
			return agent.Func(func(context.Context, map[string]any) (any, error) { return nil, nil }), nil
		})

	e := newTestEngine()
	e.RegisterAgents(factory)
	e.Start()
	defer e.Stop()

	args := map[string]any{"question": "why"}
	id, err := e.Submit(context.Background(), core.KindAgent, "noop", args)
	assert.NoError(t, err)
	awaitTerminal(t, e, id)

	assert.Equal(t, map[string]any{"question": "why"}, args)
}

func TestToolArgsReceiveNoMaxSteps(t *testing.T) {
	seen := make(chan map[string]any, 1)

	e := newTestEngine()
	e.RegisterTools(toolFunc{name: "echo", fn: func(_ context.Context, args map[string]any) (any, error) {
		seen <- args
		return nil, nil
	}})
	e.Start()
	defer e.Stop()

	id, err := e.Submit(context.Background(), core.KindTool, "echo", map[string]any{"a": 1})
	assert.NoError(t, err)
	awaitTerminal(t, e, id)

	args := <-seen
	_, ok := args["max_steps"]
	assert.False(t, ok)
}

func TestAgentInstantiationFailure(t *testing.T) {
	cause := errors.New("credentials not configured")
	factory := agent.NewFactory("broken", "never builds", agent.Config{},
		func(agent.Config) (core.Agent, error) { return nil, cause })

	e := newTestEngine()
	e.RegisterAgents(factory)
	e.Start()
	defer e.Stop()

	id, err := e.Submit(context.Background(), core.KindAgent, "broken", nil)
	assert.NoError(t, err)

	task := awaitTerminal(t, e, id)[0]
	assert.Equal(t, core.StatusFailed, task.Status)
	assert.Contains(t, task.Error, "AgentInstantiationFailed")
	assert.Contains(t, task.Error, "credentials not configured")
}

func TestIncompleteExecutionClassification(t *testing.T) {
	factory := agent.NewFactory("budgeted", "always runs out of budget", agent.Config{},
		func(agent.Config) (core.Agent, error) {
			return agent.Func(func(_ context.Context, args map[string]any) (any, error) {
				return nil, &core.IncompleteExecutionError{
					Target: "budgeted",
					Steps:  args["max_steps"].(int),
					Reason: "no final answer produced",
				}
			}), nil
		})

	e := newTestEngine()
	e.RegisterAgents(factory)
	e.Start()
	defer e.Stop()

	id, err := e.Submit(context.Background(), core.KindAgent, "budgeted", nil)
	assert.NoError(t, err)

	task := awaitTerminal(t, e, id)[0]
	assert.Equal(t, core.StatusFailed, task.Status)
	assert.Contains(t, task.Error, "IncompleteExecution:")
	assert.Contains(t, task.Error, "after 20 steps")
	assert.Contains(t, task.Error, "consider raising the max_steps budget")
}
