// Package taskmesh provides a high-level façade over the asynchronous
// task-execution engine, enabling a sequential control loop to fan tool and
// managed-agent work out to a bounded pool of background workers. Most
// applications interact with this package by:
//  1. Creating a TaskMesh via New() (optionally overriding concurrency,
//     logging, tracing and metrics defaults)
//  2. Registering tools and managed-agent factories
//  3. Calling Start, submitting tasks, and polling results via Get / List /
//     Wait / Statistics
//
// The façade delegates the actual scheduling to engine.Engine while keeping
// setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a
// structured logger, a trace propagator and a Prometheus registerer.
package taskmesh

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/taskmesh/core"
	"github.com/hupe1980/taskmesh/engine"
	"github.com/hupe1980/taskmesh/logging"
	"github.com/hupe1980/taskmesh/tool"
)

// Options configures the TaskMesh instance.
type Options struct {
	// EngineConfig tunes the worker pool, queue and step-budget defaults.
	EngineConfig engine.Config

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Propagator relays trace context across the submission boundary
	// (defaults to no-op; see the trace package for OpenTelemetry support)
	Propagator core.TracePropagator

	// MetricsRegisterer receives the engine's Prometheus collectors when set
	MetricsRegisterer prometheus.Registerer
}

// TaskMesh is the high-level façade aggregating the underlying engine.
type TaskMesh struct {
	opts   Options
	engine *engine.Engine
}

// New creates a new TaskMesh instance with optional overrides.
func New(optFns ...func(o *Options)) *TaskMesh {
	opts := Options{
		EngineConfig: engine.DefaultConfig,
		Logger:       logging.NoOpLogger{},
		Propagator:   core.NoopPropagator{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	eng := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.Logger = opts.Logger
		o.Propagator = opts.Propagator
		o.MetricsRegisterer = opts.MetricsRegisterer
	})

	return &TaskMesh{opts: opts, engine: eng}
}

// Engine exposes the underlying engine for advanced composition.
func (m *TaskMesh) Engine() *engine.Engine { return m.engine }

// RegisterTools adds tools to the underlying engine's registry.
func (m *TaskMesh) RegisterTools(tools ...core.Tool) { m.engine.RegisterTools(tools...) }

// RegisterAgents adds managed-agent factories to the underlying engine's registry.
func (m *TaskMesh) RegisterAgents(factories ...core.AgentFactory) {
	m.engine.RegisterAgents(factories...)
}

// Start spins up the dispatcher and worker pool. Idempotent.
func (m *TaskMesh) Start() { m.engine.Start() }

// Stop drains in-flight tasks and shuts the pool down. Idempotent.
func (m *TaskMesh) Stop() { m.engine.Stop() }

// Submit enqueues a task and returns its id without waiting for execution.
func (m *TaskMesh) Submit(ctx context.Context, kind core.Kind, target string, args map[string]any, optFns ...func(o *engine.SubmitOptions)) (string, error) {
	return m.engine.Submit(ctx, kind, target, args, optFns...)
}

// Get returns a snapshot of the task with the given id.
func (m *TaskMesh) Get(id string) (core.Task, bool) { return m.engine.Get(id) }

// GetStatus returns the current status of the task with the given id.
func (m *TaskMesh) GetStatus(id string) (core.Status, bool) { return m.engine.GetStatus(id) }

// List returns all tasks, newest first, optionally filtered by status.
func (m *TaskMesh) List(filters ...core.Status) []core.Task { return m.engine.List(filters...) }

// Cancel cancels a still-pending task, reporting whether it took effect.
func (m *TaskMesh) Cancel(id string) bool { return m.engine.Cancel(id) }

// Wait blocks until the listed tasks reach terminal states.
func (m *TaskMesh) Wait(ctx context.Context, ids ...string) ([]core.Task, error) {
	return m.engine.Wait(ctx, ids...)
}

// Statistics returns an aggregate snapshot of engine activity.
func (m *TaskMesh) Statistics() core.Statistics { return m.engine.Statistics() }

// Prune drops terminal tasks that finished more than olderThan ago.
func (m *TaskMesh) Prune(olderThan time.Duration) int { return m.engine.Prune(olderThan) }

// AsyncTools returns the task-management tool set (submit_task, check_task,
// list_tasks, wait_for_tasks, get_task_results, sleep) bound to this mesh,
// ready to hand to a driving agent's tool-calling loop.
func (m *TaskMesh) AsyncTools() []core.Tool { return tool.AsyncTools(m.engine) }
