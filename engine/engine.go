package engine

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/taskmesh/core"
	"github.com/hupe1980/taskmesh/internal/util"
	"github.com/hupe1980/taskmesh/logging"
)

// Config defines tuning parameters for the Engine's operational behavior.
type Config struct {
	// MaxWorkers bounds the number of task bodies executing simultaneously.
	// Submission outpacing the pool queues up; it is never rejected for
	// concurrency reasons.
	MaxWorkers int

	// QueueSize sets the initial capacity of the submission backlog. The
	// backlog grows past it as needed; Submit never blocks and never rejects
	// for capacity reasons.
	QueueSize int

	// DefaultAgentMaxSteps is injected as the "max_steps" argument of a
	// managed-agent task that did not specify one, bounding worst-case agent
	// runtime. Callers override it per task; 0 disables injection.
	DefaultAgentMaxSteps int

	// PollInterval is how often Wait re-checks task states.
	PollInterval time.Duration
}

// DefaultConfig provides production-ready default configuration values.
//
// Configuration values:
//   - MaxWorkers: 3 (enough parallelism for typical tool fan-out without
//     overwhelming downstream APIs)
//   - QueueSize: 256
//   - DefaultAgentMaxSteps: 20
//   - PollInterval: 50ms
var DefaultConfig = Config{
	MaxWorkers:           3,
	QueueSize:            256,
	DefaultAgentMaxSteps: 20,
	PollInterval:         50 * time.Millisecond,
}

// Options configures an Engine instance using the functional options pattern.
type Options struct {
	// Config contains operational parameters for the engine behavior.
	// Defaults to DefaultConfig if not specified.
	Config Config

	// Logger provides structured logging for debugging and monitoring.
	// Defaults to NoOp logger if nil to ensure no logging dependencies.
	Logger logging.Logger

	// Propagator relays trace context from the submitter's context to the
	// worker goroutine. Defaults to NoopPropagator; see the trace package for
	// an OpenTelemetry implementation.
	Propagator core.TracePropagator

	// IDGenerator produces task ids when the submitter does not supply one.
	// Defaults to UUID v4. Engine behavior only depends on uniqueness.
	IDGenerator func() string

	// MetricsRegisterer, when non-nil, receives the engine's Prometheus
	// collectors (task counters, duration histogram, pending/running gauges).
	MetricsRegisterer prometheus.Registerer
}

// WithLexicalIDs replaces the default UUID task ids with ULIDs, which sort
// lexically by creation time.
func WithLexicalIDs() func(o *Options) {
	return func(o *Options) { o.IDGenerator = util.NewLexicalID }
}

// record is the engine-owned mutable envelope around a task. Every field is
// guarded by the engine's state mutex once the record is in the table.
type record struct {
	task core.Task
	seq  uint64 // insertion order, tiebreak for List's created-at sort
}

// Engine is the asynchronous task-execution engine.
//
// An Engine is an explicit, constructed object: it owns its registries, task
// table, queue and worker pool, and is passed by reference to whatever
// composes it. Create one with New, feed it via RegisterTools /
// RegisterAgents, then Start it before submitting work.
//
// All methods are safe for concurrent use.
type Engine struct {
	config     Config
	logger     logging.Logger
	propagator core.TracePropagator
	newID      func() string

	// registries, guarded by regMu; read-only during execution apart from
	// explicit Register* calls
	tools  map[string]core.Tool
	agents map[string]core.AgentFactory
	regMu  sync.RWMutex

	// task table and counters, guarded by mu on every read and write path
	mu        sync.Mutex
	tasks     map[string]*record
	seq       uint64
	running   bool
	submitted int64
	completed int64
	failed    int64
	cancelled int64

	// backlog is the unbounded FIFO submission queue, guarded by mu. Submit
	// appends and must never block; the dispatcher pops from the front.
	backlog []*record
	notify  chan struct{} // capacity 1; signals the dispatcher that the backlog grew

	stopCh chan struct{} // closed by Stop; observed by the dispatcher
	execCh chan *record  // dispatcher -> worker hand-off, unbuffered

	// undelivered holds a record the dispatcher had dequeued when shutdown
	// interrupted the hand-off. Start re-delivers it ahead of the queue so a
	// restart keeps FIFO order.
	undelivered *record

	// lifecycleMu serializes Start and Stop. Without it a Start racing a
	// Stop could add the next generation's goroutines to the WaitGroups
	// while that Stop is waiting on them.
	lifecycleMu  sync.Mutex
	dispatcherWG sync.WaitGroup
	workerWG     sync.WaitGroup

	metrics *engineMetrics
}

// New creates a new Engine instance with sensible defaults and optional
// configuration.
//
// Example:
//
//	eng := engine.New(func(o *engine.Options) {
//	    o.Config.MaxWorkers = 8
//	    o.Logger = logging.NewDefaultSlogLogger()
//	})
//	eng.RegisterTools(myTool)
//	eng.Start()
//	defer eng.Stop()
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config:      DefaultConfig,
		Logger:      logging.NoOpLogger{},
		Propagator:  core.NoopPropagator{},
		IDGenerator: util.NewID,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := opts.Config
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultConfig.MaxWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig.QueueSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig.PollInterval
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Propagator == nil {
		opts.Propagator = core.NoopPropagator{}
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = util.NewID
	}

	e := &Engine{
		config:     cfg,
		logger:     opts.Logger,
		propagator: opts.Propagator,
		newID:      opts.IDGenerator,
		tools:      make(map[string]core.Tool),
		agents:     make(map[string]core.AgentFactory),
		tasks:      make(map[string]*record),
		backlog:    make([]*record, 0, cfg.QueueSize),
		notify:     make(chan struct{}, 1),
	}

	if opts.MetricsRegisterer != nil {
		e.metrics = newEngineMetrics(opts.MetricsRegisterer, e)
	}

	return e
}

// Start spins up the worker pool and the dispatcher goroutine. It is
// idempotent: starting a running engine is a no-op.
func (e *Engine) Start() {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()

	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.execCh = make(chan *record)
	stopCh, execCh := e.stopCh, e.execCh
	leftover := e.undelivered
	e.undelivered = nil
	e.mu.Unlock()

	for i := 0; i < e.config.MaxWorkers; i++ {
		e.workerWG.Add(1)
		go e.worker(i, execCh)
	}

	if leftover != nil {
		// All workers are idle at this point, so the hand-off cannot block.
		execCh <- leftover
	}

	e.dispatcherWG.Add(1)
	go e.dispatch(stopCh, execCh)

	e.logger.Info("engine started", "max_workers", e.config.MaxWorkers)
}

// Stop shuts the engine down gracefully. It is idempotent.
//
// Stop flips the running flag so new submissions fail, stops the dispatcher,
// then waits for every task that was already handed to the pool to reach a
// terminal state before returning. Tasks still queued when Stop is called
// remain Pending; they are dispatched again if the engine is restarted.
func (e *Engine) Stop() {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()

	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	stopCh, execCh := e.stopCh, e.execCh
	e.mu.Unlock()

	close(stopCh)
	e.dispatcherWG.Wait()

	// Only the dispatcher sends on execCh and it has exited, so closing is
	// safe. Workers finish their in-flight task and drain what the
	// dispatcher handed off before the close.
	close(execCh)
	e.workerWG.Wait()

	e.logger.Info("engine stopped")
}

// Running reports whether the engine currently accepts submissions.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// SubmitOptions carries optional per-submission parameters.
type SubmitOptions struct {
	// TaskID overrides the generated task id. Supplied ids must be unique;
	// duplicates are rejected with DuplicateIDError.
	TaskID string
}

// WithTaskID sets a caller-chosen task id for one submission.
func WithTaskID(id string) func(o *SubmitOptions) {
	return func(o *SubmitOptions) { o.TaskID = id }
}

// Submit validates the target, captures the caller's trace context, records a
// Pending task and enqueues it for execution. It returns the task id
// immediately; the backlog is unbounded, so submission never blocks on
// execution no matter how far it outpaces the pool.
//
// Validation errors are returned synchronously and produce no task:
//   - core.ErrNotRunning before Start or after Stop
//   - core.InvalidKindError for an unknown kind
//   - core.UnknownTargetError when the target is missing from the registry
//     implied by kind (the message says explicitly when the name exists in
//     the other registry)
//   - core.DuplicateIDError when a supplied id is already in the table
//
// Execution errors are never returned here; they are recorded on the task
// and discovered through Get / List / Wait.
func (e *Engine) Submit(ctx context.Context, kind core.Kind, target string, args map[string]any, optFns ...func(o *SubmitOptions)) (string, error) {
	var opts SubmitOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	// Re-checked under mu at insert; the early check gives ErrNotRunning
	// precedence over validation failures on a stopped engine.
	if !e.Running() {
		return "", core.ErrNotRunning
	}

	if !kind.Valid() {
		return "", &core.InvalidKindError{Kind: kind}
	}

	if err := e.resolveTarget(kind, target); err != nil {
		return "", err
	}

	id := opts.TaskID
	if id == "" {
		id = e.newID()
	}

	rec := &record{
		task: core.Task{
			ID:        id,
			Kind:      kind,
			Target:    target,
			Arguments: args,
			Status:    core.StatusPending,
			CreatedAt: time.Now(),
			Trace:     e.propagator.Capture(ctx),
		},
	}

	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return "", core.ErrNotRunning
	}
	if _, exists := e.tasks[id]; exists {
		e.mu.Unlock()
		return "", &core.DuplicateIDError{ID: id}
	}
	e.seq++
	rec.seq = e.seq
	e.tasks[id] = rec
	e.submitted++
	e.backlog = append(e.backlog, rec)
	e.mu.Unlock()

	e.metrics.taskSubmitted()
	e.logger.Info("task submitted", "task_id", id, "kind", string(kind), "target", target)

	select {
	case e.notify <- struct{}{}:
	default:
	}

	return id, nil
}

// resolveTarget checks that target exists in the registry implied by kind,
// producing the cross-registry wording when the name lives in the other one.
func (e *Engine) resolveTarget(kind core.Kind, target string) error {
	e.regMu.RLock()
	defer e.regMu.RUnlock()

	_, isTool := e.tools[target]
	_, isAgent := e.agents[target]

	switch kind {
	case core.KindTool:
		if !isTool {
			return &core.UnknownTargetError{Kind: kind, Target: target, InOther: isAgent}
		}
	case core.KindAgent:
		if !isAgent {
			return &core.UnknownTargetError{Kind: kind, Target: target, InOther: isTool}
		}
	}

	return nil
}

// Cancel transitions a Pending task to Cancelled. It returns false once the
// task has left Pending, including when the dispatcher dequeued it
// concurrently with the cancel attempt; such a lost cancel is expected, not
// an error. Running tasks are never preempted.
func (e *Engine) Cancel(id string) bool {
	e.mu.Lock()
	rec, ok := e.tasks[id]
	if !ok || rec.task.Status != core.StatusPending {
		e.mu.Unlock()
		return false
	}
	rec.task.Status = core.StatusCancelled
	e.cancelled++
	e.mu.Unlock()

	e.metrics.taskCancelled()
	e.logger.Info("task cancelled", "task_id", id)

	return true
}
