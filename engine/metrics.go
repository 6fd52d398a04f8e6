package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/taskmesh/core"
)

// engineMetrics holds the Prometheus collectors for one engine instance.
// Collectors are per-instance rather than package globals so that several
// engines can coexist in a process, each on its own Registerer.
type engineMetrics struct {
	submitted prometheus.Counter
	completed prometheus.Counter
	failed    prometheus.Counter
	cancelled prometheus.Counter
	duration  prometheus.Histogram
}

// newEngineMetrics builds and registers the engine's collectors. The pending
// and running gauges read live task states through the engine rather than
// tracking separate counters, matching how Statistics computes them.
func newEngineMetrics(reg prometheus.Registerer, e *Engine) *engineMetrics {
	m := &engineMetrics{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmesh_tasks_submitted_total",
			Help: "Total number of tasks accepted by Submit.",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmesh_tasks_completed_total",
			Help: "Total number of tasks that finished successfully.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmesh_tasks_failed_total",
			Help: "Total number of tasks that finished with an error.",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmesh_tasks_cancelled_total",
			Help: "Total number of tasks cancelled while still pending.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskmesh_task_duration_seconds",
			Help:    "Task execution time from Running to a terminal state, in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	pending := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "taskmesh_tasks_pending",
		Help: "Number of tasks currently waiting for dispatch.",
	}, func() float64 { return float64(e.countStatus(core.StatusPending)) })

	running := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "taskmesh_tasks_running",
		Help: "Number of tasks currently executing in the worker pool.",
	}, func() float64 { return float64(e.countStatus(core.StatusRunning)) })

	reg.MustRegister(m.submitted, m.completed, m.failed, m.cancelled, m.duration, pending, running)

	return m
}

// countStatus scans the task table for tasks in the given state.
func (e *Engine) countStatus(s core.Status) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, rec := range e.tasks {
		if rec.task.Status == s {
			n++
		}
	}
	return n
}

// The increment helpers are nil-safe so call sites stay unconditional when
// no metrics registerer was configured.

func (m *engineMetrics) taskSubmitted() {
	if m == nil {
		return
	}
	m.submitted.Inc()
}

func (m *engineMetrics) taskCompleted(d time.Duration) {
	if m == nil {
		return
	}
	m.completed.Inc()
	m.duration.Observe(d.Seconds())
}

func (m *engineMetrics) taskFailed(d time.Duration) {
	if m == nil {
		return
	}
	m.failed.Inc()
	m.duration.Observe(d.Seconds())
}

func (m *engineMetrics) taskCancelled() {
	if m == nil {
		return
	}
	m.cancelled.Inc()
}
