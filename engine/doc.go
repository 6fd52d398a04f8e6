// Package engine implements the asynchronous task-execution core of TaskMesh.
//
// The Engine lets a sequential control loop fan work out in parallel: callers
// register invocables (stateless tools and stateful managed agents), submit
// tasks against them by name, and poll for results while a bounded pool of
// background workers executes the task bodies.
//
// # Core Responsibilities
//
// Registries:
//   - Thread-safe, name-keyed registries for tools and agent factories
//   - Last-write-wins merge semantics, callable before and while running
//
// Task Lifecycle:
//   - Pending -> Running -> {Completed, Failed}, plus Pending -> Cancelled
//   - One state mutex covers every read and write of the task table so the
//     introspection API never observes a half-written task
//   - Completed and failed tasks are retained for the life of the engine;
//     Prune gives operators explicit control over that growth
//
// Scheduling:
//   - Submit validates, records a Pending task and enqueues it; it never
//     blocks on execution
//   - A single dispatcher goroutine drains the FIFO queue and hands tasks to
//     the worker pool, skipping tasks cancelled while still queued
//   - MaxWorkers goroutines execute task bodies; a failing (or panicking)
//     invocable fails only its own task, never the pool
//
// Observability:
//   - Trace context is captured at submission and re-attached on the worker
//     goroutine through a pluggable TracePropagator
//   - Structured logging via the logging package, Prometheus metrics when a
//     registerer is supplied, and an aggregate Statistics snapshot
//
// Tasks are dispatched in FIFO submission order, but completion order is
// unordered: workers run concurrently and task durations vary. List imposes a
// deterministic creation-time ordering on its output instead.
package engine
