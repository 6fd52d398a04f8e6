// Package core provides the foundational domain types and interfaces used by
// TaskMesh. It defines the core abstractions for:
//
//   - Tasks (units of submitted work with an identity and a lifecycle)
//   - Tools (stateless, reentrant invocables shared across concurrent tasks)
//   - Agents and AgentFactories (stateful invocables built fresh per execution)
//   - Trace propagation (opaque observability context relayed across the
//     submission/execution boundary)
//   - The engine error taxonomy surfaced to submitters and on failed tasks
//
// The package intentionally keeps implementation concerns (queueing, worker
// pools, registries) out of scope, exposing small interfaces so that custom
// invocables and tracing backends can be plugged in without reflection.
package core
