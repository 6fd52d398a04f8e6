// Package agent provides the managed-agent building blocks for TaskMesh: a
// typed construction snapshot (Config), a Factory that turns the snapshot
// into fresh per-execution instances, and small adapters for function-backed
// agents.
//
// Managed agents are stateful: they accumulate conversation memory or scratch
// state across the steps of one call. Sharing an instance across concurrent
// tasks would corrupt that state, so the engine builds a new instance from
// the registered Factory for every execution. The registrant supplies the
// configuration explicitly at registration time; nothing is inferred from a
// live instance, so there is no "silently missing field" failure mode.
package agent

import (
	"context"
	"maps"

	"github.com/hupe1980/taskmesh/core"
)

// Config is the construction snapshot for one managed-agent type. It holds
// whatever the build function needs to produce a behaviorally-equivalent
// fresh instance: the common tuning knobs as typed fields, anything
// type-specific in Extra.
type Config struct {
	// Instructions is the system prompt or behavioral directive.
	Instructions string

	// MaxSteps caps loop iterations inside one call. A zero value defers to
	// the engine's injected default step budget.
	MaxSteps int

	// Tools lists the tools available to the agent's own reasoning loop.
	// These are the agent's private capabilities, independent of the engine's
	// tool registry.
	Tools []core.Tool

	// SubAgents names the managed agents this agent may delegate to.
	SubAgents []string

	// Verbosity tunes the agent's own logging/trace output.
	Verbosity int

	// Extra carries type-specific tuning knobs the typed fields don't cover.
	Extra map[string]any
}

// Clone returns a copy of the config with its own Tools, SubAgents and Extra
// containers, so one execution's instance can't reach into another's
// snapshot.
func (c Config) Clone() Config {
	out := c
	if c.Tools != nil {
		out.Tools = append([]core.Tool(nil), c.Tools...)
	}
	if c.SubAgents != nil {
		out.SubAgents = append([]string(nil), c.SubAgents...)
	}
	if c.Extra != nil {
		out.Extra = make(map[string]any, len(c.Extra))
		maps.Copy(out.Extra, c.Extra)
	}
	return out
}

// BuildFunc constructs an agent instance from a construction snapshot.
type BuildFunc func(cfg Config) (core.Agent, error)

// Factory implements core.AgentFactory by pairing a construction snapshot
// with a build function. The snapshot is captured once, when the factory is
// created; Build hands each execution its own clone.
type Factory struct {
	name        string
	description string
	cfg         Config
	build       BuildFunc
}

// NewFactory creates a factory for the named managed-agent type.
func NewFactory(name, description string, cfg Config, build BuildFunc) *Factory {
	return &Factory{name: name, description: description, cfg: cfg.Clone(), build: build}
}

// Name returns the registry key for this agent type.
func (f *Factory) Name() string { return f.name }

// Description returns the human-readable description of the agent.
func (f *Factory) Description() string { return f.description }

// Config returns a copy of the construction snapshot.
func (f *Factory) Config() Config { return f.cfg.Clone() }

// Build constructs a fresh, private agent instance from the snapshot.
func (f *Factory) Build() (core.Agent, error) {
	return f.build(f.cfg.Clone())
}

// Func adapts a plain function to the core.Agent interface. Useful for tests
// and for agents whose state lives entirely in the closure created per Build.
type Func func(ctx context.Context, args map[string]any) (any, error)

// Call invokes the wrapped function.
func (f Func) Call(ctx context.Context, args map[string]any) (any, error) { return f(ctx, args) }
