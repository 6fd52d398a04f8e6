package engine

import (
	"sort"

	"github.com/hupe1980/taskmesh/core"
)

// RegisterTools merges tools into the tool registry, keyed by Name. It may be
// called multiple times, before or after Start, e.g. to add tools discovered
// later; registering a name again replaces the previous entry (last write
// wins).
//
// Tools are shared: the registered instance is invoked directly by concurrent
// workers, so it must be reentrant.
func (e *Engine) RegisterTools(tools ...core.Tool) {
	e.regMu.Lock()
	defer e.regMu.Unlock()
	for _, t := range tools {
		e.tools[t.Name()] = t
	}
}

// RegisterAgents merges managed-agent factories into the agent registry,
// keyed by Name, with the same last-write-wins semantics as RegisterTools.
//
// The factory is the agent's construction snapshot: it is consulted once per
// task execution to build a fresh, private Agent instance, so concurrent
// tasks against the same name never share state.
func (e *Engine) RegisterAgents(factories ...core.AgentFactory) {
	e.regMu.Lock()
	defer e.regMu.Unlock()
	for _, f := range factories {
		e.agents[f.Name()] = f
	}
}

// ToolNames returns the registered tool names, sorted.
func (e *Engine) ToolNames() []string {
	e.regMu.RLock()
	defer e.regMu.RUnlock()
	return sortedKeys(e.tools)
}

// AgentNames returns the registered managed-agent names, sorted.
func (e *Engine) AgentNames() []string {
	e.regMu.RLock()
	defer e.regMu.RUnlock()
	return sortedKeys(e.agents)
}

// lookupTool fetches the shared tool instance for target.
func (e *Engine) lookupTool(target string) (core.Tool, bool) {
	e.regMu.RLock()
	defer e.regMu.RUnlock()
	t, ok := e.tools[target]
	return t, ok
}

// lookupAgentFactory fetches the factory for target.
func (e *Engine) lookupAgentFactory(target string) (core.AgentFactory, bool) {
	e.regMu.RLock()
	defer e.regMu.RUnlock()
	f, ok := e.agents[target]
	return f, ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
