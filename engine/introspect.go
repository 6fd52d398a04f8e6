package engine

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/hupe1980/taskmesh/core"
)

// Get returns a snapshot copy of the task with the given id. The copy is
// shallow: Arguments and Result are shared with the live record and must be
// treated as read-only.
func (e *Engine) Get(id string) (core.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.tasks[id]
	if !ok {
		return core.Task{}, false
	}
	return rec.task, true
}

// GetStatus is a convenience projection of Get.
func (e *Engine) GetStatus(id string) (core.Status, bool) {
	t, ok := e.Get(id)
	if !ok {
		return "", false
	}
	return t.Status, true
}

// List returns a snapshot of all tasks, optionally filtered by status. The
// result is sorted by creation time, most recent first; callers display
// latest activity first, so this ordering is part of the contract.
func (e *Engine) List(filters ...core.Status) []core.Task {
	e.mu.Lock()
	recs := make([]*record, 0, len(e.tasks))
	for _, rec := range e.tasks {
		if len(filters) > 0 && !slices.Contains(filters, rec.task.Status) {
			continue
		}
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].task.CreatedAt.Equal(recs[j].task.CreatedAt) {
			return recs[i].seq > recs[j].seq
		}
		return recs[i].task.CreatedAt.After(recs[j].task.CreatedAt)
	})

	out := make([]core.Task, len(recs))
	for i, rec := range recs {
		out[i] = rec.task
	}
	e.mu.Unlock()

	return out
}

// Statistics returns an aggregate snapshot of engine activity. Submitted,
// completed, failed and cancelled are monotonic counters; pending and running
// are computed by scanning current task states at call time.
func (e *Engine) Statistics() core.Statistics {
	e.mu.Lock()
	stats := core.Statistics{
		Submitted: e.submitted,
		Completed: e.completed,
		Failed:    e.failed,
		Cancelled: e.cancelled,
	}
	for _, rec := range e.tasks {
		switch rec.task.Status {
		case core.StatusPending:
			stats.Pending++
		case core.StatusRunning:
			stats.Running++
		}
	}
	e.mu.Unlock()

	stats.Tools = e.ToolNames()
	stats.Agents = e.AgentNames()

	return stats
}

// Wait blocks until every listed task reaches a terminal state, polling at
// the configured interval, and returns their final snapshots in the order the
// ids were given. It fails fast on an unknown id and returns ctx.Err when the
// context expires first.
func (e *Engine) Wait(ctx context.Context, ids ...string) ([]core.Task, error) {
	for _, id := range ids {
		if _, ok := e.Get(id); !ok {
			return nil, fmt.Errorf("unknown task id %q", id)
		}
	}

	ticker := time.NewTicker(e.config.PollInterval)
	defer ticker.Stop()

	for {
		done := true
		out := make([]core.Task, len(ids))
		for i, id := range ids {
			t, _ := e.Get(id)
			out[i] = t
			if !t.Status.Terminal() {
				done = false
			}
		}
		if done {
			return out, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Prune removes terminal tasks that finished more than olderThan ago and
// returns how many were dropped. The engine never evicts on its own; task
// retention is an explicit capacity decision left to the operator.
func (e *Engine) Prune(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)

	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for id, rec := range e.tasks {
		if !rec.task.Status.Terminal() {
			continue
		}
		at := rec.task.CompletedAt
		if at.IsZero() {
			// Cancelled tasks never ran; age by creation instead.
			at = rec.task.CreatedAt
		}
		if at.Before(cutoff) {
			delete(e.tasks, id)
			n++
		}
	}

	return n
}
