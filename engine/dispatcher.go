package engine

import "github.com/hupe1980/taskmesh/core"

// dispatch is the single consumer loop moving tasks from the submission
// backlog into the worker pool. It runs on its own goroutine for the lifetime
// of the engine.
//
// The select on stopCh is what lets the loop observe shutdown promptly
// instead of blocking forever on an empty backlog. The dispatcher is also the
// one place that applies cross-cutting policy before a task consumes a worker
// slot: cancellation is checked here, at dequeue time, and a cancelled task
// is skipped without ever reaching the pool.
//
// Nothing inside the loop can fail an iteration fatally; a misbehaving
// invocable surfaces in the worker body, never here.
func (e *Engine) dispatch(stopCh <-chan struct{}, execCh chan<- *record) {
	defer e.dispatcherWG.Done()

	e.logger.Debug("dispatcher started")

	for {
		rec := e.nextPending(stopCh)
		if rec == nil {
			e.logger.Debug("dispatcher stopped")
			return
		}

		e.mu.Lock()
		skip := rec.task.Status == core.StatusCancelled
		id := rec.task.ID
		e.mu.Unlock()

		if skip {
			e.logger.Debug("skipping cancelled task", "task_id", id)
			continue
		}

		select {
		case execCh <- rec:
		case <-stopCh:
			// Shutdown raced the hand-off. The task stays Pending; the
			// record is parked for re-delivery on restart.
			e.mu.Lock()
			e.undelivered = rec
			e.mu.Unlock()
			e.logger.Debug("dispatcher stopped", "undelivered_task_id", id)
			return
		}
	}
}

// nextPending pops the oldest backlog entry, sleeping on the notify channel
// while the backlog is empty. It returns nil on shutdown. Only the dispatcher
// pops, so the pop-after-wakeup cannot race another consumer; a stale notify
// signal from a previous generation just causes one spurious re-check.
func (e *Engine) nextPending(stopCh <-chan struct{}) *record {
	for {
		e.mu.Lock()
		if len(e.backlog) > 0 {
			rec := e.backlog[0]
			e.backlog[0] = nil
			e.backlog = e.backlog[1:]
			e.mu.Unlock()
			return rec
		}
		e.mu.Unlock()

		select {
		case <-stopCh:
			return nil
		case <-e.notify:
		}
	}
}

// worker executes task bodies handed off by the dispatcher until the exec
// channel is closed during shutdown.
func (e *Engine) worker(id int, execCh <-chan *record) {
	defer e.workerWG.Done()

	for rec := range execCh {
		e.execute(id, rec)
	}
}
