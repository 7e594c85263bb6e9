package pulse

import "fmt"

// Cleanup is a function returned by an effect body to release whatever the
// run acquired. It is called before the effect re-runs and when the effect
// is disposed.
type Cleanup func()

// Effect is an eager side-effecting reaction. It runs once synchronously
// at creation, tracking dependencies exactly as a memo would, and is
// re-run whenever a tracked value changes. Within one flush an effect runs
// at most once, after all the memos it reads have settled.
type Effect struct {
	tracked
	id uint64
	rt *Runtime

	fn      func() Cleanup
	cleanup Cleanup

	// scope owns everything created during a run: nested effects, memos,
	// signals, and OnCleanup registrations. It is reset before each
	// re-run (children disposed depth-first, then the run's cleanup).
	scope *Owner

	name string

	// pending means the effect sits in the runtime's flush queue.
	pending bool

	disposed bool

	// selfNotified records the strongest invalidation that arrived while
	// the effect's own run was executing; the effect re-queues itself
	// afterward instead of corrupting the in-progress tracking frame.
	selfNotified nodeState
}

// EffectOption configures an Effect at creation.
type EffectOption func(*Effect)

// EffectName names the effect for diagnostics, logs, and instrumentation.
func EffectName(name string) EffectOption {
	return func(e *Effect) {
		e.name = name
	}
}

// NewEffect creates the effect under the current owner scope and runs it
// once synchronously. The returned handle's Dispose stops all future runs.
func NewEffect(rt *Runtime, fn func() Cleanup, opts ...EffectOption) *Effect {
	e := &Effect{
		tracked: tracked{state: stateDirty},
		id:      nextID(),
		rt:      rt,
		fn:      fn,
	}
	for _, opt := range opts {
		opt(e)
	}

	owner := rt.currentOwner
	e.scope = newOwner(rt, owner)
	if owner != nil {
		owner.registerEffect(e)
	}

	e.run()
	// A creation run that wrote one of its own dependencies re-queued the
	// effect; outside a batch or flush that queue must drain now.
	if rt.batchDepth == 0 {
		rt.flush()
	}
	return e
}

// ID implements observer.
func (e *Effect) ID() uint64 {
	return e.id
}

// Name returns the diagnostic name set via EffectName, or "".
func (e *Effect) Name() string {
	return e.name
}

// IsDisposed reports whether Dispose has run.
func (e *Effect) IsDisposed() bool {
	return e.disposed
}

// markStale implements observer. The first notification queues the effect
// for the active or next flush; the pending flag keeps later ones from
// queueing it again.
func (e *Effect) markStale(s nodeState) {
	if e.disposed {
		return
	}
	if e.state == stateComputing {
		if s > e.selfNotified {
			e.selfNotified = s
		}
		return
	}
	if s > e.state {
		e.state = s
	}
	if !e.pending {
		e.pending = true
		e.rt.enqueue(e)
	}
}

// runIfStale settles the effect at dequeue time. A possibly-stale effect
// polls its sources first; if no source actually changed value the run is
// suppressed. Reports whether the body ran.
func (e *Effect) runIfStale() bool {
	if e.state == stateCheck {
		var polled bool
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.rt.reportError(toComputationError(r, e.describe()))
				}
			}()
			pollSources(&e.tracked)
			polled = true
		}()
		if !polled {
			return false
		}
		if e.state != stateDirty {
			e.state = stateClean
			return false
		}
	}
	if e.state != stateDirty {
		return false
	}
	e.run()
	return true
}

// run executes the effect body. Child scopes from the previous run are
// disposed depth-first before the previous run's cleanup is called; then
// the body runs with tracking, and the dependency edges are diffed against
// the reads of this run so dropped branches lose their subscriptions.
func (e *Effect) run() {
	e.scope.reset()
	if e.cleanup != nil {
		cl := e.cleanup
		e.cleanup = nil
		e.rt.Untracked(cl)
	}

	e.state = stateComputing
	e.selfNotified = stateClean

	f := e.rt.pushFrame(e)
	prevOwner := e.rt.currentOwner
	e.rt.currentOwner = e.scope
	var failure error
	func() {
		defer func() {
			e.rt.currentOwner = prevOwner
			e.rt.popFrame()
			if r := recover(); r != nil {
				failure = toComputationError(r, e.describe())
			}
		}()
		e.cleanup = e.fn()
	}()

	// Re-wire and leave the computing state before any error is reported:
	// the handler may panic, and a later dependency change must still be
	// able to re-run the effect.
	e.rt.rewire(e, &e.tracked, f.reads)
	e.state = stateClean
	e.rt.inst.EffectRun(e.name)

	// Writes made during the run landed before this run's edges existed,
	// so their notifications may have reached nobody. A source cell in the
	// frame's write log means a direct dependency changed; a source memo
	// still holding an unsettled invalidation means one might have.
	notify := e.selfNotified
	e.selfNotified = stateClean
	for _, src := range e.sources {
		if notify == stateDirty {
			break
		}
		if f.wrote(src) {
			notify = stateDirty
		} else if src.stale() {
			notify = stateCheck
		}
	}
	if notify > stateClean {
		e.markStale(notify)
	}

	if failure != nil {
		e.rt.reportError(failure)
	}
}

// Dispose stops the effect permanently: the effect is unregistered from
// its owning scope, child scopes are disposed depth-first, the final
// cleanup runs once, and every dependency edge is severed so former
// dependencies can no longer reach it. Idempotent; a disposed effect still
// sitting in the flush queue is skipped at dequeue.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true

	if p := e.scope.parent; p != nil {
		p.removeEffect(e)
	}
	e.scope.Dispose()
	if e.cleanup != nil {
		cl := e.cleanup
		e.cleanup = nil
		e.rt.Untracked(cl)
	}
	for _, src := range e.sources {
		src.unsubscribe(e)
	}
	e.sources = nil
}

// describe returns the effect's name for diagnostics, falling back to a
// stable synthetic one.
func (e *Effect) describe() string {
	if e.name != "" {
		return e.name
	}
	return fmt.Sprintf("effect-%d", e.id)
}
