package pulse

// Memo is a memoized derivation over other reactive nodes. It is lazy:
// invalidation never recomputes, only a read does. A memo that recomputes
// to an equal value becomes clean without re-running its own dependents,
// so a chain of memos stops propagating at the first unchanged link.
type Memo[T any] struct {
	tracked
	base signalBase
	rt   *Runtime

	compute func() T
	value   T

	// err is the cached computation failure, re-raised on every read
	// until a dependency changes and recomputation is retried.
	err error

	equal func(T, T) bool
}

// NewMemo creates a memo bound to rt. The computation does not run until
// the first Get. When a current owner scope is active the memo is disposed
// with it.
func NewMemo[T any](rt *Runtime, compute func() T) *Memo[T] {
	m := &Memo[T]{
		tracked: tracked{state: stateDirty},
		base:    signalBase{id: nextID()},
		rt:      rt,
		compute: compute,
	}
	m.base.resolveFn = m.settle
	m.base.staleFn = func() bool {
		return m.state == stateCheck || m.state == stateDirty
	}
	if o := rt.currentOwner; o != nil {
		o.OnCleanup(m.dispose)
	}
	return m
}

// Get returns the memo's value, recomputing first if a dependency changed,
// and registers the memo as a dependency of the node currently computing.
// Get panics with a CycleError if the memo is read during its own
// computation, and re-raises a cached computation failure. Reads of a
// disposed memo return the last cached value without subscribing or
// recomputing.
func (m *Memo[T]) Get() T {
	if m.base.disposed {
		return m.value
	}
	m.rt.recordRead(&m.base)
	m.settle()
	if m.err != nil {
		panic(m.err)
	}
	return m.value
}

// Peek returns the value without creating a dependency. It still settles
// staleness first so the caller never observes an outdated value.
func (m *Memo[T]) Peek() T {
	if m.base.disposed {
		return m.value
	}
	m.settle()
	if m.err != nil {
		panic(m.err)
	}
	return m.value
}

// WithEquals configures a custom equality function used for change
// suppression and returns the memo for chaining.
func (m *Memo[T]) WithEquals(fn func(T, T) bool) *Memo[T] {
	m.equal = fn
	return m
}

// WithName names the memo for diagnostics, logs, and instrumentation.
func (m *Memo[T]) WithName(name string) *Memo[T] {
	m.base.name = name
	return m
}

// ID returns the unique identifier for this memo.
func (m *Memo[T]) ID() uint64 {
	return m.base.id
}

// Name returns the diagnostic name set via WithName, or "".
func (m *Memo[T]) Name() string {
	return m.base.name
}

// markStale implements observer. Direct value changes make the memo dirty;
// upstream invalidations make it possibly-stale. Only the transition away
// from clean fans out, so diamond-shaped graphs notify each dependent once.
func (m *Memo[T]) markStale(s nodeState) {
	if m.base.disposed || m.state == stateComputing {
		return
	}
	if s <= m.state {
		return
	}
	was := m.state
	m.state = s
	if was == stateClean {
		m.base.fanOut(stateCheck)
	}
}

// settle brings the memo up to date. A possibly-stale memo polls its
// sources first and recomputes only if one of them actually changed value;
// otherwise it is clean again without running the computation. A disposed
// memo keeps its last value: dependents polling it see no change.
func (m *Memo[T]) settle() {
	if m.base.disposed {
		return
	}
	if m.state == stateComputing {
		panic(&CycleError{Node: m.base.describe()})
	}
	if m.state == stateCheck {
		pollSources(&m.tracked)
		if m.state != stateDirty {
			m.state = stateClean
			return
		}
	}
	if m.state == stateDirty {
		m.recompute()
	}
}

// recompute runs the computation, tracking reads and diffing the
// dependency edges afterward. Entering and leaving the error state counts
// as a change so dependents get to observe the failure and the recovery.
func (m *Memo[T]) recompute() {
	m.state = stateComputing
	hadErr := m.err != nil
	m.err = nil

	f := m.rt.pushFrame(m)
	var next T
	failed := true
	func() {
		defer func() {
			m.rt.popFrame()
			if r := recover(); r != nil {
				m.err = toComputationError(r, m.base.describe())
			}
		}()
		next = m.compute()
		failed = false
	}()

	// Partial reads from a failed run are still real dependencies: a
	// change to any of them retries the computation.
	m.rt.rewire(m, &m.tracked, f.reads)
	m.state = stateClean
	m.rt.inst.MemoRecompute(m.base.name)

	if failed {
		m.base.fanOut(stateDirty)
		return
	}
	changed := hadErr || !m.equals(m.value, next)
	m.value = next
	if changed {
		m.base.fanOut(stateDirty)
	}
}

// dispose detaches the memo from the graph on both sides. Called via owner
// cleanup.
func (m *Memo[T]) dispose() {
	if m.base.disposed {
		return
	}
	m.base.disposed = true
	m.base.subs = nil
	m.base.resolveFn = nil
	m.base.staleFn = nil
	m.state = stateClean
	for _, src := range m.sources {
		src.unsubscribe(m)
	}
	m.sources = nil
}

func (m *Memo[T]) equals(a, b T) bool {
	if m.equal != nil {
		return m.equal(a, b)
	}
	return defaultEquals(a, b)
}
