package pulse

// Signal is a reactive value cell. Reading it inside a memo or effect
// subscribes that node to the signal's changes; writing it with a changed
// value marks dependents stale and, outside a batch, flushes immediately.
type Signal[T any] struct {
	base signalBase
	rt   *Runtime

	value T

	// equal decides whether a write actually changed the value.
	// nil means defaultEquals.
	equal func(T, T) bool
}

// NewSignal creates a signal bound to rt with the given initial value.
// When a current owner scope is active the signal is disposed with it.
func NewSignal[T any](rt *Runtime, initial T) *Signal[T] {
	s := &Signal[T]{
		base:  signalBase{id: nextID()},
		rt:    rt,
		value: initial,
	}
	if o := rt.currentOwner; o != nil {
		o.OnCleanup(s.dispose)
	}
	return s
}

// Get returns the current value and registers the signal as a dependency
// of the node currently computing, if any. Get never fails; reads of a
// disposed signal return the last value without subscribing.
func (s *Signal[T]) Get() T {
	if !s.base.disposed {
		s.rt.recordRead(&s.base)
	}
	return s.value
}

// Peek returns the current value without creating a dependency.
func (s *Signal[T]) Peek() T {
	return s.value
}

// Set stores a new value. Equal values (per the signal's equality
// function) are ignored entirely: no propagation, no flush. A changed
// value marks every direct dependent dirty and transitive dependents
// possibly-stale; outside a batch the write flushes immediately, inside a
// batch the flush waits for batch exit. Writes to a disposed signal are
// no-ops.
func (s *Signal[T]) Set(value T) {
	if s.base.disposed || s.equals(s.value, value) {
		return
	}
	s.value = value
	s.rt.noteWrite(&s.base)
	s.base.fanOut(stateDirty)
	if s.rt.batchDepth == 0 {
		s.rt.flush()
	}
}

// Update computes the next value from the current one and stores it with
// Set semantics.
func (s *Signal[T]) Update(fn func(T) T) {
	s.Set(fn(s.value))
}

// WithEquals configures a custom equality function and returns the signal
// for chaining. Useful where reflect.DeepEqual is too expensive or has the
// wrong semantics.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// WithName names the signal for diagnostics, logs, and instrumentation.
func (s *Signal[T]) WithName(name string) *Signal[T] {
	s.base.name = name
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.base.id
}

// Name returns the diagnostic name set via WithName, or "".
func (s *Signal[T]) Name() string {
	return s.base.name
}

// dispose detaches the signal: subscribers are dropped and future writes
// are ignored. Called via owner cleanup.
func (s *Signal[T]) dispose() {
	s.base.disposed = true
	s.base.subs = nil
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}
