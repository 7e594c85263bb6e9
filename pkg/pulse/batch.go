package pulse

// Batch groups multiple signal writes into a single flush. Values are
// stored as each write happens — later reads inside the batch observe
// them — but dependents are notified once, when the outermost batch exits.
// Multiple writes to the same signal collapse into one notification
// carrying the final value.
//
// Batches nest; only the outermost exit flushes.
//
//	rt.Batch(func() {
//	    firstName.Set("Ada")
//	    lastName.Set("Lovelace")
//	    age.Set(36)
//	})
//	// dependents ran once with all three changes
func (rt *Runtime) Batch(fn func()) {
	rt.batchDepth++
	defer func() {
		rt.batchDepth--
		if rt.batchDepth == 0 {
			rt.flush()
		}
	}()
	fn()
}

// Tx is an alias for Batch using transaction terminology.
func (rt *Runtime) Tx(fn func()) {
	rt.Batch(fn)
}

// TxNamed runs fn as a named transaction. The name shows up in debug logs
// and instrumentation (the otelpulse package turns it into a span), which
// makes it easy to see which transactions trigger which flushes.
func (rt *Runtime) TxNamed(name string, fn func()) {
	if rt.logger != nil {
		rt.logger.Debug("tx start", "name", name)
		defer rt.logger.Debug("tx end", "name", name)
	}
	rt.inst.BatchStart(name)
	defer rt.inst.BatchEnd(name)
	rt.Batch(fn)
}

// Untracked runs fn with dependency tracking suspended: signal and memo
// reads inside register nothing, even under an active outer computation.
// Memos read inside still settle first, so values are never stale.
func (rt *Runtime) Untracked(fn func()) {
	rt.pushUntracked()
	defer rt.popFrame()
	fn()
}

// Untrack is the value-returning form of Runtime.Untracked, for reading a
// reactive value without subscribing to it:
//
//	limit := pulse.Untrack(rt, maxItems.Get)
func Untrack[T any](rt *Runtime, fn func() T) T {
	rt.pushUntracked()
	defer rt.popFrame()
	return fn()
}
