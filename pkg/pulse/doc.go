// Package pulse is a fine-grained reactivity engine: signals hold state,
// memos derive values from other reactive nodes, and effects run side
// effects whenever the values they read change. Dependencies are tracked
// automatically at runtime; reading a signal inside a memo or effect
// subscribes that node to the signal's changes.
//
// All reactive state belongs to a Runtime. Runtimes are independent of each
// other, which keeps tests deterministic and lets a process host several
// engines side by side:
//
//	rt := pulse.NewRuntime()
//	count := pulse.NewSignal(rt, 0)
//	double := pulse.NewMemo(rt, func() int { return count.Get() * 2 })
//
//	eff := pulse.NewEffect(rt, func() pulse.Cleanup {
//	    fmt.Println("double is", double.Get())
//	    return nil
//	})
//	count.Set(5) // effect re-runs once, printing "double is 10"
//	eff.Dispose()
//
// # Propagation model
//
// Writes mark direct dependents dirty and transitive dependents
// possibly-stale; nothing recomputes until it is needed. Memos are lazy and
// recompute on read, and a memo that recomputes to an equal value does not
// re-run its own dependents. Effects queue in subscription order and each
// runs at most once per flush, so diamond-shaped graphs never glitch.
// Batch groups several writes into a single flush:
//
//	rt.Batch(func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	}) // dependents notified once
//
// # Ownership
//
// Root creates a disposal scope. Memos, effects, and signals created under a
// scope are torn down with it, children first. Disposing anything twice is a
// no-op.
//
// # Disposed access
//
// The engine never fails on access to disposed nodes: reading a disposed
// signal or memo returns the last value without subscribing, writing a
// disposed signal is ignored, and a disposed effect already queued for a
// flush is skipped when dequeued.
//
// # Concurrency
//
// A Runtime is single-threaded: all reads, writes, and recomputations must
// happen on one goroutine. The engine never blocks and never suspends; any
// I/O belongs inside consumer effect bodies, feeding results back through
// signal writes on the runtime's goroutine.
package pulse
