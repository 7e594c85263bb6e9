package pulse

import "log/slog"

// Runtime is an engine instance. It owns the tracking stack, the batch
// state, and the effect queue; every signal, memo, effect, and owner is
// bound to exactly one Runtime. Runtimes share nothing, so independent
// engines can coexist in one process.
//
// A Runtime must only be used from a single goroutine. See the package
// documentation for the concurrency model.
type Runtime struct {
	maxFlushPasses int
	logger         *slog.Logger
	onError        func(error)
	inst           Instrumentation

	// frames is the tracking stack: the top frame's observer receives
	// dependency edges for every signal read. A frame with a nil observer
	// is the untracked sentinel pushed by Untrack.
	frames []*frame

	// currentOwner receives ownership of nodes created while it is set.
	currentOwner *Owner

	batchDepth int

	// queue holds effects pending for the next flush, in notification
	// order. Deduplicated via each effect's pending flag.
	queue []*Effect

	// flushing guards against re-entrant flushes: writes performed by a
	// running effect are absorbed into the active flush.
	flushing bool

	// lastWrite names the most recently written cell, for the
	// flush-limit diagnostic.
	lastWrite *signalBase
}

// frame is one level of the tracking stack. reads collects every source
// the observer touched during the run, in read order, deduplicated by ID.
type frame struct {
	obs   observer
	reads []*signalBase
	seen  map[uint64]struct{}

	// writes logs every cell whose value changed while the frame was
	// active. A write made during an effect's own run lands before the
	// run's edges are wired, so its notification can reach nobody; the
	// effect consults this log after re-wiring and re-queues itself.
	writes map[uint64]struct{}
}

// wrote reports whether b's value changed while the frame was active.
func (f *frame) wrote(b *signalBase) bool {
	_, ok := f.writes[b.id]
	return ok
}

// NewRuntime creates an engine instance with the given options.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		maxFlushPasses: DefaultMaxFlushPasses,
		inst:           nopInstrumentation{},
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// pushFrame begins tracking reads for obs. The caller must pop the frame on
// every exit path, including panics.
func (rt *Runtime) pushFrame(obs observer) *frame {
	f := &frame{obs: obs, seen: make(map[uint64]struct{})}
	rt.frames = append(rt.frames, f)
	return f
}

// pushUntracked pushes the no-op sentinel so reads register nothing.
func (rt *Runtime) pushUntracked() {
	rt.frames = append(rt.frames, &frame{})
}

func (rt *Runtime) popFrame() {
	rt.frames = rt.frames[:len(rt.frames)-1]
}

// recordRead registers b as a dependency of the observer atop the tracking
// stack. No-op for untracked reads.
func (rt *Runtime) recordRead(b *signalBase) {
	if len(rt.frames) == 0 {
		return
	}
	f := rt.frames[len(rt.frames)-1]
	if f.obs == nil {
		return
	}
	if _, ok := f.seen[b.id]; ok {
		return
	}
	f.seen[b.id] = struct{}{}
	f.reads = append(f.reads, b)
}

// noteWrite records the cell behind the most recent value change, both as
// the flush-limit diagnostic's last write and in the write log of every
// active tracking frame.
func (rt *Runtime) noteWrite(b *signalBase) {
	rt.lastWrite = b
	for _, f := range rt.frames {
		if f.writes == nil {
			f.writes = make(map[uint64]struct{})
		}
		f.writes[b.id] = struct{}{}
	}
	rt.inst.SignalWrite(b.name)
	if rt.logger != nil {
		rt.logger.Debug("signal write", "cell", b.describe())
	}
}

// enqueue appends an effect to the flush queue. The caller has already set
// the effect's pending flag.
func (rt *Runtime) enqueue(e *Effect) {
	rt.queue = append(rt.queue, e)
}

// flush drains the effect queue, running each queued effect at most once
// per pass. Effects that write signals enqueue further work, which is
// absorbed as additional passes of the same flush up to maxFlushPasses;
// beyond that the flush aborts with a FlushLimitError naming the last
// written cell.
func (rt *Runtime) flush() {
	if rt.flushing || len(rt.queue) == 0 {
		return
	}
	rt.flushing = true
	rt.inst.FlushStart()

	passes := 0
	ran := 0

	// The deferred close keeps instrumentation balanced even when the
	// flush-limit error propagates as a panic.
	defer func() {
		rt.flushing = false
		rt.inst.FlushEnd(passes, ran)
		if rt.logger != nil {
			rt.logger.Debug("flush complete", "passes", passes, "effects", ran)
		}
	}()

	for len(rt.queue) > 0 {
		passes++
		if passes > rt.maxFlushPasses {
			cell := "unknown"
			if rt.lastWrite != nil {
				cell = rt.lastWrite.describe()
			}
			rt.queue = nil
			rt.reportError(&FlushLimitError{Cell: cell, Passes: passes - 1})
			break
		}

		q := rt.queue
		rt.queue = nil
		for _, e := range q {
			e.pending = false
			if e.disposed {
				// Disposed while queued; skip at dequeue.
				continue
			}
			if e.runIfStale() {
				ran++
			}
		}
	}
}

// reportError routes an engine or user error to the configured handler, or
// panics when none is registered.
func (rt *Runtime) reportError(err error) {
	if rt.logger != nil {
		rt.logger.Error("reactive error", "err", err)
	}
	if rt.onError != nil {
		rt.onError(err)
		return
	}
	panic(err)
}

// rewire replaces o's dependency edges with the sources read during its
// latest run. Edges are diffed rather than rebuilt: sources no longer read
// drop this observer, newly read sources gain it, and edges present in
// both runs are left untouched.
func (rt *Runtime) rewire(o observer, t *tracked, reads []*signalBase) {
	old := newSourceSet(t.sources)
	fresh := newSourceSet(reads)

	old.Difference(fresh).Each(func(s *signalBase) bool {
		s.unsubscribe(o)
		return false
	})
	fresh.Difference(old).Each(func(s *signalBase) bool {
		s.subscribe(o)
		return false
	})

	t.sources = reads
}
