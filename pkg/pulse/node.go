package pulse

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// nodeState is the cache state of a memo or effect.
//
// The ordering matters: markStale only ever raises the state, so a node
// that is already dirty cannot be downgraded to possibly-stale by a second
// notification.
type nodeState uint8

const (
	// stateClean means the node's value reflects its dependencies.
	stateClean nodeState = iota

	// stateCheck means an upstream memo was invalidated; the node may be
	// stale but won't know until its sources are polled.
	stateCheck

	// stateDirty means a direct dependency changed value; the node must
	// recompute (memo) or re-run (effect) before it is next observed.
	stateDirty

	// stateComputing means the node's function is currently executing.
	// Reading a computing node is a cyclic dependency.
	stateComputing
)

// observer is anything notified when a source it read changes.
// Implemented by Memo and Effect.
type observer interface {
	// ID returns a unique identifier, used to deduplicate subscriptions.
	ID() uint64

	// markStale raises the observer's cache state. stateDirty means a
	// direct dependency changed value; stateCheck means it merely might
	// have.
	markStale(s nodeState)
}

// tracked is the dependency-consuming half of a node, embedded in Memo and
// Effect. sources holds the signalBase of everything read during the last
// run, in read order; polling follows that order so unread branches are
// never touched.
type tracked struct {
	state   nodeState
	sources []*signalBase
}

// pollSources resolves each source in turn to settle a possibly-stale node.
// A source memo that recomputes to a different value marks this node dirty
// through the dependency edge, at which point polling stops: remaining
// sources will be brought up to date by the recomputation itself.
func pollSources(t *tracked) {
	for _, src := range t.sources {
		src.resolve()
		if t.state == stateDirty {
			return
		}
	}
}

// signalBase is the dependency-producing half of a node, embedded in
// Signal and Memo. Subscribers are kept in subscription order because the
// flush runs effects in that order; deduplication is by observer ID.
type signalBase struct {
	id   uint64
	name string

	// subs are the observers subscribed to this node, oldest first.
	subs []observer

	// resolveFn brings a memo up to date before its value is used while
	// settling a possibly-stale dependent. nil for plain signals.
	resolveFn func()

	// staleFn reports whether the owning memo holds an unsettled
	// invalidation. nil for plain signals.
	staleFn func() bool

	disposed bool
}

// subscribe adds an observer, ignoring duplicates and disposed sources.
func (b *signalBase) subscribe(o observer) {
	if o == nil || b.disposed {
		return
	}
	oid := o.ID()
	for _, existing := range b.subs {
		if existing.ID() == oid {
			return
		}
	}
	b.subs = append(b.subs, o)
}

// unsubscribe removes an observer, preserving the order of the rest.
func (b *signalBase) unsubscribe(o observer) {
	if o == nil {
		return
	}
	oid := o.ID()
	for i, existing := range b.subs {
		if existing.ID() == oid {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// fanOut raises the cache state of every subscriber. The slice is copied
// first because marking an effect can enqueue it, and running effects may
// re-subscribe and mutate subs.
func (b *signalBase) fanOut(s nodeState) {
	if len(b.subs) == 0 {
		return
	}
	subs := make([]observer, len(b.subs))
	copy(subs, b.subs)
	for _, sub := range subs {
		sub.markStale(s)
	}
}

// resolve brings the owning node up to date. No-op for plain signals.
func (b *signalBase) resolve() {
	if b.resolveFn != nil {
		b.resolveFn()
	}
}

// stale reports whether the owning node holds an invalidation that has not
// been settled yet. Always false for plain signals.
func (b *signalBase) stale() bool {
	return b.staleFn != nil && b.staleFn()
}

// newSourceSet builds a set view of a source list for edge diffing.
// Thread-unsafe sets suffice: a Runtime is single-goroutine.
func newSourceSet(sources []*signalBase) mapset.Set[*signalBase] {
	return mapset.NewThreadUnsafeSet(sources...)
}

// describe returns the node's name for diagnostics, falling back to a
// stable synthetic one.
func (b *signalBase) describe() string {
	if b.name != "" {
		return b.name
	}
	return fmt.Sprintf("node-%d", b.id)
}
