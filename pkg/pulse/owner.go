package pulse

// Owner is a disposal scope. Signals, memos, and effects created while an
// owner is current are torn down with it, and owners nest into a tree that
// mirrors the structure of the code that created them.
//
// Disposal is depth-first: children go first (most recent first), then the
// owner's own cleanups in reverse registration order. Double disposal is a
// no-op.
type Owner struct {
	id uint64
	rt *Runtime

	parent   *Owner
	children []*Owner

	// effects owned by this scope, disposed after children.
	effects []*Effect

	// cleanups registered via OnCleanup, run in reverse order.
	cleanups []func()

	// values holds owner-scoped context entries; lookups walk to the
	// parent.
	values map[ContextKey]any

	disposed bool
}

// NewOwner creates an owner under parent. A nil parent creates a root
// scope that lives until explicitly disposed.
func NewOwner(rt *Runtime, parent *Owner) *Owner {
	return newOwner(rt, parent)
}

func newOwner(rt *Runtime, parent *Owner) *Owner {
	o := &Owner{
		id:     nextID(),
		rt:     rt,
		parent: parent,
	}
	if parent != nil {
		parent.children = append(parent.children, o)
	}
	return o
}

// ID returns the unique identifier for this owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent owner, or nil for a root scope.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed reports whether Dispose has run.
func (o *Owner) IsDisposed() bool {
	return o.disposed
}

// OnCleanup registers fn to run when the owner is disposed or, for an
// effect's scope, before the next run. Registering on an already disposed
// owner runs fn immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed {
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
}

// registerEffect records an effect for disposal with this owner.
func (o *Owner) registerEffect(e *Effect) {
	if o.disposed {
		return
	}
	o.effects = append(o.effects, e)
}

// reset tears down everything created under the owner — children
// depth-first, then effects, then cleanups in reverse order — but leaves
// the owner itself usable. An effect's scope is reset before each re-run.
func (o *Owner) reset() {
	children := o.children
	o.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	effects := o.effects
	o.effects = nil
	for _, e := range effects {
		e.Dispose()
	}

	cleanups := o.cleanups
	o.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	o.values = nil
}

// Dispose tears the owner down and detaches it from its parent.
// Idempotent.
func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true
	o.reset()

	if o.parent != nil {
		o.parent.removeChild(o)
	}
}

func (o *Owner) removeChild(child *Owner) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// removeEffect detaches an independently disposed effect so the owner's
// own disposal no longer references it.
func (o *Owner) removeEffect(e *Effect) {
	for i, cur := range o.effects {
		if cur == e {
			o.effects = append(o.effects[:i], o.effects[i+1:]...)
			return
		}
	}
}

// Root runs fn under a fresh owner scope and hands it the scope's dispose
// function. The scope nests under the current owner, so disposing an
// ancestor also disposes the root, but the usual pattern is for fn to keep
// dispose and call it explicitly:
//
//	stop := pulse.Root(rt, func(dispose func()) func() {
//	    pulse.NewEffect(rt, renderHeader)
//	    pulse.NewEffect(rt, renderBody)
//	    return dispose
//	})
//	// ...
//	stop()
func Root[T any](rt *Runtime, fn func(dispose func()) T) T {
	o := newOwner(rt, rt.currentOwner)
	prev := rt.currentOwner
	rt.currentOwner = o
	defer func() { rt.currentOwner = prev }()
	return fn(o.Dispose)
}

// WithOwner runs fn with o as the current owner, so nodes created inside
// belong to o.
func WithOwner(rt *Runtime, o *Owner, fn func()) {
	prev := rt.currentOwner
	rt.currentOwner = o
	defer func() { rt.currentOwner = prev }()
	fn()
}

// CurrentOwner returns the owner that would receive nodes created now, or
// nil outside any scope.
func CurrentOwner(rt *Runtime) *Owner {
	return rt.currentOwner
}
