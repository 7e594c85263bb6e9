package pulse

// OnCleanup registers fn on the current owner scope: it runs when the
// scope is disposed or, inside an effect body, before the effect's next
// run. No-op outside any scope.
func OnCleanup(rt *Runtime, fn func()) {
	if o := rt.currentOwner; o != nil {
		o.OnCleanup(fn)
	}
}

// OnMount creates an effect that runs fn exactly once. fn is executed
// untracked, so nothing it reads becomes a dependency and the effect never
// re-runs.
func OnMount(rt *Runtime, fn func()) *Effect {
	return NewEffect(rt, func() Cleanup {
		rt.Untracked(fn)
		return nil
	})
}

// OnUpdate creates an effect that skips its callback on the first run.
// deps is called every run to establish dependencies; callback only runs
// on subsequent changes.
//
//	pulse.OnUpdate(rt,
//	    func() { _ = count.Get() },
//	    func() { log.Println("count changed") },
//	)
func OnUpdate(rt *Runtime, deps func(), callback func()) *Effect {
	first := true
	return NewEffect(rt, func() Cleanup {
		deps()
		if first {
			first = false
			return nil
		}
		rt.Untracked(callback)
		return nil
	})
}
