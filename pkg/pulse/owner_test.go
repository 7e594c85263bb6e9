package pulse

import "testing"

func TestOwner_CleanupOrder(t *testing.T) {
	rt := NewRuntime()

	var log []string
	o := NewOwner(rt, nil)
	WithOwner(rt, o, func() {
		OnCleanup(rt, func() { log = append(log, "first") })
		OnCleanup(rt, func() { log = append(log, "second") })
		OnCleanup(rt, func() { log = append(log, "third") })
	})

	o.Dispose()

	want := []string{"third", "second", "first"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q (cleanups run in reverse)", i, log[i], want[i])
		}
	}
}

func TestOwner_ChildrenDisposedDepthFirst(t *testing.T) {
	rt := NewRuntime()

	var log []string
	root := NewOwner(rt, nil)
	WithOwner(rt, root, func() {
		OnCleanup(rt, func() { log = append(log, "root") })
		child := NewOwner(rt, CurrentOwner(rt))
		WithOwner(rt, child, func() {
			OnCleanup(rt, func() { log = append(log, "child") })
			grand := NewOwner(rt, CurrentOwner(rt))
			WithOwner(rt, grand, func() {
				OnCleanup(rt, func() { log = append(log, "grandchild") })
			})
		})
	})

	root.Dispose()

	want := []string{"grandchild", "child", "root"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
}

func TestOwner_DisposeIdempotent(t *testing.T) {
	rt := NewRuntime()

	count := 0
	o := NewOwner(rt, nil)
	o.OnCleanup(func() { count++ })

	o.Dispose()
	o.Dispose()
	if count != 1 {
		t.Errorf("cleanup ran %d times, want 1", count)
	}
	if !o.IsDisposed() {
		t.Error("IsDisposed() = false after Dispose")
	}
}

func TestOwner_DisposedEffectUnregisters(t *testing.T) {
	rt := NewRuntime()

	o := NewOwner(rt, nil)
	var e *Effect
	WithOwner(rt, o, func() {
		e = NewEffect(rt, func() Cleanup { return nil })
	})
	if len(o.effects) != 1 {
		t.Fatalf("owner holds %d effects, want 1", len(o.effects))
	}

	e.Dispose()
	if len(o.effects) != 0 {
		t.Errorf("owner holds %d effects after effect disposal, want 0", len(o.effects))
	}
	o.Dispose()
}

func TestOwner_CleanupOnDisposedRunsImmediately(t *testing.T) {
	rt := NewRuntime()

	o := NewOwner(rt, nil)
	o.Dispose()

	ran := false
	o.OnCleanup(func() { ran = true })
	if !ran {
		t.Error("OnCleanup on a disposed owner should run immediately")
	}
}

func TestRoot_DisposesEverything(t *testing.T) {
	rt := NewRuntime()

	src := NewSignal(rt, 1)
	runs := 0
	stop := Root(rt, func(dispose func()) func() {
		NewEffect(rt, func() Cleanup {
			_ = src.Get()
			runs++
			return nil
		})
		return dispose
	})

	src.Set(2)
	if runs != 2 {
		t.Fatalf("effect ran %d times, want 2", runs)
	}

	stop()
	src.Set(3)
	if runs != 2 {
		t.Errorf("effect ran %d times after root disposal, want 2", runs)
	}
}

func TestRoot_NestsUnderCurrentOwner(t *testing.T) {
	rt := NewRuntime()

	outer := NewOwner(rt, nil)
	var innerDisposed bool
	WithOwner(rt, outer, func() {
		Root(rt, func(dispose func()) any {
			OnCleanup(rt, func() { innerDisposed = true })
			return nil
		})
	})

	outer.Dispose()
	if !innerDisposed {
		t.Error("disposing the outer owner should dispose nested roots")
	}
}

func TestOwner_ContextValues(t *testing.T) {
	rt := NewRuntime()
	themeKey := KeyFor("app.theme")
	userKey := KeyFor("app.user")

	t.Run("lookup walks to parents", func(t *testing.T) {
		parent := NewOwner(rt, nil)
		parent.SetValue(themeKey, "dark")
		child := NewOwner(rt, parent)

		v, ok := child.Value(themeKey)
		if !ok || v != "dark" {
			t.Errorf("Value() = %v, %v; want dark, true", v, ok)
		}
	})

	t.Run("nearer owner shadows", func(t *testing.T) {
		parent := NewOwner(rt, nil)
		parent.SetValue(themeKey, "dark")
		child := NewOwner(rt, parent)
		child.SetValue(themeKey, "light")

		if v, _ := child.Value(themeKey); v != "light" {
			t.Errorf("Value() = %v, want light", v)
		}
		if v, _ := parent.Value(themeKey); v != "dark" {
			t.Errorf("parent Value() = %v, want dark", v)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		o := NewOwner(rt, nil)
		if _, ok := o.Value(userKey); ok {
			t.Error("Value() for missing key should return false")
		}
	})

	t.Run("via current owner", func(t *testing.T) {
		Root(rt, func(dispose func()) any {
			SetContext(rt, userKey, "u-123")
			Root(rt, func(dispose func()) any {
				v, ok := GetContext(rt, userKey)
				if !ok || v != "u-123" {
					t.Errorf("GetContext() = %v, %v; want u-123, true", v, ok)
				}
				return nil
			})
			return nil
		})
	})

	t.Run("distinct names yield distinct keys", func(t *testing.T) {
		if KeyFor("a") == KeyFor("b") {
			t.Error("KeyFor collision between distinct names")
		}
		if KeyFor("a") != KeyFor("a") {
			t.Error("KeyFor not stable for the same name")
		}
	})
}

func TestOnMount_RunsOnceUntracked(t *testing.T) {
	rt := NewRuntime()

	src := NewSignal(rt, 1)
	mounts := 0
	OnMount(rt, func() {
		_ = src.Get()
		mounts++
	})

	src.Set(2)
	if mounts != 1 {
		t.Errorf("OnMount ran %d times, want 1", mounts)
	}
}

func TestOnUpdate_SkipsFirstRun(t *testing.T) {
	rt := NewRuntime()

	src := NewSignal(rt, 1)
	updates := 0
	OnUpdate(rt,
		func() { _ = src.Get() },
		func() { updates++ },
	)

	if updates != 0 {
		t.Fatalf("callback ran %d times at creation, want 0", updates)
	}
	src.Set(2)
	if updates != 1 {
		t.Errorf("callback ran %d times, want 1", updates)
	}
	src.Set(3)
	if updates != 2 {
		t.Errorf("callback ran %d times, want 2", updates)
	}
}
