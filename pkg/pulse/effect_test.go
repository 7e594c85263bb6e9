package pulse

import (
	"errors"
	"fmt"
	"testing"
)

func TestEffect_RunsAtCreationAndOnChange(t *testing.T) {
	rt := NewRuntime()

	src := NewSignal(rt, 1)
	var seen []int
	NewEffect(rt, func() Cleanup {
		seen = append(seen, src.Get())
		return nil
	})

	if len(seen) != 1 || seen[0] != 1 {
		t.Fatalf("seen = %v, want [1]", seen)
	}

	src.Set(2)
	src.Set(3)
	if len(seen) != 3 || seen[1] != 2 || seen[2] != 3 {
		t.Errorf("seen = %v, want [1 2 3]", seen)
	}
}

func TestEffect_CleanupBeforeRerunAndOnDispose(t *testing.T) {
	rt := NewRuntime()

	src := NewSignal(rt, 1)
	var log []string
	e := NewEffect(rt, func() Cleanup {
		v := src.Get()
		log = append(log, logf("run %d", v))
		return func() {
			log = append(log, logf("cleanup %d", v))
		}
	})

	src.Set(2)
	e.Dispose()

	want := []string{"run 1", "cleanup 1", "run 2", "cleanup 2"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
}

func TestEffect_CleanupReadsAreUntracked(t *testing.T) {
	rt := NewRuntime()

	src := NewSignal(rt, 1)
	other := NewSignal(rt, 10)
	runs := 0
	NewEffect(rt, func() Cleanup {
		_ = src.Get()
		runs++
		return func() {
			_ = other.Get() // must not become a dependency
		}
	})

	src.Set(2) // triggers cleanup, which reads other
	other.Set(20)
	if runs != 2 {
		t.Errorf("effect ran %d times, want 2 (cleanup reads must not track)", runs)
	}
}

func TestEffect_DisposePermanent(t *testing.T) {
	rt := NewRuntime()

	src := NewSignal(rt, 1)
	runs := 0
	e := NewEffect(rt, func() Cleanup {
		_ = src.Get()
		runs++
		return nil
	})

	e.Dispose()
	e.Dispose() // idempotent
	src.Set(2)
	src.Set(3)

	if runs != 1 {
		t.Errorf("effect ran %d times after dispose, want 1", runs)
	}
	if len(src.base.subs) != 0 {
		t.Errorf("source kept %d subscribers after dispose, want 0", len(src.base.subs))
	}
}

func TestEffect_DisposedWhileQueuedIsSkipped(t *testing.T) {
	rt := NewRuntime()

	src := NewSignal(rt, 1)
	runs := 0
	e := NewEffect(rt, func() Cleanup {
		_ = src.Get()
		runs++
		return nil
	})

	rt.Batch(func() {
		src.Set(2) // queues the effect
		e.Dispose()
	})

	if runs != 1 {
		t.Errorf("effect ran %d times, want 1 (disposed while queued)", runs)
	}
}

func TestEffect_DynamicDependencies(t *testing.T) {
	rt := NewRuntime()

	gate := NewSignal(rt, true)
	a := NewSignal(rt, "a")
	b := NewSignal(rt, "b")

	runs := 0
	NewEffect(rt, func() Cleanup {
		if gate.Get() {
			_ = a.Get()
		} else {
			_ = b.Get()
		}
		runs++
		return nil
	})

	b.Set("B1") // unread branch
	if runs != 1 {
		t.Fatalf("effect ran %d times after unread write, want 1", runs)
	}

	gate.Set(false)
	if runs != 2 {
		t.Fatalf("effect ran %d times after gate flip, want 2", runs)
	}

	a.Set("A1") // now the unread branch
	if runs != 2 {
		t.Errorf("effect ran %d times after write to dropped branch, want 2", runs)
	}
	b.Set("B2")
	if runs != 3 {
		t.Errorf("effect ran %d times, want 3", runs)
	}
}

func TestEffect_WriteToOwnDependencyConverges(t *testing.T) {
	rt := NewRuntime()

	count := NewSignal(rt, 0)
	limited := 0
	NewEffect(rt, func() Cleanup {
		v := count.Get()
		limited++
		if v < 3 {
			count.Set(v + 1)
		}
		return nil
	})

	if got := count.Peek(); got != 3 {
		t.Errorf("count = %d, want 3", got)
	}
	if limited != 4 {
		t.Errorf("effect ran %d times, want 4 (0,1,2,3)", limited)
	}
}

func TestEffect_WriteThroughMemoAtCreation(t *testing.T) {
	rt := NewRuntime()

	raw := NewSignal(rt, 0)
	clamped := NewMemo(rt, func() int {
		if v := raw.Get(); v < 10 {
			return v
		}
		return 10
	})

	// The creation run writes a cell it observes only through the memo;
	// the write lands before the run's edges exist, but the effect must
	// still converge.
	var seen []int
	NewEffect(rt, func() Cleanup {
		v := clamped.Get()
		seen = append(seen, v)
		if v < 2 {
			raw.Set(v + 1)
		}
		return nil
	})

	want := []int{0, 1, 2}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen[%d] = %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestEffect_RerunWriteThroughMemoConverges(t *testing.T) {
	rt := NewRuntime()

	raw := NewSignal(rt, 4)
	mirror := NewMemo(rt, func() int { return raw.Get() })

	// Re-runs round odd values up through the memo's own source.
	var seen []int
	NewEffect(rt, func() Cleanup {
		v := mirror.Get()
		seen = append(seen, v)
		if v%2 != 0 {
			raw.Set(v + 1)
		}
		return nil
	})

	raw.Set(7)

	want := []int{4, 7, 8}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen[%d] = %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestEffect_PanicWithoutHandlerStillRetries(t *testing.T) {
	rt := NewRuntime()

	src := NewSignal(rt, 1)
	runs := 0
	NewEffect(rt, func() Cleanup {
		runs++
		if src.Get() == 2 {
			panic("boom")
		}
		return nil
	})

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected the effect panic to propagate without a handler")
			}
		}()
		src.Set(2)
	}()

	// The failed run must leave the effect wired and clean, not stuck.
	src.Set(3)
	if runs != 3 {
		t.Errorf("effect ran %d times, want 3 (failed effects re-run on the next change)", runs)
	}
}

func TestEffect_ErrorRoutedToHandler(t *testing.T) {
	var handled []error
	rt := NewRuntime(WithErrorHandler(func(err error) {
		handled = append(handled, err)
	}))

	boom := errors.New("boom")
	src := NewSignal(rt, 1)
	NewEffect(rt, func() Cleanup {
		if src.Get() == 2 {
			panic(boom)
		}
		return nil
	}, EffectName("flaky"))

	src.Set(2)

	if len(handled) != 1 {
		t.Fatalf("handler received %d errors, want 1", len(handled))
	}
	var ce *ComputationError
	if !errors.As(handled[0], &ce) {
		t.Fatalf("handler got %T, want *ComputationError", handled[0])
	}
	if ce.Node != "flaky" {
		t.Errorf("Node = %q, want %q", ce.Node, "flaky")
	}
	if !errors.Is(handled[0], boom) {
		t.Error("errors.Is should see through to the panic value")
	}

	// The effect keeps its dependencies and recovers on the next change.
	src.Set(3)
	if len(handled) != 1 {
		t.Errorf("handler received %d errors after recovery, want 1", len(handled))
	}
}

func TestEffect_SuppressedWhenMemoUnchanged(t *testing.T) {
	rt := NewRuntime()

	count := NewSignal(rt, 0)
	parity := NewMemo(rt, func() int { return count.Get() % 2 })

	runs := 0
	NewEffect(rt, func() Cleanup {
		_ = parity.Get()
		runs++
		return nil
	})

	count.Set(2)
	count.Set(4)
	count.Set(6)
	if runs != 1 {
		t.Errorf("effect ran %d times, want 1 (parity never changed)", runs)
	}
	count.Set(7)
	if runs != 2 {
		t.Errorf("effect ran %d times, want 2", runs)
	}
}

func TestEffect_NestedScopesDisposedBeforeRerun(t *testing.T) {
	rt := NewRuntime()

	src := NewSignal(rt, 1)
	var log []string
	NewEffect(rt, func() Cleanup {
		v := src.Get()
		OnCleanup(rt, func() {
			log = append(log, logf("scope cleanup %d", v))
		})
		NewEffect(rt, func() Cleanup {
			log = append(log, logf("child run %d", v))
			return nil
		})
		return func() {
			log = append(log, logf("own cleanup %d", v))
		}
	})

	src.Set(2)

	want := []string{
		"child run 1",
		"scope cleanup 1",
		"own cleanup 1",
		"child run 2",
	}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
}

func logf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
