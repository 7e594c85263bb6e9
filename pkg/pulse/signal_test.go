package pulse

import "testing"

func TestSignal_GetSet(t *testing.T) {
	rt := NewRuntime()

	t.Run("initial value", func(t *testing.T) {
		s := NewSignal(rt, 42)
		if got := s.Get(); got != 42 {
			t.Errorf("Get() = %d, want 42", got)
		}
	})

	t.Run("set changes value", func(t *testing.T) {
		s := NewSignal(rt, 1)
		s.Set(2)
		if got := s.Get(); got != 2 {
			t.Errorf("Get() = %d, want 2", got)
		}
	})

	t.Run("update derives from current", func(t *testing.T) {
		s := NewSignal(rt, 10)
		s.Update(func(v int) int { return v + 5 })
		if got := s.Get(); got != 15 {
			t.Errorf("Get() = %d, want 15", got)
		}
	})

	t.Run("peek does not subscribe", func(t *testing.T) {
		s := NewSignal(rt, 1)
		runs := 0
		NewEffect(rt, func() Cleanup {
			_ = s.Peek()
			runs++
			return nil
		})
		s.Set(2)
		if runs != 1 {
			t.Errorf("effect ran %d times, want 1 (peek must not subscribe)", runs)
		}
	})
}

func TestSignal_EqualWritesSuppressed(t *testing.T) {
	rt := NewRuntime()

	t.Run("same int", func(t *testing.T) {
		s := NewSignal(rt, 5)
		runs := 0
		NewEffect(rt, func() Cleanup {
			_ = s.Get()
			runs++
			return nil
		})
		s.Set(5)
		if runs != 1 {
			t.Errorf("effect ran %d times after equal write, want 1", runs)
		}
	})

	t.Run("deep equal slices", func(t *testing.T) {
		s := NewSignal(rt, []int{1, 2, 3})
		runs := 0
		NewEffect(rt, func() Cleanup {
			_ = s.Get()
			runs++
			return nil
		})
		s.Set([]int{1, 2, 3})
		if runs != 1 {
			t.Errorf("effect ran %d times after deep-equal write, want 1", runs)
		}
		s.Set([]int{1, 2, 4})
		if runs != 2 {
			t.Errorf("effect ran %d times after changed write, want 2", runs)
		}
	})

	t.Run("custom equality", func(t *testing.T) {
		// Treat values as equal when they round to the same integer.
		s := NewSignal(rt, 1.0).WithEquals(func(a, b float64) bool {
			return int(a) == int(b)
		})
		runs := 0
		NewEffect(rt, func() Cleanup {
			_ = s.Get()
			runs++
			return nil
		})
		s.Set(1.9)
		if runs != 1 {
			t.Errorf("effect ran %d times, want 1 (1.0 ~ 1.9)", runs)
		}
		s.Set(2.1)
		if runs != 2 {
			t.Errorf("effect ran %d times, want 2", runs)
		}
	})
}

func TestSignal_DisposedAccess(t *testing.T) {
	rt := NewRuntime()

	var s *Signal[int]
	Root(rt, func(dispose func()) any {
		s = NewSignal(rt, 7)
		dispose()
		return nil
	})

	t.Run("read returns last value", func(t *testing.T) {
		if got := s.Get(); got != 7 {
			t.Errorf("Get() = %d, want 7", got)
		}
	})

	t.Run("write is ignored", func(t *testing.T) {
		s.Set(100)
		if got := s.Get(); got != 7 {
			t.Errorf("Get() after disposed write = %d, want 7", got)
		}
	})

	t.Run("read does not subscribe", func(t *testing.T) {
		NewEffect(rt, func() Cleanup {
			_ = s.Get()
			return nil
		})
		if len(s.base.subs) != 0 {
			t.Errorf("disposed signal has %d subscribers, want 0", len(s.base.subs))
		}
	})
}

func TestSignal_Names(t *testing.T) {
	rt := NewRuntime()

	s := NewSignal(rt, 0).WithName("count")
	if s.Name() != "count" {
		t.Errorf("Name() = %q, want %q", s.Name(), "count")
	}
	if s.base.describe() != "count" {
		t.Errorf("describe() = %q, want %q", s.base.describe(), "count")
	}

	anon := NewSignal(rt, 0)
	if anon.Name() != "" {
		t.Errorf("Name() = %q, want empty", anon.Name())
	}
	if anon.base.describe() == "" {
		t.Error("describe() should fall back to a synthetic name")
	}
}

func TestSignal_IDsAreUnique(t *testing.T) {
	rt := NewRuntime()
	a := NewSignal(rt, 0)
	b := NewSignal(rt, 0)
	if a.ID() == b.ID() {
		t.Error("two signals share an ID")
	}
}
