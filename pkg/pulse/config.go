package pulse

import "log/slog"

// DefaultMaxFlushPasses bounds how many times a single flush may drain the
// effect queue before it aborts with a FlushLimitError. Each pass exists
// because an effect in the previous pass wrote a signal, so hitting the
// ceiling means effects are feeding each other indefinitely.
const DefaultMaxFlushPasses = 1000

// RuntimeOption configures a Runtime at construction.
type RuntimeOption func(*Runtime)

// WithMaxFlushPasses overrides DefaultMaxFlushPasses. Values below 1 are
// ignored.
func WithMaxFlushPasses(n int) RuntimeOption {
	return func(rt *Runtime) {
		if n >= 1 {
			rt.maxFlushPasses = n
		}
	}
}

// WithLogger attaches a logger for debug-level engine events (writes,
// flushes, named transactions) and error-level reactive failures. A nil
// logger keeps the engine silent.
func WithLogger(l *slog.Logger) RuntimeOption {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithErrorHandler registers the handler that receives effect errors and
// flush-limit diagnostics. Without a handler the runtime panics instead,
// which is usually what tests want and long-running hosts do not.
func WithErrorHandler(fn func(error)) RuntimeOption {
	return func(rt *Runtime) {
		rt.onError = fn
	}
}

// WithInstrumentation attaches hook callbacks for engine activity. See the
// metrics and otelpulse packages for ready-made implementations.
func WithInstrumentation(in Instrumentation) RuntimeOption {
	return func(rt *Runtime) {
		if in != nil {
			rt.inst = in
		}
	}
}
