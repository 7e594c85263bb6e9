package pulse

import (
	"fmt"

	interrors "github.com/pulse-dev/pulse/internal/errors"
)

// CycleError reports a node that read itself, directly or transitively,
// while its own computation was running. It is raised immediately at the
// offending read instead of recursing.
type CycleError struct {
	// Node names the node whose computation re-entered itself.
	Node string
}

func (e *CycleError) Error() string {
	return "pulse: cyclic dependency detected at " + e.Node
}

// Diagnostic returns the structured form of the error for human-facing
// output.
func (e *CycleError) Diagnostic() *interrors.Diagnostic {
	return interrors.Cycle(e.Node)
}

// ComputationError wraps a panic raised by a user-supplied memo or effect
// function. For a memo the error is cached and re-raised on every read
// until a dependency changes and recomputation is retried; for an effect
// it is routed to the runtime's error handler and the effect is not
// auto-retried.
type ComputationError struct {
	// Node names the memo or effect whose function failed.
	Node string

	// Value is the recovered panic value.
	Value any
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("pulse: computation %s failed: %v", e.Node, e.Value)
}

// Unwrap exposes the panic value when it was itself an error, so
// errors.Is and errors.As see through the wrapper.
func (e *ComputationError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Diagnostic returns the structured form of the error for human-facing
// output.
func (e *ComputationError) Diagnostic() *interrors.Diagnostic {
	return interrors.Computation(e.Node, e.Unwrap())
}

// FlushLimitError reports a flush that exceeded the configured pass
// ceiling because effects kept writing signals that re-triggered effects.
type FlushLimitError struct {
	// Cell names the last cell written before the ceiling was hit —
	// almost always part of the loop.
	Cell string

	// Passes is the number of completed queue drains.
	Passes int
}

func (e *FlushLimitError) Error() string {
	return fmt.Sprintf("pulse: flush did not settle after %d passes (last write: %s)", e.Passes, e.Cell)
}

// Diagnostic returns the structured form of the error for human-facing
// output.
func (e *FlushLimitError) Diagnostic() *interrors.Diagnostic {
	return interrors.FlushLimit(e.Cell, e.Passes)
}

// toComputationError normalizes a recovered panic value. Engine errors
// pass through untouched so a CycleError raised deep inside a computation
// chain surfaces as itself rather than as a wrapped panic.
func toComputationError(r any, node string) error {
	switch err := r.(type) {
	case *CycleError:
		return err
	case *ComputationError:
		return err
	default:
		return &ComputationError{Node: node, Value: r}
	}
}
