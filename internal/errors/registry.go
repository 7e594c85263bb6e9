package errors

import "fmt"

// Template defines a registered diagnostic.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

// registry maps diagnostic codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Graph diagnostics (P001-P019)
	// ============================================

	"P001": {
		Category:   CategoryGraph,
		Message:    "Cyclic dependency detected",
		Detail:     "A memo or effect read a value that depends, directly or transitively, on its own result. The read was rejected at the point of re-entry.",
		Suggestion: "Break the loop with Peek or Untrack, or restructure so the value flows one way.",
		DocURL:     "https://pulse-dev.github.io/pulse/errors/P001",
	},
	"P002": {
		Category:   CategoryGraph,
		Message:    "Computation failed",
		Detail:     "A user-supplied memo or effect function panicked. Memos cache the failure and re-raise it on every read until a dependency changes.",
		DocURL:     "https://pulse-dev.github.io/pulse/errors/P002",
	},

	// ============================================
	// Flush diagnostics (P020-P039)
	// ============================================

	"P020": {
		Category:   CategoryFlush,
		Message:    "Flush did not settle",
		Detail:     "Effects kept writing signals that re-triggered effects until the pass ceiling was reached. The remaining queue was discarded.",
		Suggestion: "Look for an effect that writes one of its own dependencies without a converging guard.",
		DocURL:     "https://pulse-dev.github.io/pulse/errors/P020",
	},

	// ============================================
	// Scope diagnostics (P040-P059)
	// ============================================

	"P040": {
		Category:   CategoryScope,
		Message:    "Disposed node accessed",
		Detail:     "A signal, memo, or effect was used after its owner scope was disposed. Reads return the last value and writes are ignored.",
		DocURL:     "https://pulse-dev.github.io/pulse/errors/P040",
	},
}

// Register adds or replaces a diagnostic template. Intended for wiring
// code that layers its own diagnostics on top of the engine's.
func Register(code string, template Template) {
	registry[code] = template
}

// GetTemplate looks up a registered template.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// GetAllCodes returns every registered diagnostic code.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// Cycle builds the diagnostic for a cyclic dependency at node.
func Cycle(node string) *Diagnostic {
	return New("P001").WithNode(node)
}

// Computation builds the diagnostic for a failed computation at node.
func Computation(node string, cause error) *Diagnostic {
	return New("P002").WithNode(node).Wrap(cause)
}

// FlushLimit builds the diagnostic for a flush that hit the pass ceiling.
func FlushLimit(cell string, passes int) *Diagnostic {
	d := New("P020").WithNode(cell)
	d.Detail = fmt.Sprintf(
		"Effects kept writing signals that re-triggered effects; the flush was abandoned after %d passes. The last write before the ceiling was %q.",
		passes, cell)
	return d
}
