package errors

import "fmt"

// Category groups diagnostics by the part of the engine that raised them.
type Category string

const (
	CategoryGraph  Category = "graph"
	CategoryFlush  Category = "flush"
	CategoryScope  Category = "scope"
	CategoryConfig Category = "config"
)

// Diagnostic is a structured, human-facing error report. The engine's
// sentinel errors produce one on demand; callers print it with Format or
// FormatCompact.
type Diagnostic struct {
	// Code is a unique diagnostic identifier (e.g., "P001").
	Code string

	// Category is the part of the engine the diagnostic belongs to.
	Category Category

	// Message is a short description of what went wrong.
	Message string

	// Detail is a longer explanation.
	Detail string

	// Node names the reactive node involved, when known.
	Node string

	// Suggestion is a hint on how to fix the problem.
	Suggestion string

	// Example is code showing the correct approach.
	Example string

	// DocURL links to documentation about this diagnostic.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if d.Code != "" {
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return d.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (d *Diagnostic) Unwrap() error {
	return d.Wrapped
}

// WithNode names the reactive node the diagnostic concerns.
func (d *Diagnostic) WithNode(node string) *Diagnostic {
	d.Node = node
	return d
}

// WithSuggestion adds a fix suggestion.
func (d *Diagnostic) WithSuggestion(s string) *Diagnostic {
	d.Suggestion = s
	return d
}

// WithExample adds a code example.
func (d *Diagnostic) WithExample(ex string) *Diagnostic {
	d.Example = ex
	return d
}

// WithDetail replaces the detailed explanation.
func (d *Diagnostic) WithDetail(detail string) *Diagnostic {
	d.Detail = detail
	return d
}

// Wrap attaches an underlying error.
func (d *Diagnostic) Wrap(err error) *Diagnostic {
	d.Wrapped = err
	return d
}

// New creates a Diagnostic from a registered code.
func New(code string) *Diagnostic {
	template, ok := registry[code]
	if !ok {
		return &Diagnostic{
			Code:    code,
			Message: "Unknown diagnostic",
		}
	}
	return &Diagnostic{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		DocURL:     template.DocURL,
	}
}

// Newf creates an unregistered Diagnostic with a formatted message.
func Newf(category Category, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error under a registered code. Diagnostics
// pass through unchanged.
func FromError(err error, code string) *Diagnostic {
	if err == nil {
		return nil
	}
	if d, ok := err.(*Diagnostic); ok {
		return d
	}
	return New(code).Wrap(err)
}
