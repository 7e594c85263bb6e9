// Package errors provides structured, actionable diagnostics for the
// reactive engine.
//
// Each diagnostic has a stable code (e.g., "P001") that maps to a short
// message, a detailed explanation, an optional fix suggestion, and a
// documentation URL. The engine's sentinel errors in pkg/pulse expose a
// Diagnostic() method that builds one of these for human-facing output.
//
// # Categories
//
//   - graph: dependency graph problems (cycles, failed computations)
//   - flush: scheduler problems (unsettled flushes)
//   - scope: ownership problems (disposed access)
//   - config: invalid runtime configuration
//
// # Usage
//
//	d := errors.Cycle("total").
//	    WithSuggestion("Read the previous value with Peek instead")
//
//	fmt.Println(d.Format())
//	// Output:
//	// ERROR P001: Cyclic dependency detected
//	//
//	//   node: total
//	//
//	//   A memo or effect read a value that depends, directly or
//	//   transitively, on its own result. ...
//	//
//	//   Hint: Read the previous value with Peek instead
package errors
