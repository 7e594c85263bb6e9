package pulse

import "sync/atomic"

// globalIDCounter is the source of unique IDs for all reactive primitives.
// IDs stay unique across runtimes so nodes from different engines never
// collide in logs or diagnostics.
var globalIDCounter uint64

// nextID returns the next unique ID for a reactive primitive.
// IDs are monotonically increasing and never reused.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
