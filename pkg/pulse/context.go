package pulse

import "github.com/cespare/xxhash/v2"

// ContextKey identifies an owner-scoped context entry. Keys are derived
// from names by hashing, so independent packages can mint keys without a
// central registry and collisions stay astronomically unlikely.
type ContextKey uint64

// KeyFor derives the context key for a name. The same name always yields
// the same key.
func KeyFor(name string) ContextKey {
	return ContextKey(xxhash.Sum64String(name))
}

// SetValue stores a context value on this owner. Descendant scopes observe
// it via Value unless a nearer owner shadows the key.
func (o *Owner) SetValue(key ContextKey, value any) {
	if o.disposed {
		return
	}
	if o.values == nil {
		o.values = make(map[ContextKey]any)
	}
	o.values[key] = value
}

// Value looks the key up on this owner and then up the parent chain.
func (o *Owner) Value(key ContextKey) (any, bool) {
	for cur := o; cur != nil; cur = cur.parent {
		if v, ok := cur.values[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// SetContext stores a context value on the current owner scope. No-op
// outside any scope.
func SetContext(rt *Runtime, key ContextKey, value any) {
	if o := rt.currentOwner; o != nil {
		o.SetValue(key, value)
	}
}

// GetContext reads a context value from the nearest provider in the
// current owner chain.
func GetContext(rt *Runtime, key ContextKey) (any, bool) {
	if o := rt.currentOwner; o != nil {
		return o.Value(key)
	}
	return nil, false
}
