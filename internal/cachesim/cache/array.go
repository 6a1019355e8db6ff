package cache

import "github.com/kolkov/cachesim/internal/cachesim/addr"

// Array is the full 128-set cache array owned by one Cache Controller.
// It has no locking of its own: internal/cachesim/controller guards all
// access with the per-cache lock described in spec.md §4.4, releasing it
// across bus waits.
type Array struct {
	sets [addr.NumSets]Set
}

// NewArray returns an empty cache array (every set has zero valid
// lines).
func NewArray() *Array {
	return &Array{}
}

// SetFor returns the set that owns the given index, as decoded by
// internal/cachesim/addr.Decode.
func (a *Array) SetFor(index uint32) *Set {
	return &a.sets[index]
}
