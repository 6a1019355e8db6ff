// Package addr decodes 32-bit physical addresses into the (tag, index,
// offset) triple used by the cache array.
//
// Geometry is fixed by the simulated system, not configurable: a 32-byte
// line (5 offset bits), 128 sets (7 index bits) and a 20-bit tag. Changing
// these would change the meaning of every invariant in internal/cachesim/cache,
// so unlike latencies (see internal/cachesim/config) they are compile-time
// constants.
package addr

const (
	// OffsetBits is the number of bits used for the in-line byte offset.
	OffsetBits = 5
	// IndexBits is the number of bits used to select a set.
	IndexBits = 7
	// TagBits is the number of bits remaining for the tag.
	TagBits = 32 - OffsetBits - IndexBits

	// LineSize is the cache line size in bytes (2^OffsetBits).
	LineSize = 1 << OffsetBits
	// NumSets is the number of sets in a cache array (2^IndexBits).
	NumSets = 1 << IndexBits

	indexMask = uint32(NumSets - 1)
	tagShift  = OffsetBits + IndexBits
)

// Decode splits a physical address into its tag, set index, and
// byte offset. This is a pure function with no state.
func Decode(address uint32) (tag uint32, index uint32, offset uint32) {
	offset = address & (LineSize - 1)
	index = (address >> OffsetBits) & indexMask
	tag = address >> tagShift
	return tag, index, offset
}

// LineBase returns the address of the first byte of the line with the
// given tag and set index (offset 0). Useful for tests that want to
// construct addresses from a (tag, index) pair.
func LineBase(tag, index uint32) uint32 {
	return (tag << tagShift) | (index << OffsetBits)
}
