// Package cache implements the 8-way set-associative, strictly-LRU cache
// array owned by a single Cache Controller (spec.md §4.2).
//
// A Set stores its lines by recency position: position 0 is always the
// most-recently-used line, and numValid..Assoc-1 are unused slots. There
// are no timestamps or aging counters — recency is entirely encoded by
// array position, same as the teacher's shadow memory encodes access
// history by epoch comparison rather than wall-clock time.
package cache

import "github.com/kolkov/cachesim/internal/cachesim/moesi"

// Assoc is the fixed set associativity (ways per set).
const Assoc = 8

// Line is one cache line: its tag, coherence state and implicit recency
// (position within the owning Set's line array). No data payload is
// modeled — per spec.md's Non-goals, contents are irrelevant to the
// metrics this simulator produces.
type Line struct {
	Tag   uint32
	State moesi.State
}

// Set is one associative set: up to Assoc lines, ordered MRU-first.
// numValid lines occupy positions [0, numValid); the rest are zero Lines
// in state Invalid.
type Set struct {
	lines    [Assoc]Line
	numValid int
}

// Lookup scans the set for a valid line with the given tag. It returns
// the line's recency position and true on a hit. A line whose State is
// Invalid never matches, even if its tag slot has not yet been
// overwritten by installMiss (spec.md §3's Invalidate-on-snoop lifecycle).
func (s *Set) Lookup(tag uint32) (position int, ok bool) {
	for i := 0; i < s.numValid; i++ {
		if s.lines[i].Tag == tag && s.lines[i].State.Valid() {
			return i, true
		}
	}
	return 0, false
}

// Line returns a copy of the line currently at position, for callers
// that already hold a position from Lookup.
func (s *Set) Line(position int) Line {
	return s.lines[position]
}

// SetState overwrites the coherence state of the line at position,
// leaving its tag and recency position untouched. Used by the snoop
// actor and by PromoteHit's caller after consulting the MOESI table.
func (s *Set) SetState(position int, state moesi.State) {
	s.lines[position].State = state
}

// PromoteHit moves the line at position to the MRU position (0),
// shifting every line that was ahead of it back by one (spec.md §4.2).
// Lines behind position are untouched.
func (s *Set) PromoteHit(position int) {
	if position == 0 {
		return
	}
	moved := s.lines[position]
	copy(s.lines[1:position+1], s.lines[0:position])
	s.lines[0] = moved
}

// EvictedLine is returned by InstallMiss when installing a new line
// required evicting an existing one.
type EvictedLine struct {
	Line Line
}

// InstallMiss installs a new line with the given tag and initial state
// at the MRU position. If the set is not yet full, the set simply grows
// and no eviction occurs. If the set is full, the current LRU line
// (position Assoc-1) is evicted and returned so the controller can
// decide whether to charge a writeback (spec.md §4.2, §3's Lifecycles).
func (s *Set) InstallMiss(tag uint32, state moesi.State) (evicted *EvictedLine) {
	if s.numValid < Assoc {
		copy(s.lines[1:s.numValid+1], s.lines[0:s.numValid])
		s.lines[0] = Line{Tag: tag, State: state}
		s.numValid++
		return nil
	}

	victim := s.lines[Assoc-1]
	copy(s.lines[1:Assoc], s.lines[0:Assoc-1])
	s.lines[0] = Line{Tag: tag, State: state}
	return &EvictedLine{Line: victim}
}

// InvalidateByTag transitions the line with the given tag to Invalid, if
// present. It does not compact or reorder the set: the slot remains in
// place (tag preserved) until a future InstallMiss overwrites it, exactly
// as spec.md §3 describes. Returns the previous state, or
// (moesi.Invalid, false) if the tag was not found among valid lines.
func (s *Set) InvalidateByTag(tag uint32) (previous moesi.State, found bool) {
	position, ok := s.Lookup(tag)
	if !ok {
		return moesi.Invalid, false
	}
	previous = s.lines[position].State
	s.lines[position].State = moesi.Invalid
	return previous, true
}

// NumValid returns the number of occupied (non-Invalid-by-construction)
// slots. This counts slots, not necessarily lines still in a valid
// MOESI state — InvalidateByTag turns a slot's line Invalid in place
// without decrementing numValid, matching spec.md's "not immediately
// compacted" lifecycle note.
func (s *Set) NumValid() int {
	return s.numValid
}
