// Package diag captures the diagnostic context for a coherence-invariant
// violation (spec.md §7's second error taxonomy).
//
// This is a much-reduced adaptation of the teacher's stackdepot package:
// stackdepot exists to capture and deduplicate call stacks for race
// reports. This domain has no call stacks to capture — a coherence bug
// is identified by pid, address and the conflicting state, not by where
// in user code the access originated — so only that smaller diagnostic
// payload is kept.
package diag

import (
	"fmt"

	"github.com/kolkov/cachesim/internal/cachesim/moesi"
)

// InvariantViolation reports that a cache installed a line in a state
// that cannot coexist with what the bus transaction observed elsewhere
// (spec.md §3's I1-I3). Constructing one is fatal: the simulation
// aborts, per spec.md §7.
type InvariantViolation struct {
	Invariant string // which invariant was violated, e.g. "I1"
	Address   uint32
	PID       int
	State     moesi.State
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf(
		"coherence invariant %s violated at address %#08x: pid %d installed %s while a peer reported holding the line",
		v.Invariant, v.Address, v.PID, v.State,
	)
}

// CheckInstall asserts invariant I1 (at most one cache in M or E for any
// address) against the bus's own aggregate "did any peer have this
// line" answer for the BusRd transaction that just fetched it. Only a
// BusRd install can reveal this class of bug: BusRd installs Exclusive
// exactly when no peer reported HasLine, and moesi.InstallState already
// enforces that by construction, so a failure here indicates a caller
// bug (e.g. installing against a stale or mismatched bus response)
// rather than a reachable protocol state.
//
// A BusRdX install is never checked here: it always installs Modified,
// and a peer that reported HasLine during that same snoop phase has
// already been driven to Invalid by moesi.OnSnoop before this call —
// "some peer had the line a moment ago" is not a violation for a
// write-miss, only for a read-miss.
func CheckInstall(address uint32, pid int, kind moesi.BusKind, installed moesi.State, peerHadLine bool) error {
	if kind == moesi.BusRd && installed == moesi.Exclusive && peerHadLine {
		return &InvariantViolation{Invariant: "I1", Address: address, PID: pid, State: installed}
	}
	return nil
}
