package diag

import (
	"testing"

	"github.com/kolkov/cachesim/internal/cachesim/moesi"
	"github.com/stretchr/testify/require"
)

func TestCheckInstallAllowsExclusiveWhenNoPeerHadLine(t *testing.T) {
	require.NoError(t, CheckInstall(0x1000, 0, moesi.BusRd, moesi.Exclusive, false))
}

func TestCheckInstallAllowsSharedEvenWhenPeerHadLine(t *testing.T) {
	require.NoError(t, CheckInstall(0x1000, 0, moesi.BusRd, moesi.Shared, true))
}

func TestCheckInstallRejectsExclusiveWhenPeerHadLine(t *testing.T) {
	err := CheckInstall(0x1000, 2, moesi.BusRd, moesi.Exclusive, true)
	require.Error(t, err)
	var violation *InvariantViolation
	require.ErrorAs(t, err, &violation)
	require.Equal(t, "I1", violation.Invariant)
	require.Equal(t, uint32(0x1000), violation.Address)
	require.Equal(t, 2, violation.PID)
	require.Contains(t, violation.Error(), "I1")
}

func TestCheckInstallAllowsModifiedFromBusRdXEvenWhenPeerHadLine(t *testing.T) {
	// A write miss (BusRdX) always invalidates any peer that had the
	// line as part of the same snoop phase, so this is the normal case,
	// not a violation.
	require.NoError(t, CheckInstall(0x2000, 1, moesi.BusRdX, moesi.Modified, true))
}
