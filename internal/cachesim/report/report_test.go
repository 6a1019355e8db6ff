package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRenderMatchesSpecifiedLayout(t *testing.T) {
	cores := []CoreLine{
		{PID: 0, BusRd: 2, BusRdX: 1, BusUpgr: 0},
		{PID: 1, BusRd: 1, BusRdX: 0, BusUpgr: 1},
	}
	totals := Totals{
		Accesses:             10,
		SnoopHits:            1,
		SnoopMisses:          3,
		Waits:                2,
		AverageMemAccessTime: 85.5,
		TotalRuntime:         412,
	}

	want := "Core0: BusRd=2 BusRdX=1 BusUpgr=0\n" +
		"Core1: BusRd=1 BusRdX=0 BusUpgr=1\n" +
		"Total accesses=10 SnoopHits=1 SnoopMisses=3\n" +
		"Waits=2 AvgWait=0.500\n" +
		"AverageMemAccessTime=86\n" +
		"TotalRuntime=412\n"

	got := Render(cores, totals)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderZeroBusTransactionsAvoidsDivideByZero(t *testing.T) {
	got := Render(nil, Totals{})
	require.Contains(t, got, "AvgWait=0.000")
}

func TestPersistWritesReadableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")

	require.NoError(t, Persist(path, "hello\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(data))
}

func TestRoundTripIsByteIdentical(t *testing.T) {
	cores := []CoreLine{{PID: 0, BusRd: 5}}
	totals := Totals{Accesses: 5, TotalRuntime: 100}

	first := Render(cores, totals)
	second := Render(cores, totals)
	require.Equal(t, first, second, "T4: replaying the same data must render byte-identically")
}
