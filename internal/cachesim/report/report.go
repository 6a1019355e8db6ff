// Package report renders and persists the human-readable statistics
// output of spec.md §6.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/natefinch/atomic"
)

// CoreLine is one processor's bus-transaction counts for the report.
type CoreLine struct {
	PID                    int
	BusRd, BusRdX, BusUpgr uint64
}

// Totals carries the simulation-wide figures printed after the
// per-core lines.
type Totals struct {
	Accesses             uint64
	SnoopHits            uint64
	SnoopMisses          uint64
	Waits                uint64
	AverageMemAccessTime float64
	TotalRuntime         uint64
}

// Render formats cores and totals into the exact layout specified by
// spec.md §6:
//
//	Core<i>: BusRd=<n> BusRdX=<n> BusUpgr=<n>
//	Total accesses=<n> SnoopHits=<n> SnoopMisses=<n>
//	Waits=<n> AvgWait=<n.nnn>
//	AverageMemAccessTime=<cycles>
//	TotalRuntime=<cycles>
func Render(cores []CoreLine, totals Totals) string {
	var b strings.Builder
	for _, c := range cores {
		fmt.Fprintf(&b, "Core%d: BusRd=%d BusRdX=%d BusUpgr=%d\n", c.PID, c.BusRd, c.BusRdX, c.BusUpgr)
	}

	busTransactions := totals.SnoopHits + totals.SnoopMisses
	var avgWait float64
	if busTransactions > 0 {
		avgWait = float64(totals.Waits) / float64(busTransactions)
	}

	fmt.Fprintf(&b, "Total accesses=%d SnoopHits=%d SnoopMisses=%d\n", totals.Accesses, totals.SnoopHits, totals.SnoopMisses)
	fmt.Fprintf(&b, "Waits=%d AvgWait=%.3f\n", totals.Waits, avgWait)
	fmt.Fprintf(&b, "AverageMemAccessTime=%.0f\n", totals.AverageMemAccessTime)
	fmt.Fprintf(&b, "TotalRuntime=%d\n", totals.TotalRuntime)
	return b.String()
}

// Persist writes the rendered report to path as a single atomic
// rename, so a reader never observes a partially written file (spec.md
// §6's "persisted output" — the teacher's internal/fs layer in
// calvinalkan-agent-task uses the same natefinch/atomic package for
// exactly this durability property).
func Persist(path, rendered string) error {
	return atomic.WriteFile(path, bytes.NewReader([]byte(rendered)))
}
