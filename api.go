// Package cachesim's public API wraps the internal simulation engine.
// See doc.go for an overview and example.
package cachesim

import (
	"context"
	"fmt"

	"github.com/kolkov/cachesim/internal/cachesim/config"
	"github.com/kolkov/cachesim/internal/cachesim/report"
	"github.com/kolkov/cachesim/internal/cachesim/sim"
	"github.com/kolkov/cachesim/internal/cachesim/trace"
)

// Result is the outcome of one simulation run: everything needed to
// render a report or export metrics.
type Result = sim.Result

// Run loads the trace file at tracePath and simulates it under cfg.
//
// The trace is reparsed fresh on each call, so calls are independent of
// one another. With a single processor, repeat calls with the same
// inputs produce identical results. With several processors, the order
// in which they win the bus follows goroutine scheduling, so the bus
// counters and cycle counts of repeat calls can differ.
func Run(ctx context.Context, tracePath string, cfg config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cachesim: %w", err)
	}
	src, err := trace.Load(tracePath)
	if err != nil {
		return nil, fmt.Errorf("cachesim: %w", err)
	}
	return sim.Run(ctx, cfg, src)
}

// Render formats a Result as the human-readable report described in
// spec.md §6.
func Render(result *Result) string {
	cores := make([]report.CoreLine, len(result.Procs))
	var totalAccesses uint64
	var totalCycles uint64
	for i, p := range result.Procs {
		cores[i] = report.CoreLine{PID: p.PID, BusRd: p.Bus.BusRd, BusRdX: p.Bus.BusRdX, BusUpgr: p.Bus.BusUpgr}
		totalAccesses += p.Stats.Reads() + p.Stats.Writes()
		totalCycles += p.Cycles
	}

	var avgMemAccessTime float64
	if totalAccesses > 0 {
		avgMemAccessTime = float64(totalCycles) / float64(totalAccesses)
	}

	totals := report.Totals{
		Accesses:             totalAccesses,
		SnoopHits:            result.Global.SnoopHits,
		SnoopMisses:          result.Global.SnoopMisses,
		Waits:                result.Global.Waits,
		AverageMemAccessTime: avgMemAccessTime,
		TotalRuntime:         result.TotalRuntime,
	}
	return report.Render(cores, totals)
}
