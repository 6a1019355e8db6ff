// Package sim is the Clock/Scheduler of spec.md §4.6/§5: it wires a
// Bus Arbiter, one Cache Controller and one Processor Front-end per
// pid, runs them to completion, and collects the final report data.
//
// spec.md's scheduling model calls for `3N+1` long-lived actors (N
// processor front-ends, N cache-front actors, N snoop actors, one bus
// arbiter). This package spawns N real goroutines — one per processor
// front-end — using golang.org/x/sync/errgroup for lifecycle and error
// propagation, the same library the pack reaches for when coordinating
// a fixed worker fan-out. The remaining 2N+1 actors are not separate
// goroutines: the cache-front half of each controller runs inline on
// its own front-end's goroutine, the snoop half runs inline on
// whichever goroutine is making a bus call at the time (see
// internal/cachesim/controller's package doc), and the bus arbiter is
// the passive, mutex-guarded object spec.md §5 already describes it as.
package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kolkov/cachesim/internal/cachesim/bus"
	"github.com/kolkov/cachesim/internal/cachesim/config"
	"github.com/kolkov/cachesim/internal/cachesim/controller"
	"github.com/kolkov/cachesim/internal/cachesim/procctx"
	"github.com/kolkov/cachesim/internal/cachesim/stats"
	"github.com/kolkov/cachesim/internal/cachesim/trace"
)

// ProcResult is one processor's final counters.
type ProcResult struct {
	PID    int
	Stats  stats.PerProc
	Bus    bus.Counters
	Cycles uint64
}

// Result is the complete outcome of one simulation run.
type Result struct {
	Procs        []ProcResult
	Global       bus.GlobalCounters
	TotalRuntime uint64
}

// Run builds the N Cache Controllers and the shared Bus Arbiter per
// cfg, then drives src to completion. It returns an error when src
// declares no processors, when cfg.Processors is non-zero and differs
// from src's count, when a processor's trace source or record kind
// fails mid-run, when ctx is cancelled, or when a processor goroutine
// panics (such as with a *diag.InvariantViolation, which the returned
// error wraps).
func Run(ctx context.Context, cfg config.Config, src trace.Source) (*Result, error) {
	n := src.ProcCount()
	if n <= 0 {
		return nil, fmt.Errorf("sim: trace declares %d processors", n)
	}
	if cfg.Processors != 0 && cfg.Processors != n {
		return nil, fmt.Errorf("sim: trace declares %d processors, config specifies %d", n, cfg.Processors)
	}

	sink := stats.New(n)
	b := bus.New(cfg, n)

	procs := make([]*procctx.Context, n)
	for pid := 0; pid < n; pid++ {
		c := controller.New(pid, cfg, b, sink)
		procs[pid] = procctx.New(pid, c)
	}

	// gctx is cancelled as soon as any processor's goroutine returns a
	// non-nil error, which procctx.Context.Run checks on every record so
	// a coherence-invariant panic on one pid stops the others promptly
	// instead of leaving them to run the rest of the trace alone.
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range procs {
		p := p
		g.Go(func() (err error) {
			// An InvariantViolation surfaces as a panic from
			// internal/cachesim/controller (spec.md §7): recovering it
			// here, on the goroutine that raised it, is the only place
			// recover can see it at all — an unrecovered panic on a
			// goroutine started by errgroup.Go crashes the whole
			// process regardless of any recover() elsewhere. Converting
			// it to a normal error lets it flow through g.Wait() and
			// cmd/cachesim report it as a bounded diagnostic.
			defer func() {
				if r := recover(); r != nil {
					if e, ok := r.(error); ok {
						err = fmt.Errorf("pid %d: %w", p.PID, e)
					} else {
						err = fmt.Errorf("pid %d: panic: %v", p.PID, r)
					}
				}
			}()
			return p.Run(gctx, src)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	result := &Result{Global: b.GlobalCounters()}
	for pid, p := range procs {
		result.Procs = append(result.Procs, ProcResult{
			PID:    pid,
			Stats:  sink.Snapshot(pid),
			Bus:    b.Counters(pid),
			Cycles: p.Cycles,
		})
		if p.Cycles > result.TotalRuntime {
			result.TotalRuntime = p.Cycles
		}
	}
	return result, nil
}
