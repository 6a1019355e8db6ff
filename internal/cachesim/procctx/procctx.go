// Package procctx implements the Processor Front-end of spec.md §4.6:
// one long-lived actor per pid that drains its share of the trace and
// drives a Cache Controller.
//
// Shaped after the teacher's internal/race/goroutine.RaceContext: a
// small per-actor struct (Alloc/New) holding only the state that actor
// needs (there, a vector clock and epoch cache; here, a pid and a
// running cycle count) plus the methods that advance it.
package procctx

import (
	"context"
	"fmt"

	"github.com/kolkov/cachesim/internal/cachesim/controller"
	"github.com/kolkov/cachesim/internal/cachesim/moesi"
	"github.com/kolkov/cachesim/internal/cachesim/trace"
)

// Context is one processor's front-end state.
type Context struct {
	PID        int
	Controller *controller.Controller
	Cycles     uint64
}

// New allocates a Context for pid, driving the given Controller.
func New(pid int, c *controller.Controller) *Context {
	return &Context{PID: pid, Controller: c}
}

// Run drains src's records for this pid until end-of-trace, issuing
// each to the Controller and accumulating this processor's own cycle
// count (spec.md §4.6). It returns when src.Next(pid) reports
// trace.ErrEOF, or ctx's error if ctx is cancelled first (a sibling
// processor's goroutine hit a fatal error).
func (c *Context) Run(ctx context.Context, src trace.Source) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := src.Next(c.PID)
		if err == trace.ErrEOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("procctx: pid %d: %w", c.PID, err)
		}

		switch rec.Kind {
		case trace.NOP:
			c.Cycles++
		case trace.Read:
			c.Cycles += c.Controller.Access(moesi.PrRd, rec.Addr)
		case trace.Write:
			c.Cycles += c.Controller.Access(moesi.PrWr, rec.Addr)
		default:
			return fmt.Errorf("procctx: pid %d: unknown record kind %v", c.PID, rec.Kind)
		}
	}
}
