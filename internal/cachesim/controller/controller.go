// Package controller implements the Cache Controller of spec.md §4.4:
// one per processor, owning a private Cache Array and driving the
// MOESI state machine from both local requests and snooped bus
// transactions.
//
// spec.md models the front actor and snoop actor as two threads of
// control serialized on a per-cache lock. This implementation keeps
// that serialization but maps it onto the concurrency this module
// system actually has: the front actor runs on the owning processor's
// own goroutine (see internal/cachesim/procctx), while the snoop actor
// has no goroutine of its own — bus.Bus invokes Controller.Snoop
// synchronously, on the calling (originating) processor's goroutine,
// while the bus lock is held. The two still cannot interleave on the
// same cache's state because both paths take Controller.mu, and the
// front actor releases mu before calling into the bus (spec.md §4.4's
// "the lock must be released across wait on the bus, or deadlock
// occurs").
package controller

import (
	"sync"

	"github.com/kolkov/cachesim/internal/cachesim/addr"
	"github.com/kolkov/cachesim/internal/cachesim/bus"
	"github.com/kolkov/cachesim/internal/cachesim/cache"
	"github.com/kolkov/cachesim/internal/cachesim/config"
	"github.com/kolkov/cachesim/internal/cachesim/diag"
	"github.com/kolkov/cachesim/internal/cachesim/moesi"
	"github.com/kolkov/cachesim/internal/cachesim/stats"
)

// Controller is one processor's Cache Controller.
type Controller struct {
	pid   int
	cfg   config.Config
	bus   *bus.Bus
	stats *stats.Sink

	mu    sync.Mutex
	array *cache.Array
}

// New builds a Controller for pid, backed by a fresh empty Cache Array,
// and registers it with b as pid's snoop responder.
func New(pid int, cfg config.Config, b *bus.Bus, sink *stats.Sink) *Controller {
	c := &Controller{
		pid:   pid,
		cfg:   cfg,
		bus:   b,
		stats: sink,
		array: cache.NewArray(),
	}
	b.Attach(pid, c)
	return c
}

// Access serves one processor request (spec.md §4.4's front actor) and
// returns the number of cycles it cost: 1 for the local lookup/update,
// plus whatever the bus and any eviction writeback charged.
func (c *Controller) Access(op moesi.Op, address uint32) uint64 {
	tag, index, _ := addr.Decode(address)
	set := c.array.SetFor(index)

	c.mu.Lock()
	pos, ok := set.Lookup(tag)
	if ok {
		cycles := c.serveHit(set, pos, address, op)
		c.stats.RecordHit(c.pid, op)
		return cycles
	}
	c.mu.Unlock()

	cycles := c.serveMiss(set, tag, address, op)
	c.stats.RecordMiss(c.pid, op)
	return cycles
}

// serveHit runs the processor-event transition for a local hit.
// Controller.mu must be held on entry; it is released before returning.
func (c *Controller) serveHit(set *cache.Set, pos int, address uint32, op moesi.Op) uint64 {
	var cycles uint64 = 1
	line := set.Line(pos)
	result := moesi.OnHit(line.State, op)

	if result.Needed {
		c.mu.Unlock()
		cycles += c.bus.BusUpgr(c.pid, address)
		c.mu.Lock()
	}

	set.SetState(pos, result.Next)
	set.PromoteHit(pos)
	c.mu.Unlock()
	return cycles
}

// serveMiss runs the miss path: issue a bus transaction, install the
// line, and charge any eviction writeback. Controller.mu must NOT be
// held on entry.
func (c *Controller) serveMiss(set *cache.Set, tag uint32, address uint32, op moesi.Op) uint64 {
	var cycles uint64 = 1

	kind := moesi.MissBusKind(op)
	var peerHasLine bool
	var latency uint64
	switch kind {
	case moesi.BusRdX:
		peerHasLine, latency = c.bus.BusRdX(c.pid, address)
	default:
		peerHasLine, latency = c.bus.BusRd(c.pid, address)
	}
	cycles += latency

	newState := moesi.InstallState(kind, peerHasLine)
	if err := diag.CheckInstall(address, c.pid, kind, newState, peerHasLine); err != nil {
		panic(err)
	}

	c.mu.Lock()
	evicted := set.InstallMiss(tag, newState)
	c.mu.Unlock()

	if evicted != nil && evicted.Line.State.Dirty() {
		cycles += c.cfg.MemLatency
	}
	return cycles
}

// Snoop implements bus.Snooper: it is invoked by the Bus, synchronously
// and on the originating processor's goroutine, for every transaction
// this controller did not originate.
func (c *Controller) Snoop(kind moesi.BusKind, address uint32) bool {
	tag, index, _ := addr.Decode(address)
	set := c.array.SetFor(index)

	c.mu.Lock()
	defer c.mu.Unlock()

	pos, ok := set.Lookup(tag)
	if !ok {
		return false
	}
	line := set.Line(pos)
	result := moesi.OnSnoop(line.State, kind)
	set.SetState(pos, result.Next)
	return true
}

// StateOf reports the current coherence state of address in this
// cache, for diagnostics and tests. Returns moesi.Invalid if absent.
func (c *Controller) StateOf(address uint32) moesi.State {
	tag, index, _ := addr.Decode(address)
	set := c.array.SetFor(index)

	c.mu.Lock()
	defer c.mu.Unlock()

	pos, ok := set.Lookup(tag)
	if !ok {
		return moesi.Invalid
	}
	return set.Line(pos).State
}
