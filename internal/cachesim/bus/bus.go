// Package bus implements the snoopy Bus Arbiter shared by every Cache
// Controller (spec.md §4.5).
//
// The arbiter serializes transactions behind a single lock, broadcasts
// each one to every peer's snoop responder, aggregates the replies, and
// charges latency. Its lock-registry shape — one shared struct guarded
// by a mutex, lazily wired to per-participant state, exposing atomic
// counters for monitoring — is grounded on the teacher's
// internal/race/syncshadow (a shared, mutex-protected registry of
// per-object state) and internal/race/detector.Sampler (atomic counters
// with a consistent snapshot method).
package bus

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/kolkov/cachesim/internal/cachesim/config"
	"github.com/kolkov/cachesim/internal/cachesim/moesi"
)

// Snooper is implemented by each Cache Controller to react to a bus
// transaction it did not originate (spec.md §4.4's Snoop actor).
//
// Snoop must not block on the bus itself — it runs while the Bus holds
// its lock, with every other peer's Snoop call serialized around it.
type Snooper interface {
	// Snoop applies the transaction to this cache's own array and
	// reports whether it held a valid copy of the line.
	Snoop(kind moesi.BusKind, address uint32) (hasLine bool)
}

// Counters is a point-in-time snapshot of one processor's bus usage.
type Counters struct {
	BusRd   uint64
	BusRdX  uint64
	BusUpgr uint64
}

// GlobalCounters is a point-in-time snapshot of arbiter-wide statistics
// (spec.md §4.5).
type GlobalCounters struct {
	Waits       uint64
	SnoopHits   uint64
	SnoopMisses uint64
}

// Bus is the shared memory bus. Create one with New, register every
// cache's Snooper with Attach (in pid order — Attach(pid) must be called
// for every pid before any BusRd/BusRdX/BusUpgr call), then issue
// transactions concurrently from the cache controllers' front actors.
type Bus struct {
	cfg config.Config

	mu    sync.Mutex
	peers []Snooper // peers[pid], nil until Attach(pid, ...)

	perPID []perPIDCounters // one entry per pid, atomically updated

	waits       uint64
	snoopHits   uint64
	snoopMisses uint64
}

type perPIDCounters struct {
	busRd   uint64
	busRdX  uint64
	busUpgr uint64
}

// New creates a bus sized for n processors, using cfg's latency model.
func New(cfg config.Config, n int) *Bus {
	return &Bus{
		cfg:    cfg,
		peers:  make([]Snooper, n),
		perPID: make([]perPIDCounters, n),
	}
}

// Attach registers pid's snoop responder. Must be called once per pid
// before the simulation starts issuing transactions.
func (b *Bus) Attach(pid int, s Snooper) {
	b.peers[pid] = s
}

// BusRd issues a read-miss transaction (spec.md §4.5) and returns
// (sharedByPeer, latencyCycles). The caller is responsible for charging
// latencyCycles to its own cycle count.
func (b *Bus) BusRd(pid int, address uint32) (shared bool, latency uint64) {
	return b.transact(pid, moesi.BusRd, address)
}

// BusRdX issues a write-miss (read-for-ownership) transaction.
func (b *Bus) BusRdX(pid int, address uint32) (shared bool, latency uint64) {
	return b.transact(pid, moesi.BusRdX, address)
}

// BusUpgr issues an invalidate-peers transaction for a write hit in S or
// O. It always charges SnoopHitLatency (spec.md §4.5: "no data
// transfer") and returns only that latency; unlike BusRd/BusRdX it does
// not report whether any peer held the line.
func (b *Bus) BusUpgr(pid int, address uint32) (latency uint64) {
	_, latency = b.transact(pid, moesi.BusUpgr, address)
	return latency
}

// transact implements the six numbered steps of spec.md §4.5.
func (b *Bus) transact(pid int, kind moesi.BusKind, address uint32) (shared bool, latency uint64) {
	b.acquire()
	defer b.mu.Unlock()

	shared = b.broadcast(pid, kind, address)

	switch kind {
	case moesi.BusUpgr:
		latency = b.cfg.SnoopHitLatency
	default:
		if shared {
			latency = b.cfg.SnoopHitLatency
		} else {
			latency = b.cfg.MemLatency
		}
	}

	b.recordTransaction(pid, kind, shared)
	return shared, latency
}

// acquire takes the bus lock, counting every failed attempt as a wait
// cycle (spec.md §4.5, step 1). This is a cooperative spin-lock: a
// failed TryLock yields the processor (runtime.Gosched, this
// simulator's stand-in for the SystemC "wait one clock edge" suspension
// point — see SPEC_FULL.md §9's note on dropping hardware-description
// idioms in favor of plain mutex semantics) and retries.
func (b *Bus) acquire() {
	for !b.mu.TryLock() {
		atomic.AddUint64(&b.waits, 1)
		runtime.Gosched()
	}
}

// broadcast publishes the transaction to every peer except pid and
// aggregates their HasLine replies with OR (spec.md §4.5, steps 2-4).
// Peers are visited in pid order, which fixes the reply-collection order
// the spec's Determinism clause requires when the aggregate itself isn't
// order-independent; OR happens to be order-independent here, but a
// fixed order keeps per-peer side effects (state transitions) reproducible
// too.
func (b *Bus) broadcast(originator int, kind moesi.BusKind, address uint32) bool {
	shared := false
	for peerPID, peer := range b.peers {
		if peerPID == originator || peer == nil {
			continue
		}
		if peer.Snoop(kind, address) {
			shared = true
		}
	}
	return shared
}

func (b *Bus) recordTransaction(pid int, kind moesi.BusKind, shared bool) {
	c := &b.perPID[pid]
	switch kind {
	case moesi.BusRd:
		atomic.AddUint64(&c.busRd, 1)
	case moesi.BusRdX:
		atomic.AddUint64(&c.busRdX, 1)
	case moesi.BusUpgr:
		atomic.AddUint64(&c.busUpgr, 1)
	}

	// BusUpgr never consults memory or a peer for data, so it is not a
	// snoop-hit/miss candidate (spec.md T5).
	if kind == moesi.BusUpgr {
		return
	}
	if shared {
		atomic.AddUint64(&b.snoopHits, 1)
	} else {
		atomic.AddUint64(&b.snoopMisses, 1)
	}
}

// Counters returns a snapshot of pid's transaction counts.
func (b *Bus) Counters(pid int) Counters {
	c := &b.perPID[pid]
	return Counters{
		BusRd:   atomic.LoadUint64(&c.busRd),
		BusRdX:  atomic.LoadUint64(&c.busRdX),
		BusUpgr: atomic.LoadUint64(&c.busUpgr),
	}
}

// GlobalCounters returns a snapshot of arbiter-wide statistics.
func (b *Bus) GlobalCounters() GlobalCounters {
	return GlobalCounters{
		Waits:       atomic.LoadUint64(&b.waits),
		SnoopHits:   atomic.LoadUint64(&b.snoopHits),
		SnoopMisses: atomic.LoadUint64(&b.snoopMisses),
	}
}
