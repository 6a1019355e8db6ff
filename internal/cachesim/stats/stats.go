// Package stats is the Statistics Sink of spec.md §6: per-pid
// read/write hit/miss counters, accumulated concurrently as processor
// front-ends issue accesses.
//
// Grounded on the teacher's internal/race/detector.Sampler pattern: a
// fixed-size slice of per-participant counters updated with
// sync/atomic, snapshotted on demand rather than guarded by a mutex.
package stats

import (
	"sync/atomic"

	"github.com/kolkov/cachesim/internal/cachesim/moesi"
)

// PerProc is a point-in-time snapshot of one processor's access counts.
type PerProc struct {
	ReadHit   uint64
	ReadMiss  uint64
	WriteHit  uint64
	WriteMiss uint64
}

// Reads is the total number of PrRd accesses recorded (T3).
func (p PerProc) Reads() uint64 { return p.ReadHit + p.ReadMiss }

// Writes is the total number of PrWr accesses recorded (T3).
func (p PerProc) Writes() uint64 { return p.WriteHit + p.WriteMiss }

type counters struct {
	readHit   uint64
	readMiss  uint64
	writeHit  uint64
	writeMiss uint64
}

// Sink accumulates per-pid access counters. Create one with New sized
// for the simulation's processor count.
type Sink struct {
	perPID []counters
}

// New allocates a Sink for n processors.
func New(n int) *Sink {
	return &Sink{perPID: make([]counters, n)}
}

// RecordHit counts a local hit for pid on the given operation.
func (s *Sink) RecordHit(pid int, op moesi.Op) {
	c := &s.perPID[pid]
	if op == moesi.PrWr {
		atomic.AddUint64(&c.writeHit, 1)
		return
	}
	atomic.AddUint64(&c.readHit, 1)
}

// RecordMiss counts a local miss for pid on the given operation.
func (s *Sink) RecordMiss(pid int, op moesi.Op) {
	c := &s.perPID[pid]
	if op == moesi.PrWr {
		atomic.AddUint64(&c.writeMiss, 1)
		return
	}
	atomic.AddUint64(&c.readMiss, 1)
}

// Snapshot returns pid's current counters.
func (s *Sink) Snapshot(pid int) PerProc {
	c := &s.perPID[pid]
	return PerProc{
		ReadHit:   atomic.LoadUint64(&c.readHit),
		ReadMiss:  atomic.LoadUint64(&c.readMiss),
		WriteHit:  atomic.LoadUint64(&c.writeHit),
		WriteMiss: atomic.LoadUint64(&c.writeMiss),
	}
}

// NumProcs returns the number of pids this sink was sized for.
func (s *Sink) NumProcs() int { return len(s.perPID) }
