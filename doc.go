// Package cachesim provides a cycle-accurate, multi-core MOESI data
// cache simulator.
//
// # Quick Start
//
// cachesim consumes a memory access trace and reports per-processor
// hit/miss counts, bus traffic, and execution latency for an N-core
// system in which each core has a private 8-way set-associative
// write-back cache, all sharing one MOESI-coherent memory bus:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/kolkov/cachesim"
//		"github.com/kolkov/cachesim/internal/cachesim/config"
//	)
//
//	func main() {
//		result, err := cachesim.Run(context.Background(), "trace.txt", config.Default())
//		if err != nil {
//			panic(err)
//		}
//		fmt.Print(cachesim.Render(result))
//	}
//
// # How It Works
//
// Each processor front-end pulls records from the trace and issues
// READ/WRITE accesses to its own Cache Controller. A local miss issues
// a BusRd or BusRdX transaction on the shared Bus Arbiter, which
// broadcasts it to every peer's snoop responder, aggregates their
// HasLine replies, and charges either a short peer-supplied latency or
// the longer main-memory latency. Every line transition — on hits,
// misses, and snoops alike — follows the MOESI table in
// internal/cachesim/moesi.
//
// # Compatibility
//
// cachesim has no CGO dependency and no platform-specific code; any
// Go 1.24+ toolchain and target supported by the standard library will
// build it.
package cachesim
