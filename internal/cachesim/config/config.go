// Package config resolves the simulator's tunable parameters: the
// latency model left as a parametrized Open Question by spec.md §9, and
// the processor count. Cache geometry (associativity, set count, line
// size) is not tunable here — see internal/cachesim/addr's doc comment
// for why those are compile-time constants instead.
//
// Three layers are merged, lowest to highest priority: compiled-in
// defaults, an optional JSON-with-comments file, then command-line
// flags. This mirrors calvinalkan-agent-task's config loader, which
// this package is grounded on.
package config

import (
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"
)

// Config holds every tunable parameter of a simulation run.
type Config struct {
	// MemLatency is the number of cycles charged when a bus request is
	// served by main memory rather than a peer cache (spec.md §4.5).
	MemLatency uint64 `json:"memLatency"`
	// SnoopHitLatency is the number of cycles charged when a peer cache
	// supplies the data instead of memory.
	SnoopHitLatency uint64 `json:"snoopHitLatency"`
	// Processors is the number of simulated cores. Zero means "take the
	// count from the trace"; any other value must match the trace file's
	// own processor count; see internal/cachesim/trace.
	Processors int `json:"processors,omitempty"`
}

// Default returns the configuration implied directly by spec.md: a
// 100-cycle memory latency and a 1-cycle snoop-hit latency (§9's
// resolved Open Question).
func Default() Config {
	return Config{
		MemLatency:      100,
		SnoopHitLatency: 1,
	}
}

// Load parses a JSON-with-comments configuration file (using hujson so
// operators can annotate their config) and merges it over Default().
// A missing field in data keeps the default value.
func Load(data []byte) (Config, error) {
	cfg := Default()
	standard, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	// Fields absent from the file are left at their Default() value:
	// json.Unmarshal only overwrites fields present in the input.
	if err := json.Unmarshal(standard, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// Validate reports an error if the configuration cannot produce a
// meaningful simulation.
func (c Config) Validate() error {
	if c.Processors < 0 {
		return fmt.Errorf("config: processors must be >= 0, got %d", c.Processors)
	}
	return nil
}
