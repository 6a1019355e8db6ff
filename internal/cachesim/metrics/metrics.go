// Package metrics exposes a simulation run's bus and cache counters as
// Prometheus metrics, for the optional `-metrics-addr` endpoint
// (SPEC_FULL.md §11). Nothing in this package sits on the per-access
// hot path: it is populated once, from the final sim.Result, after a
// run completes.
package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registered collectors for one simulation run.
type Metrics struct {
	registry *prometheus.Registry

	busTransactions *prometheus.CounterVec
	snoopHits       prometheus.Counter
	snoopMisses     prometheus.Counter
	waits           prometheus.Counter
	runtimeCycles   prometheus.Gauge
}

// New builds a fresh, independently-registered Metrics instance. Using
// a private registry (rather than the global default one) keeps
// repeated runs within the same process — as cmd/cachesim's tests do —
// from colliding on duplicate registration.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		busTransactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cachesim",
			Name:      "bus_transactions_total",
			Help:      "Bus transactions issued, by originating pid and transaction kind.",
		}, []string{"pid", "kind"}),
		snoopHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cachesim",
			Name:      "snoop_hits_total",
			Help:      "Bus transactions served by a peer cache.",
		}),
		snoopMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cachesim",
			Name:      "snoop_misses_total",
			Help:      "Bus transactions served by main memory.",
		}),
		waits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cachesim",
			Name:      "bus_waits_total",
			Help:      "Failed bus-lock acquisition attempts across the run.",
		}),
		runtimeCycles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cachesim",
			Name:      "total_runtime_cycles",
			Help:      "Cycles elapsed on the slowest processor when the run finished.",
		}),
	}
	m.registry.MustRegister(m.busTransactions, m.snoopHits, m.snoopMisses, m.waits, m.runtimeCycles)
	return m
}

// Registry returns the collector registry backing this Metrics, for
// wiring into an HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveCore records one core's final bus-transaction counts.
func (m *Metrics) ObserveCore(pid int, busRd, busRdX, busUpgr uint64) {
	pidLabel := itoa(pid)
	m.busTransactions.WithLabelValues(pidLabel, "BusRd").Add(float64(busRd))
	m.busTransactions.WithLabelValues(pidLabel, "BusRdX").Add(float64(busRdX))
	m.busTransactions.WithLabelValues(pidLabel, "BusUpgr").Add(float64(busUpgr))
}

// ObserveGlobal records the arbiter-wide counters and final runtime.
func (m *Metrics) ObserveGlobal(snoopHits, snoopMisses, waits, totalRuntime uint64) {
	m.snoopHits.Add(float64(snoopHits))
	m.snoopMisses.Add(float64(snoopMisses))
	m.waits.Add(float64(waits))
	m.runtimeCycles.Set(float64(totalRuntime))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Serve blocks, answering /metrics on addr with reg's collectors, until
// ctx is cancelled. A nil error on return means ctx was cancelled, not
// that nothing went wrong with the listener.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return server.Close()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
