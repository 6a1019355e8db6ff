package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/xid"
	flag "github.com/spf13/pflag"
	"github.com/sirupsen/logrus"

	"github.com/kolkov/cachesim"
	"github.com/kolkov/cachesim/internal/cachesim/config"
	"github.com/kolkov/cachesim/internal/cachesim/diag"
	"github.com/kolkov/cachesim/internal/cachesim/metrics"
	"github.com/kolkov/cachesim/internal/cachesim/report"
)

const usage = `Usage: cachesim [flags] <trace-file>

Flags:
  -config string         Path to a JSON(-with-comments) config file
  -mem-latency uint       Override Config.MemLatency (cycles charged on a memory-served miss)
  -snoop-latency uint     Override Config.SnoopHitLatency (cycles charged on a peer-served miss)
  -processors int         Override Config.Processors (must match the trace file's own pid count)
  -report-file string     Write the report to this path in addition to stdout
  -metrics-addr string    Serve Prometheus metrics on this address after the run (e.g. :9090)
  -verbose                Enable debug-level logging
`

// run is cmd/cachesim's testable entry point: pure function of argv and
// output streams, returning a process exit code, in the teacher's
// style of keeping main() a one-line os.Exit(run(...)) wrapper (see
// calvinalkan-agent-task/cmd/tk/main.go -> internal/cli.Run).
//
// A coherence-invariant violation (spec.md §7's second taxonomy) is fatal
// and signaled by a panic carrying a *diag.InvariantViolation all the way
// up from internal/cachesim/controller. internal/cachesim/sim recovers it
// once per processor goroutine and returns it as a normal error, but this
// defer is the last line of defense: it turns any InvariantViolation that
// still reaches here as a panic into the same bounded stderr diagnostic,
// instead of a raw Go stack trace, matching the teacher's
// reportOverflowsIfNeeded "print a clear, bounded diagnostic, then stop".
func run(args []string, stdout, stderr io.Writer) (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			if violation, ok := r.(*diag.InvariantViolation); ok {
				fmt.Fprintln(stderr, violation.Error())
			} else {
				fmt.Fprintf(stderr, "cachesim: fatal: %v\n", r)
			}
			exitCode = 1
		}
	}()

	log := logrus.New()
	log.SetOutput(stderr)

	flags := flag.NewFlagSet("cachesim", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	configPath := flags.String("config", "", "path to a JSON(-with-comments) config file")
	memLatency := flags.Uint64("mem-latency", 0, "override Config.MemLatency")
	snoopLatency := flags.Uint64("snoop-latency", 0, "override Config.SnoopHitLatency")
	processors := flags.Int("processors", 0, "override Config.Processors")
	reportFile := flags.String("report-file", "", "write the report to this path in addition to stdout")
	metricsAddr := flags.String("metrics-addr", "", "serve Prometheus metrics on this address after the run")
	verbose := flags.Bool("verbose", false, "enable debug-level logging")

	// pflag reads "-name" as a run of one-letter shorthands, and none are
	// defined here; rewrite every defined "-name" to "--name" so the
	// single-dash spelling shown in usage parses.
	args = append([]string(nil), args...)
	for i, a := range args {
		if a == "--" {
			break
		}
		if len(a) > 2 && a[0] == '-' && a[1] != '-' && flags.Lookup(a[1:]) != nil {
			args[i] = "-" + a
		}
	}

	if err := flags.Parse(args); err != nil {
		fmt.Fprint(stderr, usage)
		return 2
	}
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if flags.NArg() != 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	tracePath := flags.Arg(0)

	runID := xid.New().String()
	log.WithField("run_id", runID).WithField("trace", tracePath).Debug("loading configuration")

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("failed to load configuration")
		return 1
	}
	// Flags take precedence over the config file, which takes
	// precedence over Default(): only flags the caller actually set are
	// applied, via pflag's Changed rather than a zero-value check (0 is
	// a legitimate -processors or -mem-latency value).
	if flags.Changed("mem-latency") {
		cfg.MemLatency = *memLatency
	}
	if flags.Changed("snoop-latency") {
		cfg.SnoopHitLatency = *snoopLatency
	}
	if flags.Changed("processors") {
		cfg.Processors = *processors
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Error("invalid configuration")
		return 1
	}

	log.WithField("run_id", runID).Debug("starting simulation")
	start := time.Now()
	result, err := cachesim.Run(context.Background(), tracePath, cfg)
	if err != nil {
		var violation *diag.InvariantViolation
		if errors.As(err, &violation) {
			fmt.Fprintln(stderr, violation.Error())
		} else {
			log.WithError(err).Error("simulation failed")
		}
		return 1
	}
	log.WithFields(logrus.Fields{
		"run_id":     runID,
		"elapsed":    time.Since(start),
		"runtime":    result.TotalRuntime,
		"processors": len(result.Procs),
	}).Info("simulation complete")

	rendered := cachesim.Render(result)
	fmt.Fprint(stdout, rendered)

	if *reportFile != "" {
		if err := report.Persist(*reportFile, rendered); err != nil {
			log.WithError(err).Error("failed to persist report")
			return 1
		}
	}

	if *metricsAddr != "" {
		if err := serveMetrics(log, *metricsAddr, result); err != nil {
			log.WithError(err).Error("metrics server exited with error")
			return 1
		}
	}

	return 0
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := config.Load(data)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// serveMetrics publishes result's counters and blocks answering
// /metrics until the process receives an interrupt signal.
func serveMetrics(log *logrus.Logger, addr string, result *cachesim.Result) error {
	m := metrics.New()
	for _, p := range result.Procs {
		m.ObserveCore(p.PID, p.Bus.BusRd, p.Bus.BusRdX, p.Bus.BusUpgr)
	}
	m.ObserveGlobal(result.Global.SnoopHits, result.Global.SnoopMisses, result.Global.Waits, result.TotalRuntime)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("addr", addr).Info("serving metrics, press Ctrl-C to exit")
	return metrics.Serve(ctx, addr, m.Registry())
}
