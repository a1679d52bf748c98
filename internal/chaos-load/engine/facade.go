// Package engine is the core of the load-test engine: the Cancellation
// Core, the bounded-concurrency Worker Pipeline, the Adaptive Pool
// Governor, the Progress Emitter and the Entry Facade that ties them
// together with the Client Factory and Request Shaper.
package engine

import (
	"context"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/neogan/sre-toolkit/internal/chaos-load/client"
	"github.com/neogan/sre-toolkit/internal/chaos-load/model"
	"github.com/neogan/sre-toolkit/internal/chaos-load/shaper"
	"github.com/neogan/sre-toolkit/internal/chaos-load/stats"
	"github.com/neogan/sre-toolkit/pkg/logging"
)

const defaultWorkerThreads = 4

var tracer = otel.Tracer("chaos-load/engine")

// AvailableCPUs returns host parallelism, or 4 when that cannot be
// determined.
func AvailableCPUs() uint32 {
	if n := runtime.NumCPU(); n > 0 {
		return uint32(n)
	}
	return defaultWorkerThreads
}

// RunLoadTest validates cfg, builds the HTTP client, drives the worker
// pipeline to completion and returns the reduced statistics report.
func RunLoadTest(ctx context.Context, cfg model.LoadTestConfig, sink EventSink) (*model.LoadTestStats, error) {
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	logger := logging.WithComponent("chaos-load-engine")

	ctx, span := tracer.Start(ctx, "run_load_test")
	defer span.End()

	concurrency := cfg.ResolvedConcurrency()
	span.SetAttributes(
		attribute.String("url", cfg.URL),
		attribute.Int64("num_requests", int64(cfg.NumRequests)),
		attribute.Int64("concurrency", int64(concurrency)),
	)

	gen := beginRun()

	httpClient, err := client.Build(cfg, concurrency)
	if err != nil {
		return nil, err
	}

	files, err := shaper.PreloadFiles(cfg.FormFields)
	if err != nil {
		return nil, err
	}

	restore := adjustWorkerThreads(cfg.WorkerThreads)
	defer restore()

	logger.Info().
		Str("url", cfg.URL).
		Uint32("num_requests", cfg.NumRequests).
		Uint32("concurrency", concurrency).
		Msg("starting load test")

	startedAt := time.Now()
	results, finalCounters := runWorkers(ctx, gen, cfg, httpClient, files, sink, startedAt)
	totalTime := time.Since(startedAt)

	logger.Info().
		Int("results", len(results)).
		Dur("elapsed", totalTime).
		Msg("load test finished")

	report := stats.Compute(results, totalTime)
	report.ExternalMetric = correlateMetrics(ctx, cfg, finalCounters, startedAt)
	return &report, nil
}

// CancelLoadTest sets the process-wide cancel flag and notifies the host.
// It is idempotent and acts on whichever run is current; it does not touch
// the generation, so a run started afterwards is unaffected.
func CancelLoadTest(sink EventSink) {
	requestCancel()
	if sink != nil {
		sink.Cancelled()
	}
}

func validate(cfg *model.LoadTestConfig) error {
	if cfg.NumRequests == 0 {
		return model.InvalidConfig("num_requests must be greater than 0")
	}
	if cfg.URL == "" {
		return model.InvalidConfig("url must not be empty")
	}
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return model.InvalidConfig("url does not parse: %s", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return model.InvalidConfig("url scheme must be http or https, got %q", parsed.Scheme)
	}

	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	}
	cfg.Method = strings.ToUpper(cfg.Method)
	if !shaper.AllowedMethods[cfg.Method] {
		return model.InvalidConfig("unsupported method %q", cfg.Method)
	}

	return nil
}

// adjustWorkerThreads is the Go analogue of "run the remainder on a
// freshly-built multi-threaded executor sized to worker_threads": Go has a
// single process-wide scheduler rather than swappable executors, so
// GOMAXPROCS is the nearest knob. Only one run executes at a time, so
// adjusting and restoring it around the run is safe.
func adjustWorkerThreads(workerThreads uint32) func() {
	if workerThreads == 0 || workerThreads == AvailableCPUs() {
		return func() {}
	}
	previous := runtime.GOMAXPROCS(int(workerThreads))
	return func() { runtime.GOMAXPROCS(previous) }
}
