package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/neogan/sre-toolkit/internal/chaos-load/model"
	"github.com/neogan/sre-toolkit/internal/chaos-load/shaper"
)

const cancelPollInterval = 50 * time.Millisecond

// runWorkers drives num_requests attempts through a fixed pool of
// `concurrency` goroutines, each pulling the next unclaimed index in turn.
// This is the sole admission-control mechanism: exactly `concurrency`
// goroutines exist, so at most `concurrency` HTTP sends are ever in flight -
// no separate semaphore is needed.
//
// For every enqueued index exactly one outcome is produced: either a
// RequestResult on the returned slice, or a cancellation-induced drop with
// nothing recorded.
func runWorkers(
	ctx context.Context,
	gen uint64,
	cfg model.LoadTestConfig,
	httpClient *http.Client,
	files *shaper.FileCache,
	sink EventSink,
	startedAt time.Time,
) ([]model.RequestResult, model.TestCounters) {
	total := cfg.NumRequests
	concurrency := cfg.ResolvedConcurrency()
	rateInterval := time.Duration(cfg.RateLimitInterval() * float64(time.Second))

	// Buffered to `total`: every attempt sends at most once, so this never
	// blocks a producer - the Go analogue of an unbounded channel whose
	// memory growth is bounded by num_requests.
	resultsCh := make(chan model.RequestResult, total)

	var counters runCounters
	var nextIdx atomic.Uint32
	var wg sync.WaitGroup

	for w := uint32(0); w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				idx := nextIdx.Add(1) - 1
				if idx >= total {
					return
				}
				attempt(ctx, gen, cfg, httpClient, files, &counters, sink, startedAt, total, resultsCh, rateInterval)
			}
		}()
	}

	wg.Wait()
	close(resultsCh)

	results := make([]model.RequestResult, 0, total)
	for r := range resultsCh {
		results = append(results, r)
	}
	return results, counters.snapshot()
}

// attempt runs the per-request lifecycle of §4.4: an optional rate-limit
// sleep, request construction, and a send raced against a periodic cancel
// poll. It produces at most one RequestResult.
func attempt(
	parent context.Context,
	gen uint64,
	cfg model.LoadTestConfig,
	httpClient *http.Client,
	files *shaper.FileCache,
	counters *runCounters,
	sink EventSink,
	startedAt time.Time,
	total uint32,
	resultsCh chan<- model.RequestResult,
	rateInterval time.Duration,
) {
	if cancelled(gen) {
		return
	}

	if rateInterval > 0 && sleepOrCancel(gen, rateInterval) {
		return
	}

	if cancelled(gen) {
		return
	}

	reqCtx, cancelReq := context.WithCancel(parent)
	defer cancelReq()

	req, err := shaper.Build(reqCtx, cfg, forceConnectionClose(counters), files)
	if err != nil {
		// A malformed config should have been caught at validation time;
		// surface it as a Request-class failure rather than panicking.
		recordAndEmit(counters, sink, startedAt, total, resultsCh, model.RequestResult{
			ErrorType:   model.ErrorRequest,
			Error:       strPtr(fmt.Sprintf("building request: %s", err)),
			TimestampMs: msSince(startedAt),
		})
		return
	}

	pollDone := make(chan struct{})
	go pollCancel(gen, pollDone, cancelReq)

	start := time.Now()
	resp, sendErr := httpClient.Do(req)
	duration := time.Since(start)
	close(pollDone)

	if sendErr != nil {
		if reqCtx.Err() == context.Canceled && cancelled(gen) {
			// Poll-triggered cancellation: drop silently, no result.
			return
		}
		errType, msg, isConnErr := classifyError(sendErr, float64(duration.Milliseconds()), cfg.DisableKeepAlive)
		recordAndEmit(counters, sink, startedAt, total, resultsCh, model.RequestResult{
			DurationMs:  float64(duration.Microseconds()) / 1000.0,
			Error:       &msg,
			ErrorType:   errType,
			TimestampMs: msSince(startedAt),
		}, isConnErr)
		return
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	result := model.RequestResult{
		Status:      uint16(resp.StatusCode),
		DurationMs:  float64(duration.Microseconds()) / 1000.0,
		Success:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		ErrorType:   model.ErrorNone,
		TimestampMs: msSince(startedAt),
	}
	if !result.Success {
		result.ErrorType = model.ErrorResponse
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		result.Error = &msg
	}

	recordAndEmit(counters, sink, startedAt, total, resultsCh, result)
}

func recordAndEmit(
	counters *runCounters,
	sink EventSink,
	startedAt time.Time,
	total uint32,
	resultsCh chan<- model.RequestResult,
	result model.RequestResult,
	isConnectionError ...bool,
) {
	connErr := len(isConnectionError) > 0 && isConnectionError[0]
	snapshot := counters.recordOutcome(result.Success, connErr)
	observeOutcome(result, connErr)

	select {
	case resultsCh <- result:
	default:
		// Receiver gone implies the run is being torn down; dropping here
		// is harmless since the channel is sized to never fill in the
		// ordinary case.
	}

	maybeEmit(sink, snapshot, total, startedAt, result.DurationMs)
}

// pollCancel checks cancelled(gen) every cancelPollInterval and cancels the
// in-flight request's context the moment it flips true. It exits as soon as
// the attempt signals completion via pollDone.
func pollCancel(gen uint64, done <-chan struct{}, cancel context.CancelFunc) {
	ticker := time.NewTicker(cancelPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if cancelled(gen) {
				cancel()
				return
			}
		}
	}
}

// sleepOrCancel sleeps for interval in cancelPollInterval-sized slices,
// returning true the moment cancelled(gen) becomes true.
func sleepOrCancel(gen uint64, interval time.Duration) bool {
	deadline := time.Now().Add(interval)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		slice := cancelPollInterval
		if remaining < slice {
			slice = remaining
		}
		time.Sleep(slice)
		if cancelled(gen) {
			return true
		}
	}
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

func strPtr(s string) *string { return &s }
