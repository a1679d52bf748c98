package engine

import (
	"time"

	"github.com/neogan/sre-toolkit/internal/chaos-load/model"
)

const progressThrottleMs = 100

// maybeEmit builds and delivers a ProgressUpdate iff at least
// progressThrottleMs has passed since the last emitted update, or this is
// the final request of the run. A lost compare-and-swap race just means
// another goroutine's emit already satisfied the throttle window.
func maybeEmit(sink EventSink, counters model.TestCounters, total uint32, startedAt time.Time, latestResponseMs float64) {
	if sink == nil {
		return
	}

	now := time.Now()
	nowMs := now.UnixMilli()
	isFinal := counters.Completed == total

	last := lastEmitMs.Load()
	if !isFinal && nowMs-last < progressThrottleMs {
		return
	}
	if !lastEmitMs.CompareAndSwap(last, nowMs) && !isFinal {
		return
	}

	elapsed := now.Sub(startedAt).Seconds()
	rps := 0.0
	if elapsed > 0 {
		rps = float64(counters.Completed) / elapsed
	}

	sink.Progress(model.ProgressUpdate{
		Completed:            counters.Completed,
		Total:                total,
		Successful:           counters.Successful,
		Failed:               counters.Failed,
		CurrentRPS:           rps,
		ElapsedSecs:          elapsed,
		LatestResponseTimeMs: latestResponseMs,
	})
}
