// Package stats reduces the raw per-request RequestResults of a run into a
// stable LoadTestStats report: a single forward pass accumulates totals,
// then a handful of sorted-once derivations build the histogram,
// percentiles, throughput/latency/concurrency time series and the request
// timeline.
package stats

import (
	"cmp"
	"math"
	"sort"
	"time"

	"github.com/neogan/sre-toolkit/internal/chaos-load/model"
)

const (
	histogramBuckets       = 10
	throughputBucketsMin   = 5
	throughputBucketsMax   = 30
	latencySampleTarget    = 400
	concurrencySampleMin   = 20
	concurrencySampleMax   = 200
	timelineSampleTarget   = 500
	errorLogsMax           = 1000
	statusMapInitCapacity  = 8
)

// Compute runs the full statistics pipeline over one run's results.
// totalTime is the wall-clock duration of the run (first request start to
// last channel drain).
func Compute(results []model.RequestResult, totalTime time.Duration) model.LoadTestStats {
	n := len(results)
	totalTimeSecs := totalTime.Seconds()

	var sum, min, max float64
	var successCount, failCount uint32
	statusCodes := make(map[uint16]uint32, statusMapInitCapacity)
	errorLogs := make([]string, 0, minInt(n, errorLogsMax))

	for i, r := range results {
		if r.Success {
			successCount++
		} else {
			failCount++
			if len(errorLogs) < errorLogsMax && r.Error != nil {
				errorLogs = append(errorLogs, *r.Error)
			}
		}
		statusCodes[r.Status]++

		d := r.DurationMs
		sum += d
		if i == 0 || d < min {
			min = d
		}
		if i == 0 || d > max {
			max = d
		}
	}

	avg := 0.0
	if n > 0 {
		avg = sum / float64(n)
	}

	rps := 0.0
	if totalTimeSecs > 0 {
		rps = float64(n) / totalTimeSecs
	}

	durations := make([]float64, n)
	for i, r := range results {
		durations[i] = r.DurationMs
	}

	idxByTimestamp := sortedIndices(n, func(i, j int) bool {
		return cmp.Compare(results[i].TimestampMs, results[j].TimestampMs) < 0
	})

	return model.LoadTestStats{
		TotalRequests:       uint32(n),
		Successful:          successCount,
		Failed:              failCount,
		AvgResponseMs:       avg,
		MinResponseMs:       min,
		MaxResponseMs:       max,
		RPS:                 rps,
		Histogram:           histogram(durations, min, max),
		Percentiles:         percentiles(durations),
		StatusCodes:         statusCodeCounts(statusCodes),
		Results:             results,
		ThroughputOverTime:  throughputOverTime(results, idxByTimestamp, totalTimeSecs),
		LatencyOverTime:     latencyOverTime(results, idxByTimestamp),
		ConcurrencyOverTime: concurrencyOverTime(results, totalTimeSecs),
		RequestTimeline:     requestTimeline(results),
		ErrorLogs:           errorLogs,
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func sortedIndices(n int, less func(i, j int) bool) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return less(idx[a], idx[b]) })
	return idx
}

func histogram(durations []float64, min, max float64) []model.HistogramBucket {
	buckets := make([]model.HistogramBucket, histogramBuckets)
	width := (max - min) / float64(histogramBuckets)

	for i := 0; i < histogramBuckets; i++ {
		bMin := min + float64(i)*width
		bMax := min + float64(i+1)*width
		if i == histogramBuckets-1 {
			bMax = max
		}
		buckets[i] = model.HistogramBucket{Min: bMin, Max: bMax}
	}

	if len(durations) == 0 {
		return buckets
	}

	if max == min {
		buckets[0].Count = uint32(len(durations))
		return buckets
	}

	for _, d := range durations {
		idx := int((d - min) / width)
		if idx < 0 {
			idx = 0
		}
		if idx > histogramBuckets-1 {
			idx = histogramBuckets - 1
		}
		buckets[idx].Count++
	}
	return buckets
}

func percentiles(durations []float64) model.PercentileSet {
	sorted := append([]float64(nil), durations...)
	sort.Slice(sorted, func(i, j int) bool { return cmp.Compare(sorted[i], sorted[j]) < 0 })

	return model.PercentileSet{
		P10: percentileAt(sorted, 10),
		P25: percentileAt(sorted, 25),
		P50: percentileAt(sorted, 50),
		P75: percentileAt(sorted, 75),
		P90: percentileAt(sorted, 90),
		P95: percentileAt(sorted, 95),
		P99: percentileAt(sorted, 99),
	}
}

func percentileAt(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Round(p / 100 * float64(n-1)))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}

func statusCodeCounts(counts map[uint16]uint32) []model.StatusCodeCount {
	out := make([]model.StatusCodeCount, 0, len(counts))
	for code, count := range counts {
		out = append(out, model.StatusCodeCount{Code: code, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	return out
}

func throughputOverTime(results []model.RequestResult, idxByTimestamp []int, totalTimeSecs float64) []model.ThroughputPoint {
	buckets := clampInt(int(math.Floor(totalTimeSecs*10)), throughputBucketsMin, throughputBucketsMax)
	bucketWidth := 0.0
	if buckets > 0 {
		bucketWidth = totalTimeSecs / float64(buckets)
	}

	inBucket := make([]int, buckets)
	for _, idx := range idxByTimestamp {
		ts := results[idx].TimestampMs / 1000.0
		b := 0
		if bucketWidth > 0 {
			b = int(ts / bucketWidth)
			if b >= buckets {
				b = buckets - 1
			}
			if b < 0 {
				b = 0
			}
		}
		inBucket[b]++
	}

	points := make([]model.ThroughputPoint, buckets)
	cumulative := 0
	for i := 0; i < buckets; i++ {
		cumulative += inBucket[i]
		rps := 0.0
		if bucketWidth > 0 {
			rps = float64(inBucket[i]) / bucketWidth
		}
		points[i] = model.ThroughputPoint{
			BucketEndSecs:       float64(i+1) * bucketWidth,
			CompletedCumulative: uint32(cumulative),
			RPS:                 rps,
		}
	}
	return points
}

func latencyOverTime(results []model.RequestResult, idxByTimestamp []int) []model.LatencyPoint {
	n := len(idxByTimestamp)
	if n == 0 {
		return nil
	}
	stride := maxInt(1, n/latencySampleTarget)

	points := make([]model.LatencyPoint, 0, n/stride+2)
	for i, idx := range idxByTimestamp {
		if i%stride == 0 {
			points = append(points, model.LatencyPoint{
				Sequence:    uint32(i + 1),
				LatencyMs:   results[idx].DurationMs,
				TimestampMs: results[idx].TimestampMs,
			})
		}
	}
	if last := n - 1; last%stride != 0 {
		idx := idxByTimestamp[last]
		points = append(points, model.LatencyPoint{
			Sequence:    uint32(last + 1),
			LatencyMs:   results[idx].DurationMs,
			TimestampMs: results[idx].TimestampMs,
		})
	}
	return points
}

type concurrencyEvent struct {
	timeSecs float64
	isStart  bool
}

func concurrencyOverTime(results []model.RequestResult, totalTimeSecs float64) []model.ConcurrencyPoint {
	events := make([]concurrencyEvent, 0, 2*len(results))
	for _, r := range results {
		end := r.TimestampMs / 1000.0
		start := end - r.DurationMs/1000.0
		if start < 0 {
			start = 0
		}
		events = append(events, concurrencyEvent{timeSecs: start, isStart: true})
		events = append(events, concurrencyEvent{timeSecs: end, isStart: false})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return cmp.Compare(events[i].timeSecs, events[j].timeSecs) < 0
	})

	samples := clampInt(int(math.Floor(totalTimeSecs*10)), concurrencySampleMin, concurrencySampleMax)
	points := make([]model.ConcurrencyPoint, samples)

	running := int32(0)
	eventIdx := 0
	for i := 0; i < samples; i++ {
		sampleTime := (float64(i) + 0.5) * (totalTimeSecs / float64(samples))
		for eventIdx < len(events) && events[eventIdx].timeSecs <= sampleTime {
			if events[eventIdx].isStart {
				running++
			} else {
				running--
				if running < 0 {
					running = 0
				}
			}
			eventIdx++
		}
		points[i] = model.ConcurrencyPoint{TimeSecs: sampleTime, Concurrency: running}
	}
	return points
}

func requestTimeline(results []model.RequestResult) []model.TimelinePoint {
	n := len(results)
	if n == 0 {
		return nil
	}

	startTimes := make([]float64, n)
	for i, r := range results {
		start := r.TimestampMs/1000.0 - r.DurationMs/1000.0
		if start < 0 {
			start = 0
		}
		startTimes[i] = start
	}

	idxByStart := sortedIndices(n, func(i, j int) bool {
		return cmp.Compare(startTimes[i], startTimes[j]) < 0
	})

	stride := maxInt(1, n/timelineSampleTarget)
	points := make([]model.TimelinePoint, 0, n/stride+2)
	for i, idx := range idxByStart {
		if i%stride == 0 {
			points = append(points, model.TimelinePoint{StartTimeSecs: startTimes[idx], Sequence: uint32(i + 1)})
		}
	}
	if last := n - 1; last%stride != 0 {
		idx := idxByStart[last]
		points = append(points, model.TimelinePoint{StartTimeSecs: startTimes[idx], Sequence: uint32(last + 1)})
	}
	return points
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
