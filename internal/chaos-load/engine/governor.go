package engine

const (
	minRequestsForAdaptive            = 50
	connectionErrorThresholdPercent   = 5
)

// forceConnectionClose reads the run's counters and decides whether the
// Adaptive Pool Governor should force Connection: close on the next
// request. It is read anew on every request: it latches on naturally once
// the ratio crosses the threshold, but may clear again if the ratio later
// drops - there is no cooldown, by design (see DESIGN.md open question).
func forceConnectionClose(c *runCounters) bool {
	return degraded(c.snapshot())
}
