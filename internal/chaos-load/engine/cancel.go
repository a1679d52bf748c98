package engine

import (
	"sync/atomic"
)

// cancelFlag and generation are the only two pieces of global mutable state
// in the engine. The host cancels by name (cancel_load_test), not by
// handle, so a generation counter - rather than a per-run token object - is
// how a late cancel from run k-1 is kept from bleeding into run k.
var (
	cancelFlag atomic.Bool
	generation atomic.Uint64
	lastEmitMs atomic.Int64
)

// beginRun increments the generation, resets the cancel flag and the
// progress-throttle clock, and returns the new generation for the caller to
// capture and pass to every cancellation check in this run.
func beginRun() uint64 {
	gen := generation.Add(1)
	cancelFlag.Store(false)
	lastEmitMs.Store(0)
	return gen
}

// cancelled reports whether the process-wide cancel flag is set AND the
// active generation still matches gen. Once a newer run has begun,
// cancelled(gen) for the old generation is permanently false.
func cancelled(gen uint64) bool {
	return cancelFlag.Load() && generation.Load() == gen
}

// requestCancel sets the process-wide cancel flag. It does not touch the
// generation, so it is idempotent and acts on whichever run is current.
func requestCancel() {
	cancelFlag.Store(true)
}
