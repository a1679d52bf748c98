package engine

import "github.com/neogan/sre-toolkit/internal/chaos-load/model"

// EventSink is the host's one-way, best-effort event receiver. The host
// shell supplies an implementation when it invokes RunLoadTest/CancelLoadTest
// - the engine never assumes a particular transport (CLI stdout, an IPC
// bridge, a UI event bus, ...).
type EventSink interface {
	// Progress is called at most once per PROGRESS_THROTTLE_MS, plus a
	// guaranteed final call when the run completes.
	Progress(update model.ProgressUpdate)
	// Cancelled is called once per CancelLoadTest invocation.
	Cancelled()
}

// NoopSink discards every event. Useful for tests and callers that don't
// care about progress.
type NoopSink struct{}

func (NoopSink) Progress(model.ProgressUpdate) {}
func (NoopSink) Cancelled()                    {}
