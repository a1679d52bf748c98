package engine

import (
	"sync/atomic"

	"github.com/neogan/sre-toolkit/internal/chaos-load/model"
)

// runCounters are the per-run atomic totals. The only consumer that needs a
// consistent view is the final snapshot taken after every worker has
// quiesced, so the updates carry no synchronization obligation beyond their
// own atomicity.
type runCounters struct {
	completed        atomic.Uint32
	successful       atomic.Uint32
	failed           atomic.Uint32
	connectionErrors atomic.Uint32
}

func (c *runCounters) recordOutcome(success, isConnectionError bool) model.TestCounters {
	completed := c.completed.Add(1)
	if success {
		c.successful.Add(1)
	} else {
		c.failed.Add(1)
	}
	if isConnectionError {
		c.connectionErrors.Add(1)
	}
	return model.TestCounters{
		Completed:        completed,
		Successful:       c.successful.Load(),
		Failed:           c.failed.Load(),
		ConnectionErrors: c.connectionErrors.Load(),
	}
}

func (c *runCounters) snapshot() model.TestCounters {
	return model.TestCounters{
		Completed:        c.completed.Load(),
		Successful:       c.successful.Load(),
		Failed:           c.failed.Load(),
		ConnectionErrors: c.connectionErrors.Load(),
	}
}
