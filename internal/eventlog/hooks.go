package eventlog

import (
	"time"

	"github.com/rzbill/ringlog/internal/ringbuf"
)

// Commit describes one insertion as seen by a Medium.
type Commit struct {
	// Slot is the physical slot receiving Record.
	Slot int
	// Record is the newly committed line.
	Record []byte
	// Evicted is set when Record overwrites the oldest live record.
	Evicted bool
	// Live lists the records that will be live after the commit, oldest first.
	Live [][]byte
}

// Medium mirrors the ring into backing storage. Calls are made with the log
// mutex held.
type Medium interface {
	Commit(c Commit) error
	Close() error
}

// EvictHook receives every record pushed out of the ring. Implementations own
// the record from then on.
type EvictHook interface {
	Evicted(rec ringbuf.Record)
}

type noopEvict struct{}

func (noopEvict) Evicted(ringbuf.Record) {}

// MetricsHook is a minimal hook surface for log observations.
type MetricsHook interface {
	ObserveAppend(elapsed time.Duration, bytes int, evicted bool)
	ObserveRead(elapsed time.Duration, bytes int)
	ObserveAppendError()
}

// NoopMetrics is used when no metrics hook is provided.
type NoopMetrics struct{}

func (NoopMetrics) ObserveAppend(time.Duration, int, bool) {}
func (NoopMetrics) ObserveRead(time.Duration, int)         {}
func (NoopMetrics) ObserveAppendError()                    {}
