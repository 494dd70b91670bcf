package eventlog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rzbill/ringlog/internal/errorx"
	"github.com/rzbill/ringlog/internal/ringbuf"
	logpkg "github.com/rzbill/ringlog/pkg/log"
)

// Options configures a Log.
type Options struct {
	// Capacity is the number of records retained. Zero selects ringbuf.DefaultCapacity.
	Capacity int
	// Medium optionally mirrors records to backing storage.
	Medium Medium
	// Evict receives records pushed out of the ring. Optional.
	Evict EvictHook
	// Metrics observes appends and reads. Optional.
	Metrics MetricsHook
	Logger  logpkg.Logger
}

// AppendResult reports what a successful Append did.
type AppendResult struct {
	// Slot is the physical slot that received the record.
	Slot int
	// Evicted is set when the oldest record was pushed out.
	Evicted bool
	// TotalSize is the store size after the commit.
	TotalSize uint64
}

// Log is the single lock-guarded owner of the record ring.
type Log struct {
	mu       sync.Mutex
	ring     *ringbuf.Buffer
	medium   Medium
	evict    EvictHook
	metrics  MetricsHook
	logger   logpkg.Logger
	notifyCh chan struct{}
	closed   bool
}

// Open returns an empty Log.
func Open(opts Options) (*Log, error) {
	if opts.Capacity < 0 {
		return nil, fmt.Errorf("eventlog: capacity %d: %w", opts.Capacity, errorx.ErrInvalidArgument)
	}
	l := &Log{
		ring:     ringbuf.New(opts.Capacity),
		medium:   opts.Medium,
		evict:    opts.Evict,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		notifyCh: make(chan struct{}),
	}
	if l.evict == nil {
		l.evict = noopEvict{}
	}
	if l.metrics == nil {
		l.metrics = NoopMetrics{}
	}
	if l.logger == nil {
		l.logger = logpkg.NewNop()
	}
	return l, nil
}

// Append commits rec as one record. The Log takes ownership of rec.
func (l *Log) Append(ctx context.Context, rec []byte) (AppendResult, error) {
	res, _, err := l.append(ctx, rec, false)
	return res, err
}

// AppendSnapshot commits rec and copies the whole store, oldest first, in the
// same critical section. The copy always contains rec.
func (l *Log) AppendSnapshot(ctx context.Context, rec []byte) (AppendResult, []byte, error) {
	return l.append(ctx, rec, true)
}

func (l *Log) append(ctx context.Context, rec []byte, snapshot bool) (AppendResult, []byte, error) {
	if len(rec) == 0 {
		return AppendResult{}, nil, fmt.Errorf("eventlog: empty record: %w", errorx.ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return AppendResult{}, nil, err
	}
	start := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return AppendResult{}, nil, fmt.Errorf("eventlog: append: %w", errorx.ErrClosed)
	}

	slot := l.ring.WriteIndex()
	evicting := l.ring.Full()
	if l.medium != nil {
		if err := l.medium.Commit(l.prospective(slot, rec, evicting)); err != nil {
			l.metrics.ObserveAppendError()
			return AppendResult{}, nil, fmt.Errorf("eventlog: mirror slot %d: %w: %w", slot, errorx.ErrIO, err)
		}
	}

	old, evicted := l.ring.Add(ringbuf.NewRecord(rec))
	if evicted {
		l.logger.Debug("evicted oldest record", logpkg.Int("slot", slot), logpkg.Int("bytes", old.Len()))
		l.evict.Evicted(old)
	}
	l.metrics.ObserveAppend(time.Since(start), len(rec), evicted)

	close(l.notifyCh)
	l.notifyCh = make(chan struct{})

	res := AppendResult{Slot: slot, Evicted: evicted, TotalSize: l.ring.TotalSize()}
	if !snapshot {
		return res, nil, nil
	}
	readStart := time.Now()
	out := l.ring.AppendTo(make([]byte, 0, res.TotalSize), 0)
	l.metrics.ObserveRead(time.Since(readStart), len(out))
	return res, out, nil
}

// prospective builds the medium view of the ring as it will be after rec is
// added, without touching the ring.
func (l *Log) prospective(slot int, rec []byte, evicting bool) Commit {
	live := make([][]byte, 0, l.ring.Len()+1)
	l.ring.Each(func(i int, r ringbuf.Record) bool {
		if evicting && i == 0 {
			return true
		}
		live = append(live, r.Bytes())
		return true
	})
	live = append(live, rec)
	return Commit{Slot: slot, Record: rec, Evicted: evicting, Live: live}
}

// Do runs fn with the lock held. fn must not retain r or block on I/O.
func (l *Log) Do(fn func(r *ringbuf.Buffer) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("eventlog: %w", errorx.ErrClosed)
	}
	return fn(l.ring)
}

// Contents returns a copy of every live record, oldest to newest.
func (l *Log) Contents() []byte {
	start := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.ring.AppendTo(make([]byte, 0, l.ring.TotalSize()), 0)
	l.metrics.ObserveRead(time.Since(start), len(out))
	return out
}

// Records returns copies of the live records, oldest first.
func (l *Log) Records() [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]byte, 0, l.ring.Len())
	l.ring.Each(func(_ int, r ringbuf.Record) bool {
		out = append(out, append([]byte(nil), r.Bytes()...))
		return true
	})
	return out
}

// TotalSize returns the byte length of the live stream.
func (l *Log) TotalSize() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.TotalSize()
}

// Len returns the number of live records.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.Len()
}

// Cap returns the number of record slots.
func (l *Log) Cap() int { return l.ring.Cap() }

// CheckHealth reports whether the log still accepts operations.
func (l *Log) CheckHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("eventlog: %w", errorx.ErrClosed)
	}
	return nil
}

// Close disposes every live record and closes the medium.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	for _, r := range l.ring.Reset() {
		l.evict.Evicted(r)
	}
	close(l.notifyCh)
	if l.medium != nil {
		return l.medium.Close()
	}
	return nil
}
