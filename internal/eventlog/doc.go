// Package eventlog serializes every access to the shared record ring.
//
// # Overview
//
// A Log owns one ringbuf.Buffer, an optional backing Medium, and the single
// mutex that guards both. Each exported operation holds the mutex for its
// whole duration, so commits, evictions and offset resolution are observed
// as one unit by every front end and by the periodic timestamp writer.
// Never perform network I/O inside Do; copy what is needed and release.
//
// API surface (internal)
//
//	l, _ := eventlog.Open(eventlog.Options{Capacity: 10})
//	res, _ := l.Append(ctx, []byte("hello\n"))
//	_ = res.Evicted // true once the ring has wrapped
//	all := l.Contents()
//
//	// Compound read-only steps under one lock acquisition
//	_ = l.Do(func(r *ringbuf.Buffer) error {
//	    off, err := r.OffsetForIndex(1)
//	    ...
//	})
//
//	// Blocking wait/notify
//	woke := l.WaitForAppend(200 * time.Millisecond)
//
// # Media
//
// When a Medium is configured, Append mirrors the record into it before the
// ring changes; a medium failure aborts the commit and leaves the ring as it
// was. Evicted records are handed to the EvictHook exactly once.
package eventlog
