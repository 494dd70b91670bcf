package eventlog

import (
	"time"
)

// AppendNotify returns a channel closed by the next append or by Close.
// Take the channel before reading the store so no append is missed.
func (l *Log) AppendNotify() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.notifyCh
}

// WaitForAppend blocks until either a new append occurs or timeout elapses.
// It returns true if woken by an append (or by Close), false on timeout.
func (l *Log) WaitForAppend(timeout time.Duration) bool {
	ch := l.AppendNotify()
	if timeout <= 0 {
		<-ch
		return true
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-ch:
		return true
	case <-t.C:
		return false
	}
}
