package tcpserver

import (
	"net"
	"sync"
	"time"

	"github.com/rzbill/ringlog/pkg/id"
)

type connHandle struct {
	id   id.ID
	conn net.Conn
	done chan struct{} // closed when the handler has returned
}

// tracker holds every live connection handler.
type tracker struct {
	mu    sync.Mutex
	conns map[id.ID]*connHandle
}

func newTracker() *tracker { return &tracker{conns: make(map[id.ID]*connHandle)} }

func (t *tracker) add(h *connHandle) {
	t.mu.Lock()
	t.conns[h.id] = h
	t.mu.Unlock()
}

func (t *tracker) remove(cid id.ID) {
	t.mu.Lock()
	delete(t.conns, cid)
	t.mu.Unlock()
}

func (t *tracker) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns)
}

// shutdown unblocks every tracked handler and waits for each to return.
// Handlers that finish on their own in the meantime are still joined.
func (t *tracker) shutdown() {
	t.mu.Lock()
	live := make([]*connHandle, 0, len(t.conns))
	for _, h := range t.conns {
		live = append(live, h)
	}
	t.mu.Unlock()

	now := time.Now()
	for _, h := range live {
		_ = h.conn.SetDeadline(now)
	}
	for _, h := range live {
		<-h.done
	}
}
