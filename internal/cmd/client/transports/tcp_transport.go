package transports

import (
	"context"
	"io"
	"net"
	"time"

	tcpserver "github.com/rzbill/ringlog/internal/server/tcp"
)

// TCPTransport implements LogTransport over one TCP connection per call.
type TCPTransport struct {
	addr    string
	timeout time.Duration
}

// NewTCPTransport targets addr; timeout bounds each whole exchange.
func NewTCPTransport(addr string, timeout time.Duration) *TCPTransport {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TCPTransport{addr: addr, timeout: timeout}
}

// Send writes lines, half-closes and reads until the server hangs up.
func (t *TCPTransport) Send(ctx context.Context, lines [][]byte) ([]byte, error) {
	return t.exchange(ctx, func(w io.Writer) error {
		for _, l := range lines {
			if len(l) == 0 || l[len(l)-1] != '\n' {
				l = append(l[:len(l):len(l)], '\n')
			}
			if _, err := w.Write(l); err != nil {
				return err
			}
		}
		return nil
	})
}

// SeekTo sends the seek command for index and offset.
func (t *TCPTransport) SeekTo(ctx context.Context, index, offset uint32) ([]byte, error) {
	return t.exchange(ctx, func(w io.Writer) error {
		_, err := w.Write(tcpserver.FormatSeekTo(index, offset))
		return err
	})
}

func (t *TCPTransport) exchange(ctx context.Context, write func(io.Writer) error) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	if err := write(conn); err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		if err := tc.CloseWrite(); err != nil {
			return nil, err
		}
	}
	return io.ReadAll(conn)
}
