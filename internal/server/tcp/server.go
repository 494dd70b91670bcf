package tcpserver

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/rzbill/ringlog/internal/assembler"
	"github.com/rzbill/ringlog/internal/device"
	"github.com/rzbill/ringlog/internal/metrics"
	"github.com/rzbill/ringlog/pkg/id"
	logpkg "github.com/rzbill/ringlog/pkg/log"
)

const (
	// DefaultAddr is the port the socket service has always used.
	DefaultAddr = ":9000"
	// DefaultReadSize is the per-read chunk size.
	DefaultReadSize = 1024
)

// ErrServerClosed is returned by Serve after Close.
var ErrServerClosed = errors.New("tcpserver: server closed")

// Metrics receives connection level observations.
type Metrics interface {
	ObserveConnection(delta int)
	ObserveCommand(result string)
	ObserveTimestamp()
}

type noopMetrics struct{}

func (noopMetrics) ObserveConnection(int) {}
func (noopMetrics) ObserveCommand(string) {}
func (noopMetrics) ObserveTimestamp()     {}

// Options configures a Server.
type Options struct {
	// StampInterval between timestamp records; zero means DefaultStampInterval,
	// negative disables the writer.
	StampInterval time.Duration
	// Now is the clock used for timestamp records.
	Now      func() time.Time
	ReadSize int
	Metrics  Metrics
	Logger   logpkg.Logger
}

// Server owns the listener, the timestamp writer and every live connection.
type Server struct {
	dev     *device.Device
	opts    Options
	logger  logpkg.Logger
	metrics Metrics
	ids     *id.Generator
	conns   *tracker

	mu      sync.Mutex
	lis     net.Listener
	closed  bool
	serving sync.WaitGroup
}

// New builds a Server over dev.
func New(dev *device.Device, opts Options) *Server {
	if opts.StampInterval == 0 {
		opts.StampInterval = DefaultStampInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ReadSize <= 0 {
		opts.ReadSize = DefaultReadSize
	}
	s := &Server{dev: dev, opts: opts, ids: id.NewGenerator(), conns: newTracker()}
	s.metrics = opts.Metrics
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	s.logger = opts.Logger
	if s.logger == nil {
		s.logger = logpkg.NewNop()
	}
	return s
}

// ListenAndServe binds addr and serves until ctx is done or Close is called.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Serve accepts connections on lis. It returns once the listener is closed
// and every connection handler and the timestamp writer have finished.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = lis.Close()
		return ErrServerClosed
	}
	s.lis = lis
	s.serving.Add(1)
	s.mu.Unlock()
	defer s.serving.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, func() { _ = lis.Close() })
	defer stop()

	s.logger.Info("listening", logpkg.Str("addr", lis.Addr().String()))

	var stamper sync.WaitGroup
	if s.opts.StampInterval > 0 {
		stamper.Add(1)
		go func() {
			defer stamper.Done()
			s.stamp(ctx)
		}()
	}

	var serveErr error
	for {
		conn, err := lis.Accept()
		if err != nil {
			if ctx.Err() == nil && !s.isClosed() && !errors.Is(err, net.ErrClosed) {
				serveErr = err
				s.logger.Error("accept failed", logpkg.Err(err))
			}
			break
		}
		h := &connHandle{id: s.ids.Next(), conn: conn, done: make(chan struct{})}
		s.conns.add(h)
		s.metrics.ObserveConnection(1)
		go s.handle(h)
	}

	_ = lis.Close()
	cancel()
	stamper.Wait()
	s.conns.shutdown()
	s.logger.Info("stopped", logpkg.Str("addr", lis.Addr().String()))
	return serveErr
}

// Addr returns the bound address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

// Close stops accepting, unblocks every connection and waits for Serve to
// return.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	lis := s.lis
	s.mu.Unlock()
	if lis != nil {
		_ = lis.Close()
	}
	s.serving.Wait()
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) handle(h *connHandle) {
	defer close(h.done)
	defer s.conns.remove(h.id)
	defer s.metrics.ObserveConnection(-1)
	defer h.conn.Close()

	logger := s.logger.With(logpkg.Str("conn", h.id.Short()), logpkg.Str("remote", h.conn.RemoteAddr().String()))
	logger.Info("accepted connection")

	f := s.dev.Open()
	defer f.Release()

	asm := assembler.New(s.dev.MaxRecordBytes())
	buf := make([]byte, s.opts.ReadSize)
	for {
		n, err := h.conn.Read(buf)
		if n > 0 {
			if _, werr := asm.Write(buf[:n]); werr != nil {
				logger.Warn("dropping connection", logpkg.Err(werr))
				return
			}
			for {
				line, ok := asm.Next()
				if !ok {
					break
				}
				if perr := s.processLine(f, h.conn, line, logger); perr != nil {
					logger.Warn("dropping connection", logpkg.Err(perr))
					return
				}
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrDeadlineExceeded) {
				logger.Debug("read failed", logpkg.Err(err))
			}
			break
		}
	}
	if asm.Pending() {
		logger.Debug("discarding unterminated input", logpkg.Int("bytes", asm.Len()))
	}
	logger.Info("closed connection")
}

// processLine handles one complete line. A returned error ends the
// connection; command failures are logged and skipped.
func (s *Server) processLine(f *device.File, conn net.Conn, line []byte, logger logpkg.Logger) error {
	cmd, isCmd, err := parseSeekTo(line)
	if isCmd {
		if err != nil {
			s.metrics.ObserveCommand(metrics.ResultMalformed)
			logger.Warn("malformed seekto command", logpkg.Err(err))
			return nil
		}
		tail, err := f.CommandTail(cmd)
		if err != nil {
			s.metrics.ObserveCommand(metrics.ResultRejected)
			logger.Warn("seekto rejected",
				logpkg.Uint64("index", uint64(cmd.WriteCmd)),
				logpkg.Uint64("offset", uint64(cmd.WriteCmdOffset)),
				logpkg.Err(err))
			return nil
		}
		s.metrics.ObserveCommand(metrics.ResultOK)
		_, err = conn.Write(tail)
		return err
	}

	// The echo is snapshotted with the append; only the send happens unlocked.
	snap, err := f.WriteSnapshot(line)
	if err != nil {
		return err
	}
	_, err = conn.Write(snap)
	return err
}
