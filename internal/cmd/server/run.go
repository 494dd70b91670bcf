package serverrun

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	cfgpkg "github.com/rzbill/ringlog/internal/config"
	"github.com/rzbill/ringlog/internal/metrics"
	"github.com/rzbill/ringlog/internal/runtime"
	grpcserver "github.com/rzbill/ringlog/internal/server/grpc"
	httpserver "github.com/rzbill/ringlog/internal/server/http"
	tcpserver "github.com/rzbill/ringlog/internal/server/tcp"
	logpkg "github.com/rzbill/ringlog/pkg/log"
)

// Addrs are the bound listen addresses; empty means the server is disabled.
type Addrs struct {
	TCP  string
	GRPC string
	HTTP string
}

type Options struct {
	Config cfgpkg.Config
	// Logger overrides the logger built from Config.Log.
	Logger logpkg.Logger
	// OnReady is called once every listener is bound.
	OnReady func(Addrs)
}

// Run binds the socket service and, when configured, the gRPC and HTTP
// servers, then blocks until ctx is cancelled or a signal arrives. A bind
// failure aborts startup.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := opts.Config
	procLogger := opts.Logger
	if procLogger == nil {
		l, err := logpkg.ApplyConfig(&cfg.Log)
		if err != nil {
			return fmt.Errorf("log config: %w", err)
		}
		procLogger = l
	}
	// Redirect stdlib logs (e.g., Pebble) to our logger
	logpkg.RedirectStdLog(procLogger)

	m := metrics.NewPrometheus()
	rt, err := runtime.Open(runtime.Options{Config: cfg, Metrics: m, Logger: procLogger})
	if err != nil {
		return err
	}
	defer rt.Close()

	tcpLis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", cfg.Addr, err)
	}
	var grpcLis, httpLis net.Listener
	closeAll := func() {
		for _, l := range []net.Listener{tcpLis, grpcLis, httpLis} {
			if l != nil {
				_ = l.Close()
			}
		}
	}
	if cfg.GRPCAddr != "" {
		if grpcLis, err = net.Listen("tcp", cfg.GRPCAddr); err != nil {
			closeAll()
			return fmt.Errorf("bind %s: %w", cfg.GRPCAddr, err)
		}
	}
	if cfg.HTTPAddr != "" {
		if httpLis, err = net.Listen("tcp", cfg.HTTPAddr); err != nil {
			closeAll()
			return fmt.Errorf("bind %s: %w", cfg.HTTPAddr, err)
		}
	}

	addrs := Addrs{TCP: tcpLis.Addr().String()}
	if grpcLis != nil {
		addrs.GRPC = grpcLis.Addr().String()
	}
	if httpLis != nil {
		addrs.HTTP = httpLis.Addr().String()
	}
	procLogger.Info("Starting ringlog server",
		logpkg.Str("tcp", addrs.TCP),
		logpkg.Str("grpc", addrs.GRPC),
		logpkg.Str("http", addrs.HTTP),
		logpkg.Str("medium", cfg.Medium),
		logpkg.Int("capacity", cfg.Capacity),
		logpkg.Str("level", cfg.Log.Level),
		logpkg.Str("format", cfg.Log.Format),
	)

	tsrv := tcpserver.New(rt.Device(), tcpserver.Options{
		StampInterval: cfg.StampInterval(),
		Metrics:       m,
		Logger:        procLogger.WithComponent("tcp"),
	})
	var gsrv *grpcserver.Server
	var hsrv *httpserver.Server

	var wg sync.WaitGroup
	tcpErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		tcpErr <- tsrv.Serve(sctx, tcpLis)
	}()
	if grpcLis != nil {
		gsrv = grpcserver.New(rt, procLogger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gsrv.Serve(sctx, grpcLis); err != nil && sctx.Err() == nil {
				procLogger.Error("grpc server failed", logpkg.Err(err))
			}
		}()
	}
	if httpLis != nil {
		hsrv = httpserver.New(rt, procLogger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := hsrv.Serve(sctx, httpLis); err != nil && sctx.Err() == nil {
				procLogger.Error("http server failed", logpkg.Err(err))
			}
		}()
	}
	if opts.OnReady != nil {
		opts.OnReady(addrs)
	}

	var runErr error
	select {
	case <-sctx.Done():
	case runErr = <-tcpErr:
		if runErr != nil && !errors.Is(runErr, tcpserver.ErrServerClosed) {
			procLogger.Error("tcp server failed", logpkg.Err(runErr))
		}
	}
	// Stop every front end before the runtime closes the log and medium.
	stop()
	tsrv.Close()
	if gsrv != nil {
		gsrv.Close()
	}
	if hsrv != nil {
		hsrv.Close()
	}
	wg.Wait()
	procLogger.Info("ringlog server stopped")
	return runErr
}
