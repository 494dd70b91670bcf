package client

import (
	"bytes"
	"context"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/rzbill/ringlog/internal/config"
	"github.com/rzbill/ringlog/internal/runtime"
	grpcserver "github.com/rzbill/ringlog/internal/server/grpc"
	httpserver "github.com/rzbill/ringlog/internal/server/http"
	tcpserver "github.com/rzbill/ringlog/internal/server/tcp"
)

func startStack(t *testing.T) (*runtime.Runtime, string) {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.Medium = cfgpkg.MediumMemory
	rt, err := runtime.Open(runtime.Options{Config: cfg})
	require.NoError(t, err)

	srv := tcpserver.New(rt.Device(), tcpserver.Options{StampInterval: -1})
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, lis)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = rt.Close()
	})
	t.Setenv("RINGLOG_TCP", lis.Addr().String())
	return rt, lis.Addr().String()
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRoot(func() string { return "http://127.0.0.1:1" })
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestSendPrintsEcho(t *testing.T) {
	rt, _ := startStack(t)
	out, err := run(t, "send", "hello", "world\n")
	require.NoError(t, err)
	assert.Equal(t, "hello\nhello\nworld\n", out)
	assert.Equal(t, 2, rt.Log().Len())
}

func TestSeekToPrintsTail(t *testing.T) {
	_, _ = startStack(t)
	_, err := run(t, "send", "hello", "world")
	require.NoError(t, err)

	out, err := run(t, "seekto", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, "rld\n", out)

	_, err = run(t, "seekto", "9", "0")
	assert.ErrorContains(t, err, "no reply")
	_, err = run(t, "seekto", "x", "0")
	assert.Error(t, err)
}

func TestHealthOverGRPC(t *testing.T) {
	rt, _ := startStack(t)
	gs := grpcserver.New(rt, nil)
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = gs.Serve(ctx, lis)
	}()
	defer func() {
		cancel()
		<-done
	}()
	t.Setenv("RINGLOG_GRPC", lis.Addr().String())

	out, err := run(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "status: SERVING")
}

func TestStatsOverHTTP(t *testing.T) {
	rt, _ := startStack(t)
	ts := httptest.NewServer(httpserver.New(rt, nil).Handler())
	defer ts.Close()
	_, err := run(t, "send", "abc")
	require.NoError(t, err)

	cmd := NewRoot(func() string { return ts.URL })
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"stats"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `"records": 1`)
	assert.Contains(t, buf.String(), `"total_size": 4`)
}

func TestSendTimesOutAgainstSilentServer(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()
	go func() {
		c, err := lis.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		time.Sleep(time.Second)
	}()
	t.Setenv("RINGLOG_TCP", lis.Addr().String())
	start := time.Now()
	_, err = run(t, "send", "--timeout", "100ms", "x")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}
