package runtime

import (
	"context"
	"fmt"

	cfgpkg "github.com/rzbill/ringlog/internal/config"
	"github.com/rzbill/ringlog/internal/device"
	"github.com/rzbill/ringlog/internal/eventlog"
	"github.com/rzbill/ringlog/internal/metrics"
	"github.com/rzbill/ringlog/internal/ringbuf"
	filestore "github.com/rzbill/ringlog/internal/storage/file"
	pebblestore "github.com/rzbill/ringlog/internal/storage/pebble"
	logpkg "github.com/rzbill/ringlog/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	// Metrics receives log and medium observations. Optional.
	Metrics *metrics.Prometheus
	Logger  logpkg.Logger
}

// Runtime wires the backing medium, the shared log and the device for one
// process.
type Runtime struct {
	config  cfgpkg.Config
	log     *eventlog.Log
	dev     *device.Device
	metrics *metrics.Prometheus
	medium  string
}

// Stats is a point-in-time view of the store.
type Stats struct {
	Records   int    `json:"records"`
	Capacity  int    `json:"capacity"`
	TotalSize uint64 `json:"total_size"`
	Medium    string `json:"medium"`
}

// Open initializes the medium and the log and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("runtime: config: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewNop()
	}

	medium, err := openMedium(cfg, opts.Metrics)
	if err != nil {
		return nil, fmt.Errorf("runtime: open %s medium: %w", cfg.Medium, err)
	}
	lopts := eventlog.Options{
		Capacity: cfg.Capacity,
		Medium:   medium,
		Logger:   logger.WithComponent("eventlog"),
	}
	if opts.Metrics != nil {
		lopts.Metrics = opts.Metrics
	}
	l, err := eventlog.Open(lopts)
	if err != nil {
		if medium != nil {
			_ = medium.Close()
		}
		return nil, err
	}
	dev := device.New(l,
		device.WithMaxRecordBytes(cfg.MaxRecordBytes),
		device.WithLogger(logger.WithComponent("device")),
	)
	logger.Info("runtime open",
		logpkg.Str("medium", cfg.Medium),
		logpkg.Int("capacity", cfg.Capacity),
	)
	return &Runtime{config: cfg, log: l, dev: dev, metrics: opts.Metrics, medium: cfg.Medium}, nil
}

func openMedium(cfg cfgpkg.Config, m *metrics.Prometheus) (eventlog.Medium, error) {
	switch cfg.Medium {
	case cfgpkg.MediumMemory:
		return nil, nil
	case cfgpkg.MediumFile:
		return filestore.Open(cfg.FilePath)
	case cfgpkg.MediumPebble:
		fsync, err := pebblestore.ParseFsyncMode(cfg.Fsync)
		if err != nil {
			return nil, err
		}
		dir := cfg.DataDir
		if dir == "" {
			dir = cfgpkg.DefaultPebbleDir()
		}
		popts := pebblestore.Options{DataDir: dir, Fsync: fsync, FsyncInterval: cfg.FsyncInterval()}
		if m != nil {
			popts.Metrics = m
		}
		return pebblestore.OpenMirror(popts)
	default:
		return nil, fmt.Errorf("unknown medium %q", cfg.Medium)
	}
}

// Close closes the log, which releases the medium.
func (r *Runtime) Close() error {
	if r.log == nil {
		return nil
	}
	return r.log.Close()
}

// CheckHealth reports whether the log still accepts work.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	return r.log.CheckHealth(ctx)
}

// Stats reads record count and size under one lock acquisition.
func (r *Runtime) Stats() (Stats, error) {
	st := Stats{Medium: r.medium}
	err := r.log.Do(func(b *ringbuf.Buffer) error {
		st.Records = b.Len()
		st.Capacity = b.Cap()
		st.TotalSize = b.TotalSize()
		return nil
	})
	return st, err
}

// Log exposes the shared log.
func (r *Runtime) Log() *eventlog.Log { return r.log }

// Device exposes the device front end.
func (r *Runtime) Device() *device.Device { return r.dev }

// Metrics returns the metrics sink, or nil.
func (r *Runtime) Metrics() *metrics.Prometheus { return r.metrics }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
