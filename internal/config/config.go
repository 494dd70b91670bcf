package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	logpkg "github.com/rzbill/ringlog/pkg/log"
)

// Backing media for the record ring.
const (
	MediumMemory = "memory"
	MediumFile   = "file"
	MediumPebble = "pebble"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	Capacity        int           `json:"capacity"`
	MaxRecordBytes  int           `json:"maxRecordBytes"`
	Addr            string        `json:"addr"`
	GRPCAddr        string        `json:"grpcAddr"`
	HTTPAddr        string        `json:"httpAddr"`
	StampIntervalMs int           `json:"stampIntervalMs"`
	Medium          string        `json:"medium"`
	FilePath        string        `json:"filePath"`
	DataDir         string        `json:"dataDir"`
	Fsync           string        `json:"fsync"`
	FsyncIntervalMs int           `json:"fsyncIntervalMs"`
	Log             logpkg.Config `json:"log"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Capacity:        10,
		MaxRecordBytes:  1 << 20,
		Addr:            ":9000",
		GRPCAddr:        ":50051",
		HTTPAddr:        ":8080",
		StampIntervalMs: 10_000,
		Medium:          MediumFile,
		FilePath:        "/var/tmp/aesdsocketdata",
		Fsync:           "always",
		FsyncIntervalMs: 5,
		Log:             logpkg.Config{Level: "info", Format: "text"},
	}
}

// StampInterval converts StampIntervalMs; a negative value disables the
// timestamp writer.
func (c Config) StampInterval() time.Duration {
	if c.StampIntervalMs < 0 {
		return -1
	}
	return time.Duration(c.StampIntervalMs) * time.Millisecond
}

// FsyncInterval converts FsyncIntervalMs.
func (c Config) FsyncInterval() time.Duration {
	return time.Duration(c.FsyncIntervalMs) * time.Millisecond
}

// Validate rejects values the runtime cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("capacity must be positive, got %d", c.Capacity))
	}
	if c.MaxRecordBytes < 0 {
		errs = append(errs, fmt.Errorf("maxRecordBytes must not be negative, got %d", c.MaxRecordBytes))
	}
	switch c.Medium {
	case MediumMemory, MediumFile, MediumPebble:
	default:
		errs = append(errs, fmt.Errorf("medium must be memory|file|pebble, got %q", c.Medium))
	}
	switch c.Fsync {
	case "always", "interval", "never":
	default:
		errs = append(errs, fmt.Errorf("fsync must be always|interval|never, got %q", c.Fsync))
	}
	return errors.Join(errs...)
}

// Load reads configuration from a JSON file over the defaults. If path is
// empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch ext := filepath.Ext(path); ext {
	case ".json", "":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config %s: unsupported format %q; use JSON", path, ext)
	}
	return cfg, nil
}
