package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 10, cfg.Capacity)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, MediumFile, cfg.Medium)
	assert.Equal(t, "/var/tmp/aesdsocketdata", cfg.FilePath)
	assert.Equal(t, 10*time.Second, cfg.StampInterval())
	assert.NoError(t, cfg.Validate())
}

func TestLoadJSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ringlog.json")
	data := []byte(`{"capacity":32,"medium":"pebble","stampIntervalMs":-1,"log":{"level":"debug"}}`)
	require.NoError(t, os.WriteFile(file, data, 0o644))

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Capacity)
	assert.Equal(t, MediumPebble, cfg.Medium)
	assert.Equal(t, time.Duration(-1), cfg.StampInterval())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9000", cfg.Addr, "unset fields keep defaults")
}

func TestLoadRejectsOtherFormats(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ringlog.yaml")
	require.NoError(t, os.WriteFile(file, []byte("capacity: 3\n"), 0o644))
	_, err := Load(file)
	assert.Error(t, err)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("RINGLOG_CAPACITY", "24")
	t.Setenv("RINGLOG_ADDR", "127.0.0.1:9100")
	t.Setenv("RINGLOG_MEDIUM", "memory")
	t.Setenv("RINGLOG_LOG_FORMAT", "json")
	t.Setenv("RINGLOG_STAMP_INTERVAL_MS", "not-a-number")

	cfg := Default()
	FromEnv(&cfg)
	assert.Equal(t, 24, cfg.Capacity)
	assert.Equal(t, "127.0.0.1:9100", cfg.Addr)
	assert.Equal(t, MediumMemory, cfg.Medium)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10_000, cfg.StampIntervalMs)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, false},
		{"negative record bound", func(c *Config) { c.MaxRecordBytes = -1 }, false},
		{"unknown medium", func(c *Config) { c.Medium = "tape" }, false},
		{"unknown fsync", func(c *Config) { c.Fsync = "sometimes" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
