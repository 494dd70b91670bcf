package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/rzbill/ringlog/internal/config"
	"github.com/rzbill/ringlog/internal/errorx"
	"github.com/rzbill/ringlog/internal/metrics"
)

func memoryConfig() cfgpkg.Config {
	cfg := cfgpkg.Default()
	cfg.Medium = cfgpkg.MediumMemory
	return cfg
}

func TestOpenCloseHealth(t *testing.T) {
	rt, err := Open(Options{Config: memoryConfig()})
	require.NoError(t, err)
	require.NoError(t, rt.CheckHealth(context.Background()))

	require.NoError(t, rt.Close())
	assert.ErrorIs(t, rt.CheckHealth(context.Background()), errorx.ErrClosed)
}

func TestDeviceWritesShowInStats(t *testing.T) {
	rt, err := Open(Options{Config: memoryConfig()})
	require.NoError(t, err)
	defer rt.Close()

	f := rt.Device().Open()
	defer f.Release()
	_, err = f.Write([]byte("hel"))
	require.NoError(t, err)
	_, err = f.Write([]byte("lo\n"))
	require.NoError(t, err)

	st, err := rt.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{Records: 1, Capacity: 10, TotalSize: 6, Medium: cfgpkg.MediumMemory}, st)
	assert.Equal(t, "hello\n", string(rt.Log().Contents()))
}

func TestFileMedium(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.FilePath = filepath.Join(t.TempDir(), "aesdsocketdata")
	rt, err := Open(Options{Config: cfg})
	require.NoError(t, err)

	f := rt.Device().Open()
	_, err = f.Write([]byte("line\n"))
	require.NoError(t, err)
	got, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(got))

	require.NoError(t, rt.Close())
	_, err = os.Stat(cfg.FilePath)
	assert.True(t, os.IsNotExist(err))
}

func TestPebbleMediumFeedsMetrics(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Medium = cfgpkg.MediumPebble
	cfg.DataDir = filepath.Join(t.TempDir(), "ring")
	cfg.Fsync = "never"
	m := metrics.NewPrometheus()
	rt, err := Open(Options{Config: cfg, Metrics: m})
	require.NoError(t, err)
	defer rt.Close()
	assert.Same(t, m, rt.Metrics())

	_, err = rt.Log().Append(context.Background(), []byte("x\n"))
	require.NoError(t, err)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	seen := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				seen[mf.GetName()] = c.GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, seen["ringlog_appends_total"])
	assert.Equal(t, 1.0, seen["ringlog_medium_commits_total"])
}

func TestOpenRejectsBadConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.Capacity = 0
	_, err := Open(Options{Config: cfg})
	assert.Error(t, err)

	cfg = memoryConfig()
	cfg.Medium = cfgpkg.MediumFile
	cfg.FilePath = filepath.Join(t.TempDir(), "held")
	first, err := Open(Options{Config: cfg})
	require.NoError(t, err)
	defer first.Close()
	_, err = Open(Options{Config: cfg})
	assert.Error(t, err, "second process on the same data file must fail")
}
