package config

import (
	"os"
	"strconv"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "RINGLOG_"

// FromEnv overlays RINGLOG_* environment variables onto cfg. Unparseable
// numbers are ignored.
func FromEnv(cfg *Config) {
	envInt("CAPACITY", &cfg.Capacity)
	envInt("MAX_RECORD_BYTES", &cfg.MaxRecordBytes)
	envInt("STAMP_INTERVAL_MS", &cfg.StampIntervalMs)
	envInt("FSYNC_INTERVAL_MS", &cfg.FsyncIntervalMs)
	envStr("ADDR", &cfg.Addr)
	envStr("GRPC_ADDR", &cfg.GRPCAddr)
	envStr("HTTP_ADDR", &cfg.HTTPAddr)
	envStr("MEDIUM", &cfg.Medium)
	envStr("FILE_PATH", &cfg.FilePath)
	envStr("DATA_DIR", &cfg.DataDir)
	envStr("FSYNC", &cfg.Fsync)
	envStr("LOG_LEVEL", &cfg.Log.Level)
	envStr("LOG_FORMAT", &cfg.Log.Format)
	envStr("LOG_FILE", &cfg.Log.File)
}

func envStr(key string, dst *string) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
