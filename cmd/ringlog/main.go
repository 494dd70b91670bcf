package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	clientcmd "github.com/rzbill/ringlog/internal/cmd/client"
	serverrun "github.com/rzbill/ringlog/internal/cmd/server"
	cfgpkg "github.com/rzbill/ringlog/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ringlog",
		Short: "ringlog record log service",
		Long:  "ringlog keeps the most recent newline-terminated records in a fixed ring and serves them over TCP, gRPC health and HTTP.",
	}

	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the ringlog server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return err
			}
			cfgpkg.FromEnv(&cfg)
			applyFlags(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			// Run installs the signal handlers.
			if err := serverrun.Run(cmd.Context(), serverrun.Options{Config: cfg}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	def := cfgpkg.Default()
	f := serverStartCmd.Flags()
	f.String("config", os.Getenv("RINGLOG_CONFIG"), "JSON config file")
	f.String("addr", def.Addr, "Socket service listen address")
	f.String("grpc", def.GRPCAddr, "gRPC listen address (empty disables)")
	f.String("http", def.HTTPAddr, "HTTP listen address (empty disables)")
	f.Int("capacity", def.Capacity, "Number of records kept")
	f.Int("max-record-bytes", def.MaxRecordBytes, "Upper bound for one pending record")
	f.Int("stamp-interval-ms", def.StampIntervalMs, "Timestamp record interval in ms (negative disables)")
	f.String("medium", def.Medium, "Backing medium: memory|file|pebble")
	f.String("file", def.FilePath, "Data file for --medium=file")
	f.String("data-dir", "", "Pebble directory for --medium=pebble (default: OS data dir)")
	f.String("fsync", def.Fsync, "Pebble fsync mode: always|interval|never")
	f.Int("fsync-interval-ms", def.FsyncIntervalMs, "When --fsync=interval, group-commit window in ms")
	f.String("log-level", def.Log.Level, "Log level: debug|info|warn|error")
	f.String("log-format", def.Log.Format, "Log format: text|json")
	f.String("log-file", "", "Also write logs to this file")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	for _, c := range clientcmd.NewCommands(apiURL) {
		rootCmd.AddCommand(c)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyFlags copies explicitly set flags over the file and env config.
func applyFlags(cmd *cobra.Command, cfg *cfgpkg.Config) {
	f := cmd.Flags()
	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if f.Changed(name) {
			*dst, _ = f.GetInt(name)
		}
	}
	str("addr", &cfg.Addr)
	str("grpc", &cfg.GRPCAddr)
	str("http", &cfg.HTTPAddr)
	num("capacity", &cfg.Capacity)
	num("max-record-bytes", &cfg.MaxRecordBytes)
	num("stamp-interval-ms", &cfg.StampIntervalMs)
	str("medium", &cfg.Medium)
	str("file", &cfg.FilePath)
	str("data-dir", &cfg.DataDir)
	str("fsync", &cfg.Fsync)
	num("fsync-interval-ms", &cfg.FsyncIntervalMs)
	str("log-level", &cfg.Log.Level)
	str("log-format", &cfg.Log.Format)
	str("log-file", &cfg.Log.File)
}

func apiURL() string {
	if v := os.Getenv("RINGLOG_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
