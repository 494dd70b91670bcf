package config

import (
	"os"
	"path/filepath"
)

const appName = "ringlog"

// DefaultDataDir returns where the pebble medium keeps its session files.
// XDG_DATA_HOME wins; otherwise the first existing platform location is used,
// falling back to a dotdir in the user's home directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "./data"
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	candidates := []struct{ probe, dir string }{
		{"/var/lib", filepath.Join("/var/lib", appName)},
		{filepath.Join(home, "Library"), filepath.Join(home, "Library", "Application Support", "Ringlog")},
		{filepath.Join(home, "AppData"), filepath.Join(home, "AppData", "Local", "Ringlog")},
	}
	for _, c := range candidates {
		if isDir(c.probe) {
			return c.dir
		}
	}
	return filepath.Join(home, "."+appName)
}

// DefaultPebbleDir is the pebble medium directory inside DefaultDataDir.
func DefaultPebbleDir() string { return filepath.Join(DefaultDataDir(), "ring") }

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
