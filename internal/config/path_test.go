package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultDataDirXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	if got := DefaultDataDir(); got != "/custom/data/ringlog" {
		t.Fatalf("DefaultDataDir() = %s", got)
	}
	if got := DefaultPebbleDir(); got != "/custom/data/ringlog/ring" {
		t.Fatalf("DefaultPebbleDir() = %s", got)
	}
}

func TestDefaultDataDirNoHome(t *testing.T) {
	t.Setenv("HOME", "")
	if got := DefaultDataDir(); got != "./data" {
		t.Fatalf("expected fallback to ./data, got %s", got)
	}
}

func TestDefaultDataDirShape(t *testing.T) {
	got := DefaultDataDir()
	if !filepath.IsAbs(got) && !strings.HasPrefix(got, "./") {
		t.Fatalf("want absolute or ./ path, got %s", got)
	}
	if !strings.HasSuffix(strings.ToLower(got), "ringlog") && got != "./data" {
		t.Fatalf("want a ringlog directory, got %s", got)
	}
	if again := DefaultDataDir(); again != got {
		t.Fatalf("not stable: %s then %s", got, again)
	}
}

func TestIsDir(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{"existing directory", ".", true},
		{"missing path", "/non/existent/path/that/does/not/exist", false},
		{"regular file", os.Args[0], false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDir(tt.path); got != tt.want {
				t.Fatalf("isDir(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
