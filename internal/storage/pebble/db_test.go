package pebblestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/rzbill/ringlog/internal/eventlog"
)

type testMetrics struct {
	read         int
	batchCommits int
	batchBytes   int
}

func (m *testMetrics) ObserveRead(d time.Duration, bytes int) { m.read += bytes }
func (m *testMetrics) ObserveBatchCommit(d time.Duration, bytes int) {
	m.batchCommits++
	m.batchBytes += bytes
}

func newTestDB(t *testing.T) (*DB, *testMetrics) {
	t.Helper()
	dir := t.TempDir()
	metrics := &testMetrics{}
	db, err := Open(Options{
		DataDir:       dir,
		Fsync:         FsyncModeInterval,
		FsyncInterval: 2 * time.Millisecond,
		Metrics:       metrics,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, metrics
}

func TestBatchCommitMetrics(t *testing.T) {
	db, metrics := newTestDB(t)

	b := db.NewBatch()
	if err := b.Set([]byte("a"), []byte("1"), nil); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if err := b.Set([]byte("b"), []byte("2"), nil); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if err := db.CommitBatch(context.Background(), b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	b.Close()

	if metrics.batchCommits != 1 {
		t.Fatalf("want 1 batch commit, got %d", metrics.batchCommits)
	}
	if metrics.batchBytes <= 0 {
		t.Fatalf("expected positive batch bytes")
	}
	got, err := db.Get([]byte("b"))
	if err != nil || string(got) != "2" {
		t.Fatalf("get = %q, %v", got, err)
	}
	if metrics.read == 0 {
		t.Fatalf("expected read metrics to record bytes")
	}
	if _, err := db.Get([]byte("zz")); !errors.Is(err, pebble.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestParseFsyncMode(t *testing.T) {
	for in, want := range map[string]FsyncMode{"always": FsyncModeAlways, "interval": FsyncModeInterval, "never": FsyncModeNever} {
		got, err := ParseFsyncMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseFsyncMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFsyncMode("sometimes"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMirrorTracksRingSlots(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ring")
	m, err := OpenMirror(Options{DataDir: dir, Fsync: FsyncModeNever})
	if err != nil {
		t.Fatalf("open mirror: %v", err)
	}
	l, err := eventlog.Open(eventlog.Options{Capacity: 2, Medium: m})
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	ctx := context.Background()
	for _, s := range []string{"AAA\n", "BBB\n", "CCC\n"} {
		if _, err := l.Append(ctx, []byte(s)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	slots, err := m.Slots()
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if len(slots) != 2 || string(slots[0]) != "CCC\n" || string(slots[1]) != "BBB\n" {
		t.Fatalf("slots = %q", slots)
	}
	got, err := m.Slot(1)
	if err != nil || string(got) != "BBB\n" {
		t.Fatalf("slot 1 = %q, %v", got, err)
	}

	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("mirror dir should be removed, stat err = %v", err)
	}
}

func TestOpenMirrorStartsEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ring")
	db, err := Open(Options{DataDir: dir, Fsync: FsyncModeAlways})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	b := db.NewBatch()
	_ = b.Set(KeySlot(3), []byte("stale\n"), nil)
	if err := db.CommitBatch(context.Background(), b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	b.Close()
	_ = db.Close()

	m, err := OpenMirror(Options{DataDir: dir, Fsync: FsyncModeAlways})
	if err != nil {
		t.Fatalf("open mirror: %v", err)
	}
	defer m.Close()
	slots, err := m.Slots()
	if err != nil || len(slots) != 0 {
		t.Fatalf("expected empty mirror, got %q, %v", slots, err)
	}
}
