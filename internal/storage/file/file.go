// Package filestore mirrors the record ring into one flat file whose contents
// always equal the live store, oldest record first. The file is locked for
// the session and removed on Close.
package filestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/rzbill/ringlog/internal/eventlog"
)

// DefaultPath is where the socket service keeps its data file.
const DefaultPath = "/var/tmp/aesdsocketdata"

// ErrLocked is returned when another process holds the data file.
var ErrLocked = errors.New("filestore: data file locked by another process")

// File is an eventlog.Medium backed by a flat file.
type File struct {
	mu   sync.Mutex
	f    *os.File
	path string
	size int64
}

var _ eventlog.Medium = (*File)(nil)

// Open creates (or truncates) path and takes an exclusive lock on it.
func Open(path string) (*File, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%s: %w", path, ErrLocked)
		}
		return nil, err
	}
	if err := f.Truncate(0); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &File{f: f, path: path}, nil
}

// Path returns the data file path.
func (m *File) Path() string { return m.path }

// createTemp is swapped in tests.
var createTemp = os.CreateTemp

// Commit appends the record, or rewrites the live set when a record was
// evicted so the file keeps the same record boundaries as the ring. A
// rewrite goes to a locked temporary file renamed over the data file, so a
// failed commit leaves the previous contents in place.
func (m *File) Commit(c eventlog.Commit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.f == nil {
		return os.ErrClosed
	}
	if !c.Evicted {
		n, err := m.f.WriteAt(c.Record, m.size)
		if err != nil {
			// Drop the torn tail so the file still matches the ring.
			_ = m.f.Truncate(m.size)
			return err
		}
		m.size += int64(n)
		return nil
	}
	return m.rewrite(c.Live)
}

func (m *File) rewrite(live [][]byte) error {
	tmp, err := createTemp(filepath.Dir(m.path), filepath.Base(m.path)+".*")
	if err != nil {
		return err
	}
	discard := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}
	if err := unix.Flock(int(tmp.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		discard()
		return err
	}
	var size int64
	for _, r := range live {
		n, err := tmp.Write(r)
		size += int64(n)
		if err != nil {
			discard()
			return err
		}
	}
	if err := tmp.Chmod(0o644); err != nil {
		discard()
		return err
	}
	if err := os.Rename(tmp.Name(), m.path); err != nil {
		discard()
		return err
	}
	// The old inode is unlinked; closing it releases its lock.
	_ = m.f.Close()
	m.f = tmp
	m.size = size
	return nil
}

// Sync flushes the file to stable storage.
func (m *File) Sync() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.f == nil {
		return os.ErrClosed
	}
	return m.f.Sync()
}

// Close releases the lock, closes and removes the data file.
func (m *File) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.f == nil {
		return nil
	}
	_ = unix.Flock(int(m.f.Fd()), unix.LOCK_UN)
	err := m.f.Close()
	m.f = nil
	if rmErr := os.Remove(m.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}
