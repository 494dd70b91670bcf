package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rzbill/ringlog/internal/assembler"
	"github.com/rzbill/ringlog/internal/errorx"
	"github.com/rzbill/ringlog/internal/eventlog"
	"github.com/rzbill/ringlog/internal/ringbuf"
	logpkg "github.com/rzbill/ringlog/pkg/log"
)

// Control command numbers follow the Linux _IOWR encoding:
// dir(2 bits) | size(14 bits) | type(8 bits) | nr(8 bits).
const (
	IocMagic = 0x16
	// IocSeekTo takes a *SeekTo argument.
	IocSeekTo uint32 = 3<<30 | 8<<16 | IocMagic<<8 | 1
)

// SeekTo addresses a byte inside a record by logical index and offset.
type SeekTo struct {
	WriteCmd       uint32
	WriteCmdOffset uint32
}

// FileOperations is the operation set every open handle provides.
type FileOperations interface {
	io.ReadWriteSeeker
	Ioctl(cmd uint32, arg any) error
	Release() error
}

var _ FileOperations = (*File)(nil)

// Device hands out handles onto one shared Log.
type Device struct {
	log      *eventlog.Log
	maxBytes int
	logger   logpkg.Logger
}

// Option configures a Device.
type Option func(*Device)

// WithMaxRecordBytes bounds a single pending record.
func WithMaxRecordBytes(n int) Option { return func(d *Device) { d.maxBytes = n } }

// WithLogger sets the device logger.
func WithLogger(l logpkg.Logger) Option { return func(d *Device) { d.logger = l } }

// New returns a Device over l.
func New(l *eventlog.Log, opts ...Option) *Device {
	d := &Device{log: l, logger: logpkg.NewNop()}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Log returns the shared log.
func (d *Device) Log() *eventlog.Log { return d.log }

// MaxRecordBytes is the pending-write bound each handle enforces; zero means
// the assembler default.
func (d *Device) MaxRecordBytes() int { return d.maxBytes }

// Open returns a new handle positioned at the start of the store.
func (d *Device) Open() *File {
	d.logger.Debug("open")
	return &File{dev: d, pending: assembler.New(d.maxBytes)}
}

// File is one open handle. Its methods are safe for concurrent use.
type File struct {
	dev *Device

	mu      sync.Mutex
	pos     int64
	pending *assembler.Assembler
	closed  bool
}

// Write buffers p and commits the pending bytes as one record once they end
// in a newline. It always reports len(p) consumed on success. A failed commit
// leaves the bytes buffered before p pending and the store unchanged.
func (f *File) Write(p []byte) (int, error) {
	n, _, err := f.write(p, false)
	return n, err
}

// WriteSnapshot is Write that also returns the whole store as it stood right
// after p completed a record. The snapshot is nil while the record is partial.
func (f *File) WriteSnapshot(p []byte) ([]byte, error) {
	_, snap, err := f.write(p, true)
	return snap, err
}

func (f *File) write(p []byte, snapshot bool) (int, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, nil, fmt.Errorf("device: write: %w", errorx.ErrClosed)
	}
	if len(p) == 0 {
		return 0, nil, nil
	}
	if _, err := f.pending.Write(p); err != nil {
		return 0, nil, fmt.Errorf("device: write: %w", err)
	}
	if !f.pending.Complete() {
		return len(p), nil, nil
	}
	rec := f.pending.Take()
	var snap []byte
	var err error
	if snapshot {
		_, snap, err = f.dev.log.AppendSnapshot(context.Background(), rec)
	} else {
		_, err = f.dev.log.Append(context.Background(), rec)
	}
	if err != nil {
		// Only p was refused; earlier partial bytes stay buffered.
		_, _ = f.pending.Write(rec[:len(rec)-len(p)])
		return 0, nil, fmt.Errorf("device: commit: %w", err)
	}
	return len(p), snap, nil
}

// Read copies bytes from the record covering the current position, at most
// up to the end of that record, and advances the position.
func (f *File) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, fmt.Errorf("device: read: %w", errorx.ErrClosed)
	}
	if len(p) == 0 {
		return 0, nil
	}
	var n int
	err := f.dev.log.Do(func(r *ringbuf.Buffer) error {
		slot, intra, err := r.ResolveOffset(uint64(f.pos))
		if err != nil {
			return err
		}
		n = copy(p, r.Slot(slot).Bytes()[intra:])
		return nil
	})
	if errors.Is(err, ringbuf.ErrNotFound) {
		return 0, io.EOF
	}
	if err != nil {
		return 0, fmt.Errorf("device: read: %w", err)
	}
	f.pos += int64(n)
	return n, nil
}

// Seek implements io.Seeker against the current store size.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, fmt.Errorf("device: seek: %w", errorx.ErrClosed)
	}
	var pos int64
	err := f.dev.log.Do(func(r *ringbuf.Buffer) error {
		total := int64(r.TotalSize())
		switch whence {
		case io.SeekStart:
			pos = offset
		case io.SeekCurrent:
			pos = f.pos + offset
		case io.SeekEnd:
			pos = total + offset
		default:
			return fmt.Errorf("device: seek whence %d: %w", whence, errorx.ErrInvalidArgument)
		}
		if pos < 0 || pos > total {
			return fmt.Errorf("device: seek to %d outside [0, %d]: %w", pos, total, errorx.ErrOutOfRange)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	f.pos = pos
	return pos, nil
}

// SeekTo moves the position to a byte inside a live record.
func (f *File) SeekTo(cmd SeekTo) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, fmt.Errorf("device: seekto: %w", errorx.ErrClosed)
	}
	var pos int64
	err := f.dev.log.Do(func(r *ringbuf.Buffer) error {
		off, err := commandOffset(r, cmd)
		pos = int64(off)
		return err
	})
	if err != nil {
		return 0, err
	}
	f.pos = pos
	return pos, nil
}

// CommandTail seeks to cmd and returns everything from there to the end of
// the store in one lock acquisition. The position is left at end of store.
func (f *File) CommandTail(cmd SeekTo) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, fmt.Errorf("device: seekto: %w", errorx.ErrClosed)
	}
	var out []byte
	var end int64
	err := f.dev.log.Do(func(r *ringbuf.Buffer) error {
		off, err := commandOffset(r, cmd)
		if err != nil {
			return err
		}
		out = r.AppendTo(make([]byte, 0, r.TotalSize()-off), off)
		end = int64(r.TotalSize())
		return nil
	})
	if err != nil {
		return nil, err
	}
	f.pos = end
	return out, nil
}

func commandOffset(r *ringbuf.Buffer, cmd SeekTo) (uint64, error) {
	idx := int(cmd.WriteCmd)
	rec, err := r.At(idx)
	if err != nil {
		return 0, fmt.Errorf("device: record %d of %d: %w", cmd.WriteCmd, r.Len(), errorx.ErrOutOfRange)
	}
	if int(cmd.WriteCmdOffset) >= rec.Len() {
		return 0, fmt.Errorf("device: offset %d in record of %d bytes: %w", cmd.WriteCmdOffset, rec.Len(), errorx.ErrOutOfRange)
	}
	off, err := r.OffsetForIndex(idx)
	if err != nil {
		return 0, fmt.Errorf("device: record %d: %w", cmd.WriteCmd, errorx.ErrOutOfRange)
	}
	return off + uint64(cmd.WriteCmdOffset), nil
}

// Ioctl dispatches a control command.
func (f *File) Ioctl(cmd uint32, arg any) error {
	if cmd>>8&0xff != IocMagic {
		return fmt.Errorf("device: ioctl %#x: %w", cmd, errorx.ErrNotTTY)
	}
	switch cmd {
	case IocSeekTo:
		st, ok := arg.(*SeekTo)
		if !ok || st == nil {
			return fmt.Errorf("device: ioctl seekto arg %T: %w", arg, errorx.ErrAddressFault)
		}
		_, err := f.SeekTo(*st)
		return err
	default:
		return fmt.Errorf("device: ioctl %#x: %w", cmd, errorx.ErrNotTTY)
	}
}

// Position returns the current handle position.
func (f *File) Position() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

// Pending reports the size of the buffered partial write.
func (f *File) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending.Len()
}

// Release discards any partial write and invalidates the handle.
func (f *File) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return fmt.Errorf("device: release: %w", errorx.ErrClosed)
	}
	if n := f.pending.Len(); n > 0 {
		f.dev.logger.Debug("release dropped partial write", logpkg.Int("bytes", n))
	}
	f.pending.Reset()
	f.closed = true
	return nil
}

// Close is Release for io.Closer users.
func (f *File) Close() error { return f.Release() }
