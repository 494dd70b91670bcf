package device

import (
	"errors"
	"io"
	"testing"

	"github.com/rzbill/ringlog/internal/errorx"
	"github.com/rzbill/ringlog/internal/eventlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T, capacity int, opts ...Option) *Device {
	t.Helper()
	l, err := eventlog.Open(eventlog.Options{Capacity: capacity})
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return New(l, opts...)
}

func writeAll(t *testing.T, f *File, parts ...string) {
	t.Helper()
	for _, p := range parts {
		n, err := f.Write([]byte(p))
		require.NoError(t, err)
		require.Equal(t, len(p), n)
	}
}

func TestRoundTripSingleRecord(t *testing.T) {
	dev := newTestDevice(t, 10)
	f := dev.Open()
	defer f.Release()

	writeAll(t, f, "hello world\n")
	buf := make([]byte, len("hello world\n"))
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", string(buf[:n]))

	_, err = f.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestPartialWriteSpansCalls(t *testing.T) {
	dev := newTestDevice(t, 10)
	f := dev.Open()
	defer f.Release()

	writeAll(t, f, "par", "tial")
	assert.Equal(t, 0, dev.Log().Len())
	assert.Equal(t, 7, f.Pending())

	writeAll(t, f, " done\n")
	assert.Equal(t, 1, dev.Log().Len())
	assert.Equal(t, 0, f.Pending())
	assert.Equal(t, "partial done\n", string(dev.Log().Contents()))
}

func TestPendingIsPerHandle(t *testing.T) {
	dev := newTestDevice(t, 10)
	a, b := dev.Open(), dev.Open()
	defer a.Release()
	defer b.Release()

	writeAll(t, a, "from a ")
	writeAll(t, b, "from b\n")
	writeAll(t, a, "done\n")
	assert.Equal(t, "from b\nfrom a done\n", string(dev.Log().Contents()))
}

func TestReadStopsAtRecordBoundary(t *testing.T) {
	dev := newTestDevice(t, 10)
	f := dev.Open()
	defer f.Release()
	writeAll(t, f, "abc\n", "defgh\n")

	buf := make([]byte, 100)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abc\n", string(buf[:n]))

	n, err = f.Read(buf[:2])
	require.NoError(t, err)
	assert.Equal(t, "de", string(buf[:n]))

	rest, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "fgh\n", string(rest))
	assert.Equal(t, int64(10), f.Position())
}

func TestReadEmptyStoreIsEOF(t *testing.T) {
	dev := newTestDevice(t, 2)
	f := dev.Open()
	defer f.Release()
	n, err := f.Read(make([]byte, 8))
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSeek(t *testing.T) {
	dev := newTestDevice(t, 10)
	f := dev.Open()
	defer f.Release()
	writeAll(t, f, "AAA\n", "BBB\n")

	tests := []struct {
		name    string
		offset  int64
		whence  int
		want    int64
		wantErr error
	}{
		{"start", 3, io.SeekStart, 3, nil},
		{"current", 2, io.SeekCurrent, 5, nil},
		{"end", -1, io.SeekEnd, 7, nil},
		{"exactly end", 0, io.SeekEnd, 8, nil},
		{"past end", 1, io.SeekEnd, 0, errorx.ErrOutOfRange},
		{"negative", -1, io.SeekStart, 0, errorx.ErrOutOfRange},
		{"before start from current", -100, io.SeekCurrent, 0, errorx.ErrOutOfRange},
		{"bad whence", 0, 7, 0, errorx.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := f.Position()
			got, err := f.Seek(tt.offset, tt.whence)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, f.Position())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeekToCommand(t *testing.T) {
	dev := newTestDevice(t, 2)
	f := dev.Open()
	defer f.Release()
	writeAll(t, f, "AAA\n", "BBB\n", "CCC\n")

	pos, err := f.SeekTo(SeekTo{WriteCmd: 1, WriteCmdOffset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(5), pos)
	rest, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "CC\n", string(rest))

	for _, bad := range []SeekTo{{WriteCmd: 2}, {WriteCmd: 0, WriteCmdOffset: 4}, {WriteCmd: 99}} {
		_, err := f.SeekTo(bad)
		assert.ErrorIs(t, err, errorx.ErrOutOfRange, "%+v", bad)
	}
}

func TestIoctl(t *testing.T) {
	dev := newTestDevice(t, 4)
	f := dev.Open()
	defer f.Release()
	writeAll(t, f, "one\n", "two\n")

	assert.Equal(t, uint32(0xC0081601), IocSeekTo)
	require.NoError(t, f.Ioctl(IocSeekTo, &SeekTo{WriteCmd: 1, WriteCmdOffset: 2}))
	assert.Equal(t, int64(6), f.Position())

	assert.ErrorIs(t, f.Ioctl(IocSeekTo, SeekTo{}), errorx.ErrAddressFault)
	assert.ErrorIs(t, f.Ioctl(IocSeekTo, (*SeekTo)(nil)), errorx.ErrAddressFault)
	assert.ErrorIs(t, f.Ioctl(0xC0081701, &SeekTo{}), errorx.ErrNotTTY)
	assert.ErrorIs(t, f.Ioctl(IocSeekTo+1, &SeekTo{}), errorx.ErrNotTTY)
}

func TestCommandTailLeavesPositionAtEnd(t *testing.T) {
	dev := newTestDevice(t, 3)
	f := dev.Open()
	defer f.Release()
	writeAll(t, f, "hello\n", "world\n")

	out, err := f.CommandTail(SeekTo{WriteCmd: 0, WriteCmdOffset: 0})
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", string(out))
	assert.Equal(t, int64(12), f.Position())

	out, err = f.CommandTail(SeekTo{WriteCmd: 1, WriteCmdOffset: 3})
	require.NoError(t, err)
	assert.Equal(t, "ld\n", string(out))

	_, err = f.CommandTail(SeekTo{WriteCmd: 2})
	assert.ErrorIs(t, err, errorx.ErrOutOfRange)
}

func TestRecordLimit(t *testing.T) {
	dev := newTestDevice(t, 2, WithMaxRecordBytes(4))
	f := dev.Open()
	defer f.Release()
	_, err := f.Write([]byte("toolong\n"))
	assert.ErrorIs(t, err, errorx.ErrAllocation)
	assert.Equal(t, 0, dev.Log().Len())
}

func TestReleaseDropsPendingAndInvalidates(t *testing.T) {
	dev := newTestDevice(t, 2)
	f := dev.Open()
	writeAll(t, f, "unterminated")
	require.NoError(t, f.Release())
	assert.Equal(t, 0, dev.Log().Len())

	_, err := f.Write([]byte("x\n"))
	assert.True(t, errors.Is(err, errorx.ErrClosed))
	assert.ErrorIs(t, f.Release(), errorx.ErrClosed)
}

type failingMedium struct{ err error }

func (m *failingMedium) Commit(eventlog.Commit) error { return m.err }
func (m *failingMedium) Close() error                 { return nil }

func TestFailedCommitKeepsEarlierPending(t *testing.T) {
	m := &failingMedium{}
	l, err := eventlog.Open(eventlog.Options{Capacity: 2, Medium: m})
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	f := New(l).Open()
	defer f.Release()

	writeAll(t, f, "par")
	m.err = errors.New("disk gone")
	n, err := f.Write([]byte("tial\n"))
	assert.ErrorIs(t, err, errorx.ErrIO)
	assert.Equal(t, 0, n)
	assert.Equal(t, 3, f.Pending())
	assert.Equal(t, 0, l.Len())

	m.err = nil
	writeAll(t, f, "tial\n")
	assert.Equal(t, "partial\n", string(l.Contents()))
	assert.Equal(t, 0, f.Pending())
}

func TestWriteSnapshot(t *testing.T) {
	dev := newTestDevice(t, 2)
	f := dev.Open()
	defer f.Release()

	snap, err := f.WriteSnapshot([]byte("AA"))
	require.NoError(t, err)
	assert.Nil(t, snap)

	snap, err = f.WriteSnapshot([]byte("A\n"))
	require.NoError(t, err)
	assert.Equal(t, "AAA\n", string(snap))

	writeAll(t, f, "BBB\n")
	snap, err = f.WriteSnapshot([]byte("CCC\n"))
	require.NoError(t, err)
	assert.Equal(t, "BBB\nCCC\n", string(snap))
}
