package tcpserver

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/rzbill/ringlog/internal/device"
	"github.com/rzbill/ringlog/internal/errorx"
)

// SeekToPrefix starts a seek command line.
const SeekToPrefix = "AESDCHAR_IOCSEEKTO:"

// FormatSeekTo renders the command line for index and offset.
func FormatSeekTo(index, offset uint32) []byte {
	return []byte(fmt.Sprintf("%s%d,%d\n", SeekToPrefix, index, offset))
}

// parseSeekTo reports whether line is a seek command and, if so, its
// arguments. Both fields must be base-10 uint32 values.
func parseSeekTo(line []byte) (device.SeekTo, bool, error) {
	if !bytes.HasPrefix(line, []byte(SeekToPrefix)) {
		return device.SeekTo{}, false, nil
	}
	body := bytes.TrimSuffix(line[len(SeekToPrefix):], []byte("\n"))
	body = bytes.TrimSuffix(body, []byte("\r"))
	idx, off, ok := bytes.Cut(body, []byte(","))
	if !ok {
		return device.SeekTo{}, true, fmt.Errorf("seekto %q: missing comma: %w", body, errorx.ErrInvalidArgument)
	}
	i, err := strconv.ParseUint(string(idx), 10, 32)
	if err != nil {
		return device.SeekTo{}, true, fmt.Errorf("seekto index %q: %w", idx, errorx.ErrInvalidArgument)
	}
	o, err := strconv.ParseUint(string(off), 10, 32)
	if err != nil {
		return device.SeekTo{}, true, fmt.Errorf("seekto offset %q: %w", off, errorx.ErrInvalidArgument)
	}
	return device.SeekTo{WriteCmd: uint32(i), WriteCmdOffset: uint32(o)}, true, nil
}
