// Package errorx holds the error kinds shared by the ringlog front ends.
// Callers wrap them with fmt.Errorf("...: %w", err) and match with errors.Is.
package errorx

import "errors"

var (
	// ErrInvalidArgument reports malformed seek or control parameters.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfRange reports an offset or record index beyond the live store.
	ErrOutOfRange = errors.New("out of range")
	// ErrAllocation reports that a pending record could not grow any further.
	ErrAllocation = errors.New("record buffer limit exceeded")
	// ErrIO reports a failure of the backing medium or the network.
	ErrIO = errors.New("i/o failure")
	// ErrAddressFault reports a missing or unusable caller buffer.
	ErrAddressFault = errors.New("bad address")
	// ErrNotTTY reports an unknown control command.
	ErrNotTTY = errors.New("inappropriate ioctl for device")
	// ErrClosed reports use of a released handle or closed log.
	ErrClosed = errors.New("closed")
)
