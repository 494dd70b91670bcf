// Package assembler accumulates fragmented writes into newline-terminated
// records.
//
// The device front end commits only when the most recent write leaves the
// buffer ending in the terminator (Complete + Take). The network front end
// splits every complete line out of a stream of chunks (Next).
package assembler

import (
	"bytes"
	"fmt"

	"github.com/rzbill/ringlog/internal/errorx"
)

// Terminator ends every record.
const Terminator = '\n'

// DefaultLimit bounds a single pending record.
const DefaultLimit = 1 << 20

// Assembler is a growable pending-message buffer. It is not safe for
// concurrent use; each producer context owns one.
type Assembler struct {
	buf   []byte
	limit int
}

// New returns an empty Assembler that refuses to grow past limit bytes.
// A limit of zero or less selects DefaultLimit.
func New(limit int) *Assembler {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Assembler{limit: limit}
}

// Write appends p to the pending buffer. Growing past the limit discards the
// pending bytes and returns errorx.ErrAllocation.
func (a *Assembler) Write(p []byte) (int, error) {
	if len(a.buf)+len(p) > a.limit {
		size := len(a.buf) + len(p)
		a.Reset()
		return 0, fmt.Errorf("pending record of %d bytes exceeds %d: %w", size, a.limit, errorx.ErrAllocation)
	}
	a.buf = append(a.buf, p...)
	return len(p), nil
}

// Complete reports whether the pending bytes end with the terminator.
func (a *Assembler) Complete() bool {
	return len(a.buf) > 0 && a.buf[len(a.buf)-1] == Terminator
}

// Next removes and returns the first complete line, terminator included.
// Bytes after the terminator stay pending.
func (a *Assembler) Next() ([]byte, bool) {
	i := bytes.IndexByte(a.buf, Terminator)
	if i < 0 {
		return nil, false
	}
	if i == len(a.buf)-1 {
		return a.Take(), true
	}
	line := make([]byte, i+1)
	copy(line, a.buf[:i+1])
	rest := copy(a.buf, a.buf[i+1:])
	a.buf = a.buf[:rest]
	return line, true
}

// Take transfers the pending buffer to the caller and resets the assembler.
func (a *Assembler) Take() []byte {
	b := a.buf
	a.buf = nil
	return b
}

// Reset discards any pending bytes.
func (a *Assembler) Reset() { a.buf = nil }

// Len returns the number of pending bytes.
func (a *Assembler) Len() int { return len(a.buf) }

// Pending reports whether a partial record is buffered.
func (a *Assembler) Pending() bool { return len(a.buf) > 0 }
