package id

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sync"
	"time"
)

// Size is the encoded length of an ID in bytes.
const Size = 12

// ID identifies one accepted connection.
type ID [Size]byte

// Zero is the unset ID.
var Zero ID

// String returns the full hex form.
func (i ID) String() string { return hex.EncodeToString(i[:]) }

// Short returns the hex form of the sequence part.
func (i ID) Short() string { return hex.EncodeToString(i[8:]) }

// Time returns the creation time with millisecond precision.
func (i ID) Time() time.Time {
	return time.UnixMilli(int64(binary.BigEndian.Uint64(i[:8])))
}

// Seq returns the per-millisecond sequence.
func (i ID) Seq() uint32 { return binary.BigEndian.Uint32(i[8:]) }

// Compare returns -1, 0, 1 based on lexical comparison.
func (i ID) Compare(other ID) int {
	for idx := 0; idx < Size; idx++ {
		switch {
		case i[idx] < other[idx]:
			return -1
		case i[idx] > other[idx]:
			return 1
		}
	}
	return 0
}

// Parse decodes the String form.
func Parse(s string) (ID, error) {
	var out ID
	if hex.DecodedLen(len(s)) != Size {
		return out, fmt.Errorf("id: want %d hex chars, got %d", Size*2, len(s))
	}
	if _, err := hex.Decode(out[:], []byte(s)); err != nil {
		return out, fmt.Errorf("id: %w", err)
	}
	return out, nil
}

// NowMs returns current time in milliseconds since Unix epoch.
var NowMs = func() int64 { return time.Now().UnixMilli() }

// Generator produces increasing IDs per process.
type Generator struct {
	mu     sync.Mutex
	lastMs int64
	seq    uint32
}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator { return &Generator{} }

// Next returns a new ID. A regressing clock pins to the last seen millisecond;
// an exhausted sequence waits for the next millisecond.
func (g *Generator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := NowMs()
	if ms < g.lastMs {
		ms = g.lastMs
	}
	switch {
	case ms != g.lastMs:
		g.seq = 0
	case g.seq == math.MaxUint32:
		for ms <= g.lastMs {
			time.Sleep(time.Millisecond / 8)
			ms = NowMs()
		}
		g.seq = 0
	default:
		g.seq++
	}
	g.lastMs = ms

	var out ID
	binary.BigEndian.PutUint64(out[:8], uint64(ms))
	binary.BigEndian.PutUint32(out[8:], g.seq)
	return out
}
