package pebblestore

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/cockroachdb/pebble"

	"github.com/rzbill/ringlog/internal/eventlog"
)

// Keyspace (byte-wise, lexicographically sortable):
//   - ring/m               slot of the most recent commit (be4)
//   - ring/s/{slot_be4}    record bytes for a physical slot
var (
	metaKey    = []byte("ring/m")
	slotPrefix = []byte("ring/s/")
)

// KeySlot builds the key for a physical slot.
func KeySlot(slot int) []byte {
	k := make([]byte, 0, len(slotPrefix)+4)
	k = append(k, slotPrefix...)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(slot))
	return append(k, b[:]...)
}

// Mirror keeps a Pebble copy of the ring for the lifetime of the process. The
// data directory is wiped on open and removed on close.
type Mirror struct {
	db  *DB
	dir string
}

var _ eventlog.Medium = (*Mirror)(nil)

// OpenMirror opens a fresh Pebble database in opts.DataDir.
func OpenMirror(opts Options) (*Mirror, error) {
	if opts.DataDir != "" {
		if err := os.RemoveAll(opts.DataDir); err != nil {
			return nil, fmt.Errorf("pebble: clear %s: %w", opts.DataDir, err)
		}
	}
	db, err := Open(opts)
	if err != nil {
		return nil, err
	}
	return &Mirror{db: db, dir: opts.DataDir}, nil
}

// Commit writes the slot and the last-written marker in one batch.
func (m *Mirror) Commit(c eventlog.Commit) error {
	b := m.db.NewBatch()
	defer b.Close()
	if err := b.Set(KeySlot(c.Slot), c.Record, nil); err != nil {
		return err
	}
	var meta [4]byte
	binary.BigEndian.PutUint32(meta[:], uint32(c.Slot))
	if err := b.Set(metaKey, meta[:], nil); err != nil {
		return err
	}
	return m.db.CommitBatch(context.Background(), b)
}

// Slot returns the mirrored bytes of a physical slot.
func (m *Mirror) Slot(slot int) ([]byte, error) {
	return m.db.Get(KeySlot(slot))
}

// Slots returns every mirrored slot keyed by slot number.
func (m *Mirror) Slots() (map[int][]byte, error) {
	hi := KeySlot(int(^uint32(0)))
	it, err := m.db.NewIter(&pebble.IterOptions{LowerBound: slotPrefix, UpperBound: append(hi, 0x00)})
	if err != nil {
		return nil, err
	}
	defer it.Close()
	out := map[int][]byte{}
	for ok := it.First(); ok; ok = it.Next() {
		k := it.Key()
		slot := int(binary.BigEndian.Uint32(k[len(slotPrefix):]))
		out[slot] = append([]byte(nil), it.Value()...)
	}
	return out, it.Error()
}

// Close closes the database and removes its directory.
func (m *Mirror) Close() error {
	err := m.db.Close()
	if m.dir != "" {
		if rmErr := os.RemoveAll(m.dir); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}
