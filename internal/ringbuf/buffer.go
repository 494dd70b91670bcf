package ringbuf

import "errors"

// DefaultCapacity is the number of records retained when no capacity is given.
const DefaultCapacity = 10

// ErrNotFound is returned when an offset or index does not address a live record.
var ErrNotFound = errors.New("ringbuf: no record at position")

// Buffer is a fixed-size ring of records.
type Buffer struct {
	entries []Record
	in      int // next slot to fill
	out     int // oldest live slot
	full    bool
	size    uint64
}

// New returns an empty Buffer with the given number of slots. A capacity of
// zero or less selects DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{entries: make([]Record, capacity)}
}

// Cap returns the number of slots.
func (b *Buffer) Cap() int { return len(b.entries) }

// Full reports whether every slot holds a live record.
func (b *Buffer) Full() bool { return b.full }

// Len returns the number of live records.
func (b *Buffer) Len() int {
	if b.full {
		return len(b.entries)
	}
	return b.in
}

// TotalSize returns the sum of the lengths of all live records.
func (b *Buffer) TotalSize() uint64 { return b.size }

// WriteIndex returns the slot the next Add will fill.
func (b *Buffer) WriteIndex() int { return b.in }

// ReadIndex returns the slot of the oldest live record.
func (b *Buffer) ReadIndex() int { return b.out }

// Add stores rec at the write index. When the ring is full the record that
// occupied the slot is returned with ok set; the caller owns it from then on.
func (b *Buffer) Add(rec Record) (evicted Record, ok bool) {
	if b.full {
		evicted, ok = b.entries[b.in], true
		b.size -= uint64(evicted.Len())
	}
	b.entries[b.in] = rec
	b.size += uint64(rec.Len())
	b.in = (b.in + 1) % len(b.entries)
	if b.full {
		b.out = b.in
	} else if b.in == b.out {
		b.full = true
	}
	return evicted, ok
}

// Slot returns the record in a physical slot. Unused slots yield a zero Record.
func (b *Buffer) Slot(slot int) Record {
	if slot < 0 || slot >= len(b.entries) {
		return Record{}
	}
	return b.entries[slot]
}

// ResolveIndex maps a logical record index (0 is the oldest live record) to
// its physical slot.
func (b *Buffer) ResolveIndex(index int) (int, error) {
	if index < 0 || index >= b.Len() {
		return 0, ErrNotFound
	}
	slot := (b.out + index) % len(b.entries)
	if b.entries[slot].IsZero() {
		return 0, ErrNotFound
	}
	return slot, nil
}

// At returns the live record at a logical index.
func (b *Buffer) At(index int) (Record, error) {
	slot, err := b.ResolveIndex(index)
	if err != nil {
		return Record{}, err
	}
	return b.entries[slot], nil
}

// ResolveOffset finds the record covering a global offset and the offset
// within that record. Offsets at or past TotalSize return ErrNotFound.
func (b *Buffer) ResolveOffset(offset uint64) (slot int, intra int, err error) {
	if offset >= b.size {
		return 0, 0, ErrNotFound
	}
	var start uint64
	n := b.Len()
	for i := 0; i < n; i++ {
		s := (b.out + i) % len(b.entries)
		l := uint64(b.entries[s].Len())
		if offset < start+l {
			return s, int(offset - start), nil
		}
		start += l
	}
	return 0, 0, ErrNotFound
}

// OffsetForIndex returns the global offset at which the record with the given
// logical index starts.
func (b *Buffer) OffsetForIndex(index int) (uint64, error) {
	if index < 0 || index >= b.Len() {
		return 0, ErrNotFound
	}
	var off uint64
	for i := 0; i < index; i++ {
		off += uint64(b.entries[(b.out+i)%len(b.entries)].Len())
	}
	return off, nil
}

// Each calls fn for every live record from oldest to newest until fn
// returns false.
func (b *Buffer) Each(fn func(index int, rec Record) bool) {
	n := b.Len()
	for i := 0; i < n; i++ {
		if !fn(i, b.entries[(b.out+i)%len(b.entries)]) {
			return
		}
	}
}

// AppendTo appends the live stream from a global offset to the end onto dst.
// Offsets at or past TotalSize append nothing.
func (b *Buffer) AppendTo(dst []byte, from uint64) []byte {
	slot, intra, err := b.ResolveOffset(from)
	if err != nil {
		return dst
	}
	dst = append(dst, b.entries[slot].Bytes()[intra:]...)
	for s := (slot + 1) % len(b.entries); s != b.in; s = (s + 1) % len(b.entries) {
		dst = append(dst, b.entries[s].Bytes()...)
	}
	return dst
}

// Reset empties the buffer and returns the records it held, oldest first.
func (b *Buffer) Reset() []Record {
	out := make([]Record, 0, b.Len())
	b.Each(func(_ int, rec Record) bool {
		out = append(out, rec)
		return true
	})
	for i := range b.entries {
		b.entries[i] = Record{}
	}
	b.in, b.out, b.full, b.size = 0, 0, false, 0
	return out
}
