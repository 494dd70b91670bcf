package ringbuf

// Record owns the bytes of one committed write. The store never copies or
// frees a record; ownership moves in on Add and out on eviction or Reset.
type Record struct {
	data []byte
}

// NewRecord takes ownership of b. The caller must not modify b afterwards.
func NewRecord(b []byte) Record { return Record{data: b} }

// Bytes returns the record contents. The slice must be treated as read-only.
func (r Record) Bytes() []byte { return r.data }

// Len returns the record length in bytes.
func (r Record) Len() int { return len(r.data) }

// IsZero reports whether the record holds no buffer (an unused slot).
func (r Record) IsZero() bool { return r.data == nil }
