// Package ringbuf implements the fixed-capacity circular store behind ringlog.
//
// # Overview
//
// A Buffer holds up to Cap() records in physical slots. Records are appended
// at the write index; once the ring has wrapped every insertion overwrites the
// oldest slot and hands the overwritten record back to the caller, who owns
// its disposal. The live records, read from the oldest, form one byte stream
// addressed by a global offset:
//
//	b := ringbuf.New(2)
//	b.Add(ringbuf.NewRecord([]byte("AAA\n")))
//	b.Add(ringbuf.NewRecord([]byte("BBB\n")))
//	old, _ := b.Add(ringbuf.NewRecord([]byte("CCC\n"))) // old holds "AAA\n"
//	slot, intra, _ := b.ResolveOffset(5)               // "CCC\n", 1
//	off, _ := b.OffsetForIndex(1)                      // 4
//
// A Buffer is not safe for concurrent use; eventlog.Log serializes access.
package ringbuf
