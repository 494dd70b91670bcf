// Package id generates sortable identifiers for network sessions.
//
// An ID is 12 bytes big-endian: [8 bytes ms_timestamp][4 bytes sequence].
// Byte-wise comparison follows creation order within one process, which
// keeps session logs grep-able and sortable.
//
//	g := id.NewGenerator()
//	sid := g.Next()
//	sid.String() // 24 hex chars
//	sid.Short()  // last 8 hex chars, for log lines
package id
