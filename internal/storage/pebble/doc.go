// Package pebblestore provides a thin wrapper around Pebble with fsync policy,
// batches, and minimal metrics hooks, plus Mirror, an eventlog.Medium that
// keeps one key per ring slot.
//
// Usage:
//
//	m, err := pebblestore.OpenMirror(pebblestore.Options{
//	    DataDir: "/var/tmp/ringlog/pebble",
//	    Fsync:   pebblestore.FsyncModeInterval,
//	})
//	if err != nil { /* handle */ }
//	l, _ := eventlog.Open(eventlog.Options{Capacity: 10, Medium: m})
//	defer l.Close() // closes m and removes its directory
package pebblestore
