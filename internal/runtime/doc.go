// Package runtime wires the configured backing medium, the record log and
// the device front end into a single-node ringlog instance. It exposes
// Open/Close, a health check and store statistics for the servers.
//
// Example:
//
//	cfg := config.Default()
//	cfg.Medium = config.MediumMemory
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
//	f := rt.Device().Open()
//	_, _ = f.Write([]byte("hello\n"))
//	st, _ := rt.Stats() // {Records: 1, Capacity: 10, TotalSize: 6}
package runtime
