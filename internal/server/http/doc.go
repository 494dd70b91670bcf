// Package httpserver provides a small REST gateway onto the record store:
// health, statistics, raw contents, seek-to reads, appends, a Server-Sent
// Events watch stream and Prometheus metrics.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: config.Default(), Metrics: metrics.NewPrometheus()})
//	s := httpserver.New(rt, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
