// Package grpcserver hosts the gRPC server for ringlog. It registers the
// standard grpc.health.v1 Health service, answering from the runtime's
// health check.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{Config: config.Default()})
//	s := grpcserver.New(rt, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":50051")
package grpcserver
