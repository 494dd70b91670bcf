package grpcserver

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/rzbill/ringlog/internal/runtime"
)

// ServiceName is the health service name for the record log; the empty name
// means the whole server and reports the same status.
const ServiceName = "ringlog.Log"

type healthSvc struct {
	healthpb.UnimplementedHealthServer
	rt   *runtime.Runtime
	poll time.Duration
}

func (h *healthSvc) status(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	if service != "" && service != ServiceName {
		return healthpb.HealthCheckResponse_SERVICE_UNKNOWN, status.Errorf(codes.NotFound, "unknown service %q", service)
	}
	if err := h.rt.CheckHealth(ctx); err != nil {
		return healthpb.HealthCheckResponse_NOT_SERVING, nil
	}
	return healthpb.HealthCheckResponse_SERVING, nil
}

func (h *healthSvc) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	st, err := h.status(ctx, req.GetService())
	if err != nil {
		return nil, err
	}
	return &healthpb.HealthCheckResponse{Status: st}, nil
}

// Watch sends the current status, then every change until the client leaves.
// Unknown services are reported as SERVICE_UNKNOWN rather than failing.
func (h *healthSvc) Watch(req *healthpb.HealthCheckRequest, stream healthpb.Health_WatchServer) error {
	ctx := stream.Context()
	last := healthpb.HealthCheckResponse_ServingStatus(-1)
	t := time.NewTicker(h.poll)
	defer t.Stop()
	for {
		st, _ := h.status(ctx, req.GetService())
		if ctx.Err() != nil {
			return status.FromContextError(ctx.Err()).Err()
		}
		if st != last {
			if err := stream.Send(&healthpb.HealthCheckResponse{Status: st}); err != nil {
				return err
			}
			last = st
		}
		select {
		case <-ctx.Done():
			return status.FromContextError(ctx.Err()).Err()
		case <-t.C:
		}
	}
}
