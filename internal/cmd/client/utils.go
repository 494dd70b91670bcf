package client

import (
	"context"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// tcpAddrFromEnv returns the socket service address from RINGLOG_TCP or a default.
func tcpAddrFromEnv() string {
	if addr := os.Getenv("RINGLOG_TCP"); addr != "" {
		return addr
	}
	return "127.0.0.1:9000"
}

// grpcAddrFromEnv returns the gRPC server address from RINGLOG_GRPC or a default.
func grpcAddrFromEnv() string {
	if addr := os.Getenv("RINGLOG_GRPC"); addr != "" {
		return addr
	}
	return "127.0.0.1:50051"
}

// dialGRPCContext dials the gRPC endpoint with insecure transport for local/dev.
func dialGRPCContext(ctx context.Context) (*grpc.ClientConn, error) {
	return grpc.DialContext(ctx, grpcAddrFromEnv(), grpc.WithTransportCredentials(insecure.NewCredentials()))
}
