// Package client provides the ringlog command-line client.
//
// Address configuration
//
// The socket service address is read from RINGLOG_TCP (default
// 127.0.0.1:9000), the gRPC address from RINGLOG_GRPC (default
// 127.0.0.1:50051). The HTTP base URL comes from the embedding binary via a
// BaseURLFunc.
//
// Usage
//
//	ringlog send "first line" "second line"
//	ringlog seekto 1 2
//	ringlog health
//	ringlog stats
//
// send and seekto speak the line protocol directly: each argument becomes
// one newline-terminated line, and everything the server replies is printed
// until it closes the connection.
package client
