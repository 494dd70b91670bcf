// Package transports provides the network transports used by the CLI.
package transports

import "context"

// LogTransport talks the line protocol of the socket service.
type LogTransport interface {
	// Send writes each line (newline-terminated) and returns every reply
	// byte the server sent before closing.
	Send(ctx context.Context, lines [][]byte) ([]byte, error)
	// SeekTo issues one seek command and returns the reply.
	SeekTo(ctx context.Context, index, offset uint32) ([]byte, error)
}

// HealthTransport queries server health.
type HealthTransport interface {
	Check(ctx context.Context, service string) (string, error)
}
