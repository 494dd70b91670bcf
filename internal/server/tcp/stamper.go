package tcpserver

import (
	"context"
	"time"

	logpkg "github.com/rzbill/ringlog/pkg/log"
)

// DefaultStampInterval separates timestamp records.
const DefaultStampInterval = 10 * time.Second

// TimestampLayout is RFC 2822 with a numeric zone.
const TimestampLayout = "Mon, 02 Jan 2006 15:04:05 -0700"

// Timestamp renders the record written for t.
func Timestamp(t time.Time) []byte {
	return []byte("timestamp:" + t.Format(TimestampLayout) + "\n")
}

func (s *Server) stamp(ctx context.Context) {
	t := time.NewTicker(s.opts.StampInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.dev.Log().Append(ctx, Timestamp(s.opts.Now())); err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error("timestamp append failed", logpkg.Err(err))
				continue
			}
			s.metrics.ObserveTimestamp()
		}
	}
}
