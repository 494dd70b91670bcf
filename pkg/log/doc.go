// Package log provides ringlog's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. It is backed by the standard library's
// slog through a bridge handler that routes records into our own
// formatter/outputs pipeline, so every component produces the same lines.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("tcp"))
//	l.Info("accepted connection", log.Str("remote", "127.0.0.1:50122"))
//
// # Configuration
//
// ApplyConfig builds a logger from a declarative Config (level, text or JSON
// format, optional file output).
//
// # Interop
//
// Pebble and other libraries log through the standard library's *log.Logger.
// RedirectStdLog sends that output through a Logger.
package log
