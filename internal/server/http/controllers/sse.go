package controllers

import (
	"encoding/json"
	"net/http"
)

// sseSink writes Server-Sent Events to one response.
type sseSink struct {
	w http.ResponseWriter
}

func newSSESink(w http.ResponseWriter) sseSink {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	s := sseSink{w: w}
	s.Flush()
	return s
}

// Send writes v as a JSON data event and flushes it.
func (s sseSink) Send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("\n\n")); err != nil {
		return err
	}
	s.Flush()
	return nil
}

// Ping writes a comment line so idle proxies keep the stream open.
func (s sseSink) Ping() error {
	if _, err := s.w.Write([]byte(": ping\n\n")); err != nil {
		return err
	}
	s.Flush()
	return nil
}

// Flush flushes the response writer if it supports flushing.
func (s sseSink) Flush() {
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
}
