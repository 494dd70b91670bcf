package controllers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rzbill/ringlog/internal/device"
	"github.com/rzbill/ringlog/internal/errorx"
	"github.com/rzbill/ringlog/internal/ringbuf"
	"github.com/rzbill/ringlog/internal/runtime"
	logpkg "github.com/rzbill/ringlog/pkg/log"
)

// WatchHeartbeat is how often an idle watch stream gets a ping comment.
var WatchHeartbeat = 15 * time.Second

// LogController serves the record store over HTTP.
//
// GET /v1/log returns the raw contents, or with index and offset query
// parameters the contents from that byte of that record onwards; a missing
// parameter reads as 0. POST /v1/log appends the body as one record through
// a device handle.
type LogController struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
}

// NewLogController creates a new log controller.
func NewLogController(rt *runtime.Runtime, logger logpkg.Logger) *LogController {
	if logger == nil {
		logger = logpkg.NewNop()
	}
	return &LogController{rt: rt, logger: logger}
}

// RegisterRoutes registers log routes with the given mux.
func (c *LogController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/log", c.handleLog)
	mux.HandleFunc("/v1/log/records", c.handleRecords)
	mux.HandleFunc("/v1/log/watch", c.handleWatch)
}

func (c *LogController) handleLog(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		c.handleRead(w, r)
	case http.MethodPost:
		c.handleAppend(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (c *LogController) handleRead(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("index") && !q.Has("offset") {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(c.rt.Log().Contents())
		return
	}
	idx, err := parseUint32("index", q.Get("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	off, err := parseUint32("offset", q.Get("offset"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f := c.rt.Device().Open()
	defer f.Release()
	tail, err := f.CommandTail(device.SeekTo{WriteCmd: idx, WriteCmdOffset: off})
	switch {
	case errors.Is(err, errorx.ErrOutOfRange):
		writeError(w, http.StatusRequestedRangeNotSatisfiable, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, "not_serving")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(tail)
}

func (c *LogController) handleAppend(w http.ResponseWriter, r *http.Request) {
	limit := int64(c.rt.Config().MaxRecordBytes)
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "record too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(body) == 0 || body[len(body)-1] != '\n' {
		writeError(w, http.StatusBadRequest, "record must end with a newline")
		return
	}

	f := c.rt.Device().Open()
	defer f.Release()
	if _, err := f.Write(body); err != nil {
		c.logger.Error("http append failed", logpkg.Err(err))
		if errors.Is(err, errorx.ErrClosed) {
			writeError(w, http.StatusServiceUnavailable, "not_serving")
			return
		}
		writeError(w, http.StatusInternalServerError, "append failed")
		return
	}
	st, err := c.rt.Stats()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_serving")
		return
	}
	writeJSONStatus(w, http.StatusCreated, appendResp{Records: st.Records, TotalSize: st.TotalSize})
}

func (c *LogController) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	recs := c.rt.Log().Records()
	out := recordsResp{Records: make([]string, len(recs))}
	for i, b := range recs {
		out.Records[i] = string(b)
	}
	writeJSON(w, out)
}

// handleWatch streams a tailEvent after every append (bursts coalesce) until
// the client leaves or the log closes.
func (c *LogController) handleWatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	l := c.rt.Log()
	notify := l.AppendNotify()
	sink := newSSESink(w)
	hb := time.NewTicker(WatchHeartbeat)
	defer hb.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-hb.C:
			if err := sink.Ping(); err != nil {
				return
			}
		case <-notify:
			notify = l.AppendNotify()
			ev, err := c.tail()
			if err != nil {
				return
			}
			if err := sink.Send(ev); err != nil {
				return
			}
		}
	}
}

func (c *LogController) tail() (tailEvent, error) {
	var ev tailEvent
	err := c.rt.Log().Do(func(b *ringbuf.Buffer) error {
		ev.Records = b.Len()
		ev.TotalSize = b.TotalSize()
		if last, err := b.At(b.Len() - 1); err == nil {
			ev.Last = string(last.Bytes())
		}
		return nil
	})
	return ev, err
}
