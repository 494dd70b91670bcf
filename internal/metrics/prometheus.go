// Package metrics exports ringlog observations to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rzbill/ringlog/internal/eventlog"
	pebblestore "github.com/rzbill/ringlog/internal/storage/pebble"
)

const namespace = "ringlog"

// Command results recorded by ObserveCommand.
const (
	ResultOK        = "ok"
	ResultRejected  = "rejected"
	ResultMalformed = "malformed"
)

var (
	_ eventlog.MetricsHook    = (*Prometheus)(nil)
	_ pebblestore.MetricsHook = (*Prometheus)(nil)
)

// Prometheus owns a private registry so several instances (tests) can coexist.
type Prometheus struct {
	registry *prometheus.Registry

	appends       prometheus.Counter     // committed records
	appendBytes   prometheus.Counter     // committed bytes
	appendErrors  prometheus.Counter     // commits aborted by the medium
	appendLatency prometheus.Histogram   // time spent under the log lock
	evictions     prometheus.Counter     // records pushed out of the ring
	reads         prometheus.Counter     // full or partial store copies
	readBytes     prometheus.Counter     // bytes copied out of the store
	mediumCommits prometheus.Counter     // pebble batch commits
	mediumBytes   prometheus.Counter     // pebble batch bytes
	connsActive   prometheus.Gauge       // live tcp handlers
	connsTotal    prometheus.Counter     // accepted tcp connections
	commands      *prometheus.CounterVec // seek commands by result
	timestamps    prometheus.Counter     // periodic timestamp records
}

// NewPrometheus registers every collector on a new registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{registry: prometheus.NewRegistry()}
	return p.register()
}

func (p *Prometheus) register() *Prometheus {
	p.appends = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "appends_total",
		Help: "Number of records committed to the ring.",
	})
	p.appendBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "append_bytes_total",
		Help: "Bytes committed to the ring.",
	})
	p.appendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "append_errors_total",
		Help: "Commits aborted because the backing medium failed.",
	})
	p.appendLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Name: "append_duration_seconds",
		Help:    "Time to commit one record, lock wait excluded.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	})
	p.evictions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "evictions_total",
		Help: "Records evicted to make room for newer ones.",
	})
	p.reads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "reads_total",
		Help: "Store contents copies served.",
	})
	p.readBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "read_bytes_total",
		Help: "Bytes copied out of the store.",
	})
	p.mediumCommits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "medium_commits_total",
		Help: "Batches committed to the Pebble mirror.",
	})
	p.mediumBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "medium_commit_bytes_total",
		Help: "Bytes committed to the Pebble mirror.",
	})
	p.connsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "connections_active",
		Help: "Connections currently being served.",
	})
	p.connsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "connections_total",
		Help: "Connections accepted.",
	})
	p.commands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "seek_commands_total",
		Help: "Seek-to commands received, by result.",
	}, []string{"result"})
	p.timestamps = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "timestamps_total",
		Help: "Timestamp records written by the periodic writer.",
	})

	p.registry.MustRegister(
		p.appends, p.appendBytes, p.appendErrors, p.appendLatency, p.evictions,
		p.reads, p.readBytes, p.mediumCommits, p.mediumBytes,
		p.connsActive, p.connsTotal, p.commands, p.timestamps,
		collectors.NewGoCollector(),
	)
	return p
}

// Handler returns the HTTP handler serving this registry.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry exposes the registry (tests gather from it directly).
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

func (p *Prometheus) ObserveAppend(elapsed time.Duration, bytes int, evicted bool) {
	p.appends.Inc()
	p.appendBytes.Add(float64(bytes))
	p.appendLatency.Observe(elapsed.Seconds())
	if evicted {
		p.evictions.Inc()
	}
}

func (p *Prometheus) ObserveAppendError() { p.appendErrors.Inc() }

func (p *Prometheus) ObserveRead(_ time.Duration, bytes int) {
	p.reads.Inc()
	p.readBytes.Add(float64(bytes))
}

func (p *Prometheus) ObserveBatchCommit(_ time.Duration, bytes int) {
	p.mediumCommits.Inc()
	p.mediumBytes.Add(float64(bytes))
}

// ObserveConnection moves the active gauge by delta; positive deltas also
// count as accepted connections.
func (p *Prometheus) ObserveConnection(delta int) {
	p.connsActive.Add(float64(delta))
	if delta > 0 {
		p.connsTotal.Add(float64(delta))
	}
}

func (p *Prometheus) ObserveCommand(result string) { p.commands.WithLabelValues(result).Inc() }

func (p *Prometheus) ObserveTimestamp() { p.timestamps.Inc() }
