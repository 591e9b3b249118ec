// Package metrics provides Prometheus instrumentation for rwflow stages.
package metrics

import (
	"errors"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for rwflow components.
type Registry struct {
	// Stream Metrics
	BytesRead    *prometheus.CounterVec
	BytesWritten *prometheus.CounterVec
	Reads        *prometheus.CounterVec
	Writes       *prometheus.CounterVec
	Flushes      *prometheus.CounterVec
	Errors       *prometheus.CounterVec

	// Async Writer Metrics
	AsyncPending *prometheus.GaugeVec
	AsyncDropped *prometheus.CounterVec

	// Process Metrics
	ProcessSpawns *prometheus.CounterVec
}

// DefaultRegistry is the registry used when a component is not given one.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	cfg := DefaultConfig()
	cfg.Registry = reg
	return NewRegistryWithConfig(cfg)
}

// NewRegistryWithConfig creates a registry from cfg. It returns nil when
// cfg.Enabled is false; components treat a nil registry as "not metered".
func NewRegistryWithConfig(cfg Config) *Registry {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	factory := promauto.With(cfg.Registry)

	counter := func(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   subsystem,
				Name:        name,
				Help:        help,
				ConstLabels: cfg.Labels,
			},
			labels,
		)
	}

	return &Registry{
		BytesRead:    counter("stream", "bytes_read_total", "Total bytes returned by stage readers", "stage"),
		BytesWritten: counter("stream", "bytes_written_total", "Total bytes accepted by stage writers", "stage"),
		Reads:        counter("stream", "reads_total", "Total number of Read calls", "stage"),
		Writes:       counter("stream", "writes_total", "Total number of Write calls", "stage"),
		Flushes:      counter("stream", "flushes_total", "Total number of Flush calls", "stage"),
		Errors:       counter("stream", "errors_total", "Total number of failed stream operations", "stage", "op"),

		AsyncPending: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "async",
				Name:        "pending_bytes",
				Help:        "Bytes buffered by an async writer and not yet written",
				ConstLabels: cfg.Labels,
			},
			[]string{"stage"},
		),
		AsyncDropped: counter("async", "dropped_writes_total", "Writes rejected because the async buffer was full", "stage"),

		ProcessSpawns: counter("process", "spawns_total", "Total number of spawned child processes", "command", "mode"),
	}
}

// ObserveRead records one Read call on stage.
func (r *Registry) ObserveRead(stage string, n int, err error) {
	if r == nil {
		return
	}
	r.Reads.WithLabelValues(stage).Inc()
	if n > 0 {
		r.BytesRead.WithLabelValues(stage).Add(float64(n))
	}
	if err != nil && !isEOF(err) {
		r.Errors.WithLabelValues(stage, "read").Inc()
	}
}

// ObserveWrite records one Write call on stage.
func (r *Registry) ObserveWrite(stage string, n int, err error) {
	if r == nil {
		return
	}
	r.Writes.WithLabelValues(stage).Inc()
	if n > 0 {
		r.BytesWritten.WithLabelValues(stage).Add(float64(n))
	}
	if err != nil {
		r.Errors.WithLabelValues(stage, "write").Inc()
	}
}

// ObserveFlush records one Flush call on stage.
func (r *Registry) ObserveFlush(stage string, err error) {
	if r == nil {
		return
	}
	r.Flushes.WithLabelValues(stage).Inc()
	if err != nil {
		r.Errors.WithLabelValues(stage, "flush").Inc()
	}
}

// ObserveError records a failed operation that is not a read, write or flush.
func (r *Registry) ObserveError(stage, op string) {
	if r == nil {
		return
	}
	r.Errors.WithLabelValues(stage, op).Inc()
}

// ObserveSpawn records a child process started in mode ("detached", "attached" or "terminal").
func (r *Registry) ObserveSpawn(command, mode string) {
	if r == nil {
		return
	}
	r.ProcessSpawns.WithLabelValues(command, mode).Inc()
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
