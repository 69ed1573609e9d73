// Package metrics exposes Prometheus metrics for the registry.
//
// Collector implements registry.Observer, so every entry point is counted
// and timed, and its Changed method can be registered with OnChange.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/gray-logic-registry/internal/registry"
)

const namespace = "graylogic_registry"

// Collector holds all Prometheus metrics for the registry.
type Collector struct {
	gatherer prometheus.Gatherer

	// Operation metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Value metrics
	ValueChanges *prometheus.CounterVec

	// API metrics
	HTTPRequests     *prometheus.CounterVec
	WebSocketClients prometheus.Gauge
}

// New creates a collector registered with reg. A nil reg uses a fresh
// registry that also carries the Go and process collectors.
func New(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(reg)

	return &Collector{
		gatherer: reg,

		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Registry operations by kind and result",
			},
			[]string{"op", "result"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Registry operation duration in seconds",
				Buckets:   []float64{.00001, .0001, .001, .01, .1, .5, 1, 5, 30},
			},
			[]string{"op"},
		),
		ValueChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "value_changes_total",
				Help:      "Parameter writes by namespace",
			},
			[]string{"namespace"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP API requests by method and status",
			},
			[]string{"method", "status"},
		),
		WebSocketClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "websocket_clients",
				Help:      "Connected change feed clients",
			},
		),
	}
}

// ObserveOperation records one registry operation.
func (c *Collector) ObserveOperation(op string, elapsed time.Duration, err error) {
	c.OperationsTotal.WithLabelValues(op, result(err)).Inc()
	c.OperationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Changed counts a parameter write. Its signature matches registry.ChangeFunc.
func (c *Collector) Changed(p registry.Path, _ registry.Value) {
	c.ValueChanges.WithLabelValues(p.Namespace().String()).Inc()
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// result maps an operation error to a low-cardinality label.
func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, registry.ErrResolution):
		return "resolution"
	case errors.Is(err, registry.ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, registry.ErrConversion):
		return "conversion"
	case errors.Is(err, registry.ErrStorage):
		return "storage"
	case errors.Is(err, registry.ErrCommit):
		return "commit"
	}
	return "error"
}
