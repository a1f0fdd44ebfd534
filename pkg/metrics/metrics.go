// Package metrics exposes Prometheus metrics for dispatched requests.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	yeahttp "github.com/wesleyorama2/yea/http"
)

// Collector records one sample per settled dispatch. It implements
// http.Observer and is safe for concurrent use.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec

	registry *prometheus.Registry
}

var _ yeahttp.Observer = (*Collector)(nil)

// NewCollector creates a collector on a fresh registry.
func NewCollector() *Collector {
	return NewCollectorWithRegistry(prometheus.NewRegistry())
}

// NewCollectorWithRegistry creates a collector using the supplied registry.
func NewCollectorWithRegistry(registry *prometheus.Registry) *Collector {
	return &Collector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "yea_requests_total",
				Help: "Total number of dispatched requests by outcome",
			},
			[]string{"method", "status_code", "outcome"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "yea_request_duration_seconds",
				Help:    "Duration of dispatched requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "outcome"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "yea_errors_total",
				Help: "Total number of rejected dispatches",
			},
			[]string{"type", "method"},
		),
		registry: registry,
	}
}

// ObserveExchange implements http.Observer.
func (c *Collector) ObserveExchange(method string, status int, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}

	c.requestsTotal.WithLabelValues(method, strconv.Itoa(status), outcome).Inc()
	c.requestDuration.WithLabelValues(method, outcome).Observe(elapsed.Seconds())
	if outcome != yeahttp.OutcomeResolved {
		c.errorsTotal.WithLabelValues(outcome, method).Inc()
	}
}

// Registry returns the registry the metrics are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteToFile writes the current metrics in the Prometheus text format,
// for collection by the node exporter's textfile collector.
func (c *Collector) WriteToFile(filename string) error {
	return prometheus.WriteToTextfile(filename, c.registry)
}
