// Package prometheus registers and updates the engine's metrics.
package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric the engine exports.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	snapshotZips    prometheus.Gauge
	snapshotBuiltAt prometheus.Gauge

	predictionsTotal *prometheus.CounterVec
}

// NewCollector builds and registers the metric set on a private registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketgap",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method, and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "marketgap",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		snapshotZips: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "marketgap",
			Name:      "snapshot_zips_analyzed",
			Help:      "Analyzable zips in the current snapshot.",
		}),
		snapshotBuiltAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "marketgap",
			Name:      "snapshot_built_timestamp_seconds",
			Help:      "Unix time the current snapshot was built.",
		}),
		predictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketgap",
			Name:      "predictions_total",
			Help:      "Survival predictions by result (ok, degraded, error).",
		}, []string{"result"}),
	}
	c.registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.snapshotZips,
		c.snapshotBuiltAt,
		c.predictionsTotal,
	)
	return c
}

// Handler serves the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (c *Collector) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	c.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// SnapshotRebuilt updates the snapshot gauges.
func (c *Collector) SnapshotRebuilt(zipsAnalyzed int, builtAt time.Time) {
	c.snapshotZips.Set(float64(zipsAnalyzed))
	c.snapshotBuiltAt.Set(float64(builtAt.Unix()))
}

// ObservePrediction counts one prediction outcome.
func (c *Collector) ObservePrediction(result string) {
	c.predictionsTotal.WithLabelValues(result).Inc()
}
