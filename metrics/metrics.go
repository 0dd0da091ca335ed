package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every collector exported by this service.
const DefaultNamespace = "wachat"

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	IngestedPayloads *prometheus.CounterVec
	EventsEmitted    *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPLatency      *prometheus.HistogramVec
	ConnectedClients prometheus.Gauge
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			IngestedPayloads: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingested_payloads_total",
				Help:      "Total inbound payloads processed, by payload type and outcome.",
			}, []string{"type", "outcome"}),
			EventsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_emitted_total",
				Help:      "Total realtime events fanned out to connected clients.",
			}, []string{"event"}),
			HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by method, route and status code.",
			}, []string{"method", "route", "status"}),
			HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Latency distribution for HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method", "route"}),
			ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "connected_clients",
				Help:      "Number of websocket clients currently connected.",
			}),
		}

		prometheus.MustRegister(
			metricsInstance.IngestedPayloads,
			metricsInstance.EventsEmitted,
			metricsInstance.HTTPRequests,
			metricsInstance.HTTPLatency,
			metricsInstance.ConnectedClients,
		)
	})
	return metricsInstance
}
