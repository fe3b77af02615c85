package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the service.
//
// Metrics:
//   - travel_extractions_total{kind,source} - drafts produced, by extractor that produced them
//   - travel_extraction_fallbacks_total{kind,reason} - remote extractions downgraded to the heuristic
//   - travel_geocode_requests_total{op,status} - geocoding API calls
//   - travel_http_requests_total{method,route,status} - HTTP requests served
//   - travel_http_request_duration_seconds{method,route} - HTTP latency
type Metrics struct {
	ExtractionsTotal  *prometheus.CounterVec
	FallbacksTotal    *prometheus.CounterVec
	GeocodeTotal      *prometheus.CounterVec
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ExtractionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "travel_extractions_total",
				Help: "Total number of drafts extracted from utterances",
			},
			[]string{"kind", "source"}, // kind: expense|trip, source: llm|heuristic
		),
		FallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "travel_extraction_fallbacks_total",
				Help: "Total number of remote extractions that fell back to the heuristic",
			},
			[]string{"kind", "reason"},
		),
		GeocodeTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "travel_geocode_requests_total",
				Help: "Total number of geocoding requests",
			},
			[]string{"op", "status"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "travel_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "travel_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveExtraction counts a produced draft
func (m *Metrics) ObserveExtraction(kind, source string) {
	m.ExtractionsTotal.WithLabelValues(kind, source).Inc()
}

// ObserveFallback counts a downgrade to the heuristic
func (m *Metrics) ObserveFallback(kind, reason string) {
	m.FallbacksTotal.WithLabelValues(kind, reason).Inc()
}

// ObserveGeocode counts a geocoding call
func (m *Metrics) ObserveGeocode(op, status string) {
	m.GeocodeTotal.WithLabelValues(op, status).Inc()
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}
