package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query-signal extraction metrics. Extraction and geocoding both sit on the
// hot search path, so their failure rates are worth watching separately from
// request latency.
var (
	ExtractRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qanat",
			Name:      "extract_requests_total",
			Help:      "Total entity extraction calls against the NLP sidecar",
		},
		[]string{"kind", "lang", "status"}, // kind: "temporal" / "location"
	)

	GeocodeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qanat",
			Name:      "geocode_requests_total",
			Help:      "Total geocoding lookups",
		},
		[]string{"status"}, // "ok" / "miss" / "error"
	)
)

var signalMetricsRegistered bool

// RegisterSignalMetrics registers extraction and geocoding metrics. Must be called once from main.
func RegisterSignalMetrics() {
	if signalMetricsRegistered {
		return
	}
	prometheus.MustRegister(ExtractRequestsTotal)
	prometheus.MustRegister(GeocodeRequestsTotal)
	signalMetricsRegistered = true
}
