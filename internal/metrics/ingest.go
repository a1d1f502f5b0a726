package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion pipeline metrics.
var (
	IngestRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qanat",
			Name:      "ingest_records_total",
			Help:      "Source records seen by the ingestion pipeline",
		},
		[]string{"status"}, // "processed" / "skipped"
	)

	IngestBulkErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "qanat",
			Name:      "ingest_bulk_errors_total",
			Help:      "Chunks rejected by the index during bulk writes",
		},
	)
)

var ingestMetricsRegistered bool

// RegisterIngestMetrics registers ingestion metrics. Must be called once from main.
func RegisterIngestMetrics() {
	if ingestMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestRecordsTotal)
	prometheus.MustRegister(IngestBulkErrorsTotal)
	ingestMetricsRegistered = true
}
