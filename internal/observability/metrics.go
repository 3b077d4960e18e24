// Package observability holds the process-wide metrics and tracer of the
// extraction pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Extraction outcomes.
const (
	OutcomeFound  = "found"
	OutcomeAbsent = "absent"
	OutcomeError  = "error"
)

// Metrics definitions
var (
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shardparse_extractions_total",
		Help: "Total number of extractor runs by extractor rule and outcome.",
	}, []string{"extractor", "outcome"})

	StatementDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shardparse_statement_seconds",
		Help:    "Time spent parsing and extracting one statement.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	}, []string{"dialect"})

	StatementErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shardparse_statement_errors_total",
		Help: "Total number of statements that failed, by pipeline stage.",
	}, []string{"dialect", "stage"})
)

// RecordExtraction counts one extractor run.
func RecordExtraction(extractor, outcome string) {
	ExtractionsTotal.WithLabelValues(extractor, outcome).Inc()
}
