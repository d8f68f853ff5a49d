// Package metrics exposes Prometheus collectors for the analysis service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ringtrace_analyses_total",
		Help: "Completed analyses by input source.",
	}, []string{"source"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ringtrace_analysis_duration_seconds",
		Help:    "Wall-clock duration of the detection pipeline.",
		Buckets: prometheus.DefBuckets,
	})

	transactionsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ringtrace_transactions_processed_total",
		Help: "Transactions analyzed across all runs.",
	})
)

// ObserveAnalysis records one completed pipeline run.
func ObserveAnalysis(source string, transactions int, seconds float64) {
	analysesTotal.WithLabelValues(source).Inc()
	analysisDuration.Observe(seconds)
	transactionsProcessed.Add(float64(transactions))
}
