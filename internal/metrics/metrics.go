// Package metrics provides Prometheus metrics for the journal service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntriesCreated counts persisted journal entries.
	EntriesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "journal",
			Name:      "entries_created_total",
			Help:      "Total number of journal entries created",
		},
	)

	// AnalysisFallbacks counts analysis stages that degraded to a default.
	AnalysisFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "journal",
			Name:      "analysis_fallbacks_total",
			Help:      "Total number of analysis stages that fell back to a default value",
		},
		[]string{"stage"},
	)

	// WeeklySummaries counts weekly summary requests by outcome.
	WeeklySummaries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "journal",
			Name:      "weekly_summaries_total",
			Help:      "Total number of weekly summary requests by outcome",
		},
		[]string{"status"},
	)

	// GenerationDuration measures external narrative generation latency.
	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "journal",
			Name:      "generation_duration_seconds",
			Help:      "Duration of weekly summary generation calls in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)
)

// RecordFallback records a degraded analysis stage.
func RecordFallback(stage string) {
	AnalysisFallbacks.WithLabelValues(stage).Inc()
}

// RecordWeekly records the outcome of a weekly summary request.
func RecordWeekly(status string) {
	WeeklySummaries.WithLabelValues(status).Inc()
}

// RecordGeneration observes the duration of a generation call.
func RecordGeneration(seconds float64) {
	GenerationDuration.Observe(seconds)
}
