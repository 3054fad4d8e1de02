// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_turns_total",
			Help: "Total number of chat turns processed, by resulting phase",
		},
		[]string{"phase"},
	)

	StepFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_step_failures_total",
			Help: "Total number of workflow step failures",
		},
		[]string{"step", "error_code"},
	)

	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_step_duration_seconds",
			Help: "Duration of workflow step execution in seconds",
		},
		[]string{"step"},
	)

	DayQueriesFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_day_queries_failed_total",
			Help: "Day-window flight queries that contributed zero offers",
		},
	)

	ExtractorFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_extractor_fallbacks_total",
			Help: "Turns where the rule-based extractor replaced the language model",
		},
	)
)
