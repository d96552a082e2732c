package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sessionsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breakup_sessions_created_total",
			Help: "Total number of payment sessions opened",
		},
		[]string{"persona"},
	)

	completionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breakup_completions_total",
			Help: "Total number of CompleteSessionAndGenerate outcomes",
		},
		[]string{"outcome"},
	)

	completionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "breakup_completion_duration_seconds",
			Help:    "CompleteSessionAndGenerate duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breakup_generations_total",
			Help: "Total number of generation-engine invocations",
		},
		[]string{"persona", "status"},
	)

	generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "breakup_generation_duration_seconds",
			Help:    "Generation-engine call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"persona"},
	)

	initOnce sync.Once
)

// InitMetrics registers all metrics with the default registry
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			sessionsCreatedTotal,
			completionsTotal,
			completionDuration,
			generationsTotal,
			generationDuration,
		)
	})
}

// MetricsHandler returns the prometheus exposition handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordSessionCreated records an opened payment session
func RecordSessionCreated(persona string) {
	sessionsCreatedTotal.WithLabelValues(persona).Inc()
}

// RecordCompletion records a completion outcome ("generated" or an error kind)
func RecordCompletion(outcome string, duration time.Duration) {
	completionsTotal.WithLabelValues(outcome).Inc()
	completionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordGeneration records a generation-engine invocation
func RecordGeneration(persona, status string, duration time.Duration) {
	generationsTotal.WithLabelValues(persona, status).Inc()
	generationDuration.WithLabelValues(persona).Observe(duration.Seconds())
}
