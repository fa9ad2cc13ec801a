// Package metrics defines the Prometheus collectors for transcript extraction
// and plan reconciliation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "course_planner"

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeAdded   = "added"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// Metrics groups the collectors
type Metrics struct {
	ExtractionAttempts *prometheus.CounterVec
	ExtractionDuration *prometheus.HistogramVec
	ExtractedCourses   prometheus.Histogram
	ReconcileOutcomes  *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ExtractionAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_attempts_total",
			Help:      "Transcript extraction attempts by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		ExtractionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Time spent in each extraction strategy.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"strategy"}),
		ExtractedCourses: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extracted_courses",
			Help:      "Courses returned by a successful extraction.",
			Buckets:   prometheus.LinearBuckets(0, 10, 8),
		}),
		ReconcileOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_courses_total",
			Help:      "Per-course reconciliation outcomes.",
		}, []string{"outcome"}),
	}
}

// Handler serves the registry in the Prometheus text format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
