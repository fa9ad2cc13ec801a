package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ExtractionAttempts.WithLabelValues("vision", OutcomeFailure).Inc()
	m.ExtractionAttempts.WithLabelValues("text", OutcomeSuccess).Inc()
	m.ReconcileOutcomes.WithLabelValues(OutcomeAdded).Add(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExtractionAttempts.WithLabelValues("vision", OutcomeFailure)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ReconcileOutcomes.WithLabelValues(OutcomeAdded)))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "course_planner_extraction_attempts_total")
	assert.Contains(t, names, "course_planner_reconcile_courses_total")
}

func TestNew_NilRegisterer(t *testing.T) {
	assert.NotPanics(t, func() {
		m := New(nil)
		m.ReconcileOutcomes.WithLabelValues(OutcomeSkipped).Inc()
		New(nil)
	})
}
