package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/course-planner/internal/domain/transcript/repository"
	"github.com/FACorreiaa/course-planner/pkg/metrics"
)

const tracerName = "github.com/FACorreiaa/course-planner/internal/domain/transcript/extraction"

// ErrExtractionFailed matches an ExtractionFailedError
var ErrExtractionFailed = errors.New("transcript extraction failed")

// ErrNoStrategies is returned when the orchestrator has nothing to try
var ErrNoStrategies = errors.New("no extraction strategies configured")

// StrategyError pairs a strategy with its failure
type StrategyError struct {
	Strategy repository.Strategy
	Err      error
}

func (e StrategyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Strategy, e.Err)
}

func (e StrategyError) Unwrap() error { return e.Err }

// ExtractionFailedError is returned when every strategy failed. It carries
// each cause in strategy order.
type ExtractionFailedError struct {
	Causes []StrategyError
}

func (e *ExtractionFailedError) Error() string {
	parts := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		parts = append(parts, c.Error())
	}
	return fmt.Sprintf("%s: %s", ErrExtractionFailed, strings.Join(parts, "; "))
}

func (e *ExtractionFailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Causes))
	for _, c := range e.Causes {
		errs = append(errs, c)
	}
	return errs
}

func (e *ExtractionFailedError) Is(target error) bool { return target == ErrExtractionFailed }

// Result is the output of the strategy that succeeded
type Result struct {
	Strategy repository.Strategy
	Courses  []repository.ParsedCourse
}

// Orchestrator tries strategies in order and stops at the first success.
// Outputs are never merged.
type Orchestrator struct {
	strategies []Strategy
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewOrchestrator creates an orchestrator over strategies, tried in slice order
func NewOrchestrator(strategies []Strategy, m *metrics.Metrics, logger *slog.Logger) *Orchestrator {
	if m == nil {
		m = metrics.New(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		strategies: strategies,
		metrics:    m,
		tracer:     otel.Tracer(tracerName),
		logger:     logger,
	}
}

// Extract runs the chain over data
func (o *Orchestrator) Extract(ctx context.Context, data []byte) (*Result, error) {
	if len(o.strategies) == 0 {
		return nil, ErrNoStrategies
	}

	failed := &ExtractionFailedError{}
	for _, s := range o.strategies {
		courses, err := o.attempt(ctx, s, data)
		if err != nil {
			failed.Causes = append(failed.Causes, StrategyError{Strategy: s.Name(), Err: err})
			o.logger.Warn("extraction strategy failed, trying next",
				"strategy", s.Name(),
				"error", err,
			)
			continue
		}

		o.metrics.ExtractedCourses.Observe(float64(len(courses)))
		o.logger.Info("transcript extracted",
			"strategy", s.Name(),
			"courses", len(courses),
		)
		return &Result{Strategy: s.Name(), Courses: courses}, nil
	}

	return nil, failed
}

func (o *Orchestrator) attempt(ctx context.Context, s Strategy, data []byte) ([]repository.ParsedCourse, error) {
	name := string(s.Name())
	ctx, span := o.tracer.Start(ctx, "extraction."+name,
		trace.WithAttributes(attribute.String("strategy", name), attribute.Int("document.bytes", len(data))),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		o.metrics.ExtractionDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	if err := ctx.Err(); err != nil {
		o.metrics.ExtractionAttempts.WithLabelValues(name, metrics.OutcomeFailure).Inc()
		span.SetStatus(codes.Error, "context done")
		return nil, err
	}

	courses, err := s.Extract(ctx, data)
	if err != nil {
		o.metrics.ExtractionAttempts.WithLabelValues(name, metrics.OutcomeFailure).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	courses = repository.FilterValid(courses)
	o.metrics.ExtractionAttempts.WithLabelValues(name, metrics.OutcomeSuccess).Inc()
	span.SetAttributes(attribute.Int("courses", len(courses)))
	return courses, nil
}
