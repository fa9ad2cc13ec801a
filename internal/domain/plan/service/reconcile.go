package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/FACorreiaa/course-planner/internal/domain/catalog"
	"github.com/FACorreiaa/course-planner/internal/domain/plan/repository"
	transcriptrepo "github.com/FACorreiaa/course-planner/internal/domain/transcript/repository"
	"github.com/FACorreiaa/course-planner/pkg/metrics"
	"github.com/FACorreiaa/course-planner/pkg/term"
)

// Skip reasons
const (
	SkipUnparseableSemester = "unparseable semester"
	SkipNotInCatalog        = "course not in catalog"
	SkipAlreadyInPlan       = "already in plan"
)

const maxSuggestions = 3

// Skip is a course that was deliberately not added
type Skip struct {
	Code        string   `json:"code"`
	Reason      string   `json:"reason"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ReconcileReport summarizes a reconciliation run. Errors holds per-course
// failures that were neither added nor skipped.
type ReconcileReport struct {
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"`
	Skips   []Skip   `json:"skips"`
	Errors  []string `json:"errors"`
}

func (r *ReconcileReport) skip(code, reason string, suggestions []string) {
	r.Skipped++
	r.Skips = append(r.Skips, Skip{Code: code, Reason: reason, Suggestions: suggestions})
}

func (r *ReconcileReport) fail(code string, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", code, err))
}

// Reconcile merges parsed transcript courses into a plan, in input order.
// Earlier inserts are never rolled back when a later course fails, and a
// re-run over the same input adds nothing new. The returned error is only
// set when the plan's existing courses could not be loaded, in which case
// nothing was written.
//
// Duplicates are detected by catalog course alone, so a course retaken in a
// later term is reported as already in plan.
func (s *PlanService) Reconcile(ctx context.Context, planID uuid.UUID, courses []transcriptrepo.ParsedCourse) (*ReconcileReport, error) {
	existing, err := s.repo.ListPlanCourses(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan courses: %w", err)
	}

	inPlan := make(map[uuid.UUID]struct{}, len(existing)+len(courses))
	for _, pc := range existing {
		inPlan[pc.CourseID] = struct{}{}
	}

	report := &ReconcileReport{Skips: []Skip{}, Errors: []string{}}
	for _, c := range courses {
		if err := ctx.Err(); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("reconcile stopped: %v", err))
			break
		}
		s.reconcileOne(ctx, planID, c, inPlan, report)
	}

	s.metrics.ReconcileOutcomes.WithLabelValues(metrics.OutcomeAdded).Add(float64(report.Added))
	s.metrics.ReconcileOutcomes.WithLabelValues(metrics.OutcomeSkipped).Add(float64(report.Skipped))
	s.metrics.ReconcileOutcomes.WithLabelValues(metrics.OutcomeError).Add(float64(len(report.Errors)))

	s.logger.Info("plan reconciled",
		"plan_id", planID,
		"candidates", len(courses),
		"added", report.Added,
		"skipped", report.Skipped,
		"errors", len(report.Errors),
	)
	return report, nil
}

func (s *PlanService) reconcileOne(ctx context.Context, planID uuid.UUID, c transcriptrepo.ParsedCourse, inPlan map[uuid.UUID]struct{}, report *ReconcileReport) {
	t, ok := term.Parse(c.SemesterText)
	if !ok {
		report.skip(c.Code, SkipUnparseableSemester, nil)
		return
	}

	courseID, err := s.resolver.Resolve(ctx, c.Code)
	if errors.Is(err, catalog.ErrCourseNotFound) {
		report.skip(c.Code, SkipNotInCatalog, s.suggest(ctx, c.Code))
		return
	}
	if err != nil {
		report.fail(c.Code, err)
		return
	}

	if _, dup := inPlan[courseID]; dup {
		report.skip(c.Code, SkipAlreadyInPlan, nil)
		return
	}

	last, err := s.repo.MaxPosition(ctx, planID, string(t.Season), t.Year)
	if err != nil {
		report.fail(c.Code, err)
		return
	}

	pc := &repository.PlanCourse{
		PlanID:    planID,
		CourseID:  courseID,
		Term:      string(t.Season),
		Year:      t.Year,
		TermOrder: t.Order,
		Position:  last + 1,
	}
	err = s.repo.InsertPlanCourse(ctx, pc)
	switch {
	case errors.Is(err, repository.ErrDuplicatePlanCourse):
		// inserted concurrently by another run
		inPlan[courseID] = struct{}{}
		report.skip(c.Code, SkipAlreadyInPlan, nil)
	case err != nil:
		report.fail(c.Code, err)
	default:
		inPlan[courseID] = struct{}{}
		report.Added++
	}
}

func (s *PlanService) suggest(ctx context.Context, code string) []string {
	if s.suggester == nil {
		return nil
	}
	suggestions, err := s.suggester.Suggest(ctx, code, maxSuggestions)
	if err != nil {
		s.logger.Warn("catalog suggestions unavailable", "code", code, "error", err)
		return nil
	}
	return suggestions
}
