// Package service provides business logic for student course plans.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/course-planner/internal/domain/plan/repository"
	"github.com/FACorreiaa/course-planner/pkg/metrics"
)

// ErrPlanNotFound is returned when a plan does not exist or belongs to
// another student
var ErrPlanNotFound = errors.New("plan not found")

// CourseResolver maps a transcript course code to a catalog course ID
type CourseResolver interface {
	Resolve(ctx context.Context, code string) (uuid.UUID, error)
}

// CourseSuggester proposes catalog codes close to an unresolved code
type CourseSuggester interface {
	Suggest(ctx context.Context, code string, limit int) ([]string, error)
}

// PlanService handles plan business logic
type PlanService struct {
	repo      repository.PlanRepository
	resolver  CourseResolver
	suggester CourseSuggester
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewPlanService creates a new plan service
func NewPlanService(repo repository.PlanRepository, resolver CourseResolver, logger *slog.Logger) *PlanService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanService{
		repo:     repo,
		resolver: resolver,
		metrics:  metrics.New(nil),
		logger:   logger,
	}
}

// WithSuggester attaches catalog suggestions to "not in catalog" skips
func (s *PlanService) WithSuggester(sg CourseSuggester) *PlanService {
	s.suggester = sg
	return s
}

// WithMetrics records reconciliation outcomes on m
func (s *PlanService) WithMetrics(m *metrics.Metrics) *PlanService {
	if m != nil {
		s.metrics = m
	}
	return s
}

// CreatePlan creates an empty plan for a student
func (s *PlanService) CreatePlan(ctx context.Context, studentID uuid.UUID, name string) (*repository.Plan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "My Plan"
	}

	plan := &repository.Plan{StudentID: studentID, Name: name}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	s.logger.Info("plan created", "plan_id", plan.ID, "student_id", studentID)
	return plan, nil
}

// GetPlan returns a student's plan
func (s *PlanService) GetPlan(ctx context.Context, studentID, planID uuid.UUID) (*repository.Plan, error) {
	plan, err := s.repo.GetPlanByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil || plan.StudentID != studentID {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// ListCourses returns the plan's courses ordered by term then position
func (s *PlanService) ListCourses(ctx context.Context, studentID, planID uuid.UUID) ([]repository.PlanCourse, error) {
	if _, err := s.GetPlan(ctx, studentID, planID); err != nil {
		return nil, err
	}
	courses, err := s.repo.ListPlanCourses(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan courses: %w", err)
	}
	return courses, nil
}
