// Package repository provides data access for plan-related entities.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrDuplicatePlanCourse is returned when a course is already in a plan
	ErrDuplicatePlanCourse = errors.New("course already in plan")
	// ErrPositionTaken is returned when another row holds the bucket position
	ErrPositionTaken = errors.New("plan position already taken")
)

// Plan is a student's course plan
type Plan struct {
	ID        uuid.UUID `db:"id"`
	StudentID uuid.UUID `db:"student_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// PlanCourse places a catalog course in a plan term. Position is local to the
// (plan, term, year) bucket and starts at 1; gaps are allowed.
type PlanCourse struct {
	ID        uuid.UUID `db:"id"`
	PlanID    uuid.UUID `db:"plan_id"`
	CourseID  uuid.UUID `db:"course_id"`
	Term      string    `db:"term"`
	Year      string    `db:"year"`
	TermOrder int       `db:"term_order"`
	Position  int       `db:"position"`
	CreatedAt time.Time `db:"created_at"`
}

// PlanRepository defines data access for plans and their courses
type PlanRepository interface {
	CreatePlan(ctx context.Context, plan *Plan) error
	GetPlanByID(ctx context.Context, planID uuid.UUID) (*Plan, error)

	// ListPlanCourses returns every course in the plan ordered by term then position.
	ListPlanCourses(ctx context.Context, planID uuid.UUID) ([]PlanCourse, error)
	// MaxPosition returns the highest position in the bucket, 0 when empty.
	MaxPosition(ctx context.Context, planID uuid.UUID, term, year string) (int, error)
	// InsertPlanCourse returns ErrDuplicatePlanCourse when (plan, course) exists
	// and ErrPositionTaken when (plan, term, year, position) does.
	InsertPlanCourse(ctx context.Context, pc *PlanCourse) error
}
