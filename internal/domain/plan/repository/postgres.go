package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/FACorreiaa/course-planner/pkg/db"
)

// PostgresPlanRepository implements PlanRepository using PostgreSQL
type PostgresPlanRepository struct {
	db db.DBTX
}

// NewPostgresPlanRepository creates a new PostgreSQL-backed plan repository
func NewPostgresPlanRepository(conn db.DBTX) *PostgresPlanRepository {
	return &PostgresPlanRepository{db: conn}
}

// ============================================================================
// Plans
// ============================================================================

// CreatePlan creates a new plan
func (r *PostgresPlanRepository) CreatePlan(ctx context.Context, plan *Plan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}

	query := `
		INSERT INTO plans (id, student_id, name)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	if err := r.db.QueryRow(ctx, query, plan.ID, plan.StudentID, plan.Name).Scan(&plan.CreatedAt); err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}

	return nil
}

// GetPlanByID retrieves a plan by ID
func (r *PostgresPlanRepository) GetPlanByID(ctx context.Context, planID uuid.UUID) (*Plan, error) {
	query := `SELECT id, student_id, name, created_at FROM plans WHERE id = $1`

	var plan Plan
	err := r.db.QueryRow(ctx, query, planID).Scan(&plan.ID, &plan.StudentID, &plan.Name, &plan.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return &plan, nil
}

// ============================================================================
// Plan Courses
// ============================================================================

// ListPlanCourses lists the courses placed in a plan
func (r *PostgresPlanRepository) ListPlanCourses(ctx context.Context, planID uuid.UUID) ([]PlanCourse, error) {
	query := `
		SELECT id, plan_id, course_id, term, year, term_order, position, created_at
		FROM plan_courses
		WHERE plan_id = $1
		ORDER BY term_order, position
	`

	rows, err := r.db.Query(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan courses: %w", err)
	}
	defer rows.Close()

	var courses []PlanCourse
	for rows.Next() {
		var pc PlanCourse
		if err := rows.Scan(
			&pc.ID, &pc.PlanID, &pc.CourseID, &pc.Term, &pc.Year,
			&pc.TermOrder, &pc.Position, &pc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan plan course: %w", err)
		}
		courses = append(courses, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plan courses: %w", err)
	}

	return courses, nil
}

// MaxPosition returns the highest position used in a term bucket
func (r *PostgresPlanRepository) MaxPosition(ctx context.Context, planID uuid.UUID, term, year string) (int, error) {
	query := `
		SELECT COALESCE(MAX(position), 0)
		FROM plan_courses
		WHERE plan_id = $1 AND term = $2 AND year = $3
	`

	var pos int
	if err := r.db.QueryRow(ctx, query, planID, term, year).Scan(&pos); err != nil {
		return 0, fmt.Errorf("failed to get max position: %w", err)
	}

	return pos, nil
}

const positionConstraint = "plan_courses_bucket_position_key"

// InsertPlanCourse adds a course to a plan
func (r *PostgresPlanRepository) InsertPlanCourse(ctx context.Context, pc *PlanCourse) error {
	if pc.ID == uuid.Nil {
		pc.ID = uuid.New()
	}

	query := `
		INSERT INTO plan_courses (id, plan_id, course_id, term, year, term_order, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		pc.ID, pc.PlanID, pc.CourseID, pc.Term, pc.Year, pc.TermOrder, pc.Position,
	).Scan(&pc.CreatedAt)
	if constraint, ok := db.ViolatedConstraint(err); ok {
		if constraint == positionConstraint {
			return ErrPositionTaken
		}
		return ErrDuplicatePlanCourse
	}
	if err != nil {
		return fmt.Errorf("failed to insert plan course: %w", err)
	}

	return nil
}
