package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/FACorreiaa/course-planner/pkg/db"
)

// PostgresCatalogRepository implements CatalogRepository using PostgreSQL
type PostgresCatalogRepository struct {
	db db.DBTX
}

// NewPostgresCatalogRepository creates a new PostgreSQL-backed catalog repository
func NewPostgresCatalogRepository(conn db.DBTX) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{db: conn}
}

// FindBySubjectAndNumber looks up exact subject/number pairs ignoring case
func (r *PostgresCatalogRepository) FindBySubjectAndNumber(ctx context.Context, subject, number string, limit int) ([]Course, error) {
	if limit <= 0 {
		limit = 2
	}

	query := `
		SELECT id, subject, number, title, units, created_at
		FROM catalog_courses
		WHERE upper(subject) = upper($1) AND upper(number) = upper($2)
		ORDER BY created_at
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, subject, number, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find catalog course: %w", err)
	}
	return collectCourses(rows)
}

// ListBySubject returns every course under a subject
func (r *PostgresCatalogRepository) ListBySubject(ctx context.Context, subject string) ([]Course, error) {
	query := `
		SELECT id, subject, number, title, units, created_at
		FROM catalog_courses
		WHERE upper(subject) = upper($1)
		ORDER BY number
	`

	rows, err := r.db.Query(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog subject: %w", err)
	}
	return collectCourses(rows)
}

// Create inserts a catalog course
func (r *PostgresCatalogRepository) Create(ctx context.Context, c *Course) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Subject = strings.ToUpper(strings.TrimSpace(c.Subject))
	c.Number = strings.ToUpper(strings.TrimSpace(c.Number))

	query := `
		INSERT INTO catalog_courses (id, subject, number, title, units)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	if err := r.db.QueryRow(ctx, query, c.ID, c.Subject, c.Number, c.Title, c.Units).Scan(&c.CreatedAt); err != nil {
		return fmt.Errorf("failed to create catalog course: %w", err)
	}
	return nil
}

func collectCourses(rows pgx.Rows) ([]Course, error) {
	defer rows.Close()

	var out []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Subject, &c.Number, &c.Title, &c.Units, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan catalog course: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalog courses: %w", err)
	}
	return out, nil
}
