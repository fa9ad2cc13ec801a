package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/FACorreiaa/course-planner/pkg/db"
)

// PostgresTranscriptRepository implements TranscriptRepository using PostgreSQL
type PostgresTranscriptRepository struct {
	db db.DBTX
}

// NewPostgresTranscriptRepository creates a new PostgreSQL-backed transcript repository
func NewPostgresTranscriptRepository(conn db.DBTX) *PostgresTranscriptRepository {
	return &PostgresTranscriptRepository{db: conn}
}

// Create inserts a transcript and its parsed course list
func (r *PostgresTranscriptRepository) Create(ctx context.Context, t *Transcript) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Courses == nil {
		t.Courses = []ParsedCourse{}
	}

	courses, err := json.Marshal(t.Courses)
	if err != nil {
		return fmt.Errorf("failed to encode courses: %w", err)
	}

	query := `
		INSERT INTO transcripts (id, student_id, file_id, file_name, strategy, courses)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err = r.db.QueryRow(ctx, query,
		t.ID, t.StudentID, t.FileID, t.FileName, string(t.Strategy), courses,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transcript: %w", err)
	}

	return nil
}

// GetByID retrieves a transcript by ID; nil when it does not exist
func (r *PostgresTranscriptRepository) GetByID(ctx context.Context, id uuid.UUID) (*Transcript, error) {
	query := `
		SELECT id, student_id, file_id, file_name, strategy, courses, created_at
		FROM transcripts WHERE id = $1
	`

	t, err := scanTranscript(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}

	return t, nil
}

// ListByStudent lists a student's transcripts, newest first
func (r *PostgresTranscriptRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*Transcript, error) {
	query := `
		SELECT id, student_id, file_id, file_name, strategy, courses, created_at
		FROM transcripts WHERE student_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	defer rows.Close()

	var out []*Transcript
	for rows.Next() {
		t, err := scanTranscript(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transcript: %w", err)
		}
		out = append(out, t)
	}

	return out, rows.Err()
}

func scanTranscript(row pgx.Row) (*Transcript, error) {
	var (
		t        Transcript
		strategy string
		courses  []byte
	)
	if err := row.Scan(&t.ID, &t.StudentID, &t.FileID, &t.FileName, &strategy, &courses, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Strategy = Strategy(strategy)
	if len(courses) > 0 {
		if err := json.Unmarshal(courses, &t.Courses); err != nil {
			return nil, fmt.Errorf("failed to decode courses: %w", err)
		}
	}
	return &t, nil
}
