// Package repository provides data access for uploaded transcripts and their
// parsed course lists.
package repository

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Strategy names the extraction path that produced a course list
type Strategy string

const (
	StrategyVision Strategy = "vision"
	StrategyText   Strategy = "text"
)

// ParsedCourse is one course row recovered from a transcript. Only Code is
// guaranteed; the other fields are empty when the source did not carry them.
type ParsedCourse struct {
	Code         string              `json:"code"`
	Title        *string             `json:"title,omitempty"`
	Units        decimal.NullDecimal `json:"units"`
	Grade        string              `json:"grade,omitempty"`
	SemesterText string              `json:"semester,omitempty"`
}

var codeShape = regexp.MustCompile(`^[A-Z]{2,4} \d{1,3}[A-Z]?$`)

// CanonicalCode upper-cases a course code and collapses inner whitespace to a
// single space.
func CanonicalCode(code string) string {
	return strings.Join(strings.Fields(strings.ToUpper(code)), " ")
}

// ValidCode reports whether code is already in canonical SUBJ NUM form.
func ValidCode(code string) bool {
	return codeShape.MatchString(code)
}

// FilterValid canonicalizes codes and drops courses whose code does not fit
// the SUBJ NUM shape. Order is preserved.
func FilterValid(courses []ParsedCourse) []ParsedCourse {
	out := make([]ParsedCourse, 0, len(courses))
	for _, c := range courses {
		c.Code = CanonicalCode(c.Code)
		if !ValidCode(c.Code) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Transcript is an uploaded document with the course list extracted from it
type Transcript struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	StudentID uuid.UUID      `db:"student_id" json:"student_id"`
	FileID    string         `db:"file_id" json:"file_id"`
	FileName  string         `db:"file_name" json:"file_name"`
	Strategy  Strategy       `db:"strategy" json:"strategy"`
	Courses   []ParsedCourse `db:"courses" json:"courses"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// TranscriptRepository persists transcripts
type TranscriptRepository interface {
	Create(ctx context.Context, t *Transcript) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transcript, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*Transcript, error)
}
