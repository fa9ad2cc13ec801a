// Package catalog resolves transcript course codes to catalog course IDs.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/course-planner/internal/domain/catalog/repository"
)

var (
	// ErrCourseNotFound is returned when no catalog course matches a code.
	ErrCourseNotFound = errors.New("course not in catalog")

	// ErrAmbiguousCourse is returned when a code matches more than one
	// catalog course. It also matches ErrCourseNotFound so callers that only
	// care about resolution failing can test for one error.
	ErrAmbiguousCourse = fmt.Errorf("ambiguous catalog match: %w", ErrCourseNotFound)
)

var codeSplit = regexp.MustCompile(`^\s*([A-Za-z]{2,4})\s+(\d{1,3}[A-Za-z]?)\s*$`)

// SplitCode breaks "CS 46A" into subject and number. ok is false when the
// code does not have that shape.
func SplitCode(code string) (subject, number string, ok bool) {
	m := codeSplit.FindStringSubmatch(code)
	if m == nil {
		return "", "", false
	}
	return strings.ToUpper(m[1]), strings.ToUpper(m[2]), true
}

// Resolver maps course codes to catalog IDs
type Resolver struct {
	repo   repository.CatalogRepository
	logger *slog.Logger
}

// NewResolver creates a resolver over the catalog repository
func NewResolver(repo repository.CatalogRepository, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{repo: repo, logger: logger}
}

// Resolve returns the ID of the single catalog course matching code
// case-insensitively. Malformed codes are reported as not found without
// touching the catalog. More than one match is never narrowed to the first.
func (r *Resolver) Resolve(ctx context.Context, code string) (uuid.UUID, error) {
	subject, number, ok := SplitCode(code)
	if !ok {
		return uuid.Nil, fmt.Errorf("%q: %w", code, ErrCourseNotFound)
	}

	matches, err := r.repo.FindBySubjectAndNumber(ctx, subject, number, 2)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up %s %s: %w", subject, number, err)
	}

	switch len(matches) {
	case 0:
		return uuid.Nil, fmt.Errorf("%s %s: %w", subject, number, ErrCourseNotFound)
	case 1:
		return matches[0].ID, nil
	default:
		r.logger.Warn("ambiguous catalog code", "code", subject+" "+number, "matches", len(matches))
		return uuid.Nil, fmt.Errorf("%s %s: %w", subject, number, ErrAmbiguousCourse)
	}
}

// Suggest lists catalog codes of the same subject that look like code, best
// first. It returns nil for malformed codes or unknown subjects.
func (r *Resolver) Suggest(ctx context.Context, code string, limit int) ([]string, error) {
	subject, number, ok := SplitCode(code)
	if !ok {
		return nil, nil
	}

	courses, err := r.repo.ListBySubject(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to list subject %s: %w", subject, err)
	}
	if len(courses) == 0 {
		return nil, nil
	}

	return NewCodeMatcher(courses).Rank(subject+" "+number, limit), nil
}
