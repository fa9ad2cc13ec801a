// Package service ties transcript upload, extraction and plan
// reconciliation together.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	planrepo "github.com/FACorreiaa/course-planner/internal/domain/plan/repository"
	planservice "github.com/FACorreiaa/course-planner/internal/domain/plan/service"
	"github.com/FACorreiaa/course-planner/internal/domain/transcript/extraction"
	"github.com/FACorreiaa/course-planner/internal/domain/transcript/repository"
	"github.com/FACorreiaa/course-planner/pkg/storage"
)

// ErrTranscriptNotFound is returned when a transcript does not exist or
// belongs to another student
var ErrTranscriptNotFound = errors.New("transcript not found")

// Extractor turns document bytes into courses
type Extractor interface {
	Extract(ctx context.Context, data []byte) (*extraction.Result, error)
}

// Reconciler merges courses into a plan
type Reconciler interface {
	GetPlan(ctx context.Context, studentID, planID uuid.UUID) (*planrepo.Plan, error)
	Reconcile(ctx context.Context, planID uuid.UUID, courses []repository.ParsedCourse) (*planservice.ReconcileReport, error)
}

// Service handles transcript business logic
type Service struct {
	repo       repository.TranscriptRepository
	files      storage.Storage
	extractor  Extractor
	reconciler Reconciler
	logger     *slog.Logger
}

// NewService creates a new transcript service
func NewService(repo repository.TranscriptRepository, files storage.Storage, extractor Extractor, reconciler Reconciler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		files:      files,
		extractor:  extractor,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Upload stores the document, extracts its courses and persists the parsed
// list. The stored document is removed again when no transcript row ends up
// referencing it.
func (s *Service) Upload(ctx context.Context, studentID uuid.UUID, filename string, data []byte) (*repository.Transcript, error) {
	info, err := s.files.Save(ctx, studentID, filename, "application/pdf", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to store transcript: %w", err)
	}

	result, err := s.extractor.Extract(ctx, data)
	if err != nil {
		s.logger.Warn("transcript extraction failed",
			"student_id", studentID,
			"file_id", info.ID,
			"error", err,
		)
		s.discard(ctx, studentID, info.ID)
		return nil, fmt.Errorf("failed to extract transcript: %w", err)
	}

	t := &repository.Transcript{
		StudentID: studentID,
		FileID:    info.ID.String(),
		FileName:  filename,
		Strategy:  result.Strategy,
		Courses:   result.Courses,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		s.discard(ctx, studentID, info.ID)
		return nil, fmt.Errorf("failed to save transcript: %w", err)
	}

	s.logger.Info("transcript uploaded",
		"transcript_id", t.ID,
		"student_id", studentID,
		"strategy", t.Strategy,
		"courses", len(t.Courses),
	)
	return t, nil
}

// discard removes a stored document nothing references. The caller's error
// is what matters, so a failed delete is only logged.
func (s *Service) discard(ctx context.Context, studentID, fileID uuid.UUID) {
	if err := s.files.Delete(context.WithoutCancel(ctx), studentID, fileID); err != nil {
		s.logger.Warn("failed to remove unreferenced transcript file",
			"student_id", studentID,
			"file_id", fileID,
			"error", err,
		)
	}
}

// Reprocess re-runs extraction over a stored document and saves the result
// as a new transcript
func (s *Service) Reprocess(ctx context.Context, studentID, transcriptID uuid.UUID) (*repository.Transcript, error) {
	prev, err := s.Get(ctx, studentID, transcriptID)
	if err != nil {
		return nil, err
	}

	fileID, err := uuid.Parse(prev.FileID)
	if err != nil {
		return nil, fmt.Errorf("invalid stored file id %q: %w", prev.FileID, err)
	}
	rc, _, err := s.files.Open(ctx, studentID, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to open stored transcript: %w", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read stored transcript: %w", err)
	}

	result, err := s.extractor.Extract(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract transcript: %w", err)
	}

	t := &repository.Transcript{
		StudentID: studentID,
		FileID:    prev.FileID,
		FileName:  prev.FileName,
		Strategy:  result.Strategy,
		Courses:   result.Courses,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save transcript: %w", err)
	}
	return t, nil
}

// Get returns a student's transcript
func (s *Service) Get(ctx context.Context, studentID, transcriptID uuid.UUID) (*repository.Transcript, error) {
	t, err := s.repo.GetByID(ctx, transcriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}
	if t == nil || t.StudentID != studentID {
		return nil, ErrTranscriptNotFound
	}
	return t, nil
}

// List returns a student's transcripts, newest first
func (s *Service) List(ctx context.Context, studentID uuid.UUID) ([]*repository.Transcript, error) {
	ts, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	return ts, nil
}

// Import uploads a transcript straight into an existing plan. Plan ownership
// is checked before anything is stored.
func (s *Service) Import(ctx context.Context, studentID, planID uuid.UUID, filename string, data []byte) (*repository.Transcript, *planservice.ReconcileReport, error) {
	if _, err := s.reconciler.GetPlan(ctx, studentID, planID); err != nil {
		return nil, nil, err
	}

	t, err := s.Upload(ctx, studentID, filename, data)
	if err != nil {
		return nil, nil, err
	}

	report, err := s.reconciler.Reconcile(ctx, planID, t.Courses)
	if err != nil {
		return t, nil, fmt.Errorf("failed to populate plan: %w", err)
	}
	return t, report, nil
}

// AutoPopulate merges a stored transcript's courses into one of the
// student's plans and returns the report synchronously
func (s *Service) AutoPopulate(ctx context.Context, studentID, transcriptID, planID uuid.UUID) (*planservice.ReconcileReport, error) {
	t, err := s.Get(ctx, studentID, transcriptID)
	if err != nil {
		return nil, err
	}
	if _, err := s.reconciler.GetPlan(ctx, studentID, planID); err != nil {
		return nil, err
	}

	report, err := s.reconciler.Reconcile(ctx, planID, t.Courses)
	if err != nil {
		return nil, fmt.Errorf("failed to populate plan: %w", err)
	}
	return report, nil
}
