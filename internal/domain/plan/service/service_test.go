package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/course-planner/internal/domain/catalog"
	"github.com/FACorreiaa/course-planner/internal/domain/plan/repository"
	transcriptrepo "github.com/FACorreiaa/course-planner/internal/domain/transcript/repository"
	"github.com/FACorreiaa/course-planner/pkg/metrics"
)

// fakePlanRepository is an in-memory repository.PlanRepository
type fakePlanRepository struct {
	plans   map[uuid.UUID]*repository.Plan
	courses []repository.PlanCourse

	listErr   error
	maxErr    map[string]error // keyed by "term year"
	insertErr map[uuid.UUID]error
	inserts   int
}

func newFakePlanRepository() *fakePlanRepository {
	return &fakePlanRepository{
		plans:     map[uuid.UUID]*repository.Plan{},
		maxErr:    map[string]error{},
		insertErr: map[uuid.UUID]error{},
	}
}

func (f *fakePlanRepository) CreatePlan(ctx context.Context, plan *repository.Plan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	f.plans[plan.ID] = plan
	return nil
}

func (f *fakePlanRepository) GetPlanByID(ctx context.Context, planID uuid.UUID) (*repository.Plan, error) {
	return f.plans[planID], nil
}

func (f *fakePlanRepository) ListPlanCourses(ctx context.Context, planID uuid.UUID) ([]repository.PlanCourse, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []repository.PlanCourse
	for _, pc := range f.courses {
		if pc.PlanID == planID {
			out = append(out, pc)
		}
	}
	return out, nil
}

func (f *fakePlanRepository) MaxPosition(ctx context.Context, planID uuid.UUID, term, year string) (int, error) {
	if err := f.maxErr[term+" "+year]; err != nil {
		return 0, err
	}
	highest := 0
	for _, pc := range f.courses {
		if pc.PlanID == planID && pc.Term == term && pc.Year == year && pc.Position > highest {
			highest = pc.Position
		}
	}
	return highest, nil
}

func (f *fakePlanRepository) InsertPlanCourse(ctx context.Context, pc *repository.PlanCourse) error {
	f.inserts++
	if err := f.insertErr[pc.CourseID]; err != nil {
		return err
	}
	for _, existing := range f.courses {
		if existing.PlanID == pc.PlanID && existing.CourseID == pc.CourseID {
			return repository.ErrDuplicatePlanCourse
		}
	}
	pc.ID = uuid.New()
	f.courses = append(f.courses, *pc)
	return nil
}

// fakeResolver resolves codes from a fixed table
type fakeResolver struct {
	ids  map[string]uuid.UUID
	errs map[string]error
}

func (f *fakeResolver) Resolve(ctx context.Context, code string) (uuid.UUID, error) {
	if err := f.errs[code]; err != nil {
		return uuid.Nil, err
	}
	id, ok := f.ids[code]
	if !ok {
		return uuid.Nil, fmt.Errorf("%s: %w", code, catalog.ErrCourseNotFound)
	}
	return id, nil
}

type fakeSuggester struct {
	suggestions []string
}

func (f *fakeSuggester) Suggest(ctx context.Context, code string, limit int) ([]string, error) {
	return f.suggestions, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parsed(code, semester string) transcriptrepo.ParsedCourse {
	return transcriptrepo.ParsedCourse{Code: code, Grade: "A", SemesterText: semester}
}

type fixture struct {
	repo     *fakePlanRepository
	resolver *fakeResolver
	svc      *PlanService
	planID   uuid.UUID
}

func newFixture(codes ...string) *fixture {
	repo := newFakePlanRepository()
	resolver := &fakeResolver{ids: map[string]uuid.UUID{}, errs: map[string]error{}}
	for _, c := range codes {
		resolver.ids[c] = uuid.New()
	}
	planID := uuid.New()
	repo.plans[planID] = &repository.Plan{ID: planID, StudentID: uuid.New(), Name: "Plan"}
	return &fixture{
		repo:     repo,
		resolver: resolver,
		svc:      NewPlanService(repo, resolver, quietLogger()),
		planID:   planID,
	}
}

func TestReconcile_AddsWithBucketPositions(t *testing.T) {
	f := newFixture("CS 46A", "CS 46B", "MATH 30")
	ctx := context.Background()

	report, err := f.svc.Reconcile(ctx, f.planID, []transcriptrepo.ParsedCourse{
		parsed("CS 46A", "Fall 2023"),
		parsed("MATH 30", "Fall 2023"),
		parsed("CS 46B", "Spring 2024"),
	})

	require.NoError(t, err)
	assert.Equal(t, 3, report.Added)
	assert.Equal(t, 0, report.Skipped)
	assert.Empty(t, report.Errors)

	require.Len(t, f.repo.courses, 3)
	assert.Equal(t, "Fall", f.repo.courses[0].Term)
	assert.Equal(t, "2023", f.repo.courses[0].Year)
	assert.Equal(t, 20233, f.repo.courses[0].TermOrder)
	assert.Equal(t, 1, f.repo.courses[0].Position)
	assert.Equal(t, 2, f.repo.courses[1].Position)
	assert.Equal(t, 1, f.repo.courses[2].Position, "positions are local to each term bucket")
	assert.Equal(t, 20241, f.repo.courses[2].TermOrder)
}

func TestReconcile_Idempotent(t *testing.T) {
	f := newFixture("CS 46A", "MATH 30")
	ctx := context.Background()
	input := []transcriptrepo.ParsedCourse{
		parsed("CS 46A", "Fall 2023"),
		parsed("MATH 30", "Fall 2023"),
	}

	first, err := f.svc.Reconcile(ctx, f.planID, input)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Added)

	second, err := f.svc.Reconcile(ctx, f.planID, input)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 2, second.Skipped)
	for _, s := range second.Skips {
		assert.Equal(t, SkipAlreadyInPlan, s.Reason)
	}
	assert.Len(t, f.repo.courses, 2)
}

func TestReconcile_AppendsAfterExistingPosition(t *testing.T) {
	f := newFixture("CS 46A", "CS 46B")
	f.repo.courses = append(f.repo.courses, repository.PlanCourse{
		PlanID: f.planID, CourseID: uuid.New(), Term: "Fall", Year: "2023", TermOrder: 20233, Position: 7,
	})

	report, err := f.svc.Reconcile(context.Background(), f.planID, []transcriptrepo.ParsedCourse{
		parsed("CS 46A", "fall 2023"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 8, f.repo.courses[1].Position)
}

func TestReconcile_SkipReasons(t *testing.T) {
	f := newFixture("CS 46A")
	f.svc.WithSuggester(&fakeSuggester{suggestions: []string{"PHYS 50A"}})

	report, err := f.svc.Reconcile(context.Background(), f.planID, []transcriptrepo.ParsedCourse{
		parsed("CS 46A", "Autumn 2023"),
		parsed("CS 46A", ""),
		parsed("PHYS 50", "Fall 2023"),
		parsed("CS 46A", "Fall 2023"),
		parsed("CS 46A", "Spring 2024"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 4, report.Skipped)
	require.Len(t, report.Skips, 4)

	assert.Equal(t, SkipUnparseableSemester, report.Skips[0].Reason)
	assert.Equal(t, SkipUnparseableSemester, report.Skips[1].Reason)
	assert.Equal(t, SkipNotInCatalog, report.Skips[2].Reason)
	assert.Equal(t, []string{"PHYS 50A"}, report.Skips[2].Suggestions)

	// retake in a later term resolves to the same catalog course
	assert.Equal(t, "CS 46A", report.Skips[3].Code)
	assert.Equal(t, SkipAlreadyInPlan, report.Skips[3].Reason)
	assert.Equal(t, 1, f.repo.inserts)
}

func TestReconcile_AmbiguousIsNotInCatalog(t *testing.T) {
	f := newFixture()
	f.resolver.errs["HIST 17A"] = fmt.Errorf("HIST 17A: %w", catalog.ErrAmbiguousCourse)

	report, err := f.svc.Reconcile(context.Background(), f.planID, []transcriptrepo.ParsedCourse{
		parsed("HIST 17A", "Fall 2023"),
	})

	require.NoError(t, err)
	require.Len(t, report.Skips, 1)
	assert.Equal(t, SkipNotInCatalog, report.Skips[0].Reason)
	assert.Empty(t, f.repo.courses)
}

func TestReconcile_UniqueViolationIsSkip(t *testing.T) {
	f := newFixture("CS 46A")
	// another run inserted the row between load and insert
	f.repo.insertErr[f.resolver.ids["CS 46A"]] = repository.ErrDuplicatePlanCourse

	report, err := f.svc.Reconcile(context.Background(), f.planID, []transcriptrepo.ParsedCourse{
		parsed("CS 46A", "Fall 2023"),
		parsed("CS 46A", "Spring 2024"),
	})

	require.NoError(t, err)
	assert.Equal(t, 0, report.Added)
	assert.Equal(t, 2, report.Skipped)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 1, f.repo.inserts, "second candidate hits the in-memory set")
}

func TestReconcile_InsertFailureIsRetriedByLaterCandidate(t *testing.T) {
	f := newFixture("CS 46A", "MATH 30")
	courseID := f.resolver.ids["CS 46A"]
	f.repo.insertErr[courseID] = errors.New("deadlock detected")

	input := []transcriptrepo.ParsedCourse{
		parsed("CS 46A", "Fall 2023"),
		parsed("MATH 30", "Fall 2023"),
	}
	report, err := f.svc.Reconcile(context.Background(), f.planID, append(input, parsed("CS 46A", "Spring 2024")))

	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	require.Len(t, report.Errors, 2)
	assert.True(t, strings.HasPrefix(report.Errors[0], "CS 46A: "))
	assert.Contains(t, report.Errors[0], "deadlock detected")
	assert.Equal(t, 3, f.repo.inserts, "failed course was not marked as present")
}

func TestReconcile_PositionCollisionIsError(t *testing.T) {
	f := newFixture("CS 46A", "MATH 30")
	f.repo.insertErr[f.resolver.ids["CS 46A"]] = repository.ErrPositionTaken

	report, err := f.svc.Reconcile(context.Background(), f.planID, []transcriptrepo.ParsedCourse{
		parsed("CS 46A", "Fall 2023"),
		parsed("MATH 30", "Fall 2023"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 0, report.Skipped)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "CS 46A")
	assert.Contains(t, report.Errors[0], "plan position already taken")
}

func TestReconcile_PerCourseErrorsDoNotAbort(t *testing.T) {
	f := newFixture("CS 46A", "MATH 30")
	f.resolver.errs["CS 999"] = errors.New("catalog timeout")
	f.repo.maxErr["Spring 2024"] = errors.New("statement timeout")

	report, err := f.svc.Reconcile(context.Background(), f.planID, []transcriptrepo.ParsedCourse{
		parsed("CS 999", "Fall 2023"),
		parsed("CS 46A", "Spring 2024"),
		parsed("MATH 30", "Fall 2023"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 0, report.Skipped)
	require.Len(t, report.Errors, 2)
	assert.Contains(t, report.Errors[0], "CS 999")
	assert.Contains(t, report.Errors[1], "CS 46A")
}

func TestReconcile_LoadFailureWritesNothing(t *testing.T) {
	f := newFixture("CS 46A")
	f.repo.listErr = errors.New("connection refused")

	report, err := f.svc.Reconcile(context.Background(), f.planID, []transcriptrepo.ParsedCourse{
		parsed("CS 46A", "Fall 2023"),
	})

	require.Error(t, err)
	assert.Nil(t, report)
	assert.Equal(t, 0, f.repo.inserts)
}

func TestReconcile_CancelledContextStops(t *testing.T) {
	f := newFixture("CS 46A")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.svc.Reconcile(ctx, f.planID, []transcriptrepo.ParsedCourse{parsed("CS 46A", "Fall 2023")})

	require.NoError(t, err)
	assert.Equal(t, 0, report.Added)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "context canceled")
}

func TestReconcile_RecordsMetrics(t *testing.T) {
	f := newFixture("CS 46A")
	m := metrics.New(prometheus.NewRegistry())
	f.svc.WithMetrics(m)

	_, err := f.svc.Reconcile(context.Background(), f.planID, []transcriptrepo.ParsedCourse{
		parsed("CS 46A", "Fall 2023"),
		parsed("CS 46A", "Fall 2023"),
		parsed("BIO 1", "nope"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReconcileOutcomes.WithLabelValues(metrics.OutcomeAdded)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReconcileOutcomes.WithLabelValues(metrics.OutcomeSkipped)))
}

func TestPlanService_GetPlanOwnership(t *testing.T) {
	f := newFixture()
	owner := f.repo.plans[f.planID].StudentID

	plan, err := f.svc.GetPlan(context.Background(), owner, f.planID)
	require.NoError(t, err)
	assert.Equal(t, f.planID, plan.ID)

	_, err = f.svc.GetPlan(context.Background(), uuid.New(), f.planID)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = f.svc.GetPlan(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestPlanService_CreatePlanDefaultsName(t *testing.T) {
	f := newFixture()

	plan, err := f.svc.CreatePlan(context.Background(), uuid.New(), "  ")
	require.NoError(t, err)
	assert.Equal(t, "My Plan", plan.Name)
	assert.Contains(t, f.repo.plans, plan.ID)
}
