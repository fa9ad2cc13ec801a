package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/course-planner/internal/domain/catalog/repository"
)

type fakeCatalog struct {
	courses []repository.Course
	err     error
	lookups int
}

func (f *fakeCatalog) FindBySubjectAndNumber(ctx context.Context, subject, number string, limit int) ([]repository.Course, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	var out []repository.Course
	for _, c := range f.courses {
		if strings.EqualFold(c.Subject, subject) && strings.EqualFold(c.Number, number) {
			out = append(out, c)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListBySubject(ctx context.Context, subject string) ([]repository.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []repository.Course
	for _, c := range f.courses {
		if strings.EqualFold(c.Subject, subject) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalog) Create(ctx context.Context, c *repository.Course) error {
	f.courses = append(f.courses, *c)
	return nil
}

func course(subject, number string) repository.Course {
	return repository.Course{ID: uuid.New(), Subject: subject, Number: number}
}

func TestResolver_Resolve(t *testing.T) {
	cs46a := course("CS", "46A")
	cat := &fakeCatalog{courses: []repository.Course{
		cs46a,
		course("MATH", "30"),
		course("HIST", "17A"),
		course("HIST", "17A"),
	}}
	r := NewResolver(cat, nil)
	ctx := context.Background()

	t.Run("unique match", func(t *testing.T) {
		id, err := r.Resolve(ctx, "CS 46A")
		require.NoError(t, err)
		assert.Equal(t, cs46a.ID, id)
	})

	t.Run("case and spacing insensitive", func(t *testing.T) {
		id, err := r.Resolve(ctx, "  cs   46a ")
		require.NoError(t, err)
		assert.Equal(t, cs46a.ID, id)
	})

	t.Run("not found", func(t *testing.T) {
		id, err := r.Resolve(ctx, "PHYS 50")
		assert.ErrorIs(t, err, ErrCourseNotFound)
		assert.False(t, errors.Is(err, ErrAmbiguousCourse))
		assert.Equal(t, uuid.Nil, id)
	})

	t.Run("ambiguous never picks first", func(t *testing.T) {
		id, err := r.Resolve(ctx, "HIST 17A")
		assert.ErrorIs(t, err, ErrAmbiguousCourse)
		assert.ErrorIs(t, err, ErrCourseNotFound)
		assert.Equal(t, uuid.Nil, id)
	})
}

func TestResolver_MalformedCodeSkipsQuery(t *testing.T) {
	cat := &fakeCatalog{courses: []repository.Course{course("CS", "46A")}}
	r := NewResolver(cat, nil)

	for _, code := range []string{"", "CS", "CS46A", "COMPSCI 46", "CS 1234", "46A CS"} {
		t.Run(code, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), code)
			assert.ErrorIs(t, err, ErrCourseNotFound)
		})
	}
	assert.Equal(t, 0, cat.lookups)
}

func TestResolver_RepositoryError(t *testing.T) {
	boom := errors.New("db down")
	r := NewResolver(&fakeCatalog{err: boom}, nil)

	_, err := r.Resolve(context.Background(), "CS 1")

	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, ErrCourseNotFound))
}

func TestResolver_Suggest(t *testing.T) {
	cat := &fakeCatalog{courses: []repository.Course{
		course("CS", "46A"),
		course("CS", "46B"),
		course("CS", "151"),
		course("MATH", "46"),
	}}
	r := NewResolver(cat, nil)

	got, err := r.Suggest(context.Background(), "cs 46", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"CS 46A", "CS 46B"}, got)

	none, err := r.Suggest(context.Background(), "BIO 10", 3)
	require.NoError(t, err)
	assert.Empty(t, none)

	malformed, err := r.Suggest(context.Background(), "not a code", 3)
	require.NoError(t, err)
	assert.Nil(t, malformed)
}

func TestCodeScore(t *testing.T) {
	assert.Equal(t, 100, codeScore("CS 46A", "CS 46A"))
	assert.Greater(t, codeScore("CS 46", "CS 46A"), codeScore("CS 46", "CS 151"))
	assert.GreaterOrEqual(t, codeScore("CS 1O1", "CS 101"), minSuggestScore)
}
