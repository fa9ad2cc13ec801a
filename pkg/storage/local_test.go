package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), 0)
	require.NoError(t, err)
	ctx := context.Background()
	owner := uuid.New()

	info, err := s.Save(ctx, owner, "../../etc/transcript.pdf", "application/pdf", bytes.NewReader([]byte("%PDF-1.7 body")))
	require.NoError(t, err)
	assert.Equal(t, int64(13), info.Size)
	assert.Equal(t, owner, info.OwnerID)
	assert.Len(t, info.SHA256, 64)
	assert.NotContains(t, info.Path, "/")

	rc, got, err := s.Open(ctx, owner, info.ID)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 body", string(body))
	assert.Equal(t, info.ID, got.ID)

	list, err := s.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, owner, info.ID))
	_, err = s.Stat(ctx, owner, info.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_OtherOwnerCannotOpen(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), 0)
	require.NoError(t, err)
	ctx := context.Background()

	info, err := s.Save(ctx, uuid.New(), "a.pdf", "application/pdf", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	_, _, err = s.Open(ctx, uuid.New(), info.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_SizeLimit(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), 4)
	require.NoError(t, err)
	owner := uuid.New()

	_, err = s.Save(context.Background(), owner, "big.pdf", "application/pdf", bytes.NewReader([]byte("12345")))
	assert.ErrorIs(t, err, ErrTooLarge)

	list, err := s.List(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(Config{Type: "s3"})
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "transcript.pdf", sanitizeFilename("C:\\Users\\me\\transcript.pdf"))
	assert.Equal(t, "a_b.pdf", sanitizeFilename("a:b.pdf"))
	assert.Equal(t, "document", sanitizeFilename(""))
}
