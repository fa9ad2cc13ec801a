// Package storage keeps uploaded transcript documents.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a stored document does not exist for the owner
var ErrNotFound = errors.New("stored document not found")

// FileInfo contains metadata about a stored document
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	SHA256      string    `json:"sha256"`
	Path        string    `json:"path"` // relative to the owner directory
	CreatedAt   time.Time `json:"created_at"`
}

// Storage stores documents per owner
type Storage interface {
	// Save stores r under ownerID and returns its metadata
	Save(ctx context.Context, ownerID uuid.UUID, filename, contentType string, r io.Reader) (*FileInfo, error)

	// Open returns the document content; callers close the reader
	Open(ctx context.Context, ownerID, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// Stat returns metadata without opening the content
	Stat(ctx context.Context, ownerID, fileID uuid.UUID) (*FileInfo, error)

	// List returns the owner's documents, oldest first
	List(ctx context.Context, ownerID uuid.UUID) ([]*FileInfo, error)

	Delete(ctx context.Context, ownerID, fileID uuid.UUID) error
}

// Type identifies the storage backend
type Type string

const (
	TypeLocal Type = "local"
)

// Config holds storage configuration
type Config struct {
	Type      Type
	LocalPath string
	MaxBytes  int64 // uploads larger than this are rejected; 0 disables the check
}

// New creates the configured backend
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case TypeLocal, "":
		return NewLocalStorage(cfg.LocalPath, cfg.MaxBytes)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}
