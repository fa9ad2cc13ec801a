package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrTooLarge is returned when an upload exceeds the configured limit
var ErrTooLarge = errors.New("document exceeds size limit")

const metaDirName = ".meta"

// LocalStorage implements Storage on the local filesystem. Each owner has a
// directory holding the documents plus a .meta directory of JSON sidecars.
type LocalStorage struct {
	basePath string
	maxBytes int64
}

// NewLocalStorage creates the base directory if needed
func NewLocalStorage(basePath string, maxBytes int64) (*LocalStorage, error) {
	if basePath == "" {
		basePath = "./uploads"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath, maxBytes: maxBytes}, nil
}

// Save writes the document and its metadata sidecar
func (s *LocalStorage) Save(ctx context.Context, ownerID uuid.UUID, filename, contentType string, r io.Reader) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fileID := uuid.New()
	ownerDir := s.ownerDir(ownerID)
	if err := os.MkdirAll(filepath.Join(ownerDir, metaDirName), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create owner directory: %w", err)
	}

	stored := fmt.Sprintf("%s_%s", fileID.String()[:8], sanitizeFilename(filename))
	path := filepath.Join(ownerDir, stored)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(f, hash), src)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && s.maxBytes > 0 && size > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	info := &FileInfo{
		ID:          fileID,
		OwnerID:     ownerID,
		Name:        filename,
		Size:        size,
		ContentType: contentType,
		SHA256:      hex.EncodeToString(hash.Sum(nil)),
		Path:        stored,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.writeMeta(info); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	return info, nil
}

// Open returns the document content
func (s *LocalStorage) Open(ctx context.Context, ownerID, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error) {
	info, err := s.Stat(ctx, ownerID, fileID)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.ownerDir(ownerID), info.Path))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, info, nil
}

// Stat reads the metadata sidecar
func (s *LocalStorage) Stat(ctx context.Context, ownerID, fileID uuid.UUID) (*FileInfo, error) {
	data, err := os.ReadFile(s.metaPath(ownerID, fileID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &info, nil
}

// List returns every document with readable metadata
func (s *LocalStorage) List(ctx context.Context, ownerID uuid.UUID) ([]*FileInfo, error) {
	entries, err := os.ReadDir(filepath.Join(s.ownerDir(ownerID), metaDirName))
	if errors.Is(err, os.ErrNotExist) {
		return []*FileInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	files := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		info, err := s.Stat(ctx, ownerID, id)
		if err != nil {
			continue
		}
		files = append(files, info)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.Before(files[j].CreatedAt)
	})
	return files, nil
}

// Delete removes the document and its metadata
func (s *LocalStorage) Delete(ctx context.Context, ownerID, fileID uuid.UUID) error {
	info, err := s.Stat(ctx, ownerID, fileID)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.ownerDir(ownerID), info.Path)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if err := os.Remove(s.metaPath(ownerID, fileID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	return nil
}

func (s *LocalStorage) ownerDir(ownerID uuid.UUID) string {
	return filepath.Join(s.basePath, ownerID.String())
}

func (s *LocalStorage) metaPath(ownerID, fileID uuid.UUID) string {
	return filepath.Join(s.ownerDir(ownerID), metaDirName, fileID.String()+".json")
}

func (s *LocalStorage) writeMeta(info *FileInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(info.OwnerID, info.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// sanitizeFilename keeps the base name and replaces characters that are
// unsafe in paths
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	replacer := strings.NewReplacer(
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	name = replacer.Replace(name)
	if name == "" || name == "." || name == "/" {
		return "document"
	}
	return name
}
