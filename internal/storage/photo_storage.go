package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

const maxPhotoSize = 10 << 20 // 10 MiB

// PhotoStorage writes uploaded product photos to local disk. Content is
// sniffed, not trusted from the upload headers; only real images are
// accepted.
type PhotoStorage struct {
	basePath string
}

func NewPhotoStorage(basePath string) (*PhotoStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("photo storage: mkdir: %w", err)
	}
	return &PhotoStorage{basePath: basePath}, nil
}

// Save stores the upload and returns the stored file name, detected
// mime type and size.
func (s *PhotoStorage) Save(r io.Reader) (string, string, int64, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxPhotoSize+1))
	if err != nil {
		return "", "", 0, fmt.Errorf("photo storage: read: %w", err)
	}
	if len(body) > maxPhotoSize {
		return "", "", 0, fmt.Errorf("photo storage: file exceeds %d bytes", maxPhotoSize)
	}

	kind, err := filetype.Match(body)
	if err != nil {
		return "", "", 0, fmt.Errorf("photo storage: detect type: %w", err)
	}
	if !filetype.IsImage(body) {
		return "", "", 0, fmt.Errorf("photo storage: not an image")
	}

	name := uuid.NewString() + "." + kind.Extension
	path := filepath.Join(s.basePath, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", "", 0, fmt.Errorf("photo storage: write: %w", err)
	}

	return name, kind.MIME.Value, int64(len(body)), nil
}

// Open returns the stored file for serving.
func (s *PhotoStorage) Open(name string) (*os.File, error) {
	clean := filepath.Base(name)
	f, err := os.Open(filepath.Join(s.basePath, clean))
	if err != nil {
		return nil, fmt.Errorf("photo storage: open: %w", err)
	}
	return f, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *PhotoStorage) Delete(name string) error {
	clean := filepath.Base(name)
	if err := os.Remove(filepath.Join(s.basePath, clean)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("photo storage: delete: %w", err)
	}
	return nil
}
