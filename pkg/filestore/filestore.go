// Package filestore keeps uploaded media on local disk under a root directory and
// serves it back through a public URL prefix.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrTooLarge    = errors.New("file exceeds the upload limit")
	ErrInvalidType = errors.New("unsupported file type")
)

var imageExtensions = map[string]string{
	".jpg":  ".jpg",
	".jpeg": ".jpg",
	".png":  ".png",
	".gif":  ".gif",
	".webp": ".webp",
}

type Store struct {
	root     string
	baseURL  string
	maxBytes int64
}

func New(root, baseURL string, maxBytes int64) *Store {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Store{root: root, baseURL: baseURL, maxBytes: maxBytes}
}

// SaveImage copies r into dir under a random name keeping the image extension of
// filename, and returns the stored relative path.
func (s *Store) SaveImage(dir, filename string, size int64, r io.Reader) (string, error) {
	if s.maxBytes > 0 && size > s.maxBytes {
		return "", ErrTooLarge
	}
	ext, ok := imageExtensions[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", ErrInvalidType
	}

	rel := path.Join(dir, uuid.NewString()+ext)
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	limit := s.maxBytes
	if limit <= 0 {
		limit = size
	}
	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxBytes > 0 && n > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(full)
		return "", err
	}

	return rel, nil
}

// Remove deletes a stored file, ignoring files that are already gone.
func (s *Store) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// URL returns the public URL of a stored path, empty for an empty path.
func (s *Store) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.baseURL + strings.TrimPrefix(rel, "/")
}
