package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/ports/driven"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// BlobStore keeps uploaded files under each user's docs directory.
type BlobStore struct {
	root string
}

var _ driven.BlobStore = (*BlobStore)(nil)

// NewBlobStore creates a blob store rooted at dataDir.
func NewBlobStore(dataDir string) *BlobStore {
	return &BlobStore{root: dataDir}
}

// SanitizeFilename reduces a client-supplied filename to a safe base name.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}

// Save writes data as name (expected to carry a unique prefix) in the user's docs directory.
func (s *BlobStore) Save(_ context.Context, userID, name string, data []byte) (string, error) {
	dir, err := userDir(s.root, userID)
	if err != nil {
		return "", err
	}
	docs := filepath.Join(dir, "docs")
	if err := os.MkdirAll(docs, dirPerm); err != nil {
		return "", fmt.Errorf("creating docs directory: %w", err)
	}

	path := filepath.Join(docs, SanitizeFilename(name))
	if err := replaceFile(path, data); err != nil {
		return "", fmt.Errorf("saving %s: %w", name, err)
	}
	return path, nil
}

// Read returns the bytes at path, which must lie inside the store.
func (s *BlobStore) Read(_ context.Context, path string) ([]byte, error) {
	if err := s.contains(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	return data, err
}

// Delete removes the file at path. Missing files are ignored.
func (s *BlobStore) Delete(_ context.Context, path string) error {
	if err := s.contains(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

func (s *BlobStore) contains(path string) error {
	root, err := filepath.Abs(filepath.Join(s.root, "users"))
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("%w: path %s is outside the store", domain.ErrInvalidInput, path)
	}
	return nil
}
