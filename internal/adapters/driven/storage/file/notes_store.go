package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/custodia-labs/acadrag/internal/core/ports/driven"
)

// NotesStore appends cleaned text to each user's notes.txt.
type NotesStore struct {
	root string
}

var _ driven.NotesStore = (*NotesStore)(nil)

// NewNotesStore creates a notes store rooted at dataDir.
func NewNotesStore(dataDir string) *NotesStore {
	return &NotesStore{root: dataDir}
}

func (s *NotesStore) path(userID string) (string, error) {
	dir, err := userDir(s.root, userID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "notes.txt"), nil
}

// Append writes a newline followed by text. The file is opened in append
// mode so concurrent writers never overwrite each other.
func (s *NotesStore) Append(_ context.Context, userID, text string) error {
	path, err := s.path(userID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("creating user directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, filePerm)
	if err != nil {
		return fmt.Errorf("opening notes: %w", err)
	}
	if _, err := f.WriteString("\n" + text); err != nil {
		f.Close()
		return fmt.Errorf("appending notes: %w", err)
	}
	return f.Close()
}

// Read returns the whole notes file, or "" when none exists.
func (s *NotesStore) Read(_ context.Context, userID string) (string, error) {
	path, err := s.path(userID)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading notes: %w", err)
	}
	return string(data), nil
}
