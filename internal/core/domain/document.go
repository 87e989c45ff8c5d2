package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Document represents one user-uploaded source file.
type Document struct {
	// ID is the unique identifier for the document (unique per user).
	ID string

	// UserID is the owner of the document.
	UserID string

	// Name is the display name (the uploaded filename).
	Name string

	// Path is where the stored bytes live, as returned by the BlobStore.
	Path string

	// MIMEType is the detected content type.
	MIMEType string

	// Size is the stored size in bytes.
	Size int64

	// CreatedAt is when the document was uploaded.
	CreatedAt time.Time
}

// Chunk is a bounded-length span of normalised text.
// Position is its sequence number within the user's ordered chunk list,
// which always matches the position of its vector in the index.
type Chunk struct {
	Content  string
	Position int
}

// ValidateUserID checks that a user identifier is usable as a storage key.
// User IDs become path components, so separators and dot segments are rejected.
func ValidateUserID(userID string) error {
	switch {
	case strings.TrimSpace(userID) == "":
		return ErrInvalidInput
	case userID == "." || userID == "..":
		return ErrInvalidInput
	case strings.ContainsAny(userID, `/\`+"\x00"):
		return ErrInvalidInput
	case filepath.Base(userID) != userID:
		return ErrInvalidInput
	}
	return nil
}
