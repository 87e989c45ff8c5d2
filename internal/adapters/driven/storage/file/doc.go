// Package file stores per-user data under a data directory:
//
//	<data>/users/<user>/index/CURRENT          name of the live generation
//	<data>/users/<user>/index/<gen>/vectors.bin
//	<data>/users/<user>/index/<gen>/chunks.json
//	<data>/users/<user>/docs/<id>_<name>       uploaded files
//	<data>/users/<user>/notes.txt              append-only notes
//
// An index generation is written completely before CURRENT is atomically
// replaced to point at it, so vectors and chunks can never disagree.
package file

import (
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/acadrag/internal/core/domain"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

func userDir(root, userID string) (string, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return "", fmt.Errorf("user %q: %w", userID, err)
	}
	return filepath.Join(root, "users", userID), nil
}
