package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/acadrag/internal/core/domain"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngest_Files(t *testing.T) {
	t.Setenv(EnvUser, "")
	ts, cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	a := writeTempFile(t, dir, "lecture1.txt", "Photosynthesis makes sugar.")
	b := writeTempFile(t, dir, "lecture2.md", "# Cells")

	out, _, err := execute("ingest", "--user", "alice", a, b)
	require.NoError(t, err)

	assert.Contains(t, out, "Ingested lecture1.txt (lecture1.txt-id)")
	assert.Contains(t, out, "Ingested lecture2.md (lecture2.md-id)")

	docs := ts.docs.docs["alice"]
	require.Len(t, docs, 2)
	assert.Equal(t, "lecture1.txt", docs[0].Name)
	assert.Equal(t, int64(len("Photosynthesis makes sugar.")), docs[0].Size)
}

func TestIngest_ReportsFailures(t *testing.T) {
	t.Setenv(EnvUser, "")
	ts, cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	good := writeTempFile(t, dir, "good.txt", "text")
	missing := filepath.Join(dir, "missing.txt")

	out, errOut, err := execute("ingest", good, missing)
	require.Error(t, err)
	assert.EqualError(t, err, "1 of 2 files failed")
	assert.Contains(t, out, "Ingested good.txt")
	assert.Contains(t, errOut, missing)
	assert.Len(t, ts.docs.docs[DefaultUser], 1)
}

func TestIngest_UploadError(t *testing.T) {
	t.Setenv(EnvUser, "")
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.docs.uploadErr = errors.Join(domain.ErrUnsupportedType, errors.New(".docx"))
	path := writeTempFile(t, t.TempDir(), "essay.docx", "x")

	_, errOut, err := execute("ingest", path)
	require.Error(t, err)
	assert.Contains(t, errOut, "unsupported")
}

func TestIngest_NothingToDo(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute("ingest")
	assert.EqualError(t, err, "nothing to ingest: pass files or --watch")
}

func TestRunIngest_NoService(t *testing.T) {
	err := runIngest(ingestCmd, []string{"a.txt"})
	assert.EqualError(t, err, "document service not configured")
}
