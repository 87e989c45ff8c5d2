package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/acadrag/internal/core/domain"
)

func TestIndexStore_SaveLoadCopies(t *testing.T) {
	ctx := context.Background()
	s := NewIndexStore()

	_, err := s.Load(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	data := &domain.IndexData{Dimension: 1, Vectors: [][]float32{{1}}, Chunks: []string{"a"}}
	require.NoError(t, s.Save(ctx, "alice", data))
	data.Vectors[0][0] = 99

	got, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, float32(1), got.Vectors[0][0])
	got.Chunks[0] = "changed"

	again, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Chunks[0])
	assert.Equal(t, 3, s.Loads())

	require.NoError(t, s.Delete(ctx, "alice"))
	_, err = s.Load(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndexStore_RejectsInvalid(t *testing.T) {
	s := NewIndexStore()
	err := s.Save(context.Background(), "alice", &domain.IndexData{Dimension: 1, Chunks: []string{"orphan"}})
	assert.ErrorIs(t, err, domain.ErrCorruptIndex)
}

func TestBlobAndNotesStores(t *testing.T) {
	ctx := context.Background()

	blobs := NewBlobStore()
	path, err := blobs.Save(ctx, "alice", "id_notes.txt", []byte("hi"))
	require.NoError(t, err)
	data, err := blobs.Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
	require.NoError(t, blobs.Delete(ctx, path))
	assert.Zero(t, blobs.Len())

	notes := NewNotesStore()
	require.NoError(t, notes.Append(ctx, "alice", "one"))
	require.NoError(t, notes.Append(ctx, "alice", "two"))
	text, err := notes.Read(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "\none\ntwo", text)
}
