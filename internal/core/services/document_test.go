package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/acadrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/acadrag/internal/core/domain"
)

type documentFixture struct {
	*fixture
	docs  *memory.DocumentStore
	blobs *memory.BlobStore
	svc   *DocumentService
}

func newDocumentFixture(t *testing.T, policy domain.DeletePolicy) *documentFixture {
	t.Helper()
	f := newFixture(t, 50)
	df := &documentFixture{
		fixture: f,
		docs:    memory.NewDocumentStore(),
		blobs:   memory.NewBlobStore(),
	}
	df.svc = NewDocumentService(df.docs, df.blobs, f.notes, f.ingest, policy)

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	df.svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return df
}

func TestDocumentService_Upload(t *testing.T) {
	f := newDocumentFixture(t, domain.DeleteRetain)
	ctx := context.Background()

	doc, err := f.svc.Upload(ctx, "u1", "bio.txt", []byte(mitochondriaText))
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "u1", doc.UserID)
	assert.Equal(t, "bio.txt", doc.Name)
	assert.Equal(t, "text/plain", doc.MIMEType)
	assert.Equal(t, int64(len(mitochondriaText)), doc.Size)
	assert.Equal(t, time.UTC, doc.CreatedAt.Location())

	stored, err := f.blobs.Read(ctx, doc.Path)
	require.NoError(t, err)
	assert.Equal(t, mitochondriaText, string(stored))

	data, err := f.store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, data.Chunks, 2)

	docs, err := f.svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)
}

func TestDocumentService_UploadUnsupportedRemovesBlob(t *testing.T) {
	f := newDocumentFixture(t, domain.DeleteRetain)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "u1", "archive.zip", []byte("PK\x03\x04binary"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Equal(t, 0, f.blobs.Len())

	docs, err := f.svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

// unavailableRegistry fails every registration.
type unavailableRegistry struct {
	*memory.DocumentStore
}

func (unavailableRegistry) SaveDocument(context.Context, *domain.Document) error {
	return errors.New("registry down")
}

func TestDocumentService_UploadRegistryFailureLeavesNothing(t *testing.T) {
	f := newDocumentFixture(t, domain.DeleteRetain)
	f.svc = NewDocumentService(unavailableRegistry{f.docs}, f.blobs, f.notes, f.ingest, domain.DeleteRetain)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "u1", "bio.txt", []byte(mitochondriaText))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry down")

	_, err = f.store.Load(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, f.blobs.Len())
}

func TestDocumentService_UploadIngestFailureUnregisters(t *testing.T) {
	f := newDocumentFixture(t, domain.DeleteRetain)
	ctx := context.Background()

	f.embedder.setErr(errors.New("embedding backend down"))
	_, err := f.svc.Upload(ctx, "u1", "bio.txt", []byte(mitochondriaText))
	require.Error(t, err)

	docs, err := f.svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, 0, f.blobs.Len())

	_, err = f.store.Load(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_UploadInvalidInput(t *testing.T) {
	f := newDocumentFixture(t, domain.DeleteRetain)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "", "a.txt", []byte("x."))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Upload(ctx, "u1", "  ", []byte("x."))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, f.blobs.Len())
}

func TestDocumentService_ListOrderAndIsolation(t *testing.T) {
	f := newDocumentFixture(t, domain.DeleteRetain)
	ctx := context.Background()

	a, err := f.svc.Upload(ctx, "u1", "a.txt", []byte("First."))
	require.NoError(t, err)
	b, err := f.svc.Upload(ctx, "u1", "b.txt", []byte("Second."))
	require.NoError(t, err)
	_, err = f.svc.Upload(ctx, "u2", "c.txt", []byte("Other."))
	require.NoError(t, err)

	docs, err := f.svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, a.ID, docs[0].ID)
	assert.Equal(t, b.ID, docs[1].ID)
}

func TestDocumentService_DeleteRetainKeepsChunks(t *testing.T) {
	f := newDocumentFixture(t, domain.DeleteRetain)
	ctx := context.Background()

	doc, err := f.svc.Upload(ctx, "u1", "a.txt", []byte("First."))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, "u1", doc.ID))
	assert.Equal(t, 0, f.blobs.Len())

	docs, err := f.svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, docs)

	data, err := f.store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"First."}, data.Chunks)
}

func TestDocumentService_DeleteRebuildDropsChunks(t *testing.T) {
	f := newDocumentFixture(t, domain.DeleteRebuild)
	ctx := context.Background()

	a, err := f.svc.Upload(ctx, "u1", "a.txt", []byte("First."))
	require.NoError(t, err)
	_, err = f.svc.Upload(ctx, "u1", "b.txt", []byte("Second."))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, "u1", a.ID))

	data, err := f.store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Second."}, data.Chunks)

	idx, err := f.cache.GetOrLoad(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestDocumentService_DeleteLastDocumentUnderRebuild(t *testing.T) {
	f := newDocumentFixture(t, domain.DeleteRebuild)
	ctx := context.Background()

	doc, err := f.svc.Upload(ctx, "u1", "a.txt", []byte("First."))
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, "u1", doc.ID))

	ans, err := f.answer.Ask(ctx, domain.AskRequest{UserID: "u1", Query: "first"})
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerNoDocuments, ans.Status)
}

func TestDocumentService_DeleteUnknown(t *testing.T) {
	f := newDocumentFixture(t, domain.DeleteRetain)

	err := f.svc.Delete(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_InvalidPolicyDefaultsToRetain(t *testing.T) {
	svc := NewDocumentService(nil, nil, nil, nil, domain.DeletePolicy("purge"))
	assert.Equal(t, domain.DeleteRetain, svc.policy)
}

func TestDocumentService_Notes(t *testing.T) {
	f := newDocumentFixture(t, domain.DeleteRetain)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "u1", "a.txt", []byte("First   part.\n\n\nSecond."))
	require.NoError(t, err)

	notes, err := f.svc.Notes(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "\nFirst part.\nSecond.", notes)

	notes, err = f.svc.Notes(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, notes)

	_, err = f.svc.Notes(ctx, "..")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
