package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/acadrag/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleNotesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil document service returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}}, testOptions)
		require.NoError(t, err)

		_, err = server.handleNotesResource(ctx, makeReadResourceRequest(notesURI))
		require.Error(t, err)
	})

	t.Run("returns notes", func(t *testing.T) {
		mockDoc := &mockDocumentService{notes: "\nCell biology.\nThe mitochondria is the powerhouse."}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: mockDoc}, testOptions)
		require.NoError(t, err)

		result, err := server.handleNotesResource(ctx, makeReadResourceRequest(notesURI))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
		assert.Equal(t, mockDoc.notes, result.Contents[0].Text)
		assert.Equal(t, "student", mockDoc.lastUser)
	})

	t.Run("returns error on read failure", func(t *testing.T) {
		mockDoc := &mockDocumentService{err: errors.New("disk error")}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: mockDoc}, testOptions)
		require.NoError(t, err)

		_, err = server.handleNotesResource(ctx, makeReadResourceRequest(notesURI))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading notes")
	})
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil document service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}}, testOptions)
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest(documentsURI))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns documents as JSON", func(t *testing.T) {
		mockDoc := &mockDocumentService{documents: []domain.Document{
			{ID: "d1", Name: "bio.pdf", MIMEType: "application/pdf", CreatedAt: time.Now()},
		}}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: mockDoc}, testOptions)
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest(documentsURI))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"id": "d1"`)
		assert.Contains(t, result.Contents[0].Text, `"name": "bio.pdf"`)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		mockDoc := &mockDocumentService{err: errors.New("database error")}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Document: mockDoc}, testOptions)
		require.NoError(t, err)

		_, err = server.handleDocumentsResource(ctx, makeReadResourceRequest(documentsURI))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})
}
