package mcp

import (
	"context"

	"github.com/custodia-labs/acadrag/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer  *domain.Answer
	err     error
	lastReq domain.AskRequest
}

func (m *mockAnswerService) Ask(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
	m.lastReq = req
	return m.answer, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	notes     string
	err       error
	lastUser  string
}

func (m *mockDocumentService) Upload(_ context.Context, userID, _ string, _ []byte) (*domain.Document, error) {
	m.lastUser = userID
	return nil, m.err
}

func (m *mockDocumentService) List(_ context.Context, userID string) ([]domain.Document, error) {
	m.lastUser = userID
	return m.documents, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, userID, _ string) error {
	m.lastUser = userID
	return m.err
}

func (m *mockDocumentService) Notes(_ context.Context, userID string) (string, error) {
	m.lastUser = userID
	return m.notes, m.err
}

var testOptions = Options{UserID: "student", TopK: 3}
