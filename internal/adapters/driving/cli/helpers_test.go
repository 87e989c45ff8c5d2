package cli

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/acadrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/services"
)

// mockAnswerService records the last request and returns a canned answer.
type mockAnswerService struct {
	mu     sync.Mutex
	last   domain.AskRequest
	answer *domain.Answer
	err    error
	asked  int
}

func (m *mockAnswerService) Ask(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = req
	m.asked++
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{Text: domain.NoDocumentsAnswer, Status: domain.AnswerNoDocuments}, nil
}

// mockDocumentService keeps documents per user in memory.
type mockDocumentService struct {
	mu        sync.Mutex
	docs      map[string][]domain.Document
	notes     map[string]string
	uploadErr error
	deleted   []string
}

func newMockDocumentService() *mockDocumentService {
	return &mockDocumentService{
		docs:  make(map[string][]domain.Document),
		notes: make(map[string]string),
	}
}

func (m *mockDocumentService) Upload(_ context.Context, userID, filename string, data []byte) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	doc := domain.Document{
		ID:        filename + "-id",
		UserID:    userID,
		Name:      filename,
		MIMEType:  "text/plain",
		Size:      int64(len(data)),
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	m.docs[userID] = append(m.docs[userID], doc)
	m.notes[userID] += string(data) + "\n"
	return &doc, nil
}

func (m *mockDocumentService) List(_ context.Context, userID string) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Document(nil), m.docs[userID]...), nil
}

func (m *mockDocumentService) Delete(_ context.Context, userID, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.docs[userID]
	for i := range docs {
		if docs[i].ID == documentID {
			m.docs[userID] = append(docs[:i], docs[i+1:]...)
			m.deleted = append(m.deleted, documentID)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockDocumentService) Notes(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notes[userID], nil
}

// testServices are the mocks installed by setupTestServices.
type testServices struct {
	answers *mockAnswerService
	docs    *mockDocumentService
	store   *memory.ConfigStore
}

// setupTestServices installs in-memory services and returns a cleanup
// that restores the package state and resets flags.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		answers: &mockAnswerService{},
		docs:    newMockDocumentService(),
		store:   memory.NewConfigStore(),
	}

	answerService = ts.answers
	documentService = ts.docs
	configStore = ts.store
	settingsService = services.NewSettingsService(ts.store, nil)
	settings = domain.DefaultSettings()

	return ts, func() {
		answerService = nil
		documentService = nil
		settingsService = nil
		configStore = nil
		settings = domain.Settings{}
		pingProviders = nil
		closeServices = nil

		askTopK = 0
		askJSON = false
		ingestWatch = ""
		userFlag = ""
		serveAddr = ""
		mcpHTTPAddr = ""
		cfgFile = ""
		verbose = false

		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(args ...string) (string, string, error) {
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}
