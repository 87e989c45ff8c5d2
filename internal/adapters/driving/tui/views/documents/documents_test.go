package documents

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/acadrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/acadrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/acadrag/internal/core/domain"
)

type stubDocs struct {
	docs    []domain.Document
	listErr error
	deleted []string
	user    string
}

func (s *stubDocs) Upload(_ context.Context, _, _ string, _ []byte) (*domain.Document, error) {
	return nil, nil
}

func (s *stubDocs) List(_ context.Context, userID string) ([]domain.Document, error) {
	s.user = userID
	return s.docs, s.listErr
}

func (s *stubDocs) Delete(_ context.Context, _, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubDocs) Notes(_ context.Context, _ string) (string, error) {
	return "", nil
}

func key(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func loaded(t *testing.T, svc *stubDocs) *View {
	t.Helper()
	v := NewView(nil, nil, svc, "student")
	v.Update(v.Load()())
	return v
}

func TestView_Load(t *testing.T) {
	svc := &stubDocs{docs: []domain.Document{{ID: "a", Name: "a.pdf"}, {ID: "b", Name: "b.pdf"}}}

	v := loaded(t, svc)

	assert.Equal(t, "student", svc.user)
	assert.Equal(t, 2, v.List().Count())
	assert.Contains(t, v.View(), "a.pdf")
}

func TestView_LoadError(t *testing.T) {
	v := loaded(t, &stubDocs{listErr: errors.New("disk gone")})

	assert.Equal(t, status.StateError, v.statusbar.State())
	assert.Contains(t, v.View(), "disk gone")
}

func TestView_NoService(t *testing.T) {
	v := NewView(nil, nil, nil, "student")

	msg := v.Load()()

	assert.ErrorIs(t, msg.(messages.DocumentsLoaded).Err, ErrNoDocumentService)
}

func TestView_Navigation(t *testing.T) {
	v := loaded(t, &stubDocs{docs: []domain.Document{{ID: "a"}, {ID: "b"}}})

	v.Update(key("j"))
	assert.Equal(t, 1, v.List().Selected())

	v.Update(key("k"))
	assert.Equal(t, 0, v.List().Selected())
}

func TestView_DeleteConfirmed(t *testing.T) {
	svc := &stubDocs{docs: []domain.Document{{ID: "a", Name: "a.pdf"}}}
	v := loaded(t, svc)

	v.Update(key("x"))
	require.True(t, v.ConfirmingDelete())
	assert.Contains(t, v.View(), "Delete a.pdf?")

	_, cmd := v.Update(key("y"))
	require.NotNil(t, cmd)
	msg := cmd()

	assert.Equal(t, []string{"a"}, svc.deleted)
	_, reload := v.Update(msg)
	assert.NotNil(t, reload)
	assert.Equal(t, "Deleted a", v.statusbar.Message())
}

func TestView_DeleteOnEmptyListDoesNothing(t *testing.T) {
	v := loaded(t, &stubDocs{})

	v.Update(key("x"))

	assert.False(t, v.ConfirmingDelete())
}

func TestView_Refresh(t *testing.T) {
	v := loaded(t, &stubDocs{})

	_, cmd := v.Update(key("r"))

	require.NotNil(t, cmd)
	assert.IsType(t, messages.DocumentsLoaded{}, cmd())
}

func TestView_SwitchView(t *testing.T) {
	v := NewView(nil, nil, nil, "student")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyTab})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewChat}, cmd())
}
