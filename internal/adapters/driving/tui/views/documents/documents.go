// Package documents provides the documents list view component for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/acadrag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/acadrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/acadrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/acadrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/acadrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/acadrag/internal/core/ports/driving"
)

// ErrNoDocumentService indicates that no document service was provided.
var ErrNoDocumentService = errors.New("document service not available")

// View is the documents list view.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.DocumentList
	statusbar *status.Bar

	docs   driving.DocumentService
	ctx    context.Context
	userID string

	confirmDelete bool
	loading       bool
	width         int
	height        int
}

// NewView creates a new documents view for userID.
func NewView(s *styles.Styles, km *keymap.KeyMap, docs driving.DocumentService, userID string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:    s,
		keymap:    km,
		list:      list.NewDocumentList(s),
		statusbar: status.NewBar(s, userID, km.DocumentsHelp()),
		docs:      docs,
		ctx:       context.Background(),
		userID:    userID,
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Load returns a command that loads the user's documents.
func (v *View) Load() tea.Cmd {
	v.loading = true
	return func() tea.Msg {
		if v.docs == nil {
			return messages.DocumentsLoaded{Err: ErrNoDocumentService}
		}
		docs, err := v.docs.List(v.ctx, v.userID)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

func (v *View) delete(id string) tea.Cmd {
	return func() tea.Msg {
		if v.docs == nil {
			return messages.DocumentDeleted{DocumentID: id, Err: ErrNoDocumentService}
		}
		return messages.DocumentDeleted{DocumentID: id, Err: v.docs.Delete(v.ctx, v.userID, id)}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.statusbar.SetError(msg.Err.Error())
			return v, nil
		}
		v.list.SetDocuments(msg.Documents)
		v.statusbar.SetState(status.StateReady)
		return v, nil

	case messages.DocumentDeleted:
		if msg.Err != nil {
			v.statusbar.SetError(msg.Err.Error())
			return v, nil
		}
		v.statusbar.SetMessage("Deleted " + msg.DocumentID)
		return v, v.Load()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()

	if v.confirmDelete {
		v.confirmDelete = false
		if keymap.Matches(k, v.keymap.Confirm) {
			if doc := v.list.SelectedDocument(); doc != nil {
				return v, v.delete(doc.ID)
			}
		}
		v.statusbar.SetState(status.StateReady)
		return v, nil
	}

	switch {
	case keymap.Matches(k, v.keymap.SwitchView):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewChat} }
	case keymap.Matches(k, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(k, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(k, v.keymap.Refresh):
		return v, v.Load()
	case keymap.Matches(k, v.keymap.Delete):
		if doc := v.list.SelectedDocument(); doc != nil {
			v.confirmDelete = true
			v.statusbar.SetMessage(fmt.Sprintf("Delete %s? (y/n)", doc.Name))
		}
	}
	return v, nil
}

// View renders the documents view.
func (v *View) View() string {
	body := v.list.View()
	if v.loading {
		body = v.styles.Muted.Render("Loading...")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("acadrag documents"),
		"",
		body,
		"",
		v.statusbar.View(),
	)
}

// SetDimensions resizes the view.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.list.SetDimensions(width, height-5)
	v.statusbar.SetWidth(width)
}

// List exposes the document list.
func (v *View) List() *list.DocumentList {
	return v.list
}

// ConfirmingDelete reports whether a delete confirmation is pending.
func (v *View) ConfirmingDelete() bool {
	return v.confirmDelete
}
