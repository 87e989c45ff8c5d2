// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/acadrag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/acadrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/acadrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/acadrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/acadrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/ports/driving"
)

// ErrNoAnswerService indicates that no answer service was provided.
var ErrNoAnswerService = errors.New("answer service is required")

// Turn is one question and its answer.
type Turn struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// View shows the transcript above a question input.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	transcript viewport.Model
	statusbar  *status.Bar

	answers driving.AnswerService
	ctx     context.Context
	userID  string
	topK    int

	turns    []Turn
	thinking bool
	width    int
	height   int
}

// NewView creates a chat view asking as userID.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	answers driving.AnswerService,
	userID string,
	topK int,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		transcript: viewport.New(80, 16),
		statusbar:  status.NewBar(s, userID, km.ChatHelp()),
		answers:    answers,
		ctx:        context.Background(),
		userID:     userID,
		topK:       topK,
	}
	v.SetDimensions(80, 24)
	return v
}

// WithContext sets the context for questions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the input cursor.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AskCompleted:
		v.handleAskCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.thinking = false
		v.statusbar.SetError(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(msg.String(), v.keymap.SwitchView):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewDocuments} }

	case keymap.Matches(msg.String(), v.keymap.ScrollUp):
		v.transcript.HalfPageUp()
		return v, nil

	case keymap.Matches(msg.String(), v.keymap.ScrollDown):
		v.transcript.HalfPageDown()
		return v, nil

	case msg.Type == tea.KeyEnter:
		question := strings.TrimSpace(v.input.Value())
		if question == "" || v.thinking {
			return v, nil
		}
		v.input.Reset()
		v.thinking = true
		v.statusbar.SetState(status.StateThinking)
		return v, v.ask(question)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask calls the answer service off the update loop.
func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		if v.answers == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		ans, err := v.answers.Ask(v.ctx, domain.AskRequest{
			UserID: v.userID,
			Query:  question,
			TopK:   v.topK,
		})
		return messages.AskCompleted{Question: question, Answer: ans, Err: err}
	}
}

func (v *View) handleAskCompleted(msg messages.AskCompleted) {
	v.thinking = false
	v.turns = append(v.turns, Turn{Question: msg.Question, Answer: msg.Answer, Err: msg.Err})
	if msg.Err != nil {
		v.statusbar.SetError(msg.Err.Error())
	} else {
		v.statusbar.SetState(status.StateReady)
	}
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Ask a question about your uploaded notes.")
	}

	wrap := lipgloss.NewStyle().Width(v.width - 2)
	blocks := make([]string, 0, len(v.turns))
	for i := range v.turns {
		blocks = append(blocks, wrap.Render(v.renderTurn(&v.turns[i])))
	}
	return strings.Join(blocks, "\n\n")
}

func (v *View) renderTurn(t *Turn) string {
	var b strings.Builder
	b.WriteString(v.styles.Question.Render("Q: " + t.Question))
	b.WriteString("\n")

	switch {
	case t.Err != nil:
		b.WriteString(v.styles.Error.Render(t.Err.Error()))
		return b.String()
	case t.Answer == nil:
		return b.String()
	case t.Answer.Status == domain.AnswerGenerated:
		b.WriteString(v.styles.Answer.Render(t.Answer.Text))
	default:
		b.WriteString(v.styles.Fallback.Render(t.Answer.Text))
	}

	if len(t.Answer.Retrieved) > 0 {
		sources := make([]string, len(t.Answer.Retrieved))
		for i, c := range t.Answer.Retrieved {
			sources[i] = fmt.Sprintf("[%d] %s", i+1, c)
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Provenance.Render(strings.Join(sources, "\n")))
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("acadrag"),
		v.transcript.View(),
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions resizes the view.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)

	// title, input box (3 lines) and status bar
	h := height - 5
	if h < 3 {
		h = 3
	}
	v.transcript.Width = width
	v.transcript.Height = h
	v.transcript.SetContent(v.renderTranscript())
}

// Turns returns the transcript so far.
func (v *View) Turns() []Turn {
	return v.turns
}

// Thinking reports whether a question is in flight.
func (v *View) Thinking() bool {
	return v.thinking
}

// Input exposes the question input.
func (v *View) Input() *input.QuestionInput {
	return v.input
}
