package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/acadrag/internal/adapters/driving/tui/styles"
)

func TestNewQuestionInput(t *testing.T) {
	in := NewQuestionInput(styles.DefaultStyles())

	require.NotNil(t, in)
	assert.Equal(t, "", in.Value())
	assert.True(t, in.Focused())
}

func TestNewQuestionInput_NilStyles(t *testing.T) {
	in := NewQuestionInput(nil)

	require.NotNil(t, in)
	assert.NotNil(t, in.styles)
}

func TestQuestionInput_Init(t *testing.T) {
	assert.NotNil(t, NewQuestionInput(nil).Init())
}

func TestQuestionInput_Typing(t *testing.T) {
	in := NewQuestionInput(nil)

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("what is ATP")})

	assert.Equal(t, "what is ATP", in.Value())
}

func TestQuestionInput_SetValueAndReset(t *testing.T) {
	in := NewQuestionInput(nil)

	in.SetValue("hello")
	assert.Equal(t, "hello", in.Value())

	in.Reset()
	assert.Equal(t, "", in.Value())
}

func TestQuestionInput_FocusBlur(t *testing.T) {
	in := NewQuestionInput(nil)

	in.Blur()
	assert.False(t, in.Focused())

	in.Focus()
	assert.True(t, in.Focused())
}

func TestQuestionInput_SetWidth(t *testing.T) {
	in := NewQuestionInput(nil)

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())
	assert.Equal(t, 90, in.textinput.Width)

	in.SetWidth(5)
	assert.Equal(t, 20, in.textinput.Width)
}

func TestQuestionInput_View(t *testing.T) {
	in := NewQuestionInput(nil)

	assert.Contains(t, in.View(), "Q:")
}
