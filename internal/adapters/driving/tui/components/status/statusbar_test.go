package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/acadrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/acadrag/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	km := keymap.DefaultKeyMap()
	bar := NewBar(styles.DefaultStyles(), "student", km.ChatHelp())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, "student", nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
}

func TestBar_ViewShowsUserAndHints(t *testing.T) {
	bar := NewBar(nil, "student", keymap.DefaultKeyMap().ChatHelp())
	bar.SetWidth(120)

	view := bar.View()
	assert.Contains(t, view, "user student")
	assert.Contains(t, view, "enter: ask")
}

func TestBar_States(t *testing.T) {
	bar := NewBar(nil, "student", nil)
	bar.SetWidth(120)

	bar.SetState(StateThinking)
	assert.Contains(t, bar.View(), "Thinking...")

	bar.SetError("model offline")
	assert.Equal(t, StateError, bar.State())
	assert.Contains(t, bar.View(), "Error: model offline")

	bar.SetState(StateReady)
	assert.Equal(t, "", bar.Message())
}

func TestBar_Message(t *testing.T) {
	bar := NewBar(nil, "student", nil)
	bar.SetWidth(120)

	bar.SetMessage("Deleted d1")
	assert.Contains(t, bar.View(), "Deleted d1")
}
