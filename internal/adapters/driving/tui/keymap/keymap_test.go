package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
	assert.Contains(t, km.Quit.Keys(), "ctrl+c")
	assert.Contains(t, km.Ask.Keys(), "enter")
	assert.Contains(t, km.SwitchView.Keys(), "tab")
	assert.Contains(t, km.Up.Keys(), "k")
	assert.Contains(t, km.Down.Keys(), "j")
	assert.Contains(t, km.Delete.Keys(), "x")
	assert.Contains(t, km.Confirm.Keys(), "y")
	assert.Contains(t, km.Cancel.Keys(), "esc")
	assert.Contains(t, km.Refresh.Keys(), "r")
}

func TestDefaultKeyMap_QuitDoesNotStealTyping(t *testing.T) {
	km := DefaultKeyMap()

	assert.NotContains(t, km.Quit.Keys(), "q")
}

func TestKeyMap_Help(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ChatHelp(), 4)
	assert.Len(t, km.DocumentsHelp(), 5)
	for _, b := range append(km.ChatHelp(), km.DocumentsHelp()...) {
		assert.NotEmpty(t, b.Help().Key)
		assert.NotEmpty(t, b.Help().Desc)
	}
}

func TestMatches(t *testing.T) {
	binding := key.NewBinding(key.WithKeys("x", "delete"))

	tests := []struct {
		key  string
		want bool
	}{
		{"x", true},
		{"delete", true},
		{"X", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.key, binding))
		})
	}
}
