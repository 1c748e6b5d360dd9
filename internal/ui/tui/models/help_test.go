package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	kb "github.com/PizzaHomicide/mediabind/internal/ui/tui/keybindings"
)

func TestFormatSectionAlignsKeys(t *testing.T) {
	bindings := []kb.Binding{
		{Action: kb.ActionToggleMute, KeyMap: kb.KeyMap{Primary: "m", Help: "Mute"}},
		{Action: kb.ActionTogglePlay, KeyMap: kb.KeyMap{Primary: " ", Secondary: "p", Help: "Play"}},
		{Action: kb.ActionQuit, KeyMap: kb.KeyMap{Primary: "ctrl+c", Help: "Quit"}},
	}

	out := formatSection("Keys:", bindings, map[kb.Action]bool{kb.ActionQuit: true})

	assert.NotContains(t, out, "Quit")
	var colons []int
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "•") {
			colons = append(colons, strings.Index(line, " : "))
		}
	}
	if assert.Len(t, colons, 2) {
		assert.Equal(t, colons[0], colons[1])
	}
	assert.Contains(t, out, "space or p")
}

func TestFormatSectionEmpty(t *testing.T) {
	assert.Empty(t, formatSection("Nothing:", nil, nil))
}

func TestSourceSelectHelpKeepsSearchEsc(t *testing.T) {
	m := NewHelpModel(ViewSourceSelect)
	content := m.generateHelpContent()

	assert.Contains(t, content, "When in search mode:")
	assert.Contains(t, content, "Exit search mode and remove the filter")
	// Global back is listed once under global commands
	assert.Equal(t, 1, strings.Count(content, "Go back/cancel current action"))
}
