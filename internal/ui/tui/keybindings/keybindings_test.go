package keybindings

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNoDuplicateKeyBindings(t *testing.T) {
	// Check each context individually
	for contextName, bindings := range ContextBindings {
		t.Run(fmt.Sprintf("Context_%s", contextName), func(t *testing.T) {
			keyToAction := make(map[string]Action)

			for _, binding := range bindings {
				// Check primary key
				if existingAction, exists := keyToAction[binding.KeyMap.Primary]; exists {
					t.Errorf("Duplicate key binding '%s' in context '%s': "+
						"first assigned to action '%s', then to '%s'",
						binding.KeyMap.Primary, contextName, existingAction, binding.Action)
				} else {
					keyToAction[binding.KeyMap.Primary] = binding.Action
				}

				// Check secondary key if it exists
				if binding.KeyMap.Secondary != "" {
					if existingAction, exists := keyToAction[binding.KeyMap.Secondary]; exists {
						t.Errorf("Duplicate key binding '%s' in context '%s': "+
							"first assigned to action '%s', then to '%s'",
							binding.KeyMap.Secondary, contextName, existingAction, binding.Action)
					} else {
						keyToAction[binding.KeyMap.Secondary] = binding.Action
					}
				}
			}
		})
	}
}

// Player keys must not shadow the global ones, which the app checks first.
func TestPlayerKeysDoNotShadowGlobalKeys(t *testing.T) {
	global := make(map[string]bool)
	for _, b := range ContextBindings[ContextGlobal] {
		global[b.KeyMap.Primary] = true
		if b.KeyMap.Secondary != "" {
			global[b.KeyMap.Secondary] = true
		}
	}
	for _, b := range ContextBindings[ContextPlayer] {
		assert.False(t, global[b.KeyMap.Primary], "player key %q is a global key", b.KeyMap.Primary)
		assert.False(t, global[b.KeyMap.Secondary], "player key %q is a global key", b.KeyMap.Secondary)
	}
}

func TestGetActionByKey(t *testing.T) {
	tests := []struct {
		msg     tea.KeyMsg
		context ContextName
		want    Action
	}{
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, ContextPlayer, ActionTogglePlay},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}}, ContextPlayer, ActionTogglePlay},
		{tea.KeyMsg{Type: tea.KeyRight}, ContextPlayer, ActionSeekForward},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}}, ContextPlayer, ActionVolumeUp},
		{tea.KeyMsg{Type: tea.KeyUp}, ContextSourceSelection, ActionMoveUp},
		{tea.KeyMsg{Type: tea.KeyEnter}, ContextSearchMode, ActionSearchComplete},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, ContextGlobal, ActionQuit},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}}, ContextPlayer, ""},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}}, ContextName("missing"), ""},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s", tt.context, tt.msg.String()), func(t *testing.T) {
			assert.Equal(t, tt.want, GetActionByKey(tt.msg, tt.context))
		})
	}
}

func TestFormatKeyHelp(t *testing.T) {
	assert.Equal(t, "space/p: Play/pause", FormatKeyHelp(playerBindings[0]))
	assert.Equal(t, "m: Mute/unmute", FormatKeyHelp(Binding{Action: ActionToggleMute, KeyMap: KeyMap{Primary: "m", Help: "Mute/unmute"}}))
}
