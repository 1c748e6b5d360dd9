package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	kb "github.com/PizzaHomicide/mediabind/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/mediabind/internal/ui/tui/styles"
)

// KeyBinding represents a single key and its description for the keybinding bar
type KeyBinding struct {
	Key  string
	Desc string
}

// keyStyle is used to highlight keyboard shortcuts in UI
var keyStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#7D56F4")).
	Bold(true)

// FromContext builds bar entries for the given actions, using the primary key bound in that context
func FromContext(name kb.ContextName, actions ...kb.Action) []KeyBinding {
	bindings := kb.ContextBindings[name]
	var out []KeyBinding
	for _, action := range actions {
		for _, binding := range bindings {
			if binding.Action == action {
				out = append(out, KeyBinding{Key: kb.DisplayKey(binding.KeyMap.Primary), Desc: binding.KeyMap.Help})
				break
			}
		}
	}
	return out
}

// KeyBindingsBar creates a styled footer showing a set of keybindings
// width: The width of the screen to center the bar
// bindings: The list of keybindings to display
func KeyBindingsBar(width int, bindings []KeyBinding) string {
	var parts []string
	for _, b := range bindings {
		parts = append(parts, fmt.Sprintf("%s: %s",
			keyStyle.Render(b.Key),
			b.Desc))
	}

	keyBar := styles.Info.Render(strings.Join(parts, " • "))
	return styles.CenteredText(width, keyBar)
}
