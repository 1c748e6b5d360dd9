package models

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Model is implemented by every child model the app delegates to
type Model interface {
	ViewType() View
	Init() tea.Cmd
	Update(msg tea.Msg) (Model, tea.Cmd)
	View() string
	Resize(width, height int)
}

// HandledMsg tells the app a key was consumed by a child model.  The reason only shows up in trace logs.
type HandledMsg struct {
	Reason string
}

// Handled returns a command that marks a message as consumed, so the app stops looking for another handler
func Handled(reason string) tea.Cmd {
	return func() tea.Msg {
		return HandledMsg{Reason: reason}
	}
}
