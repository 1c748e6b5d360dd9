package models

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/PizzaHomicide/mediabind/internal/discovery"
	"github.com/PizzaHomicide/mediabind/internal/events"
	"github.com/PizzaHomicide/mediabind/internal/log"
)

// Chrome is the terminal window the player is drawn in.  It announces itself to the controller as the player's
// container and presents fullscreen as the terminal's alternate screen.
//
// Requests are not applied straight away: they queue a command that the app hands back to bubbletea, and the change
// is confirmed with a FullscreenAppliedMsg once the terminal has switched.
type Chrome struct {
	*events.Hub

	node      *discovery.Node
	withdraw  func()
	altScreen bool
	cmds      []tea.Cmd
}

// NewChrome creates the container on its own detached node
func NewChrome() *Chrome {
	c := &Chrome{
		Hub:  events.NewHub("chrome"),
		node: discovery.NewNode("chrome"),
	}
	c.withdraw = c.node.Announce(discovery.RoleContainer, c)
	return c
}

// Node returns the node the container announces on.  Engine and control nodes are appended beneath it.
func (c *Chrome) Node() *discovery.Node {
	return c.node
}

// Fullscreen reports whether the alternate screen is in use
func (c *Chrome) Fullscreen() bool {
	return c.altScreen
}

func (c *Chrome) CanFullscreen() bool {
	return true
}

func (c *Chrome) RequestFullscreen() error {
	log.Debug("Entering alternate screen")
	c.cmds = append(c.cmds, tea.Sequence(tea.EnterAltScreen, applied(true)))
	return nil
}

func (c *Chrome) ExitFullscreen() error {
	log.Debug("Leaving alternate screen")
	c.cmds = append(c.cmds, tea.Sequence(tea.ExitAltScreen, applied(false)))
	return nil
}

// Confirm records that the terminal switched and tells the controller
func (c *Chrome) Confirm(entered bool) {
	c.altScreen = entered
	c.Emit(events.New(events.FullscreenChange, entered))
}

// Drain returns the commands queued by fullscreen requests since the last call
func (c *Chrome) Drain() tea.Cmd {
	if len(c.cmds) == 0 {
		return nil
	}
	cmds := c.cmds
	c.cmds = nil
	return tea.Batch(cmds...)
}

// Close withdraws the container from the controller
func (c *Chrome) Close() {
	c.withdraw()
	c.node.Remove()
}

func applied(entered bool) tea.Cmd {
	return func() tea.Msg {
		return FullscreenAppliedMsg{Entered: entered}
	}
}
