package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"

	kb "github.com/PizzaHomicide/mediabind/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/mediabind/internal/ui/tui/styles"
)

// HelpModel displays contextual help with scrolling
type HelpModel struct {
	width, height int
	context       View
	viewport      viewport.Model
}

// NewHelpModel creates a new help model for the given context
func NewHelpModel(context View) *HelpModel {
	return &HelpModel{
		context:  context,
		viewport: viewport.New(0, 0),
	}
}

func (m *HelpModel) ViewType() View {
	return ViewHelp
}

// SetContext switches the help to describe another view
func (m *HelpModel) SetContext(context View) {
	if m.context == context {
		return
	}
	m.context = context
	m.updateContent()
}

// Init initializes the model
func (m *HelpModel) Init() tea.Cmd {
	// Set initial content if dimensions are available
	if m.width > 0 && m.height > 0 {
		m.updateContent()
	}
	return nil
}

// Update handles messages
func (m *HelpModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch kb.GetActionByKey(msg, kb.ContextHelp) {
		case kb.ActionMoveUp, kb.ActionMoveDown, kb.ActionPageUp, kb.ActionPageDown:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case kb.ActionMoveTop:
			m.viewport.GotoTop()
			return m, Handled("help:top")
		case kb.ActionMoveBottom:
			m.viewport.GotoBottom()
			return m, Handled("help:bottom")
		}
	}
	return m, cmd
}

// Resize updates the dimensions
func (m *HelpModel) Resize(width, height int) {
	m.width = width
	m.height = height

	// Account for borders, header, footer and spacing
	m.viewport.Width = max(width-4, 1)
	m.viewport.Height = max(height-10, 1)

	m.updateContent()
}

// updateContent generates help content and updates the viewport
func (m *HelpModel) updateContent() {
	m.viewport.SetContent(m.generateHelpContent())
	// Reset to top when content changes
	m.viewport.GotoTop()
}

// View renders the help screen
func (m *HelpModel) View() string {
	header := styles.Header(m.width, "Help: "+m.getContextTitle())

	scrollText := "↑/↓: Scroll • PgUp/PgDn: Page scroll • Home/End: Goto top/bottom • ESC: Return"
	footer := styles.CenteredText(m.width, styles.Info.Render(scrollText))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"", // Spacing
		styles.ContentBox(m.width-2, m.viewport.View(), 1),
		"", // Spacing
		footer,
	)
}

// helpPage is what the help modal shows for one view
type helpPage struct {
	title       string
	description string
	sections    []helpSection
}

type helpSection struct {
	title   string
	context kb.ContextName
	// own sections repeat keys that the global context also binds
	own     bool
}

var helpPages = map[View]helpPage{
	ViewPlayer: {
		title: "Player",
		description: "The player screen shows what mpv is doing: the loaded source, playback state, position, " +
			"buffering and volume.\n\n" +
			"Keys raise requests to the player controller rather than talking to mpv directly, so they work the " +
			"same whether mpv was started by mediabind or was already running.  Fullscreen uses the terminal's " +
			"alternate screen.",
		sections: []helpSection{{"Player commands:", kb.ContextPlayer, false}},
	},
	ViewSourceSelect: {
		title: "Source Selection",
		description: "The source selector lists the sources from your config and the last source you played.\n\n" +
			"Search to narrow the list.  If nothing matches, pressing enter plays whatever you typed, so any " +
			"file path or URL mpv understands can be opened from here.",
		sections: []helpSection{
			{"Source Selection commands:", kb.ContextSourceSelection, false},
			{"When in search mode:", kb.ContextSearchMode, true},
		},
	},
}

func (m *HelpModel) page() helpPage {
	if p, ok := helpPages[m.context]; ok {
		return p
	}
	return helpPage{title: "General", description: "mediabind is a terminal front-end for mpv."}
}

func (m *HelpModel) getContextTitle() string {
	return m.page().title
}

// keyColumn is the left column of a help row, e.g. "space or p"
func keyColumn(b kb.Binding) string {
	if b.KeyMap.Secondary == "" {
		return kb.DisplayKey(b.KeyMap.Primary)
	}
	return kb.DisplayKey(b.KeyMap.Primary) + " or " + kb.DisplayKey(b.KeyMap.Secondary)
}

// formatSection lists bindings under a title with the key column padded so the colons line up.  Actions in skip are
// left out.
func formatSection(title string, bindings []kb.Binding, skip map[kb.Action]bool) string {
	shown := lo.Reject(bindings, func(b kb.Binding, _ int) bool { return skip[b.Action] })
	if len(shown) == 0 {
		return ""
	}
	width := lo.Max(lo.Map(shown, func(b kb.Binding, _ int) int { return runewidth.StringWidth(keyColumn(b)) }))

	bold := lipgloss.NewStyle().Bold(true)
	lines := []string{bold.Render(title), ""}
	for _, b := range shown {
		lines = append(lines, fmt.Sprintf("• %s : %s", bold.Render(runewidth.FillRight(keyColumn(b), width)), b.KeyMap.Help))
	}
	return strings.Join(lines, "\n") + "\n"
}

// generateHelpContent builds the complete help content
func (m *HelpModel) generateHelpContent() string {
	page := m.page()
	heading := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))

	global := kb.ContextBindings[kb.ContextGlobal]
	parts := []string{
		heading.Render(page.title),
		page.description,
		heading.Render("Keybindings"),
		formatSection("Global commands:", global, nil),
	}

	// Global actions are not repeated under the view's own sections
	skip := lo.SliceToMap(global, func(b kb.Binding) (kb.Action, bool) { return b.Action, true })
	for _, sec := range page.sections {
		if sec.own {
			parts = append(parts, formatSection(sec.title, kb.ContextBindings[sec.context], nil))
			continue
		}
		parts = append(parts, formatSection(sec.title, kb.ContextBindings[sec.context], skip))
	}
	return strings.Join(parts, "\n\n")
}
