package models

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"

	"github.com/PizzaHomicide/mediabind/internal/log"
	kb "github.com/PizzaHomicide/mediabind/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/mediabind/internal/ui/tui/styles"
	"github.com/PizzaHomicide/mediabind/internal/ui/tui/util"
)

// SourceSelectModel is the modal that picks what to play.  It lists the configured sources and the last one played.
// Typing a filter that matches nothing and pressing enter plays the typed text as a path or URL.
type SourceSelectModel struct {
	width, height  int
	sources        []string
	filtered       []string
	current        string
	cursor         int
	searchInput    textinput.Model
	searchMode     bool
	viewportOffset int // For scrolling
}

// NewSourceSelectModel creates the selector.  Duplicate and empty sources are dropped.
func NewSourceSelectModel(sources []string, last string) *SourceSelectModel {
	input := textinput.New()
	input.Placeholder = "Filter, or type a path or URL..."
	input.Width = 50
	input.SetValue("")

	all := lo.Compact(lo.Uniq(append([]string{last}, sources...)))

	return &SourceSelectModel{
		searchInput: input,
		sources:     all,
		filtered:    all,
	}
}

func (m *SourceSelectModel) ViewType() View {
	return ViewSourceSelect
}

// SetCurrent marks the source that is playing now
func (m *SourceSelectModel) SetCurrent(src string) {
	m.current = src
}

// Remember puts src at the top of the list
func (m *SourceSelectModel) Remember(src string) {
	if src == "" {
		return
	}
	m.sources = append([]string{src}, lo.Without(m.sources, src)...)
	m.applyFilter()
}

// Searching reports whether the filter input has focus
func (m *SourceSelectModel) Searching() bool {
	return m.searchMode
}

// Sources returns every known source in display order
func (m *SourceSelectModel) Sources() []string {
	return m.sources
}

// GetSelectedSource returns the highlighted source, or "" when the filtered list is empty
func (m *SourceSelectModel) GetSelectedSource() string {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return ""
	}
	return m.filtered[m.cursor]
}

// Init initializes the model
func (m *SourceSelectModel) Init() tea.Cmd {
	return nil
}

// Update updates the model based on messages
func (m *SourceSelectModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// If in search mode, handle input differently
		if cmd := m.handleSearchModeKeyMsg(msg); cmd != nil {
			return m, cmd
		}

		if cmd := m.handleKeyMsg(msg); cmd != nil {
			return m, cmd
		}
	}

	return m, nil
}

func (m *SourceSelectModel) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch kb.GetActionByKey(msg, kb.ContextSourceSelection) {
	case kb.ActionSelectSource:
		return m.selectSource()
	case kb.ActionEnableSearch:
		m.searchMode = true
		m.searchInput.Focus()
		return Handled("search:enable")
	case kb.ActionMoveDown:
		if len(m.filtered) > 0 && m.cursor < len(m.filtered)-1 {
			m.cursor++
			m.ensureCursorVisible()
		}
		return Handled("cursor_move:down")
	case kb.ActionMoveUp:
		if m.cursor > 0 {
			m.cursor--
			m.ensureCursorVisible()
		}
		return Handled("cursor_move:up")
	case kb.ActionPageDown:
		m.cursor += m.pageSize()
		m.ensureCursorVisible()
		return Handled("cursor_move:pgdown")
	case kb.ActionPageUp:
		m.cursor -= m.pageSize()
		m.ensureCursorVisible()
		return Handled("cursor_move:pgup")
	case kb.ActionMoveTop:
		m.cursor = 0
		m.ensureCursorVisible()
		return Handled("cursor_move:top")
	case kb.ActionMoveBottom:
		m.cursor = len(m.filtered) - 1
		m.ensureCursorVisible()
		return Handled("cursor_move:bottom")
	}

	return nil
}

func (m *SourceSelectModel) handleSearchModeKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if !m.searchMode {
		return nil
	}
	switch kb.GetActionByKey(msg, kb.ContextSearchMode) {
	case kb.ActionBack:
		// Cancels search, clearing the filter
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.applyFilter()
		return Handled("search:exit")
	case kb.ActionSearchComplete:
		m.searchMode = false
		m.searchInput.Blur()
		m.applyFilter()
		if len(m.filtered) == 0 {
			// Nothing matched, so what was typed is the source
			return m.selectSource()
		}
		return Handled("search:apply")
	}

	// Let the text input model handle other keys
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Apply filters as we type
	m.applyFilter()

	if cmd == nil {
		cmd = Handled("search:input")
	}
	return cmd
}

func (m *SourceSelectModel) selectSource() tea.Cmd {
	src := m.GetSelectedSource()
	if src == "" {
		src = strings.TrimSpace(m.searchInput.Value())
	}
	if src == "" {
		log.Debug("No source to select")
		return Handled("source_select:empty")
	}
	return func() tea.Msg {
		return SourceSelectedMsg{Source: src}
	}
}

// applyFilter filters sources based on search input.  The base name is matched as well as the full path, so a
// short query finds a file wherever it lives.
func (m *SourceSelectModel) applyFilter() {
	query := m.searchInput.Value()
	if query == "" {
		m.filtered = m.sources
	} else {
		m.filtered = lo.Filter(m.sources, func(src string, _ int) bool {
			return fuzzy.MatchFold(query, filepath.Base(src)) || fuzzy.MatchFold(query, src)
		})
	}

	// Reset cursor if needed
	if len(m.filtered) == 0 {
		m.cursor = 0
	} else if m.cursor >= len(m.filtered) {
		m.cursor = len(m.filtered) - 1
	}
	m.ensureCursorVisible()
}

func (m *SourceSelectModel) pageSize() int {
	return max(m.height-11, 1)
}

// listHeight is how many rows the list can show
func (m *SourceSelectModel) listHeight() int {
	return max(m.height-10, 1)
}

// ensureCursorVisible adjusts the viewport offset to keep the cursor visible
func (m *SourceSelectModel) ensureCursorVisible() {
	if len(m.filtered) == 0 {
		m.cursor = 0
		m.viewportOffset = 0
		return
	}

	m.cursor = min(max(m.cursor, 0), len(m.filtered)-1)

	visibleCount := min(len(m.filtered), m.listHeight())
	if len(m.filtered) <= visibleCount {
		m.viewportOffset = 0
		return
	}

	if m.cursor < m.viewportOffset {
		m.viewportOffset = m.cursor
	}
	if m.cursor >= m.viewportOffset+visibleCount {
		m.viewportOffset = m.cursor - visibleCount + 1
	}
	m.viewportOffset = min(m.viewportOffset, len(m.filtered)-visibleCount)
}

// View renders the source selection modal
func (m *SourceSelectModel) View() string {
	header := styles.Header(m.width, "Choose a source")
	content := m.renderSourceList()

	if m.searchMode {
		// Show search input at the top of the content
		searchPrompt := styles.Title.Render("Search: ") + m.searchInput.View()
		content = lipgloss.JoinVertical(lipgloss.Left, searchPrompt, content)
	} else if q := m.searchInput.Value(); q != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, styles.Muted.Render("Filter: "+q), content)
	}

	keyBindings := " ↑/↓: Navigate • Enter: Play • /: Search • Esc: Cancel "
	footer := styles.FilterStatus.Render(keyBindings)

	return fmt.Sprintf("%s\n\n%s\n\n%s", header, content, footer)
}

// Resize updates the dimensions of the selector
func (m *SourceSelectModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.ensureCursorVisible()
}

// renderSourceList renders the list of sources
func (m *SourceSelectModel) renderSourceList() string {
	if len(m.filtered) == 0 {
		if q := strings.TrimSpace(m.searchInput.Value()); q != "" {
			return styles.CenteredText(m.width, "No sources match.  Press enter to play "+q)
		}
		return styles.CenteredText(m.width, "No sources configured.  Press / and type a path or URL")
	}

	visibleCount := min(len(m.filtered), m.listHeight())
	startIdx := m.viewportOffset
	endIdx := min(startIdx+visibleCount, len(m.filtered))

	rowWidth := max(m.width-4, 10)
	selectedStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#7D56F4")).
		Width(rowWidth).
		Padding(0, 1)

	normalStyle := lipgloss.NewStyle().
		Width(rowWidth).
		Padding(0, 1)

	var b strings.Builder
	for i := startIdx; i < endIdx; i++ {
		item := m.formatSourceListItem(m.filtered[i], rowWidth-2)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(item))
		} else {
			b.WriteString(normalStyle.Render(item))
		}
		b.WriteString("\n")
	}

	// Add pagination indicator if needed
	if len(m.filtered) > visibleCount {
		pagination := fmt.Sprintf("Showing %d-%d of %d", startIdx+1, endIdx, len(m.filtered))
		b.WriteString(styles.CenteredText(rowWidth, pagination))
	}

	return styles.ContentBox(m.width-2, b.String(), 1)
}

// formatSourceListItem shows the base name first and the full source after it
func (m *SourceSelectModel) formatSourceListItem(src string, width int) string {
	marker := "  "
	if src == m.current {
		marker = "▶ "
	}
	nameWidth := min(30, width/2)
	name := util.PadRight(util.TruncateString(filepath.Base(src), nameWidth), nameWidth)
	rest := util.TruncateString(src, max(width-nameWidth-3, 3))
	return marker + name + " " + rest
}
