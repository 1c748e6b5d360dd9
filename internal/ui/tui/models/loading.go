package models

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PizzaHomicide/mediabind/internal/ui/tui/styles"
)

// slowAfter is when the loading box starts showing how long it has been waiting
const slowAfter = 2 * time.Second

// LoadingModel shows a spinner while the engine is started or connected to
type LoadingModel struct {
	width, height int
	title         string
	message       string
	contextInfo   string // e.g. the command line being run
	spinner       spinner.Model
	startTime     time.Time
}

// NewLoadingModel creates a new loading model with the required message
func NewLoadingModel(message string) *LoadingModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	return &LoadingModel{
		message:   message,
		spinner:   s,
		startTime: time.Now(),
	}
}

// WithTitle adds an optional title above the loading box
func (m *LoadingModel) WithTitle(title string) *LoadingModel {
	m.title = title
	return m
}

// WithContextInfo adds a line of detail under the message
func (m *LoadingModel) WithContextInfo(info string) *LoadingModel {
	m.contextInfo = info
	return m
}

func (m *LoadingModel) ViewType() View {
	return ViewLoading
}

func (m *LoadingModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *LoadingModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		return m, cmd
	}
	return m, nil
}

func (m *LoadingModel) View() string {
	width := min(max(m.width-20, 40), 80)

	rows := []string{m.spinner.View() + " " + styles.Info.Bold(true).Render(m.message)}
	if info := m.info(); info != "" {
		rows = append(rows, "", styles.Muted.Italic(true).Render(info))
	}
	rows = append(rows, "", styles.Muted.Render("Press ctrl+c to quit."))

	body := lipgloss.NewStyle().Width(width - 8).Align(lipgloss.Center).
		Render(lipgloss.JoinVertical(lipgloss.Center, rows...))
	box := styles.ContentBox(width, body, 1)
	if m.title != "" {
		box = lipgloss.JoinVertical(lipgloss.Center, styles.Header(width+2, m.title), box)
	}
	return styles.CenteredView(m.width, m.height, box)
}

func (m *LoadingModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

// GetElapsedTime returns the time elapsed since loading started
func (m *LoadingModel) GetElapsedTime() time.Duration {
	return time.Since(m.startTime)
}

// info is the context line, with the elapsed time once loading has taken a noticeable while
func (m *LoadingModel) info() string {
	elapsed := m.GetElapsedTime()
	if elapsed < slowAfter {
		return m.contextInfo
	}
	waited := fmt.Sprintf("Waiting for %s", elapsed.Truncate(time.Second))
	if m.contextInfo == "" {
		return waited
	}
	return m.contextInfo + "\n" + waited
}
