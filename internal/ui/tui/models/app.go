package models

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PizzaHomicide/mediabind/internal/config"
	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/mediactx"
	"github.com/PizzaHomicide/mediabind/internal/provider/mpv"
	kb "github.com/PizzaHomicide/mediabind/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/mediabind/internal/ui/tui/styles"
)

// openTimeout bounds how long starting or connecting to the engine may take
const openTimeout = 30 * time.Second

// AppModel is the main application model that coordinates all child models.  It is the high level wrapper, and the
// only place the player tree is mutated from.
type AppModel struct {
	config        *config.Config
	player        *Player
	source        string // Loaded once the engine is bound
	activeView    View   // Track the current active 'main view'
	activeModal   Modal  // Track the current active 'modal overlay' if any
	width, height int
	openErr       error

	// Models used for various views
	loadingModel      *LoadingModel
	playerModel       *PlayerModel
	helpModel         *HelpModel
	sourceSelectModel *SourceSelectModel
}

// NewAppModel creates a new instance of the main application model.  source, when set, is played as soon as the
// engine is ready.
func NewAppModel(cfg *config.Config, player *Player, source string) AppModel {
	connecting := "Starting mpv"
	if cfg.Player.Type == config.PlayerTypeExternalMPV {
		connecting = "Connecting to mpv"
	}

	return AppModel{
		config:      cfg,
		player:      player,
		source:      source,
		activeView:  ViewConnecting,
		activeModal: ModalNone,
		loadingModel: NewLoadingModel(connecting).
			WithTitle("mediabind").
			WithContextInfo(describeEngine(cfg)),
		playerModel:       NewPlayerModel(cfg, player),
		helpModel:         NewHelpModel(ViewPlayer),
		sourceSelectModel: NewSourceSelectModel(cfg.Media.Sources, cfg.Media.LastSource),
	}
}

func describeEngine(cfg *config.Config) string {
	socket := cfg.Player.SocketPath
	if socket == "" {
		socket = mpv.DefaultSocketPath()
	}
	if cfg.Player.Type == config.PlayerTypeExternalMPV {
		return "Expecting mpv to be running with --input-ipc-server=" + socket
	}
	return cfg.Player.Path + " --input-ipc-server=" + socket
}

func (m AppModel) Init() tea.Cmd {
	log.Info("Initialising mediabind TUI")
	return tea.Batch(m.loadingModel.Init(), openEngine(m.player))
}

// openEngine starts or connects to the engine off the event loop
func openEngine(p *Player) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
		defer cancel()
		return EngineReadyMsg{Err: p.Open(ctx)}
	}
}

// waitForEngineEvent reads one IPC event.  Update re-issues it after handling each event, so events are delivered to
// the loop one at a time and in order.
func waitForEngineEvent(ch <-chan mpv.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return EngineClosedMsg{}
		}
		return EngineEventMsg{Event: ev}
	}
}

// Update handles messages and updates the models as appropriate
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.update(msg)
	// Fullscreen requests made while handling msg queue terminal commands on the chrome
	return model, tea.Batch(cmd, m.player.Chrome().Drain())
}

func (m AppModel) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch kb.GetActionByKey(msg, kb.ContextGlobal) {
		case kb.ActionQuit:
			log.Info("Quit command received.  Shutting down...")
			return m, tea.Quit
		case kb.ActionToggleHelp:
			log.Debug("Help requested", "active_view", m.activeView)
			// Disable/toggle modal if one already active
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
			} else {
				m.helpModel.SetContext(m.activeView)
				m.activeModal = ModalHelp
			}
			return m, nil
		case kb.ActionBack:
			// Search mode uses esc itself
			if m.activeModal == ModalSourceSelect && m.sourceSelectModel.Searching() {
				break
			}
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		log.Debug("Window size changed", "old_width", m.width, "new_width", msg.Width, "old_height", m.height, "new_height", msg.Height)
		m.width = msg.Width
		m.height = msg.Height

		// Propagate new window size to all views so they are aware and can render correctly
		m.loadingModel.Resize(msg.Width, msg.Height)
		m.playerModel.Resize(msg.Width, msg.Height)
		m.helpModel.Resize(msg.Width, msg.Height)
		m.sourceSelectModel.Resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.activeView != ViewConnecting {
			// Stops the spinner once connected
			return m, nil
		}
		_, cmd := m.loadingModel.Update(msg)
		return m, cmd

	case EngineReadyMsg:
		return m.handleEngineReady(msg)

	case EngineEventMsg:
		m.player.Engine().HandleEvent(msg.Event)
		return m, waitForEngineEvent(m.player.Engine().Events())

	case EngineClosedMsg:
		log.Warn("Engine connection closed")
		m.player.Unbind()
		m.activeView = ViewDisconnected
		return m, nil

	case RequestMsg:
		claimed := m.player.Request(msg.Request)
		if msg.Reply != nil {
			msg.Reply <- claimed
		}
		return m, nil

	case FullscreenAppliedMsg:
		m.player.Chrome().Confirm(msg.Entered)
		return m, nil

	case OpenSourceSelectMsg:
		m.sourceSelectModel.SetCurrent(mediactx.Get(m.player.Snapshot(), mediactx.CurrentSrc))
		m.activeModal = ModalSourceSelect
		return m, nil

	case SourceSelectedMsg:
		m.activeModal = ModalNone
		m.load(msg.Source)
		return m, nil

	case HandledMsg:
		log.Trace("Message handled", "reason", msg.Reason)
		return m, nil
	}

	// Prioritise delegating messages to a modal if one is active
	switch m.activeModal {
	case ModalHelp:
		model, cmd := m.helpModel.Update(msg)
		m.helpModel = model.(*HelpModel)
		return m, cmd
	case ModalSourceSelect:
		model, cmd := m.sourceSelectModel.Update(msg)
		m.sourceSelectModel = model.(*SourceSelectModel)
		return m, cmd
	}

	// Delegate message processing to the active view
	switch m.activeView {
	case ViewPlayer:
		model, cmd := m.playerModel.Update(msg)
		m.playerModel = model.(*PlayerModel)
		return m, cmd
	}

	return m, nil
}

func (m AppModel) handleEngineReady(msg EngineReadyMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		log.Error("Unable to open engine", "error", msg.Err)
		m.openErr = msg.Err
		m.activeView = ViewDisconnected
		return m, nil
	}

	if err := m.player.Bind(); err != nil {
		log.ReportError("tui", err)
		m.openErr = err
		m.activeView = ViewDisconnected
		return m, nil
	}
	log.Info("Engine bound", "type", m.config.Player.Type)
	m.activeView = ViewPlayer

	if m.source != "" {
		m.load(m.source)
		m.source = ""
	}
	return m, waitForEngineEvent(m.player.Engine().Events())
}

// load plays src and remembers it for the next run
func (m AppModel) load(src string) {
	m.player.Load(src)
	m.sourceSelectModel.Remember(src)

	if m.config.Media.LastSource == src {
		return
	}
	m.config.Media.LastSource = src
	if err := config.UpdateConfig(func(conf *config.Config) {
		conf.Media.LastSource = src
	}); err != nil {
		log.Warn("Error saving last source to config", "error", err)
	}
}

func (m AppModel) View() string {
	// If there is an active modal it takes precedence
	switch m.activeModal {
	case ModalHelp:
		return m.helpModel.View()
	case ModalSourceSelect:
		return m.sourceSelectModel.View()
	}

	// Else display the actual view
	switch m.activeView {
	case ViewConnecting:
		return m.loadingModel.View()
	case ViewPlayer:
		return m.playerModel.View()
	case ViewDisconnected:
		return m.disconnectedView()
	default:
		return "Unknown view\nPress ctrl+c to quit."
	}
}

func (m AppModel) disconnectedView() string {
	reason := "mpv has exited or closed its IPC socket."
	if m.openErr != nil {
		reason = m.openErr.Error()
	}
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		styles.Error.Render("Not connected to mpv"),
		"",
		styles.Info.Render(reason),
		"",
		styles.Muted.Render("Press ctrl+c to quit."),
	)
	return styles.CenteredView(m.width, m.height, styles.ContentBox(min(max(m.width-10, 20), 80), content, 1))
}

// Close releases the player screen's subscriptions
func (m AppModel) Close() {
	m.playerModel.Close()
}
