package models

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PizzaHomicide/mediabind/internal/config"
	"github.com/PizzaHomicide/mediabind/internal/disposal"
	"github.com/PizzaHomicide/mediabind/internal/events"
	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/mediactx"
	"github.com/PizzaHomicide/mediabind/internal/ui/tui/components"
	kb "github.com/PizzaHomicide/mediabind/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/mediabind/internal/ui/tui/styles"
	"github.com/PizzaHomicide/mediabind/internal/ui/tui/util"
)

// PlayerModel is the main playback screen.  It reads everything it shows from the controller's context and turns
// key presses into request events.
type PlayerModel struct {
	width, height int
	player        *Player
	seekStep      float64
	volumeStep    float64

	lastEvent events.Type
	lastError string
	subs      *disposal.Bin
}

// NewPlayerModel creates the playback screen for player
func NewPlayerModel(cfg *config.Config, player *Player) *PlayerModel {
	m := &PlayerModel{
		player:     player,
		seekStep:   cfg.UI.SeekStep,
		volumeStep: cfg.UI.VolumeStep,
		subs:       disposal.NewBin("tui:player", log.Reporter("tui:player")),
	}

	c := player.Controller()
	for _, t := range events.Media {
		if t == events.TimeUpdate || t == events.Progress {
			// Too chatty to be worth showing
			continue
		}
		m.subs.Add(c.On(t, m.recordEvent))
	}
	m.subs.Add(mediactx.Watch(c.Context(), mediactx.MediaError, func(msg string) {
		if msg != "" {
			m.lastError = msg
		}
	}))
	m.subs.Add(mediactx.Watch(c.Context(), mediactx.FullscreenError, func(msg string) {
		if msg != "" {
			m.lastError = "fullscreen: " + msg
		}
	}))
	m.subs.Add(mediactx.Watch(c.Context(), mediactx.CurrentSrc, func(string) {
		m.lastError = ""
	}))
	return m
}

func (m *PlayerModel) ViewType() View {
	return ViewPlayer
}

func (m *PlayerModel) Init() tea.Cmd {
	return nil
}

func (m *PlayerModel) recordEvent(e *events.Event) {
	m.lastEvent = e.Type
}

// Update handles messages
func (m *PlayerModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		return m, m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *PlayerModel) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	snap := m.player.Snapshot()

	switch kb.GetActionByKey(msg, kb.ContextPlayer) {
	case kb.ActionTogglePlay:
		if mediactx.Get(snap, mediactx.Paused) {
			m.request(events.RequestPlay, nil)
			return Handled("player:play")
		}
		m.request(events.RequestPause, nil)
		return Handled("player:pause")
	case kb.ActionToggleMute:
		if mediactx.Get(snap, mediactx.Muted) {
			m.request(events.RequestUnmute, nil)
			return Handled("player:unmute")
		}
		m.request(events.RequestMute, nil)
		return Handled("player:mute")
	case kb.ActionSeekForward:
		m.request(events.RequestSeek, seekTarget(snap, m.seekStep))
		return Handled("player:seek_forward")
	case kb.ActionSeekBackward:
		m.request(events.RequestSeek, seekTarget(snap, -m.seekStep))
		return Handled("player:seek_backward")
	case kb.ActionRestart:
		m.request(events.RequestSeek, 0.0)
		return Handled("player:restart")
	case kb.ActionVolumeUp:
		m.request(events.RequestVolumeChange, stepVolume(mediactx.Get(snap, mediactx.Volume), m.volumeStep))
		return Handled("player:volume_up")
	case kb.ActionVolumeDown:
		m.request(events.RequestVolumeChange, stepVolume(mediactx.Get(snap, mediactx.Volume), -m.volumeStep))
		return Handled("player:volume_down")
	case kb.ActionToggleFullscreen:
		if mediactx.Get(snap, mediactx.Fullscreen) {
			m.request(events.RequestExitFullscreen, nil)
			return Handled("player:exit_fullscreen")
		}
		m.request(events.RequestEnterFullscreen, nil)
		return Handled("player:enter_fullscreen")
	case kb.ActionToggleLoop:
		looping := m.player.ToggleAttribute("loop")
		log.Debug("Loop toggled", "loop", looping)
		return Handled("player:loop")
	case kb.ActionStop:
		m.player.Load("")
		return Handled("player:stop")
	case kb.ActionOpenSourceSelector:
		return func() tea.Msg { return OpenSourceSelectMsg{} }
	}
	return nil
}

func (m *PlayerModel) request(t events.Type, detail any) {
	if !m.player.Request(events.New(t, detail)) {
		log.Warn("Request was not handled", "request", t)
	}
}

// seekTarget moves the current time by delta, staying within the media
func seekTarget(snap mediactx.Record, delta float64) float64 {
	target := math.Max(0, mediactx.Get(snap, mediactx.CurrentTime)+delta)
	if d := mediactx.Get(snap, mediactx.Duration); d > 0 && !mediactx.Get(snap, mediactx.IsLiveVideo) {
		target = math.Min(target, d)
	}
	return target
}

// stepVolume changes volume by delta, clamped to [0, 1] and rounded to hundredths so repeated steps land on round
// numbers
func stepVolume(volume, delta float64) float64 {
	v := math.Round((volume+delta)*100) / 100
	return math.Min(1, math.Max(0, v))
}

// Resize updates the dimensions
func (m *PlayerModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

// Close drops the model's context subscriptions
func (m *PlayerModel) Close() {
	m.subs.Empty()
}

// View renders the playback screen
func (m *PlayerModel) View() string {
	snap := m.player.Snapshot()
	inner := max(m.width-6, 20)

	header := styles.Header(m.width, "mediabind")

	var lines []string
	src := mediactx.Get(snap, mediactx.CurrentSrc)
	if src == "" {
		open := kb.DisplayKey(kb.GetActionKey(kb.ActionOpenSourceSelector, kb.ContextBindings[kb.ContextPlayer]))
		lines = append(lines, styles.Muted.Render(fmt.Sprintf("Nothing loaded.  Press %s to choose a source.", open)))
	} else {
		lines = append(lines, styles.Source.Render(util.TruncateString(src, inner)))
	}
	lines = append(lines, "", playbackState(snap)+"  "+styles.Muted.Render(m.timeline(snap)))
	lines = append(lines, progressBar(snap, inner))
	lines = append(lines, "", m.flags(snap))

	if m.lastEvent != "" {
		lines = append(lines, styles.Muted.Render("last event: "+string(m.lastEvent)))
	}
	if m.lastError != "" {
		lines = append(lines, styles.Error.Render(util.TruncateString(m.lastError, inner)))
	}
	if !m.player.Bound() {
		lines = append(lines, styles.Error.Render("engine not connected"))
	}

	footer := components.KeyBindingsBar(m.width, components.FromContext(kb.ContextPlayer,
		kb.ActionTogglePlay, kb.ActionSeekBackward, kb.ActionSeekForward, kb.ActionToggleMute,
		kb.ActionToggleFullscreen, kb.ActionOpenSourceSelector,
	))
	help := styles.CenteredText(m.width, styles.Muted.Render("ctrl+h: all keys"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"",
		styles.ContentBox(m.width-2, strings.Join(lines, "\n"), 1),
		"",
		footer,
		help,
	)
}

func playbackState(snap mediactx.Record) string {
	switch {
	case mediactx.Get(snap, mediactx.CurrentSrc) == "":
		return styles.Toggle("IDLE", false)
	case mediactx.Get(snap, mediactx.Ended):
		return styles.Toggle("■ ENDED", false)
	case mediactx.Get(snap, mediactx.Waiting), mediactx.Get(snap, mediactx.Seeking):
		return styles.Toggle("… BUFFERING", true)
	case mediactx.Get(snap, mediactx.Paused):
		return styles.Toggle("❚❚ PAUSED", false)
	case mediactx.Get(snap, mediactx.Playing):
		return styles.Toggle("▶ PLAYING", true)
	default:
		return styles.Toggle("LOADING", false)
	}
}

func (m *PlayerModel) timeline(snap mediactx.Record) string {
	current := util.FormatPlaybackTime(mediactx.Get(snap, mediactx.CurrentTime))
	if mediactx.Get(snap, mediactx.IsLiveVideo) {
		return current + " / LIVE"
	}
	duration := mediactx.Get(snap, mediactx.Duration)
	if duration <= 0 {
		return current
	}
	return fmt.Sprintf("%s / %s  (-%s)", current, util.FormatPlaybackTime(duration),
		util.FormatPlaybackTime(mediactx.Get(snap, mediactx.RemainingTime)))
}

// progressBar draws played, buffered and remaining cells across width
func progressBar(snap mediactx.Record, width int) string {
	played := int(mediactx.Get(snap, mediactx.Progress) * float64(width))
	buffered := int(mediactx.Get(snap, mediactx.BufferedPercent) / 100 * float64(width))
	played = min(max(played, 0), width)
	buffered = min(max(buffered, played), width)

	return styles.BarFilled.Render(strings.Repeat("━", played)) +
		styles.BarBuffered.Render(strings.Repeat("━", buffered-played)) +
		styles.BarEmpty.Render(strings.Repeat("─", width-buffered))
}

func (m *PlayerModel) flags(snap mediactx.Record) string {
	volume := fmt.Sprintf("vol %3.0f%%", mediactx.Get(snap, mediactx.Volume)*100)
	kind := "AUDIO"
	if mediactx.Get(snap, mediactx.IsVideo) {
		kind = "VIDEO"
	}
	return strings.Join([]string{
		styles.Info.Render(volume),
		styles.Toggle("MUTED", mediactx.Get(snap, mediactx.Muted)),
		styles.Toggle("LOOP", mediactx.Get(snap, mediactx.Loop)),
		styles.Toggle("FULLSCREEN", mediactx.Get(snap, mediactx.Fullscreen)),
		styles.Toggle(kind, mediactx.Get(snap, mediactx.Type) != mediactx.MediaTypeUnknown),
		styles.Muted.Render(fmt.Sprintf("buffered %3.0f%%", mediactx.Get(snap, mediactx.BufferedPercent))),
	}, " ")
}
