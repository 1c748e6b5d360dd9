// Package mpv is a provider that drives an mpv process over its JSON IPC interface.
package mpv

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/PizzaHomicide/mediabind/internal/discovery"
	"github.com/PizzaHomicide/mediabind/internal/events"
	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/mediactx"
	"github.com/PizzaHomicide/mediabind/internal/provider"
)

const (
	connectAttempts = 20
	connectDelay    = 250 * time.Millisecond
	quitGrace       = 2 * time.Second
)

// Capabilities is what every mpv provider supports.  All media events are bridged.
var Capabilities = provider.Capabilities{
	Configurable:  []string{"src", "autoplay", "loop", "muted", "volume", "controls"},
	BridgedEvents: events.Media,
}

// observed lists the properties mpv is asked to report.  The index plus one is the observe id.
var observed = []string{
	"pause",
	"volume",
	"mute",
	"time-pos",
	"duration",
	"demuxer-cache-state",
	"seekable",
	"fullscreen",
	"paused-for-cache",
	"loop-file",
	"video-format",
	"eof-reached",
}

// Config controls how mpv is launched.
type Config struct {
	// Path to the mpv binary.  Defaults to "mpv" on PATH.
	Path string
	// Args are extra command-line arguments.
	Args []string
	// SocketPath is the IPC socket or pipe.  Defaults to DefaultSocketPath().
	SocketPath string
}

// Provider is a provider.Provider backed by mpv.  Everything except Start and Connect must be called from the event
// loop, and HandleEvent must be fed every event read from Events.
type Provider struct {
	*provider.Base

	cfg      Config
	node     *discovery.Node
	ipc      *IPCClient
	cmd      *exec.Cmd
	exited   chan struct{}
	withdraw func()

	// Engine state as last reported by mpv.
	loading   string
	stopping  bool
	loaded    bool
	restarted bool
	seeking   bool
	seekTo    float64
	paused    bool
	cacheWait bool
	volume    float64
	muted     bool
	duration  float64
	hasVideo  bool

	// fullscreenReq is the request id of an in-flight fullscreen change, 0 when none.
	fullscreenReq int
	// fullscreenCheck is the request id of the get_property sent once mpv accepted a change, 0 when none.
	fullscreenCheck int
}

// New builds a provider and announces it on its own discovery node.  The node does nothing until it is appended
// under a controller.
func New(cfg Config) *Provider {
	if cfg.Path == "" {
		cfg.Path = "mpv"
	}
	if cfg.SocketPath == "" {
		cfg.SocketPath = DefaultSocketPath()
	}

	p := &Provider{
		cfg:    cfg,
		node:   discovery.NewNode("mpv"),
		ipc:    NewIPCClient(cfg.SocketPath),
		paused: true,
		volume: 1,
	}
	p.Base = provider.NewBase("mpv", Capabilities, p)
	p.withdraw = p.node.Announce(discovery.RoleProvider, p)
	return p
}

// Node returns the discovery node the provider announces itself on.
func (p *Provider) Node() *discovery.Node {
	return p.node
}

// Events returns the IPC event stream to be passed back into HandleEvent on the event loop.
func (p *Provider) Events() <-chan Event {
	return p.ipc.Events()
}

// Start launches mpv idle and connects to it.
func (p *Provider) Start(ctx context.Context) error {
	removeSocket(p.cfg.SocketPath)

	args := []string{
		"--idle=yes",
		"--keep-open=yes",
		"--no-terminal",
		"--input-ipc-server=" + p.cfg.SocketPath,
	}
	args = append(args, p.cfg.Args...)

	log.Info("Starting mpv", "path", p.cfg.Path, "args", args)
	cmd := exec.Command(p.cfg.Path, args...)
	setupProcess(cmd)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start mpv: %w", err)
	}
	p.cmd = cmd
	p.exited = make(chan struct{})
	go func() {
		defer close(p.exited)
		if err := cmd.Wait(); err != nil {
			log.Warn("mpv exited", "error", err)
			return
		}
		log.Info("mpv exited")
	}()

	if err := p.ipc.WaitForConnection(ctx, connectAttempts, connectDelay); err != nil {
		return err
	}
	return p.observe()
}

// Connect attaches to an mpv that is already running with its IPC server on the configured socket.
func (p *Provider) Connect(ctx context.Context) error {
	if err := p.ipc.Connect(ctx); err != nil {
		return err
	}
	return p.observe()
}

func (p *Provider) observe() error {
	for i, name := range observed {
		if err := p.ipc.ObserveProperty(i+1, name); err != nil {
			return fmt.Errorf("failed to observe %s: %w", name, err)
		}
	}
	return nil
}

// Close unbinds the provider, asks mpv to quit and kills it if it does not.
func (p *Provider) Close() error {
	p.node.Remove()
	p.withdraw()
	p.Destroy()

	if p.ipc.Connected() && p.cmd != nil {
		if _, err := p.ipc.Command("quit"); err != nil {
			log.Debug("Failed to ask mpv to quit", "error", err)
		}
	}
	err := p.ipc.Close()

	if p.cmd != nil && p.cmd.Process != nil {
		select {
		case <-p.exited:
		case <-time.After(quitGrace):
			log.Warn("mpv did not quit, killing it")
			if kerr := p.cmd.Process.Kill(); kerr != nil {
				log.Warn("Failed to kill mpv", "error", kerr)
			}
		}
		removeSocket(p.cfg.SocketPath)
	}
	return err
}

// CanFullscreen is true once mpv is connected and showing video.
func (p *Provider) CanFullscreen() bool {
	return p.ipc.Connected() && p.hasVideo
}

// RequestFullscreen asks mpv to make its window fullscreen.  The outcome arrives as a property change or a failed
// reply.
func (p *Provider) RequestFullscreen() error {
	return p.setFullscreen(true)
}

// ExitFullscreen asks mpv to leave fullscreen.
func (p *Provider) ExitFullscreen() error {
	return p.setFullscreen(false)
}

func (p *Provider) setFullscreen(on bool) error {
	id, err := p.ipc.SetProperty("fullscreen", on)
	if err != nil {
		return err
	}
	p.fullscreenReq = id
	p.fullscreenCheck = 0
	return nil
}

// ApplyPaused implements provider.Engine.
func (p *Provider) ApplyPaused(paused bool) error {
	_, err := p.ipc.SetProperty("pause", paused)
	return err
}

// ApplyMuted implements provider.Engine.
func (p *Provider) ApplyMuted(muted bool) error {
	_, err := p.ipc.SetProperty("mute", muted)
	return err
}

// ApplyVolume implements provider.Engine.  mpv's volume runs from 0 to 100.
func (p *Provider) ApplyVolume(volume float64) error {
	_, err := p.ipc.SetProperty("volume", volume*100)
	return err
}

// ApplyCurrentTime implements provider.Engine.
func (p *Provider) ApplyCurrentTime(t float64) error {
	p.seekTo = t
	_, err := p.ipc.Command("seek", t, "absolute")
	return err
}

// ApplyAttribute implements provider.Engine.  Boolean attributes are on when present, whatever their value.
func (p *Provider) ApplyAttribute(name, value string, present bool) error {
	var err error
	switch name {
	case "src":
		err = p.load(value, present)
	case "autoplay":
		// Read at the next load.
	case "loop":
		_, err = p.ipc.SetProperty("loop-file", lo.Ternary(present, "inf", "no"))
	case "muted":
		_, err = p.ipc.SetProperty("mute", present)
	case "volume":
		if !present {
			return nil
		}
		v, perr := strconv.ParseFloat(value, 64)
		if perr != nil || v < 0 || v > 1 {
			return fmt.Errorf("%w: volume %q", provider.ErrInvalidValue, value)
		}
		_, err = p.ipc.SetProperty("volume", v*100)
	case "controls":
		_, err = p.ipc.Command("script-message", "osc-visibility", lo.Ternary(present, "auto", "never"))
	default:
		return fmt.Errorf("%w: %s", provider.ErrUnsupportedAttribute, name)
	}
	return err
}

func (p *Provider) load(src string, present bool) error {
	if !present || src == "" {
		p.loading = ""
		p.stopping = true
		_, err := p.ipc.Command("stop")
		return err
	}

	p.loading = src
	p.stopping = false
	_, autoplay := p.Attribute("autoplay")
	if _, err := p.ipc.SetProperty("pause", !autoplay); err != nil {
		return err
	}
	log.Info("Loading source", "src", src, "autoplay", autoplay)
	_, err := p.ipc.Command("loadfile", src, "replace")
	return err
}

func (p *Provider) metadata() provider.Metadata {
	md := provider.Metadata{
		Duration:  p.duration,
		MediaType: mediactx.MediaTypeAudio,
		ViewType:  mediactx.ViewTypeAudio,
	}
	if p.hasVideo {
		md.MediaType = lo.Ternary(p.duration > 0, mediactx.MediaTypeVideo, mediactx.MediaTypeLiveVideo)
		md.ViewType = mediactx.ViewTypeVideo
	}
	return md
}
