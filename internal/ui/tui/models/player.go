package models

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/PizzaHomicide/mediabind/internal/bridge"
	"github.com/PizzaHomicide/mediabind/internal/config"
	"github.com/PizzaHomicide/mediabind/internal/discovery"
	"github.com/PizzaHomicide/mediabind/internal/events"
	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/mediactx"
	"github.com/PizzaHomicide/mediabind/internal/provider"
	"github.com/PizzaHomicide/mediabind/internal/provider/mpv"
)

// Engine is the media engine the player binds beneath its chrome.  *mpv.Provider satisfies it.
type Engine interface {
	provider.Provider
	Node() *discovery.Node
	Events() <-chan mpv.Event
	HandleEvent(ev mpv.Event)
	Close() error
}

// Player is the tree of discovery nodes behind the UI:
//
//	mediabind
//	└── player      (controller)
//	    └── chrome  (container)
//	        ├── controls  (raises requests)
//	        └── mpv       (provider, appended once connected)
//
// All of its methods must be called from the bubbletea event loop.
type Player struct {
	root       *discovery.Node
	controller *bridge.Controller
	chrome     *Chrome
	controls   *discovery.Node
	engine     Engine
	open       func(ctx context.Context) error
	bound      bool
}

// NewPlayer builds the node tree for cfg with an mpv engine.  The engine is not started until Open is called.
func NewPlayer(cfg *config.Config, rec bridge.Recorder) (*Player, error) {
	sticky, err := cfg.Sticky()
	if err != nil {
		return nil, err
	}

	engine := mpv.New(mpv.Config{
		Path:       cfg.Player.Path,
		Args:       mpv.ParseArgs(cfg.Player.Args),
		SocketPath: cfg.Player.SocketPath,
	})
	open := engine.Start
	if cfg.Player.Type == config.PlayerTypeExternalMPV {
		open = engine.Connect
	}

	return newPlayer(engine, open, rec, sticky, cfg.Media.Attributes), nil
}

func newPlayer(engine Engine, open func(ctx context.Context) error, rec bridge.Recorder, sticky []mediactx.Slot, attrs map[string]string) *Player {
	root := discovery.NewRoot("mediabind")
	node := discovery.NewNode("player")

	opts := []bridge.Option{bridge.WithName("player")}
	if rec != nil {
		opts = append(opts, bridge.WithMetrics(rec))
	}
	if sticky != nil {
		opts = append(opts, bridge.WithStickySlots(sticky))
	}
	controller := bridge.NewController(node, opts...)

	p := &Player{
		root:       root,
		controller: controller,
		chrome:     NewChrome(),
		controls:   discovery.NewNode("controls"),
		engine:     engine,
		open:       open,
	}
	// Errors are impossible here, every node is fresh
	_ = root.Append(node)
	_ = node.Append(p.chrome.Node())
	_ = p.chrome.Node().Append(p.controls)

	for _, name := range lo.Keys(attrs) {
		controller.SetAttribute(name, attrs[name])
	}
	return p
}

// Controller returns the player's controller
func (p *Player) Controller() *bridge.Controller {
	return p.controller
}

// Chrome returns the player's container
func (p *Player) Chrome() *Chrome {
	return p.chrome
}

// Engine returns the media engine
func (p *Player) Engine() Engine {
	return p.engine
}

// Bound reports whether the engine is attached to the tree
func (p *Player) Bound() bool {
	return p.bound
}

// Snapshot returns the current media context.  Safe to call from any goroutine.
func (p *Player) Snapshot() mediactx.Record {
	return p.controller.Snapshot()
}

// Open starts or connects to the engine.  It blocks, so run it inside a tea.Cmd.
func (p *Player) Open(ctx context.Context) error {
	if err := p.open(ctx); err != nil {
		return fmt.Errorf("unable to open engine: %w", err)
	}
	return nil
}

// Bind appends the engine under the chrome, which connects it to the controller
func (p *Player) Bind() error {
	if p.bound {
		return nil
	}
	if err := p.chrome.Node().Append(p.engine.Node()); err != nil {
		return err
	}
	p.bound = true
	return nil
}

// Unbind detaches the engine.  The controller keeps its attributes and sticky slots for the next engine.
func (p *Player) Unbind() {
	if !p.bound {
		return
	}
	p.engine.Node().Remove()
	p.bound = false
}

// Request raises req from the controls node, as a UI widget would.  It reports whether a controller claimed it.
func (p *Player) Request(req *events.Event) bool {
	return bridge.SendRequest(p.controls, req)
}

// Load sets the source attribute.  An empty source stops playback.
func (p *Player) Load(src string) {
	if src == "" {
		p.controller.RemoveAttribute("src")
		return
	}
	log.Info("Loading source", "src", src)
	p.controller.SetAttribute("src", src)
}

// ToggleAttribute flips a boolean attribute such as loop
func (p *Player) ToggleAttribute(name string) bool {
	if p.controller.Attribute(name).IsPresent() {
		p.controller.RemoveAttribute(name)
		return false
	}
	p.controller.SetAttribute(name, "")
	return true
}

// Close tears the tree down and stops the engine
func (p *Player) Close() error {
	p.Unbind()
	p.chrome.Close()
	p.controller.Destroy()
	return p.engine.Close()
}
