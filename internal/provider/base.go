package provider

import (
	"fmt"
	"math"

	"github.com/PizzaHomicide/mediabind/internal/events"
	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/mediactx"
	"github.com/PizzaHomicide/mediabind/internal/requestqueue"
)

// Engine applies writes to the underlying player.  It is implemented by concrete providers; Base decides when the
// calls are made.
type Engine interface {
	ApplyPaused(paused bool) error
	ApplyMuted(muted bool) error
	ApplyVolume(volume float64) error
	ApplyCurrentTime(t float64) error
	// ApplyAttribute is called for configurable attributes.  present is false when the attribute was removed.
	ApplyAttribute(name, value string, present bool) error
}

// Base implements the engine-independent half of a Provider.
//
// Live-state writes (paused, muted, volume, currentTime) are held in a queue until the engine reports that it can
// play, then delivered in order and served immediately from then on.  A source change puts the queue back into
// buffering mode and clears it, so writes meant for the old source never reach the new one.
//
// Engines report what the player is doing through the Report* methods, which update the provider's own context,
// the attached controller context if there is one, and emit the matching events.
type Base struct {
	*events.Hub

	name   string
	caps   Capabilities
	engine Engine
	graph  *mediactx.Graph
	ctx    *mediactx.Graph
	queue  *requestqueue.Queue
	attrs  map[string]string
	sticky []mediactx.Slot

	destroyed bool
}

// NewBase returns a Base for engine.  name labels logs and reported errors.
func NewBase(name string, caps Capabilities, engine Engine) *Base {
	source := "provider:" + name
	return &Base{
		Hub:    events.NewHub(name),
		name:   name,
		caps:   caps,
		engine: engine,
		graph:  mediactx.NewMediaGraph(mediactx.WithName(name)),
		queue:  requestqueue.New(name, log.Reporter(source)),
		attrs:  make(map[string]string),
	}
}

// Name returns the provider's name.
func (b *Base) Name() string {
	return b.name
}

// Capabilities returns the static capability descriptor.
func (b *Base) Capabilities() Capabilities {
	return b.caps
}

// SetStickySlots overrides which slots survive a source change.  Nil restores mediactx.StickySlots.
func (b *Base) SetStickySlots(slots []mediactx.Slot) {
	b.sticky = slots
}

// Context returns the provider's own context.  It always reflects the engine, whether or not a controller is
// attached.
func (b *Base) Context() *mediactx.Graph {
	return b.graph
}

// AttachContext starts mirroring state into g, seeding it with whatever the engine has already reported.
func (b *Base) AttachContext(g *mediactx.Graph) {
	b.ctx = g
	if g != nil {
		// Volume and mute describe this engine even at their initial values
		g.Load(b.graph.Snapshot(), mediactx.Volume, mediactx.Muted)
	}
}

// DetachContext stops mirroring state into the controller context.
func (b *Base) DetachContext() {
	b.ctx = nil
}

// Attached reports whether a controller context is attached.
func (b *Base) Attached() bool {
	return b.ctx != nil
}

// Attribute returns a configured attribute value.
func (b *Base) Attribute(name string) (string, bool) {
	v, ok := b.attrs[name]
	return v, ok
}

// SetAttribute configures the engine.  Changing "src" starts a new source.
func (b *Base) SetAttribute(name, value string) error {
	if !b.caps.Accepts(name) {
		return fmt.Errorf("%w: %s", ErrUnsupportedAttribute, name)
	}
	if old, ok := b.attrs[name]; ok && old == value {
		return nil
	}
	b.attrs[name] = value
	if name == "src" {
		b.SourceChanged(value)
	}
	return b.engine.ApplyAttribute(name, value, true)
}

// RemoveAttribute clears an attribute.
func (b *Base) RemoveAttribute(name string) error {
	if !b.caps.Accepts(name) {
		return fmt.Errorf("%w: %s", ErrUnsupportedAttribute, name)
	}
	if _, ok := b.attrs[name]; !ok {
		return nil
	}
	delete(b.attrs, name)
	if name == "src" {
		b.SourceChanged("")
	}
	return b.engine.ApplyAttribute(name, "", false)
}

// SourceChanged drops everything that belonged to the previous source: pending writes and non-sticky state.
func (b *Base) SourceChanged(src string) {
	log.Debug("Provider source changed", "provider", b.name, "src", src)
	b.queue.Reset()
	b.queue.SetServeImmediately(false)
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.CurrentSrc, src)
	}, func(g *mediactx.Graph) {
		mediactx.SoftReset(g, b.keep()...)
	})
}

// keep is the set of slots a source change leaves alone: the sticky preferences plus fullscreen state, which
// belongs to the presentation rather than the source.
func (b *Base) keep() []mediactx.Slot {
	sticky := b.sticky
	if len(sticky) == 0 {
		sticky = mediactx.StickySlots
	}
	out := append([]mediactx.Slot(nil), sticky...)
	return append(out, mediactx.CanFullscreen, mediactx.Fullscreen, mediactx.FullscreenError)
}

// Paused reads the engine's paused state.
func (b *Base) Paused() bool { return mediactx.Get(b.graph, mediactx.Paused) }

// Muted reads the engine's muted state.
func (b *Base) Muted() bool { return mediactx.Get(b.graph, mediactx.Muted) }

// Volume reads the engine's volume, 0 to 1.
func (b *Base) Volume() float64 { return mediactx.Get(b.graph, mediactx.Volume) }

// CurrentTime reads the playback position in seconds.
func (b *Base) CurrentTime() float64 { return mediactx.Get(b.graph, mediactx.CurrentTime) }

// SetPaused queues a play or pause.
func (b *Base) SetPaused(paused bool) error {
	return b.enqueue("paused", func() error { return b.engine.ApplyPaused(paused) })
}

// SetMuted queues a mute change.
func (b *Base) SetMuted(muted bool) error {
	return b.enqueue("muted", func() error { return b.engine.ApplyMuted(muted) })
}

// SetVolume queues a volume change.  volume must be within [0, 1].
func (b *Base) SetVolume(volume float64) error {
	if !finite(volume) || volume < 0 || volume > 1 {
		return fmt.Errorf("%w: volume %v", ErrInvalidValue, volume)
	}
	return b.enqueue("volume", func() error { return b.engine.ApplyVolume(volume) })
}

// SetCurrentTime queues a seek.
func (b *Base) SetCurrentTime(t float64) error {
	if !finite(t) || t < 0 {
		return fmt.Errorf("%w: time %v", ErrInvalidValue, t)
	}
	return b.enqueue("currentTime", func() error { return b.engine.ApplyCurrentTime(t) })
}

// CanFullscreen is false unless the engine overrides it.
func (b *Base) CanFullscreen() bool { return false }

// RequestFullscreen fails unless the engine overrides it.
func (b *Base) RequestFullscreen() error { return ErrFullscreenUnsupported }

// ExitFullscreen fails unless the engine overrides it.
func (b *Base) ExitFullscreen() error { return ErrFullscreenUnsupported }

// Ready reports whether writes are delivered straight to the engine.
func (b *Base) Ready() bool {
	return b.queue.Immediate()
}

// Pending returns the number of writes waiting for the engine to become ready.
func (b *Base) Pending() int {
	return b.queue.Len()
}

// Destroy drops pending writes and refuses new ones.
func (b *Base) Destroy() {
	b.destroyed = true
	b.queue.Destroy()
	b.ctx = nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (b *Base) enqueue(key string, action requestqueue.Action) error {
	if b.destroyed {
		return ErrDestroyed
	}
	b.queue.Enqueue(key, action)
	return nil
}

// update stages writes into the provider's context and the attached one.  Each extra step runs against both graphs
// before the batch is applied.
func (b *Base) update(stage func(*mediactx.Batch), extra ...func(*mediactx.Graph)) {
	for _, g := range b.graphs() {
		for _, fn := range extra {
			fn(g)
		}
		if stage != nil {
			g.Batch(stage)
		}
	}
}

func (b *Base) graphs() []*mediactx.Graph {
	if b.ctx == nil || b.ctx == b.graph {
		return []*mediactx.Graph{b.graph}
	}
	return []*mediactx.Graph{b.graph, b.ctx}
}

func (b *Base) emit(t events.Type, detail any) {
	b.Emit(events.New(t, detail))
}
