package bridge

import (
	"errors"
	"maps"
	"slices"

	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/PizzaHomicide/mediabind/internal/mediactx"
	"github.com/PizzaHomicide/mediabind/internal/provider"
	"github.com/PizzaHomicide/mediabind/internal/requestqueue"
)

// ErrNoProvider is reported when a queued write runs with nothing bound.  It only happens if the queue is flushed
// by hand.
var ErrNoProvider = errors.New("no provider bound")

// attributeSlots are boolean attributes the controller mirrors into its context as soon as they are set, so
// consumers see the preference even before a provider applies it.
var attributeSlots = map[string]mediactx.Key[bool]{
	"autoplay":    mediactx.Autoplay,
	"controls":    mediactx.Controls,
	"loop":        mediactx.Loop,
	"playsinline": mediactx.Playsinline,
}

// Paused reads through the bound provider, or reports the initial value when nothing is bound.
func (c *Controller) Paused() bool {
	if c.provider == nil {
		return mediactx.Paused.Initial()
	}
	return c.provider.Paused()
}

// Muted reads through the bound provider.
func (c *Controller) Muted() bool {
	if c.provider == nil {
		return mediactx.Muted.Initial()
	}
	return c.provider.Muted()
}

// Volume reads through the bound provider.
func (c *Controller) Volume() float64 {
	if c.provider == nil {
		return mediactx.Volume.Initial()
	}
	return c.provider.Volume()
}

// CurrentTime reads through the bound provider.
func (c *Controller) CurrentTime() float64 {
	if c.provider == nil {
		return mediactx.CurrentTime.Initial()
	}
	return c.provider.CurrentTime()
}

// SetPaused queues a paused write.  It reaches the provider immediately when one is bound, otherwise when one binds.
func (c *Controller) SetPaused(paused bool) {
	c.enqueue("paused", func(p provider.Provider) error { return p.SetPaused(paused) })
}

// SetMuted queues a muted write.
func (c *Controller) SetMuted(muted bool) {
	c.enqueue("muted", func(p provider.Provider) error { return p.SetMuted(muted) })
}

// SetVolume queues a volume write.
func (c *Controller) SetVolume(volume float64) {
	c.enqueue("volume", func(p provider.Provider) error { return p.SetVolume(volume) })
}

// SetCurrentTime queues a seek.
func (c *Controller) SetCurrentTime(t float64) {
	c.enqueue("currentTime", func(p provider.Provider) error { return p.SetCurrentTime(t) })
}

// Play is SetPaused(false).
func (c *Controller) Play() { c.SetPaused(false) }

// Pause is SetPaused(true).
func (c *Controller) Pause() { c.SetPaused(true) }

// PreviewSeek marks the context as seeking and queues the seek, so scrubbing shows immediately while the provider
// catches up.
func (c *Controller) PreviewSeek(t float64) {
	mediactx.Set(c.graph, mediactx.Seeking, true)
	c.SetCurrentTime(t)
}

func (c *Controller) enqueue(key string, write func(p provider.Provider) error) {
	c.queue.Enqueue(key, requestqueue.Action(func() error {
		if c.provider == nil {
			return ErrNoProvider
		}
		return write(c.provider)
	}))
}

// SetAttribute sets a configuration attribute.  Attributes the bound provider accepts are forwarded to it now, the
// rest wait for a provider that accepts them.
func (c *Controller) SetAttribute(name, value string) {
	if old, ok := c.attrs[name]; ok && old == value {
		return
	}
	c.attrs[name] = value
	if key, ok := attributeSlots[name]; ok {
		mediactx.Set(c.graph, key, true)
	}
	c.notifyAttribute(name, value, true)
}

// RemoveAttribute clears a configuration attribute.
func (c *Controller) RemoveAttribute(name string) {
	if _, ok := c.attrs[name]; !ok {
		return
	}
	delete(c.attrs, name)
	if key, ok := attributeSlots[name]; ok {
		mediactx.Set(c.graph, key, false)
	}
	c.notifyAttribute(name, "", false)
}

// Attribute returns the value of an attribute, if set.
func (c *Controller) Attribute(name string) mo.Option[string] {
	v, ok := c.attrs[name]
	if !ok {
		return mo.None[string]()
	}
	return mo.Some(v)
}

// Attributes returns a copy of every attribute.
func (c *Controller) Attributes() map[string]string {
	return maps.Clone(c.attrs)
}

// AttributeNames returns the attribute names, sorted.
func (c *Controller) AttributeNames() []string {
	return slices.Sorted(maps.Keys(c.attrs))
}

func (c *Controller) notifyAttribute(name, value string, present bool) {
	for _, fn := range lo.Values(c.attrWatchers) {
		fn(name, value, present)
	}
}
