// Package provider defines what a playback engine must offer to be bound to a controller, and a Base that engines
// embed to get context writes, event emission and request buffering for free.
package provider

import (
	"errors"

	"github.com/samber/lo"

	"github.com/PizzaHomicide/mediabind/internal/events"
	"github.com/PizzaHomicide/mediabind/internal/mediactx"
)

var (
	// ErrFullscreenUnsupported is returned by providers that cannot present fullscreen themselves.
	ErrFullscreenUnsupported = errors.New("fullscreen is not supported by this provider")
	// ErrUnsupportedAttribute is returned when an attribute outside the provider's configurable set is written.
	ErrUnsupportedAttribute = errors.New("attribute is not configurable on this provider")
	// ErrInvalidValue is returned by setters given a value outside their range.
	ErrInvalidValue = errors.New("invalid value")
	// ErrDestroyed is returned by setters called after Destroy.
	ErrDestroyed = errors.New("provider destroyed")
)

// Capabilities is the static description of what a provider kind supports.  It never changes for the lifetime of a
// provider.
type Capabilities struct {
	// Configurable lists the attribute names the controller forwards to the provider.
	Configurable []string
	// BridgedEvents lists the event types the controller re-emits on the provider's behalf.
	BridgedEvents []events.Type
}

// Accepts reports whether the attribute is forwarded.
func (c Capabilities) Accepts(attr string) bool {
	return lo.Contains(c.Configurable, attr)
}

// Bridges reports whether the event type is re-emitted.
func (c Capabilities) Bridges(t events.Type) bool {
	return lo.Contains(c.BridgedEvents, t)
}

// FullscreenTarget is anything that can present media fullscreen.  Containers and providers both implement it.
type FullscreenTarget interface {
	CanFullscreen() bool
	RequestFullscreen() error
	ExitFullscreen() error
}

// Provider is a playback engine that a controller can bind to.
type Provider interface {
	FullscreenTarget

	Capabilities() Capabilities
	On(t events.Type, fn events.Listener) (off func())

	// AttachContext makes the provider write its state into g as well as its own context.
	AttachContext(g *mediactx.Graph)
	DetachContext()

	SetAttribute(name, value string) error
	RemoveAttribute(name string) error

	Paused() bool
	SetPaused(paused bool) error
	Muted() bool
	SetMuted(muted bool) error
	Volume() float64
	SetVolume(volume float64) error
	CurrentTime() float64
	SetCurrentTime(t float64) error
}
