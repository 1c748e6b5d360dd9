package bridge

import (
	"errors"
	"fmt"

	"github.com/PizzaHomicide/mediabind/internal/events"
	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/mediactx"
	"github.com/PizzaHomicide/mediabind/internal/provider"
)

// ErrNoFullscreenTarget is returned when fullscreen is requested and neither the container nor the provider can
// present it.
var ErrNoFullscreenTarget = errors.New("no fullscreen target available")

type targetKind string

const (
	targetNone      targetKind = ""
	targetContainer targetKind = "container"
	targetProvider  targetKind = "provider"
)

// FullscreenCoordinator decides who presents fullscreen for a controller: the container when it can, otherwise the
// provider.  It keeps the fullscreen, fullscreenError and canFullscreen slots up to date.
//
// Only one request is in flight at a time.  A request made while another is unconfirmed, or one asking for the state
// already in effect, returns without calling the platform again.
type FullscreenCoordinator struct {
	c *Controller

	pending     bool
	pendingKind targetKind
	owner       targetKind
}

func newFullscreenCoordinator(c *Controller) *FullscreenCoordinator {
	f := &FullscreenCoordinator{c: c}
	c.hub.On(events.FullscreenChange, f.observeChange)
	c.hub.On(events.FullscreenError, f.observeError)
	return f
}

// Request enters fullscreen.
func (f *FullscreenCoordinator) Request() error {
	return f.set(true)
}

// Exit leaves fullscreen.
func (f *FullscreenCoordinator) Exit() error {
	return f.set(false)
}

// Toggle enters or exits depending on the current state.
func (f *FullscreenCoordinator) Toggle() error {
	if f.Active() {
		return f.Exit()
	}
	return f.Request()
}

// Active reports whether the context says fullscreen is in effect.
func (f *FullscreenCoordinator) Active() bool {
	return mediactx.Get(f.c.graph, mediactx.Fullscreen)
}

// Pending reports whether a request is waiting for confirmation.
func (f *FullscreenCoordinator) Pending() bool {
	return f.pending
}

// HandleChange records a confirmed change from the container.
func (f *FullscreenCoordinator) HandleChange(entered bool) {
	if entered {
		f.owner = targetContainer
	}
	g := f.c.graph
	g.Batch(func(b *mediactx.Batch) {
		mediactx.Stage(b, mediactx.Fullscreen, entered)
		mediactx.Stage(b, mediactx.FullscreenError, "")
	})
	f.c.hub.Emit(events.New(events.FullscreenChange, entered))
}

// HandleError records a failed request.  The fullscreen slot keeps its value: a failure to enter is not an exit.
func (f *FullscreenCoordinator) HandleError(err error) {
	mediactx.Set(f.c.graph, mediactx.FullscreenError, err.Error())
	f.c.hub.Emit(events.New(events.FullscreenError, err))
}

func (f *FullscreenCoordinator) set(enter bool) error {
	if f.pending {
		log.Debug("Fullscreen request already in progress", "controller", f.c.name, "enter", enter)
		return nil
	}
	if f.Active() == enter {
		return nil
	}

	target, kind := f.target(enter)
	if target == nil {
		err := ErrNoFullscreenTarget
		f.c.report(err)
		f.HandleError(err)
		return err
	}

	f.pending = true
	f.pendingKind = kind

	var err error
	if enter {
		err = target.RequestFullscreen()
	} else {
		err = target.ExitFullscreen()
	}
	if err != nil {
		f.clearPending()
		err = fmt.Errorf("%s fullscreen: %w", kind, err)
		f.c.report(err)
		f.HandleError(err)
		return err
	}
	return nil
}

// target picks who handles a request.  An exit goes to whoever entered.
func (f *FullscreenCoordinator) target(enter bool) (provider.FullscreenTarget, targetKind) {
	if !enter {
		switch {
		case f.owner == targetContainer && f.c.container != nil:
			return f.c.container, targetContainer
		case f.owner == targetProvider && f.c.provider != nil:
			return f.c.provider, targetProvider
		}
	}
	if f.c.container != nil && f.c.container.CanFullscreen() {
		return f.c.container, targetContainer
	}
	if f.c.provider != nil && f.c.provider.CanFullscreen() {
		return f.c.provider, targetProvider
	}
	return nil, targetNone
}

// refresh recomputes canFullscreen after a binding change.
func (f *FullscreenCoordinator) refresh() {
	target, _ := f.target(true)
	mediactx.Set(f.c.graph, mediactx.CanFullscreen, target != nil)
}

func (f *FullscreenCoordinator) providerDetached() {
	if f.pendingKind == targetProvider {
		f.clearPending()
	}
	switch f.owner {
	case targetProvider:
		f.owner = targetNone
	case targetContainer:
		// The soft reset cleared the slot, but the container is still fullscreen.
		mediactx.Set(f.c.graph, mediactx.Fullscreen, true)
	}
	f.refresh()
}

func (f *FullscreenCoordinator) containerDetached() {
	if f.pendingKind == targetContainer {
		f.clearPending()
	}
	if f.owner == targetContainer {
		f.owner = targetNone
		mediactx.Set(f.c.graph, mediactx.Fullscreen, false)
	}
	f.refresh()
}

func (f *FullscreenCoordinator) observeChange(e *events.Event) {
	entered, _ := e.Detail.(bool)
	if e.Trigger != nil {
		// Bridged from the provider, which has already written the context.
		if entered {
			f.owner = targetProvider
		}
	}
	if !entered {
		f.owner = targetNone
	}
	f.clearPending()
}

func (f *FullscreenCoordinator) observeError(*events.Event) {
	f.clearPending()
}

func (f *FullscreenCoordinator) clearPending() {
	f.pending = false
	f.pendingKind = targetNone
}
