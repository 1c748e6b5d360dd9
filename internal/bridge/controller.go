// Package bridge binds a controller to whichever provider and container are currently connected beneath it.  The
// controller owns the media context, forwards attributes down to the provider, re-emits the provider's events,
// buffers writes made while nothing is bound, and turns request events raised by consumers into provider calls.
package bridge

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/PizzaHomicide/mediabind/internal/discovery"
	"github.com/PizzaHomicide/mediabind/internal/disposal"
	"github.com/PizzaHomicide/mediabind/internal/events"
	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/mediactx"
	"github.com/PizzaHomicide/mediabind/internal/provider"
	"github.com/PizzaHomicide/mediabind/internal/requestqueue"
)

// Container is the element a player is presented in.  It emits fullscreen-change (detail: bool) and
// fullscreen-error (detail: error) when the platform answers a fullscreen request.
type Container interface {
	provider.FullscreenTarget
	On(t events.Type, fn events.Listener) (off func())
}

// binding is one provider or container connection.  Its bin holds every cleanup registered while binding.
type binding struct {
	sig *discovery.Signal
	bin *disposal.Bin
}

// Controller is the per-player coordinator.  It is owned by a single event loop.
type Controller struct {
	name    string
	node    *discovery.Node
	hub     *events.Hub
	graph   *mediactx.Graph
	queue   *requestqueue.Queue
	metrics Recorder
	sticky  []mediactx.Slot
	report  func(error)

	attrs        map[string]string
	attrWatchers map[int]func(name, value string, present bool)
	nextWatcher  int

	provider         provider.Provider
	providerBinding  *binding
	container        Container
	containerBinding *binding

	fullscreen *FullscreenCoordinator
	listeners  disposal.Bin
	destroyed  bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithContext uses g instead of a fresh media graph.
func WithContext(g *mediactx.Graph) Option {
	return func(c *Controller) { c.graph = g }
}

// WithMetrics sends binding, request and queue counts to r.
func WithMetrics(r Recorder) Option {
	return func(c *Controller) {
		if r != nil {
			c.metrics = r
		}
	}
}

// WithStickySlots overrides which slots survive a provider detach.
func WithStickySlots(slots []mediactx.Slot) Option {
	return func(c *Controller) { c.sticky = slots }
}

// WithName labels the controller in logs.  Defaults to the node's name.
func WithName(name string) Option {
	return func(c *Controller) { c.name = name }
}

// NewController creates a controller that claims providers, containers and requests reaching node.
func NewController(node *discovery.Node, opts ...Option) *Controller {
	c := &Controller{
		name:         node.Name(),
		node:         node,
		metrics:      nopRecorder{},
		attrs:        make(map[string]string),
		attrWatchers: make(map[int]func(string, string, bool)),
	}
	for _, opt := range opts {
		opt(c)
	}

	source := "bridge:" + c.name
	c.report = log.Reporter(source)
	c.hub = events.NewHub(c.name)
	if c.graph == nil {
		c.graph = mediactx.NewMediaGraph(mediactx.WithName(c.name), mediactx.WithReporter(c.report))
	}
	c.queue = requestqueue.New(c.name, c.report)
	c.fullscreen = newFullscreenCoordinator(c)

	c.listeners.Add(discovery.Intercept(node, discovery.RoleProvider, c.attachProvider))
	c.listeners.Add(discovery.Intercept(node, discovery.RoleContainer, c.attachContainer))
	for _, t := range events.Requests {
		c.listeners.Add(node.Listen(string(t), c.handleRequest))
	}

	log.Debug("Controller created", "controller", c.name, "node", node.Path())
	return c
}

// Node returns the node the controller listens on.
func (c *Controller) Node() *discovery.Node {
	return c.node
}

// Context returns the controller's media context.
func (c *Controller) Context() *mediactx.Graph {
	return c.graph
}

// Snapshot returns an immutable copy of the media context.
func (c *Controller) Snapshot() mediactx.Record {
	return c.graph.Snapshot()
}

// On registers fn for events the controller emits: bridged provider events and its own fullscreen events.
func (c *Controller) On(t events.Type, fn events.Listener) (off func()) {
	return c.hub.On(t, fn)
}

// Provider returns the bound provider, or nil.
func (c *Controller) Provider() provider.Provider {
	return c.provider
}

// Container returns the bound container, or nil.
func (c *Controller) Container() Container {
	return c.container
}

// Fullscreen returns the controller's fullscreen coordinator.
func (c *Controller) Fullscreen() *FullscreenCoordinator {
	return c.fullscreen
}

// ResetMediaContext restores every transient slot to its initial value.  Sticky slots keep their values; the
// attribute-backed slots are re-applied and fullscreen capability is recomputed.
func (c *Controller) ResetMediaContext() {
	mediactx.SoftReset(c.graph, c.sticky...)
	for name, key := range attributeSlots {
		if _, ok := c.attrs[name]; ok {
			mediactx.Set(c.graph, key, true)
		}
	}
	c.fullscreen.refresh()
}

// Destroy unbinds everything, stops listening on the node and drops queued writes.  The controller cannot be
// reused.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.listeners.Empty()
	if c.providerBinding != nil {
		c.detachProvider(c.providerBinding)
	}
	if c.containerBinding != nil {
		c.detachContainer(c.containerBinding)
	}
	c.queue.Destroy()
	log.Debug("Controller destroyed", "controller", c.name)
}

func (c *Controller) attachProvider(sig *discovery.Signal) {
	p, ok := sig.Payload.(provider.Provider)
	if !ok {
		c.report(fmt.Errorf("provider signal from %s carries %T, not a provider", sig.Node.Path(), sig.Payload))
		return
	}
	if c.destroyed {
		return
	}

	if c.providerBinding != nil {
		c.detachProvider(c.providerBinding)
	}

	b := &binding{sig: sig, bin: disposal.NewBin(c.name+":provider", c.report)}
	c.providerBinding = b
	c.provider = p
	log.Info("Provider bound", "controller", c.name, "provider", sig.Node.Path())

	prefs := c.preferences()
	p.AttachContext(c.graph)
	b.bin.Add(p.DetachContext)

	caps := p.Capabilities()
	for _, name := range c.forwardable(caps) {
		if err := p.SetAttribute(name, c.attrs[name]); err != nil {
			c.report(fmt.Errorf("forward attribute %s: %w", name, err))
		}
	}
	b.bin.Add(c.watchAttributes(func(name, value string, present bool) {
		if !caps.Accepts(name) {
			return
		}
		var err error
		if present {
			err = p.SetAttribute(name, value)
		} else {
			err = p.RemoveAttribute(name)
		}
		if err != nil {
			c.report(fmt.Errorf("forward attribute %s: %w", name, err))
		}
	}))

	for _, t := range caps.BridgedEvents {
		b.bin.Add(p.On(t, c.bridge))
	}

	sig.OnDisconnect(func() {
		if c.providerBinding == b {
			c.detachProvider(b)
		}
	})

	c.adopt(p, prefs)
	n := c.queue.Flush()
	c.queue.SetServeImmediately(true)
	c.metrics.QueueFlushed(n)
	c.metrics.Bound(string(discovery.RoleProvider))
	c.metrics.ProviderBound(true)
	c.fullscreen.refresh()
}

// stickyPrefs are the engine-applied sticky slots a newly bound provider is asked to adopt.  A value still at its
// initial value is not a preference, so the provider's own state stands.
type stickyPrefs struct {
	volume mo.Option[float64]
	muted  mo.Option[bool]
}

func (c *Controller) preferences() stickyPrefs {
	sticky := c.sticky
	if len(sticky) == 0 {
		sticky = mediactx.StickySlots
	}
	isSticky := func(s mediactx.Slot) bool {
		return lo.ContainsBy(sticky, func(k mediactx.Slot) bool { return k.Name() == s.Name() })
	}

	var prefs stickyPrefs
	if v := mediactx.Get(c.graph, mediactx.Volume); isSticky(mediactx.Volume) && v != mediactx.Volume.Initial() {
		prefs.volume = mo.Some(v)
	}
	if m := mediactx.Get(c.graph, mediactx.Muted); isSticky(mediactx.Muted) && m != mediactx.Muted.Initial() {
		prefs.muted = mo.Some(m)
	}
	return prefs
}

// adopt hands the sticky preferences to p.  They go ahead of the queue, so writes made while nothing was bound
// still win.  The context follows once the engine reports the change.
func (c *Controller) adopt(p provider.Provider, prefs stickyPrefs) {
	if v, ok := prefs.volume.Get(); ok && p.Volume() != v {
		if err := p.SetVolume(v); err != nil {
			c.report(fmt.Errorf("adopt volume: %w", err))
		}
	}
	if m, ok := prefs.muted.Get(); ok && p.Muted() != m {
		if err := p.SetMuted(m); err != nil {
			c.report(fmt.Errorf("adopt muted: %w", err))
		}
	}
}

func (c *Controller) detachProvider(b *binding) {
	b.bin.Empty()
	c.providerBinding = nil
	c.provider = nil

	c.queue.SetServeImmediately(false)
	c.queue.Reset()
	mediactx.SoftReset(c.graph, c.sticky...)
	c.fullscreen.providerDetached()

	c.metrics.Unbound(string(discovery.RoleProvider))
	c.metrics.ProviderBound(false)
	log.Info("Provider unbound", "controller", c.name, "provider", b.sig.Node.Path())
}

func (c *Controller) attachContainer(sig *discovery.Signal) {
	ct, ok := sig.Payload.(Container)
	if !ok {
		c.report(fmt.Errorf("container signal from %s carries %T, not a container", sig.Node.Path(), sig.Payload))
		return
	}
	if c.destroyed {
		return
	}

	if c.containerBinding != nil {
		c.detachContainer(c.containerBinding)
	}

	b := &binding{sig: sig, bin: disposal.NewBin(c.name+":container", c.report)}
	c.containerBinding = b
	c.container = ct

	b.bin.Add(ct.On(events.FullscreenChange, func(e *events.Event) {
		entered, ok := e.Detail.(bool)
		if !ok {
			c.report(fmt.Errorf("container fullscreen-change detail %T is not a bool", e.Detail))
			return
		}
		c.fullscreen.HandleChange(entered)
	}))
	b.bin.Add(ct.On(events.FullscreenError, func(e *events.Event) {
		err, ok := e.Detail.(error)
		if !ok {
			err = fmt.Errorf("%v", e.Detail)
		}
		c.fullscreen.HandleError(err)
	}))

	sig.OnDisconnect(func() {
		if c.containerBinding == b {
			c.detachContainer(b)
		}
	})

	c.metrics.Bound(string(discovery.RoleContainer))
	c.fullscreen.refresh()
	log.Info("Container bound", "controller", c.name, "container", sig.Node.Path())
}

func (c *Controller) detachContainer(b *binding) {
	b.bin.Empty()
	c.containerBinding = nil
	c.container = nil
	c.fullscreen.containerDetached()
	c.metrics.Unbound(string(discovery.RoleContainer))
	log.Info("Container unbound", "controller", c.name, "container", b.sig.Node.Path())
}

// bridge re-emits a provider event on the controller, keeping the original reachable through Trigger.
func (c *Controller) bridge(e *events.Event) {
	c.metrics.Bridged(e.Type)
	c.hub.Emit(&events.Event{Type: e.Type, Detail: e.Detail, Trigger: e})
}

// forwardable returns the controller attributes the provider accepts, in a stable order.
func (c *Controller) forwardable(caps provider.Capabilities) []string {
	names := lo.Filter(lo.Keys(c.attrs), func(name string, _ int) bool {
		return caps.Accepts(name)
	})
	slices.Sort(names)
	return names
}

func (c *Controller) watchAttributes(fn func(name, value string, present bool)) (stop func()) {
	c.nextWatcher++
	id := c.nextWatcher
	c.attrWatchers[id] = fn
	return func() { delete(c.attrWatchers, id) }
}
