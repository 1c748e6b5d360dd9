package bridge

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PizzaHomicide/mediabind/internal/discovery"
	"github.com/PizzaHomicide/mediabind/internal/events"
	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/mediactx"
	"github.com/PizzaHomicide/mediabind/internal/provider"
)

type fakeEngine struct {
	calls []string
}

func (f *fakeEngine) record(call string) error {
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeEngine) ApplyPaused(p bool) error         { return f.record(fmt.Sprintf("paused=%v", p)) }
func (f *fakeEngine) ApplyMuted(m bool) error          { return f.record(fmt.Sprintf("muted=%v", m)) }
func (f *fakeEngine) ApplyVolume(v float64) error      { return f.record(fmt.Sprintf("volume=%v", v)) }
func (f *fakeEngine) ApplyCurrentTime(t float64) error { return f.record(fmt.Sprintf("time=%v", t)) }
func (f *fakeEngine) ApplyAttribute(name, value string, present bool) error {
	if !present {
		return f.record("-" + name)
	}
	return f.record(name + "=" + value)
}

var fakeCaps = provider.Capabilities{
	Configurable:  []string{"src", "loop", "muted"},
	BridgedEvents: []events.Type{events.Play, events.Pause, events.TimeUpdate, events.FullscreenChange},
}

type fakeProvider struct {
	*provider.Base
	engine   *fakeEngine
	node     *discovery.Node
	canFull  bool
	fullReqs int
	trace    *[]string
}

func (p *fakeProvider) note(what string) {
	if p.trace != nil {
		*p.trace = append(*p.trace, p.Name()+":"+what)
	}
}

func (p *fakeProvider) AttachContext(g *mediactx.Graph) {
	p.note("attach")
	p.Base.AttachContext(g)
}

func (p *fakeProvider) DetachContext() {
	p.Base.DetachContext()
	p.note("detach")
}

func newFakeProvider(name string, ready bool) *fakeProvider {
	e := &fakeEngine{}
	p := &fakeProvider{engine: e}
	p.Base = provider.NewBase(name, fakeCaps, e)
	if ready {
		p.ReportCanPlay()
	}
	p.node = discovery.NewNode(name)
	p.node.Announce(discovery.RoleProvider, p)
	return p
}

func (p *fakeProvider) CanFullscreen() bool { return p.canFull }

func (p *fakeProvider) RequestFullscreen() error {
	p.fullReqs++
	p.ReportFullscreen(true)
	return nil
}

func (p *fakeProvider) ExitFullscreen() error {
	p.ReportFullscreen(false)
	return nil
}

type fakeContainer struct {
	*events.Hub
	node     *discovery.Node
	can      bool
	fail     error
	requests int
	exits    int
}

func newFakeContainer(name string) *fakeContainer {
	c := &fakeContainer{Hub: events.NewHub(name), can: true}
	c.node = discovery.NewNode(name)
	c.node.Announce(discovery.RoleContainer, c)
	return c
}

func (c *fakeContainer) CanFullscreen() bool { return c.can }

func (c *fakeContainer) RequestFullscreen() error {
	c.requests++
	return c.fail
}

func (c *fakeContainer) ExitFullscreen() error {
	c.exits++
	return c.fail
}

type recordingMetrics struct {
	log []string
}

func (m *recordingMetrics) Bound(role string)     { m.log = append(m.log, "bound:"+role) }
func (m *recordingMetrics) Unbound(role string)   { m.log = append(m.log, "unbound:"+role) }
func (m *recordingMetrics) Request(t events.Type) { m.log = append(m.log, "request:"+string(t)) }
func (m *recordingMetrics) Bridged(events.Type)   {}
func (m *recordingMetrics) QueueFlushed(n int)    { m.log = append(m.log, fmt.Sprintf("flushed:%d", n)) }
func (m *recordingMetrics) ProviderBound(bool)    {}

func captureReports(t *testing.T) *[]error {
	var errs []error
	log.SetErrorHook(func(_ string, err error) { errs = append(errs, err) })
	t.Cleanup(func() { log.SetErrorHook(nil) })
	return &errs
}

func newPlayer(t *testing.T, opts ...Option) (*discovery.Node, *Controller) {
	t.Helper()
	root := discovery.NewRoot("root")
	node := discovery.NewNode("player")
	require.NoError(t, root.Append(node))
	return node, NewController(node, opts...)
}

func TestDefaultsWithoutProvider(t *testing.T) {
	_, c := newPlayer(t)

	assert.True(t, c.Paused())
	assert.Equal(t, 1.0, c.Volume())
	assert.False(t, c.Muted())
	assert.Equal(t, 0.0, c.CurrentTime())
	assert.Nil(t, c.Provider())

	snap := c.Snapshot()
	assert.True(t, mediactx.Get(snap, mediactx.Paused))
	assert.False(t, mediactx.Get(snap, mediactx.CanFullscreen))
}

func TestWritesBeforeBindingAreDeliveredOnce(t *testing.T) {
	m := &recordingMetrics{}
	node, c := newPlayer(t, WithMetrics(m))

	c.SetVolume(0.2)
	c.SetVolume(0.3)
	c.SetMuted(true)

	p := newFakeProvider("mpv", true)
	require.NoError(t, node.Append(p.node))

	assert.Equal(t, []string{"volume=0.3", "muted=true"}, p.engine.calls)
	assert.Contains(t, m.log, "flushed:2")
	assert.Same(t, p, c.Provider())

	// Bound now: writes go straight through.
	c.SetVolume(0.5)
	assert.Equal(t, "volume=0.5", p.engine.calls[len(p.engine.calls)-1])
}

func TestReadsGoThroughProvider(t *testing.T) {
	node, c := newPlayer(t)
	p := newFakeProvider("mpv", true)
	p.ReportVolume(0.25, true)
	p.ReportTimeUpdate(17)
	require.NoError(t, node.Append(p.node))

	assert.Equal(t, 0.25, c.Volume())
	assert.True(t, c.Muted())
	assert.Equal(t, 17.0, c.CurrentTime())
	assert.Equal(t, 17.0, mediactx.Get(c.Context(), mediactx.CurrentTime))
}

func TestProviderNotReadyHoldsWritesUntilCanPlay(t *testing.T) {
	node, c := newPlayer(t)
	p := newFakeProvider("mpv", false)
	require.NoError(t, node.Append(p.node))

	c.Play()
	assert.Empty(t, p.engine.calls)
	assert.Equal(t, 1, p.Pending())

	p.ReportCanPlay()
	assert.Equal(t, []string{"paused=false"}, p.engine.calls)
	assert.True(t, mediactx.Get(c.Context(), mediactx.CanPlay))
}

func TestSeekRequestsBeforeCanPlayReachEngineOnce(t *testing.T) {
	node, _ := newPlayer(t)
	p := newFakeProvider("mpv", false)
	require.NoError(t, node.Append(p.node))
	ui := discovery.NewNode("controls")
	require.NoError(t, node.Append(ui))

	for _, at := range []float64{10, 50, 100} {
		assert.True(t, SendRequest(ui, events.New(events.RequestSeek, at)))
	}
	assert.Empty(t, p.engine.calls)

	p.ReportCanPlay()
	assert.Equal(t, []string{"time=100"}, p.engine.calls)

	p.ReportCanPlay()
	assert.Equal(t, []string{"time=100"}, p.engine.calls)
}

func TestSeekRequestAfterCanPlay(t *testing.T) {
	node, _ := newPlayer(t)
	p := newFakeProvider("mpv", false)
	require.NoError(t, node.Append(p.node))
	p.ReportCanPlay()

	assert.True(t, SendRequest(p.node, events.New(events.RequestSeek, 100.0)))
	assert.Equal(t, []string{"time=100"}, p.engine.calls)
}

func TestRebindingDisconnectsOldProviderFirst(t *testing.T) {
	m := &recordingMetrics{}
	node, c := newPlayer(t, WithMetrics(m))

	a := newFakeProvider("a", true)
	require.NoError(t, node.Append(a.node))

	var bridged []string
	c.On(events.Play, func(e *events.Event) {
		bridged = append(bridged, e.Origin().Detail.(string))
	})

	a.node.Remove()
	b := newFakeProvider("b", true)
	require.NoError(t, node.Append(b.node))

	assert.Equal(t, []string{
		"flushed:0", "bound:provider",
		"unbound:provider",
		"flushed:0", "bound:provider",
	}, m.log)
	assert.False(t, a.Attached())
	assert.True(t, b.Attached())

	a.Emit(events.New(events.Play, "a"))
	b.Emit(events.New(events.Play, "b"))
	assert.Equal(t, []string{"b"}, bridged)
}

func TestSecondProviderReplacesFirst(t *testing.T) {
	m := &recordingMetrics{}
	node, c := newPlayer(t, WithMetrics(m))
	a := newFakeProvider("a", true)
	b := newFakeProvider("b", true)
	a.trace, b.trace = &m.log, &m.log

	require.NoError(t, node.Append(a.node))
	require.NoError(t, node.Append(b.node))
	assert.Same(t, b, c.Provider())
	assert.False(t, a.Attached())

	// a is fully unbound before b's attach starts
	assert.Equal(t, []string{
		"a:attach", "flushed:0", "bound:provider",
		"a:detach", "unbound:provider",
		"b:attach", "flushed:0", "bound:provider",
	}, m.log)

	var bridged []string
	c.On(events.Play, func(e *events.Event) {
		bridged = append(bridged, e.Origin().Detail.(string))
	})

	// a is still in the tree but displaced: nothing it reports reaches the controller
	a.ReportTimeUpdate(5)
	a.ReportVolume(0.2, true)
	a.Emit(events.New(events.Play, "a"))
	g := c.Context()
	assert.Equal(t, 0.0, mediactx.Get(g, mediactx.CurrentTime))
	assert.Equal(t, 1.0, mediactx.Get(g, mediactx.Volume))
	assert.False(t, mediactx.Get(g, mediactx.Muted))
	assert.Empty(t, bridged)

	b.ReportTimeUpdate(9)
	b.Emit(events.New(events.Play, "b"))
	assert.Equal(t, 9.0, mediactx.Get(g, mediactx.CurrentTime))
	assert.Equal(t, []string{"b"}, bridged)

	// The stale disconnect of a must not unbind b.
	a.node.Remove()
	assert.Same(t, b, c.Provider())
	assert.True(t, b.Attached())
}

func TestNextProviderAdoptsStickyVolume(t *testing.T) {
	node, c := newPlayer(t)
	a := newFakeProvider("a", true)
	require.NoError(t, node.Append(a.node))
	a.ReportVolume(0.4, true)
	a.node.Remove()

	b := newFakeProvider("b", true)
	require.NoError(t, node.Append(b.node))

	g := c.Context()
	assert.Equal(t, c.Volume(), mediactx.Get(g, mediactx.Volume))
	assert.Equal(t, c.Muted(), mediactx.Get(g, mediactx.Muted))
	assert.Equal(t, []string{"volume=0.4", "muted=true"}, b.engine.calls)

	// The engine confirms the change
	b.ReportVolume(0.4, true)
	assert.Equal(t, 0.4, mediactx.Get(g, mediactx.Volume))
	assert.True(t, mediactx.Get(g, mediactx.Muted))
	assert.Equal(t, 0.4, c.Volume())
	assert.True(t, c.Muted())
}

func TestQueuedWritesWinOverStickyVolume(t *testing.T) {
	node, c := newPlayer(t)
	a := newFakeProvider("a", true)
	require.NoError(t, node.Append(a.node))
	a.ReportVolume(0.4, false)
	a.node.Remove()

	c.SetVolume(0.7)
	b := newFakeProvider("b", true)
	require.NoError(t, node.Append(b.node))

	assert.Equal(t, []string{"volume=0.4", "volume=0.7"}, b.engine.calls)
}

func TestFirstProviderKeepsItsOwnVolume(t *testing.T) {
	node, c := newPlayer(t)
	p := newFakeProvider("mpv", true)
	p.ReportVolume(0.6, false)
	require.NoError(t, node.Append(p.node))

	assert.Empty(t, p.engine.calls)
	assert.Equal(t, 0.6, mediactx.Get(c.Context(), mediactx.Volume))
}

func TestBridgedEventKeepsTrigger(t *testing.T) {
	node, c := newPlayer(t)
	p := newFakeProvider("mpv", true)
	require.NoError(t, node.Append(p.node))

	var got *events.Event
	c.On(events.TimeUpdate, func(e *events.Event) { got = e })
	p.ReportTimeUpdate(3)

	require.NotNil(t, got)
	require.NotNil(t, got.Trigger)
	assert.Equal(t, events.TimeUpdate, got.Trigger.Type)
	assert.Equal(t, 3.0, got.Detail)

	// Not in the bridged set.
	ended := false
	c.On(events.Ended, func(*events.Event) { ended = true })
	p.ReportEnded()
	assert.False(t, ended)
}

func TestDetachSoftResetsContext(t *testing.T) {
	node, c := newPlayer(t)
	p := newFakeProvider("mpv", true)
	require.NoError(t, node.Append(p.node))

	p.ReportVolume(0.4, false)
	p.ReportMetadata(provider.Metadata{Duration: 60, MediaType: mediactx.MediaTypeVideo})
	p.ReportTimeUpdate(20)

	p.node.Remove()
	g := c.Context()
	assert.Equal(t, 0.4, mediactx.Get(g, mediactx.Volume))
	assert.Equal(t, 0.0, mediactx.Get(g, mediactx.Duration))
	assert.Equal(t, 0.0, mediactx.Get(g, mediactx.CurrentTime))
	assert.False(t, mediactx.Get(g, mediactx.IsVideo))
	assert.Nil(t, c.Provider())
	assert.True(t, c.Paused())

	// Writes buffer again after the detach.
	c.SetMuted(true)
	assert.NotContains(t, p.engine.calls, "muted=true")
}

func TestNestedControllersDoNotCrossBind(t *testing.T) {
	outerNode, outer := newPlayer(t)
	innerNode := discovery.NewNode("inner")
	inner := NewController(innerNode)
	require.NoError(t, outerNode.Append(innerNode))

	p := newFakeProvider("mpv", true)
	require.NoError(t, innerNode.Append(p.node))

	assert.Same(t, p, inner.Provider())
	assert.Nil(t, outer.Provider())

	ui := discovery.NewNode("ui")
	require.NoError(t, innerNode.Append(ui))
	assert.True(t, SendRequest(ui, events.New(events.RequestMute, nil)))
	assert.Equal(t, []string{"muted=true"}, p.engine.calls)
}

func TestReparentBetweenControllers(t *testing.T) {
	root := discovery.NewRoot("root")
	nodeA := discovery.NewNode("a")
	nodeB := discovery.NewNode("b")
	require.NoError(t, root.Append(nodeA))
	require.NoError(t, root.Append(nodeB))
	ca := NewController(nodeA)
	cb := NewController(nodeB)

	p := newFakeProvider("mpv", true)
	require.NoError(t, nodeA.Append(p.node))
	p.ReportTimeUpdate(9)
	assert.Equal(t, 9.0, mediactx.Get(ca.Context(), mediactx.CurrentTime))

	require.NoError(t, p.node.Move(nodeB))
	assert.Nil(t, ca.Provider())
	assert.Same(t, p, cb.Provider())
	assert.Equal(t, 0.0, mediactx.Get(ca.Context(), mediactx.CurrentTime))
	assert.Equal(t, 9.0, mediactx.Get(cb.Context(), mediactx.CurrentTime))

	p.ReportTimeUpdate(10)
	assert.Equal(t, 0.0, mediactx.Get(ca.Context(), mediactx.CurrentTime))
	assert.Equal(t, 10.0, mediactx.Get(cb.Context(), mediactx.CurrentTime))
}

func TestAttributesForwardedByCapability(t *testing.T) {
	node, c := newPlayer(t)
	c.SetAttribute("src", "a.mkv")
	c.SetAttribute("poster", "cover.png")
	c.SetAttribute("controls", "")

	assert.True(t, mediactx.Get(c.Context(), mediactx.Controls))
	assert.Equal(t, "cover.png", c.Attribute("poster").OrEmpty())
	assert.True(t, c.Attribute("nope").IsAbsent())

	p := newFakeProvider("mpv", true)
	require.NoError(t, node.Append(p.node))
	assert.Equal(t, []string{"src=a.mkv"}, p.engine.calls)

	c.SetAttribute("loop", "")
	c.RemoveAttribute("loop")
	c.SetAttribute("poster", "other.png")
	assert.Equal(t, []string{"src=a.mkv", "loop=", "-loop"}, p.engine.calls)
	assert.Equal(t, []string{"controls", "poster", "src"}, c.AttributeNames())

	p.node.Remove()
	c.SetAttribute("src", "b.mkv")
	assert.Len(t, p.engine.calls, 3)
}

func TestRequests(t *testing.T) {
	errs := captureReports(t)
	m := &recordingMetrics{}
	node, c := newPlayer(t, WithMetrics(m))
	p := newFakeProvider("mpv", true)
	require.NoError(t, node.Append(p.node))
	ui := discovery.NewNode("controls")
	require.NoError(t, node.Append(ui))

	outerSaw := false
	node.Parent().Listen(string(events.RequestPlay), func(*discovery.Event) { outerSaw = true })

	assert.True(t, SendRequest(ui, events.New(events.RequestPlay, nil)))
	assert.True(t, SendRequest(ui, events.New(events.RequestPause, nil)))
	assert.True(t, SendRequest(ui, events.New(events.RequestUnmute, nil)))
	assert.True(t, SendRequest(ui, events.New(events.RequestSeek, 42.0)))
	assert.True(t, SendRequest(ui, events.New(events.RequestVolumeChange, 1.7)))
	assert.True(t, SendRequest(ui, events.New(events.RequestSeek, "soon")))
	assert.False(t, SendRequest(ui, events.New(events.Play, nil)))

	assert.False(t, outerSaw)
	assert.Equal(t, []string{"paused=false", "paused=true", "muted=false", "time=42", "volume=1"}, p.engine.calls)
	assert.Len(t, *errs, 1)
	assert.Contains(t, m.log, "request:seek-request")

	assert.True(t, SendRequest(ui, events.New(events.RequestSeeking, 5)))
	assert.True(t, mediactx.Get(c.Context(), mediactx.Seeking))
	assert.Equal(t, "time=5", p.engine.calls[len(p.engine.calls)-1])
}

func TestNonFiniteRequestDetailsAreDropped(t *testing.T) {
	errs := captureReports(t)
	node, c := newPlayer(t)
	p := newFakeProvider("mpv", true)
	require.NoError(t, node.Append(p.node))

	assert.True(t, SendRequest(p.node, events.New(events.RequestSeek, math.NaN())))
	assert.True(t, SendRequest(p.node, events.New(events.RequestSeeking, math.Inf(1))))
	assert.True(t, SendRequest(p.node, events.New(events.RequestVolumeChange, math.NaN())))

	assert.Empty(t, p.engine.calls)
	assert.False(t, mediactx.Get(c.Context(), mediactx.Seeking))
	require.Len(t, *errs, 3)
	for _, err := range *errs {
		assert.ErrorIs(t, err, ErrInvalidDetail)
	}
}

func TestFullscreenWithoutTarget(t *testing.T) {
	errs := captureReports(t)
	node, c := newPlayer(t)
	p := newFakeProvider("mpv", true)
	require.NoError(t, node.Append(p.node))

	var failures []error
	c.On(events.FullscreenError, func(e *events.Event) { failures = append(failures, e.Detail.(error)) })

	assert.NotPanics(t, func() {
		assert.True(t, SendRequest(p.node, events.New(events.RequestEnterFullscreen, nil)))
	})
	g := c.Context()
	assert.False(t, mediactx.Get(g, mediactx.Fullscreen))
	assert.Equal(t, ErrNoFullscreenTarget.Error(), mediactx.Get(g, mediactx.FullscreenError))
	require.Len(t, failures, 1)
	assert.True(t, errors.Is(failures[0], ErrNoFullscreenTarget))
	assert.NotEmpty(t, *errs)
	assert.ErrorIs(t, c.Fullscreen().Request(), ErrNoFullscreenTarget)
}

func TestFullscreenPrefersContainer(t *testing.T) {
	node, c := newPlayer(t)
	ct := newFakeContainer("chrome")
	require.NoError(t, node.Append(ct.node))
	p := newFakeProvider("mpv", true)
	p.canFull = true
	require.NoError(t, ct.node.Append(p.node))
	assert.True(t, mediactx.Get(c.Context(), mediactx.CanFullscreen))

	require.NoError(t, c.Fullscreen().Request())
	assert.True(t, c.Fullscreen().Pending())
	require.NoError(t, c.Fullscreen().Request())
	assert.Equal(t, 1, ct.requests)
	assert.Equal(t, 0, p.fullReqs)

	var changes []bool
	c.On(events.FullscreenChange, func(e *events.Event) { changes = append(changes, e.Detail.(bool)) })
	ct.Emit(events.New(events.FullscreenChange, true))
	assert.False(t, c.Fullscreen().Pending())
	assert.True(t, mediactx.Get(c.Context(), mediactx.Fullscreen))
	assert.Equal(t, []bool{true}, changes)

	// Already in effect.
	require.NoError(t, c.Fullscreen().Request())
	assert.Equal(t, 1, ct.requests)

	// A failed exit is not an exit.
	require.NoError(t, c.Fullscreen().Exit())
	ct.Emit(events.New(events.FullscreenError, errors.New("denied")))
	assert.True(t, mediactx.Get(c.Context(), mediactx.Fullscreen))
	assert.Equal(t, "denied", mediactx.Get(c.Context(), mediactx.FullscreenError))

	// Fullscreen belongs to the container, so losing the provider keeps it.
	p.node.Remove()
	assert.True(t, mediactx.Get(c.Context(), mediactx.Fullscreen))

	ct.node.Remove()
	assert.False(t, mediactx.Get(c.Context(), mediactx.Fullscreen))
	assert.False(t, mediactx.Get(c.Context(), mediactx.CanFullscreen))
}

func TestFullscreenFallsBackToProvider(t *testing.T) {
	node, c := newPlayer(t)
	p := newFakeProvider("mpv", true)
	p.canFull = true
	require.NoError(t, node.Append(p.node))

	require.NoError(t, c.Fullscreen().Toggle())
	assert.Equal(t, 1, p.fullReqs)
	assert.True(t, c.Fullscreen().Active())
	assert.False(t, c.Fullscreen().Pending())

	require.NoError(t, c.Fullscreen().Toggle())
	assert.False(t, c.Fullscreen().Active())
}

func TestContainerFailureIsReported(t *testing.T) {
	captureReports(t)
	node, c := newPlayer(t)
	ct := newFakeContainer("chrome")
	ct.fail = errors.New("no alt screen")
	require.NoError(t, node.Append(ct.node))

	err := c.Fullscreen().Request()
	require.Error(t, err)
	assert.False(t, c.Fullscreen().Pending())
	assert.Contains(t, mediactx.Get(c.Context(), mediactx.FullscreenError), "no alt screen")
}

func TestDestroy(t *testing.T) {
	node, c := newPlayer(t)
	p := newFakeProvider("mpv", true)
	require.NoError(t, node.Append(p.node))

	c.Destroy()
	c.Destroy()
	assert.False(t, p.Attached())
	assert.Nil(t, c.Provider())

	ui := discovery.NewNode("ui")
	require.NoError(t, node.Append(ui))
	assert.False(t, SendRequest(ui, events.New(events.RequestPlay, nil)))

	q := newFakeProvider("late", true)
	require.NoError(t, node.Append(q.node))
	assert.Nil(t, c.Provider())
}

func TestResetMediaContextKeepsStickySlots(t *testing.T) {
	_, c := newPlayer(t)
	g := c.Context()
	c.SetAttribute("loop", "")
	mediactx.Set(g, mediactx.Volume, 0.1)
	mediactx.Set(g, mediactx.Muted, true)
	mediactx.Set(g, mediactx.CurrentTime, 12.0)
	mediactx.Set(g, mediactx.Paused, false)

	c.ResetMediaContext()
	assert.Equal(t, 0.1, mediactx.Get(g, mediactx.Volume))
	assert.True(t, mediactx.Get(g, mediactx.Muted))
	assert.True(t, mediactx.Get(g, mediactx.Loop))
	assert.Equal(t, 0.0, mediactx.Get(g, mediactx.CurrentTime))
	assert.True(t, mediactx.Get(g, mediactx.Paused))
}

func TestResetMediaContextWithCustomStickySlots(t *testing.T) {
	_, c := newPlayer(t, WithStickySlots([]mediactx.Slot{mediactx.Muted}))
	g := c.Context()
	mediactx.Set(g, mediactx.Volume, 0.1)
	mediactx.Set(g, mediactx.Muted, true)

	c.ResetMediaContext()
	assert.Equal(t, 1.0, mediactx.Get(g, mediactx.Volume))
	assert.True(t, mediactx.Get(g, mediactx.Muted))
}
