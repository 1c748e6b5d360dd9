package provider

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PizzaHomicide/mediabind/internal/events"
	"github.com/PizzaHomicide/mediabind/internal/mediactx"
)

type fakeEngine struct {
	calls []string
	fail  error
}

func (f *fakeEngine) record(call string) error {
	f.calls = append(f.calls, call)
	return f.fail
}

func (f *fakeEngine) ApplyPaused(p bool) error        { return f.record(fmt.Sprintf("paused=%v", p)) }
func (f *fakeEngine) ApplyMuted(m bool) error         { return f.record(fmt.Sprintf("muted=%v", m)) }
func (f *fakeEngine) ApplyVolume(v float64) error     { return f.record(fmt.Sprintf("volume=%v", v)) }
func (f *fakeEngine) ApplyCurrentTime(t float64) error { return f.record(fmt.Sprintf("time=%v", t)) }
func (f *fakeEngine) ApplyAttribute(name, value string, present bool) error {
	if !present {
		return f.record("-" + name)
	}
	return f.record(name + "=" + value)
}

var testCaps = Capabilities{
	Configurable:  []string{"src", "loop"},
	BridgedEvents: []events.Type{events.Play, events.Pause},
}

func newTestBase() (*Base, *fakeEngine) {
	e := &fakeEngine{}
	return NewBase("test", testCaps, e), e
}

func TestCapabilities(t *testing.T) {
	assert.True(t, testCaps.Accepts("src"))
	assert.False(t, testCaps.Accepts("controls"))
	assert.True(t, testCaps.Bridges(events.Play))
	assert.False(t, testCaps.Bridges(events.Ended))
}

func TestWritesWaitForCanPlay(t *testing.T) {
	b, e := newTestBase()

	require.NoError(t, b.SetVolume(0.2))
	require.NoError(t, b.SetVolume(0.6))
	require.NoError(t, b.SetPaused(false))
	assert.Empty(t, e.calls)
	assert.Equal(t, 2, b.Pending())
	assert.False(t, b.Ready())

	b.ReportCanPlay()
	assert.Equal(t, []string{"volume=0.6", "paused=false"}, e.calls)
	assert.True(t, b.Ready())

	require.NoError(t, b.SetMuted(true))
	assert.Equal(t, "muted=true", e.calls[len(e.calls)-1])
}

func TestSourceChangeDropsPendingWrites(t *testing.T) {
	b, e := newTestBase()
	b.ReportCanPlay()
	b.ReportTimeUpdate(30)
	b.ReportVolume(0.5, false)

	require.NoError(t, b.SetAttribute("src", "next.mkv"))
	assert.False(t, b.Ready())
	require.NoError(t, b.SetCurrentTime(12))
	require.NoError(t, b.SetAttribute("src", "other.mkv"))
	b.ReportCanPlay()

	assert.Equal(t, []string{"src=next.mkv", "src=other.mkv"}, e.calls)
	g := b.Context()
	assert.Equal(t, "other.mkv", mediactx.Get(g, mediactx.CurrentSrc))
	assert.Equal(t, 0.0, mediactx.Get(g, mediactx.CurrentTime))
	assert.Equal(t, 0.5, mediactx.Get(g, mediactx.Volume))
}

func TestAttributes(t *testing.T) {
	b, e := newTestBase()

	err := b.SetAttribute("controls", "")
	assert.True(t, errors.Is(err, ErrUnsupportedAttribute))

	require.NoError(t, b.SetAttribute("loop", ""))
	require.NoError(t, b.SetAttribute("loop", ""))
	v, ok := b.Attribute("loop")
	assert.True(t, ok)
	assert.Equal(t, "", v)

	require.NoError(t, b.RemoveAttribute("loop"))
	require.NoError(t, b.RemoveAttribute("loop"))
	assert.Equal(t, []string{"loop=", "-loop"}, e.calls)
}

func TestSetterValidation(t *testing.T) {
	b, _ := newTestBase()
	assert.ErrorIs(t, b.SetVolume(1.5), ErrInvalidValue)
	assert.ErrorIs(t, b.SetCurrentTime(-1), ErrInvalidValue)
	assert.ErrorIs(t, b.SetVolume(math.NaN()), ErrInvalidValue)
	assert.ErrorIs(t, b.SetCurrentTime(math.NaN()), ErrInvalidValue)
	assert.ErrorIs(t, b.SetCurrentTime(math.Inf(1)), ErrInvalidValue)
	assert.Zero(t, b.Pending())

	b.Destroy()
	assert.ErrorIs(t, b.SetPaused(false), ErrDestroyed)
}

func TestAttachSeedsEngineVolume(t *testing.T) {
	b, _ := newTestBase()

	ctrl := mediactx.NewMediaGraph()
	mediactx.Set(ctrl, mediactx.Volume, 0.4)
	mediactx.Set(ctrl, mediactx.Muted, true)
	b.AttachContext(ctrl)

	assert.Equal(t, b.Volume(), mediactx.Get(ctrl, mediactx.Volume))
	assert.Equal(t, b.Muted(), mediactx.Get(ctrl, mediactx.Muted))
}

func TestAttachedContextMirrorsReports(t *testing.T) {
	b, _ := newTestBase()
	b.ReportMetadata(Metadata{Duration: 90, MediaType: mediactx.MediaTypeVideo, ViewType: mediactx.ViewTypeVideo})

	ctrl := mediactx.NewMediaGraph()
	b.AttachContext(ctrl)
	assert.Equal(t, 90.0, mediactx.Get(ctrl, mediactx.Duration))
	assert.True(t, mediactx.Get(ctrl, mediactx.IsVideo))

	b.ReportTimeUpdate(45)
	assert.Equal(t, 0.5, mediactx.Get(ctrl, mediactx.Progress))

	b.DetachContext()
	b.ReportTimeUpdate(60)
	assert.Equal(t, 45.0, mediactx.Get(ctrl, mediactx.CurrentTime))
	assert.Equal(t, 60.0, b.CurrentTime())
}

func TestStartedAndReplay(t *testing.T) {
	b, _ := newTestBase()
	var seen []events.Type
	for _, typ := range []events.Type{events.Play, events.Started, events.Replay, events.Ended} {
		b.On(typ, func(e *events.Event) { seen = append(seen, e.Type) })
	}

	b.ReportPlay()
	b.ReportPause()
	b.ReportPlay()
	b.ReportEnded()
	b.ReportPlay()

	assert.Equal(t, []events.Type{
		events.Play, events.Started,
		events.Play,
		events.Ended,
		events.Play, events.Replay,
	}, seen)
	assert.True(t, mediactx.Get(b.Context(), mediactx.Started))
	assert.False(t, mediactx.Get(b.Context(), mediactx.Ended))
}

func TestVolumeEventCarriesDetail(t *testing.T) {
	b, _ := newTestBase()
	var got []VolumeDetail
	b.On(events.VolumeChange, func(e *events.Event) { got = append(got, e.Detail.(VolumeDetail)) })

	b.ReportVolume(0.3, true)
	b.ReportVolume(0.3, true)
	assert.Equal(t, []VolumeDetail{{Volume: 0.3, Muted: true}}, got)
	assert.True(t, b.Muted())
}

func TestEmptiedKeepsStickyState(t *testing.T) {
	b, _ := newTestBase()
	b.ReportVolume(0.4, false)
	b.ReportLoop(true)
	b.ReportDuration(100)
	b.ReportFullscreen(true)

	b.ReportEmptied()
	g := b.Context()
	assert.Equal(t, 0.4, mediactx.Get(g, mediactx.Volume))
	assert.True(t, mediactx.Get(g, mediactx.Loop))
	assert.True(t, mediactx.Get(g, mediactx.Fullscreen))
	assert.Equal(t, 0.0, mediactx.Get(g, mediactx.Duration))
}

func TestDefaultFullscreenIsUnsupported(t *testing.T) {
	b, _ := newTestBase()
	assert.False(t, b.CanFullscreen())
	assert.ErrorIs(t, b.RequestFullscreen(), ErrFullscreenUnsupported)
	assert.ErrorIs(t, b.ExitFullscreen(), ErrFullscreenUnsupported)
}

// Base on its own satisfies the provider contract.
var _ Provider = (*Base)(nil)
