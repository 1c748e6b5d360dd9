package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/safe"
)

func TestHubDeliversInRegistrationOrder(t *testing.T) {
	var h Hub
	var got []string
	h.On(Play, func(*Event) { got = append(got, "first") })
	h.On(Play, func(*Event) { got = append(got, "second") })
	h.On(Pause, func(*Event) { got = append(got, "other") })

	h.Emit(New(Play, nil))
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestHubOff(t *testing.T) {
	h := NewHub("test")
	calls := 0
	off := h.On(Ended, func(*Event) { calls++ })
	assert.Equal(t, 1, h.Count(Ended))

	off()
	off()
	h.Emit(New(Ended, nil))
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, h.Count(Ended))
}

func TestHubIsolatesPanickingListener(t *testing.T) {
	var reported []error
	log.SetErrorHook(func(_ string, err error) { reported = append(reported, err) })
	defer log.SetErrorHook(nil)

	h := NewHub("test")
	delivered := false
	h.On(Seeked, func(*Event) { panic("listener exploded") })
	h.On(Seeked, func(*Event) { delivered = true })

	assert.NotPanics(t, func() { h.Emit(New(Seeked, 3.0)) })
	assert.True(t, delivered)
	if assert.Len(t, reported, 1) {
		assert.True(t, errors.Is(reported[0], safe.ErrPanic))
	}
}

func TestListenerAddedDuringEmitWaitsForNextEvent(t *testing.T) {
	var h Hub
	late := 0
	h.On(Progress, func(*Event) {
		h.On(Progress, func(*Event) { late++ })
	})

	h.Emit(New(Progress, nil))
	assert.Equal(t, 0, late)
	h.Emit(New(Progress, nil))
	assert.Equal(t, 1, late)
}

func TestEventHelpers(t *testing.T) {
	orig := New(VolumeChange, 0.5)
	reemit := &Event{Type: VolumeChange, Detail: orig.Detail, Trigger: orig}
	assert.Same(t, orig, reemit.Origin())

	v, err := orig.Float()
	assert.NoError(t, err)
	assert.Equal(t, 0.5, v)

	_, err = New(RequestSeek, "ten").Float()
	assert.Error(t, err)

	assert.Equal(t, "volume-change(0.5)", orig.String())
	assert.Equal(t, "pause", New(Pause, nil).String())

	assert.True(t, RequestSeek.IsRequest())
	assert.False(t, Seeked.IsRequest())
}
