// Package events defines the request and media event types exchanged between consumers, controllers and providers,
// and a small synchronous hub to deliver them.
package events

import (
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/safe"
)

// Type names an event.
type Type string

// Requests raised by consumers and handled by the nearest controller.
const (
	RequestMute            Type = "mute-request"
	RequestUnmute          Type = "unmute-request"
	RequestPlay            Type = "play-request"
	RequestPause           Type = "pause-request"
	RequestSeek            Type = "seek-request"
	RequestSeeking         Type = "seeking-request"
	RequestVolumeChange    Type = "volume-change-request"
	RequestEnterFullscreen Type = "enter-fullscreen-request"
	RequestExitFullscreen  Type = "exit-fullscreen-request"
)

// Media events emitted by providers and re-emitted by the controller they are bound to.
const (
	Abort            Type = "abort"
	CanPlay          Type = "can-play"
	CanPlayThrough   Type = "can-play-through"
	DurationChange   Type = "duration-change"
	Emptied          Type = "emptied"
	Ended            Type = "ended"
	Error            Type = "error"
	FullscreenChange Type = "fullscreen-change"
	FullscreenError  Type = "fullscreen-error"
	LoadedData       Type = "loaded-data"
	LoadedMetadata   Type = "loaded-metadata"
	LoadStart        Type = "load-start"
	MediaTypeChange  Type = "media-type-change"
	Pause            Type = "pause"
	Play             Type = "play"
	Playing          Type = "playing"
	Progress         Type = "progress"
	Replay           Type = "replay"
	Seeked           Type = "seeked"
	Seeking          Type = "seeking"
	Stalled          Type = "stalled"
	Started          Type = "started"
	Suspend          Type = "suspend"
	TimeUpdate       Type = "time-update"
	ViewTypeChange   Type = "view-type-change"
	VolumeChange     Type = "volume-change"
	Waiting          Type = "waiting"
)

// Requests lists every request type.
var Requests = []Type{
	RequestMute, RequestUnmute, RequestPlay, RequestPause, RequestSeek, RequestSeeking, RequestVolumeChange,
	RequestEnterFullscreen, RequestExitFullscreen,
}

// Media lists every media event type a provider may bridge.
var Media = []Type{
	Abort, CanPlay, CanPlayThrough, DurationChange, Emptied, Ended, Error, FullscreenChange, FullscreenError,
	LoadedData, LoadedMetadata, LoadStart, MediaTypeChange, Pause, Play, Playing, Progress, Replay, Seeked, Seeking,
	Stalled, Started, Suspend, TimeUpdate, ViewTypeChange, VolumeChange, Waiting,
}

// IsRequest reports whether t is one of the request types.
func (t Type) IsRequest() bool {
	return lo.Contains(Requests, t)
}

// Event is a typed occurrence with an optional payload.  Trigger links a re-emitted event back to the event that
// caused it, so a listener on a controller can still reach the provider's original.
type Event struct {
	Type    Type
	Detail  any
	Trigger *Event
}

// New builds an event.
func New(t Type, detail any) *Event {
	return &Event{Type: t, Detail: detail}
}

// Origin follows the trigger chain to the first event.
func (e *Event) Origin() *Event {
	o := e
	for o.Trigger != nil {
		o = o.Trigger
	}
	return o
}

// Float reads the detail as a number.
func (e *Event) Float() (float64, error) {
	switch v := e.Detail.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("event %s: detail %v (%T) is not a number", e.Type, e.Detail, e.Detail)
	}
}

func (e *Event) String() string {
	if e.Detail == nil {
		return string(e.Type)
	}
	return fmt.Sprintf("%s(%v)", e.Type, e.Detail)
}

// Listener receives an event.
type Listener func(e *Event)

type listener struct {
	id int
	fn Listener
}

// Hub delivers events synchronously to listeners registered per type.  A listener that panics is reported and the
// remaining listeners still receive the event.  The zero value is ready to use.
type Hub struct {
	mu        sync.Mutex
	name      string
	listeners map[Type][]listener
	nextID    int
}

// NewHub returns a hub whose failures are reported under name.
func NewHub(name string) *Hub {
	return &Hub{name: name}
}

// On registers fn for events of type t and returns a function that removes it.
func (h *Hub) On(t Type, fn Listener) (off func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.listeners == nil {
		h.listeners = make(map[Type][]listener)
	}
	h.nextID++
	id := h.nextID
	h.listeners[t] = append(h.listeners[t], listener{id: id, fn: fn})

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		ls := h.listeners[t]
		for i, l := range ls {
			if l.id == id {
				h.listeners[t] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers e to every listener registered for its type at the time of the call.
func (h *Hub) Emit(e *Event) {
	h.mu.Lock()
	ls := append([]listener(nil), h.listeners[e.Type]...)
	h.mu.Unlock()

	for _, l := range ls {
		if err := safe.Call(func() { l.fn(e) }); err != nil {
			log.ReportError(h.source(), fmt.Errorf("listener for %s: %w", e.Type, err))
		}
	}
}

// Count returns the number of listeners registered for t.
func (h *Hub) Count(t Type) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners[t])
}

func (h *Hub) source() string {
	if h.name == "" {
		return "events"
	}
	return "events:" + h.name
}
