package mediactx

import (
	"fmt"
	"math"
)

// MediaType describes what kind of media is loaded.
type MediaType string

const (
	MediaTypeUnknown   MediaType = "unknown"
	MediaTypeAudio     MediaType = "audio"
	MediaTypeVideo     MediaType = "video"
	MediaTypeLiveVideo MediaType = "live-video"
)

// ViewType describes how the media is presented, which can differ from what it is (audio shown with a poster).
type ViewType string

const (
	ViewTypeUnknown ViewType = "unknown"
	ViewTypeAudio   ViewType = "audio"
	ViewTypeVideo   ViewType = "video"
)

// MediaSchema declares the media context shared between a controller, its bound provider and every consumer.
var MediaSchema = NewSchema()

// Source slots.  Written by the bound provider, or by the controller for the few it owns.  FullscreenError holds the
// last failed fullscreen request, so "failed to enter" is never read as "exited".
var (
	Autoplay        = Source(MediaSchema, "autoplay", false)
	AutoplayError   = Source(MediaSchema, "autoplayError", "")
	Buffered        = Source(MediaSchema, "buffered", TimeRanges(nil))
	CanFullscreen   = Source(MediaSchema, "canFullscreen", false)
	CanPlay         = Source(MediaSchema, "canPlay", false)
	CanPlayThrough  = Source(MediaSchema, "canPlayThrough", false)
	Controls        = Source(MediaSchema, "controls", false)
	CurrentPoster   = Source(MediaSchema, "currentPoster", "")
	CurrentSrc      = Source(MediaSchema, "currentSrc", "")
	CurrentTime     = Source(MediaSchema, "currentTime", 0.0)
	Duration        = Source(MediaSchema, "duration", 0.0)
	Ended           = Source(MediaSchema, "ended", false)
	MediaError      = Source(MediaSchema, "error", "")
	Fullscreen      = Source(MediaSchema, "fullscreen", false)
	FullscreenError = Source(MediaSchema, "fullscreenError", "")
	Loop            = Source(MediaSchema, "loop", false)
	Type            = Source(MediaSchema, "mediaType", MediaTypeUnknown)
	Muted           = Source(MediaSchema, "muted", false)
	Paused          = Source(MediaSchema, "paused", true)
	Played          = Source(MediaSchema, "played", TimeRanges(nil))
	Playing         = Source(MediaSchema, "playing", false)
	Playsinline     = Source(MediaSchema, "playsinline", false)
	Seekable        = Source(MediaSchema, "seekable", TimeRanges(nil))
	Seeking         = Source(MediaSchema, "seeking", false)
	Started         = Source(MediaSchema, "started", false)
	View            = Source(MediaSchema, "viewType", ViewTypeUnknown)
	Volume          = Source(MediaSchema, "volume", 1.0)
	Waiting         = Source(MediaSchema, "waiting", false)
)

// Derived slots.
var (
	BufferedAmount = Derived(MediaSchema, "bufferedAmount", []Slot{Buffered, Duration},
		func(r Reader) (float64, error) {
			return clampedEnd(Get(r, Buffered), Get(r, Duration)), nil
		})

	SeekableAmount = Derived(MediaSchema, "seekableAmount", []Slot{Seekable, Duration},
		func(r Reader) (float64, error) {
			return clampedEnd(Get(r, Seekable), Get(r, Duration)), nil
		})

	// BufferedPercent reads another derived slot and must always see its fresh value.
	BufferedPercent = Derived(MediaSchema, "bufferedPercent", []Slot{BufferedAmount, Duration},
		func(r Reader) (float64, error) {
			return ratio(Get(r, BufferedAmount), Get(r, Duration)) * 100, nil
		})

	Progress = Derived(MediaSchema, "progress", []Slot{CurrentTime, Duration},
		func(r Reader) (float64, error) {
			return ratio(Get(r, CurrentTime), Get(r, Duration)), nil
		})

	RemainingTime = Derived(MediaSchema, "remainingTime", []Slot{CurrentTime, Duration},
		func(r Reader) (float64, error) {
			return math.Max(0, Get(r, Duration)-Get(r, CurrentTime)), nil
		})

	IsAudio = Derived(MediaSchema, "isAudio", []Slot{Type},
		func(r Reader) (bool, error) {
			return Get(r, Type) == MediaTypeAudio, nil
		})

	IsVideo = Derived(MediaSchema, "isVideo", []Slot{Type},
		func(r Reader) (bool, error) {
			t := Get(r, Type)
			return t == MediaTypeVideo || t == MediaTypeLiveVideo, nil
		})

	IsLiveVideo = Derived(MediaSchema, "isLiveVideo", []Slot{Type},
		func(r Reader) (bool, error) {
			return Get(r, Type) == MediaTypeLiveVideo, nil
		})

	IsAudioView = Derived(MediaSchema, "isAudioView", []Slot{View},
		func(r Reader) (bool, error) {
			return Get(r, View) == ViewTypeAudio, nil
		})

	IsVideoView = Derived(MediaSchema, "isVideoView", []Slot{View},
		func(r Reader) (bool, error) {
			return Get(r, View) == ViewTypeVideo, nil
		})
)

// StickySlots survive a soft reset: they are user preferences rather than facts about the current source.
var StickySlots = []Slot{Volume, Muted, Loop, Autoplay, Playsinline, Controls}

// NewMediaGraph builds a graph over MediaSchema.  The schema is static, so a failure here is a bug and panics.
func NewMediaGraph(opts ...Option) *Graph {
	g, err := New(MediaSchema, opts...)
	if err != nil {
		panic(fmt.Sprintf("media context schema is invalid: %v", err))
	}
	return g
}

// SoftReset restores every transient media slot, keeping sticky ones.  With no sticky slots given, StickySlots is
// used.  Called when a provider detaches or its source changes.
func SoftReset(g *Graph, sticky ...Slot) {
	if len(sticky) == 0 {
		sticky = StickySlots
	}
	g.ResetExcept(sticky...)
}

// ParseSlots resolves slot names against MediaSchema, for example from configuration.
func ParseSlots(names []string) ([]Slot, error) {
	slots := make([]Slot, 0, len(names))
	for _, name := range names {
		s, ok := MediaSchema.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSlot, name)
		}
		slots = append(slots, s)
	}
	return slots, nil
}

// ratio is a/b clamped to [0, 1], or 0 when b is not a positive finite number.
func ratio(a, b float64) float64 {
	if b <= 0 || math.IsInf(b, 0) || math.IsNaN(b) {
		return 0
	}
	return math.Max(0, math.Min(1, a/b))
}
