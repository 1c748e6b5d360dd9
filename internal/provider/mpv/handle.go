package mpv

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"

	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/mediactx"
)

// cacheState is the part of demuxer-cache-state we read.
type cacheState struct {
	SeekableRanges []cacheRange `json:"seekable-ranges"`
}

type cacheRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// HandleEvent turns one mpv event or reply into context writes and media events.
func (p *Provider) HandleEvent(ev Event) {
	if ev.IsReply() {
		p.handleReply(ev)
		return
	}

	switch ev.Event {
	case "start-file":
		p.loaded = false
		p.restarted = false
		p.seeking = false
		p.ReportLoadStart(p.loading)
	case "file-loaded":
		p.loaded = true
		p.ReportMetadata(p.metadata())
		p.ReportLoadedData()
		p.ReportCanPlay()
		p.playStateChanged()
	case "seek":
		p.seeking = true
		p.ReportSeeking(p.seekTo)
	case "playback-restart":
		if p.seeking {
			p.seeking = false
			p.ReportSeeked(p.CurrentTime())
		}
		if !p.restarted {
			p.restarted = true
			p.ReportCanPlayThrough()
		}
	case "end-file":
		p.handleEndFile(ev)
	case "idle":
		if p.stopping {
			p.stopping = false
			p.ReportEmptied()
		}
	case "property-change":
		p.handleProperty(ev.Name, ev.Data)
	default:
		log.Trace("Ignoring mpv event", "event", ev.Event)
	}
}

func (p *Provider) handleEndFile(ev Event) {
	p.loaded = false
	switch ev.Reason {
	case "eof":
		p.ReportEnded()
	case "error":
		msg := lo.Ternary(ev.FileError != "", ev.FileError, "playback failed")
		p.ReportError(msg)
	default:
		p.ReportAbort()
	}
}

func (p *Provider) handleReply(ev Event) {
	switch ev.RequestID {
	case p.fullscreenReq:
		p.fullscreenReq = 0
		if ev.Failed() {
			p.ReportFullscreenError(fmt.Errorf("%w: fullscreen: %s", ErrCommandFailed, ev.Error))
			return
		}
		p.checkFullscreen()
		return
	case p.fullscreenCheck:
		p.fullscreenCheck = 0
		if ev.Failed() {
			p.ReportFullscreenError(fmt.Errorf("%w: fullscreen: %s", ErrCommandFailed, ev.Error))
			return
		}
		// No property change arrived first: whatever mpv holds now is the outcome, changed or not.
		if v, ok := decode[bool](ev.Data); ok {
			p.ReportFullscreen(v)
		}
		return
	}
	if ev.Failed() {
		log.ReportError("provider:mpv", fmt.Errorf("%w: request %d: %s", ErrCommandFailed, ev.RequestID, ev.Error))
	}
}

// checkFullscreen reads the fullscreen property back after mpv accepted a change. mpv only sends a property change
// when the value moved, so the read is what settles a request that left it where it was.
func (p *Provider) checkFullscreen() {
	id, err := p.ipc.Command("get_property", "fullscreen")
	if err != nil {
		p.ReportFullscreenError(fmt.Errorf("fullscreen: %w", err))
		return
	}
	p.fullscreenCheck = id
}

func (p *Provider) handleProperty(name string, data json.RawMessage) {
	switch name {
	case "pause":
		if v, ok := decode[bool](data); ok {
			p.paused = v
			p.playStateChanged()
		}
	case "paused-for-cache":
		if v, ok := decode[bool](data); ok && v != p.cacheWait {
			p.cacheWait = v
			if p.loaded && v {
				p.ReportWaiting()
			} else {
				p.playStateChanged()
			}
		}
	case "volume":
		if v, ok := decode[float64](data); ok {
			p.volume = lo.Clamp(v/100, 0, 1)
			p.ReportVolume(p.volume, p.muted)
		}
	case "mute":
		if v, ok := decode[bool](data); ok {
			p.muted = v
			p.ReportVolume(p.volume, p.muted)
		}
	case "time-pos":
		if v, ok := decode[float64](data); ok && p.loaded {
			p.ReportTimeUpdate(v)
		}
	case "duration":
		v, _ := decode[float64](data)
		p.duration = v
		if !p.loaded {
			return
		}
		if md := p.metadata(); md.MediaType != mediactx.Get(p.Context(), mediactx.Type) {
			p.ReportMetadata(md)
		} else {
			p.ReportDuration(v)
		}
	case "demuxer-cache-state":
		if cs, ok := decode[cacheState](data); ok {
			pairs := lo.Map(cs.SeekableRanges, func(r cacheRange, _ int) [2]float64 {
				return [2]float64{r.Start, r.End}
			})
			p.ReportBuffered(mediactx.NewTimeRanges(pairs...))
		}
	case "seekable":
		if v, ok := decode[bool](data); ok {
			if v && p.duration > 0 {
				p.ReportSeekable(mediactx.NewTimeRanges([2]float64{0, p.duration}))
			} else {
				p.ReportSeekable(nil)
			}
		}
	case "fullscreen":
		if v, ok := decode[bool](data); ok {
			p.fullscreenReq = 0
			p.fullscreenCheck = 0
			if v != mediactx.Get(p.Context(), mediactx.Fullscreen) {
				p.ReportFullscreen(v)
			}
		}
	case "loop-file":
		p.ReportLoop(decodeLoop(data))
	case "video-format":
		hasVideo := !isNull(data)
		if hasVideo != p.hasVideo {
			p.hasVideo = hasVideo
			if p.loaded {
				p.ReportMetadata(p.metadata())
			}
		}
	case "eof-reached":
		if v, ok := decode[bool](data); ok && v && p.loaded {
			p.ReportEnded()
		}
	}
}

// playStateChanged reports play, pause or playing once a file is loaded.  Before that mpv's pause flag is only a
// preference for the next load.
func (p *Provider) playStateChanged() {
	if !p.loaded {
		return
	}
	paused := mediactx.Get(p.Context(), mediactx.Paused)
	switch {
	case p.paused && !paused:
		p.ReportPause()
	case !p.paused && paused:
		p.ReportPlay()
		if !p.cacheWait {
			p.ReportPlaying()
		}
	case !p.paused && !p.cacheWait && !mediactx.Get(p.Context(), mediactx.Playing):
		p.ReportPlaying()
	}
}

func isNull(data json.RawMessage) bool {
	return len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// decode reads a property value.  null, which mpv sends for unavailable properties, is reported as not ok.
func decode[T any](data json.RawMessage) (T, bool) {
	var v T
	if isNull(data) {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		log.Warn("Failed to decode mpv property", "data", string(data), "error", err)
		return v, false
	}
	return v, true
}

// decodeLoop reads loop-file, which is "inf", false, or a repeat count.
func decodeLoop(data json.RawMessage) bool {
	v, _ := decode[any](data)
	switch v := v.(type) {
	case string:
		return v == "inf" || v == "force"
	case bool:
		return v
	case float64:
		return v > 0
	}
	return false
}
