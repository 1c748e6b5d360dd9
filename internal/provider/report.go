package provider

import (
	"github.com/PizzaHomicide/mediabind/internal/events"
	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/mediactx"
)

// VolumeDetail is the payload of a volume-change event.
type VolumeDetail struct {
	Volume float64 `json:"volume"`
	Muted  bool    `json:"muted"`
}

// Metadata is what an engine knows once a source's headers are parsed.
type Metadata struct {
	Duration  float64
	MediaType mediactx.MediaType
	ViewType  mediactx.ViewType
}

// ReportLoadStart records that the engine began loading a source.
func (b *Base) ReportLoadStart(src string) {
	if src != "" && src != mediactx.Get(b.graph, mediactx.CurrentSrc) {
		b.SourceChanged(src)
	}
	b.emit(events.LoadStart, src)
}

// ReportMetadata records duration and media type.
func (b *Base) ReportMetadata(md Metadata) {
	typeChanged := md.MediaType != mediactx.Get(b.graph, mediactx.Type)
	viewChanged := md.ViewType != mediactx.Get(b.graph, mediactx.View)
	durationChanged := md.Duration != mediactx.Get(b.graph, mediactx.Duration)

	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.Duration, md.Duration)
		mediactx.Stage(batch, mediactx.Type, md.MediaType)
		mediactx.Stage(batch, mediactx.View, md.ViewType)
	})

	if durationChanged {
		b.emit(events.DurationChange, md.Duration)
	}
	if typeChanged {
		b.emit(events.MediaTypeChange, md.MediaType)
	}
	if viewChanged {
		b.emit(events.ViewTypeChange, md.ViewType)
	}
	b.emit(events.LoadedMetadata, md)
}

// ReportLoadedData records that the first frame is available.
func (b *Base) ReportLoadedData() {
	b.emit(events.LoadedData, nil)
}

// ReportCanPlay records that the engine is ready for playback and delivers every write queued while it was not.
func (b *Base) ReportCanPlay() {
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.CanPlay, true)
	})
	b.emit(events.CanPlay, nil)

	if !b.queue.Immediate() {
		n := b.queue.Flush()
		b.queue.SetServeImmediately(true)
		log.Debug("Provider ready, flushed queued writes", "provider", b.name, "count", n)
	}
}

// ReportCanPlayThrough records that the engine expects to play to the end without stalling.
func (b *Base) ReportCanPlayThrough() {
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.CanPlayThrough, true)
	})
	b.emit(events.CanPlayThrough, nil)
}

// ReportPlay records that playback was requested to start.  The first play of a source also emits started, and a
// play after the end emits replay.
func (b *Base) ReportPlay() {
	wasEnded := mediactx.Get(b.graph, mediactx.Ended)
	wasStarted := mediactx.Get(b.graph, mediactx.Started)

	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.Paused, false)
		mediactx.Stage(batch, mediactx.Ended, false)
		mediactx.Stage(batch, mediactx.AutoplayError, "")
		mediactx.Stage(batch, mediactx.Started, true)
	})
	b.emit(events.Play, nil)
	if wasEnded {
		b.emit(events.Replay, nil)
	}
	if !wasStarted {
		b.emit(events.Started, nil)
	}
}

// ReportPlaying records that frames are actually advancing.
func (b *Base) ReportPlaying() {
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.Playing, true)
		mediactx.Stage(batch, mediactx.Waiting, false)
	})
	b.emit(events.Playing, nil)
}

// ReportPause records that playback paused.
func (b *Base) ReportPause() {
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.Paused, true)
		mediactx.Stage(batch, mediactx.Playing, false)
	})
	b.emit(events.Pause, nil)
}

// ReportAutoplayFailed records that autoplay was refused, leaving the media paused.
func (b *Base) ReportAutoplayFailed(reason string) {
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.AutoplayError, reason)
		mediactx.Stage(batch, mediactx.Paused, true)
	})
}

// ReportTimeUpdate records the playback position.
func (b *Base) ReportTimeUpdate(t float64) {
	if t == mediactx.Get(b.graph, mediactx.CurrentTime) {
		return
	}
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.CurrentTime, t)
	})
	b.emit(events.TimeUpdate, t)
}

// ReportDuration records a duration change outside of metadata, such as a growing live stream.
func (b *Base) ReportDuration(d float64) {
	if d == mediactx.Get(b.graph, mediactx.Duration) {
		return
	}
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.Duration, d)
	})
	b.emit(events.DurationChange, d)
}

// ReportVolume records the engine's volume and mute state.
func (b *Base) ReportVolume(volume float64, muted bool) {
	if volume == b.Volume() && muted == b.Muted() {
		return
	}
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.Volume, volume)
		mediactx.Stage(batch, mediactx.Muted, muted)
	})
	b.emit(events.VolumeChange, VolumeDetail{Volume: volume, Muted: muted})
}

// ReportSeeking records that a seek to t started.
func (b *Base) ReportSeeking(t float64) {
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.Seeking, true)
	})
	b.emit(events.Seeking, t)
}

// ReportSeeked records that a seek finished at t.
func (b *Base) ReportSeeked(t float64) {
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.Seeking, false)
		mediactx.Stage(batch, mediactx.CurrentTime, t)
		mediactx.Stage(batch, mediactx.Ended, false)
	})
	b.emit(events.Seeked, t)
}

// ReportWaiting records that playback stopped to wait for data.
func (b *Base) ReportWaiting() {
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.Waiting, true)
		mediactx.Stage(batch, mediactx.Playing, false)
	})
	b.emit(events.Waiting, nil)
}

// ReportStalled records that data stopped arriving.
func (b *Base) ReportStalled() {
	b.emit(events.Stalled, nil)
}

// ReportSuspend records that the engine stopped fetching data on purpose.
func (b *Base) ReportSuspend() {
	b.emit(events.Suspend, nil)
}

// ReportAbort records that loading was abandoned before completion.
func (b *Base) ReportAbort() {
	b.emit(events.Abort, nil)
}

// ReportBuffered records buffered ranges and emits progress when they change.
func (b *Base) ReportBuffered(ranges mediactx.TimeRanges) {
	if ranges.Equal(mediactx.Get(b.graph, mediactx.Buffered)) {
		return
	}
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.Buffered, ranges)
	})
	b.emit(events.Progress, ranges.Clone())
}

// ReportSeekable records the ranges that can be seeked to.
func (b *Base) ReportSeekable(ranges mediactx.TimeRanges) {
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.Seekable, ranges)
	})
}

// ReportPlayed records the ranges that have been played.
func (b *Base) ReportPlayed(ranges mediactx.TimeRanges) {
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.Played, ranges)
	})
}

// ReportPoster records the poster shown for the current source.
func (b *Base) ReportPoster(poster string) {
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.CurrentPoster, poster)
	})
}

// ReportLoop records the engine's loop setting.
func (b *Base) ReportLoop(loop bool) {
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.Loop, loop)
	})
}

// ReportEnded records that playback reached the end.
func (b *Base) ReportEnded() {
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.Ended, true)
		mediactx.Stage(batch, mediactx.Paused, true)
		mediactx.Stage(batch, mediactx.Playing, false)
	})
	b.emit(events.Ended, nil)
}

// ReportError records a media error.  The message is kept in the error slot until the next source.
func (b *Base) ReportError(message string) {
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.MediaError, message)
		mediactx.Stage(batch, mediactx.Playing, false)
	})
	b.emit(events.Error, message)
}

// ReportEmptied records that the engine unloaded its source.
func (b *Base) ReportEmptied() {
	b.SourceChanged("")
	b.emit(events.Emptied, nil)
}

// ReportFullscreen records a confirmed fullscreen change on the engine itself.
func (b *Base) ReportFullscreen(entered bool) {
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.Fullscreen, entered)
		mediactx.Stage(batch, mediactx.FullscreenError, "")
	})
	b.emit(events.FullscreenChange, entered)
}

// ReportFullscreenError records that the engine refused a fullscreen change.
func (b *Base) ReportFullscreenError(err error) {
	msg := err.Error()
	b.update(func(batch *mediactx.Batch) {
		mediactx.Stage(batch, mediactx.FullscreenError, msg)
	})
	b.emit(events.FullscreenError, err)
}
