package models

import (
	"github.com/PizzaHomicide/mediabind/internal/events"
	"github.com/PizzaHomicide/mediabind/internal/provider/mpv"
)

// EngineReadyMsg is sent once the engine has been started or connected to.  Err is set when that failed.
type EngineReadyMsg struct {
	Err error
}

// EngineEventMsg carries one IPC event from the engine back onto the event loop
type EngineEventMsg struct {
	Event mpv.Event
}

// EngineClosedMsg is sent when the engine's event stream ends, i.e. mpv exited or the socket closed
type EngineClosedMsg struct{}

// RequestMsg carries a request raised outside the event loop, e.g. from the debug server.  Reply, when set, receives
// whether a controller claimed the request.
type RequestMsg struct {
	Request *events.Event
	Reply   chan<- bool
}

// OpenSourceSelectMsg asks the app to show the source selector
type OpenSourceSelectMsg struct{}

// SourceSelectedMsg is sent when a source is picked in the selector
type SourceSelectedMsg struct {
	Source string
}

// FullscreenAppliedMsg is sent once the terminal has switched into or out of the alternate screen
type FullscreenAppliedMsg struct {
	Entered bool
}
