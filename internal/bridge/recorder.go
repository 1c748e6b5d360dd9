package bridge

import "github.com/PizzaHomicide/mediabind/internal/events"

// Recorder receives counts of what a controller does.  The metrics package implements it.
type Recorder interface {
	Bound(role string)
	Unbound(role string)
	Request(t events.Type)
	Bridged(t events.Type)
	QueueFlushed(actions int)
	ProviderBound(bound bool)
}

type nopRecorder struct{}

func (nopRecorder) Bound(string)        {}
func (nopRecorder) Unbound(string)      {}
func (nopRecorder) Request(events.Type) {}
func (nopRecorder) Bridged(events.Type) {}
func (nopRecorder) QueueFlushed(int)    {}
func (nopRecorder) ProviderBound(bool)  {}
