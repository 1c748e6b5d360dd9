package bridge

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/PizzaHomicide/mediabind/internal/discovery"
	"github.com/PizzaHomicide/mediabind/internal/events"
	"github.com/PizzaHomicide/mediabind/internal/log"
)

// ErrInvalidDetail is reported when a request carries a number that cannot be applied, such as NaN.
var ErrInvalidDetail = errors.New("invalid request detail")

// SendRequest raises a request from node.  It bubbles up to the nearest controller, which handles it.  It reports
// whether a controller claimed the request.
func SendRequest(node *discovery.Node, req *events.Event) bool {
	if !req.Type.IsRequest() {
		log.Warn("Ignoring non-request event", "type", req.Type, "node", node.Path())
		return false
	}
	claimed := node.Dispatch(&discovery.Event{Type: string(req.Type), Detail: req})
	if !claimed {
		log.Debug("Request was not claimed by any controller", "type", req.Type, "node", node.Path())
	}
	return claimed
}

// Request handles a request as if it had bubbled up to the controller.
func (c *Controller) Request(req *events.Event) {
	c.metrics.Request(req.Type)
	log.Debug("Handling request", "controller", c.name, "request", req.String())

	switch req.Type {
	case events.RequestMute:
		c.SetMuted(true)
	case events.RequestUnmute:
		c.SetMuted(false)
	case events.RequestPlay:
		c.Play()
	case events.RequestPause:
		c.Pause()
	case events.RequestSeek:
		t, ok := c.number(req)
		if !ok {
			return
		}
		c.SetCurrentTime(math.Max(t, 0))
	case events.RequestSeeking:
		t, ok := c.number(req)
		if !ok {
			return
		}
		c.PreviewSeek(math.Max(t, 0))
	case events.RequestVolumeChange:
		v, ok := c.number(req)
		if !ok {
			return
		}
		c.SetVolume(lo.Clamp(v, 0, 1))
	case events.RequestEnterFullscreen:
		// Failures are already reported and written to the context by the coordinator.
		_ = c.fullscreen.Request()
	case events.RequestExitFullscreen:
		_ = c.fullscreen.Exit()
	default:
		c.report(fmt.Errorf("unhandled request type %s", req.Type))
	}
}

// number reads a request's numeric detail.  Malformed and non-finite details are reported and the request dropped.
func (c *Controller) number(req *events.Event) (float64, bool) {
	v, err := req.Float()
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = fmt.Errorf("%w: %s detail %v", ErrInvalidDetail, req.Type, v)
	}
	if err != nil {
		c.report(err)
		return 0, false
	}
	return v, true
}

func (c *Controller) handleRequest(e *discovery.Event) {
	e.StopPropagation()
	req, ok := e.Detail.(*events.Event)
	if !ok {
		c.report(fmt.Errorf("request %s carries %T, not an event", e.Type, e.Detail))
		return
	}
	c.Request(req)
}
