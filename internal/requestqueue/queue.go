// Package requestqueue buffers keyed actions until their target is ready to receive them.
package requestqueue

import (
	"fmt"

	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/safe"
)

// Action is a deferred write against the queue's target.
type Action func() error

// Queue stores at most one pending action per key.  Queuing under a key that is already pending replaces the action
// but keeps the key's original position, so a burst of writes (a dragged volume slider) is delivered once, with its
// final value, in the order the key was first touched.
//
// A Queue is not safe for concurrent use.
type Queue struct {
	name      string
	order     []string
	pending   map[string]Action
	immediate bool
	destroyed bool
	report    func(error)
}

// New creates a queue in buffering mode.  report receives action failures; nil uses log.ReportError.
func New(name string, report func(error)) *Queue {
	return &Queue{
		name:    name,
		pending: make(map[string]Action),
		report:  report,
	}
}

// Enqueue stores action under key, or runs it straight away when the queue is serving immediately.
func (q *Queue) Enqueue(key string, action Action) {
	if q.destroyed {
		log.Debug("Dropping action queued after destroy", "queue", q.name, "key", key)
		return
	}

	if q.immediate {
		q.run(key, action)
		return
	}

	if _, exists := q.pending[key]; !exists {
		q.order = append(q.order, key)
	}
	q.pending[key] = action
	log.Trace("Queued action", "queue", q.name, "key", key, "pending", len(q.order))
}

// Flush runs every pending action in first-queued order and clears the queue.  It does not change the mode.
// Returns the number of actions that were run.
func (q *Queue) Flush() int {
	if len(q.order) == 0 {
		return 0
	}

	order, pending := q.order, q.pending
	q.order = nil
	q.pending = make(map[string]Action)

	log.Debug("Flushing request queue", "queue", q.name, "count", len(order))
	for _, key := range order {
		q.run(key, pending[key])
	}
	return len(order)
}

// SetServeImmediately switches between buffering (false) and immediate (true) mode.
func (q *Queue) SetServeImmediately(immediate bool) {
	q.immediate = immediate
}

// Immediate reports whether actions currently bypass storage.
func (q *Queue) Immediate() bool {
	return q.immediate
}

// Len returns the number of pending keys.
func (q *Queue) Len() int {
	return len(q.order)
}

// Keys returns the pending keys in the order they will be flushed.
func (q *Queue) Keys() []string {
	return append([]string(nil), q.order...)
}

// Reset discards every pending action without running it.
func (q *Queue) Reset() {
	if len(q.order) > 0 {
		log.Debug("Discarding queued actions", "queue", q.name, "count", len(q.order))
	}
	q.order = nil
	q.pending = make(map[string]Action)
}

// Destroy resets the queue and refuses any further actions.
func (q *Queue) Destroy() {
	q.Reset()
	q.immediate = false
	q.destroyed = true
}

// Destroyed reports whether Destroy has been called.
func (q *Queue) Destroyed() bool {
	return q.destroyed
}

func (q *Queue) run(key string, action Action) {
	if action == nil {
		return
	}
	if err := safe.CallErr(action); err != nil {
		err = fmt.Errorf("queued action %q: %w", key, err)
		if q.report != nil {
			q.report(err)
			return
		}
		log.ReportError("requestqueue:"+q.name, err)
	}
}
