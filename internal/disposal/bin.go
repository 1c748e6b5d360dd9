// Package disposal collects cleanup callbacks that belong to one scope (a binding, a connection) so they can be run
// together exactly once when that scope ends.
package disposal

import (
	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/safe"
)

// Bin is a scoped collection of cleanups.  The zero value is ready to use and reports failures through
// log.ReportError.  A Bin is not safe for concurrent use; it is owned by a single event loop.
type Bin struct {
	name     string
	cleanups []func() error
	report   func(error)
}

// NewBin creates a named bin.  report receives every error or panic raised by a cleanup; nil uses log.ReportError.
func NewBin(name string, report func(error)) *Bin {
	return &Bin{name: name, report: report}
}

// Add registers a cleanup callback.
func (b *Bin) Add(cleanup func()) {
	if cleanup == nil {
		return
	}
	b.cleanups = append(b.cleanups, func() error {
		cleanup()
		return nil
	})
}

// AddFunc registers a cleanup that can fail, such as closing a connection.
func (b *Bin) AddFunc(cleanup func() error) {
	if cleanup == nil {
		return
	}
	b.cleanups = append(b.cleanups, cleanup)
}

// Len returns the number of cleanups waiting to run.
func (b *Bin) Len() int {
	return len(b.cleanups)
}

// Empty runs every registered cleanup once, in registration order, then clears the bin.  A failing cleanup never
// stops the ones after it.  Cleanups registered while emptying are kept for the next call.
func (b *Bin) Empty() {
	if len(b.cleanups) == 0 {
		return
	}

	pending := b.cleanups
	b.cleanups = nil

	log.Trace("Emptying disposal bin", "bin", b.name, "count", len(pending))
	for _, cleanup := range pending {
		if err := safe.CallErr(cleanup); err != nil {
			b.reportErr(err)
		}
	}
}

func (b *Bin) reportErr(err error) {
	if b.report != nil {
		b.report(err)
		return
	}
	source := "disposal"
	if b.name != "" {
		source = "disposal:" + b.name
	}
	log.ReportError(source, err)
}
