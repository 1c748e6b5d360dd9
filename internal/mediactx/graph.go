package mediactx

import (
	"fmt"
	"sync"

	"github.com/PizzaHomicide/mediabind/internal/log"
	"github.com/PizzaHomicide/mediabind/internal/safe"
)

// Reader gives read access to slot values.  Graphs, records and the view handed to compute functions are Readers.
type Reader interface {
	lookup(name string) (any, bool)
}

// Get reads a typed slot value.  Values that are missing from r read as the slot's initial value.
func Get[T any](r Reader, k Key[T]) T {
	v, ok := r.lookup(k.name)
	if !ok {
		return k.Initial()
	}
	t, ok := v.(T)
	if !ok {
		return k.Initial()
	}
	return t
}

type subscription struct {
	id int
	fn func(any)
}

type write struct {
	name  string
	value any
}

type notification struct {
	name  string
	value any
	subs  []subscription
}

// Graph is a live set of slot values built from a Schema.
//
// Writes recompute every derived slot whose dependencies changed, in dependency order, and then notify subscribers
// of each slot whose value actually changed.  All of that happens before the write returns.  Reads and snapshots may
// come from any goroutine; writes are expected from the owner's event loop.  Subscribers run outside the lock and may
// write to the graph themselves.
type Graph struct {
	name   string
	mu     sync.RWMutex
	schema *Schema
	values map[string]any
	topo   []*slotDef
	subs   map[string][]subscription
	nextID int
	report func(error)
}

// Option configures a Graph.
type Option func(*Graph)

// WithName labels the graph in logs and reported errors.
func WithName(name string) Option {
	return func(g *Graph) { g.name = name }
}

// WithReporter sends compute, subscriber and misuse errors to report instead of log.ReportError.
func WithReporter(report func(error)) Option {
	return func(g *Graph) { g.report = report }
}

// New builds a graph from schema.  A schema with duplicate names, unknown dependencies or a dependency cycle is a
// programming error and is returned here, before anything can observe the graph.
func New(schema *Schema, opts ...Option) (*Graph, error) {
	topo, err := schema.derivedOrder()
	if err != nil {
		return nil, fmt.Errorf("invalid context schema: %w", err)
	}

	g := &Graph{
		name:   "context",
		schema: schema,
		values: make(map[string]any, len(schema.defs)),
		topo:   topo,
		subs:   make(map[string][]subscription),
	}
	for _, opt := range opts {
		opt(g)
	}

	for _, name := range schema.order {
		def := schema.defs[name]
		g.values[name] = def.clone(def.initial)
	}
	for _, def := range topo {
		if v, err := g.compute(def); err == nil {
			g.values[def.name] = v
		} else {
			g.reportErr(err)
		}
	}
	return g, nil
}

// Schema returns the schema the graph was built from.
func (g *Graph) Schema() *Schema {
	return g.schema
}

// Set writes a source slot.
func Set[T any](g *Graph, k Key[T], v T) {
	g.apply([]write{{name: k.name, value: v}})
}

// Batch collects several writes that are applied with a single propagation pass.
type Batch struct {
	writes []write
}

// Stage adds a write to the batch.
func Stage[T any](b *Batch, k Key[T], v T) {
	b.writes = append(b.writes, write{name: k.name, value: v})
}

// Batch applies every write staged by fn at once.  Subscribers see only the final values.
func (g *Graph) Batch(fn func(b *Batch)) {
	var b Batch
	fn(&b)
	g.apply(b.writes)
}

// Value reads a slot by name.
func (g *Graph) Value(name string) (any, bool) {
	return g.lookup(name)
}

func (g *Graph) lookup(name string) (any, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	def, ok := g.schema.defs[name]
	if !ok {
		return nil, false
	}
	return def.clone(g.values[name]), true
}

// Snapshot returns a by-value copy of every slot.
func (g *Graph) Snapshot() Record {
	g.mu.RLock()
	defer g.mu.RUnlock()

	values := make(map[string]any, len(g.values))
	for name, v := range g.values {
		values[name] = g.schema.defs[name].clone(v)
	}
	return Record{schema: g.schema, values: values}
}

// Reset restores the given source slots to their initial values.  Derived slots in the list are ignored; they follow
// their dependencies.
func (g *Graph) Reset(slots ...Slot) {
	writes := make([]write, 0, len(slots))
	for _, s := range slots {
		def, ok := g.schema.defs[s.Name()]
		if !ok {
			g.reportErr(fmt.Errorf("reset: %w: %s", ErrUnknownSlot, s.Name()))
			continue
		}
		if def.derived {
			continue
		}
		writes = append(writes, write{name: def.name, value: def.initial})
	}
	g.apply(writes)
}

// ResetExcept restores every source slot except those in keep.
func (g *Graph) ResetExcept(keep ...Slot) {
	kept := make(map[string]bool, len(keep))
	for _, s := range keep {
		kept[s.Name()] = true
	}

	var writes []write
	for _, name := range g.schema.order {
		def := g.schema.defs[name]
		if def.derived || kept[name] {
			continue
		}
		writes = append(writes, write{name: name, value: def.initial})
	}
	g.apply(writes)
}

// Load copies into g every source slot of r whose value has moved away from the slot's initial value, in one pass.
// Slots still at their initial value in r keep whatever g holds, except those named in always, which are copied
// regardless.
func (g *Graph) Load(r Record, always ...Slot) {
	forced := make(map[string]bool, len(always))
	for _, s := range always {
		forced[s.Name()] = true
	}

	var writes []write
	for _, name := range g.schema.order {
		def := g.schema.defs[name]
		if def.derived {
			continue
		}
		v, ok := r.lookup(name)
		if !ok || (!forced[name] && def.equal(def.initial, v)) {
			continue
		}
		writes = append(writes, write{name: name, value: v})
	}
	g.apply(writes)
}

// Subscribe calls fn with the new value every time the slot's value changes.  The returned function unsubscribes.
func (g *Graph) Subscribe(s Slot, fn func(v any)) (unsubscribe func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	name := s.Name()
	if _, ok := g.schema.defs[name]; !ok {
		g.reportErr(fmt.Errorf("subscribe: %w: %s", ErrUnknownSlot, name))
		return func() {}
	}

	g.nextID++
	id := g.nextID
	g.subs[name] = append(g.subs[name], subscription{id: id, fn: fn})

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		subs := g.subs[name]
		for i, sub := range subs {
			if sub.id == id {
				g.subs[name] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Watch is the typed form of Subscribe.
func Watch[T any](g *Graph, k Key[T], fn func(v T)) (unsubscribe func()) {
	return g.Subscribe(k, func(v any) {
		t, _ := v.(T)
		fn(t)
	})
}

func (g *Graph) apply(writes []write) {
	if len(writes) == 0 {
		return
	}

	g.mu.Lock()

	var errs []error
	before := make(map[string]any)
	var touched []string
	touch := func(name string) {
		if _, seen := before[name]; !seen {
			before[name] = g.values[name]
			touched = append(touched, name)
		}
	}

	for _, w := range writes {
		def, ok := g.schema.defs[w.name]
		if !ok {
			errs = append(errs, fmt.Errorf("write: %w: %s", ErrUnknownSlot, w.name))
			continue
		}
		if def.derived {
			errs = append(errs, fmt.Errorf("write: %w: %s", ErrReadOnlySlot, w.name))
			continue
		}
		if def.equal(g.values[w.name], w.value) {
			continue
		}
		touch(w.name)
		g.values[w.name] = def.clone(w.value)
	}

	if len(touched) > 0 {
		dirty := make(map[string]bool, len(touched))
		for _, name := range touched {
			dirty[name] = true
		}
		for _, def := range g.topo {
			if !dependsOnAny(def, dirty) {
				continue
			}
			v, err := g.compute(def)
			if err != nil {
				// Keep the previous value for this cycle.
				errs = append(errs, err)
				continue
			}
			if def.equal(g.values[def.name], v) {
				continue
			}
			touch(def.name)
			dirty[def.name] = true
			g.values[def.name] = v
		}
	}

	var pending []notification
	for _, name := range touched {
		def := g.schema.defs[name]
		if def.equal(before[name], g.values[name]) {
			continue
		}
		log.Trace("Context slot changed", "graph", g.name, "slot", name, "value", g.values[name])
		if len(g.subs[name]) == 0 {
			continue
		}
		pending = append(pending, notification{
			name:  name,
			value: g.values[name],
			subs:  append([]subscription(nil), g.subs[name]...),
		})
	}

	g.mu.Unlock()

	for _, err := range errs {
		g.reportErr(err)
	}
	for _, n := range pending {
		def := g.schema.defs[n.name]
		for _, sub := range n.subs {
			value := def.clone(n.value)
			if err := safe.Call(func() { sub.fn(value) }); err != nil {
				g.reportErr(fmt.Errorf("subscriber of %s: %w", n.name, err))
			}
		}
	}
}

// compute must be called with the lock held.
func (g *Graph) compute(def *slotDef) (any, error) {
	var v any
	err := safe.CallErr(func() error {
		var err error
		v, err = def.compute(view{g: g})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrComputeFailed, def.name, err)
	}
	return v, nil
}

func (g *Graph) reportErr(err error) {
	if g.report != nil {
		g.report(err)
		return
	}
	log.ReportError("mediactx:"+g.name, err)
}

func dependsOnAny(def *slotDef, dirty map[string]bool) bool {
	for _, dep := range def.deps {
		if dirty[dep] {
			return true
		}
	}
	return false
}

// view reads the live values without locking or cloning.  Only handed to compute functions while the lock is held.
type view struct {
	g *Graph
}

func (v view) lookup(name string) (any, bool) {
	val, ok := v.g.values[name]
	return val, ok
}
