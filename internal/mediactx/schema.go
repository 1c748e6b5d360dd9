// Package mediactx holds the shared media state of a player: named, typed slots, some written directly by the bound
// engine or its controller and some derived from others, with change notification and immutable snapshots.
package mediactx

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrUnknownSlot is reported when a slot name is not part of the schema.
	ErrUnknownSlot = errors.New("unknown slot")
	// ErrDuplicateSlot is returned when a schema declares the same name twice.
	ErrDuplicateSlot = errors.New("duplicate slot")
	// ErrDependencyCycle is returned when derived slots depend on each other in a loop.
	ErrDependencyCycle = errors.New("derived slot dependency cycle")
	// ErrReadOnlySlot is reported when something tries to write a derived slot.
	ErrReadOnlySlot = errors.New("derived slot is read-only")
	// ErrComputeFailed wraps an error or panic raised by a derived slot's compute function.
	ErrComputeFailed = errors.New("derived slot compute failed")
)

// Slot is anything that names a slot.
type Slot interface {
	Name() string
}

// Key is a typed handle to a slot.  Keys are created by Source and Derived and are comparable by name.
type Key[T any] struct {
	name    string
	initial T
	derived bool
}

// Name returns the slot name.
func (k Key[T]) Name() string { return k.name }

// Derived reports whether the slot is computed from other slots.
func (k Key[T]) Derived() bool { return k.derived }

// Initial returns the slot's declared initial value.  For derived slots it is the zero value.
func (k Key[T]) Initial() T {
	return cloneValue(k.initial)
}

type slotName string

func (s slotName) Name() string { return string(s) }

type slotDef struct {
	name    string
	initial any
	derived bool
	deps    []string
	compute func(Reader) (any, error)
	equal   func(a, b any) bool
	clone   func(v any) any
}

// Schema declares the slots of a graph.  It is built once, usually in package variables, and shared by every graph
// created from it.
type Schema struct {
	defs  map[string]*slotDef
	order []string
	err   error
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{defs: make(map[string]*slotDef)}
}

// Source declares a slot whose value is written directly.
func Source[T any](s *Schema, name string, initial T) Key[T] {
	s.add(&slotDef{
		name:    name,
		initial: cloneValue(initial),
		equal:   equalFor[T](),
		clone:   cloneFor[T](),
	})
	return Key[T]{name: name, initial: cloneValue(initial)}
}

// Derived declares a slot computed from deps.  compute must be pure: it may only read through the Reader it is given.
func Derived[T any](s *Schema, name string, deps []Slot, compute func(r Reader) (T, error)) Key[T] {
	names := make([]string, 0, len(deps))
	for _, d := range deps {
		names = append(names, d.Name())
	}

	var zero T
	s.add(&slotDef{
		name:    name,
		initial: zero,
		derived: true,
		deps:    names,
		compute: func(r Reader) (any, error) {
			return compute(r)
		},
		equal: equalFor[T](),
		clone: cloneFor[T](),
	})
	return Key[T]{name: name, derived: true}
}

// Lookup finds a declared slot by name.
func (s *Schema) Lookup(name string) (Slot, bool) {
	if _, ok := s.defs[name]; !ok {
		return nil, false
	}
	return slotName(name), true
}

// Names returns every slot name in declaration order.
func (s *Schema) Names() []string {
	return append([]string(nil), s.order...)
}

// IsDerived reports whether the named slot is derived.  Unknown names report false.
func (s *Schema) IsDerived(name string) bool {
	def, ok := s.defs[name]
	return ok && def.derived
}

func (s *Schema) add(def *slotDef) {
	if _, exists := s.defs[def.name]; exists {
		if s.err == nil {
			s.err = fmt.Errorf("%w: %s", ErrDuplicateSlot, def.name)
		}
		return
	}
	s.defs[def.name] = def
	s.order = append(s.order, def.name)
}

// derivedOrder validates the schema and returns derived slots sorted so that every slot comes after the derived
// slots it depends on.
func (s *Schema) derivedOrder() ([]*slotDef, error) {
	if s.err != nil {
		return nil, s.err
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(s.defs))
	var sorted []*slotDef

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		def := s.defs[name]
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %v", ErrDependencyCycle, append(path, name))
		}
		state[name] = visiting
		for _, dep := range def.deps {
			depDef, ok := s.defs[dep]
			if !ok {
				return fmt.Errorf("%w: %s (dependency of %s)", ErrUnknownSlot, dep, name)
			}
			if depDef.derived {
				if err := visit(dep, append(path, name)); err != nil {
					return err
				}
			}
		}
		state[name] = done
		sorted = append(sorted, def)
		return nil
	}

	for _, name := range s.order {
		if !s.defs[name].derived {
			continue
		}
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}

// equalFor prefers an Equal(T) bool method and falls back to deep equality.
func equalFor[T any]() func(a, b any) bool {
	return func(a, b any) bool {
		av, aok := a.(T)
		bv, bok := b.(T)
		if !aok || !bok {
			return reflect.DeepEqual(a, b)
		}
		if eq, ok := any(av).(interface{ Equal(T) bool }); ok {
			return eq.Equal(bv)
		}
		return reflect.DeepEqual(av, bv)
	}
}

func cloneFor[T any]() func(v any) any {
	return func(v any) any {
		if tv, ok := v.(T); ok {
			return cloneValue(tv)
		}
		return v
	}
}

func cloneValue[T any](v T) T {
	if c, ok := any(v).(interface{ Clone() T }); ok {
		return c.Clone()
	}
	return v
}
