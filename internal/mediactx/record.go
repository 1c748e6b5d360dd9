package mediactx

import (
	"encoding/json"
)

// Record is an immutable snapshot of every slot of a graph at one instant.  Compound values are copied both when the
// record is taken and when they are read back out, so nothing obtained from a Record aliases live state.
type Record struct {
	schema *Schema
	values map[string]any
}

func (r Record) lookup(name string) (any, bool) {
	if r.schema == nil {
		return nil, false
	}
	def, ok := r.schema.defs[name]
	if !ok {
		return nil, false
	}
	v, ok := r.values[name]
	if !ok {
		return nil, false
	}
	return def.clone(v), true
}

// Value reads a slot by name.
func (r Record) Value(name string) (any, bool) {
	return r.lookup(name)
}

// Names returns the slot names in declaration order.
func (r Record) Names() []string {
	if r.schema == nil {
		return nil
	}
	return r.schema.Names()
}

// Len returns the number of slots in the record.
func (r Record) Len() int {
	return len(r.values)
}

// Map returns a copy of the record as a plain map.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for _, name := range r.Names() {
		out[name], _ = r.lookup(name)
	}
	return out
}

// MarshalJSON encodes the record as an object keyed by slot name.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}
