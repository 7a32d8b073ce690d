package record

import (
	"maps"

	"github.com/handybase/handy/pkg/schema"
)

// Instance is one in-memory entity: a composed definition plus field values.
// Missing fields stay absent until Save applies defaults; they are not nil
// placeholders.
type Instance struct {
	def    schema.Definition
	values map[string]any
}

// New creates an instance of the given composed definition with the supplied
// initial values. The values map is copied.
func New(def schema.Definition, values map[string]any) *Instance {
	inst := &Instance{
		def:    def,
		values: make(map[string]any, len(values)),
	}
	maps.Copy(inst.values, values)
	return inst
}

// Definition returns the composed definition this instance belongs to.
func (i *Instance) Definition() schema.Definition {
	return i.def
}

// Get returns the current value of a field and whether it is set at all.
func (i *Instance) Get(name string) (any, bool) {
	v, ok := i.values[name]
	return v, ok
}

// Value returns the current value of a field, or nil when absent.
func (i *Instance) Value(name string) any {
	return i.values[name]
}

// Set assigns a field value.
func (i *Instance) Set(name string, value any) {
	i.values[name] = value
}

// Unset removes a field value entirely.
func (i *Instance) Unset(name string) {
	delete(i.values, name)
}

// Values returns a copy of all currently set field values.
func (i *Instance) Values() map[string]any {
	out := make(map[string]any, len(i.values))
	maps.Copy(out, i.values)
	return out
}

// ID returns the primary key value as int64 and whether it is set. It returns
// false for definitions without an integer primary key value.
func (i *Instance) ID() (int64, bool) {
	pk := i.def.PrimaryKey()
	if pk == nil {
		return 0, false
	}
	return toInt64(i.values[pk.Name])
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
