package record

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/handybase/handy/pkg/schema"
)

// defaultIdentifiers are the fields Load falls back to after caller hints.
var defaultIdentifiers = []string{schema.FieldID, "email"}

// Mapper executes the generic persistence operations for any entity kind.
type Mapper struct {
	store  Store
	logger *slog.Logger
}

// MapperOption configures a Mapper.
type MapperOption func(*Mapper)

// WithLogger sets the logger used for operation diagnostics.
func WithLogger(logger *slog.Logger) MapperOption {
	return func(m *Mapper) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMapper creates a Mapper backed by the given store.
func NewMapper(store Store, opts ...MapperOption) (*Mapper, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	m := &Mapper{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Save upserts the instance. updated_at is refreshed on every save and
// created_at is set only when absent. Arrays and non-time objects are
// serialized to JSON text; string values in timestamp fields are parsed into
// time values. The write is a single atomic upsert keyed on the definition's
// key set; a freshly inserted instance adopts the store-assigned primary key.
func (m *Mapper) Save(ctx context.Context, inst *Instance) error {
	def := inst.Definition()
	pk := def.PrimaryKey()
	if pk == nil {
		return ErrNoPrimaryKey
	}

	now := time.Now()
	if def.Field(schema.FieldUpdatedAt) != nil {
		inst.Set(schema.FieldUpdatedAt, now)
	}
	if def.Field(schema.FieldCreatedAt) != nil {
		if v, ok := inst.Get(schema.FieldCreatedAt); !ok || v == nil {
			inst.Set(schema.FieldCreatedAt, now)
		}
	}

	values := make(map[string]any, len(def.Fields))
	for _, f := range def.Fields {
		v, ok := inst.Get(f.Name)
		if !ok {
			values[f.Name] = nil
			continue
		}
		serialized, err := serializeValue(f, v)
		if err != nil {
			return fmt.Errorf("serialize field %q of %q: %w", f.Name, def.Table, err)
		}
		values[f.Name] = serialized
	}

	_, hadID := inst.ID()

	id, err := m.store.Upsert(ctx, def, values, def.KeySet())
	if err != nil {
		return err
	}

	if !hadID && pk.AutoGenerated {
		inst.Set(pk.Name, id)
	}
	return nil
}

// Load resolves an identifier and overwrites the instance with the matching
// row. Candidate fields are tried in order: caller hints first, then id and
// email; the first field holding a defined, non-nil value wins. Zero matching
// rows surface as ErrNotFound. After hydration, logical field types are
// coerced: booleans to bool, arrays and objects parsed from their JSON text.
//
// Multiple matches are not disambiguated; the first row wins and the caller
// is responsible for loading by a sufficiently unique identifier.
func (m *Mapper) Load(ctx context.Context, inst *Instance, hints ...string) error {
	def := inst.Definition()

	candidates := make([]string, 0, len(hints)+len(defaultIdentifiers))
	candidates = append(candidates, hints...)
	candidates = append(candidates, defaultIdentifiers...)

	var field string
	for _, name := range candidates {
		if v, ok := inst.Get(name); ok && v != nil {
			field = name
			break
		}
	}
	if field == "" {
		return fmt.Errorf("%w: tried %s", ErrNoIdentifier, strings.Join(candidates, ", "))
	}

	row, err := m.store.GetBy(ctx, def, field, inst.Value(field))
	if err != nil {
		return err
	}

	for name, v := range row {
		inst.Set(name, v)
	}

	return coerce(def, inst)
}

// Find returns all rows matching the ANDed constraints as raw records. No
// coercion is applied; this is the bulk read path and callers re-hydrate
// instances as needed.
func (m *Mapper) Find(ctx context.Context, def schema.Definition, constraints []Constraint) ([]map[string]any, error) {
	if len(constraints) == 0 {
		return nil, ErrEmptyConstraints
	}
	return m.store.Select(ctx, def, constraints)
}

// RemoveRecord hard-deletes the row whose primary key matches the instance.
// Removing an already-absent row is not an error. This is distinct from the
// soft deleted flag, which is an ordinary field toggled by callers.
func (m *Mapper) RemoveRecord(ctx context.Context, inst *Instance) error {
	def := inst.Definition()
	pk := def.PrimaryKey()
	if pk == nil {
		return ErrNoPrimaryKey
	}
	id, ok := inst.Get(pk.Name)
	if !ok || id == nil {
		return ErrNoIdentifier
	}
	return m.store.Delete(ctx, def, id)
}

// serializeValue prepares one field value for storage: timestamps stay (or
// become) time values, arrays and non-time objects become JSON text, scalars
// pass through.
func serializeValue(f schema.Field, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch tv := v.(type) {
	case time.Time:
		return tv, nil
	case string:
		if isTimestampType(f.Type) {
			parsed, err := parseTimestamp(tv)
			if err != nil {
				return nil, err
			}
			return parsed, nil
		}
		return tv, nil
	case []byte:
		return tv, nil
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct, reflect.Ptr:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(encoded), nil
	default:
		return v, nil
	}
}

func isTimestampType(storageType string) bool {
	t := strings.ToUpper(storageType)
	return strings.Contains(t, "TIMESTAMP") || strings.Contains(t, "DATETIME")
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// coerce applies logical-type transforms to a freshly loaded instance.
func coerce(def schema.Definition, inst *Instance) error {
	for _, f := range def.Fields {
		switch f.Logical {
		case schema.LogicalBool:
			inst.Set(f.Name, truthy(inst.Value(f.Name)))
		case schema.LogicalArray, schema.LogicalObject:
			v := inst.Value(f.Name)
			text, ok := asText(v)
			if !ok {
				continue
			}
			var decoded any
			if err := json.Unmarshal([]byte(text), &decoded); err != nil {
				return fmt.Errorf("decode field %q of %q: %w", f.Name, def.Table, err)
			}
			inst.Set(f.Name, decoded)
		}
	}
	return nil
}

func asText(v any) (string, bool) {
	switch tv := v.(type) {
	case string:
		return tv, tv != ""
	case []byte:
		return string(tv), len(tv) > 0
	default:
		return "", false
	}
}

func truthy(v any) bool {
	switch tv := v.(type) {
	case nil:
		return false
	case bool:
		return tv
	case int:
		return tv != 0
	case int32:
		return tv != 0
	case int64:
		return tv != 0
	case float64:
		return tv != 0
	case string:
		return tv != "" && tv != "0" && !strings.EqualFold(tv, "false")
	default:
		return true
	}
}
