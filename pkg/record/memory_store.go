package record

import (
	"context"
	"maps"
	"reflect"
	"sync"

	"github.com/handybase/handy/pkg/schema"
)

// MemoryStore implements Store in memory for tests and local development. It
// mimics the relational upsert contract: a write collides with an existing row
// on the primary key or any unique field, and collisions update non-key
// fields in place.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]map[string]any
	nextID map[string]int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string][]map[string]any),
		nextID: make(map[string]int64),
	}
}

// Upsert implements Store.
func (s *MemoryStore) Upsert(ctx context.Context, def schema.Definition, values map[string]any, keySet []string) (int64, error) {
	pk := def.PrimaryKey()
	if pk == nil {
		return 0, ErrNoPrimaryKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keyed := make(map[string]bool, len(keySet))
	for _, k := range keySet {
		keyed[k] = true
	}

	if existing := s.findCollision(def, values, pk); existing != nil {
		for name, v := range values {
			if keyed[name] {
				continue
			}
			existing[name] = v
		}
		id, _ := toInt64(existing[pk.Name])
		return id, nil
	}

	row := make(map[string]any, len(values))
	maps.Copy(row, values)

	var id int64
	if pk.AutoGenerated && row[pk.Name] == nil {
		s.nextID[def.Table]++
		id = s.nextID[def.Table]
		row[pk.Name] = id
	} else {
		id, _ = toInt64(row[pk.Name])
	}

	s.tables[def.Table] = append(s.tables[def.Table], row)
	return id, nil
}

// findCollision returns the stored row the write would collide with, if any.
func (s *MemoryStore) findCollision(def schema.Definition, values map[string]any, pk *schema.Field) map[string]any {
	for _, row := range s.tables[def.Table] {
		if v, ok := values[pk.Name]; ok && v != nil && equalValue(row[pk.Name], v) {
			return row
		}
		for _, f := range def.Fields {
			if !f.Unique {
				continue
			}
			if v, ok := values[f.Name]; ok && v != nil && equalValue(row[f.Name], v) {
				return row
			}
		}
	}
	return nil
}

// GetBy implements Store.
func (s *MemoryStore) GetBy(ctx context.Context, def schema.Definition, field string, value any) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, row := range s.tables[def.Table] {
		if equalValue(row[field], value) {
			out := make(map[string]any, len(row))
			maps.Copy(out, row)
			return out, nil
		}
	}
	return nil, ErrNotFound
}

// Select implements Store.
func (s *MemoryStore) Select(ctx context.Context, def schema.Definition, constraints []Constraint) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []map[string]any
	for _, row := range s.tables[def.Table] {
		matched := true
		for _, c := range constraints {
			if !equalValue(row[c.Field], c.Value) {
				matched = false
				break
			}
		}
		if matched {
			cp := make(map[string]any, len(row))
			maps.Copy(cp, row)
			out = append(out, cp)
		}
	}
	return out, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, def schema.Definition, id any) error {
	pk := def.PrimaryKey()
	if pk == nil {
		return ErrNoPrimaryKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[def.Table]
	for i, row := range rows {
		if equalValue(row[pk.Name], id) {
			s.tables[def.Table] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// equalValue compares stored and queried values, tolerating the integer type
// drift that comes from callers passing untyped constants.
func equalValue(a, b any) bool {
	if ai, ok := toInt64(a); ok {
		if bi, ok := toInt64(b); ok {
			return ai == bi
		}
	}
	return reflect.DeepEqual(a, b)
}
