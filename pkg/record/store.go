package record

import (
	"context"

	"github.com/handybase/handy/pkg/schema"
)

// Constraint is one equality predicate for Find. Constraints are ANDed in
// list order.
type Constraint struct {
	Field string
	Value any
}

// Store abstracts the relational backend the mapper writes through. An
// implementation must support upsert-by-key and simple equality queries;
// nothing more is assumed about the underlying engine.
//
// Implementations wrap their own failures with ErrStoreFailure and report a
// zero-row GetBy as ErrNotFound, so the mapper can propagate errors without
// inspecting them.
type Store interface {
	// Upsert inserts or updates one row. values holds serialized field values
	// keyed by field name; keySet names the fields that identify the row and
	// are excluded from the update clause. It returns the primary key value
	// assigned by the store, or 0 when the key was supplied by the caller.
	Upsert(ctx context.Context, def schema.Definition, values map[string]any, keySet []string) (int64, error)

	// GetBy returns the first row where field equals value, or ErrNotFound.
	GetBy(ctx context.Context, def schema.Definition, field string, value any) (map[string]any, error)

	// Select returns all rows matching every constraint.
	Select(ctx context.Context, def schema.Definition, constraints []Constraint) ([]map[string]any, error)

	// Delete removes the row with the given primary key value. Deleting an
	// absent key is not an error.
	Delete(ctx context.Context, def schema.Definition, id any) error
}
