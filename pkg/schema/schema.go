package schema

// Logical identifies the in-memory shape of a field whose storage type cannot
// express it directly. It drives load-time coercion in the record mapper.
type Logical string

const (
	LogicalNone   Logical = ""
	LogicalBool   Logical = "boolean"
	LogicalArray  Logical = "array"
	LogicalObject Logical = "object"
)

// Common storage types. Type is a plain string so callers may use any type the
// backing store understands; these cover the base fields and the built-in
// entity kinds.
const (
	TypeBigInt    = "BIGINT"
	TypeText      = "TEXT"
	TypeBoolean   = "BOOLEAN"
	TypeTimestamp = "TIMESTAMPTZ"
)

// Names of the base fields appended to every composed definition.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
	FieldDeleted   = "deleted"
)

// Field describes a single column of an entity kind.
type Field struct {
	Name          string
	Type          string
	NotNull       bool
	Unique        bool
	Indexed       bool
	PrimaryKey    bool
	AutoGenerated bool
	Default       any
	Logical       Logical
}

// Definition is the ordered field list of one entity kind. Callers construct a
// Definition with their own fields and pass it through Compose before handing
// it to the record mapper. A composed Definition is shared read-only across
// all instances of the kind.
type Definition struct {
	Table  string
	Fields []Field
}

// baseFields returns the fields every entity kind carries, in fixed order.
func baseFields() []Field {
	return []Field{
		{Name: FieldID, Type: TypeBigInt, NotNull: true, PrimaryKey: true, AutoGenerated: true},
		{Name: FieldCreatedAt, Type: TypeTimestamp, NotNull: true, Default: "CURRENT_TIMESTAMP"},
		{Name: FieldUpdatedAt, Type: TypeTimestamp, NotNull: true, Default: "CURRENT_TIMESTAMP"},
		{Name: FieldDeleted, Type: TypeBoolean, Default: false, Logical: LogicalBool},
	}
}

// Compose appends the base fields to def, skipping any base field whose name
// the caller already defines. Caller fields keep their position; base fields
// follow in fixed order. Compose never mutates its input.
func Compose(def Definition) (Definition, error) {
	if def.Table == "" {
		return Definition{}, ErrMissingTable
	}

	pks := 0
	for _, f := range def.Fields {
		if f.PrimaryKey {
			pks++
		}
	}
	if pks > 1 {
		return Definition{}, ErrMultiplePrimaryKeys
	}

	composed := Definition{
		Table:  def.Table,
		Fields: append([]Field(nil), def.Fields...),
	}

	for _, base := range baseFields() {
		// A caller-defined primary key makes the base id field redundant;
		// injecting it anyway would violate the single-primary-key invariant.
		if base.PrimaryKey && pks > 0 {
			continue
		}
		if composed.Field(base.Name) == nil {
			composed.Fields = append(composed.Fields, base)
		}
	}

	return composed, nil
}

// MustCompose is Compose for definitions known valid at build time. Malformed
// built-in definitions are programming errors, so it panics.
func MustCompose(def Definition) Definition {
	composed, err := Compose(def)
	if err != nil {
		panic(err)
	}
	return composed
}

// Field returns the field named name, or nil.
func (d Definition) Field(name string) *Field {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i]
		}
	}
	return nil
}

// PrimaryKey returns the primary key field, or nil for a definition that has
// not been composed yet.
func (d Definition) PrimaryKey() *Field {
	for i := range d.Fields {
		if d.Fields[i].PrimaryKey {
			return &d.Fields[i]
		}
	}
	return nil
}

// KeySet returns the names of all fields flagged indexed, unique or primary
// key. The record mapper upserts on this set: key fields identify the row and
// are excluded from the update clause.
func (d Definition) KeySet() []string {
	var keys []string
	for _, f := range d.Fields {
		if f.Indexed || f.Unique || f.PrimaryKey {
			keys = append(keys, f.Name)
		}
	}
	return keys
}

// Names returns all field names in definition order.
func (d Definition) Names() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}
