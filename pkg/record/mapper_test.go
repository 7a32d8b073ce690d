package record_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handybase/handy/pkg/record"
	"github.com/handybase/handy/pkg/schema"
)

func userDefinition(t *testing.T) schema.Definition {
	t.Helper()
	def, err := schema.Compose(schema.Definition{
		Table: "users",
		Fields: []schema.Field{
			{Name: "name", Type: "VARCHAR(255)"},
			{Name: "email", Type: "VARCHAR(255)", Unique: true},
			{Name: "verified", Type: schema.TypeBoolean, Default: false, Logical: schema.LogicalBool},
			{Name: "roles", Type: "VARCHAR(512)", Logical: schema.LogicalArray},
			{Name: "settings", Type: schema.TypeText, Logical: schema.LogicalObject},
		},
	})
	require.NoError(t, err)
	return def
}

func newMapper(t *testing.T) (*record.Mapper, *record.MemoryStore) {
	t.Helper()
	store := record.NewMemoryStore()
	mapper, err := record.NewMapper(store)
	require.NoError(t, err)
	return mapper, store
}

func TestMapper_Save(t *testing.T) {
	t.Parallel()

	t.Run("assigns generated id and timestamps", func(t *testing.T) {
		t.Parallel()

		mapper, _ := newMapper(t)
		def := userDefinition(t)
		inst := record.New(def, map[string]any{
			"name":  "ada",
			"email": "ada@example.com",
		})

		require.NoError(t, mapper.Save(context.Background(), inst))

		id, ok := inst.ID()
		require.True(t, ok)
		assert.Equal(t, int64(1), id)
		assert.IsType(t, time.Time{}, inst.Value(schema.FieldCreatedAt))
		assert.IsType(t, time.Time{}, inst.Value(schema.FieldUpdatedAt))
	})

	t.Run("second save upserts instead of inserting", func(t *testing.T) {
		t.Parallel()

		mapper, _ := newMapper(t)
		def := userDefinition(t)
		ctx := context.Background()

		inst := record.New(def, map[string]any{"email": "ada@example.com", "name": "ada"})
		require.NoError(t, mapper.Save(ctx, inst))

		inst.Set("name", "ada lovelace")
		require.NoError(t, mapper.Save(ctx, inst))

		rows, err := mapper.Find(ctx, def, []record.Constraint{{Field: "email", Value: "ada@example.com"}})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "ada lovelace", rows[0]["name"])
	})

	t.Run("refreshes updated_at, keeps created_at", func(t *testing.T) {
		t.Parallel()

		mapper, _ := newMapper(t)
		def := userDefinition(t)
		ctx := context.Background()

		created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		inst := record.New(def, map[string]any{
			"email":                "ada@example.com",
			schema.FieldCreatedAt:  created,
		})
		require.NoError(t, mapper.Save(ctx, inst))

		assert.Equal(t, created, inst.Value(schema.FieldCreatedAt))
		updated, ok := inst.Value(schema.FieldUpdatedAt).(time.Time)
		require.True(t, ok)
		assert.WithinDuration(t, time.Now(), updated, time.Minute)
	})

	t.Run("parses string timestamps", func(t *testing.T) {
		t.Parallel()

		mapper, _ := newMapper(t)
		def := userDefinition(t)
		inst := record.New(def, map[string]any{
			"email":               "ada@example.com",
			schema.FieldCreatedAt: "2024-03-01T12:00:00Z",
		})

		require.NoError(t, mapper.Save(context.Background(), inst))

		created, ok := inst.Value(schema.FieldCreatedAt).(time.Time)
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), created.UTC())
	})
}

func TestMapper_RoundTrip(t *testing.T) {
	t.Parallel()

	mapper, _ := newMapper(t)
	def := userDefinition(t)
	ctx := context.Background()

	inst := record.New(def, map[string]any{
		"name":     "ada",
		"email":    "ada@example.com",
		"verified": true,
		"roles":    []string{"admin", "editor"},
		"settings": map[string]any{"theme": "dark"},
	})
	require.NoError(t, mapper.Save(ctx, inst))
	id, ok := inst.ID()
	require.True(t, ok)

	loaded := record.New(def, map[string]any{schema.FieldID: id})
	require.NoError(t, mapper.Load(ctx, loaded))

	assert.Equal(t, "ada", loaded.Value("name"))
	assert.Equal(t, true, loaded.Value("verified"))
	assert.Equal(t, []any{"admin", "editor"}, loaded.Value("roles"))
	assert.Equal(t, map[string]any{"theme": "dark"}, loaded.Value("settings"))
	assert.Equal(t, false, loaded.Value("deleted"))
}

func TestMapper_Load(t *testing.T) {
	t.Parallel()

	t.Run("caller hints take priority over defaults", func(t *testing.T) {
		t.Parallel()

		mapper, _ := newMapper(t)
		def := userDefinition(t)
		ctx := context.Background()

		first := record.New(def, map[string]any{"name": "ada", "email": "ada@example.com"})
		require.NoError(t, mapper.Save(ctx, first))
		second := record.New(def, map[string]any{"name": "grace", "email": "grace@example.com"})
		require.NoError(t, mapper.Save(ctx, second))

		// Both name and email are set; the name hint must win over the
		// default email identifier.
		inst := record.New(def, map[string]any{"name": "grace", "email": "ada@example.com"})
		require.NoError(t, mapper.Load(ctx, inst, "name"))
		assert.Equal(t, "grace@example.com", inst.Value("email"))
	})

	t.Run("falls back to email", func(t *testing.T) {
		t.Parallel()

		mapper, _ := newMapper(t)
		def := userDefinition(t)
		ctx := context.Background()

		saved := record.New(def, map[string]any{"name": "ada", "email": "ada@example.com"})
		require.NoError(t, mapper.Save(ctx, saved))

		inst := record.New(def, map[string]any{"email": "ada@example.com"})
		require.NoError(t, mapper.Load(ctx, inst))
		assert.Equal(t, "ada", inst.Value("name"))
	})

	t.Run("no usable identifier", func(t *testing.T) {
		t.Parallel()

		mapper, _ := newMapper(t)
		inst := record.New(userDefinition(t), map[string]any{"name": nil})

		err := mapper.Load(context.Background(), inst, "name")
		assert.ErrorIs(t, err, record.ErrNoIdentifier)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		mapper, _ := newMapper(t)
		inst := record.New(userDefinition(t), map[string]any{schema.FieldID: int64(42)})

		err := mapper.Load(context.Background(), inst)
		assert.ErrorIs(t, err, record.ErrNotFound)
	})
}

func TestMapper_Find(t *testing.T) {
	t.Parallel()

	t.Run("empty constraints rejected", func(t *testing.T) {
		t.Parallel()

		mapper, _ := newMapper(t)
		_, err := mapper.Find(context.Background(), userDefinition(t), nil)
		assert.ErrorIs(t, err, record.ErrEmptyConstraints)
	})

	t.Run("returns duplicate rows raw, without coercion", func(t *testing.T) {
		t.Parallel()

		store := record.NewMemoryStore()
		mapper, err := record.NewMapper(store)
		require.NoError(t, err)
		def := userDefinition(t)
		ctx := context.Background()

		// Two rows share an email; writing through the store directly keeps
		// the mapper's unique-collision handling out of the way.
		for _, name := range []string{"ada", "grace"} {
			_, err := store.Upsert(ctx, def, map[string]any{
				"name":  name,
				"email": "shared@example.com",
				"roles": `["admin"]`,
			}, nil)
			require.NoError(t, err)
		}

		rows, err := mapper.Find(ctx, def, []record.Constraint{{Field: "email", Value: "shared@example.com"}})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		// Raw record: the roles JSON text is untouched.
		assert.Equal(t, `["admin"]`, rows[0]["roles"])
	})
}

func TestMapper_RemoveRecord(t *testing.T) {
	t.Parallel()

	t.Run("deletes by primary key", func(t *testing.T) {
		t.Parallel()

		mapper, _ := newMapper(t)
		def := userDefinition(t)
		ctx := context.Background()

		inst := record.New(def, map[string]any{"email": "ada@example.com"})
		require.NoError(t, mapper.Save(ctx, inst))
		require.NoError(t, mapper.RemoveRecord(ctx, inst))

		err := mapper.Load(ctx, record.New(def, map[string]any{"email": "ada@example.com"}))
		assert.ErrorIs(t, err, record.ErrNotFound)
	})

	t.Run("idempotent for absent rows", func(t *testing.T) {
		t.Parallel()

		mapper, _ := newMapper(t)
		inst := record.New(userDefinition(t), map[string]any{schema.FieldID: int64(99)})

		assert.NoError(t, mapper.RemoveRecord(context.Background(), inst))
		assert.NoError(t, mapper.RemoveRecord(context.Background(), inst))
	})

	t.Run("requires a primary key value", func(t *testing.T) {
		t.Parallel()

		mapper, _ := newMapper(t)
		inst := record.New(userDefinition(t), map[string]any{"email": "ada@example.com"})

		err := mapper.RemoveRecord(context.Background(), inst)
		assert.ErrorIs(t, err, record.ErrNoIdentifier)
	})
}

func TestNewMapper(t *testing.T) {
	t.Parallel()

	_, err := record.NewMapper(nil)
	assert.ErrorIs(t, err, record.ErrNilStore)
}
