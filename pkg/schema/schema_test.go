package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handybase/handy/pkg/schema"
)

func userDefinition() schema.Definition {
	return schema.Definition{
		Table: "users",
		Fields: []schema.Field{
			{Name: "name", Type: "VARCHAR(255)"},
			{Name: "email", Type: "VARCHAR(255)", Unique: true},
			{Name: "verified", Type: schema.TypeBoolean, NotNull: true, Default: false, Logical: schema.LogicalBool},
			{Name: "roles", Type: "VARCHAR(512)", Logical: schema.LogicalArray},
		},
	}
}

func TestCompose(t *testing.T) {
	t.Parallel()

	t.Run("appends base fields after caller fields", func(t *testing.T) {
		t.Parallel()

		composed, err := schema.Compose(userDefinition())
		require.NoError(t, err)

		names := composed.Names()
		require.Len(t, names, 8)
		assert.Equal(t, []string{"name", "email", "verified", "roles", "id", "created_at", "updated_at", "deleted"}, names)
	})

	t.Run("base field never overwrites caller field", func(t *testing.T) {
		t.Parallel()

		def := schema.Definition{
			Table: "sessions",
			Fields: []schema.Field{
				{Name: "deleted", Type: "VARCHAR(40)"},
			},
		}

		composed, err := schema.Compose(def)
		require.NoError(t, err)

		deleted := composed.Field("deleted")
		require.NotNil(t, deleted)
		assert.Equal(t, "VARCHAR(40)", deleted.Type)
		assert.Equal(t, schema.LogicalNone, deleted.Logical)

		// Only one deleted field total.
		count := 0
		for _, name := range composed.Names() {
			if name == "deleted" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		once, err := schema.Compose(userDefinition())
		require.NoError(t, err)

		twice, err := schema.Compose(once)
		require.NoError(t, err)

		assert.Equal(t, once, twice)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		t.Parallel()

		def := userDefinition()
		_, err := schema.Compose(def)
		require.NoError(t, err)

		assert.Len(t, def.Fields, 4)
	})

	t.Run("missing table name", func(t *testing.T) {
		t.Parallel()

		_, err := schema.Compose(schema.Definition{Fields: []schema.Field{{Name: "x", Type: schema.TypeText}}})
		assert.ErrorIs(t, err, schema.ErrMissingTable)
	})

	t.Run("multiple primary keys", func(t *testing.T) {
		t.Parallel()

		def := schema.Definition{
			Table: "broken",
			Fields: []schema.Field{
				{Name: "a", Type: schema.TypeBigInt, PrimaryKey: true},
				{Name: "b", Type: schema.TypeBigInt, PrimaryKey: true},
			},
		}
		_, err := schema.Compose(def)
		assert.ErrorIs(t, err, schema.ErrMultiplePrimaryKeys)
	})

	t.Run("caller primary key suppresses base id", func(t *testing.T) {
		t.Parallel()

		def := schema.Definition{
			Table: "tokens",
			Fields: []schema.Field{
				{Name: "token", Type: "VARCHAR(64)", PrimaryKey: true},
			},
		}

		composed, err := schema.Compose(def)
		require.NoError(t, err)

		assert.Nil(t, composed.Field("id"))
		pk := composed.PrimaryKey()
		require.NotNil(t, pk)
		assert.Equal(t, "token", pk.Name)
	})
}

func TestDefinitionHelpers(t *testing.T) {
	t.Parallel()

	composed, err := schema.Compose(userDefinition())
	require.NoError(t, err)

	t.Run("primary key", func(t *testing.T) {
		t.Parallel()

		pk := composed.PrimaryKey()
		require.NotNil(t, pk)
		assert.Equal(t, schema.FieldID, pk.Name)
		assert.True(t, pk.AutoGenerated)
	})

	t.Run("key set includes unique, indexed and primary key fields", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []string{"email", "id"}, composed.KeySet())
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, composed.Field("nope"))
	})
}
