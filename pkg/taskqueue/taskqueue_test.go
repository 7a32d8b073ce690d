package taskqueue_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handybase/handy/pkg/taskqueue"
)

func TestMemoryStore_Enqueue(t *testing.T) {
	t.Parallel()

	t.Run("payload serialized to text", func(t *testing.T) {
		t.Parallel()

		store := taskqueue.NewMemoryStore()
		ctx := context.Background()

		require.NoError(t, store.Enqueue(ctx, "mail", false, map[string]any{"to": "a@b.com"}))

		items, err := store.Fetch(ctx, taskqueue.Filter{Type: "mail"}, true)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.JSONEq(t, `{"to":"a@b.com"}`, string(items[0].Payload))
	})

	t.Run("unserializable payload rejected", func(t *testing.T) {
		t.Parallel()

		store := taskqueue.NewMemoryStore()
		err := store.Enqueue(context.Background(), "mail", false, make(chan int))
		assert.ErrorIs(t, err, taskqueue.ErrPayloadMarshal)
	})
}

func TestMemoryStore_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("locks returned items", func(t *testing.T) {
		t.Parallel()

		store := taskqueue.NewMemoryStore()
		ctx := context.Background()
		require.NoError(t, store.Enqueue(ctx, "mail", false, "x"))

		items, err := store.Fetch(ctx, taskqueue.Filter{Type: "mail"}, true)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.True(t, items[0].Locked)

		// A second respectful fetch sees nothing.
		again, err := store.Fetch(ctx, taskqueue.Filter{Type: "mail"}, true)
		require.NoError(t, err)
		assert.Empty(t, again)
	})

	t.Run("filters by type", func(t *testing.T) {
		t.Parallel()

		store := taskqueue.NewMemoryStore()
		ctx := context.Background()
		require.NoError(t, store.Enqueue(ctx, "mail", false, "a"))
		require.NoError(t, store.Enqueue(ctx, "report", false, "b"))

		items, err := store.Fetch(ctx, taskqueue.Filter{Type: "mail"}, true)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "mail", items[0].Type)
	})

	t.Run("bypassing locks returns locked items", func(t *testing.T) {
		t.Parallel()

		store := taskqueue.NewMemoryStore()
		ctx := context.Background()
		require.NoError(t, store.Enqueue(ctx, "mail", true, "a"))

		items, err := store.Fetch(ctx, taskqueue.Filter{Type: "mail"}, false)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("at most one concurrent fetch wins an item", func(t *testing.T) {
		t.Parallel()

		store := taskqueue.NewMemoryStore()
		ctx := context.Background()
		require.NoError(t, store.Enqueue(ctx, "mail", false, "only"))

		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			total int
		)
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				items, err := store.Fetch(ctx, taskqueue.Filter{Type: "mail"}, true)
				assert.NoError(t, err)
				mu.Lock()
				total += len(items)
				mu.Unlock()
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, total)
	})
}

func TestMemoryStore_LockRecovery(t *testing.T) {
	t.Parallel()

	store := taskqueue.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Enqueue(ctx, "mail", false, "x"))

	items, err := store.Fetch(ctx, taskqueue.Filter{Type: "mail"}, true)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// Consumer reports failure: the item goes back to the unlocked pool.
	require.NoError(t, store.SetLockStatus(ctx, items[0], false))

	retried, err := store.Fetch(ctx, taskqueue.Filter{Type: "mail"}, true)
	require.NoError(t, err)
	assert.Len(t, retried, 1)
}

func TestMemoryStore_Remove(t *testing.T) {
	t.Parallel()

	store := taskqueue.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Enqueue(ctx, "mail", false, "x"))

	items, err := store.Fetch(ctx, taskqueue.Filter{Type: "mail"}, true)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, store.Remove(ctx, items[0]))
	assert.Zero(t, store.Len())

	// Removing again is harmless.
	assert.NoError(t, store.Remove(ctx, items[0]))
}
