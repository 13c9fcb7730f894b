package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedEvent(id string, received time.Time) StoredEvent {
	raw, _ := json.Marshal(map[string]string{"id": id, "type": "error"})
	return StoredEvent{
		ID:       id,
		Type:     "error",
		Service:  "checkout",
		Received: received,
		Raw:      raw,
	}
}

// storeTest exercises the Store contract against any implementation.
func storeTest(t *testing.T, store Store) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	var batch []StoredEvent
	for i := 0; i < 5; i++ {
		batch = append(batch, storedEvent(fmt.Sprintf("e%d", i), base.Add(time.Duration(i)*time.Millisecond)))
	}
	require.NoError(t, store.Append(ctx, batch))

	t.Run("recent newest first", func(t *testing.T) {
		events, err := store.Recent(ctx, 3)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, "e4", events[0].ID)
		assert.Equal(t, "e3", events[1].ID)
		assert.Equal(t, "e2", events[2].ID)
	})

	t.Run("recent limit beyond size", func(t *testing.T) {
		events, err := store.Recent(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, events, 5)
	})

	t.Run("raw payload preserved", func(t *testing.T) {
		events, err := store.Recent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, events, 1)

		var decoded map[string]string
		require.NoError(t, json.Unmarshal(events[0].Raw, &decoded))
		assert.Equal(t, "e4", decoded["id"])
	})

	t.Run("resolution lifecycle", func(t *testing.T) {
		resolved, err := store.Resolved(ctx, "fp-1")
		require.NoError(t, err)
		assert.False(t, resolved)

		require.NoError(t, store.MarkResolved(ctx, "fp-1"))

		resolved, err = store.Resolved(ctx, "fp-1")
		require.NoError(t, err)
		assert.True(t, resolved)

		// Marking twice is fine.
		require.NoError(t, store.MarkResolved(ctx, "fp-1"))
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	storeTest(t, store)
}

func TestBadgerStore(t *testing.T) {
	store, err := NewBadgerStore(BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	defer store.Close()
	storeTest(t, store)
}

func TestBadgerStoreHonorsContext(t *testing.T) {
	store, err := NewBadgerStore(BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Append(ctx, []StoredEvent{storedEvent("e1", time.Now())}), context.Canceled)
	_, err = store.Recent(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
}
