package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activitybot/internal/store"
)

func TestMemoryGetAbsent(t *testing.T) {
	t.Parallel()
	m := store.NewMemory()

	rec, err := m.Get(context.Background(), "user", "guild")
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Nil(t, rec)
}

func TestMemoryIncrements(t *testing.T) {
	t.Parallel()
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.AddMessages(ctx, "user", "guild", 1))
	require.NoError(t, m.AddMessages(ctx, "user", "guild", 1))
	require.NoError(t, m.AddVoiceSeconds(ctx, "user", "guild", 125))

	rec, err := m.Get(ctx, "user", "guild")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.MessageCount)
	assert.Equal(t, int64(125), rec.VoiceSeconds)
	assert.False(t, rec.LastUpdated.IsZero())
}

func TestMemoryKeysAreIndependent(t *testing.T) {
	t.Parallel()
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.AddMessages(ctx, "user", "guild-a", 3))
	require.NoError(t, m.AddMessages(ctx, "user", "guild-b", 7))

	a, err := m.Get(ctx, "user", "guild-a")
	require.NoError(t, err)
	b, err := m.Get(ctx, "user", "guild-b")
	require.NoError(t, err)
	assert.Equal(t, int64(3), a.MessageCount)
	assert.Equal(t, int64(7), b.MessageCount)
}

func TestMemoryConcurrentIncrements(t *testing.T) {
	t.Parallel()
	m := store.NewMemory()
	ctx := context.Background()

	const workers = 50
	const perWorker = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_ = m.AddMessages(ctx, "user", "guild", 1)
				_ = m.AddVoiceSeconds(ctx, "user", "guild", 2)
			}
		}()
	}
	wg.Wait()

	rec, err := m.Get(ctx, "user", "guild")
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), rec.MessageCount)
	assert.Equal(t, int64(workers*perWorker*2), rec.VoiceSeconds)
}

func TestMemoryTop(t *testing.T) {
	t.Parallel()
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.AddMessages(ctx, "alice", "guild", 10))
	require.NoError(t, m.AddMessages(ctx, "bob", "guild", 30))
	require.NoError(t, m.AddMessages(ctx, "carol", "guild", 20))
	require.NoError(t, m.AddMessages(ctx, "dave", "other-guild", 99))
	require.NoError(t, m.AddVoiceSeconds(ctx, "alice", "guild", 500))

	t.Run("by messages", func(t *testing.T) {
		totals, err := m.Top(ctx, "guild", store.MetricMessages, 2)
		require.NoError(t, err)
		require.Len(t, totals, 2)
		assert.Equal(t, "bob", totals[0].UserID)
		assert.Equal(t, int64(30), totals[0].Total)
		assert.Equal(t, "carol", totals[1].UserID)
	})

	t.Run("by voice", func(t *testing.T) {
		totals, err := m.Top(ctx, "guild", store.MetricVoice, 1)
		require.NoError(t, err)
		require.Len(t, totals, 1)
		assert.Equal(t, "alice", totals[0].UserID)
		assert.Equal(t, int64(500), totals[0].Total)
	})
}
