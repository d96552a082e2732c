package idempotency

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client, "test:processed:")

	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestRedisStore_FirstCallerWins(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	outcome, err := store.TryMarkProcessed(ctx, "cs_123")
	require.NoError(t, err)
	assert.Equal(t, JustMarked, outcome)

	outcome, err = store.TryMarkProcessed(ctx, "cs_123")
	require.NoError(t, err)
	assert.Equal(t, AlreadyMarked, outcome)
}

func TestRedisStore_SessionsAreIndependent(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	outcome, err := store.TryMarkProcessed(ctx, "cs_a")
	require.NoError(t, err)
	assert.Equal(t, JustMarked, outcome)

	outcome, err = store.TryMarkProcessed(ctx, "cs_b")
	require.NoError(t, err)
	assert.Equal(t, JustMarked, outcome)
}

func TestRedisStore_UnmarkRestoresClaim(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	_, err := store.TryMarkProcessed(ctx, "cs_retry")
	require.NoError(t, err)

	require.NoError(t, store.Unmark(ctx, "cs_retry"))

	outcome, err := store.TryMarkProcessed(ctx, "cs_retry")
	require.NoError(t, err)
	assert.Equal(t, JustMarked, outcome)
}

func TestRedisStore_ConcurrentClaims(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	const callers = 16
	var wg sync.WaitGroup
	outcomes := make([]Outcome, callers)
	errors := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errors[i] = store.TryMarkProcessed(ctx, "cs_race")
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < callers; i++ {
		require.NoError(t, errors[i])
		if outcomes[i] == JustMarked {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one caller must claim the session")
}
