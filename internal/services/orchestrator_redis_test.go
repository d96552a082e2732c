package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IncDrops/breakup/internal/engine"
	"github.com/IncDrops/breakup/internal/errs"
	"github.com/IncDrops/breakup/internal/idempotency"
	"github.com/IncDrops/breakup/internal/models"
	"github.com/IncDrops/breakup/internal/stripeapi"
)

// The paid flow with the atomic Redis guard instead of provider metadata.
func TestCompleteSessionAndGenerate_RedisGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	guard := idempotency.NewRedisStoreFromClient(client, "test:processed:")
	t.Cleanup(func() { _ = guard.Close() })

	cfg := testConfig()
	fake := stripeapi.NewFake()
	mock := &engine.Mock{Responses: []json.RawMessage{validEngineOutput("Recipient")}}
	broker := NewSessionBroker(cfg, fake)
	orch := NewOrchestrator(cfg, broker, guard, NewGenerationService(mock, ""), nil)
	ctx := context.Background()

	created, err := orch.CreateSession(ctx, models.Intent{Reason: "they snore", Persona: models.PersonaToxic})
	require.NoError(t, err)
	require.NoError(t, fake.Settle(created.SessionID))

	res, err := orch.CompleteSessionAndGenerate(ctx, created.SessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Result.TextBody)

	// The marker is mirrored into provider metadata on success.
	sess, err := broker.RetrieveSession(ctx, created.SessionID)
	require.NoError(t, err)
	assert.True(t, sess.Processed)

	_, err = orch.CompleteSessionAndGenerate(ctx, created.SessionID)
	require.Error(t, err)
	assert.Equal(t, errs.KindAlreadyProcessed, errs.KindOf(err))
	assert.Equal(t, 1, mock.CallCount())
}

// A claim held in Redis blocks generation even when provider metadata has not
// caught up yet.
func TestCompleteSessionAndGenerate_RedisClaimWins(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	guard := idempotency.NewRedisStoreFromClient(client, "test:processed:")
	t.Cleanup(func() { _ = guard.Close() })

	cfg := testConfig()
	fake := stripeapi.NewFake()
	mock := &engine.Mock{}
	broker := NewSessionBroker(cfg, fake)
	orch := NewOrchestrator(cfg, broker, guard, NewGenerationService(mock, ""), nil)
	ctx := context.Background()

	created, err := orch.CreateSession(ctx, models.Intent{Reason: "whatever", Persona: models.PersonaHR})
	require.NoError(t, err)
	require.NoError(t, fake.Settle(created.SessionID))

	outcome, err := guard.TryMarkProcessed(ctx, created.SessionID)
	require.NoError(t, err)
	require.Equal(t, idempotency.JustMarked, outcome)

	_, err = orch.CompleteSessionAndGenerate(ctx, created.SessionID)
	require.Error(t, err)
	assert.Equal(t, errs.KindAlreadyProcessed, errs.KindOf(err))
	assert.Equal(t, 0, mock.CallCount())
}
