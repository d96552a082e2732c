package idempotency

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IncDrops/breakup/internal/models"
	"github.com/IncDrops/breakup/internal/stripeapi"
)

func createFakeSession(t *testing.T, fake *stripeapi.Fake) string {
	t.Helper()

	sess, err := fake.CreateCheckoutSession(context.Background(), stripeapi.CreateParams{
		UnitAmount:  100,
		Currency:    "usd",
		ProductName: "AI Breakup Text",
		Quantity:    1,
		Metadata: map[string]string{
			models.MetadataKeyReason:  "they snore",
			models.MetadataKeyPersona: "toxic",
		},
	})
	require.NoError(t, err)
	return sess.ID
}

func TestMetadataStore_MarkAndRemark(t *testing.T) {
	fake := stripeapi.NewFake()
	store := NewMetadataStore(fake)
	ctx := context.Background()

	id := createFakeSession(t, fake)

	outcome, err := store.TryMarkProcessed(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, JustMarked, outcome)

	outcome, err = store.TryMarkProcessed(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, AlreadyMarked, outcome)

	sess, err := fake.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "true", sess.Metadata[models.MetadataKeyGenerated])
}

func TestMetadataStore_UnmarkRestoresClaim(t *testing.T) {
	fake := stripeapi.NewFake()
	store := NewMetadataStore(fake)
	ctx := context.Background()

	id := createFakeSession(t, fake)

	_, err := store.TryMarkProcessed(ctx, id)
	require.NoError(t, err)
	require.NoError(t, store.Unmark(ctx, id))

	outcome, err := store.TryMarkProcessed(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, JustMarked, outcome)
}

func TestMetadataStore_UnknownSession(t *testing.T) {
	store := NewMetadataStore(stripeapi.NewFake())

	_, err := store.TryMarkProcessed(context.Background(), "cs_missing")
	assert.Error(t, err)
}
