package idempotency

import (
	"context"
	"fmt"

	"github.com/IncDrops/breakup/internal/models"
	"github.com/IncDrops/breakup/internal/stripeapi"
)

// MetadataStore persists the processed marker in the payment provider's own
// session metadata. The provider offers no compare-and-set, so two
// near-simultaneous completions can both read an unset marker before either
// writes it: a known race window that costs the operator a duplicate engine
// call, never the customer. Deployments that can run Redis should prefer
// RedisStore.
type MetadataStore struct {
	api stripeapi.API
}

// NewMetadataStore creates the provider-metadata fallback store
func NewMetadataStore(api stripeapi.API) *MetadataStore {
	return &MetadataStore{api: api}
}

// TryMarkProcessed reads then writes the `generated` metadata key
func (s *MetadataStore) TryMarkProcessed(ctx context.Context, sessionID string) (Outcome, error) {
	sess, err := s.api.GetSession(ctx, sessionID)
	if err != nil {
		return AlreadyMarked, fmt.Errorf("read processed marker: %w", err)
	}
	if sess.Metadata[models.MetadataKeyGenerated] == "true" {
		return AlreadyMarked, nil
	}

	if _, err := s.api.UpdateMetadata(ctx, sessionID, map[string]string{
		models.MetadataKeyGenerated: "true",
	}); err != nil {
		return AlreadyMarked, fmt.Errorf("write processed marker: %w", err)
	}
	return JustMarked, nil
}

// Unmark clears the `generated` metadata key
func (s *MetadataStore) Unmark(ctx context.Context, sessionID string) error {
	if _, err := s.api.UpdateMetadata(ctx, sessionID, map[string]string{
		models.MetadataKeyGenerated: "",
	}); err != nil {
		return fmt.Errorf("clear processed marker: %w", err)
	}
	return nil
}
