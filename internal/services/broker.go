package services

import (
	"context"
	"time"

	"github.com/IncDrops/breakup/internal/config"
	"github.com/IncDrops/breakup/internal/errs"
	"github.com/IncDrops/breakup/internal/models"
	"github.com/IncDrops/breakup/internal/stripeapi"
)

// UnitPriceCents is the fixed price of one generation, in minor currency
// units (100 = $1.00)
const UnitPriceCents = 100

const productName = "AI Breakup Text"

// SessionBroker creates and retrieves payment sessions against the provider,
// encoding the Intent as session metadata so it survives the redirect
// round-trip.
type SessionBroker struct {
	cfg *config.Config
	api stripeapi.API
}

// NewSessionBroker creates a session broker
func NewSessionBroker(cfg *config.Config, api stripeapi.API) *SessionBroker {
	return &SessionBroker{cfg: cfg, api: api}
}

// CreatedSession is the outcome of CreateSession
type CreatedSession struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// CreateSession validates configuration, opens a provider checkout for the
// fixed unit price and returns the provider-assigned session identifier.
func (b *SessionBroker) CreateSession(ctx context.Context, intent models.Intent) (*CreatedSession, error) {
	if missing := b.cfg.Missing(b.requiredConfig()...); len(missing) > 0 {
		return nil, errs.MissingConfig(missing)
	}

	base := b.cfg.AppBaseURL
	sess, err := b.api.CreateCheckoutSession(ctx, stripeapi.CreateParams{
		UnitAmount:         UnitPriceCents,
		Currency:           "usd",
		ProductName:        productName,
		ProductDescription: "Persona: " + string(intent.Persona),
		Quantity:           1,
		SuccessURL:         base + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:          base + "/",
		Metadata: map[string]string{
			models.MetadataKeyReason:  intent.Reason,
			models.MetadataKeyPersona: string(intent.Persona),
		},
	})
	if err != nil {
		return nil, errs.FromProvider(err)
	}

	return &CreatedSession{SessionID: sess.ID, CheckoutURL: sess.URL}, nil
}

// RetrieveSession fetches the provider session and reconstructs the Session,
// re-deriving the Intent and the processed flag from metadata.
func (b *SessionBroker) RetrieveSession(ctx context.Context, sessionID string) (*models.Session, error) {
	raw, err := b.api.GetSession(ctx, sessionID)
	if err != nil {
		return nil, errs.FromProvider(err)
	}

	persona, err := models.ParsePersona(raw.Metadata[models.MetadataKeyPersona])
	if err != nil {
		// Metadata is written by CreateSession; a missing persona means the
		// session was not created by this system.
		return nil, errs.Newf(errs.KindProvider, "session %s carries no persona metadata", sessionID)
	}

	return &models.Session{
		ID: raw.ID,
		Intent: models.Intent{
			Reason:  raw.Metadata[models.MetadataKeyReason],
			Persona: persona,
		},
		PaymentStatus: paymentStatusFrom(raw.PaymentStatus),
		Processed:     raw.Metadata[models.MetadataKeyGenerated] == "true",
		CreatedAt:     time.Unix(raw.Created, 0).UTC(),
	}, nil
}

// MarkGenerated mirrors the processed marker into provider metadata so the
// session reads as exhausted regardless of which idempotency backend claimed
// it.
func (b *SessionBroker) MarkGenerated(ctx context.Context, sessionID string) error {
	_, err := b.api.UpdateMetadata(ctx, sessionID, map[string]string{
		models.MetadataKeyGenerated: "true",
	})
	return err
}

func (b *SessionBroker) requiredConfig() []string {
	if b.cfg.UseFakeProvider {
		return []string{config.EnvAppBaseURL}
	}
	return []string{config.EnvStripeSecretKey, config.EnvAppBaseURL}
}

// paymentStatusFrom maps provider payment states onto ours. Paid means full
// settlement; anything unrecognized is Unknown and treated as not settled.
func paymentStatusFrom(s string) models.PaymentStatus {
	switch s {
	case "paid":
		return models.PaymentPaid
	case "unpaid", "no_payment_required":
		return models.PaymentUnpaid
	default:
		return models.PaymentUnknown
	}
}
