package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/IncDrops/breakup/internal/config"
	"github.com/IncDrops/breakup/internal/errs"
	"github.com/IncDrops/breakup/internal/idempotency"
	"github.com/IncDrops/breakup/internal/models"
	"github.com/IncDrops/breakup/internal/observability"
)

// Orchestrator composes the broker, verifier, idempotency store and
// generation service into the user-facing operations. It owns all logging;
// the inner components only return typed failures.
type Orchestrator struct {
	cfg      *config.Config
	broker   *SessionBroker
	verifier PaymentVerifier
	guard    idempotency.Store
	gen      *GenerationService
	log      *zap.Logger
}

// NewOrchestrator wires the orchestration core
func NewOrchestrator(cfg *config.Config, broker *SessionBroker, guard idempotency.Store, gen *GenerationService, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		cfg:    cfg,
		broker: broker,
		guard:  guard,
		gen:    gen,
		log:    log,
	}
}

// CompletionResult is the outcome of a paid generation
type CompletionResult struct {
	Result  *models.GenerationResult `json:"result"`
	Persona models.Persona           `json:"persona"`
}

// CreateSession opens a payment session with the intent embedded as metadata
func (o *Orchestrator) CreateSession(ctx context.Context, intent models.Intent) (*CreatedSession, error) {
	created, err := o.broker.CreateSession(ctx, intent)
	if err != nil {
		o.log.Warn("create session failed",
			zap.String("persona", string(intent.Persona)),
			zap.Error(err))
		return nil, err
	}

	observability.RecordSessionCreated(string(intent.Persona))
	o.log.Info("payment session created",
		zap.String("session_id", created.SessionID),
		zap.String("persona", string(intent.Persona)))
	return created, nil
}

// CompleteSessionAndGenerate runs the paid flow: retrieve the session, verify
// settlement, claim the processed marker, generate, and release the claim if
// generation fails. The generation engine is never invoked for an unpaid or
// already-processed session.
func (o *Orchestrator) CompleteSessionAndGenerate(ctx context.Context, sessionID string) (*CompletionResult, error) {
	start := time.Now()
	res, err := o.completeSession(ctx, sessionID)
	if err != nil {
		observability.RecordCompletion(completionOutcome(err), time.Since(start))
		o.log.Warn("session completion failed",
			zap.String("session_id", sessionID),
			zap.String("kind", completionOutcome(err)),
			zap.Error(err))
		return nil, err
	}

	observability.RecordCompletion("generated", time.Since(start))
	o.log.Info("session completed",
		zap.String("session_id", sessionID),
		zap.String("persona", string(res.Persona)))
	return res, nil
}

func (o *Orchestrator) completeSession(ctx context.Context, sessionID string) (*CompletionResult, error) {
	required := append(o.broker.requiredConfig(), config.EnvGeminiAPIKey)
	if missing := o.cfg.Missing(required...); len(missing) > 0 {
		return nil, errs.MissingConfig(missing)
	}

	sess, err := o.broker.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if o.verifier.Classify(sess) != VerdictPaid {
		return nil, errs.New(errs.KindPaymentUnpaid,
			"payment for this session has not settled; complete checkout and try again")
	}

	if sess.Processed {
		return nil, errs.New(errs.KindAlreadyProcessed,
			"this session already delivered its generation; a new session is required for another text")
	}

	outcome, err := o.guard.TryMarkProcessed(ctx, sessionID)
	if err != nil {
		// Marker state is unknown but nothing was generated; the caller may
		// retry against the same paid session.
		return nil, errs.Wrap(errs.KindProvider, "idempotency check failed", err)
	}
	if outcome == idempotency.AlreadyMarked {
		return nil, errs.New(errs.KindAlreadyProcessed,
			"this session already delivered its generation; a new session is required for another text")
	}

	genStart := time.Now()
	result, err := o.gen.Generate(ctx, sess.Intent)
	observability.RecordGeneration(string(sess.Intent.Persona), generationStatus(err), time.Since(genStart))
	if err != nil {
		// Release the claim so the paid user can retry after a transient
		// upstream failure.
		if unmarkErr := o.guard.Unmark(ctx, sessionID); unmarkErr != nil {
			o.log.Error("failed to release processed marker after generation failure",
				zap.String("session_id", sessionID),
				zap.Error(unmarkErr))
		}
		return nil, err
	}

	// Mirror the marker into provider metadata so retrieved sessions read as
	// exhausted no matter which idempotency backend holds the claim.
	if err := o.broker.MarkGenerated(ctx, sessionID); err != nil {
		o.log.Error("failed to mirror processed marker to provider metadata",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	return &CompletionResult{Result: result, Persona: sess.Intent.Persona}, nil
}

// GenerateDirect bypasses the payment and idempotency path entirely. It
// carries none of the paid-flow guarantees.
func (o *Orchestrator) GenerateDirect(ctx context.Context, intent models.Intent) (*models.GenerationResult, error) {
	if missing := o.cfg.Missing(config.EnvGeminiAPIKey); len(missing) > 0 {
		return nil, errs.MissingConfig(missing)
	}

	start := time.Now()
	result, err := o.gen.Generate(ctx, intent)
	observability.RecordGeneration(string(intent.Persona), generationStatus(err), time.Since(start))
	if err != nil {
		o.log.Warn("direct generation failed",
			zap.String("persona", string(intent.Persona)),
			zap.Error(err))
		return nil, err
	}
	return result, nil
}

func completionOutcome(err error) string {
	if kind := errs.KindOf(err); kind != "" {
		return string(kind)
	}
	return "internal_error"
}

func generationStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
