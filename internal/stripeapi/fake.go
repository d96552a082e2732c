package stripeapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Fake holds checkout sessions in memory. It backs local development (no
// Stripe account required) and every test that exercises the payment flow.
type Fake struct {
	mu       sync.Mutex
	sessions map[string]*CheckoutSession

	// Call counters for assertions
	CreateCalls int
	GetCalls    int
	UpdateCalls int

	// CreateErr, when set, is returned by CreateCheckoutSession
	CreateErr error
	// GetErr, when set, is returned by GetSession
	GetErr error
	// UpdateErr, when set, is returned by UpdateMetadata
	UpdateErr error
}

// NewFake creates an empty in-memory provider
func NewFake() *Fake {
	return &Fake{sessions: make(map[string]*CheckoutSession)}
}

func (f *Fake) CreateCheckoutSession(_ context.Context, params CreateParams) (*CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.CreateCalls++
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}

	metadata := make(map[string]string, len(params.Metadata))
	for k, v := range params.Metadata {
		metadata[k] = v
	}

	id := "cs_fake_" + uuid.NewString()
	sess := &CheckoutSession{
		ID:            id,
		URL:           fmt.Sprintf("https://checkout.fake.local/pay/%s", id),
		Status:        "open",
		PaymentStatus: "unpaid",
		AmountTotal:   params.UnitAmount * params.Quantity,
		Currency:      params.Currency,
		Metadata:      metadata,
		Created:       time.Now().Unix(),
	}
	f.sessions[id] = sess
	return copySession(sess), nil
}

func (f *Fake) GetSession(_ context.Context, sessionID string) (*CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.GetCalls++
	if f.GetErr != nil {
		return nil, f.GetErr
	}

	sess, ok := f.sessions[sessionID]
	if !ok {
		return nil, &APIError{
			Type:       "invalid_request_error",
			Code:       "resource_missing",
			Message:    fmt.Sprintf("No such checkout.session: '%s'", sessionID),
			StatusCode: http.StatusNotFound,
		}
	}
	return copySession(sess), nil
}

func (f *Fake) UpdateMetadata(_ context.Context, sessionID string, metadata map[string]string) (*CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.UpdateCalls++
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}

	sess, ok := f.sessions[sessionID]
	if !ok {
		return nil, &APIError{
			Type:       "invalid_request_error",
			Code:       "resource_missing",
			Message:    fmt.Sprintf("No such checkout.session: '%s'", sessionID),
			StatusCode: http.StatusNotFound,
		}
	}
	for k, v := range metadata {
		sess.Metadata[k] = v
	}
	return copySession(sess), nil
}

// Settle marks a session as paid, simulating checkout completion
func (f *Fake) Settle(sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	sess, ok := f.sessions[sessionID]
	if !ok {
		return fmt.Errorf("no such session: %s", sessionID)
	}
	sess.Status = "complete"
	sess.PaymentStatus = "paid"
	return nil
}

func copySession(sess *CheckoutSession) *CheckoutSession {
	out := *sess
	out.Metadata = make(map[string]string, len(sess.Metadata))
	for k, v := range sess.Metadata {
		out.Metadata[k] = v
	}
	return &out
}
