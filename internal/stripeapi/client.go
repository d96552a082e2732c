// Package stripeapi is a narrow client for the Stripe Checkout Sessions API.
// Only the three calls this product needs are implemented: create a checkout
// session, retrieve it, and update its metadata.
package stripeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the live Stripe API endpoint
	DefaultBaseURL = "https://api.stripe.com/v1"

	maxRetries = 3
)

// CheckoutSession is the subset of Stripe's checkout session object we read
type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
	Created       int64             `json:"created"`
}

// CreateParams describes a single fixed-price checkout session
type CreateParams struct {
	UnitAmount         int64
	Currency           string
	ProductName        string
	ProductDescription string
	Quantity           int64
	SuccessURL         string
	CancelURL          string
	Metadata           map[string]string
}

// API is the narrow payment-provider contract consumed by the session broker
// and the metadata idempotency store. Tests substitute the in-memory Fake.
type API interface {
	CreateCheckoutSession(ctx context.Context, params CreateParams) (*CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	UpdateMetadata(ctx context.Context, sessionID string, metadata map[string]string) (*CheckoutSession, error)
}

// APIError is a typed Stripe API failure
type APIError struct {
	Type       string `json:"type"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stripe error (%d %s): %s", e.StatusCode, e.Code, e.Message)
}

// Client implements API against the Stripe REST endpoint
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a Stripe client. Pass DefaultBaseURL outside of tests.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateCheckoutSession opens a hosted checkout for a fixed unit price. The
// request carries a fresh Idempotency-Key so a transport-level retry cannot
// open two provider sessions.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CreateParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("line_items[0][price_data][currency]", params.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.UnitAmount, 10))
	form.Set("line_items[0][price_data][product_data][name]", params.ProductName)
	if params.ProductDescription != "" {
		form.Set("line_items[0][price_data][product_data][description]", params.ProductDescription)
	}
	form.Set("line_items[0][quantity]", strconv.FormatInt(params.Quantity, 10))
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	for k, v := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var sess CheckoutSession
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}
	if err := c.doRequestWithRetry(ctx, http.MethodPost, "/checkout/sessions", form, headers, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// GetSession retrieves a checkout session by its provider-assigned id
func (c *Client) GetSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	var sess CheckoutSession
	if err := c.doRequestWithRetry(ctx, http.MethodGet, "/checkout/sessions/"+url.PathEscape(sessionID), nil, nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// UpdateMetadata merges the given keys into the session's metadata
func (c *Client) UpdateMetadata(ctx context.Context, sessionID string, metadata map[string]string) (*CheckoutSession, error) {
	form := url.Values{}
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var sess CheckoutSession
	if err := c.doRequestWithRetry(ctx, http.MethodPost, "/checkout/sessions/"+url.PathEscape(sessionID), form, nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *Client) doRequestWithRetry(ctx context.Context, method, endpoint string, form url.Values, headers map[string]string, result any) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		var body io.Reader
		if form != nil {
			body = strings.NewReader(form.Encode())
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("stripe request failed: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = c.handleErrorResponse(resp)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return c.handleErrorResponse(resp)
		}

		err = json.NewDecoder(resp.Body).Decode(result)
		_ = resp.Body.Close()
		return err
	}

	return lastErr
}

func (c *Client) handleErrorResponse(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	raw, _ := io.ReadAll(resp.Body)

	var wrapper struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Error != nil {
		wrapper.Error.StatusCode = resp.StatusCode
		return wrapper.Error
	}

	return &APIError{StatusCode: resp.StatusCode, Message: string(raw)}
}
