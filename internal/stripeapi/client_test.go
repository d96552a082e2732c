package stripeapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateCheckoutSession(t *testing.T) {
	var gotForm map[string][]string
	var gotIdempotencyKey, gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		gotIdempotencyKey = r.Header.Get("Idempotency-Key")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{
			"id": "cs_test_abc",
			"url": "https://checkout.stripe.com/pay/cs_test_abc",
			"status": "open",
			"payment_status": "unpaid",
			"metadata": {"reason": "they snore", "persona": "toxic"},
			"created": 1700000000
		}`))
	}))
	defer server.Close()

	client := NewClient("sk_test_123", server.URL)
	sess, err := client.CreateCheckoutSession(context.Background(), CreateParams{
		UnitAmount:         100,
		Currency:           "usd",
		ProductName:        "AI Breakup Text",
		ProductDescription: "Persona: toxic",
		Quantity:           1,
		SuccessURL:         "https://breakup.example/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:          "https://breakup.example/",
		Metadata:           map[string]string{"reason": "they snore", "persona": "toxic"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_abc", sess.ID)
	assert.Equal(t, "unpaid", sess.PaymentStatus)

	assert.Equal(t, "Bearer sk_test_123", gotAuth)
	assert.NotEmpty(t, gotIdempotencyKey)
	assert.Equal(t, "payment", gotForm["mode"][0])
	assert.Equal(t, "100", gotForm["line_items[0][price_data][unit_amount]"][0])
	assert.Equal(t, "usd", gotForm["line_items[0][price_data][currency]"][0])
	assert.Equal(t, "1", gotForm["line_items[0][quantity]"][0])
	assert.Equal(t, "they snore", gotForm["metadata[reason]"][0])
	assert.Equal(t, "toxic", gotForm["metadata[persona]"][0])
}

func TestClient_GetSession_UnknownID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"type": "invalid_request_error", "code": "resource_missing", "message": "No such checkout.session: 'cs_missing'"}}`))
	}))
	defer server.Close()

	client := NewClient("sk_test_123", server.URL)
	_, err := client.GetSession(context.Background(), "cs_missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "resource_missing", apiErr.Code)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": {"type": "api_error", "message": "temporary"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id": "cs_test_ok", "status": "open", "payment_status": "unpaid", "metadata": {}, "created": 1700000000}`))
	}))
	defer server.Close()

	client := NewClient("sk_test_123", server.URL)
	sess, err := client.GetSession(context.Background(), "cs_test_ok")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_ok", sess.ID)
	assert.Equal(t, 3, attempts)
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"type": "invalid_request_error", "message": "Invalid API Key provided"}}`))
	}))
	defer server.Close()

	client := NewClient("sk_bad", server.URL)
	_, err := client.GetSession(context.Background(), "cs_any")
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestFake_SettleAndUpdate(t *testing.T) {
	fake := NewFake()
	ctx := context.Background()

	sess, err := fake.CreateCheckoutSession(ctx, CreateParams{
		UnitAmount: 100, Currency: "usd", ProductName: "AI Breakup Text", Quantity: 1,
		Metadata: map[string]string{"persona": "hr"},
	})
	require.NoError(t, err)

	require.NoError(t, fake.Settle(sess.ID))
	got, err := fake.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", got.PaymentStatus)

	_, err = fake.UpdateMetadata(ctx, sess.ID, map[string]string{"generated": "true"})
	require.NoError(t, err)
	got, err = fake.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "true", got.Metadata["generated"])
	assert.Equal(t, "hr", got.Metadata["persona"])
}
