package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MAILMUSE_BACK-END/internal/config"
)

const testSecret = "whsec_test"

func TestVerifySignatureAcceptsValidHeader(t *testing.T) {
	payload := []byte(`{"type":"checkout.completed"}`)
	now := time.Now()

	header := Sign(payload, testSecret, now)
	assert.NoError(t, VerifySignature(payload, header, testSecret, now))
}

func TestVerifySignatureRejectsMissingHeader(t *testing.T) {
	err := VerifySignature([]byte("{}"), "", testSecret, time.Now())
	assert.ErrorIs(t, err, ErrMissingSignature)

	// No secret configured means nothing can be verified
	err = VerifySignature([]byte("{}"), "t=1,v1=aa", "", time.Now())
	assert.ErrorIs(t, err, ErrMissingSignature)
}

func TestVerifySignatureRejectsTamperedPayload(t *testing.T) {
	payload := []byte(`{"type":"checkout.completed"}`)
	now := time.Now()
	header := Sign(payload, testSecret, now)

	err := VerifySignature([]byte(`{"type":"subscription.canceled"}`), header, testSecret, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{}`)
	now := time.Now()
	header := Sign(payload, "whsec_other", now)

	err := VerifySignature(payload, header, testSecret, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignatureRejectsStaleTimestamp(t *testing.T) {
	payload := []byte(`{}`)
	signedAt := time.Now().Add(-10 * time.Minute)
	header := Sign(payload, testSecret, signedAt)

	err := VerifySignature(payload, header, testSecret, time.Now())
	assert.ErrorIs(t, err, ErrStaleSignature)
}

func TestVerifySignatureRejectsGarbageHeader(t *testing.T) {
	for _, header := range []string{"nonsense", "t=abc,v1=zz", "v1=deadbeef", "t=123"} {
		err := VerifySignature([]byte("{}"), header, testSecret, time.Now())
		assert.Error(t, err, "header %q should be rejected", header)
	}
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"id":"evt_1","type":"checkout.completed","data":{"client_reference_id":"user-1","subscription_id":"sub_9"}}`))
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, ev.Type)
	assert.Equal(t, "user-1", ev.Data.UserID)
	assert.Equal(t, "sub_9", ev.Data.SubscriptionID)

	_, err = ParseEvent([]byte(`not json`))
	assert.Error(t, err)

	_, err = ParseEvent([]byte(`{"data":{}}`))
	assert.Error(t, err, "event without a type is rejected")
}

func TestCreateCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user-1", req["client_reference_id"])
		assert.Equal(t, "price_pro", req["price_id"])

		json.NewEncoder(w).Encode(map[string]string{"id": "cs_1", "url": "https://pay.example.com/cs_1"})
	}))
	defer srv.Close()

	client := NewClient(config.BillingConfig{
		APIBase: srv.URL,
		APIKey:  "sk_test",
		PriceID: "price_pro",
	})

	url, err := client.CreateCheckoutSession(context.Background(), "user-1", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/cs_1", url)
}

func TestCreateCheckoutSessionProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	client := NewClient(config.BillingConfig{APIBase: srv.URL, APIKey: "sk_test"})
	_, err := client.CreateCheckoutSession(context.Background(), "user-1", "a@b.com")
	assert.ErrorContains(t, err, "402")
}

func TestCreateCheckoutSessionUnconfigured(t *testing.T) {
	client := NewClient(config.BillingConfig{})
	_, err := client.CreateCheckoutSession(context.Background(), "user-1", "a@b.com")
	assert.ErrorContains(t, err, "not configured")
}
