package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"MAILMUSE_BACK-END/internal/billing"
	"MAILMUSE_BACK-END/internal/config"
)

// fakePlanStore records the plan update the webhook issues
type fakePlanStore struct {
	tag  pgconn.CommandTag
	err  error
	args []any
}

func (f *fakePlanStore) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.args = args
	return f.tag, f.err
}

func webhookRequest(t *testing.T, payload, secret string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/billing/webhook", strings.NewReader(payload))
	req.Header.Set("X-Billing-Signature", billing.Sign([]byte(payload), secret, time.Now()))
	return req
}

func newTestBillingHandler(store *fakePlanStore, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{
		db:     store,
		cfg:    &config.Config{Billing: config.BillingConfig{WebhookSecret: "whsec_test"}},
		logger: logger,
	}
}

func TestWebhookUpgradesPlanOnCheckoutCompleted(t *testing.T) {
	store := &fakePlanStore{tag: pgconn.NewCommandTag("UPDATE 1")}
	h := newTestBillingHandler(store, zap.NewNop())

	userID := uuid.New()
	payload := fmt.Sprintf(`{"id":"evt_1","type":"checkout.completed","data":{"client_reference_id":"%s"}}`, userID)
	rec := httptest.NewRecorder()

	h.Webhook(rec, webhookRequest(t, payload, "whsec_test"))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.args, 4)
	assert.Equal(t, "pro", store.args[0])
	assert.Equal(t, "active", store.args[1])
	assert.Equal(t, userID, store.args[3])
}

func TestWebhookAcksAndWarnsForUnknownUser(t *testing.T) {
	// A verified event for a user that does not exist must not be silently
	// dropped, but retrying cannot help either: warn and acknowledge
	core, logs := observer.New(zap.WarnLevel)
	store := &fakePlanStore{tag: pgconn.NewCommandTag("UPDATE 0")}
	h := newTestBillingHandler(store, zap.New(core))

	payload := fmt.Sprintf(`{"id":"evt_2","type":"subscription.canceled","data":{"client_reference_id":"%s"}}`, uuid.New())
	rec := httptest.NewRecorder()

	h.Webhook(rec, webhookRequest(t, payload, "whsec_test"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"received":true`)
	assert.Equal(t, 1, logs.FilterMessage("billing event for unknown user").Len())
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	store := &fakePlanStore{tag: pgconn.NewCommandTag("UPDATE 1")}
	h := newTestBillingHandler(store, zap.NewNop())

	payload := `{"id":"evt_3","type":"checkout.completed","data":{"client_reference_id":"x"}}`
	rec := httptest.NewRecorder()

	h.Webhook(rec, webhookRequest(t, payload, "wrong-secret"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, store.args, "no update on a bad signature")
}
