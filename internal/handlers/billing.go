package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"MAILMUSE_BACK-END/internal/billing"
	"MAILMUSE_BACK-END/internal/config"
	"MAILMUSE_BACK-END/internal/dto"
	"MAILMUSE_BACK-END/internal/models"
	"MAILMUSE_BACK-END/internal/utils"
)

// maxWebhookBytes caps the webhook payload size
const maxWebhookBytes = 64 * 1024

// planStore is the slice of the pool the webhook needs
type planStore interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// BillingHandler handles subscription checkout and provider webhooks
type BillingHandler struct {
	db     planStore
	client *billing.Client
	cfg    *config.Config
	logger *zap.Logger
}

// NewBillingHandler creates a new BillingHandler instance
func NewBillingHandler(db *pgxpool.Pool, client *billing.Client, cfg *config.Config, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{db: db, client: client, cfg: cfg, logger: logger}
}

// Checkout creates a hosted checkout session for the pro upgrade
// @Summary Start checkout
// @Description Create a hosted checkout session and return its URL for redirect
// @Tags billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CheckoutResponse "Checkout session URL"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 502 {object} dto.ErrorResponse "Billing provider failure"
// @Router /api/billing/checkout [post]
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}
	email, _ := utils.GetEmailFromContext(r.Context())

	url, err := h.client.CreateCheckoutSession(r.Context(), userID.String(), email)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadGateway, "Failed to create checkout session", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.CheckoutResponse{URL: url})
}

// Webhook ingests signed billing provider events
// @Summary Billing webhook
// @Description Verify the event signature and update the user's plan; unknown event types are acknowledged
// @Tags billing
// @Accept json
// @Produce json
// @Success 200 {object} dto.WebhookAck "Event acknowledged"
// @Failure 400 {object} dto.ErrorResponse "Unreadable event"
// @Failure 401 {object} dto.ErrorResponse "Bad signature"
// @Router /api/billing/webhook [post]
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Failed to read payload", err.Error())
		return
	}

	err = billing.VerifySignature(payload, r.Header.Get("X-Billing-Signature"), h.cfg.Billing.WebhookSecret, time.Now())
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, billing.ErrMissingSignature) {
			status = http.StatusBadRequest
		}
		utils.WriteErrorResponse(w, status, "Invalid signature", err.Error())
		return
	}

	event, err := billing.ParseEvent(payload)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid event", err.Error())
		return
	}

	switch event.Type {
	case billing.EventCheckoutCompleted:
		h.applyPlanChange(w, event, models.PlanPro, models.SubscriptionActive)
		return
	case billing.EventSubscriptionCanceled:
		h.applyPlanChange(w, event, models.PlanFree, models.SubscriptionCanceled)
		return
	default:
		// Unknown events are acknowledged so the provider stops retrying
		h.logger.Info("ignoring billing event", zap.String("type", event.Type), zap.String("id", event.ID))
		utils.WriteJSONResponse(w, http.StatusOK, dto.WebhookAck{Received: true})
	}
}

func (h *BillingHandler) applyPlanChange(w http.ResponseWriter, event billing.Event, plan, subscriptionStatus string) {
	userID, err := uuid.Parse(event.Data.UserID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid event", "client_reference_id is not a user ID")
		return
	}

	tag, err := h.db.Exec(context.Background(),
		`UPDATE users SET plan = $1, subscription_status = $2, updated_at = $3 WHERE id = $4`,
		plan, subscriptionStatus, time.Now(), userID)
	if err != nil {
		// Non-2xx makes the provider retry the event
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to update plan", err.Error())
		return
	}
	if tag.RowsAffected() == 0 {
		// Acknowledge anyway; retrying cannot make the user appear
		h.logger.Warn("billing event for unknown user",
			zap.String("type", event.Type),
			zap.String("user_id", userID.String()))
		utils.WriteJSONResponse(w, http.StatusOK, dto.WebhookAck{Received: true})
		return
	}

	h.logger.Info("applied billing event",
		zap.String("type", event.Type),
		zap.String("user_id", userID.String()),
		zap.String("plan", plan))
	utils.WriteJSONResponse(w, http.StatusOK, dto.WebhookAck{Received: true})
}
