package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"MAILMUSE_BACK-END/internal/config"
	"MAILMUSE_BACK-END/internal/metrics"
	"MAILMUSE_BACK-END/internal/models"
	"MAILMUSE_BACK-END/internal/repository"
	"MAILMUSE_BACK-END/internal/usage"
	"MAILMUSE_BACK-END/internal/utils"
)

// enforceQuota checks the caller's monthly limit; on exhaustion it writes
// the 429 response steering the caller toward a personal API key.
func enforceQuota(w http.ResponseWriter, r *http.Request, limiter *usage.Limiter, cfg *config.Config, who caller) bool {
	_, err := limiter.Check(r.Context(), who.Key, cfg.MonthlyLimit(who.Plan))
	if err != nil {
		if errors.Is(err, usage.ErrLimitReached) {
			metrics.LimitRejections.Inc()
			utils.WriteErrorResponse(w, http.StatusTooManyRequests, "limit_reached",
				"Monthly generation limit reached. Add your own AI API key to continue without limits.")
			return false
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to check usage", err.Error())
		return false
	}
	return true
}

// writeRepoError maps repository errors to HTTP responses
func writeRepoError(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, repository.ErrNotFound) {
		utils.WriteErrorResponse(w, http.StatusNotFound, notFoundMsg, "No such resource for this user")
		return
	}
	utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
}

// caller identifies who a quota is charged to. Authenticated requests are
// keyed by user ID; anonymous ones by the client-generated X-Client-ID
// header, falling back to the remote address.
type caller struct {
	Key    string
	Plan   string
	UserID uuid.UUID
	Authed bool
}

func identifyCaller(r *http.Request) caller {
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		plan, _ := utils.GetPlanFromContext(r.Context())
		if plan == "" {
			plan = models.PlanFree
		}
		return caller{Key: "user:" + userID.String(), Plan: plan, UserID: userID, Authed: true}
	}

	clientID := r.Header.Get("X-Client-ID")
	if clientID == "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		clientID = host
	}
	return caller{Key: "client:" + clientID, Plan: models.PlanAnonymous}
}

// planQuerier is the slice of the pool the plan lookup needs
type planQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// callerPlan resolves the plan the quota is computed from. The JWT carries a
// plan claim, but tokens outlive plan changes: a checkout upgrade lands in
// the users table while already-issued tokens keep the old plan for up to
// the access TTL. The database wins for authenticated callers; the claim
// covers anonymous callers and read failures.
func callerPlan(ctx context.Context, db planQuerier, c caller) string {
	if !c.Authed || db == nil {
		return c.Plan
	}
	var plan string
	err := db.QueryRow(ctx, "SELECT plan FROM users WHERE id = $1", c.UserID).Scan(&plan)
	if err != nil || plan == "" {
		return c.Plan
	}
	return plan
}

// personalAIKey resolves the caller's own provider key: the X-AI-Key header
// wins, then the stored key for authenticated users. Empty means the shared
// key applies.
func personalAIKey(ctx context.Context, db *pgxpool.Pool, r *http.Request, c caller) (string, error) {
	if key := r.Header.Get("X-AI-Key"); key != "" {
		return key, nil
	}
	if !c.Authed || db == nil {
		return "", nil
	}

	var key string
	err := db.QueryRow(ctx,
		"SELECT api_key FROM api_keys WHERE user_id = $1", c.UserID).Scan(&key)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return key, nil
}
