package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"MAILMUSE_BACK-END/internal/dto"
	"MAILMUSE_BACK-END/internal/usage"
	"MAILMUSE_BACK-END/internal/utils"
)

// HealthHandler handles health check related requests
type HealthHandler struct {
	db    *pgxpool.Pool
	redis *usage.RedisStore
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(db *pgxpool.Pool, redis *usage.RedisStore) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// HealthCheck handles basic health check (no dependencies)
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// LivenessCheck handles process liveness check
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{Status: "alive"})
}

// ReadinessCheck handles readiness check (includes database and Redis
// connectivity)
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	details := map[string]any{"db": "ok", "redis": "ok"}
	degraded := false

	if err := h.db.Ping(ctx); err != nil {
		details["db"] = err.Error()
		degraded = true
	}
	if err := h.redis.Ping(ctx); err != nil {
		details["redis"] = err.Error()
		degraded = true
	}

	if degraded {
		utils.WriteJSONResponse(w, http.StatusServiceUnavailable, dto.HealthResponse{
			Status:  "degraded",
			Details: details,
		})
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.HealthResponse{
		Status:  "ready",
		Details: details,
	})
}
