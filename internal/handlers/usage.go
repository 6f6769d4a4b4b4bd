package handlers

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"MAILMUSE_BACK-END/internal/config"
	"MAILMUSE_BACK-END/internal/dto"
	"MAILMUSE_BACK-END/internal/usage"
	"MAILMUSE_BACK-END/internal/utils"
)

// UsageHandler reports the caller's monthly quota consumption
type UsageHandler struct {
	db      *pgxpool.Pool
	limiter *usage.Limiter
	cfg     *config.Config
}

// NewUsageHandler creates a new UsageHandler instance
func NewUsageHandler(db *pgxpool.Pool, limiter *usage.Limiter, cfg *config.Config) *UsageHandler {
	return &UsageHandler{db: db, limiter: limiter, cfg: cfg}
}

// Get returns the caller's usage for the current month
// @Summary Get usage
// @Description Report how many generations the caller has used this month and how many remain
// @Tags usage
// @Produce json
// @Success 200 {object} dto.UsageResponse "Usage status"
// @Router /api/usage [get]
func (h *UsageHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	who := identifyCaller(r)
	who.Plan = callerPlan(r.Context(), h.db, who)
	limit := h.cfg.MonthlyLimit(who.Plan)

	status, err := h.limiter.Check(r.Context(), who.Key, limit)
	if err != nil && !errors.Is(err, usage.ErrLimitReached) {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to read usage", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.UsageResponse{
		Plan:      who.Plan,
		Used:      int64(status.Used),
		Limit:     int64(status.Limit),
		Remaining: int64(status.Remaining),
		Exhausted: status.Exhausted,
	})
}
