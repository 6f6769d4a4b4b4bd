package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"MAILMUSE_BACK-END/internal/dto"
	"MAILMUSE_BACK-END/internal/utils"
)

// APIKeyHandler manages the user's stored personal AI provider key
type APIKeyHandler struct {
	db *pgxpool.Pool
}

// NewAPIKeyHandler creates a new APIKeyHandler instance
func NewAPIKeyHandler(db *pgxpool.Pool) *APIKeyHandler {
	return &APIKeyHandler{db: db}
}

// Handle dispatches the /api/keys routes
// @Summary Manage personal AI key
// @Description GET reports whether a key is stored, POST stores or replaces it, DELETE removes it. Calls made with a personal key bypass the monthly quota.
// @Tags keys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SetAPIKeyRequest false "Key to store (POST only)"
// @Success 200 {object} dto.APIKeyStatusResponse "Key status"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /api/keys [post]
func (h *APIKeyHandler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	switch r.Method {
	case http.MethodGet:
		var exists bool
		err := h.db.QueryRow(context.Background(),
			"SELECT true FROM api_keys WHERE user_id = $1", userID).Scan(&exists)
		if err != nil && err != pgx.ErrNoRows {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Database error", err.Error())
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, dto.APIKeyStatusResponse{Configured: exists})

	case http.MethodPost:
		var req dto.SetAPIKeyRequest
		if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
			return
		}
		if strings.TrimSpace(req.Key) == "" {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing key", "API key is required")
			return
		}

		_, err := h.db.Exec(context.Background(),
			`INSERT INTO api_keys (user_id, api_key, created_at, updated_at)
			 VALUES ($1, $2, $3, $3)
			 ON CONFLICT (user_id) DO UPDATE SET api_key = $2, updated_at = $3`,
			userID, strings.TrimSpace(req.Key), time.Now())
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to store key", err.Error())
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, dto.APIKeyStatusResponse{Configured: true})

	case http.MethodDelete:
		_, err := h.db.Exec(context.Background(),
			"DELETE FROM api_keys WHERE user_id = $1", userID)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to delete key", err.Error())
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, dto.APIKeyStatusResponse{Configured: false})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
