package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"MAILMUSE_BACK-END/internal/config"
	"MAILMUSE_BACK-END/internal/dto"
	"MAILMUSE_BACK-END/internal/metrics"
	"MAILMUSE_BACK-END/internal/models"
	"MAILMUSE_BACK-END/internal/profile"
	"MAILMUSE_BACK-END/internal/service"
	"MAILMUSE_BACK-END/internal/usage"
	"MAILMUSE_BACK-END/internal/utils"
)

// CampaignHandler handles campaign generation and CRUD
type CampaignHandler struct {
	db         *pgxpool.Pool
	campaigns  *service.CampaignService
	workspaces *service.WorkspaceService
	limiter    *usage.Limiter
	cfg        *config.Config
	logger     *zap.Logger
}

// NewCampaignHandler creates a new CampaignHandler instance
func NewCampaignHandler(db *pgxpool.Pool, campaigns *service.CampaignService, workspaces *service.WorkspaceService, limiter *usage.Limiter, cfg *config.Config, logger *zap.Logger) *CampaignHandler {
	return &CampaignHandler{
		db:         db,
		campaigns:  campaigns,
		workspaces: workspaces,
		limiter:    limiter,
		cfg:        cfg,
		logger:     logger,
	}
}

// Generate produces a new email sequence from a business profile
// @Summary Generate email sequence
// @Description Generate a multi-email marketing sequence from an inline profile or a workspace's stored profile
// @Tags campaigns
// @Accept json
// @Produce json
// @Param request body dto.GenerateCampaignRequest true "Generation parameters"
// @Success 200 {object} dto.CampaignResponse "Sequence generated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or empty profile"
// @Failure 429 {object} dto.ErrorResponse "Monthly quota exhausted"
// @Failure 502 {object} dto.ErrorResponse "AI provider failure"
// @Router /api/campaigns/generate [post]
func (h *CampaignHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.GenerateCampaignRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	who := identifyCaller(r)
	who.Plan = callerPlan(r.Context(), h.db, who)

	// Resolve the profile: inline for anonymous callers, stored for
	// workspace-bound generation
	var p profile.Profile
	var workspaceID uuid.UUID
	switch {
	case req.WorkspaceID != "":
		if !who.Authed {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Sign in to generate into a workspace")
			return
		}
		parsed, err := uuid.Parse(req.WorkspaceID)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid workspace ID", err.Error())
			return
		}
		ws, err := h.workspaces.WorkspaceRepo.GetByID(r.Context(), who.UserID, parsed)
		if err != nil {
			writeRepoError(w, err, "Workspace not found")
			return
		}
		workspaceID = ws.ID
		p = ws.Profile
	case req.Profile != nil:
		p = *req.Profile
	default:
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing profile", "Provide a profile or a workspace_id")
		return
	}

	personalKey, err := personalAIKey(r.Context(), h.db, r, who)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to load API key", err.Error())
		return
	}

	if personalKey == "" && !enforceQuota(w, r, h.limiter, h.cfg, who) {
		metrics.GenerationCount.WithLabelValues("limited").Inc()
		return
	}

	campaign, err := h.campaigns.Generate(r.Context(), p, req.Name, req.EmailCount, personalKey)
	if err != nil {
		metrics.GenerationCount.WithLabelValues("error").Inc()
		if err == service.ErrEmptyProfile {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Empty profile", "Extract a business profile before generating")
			return
		}
		h.logger.Warn("generation failed", zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusBadGateway, "Generation failed", "Failed to generate. Please try again.")
		return
	}
	metrics.GenerationCount.WithLabelValues("ok").Inc()

	if personalKey == "" {
		if err := h.limiter.Record(r.Context(), who.Key); err != nil {
			h.logger.Warn("failed to record usage", zap.String("caller", who.Key), zap.Error(err))
		}
	}

	// Workspace-bound generation persists the result immediately
	if workspaceID != uuid.Nil {
		if err := h.campaigns.Save(r.Context(), workspaceID, campaign); err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to save campaign", err.Error())
			return
		}
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.CampaignResponse{Campaign: *campaign})
}

// resolveWorkspace picks the workspace from the request or falls back to
// the user's default
func (h *CampaignHandler) resolveWorkspace(r *http.Request, userID uuid.UUID, raw string) (uuid.UUID, error) {
	if raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, err
		}
		return parsed, nil
	}
	ws, err := h.workspaces.ResolveDefault(r.Context(), userID)
	if err != nil {
		return uuid.Nil, err
	}
	return ws.ID, nil
}

// Collection handles the campaign collection routes
// @Summary List or save campaigns
// @Description GET lists the workspace's campaigns; POST saves a client-side campaign into a workspace
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workspace_id query string false "Workspace ID (default workspace when omitted)"
// @Success 200 {object} dto.CampaignListResponse "Campaigns"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Workspace not found"
// @Router /api/campaigns [get]
func (h *CampaignHandler) Collection(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.list(w, r, userID)
	case http.MethodPost:
		h.save(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CampaignHandler) list(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	workspaceID, err := h.resolveWorkspace(r, userID, r.URL.Query().Get("workspace_id"))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid workspace ID", err.Error())
		return
	}

	// Ownership check before listing
	if _, err := h.workspaces.WorkspaceRepo.GetByID(r.Context(), userID, workspaceID); err != nil {
		writeRepoError(w, err, "Workspace not found")
		return
	}

	campaigns, err := h.campaigns.CampaignRepo.ListByWorkspace(r.Context(), workspaceID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to list campaigns", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.CampaignListResponse{Campaigns: campaigns})
}

func (h *CampaignHandler) save(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req dto.SaveCampaignRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing name", "Campaign name is required")
		return
	}

	workspaceID, err := h.resolveWorkspace(r, userID, req.WorkspaceID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid workspace ID", err.Error())
		return
	}

	if _, err := h.workspaces.WorkspaceRepo.GetByID(r.Context(), userID, workspaceID); err != nil {
		writeRepoError(w, err, "Workspace not found")
		return
	}

	saved := models.Campaign{
		Name:   req.Name,
		Status: req.Status,
		Emails: req.Emails,
	}
	if err := h.campaigns.Save(r.Context(), workspaceID, &saved); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to save campaign", err.Error())
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, dto.CampaignResponse{Campaign: saved})
}

// ByID handles single-campaign routes (/api/campaigns/{id})
// @Summary Get, update, or delete a campaign
// @Description GET fetches, PUT applies edits (omitted fields keep stored values), DELETE removes
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param workspace_id query string false "Workspace ID (default workspace when omitted)"
// @Success 200 {object} dto.CampaignResponse "Campaign"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Campaign not found"
// @Router /api/campaigns/{id} [get]
func (h *CampaignHandler) ByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/campaigns/")
	campaignID, err := uuid.Parse(idStr)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid campaign ID", err.Error())
		return
	}

	workspaceID, err := h.resolveWorkspace(r, userID, r.URL.Query().Get("workspace_id"))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid workspace ID", err.Error())
		return
	}

	if _, err := h.workspaces.WorkspaceRepo.GetByID(r.Context(), userID, workspaceID); err != nil {
		writeRepoError(w, err, "Workspace not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		campaign, err := h.campaigns.CampaignRepo.GetByID(r.Context(), workspaceID, campaignID)
		if err != nil {
			writeRepoError(w, err, "Campaign not found")
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, dto.CampaignResponse{Campaign: *campaign})

	case http.MethodPut:
		var req dto.UpdateCampaignRequest
		if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
			return
		}
		campaign, err := h.campaigns.Update(r.Context(), workspaceID, campaignID, req.Name, req.Status, req.Emails)
		if err != nil {
			writeRepoError(w, err, "Campaign not found")
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, dto.CampaignResponse{Campaign: *campaign})

	case http.MethodDelete:
		if err := h.campaigns.Delete(r.Context(), workspaceID, campaignID); err != nil {
			writeRepoError(w, err, "Campaign not found")
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Campaign deleted"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
