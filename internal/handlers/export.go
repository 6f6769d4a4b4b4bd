package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"MAILMUSE_BACK-END/internal/dto"
	"MAILMUSE_BACK-END/internal/export"
	"MAILMUSE_BACK-END/internal/metrics"
	"MAILMUSE_BACK-END/internal/models"
	"MAILMUSE_BACK-END/internal/service"
	"MAILMUSE_BACK-END/internal/utils"
)

// ExportHandler handles campaign export
type ExportHandler struct {
	workspaces *service.WorkspaceService
	campaigns  *service.CampaignService
}

// NewExportHandler creates a new ExportHandler instance
func NewExportHandler(workspaces *service.WorkspaceService, campaigns *service.CampaignService) *ExportHandler {
	return &ExportHandler{workspaces: workspaces, campaigns: campaigns}
}

// Export renders a campaign as text, JSON, or CSV
// @Summary Export a campaign
// @Description Render a campaign in the requested format; pass the campaign inline or reference a stored one
// @Tags export
// @Accept json
// @Produce plain
// @Param request body dto.ExportRequest true "Campaign and format"
// @Success 200 {string} string "Rendered document"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or unsupported format"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Campaign not found"
// @Router /api/campaigns/export [post]
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req dto.ExportRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	campaign, ok := h.resolveCampaign(w, r, req)
	if !ok {
		return
	}

	data, contentType, err := export.Render(campaign, req.Format)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Unsupported format", err.Error())
		return
	}
	metrics.ExportCount.WithLabelValues(req.Format).Inc()

	filename := fmt.Sprintf("%s.%s", sanitizeFilename(campaign.Name), req.Format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// resolveCampaign loads the stored campaign when IDs are given, otherwise
// uses the inline one. Writes the error response itself.
func (h *ExportHandler) resolveCampaign(w http.ResponseWriter, r *http.Request, req dto.ExportRequest) (models.Campaign, bool) {
	if req.CampaignID == "" {
		if len(req.Emails) == 0 {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Empty campaign", "Provide emails or a campaign_id")
			return models.Campaign{}, false
		}
		name := req.Name
		if name == "" {
			name = "Untitled campaign"
		}
		return models.Campaign{Name: name, Emails: req.Emails}, true
	}

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Sign in to export stored campaigns")
		return models.Campaign{}, false
	}

	campaignID, err := uuid.Parse(req.CampaignID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid campaign ID", err.Error())
		return models.Campaign{}, false
	}

	var workspaceID uuid.UUID
	if req.WorkspaceID != "" {
		workspaceID, err = uuid.Parse(req.WorkspaceID)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid workspace ID", err.Error())
			return models.Campaign{}, false
		}
	} else {
		ws, err := h.workspaces.ResolveDefault(r.Context(), userID)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to resolve workspace", err.Error())
			return models.Campaign{}, false
		}
		workspaceID = ws.ID
	}

	if _, err := h.workspaces.WorkspaceRepo.GetByID(r.Context(), userID, workspaceID); err != nil {
		writeRepoError(w, err, "Workspace not found")
		return models.Campaign{}, false
	}

	campaign, err := h.campaigns.CampaignRepo.GetByID(r.Context(), workspaceID, campaignID)
	if err != nil {
		writeRepoError(w, err, "Campaign not found")
		return models.Campaign{}, false
	}
	return *campaign, true
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "campaign"
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", " ", "_", "\"", "")
	return replacer.Replace(name)
}
